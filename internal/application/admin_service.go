package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
	"github.com/desinetwork/classifieds/internal/realtime"
	"github.com/desinetwork/classifieds/internal/search"
	"github.com/desinetwork/classifieds/internal/storage"
)

var (
	ErrInvalidRole  = errors.New("role must be user or admin")
	ErrSelfDemotion = errors.New("you cannot remove your own admin role")
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalUsers           int `json:"totalUsers"`
	TotalClassifieds     int `json:"totalClassifieds"`
	PublishedClassifieds int `json:"publishedClassifieds"`
	TotalCities          int `json:"totalCities"`
}

// AdminService covers moderation and reference-data management. Moderation
// writes broadcast classifieds:changed for public readers and admin:changed
// for dashboards.
type AdminService struct {
	Users       repository.UserRepository
	Classifieds repository.ClassifiedRepository
	Cities      *CityService
	Storage     storage.Backend
	Notifier    realtime.Notifier
	Indexer     *search.ClassifiedIndexer
	Logger      *logrus.Logger
}

func NewAdminService(
	users repository.UserRepository,
	classifieds repository.ClassifiedRepository,
	cities *CityService,
	backend storage.Backend,
	notifier realtime.Notifier,
	indexer *search.ClassifiedIndexer,
	logger *logrus.Logger,
) *AdminService {
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	return &AdminService{
		Users:       users,
		Classifieds: classifieds,
		Cities:      cities,
		Storage:     backend,
		Notifier:    notifier,
		Indexer:     indexer,
		Logger:      logger,
	}
}

// Stats counts users, classifieds (total and published) and cities.
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.Users.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.Classifieds.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	published, err := s.Classifieds.CountPublished(ctx)
	if err != nil {
		return nil, err
	}
	cities, err := s.Cities.Cities.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalUsers:           users,
		TotalClassifieds:     total,
		PublishedClassifieds: published,
		TotalCities:          cities,
	}, nil
}

// ListUsers returns every account.
func (s *AdminService) ListUsers(ctx context.Context) ([]entity.User, error) {
	return s.Users.ListAll(ctx)
}

// ListClassifieds returns every classified regardless of status.
func (s *AdminService) ListClassifieds(ctx context.Context) ([]entity.Classified, error) {
	return s.Classifieds.ListAll(ctx)
}

// SetClassifiedStatus moves a classified between draft and published.
func (s *AdminService) SetClassifiedStatus(ctx context.Context, id, status string) (*entity.Classified, error) {
	if !entity.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	c, err := s.Classifieds.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassifiedNotFound
		}
		return nil, err
	}
	s.Notifier.ClassifiedsChanged()
	s.Notifier.AdminChanged()
	s.Indexer.Upsert(ctx, c)
	return c, nil
}

// DeleteClassified removes any classified, no ownership check.
func (s *AdminService) DeleteClassified(ctx context.Context, id string) error {
	images, err := s.Classifieds.Delete(ctx, id, "")
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClassifiedNotFound
		}
		return err
	}
	for _, img := range images {
		if err := s.Storage.Remove(ctx, img.FilePath); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("file", img.FilePath).Warn("image object removal failed")
		}
	}
	if err := s.Storage.RemoveAll(ctx, id); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("classified_id", id).Warn("storage namespace cleanup failed")
	}
	s.Notifier.ClassifiedsChanged()
	s.Notifier.AdminChanged()
	s.Indexer.Delete(ctx, id)
	return nil
}

// CreateCity adds a reference city.
func (s *AdminService) CreateCity(ctx context.Context, name, state string) (*entity.City, error) {
	city, err := s.Cities.Create(ctx, name, state)
	if err != nil {
		return nil, err
	}
	s.Notifier.AdminChanged()
	return city, nil
}

// DeleteCity removes a reference city.
func (s *AdminService) DeleteCity(ctx context.Context, id string) error {
	if err := s.Cities.Delete(ctx, id); err != nil {
		return err
	}
	s.Notifier.AdminChanged()
	return nil
}

// UpdateUserRole changes an account's role. An admin cannot drop its own
// admin role, so the last admin cannot lock everyone out.
func (s *AdminService) UpdateUserRole(ctx context.Context, actorID, userID, role string) (*entity.User, error) {
	if role != entity.RoleUser && role != entity.RoleAdmin {
		return nil, ErrInvalidRole
	}
	if actorID == userID && role != entity.RoleAdmin {
		return nil, ErrSelfDemotion
	}
	u, err := s.Users.UpdateRole(ctx, userID, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	s.Notifier.AdminChanged()
	return u, nil
}

// SearchClassifieds queries the Elasticsearch index when configured.
func (s *AdminService) SearchClassifieds(ctx context.Context, q string, size int) ([]map[string]any, error) {
	return s.Indexer.Search(ctx, q, size)
}
