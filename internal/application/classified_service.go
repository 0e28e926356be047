package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
	"github.com/desinetwork/classifieds/internal/realtime"
	"github.com/desinetwork/classifieds/internal/search"
	"github.com/desinetwork/classifieds/internal/storage"
)

var (
	ErrClassifiedNotFound = errors.New("classified not found")
	ErrInvalidVisibility  = errors.New("visibility must be all_cities or selected_cities")
	ErrInvalidStatus      = errors.New("status must be draft or published")
)

// Upload is one incoming image file.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// CreateClassifiedInput carries the multipart create payload.
type CreateClassifiedInput struct {
	Title        string
	Description  string
	Category     string
	ContactEmail *string
	ContactPhone *string
	Visibility   string
	CityIDs      []string
	Images       []Upload
}

// UpdateClassifiedInput carries the multipart update payload. Nil scalar
// fields are left untouched; CityIDs applies only when Visibility is set.
type UpdateClassifiedInput struct {
	Title          *string
	Description    *string
	Category       *string
	ContactEmail   *string
	ContactPhone   *string
	Visibility     *string
	CityIDs        []string
	RemoveImageIDs []string
	NewImages      []Upload
}

// ClassifiedService is the owner-facing classified workflow. Every mutation
// broadcasts classifieds:changed after the write commits.
type ClassifiedService struct {
	Classifieds repository.ClassifiedRepository
	Storage     storage.Backend
	Notifier    realtime.Notifier
	Indexer     *search.ClassifiedIndexer
	Logger      *logrus.Logger
}

func NewClassifiedService(
	classifieds repository.ClassifiedRepository,
	backend storage.Backend,
	notifier realtime.Notifier,
	indexer *search.ClassifiedIndexer,
	logger *logrus.Logger,
) *ClassifiedService {
	if notifier == nil {
		notifier = realtime.NopNotifier{}
	}
	return &ClassifiedService{
		Classifieds: classifieds,
		Storage:     backend,
		Notifier:    notifier,
		Indexer:     indexer,
		Logger:      logger,
	}
}

// ListPublished returns published classifieds newest first, optionally
// narrowed by city, category or a title/description search.
func (s *ClassifiedService) ListPublished(ctx context.Context, f repository.PublishedFilter) ([]entity.Classified, error) {
	return s.Classifieds.ListPublished(ctx, f)
}

// GetPublished fetches one published classified; drafts read as absent.
func (s *ClassifiedService) GetPublished(ctx context.Context, id string) (*entity.Classified, error) {
	c, err := s.Classifieds.GetPublished(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassifiedNotFound
		}
		return nil, err
	}
	return c, nil
}

// ListMine returns the owner's classifieds in every status.
func (s *ClassifiedService) ListMine(ctx context.Context, ownerID string) ([]entity.Classified, error) {
	return s.Classifieds.ListByOwner(ctx, ownerID)
}

// Create inserts a draft classified with its city links and images. An empty
// city list under selected_cities is accepted; such an ad is simply invisible
// in every city filter until cities are attached.
func (s *ClassifiedService) Create(ctx context.Context, ownerID string, in CreateClassifiedInput) (*entity.Classified, error) {
	if !entity.ValidVisibility(in.Visibility) {
		return nil, ErrInvalidVisibility
	}

	c, err := s.Classifieds.Create(ctx, repository.ClassifiedInsert{
		UserID:       ownerID,
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		Visibility:   in.Visibility,
	})
	if err != nil {
		return nil, err
	}

	if in.Visibility == entity.VisibilitySelectedCities && len(in.CityIDs) > 0 {
		if err := s.Classifieds.ReplaceCityLinks(ctx, c.ID, in.CityIDs); err != nil {
			return nil, err
		}
	}

	if err := s.saveImages(ctx, c.ID, 0, in.Images); err != nil {
		return nil, err
	}

	full, err := s.Classifieds.GetByID(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	s.Notifier.ClassifiedsChanged()
	s.Indexer.Upsert(ctx, full)
	return full, nil
}

// Update patches an owned classified. A missing row and a row owned by
// someone else both come back as not found.
func (s *ClassifiedService) Update(ctx context.Context, ownerID, id string, in UpdateClassifiedInput) (*entity.Classified, error) {
	if in.Visibility != nil && !entity.ValidVisibility(*in.Visibility) {
		return nil, ErrInvalidVisibility
	}

	patch := repository.ClassifiedPatch{
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		ContactEmail: in.ContactEmail,
		ContactPhone: in.ContactPhone,
		Visibility:   in.Visibility,
	}
	if err := s.Classifieds.Update(ctx, id, ownerID, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClassifiedNotFound
		}
		return nil, err
	}

	if in.Visibility != nil {
		cityIDs := in.CityIDs
		if *in.Visibility == entity.VisibilityAllCities {
			cityIDs = nil
		}
		if err := s.Classifieds.ReplaceCityLinks(ctx, id, cityIDs); err != nil {
			return nil, err
		}
	}

	if len(in.RemoveImageIDs) > 0 {
		removed, err := s.Classifieds.RemoveImages(ctx, id, in.RemoveImageIDs)
		if err != nil {
			return nil, err
		}
		for _, img := range removed {
			if err := s.Storage.Remove(ctx, img.FilePath); err != nil && s.Logger != nil {
				s.Logger.WithError(err).WithField("file", img.FilePath).Warn("image object removal failed")
			}
		}
	}

	if len(in.NewImages) > 0 {
		maxOrder, err := s.Classifieds.MaxSortOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := s.saveImages(ctx, id, maxOrder+1, in.NewImages); err != nil {
			return nil, err
		}
	}

	full, err := s.Classifieds.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Notifier.ClassifiedsChanged()
	s.Indexer.Upsert(ctx, full)
	return full, nil
}

// Delete removes an owned classified with its image rows and stored objects.
func (s *ClassifiedService) Delete(ctx context.Context, ownerID, id string) error {
	images, err := s.Classifieds.Delete(ctx, id, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClassifiedNotFound
		}
		return err
	}
	s.cleanupObjects(ctx, id, images)

	s.Notifier.ClassifiedsChanged()
	s.Indexer.Delete(ctx, id)
	return nil
}

// saveImages stores uploads in order starting at startOrder and records the
// rows. A failed save skips the file and keeps going; partial uploads beat
// losing the whole ad.
func (s *ClassifiedService) saveImages(ctx context.Context, classifiedID string, startOrder int, uploads []Upload) error {
	if len(uploads) == 0 {
		return nil
	}
	rows := make([]repository.ImageInsert, 0, len(uploads))
	order := startOrder
	for _, up := range uploads {
		ext := strings.ToLower(filepath.Ext(up.Filename))
		ct := up.ContentType
		if ct == "" {
			ct = storage.MimeType(ext)
		}
		stored, err := s.Storage.Save(ctx, classifiedID, ext, ct, up.Reader)
		if err != nil {
			if s.Logger != nil {
				s.Logger.WithError(err).WithField("filename", up.Filename).Error("image upload failed")
			}
			continue
		}
		rows = append(rows, repository.ImageInsert{
			FilePath:  stored,
			SortOrder: order,
		})
		order++
	}
	if len(rows) == 0 {
		return nil
	}
	return s.Classifieds.AddImages(ctx, classifiedID, rows)
}

// cleanupObjects removes stored objects for deleted image rows plus the
// classified's storage namespace.
func (s *ClassifiedService) cleanupObjects(ctx context.Context, classifiedID string, images []entity.ClassifiedImage) {
	for _, img := range images {
		if err := s.Storage.Remove(ctx, img.FilePath); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("file", img.FilePath).Warn("image object removal failed")
		}
	}
	if err := s.Storage.RemoveAll(ctx, classifiedID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("classified_id", classifiedID).Warn("storage namespace cleanup failed")
	}
}
