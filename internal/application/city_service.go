package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/desinetwork/classifieds/internal/domain/entity"
	"github.com/desinetwork/classifieds/internal/domain/repository"
	"github.com/desinetwork/classifieds/pkg/helpers"
)

var (
	ErrCityExists   = errors.New("city already exists")
	ErrCityNotFound = errors.New("city not found")
)

const (
	cityCacheKey = "cities:all"
	cityCacheTTL = 5 * time.Minute
)

// CityService serves the city list with a short Redis cache. A nil Redis
// client disables caching, every read hits Postgres.
type CityService struct {
	Cities repository.CityRepository
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewCityService(cities repository.CityRepository, rdb *redis.Client, logger *logrus.Logger) *CityService {
	return &CityService{Cities: cities, Redis: rdb, Logger: logger}
}

// List returns all cities ordered by state then name.
func (s *CityService) List(ctx context.Context) ([]entity.City, error) {
	if s.Redis != nil {
		var cached []entity.City
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, cityCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	cities, err := s.Cities.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, cityCacheKey, cities, cityCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("city cache write failed")
		}
	}
	return cities, nil
}

// Create adds a city; (name, state) is unique.
func (s *CityService) Create(ctx context.Context, name, state string) (*entity.City, error) {
	city, err := s.Cities.Create(ctx, name, state)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrCityExists
		}
		return nil, err
	}
	s.invalidate(ctx)
	return city, nil
}

// Delete removes a city; classified links cascade away.
func (s *CityService) Delete(ctx context.Context, id string) error {
	if err := s.Cities.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCityNotFound
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CityService) invalidate(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, cityCacheKey); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("city cache invalidation failed")
	}
}
