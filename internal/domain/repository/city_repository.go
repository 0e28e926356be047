package repository

import (
	"context"

	"github.com/desinetwork/classifieds/internal/domain/entity"
)

// CityRepository manages admin-curated reference cities.
type CityRepository interface {
	List(ctx context.Context) ([]entity.City, error)
	Create(ctx context.Context, name, state string) (*entity.City, error)
	Delete(ctx context.Context, id string) error
	CountAll(ctx context.Context) (int, error)
}
