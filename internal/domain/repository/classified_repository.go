package repository

import (
	"context"

	"github.com/desinetwork/classifieds/internal/domain/entity"
)

// PublishedFilter narrows the public classified listing.
type PublishedFilter struct {
	CityID   string
	Category string
	Search   string
}

// ClassifiedInsert is the create shape; status is always draft on insert.
type ClassifiedInsert struct {
	UserID       string
	Title        string
	Description  string
	Category     string
	ContactEmail *string
	ContactPhone *string
	Visibility   string
}

// ClassifiedPatch applies only non-nil fields.
type ClassifiedPatch struct {
	Title        *string
	Description  *string
	Category     *string
	ContactEmail *string
	ContactPhone *string
	Visibility   *string
	Status       *string
}

// ImageInsert is one stored upload row.
type ImageInsert struct {
	FilePath  string
	SortOrder int
}

// ClassifiedRepository owns classifieds, their city links and image rows.
type ClassifiedRepository interface {
	ListPublished(ctx context.Context, f PublishedFilter) ([]entity.Classified, error)
	GetPublished(ctx context.Context, id string) (*entity.Classified, error)
	GetByID(ctx context.Context, id string) (*entity.Classified, error)
	ListByOwner(ctx context.Context, userID string) ([]entity.Classified, error)
	ListAll(ctx context.Context) ([]entity.Classified, error)

	Create(ctx context.Context, in ClassifiedInsert) (*entity.Classified, error)
	// Update patches fields for the owner's classified; ErrNotFound covers
	// both a missing row and an ownership mismatch.
	Update(ctx context.Context, id, ownerID string, p ClassifiedPatch) error
	UpdateStatus(ctx context.Context, id, status string) (*entity.Classified, error)
	// Delete removes the row (image rows cascade); ownerID may be empty for
	// the admin path. Returns the image rows that were attached so callers
	// can remove backing objects.
	Delete(ctx context.Context, id, ownerID string) ([]entity.ClassifiedImage, error)

	// ReplaceCityLinks diffs the stored link set against cityIDs and applies
	// the additions and removals inside one transaction.
	ReplaceCityLinks(ctx context.Context, id string, cityIDs []string) error

	AddImages(ctx context.Context, id string, imgs []ImageInsert) error
	ListImages(ctx context.Context, id string) ([]entity.ClassifiedImage, error)
	// RemoveImages deletes the given image rows of a classified and returns
	// the removed rows for backing-object cleanup.
	RemoveImages(ctx context.Context, id string, imageIDs []string) ([]entity.ClassifiedImage, error)
	MaxSortOrder(ctx context.Context, id string) (int, error)

	CountAll(ctx context.Context) (int, error)
	CountPublished(ctx context.Context) (int, error)
}
