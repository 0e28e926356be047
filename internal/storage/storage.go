package storage

import (
	"context"
	"io"
	"strings"
)

// Backend stores classified images. Save returns the value persisted in the
// image row: an object key like classifieds/<id>/<uuid><ext> for local disk,
// or a full public URL for GCS. Remove accepts that same value.
type Backend interface {
	Save(ctx context.Context, classifiedID, ext, contentType string, r io.Reader) (string, error)
	Remove(ctx context.Context, stored string) error
	// RemoveAll drops everything stored under a classified's namespace.
	RemoveAll(ctx context.Context, classifiedID string) error
}

// MimeType maps an image file extension to its content type.
func MimeType(ext string) string {
	switch strings.ToLower(ext) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
