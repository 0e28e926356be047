package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local stores images on disk under baseDir; the API serves the tree at
// /api/uploads. This is the development backend, used when no GCS bucket is
// configured.
type Local struct {
	baseDir string
}

func NewLocal(baseDir string) *Local {
	return &Local{baseDir: baseDir}
}

// BaseDir is the directory the API mounts as the static uploads root.
func (l *Local) BaseDir() string {
	return l.baseDir
}

func (l *Local) Save(ctx context.Context, classifiedID, ext, contentType string, r io.Reader) (string, error) {
	filename := uuid.NewString() + strings.ToLower(ext)
	rel := filepath.ToSlash(filepath.Join("classifieds", classifiedID, filename))

	dir := filepath.Join(l.baseDir, "classifieds", classifiedID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return rel, nil
}

func (l *Local) Remove(ctx context.Context, stored string) error {
	if stored == "" || strings.HasPrefix(stored, "http") {
		return nil
	}
	err := os.Remove(filepath.Join(l.baseDir, filepath.FromSlash(stored)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *Local) RemoveAll(ctx context.Context, classifiedID string) error {
	return os.RemoveAll(filepath.Join(l.baseDir, "classifieds", classifiedID))
}

var _ Backend = (*Local)(nil)
