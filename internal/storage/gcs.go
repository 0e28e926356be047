package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCS stores images as public objects in a Google Cloud Storage bucket.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty,
// Application Default Credentials are used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{client: client, bucket: bucket}
}

func (g *GCS) Save(ctx context.Context, classifiedID, ext, contentType string, r io.Reader) (string, error) {
	objectPath := path.Join("classifieds", classifiedID, uuid.NewString()+strings.ToLower(ext))
	wc := g.client.Bucket(g.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return g.publicURL(objectPath), nil
}

func (g *GCS) Remove(ctx context.Context, stored string) error {
	objectPath, ok := g.objectPath(stored)
	if !ok {
		return nil
	}
	err := g.client.Bucket(g.bucket).Object(objectPath).Delete(ctx)
	if err == storage.ErrObjectNotExist {
		return nil
	}
	return err
}

func (g *GCS) RemoveAll(ctx context.Context, classifiedID string) error {
	prefix := path.Join("classifieds", classifiedID) + "/"
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if err := g.client.Bucket(g.bucket).Object(attrs.Name).Delete(ctx); err != nil && err != storage.ErrObjectNotExist {
			return err
		}
	}
}

func (g *GCS) publicURL(objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucket, objectPath)
}

// objectPath recovers the object key from a stored public URL.
func (g *GCS) objectPath(stored string) (string, bool) {
	if !strings.HasPrefix(stored, "http") {
		return stored, stored != ""
	}
	u, err := url.Parse(stored)
	if err != nil {
		return "", false
	}
	marker := "/" + g.bucket + "/"
	idx := strings.Index(u.Path, marker)
	if idx < 0 {
		return "", false
	}
	return u.Path[idx+len(marker):], true
}

var _ Backend = (*GCS)(nil)
