// Package storage holds the object store backends that keep post media.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cocodas/prierboard/config"
)

// ErrEmptyKey is returned when an operation is asked to act on a blank key.
var ErrEmptyKey = errors.New("storage: empty object key")

// ObjectStore uploads staged local files and addresses them by opaque key.
type ObjectStore interface {
	// Upload copies the file at localPath into the store and returns its key.
	Upload(ctx context.Context, localPath string) (string, error)
	// PublicURL resolves a key to a URL clients can fetch. Blank keys give "".
	PublicURL(key string) string
	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, key string) error
}

// New picks the backend named by cfg.Driver.
func New(ctx context.Context, cfg config.StorageSection) (ObjectStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL)
	case "gcs":
		return NewGCSStore(ctx, cfg.Bucket, cfg.CredentialsFile, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// newKey builds a date-partitioned random key that keeps the source extension.
func newKey(localPath string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	return fmt.Sprintf("posts/%s/%s%s", now.Format("2006/01/02"), uuid.NewString(), ext)
}

func joinURL(base, key string) string {
	if key == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
