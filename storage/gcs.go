package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSStore keeps objects in a Google Cloud Storage bucket.
type GCSStore struct {
	client  *gcs.Client
	bucket  string
	baseURL string
	now     func() time.Time
}

// NewGCSStore uses the credentials file when given, application default credentials otherwise.
// Without a baseURL, objects are addressed through storage.googleapis.com. Extra options
// go to the client as is (endpoint overrides, emulators).
func NewGCSStore(ctx context.Context, bucket, credentialsFile, baseURL string, extra ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, errors.New("storage: gcs bucket is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, extra...)
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if baseURL == "" || baseURL[0] == '/' {
		baseURL = "https://storage.googleapis.com/" + bucket
	}
	return &GCSStore{client: client, bucket: bucket, baseURL: baseURL, now: time.Now}, nil
}

func (s *GCSStore) Upload(ctx context.Context, localPath string) (string, error) {
	src, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := newKey(localPath, s.now())
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = mime.TypeByExtension(filepath.Ext(localPath))
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object %s: %w", key, err)
	}
	return key, nil
}

func (s *GCSStore) PublicURL(key string) string {
	return joinURL(s.baseURL, key)
}

func (s *GCSStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	err := s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
