package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newOfflineGCS(t *testing.T, baseURL string, extra ...option.ClientOption) *GCSStore {
	t.Helper()
	opts := append([]option.ClientOption{option.WithoutAuthentication()}, extra...)
	store, err := NewGCSStore(context.Background(), "bkt", "", baseURL, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewGCSStore_RequiresBucket(t *testing.T) {
	_, err := NewGCSStore(context.Background(), "", "", "", option.WithoutAuthentication())
	assert.Error(t, err)
}

func TestGCSStore_PublicURL(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"default host", "", "https://storage.googleapis.com/bkt/posts/a.png"},
		{"local path falls back to default host", "/static/uploads", "https://storage.googleapis.com/bkt/posts/a.png"},
		{"cdn", "https://cdn.example/media/", "https://cdn.example/media/posts/a.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newOfflineGCS(t, tc.baseURL)
			assert.Equal(t, tc.want, store.PublicURL("posts/a.png"))
			assert.Empty(t, store.PublicURL(""))
		})
	}
}

func TestGCSStore_UploadMissingFile(t *testing.T) {
	store := newOfflineGCS(t, "")
	_, err := store.Upload(context.Background(), filepath.Join(t.TempDir(), "gone.png"))
	assert.Error(t, err)
}

func TestGCSStore_Delete(t *testing.T) {
	var (
		mu      sync.Mutex
		methods []string
		status  = http.StatusNoContent
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		methods = append(methods, r.Method)
		code := status
		mu.Unlock()
		if code == http.StatusNotFound {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"No such object"}}`))
			return
		}
		w.WriteHeader(code)
	}))
	defer srv.Close()

	store := newOfflineGCS(t, "", option.WithEndpoint(srv.URL+"/storage/v1/"))
	ctx := context.Background()

	assert.ErrorIs(t, store.Delete(ctx, ""), ErrEmptyKey)
	require.NoError(t, store.Delete(ctx, "posts/a.png"))

	mu.Lock()
	status = http.StatusNotFound
	mu.Unlock()
	assert.NoError(t, store.Delete(ctx, "posts/missing.png"), "missing objects count as deleted")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{http.MethodDelete, http.MethodDelete}, methods)
}
