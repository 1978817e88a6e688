package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/cocodas/prierboard/models"
)

// MockMediaStore is a mock implementation of MediaStore
type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) FindByPost(ctx context.Context, postID uint) ([]models.PostMedia, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PostMedia), args.Error(1)
}

func (m *MockMediaStore) Create(ctx context.Context, media *models.PostMedia) error {
	args := m.Called(ctx, media)
	return args.Error(0)
}

func (m *MockMediaStore) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMediaStore) Replace(ctx context.Context, postID uint, media []models.PostMedia) error {
	args := m.Called(ctx, postID, media)
	return args.Error(0)
}

// MockIdentityResolver is a mock implementation of IdentityResolver
type MockIdentityResolver struct {
	mock.Mock
}

func (m *MockIdentityResolver) UserIDFromCredential(ctx context.Context, credential string) (uint, error) {
	args := m.Called(ctx, credential)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockIdentityResolver) ProfileSummary(ctx context.Context, userID uint) (ProfileSummary, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(ProfileSummary), args.Error(1)
}

// MockPostStore is a mock implementation of PostStore
type MockPostStore struct {
	mock.Mock
}

func (m *MockPostStore) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostStore) FindAll(ctx context.Context, offset, limit int) ([]models.Post, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostStore) FindByOwner(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error) {
	args := m.Called(ctx, userID, offset, limit)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostStore) FindByTitleContaining(ctx context.Context, keyword string, limit int) ([]models.Post, error) {
	args := m.Called(ctx, keyword, limit)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostStore) FindByContentContaining(ctx context.Context, keyword string, limit int) ([]models.Post, error) {
	args := m.Called(ctx, keyword, limit)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostStore) FindAllByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostStore) Create(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostStore) Update(ctx context.Context, post *models.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostStore) IncrementViews(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostStore) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLikeStore is a mock implementation of LikeStore
type MockLikeStore struct {
	mock.Mock
}

func (m *MockLikeStore) FindByOwner(ctx context.Context, userID uint, offset, limit int) ([]models.Like, error) {
	args := m.Called(ctx, userID, offset, limit)
	return args.Get(0).([]models.Like), args.Error(1)
}

func (m *MockLikeStore) Create(ctx context.Context, userID, postID uint) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockLikeStore) Delete(ctx context.Context, userID, postID uint) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

// inlineTx runs fn without a database.
type inlineTx struct{}

func (inlineTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var errObjectStore = errors.New("object store unavailable")

// fakeObjects keeps uploaded bytes in memory and can be told to fail.
type fakeObjects struct {
	mu         sync.Mutex
	next       int
	objects    map[string][]byte
	deleted    []string
	failUpload map[string]bool // by staged file extension
	failDelete map[string]bool // by key
	stagedSeen []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{
		objects:    map[string][]byte{},
		failUpload: map[string]bool{},
		failDelete: map[string]bool{},
	}
}

func (f *fakeObjects) Upload(_ context.Context, localPath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stagedSeen = append(f.stagedSeen, localPath)
	ext := filepath.Ext(localPath)
	if f.failUpload[ext] {
		return "", errObjectStore
	}
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", err
	}
	f.next++
	key := fmt.Sprintf("posts/obj-%d%s", f.next, ext)
	f.objects[key] = data
	return key, nil
}

func (f *fakeObjects) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	return "https://cdn.test/" + key
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete[key] {
		return errObjectStore
	}
	f.deleted = append(f.deleted, key)
	delete(f.objects, key)
	return nil
}

func (f *fakeObjects) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeObjects) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func fileOf(name, body string) UploadFile {
	return UploadFile{
		Filename: name,
		Size:     int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(body)), nil
		},
	}
}
