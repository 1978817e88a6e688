package services

import (
	"context"

	"github.com/cocodas/prierboard/models"
)

// Transactor runs fn inside one database transaction. Stores called with the ctx handed
// to fn take part in that transaction; nested calls join the outer one.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// PostStore loads post aggregates with owner, media and likes preloaded.
type PostStore interface {
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	FindAll(ctx context.Context, offset, limit int) ([]models.Post, error)
	FindByOwner(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error)
	FindByTitleContaining(ctx context.Context, keyword string, limit int) ([]models.Post, error)
	FindByContentContaining(ctx context.Context, keyword string, limit int) ([]models.Post, error)
	FindAllByIDs(ctx context.Context, ids []uint) ([]models.Post, error)
	Create(ctx context.Context, post *models.Post) error
	// Update writes title, content, category and updated_at when post.Version is still current.
	Update(ctx context.Context, post *models.Post) error
	IncrementViews(ctx context.Context, id uint) error
	// Delete removes the post row together with its likes and comments.
	Delete(ctx context.Context, id uint) error
}

type MediaStore interface {
	FindByPost(ctx context.Context, postID uint) ([]models.PostMedia, error)
	Create(ctx context.Context, media *models.PostMedia) error
	Delete(ctx context.Context, id uint) error
	// Replace makes media the complete set for postID: rows missing from it are deleted,
	// entries without an ID are inserted and get their ID assigned.
	Replace(ctx context.Context, postID uint, media []models.PostMedia) error
}

type LikeStore interface {
	FindByOwner(ctx context.Context, userID uint, offset, limit int) ([]models.Like, error)
	Create(ctx context.Context, userID, postID uint) error
	Delete(ctx context.Context, userID, postID uint) error
}

type CommentStore interface {
	FindByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	FindByID(ctx context.Context, id uint) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
}

type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

// IdentityResolver turns caller credentials into user ids and user ids into public profiles.
type IdentityResolver interface {
	UserIDFromCredential(ctx context.Context, credential string) (uint, error)
	ProfileSummary(ctx context.Context, userID uint) (ProfileSummary, error)
}

// CommentLister provides the comment thread shown on a post detail page.
type CommentLister interface {
	ListByPost(ctx context.Context, postID uint) ([]CommentView, error)
}

// URLResolver maps object store keys to public URLs.
type URLResolver interface {
	PublicURL(key string) string
}

// MediaLifecycle keeps post attachments in step with the object store. MediaService is
// the only implementation outside tests.
type MediaLifecycle interface {
	Upload(ctx context.Context, post *models.Post, files []UploadFile) ([]models.PostMedia, error)
	Reconcile(ctx context.Context, deleteKeys []string, post *models.Post, files []UploadFile) ([]models.PostMedia, error)
	DeleteAll(ctx context.Context, post *models.Post) error
	DetailView(post *models.Post) []MediaDetail
	Discard(ctx context.Context, media []models.PostMedia)
}
