package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cocodas/prierboard/models"
	"github.com/cocodas/prierboard/services"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository { return &PostRepository{db: db} }

// aggregate preloads everything response assembly reads.
func (r *PostRepository) aggregate(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Preload("User").
		Preload("Media", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Likes")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func (r *PostRepository) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.aggregate(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *PostRepository) FindAll(ctx context.Context, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := newestFirst(r.aggregate(ctx)).Offset(offset).Limit(limit).Find(&posts).Error
	return posts, err
}

func (r *PostRepository) FindByOwner(ctx context.Context, userID uint, offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := newestFirst(r.aggregate(ctx)).
		Where("user_id = ?", userID).
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostRepository) FindByTitleContaining(ctx context.Context, keyword string, limit int) ([]models.Post, error) {
	return r.findContaining(ctx, "title", keyword, limit)
}

func (r *PostRepository) FindByContentContaining(ctx context.Context, keyword string, limit int) ([]models.Post, error) {
	return r.findContaining(ctx, "content", keyword, limit)
}

func (r *PostRepository) findContaining(ctx context.Context, column, keyword string, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := newestFirst(r.aggregate(ctx)).
		Where(column+" LIKE ? ESCAPE '!'", likePattern(keyword)).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *PostRepository) FindAllByIDs(ctx context.Context, ids []uint) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	var posts []models.Post
	err := r.aggregate(ctx).Where("id IN ?", ids).Find(&posts).Error
	return posts, err
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return conn(ctx, r.db).Omit(clause.Associations).Create(post).Error
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	res := conn(ctx, r.db).Model(&models.Post{}).
		Where("id = ? AND version = ?", post.ID, post.Version).
		Updates(map[string]interface{}{
			"title":      post.Title,
			"content":    post.Content,
			"category":   post.Category,
			"updated_at": post.UpdatedAt,
			"version":    post.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOrStale(ctx, post.ID)
	}
	post.Version++
	return nil
}

func (r *PostRepository) IncrementViews(ctx context.Context, id uint) error {
	res := conn(ctx, r.db).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id uint) error {
	db := conn(ctx, r.db)
	if err := db.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
		return err
	}
	if err := db.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	res := db.Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return services.ErrPostNotFound
	}
	return nil
}

// missingOrStale tells a deleted post apart from a concurrent edit.
func (r *PostRepository) missingOrStale(ctx context.Context, id uint) error {
	var count int64
	if err := conn(ctx, r.db).Model(&models.Post{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return services.ErrPostNotFound
	}
	return services.ErrConflict
}

// likePattern builds a substring pattern with LIKE wildcards in keyword escaped by '!'.
func likePattern(keyword string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(keyword) + "%"
}
