package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cocodas/prierboard/models"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository { return &LikeRepository{db: db} }

// FindByOwner returns the user's likes, most recent first.
func (r *LikeRepository) FindByOwner(ctx context.Context, userID uint, offset, limit int) ([]models.Like, error) {
	var likes []models.Like
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&likes).Error
	return likes, err
}

// Create is idempotent: liking twice keeps a single row.
func (r *LikeRepository) Create(ctx context.Context, userID, postID uint) error {
	like := &models.Like{UserID: userID, PostID: postID}
	return conn(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

func (r *LikeRepository) Delete(ctx context.Context, userID, postID uint) error {
	return conn(ctx, r.db).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
}
