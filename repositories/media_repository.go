package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/cocodas/prierboard/models"
)

type MediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) *MediaRepository { return &MediaRepository{db: db} }

func (r *MediaRepository) FindByPost(ctx context.Context, postID uint) ([]models.PostMedia, error) {
	var media []models.PostMedia
	err := conn(ctx, r.db).Where("post_id = ?", postID).Order("id ASC").Find(&media).Error
	return media, err
}

func (r *MediaRepository) Create(ctx context.Context, media *models.PostMedia) error {
	return conn(ctx, r.db).Create(media).Error
}

func (r *MediaRepository) Delete(ctx context.Context, id uint) error {
	return conn(ctx, r.db).Delete(&models.PostMedia{}, id).Error
}

func (r *MediaRepository) Replace(ctx context.Context, postID uint, media []models.PostMedia) error {
	db := conn(ctx, r.db)
	keep := make([]uint, 0, len(media))
	for _, m := range media {
		if m.ID != 0 {
			keep = append(keep, m.ID)
		}
	}

	stale := db.Where("post_id = ?", postID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.PostMedia{}).Error; err != nil {
		return err
	}

	for i := range media {
		if media[i].ID != 0 {
			continue
		}
		media[i].PostID = postID
		if err := db.Create(&media[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
