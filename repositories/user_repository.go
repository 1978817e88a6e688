package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/cocodas/prierboard/models"
	"github.com/cocodas/prierboard/services"
)

// UserRepository reads member profiles. Accounts are written by the account service.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := conn(ctx, r.db).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, services.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
