package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the board member profile. This service only reads it; accounts are managed elsewhere.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"size:64;not null" json:"username"`
	Nickname  string         `gorm:"size:64" json:"nickname"`
	Email     string         `gorm:"size:255" json:"email"`
	ImageKey  string         `gorm:"size:512" json:"-"` // object store key of the profile image
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}
