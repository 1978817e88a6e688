package models

import "time"

// MediaType classifies an attachment. Only images are produced by uploads today.
type MediaType string

const (
	MediaTypeImage MediaType = "IMAGE"
	MediaTypeVideo MediaType = "VIDEO"
)

func (t MediaType) String() string { return string(t) }

// PostMedia is a file attached to a post and kept in the object store under StorageKey.
type PostMedia struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PostID     uint      `gorm:"index;not null" json:"post_id"`
	Metadata   string    `gorm:"size:255" json:"metadata"` // original filename
	MediaType  MediaType `gorm:"size:16;not null;default:'IMAGE'" json:"media_type"`
	StorageKey string    `gorm:"size:512;index;not null" json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PostMedia) TableName() string { return "post_media" }
