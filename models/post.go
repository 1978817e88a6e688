package models

import "time"

// Post represents a board post created by a user.
type Post struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	UserID    uint        `gorm:"index;not null" json:"user_id"`
	Title     string      `gorm:"size:255;not null" json:"title"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	Category  Category    `gorm:"size:32;not null;default:'GENERAL'" json:"category"`
	Views     int64       `gorm:"not null;default:0" json:"views"`
	Version   int64       `gorm:"not null;default:0" json:"-"` // bumped on every update, guards concurrent edits
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
	UpdatedAt *time.Time  `gorm:"autoUpdateTime:false" json:"updated_at"`
	User      User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Media     []PostMedia `gorm:"constraint:OnDelete:CASCADE;" json:"media"`
	Likes     []Like      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Comments  []Comment   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// Category is the closed set of board sections a post can be filed under.
type Category string

const (
	CategoryGeneral   Category = "GENERAL"
	CategoryQuestion  Category = "QUESTION"
	CategoryFeedback  Category = "FEEDBACK"
	CategoryPromotion Category = "PROMOTION"
	CategoryNotice    Category = "NOTICE"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryGeneral, CategoryQuestion, CategoryFeedback, CategoryPromotion, CategoryNotice}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string { return string(c) }
