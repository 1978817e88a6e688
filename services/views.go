package services

import "time"

// ProfileSummary is the public face of a user shown next to posts.
type ProfileSummary struct {
	UserID   uint   `json:"user_id"`
	ImageURL string `json:"image_url"`
}

type MediaDetail struct {
	Metadata   string `json:"metadata"`
	MediaType  string `json:"media_type"`
	StorageKey string `json:"storage_key"`
	URL        string `json:"url"`
}

// PostSummary is one row of a post list.
type PostSummary struct {
	PostID          uint          `json:"post_id"`
	UserID          uint          `json:"user_id"`
	ProfileImageURL string        `json:"profile_image_url"`
	Title           string        `json:"title"`
	Content         string        `json:"content"`
	Nickname        string        `json:"nickname"`
	Category        string        `json:"category"`
	LikedByCaller   bool          `json:"liked"`
	Media           []MediaDetail `json:"media"`
	Views           int64         `json:"views"`
	LikeCount       int           `json:"like_count"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       *time.Time    `json:"updated_at"`
}

type PostListResponse struct {
	Posts     []PostSummary  `json:"posts"`
	MyProfile ProfileSummary `json:"my_profile"`
	Page      Page           `json:"pagination"`
}

type PostDetailResponse struct {
	PostSummary
	Comments     []CommentView  `json:"comments"`
	OwnerProfile ProfileSummary `json:"profile"`
}

type CommentView struct {
	CommentID       uint      `json:"comment_id"`
	PostID          uint      `json:"post_id"`
	UserID          uint      `json:"user_id"`
	Nickname        string    `json:"nickname"`
	ProfileImageURL string    `json:"profile_image_url"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
