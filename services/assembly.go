package services

import "github.com/cocodas/prierboard/models"

// summarize builds the list row for post. It reads only what the store preloaded
// (owner, likes, media) and never touches a store itself.
func summarize(post *models.Post, callerID uint, urls URLResolver) PostSummary {
	return PostSummary{
		PostID:          post.ID,
		UserID:          post.UserID,
		ProfileImageURL: urls.PublicURL(post.User.ImageKey),
		Title:           post.Title,
		Content:         post.Content,
		Nickname:        post.User.Nickname,
		Category:        post.Category.String(),
		LikedByCaller:   likedBy(post.Likes, callerID),
		Media:           mediaDetails(post.Media, urls),
		Views:           post.Views,
		LikeCount:       len(post.Likes),
		CreatedAt:       post.CreatedAt,
		UpdatedAt:       post.UpdatedAt,
	}
}

func summarizeAll(posts []models.Post, callerID uint, urls URLResolver) []PostSummary {
	out := make([]PostSummary, 0, len(posts))
	for i := range posts {
		out = append(out, summarize(&posts[i], callerID, urls))
	}
	return out
}

func likedBy(likes []models.Like, userID uint) bool {
	for _, l := range likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}
