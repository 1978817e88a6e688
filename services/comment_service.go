package services

import (
	"context"
	"strings"

	"github.com/cocodas/prierboard/models"
	"github.com/cocodas/prierboard/utils"
)

// CommentService serves the discussion thread under a post.
type CommentService struct {
	comments CommentStore
	posts    PostStore
	identity IdentityResolver
	urls     URLResolver
}

func NewCommentService(comments CommentStore, posts PostStore, identity IdentityResolver, urls URLResolver) *CommentService {
	return &CommentService{comments: comments, posts: posts, identity: identity, urls: urls}
}

// ListByPost returns the comments of postID, oldest first.
func (s *CommentService) ListByPost(ctx context.Context, postID uint) ([]CommentView, error) {
	comments, err := s.comments.FindByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, s.view(&comments[i]))
	}
	return views, nil
}

func (s *CommentService) Create(ctx context.Context, credential string, postID uint, content string) (*CommentView, error) {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(utils.Sanitize(content))
	if content == "" {
		return nil, NewValidationError("content", "comment cannot be empty")
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, UserID: callerID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	// reload for the author preload
	saved, err := s.comments.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	view := s.view(saved)
	return &view, nil
}

// Delete removes a comment; only its author may do so.
func (s *CommentService) Delete(ctx context.Context, credential string, commentID uint) error {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return err
	}
	comment, err := s.comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != callerID {
		return ErrForbidden
	}
	return s.comments.Delete(ctx, commentID)
}

func (s *CommentService) view(c *models.Comment) CommentView {
	return CommentView{
		CommentID:       c.ID,
		PostID:          c.PostID,
		UserID:          c.UserID,
		Nickname:        c.User.Nickname,
		ProfileImageURL: s.urls.PublicURL(c.User.ImageKey),
		Content:         c.Content,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
