package services

import "context"

// LikeService records and withdraws likes. Both operations are idempotent.
type LikeService struct {
	likes    LikeStore
	posts    PostStore
	identity IdentityResolver
}

func NewLikeService(likes LikeStore, posts PostStore, identity IdentityResolver) *LikeService {
	return &LikeService{likes: likes, posts: posts, identity: identity}
}

func (s *LikeService) Like(ctx context.Context, credential string, postID uint) error {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return err
	}
	if _, err := s.posts.FindByID(ctx, postID); err != nil {
		return err
	}
	return s.likes.Create(ctx, callerID, postID)
}

func (s *LikeService) Unlike(ctx context.Context, credential string, postID uint) error {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return err
	}
	return s.likes.Delete(ctx, callerID, postID)
}
