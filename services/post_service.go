package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cocodas/prierboard/models"
)

// PostServiceDeps lists the collaborators of PostService.
type PostServiceDeps struct {
	Tx       Transactor
	Posts    PostStore
	Likes    LikeStore
	Identity IdentityResolver
	Media    MediaLifecycle
	Comments CommentLister
	URLs     URLResolver
	Limits   PageLimits
	Logger   *zap.Logger
	Now      func() time.Time
}

// PostService implements the post use-cases: listing, detail, search and owner-only writes.
type PostService struct {
	tx       Transactor
	posts    PostStore
	likes    LikeStore
	identity IdentityResolver
	media    MediaLifecycle
	comments CommentLister
	urls     URLResolver
	limits   PageLimits
	logger   *zap.Logger
	now      func() time.Time
}

func NewPostService(deps PostServiceDeps) *PostService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &PostService{
		tx:       deps.Tx,
		posts:    deps.Posts,
		likes:    deps.Likes,
		identity: deps.Identity,
		media:    deps.Media,
		comments: deps.Comments,
		urls:     deps.URLs,
		limits:   deps.Limits,
		logger:   deps.Logger,
		now:      deps.Now,
	}
}

// ListAll returns one page of posts, newest first.
func (s *PostService) ListAll(ctx context.Context, credential string, page Page) (*PostListResponse, error) {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return nil, err
	}
	page = s.limits.Normalize(page)
	posts, err := s.posts.FindAll(ctx, page.Offset(), page.Size)
	if err != nil {
		return nil, err
	}
	return s.listResponse(ctx, callerID, posts, page)
}

// GetDetail returns the full view of one post and counts the read.
func (s *PostService) GetDetail(ctx context.Context, credential string, postID uint) (*PostDetailResponse, error) {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return nil, err
	}
	if err := s.posts.IncrementViews(ctx, postID); err != nil {
		return nil, err
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	owner, err := s.identity.ProfileSummary(ctx, post.UserID)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	summary := summarize(post, callerID, s.urls)
	summary.Media = s.media.DetailView(post)
	return &PostDetailResponse{
		PostSummary:  summary,
		Comments:     comments,
		OwnerProfile: owner,
	}, nil
}

// SearchByKeyword returns posts whose title or content contains keyword.
func (s *PostService) SearchByKeyword(ctx context.Context, credential, keyword string, page Page) (*PostListResponse, error) {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return nil, err
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, NewValidationError("keyword", "keyword cannot be empty")
	}
	page = s.limits.Normalize(page)

	// each side is capped at the end of the requested window; the union sorted the
	// same way cannot need anything beyond it
	limit := page.Offset() + page.Size
	byTitle, err := s.posts.FindByTitleContaining(ctx, keyword, limit)
	if err != nil {
		return nil, err
	}
	var byContent []models.Post
	if kw := contentKeyword(keyword); kw != "" {
		byContent, err = s.posts.FindByContentContaining(ctx, kw, limit)
		if err != nil {
			return nil, err
		}
	}

	merged := make([]models.Post, 0, len(byTitle)+len(byContent))
	seen := make(map[uint]struct{}, len(byTitle)+len(byContent))
	for _, set := range [][]models.Post{byTitle, byContent} {
		for _, p := range set {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	sortNewestFirst(merged)
	return s.listResponse(ctx, callerID, window(merged, page), page)
}

// MyPosts lists the caller's own posts.
func (s *PostService) MyPosts(ctx context.Context, credential string, page Page) (*PostListResponse, error) {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return nil, err
	}
	page = s.limits.Normalize(page)
	posts, err := s.posts.FindByOwner(ctx, callerID, page.Offset(), page.Size)
	if err != nil {
		return nil, err
	}
	return s.listResponse(ctx, callerID, posts, page)
}

// LikedPosts lists posts the caller liked, most recent like first.
func (s *PostService) LikedPosts(ctx context.Context, credential string, page Page) (*PostListResponse, error) {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return nil, err
	}
	page = s.limits.Normalize(page)
	likes, err := s.likes.FindByOwner(ctx, callerID, page.Offset(), page.Size)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(likes))
	for _, l := range likes {
		ids = append(ids, l.PostID)
	}
	posts, err := s.posts.FindAllByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]models.Post, 0, len(posts))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return s.listResponse(ctx, callerID, ordered, page)
}

// AddPost creates a post owned by the caller with its attachments. Either the post and
// all media are stored, or nothing is.
func (s *PostService) AddPost(ctx context.Context, credential string, in PostInput, files []UploadFile) (uint, error) {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return 0, err
	}
	fields, err := in.clean()
	if err != nil {
		return 0, err
	}

	post := &models.Post{
		UserID:    callerID,
		Title:     fields.title,
		Content:   fields.content,
		Category:  fields.category,
		CreatedAt: s.now(),
	}
	var uploaded []models.PostMedia
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.posts.Create(ctx, post); err != nil {
			return err
		}
		media, err := s.media.Upload(ctx, post, files)
		if err != nil {
			return err
		}
		uploaded = media
		return nil
	})
	if err != nil {
		s.media.Discard(ctx, uploaded)
		return 0, err
	}

	s.logger.Info("post created",
		zap.Uint("post_id", post.ID),
		zap.Uint("user_id", callerID),
		zap.Int("media", len(uploaded)))
	return post.ID, nil
}

// UpdatePost rewrites title, category and content of the caller's post and reconciles
// its attachments: DeleteKeys are removed, files are added.
func (s *PostService) UpdatePost(ctx context.Context, credential string, postID uint, in PostInput, files []UploadFile) error {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return err
	}

	var added []models.PostMedia
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		post, err := s.ownedPost(ctx, callerID, postID)
		if err != nil {
			return err
		}
		fields, err := in.clean()
		if err != nil {
			return err
		}
		now := s.now()
		post.Title = fields.title
		post.Category = fields.category
		post.Content = fields.content
		post.UpdatedAt = &now
		if err := s.posts.Update(ctx, post); err != nil {
			return err
		}
		media, err := s.media.Reconcile(ctx, in.DeleteKeys, post, files)
		if err != nil {
			return err
		}
		added = media
		return nil
	})
	if err != nil {
		s.media.Discard(ctx, added)
		return err
	}
	s.logger.Info("post updated", zap.Uint("post_id", postID), zap.Uint("user_id", callerID))
	return nil
}

// DeletePost removes the caller's post with its media, likes and comments.
func (s *PostService) DeletePost(ctx context.Context, credential string, postID uint) error {
	callerID, err := s.identity.UserIDFromCredential(ctx, credential)
	if err != nil {
		return err
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		post, err := s.ownedPost(ctx, callerID, postID)
		if err != nil {
			return err
		}
		if err := s.media.DeleteAll(ctx, post); err != nil {
			return err
		}
		return s.posts.Delete(ctx, post.ID)
	})
	if err != nil {
		return err
	}
	s.logger.Info("post deleted", zap.Uint("post_id", postID), zap.Uint("user_id", callerID))
	return nil
}

func (s *PostService) ownedPost(ctx context.Context, callerID, postID uint) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID {
		return nil, ErrForbidden
	}
	return post, nil
}

func (s *PostService) listResponse(ctx context.Context, callerID uint, posts []models.Post, page Page) (*PostListResponse, error) {
	me, err := s.identity.ProfileSummary(ctx, callerID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return &PostListResponse{
		Posts:     summarizeAll(posts, callerID, s.urls),
		MyProfile: me,
		Page:      page,
	}, nil
}

// sortNewestFirst matches the order the store uses for every post list.
func sortNewestFirst(posts []models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
}
