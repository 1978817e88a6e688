package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cocodas/prierboard/models"
)

type commentListerFunc func(ctx context.Context, postID uint) ([]CommentView, error)

func (f commentListerFunc) ListByPost(ctx context.Context, postID uint) ([]CommentView, error) {
	return f(ctx, postID)
}

type postFixture struct {
	posts    *MockPostStore
	likes    *MockLikeStore
	identity *MockIdentityResolver
	media    *MockMediaStore
	objects  *fakeObjects
	svc      *PostService
}

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	f := &postFixture{
		posts:    new(MockPostStore),
		likes:    new(MockLikeStore),
		identity: new(MockIdentityResolver),
		media:    new(MockMediaStore),
		objects:  newFakeObjects(),
	}
	mediaSvc := NewMediaService(f.media, f.objects, MediaOptions{StagingDir: t.TempDir()}, nil)
	f.svc = NewPostService(PostServiceDeps{
		Tx:       inlineTx{},
		Posts:    f.posts,
		Likes:    f.likes,
		Identity: f.identity,
		Media:    mediaSvc,
		Comments: commentListerFunc(func(context.Context, uint) ([]CommentView, error) { return []CommentView{}, nil }),
		URLs:     f.objects,
		Limits:   PageLimits{DefaultSize: 20, MaxSize: 100},
		Now:      func() time.Time { return fixedNow },
	})
	return f
}

func (f *postFixture) caller(credential string, userID uint) {
	f.identity.On("UserIDFromCredential", mock.Anything, credential).Return(userID, nil)
	f.identity.On("ProfileSummary", mock.Anything, userID).
		Return(ProfileSummary{UserID: userID, ImageURL: "https://cdn.test/me"}, nil)
}

func post(id, owner uint, at time.Time, likers ...uint) models.Post {
	p := models.Post{
		ID:        id,
		UserID:    owner,
		Title:     "title",
		Content:   "content",
		Category:  models.CategoryGeneral,
		CreatedAt: at,
		User:      models.User{ID: owner, Nickname: "owner", ImageKey: "avatar.png"},
	}
	for _, u := range likers {
		p.Likes = append(p.Likes, models.Like{UserID: u, PostID: id})
	}
	return p
}

func TestPostService_RejectsUnknownCredential(t *testing.T) {
	f := newPostFixture(t)
	f.identity.On("UserIDFromCredential", mock.Anything, "bad").Return(uint(0), ErrUnauthenticated)

	_, err := f.svc.ListAll(context.Background(), "bad", Page{})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = f.svc.GetDetail(context.Background(), "bad", 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	err = f.svc.DeletePost(context.Background(), "bad", 1)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	f.posts.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything, mock.Anything)
	f.posts.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
}

func TestPostService_ListAllSummaries(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 42)
	posts := []models.Post{post(2, 7, fixedNow, 42, 8), post(1, 7, fixedNow.Add(-time.Hour), 8)}
	f.posts.On("FindAll", mock.Anything, 0, 20).Return(posts, nil)

	resp, err := f.svc.ListAll(context.Background(), "tok", Page{Number: 0, Size: 0})
	require.NoError(t, err)

	assert.Equal(t, Page{Number: 1, Size: 20}, resp.Page)
	assert.Equal(t, uint(42), resp.MyProfile.UserID)
	require.Len(t, resp.Posts, 2)
	assert.True(t, resp.Posts[0].LikedByCaller)
	assert.Equal(t, 2, resp.Posts[0].LikeCount)
	assert.False(t, resp.Posts[1].LikedByCaller)
	assert.Equal(t, "owner", resp.Posts[0].Nickname)
	assert.Equal(t, "https://cdn.test/avatar.png", resp.Posts[0].ProfileImageURL)
	assert.Equal(t, "GENERAL", resp.Posts[0].Category)
}

func TestPostService_ListAllCapsPageSize(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 1)
	f.posts.On("FindAll", mock.Anything, 200, 100).Return([]models.Post{}, nil)

	resp, err := f.svc.ListAll(context.Background(), "tok", Page{Number: 3, Size: 5000})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Page.Size)
	assert.Empty(t, resp.Posts)
}

func TestPostService_SearchUnionsAndDeduplicates(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 1)
	p1 := post(1, 2, fixedNow.Add(-3*time.Hour))
	p2 := post(2, 2, fixedNow.Add(-2*time.Hour))
	p3 := post(3, 2, fixedNow.Add(-time.Hour))
	f.posts.On("FindByTitleContaining", mock.Anything, "go", 20).Return([]models.Post{p2, p1}, nil)
	f.posts.On("FindByContentContaining", mock.Anything, "go", 20).Return([]models.Post{p3, p2}, nil)

	resp, err := f.svc.SearchByKeyword(context.Background(), "tok", "  go ", Page{})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 3)
	assert.Equal(t, uint(3), resp.Posts[0].PostID)
	assert.Equal(t, uint(2), resp.Posts[1].PostID)
	assert.Equal(t, uint(1), resp.Posts[2].PostID)
}

func TestPostService_SearchWindowsTheUnion(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 1)
	p1 := post(1, 2, fixedNow.Add(-3*time.Hour))
	p2 := post(2, 2, fixedNow.Add(-2*time.Hour))
	p3 := post(3, 2, fixedNow.Add(-time.Hour))
	f.posts.On("FindByTitleContaining", mock.Anything, "go", 4).Return([]models.Post{p3, p1}, nil)
	f.posts.On("FindByContentContaining", mock.Anything, "go", 4).Return([]models.Post{p2}, nil)

	resp, err := f.svc.SearchByKeyword(context.Background(), "tok", "go", Page{Number: 2, Size: 2})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, uint(1), resp.Posts[0].PostID)
}

func TestPostService_SearchWithHugePageNumber(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 1)
	f.posts.On("FindByTitleContaining", mock.Anything, "go", mock.MatchedBy(func(limit int) bool { return limit > 0 })).
		Return([]models.Post{post(1, 2, fixedNow)}, nil)
	f.posts.On("FindByContentContaining", mock.Anything, "go", mock.MatchedBy(func(limit int) bool { return limit > 0 })).
		Return([]models.Post{}, nil)

	resp, err := f.svc.SearchByKeyword(context.Background(), "tok", "go", Page{Number: 1 << 62, Size: 20})
	require.NoError(t, err)
	assert.Empty(t, resp.Posts)
	assert.Positive(t, resp.Page.Offset())
}

func TestPostService_SearchEscapesContentKeyword(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 1)
	f.posts.On("FindByTitleContaining", mock.Anything, "Tom & Jerry", 20).Return([]models.Post{}, nil)
	f.posts.On("FindByContentContaining", mock.Anything, "Tom &amp; Jerry", 20).Return([]models.Post{post(1, 2, fixedNow)}, nil)

	resp, err := f.svc.SearchByKeyword(context.Background(), "tok", "Tom & Jerry", Page{})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
}

func TestPostService_SearchRequiresKeyword(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 1)
	_, err := f.svc.SearchByKeyword(context.Background(), "tok", "   ", Page{})
	assert.True(t, IsValidationError(err))
}

func TestPostService_LikedPostsFollowLikeOrder(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 9)
	f.likes.On("FindByOwner", mock.Anything, uint(9), 0, 20).
		Return([]models.Like{{UserID: 9, PostID: 5}, {UserID: 9, PostID: 4}, {UserID: 9, PostID: 6}}, nil)
	// post 6 was deleted in the meantime
	f.posts.On("FindAllByIDs", mock.Anything, []uint{5, 4, 6}).
		Return([]models.Post{post(4, 1, fixedNow, 9), post(5, 1, fixedNow, 9)}, nil)

	resp, err := f.svc.LikedPosts(context.Background(), "tok", Page{})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 2)
	assert.Equal(t, uint(5), resp.Posts[0].PostID)
	assert.Equal(t, uint(4), resp.Posts[1].PostID)
	assert.True(t, resp.Posts[0].LikedByCaller)
}

func TestPostService_MyPosts(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 3)
	f.posts.On("FindByOwner", mock.Anything, uint(3), 10, 10).Return([]models.Post{post(1, 3, fixedNow)}, nil)

	resp, err := f.svc.MyPosts(context.Background(), "tok", Page{Number: 2, Size: 10})
	require.NoError(t, err)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, uint(3), resp.Posts[0].UserID)
}

func TestPostService_GetDetailNotFound(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 3)
	f.posts.On("IncrementViews", mock.Anything, uint(77)).Return(ErrPostNotFound)

	_, err := f.svc.GetDetail(context.Background(), "tok", 77)
	assert.ErrorIs(t, err, ErrPostNotFound)
	f.posts.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestPostService_GetDetailAssemblesOwnerAndMedia(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 3)
	p := post(8, 5, fixedNow, 3)
	p.Views = 1
	p.Media = []models.PostMedia{{ID: 4, StorageKey: "b"}, {ID: 2, StorageKey: "a"}}
	f.posts.On("IncrementViews", mock.Anything, uint(8)).Return(nil)
	f.posts.On("FindByID", mock.Anything, uint(8)).Return(&p, nil)
	f.identity.On("ProfileSummary", mock.Anything, uint(5)).
		Return(ProfileSummary{UserID: 5, ImageURL: "https://cdn.test/owner"}, nil)

	resp, err := f.svc.GetDetail(context.Background(), "tok", 8)
	require.NoError(t, err)
	assert.Equal(t, uint(5), resp.OwnerProfile.UserID)
	assert.True(t, resp.LikedByCaller)
	assert.EqualValues(t, 1, resp.Views)
	require.Len(t, resp.Media, 2)
	assert.Equal(t, "a", resp.Media[0].StorageKey)
	assert.NotNil(t, resp.Comments)
}

func TestPostService_AddPostValidatesInput(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 3)

	_, err := f.svc.AddPost(context.Background(), "tok", PostInput{Title: "  ", Content: "x"}, nil)
	assert.True(t, IsValidationError(err))
	_, err = f.svc.AddPost(context.Background(), "tok", PostInput{Title: "t", Content: "x", Category: "gossip"}, nil)
	assert.True(t, IsValidationError(err))
	f.posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPostService_AddPostCreatesOwnedPost(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 3)
	f.posts.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Post) bool {
		return p.UserID == 3 && p.Title == "Hello" && p.Category == models.CategoryQuestion && p.CreatedAt.Equal(fixedNow)
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Post).ID = 11
	}).Return(nil)
	f.media.On("Create", mock.Anything, mock.Anything).Return(nil)

	id, err := f.svc.AddPost(context.Background(), "tok",
		PostInput{Title: "<b>Hello</b>", Category: "question", Content: "world"},
		[]UploadFile{fileOf("a.png", "A")})
	require.NoError(t, err)
	assert.Equal(t, uint(11), id)
	assert.Equal(t, 1, f.objects.count())
	f.posts.AssertExpectations(t)
}

func TestPostService_AddPostUploadFailureLeavesNoObjects(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 3)
	f.objects.failUpload[".gif"] = true
	f.posts.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.media.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.AddPost(context.Background(), "tok",
		PostInput{Title: "t", Content: "c"},
		[]UploadFile{fileOf("a.png", "A"), fileOf("b.gif", "B")})
	assert.True(t, IsMediaIOError(err))
	assert.Zero(t, f.objects.count())
}

func TestPostService_UpdatePostForbiddenForNonOwner(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 3)
	p := post(8, 5, fixedNow)
	f.posts.On("FindByID", mock.Anything, uint(8)).Return(&p, nil)

	err := f.svc.UpdatePost(context.Background(), "tok", 8, PostInput{Title: "new", Content: "new"}, nil)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "title", p.Title)
	f.posts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestPostService_UpdatePostWritesFieldsAndReconciles(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 5)
	p := post(8, 5, fixedNow)
	f.posts.On("FindByID", mock.Anything, uint(8)).Return(&p, nil)
	f.posts.On("Update", mock.Anything, mock.MatchedBy(func(u *models.Post) bool {
		return u.Title == "new" && u.Category == models.CategoryNotice && u.UpdatedAt != nil && u.UpdatedAt.Equal(fixedNow)
	})).Return(nil)
	f.media.On("FindByPost", mock.Anything, uint(8)).Return([]models.PostMedia{}, nil)
	f.media.On("Replace", mock.Anything, uint(8), mock.Anything).Return(nil)

	err := f.svc.UpdatePost(context.Background(), "tok", 8, PostInput{Title: "new", Category: "NOTICE", Content: "body"}, nil)
	require.NoError(t, err)
	f.posts.AssertExpectations(t)
	f.media.AssertExpectations(t)
}

func TestPostService_UpdatePostConflict(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 5)
	p := post(8, 5, fixedNow)
	f.posts.On("FindByID", mock.Anything, uint(8)).Return(&p, nil)
	f.posts.On("Update", mock.Anything, mock.Anything).Return(ErrConflict)

	err := f.svc.UpdatePost(context.Background(), "tok", 8, PostInput{Title: "new", Content: "body"}, []UploadFile{fileOf("x.png", "X")})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Zero(t, f.objects.count())
}

func TestPostService_DeletePost(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 5)
	p := post(8, 5, fixedNow)
	f.posts.On("FindByID", mock.Anything, uint(8)).Return(&p, nil)
	f.media.On("FindByPost", mock.Anything, uint(8)).
		Return([]models.PostMedia{{ID: 1, StorageKey: "k1"}, {ID: 2, StorageKey: "k2"}}, nil)
	f.media.On("Delete", mock.Anything, mock.Anything).Return(nil)
	f.posts.On("Delete", mock.Anything, uint(8)).Return(nil)

	require.NoError(t, f.svc.DeletePost(context.Background(), "tok", 8))
	assert.Equal(t, []string{"k1", "k2"}, f.objects.deleted)
	f.media.AssertNumberOfCalls(t, "Delete", 2)
	f.posts.AssertCalled(t, "Delete", mock.Anything, uint(8))
}

func TestPostService_DeletePostForbidden(t *testing.T) {
	f := newPostFixture(t)
	f.caller("tok", 6)
	p := post(8, 5, fixedNow)
	f.posts.On("FindByID", mock.Anything, uint(8)).Return(&p, nil)

	assert.ErrorIs(t, f.svc.DeletePost(context.Background(), "tok", 8), ErrForbidden)
	f.media.AssertNotCalled(t, "FindByPost", mock.Anything, mock.Anything)
}

func TestLikedBy(t *testing.T) {
	likes := []models.Like{{UserID: 1}, {UserID: 2}}
	assert.True(t, likedBy(likes, 2))
	assert.False(t, likedBy(likes, 3))
	assert.False(t, likedBy(nil, 1))
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryGeneral, c)

	c, err = ParseCategory(" Feedback ")
	require.NoError(t, err)
	assert.Equal(t, models.CategoryFeedback, c)

	_, err = ParseCategory("misc")
	assert.True(t, IsValidationError(err))
}
