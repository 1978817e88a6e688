package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cocodas/prierboard/middleware"
	"github.com/cocodas/prierboard/services"
	"github.com/cocodas/prierboard/utils"
)

// PostUseCases is implemented by services.PostService.
type PostUseCases interface {
	ListAll(ctx context.Context, credential string, page services.Page) (*services.PostListResponse, error)
	GetDetail(ctx context.Context, credential string, postID uint) (*services.PostDetailResponse, error)
	SearchByKeyword(ctx context.Context, credential, keyword string, page services.Page) (*services.PostListResponse, error)
	MyPosts(ctx context.Context, credential string, page services.Page) (*services.PostListResponse, error)
	LikedPosts(ctx context.Context, credential string, page services.Page) (*services.PostListResponse, error)
	AddPost(ctx context.Context, credential string, in services.PostInput, files []services.UploadFile) (uint, error)
	UpdatePost(ctx context.Context, credential string, postID uint, in services.PostInput, files []services.UploadFile) error
	DeletePost(ctx context.Context, credential string, postID uint) error
}

// LikeUseCases is implemented by services.LikeService.
type LikeUseCases interface {
	Like(ctx context.Context, credential string, postID uint) error
	Unlike(ctx context.Context, credential string, postID uint) error
}

// mediaField is the multipart field carrying attachments.
const mediaField = "media"

// PostController exposes the post use-cases over HTTP.
type PostController struct {
	posts PostUseCases
	likes LikeUseCases
}

func NewPostController(posts PostUseCases, likes LikeUseCases) *PostController {
	return &PostController{posts: posts, likes: likes}
}

type postRequest struct {
	Title      string   `form:"title" json:"title" binding:"required,max=255"`
	Category   string   `form:"category" json:"category" binding:"omitempty,post_category"`
	Content    string   `form:"content" json:"content" binding:"required"`
	DeleteKeys []string `form:"delete_keys" json:"delete_keys"`
}

// ListPosts returns the newest posts.
func (p *PostController) ListPosts(ctx *gin.Context) {
	resp, err := p.posts.ListAll(ctx.Request.Context(), middleware.Credential(ctx), pageOf(ctx))
	if err != nil {
		respondError(ctx, err, 50021)
		return
	}
	utils.Success(ctx, resp)
}

// GetPost returns a post with media and comments and counts the view.
func (p *PostController) GetPost(ctx *gin.Context) {
	postID, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	resp, err := p.posts.GetDetail(ctx.Request.Context(), middleware.Credential(ctx), postID)
	if err != nil {
		respondError(ctx, err, 50023)
		return
	}
	utils.Success(ctx, resp)
}

// SearchPosts matches the keyword against titles and contents.
func (p *PostController) SearchPosts(ctx *gin.Context) {
	resp, err := p.posts.SearchByKeyword(ctx.Request.Context(), middleware.Credential(ctx), ctx.Query("keyword"), pageOf(ctx))
	if err != nil {
		respondError(ctx, err, 50022)
		return
	}
	utils.Success(ctx, resp)
}

// ListMyPosts returns the caller's own posts.
func (p *PostController) ListMyPosts(ctx *gin.Context) {
	resp, err := p.posts.MyPosts(ctx.Request.Context(), middleware.Credential(ctx), pageOf(ctx))
	if err != nil {
		respondError(ctx, err, 50024)
		return
	}
	utils.Success(ctx, resp)
}

// ListLikedPosts returns posts the caller liked.
func (p *PostController) ListLikedPosts(ctx *gin.Context) {
	resp, err := p.posts.LikedPosts(ctx.Request.Context(), middleware.Credential(ctx), pageOf(ctx))
	if err != nil {
		respondError(ctx, err, 50029)
		return
	}
	utils.Success(ctx, resp)
}

// CreatePost accepts a multipart form (or JSON without attachments).
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "invalid request payload")
		return
	}
	files, err := uploadedFiles(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid multipart form")
		return
	}

	postID, err := p.posts.AddPost(ctx.Request.Context(), middleware.Credential(ctx), req.input(), files)
	if err != nil {
		respondError(ctx, err, 50020)
		return
	}
	utils.Created(ctx, gin.H{"post_id": postID})
}

// UpdatePost rewrites the caller's post; delete_keys drops attachments, media adds new ones.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	postID, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req postRequest
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}
	files, err := uploadedFiles(ctx)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid multipart form")
		return
	}

	if err := p.posts.UpdatePost(ctx.Request.Context(), middleware.Credential(ctx), postID, req.input(), files); err != nil {
		respondError(ctx, err, 50026)
		return
	}
	utils.Success(ctx, gin.H{"message": "post updated"})
}

// DeletePost removes the caller's post with everything attached to it.
func (p *PostController) DeletePost(ctx *gin.Context) {
	postID, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := p.posts.DeletePost(ctx.Request.Context(), middleware.Credential(ctx), postID); err != nil {
		respondError(ctx, err, 50028)
		return
	}
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

func (p *PostController) LikePost(ctx *gin.Context) {
	postID, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := p.likes.Like(ctx.Request.Context(), middleware.Credential(ctx), postID); err != nil {
		respondError(ctx, err, 50040)
		return
	}
	utils.Success(ctx, gin.H{"liked": true})
}

func (p *PostController) UnlikePost(ctx *gin.Context) {
	postID, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	if err := p.likes.Unlike(ctx.Request.Context(), middleware.Credential(ctx), postID); err != nil {
		respondError(ctx, err, 50041)
		return
	}
	utils.Success(ctx, gin.H{"liked": false})
}

func (r postRequest) input() services.PostInput {
	return services.PostInput{
		Title:      r.Title,
		Category:   r.Category,
		Content:    r.Content,
		DeleteKeys: utils.Unique(r.DeleteKeys),
	}
}

// uploadedFiles collects the attachments of a multipart request. Other content types
// simply carry none.
func uploadedFiles(ctx *gin.Context) ([]services.UploadFile, error) {
	form, err := ctx.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	headers := form.File[mediaField]
	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, services.UploadFile{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open:     func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return files, nil
}

func pageOf(ctx *gin.Context) services.Page {
	page, _ := strconv.Atoi(ctx.Query("page"))
	size, _ := strconv.Atoi(ctx.Query("page_size"))
	return services.Page{Number: page, Size: size}
}

// idParam parses a positive numeric path parameter and answers 400 otherwise.
func idParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
