package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cocodas/prierboard/middleware"
	"github.com/cocodas/prierboard/services"
	"github.com/cocodas/prierboard/utils"
)

// CommentUseCases is implemented by services.CommentService.
type CommentUseCases interface {
	Create(ctx context.Context, credential string, postID uint, content string) (*services.CommentView, error)
	Delete(ctx context.Context, credential string, commentID uint) error
}

type CommentController struct {
	comments CommentUseCases
}

func NewCommentController(comments CommentUseCases) *CommentController {
	return &CommentController{comments: comments}
}

// CreateComment adds a reply to a post.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	postID, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" form:"content" binding:"required"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	comment, err := c.comments.Create(ctx.Request.Context(), middleware.Credential(ctx), postID, req.Content)
	if err != nil {
		respondError(ctx, err, 50070)
		return
	}
	utils.Created(ctx, gin.H{"comment": comment})
}

// DeleteComment lets an author remove their own comment.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	commentID, ok := idParam(ctx, "commentId")
	if !ok {
		return
	}
	if err := c.comments.Delete(ctx.Request.Context(), middleware.Credential(ctx), commentID); err != nil {
		respondError(ctx, err, 50071)
		return
	}
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
