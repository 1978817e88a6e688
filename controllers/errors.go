package controllers

import (
	"errors"
	"fmt"
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cocodas/prierboard/services"
	"github.com/cocodas/prierboard/utils"
)

// respondError translates service errors into the JSON envelope. Unexpected errors get
// fallbackCode so each handler stays identifiable in client reports.
func respondError(ctx *gin.Context, err error, fallbackCode int) {
	var valErr *services.ValidationError
	var ioErr *services.MediaIOError

	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	case errors.Is(err, services.ErrPostNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
	case errors.Is(err, services.ErrCommentNotFound):
		utils.Error(ctx, http.StatusNotFound, 40402, "comment not found")
	case errors.Is(err, services.ErrUserNotFound):
		utils.Error(ctx, http.StatusNotFound, 40403, "user not found")
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40301, "you can only modify your own content")
	case errors.Is(err, services.ErrConflict):
		utils.Error(ctx, http.StatusConflict, 40901, "post was modified concurrently, reload and retry")
	case errors.As(err, &valErr):
		utils.Error(ctx, http.StatusBadRequest, 40020, valErr.Message)
	case errors.As(err, &ioErr):
		report(ctx, err)
		utils.Error(ctx, http.StatusInternalServerError, 50030, fmt.Sprintf("failed to %s media", ioErr.Op))
	default:
		report(ctx, err)
		utils.Error(ctx, http.StatusInternalServerError, fallbackCode, "internal server error")
	}
}

func report(ctx *gin.Context, err error) {
	utils.Logger.Error("request failed",
		zap.String("method", ctx.Request.Method),
		zap.String("path", ctx.FullPath()),
		zap.Error(err))
	if hub := sentrygin.GetHubFromContext(ctx); hub != nil {
		hub.CaptureException(err)
	}
}
