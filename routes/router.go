package routes

import (
	"net/http"
	"strings"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/cocodas/prierboard/config"
	"github.com/cocodas/prierboard/controllers"
	"github.com/cocodas/prierboard/middleware"
	"github.com/cocodas/prierboard/utils"
)

// Deps carries everything the router hands to controllers and middleware.
type Deps struct {
	Config    config.AppConfig
	Posts     controllers.PostUseCases
	Likes     controllers.LikeUseCases
	Comments  controllers.CommentUseCases
	Identity  middleware.CredentialResolver
	Revoker   controllers.CredentialRevoker
	AccessLog *zap.Logger
	Tracing   bool
	Sentry    bool
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config
	switch strings.ToLower(cfg.Gin.Mode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}
	if err := controllers.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	if deps.AccessLog != nil {
		r.Use(utils.Ginzap(deps.AccessLog, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(deps.AccessLog, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}
	if deps.Tracing {
		r.Use(otelgin.Middleware(cfg.App.Name))
	}
	if deps.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.App.AllowedOrigins) == 0 || (len(cfg.App.AllowedOrigins) == 1 && cfg.App.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.App.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// the local object store is served straight from disk
	if strings.EqualFold(cfg.Storage.Driver, "local") || cfg.Storage.Driver == "" {
		if prefix := localPrefix(cfg.Storage.PublicBaseURL); prefix != "" {
			r.Static(prefix, cfg.Storage.LocalDir)
		}
	}

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	postController := controllers.NewPostController(deps.Posts, deps.Likes)
	commentController := controllers.NewCommentController(deps.Comments)
	authController := controllers.NewAuthController(deps.Revoker)

	api := r.Group("/api/v1")
	api.Use(middleware.AuthRequired(deps.Identity))

	api.POST("/auth/logout", authController.Logout)

	api.GET("/posts", postController.ListPosts)
	api.GET("/posts/search", postController.SearchPosts)
	api.GET("/posts/me", postController.ListMyPosts)
	api.GET("/posts/liked", postController.ListLikedPosts)
	api.GET("/posts/:id", postController.GetPost)

	writes := api.Group("")
	writes.Use(middleware.RateLimitMiddleware(cfg.App.RateLimitPerMinute))
	writes.POST("/posts", postController.CreatePost)
	writes.PUT("/posts/:id", postController.UpdatePost)
	writes.DELETE("/posts/:id", postController.DeletePost)
	writes.POST("/posts/:id/like", postController.LikePost)
	writes.DELETE("/posts/:id/like", postController.UnlikePost)
	writes.POST("/posts/:id/comments", commentController.CreateComment)
	writes.DELETE("/comments/:commentId", commentController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
			utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"message": "not found"})
	})

	return r, nil
}

// localPrefix returns the path part of a relative public base URL such as "/static/uploads".
// Absolute URLs point at a CDN or another host and are not served here.
func localPrefix(baseURL string) string {
	if !strings.HasPrefix(baseURL, "/") || strings.HasPrefix(baseURL, "//") {
		return ""
	}
	return strings.TrimSuffix(baseURL, "/")
}
