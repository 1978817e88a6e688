package main

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cocodas/prierboard/config"
	"github.com/cocodas/prierboard/models"
	"github.com/cocodas/prierboard/repositories"
	"github.com/cocodas/prierboard/routes"
	"github.com/cocodas/prierboard/services"
	"github.com/cocodas/prierboard/storage"
	"github.com/cocodas/prierboard/utils"
)

const stagingSweepInterval = 5 * time.Minute

func main() {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config/config.json"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	// Initialize logger early
	logger, err := utils.InitLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := utils.InitTracing(ctx, cfg.App.Name, cfg.Telemetry)
	if err != nil {
		utils.Sugar.Fatalf("init tracing: %v", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	sentryOn, err := utils.InitSentry(cfg.Telemetry, cfg.Gin.Mode)
	if err != nil {
		utils.Sugar.Fatalf("init sentry: %v", err)
	}
	if sentryOn {
		defer utils.FlushSentry()
	}

	db, err := config.OpenDatabase(cfg.Database, cfg.Log.Level, models.All()...)
	if err != nil {
		utils.Sugar.Fatalf("open database: %v", err)
	}

	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		utils.Sugar.Fatalf("open object store: %v", err)
	}
	if closer, ok := objects.(io.Closer); ok {
		defer closer.Close()
	}

	if err := utils.PrepareStagingDir(cfg.Storage.StagingDir); err != nil {
		utils.Sugar.Fatalf("prepare staging dir: %v", err)
	}

	postRepo := repositories.NewPostRepository(db)
	likeRepo := repositories.NewLikeRepository(db)

	identity := services.NewTokenIdentityResolver(
		utils.NewTokenManager(cfg.App.JWTSecret),
		utils.NewTokenBlacklist(utils.NewRedisClient(cfg.Redis)),
		repositories.NewUserRepository(db),
		objects,
	)
	comments := services.NewCommentService(repositories.NewCommentRepository(db), postRepo, identity, objects)
	media := services.NewMediaService(repositories.NewMediaRepository(db), objects, services.MediaOptions{
		StagingDir: cfg.Storage.StagingDir,
		MaxBytes:   int64(cfg.Storage.MaxUploadMB) << 20,
	}, logger.Named("media"))
	posts := services.NewPostService(services.PostServiceDeps{
		Tx:       repositories.NewTransactor(db),
		Posts:    postRepo,
		Likes:    likeRepo,
		Identity: identity,
		Media:    media,
		Comments: comments,
		URLs:     objects,
		Limits: services.PageLimits{
			DefaultSize: cfg.Board.DefaultPageSize,
			MaxSize:     cfg.Board.MaxPageSize,
		},
		Logger: logger.Named("posts"),
	})

	accessLog, err := utils.NewRollingFileLogger(cfg.Gin.LogPath, cfg.Log)
	if err != nil {
		logger.Warn("gin access log unavailable, using default recovery", zap.Error(err))
	}
	r, err := routes.SetupRouter(routes.Deps{
		Config:    cfg,
		Posts:     posts,
		Likes:     services.NewLikeService(likeRepo, postRepo, identity),
		Comments:  comments,
		Identity:  identity,
		Revoker:   identity,
		AccessLog: accessLog,
		Tracing:   cfg.Telemetry.OTLPEndpoint != "",
		Sentry:    sentryOn,
	})
	if err != nil {
		utils.Sugar.Fatalf("setup router: %v", err)
	}

	// Start background cleanup for staging files left behind by crashed uploads
	utils.StartStagingSweeper(ctx, cfg.Storage.StagingDir, stagingSweepInterval,
		time.Duration(cfg.Storage.StagingMaxAge)*time.Minute, logger)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.App.Port)
	if err := utils.GraceServer(":"+cfg.App.Port, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
