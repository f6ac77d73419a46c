package main

import (
	"context"
	"fmt"
	"os"

	"github.com/synaptiq/synapse-backend/internal/app"
	redisclient "github.com/synaptiq/synapse-backend/internal/clients/redis"
	"github.com/synaptiq/synapse-backend/internal/content"
	"github.com/synaptiq/synapse-backend/internal/db"
	"github.com/synaptiq/synapse-backend/internal/handlers"
	"github.com/synaptiq/synapse-backend/internal/logger"
	"github.com/synaptiq/synapse-backend/internal/middleware"
	"github.com/synaptiq/synapse-backend/internal/observability"
	"github.com/synaptiq/synapse-backend/internal/repos"
	"github.com/synaptiq/synapse-backend/internal/server"
	"github.com/synaptiq/synapse-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	cfg := app.LoadConfig(log)

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "synapse-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	defer func() {
		_ = otelShutdown(context.Background())
	}()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	lessonRepo := repos.NewLessonRepo(thePG, log)
	characterRepo := repos.NewCharacterRepo(thePG, log)
	superpowerRepo := repos.NewSuperpowerRepo(thePG, log)
	activityRepo := repos.NewActivityRepo(thePG, log)

	// Content store
	var contentStore content.Store
	if os.Getenv("CONTENT_BUCKET_NAME") != "" {
		bucketStore, err := content.NewBucketStore(log)
		if err != nil {
			log.Error("Could not init bucket content store", "error", err)
			os.Exit(1)
		}
		contentStore = bucketStore
	} else {
		contentStore = content.NewDirStore(cfg.ContentDir)
	}
	resolver := content.NewResolver(contentStore, log)

	// Progression cache
	progressionCache, err := redisclient.NewProgressionCache(log)
	if err != nil {
		log.Warn("Progression cache disabled", "error", err)
		progressionCache = nil
	}

	// Services
	log.Info("Setting up services...")
	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := services.NewUserService(thePG, log, userRepo)
	lessonService := services.NewLessonService(thePG, log, lessonRepo)
	progressionService := services.NewProgressionService(thePG, log, characterRepo, superpowerRepo, activityRepo, progressionCache)

	// Handlers
	authHandler := handlers.NewAuthHandler(log, authService)
	userHandler := handlers.NewUserHandler(userService)
	contentHandler := handlers.NewContentHandler(log, resolver)
	lessonHandler := handlers.NewLessonHandler(lessonService)
	progressionHandler := handlers.NewProgressionHandler(log, progressionService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:        authHandler,
		AuthMiddleware:     authMiddleware,
		UserHandler:        userHandler,
		ContentHandler:     contentHandler,
		LessonHandler:      lessonHandler,
		ProgressionHandler: progressionHandler,
	})

	log.Info("Starting server", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
