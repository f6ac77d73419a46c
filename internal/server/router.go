package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/synaptiq/synapse-backend/internal/handlers"
	"github.com/synaptiq/synapse-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler        *handlers.AuthHandler
	AuthMiddleware     *middleware.AuthMiddleware
	UserHandler        *handlers.UserHandler
	ContentHandler     *handlers.ContentHandler
	LessonHandler      *handlers.LessonHandler
	ProgressionHandler *handlers.ProgressionHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("synapse-backend"))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}

		// Content (public)
		if cfg.ContentHandler != nil {
			api.GET("/content/lessons", cfg.ContentHandler.ListLessons)
			api.GET("/content/lessons/:id", cfg.ContentHandler.GetLesson)
			api.GET("/content/:track/lessons/:id", cfg.ContentHandler.GetTrackLesson)
			api.GET("/content/flashcards/:track", cfg.ContentHandler.ListFlashcards)
		}

		// Managed-store lessons (public)
		if cfg.LessonHandler != nil {
			api.GET("/lessons", cfg.LessonHandler.ListLessons)
			api.GET("/lessons/:slug", cfg.LessonHandler.GetLesson)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		if cfg.ProgressionHandler != nil {
			protected.GET("/progression", cfg.ProgressionHandler.Get)
			protected.POST("/progression", cfg.ProgressionHandler.Apply)
		}
	}

	return router
}
