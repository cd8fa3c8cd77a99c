// @title           FunnelDeck Backend API
// @version         1.0.0
// @description     Backend API for generating marketing presentations with AI slide content and images. Slides stream to the client over SSE as they are generated, with resumable checkpointing for interrupted runs.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"funneldeck-backend/docs"
	"funneldeck-backend/internal/config"
	"funneldeck-backend/internal/database"
	"funneldeck-backend/internal/handlers"
	"funneldeck-backend/internal/imagegen"
	"funneldeck-backend/internal/llm"
	"funneldeck-backend/internal/middleware"
	"funneldeck-backend/internal/services"
	"funneldeck-backend/internal/supabase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	// Point the Swagger UI at the deployed host.
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx := context.Background()

	llmClient, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Error("failed to initialize text generation client", "error", err)
		os.Exit(1)
	}
	imageClient := imagegen.NewClient(cfg.ImageAPIBaseURL, cfg.ImageAPIKey)

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		slog.Error("failed to initialize Supabase client", "error", err)
		os.Exit(1)
	}
	storageClient, err := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)
	if err != nil {
		slog.Error("failed to initialize storage client", "error", err)
		os.Exit(1)
	}
	realtimeClient := supabase.NewRealtimeClient(supabaseClient.Supabase)

	// Direct Postgres access powers migrations and generation state. The
	// server still starts without it, with database-backed routes degraded.
	var dbClient *supabase.DatabaseClient
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set; migrations skipped and database routes degraded")
	} else {
		dbClient, err = supabase.NewDatabaseClient(cfg.DatabaseURL)
		if err != nil {
			slog.Warn("failed to initialize database client; database routes degraded", "error", err)
		} else {
			defer dbClient.Close()

			migrator, err := database.NewMigrator(cfg.DatabaseURL)
			if err != nil {
				slog.Warn("failed to initialize migrator", "error", err)
			} else {
				defer migrator.Close()
				if err := migrator.Run(); err != nil {
					slog.Warn("migration failed", "error", err)
				} else {
					slog.Info("migrations completed")
				}
			}
		}
	}

	imageService := services.NewImageService(imageClient, storageClient, cfg)
	orchestrator := services.NewOrchestrator(llmClient, imageService, cfg)
	limiter := middleware.NewRateLimiter(cfg.StreamRatePerMinute)

	var streamStore handlers.GenerationStore
	if dbClient != nil {
		streamStore = dbClient
	}
	streamHandler := handlers.NewStreamHandler(streamStore, orchestrator, limiter, realtimeClient, cfg)
	presentationsHandler := handlers.NewPresentationsHandler(dbClient, storageClient)
	structuresHandler := handlers.NewStructuresHandler(dbClient)

	router := gin.Default()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	// Deck structures
	api.POST("/structures", structuresHandler.CreateStructure)
	api.GET("/structures/:structure_id", structuresHandler.GetStructure)

	// Generation stream (EventSource-compatible GET)
	api.GET("/stream/presentations/generate", streamHandler.Generate)

	// Presentations
	api.GET("/presentations", presentationsHandler.ListPresentations)
	api.GET("/presentations/:presentation_id", presentationsHandler.GetPresentation)
	api.GET("/presentations/:presentation_id/status", presentationsHandler.GetStatus)
	api.DELETE("/presentations/:presentation_id", presentationsHandler.DeletePresentation)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	slog.Info("server starting", "port", port, "environment", cfg.Environment)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
