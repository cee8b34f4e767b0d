package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/laurelhq/laurel/internal/handlers"
	"github.com/laurelhq/laurel/internal/middleware"
	"github.com/laurelhq/laurel/internal/repositories"
	"github.com/laurelhq/laurel/internal/services"
	"github.com/laurelhq/laurel/internal/workers"
	"github.com/laurelhq/laurel/pkg/config"
	"github.com/laurelhq/laurel/pkg/database"
	"github.com/laurelhq/laurel/pkg/logger"
	"github.com/laurelhq/laurel/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Log.Level)
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	contributorRepo := repositories.NewContributorRepository(db)
	activityRepo := repositories.NewActivityRepository(db)
	aggregateRepo := repositories.NewAggregateRepository(db)
	badgeRepo := repositories.NewBadgeRepository(db)
	jobRepo := repositories.NewJobRepository(db)

	// Initialize services
	catalogService, err := services.NewCatalogService(badgeRepo, aggregateRepo)
	if err != nil {
		log.Fatalf("Failed to load badge catalog: %v", err)
	}
	syncService := services.NewSyncService(cfg, contributorRepo, activityRepo)
	aggregateService := services.NewAggregateService(activityRepo, aggregateRepo)
	achievementService := services.NewAchievementService(activityRepo, badgeRepo, catalogService)
	pipelineService := services.NewPipelineService(catalogService, syncService, aggregateService, achievementService)
	leaderboardService := services.NewLeaderboardService(contributorRepo, activityRepo, badgeRepo)
	jobService := services.NewJobService(jobRepo)

	// Initialize handlers
	contributorHandler := handlers.NewContributorHandler(contributorRepo, aggregateRepo, badgeRepo)
	activityHandler := handlers.NewActivityHandler(activityRepo)
	aggregateHandler := handlers.NewAggregateHandler(aggregateRepo)
	badgeHandler := handlers.NewBadgeHandler(badgeRepo)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService)
	jobHandler := handlers.NewJobHandler(jobService)
	healthHandler := handlers.NewHealthHandler(db)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")
	{
		api.GET("/contributors", contributorHandler.List)
		api.GET("/contributors/:username", contributorHandler.Get)
		api.GET("/activities", activityHandler.List)
		api.GET("/aggregates", aggregateHandler.List)
		api.GET("/aggregates/:slug/contributors", aggregateHandler.ContributorValues)
		api.GET("/badges", badgeHandler.List)
		api.GET("/badges/:slug/awards", badgeHandler.Awards)
		api.GET("/leaderboard", leaderboardHandler.Leaderboard)
		api.GET("/jobs", jobHandler.List)
		api.GET("/jobs/:id", jobHandler.Get)

		api.POST("/jobs", middleware.RequireToken(cfg.Server.AuthToken), jobHandler.Create)
	}

	// Start workers
	workerManager := workers.NewWorkerManager(jobRepo, pipelineService)
	if err := workerManager.StartAll(); err != nil {
		log.Fatalf("Failed to start workers: %v", err)
	}
	defer workerManager.StopAll()

	// Setup server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting on :" + cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown: ", err)
	}

	logger.Info("Server stopped")
}
