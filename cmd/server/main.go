// backend-go/cmd/server/main.go
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
	"github.com/shelfworks/planogram/backend-go/internal/api"
	"github.com/shelfworks/planogram/backend-go/internal/cache"
	"github.com/shelfworks/planogram/backend-go/internal/config"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
	"github.com/shelfworks/planogram/backend-go/internal/engine"
	"github.com/shelfworks/planogram/backend-go/internal/export"
	"github.com/shelfworks/planogram/backend-go/internal/repository"
	"github.com/shelfworks/planogram/backend-go/internal/repository/postgres"
	"github.com/shelfworks/planogram/backend-go/internal/service"
	"github.com/shelfworks/planogram/backend-go/internal/storage"
	"github.com/shelfworks/planogram/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize repositories
	salesRepo := repository.NewSalesHistoryRepository(db.DB)
	productRepo := repository.NewProductRepository(db.DB)
	categoryRepo := repository.NewCategoryRepository(db.DB)
	gondolaRepo := repository.NewGondolaRepository(db.DB)
	runRepo := repository.NewRunRepository(db.DB)

	// Initialize run cache
	runCache, err := cache.NewRunCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Run cache unavailable, continuing without caching")
		runCache = cache.NewNoopRunCache()
	}

	// Initialize the distribution engine
	engineCfg := engine.Config{
		Thresholds: domain.ClassThresholds{
			A: cfg.Distribution.ThresholdA,
			B: cfg.Distribution.ThresholdB,
		},
		HierarchyLevel: cfg.Distribution.HierarchyLevel,
	}
	eng := engine.New(salesRepo, productRepo, categoryRepo, engineCfg, logger.Log)

	// Initialize services
	distributionService := service.NewDistributionService(eng, gondolaRepo, runRepo, runCache, cfg.Distribution)

	var objectStore storage.ObjectStorage
	if cfg.Export.Endpoint != "" {
		client, err := storage.NewMinioClient(cfg.Export)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage unavailable, exports stay local")
		} else {
			objectStore = client
		}
	}
	exporter := export.NewExporter(objectStore)

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		DistributionService: distributionService,
		Exporter:            exporter,
	}, cfg.Server.AllowedOrigins)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
