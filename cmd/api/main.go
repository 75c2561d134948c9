package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"formulahub-backend/application/services"
	"formulahub-backend/infrastructure/config"
	"formulahub-backend/infrastructure/persistence/sqlite"
	"formulahub-backend/interfaces/http/rest"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Open storage
	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	formulas := sqlite.NewFormulaRepository(db)
	categories := sqlite.NewCategoryRepository(db)
	cards := sqlite.NewCardRepository(db)
	events := sqlite.NewEventStore(db)

	// Services
	catalogService := services.NewCatalogService(formulas, categories, cards, logger)
	trendingService := services.NewTrendingService(formulas, events, logger)
	metricsService := services.NewMetricsService(events, logger)

	seed := func(ctx context.Context) (int, error) {
		return sqlite.Seed(ctx, db, time.Now().UTC())
	}

	if cfg.SeedOnStart {
		inserted, err := seed(context.Background())
		if err != nil {
			logger.Fatal("Failed to seed database", zap.Error(err))
		}
		if inserted > 0 {
			logger.Info("Seeded sample content", zap.Int("inserted", inserted))
		}
	}

	// Router
	router := rest.NewRouter(cfg, catalogService, trendingService, metricsService, seed, db, logger)
	handler := router.Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("database", cfg.DatabasePath),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	log.Println("Server stopped")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
