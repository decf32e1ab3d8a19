package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/menuwise/backend/config"
	"github.com/pageza/menuwise/backend/internal/database"
	"github.com/pageza/menuwise/backend/internal/logger"
	"github.com/pageza/menuwise/backend/internal/server"
	"github.com/pageza/menuwise/backend/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := database.New(cfg, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	ctx := context.Background()
	if err := service.NewCatalogService(db, log).EnsureDefaults(ctx); err != nil {
		log.Fatal("failed to seed reference data", zap.Error(err))
	}

	// Rate limiting is skipped without redis
	redisClient, err := database.NewRedisClient(cfg, log)
	if err != nil {
		log.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	s3cfg, err := config.NewS3Config(ctx, cfg)
	if err != nil {
		log.Warn("S3 unavailable, menu images will not be archived", zap.Error(err))
		s3cfg = nil
	}

	srv := server.New(cfg, db, redisClient, s3cfg, log)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		log.Info("received signal", zap.String("signal", sig.String()))
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server stopped")
}
