package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/pageza/menuwise/backend/config"
	"github.com/pageza/menuwise/backend/internal/logger"
)

// New opens the configured database and applies pool settings.
func New(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	log = logger.OrNop(log)

	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	if cfg.Environment.IsProduction() {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Error)
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case "sqlite":
		log.Info("opening sqlite database", zap.String("path", cfg.DBPath))
		db, err = gorm.Open(sqlite.Open(cfg.DBPath), gormCfg)
	default:
		log.Info("connecting to database",
			zap.String("host", cfg.DBHost),
			zap.String("port", cfg.DBPort),
			zap.String("user", cfg.DBUser))
		db, err = gorm.Open(postgres.Open(cfg.PostgresDSN()), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error getting database handle: %w", err)
	}
	if cfg.DBDriver == "sqlite" {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := HealthCheck(ctx, db); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	log.Info("database connection established", zap.String("driver", cfg.DBDriver))
	return db, nil
}

// HealthCheck checks if the database is accessible
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
