package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pageza/menuwise/backend/config"
	"github.com/pageza/menuwise/backend/internal/database"
	"github.com/pageza/menuwise/backend/internal/logger"
)

const createTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`

func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last applied migration")
	flag.Parse()

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

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.PostgresDSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	if _, err := db.Exec(createTable); err != nil {
		log.Fatal("failed to create schema_migrations table", zap.Error(err))
	}

	if *rollback {
		name, err := rollbackLast(db, cfg.MigrationsDir)
		if err != nil {
			log.Fatal("rollback failed", zap.Error(err))
		}
		log.Info("rolled back migration", zap.String("migration", name))
		return
	}

	applied, err := applyAll(db, cfg.MigrationsDir, log)
	if err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	log.Info("migrations complete", zap.Int("applied", applied))
}

func applyAll(db *sql.DB, dir string, log *zap.Logger) (int, error) {
	files, err := database.MigrationFiles(dir, ".up.sql")
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, name := range files {
		var exists bool
		if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)", name).Scan(&exists); err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			log.Debug("migration already applied", zap.String("migration", name))
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		if err := inTx(db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(string(content)); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", name, err)
			}
			_, err := tx.Exec("INSERT INTO schema_migrations (name) VALUES ($1)", name)
			return err
		}); err != nil {
			return applied, err
		}

		log.Info("applied migration", zap.String("migration", name))
		applied++
	}
	return applied, nil
}

func rollbackLast(db *sql.DB, dir string) (string, error) {
	var name string
	err := db.QueryRow("SELECT name FROM schema_migrations ORDER BY applied_at DESC, id DESC LIMIT 1").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("no migrations to rollback")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	downFile := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
	content, err := os.ReadFile(filepath.Join(dir, downFile))
	if err != nil {
		return "", fmt.Errorf("failed to read rollback file %s: %w", downFile, err)
	}

	err = inTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(string(content)); err != nil {
			return fmt.Errorf("failed to execute rollback: %w", err)
		}
		_, err := tx.Exec("DELETE FROM schema_migrations WHERE name = $1", name)
		return err
	})
	return name, err
}

func inTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
