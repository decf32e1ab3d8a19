package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/menuwise/backend/config"
	"github.com/pageza/menuwise/backend/internal/models"
)

func TestNewSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{
		Environment: config.Test,
		DBDriver:    "sqlite",
		DBPath:      filepath.Join(t.TempDir(), "test.db"),
	}

	db, err := New(cfg, nil)
	require.NoError(t, err)
	require.NoError(t, RunMigrations(db, "", nil))

	for _, m := range models.All() {
		assert.True(t, db.Migrator().HasTable(m), "%T table missing", m)
	}
	assert.NoError(t, HealthCheck(context.Background(), db))
}

func TestMigrationFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"000002_b.up.sql", "000001_a.up.sql", "000001_a.down.sql", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}

	up, err := MigrationFiles(dir, ".up.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_a.up.sql", "000002_b.up.sql"}, up)

	_, err = MigrationFiles(filepath.Join(dir, "missing"), ".up.sql")
	assert.Error(t, err)
}

func TestRepoMigrationsArePaired(t *testing.T) {
	dir := filepath.Join("..", "..", "migrations")
	up, err := MigrationFiles(dir, ".up.sql")
	require.NoError(t, err)
	down, err := MigrationFiles(dir, ".down.sql")
	require.NoError(t, err)

	require.NotEmpty(t, up)
	assert.Len(t, down, len(up))
}
