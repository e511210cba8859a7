// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aeworks/ops-api/internal/config"
	"github.com/aeworks/ops-api/internal/database"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB opens a migrated sqlite database in a per-test temp directory.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "ops-test.db")}
	db, err := database.NewDatabase(cfg)
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.Migrate(context.Background(), db, cfg.Driver), "failed to migrate test database")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CorruptSlot writes a raw, non-JSON payload into a slot.
func CorruptSlot(t *testing.T, db *gorm.DB, key string) {
	t.Helper()
	err := db.Exec(
		"INSERT INTO dataset_slots (slot_key, payload, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)",
		key, "{not json",
	).Error
	require.NoError(t, err)
}
