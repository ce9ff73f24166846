// Package testutil provides shared test doubles and fixtures for tests.
package testutil

import (
	"context"
	"testing"

	"postboard/internal/config"
	"postboard/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SQLiteConfig returns a config for an in-memory SQLite database with SQL
// migrations only.
func SQLiteConfig() *config.Config {
	return &config.Config{
		Port:                     "0",
		Env:                      "test",
		DBDriver:                 config.DriverSQLite,
		DBPath:                   ":memory:",
		DBSchemaMode:             database.SchemaModeSQL,
		DBConnMaxLifetimeMinutes: 1,
		RateLimitWrites:          30,
	}
}

// NewSQLiteDB opens a fresh in-memory database with the schema applied.
// The connection is closed when the test ends.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := SQLiteConfig()
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	require.NoError(t, database.ApplySchema(context.Background(), db, cfg))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
