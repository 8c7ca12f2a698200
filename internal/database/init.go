package database

import (
	"context"
	"fmt"

	"github.com/yourusername/zed-insights/internal/config"
)

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS race_data_snapshots (
	cache_key  TEXT PRIMARY KEY,
	payload    BYTEA NOT NULL,
	fetched_at TIMESTAMPTZ NOT NULL
)`

// Initialize creates a database connection pool and ensures the snapshot table exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// EnsureSchema creates the snapshot table when missing
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("failed to create snapshot table: %w", err)
	}
	return nil
}
