package datasource

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/zed-insights/internal/database"
)

// PostgresStore keeps the snapshot in the race_data_snapshots table
type PostgresStore struct {
	db  *database.DB
	key string
}

// NewPostgresStore creates a Postgres-backed snapshot store
func NewPostgresStore(db *database.DB, key string) *PostgresStore {
	return &PostgresStore{db: db, key: key}
}

// Get loads the snapshot row
func (s *PostgresStore) Get(ctx context.Context) (*Snapshot, error) {
	query := `
		SELECT payload, fetched_at
		FROM race_data_snapshots
		WHERE cache_key = $1
	`

	var snap Snapshot
	err := s.db.GetPool().QueryRow(ctx, query, s.key).Scan(&snap.Payload, &snap.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &snap, nil
}

// Set upserts the snapshot row
func (s *PostgresStore) Set(ctx context.Context, snapshot *Snapshot) error {
	query := `
		INSERT INTO race_data_snapshots (cache_key, payload, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (cache_key) DO UPDATE
		SET payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at
	`

	if _, err := s.db.GetPool().Exec(ctx, query, s.key, snapshot.Payload, snapshot.FetchedAt); err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}

// Clear deletes the snapshot row
func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.db.GetPool().Exec(ctx, `DELETE FROM race_data_snapshots WHERE cache_key = $1`, s.key); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}
	return nil
}
