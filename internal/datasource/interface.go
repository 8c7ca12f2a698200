// Package datasource supplies the historical race record table, cached with a time-to-live.
package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/zed-insights/internal/models"
)

// RecordSource supplies the raw historical record table
type RecordSource interface {
	// GetRecords returns the record table, honoring a cached snapshot younger than ttl
	// unless forceRefresh is set
	GetRecords(ctx context.Context, ttl time.Duration, forceRefresh bool) (*RecordTable, error)

	// Invalidate clears any persisted snapshot without fetching
	Invalidate(ctx context.Context) error
}

// PayloadFetcher retrieves the raw CSV payload from its remote location
type PayloadFetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
	Name() string
}

// SnapshotStore persists a single snapshot of the raw payload
type SnapshotStore interface {
	// Get returns ErrSnapshotNotFound when nothing is stored
	Get(ctx context.Context) (*Snapshot, error)
	Set(ctx context.Context, snapshot *Snapshot) error
	Clear(ctx context.Context) error
}

// Snapshot is a cached raw payload and the time it was fetched
type Snapshot struct {
	Payload   []byte    `json:"payload"`
	FetchedAt time.Time `json:"fetched_at"`
}

// IsFresh reports whether the snapshot is younger than ttl at now
func (s *Snapshot) IsFresh(now time.Time, ttl time.Duration) bool {
	return s != nil && len(s.Payload) > 0 && now.Sub(s.FetchedAt) < ttl
}

// RecordTable is a parsed record table and where it came from
type RecordTable struct {
	Records   []models.RawRecord
	FetchedAt time.Time
	FromCache bool
}

// SourceError represents errors from record source operations
type SourceError struct {
	Source  string // Record source name
	Code    string // Error code (e.g., "timeout")
	Message string // Error message
	Err     error  // Underlying error
}

func (e *SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap exposes the underlying error
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel that corresponds to the error code
func (e *SourceError) Is(target error) bool {
	switch e.Code {
	case ErrCodeTimeout:
		return target == ErrSourceTimeout || target == ErrSourceUnavailable
	case ErrCodeNetworkError, ErrCodeServerError:
		return target == ErrSourceUnavailable
	case ErrCodeInvalidData:
		return target == ErrMalformedPayload
	}
	return false
}

// Common error codes
const (
	ErrCodeTimeout      = "timeout"
	ErrCodeNetworkError = "network_error"
	ErrCodeServerError  = "server_error"
	ErrCodeInvalidData  = "invalid_data"
)

// Error sentinels
var (
	ErrSourceUnavailable = errors.New("record source unavailable")
	ErrSourceTimeout     = errors.New("record source timed out")
	ErrMalformedPayload  = errors.New("malformed record payload")
	ErrSnapshotNotFound  = errors.New("snapshot not found")
)

// NewSourceError creates a new source error
func NewSourceError(source, code, message string, err error) *SourceError {
	return &SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
