package datasource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/zed-insights/internal/metrics"
)

// DefaultFetchTimeout bounds a single remote fetch
const DefaultFetchTimeout = 30 * time.Second

// resettable fetchers close their circuit breaker on cache invalidation
type resettable interface {
	Reset()
}

// CachedSource implements RecordSource on top of a fetcher and a snapshot store
type CachedSource struct {
	fetcher      PayloadFetcher
	store        SnapshotStore
	fetchTimeout time.Duration
	logger       *logrus.Entry
	now          func() time.Time
}

// CachedSourceOption configures a CachedSource
type CachedSourceOption func(*CachedSource)

// WithFetchTimeout overrides the fetch timeout
func WithFetchTimeout(d time.Duration) CachedSourceOption {
	return func(s *CachedSource) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) CachedSourceOption {
	return func(s *CachedSource) {
		s.now = now
	}
}

// NewCachedSource creates a record source that caches the raw payload
func NewCachedSource(fetcher PayloadFetcher, store SnapshotStore, logger *logrus.Logger, opts ...CachedSourceOption) *CachedSource {
	s := &CachedSource{
		fetcher:      fetcher,
		store:        store,
		fetchTimeout: DefaultFetchTimeout,
		logger:       logger.WithField("component", "record_source"),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRecords returns the parsed record table. A fresh snapshot is used unless
// forceRefresh is set; a snapshot that fails to parse is cleared and replaced
// by exactly one forced fetch.
func (s *CachedSource) GetRecords(ctx context.Context, ttl time.Duration, forceRefresh bool) (*RecordTable, error) {
	if !forceRefresh {
		table, err := s.fromSnapshot(ctx, ttl)
		if err == nil {
			metrics.RecordSourceFetch("cache_hit")
			return table, nil
		}
		if errors.Is(err, ErrMalformedPayload) {
			s.logger.WithError(err).Warn("Cached payload is malformed, clearing and re-fetching")
			if clearErr := s.store.Clear(ctx); clearErr != nil {
				s.logger.WithError(clearErr).Warn("Failed to clear malformed snapshot")
			}
			metrics.RecordCacheInvalidation()
		}
	}

	payload, fetchedAt, err := s.fetch(ctx)
	if err != nil {
		if forceRefresh {
			// a forced refresh may still fall back to a snapshot within its TTL
			if table, snapErr := s.fromSnapshot(ctx, ttl); snapErr == nil {
				s.logger.WithError(err).Warn("Fetch failed, using cached snapshot")
				metrics.RecordSourceFetch("fallback")
				return table, nil
			}
		}
		metrics.RecordSourceFetch("error")
		return nil, err
	}

	records, err := ParseTable(payload)
	if err != nil {
		metrics.RecordSourceFetch("error")
		return nil, NewSourceError(s.fetcher.Name(), ErrCodeInvalidData, "failed to parse fetched payload", err)
	}
	if len(records) == 0 {
		metrics.RecordSourceFetch("error")
		return nil, NewSourceError(s.fetcher.Name(), ErrCodeInvalidData, "fetched payload has no records", nil)
	}

	if err := s.store.Set(ctx, &Snapshot{Payload: payload, FetchedAt: fetchedAt}); err != nil {
		s.logger.WithError(err).Warn("Failed to store snapshot")
	}

	s.logger.WithField("records", len(records)).Info("Fetched and parsed fresh record table")
	metrics.RecordSourceFetch("fetched")

	return &RecordTable{Records: records, FetchedAt: fetchedAt}, nil
}

// Invalidate clears the persisted snapshot and closes the fetcher's circuit
// breaker so the next refresh reaches the source
func (s *CachedSource) Invalidate(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	if r, ok := s.fetcher.(resettable); ok {
		r.Reset()
	}
	metrics.RecordCacheInvalidation()
	s.logger.Info("Record cache cleared")
	return nil
}

func (s *CachedSource) fromSnapshot(ctx context.Context, ttl time.Duration) (*RecordTable, error) {
	snap, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.IsFresh(s.now(), ttl) {
		return nil, ErrSnapshotNotFound
	}

	records, err := ParseTable(snap.Payload)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"records":    len(records),
		"fetched_at": snap.FetchedAt,
	}).Debug("Using cached record table")

	return &RecordTable{Records: records, FetchedAt: snap.FetchedAt, FromCache: true}, nil
}

func (s *CachedSource) fetch(ctx context.Context) ([]byte, time.Time, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	s.logger.WithField("fetcher", s.fetcher.Name()).Info("Fetching fresh record table")

	payload, err := s.fetcher.Fetch(fetchCtx)
	if err != nil {
		if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrSourceTimeout) {
			return nil, time.Time{}, NewSourceError(s.fetcher.Name(), ErrCodeTimeout,
				fmt.Sprintf("fetch exceeded %s", s.fetchTimeout), err)
		}
		var srcErr *SourceError
		if !errors.As(err, &srcErr) {
			err = NewSourceError(s.fetcher.Name(), ErrCodeNetworkError, "fetch failed", err)
		}
		return nil, time.Time{}, err
	}

	return payload, s.now(), nil
}
