package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/zed-insights/internal/config"
	"github.com/yourusername/zed-insights/internal/database"
)

// Factory creates the record source and its collaborators from configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new record source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewHTTPClient creates the rate-limited client used for the remote table
func (f *Factory) NewHTTPClient() *RateLimitedHTTPClient {
	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = f.config.FetchTimeout()
	httpCfg.MaxRetries = f.config.Source.MaxRetries
	if f.config.Source.RateLimit > 0 {
		httpCfg.RateLimit = f.config.Source.RateLimit
	}
	return NewRateLimitedHTTPClient(httpCfg, f.logger)
}

// NewSnapshotStore creates the snapshot store for the configured backend.
// db is only required for the postgres backend.
func (f *Factory) NewSnapshotStore(db *database.DB) (SnapshotStore, error) {
	cacheCfg := f.config.Cache

	switch cacheCfg.Backend {
	case config.CacheBackendMemory, "":
		return NewMemoryStore(cacheCfg.Key), nil

	case config.CacheBackendFile:
		if cacheCfg.FilePath == "" {
			return nil, fmt.Errorf("file cache backend requires a file path")
		}
		return NewFileStore(cacheCfg.FilePath), nil

	case config.CacheBackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("postgres cache backend requires a database connection")
		}
		return NewPostgresStore(db, cacheCfg.Key), nil

	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cacheCfg.Backend)
	}
}

// NewRecordSource wires the remote table, snapshot store and fetch timeout
func (f *Factory) NewRecordSource(db *database.DB) (*CachedSource, error) {
	store, err := f.NewSnapshotStore(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}

	fetcher := NewRemoteTable(f.NewHTTPClient(), f.config.Source.URL, f.config.Source.Token)

	f.logger.WithFields(logrus.Fields{
		"url":           fetcher.url,
		"cache_backend": f.config.Cache.Backend,
	}).Debug("Created record source")

	return NewCachedSource(fetcher, store, f.logger, WithFetchTimeout(f.config.FetchTimeout())), nil
}
