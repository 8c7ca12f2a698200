package datasource

import (
	"context"

	cache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps the snapshot in process memory
type MemoryStore struct {
	cache *cache.Cache
	key   string
}

// NewMemoryStore creates an in-memory snapshot store under a version-qualified key
func NewMemoryStore(key string) *MemoryStore {
	return &MemoryStore{
		// expiry is judged by the caller against the snapshot timestamp
		cache: cache.New(cache.NoExpiration, 0),
		key:   key,
	}
}

// Get returns the stored snapshot
func (s *MemoryStore) Get(ctx context.Context) (*Snapshot, error) {
	if v, found := s.cache.Get(s.key); found {
		if snap, ok := v.(*Snapshot); ok {
			return snap, nil
		}
	}
	return nil, ErrSnapshotNotFound
}

// Set replaces the stored snapshot
func (s *MemoryStore) Set(ctx context.Context, snapshot *Snapshot) error {
	s.cache.Set(s.key, snapshot, cache.NoExpiration)
	return nil
}

// Clear removes the stored snapshot
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.cache.Delete(s.key)
	return nil
}
