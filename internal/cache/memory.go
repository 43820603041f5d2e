package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/odds-edge/internal/models"
)

// MemoryStore keeps snapshots in process. Entries expire after the retention period,
// which is longer than the freshness window so stale data stays available as a fallback.
type MemoryStore struct {
	cache *gocache.Cache
	now   func() time.Time
}

// NewMemoryStore creates an in-memory store
func NewMemoryStore(retention time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(retention, retention*2),
		now:   time.Now,
	}
}

// Get retrieves a cached snapshot
func (s *MemoryStore) Get(ctx context.Context, key string) (*models.Snapshot, time.Duration, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, false, err
	}
	item, found := s.cache.Get(key)
	if !found {
		return nil, 0, false, nil
	}
	snap, ok := item.(*models.Snapshot)
	if !ok {
		return nil, 0, false, nil
	}
	cp := *snap
	return &cp, snap.Age(s.now()), true, nil
}

// Put stores a snapshot with the default retention
func (s *MemoryStore) Put(ctx context.Context, snapshot *models.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *snapshot
	if cp.FetchedAt.IsZero() {
		cp.FetchedAt = s.now()
	}
	s.cache.Set(cp.Key, &cp, gocache.DefaultExpiration)
	return nil
}

// ItemCount returns the number of cached snapshots
func (s *MemoryStore) ItemCount() int {
	return s.cache.ItemCount()
}

// Clear removes all cached snapshots
func (s *MemoryStore) Clear() {
	s.cache.Flush()
}
