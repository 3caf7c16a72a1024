package status

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL bounds how long a cached snapshot may serve reads before the
// durable store is consulted again.
const DefaultTTL = time.Hour

// MemoryCache is an in-process CacheTier backed by go-cache. Snapshots are
// stored by value so callers can mutate what Get hands back.
type MemoryCache struct {
	entries *gocache.Cache
}

// NewMemoryCache creates a cache tier whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{entries: gocache.New(ttl, 10*time.Minute)}
}

// Get returns the cached snapshot for a video, if present and unexpired.
func (m *MemoryCache) Get(videoID uuid.UUID) (*Snapshot, bool, error) {
	v, ok := m.entries.Get(videoID.String())
	if !ok {
		return nil, false, nil
	}
	snap := v.(Snapshot)
	return &snap, true, nil
}

// Set stores a full snapshot, restarting its TTL.
func (m *MemoryCache) Set(videoID uuid.UUID, snap *Snapshot) error {
	m.entries.Set(videoID.String(), *snap, gocache.DefaultExpiration)
	return nil
}

// Apply overlays a partial update onto an existing entry; misses are no-ops.
func (m *MemoryCache) Apply(videoID uuid.UUID, fields Fields) error {
	snap, ok, _ := m.Get(videoID)
	if !ok {
		return nil
	}
	fields.applyTo(snap)
	return m.Set(videoID, snap)
}
