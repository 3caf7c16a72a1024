package status

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// SyncedStore coordinates the two tiers. Durable writes are mandatory and
// their failures propagate; cache writes are best-effort and their failures
// are logged and swallowed. Reads go cache-first with write-through
// rehydration from the durable store on a miss.
type SyncedStore struct {
	cache   CacheTier
	durable DurableTier
}

// NewSyncedStore creates a synced store over the given tiers.
func NewSyncedStore(cache CacheTier, durable DurableTier) *SyncedStore {
	return &SyncedStore{cache: cache, durable: durable}
}

// Write persists a partial status update to both tiers. Called by phase
// executors, potentially several times in quick succession; fields are
// last-write-wins with no cross-field atomicity.
func (s *SyncedStore) Write(ctx context.Context, videoID, userID uuid.UUID, fields Fields) error {
	if fields.IsZero() {
		return nil
	}
	if err := s.durable.Apply(ctx, videoID, userID, fields); err != nil {
		return fmt.Errorf("durable status write for video %s: %w", videoID, err)
	}
	if err := s.cache.Apply(videoID, fields); err != nil {
		log.Printf("status cache write for video %s failed (ignored): %v", videoID, err)
	}
	return nil
}

// Get returns the video's status snapshot. Cache misses fall through to the
// durable store and repopulate the cache before returning, so subsequent
// reads stay cheap. An ownership mismatch reads as ErrNotFound.
func (s *SyncedStore) Get(ctx context.Context, videoID, userID uuid.UUID) (*Snapshot, error) {
	snap, ok, err := s.cache.Get(videoID)
	if err != nil {
		log.Printf("status cache read for video %s failed (ignored): %v", videoID, err)
		ok = false
	}
	if ok {
		if snap.UserID != userID {
			return nil, ErrNotFound
		}
		return snap, nil
	}

	snap, err = s.durable.Get(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(videoID, snap); err != nil {
		log.Printf("status cache rehydration for video %s failed (ignored): %v", videoID, err)
	}
	if snap.UserID != userID {
		return nil, ErrNotFound
	}
	return snap, nil
}
