package status

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates no status row exists for the video, or the caller
// does not own it. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("video status not found")

// CacheTier is the ephemeral keyed store. Every method may fail when the
// cache backend is unavailable; callers treat those errors as discardable.
type CacheTier interface {
	// Get returns the cached snapshot, or ok=false on a miss.
	Get(videoID uuid.UUID) (snap *Snapshot, ok bool, err error)
	// Set stores a full snapshot under the tier's TTL.
	Set(videoID uuid.UUID, snap *Snapshot) error
	// Apply overlays a partial update onto an existing entry. A miss is a
	// no-op: a partial snapshot must never be fabricated in the cache.
	Apply(videoID uuid.UUID, fields Fields) error
}

// DurableTier is the authoritative store. Write failures here are fatal to
// the caller; there is no silent retry.
type DurableTier interface {
	Get(ctx context.Context, videoID uuid.UUID) (*Snapshot, error)
	Apply(ctx context.Context, videoID, userID uuid.UUID, fields Fields) error
}
