package status

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	entries  map[uuid.UUID]*Snapshot
	getErr   error
	setErr   error
	applyErr error
	sets     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[uuid.UUID]*Snapshot)}
}

func (f *fakeCache) Get(videoID uuid.UUID) (*Snapshot, bool, error) {
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	snap, ok := f.entries[videoID]
	return snap, ok, nil
}

func (f *fakeCache) Set(videoID uuid.UUID, snap *Snapshot) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	copied := *snap
	f.entries[videoID] = &copied
	return nil
}

func (f *fakeCache) Apply(videoID uuid.UUID, fields Fields) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	snap, ok := f.entries[videoID]
	if !ok {
		return nil
	}
	fields.applyTo(snap)
	return nil
}

type fakeDurable struct {
	rows     map[uuid.UUID]*Snapshot
	getErr   error
	applyErr error
	gets     int
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{rows: make(map[uuid.UUID]*Snapshot)}
}

func (f *fakeDurable) Get(_ context.Context, videoID uuid.UUID) (*Snapshot, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.gets++
	snap, ok := f.rows[videoID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *snap
	return &copied, nil
}

func (f *fakeDurable) Apply(_ context.Context, videoID, userID uuid.UUID, fields Fields) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	snap, ok := f.rows[videoID]
	if !ok {
		snap = &Snapshot{VideoID: videoID, UserID: userID, Status: StatusPending}
		f.rows[videoID] = snap
	}
	fields.applyTo(snap)
	return nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestWriteDurableFailurePropagates(t *testing.T) {
	durable := newFakeDurable()
	durable.applyErr = errors.New("connection refused")
	store := NewSyncedStore(newFakeCache(), durable)

	err := store.Write(context.Background(), uuid.New(), uuid.New(), Fields{Progress: intPtr(10)})
	assert.Error(t, err, "durable write failures are fatal")
}

func TestWriteCacheFailureSwallowed(t *testing.T) {
	cache := newFakeCache()
	cache.applyErr = errors.New("cache down")
	store := NewSyncedStore(cache, newFakeDurable())

	err := store.Write(context.Background(), uuid.New(), uuid.New(), Fields{Progress: intPtr(10)})
	assert.NoError(t, err, "cache failures never fail a request")
}

func TestWriteEmptyFieldsIsNoop(t *testing.T) {
	durable := newFakeDurable()
	durable.applyErr = errors.New("should not be called")
	store := NewSyncedStore(newFakeCache(), durable)

	assert.NoError(t, store.Write(context.Background(), uuid.New(), uuid.New(), Fields{}))
}

func TestGetRehydratesCache(t *testing.T) {
	cache := newFakeCache()
	durable := newFakeDurable()
	store := NewSyncedStore(cache, durable)
	videoID, userID := uuid.New(), uuid.New()

	require.NoError(t, durable.Apply(context.Background(), videoID, userID, Fields{
		Status:   strPtr(StatusProcessing),
		Progress: intPtr(40),
	}))

	// Cold cache: read falls through and repopulates.
	snap, err := store.Get(context.Background(), videoID, userID)
	require.NoError(t, err)
	assert.Equal(t, 40, snap.Progress)
	assert.Equal(t, 1, cache.sets, "durable hit must rehydrate the cache")
	assert.Equal(t, 1, durable.gets)

	// Warm cache: no second durable query.
	snap, err = store.Get(context.Background(), videoID, userID)
	require.NoError(t, err)
	assert.Equal(t, 40, snap.Progress)
	assert.Equal(t, 1, durable.gets, "second read must be served from cache")
}

func TestGetMissingVideo(t *testing.T) {
	store := NewSyncedStore(newFakeCache(), newFakeDurable())
	_, err := store.Get(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetOwnershipMismatchReadsAsNotFound(t *testing.T) {
	cache := newFakeCache()
	durable := newFakeDurable()
	store := NewSyncedStore(cache, durable)
	videoID, owner := uuid.New(), uuid.New()

	require.NoError(t, durable.Apply(context.Background(), videoID, owner, Fields{Progress: intPtr(5)}))

	// Durable path.
	_, err := store.Get(context.Background(), videoID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound, "mismatch must not read as forbidden")

	// Cache path (the miss above rehydrated the entry).
	_, err = store.Get(context.Background(), videoID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	// The owner still sees it.
	_, err = store.Get(context.Background(), videoID, owner)
	assert.NoError(t, err)
}

func TestGetCacheReadFailureFallsThrough(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("cache down")
	durable := newFakeDurable()
	store := NewSyncedStore(cache, durable)
	videoID, userID := uuid.New(), uuid.New()

	require.NoError(t, durable.Apply(context.Background(), videoID, userID, Fields{Progress: intPtr(30)}))

	snap, err := store.Get(context.Background(), videoID, userID)
	require.NoError(t, err)
	assert.Equal(t, 30, snap.Progress)
}

func TestWriteUpdatesBothTiers(t *testing.T) {
	cache := newFakeCache()
	durable := newFakeDurable()
	store := NewSyncedStore(cache, durable)
	videoID, userID := uuid.New(), uuid.New()

	// Seed both tiers, then write a partial update.
	require.NoError(t, store.Write(context.Background(), videoID, userID, Fields{
		Status:   strPtr(StatusProcessing),
		Progress: intPtr(10),
	}))
	_, err := store.Get(context.Background(), videoID, userID)
	require.NoError(t, err)

	require.NoError(t, store.Write(context.Background(), videoID, userID, Fields{Progress: intPtr(70)}))

	snap, err := store.Get(context.Background(), videoID, userID)
	require.NoError(t, err)
	assert.Equal(t, 70, snap.Progress)
	assert.Equal(t, StatusProcessing, snap.Status, "untouched fields survive partial writes")
	assert.Equal(t, 70, cache.entries[videoID].Progress, "cache must see the field write")
}
