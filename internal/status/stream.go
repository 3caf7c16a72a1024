package status

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultPollInterval is how often the watcher recomputes the payload.
const DefaultPollInterval = 1500 * time.Millisecond

// Reader is the read surface the watcher polls.
type Reader interface {
	Get(ctx context.Context, videoID, userID uuid.UUID) (*Snapshot, error)
}

// EmitFunc delivers one named event to the client. A non-nil error means the
// client is gone and the watch must end.
type EmitFunc func(event string, payload any) error

// Watcher drives a long-lived status stream: poll at a fixed interval, emit
// only when the payload changed, close after one terminal emission.
type Watcher struct {
	store    Reader
	interval time.Duration
}

// NewWatcher creates a watcher polling at the given interval.
func NewWatcher(store Reader, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{store: store, interval: interval}
}

// Watch polls until the status turns terminal, the context is cancelled, or
// an error occurs. Any failure inside the loop emits a single error event and
// terminates; the loop is never retried.
func (w *Watcher) Watch(ctx context.Context, videoID, userID uuid.UUID, emit EmitFunc) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var last *Payload
	for {
		snap, err := w.store.Get(ctx, videoID, userID)
		if err != nil {
			_ = emit("error", map[string]string{"error": err.Error()})
			return err
		}

		payload := BuildPayload(snap, time.Now())
		if last == nil || !payload.Equal(last) {
			if err := emit("status", payload); err != nil {
				return err
			}
			last = payload
		}

		if IsTerminal(payload.Status) {
			return emit("close", map[string]string{"status": payload.Status})
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
