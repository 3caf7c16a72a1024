package continuation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncSubmitterRunsTasks(t *testing.T) {
	var mu sync.Mutex
	var seen []uuid.UUID
	exec := ExecutorFunc(func(_ context.Context, task Task) error {
		mu.Lock()
		seen = append(seen, task.VideoID)
		mu.Unlock()
		return nil
	})

	submitter := NewAsyncSubmitter(exec, 2)
	a, b := uuid.New(), uuid.New()
	require.NoError(t, submitter.Dispatch(context.Background(), Task{VideoID: a, PhaseNumber: 2}))
	require.NoError(t, submitter.Dispatch(context.Background(), Task{VideoID: b, PhaseNumber: 2}))
	require.NoError(t, submitter.Close())

	assert.ElementsMatch(t, []uuid.UUID{a, b}, seen)
}

func TestAsyncSubmitterRefusesAtCapacity(t *testing.T) {
	block := make(chan struct{})
	exec := ExecutorFunc(func(_ context.Context, _ Task) error {
		<-block
		return nil
	})

	submitter := NewAsyncSubmitter(exec, 1)
	require.NoError(t, submitter.Dispatch(context.Background(), Task{VideoID: uuid.New(), PhaseNumber: 2}))

	err := submitter.Dispatch(context.Background(), Task{VideoID: uuid.New(), PhaseNumber: 2})
	assert.ErrorContains(t, err, "at capacity", "a full submitter refuses instead of queueing")

	close(block)
	require.NoError(t, submitter.Close())
}

func TestAsyncSubmitterSwallowsExecutorErrors(t *testing.T) {
	exec := ExecutorFunc(func(_ context.Context, _ Task) error {
		return errors.New("phase blew up")
	})

	submitter := NewAsyncSubmitter(exec, 1)
	require.NoError(t, submitter.Dispatch(context.Background(), Task{VideoID: uuid.New(), PhaseNumber: 3}))
	assert.NoError(t, submitter.Close(), "executor failures are reported via status, not here")
}
