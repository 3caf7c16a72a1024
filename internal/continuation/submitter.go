package continuation

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// Executor runs one pipeline phase. Implementations live outside this core
// (prompting, generation APIs, ffmpeg composition all happen behind it).
type Executor interface {
	ExecutePhase(ctx context.Context, task Task) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, task Task) error

// ExecutePhase calls f.
func (f ExecutorFunc) ExecutePhase(ctx context.Context, task Task) error {
	return f(ctx, task)
}

// AsyncSubmitter runs submitted tasks on background goroutines with bounded
// concurrency. Dispatch never blocks the caller; execution failures are the
// executor's to report through the status layer, not the dispatcher's.
type AsyncSubmitter struct {
	exec  Executor
	group *errgroup.Group
	ctx   context.Context
}

// NewAsyncSubmitter creates a submitter running at most maxConcurrent tasks.
func NewAsyncSubmitter(exec Executor, maxConcurrent int) *AsyncSubmitter {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	group, ctx := errgroup.WithContext(context.Background())
	group.SetLimit(maxConcurrent)
	return &AsyncSubmitter{exec: exec, group: group, ctx: ctx}
}

// Dispatch schedules a task and returns immediately. When every slot is busy
// the task is refused rather than queued, so callers see backpressure.
func (s *AsyncSubmitter) Dispatch(_ context.Context, task Task) error {
	started := s.group.TryGo(func() error {
		if err := s.exec.ExecutePhase(s.ctx, task); err != nil {
			log.Printf("phase %d execution for video %s failed: %v",
				task.PhaseNumber, task.VideoID, err)
		}
		return nil
	})
	if !started {
		return fmt.Errorf("executor at capacity, phase %d for video %s refused",
			task.PhaseNumber, task.VideoID)
	}
	return nil
}

// Close waits for in-flight tasks to finish.
func (s *AsyncSubmitter) Close() error {
	return s.group.Wait()
}
