// Package continuation validates that a reviewed checkpoint may continue,
// resolves the branch it continues on, and hands the next phase off to the
// external executor.
package continuation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/video-pipeline/internal/branching"
	"github.com/jonathan/video-pipeline/internal/db"
	"github.com/jonathan/video-pipeline/internal/phases"
)

// Dispatcher errors
var (
	// ErrAlreadyDispatched indicates a checkpoint that already has a child;
	// continuation is at-most-once per checkpoint per branch fork.
	ErrAlreadyDispatched = errors.New("checkpoint already dispatched")

	// ErrFinalPhase indicates a continuation from the last pipeline phase.
	ErrFinalPhase = errors.New("checkpoint is at the final phase")
)

// CheckpointStore is the slice of the store the dispatcher needs.
type CheckpointStore interface {
	GetCheckpointWithArtifacts(ctx context.Context, id uuid.UUID) (*db.CheckpointWithArtifacts, error)
	HasChildCheckpoint(ctx context.Context, id uuid.UUID) (bool, error)
	ListBranchNames(ctx context.Context, videoID uuid.UUID) ([]string, error)
	CreateCheckpoint(ctx context.Context, input *db.CheckpointInput) (*db.Checkpoint, error)
}

// Task is one unit of work handed to the external phase executor.
type Task struct {
	VideoID     uuid.UUID
	UserID      uuid.UUID
	BranchName  string
	PhaseNumber int
	Inputs      []db.Artifact
}

// TaskSubmitter submits tasks to the executor, fire-and-forget. What happens
// on the other side is outside this core's contract.
type TaskSubmitter interface {
	Dispatch(ctx context.Context, task Task) error
}

// Result is returned to the caller of a successful continuation.
type Result struct {
	Message          string `json:"message"`
	NextPhase        int    `json:"next_phase"`
	BranchName       string `json:"branch_name"`
	CreatedNewBranch bool   `json:"created_new_branch"`
}

// Dispatcher coordinates branch resolution and handoff.
type Dispatcher struct {
	store CheckpointStore
	tasks TaskSubmitter
}

// NewDispatcher creates a dispatcher over the given store and submitter.
func NewDispatcher(store CheckpointStore, tasks TaskSubmitter) *Dispatcher {
	return &Dispatcher{store: store, tasks: tasks}
}

// Continue resumes the pipeline from a checkpoint. The next-phase placeholder
// checkpoint is created on the resolved branch before handoff, so a child's
// existence is the dispatched marker. Two continuations racing past the child
// check are arbitrated by the store's (video_id, branch_name, phase_number)
// uniqueness: the loser surfaces here as ErrAlreadyDispatched.
func (d *Dispatcher) Continue(ctx context.Context, videoID, checkpointID, userID uuid.UUID) (*Result, error) {
	cp, err := d.store.GetCheckpointWithArtifacts(ctx, checkpointID)
	if err != nil {
		return nil, err
	}
	// Ownership and video mismatches read as not-found, never as forbidden.
	if cp.VideoID != videoID || cp.UserID != userID {
		return nil, fmt.Errorf("checkpoint %s: %w", checkpointID, db.ErrNotFound)
	}
	if cp.PhaseNumber >= phases.PhaseCount {
		return nil, fmt.Errorf("phase %d: %w", cp.PhaseNumber, ErrFinalPhase)
	}

	dispatched, err := d.store.HasChildCheckpoint(ctx, checkpointID)
	if err != nil {
		return nil, err
	}
	if dispatched {
		return nil, fmt.Errorf("checkpoint %s: %w", checkpointID, ErrAlreadyDispatched)
	}

	branchNames, err := d.store.ListBranchNames(ctx, videoID)
	if err != nil {
		return nil, err
	}
	branchName, forked := branching.Resolve(cp, branchNames)
	nextPhase := cp.PhaseNumber + 1

	if _, err := d.store.CreateCheckpoint(ctx, &db.CheckpointInput{
		VideoID:            videoID,
		BranchName:         branchName,
		PhaseNumber:        nextPhase,
		UserID:             cp.UserID,
		ParentCheckpointID: &cp.ID,
	}); err != nil {
		if errors.Is(err, db.ErrCheckpointExists) {
			return nil, fmt.Errorf("checkpoint %s lost continuation race: %w", checkpointID, ErrAlreadyDispatched)
		}
		return nil, err
	}

	task := Task{
		VideoID:     videoID,
		UserID:      cp.UserID,
		BranchName:  branchName,
		PhaseNumber: nextPhase,
		Inputs:      db.CurrentArtifacts(cp.Artifacts),
	}
	if err := d.tasks.Dispatch(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to submit phase %d for video %s: %w", nextPhase, videoID, err)
	}

	return &Result{
		Message:          fmt.Sprintf("continuing on branch %s", branchName),
		NextPhase:        nextPhase,
		BranchName:       branchName,
		CreatedNewBranch: forked,
	}, nil
}
