package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/video-pipeline/internal/phases"
)

const checkpointColumns = `id, video_id, branch_name, phase_number, version, status,
	cost_usd, phase_output, parent_checkpoint_id, user_id, created_at, approved_at`

// CreateCheckpoint persists a new checkpoint. The parent, when given, must
// belong to the same video and sit exactly one phase below; a branch root
// (nil parent) must be phase 1. Phase output payloads are validated against
// the typed phase contracts before they hit the database.
func (db *DB) CreateCheckpoint(ctx context.Context, input *CheckpointInput) (*Checkpoint, error) {
	if input.ParentCheckpointID == nil {
		if input.PhaseNumber != 1 {
			return nil, fmt.Errorf("branch root must be phase 1, got phase %d: %w",
				input.PhaseNumber, ErrInvalidLineage)
		}
	} else {
		parent, err := db.GetCheckpoint(ctx, *input.ParentCheckpointID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return nil, fmt.Errorf("parent checkpoint %s: %w", *input.ParentCheckpointID, ErrInvalidLineage)
			}
			return nil, err
		}
		if parent.VideoID != input.VideoID {
			return nil, fmt.Errorf("parent checkpoint belongs to video %s: %w", parent.VideoID, ErrInvalidLineage)
		}
		if input.PhaseNumber != parent.PhaseNumber+1 {
			return nil, fmt.Errorf("phase %d does not follow parent phase %d: %w",
				input.PhaseNumber, parent.PhaseNumber, ErrInvalidLineage)
		}
	}

	var outputJSON []byte
	if input.PhaseOutput != nil {
		if err := phases.ValidateOutput(input.PhaseNumber, input.PhaseOutput); err != nil {
			return nil, fmt.Errorf("invalid phase %d output: %w", input.PhaseNumber, err)
		}
		var err error
		outputJSON, err = json.Marshal(input.PhaseOutput)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal phase output: %w", err)
		}
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO checkpoints (video_id, branch_name, phase_number, cost_usd,
		                          phase_output, parent_checkpoint_id, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+checkpointColumns,
		input.VideoID, input.BranchName, input.PhaseNumber, input.CostUSD,
		outputJSON, input.ParentCheckpointID, input.UserID,
	)
	cp, err := scanCheckpoint(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("checkpoint %s/%s/phase %d: %w",
				input.VideoID, input.BranchName, input.PhaseNumber, ErrCheckpointExists)
		}
		return nil, fmt.Errorf("failed to create checkpoint: %w", err)
	}
	return cp, nil
}

// GetCheckpoint retrieves a checkpoint by ID, without its artifacts.
func (db *DB) GetCheckpoint(ctx context.Context, id uuid.UUID) (*Checkpoint, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+checkpointColumns+` FROM checkpoints WHERE id = $1`, id)
	cp, err := scanCheckpoint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("checkpoint %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	return cp, nil
}

// GetCheckpointWithArtifacts retrieves a checkpoint together with every
// artifact row attached to it, superseded versions included.
func (db *DB) GetCheckpointWithArtifacts(ctx context.Context, id uuid.UUID) (*CheckpointWithArtifacts, error) {
	cp, err := db.GetCheckpoint(ctx, id)
	if err != nil {
		return nil, err
	}
	artifacts, err := db.ListArtifacts(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CheckpointWithArtifacts{Checkpoint: *cp, Artifacts: artifacts}, nil
}

// ApproveCheckpoint transitions a checkpoint to approved. Idempotent:
// approving an already-approved checkpoint is a no-op and returns the
// original approved_at.
func (db *DB) ApproveCheckpoint(ctx context.Context, id uuid.UUID) (*Checkpoint, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE checkpoints
		 SET status = $1, approved_at = COALESCE(approved_at, NOW())
		 WHERE id = $2
		 RETURNING `+checkpointColumns,
		CheckpointStatusApproved, id,
	)
	cp, err := scanCheckpoint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("checkpoint %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to approve checkpoint: %w", err)
	}
	return cp, nil
}

// ListCheckpoints retrieves a user's checkpoints for a video, oldest first,
// optionally filtered by branch.
func (db *DB) ListCheckpoints(ctx context.Context, videoID, userID uuid.UUID, branch *string) ([]Checkpoint, error) {
	query := `SELECT ` + checkpointColumns + `
	          FROM checkpoints WHERE video_id = $1 AND user_id = $2`
	args := []any{videoID, userID}
	if branch != nil {
		query += " AND branch_name = $3"
		args = append(args, *branch)
	}
	query += " ORDER BY created_at"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer rows.Close()

	var checkpoints []Checkpoint
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkpoint: %w", err)
		}
		checkpoints = append(checkpoints, *cp)
	}
	return checkpoints, rows.Err()
}

// GetCurrentCheckpoint retrieves the most recently created pending checkpoint
// of a video, i.e. the one awaiting review.
func (db *DB) GetCurrentCheckpoint(ctx context.Context, videoID, userID uuid.UUID) (*CheckpointWithArtifacts, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+checkpointColumns+`
		 FROM checkpoints
		 WHERE video_id = $1 AND user_id = $2 AND status = $3
		 ORDER BY created_at DESC
		 LIMIT 1`,
		videoID, userID, CheckpointStatusPending,
	)
	cp, err := scanCheckpoint(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no pending checkpoint for video %s: %w", videoID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get current checkpoint: %w", err)
	}
	artifacts, err := db.ListArtifacts(ctx, cp.ID)
	if err != nil {
		return nil, err
	}
	return &CheckpointWithArtifacts{Checkpoint: *cp, Artifacts: artifacts}, nil
}

// ListBranchNames retrieves the distinct branch names of a video. Used by
// branch resolution to pick a collision-free fork name.
func (db *DB) ListBranchNames(ctx context.Context, videoID uuid.UUID) ([]string, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT branch_name FROM checkpoints WHERE video_id = $1`, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list branch names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan branch name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// HasChildCheckpoint reports whether any checkpoint names the given one as
// parent. A child's existence marks the checkpoint as dispatched.
func (db *DB) HasChildCheckpoint(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := db.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM checkpoints WHERE parent_checkpoint_id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for child checkpoint: %w", err)
	}
	return exists, nil
}

// ListBranches summarizes the tip of every branch of a video.
func (db *DB) ListBranches(ctx context.Context, videoID, userID uuid.UUID) ([]BranchSummary, error) {
	checkpoints, err := db.ListCheckpoints(ctx, videoID, userID, nil)
	if err != nil {
		return nil, err
	}
	return SummarizeBranches(checkpoints), nil
}

// GetCheckpointTree retrieves all checkpoints of a video assembled into a
// forest keyed on parent_checkpoint_id.
func (db *DB) GetCheckpointTree(ctx context.Context, videoID, userID uuid.UUID) ([]*CheckpointNode, error) {
	checkpoints, err := db.ListCheckpoints(ctx, videoID, userID, nil)
	if err != nil {
		return nil, err
	}
	return BuildCheckpointTree(checkpoints), nil
}

// scanCheckpoint reads one checkpoint row from a pgx row or rows cursor.
func scanCheckpoint(row pgx.Row) (*Checkpoint, error) {
	var cp Checkpoint
	var outputJSON []byte
	err := row.Scan(&cp.ID, &cp.VideoID, &cp.BranchName, &cp.PhaseNumber, &cp.Version,
		&cp.Status, &cp.CostUSD, &outputJSON, &cp.ParentCheckpointID, &cp.UserID,
		&cp.CreatedAt, &cp.ApprovedAt)
	if err != nil {
		return nil, err
	}
	if outputJSON != nil {
		_ = json.Unmarshal(outputJSON, &cp.PhaseOutput)
	}
	return &cp, nil
}
