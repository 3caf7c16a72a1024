package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/video-pipeline/internal/status"
)

// StatusStore adapts the database to the durable status tier. One row per
// video; fields are last-write-wins with no cross-field atomicity.
type StatusStore struct {
	db *DB
}

// Status returns the durable status tier backed by this database.
func (db *DB) Status() *StatusStore {
	return &StatusStore{db: db}
}

// Get retrieves the authoritative status snapshot for a video.
func (s *StatusStore) Get(ctx context.Context, videoID uuid.UUID) (*status.Snapshot, error) {
	var snap status.Snapshot
	var specJSON, outputsJSON []byte
	err := s.db.pool.QueryRow(ctx,
		`SELECT video_id, user_id, status, progress, current_phase, error_message,
		        cost_usd, spec, phase_outputs, created_at, updated_at
		 FROM video_status WHERE video_id = $1`,
		videoID,
	).Scan(&snap.VideoID, &snap.UserID, &snap.Status, &snap.Progress, &snap.CurrentPhase,
		&snap.ErrorMessage, &snap.CostUSD, &specJSON, &outputsJSON,
		&snap.CreatedAt, &snap.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, status.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get video status: %w", err)
	}
	if specJSON != nil {
		_ = json.Unmarshal(specJSON, &snap.Spec)
	}
	if outputsJSON != nil {
		_ = json.Unmarshal(outputsJSON, &snap.PhaseOutputs)
	}
	return &snap, nil
}

// Apply upserts a partial status update. The row is created on first write;
// later writes only touch the fields they carry.
func (s *StatusStore) Apply(ctx context.Context, videoID, userID uuid.UUID, fields status.Fields) error {
	if fields.IsZero() {
		return nil
	}

	_, err := s.db.pool.Exec(ctx,
		`INSERT INTO video_status (video_id, user_id) VALUES ($1, $2)
		 ON CONFLICT (video_id) DO NOTHING`,
		videoID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure status row: %w", err)
	}

	set := []string{"updated_at = NOW()"}
	args := []any{videoID}
	argNum := 2
	add := func(column string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", column, argNum))
		args = append(args, value)
		argNum++
	}

	if fields.Status != nil {
		add("status", *fields.Status)
	}
	if fields.Progress != nil {
		add("progress", *fields.Progress)
	}
	if fields.CurrentPhase != nil {
		add("current_phase", *fields.CurrentPhase)
	}
	if fields.ErrorMessage != nil {
		add("error_message", *fields.ErrorMessage)
	}
	if fields.CostUSD != nil {
		add("cost_usd", *fields.CostUSD)
	}
	if fields.Spec != nil {
		specJSON, err := json.Marshal(fields.Spec)
		if err != nil {
			return fmt.Errorf("failed to marshal status spec: %w", err)
		}
		add("spec", specJSON)
	}
	if fields.PhaseOutputs != nil {
		outputsJSON, err := json.Marshal(fields.PhaseOutputs)
		if err != nil {
			return fmt.Errorf("failed to marshal phase outputs: %w", err)
		}
		add("phase_outputs", outputsJSON)
	}

	query := "UPDATE video_status SET "
	for i, clause := range set {
		if i > 0 {
			query += ", "
		}
		query += clause
	}
	query += " WHERE video_id = $1"

	if _, err := s.db.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update video status: %w", err)
	}
	return nil
}
