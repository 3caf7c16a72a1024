package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const artifactColumns = `id, checkpoint_id, artifact_type, artifact_key, version,
	s3_url, s3_key, metadata, parent_artifact_id, created_at`

// CreateArtifact persists a new artifact version for a checkpoint. Racing
// writers on the same (checkpoint_id, artifact_key, version) lose with
// ErrDuplicateArtifactVersion.
func (db *DB) CreateArtifact(ctx context.Context, input *ArtifactInput) (*Artifact, error) {
	if input.Version < 1 {
		return nil, fmt.Errorf("artifact version must be >= 1, got %d", input.Version)
	}

	var metadataJSON []byte
	if input.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(input.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal artifact metadata: %w", err)
		}
	}

	row := db.pool.QueryRow(ctx,
		`INSERT INTO artifacts (checkpoint_id, artifact_type, artifact_key, version,
		                        s3_url, s3_key, metadata, parent_artifact_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+artifactColumns,
		input.CheckpointID, input.ArtifactType, input.ArtifactKey, input.Version,
		input.S3URL, input.S3Key, metadataJSON, input.ParentArtifactID,
	)
	artifact, err := scanArtifact(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("artifact %s v%d on checkpoint %s: %w",
				input.ArtifactKey, input.Version, input.CheckpointID, ErrDuplicateArtifactVersion)
		}
		return nil, fmt.Errorf("failed to create artifact: %w", err)
	}
	return artifact, nil
}

// GetArtifact retrieves an artifact by ID
func (db *DB) GetArtifact(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+artifactColumns+` FROM artifacts WHERE id = $1`, id)
	artifact, err := scanArtifact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("artifact %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get artifact: %w", err)
	}
	return artifact, nil
}

// ListArtifacts retrieves every artifact row of a checkpoint ordered by key
// then version, so per-key version chains come out contiguous and ascending.
func (db *DB) ListArtifacts(ctx context.Context, checkpointID uuid.UUID) ([]Artifact, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+artifactColumns+`
		 FROM artifacts
		 WHERE checkpoint_id = $1
		 ORDER BY artifact_key, version`,
		checkpointID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		artifact, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		artifacts = append(artifacts, *artifact)
	}
	return artifacts, rows.Err()
}

func scanArtifact(row pgx.Row) (*Artifact, error) {
	var a Artifact
	var metadataJSON []byte
	err := row.Scan(&a.ID, &a.CheckpointID, &a.ArtifactType, &a.ArtifactKey, &a.Version,
		&a.S3URL, &a.S3Key, &metadataJSON, &a.ParentArtifactID, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if metadataJSON != nil {
		_ = json.Unmarshal(metadataJSON, &a.Metadata)
	}
	return &a, nil
}
