package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors surfaced by the store. Callers translate these into
// caller-facing error kinds; the store never retries a failed write.
var (
	// ErrNotFound indicates a missing checkpoint, artifact, or status row.
	// Ownership mismatches are reported as ErrNotFound as well, so callers
	// cannot distinguish "does not exist" from "not yours".
	ErrNotFound = errors.New("not found")

	// ErrInvalidLineage indicates a parent checkpoint from a different video
	// or a non-adjacent phase number.
	ErrInvalidLineage = errors.New("invalid checkpoint lineage")

	// ErrCheckpointExists indicates a (video_id, branch_name, phase_number)
	// collision, typically the losing side of a concurrent continuation.
	ErrCheckpointExists = errors.New("checkpoint already exists for branch and phase")

	// ErrDuplicateArtifactVersion indicates a (checkpoint_id, artifact_key,
	// version) collision between racing artifact writers.
	ErrDuplicateArtifactVersion = errors.New("artifact version already exists")
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint violations.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
