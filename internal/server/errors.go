package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/video-pipeline/internal/continuation"
	"github.com/jonathan/video-pipeline/internal/db"
	"github.com/jonathan/video-pipeline/internal/status"
)

// errorKind maps a core error to the HTTP status and the generic message
// returned to the client. Missing and unauthorized records are both 404 so
// callers cannot enumerate other users' videos; durable-store failures are a
// bare 500 with no detail.
func errorKind(err error) (int, string) {
	switch {
	case errors.Is(err, db.ErrNotFound), errors.Is(err, status.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, continuation.ErrAlreadyDispatched),
		errors.Is(err, db.ErrCheckpointExists),
		errors.Is(err, db.ErrDuplicateArtifactVersion):
		return http.StatusConflict, "conflict: checkpoint already continued"
	case errors.Is(err, db.ErrInvalidLineage),
		errors.Is(err, continuation.ErrFinalPhase):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
