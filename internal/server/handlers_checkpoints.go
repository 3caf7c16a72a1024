package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/video-pipeline/internal/server/middleware"
)

// pathUUID parses a UUID path segment.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s format", name)
	}
	return id, nil
}

// handleListCheckpoints returns a video's checkpoints, optionally filtered by
// branch.
func (s *Server) handleListCheckpoints(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	videoID, err := pathUUID(r, "video_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var branch *string
	if b := r.URL.Query().Get("branch"); b != "" {
		branch = &b
	}

	checkpoints, err := s.checkpoints.ListCheckpoints(r.Context(), videoID, userID, branch)
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"checkpoints": checkpoints})
}

// handleGetCheckpoint returns one checkpoint with its artifacts.
func (s *Server) handleGetCheckpoint(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	cp, err := s.checkpoints.GetCheckpointWithArtifacts(r.Context(), id)
	if err != nil {
		s.coreError(w, err)
		return
	}
	// Someone else's checkpoint is indistinguishable from a missing one.
	if cp.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "not found")
		return
	}
	s.jsonResponse(w, http.StatusOK, cp)
}

// handleCurrentCheckpoint returns the latest pending checkpoint of a video.
func (s *Server) handleCurrentCheckpoint(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	videoID, err := pathUUID(r, "video_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	cp, err := s.checkpoints.GetCurrentCheckpoint(r.Context(), videoID, userID)
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, cp)
}

// handleListBranches returns the active branches of a video.
func (s *Server) handleListBranches(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	videoID, err := pathUUID(r, "video_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	branches, err := s.checkpoints.ListBranches(r.Context(), videoID, userID)
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"branches": branches})
}

// handleCheckpointTree returns the full checkpoint forest of a video.
func (s *Server) handleCheckpointTree(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	videoID, err := pathUUID(r, "video_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tree, err := s.checkpoints.GetCheckpointTree(r.Context(), videoID, userID)
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"tree": tree})
}

// handleApproveCheckpoint approves a checkpoint. Approving twice is a no-op.
func (s *Server) handleApproveCheckpoint(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	cp, err := s.checkpoints.GetCheckpoint(r.Context(), id)
	if err != nil {
		s.coreError(w, err)
		return
	}
	if cp.UserID != userID {
		s.errorResponse(w, http.StatusNotFound, "not found")
		return
	}

	approved, err := s.checkpoints.ApproveCheckpoint(r.Context(), id)
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, approved)
}

// handleContinue resumes the pipeline from a checkpoint on its resolved
// branch.
func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	videoID, err := pathUUID(r, "video_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	checkpointID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.dispatcher.Continue(r.Context(), videoID, checkpointID, userID)
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}
