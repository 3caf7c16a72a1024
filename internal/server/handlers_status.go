package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/video-pipeline/internal/server/middleware"
	"github.com/jonathan/video-pipeline/internal/status"
)

// StatusUpdateRequest is the phase-executor write surface: every field beyond
// user_id is optional and written independently, last-write-wins.
type StatusUpdateRequest struct {
	UserID       string                 `json:"user_id" validate:"required,uuid"`
	Status       *string                `json:"status,omitempty" validate:"omitempty,oneof=pending processing awaiting_review complete failed"`
	Progress     *int                   `json:"progress,omitempty" validate:"omitempty,gte=0,lte=100"`
	CurrentPhase *string                `json:"current_phase,omitempty" validate:"omitempty,oneof=plan storyboard render_chunks refine"`
	ErrorMessage *string                `json:"error_message,omitempty"`
	CostUSD      *float64               `json:"cost_usd,omitempty" validate:"omitempty,gte=0"`
	Spec         map[string]interface{} `json:"spec,omitempty"`
	PhaseOutputs map[string]interface{} `json:"phase_outputs,omitempty"`
}

// handleGetStatus returns the point-in-time status payload.
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
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

	snap, err := s.statuses.Get(r.Context(), videoID, userID)
	if err != nil {
		s.coreError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, status.BuildPayload(snap, time.Now()))
}

// handleStreamStatus serves the status stream as Server-Sent Events until the
// video reaches a terminal state or the client disconnects.
func (s *Server) handleStreamStatus(w http.ResponseWriter, r *http.Request) {
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

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	if err := s.watcher.Watch(r.Context(), videoID, userID, sse.WriteEvent); err != nil {
		log.Printf("Status stream for video %s ended: %v", videoID, err)
	}
}

// handleWriteStatus accepts progress updates from phase executors and fans
// them out to both status tiers.
func (s *Server) handleWriteStatus(w http.ResponseWriter, r *http.Request) {
	videoID, err := pathUUID(r, "video_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var req StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid status update: "+err.Error())
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid user_id format")
		return
	}

	fields := status.Fields{
		Status:       req.Status,
		Progress:     req.Progress,
		CurrentPhase: req.CurrentPhase,
		ErrorMessage: req.ErrorMessage,
		CostUSD:      req.CostUSD,
		Spec:         req.Spec,
		PhaseOutputs: req.PhaseOutputs,
	}
	if err := s.statuses.Write(r.Context(), videoID, userID, fields); err != nil {
		s.coreError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}
