// Package status implements the two-tier status propagation layer: an
// ephemeral TTL cache in front of a durable per-video row, plus the polling
// watcher that backs streaming reads.
package status

import (
	"time"

	"github.com/google/uuid"
)

// Video status constants
const (
	StatusPending        = "pending"
	StatusProcessing     = "processing"
	StatusAwaitingReview = "awaiting_review"
	StatusComplete       = "complete"
	StatusFailed         = "failed"
)

// IsTerminal reports whether a status ends the pipeline (and any stream).
func IsTerminal(s string) bool {
	return s == StatusComplete || s == StatusFailed
}

// Snapshot is the full status record of one video. The durable copy is
// authoritative; cached copies expire and carry no ordering guarantee beyond
// last-write-wins per field.
type Snapshot struct {
	VideoID      uuid.UUID              `json:"video_id"`
	UserID       uuid.UUID              `json:"user_id"`
	Status       string                 `json:"status"`
	Progress     int                    `json:"progress"`
	CurrentPhase string                 `json:"current_phase"`
	ErrorMessage *string                `json:"error_message,omitempty"`
	CostUSD      float64                `json:"cost_usd"`
	Spec         map[string]interface{} `json:"spec,omitempty"`
	PhaseOutputs map[string]interface{} `json:"phase_outputs,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// Fields is a partial status update. Nil members are left untouched, so
// executors can write progress, phase, cost, and errors independently.
type Fields struct {
	Status       *string
	Progress     *int
	CurrentPhase *string
	ErrorMessage *string
	CostUSD      *float64
	Spec         map[string]interface{}
	PhaseOutputs map[string]interface{}
}

// IsZero reports whether the update carries no fields at all.
func (f Fields) IsZero() bool {
	return f.Status == nil && f.Progress == nil && f.CurrentPhase == nil &&
		f.ErrorMessage == nil && f.CostUSD == nil && f.Spec == nil && f.PhaseOutputs == nil
}

// applyTo overlays the non-nil fields onto a snapshot.
func (f Fields) applyTo(s *Snapshot) {
	if f.Status != nil {
		s.Status = *f.Status
	}
	if f.Progress != nil {
		s.Progress = *f.Progress
	}
	if f.CurrentPhase != nil {
		s.CurrentPhase = *f.CurrentPhase
	}
	if f.ErrorMessage != nil {
		s.ErrorMessage = f.ErrorMessage
	}
	if f.CostUSD != nil {
		s.CostUSD = *f.CostUSD
	}
	if f.Spec != nil {
		s.Spec = f.Spec
	}
	if f.PhaseOutputs != nil {
		s.PhaseOutputs = f.PhaseOutputs
	}
	s.UpdatedAt = time.Now()
}
