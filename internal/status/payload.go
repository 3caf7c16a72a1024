package status

import (
	"math"
	"reflect"
	"time"
)

// Payload is the client-facing status shape served by both the point-in-time
// GET and the stream.
type Payload struct {
	VideoID                string                 `json:"video_id"`
	Status                 string                 `json:"status"`
	Progress               int                    `json:"progress"`
	CurrentPhase           string                 `json:"current_phase,omitempty"`
	EstimatedTimeRemaining *float64               `json:"estimated_time_remaining,omitempty"`
	Error                  *string                `json:"error,omitempty"`
	CostUSD                float64                `json:"cost_usd"`
	PhaseOutputs           map[string]interface{} `json:"phase_outputs,omitempty"`
}

// BuildPayload converts a snapshot to the client-facing shape. The remaining
// time estimate is extrapolated from elapsed wall time and progress; it is
// informational only.
func BuildPayload(snap *Snapshot, now time.Time) *Payload {
	p := &Payload{
		VideoID:      snap.VideoID.String(),
		Status:       snap.Status,
		Progress:     snap.Progress,
		CurrentPhase: snap.CurrentPhase,
		Error:        snap.ErrorMessage,
		CostUSD:      snap.CostUSD,
		PhaseOutputs: snap.PhaseOutputs,
	}
	if snap.Status == StatusProcessing && snap.Progress > 0 && snap.Progress < 100 {
		elapsed := now.Sub(snap.CreatedAt).Seconds()
		if elapsed > 0 {
			remaining := math.Round(elapsed * float64(100-snap.Progress) / float64(snap.Progress))
			p.EstimatedTimeRemaining = &remaining
		}
	}
	return p
}

// Equal reports whether two payloads are structurally identical, ignoring
// the time estimate: it moves every poll and would defeat diff suppression.
func (p *Payload) Equal(other *Payload) bool {
	if other == nil {
		return false
	}
	a, b := *p, *other
	a.EstimatedTimeRemaining = nil
	b.EstimatedTimeRemaining = nil
	return reflect.DeepEqual(a, b)
}
