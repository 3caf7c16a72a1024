package status

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayloadEstimatesRemainingTime(t *testing.T) {
	now := time.Now()
	snap := &Snapshot{
		VideoID:   uuid.New(),
		Status:    StatusProcessing,
		Progress:  25,
		CreatedAt: now.Add(-100 * time.Second),
	}

	p := BuildPayload(snap, now)
	require.NotNil(t, p.EstimatedTimeRemaining)
	// 100s bought 25%, so the remaining 75% extrapolates to 300s.
	assert.InDelta(t, 300, *p.EstimatedTimeRemaining, 1)
}

func TestBuildPayloadNoEstimateOutsideProcessing(t *testing.T) {
	now := time.Now()
	created := now.Add(-time.Minute)

	for _, snap := range []*Snapshot{
		{Status: StatusPending, Progress: 50, CreatedAt: created},
		{Status: StatusComplete, Progress: 100, CreatedAt: created},
		{Status: StatusProcessing, Progress: 0, CreatedAt: created},
		{Status: StatusProcessing, Progress: 100, CreatedAt: created},
	} {
		p := BuildPayload(snap, now)
		assert.Nil(t, p.EstimatedTimeRemaining, "status=%s progress=%d", snap.Status, snap.Progress)
	}
}

func TestBuildPayloadCarriesErrorAndCost(t *testing.T) {
	msg := "render worker crashed"
	snap := &Snapshot{
		VideoID:      uuid.New(),
		Status:       StatusFailed,
		Progress:     40,
		CurrentPhase: "render_chunks",
		ErrorMessage: &msg,
		CostUSD:      1.25,
		PhaseOutputs: map[string]interface{}{"plan": map[string]interface{}{"scenes": 3.0}},
	}

	p := BuildPayload(snap, time.Now())
	require.NotNil(t, p.Error)
	assert.Equal(t, msg, *p.Error)
	assert.Equal(t, 1.25, p.CostUSD)
	assert.Equal(t, "render_chunks", p.CurrentPhase)
	assert.NotNil(t, p.PhaseOutputs)
}

func TestPayloadEqualIgnoresEstimate(t *testing.T) {
	base := Payload{VideoID: uuid.NewString(), Status: StatusProcessing, Progress: 30}

	a, b := base, base
	etaA, etaB := 120.0, 90.0
	a.EstimatedTimeRemaining = &etaA
	b.EstimatedTimeRemaining = &etaB
	assert.True(t, a.Equal(&b), "a moving estimate alone is not a change")

	b.Progress = 31
	assert.False(t, a.Equal(&b))

	assert.False(t, a.Equal(nil))
}
