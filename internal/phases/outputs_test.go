package phases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPlan() map[string]interface{} {
	return map[string]interface{}{
		"concept": "a city wakes up",
		"scenes": []interface{}{
			map[string]interface{}{"index": 0, "description": "dawn skyline", "duration_seconds": 4.0},
			map[string]interface{}{"index": 1, "description": "street traffic", "duration_seconds": 6.0},
		},
		"total_duration_seconds": 10.0,
	}
}

func TestPhaseNames(t *testing.T) {
	assert.Equal(t, "plan", Name(PhasePlan))
	assert.Equal(t, "refine", Name(PhaseRefine))
	assert.Equal(t, "", Name(0))
	assert.Equal(t, "", Name(5))

	assert.Equal(t, PhaseStoryboard, Number("storyboard"))
	assert.Equal(t, 0, Number("montage"))
}

func TestDecodePlanOutput(t *testing.T) {
	out, err := DecodeOutput(PhasePlan, validPlan())
	require.NoError(t, err)
	require.NotNil(t, out.Plan)
	assert.Equal(t, "plan", out.Phase)
	assert.Len(t, out.Plan.Scenes, 2)
	assert.Nil(t, out.Storyboard)
}

func TestDecodeOutputRejectsUnknownPhase(t *testing.T) {
	_, err := DecodeOutput(7, validPlan())
	assert.ErrorContains(t, err, "unknown phase")
}

func TestDecodeOutputRejectsMissingFields(t *testing.T) {
	plan := validPlan()
	delete(plan, "concept")
	_, err := DecodeOutput(PhasePlan, plan)
	assert.Error(t, err)

	_, err = DecodeOutput(PhaseStoryboard, map[string]interface{}{
		"frames": []interface{}{},
	})
	assert.Error(t, err, "a storyboard needs at least one frame")
}

func TestDecodeOutputRejectsBadNestedValues(t *testing.T) {
	_, err := DecodeOutput(PhaseStoryboard, map[string]interface{}{
		"frames": []interface{}{
			map[string]interface{}{"scene_index": 0, "image_url": "not a url", "prompt": "dawn"},
		},
	})
	assert.Error(t, err)

	_, err = DecodeOutput(PhaseRenderChunks, map[string]interface{}{
		"chunks": []interface{}{
			map[string]interface{}{"index": 0, "video_url": "https://cdn.example.com/c0.mp4", "duration_seconds": 0.0, "cost_usd": 0.1},
		},
	})
	assert.Error(t, err, "zero-length chunks are invalid")
}

func TestDecodeRefineOutput(t *testing.T) {
	out, err := DecodeOutput(PhaseRefine, map[string]interface{}{
		"final_video_url":  "https://cdn.example.com/final.mp4",
		"resolution":       "1920x1080",
		"duration_seconds": 42.5,
	})
	require.NoError(t, err)
	require.NotNil(t, out.Refine)
	assert.Equal(t, "1920x1080", out.Refine.Resolution)
	assert.Empty(t, out.Refine.AudioURL, "audio track is optional")
}

func TestValidateOutput(t *testing.T) {
	assert.NoError(t, ValidateOutput(PhasePlan, validPlan()))
	assert.Error(t, ValidateOutput(PhasePlan, map[string]interface{}{"concept": "x"}))
}
