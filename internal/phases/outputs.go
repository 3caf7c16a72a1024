package phases

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PlanOutput is the payload of the plan phase.
type PlanOutput struct {
	Concept              string         `json:"concept" validate:"required"`
	Scenes               []PlannedScene `json:"scenes" validate:"required,min=1,dive"`
	TotalDurationSeconds float64        `json:"total_duration_seconds" validate:"gt=0"`
}

// PlannedScene is one scene of the plan.
type PlannedScene struct {
	Index           int     `json:"index" validate:"gte=0"`
	Description     string  `json:"description" validate:"required"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gt=0"`
}

// StoryboardOutput is the payload of the storyboard phase.
type StoryboardOutput struct {
	Frames []StoryboardFrame `json:"frames" validate:"required,min=1,dive"`
}

// StoryboardFrame is one rendered still keyed to a planned scene.
type StoryboardFrame struct {
	SceneIndex int    `json:"scene_index" validate:"gte=0"`
	ImageURL   string `json:"image_url" validate:"required,url"`
	Prompt     string `json:"prompt" validate:"required"`
}

// RenderChunksOutput is the payload of the render phase.
type RenderChunksOutput struct {
	Chunks []RenderedChunk `json:"chunks" validate:"required,min=1,dive"`
}

// RenderedChunk is one rendered video segment.
type RenderedChunk struct {
	Index           int     `json:"index" validate:"gte=0"`
	VideoURL        string  `json:"video_url" validate:"required,url"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gt=0"`
	CostUSD         float64 `json:"cost_usd" validate:"gte=0"`
}

// RefineOutput is the payload of the final refine phase.
type RefineOutput struct {
	FinalVideoURL   string  `json:"final_video_url" validate:"required,url"`
	AudioURL        string  `json:"audio_url" validate:"omitempty,url"`
	Resolution      string  `json:"resolution" validate:"required"`
	DurationSeconds float64 `json:"duration_seconds" validate:"gt=0"`
}

// Output is the tagged union over all phase payloads; exactly one member is
// set, selected by Phase.
type Output struct {
	Phase        string              `json:"phase"`
	Plan         *PlanOutput         `json:"plan,omitempty"`
	Storyboard   *StoryboardOutput   `json:"storyboard,omitempty"`
	RenderChunks *RenderChunksOutput `json:"render_chunks,omitempty"`
	Refine       *RefineOutput       `json:"refine,omitempty"`
}

// DecodeOutput parses and validates a raw phase output document into the
// typed payload for the given phase number.
func DecodeOutput(phase int, raw map[string]interface{}) (*Output, error) {
	name := Name(phase)
	if name == "" {
		return nil, fmt.Errorf("unknown phase number %d", phase)
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal phase output: %w", err)
	}

	out := &Output{Phase: name}
	var payload any
	switch phase {
	case PhasePlan:
		out.Plan = &PlanOutput{}
		payload = out.Plan
	case PhaseStoryboard:
		out.Storyboard = &StoryboardOutput{}
		payload = out.Storyboard
	case PhaseRenderChunks:
		out.RenderChunks = &RenderChunksOutput{}
		payload = out.RenderChunks
	case PhaseRefine:
		out.Refine = &RefineOutput{}
		payload = out.Refine
	}

	if err := json.Unmarshal(data, payload); err != nil {
		return nil, fmt.Errorf("malformed %s output: %w", name, err)
	}
	if err := validate.Struct(payload); err != nil {
		return nil, fmt.Errorf("invalid %s output: %w", name, err)
	}
	return out, nil
}

// ValidateOutput checks a raw phase output document without keeping the
// decoded form.
func ValidateOutput(phase int, raw map[string]interface{}) error {
	_, err := DecodeOutput(phase, raw)
	return err
}
