package phases

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
)

// ExecutorReport is the wire contract phase executors produce when a phase
// finishes: the outcome, its cost, and optionally the checkpoint it paused at.
type ExecutorReport struct {
	VideoID         uuid.UUID              `json:"video_id"`
	Phase           string                 `json:"phase"`
	Status          string                 `json:"status"`
	OutputData      map[string]interface{} `json:"output_data,omitempty"`
	CostUSD         float64                `json:"cost_usd"`
	DurationSeconds float64                `json:"duration_seconds"`
	ErrorMessage    *string                `json:"error_message,omitempty"`
	CheckpointID    *uuid.UUID             `json:"checkpoint_id,omitempty"`
}

// reportSchema validates the executor report envelope. Payload contents are
// validated separately by DecodeOutput.
const reportSchema = `{
	"type": "object",
	"required": ["video_id", "phase", "status", "cost_usd", "duration_seconds"],
	"properties": {
		"video_id": {"type": "string", "format": "uuid"},
		"phase": {"type": "string", "enum": ["plan", "storyboard", "render_chunks", "refine"]},
		"status": {"type": "string", "enum": ["success", "failed", "skipped"]},
		"output_data": {"type": "object"},
		"cost_usd": {"type": "number", "minimum": 0},
		"duration_seconds": {"type": "number", "minimum": 0},
		"error_message": {"type": ["string", "null"]},
		"checkpoint_id": {"type": ["string", "null"], "format": "uuid"}
	},
	"additionalProperties": false
}`

var compiledReportSchema = mustCompileSchema(reportSchema)

func mustCompileSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded report schema: %v", err))
	}
	return schema
}

// ParseReport validates a raw executor report against the embedded schema and
// decodes it. A successful report for a known phase also has its output_data
// checked against the phase's typed payload.
func ParseReport(raw []byte) (*ExecutorReport, error) {
	result, err := compiledReportSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to validate executor report: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return nil, fmt.Errorf("invalid executor report: %s", strings.Join(msgs, "; "))
	}

	var report ExecutorReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to decode executor report: %w", err)
	}

	if report.Status == "success" && report.OutputData != nil {
		if err := ValidateOutput(Number(report.Phase), report.OutputData); err != nil {
			return nil, err
		}
	}
	return &report, nil
}
