package phases

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportJSON(t *testing.T, overrides map[string]interface{}) []byte {
	t.Helper()
	doc := map[string]interface{}{
		"video_id":         uuid.NewString(),
		"phase":            "plan",
		"status":           "success",
		"output_data":      validPlan(),
		"cost_usd":         0.42,
		"duration_seconds": 12.5,
	}
	for k, v := range overrides {
		if v == nil {
			delete(doc, k)
			continue
		}
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestParseReportSuccess(t *testing.T) {
	report, err := ParseReport(reportJSON(t, nil))
	require.NoError(t, err)
	assert.Equal(t, "plan", report.Phase)
	assert.Equal(t, "success", report.Status)
	assert.Equal(t, 0.42, report.CostUSD)
	assert.NotNil(t, report.OutputData)
}

func TestParseReportFailedCarriesError(t *testing.T) {
	report, err := ParseReport(reportJSON(t, map[string]interface{}{
		"status":        "failed",
		"output_data":   nil,
		"error_message": "model timed out",
	}))
	require.NoError(t, err)
	require.NotNil(t, report.ErrorMessage)
	assert.Equal(t, "model timed out", *report.ErrorMessage)
}

func TestParseReportRejectsEnvelopeViolations(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"missing status":     {"status": nil},
		"unknown phase":      {"phase": "montage"},
		"unknown status":     {"status": "done"},
		"negative cost":      {"cost_usd": -1.0},
		"unexpected field":   {"retries": 3},
		"malformed video id": {"video_id": "not-a-uuid"},
	}
	for name, overrides := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseReport(reportJSON(t, overrides))
			assert.Error(t, err)
		})
	}
}

func TestParseReportRejectsInvalidOutputPayload(t *testing.T) {
	_, err := ParseReport(reportJSON(t, map[string]interface{}{
		"output_data": map[string]interface{}{"concept": "missing scenes"},
	}))
	assert.Error(t, err, "a success report must carry a valid phase payload")
}

func TestParseReportRejectsGarbage(t *testing.T) {
	_, err := ParseReport([]byte("not json"))
	assert.Error(t, err)
}
