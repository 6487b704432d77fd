package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

func TestParseStatusReport_FlatObject(t *testing.T) {
	report, err := parseStatusReport([]byte(
		`{"status":"completed","chunk_count":12,"last_updated":"2026-03-14T09:26:53Z"}`))

	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, report.Status)
	assert.Equal(t, 12, report.ChunkCount)
	assert.Equal(t, 2026, report.LastUpdated.Year())
}

func TestParseStatusReport_DataEnvelope(t *testing.T) {
	report, err := parseStatusReport([]byte(`{"data":{"status":"processing"}}`))

	require.NoError(t, err)
	assert.Equal(t, domain.JobProcessing, report.Status)
}

func TestParseStatusReport_JobEnvelope(t *testing.T) {
	report, err := parseStatusReport([]byte(`{"job":{"status":"failed"}}`))

	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, report.Status)
}

func TestParseStatusReport_Array(t *testing.T) {
	report, err := parseStatusReport([]byte(`[{"status":"pending"},{"status":"failed"}]`))

	require.NoError(t, err)
	// The first element wins.
	assert.Equal(t, domain.JobPending, report.Status)
}

func TestParseStatusReport_EmptyArray(t *testing.T) {
	_, err := parseStatusReport([]byte(`[]`))

	assert.Error(t, err)
}

func TestParseStatusReport_StateAlias(t *testing.T) {
	report, err := parseStatusReport([]byte(`{"state":"in_progress"}`))

	require.NoError(t, err)
	assert.Equal(t, domain.JobProcessing, report.Status)
}

func TestParseStatusReport_MissingStatus(t *testing.T) {
	_, err := parseStatusReport([]byte(`{"chunk_count":3}`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no status")
}

func TestParseStatusReport_Garbage(t *testing.T) {
	_, err := parseStatusReport([]byte(`not json`))

	assert.Error(t, err)
}

func TestNormaliseStatus_Vocabulary(t *testing.T) {
	cases := map[string]domain.JobStatus{
		"pending":     domain.JobPending,
		"QUEUED":      domain.JobPending,
		"processing":  domain.JobProcessing,
		"running":     domain.JobProcessing,
		"chunking":    domain.JobProcessing,
		"completed":   domain.JobCompleted,
		"done":        domain.JobCompleted,
		"SUCCESS":     domain.JobCompleted,
		"failed":      domain.JobFailed,
		"error":       domain.JobFailed,
		"cancelled":   domain.JobFailed,
		"reticulated": domain.JobProcessing, // unknown keeps polling
	}
	for raw, want := range cases {
		got, err := normaliseStatus(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}
