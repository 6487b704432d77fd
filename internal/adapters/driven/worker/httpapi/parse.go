package httpapi

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
)

// statusPayload is the flat status object shared by all envelope
// shapes.
type statusPayload struct {
	Status      string     `json:"status"`
	State       string     `json:"state"` // older workers use "state"
	ChunkCount  int        `json:"chunk_count"`
	LastUpdated *time.Time `json:"last_updated"`
}

// statusEnvelope covers the wrapped response shapes.
type statusEnvelope struct {
	Data *statusPayload `json:"data"`
	Job  *statusPayload `json:"job"`
}

// parseStatusReport decodes a status response in any of the shapes the
// worker fleet produces:
//
//   - a flat object: {"status": "processing", ...}
//   - wrapped: {"data": {...}}
//   - nested: {"job": {...}}
//   - an array with one element: [{...}]
func parseStatusReport(body []byte) (driven.JobStatusReport, error) {
	payload, err := extractPayload(body)
	if err != nil {
		return driven.JobStatusReport{}, err
	}

	raw := payload.Status
	if raw == "" {
		raw = payload.State
	}
	status, err := normaliseStatus(raw)
	if err != nil {
		return driven.JobStatusReport{}, err
	}

	report := driven.JobStatusReport{
		Status:     status,
		ChunkCount: payload.ChunkCount,
	}
	if payload.LastUpdated != nil {
		report.LastUpdated = *payload.LastUpdated
	}
	return report, nil
}

// extractPayload finds the status object inside whichever envelope the
// worker used.
func extractPayload(body []byte) (*statusPayload, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var items []statusPayload
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("httpapi: decode status array: %w", err)
		}
		if len(items) == 0 {
			return nil, fmt.Errorf("httpapi: empty status array")
		}
		return &items[0], nil
	}

	var envelope statusEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("httpapi: decode status envelope: %w", err)
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	if envelope.Job != nil {
		return envelope.Job, nil
	}

	var flat statusPayload
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("httpapi: decode status object: %w", err)
	}
	return &flat, nil
}

// normaliseStatus maps the worker's status vocabulary onto the domain
// statuses. Unrecognised non-empty statuses map to processing so the
// poll loop keeps watching; the attempt cap bounds how long.
func normaliseStatus(raw string) (domain.JobStatus, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return "", fmt.Errorf("httpapi: status response carries no status")
	case "pending", "queued", "accepted":
		return domain.JobPending, nil
	case "processing", "in_progress", "running", "chunking":
		return domain.JobProcessing, nil
	case "completed", "complete", "done", "success", "succeeded":
		return domain.JobCompleted, nil
	case "failed", "error", "cancelled":
		return domain.JobFailed, nil
	default:
		return domain.JobProcessing, nil
	}
}
