// Package httpapi provides an IndexWorker adapter over the indexing
// worker's HTTP API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
)

// Ensure Worker implements the interface.
var _ driven.IndexWorker = (*Worker)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the worker client.
type Config struct {
	// BaseURL is the worker API base URL (required).
	BaseURL string

	// APIKey authenticates requests (required).
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Worker submits indexing jobs and polls their status over HTTP. The
// worker fleet runs several API versions with slightly different
// response envelopes, so status parsing is shape-tolerant.
type Worker struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// submitRequest is the job submission payload.
type submitRequest struct {
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	TenantID string `json:"tenant_id"`
}

// submitResponse is the job submission reply.
type submitResponse struct {
	Accepted         *bool   `json:"accepted"`
	EstimatedSeconds float64 `json:"estimated_seconds"`
	Error            string  `json:"error,omitempty"`
}

// NewWorker creates a new worker client.
func NewWorker(cfg Config) (*Worker, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("httpapi: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("httpapi: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Worker{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}, nil
}

// Submit asks the worker to index a file.
func (w *Worker) Submit(ctx context.Context, req driven.IndexRequest) (driven.IndexReceipt, error) {
	jsonBody, err := json.Marshal(submitRequest{
		FileURL:  req.FileURL,
		FileName: req.FileName,
		TenantID: req.TenantID,
	})
	if err != nil {
		return driven.IndexReceipt{}, fmt.Errorf("httpapi: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		w.baseURL+"/v1/jobs",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return driven.IndexReceipt{}, fmt.Errorf("httpapi: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, body, err := w.do(httpReq)
	if err != nil {
		return driven.IndexReceipt{}, err
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return driven.IndexReceipt{Accepted: false}, nil
	default:
		return driven.IndexReceipt{}, fmt.Errorf("httpapi: submit returned status %d: %s",
			resp.StatusCode, string(body))
	}

	var sr submitResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return driven.IndexReceipt{}, fmt.Errorf("httpapi: decode submit response: %w", err)
	}
	if sr.Error != "" {
		return driven.IndexReceipt{Accepted: false}, nil
	}

	// Older workers acknowledge with a bare 202 and no body field.
	accepted := sr.Accepted == nil || *sr.Accepted
	return driven.IndexReceipt{
		Accepted:      accepted,
		EstimatedTime: time.Duration(sr.EstimatedSeconds * float64(time.Second)),
	}, nil
}

// Status polls the worker for a file's job status.
func (w *Worker) Status(ctx context.Context, tenantID, fileName string) (driven.JobStatusReport, error) {
	query := url.Values{}
	query.Set("tenant_id", tenantID)
	query.Set("file_name", fileName)

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		w.baseURL+"/v1/jobs/status?"+query.Encode(),
		http.NoBody,
	)
	if err != nil {
		return driven.JobStatusReport{}, fmt.Errorf("httpapi: create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+w.apiKey)

	resp, body, err := w.do(httpReq)
	if err != nil {
		return driven.JobStatusReport{}, err
	}
	if resp.StatusCode == http.StatusNotFound {
		return driven.JobStatusReport{}, domain.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return driven.JobStatusReport{}, fmt.Errorf("httpapi: status returned status %d: %s",
			resp.StatusCode, string(body))
	}

	return parseStatusReport(body)
}

// do sends the request and reads the body.
func (w *Worker) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrWorkerUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("httpapi: read response: %w", err)
	}
	return resp, body, nil
}
