// Package rest provides a ChunkStore adapter over a PostgREST-style
// vector store API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// DefaultRequestsPerSecond bounds the request rate against the
	// backend. Reconcile reads whole windows in a tight loop; without a
	// limiter a large index turns into a request burst.
	DefaultRequestsPerSecond = 20
)

// Config holds configuration for the REST chunk store.
type Config struct {
	// BaseURL is the API base URL (required), e.g.
	// https://vectors.example.com/rest/v1.
	BaseURL string

	// APIKey authenticates requests (required).
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond bounds the request rate (default: 20).
	RequestsPerSecond float64
}

// ChunkStore reads and deletes chunk rows through the vector store's
// REST API. Rows carry a precomputed canonical file key, so candidate
// key matching happens server-side with an in.(...) filter.
type ChunkStore struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// chunkRow is the wire format of one chunk row.
type chunkRow struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	ChunkIndex int       `json:"chunk_index"`
	CreatedAt  time.Time `json:"created_at"`
	FileName   string    `json:"file_name"`
	Location   *struct {
		PageStart int `json:"page_start"`
		PageEnd   int `json:"page_end"`
		LineStart int `json:"line_start"`
		LineEnd   int `json:"line_end"`
	} `json:"location"`
}

// NewChunkStore creates a new REST chunk store.
func NewChunkStore(cfg Config) (*ChunkStore, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("rest: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("rest: API key is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &ChunkStore{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}, nil
}

// ListPage returns one window of the tenant's chunks in a stable order.
func (s *ChunkStore) ListPage(ctx context.Context, tenantID string, offset, limit int) ([]domain.Chunk, error) {
	query := url.Values{}
	query.Set("tenant_id", "eq."+tenantID)
	query.Set("order", "created_at.asc,id.asc")
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	return s.fetchRows(ctx, query)
}

// ListForFile returns one window of the chunks whose file key matches
// any of the candidate keys.
func (s *ChunkStore) ListForFile(ctx context.Context, tenantID string, keys []string, offset, limit int) ([]domain.Chunk, error) {
	query := url.Values{}
	query.Set("tenant_id", "eq."+tenantID)
	query.Set("file_key", inFilter(keys))
	query.Set("order", "chunk_index.asc,id.asc")
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	return s.fetchRows(ctx, query)
}

// CountForFile counts the chunks matching any of the candidate keys
// without transferring the rows.
func (s *ChunkStore) CountForFile(ctx context.Context, tenantID string, keys []string) (int, error) {
	query := url.Values{}
	query.Set("tenant_id", "eq."+tenantID)
	query.Set("file_key", inFilter(keys))
	query.Set("limit", "1")

	req, err := s.newRequest(ctx, http.MethodGet, query, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "count=exact")

	resp, body, err := s.do(req)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, fmt.Errorf("rest: count returned status %d: %s", resp.StatusCode, string(body))
	}

	return parseContentRangeTotal(resp.Header.Get("Content-Range"))
}

// DeleteForFile removes the chunks matching any of the candidate keys
// and reports how many rows were removed.
func (s *ChunkStore) DeleteForFile(ctx context.Context, tenantID string, keys []string) (int, error) {
	query := url.Values{}
	query.Set("tenant_id", "eq."+tenantID)
	query.Set("file_key", inFilter(keys))

	req, err := s.newRequest(ctx, http.MethodDelete, query, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Prefer", "return=representation")

	resp, body, err := s.do(req)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return 0, fmt.Errorf("rest: delete returned status %d: %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode == http.StatusNoContent || len(body) == 0 {
		return 0, nil
	}

	var rows []chunkRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("rest: decode deleted rows: %w", err)
	}
	return len(rows), nil
}

// fetchRows runs a GET and decodes the chunk rows.
func (s *ChunkStore) fetchRows(ctx context.Context, query url.Values) ([]domain.Chunk, error) {
	req, err := s.newRequest(ctx, http.MethodGet, query, nil)
	if err != nil {
		return nil, err
	}

	resp, body, err := s.do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rest: list returned status %d: %s", resp.StatusCode, string(body))
	}

	var rows []chunkRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("rest: decode rows: %w", err)
	}

	chunks := make([]domain.Chunk, len(rows))
	for i, row := range rows {
		chunks[i] = row.toDomain()
	}
	return chunks, nil
}

// newRequest builds an authenticated request against the chunks
// resource.
func (s *ChunkStore) newRequest(ctx context.Context, method string, query url.Values, body io.Reader) (*http.Request, error) {
	if body == nil {
		body = http.NoBody
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+"/chunks?"+query.Encode(), body)
	if err != nil {
		return nil, fmt.Errorf("rest: create request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do waits for the rate limiter, sends the request and reads the body.
func (s *ChunkStore) do(req *http.Request) (*http.Response, []byte, error) {
	if err := s.limiter.Wait(req.Context()); err != nil {
		return nil, nil, fmt.Errorf("rest: rate limit wait: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("rest: read response: %w", err)
	}
	return resp, body, nil
}

// toDomain converts a wire row to the domain chunk.
func (r chunkRow) toDomain() domain.Chunk {
	chunk := domain.Chunk{
		ID:         r.ID,
		Content:    r.Content,
		ChunkIndex: r.ChunkIndex,
		CreatedAt:  r.CreatedAt,
		FileName:   r.FileName,
	}
	if r.Location != nil {
		chunk.Location = &domain.ChunkLocation{
			PageStart: r.Location.PageStart,
			PageEnd:   r.Location.PageEnd,
			LineStart: r.Location.LineStart,
			LineEnd:   r.Location.LineEnd,
		}
	}
	return chunk
}

// inFilter renders candidate keys as a PostgREST in.(...) filter.
func inFilter(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = `"` + strings.ReplaceAll(k, `"`, `\"`) + `"`
	}
	return "in.(" + strings.Join(quoted, ",") + ")"
}

// parseContentRangeTotal extracts the total from a Content-Range header
// such as "0-0/45" or "*/45".
func parseContentRangeTotal(header string) (int, error) {
	_, totalPart, found := strings.Cut(header, "/")
	if !found {
		return 0, fmt.Errorf("rest: missing count in Content-Range %q", header)
	}
	if totalPart == "*" {
		return 0, fmt.Errorf("rest: backend omitted exact count in Content-Range %q", header)
	}
	total, err := strconv.Atoi(totalPart)
	if err != nil {
		return 0, fmt.Errorf("rest: bad count in Content-Range %q: %w", header, err)
	}
	return total, nil
}
