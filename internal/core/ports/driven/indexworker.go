package driven

import (
	"context"
	"time"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// IndexRequest asks the worker to chunk and embed one file.
type IndexRequest struct {
	// FileURL is a signed, time-limited download URL for the file.
	FileURL string

	// FileName is the display name the worker should record in chunk
	// metadata. The worker may sanitise it; see domain.CandidateKeys.
	FileName string

	// TenantID scopes the produced chunks.
	TenantID string
}

// IndexReceipt acknowledges an accepted indexing request.
type IndexReceipt struct {
	// Accepted reports whether the worker queued the request.
	Accepted bool

	// EstimatedTime is the worker's processing estimate, if reported.
	EstimatedTime time.Duration
}

// JobStatusReport is the worker's answer to a status poll.
type JobStatusReport struct {
	// Status is the job's current status.
	Status domain.JobStatus

	// ChunkCount is the number of chunks produced so far.
	ChunkCount int

	// LastUpdated is the worker-side timestamp of the last change.
	LastUpdated time.Time
}

// IndexWorker dispatches indexing requests to the external chunking and
// embedding worker and polls their status. The worker's response shapes
// vary; adapters must absorb that and always return these fixed types.
type IndexWorker interface {
	// Submit dispatches an indexing request.
	// Returns domain.ErrWorkerUnavailable (wrapped) when the worker is
	// unreachable.
	Submit(ctx context.Context, req IndexRequest) (IndexReceipt, error)

	// Status polls the job status for a file.
	Status(ctx context.Context, tenantID, fileName string) (JobStatusReport, error)
}
