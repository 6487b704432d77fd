package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
)

// Ensure IndexWorker implements the interface.
var _ driven.IndexWorker = (*IndexWorker)(nil)

// chunkSize is the synthetic chunk length used when splitting content.
const chunkSize = 512

// IndexWorker is an in-memory implementation of driven.IndexWorker. A
// submitted file is chunked from the paired blob store after a short
// simulated processing delay, so the poll loop sees a processing status
// before completion.
type IndexWorker struct {
	blobs  *BlobStore
	chunks *ChunkStore
	delay  time.Duration

	mu   sync.Mutex
	jobs map[string]time.Time // fileName -> completion deadline
}

// NewIndexWorker creates a worker that writes chunks into the given
// stores after the delay elapses.
func NewIndexWorker(blobs *BlobStore, chunks *ChunkStore, delay time.Duration) *IndexWorker {
	return &IndexWorker{
		blobs:  blobs,
		chunks: chunks,
		delay:  delay,
		jobs:   make(map[string]time.Time),
	}
}

// Submit accepts an indexing request.
func (w *IndexWorker) Submit(_ context.Context, req driven.IndexRequest) (driven.IndexReceipt, error) {
	if req.FileName == "" || req.TenantID == "" {
		return driven.IndexReceipt{}, domain.ErrInvalidInput
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.jobs[jobKey(req.TenantID, req.FileName)] = time.Now().Add(w.delay)
	return driven.IndexReceipt{
		Accepted:      true,
		EstimatedTime: w.delay,
	}, nil
}

// Status reports a job's progress, materialising the chunks when the
// simulated delay has elapsed.
func (w *IndexWorker) Status(_ context.Context, tenantID, fileName string) (driven.JobStatusReport, error) {
	w.mu.Lock()
	deadline, ok := w.jobs[jobKey(tenantID, fileName)]
	w.mu.Unlock()

	if !ok {
		return driven.JobStatusReport{}, domain.ErrNotFound
	}
	if time.Now().Before(deadline) {
		return driven.JobStatusReport{Status: domain.JobProcessing, LastUpdated: time.Now()}, nil
	}

	content, found := w.blobs.Content(tenantID, fileName)
	if !found {
		return driven.JobStatusReport{Status: domain.JobFailed, LastUpdated: time.Now()}, nil
	}

	count := w.materialise(tenantID, fileName, content)
	w.mu.Lock()
	delete(w.jobs, jobKey(tenantID, fileName))
	w.mu.Unlock()

	return driven.JobStatusReport{
		Status:      domain.JobCompleted,
		ChunkCount:  count,
		LastUpdated: time.Now(),
	}, nil
}

// materialise splits the content into fixed-size chunks and stores
// them.
func (w *IndexWorker) materialise(tenantID, fileName string, content []byte) int {
	text := string(content)
	if text == "" {
		text = fileName
	}
	var pieces []string
	for len(text) > chunkSize {
		pieces = append(pieces, text[:chunkSize])
		text = text[chunkSize:]
	}
	pieces = append(pieces, text)

	now := time.Now()
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:         uuid.NewString(),
			Content:    strings.TrimSpace(piece),
			ChunkIndex: i,
			CreatedAt:  now,
			FileName:   fileName,
		}
	}
	w.chunks.Put(tenantID, chunks...)
	return len(chunks)
}

func jobKey(tenantID, fileName string) string {
	return fmt.Sprintf("%s/%s", tenantID, fileName)
}
