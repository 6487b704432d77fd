package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
)

// Shared stub implementations of the driven ports, used across the
// service tests in this package.

// --- BlobStore ---

var _ driven.BlobStore = (*blobStoreStub)(nil)

type blobStoreStub struct {
	mu         sync.Mutex
	files      []domain.SourceFile
	listErr    error
	listCalls  int
	deleteErr  map[string]error
	deleted    []string
	signedErr  error
	signedURLs []string
}

func (m *blobStoreStub) List(_ context.Context, _ string) ([]domain.SourceFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.SourceFile, len(m.files))
	copy(out, m.files)
	return out, nil
}

func (m *blobStoreStub) Upload(_ context.Context, _, name, _ string, _ io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files = append(m.files, domain.SourceFile{Name: name, UploadedAt: time.Now()})
	return nil
}

func (m *blobStoreStub) Delete(_ context.Context, _, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.deleteErr[name]; ok {
		return err
	}
	m.deleted = append(m.deleted, name)
	for i, f := range m.files {
		if f.Name == name {
			m.files = append(m.files[:i], m.files[i+1:]...)
			break
		}
	}
	return nil
}

func (m *blobStoreStub) SignedURL(_ context.Context, _, name string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.signedErr != nil {
		return "", m.signedErr
	}
	url := "https://blob.example/" + name
	m.signedURLs = append(m.signedURLs, url)
	return url, nil
}

func (m *blobStoreStub) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *blobStoreStub) deletedNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.deleted))
	copy(out, m.deleted)
	return out
}

// --- ChunkStore ---

var _ driven.ChunkStore = (*chunkStoreStub)(nil)

type chunkStoreStub struct {
	mu        sync.Mutex
	chunks    []domain.Chunk
	listErr   error
	countErr  error
	deleteErr map[string]error // keyed by candidate key
	listCalls int
}

func (m *chunkStoreStub) ListPage(_ context.Context, _ string, offset, limit int) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return window(m.chunks, offset, limit), nil
}

func (m *chunkStoreStub) matching(keys []string) []domain.Chunk {
	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}
	var out []domain.Chunk
	for _, c := range m.chunks {
		if c.FileName != "" && keySet[domain.CanonicalKey(c.FileName)] {
			out = append(out, c)
		}
	}
	return out
}

func (m *chunkStoreStub) ListForFile(_ context.Context, _ string, keys []string, offset, limit int) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return window(m.matching(keys), offset, limit), nil
}

func (m *chunkStoreStub) CountForFile(_ context.Context, _ string, keys []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.matching(keys)), nil
}

func (m *chunkStoreStub) DeleteForFile(_ context.Context, _ string, keys []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		if err, ok := m.deleteErr[k]; ok {
			return 0, err
		}
	}
	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[k] = true
	}
	var kept []domain.Chunk
	removed := 0
	for _, c := range m.chunks {
		if c.FileName != "" && keySet[domain.CanonicalKey(c.FileName)] {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	m.chunks = kept
	return removed, nil
}

func window(chunks []domain.Chunk, offset, limit int) []domain.Chunk {
	if offset >= len(chunks) {
		return nil
	}
	end := offset + limit
	if end > len(chunks) {
		end = len(chunks)
	}
	out := make([]domain.Chunk, end-offset)
	copy(out, chunks[offset:end])
	return out
}

// --- IndexWorker ---

var _ driven.IndexWorker = (*workerStub)(nil)

type workerStub struct {
	mu          sync.Mutex
	submitErr   error
	rejected    bool
	submissions []driven.IndexRequest
	statuses    map[string]domain.JobStatus
	statusErr   error
	statusCalls map[string]int
}

func newWorkerStub() *workerStub {
	return &workerStub{
		statuses:    make(map[string]domain.JobStatus),
		statusCalls: make(map[string]int),
	}
}

func (m *workerStub) Submit(_ context.Context, req driven.IndexRequest) (driven.IndexReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.submitErr != nil {
		return driven.IndexReceipt{}, m.submitErr
	}
	m.submissions = append(m.submissions, req)
	return driven.IndexReceipt{Accepted: !m.rejected}, nil
}

func (m *workerStub) Status(_ context.Context, _, fileName string) (driven.JobStatusReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls[fileName]++
	if m.statusErr != nil {
		return driven.JobStatusReport{}, m.statusErr
	}
	status, ok := m.statuses[fileName]
	if !ok {
		status = domain.JobProcessing
	}
	return driven.JobStatusReport{Status: status, LastUpdated: time.Now()}, nil
}

func (m *workerStub) setStatus(fileName string, status domain.JobStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[fileName] = status
}

func (m *workerStub) submissionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.submissions)
}

func (m *workerStub) polls(fileName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls[fileName]
}

// --- PendingJobStore ---

var _ driven.PendingJobStore = (*jobStoreStub)(nil)

type jobStoreStub struct {
	mu     sync.Mutex
	sets   map[string]domain.PendingJobSet
	getErr error
	setErr error
}

func newJobStoreStub() *jobStoreStub {
	return &jobStoreStub{sets: make(map[string]domain.PendingJobSet)}
}

func (m *jobStoreStub) Get(_ context.Context, tenantID string) (domain.PendingJobSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.PendingJobSet{}, m.getErr
	}
	set, ok := m.sets[tenantID]
	if !ok {
		return domain.NewPendingJobSet(), nil
	}
	return set.Clone(), nil
}

func (m *jobStoreStub) Set(_ context.Context, tenantID string, set domain.PendingJobSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.sets[tenantID] = set.Clone()
	return nil
}

func (m *jobStoreStub) persisted(tenantID string) domain.PendingJobSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[tenantID].Clone()
}

// --- FileFlagStore ---

var _ driven.FileFlagStore = (*flagStoreStub)(nil)

type flagStoreStub struct {
	mu      sync.Mutex
	markErr error
	marked  []string
}

func (m *flagStoreStub) MarkIndexed(_ context.Context, _, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	m.marked = append(m.marked, name)
	return nil
}

func (m *flagStoreStub) markedNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.marked))
	copy(out, m.marked)
	return out
}

// --- helpers ---

// newTestReconciler wires a reconciler over the given stubs.
func newTestReconciler(blob *blobStoreStub, chunks *chunkStoreStub, flags driven.FileFlagStore) (*SyncReconciler, *FileCatalog) {
	catalog := NewFileCatalog(blob, "tenant-1", time.Minute)
	reader := NewVectorIndexReader(chunks, "tenant-1", 0)
	rec := NewSyncReconciler(catalog, reader, flags, "tenant-1")
	catalog.OnRefresh(rec.Invalidate)
	return rec, catalog
}

func chunkFor(id, fileName string, index int) domain.Chunk {
	return domain.Chunk{
		ID:         id,
		FileName:   fileName,
		ChunkIndex: index,
		Content:    "content of " + id,
		CreatedAt:  time.Now(),
	}
}
