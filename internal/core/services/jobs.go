package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driving"
	"github.com/ferndock-labs/kbsync-cli/internal/logger"
)

// Default job tracker tuning.
const (
	// DefaultPollInterval is the fixed interval of the single status
	// poll timer.
	DefaultPollInterval = 3 * time.Second

	// DefaultMaxPollAttempts caps polls per job before the tracker
	// escalates it to failed. The worker has no hard timeout of its
	// own, so polling must not be unbounded.
	DefaultMaxPollAttempts = 100

	// signedURLTTL is how long the download URL handed to the worker
	// stays valid.
	signedURLTTL = 15 * time.Minute
)

// Ensure IndexingJobTracker implements the interface.
var _ driving.JobTracker = (*IndexingJobTracker)(nil)

// IndexingJobTracker manages in-flight indexing requests. Jobs are
// persisted durably before any network call, so the file's state reads
// indexStarted immediately and polling survives a restart. Exactly one
// timer drives status polls for all tracked files; it stops when the
// tracked set empties and on Stop.
type IndexingJobTracker struct {
	blob     driven.BlobStore
	worker   driven.IndexWorker
	store    driven.PendingJobStore
	sync     *SyncReconciler
	tenantID string

	pollInterval    time.Duration
	maxPollAttempts int

	mu      sync.Mutex
	jobs    map[string]*domain.IndexingJob
	order   []string
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewIndexingJobTracker creates a tracker for one tenant. Non-positive
// tuning values fall back to the defaults.
func NewIndexingJobTracker(
	blob driven.BlobStore,
	worker driven.IndexWorker,
	store driven.PendingJobStore,
	sync *SyncReconciler,
	tenantID string,
	pollInterval time.Duration,
	maxPollAttempts int,
) *IndexingJobTracker {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if maxPollAttempts <= 0 {
		maxPollAttempts = DefaultMaxPollAttempts
	}
	return &IndexingJobTracker{
		blob:            blob,
		worker:          worker,
		store:           store,
		sync:            sync,
		tenantID:        tenantID,
		pollInterval:    pollInterval,
		maxPollAttempts: maxPollAttempts,
		jobs:            make(map[string]*domain.IndexingJob),
	}
}

// RequestIndexing records the job durably, then dispatches the request
// to the worker and starts polling. The persisted entry lands before
// any network call, so the file reads indexStarted from that moment.
func (t *IndexingJobTracker) RequestIndexing(ctx context.Context, fileName string) error {
	if fileName == "" {
		return domain.ErrInvalidInput
	}
	if t.tenantID == "" {
		return domain.ErrNotConfigured
	}

	t.mu.Lock()
	if _, exists := t.jobs[fileName]; exists {
		t.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrJobAlreadyTracked, fileName)
	}
	t.mu.Unlock()

	now := time.Now()

	// 1. Durable record first.
	if err := t.persistAdd(ctx, fileName, now); err != nil {
		return fmt.Errorf("persist job: %w", err)
	}

	// 2. Track in memory; from here StateOf reads indexStarted.
	t.mu.Lock()
	t.jobs[fileName] = &domain.IndexingJob{
		FileName:    fileName,
		RequestedAt: now,
		Status:      domain.JobProcessing,
	}
	t.order = append(t.order, fileName)
	t.mu.Unlock()
	t.startPolling()

	// 3. Dispatch to the worker.
	url, err := t.blob.SignedURL(ctx, t.tenantID, fileName, signedURLTTL)
	if err != nil {
		t.untrack(ctx, fileName)
		return fmt.Errorf("sign file url: %w", err)
	}

	receipt, err := t.worker.Submit(ctx, driven.IndexRequest{
		FileURL:  url,
		FileName: fileName,
		TenantID: t.tenantID,
	})
	if err != nil {
		t.untrack(ctx, fileName)
		return fmt.Errorf("submit index request: %w", err)
	}
	if !receipt.Accepted {
		t.untrack(ctx, fileName)
		return fmt.Errorf("index request for %s was not accepted", fileName)
	}

	if receipt.EstimatedTime > 0 {
		logger.Info("Indexing %s accepted, estimated %s", fileName, receipt.EstimatedTime)
	}
	return nil
}

// Rehydrate restores persisted jobs after a restart. Files the worker
// finished while the process was absent resolve immediately from a
// fresh reconcile; the rest resume polling without re-submitting.
func (t *IndexingJobTracker) Rehydrate(ctx context.Context) error {
	set, err := t.store.Get(ctx, t.tenantID)
	if err != nil {
		return fmt.Errorf("load persisted jobs: %w", err)
	}
	if set.Len() == 0 {
		return nil
	}

	// One reconcile tells us which jobs completed while we were away.
	synced := make(map[string]bool)
	if snap, rerr := t.sync.Reconcile(ctx); rerr == nil {
		for _, info := range snap.Files {
			if info.State == domain.SyncSynced {
				synced[info.File.Name] = true
			}
		}
	} else {
		logger.Debug("rehydrate reconcile failed, resuming all jobs: %v", rerr)
	}

	pruned := set.Clone()
	resumed := 0
	for _, fileName := range set.PollingFiles {
		if synced[fileName] {
			// Completed while the client was absent: resolve without a
			// network request or a redundant poll.
			pruned.Remove(fileName)
			logger.Debug("job for %s already synced, resolved on rehydrate", fileName)
			continue
		}

		t.mu.Lock()
		if _, exists := t.jobs[fileName]; !exists {
			t.jobs[fileName] = &domain.IndexingJob{
				FileName:    fileName,
				RequestedAt: set.RequestTimes[fileName],
				Status:      domain.JobProcessing,
			}
			t.order = append(t.order, fileName)
			resumed++
		}
		t.mu.Unlock()
	}

	if pruned.Len() != set.Len() {
		if serr := t.store.Set(ctx, t.tenantID, pruned); serr != nil {
			logger.Warn("failed to prune resolved jobs: %v", serr)
		}
	}

	if resumed > 0 {
		logger.Info("Resumed polling for %d indexing job(s)", resumed)
		t.startPolling()
	}
	return nil
}

// Tracking reports whether a job for the file is in flight.
func (t *IndexingJobTracker) Tracking(fileName string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.jobs[fileName]
	return ok
}

// ActiveJobs returns the tracked jobs in request order.
func (t *IndexingJobTracker) ActiveJobs() []domain.IndexingJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]domain.IndexingJob, 0, len(t.order))
	for _, name := range t.order {
		if job, ok := t.jobs[name]; ok {
			out = append(out, *job)
		}
	}
	return out
}

// Wait blocks until the tracked set is empty or the context ends.
func (t *IndexingJobTracker) Wait(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		t.mu.Lock()
		empty := len(t.jobs) == 0
		t.mu.Unlock()
		if empty {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Stop cancels the poll timer and waits for the loop to exit. In-flight
// status calls are not interrupted; cancellation is cooperative.
func (t *IndexingJobTracker) Stop() {
	t.mu.Lock()
	if t.running {
		t.running = false
		close(t.stopCh)
	}
	t.mu.Unlock()

	t.wg.Wait()
}

// startPolling launches the single poll loop if it is not running.
func (t *IndexingJobTracker) startPolling() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || len(t.jobs) == 0 {
		return
	}
	t.running = true
	t.stopCh = make(chan struct{})
	stopCh := t.stopCh

	t.wg.Add(1)
	go t.pollLoop(stopCh)
}

// pollLoop drives status polls for every tracked file on one timer.
// It exits when the tracked set empties or stopCh closes.
func (t *IndexingJobTracker) pollLoop(stopCh chan struct{}) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if t.pollOnce(context.Background()) == 0 && t.confirmIdle() {
				return
			}
		}
	}
}

// confirmIdle decides whether the poll loop may exit after a poll pass
// counted zero tracked jobs. A request can land between that count and
// this re-check; the loop must then keep running, because startPolling
// declines to start a second loop while running is true.
func (t *IndexingJobTracker) confirmIdle() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		// Stop already closed stopCh.
		return true
	}
	if len(t.jobs) != 0 {
		return false
	}
	t.running = false
	close(t.stopCh)
	return true
}

// pollOnce polls every tracked file once and returns how many jobs
// remain tracked afterwards.
func (t *IndexingJobTracker) pollOnce(ctx context.Context) int {
	t.mu.Lock()
	names := make([]string, len(t.order))
	copy(names, t.order)
	t.mu.Unlock()

	for _, fileName := range names {
		t.mu.Lock()
		job, ok := t.jobs[fileName]
		if !ok {
			// Removed since the snapshot; cooperative cancellation.
			t.mu.Unlock()
			continue
		}
		job.PollAttempts++
		attempts := job.PollAttempts
		t.mu.Unlock()

		report, err := t.worker.Status(ctx, t.tenantID, fileName)
		if err != nil {
			logger.Debug("status poll for %s failed: %v", fileName, err)
			if attempts >= t.maxPollAttempts {
				t.resolve(ctx, fileName, domain.JobFailed)
			}
			continue
		}

		t.mu.Lock()
		if job, ok := t.jobs[fileName]; ok {
			job.Status = report.Status
		}
		t.mu.Unlock()

		switch {
		case report.Status == domain.JobCompleted:
			t.resolve(ctx, fileName, domain.JobCompleted)
		case report.Status == domain.JobFailed:
			t.resolve(ctx, fileName, domain.JobFailed)
		case attempts >= t.maxPollAttempts:
			logger.Warn("Indexing %s exceeded %d polls, treating as failed", fileName, t.maxPollAttempts)
			t.resolve(ctx, fileName, domain.JobFailed)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.jobs)
}

// resolve removes a terminal job from tracking and persistence, then
// forces a reconcile so callers observe synced (completed) or pending
// (failed) instead of indexStarted.
func (t *IndexingJobTracker) resolve(ctx context.Context, fileName string, status domain.JobStatus) {
	t.untrack(ctx, fileName)

	if status == domain.JobCompleted {
		logger.Info("Indexing completed for %s", fileName)
	} else {
		// Failures are expected to be transient; the file reverts to
		// pending and a manual retry is the recovery path.
		logger.Info("Indexing failed for %s", fileName)
	}

	if _, err := t.sync.Reconcile(ctx); err != nil {
		logger.Debug("post-job reconcile failed: %v", err)
	}
}

// untrack drops the job from memory and from the persisted set.
func (t *IndexingJobTracker) untrack(ctx context.Context, fileName string) {
	t.mu.Lock()
	delete(t.jobs, fileName)
	for i, n := range t.order {
		if n == fileName {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.mu.Unlock()

	if err := t.persistRemove(ctx, fileName); err != nil {
		logger.Warn("failed to clear persisted job for %s: %v", fileName, err)
	}
}

// persistAdd read-modify-writes the whole per-tenant set. Concurrent
// writers follow last-writer-wins; see the PendingJobStore contract.
func (t *IndexingJobTracker) persistAdd(ctx context.Context, fileName string, at time.Time) error {
	set, err := t.store.Get(ctx, t.tenantID)
	if err != nil {
		return err
	}
	set.Add(fileName, at)
	return t.store.Set(ctx, t.tenantID, set)
}

// persistRemove read-modify-writes the whole per-tenant set.
func (t *IndexingJobTracker) persistRemove(ctx context.Context, fileName string) error {
	set, err := t.store.Get(ctx, t.tenantID)
	if err != nil {
		return err
	}
	if !set.Contains(fileName) {
		return nil
	}
	set.Remove(fileName)
	return t.store.Set(ctx, t.tenantID, set)
}
