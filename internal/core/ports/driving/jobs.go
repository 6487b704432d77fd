package driving

import (
	"context"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// JobTracker manages in-flight indexing jobs: it persists them, drives
// status polling, and reconciles on completion.
type JobTracker interface {
	// RequestIndexing records a job durably, making the file's state
	// read indexStarted before any network call, then dispatches the
	// request to the worker and starts polling.
	RequestIndexing(ctx context.Context, fileName string) error

	// Rehydrate restores persisted jobs after a restart. Files already
	// synced resolve immediately without a network request; the rest
	// resume polling.
	Rehydrate(ctx context.Context) error

	// Tracking reports whether a job for the file is in flight.
	Tracking(fileName string) bool

	// ActiveJobs returns the tracked jobs, in request order.
	ActiveJobs() []domain.IndexingJob

	// Wait blocks until the tracked set is empty or the context ends.
	Wait(ctx context.Context) error

	// Stop cancels the poll timer. It must be called when the owning
	// surface is torn down; in-flight polls are not interrupted.
	Stop()
}
