package driven

import (
	"context"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// PendingJobStore durably persists the per-tenant set of in-flight
// indexing jobs so polling survives a process restart.
//
// The set is read and written whole: read-modify-write happens at the
// caller, and two concurrent writers follow last-writer-wins. That is
// an accepted limitation, not something adapters should correct.
type PendingJobStore interface {
	// Get returns the tenant's persisted job set. An absent tenant
	// yields an empty set, not an error.
	Get(ctx context.Context, tenantID string) (domain.PendingJobSet, error)

	// Set replaces the tenant's persisted job set atomically.
	Set(ctx context.Context, tenantID string, set domain.PendingJobSet) error
}
