package driving

import (
	"context"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// BatchRunner executes bulk delete/unindex operations.
//
// Execution is irreversible. Callers MUST obtain an explicit two-step
// confirmation from the operator before calling Execute; the contract
// lives with the caller, not in runner state.
type BatchRunner interface {
	// Execute processes the targets sequentially, fail-soft: one
	// target's failure never halts the remainder. It always finishes
	// with a full catalog/reconcile refresh and returns the aggregate
	// report.
	Execute(ctx context.Context, op domain.BatchOperation, targets []string) (*domain.BatchResult, error)
}
