package driving

import (
	"context"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// SyncSnapshot is one reconciliation pass over the catalog and the
// chunk store.
type SyncSnapshot struct {
	// Files holds the derived state for every catalogued file.
	Files []domain.FileSyncInfo

	// OrphanedKeys lists canonical chunk keys with no matching source
	// file. Informational only.
	OrphanedKeys []string

	// TotalChunks is the aggregate chunk count for the tenant,
	// including chunks whose metadata lacks a file name.
	TotalChunks int
}

// SyncReader derives per-file sync state.
type SyncReader interface {
	// Reconcile recomputes the snapshot from fresh catalog and chunk
	// store reads.
	Reconcile(ctx context.Context) (*SyncSnapshot, error)

	// StateOf returns the derived state for one file from the latest
	// snapshot, reconciling first if none exists.
	StateOf(ctx context.Context, fileName string) (domain.SyncState, error)
}
