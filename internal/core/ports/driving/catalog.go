package driving

import (
	"context"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// Catalog lists the tenant's source files and keeps the listing fresh.
type Catalog interface {
	// Files returns the cached listing, refreshing it first if it has
	// never been loaded. Newest first.
	Files(ctx context.Context) ([]domain.SourceFile, error)

	// Refresh re-lists from the blob store, replacing the cache.
	Refresh(ctx context.Context) error

	// StartAutoRefresh begins periodic background refreshes. Stop must
	// be called when the owning surface is dismissed.
	StartAutoRefresh(ctx context.Context)

	// Stop cancels the background refresh timer.
	Stop()
}
