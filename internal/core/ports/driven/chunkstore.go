package driven

import (
	"context"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// ChunkStore provides paginated access to the tenant's derived chunks.
// Chunk volumes can reach tens of thousands, so every read is windowed;
// there is no unbounded query.
type ChunkStore interface {
	// ListPage returns one window of the tenant's chunks, ordered by
	// creation. A short (or empty) page signals the end of the set.
	ListPage(ctx context.Context, tenantID string, offset, limit int) ([]domain.Chunk, error)

	// ListForFile returns one window of the chunks whose canonical
	// metadata key matches any of the candidate keys.
	ListForFile(ctx context.Context, tenantID string, keys []string, offset, limit int) ([]domain.Chunk, error)

	// CountForFile returns the total number of chunks matching any of
	// the candidate keys.
	CountForFile(ctx context.Context, tenantID string, keys []string) (int, error)

	// DeleteForFile removes all chunks matching any of the candidate
	// keys and returns the number removed.
	DeleteForFile(ctx context.Context, tenantID string, keys []string) (int, error)
}
