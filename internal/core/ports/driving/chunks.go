package driving

import (
	"context"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// ChunkPage is the paginator's view of one file's loaded chunks.
type ChunkPage struct {
	// FileName is the file the chunks belong to.
	FileName string

	// Chunks holds every chunk loaded so far, in request order.
	Chunks []domain.Chunk

	// LoadedCount and TotalCount track pagination progress.
	LoadedCount int
	TotalCount  int
}

// HasMore reports whether further pages remain.
func (p *ChunkPage) HasMore() bool {
	return p.LoadedCount < p.TotalCount
}

// ChunkBrowser lazily loads a file's chunks page by page. Any number of
// files can be open simultaneously, each with independent progress.
type ChunkBrowser interface {
	// Open loads the first page for a file. Opening an already-open
	// file returns the existing page without re-fetching.
	Open(ctx context.Context, fileName string) (*ChunkPage, error)

	// LoadMore appends the next page. A no-op when nothing remains.
	LoadMore(ctx context.Context, fileName string) (*ChunkPage, error)

	// Close forgets a file's loaded pages.
	Close(fileName string)
}
