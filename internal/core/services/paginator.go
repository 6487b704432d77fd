package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driving"
)

// Page sizes for chunk inspection: a small first page for a quick look,
// larger follow-up pages for full reads.
const (
	FirstPageSize = 10
	NextPageSize  = 50
)

// Ensure ChunkPaginator implements the interface.
var _ driving.ChunkBrowser = (*ChunkPaginator)(nil)

// ChunkPaginator lazily loads a file's chunks page by page. Each open
// file keeps independent loaded/total counters; a page is never fetched
// twice and results append in request order.
type ChunkPaginator struct {
	chunks   driven.ChunkStore
	tenantID string

	mu   sync.Mutex
	open map[string]*paginatorEntry
}

type paginatorEntry struct {
	page driving.ChunkPage
	keys []string
	seen map[string]bool
}

// NewChunkPaginator creates a paginator for one tenant.
func NewChunkPaginator(chunks driven.ChunkStore, tenantID string) *ChunkPaginator {
	return &ChunkPaginator{
		chunks:   chunks,
		tenantID: tenantID,
		open:     make(map[string]*paginatorEntry),
	}
}

// Open loads the first page for a file. Opening an already-open file
// returns the current view without re-fetching.
func (p *ChunkPaginator) Open(ctx context.Context, fileName string) (*driving.ChunkPage, error) {
	if p.tenantID == "" {
		return nil, domain.ErrNotConfigured
	}
	if fileName == "" {
		return nil, domain.ErrInvalidInput
	}

	p.mu.Lock()
	if entry, ok := p.open[fileName]; ok {
		view := copyPage(&entry.page)
		p.mu.Unlock()
		return view, nil
	}
	p.mu.Unlock()

	keys := domain.CandidateKeys(fileName)
	total, err := p.chunks.CountForFile(ctx, p.tenantID, keys)
	if err != nil {
		return nil, fmt.Errorf("count chunks for %s: %w", fileName, err)
	}

	first, err := p.chunks.ListForFile(ctx, p.tenantID, keys, 0, FirstPageSize)
	if err != nil {
		return nil, fmt.Errorf("load chunks for %s: %w", fileName, err)
	}

	entry := &paginatorEntry{
		page: driving.ChunkPage{
			FileName:   fileName,
			TotalCount: total,
		},
		keys: keys,
		seen: make(map[string]bool),
	}
	entry.append(first)

	p.mu.Lock()
	// Another caller may have opened the file while we were fetching;
	// the first stored entry wins so counters stay consistent.
	if existing, ok := p.open[fileName]; ok {
		entry = existing
	} else {
		p.open[fileName] = entry
	}
	view := copyPage(&entry.page)
	p.mu.Unlock()

	return view, nil
}

// LoadMore appends the next page for an open file. Opening happens
// implicitly if needed; when nothing remains the current view returns
// unchanged.
func (p *ChunkPaginator) LoadMore(ctx context.Context, fileName string) (*driving.ChunkPage, error) {
	p.mu.Lock()
	entry, ok := p.open[fileName]
	p.mu.Unlock()

	if !ok {
		return p.Open(ctx, fileName)
	}

	p.mu.Lock()
	if !entry.page.HasMore() {
		view := copyPage(&entry.page)
		p.mu.Unlock()
		return view, nil
	}
	offset := entry.page.LoadedCount
	keys := entry.keys
	p.mu.Unlock()

	next, err := p.chunks.ListForFile(ctx, p.tenantID, keys, offset, NextPageSize)
	if err != nil {
		return nil, fmt.Errorf("load chunks for %s: %w", fileName, err)
	}

	p.mu.Lock()
	// Only append if no concurrent LoadMore advanced the window first.
	if entry.page.LoadedCount == offset {
		entry.append(next)
	}
	view := copyPage(&entry.page)
	p.mu.Unlock()

	return view, nil
}

// Close forgets a file's loaded pages.
func (p *ChunkPaginator) Close(fileName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.open, fileName)
}

// append adds fetched chunks to the entry, advancing the offset by the
// fetched length while dropping duplicate chunk IDs from the view.
func (e *paginatorEntry) append(chunks []domain.Chunk) {
	e.page.LoadedCount += len(chunks)
	if e.page.LoadedCount > e.page.TotalCount {
		// The store grew or shrank between count and fetch; trust the
		// fetched data over the stale total.
		e.page.TotalCount = e.page.LoadedCount
	}
	for _, c := range chunks {
		if c.ID != "" && e.seen[c.ID] {
			continue
		}
		e.seen[c.ID] = true
		e.page.Chunks = append(e.page.Chunks, c)
	}
}

// copyPage returns a view the caller can hold without racing later
// loads.
func copyPage(p *driving.ChunkPage) *driving.ChunkPage {
	out := &driving.ChunkPage{
		FileName:    p.FileName,
		LoadedCount: p.LoadedCount,
		TotalCount:  p.TotalCount,
		Chunks:      make([]domain.Chunk, len(p.Chunks)),
	}
	copy(out.Chunks, p.Chunks)
	return out
}
