package memory

import (
	"context"
	"sync"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore.
// Chunks keep insertion order, which stands in for the backend's stable
// sort.
type ChunkStore struct {
	mu      sync.RWMutex
	tenants map[string][]domain.Chunk
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		tenants: make(map[string][]domain.Chunk),
	}
}

// Put appends chunks for a tenant.
func (s *ChunkStore) Put(tenantID string, chunks ...domain.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[tenantID] = append(s.tenants[tenantID], chunks...)
}

// ListPage returns one window of the tenant's chunks.
func (s *ChunkStore) ListPage(_ context.Context, tenantID string, offset, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slicePage(s.tenants[tenantID], offset, limit), nil
}

// ListForFile returns one window of the chunks whose canonical file
// name matches any of the candidate keys.
func (s *ChunkStore) ListForFile(_ context.Context, tenantID string, keys []string, offset, limit int) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slicePage(filterByKeys(s.tenants[tenantID], keys), offset, limit), nil
}

// CountForFile counts the chunks matching any of the candidate keys.
func (s *ChunkStore) CountForFile(_ context.Context, tenantID string, keys []string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(filterByKeys(s.tenants[tenantID], keys)), nil
}

// DeleteForFile removes the chunks matching any of the candidate keys
// and reports how many were removed.
func (s *ChunkStore) DeleteForFile(_ context.Context, tenantID string, keys []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keySet := toKeySet(keys)
	var kept []domain.Chunk
	removed := 0
	for _, c := range s.tenants[tenantID] {
		if c.FileName != "" && keySet[domain.CanonicalKey(c.FileName)] {
			removed++
			continue
		}
		kept = append(kept, c)
	}
	s.tenants[tenantID] = kept
	return removed, nil
}

func toKeySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

func filterByKeys(chunks []domain.Chunk, keys []string) []domain.Chunk {
	keySet := toKeySet(keys)
	var out []domain.Chunk
	for _, c := range chunks {
		if c.FileName != "" && keySet[domain.CanonicalKey(c.FileName)] {
			out = append(out, c)
		}
	}
	return out
}

func slicePage(chunks []domain.Chunk, offset, limit int) []domain.Chunk {
	if offset >= len(chunks) || limit <= 0 {
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
