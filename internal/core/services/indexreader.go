package services

import (
	"context"
	"fmt"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
)

// DefaultWindowSize is how many chunks each offset window requests.
// Chunk volumes can reach tens of thousands; a single unbounded query
// is never issued.
const DefaultWindowSize = 1000

// IndexSnapshot is one full read of the tenant's chunk metadata.
type IndexSnapshot struct {
	// Keys maps each canonical chunk key to the original metadata file
	// name that produced it (first occurrence wins). Membership in the
	// map is the indexed-key set.
	Keys map[string]string

	// TotalChunks counts every chunk read, including those whose
	// metadata lacks a file name.
	TotalChunks int
}

// HasKey reports whether the canonical key is indexed.
func (s *IndexSnapshot) HasKey(key string) bool {
	_, ok := s.Keys[key]
	return ok
}

// VectorIndexReader pages through the tenant's chunk metadata and
// derives the set of indexed canonical keys.
type VectorIndexReader struct {
	chunks     driven.ChunkStore
	tenantID   string
	windowSize int
}

// NewVectorIndexReader creates a reader for one tenant. A non-positive
// windowSize falls back to DefaultWindowSize.
func NewVectorIndexReader(chunks driven.ChunkStore, tenantID string, windowSize int) *VectorIndexReader {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &VectorIndexReader{
		chunks:     chunks,
		tenantID:   tenantID,
		windowSize: windowSize,
	}
}

// IndexedKeys reads the full chunk set in offset windows and returns
// the snapshot. Chunks without a metadata file name are excluded from
// the key map but still counted toward TotalChunks; partial metadata
// never aborts the read.
func (r *VectorIndexReader) IndexedKeys(ctx context.Context) (*IndexSnapshot, error) {
	if r.tenantID == "" {
		return nil, domain.ErrNotConfigured
	}

	snap := &IndexSnapshot{
		Keys: make(map[string]string),
	}

	for offset := 0; ; offset += r.windowSize {
		page, err := r.chunks.ListPage(ctx, r.tenantID, offset, r.windowSize)
		if err != nil {
			return nil, fmt.Errorf("read chunk window at %d: %w", offset, err)
		}

		for _, c := range page {
			snap.TotalChunks++
			if c.FileName == "" {
				continue
			}
			key := domain.CanonicalKey(c.FileName)
			if key == "" {
				continue
			}
			if _, seen := snap.Keys[key]; !seen {
				snap.Keys[key] = c.FileName
			}
		}

		if len(page) < r.windowSize {
			return snap, nil
		}
	}
}
