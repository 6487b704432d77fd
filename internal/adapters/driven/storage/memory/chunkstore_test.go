package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

func seedChunks(store *ChunkStore, tenantID, fileName string, n int) {
	for i := 0; i < n; i++ {
		store.Put(tenantID, domain.Chunk{
			ID:         fmt.Sprintf("%s-%d", fileName, i),
			FileName:   fileName,
			ChunkIndex: i,
			Content:    "text",
		})
	}
}

func TestChunkStore_ListPage(t *testing.T) {
	store := NewChunkStore()
	seedChunks(store, "tenant-1", "a.pdf", 25)
	ctx := context.Background()

	page, err := store.ListPage(ctx, "tenant-1", 0, 10)
	require.NoError(t, err)
	assert.Len(t, page, 10)

	page, err = store.ListPage(ctx, "tenant-1", 20, 10)
	require.NoError(t, err)
	assert.Len(t, page, 5)

	page, err = store.ListPage(ctx, "tenant-1", 30, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestChunkStore_ListForFile_MatchesCandidates(t *testing.T) {
	store := NewChunkStore()
	seedChunks(store, "tenant-1", "Report_(final).pdf", 3)
	seedChunks(store, "tenant-1", "other.pdf", 2)

	keys := domain.CandidateKeys("Report (final).pdf")
	chunks, err := store.ListForFile(context.Background(), "tenant-1", keys, 0, 10)

	require.NoError(t, err)
	assert.Len(t, chunks, 3)
}

func TestChunkStore_CountForFile(t *testing.T) {
	store := NewChunkStore()
	seedChunks(store, "tenant-1", "a.pdf", 7)

	count, err := store.CountForFile(context.Background(), "tenant-1", domain.CandidateKeys("A.PDF"))

	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestChunkStore_DeleteForFile(t *testing.T) {
	store := NewChunkStore()
	seedChunks(store, "tenant-1", "a.pdf", 4)
	seedChunks(store, "tenant-1", "keep.pdf", 2)
	ctx := context.Background()

	removed, err := store.DeleteForFile(ctx, "tenant-1", domain.CandidateKeys("a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	remaining, err := store.ListPage(ctx, "tenant-1", 0, 100)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestChunkStore_MetadatalessChunksUntouchable(t *testing.T) {
	store := NewChunkStore()
	store.Put("tenant-1", domain.Chunk{ID: "nameless", Content: "x"})

	removed, err := store.DeleteForFile(context.Background(), "tenant-1", []string{""})

	require.NoError(t, err)
	assert.Zero(t, removed)
}
