package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// pageStore builds a chunk store holding n chunks for the file.
func pageStore(fileName string, n int) *chunkStoreStub {
	store := &chunkStoreStub{}
	for i := 0; i < n; i++ {
		store.chunks = append(store.chunks, chunkFor(fmt.Sprintf("%s-c%d", fileName, i), fileName, i))
	}
	return store
}

func TestChunkPaginator_NotConfigured(t *testing.T) {
	p := NewChunkPaginator(&chunkStoreStub{}, "")

	_, err := p.Open(context.Background(), "a.pdf")

	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestChunkPaginator_Open_FirstPageOfTen(t *testing.T) {
	p := NewChunkPaginator(pageStore("a.pdf", 45), "tenant-1")

	page, err := p.Open(context.Background(), "a.pdf")

	require.NoError(t, err)
	assert.Equal(t, 10, page.LoadedCount)
	assert.Equal(t, 45, page.TotalCount)
	assert.Len(t, page.Chunks, 10)
	assert.True(t, page.HasMore())
}

func TestChunkPaginator_Open_FewerThanFirstPage(t *testing.T) {
	p := NewChunkPaginator(pageStore("a.pdf", 4), "tenant-1")

	page, err := p.Open(context.Background(), "a.pdf")

	require.NoError(t, err)
	assert.Equal(t, 4, page.LoadedCount)
	assert.Equal(t, 4, page.TotalCount)
	assert.False(t, page.HasMore())
}

func TestChunkPaginator_Open_Twice_NoRefetch(t *testing.T) {
	store := pageStore("a.pdf", 20)
	p := NewChunkPaginator(store, "tenant-1")

	ctx := context.Background()
	_, err := p.Open(ctx, "a.pdf")
	require.NoError(t, err)

	page, err := p.Open(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, 10, page.LoadedCount)
}

// A file with 45 total chunks and 10 loaded returns the remaining 35 in
// one load-more page, with no duplicate chunk IDs.
func TestChunkPaginator_LoadMore_RemainderInOnePage(t *testing.T) {
	p := NewChunkPaginator(pageStore("a.pdf", 45), "tenant-1")

	ctx := context.Background()
	_, err := p.Open(ctx, "a.pdf")
	require.NoError(t, err)

	page, err := p.LoadMore(ctx, "a.pdf")
	require.NoError(t, err)

	assert.Equal(t, 45, page.LoadedCount)
	assert.Equal(t, 45, page.TotalCount)
	assert.False(t, page.HasMore())

	seen := make(map[string]bool)
	for _, c := range page.Chunks {
		assert.False(t, seen[c.ID], "duplicate chunk ID %s", c.ID)
		seen[c.ID] = true
	}
	assert.Len(t, seen, 45)
}

func TestChunkPaginator_LoadMore_AppendsInOrder(t *testing.T) {
	p := NewChunkPaginator(pageStore("a.pdf", 70), "tenant-1")

	ctx := context.Background()
	_, err := p.Open(ctx, "a.pdf")
	require.NoError(t, err)
	page, err := p.LoadMore(ctx, "a.pdf")
	require.NoError(t, err)

	assert.Equal(t, 60, page.LoadedCount)
	for i, c := range page.Chunks {
		assert.Equal(t, i, c.ChunkIndex)
	}

	page, err = p.LoadMore(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, 70, page.LoadedCount)
	assert.False(t, page.HasMore())
}

func TestChunkPaginator_LoadMore_Exhausted_NoFetch(t *testing.T) {
	store := pageStore("a.pdf", 8)
	p := NewChunkPaginator(store, "tenant-1")

	ctx := context.Background()
	_, err := p.Open(ctx, "a.pdf")
	require.NoError(t, err)

	page, err := p.LoadMore(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, 8, page.LoadedCount)
	assert.Len(t, page.Chunks, 8)
}

func TestChunkPaginator_LoadMore_WithoutOpen_Opens(t *testing.T) {
	p := NewChunkPaginator(pageStore("a.pdf", 12), "tenant-1")

	page, err := p.LoadMore(context.Background(), "a.pdf")

	require.NoError(t, err)
	assert.Equal(t, 10, page.LoadedCount)
}

func TestChunkPaginator_IndependentFiles(t *testing.T) {
	store := pageStore("a.pdf", 45)
	for i := 0; i < 5; i++ {
		store.chunks = append(store.chunks, chunkFor(fmt.Sprintf("b-c%d", i), "b.pdf", i))
	}
	p := NewChunkPaginator(store, "tenant-1")

	ctx := context.Background()
	pageA, err := p.Open(ctx, "a.pdf")
	require.NoError(t, err)
	pageB, err := p.Open(ctx, "b.pdf")
	require.NoError(t, err)

	assert.Equal(t, 10, pageA.LoadedCount)
	assert.Equal(t, 45, pageA.TotalCount)
	assert.Equal(t, 5, pageB.LoadedCount)
	assert.Equal(t, 5, pageB.TotalCount)

	pageA, err = p.LoadMore(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, 45, pageA.LoadedCount)

	// b.pdf's counters are untouched by a.pdf's paging.
	pageB, err = p.Open(ctx, "b.pdf")
	require.NoError(t, err)
	assert.Equal(t, 5, pageB.LoadedCount)
}

func TestChunkPaginator_MatchesSanitisedMetadata(t *testing.T) {
	store := &chunkStoreStub{chunks: []domain.Chunk{
		chunkFor("c1", "Report_(final).pdf", 0),
	}}
	p := NewChunkPaginator(store, "tenant-1")

	page, err := p.Open(context.Background(), "Report (final).pdf")

	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	assert.Len(t, page.Chunks, 1)
}

func TestChunkPaginator_Close_ForgetsProgress(t *testing.T) {
	store := pageStore("a.pdf", 20)
	p := NewChunkPaginator(store, "tenant-1")

	ctx := context.Background()
	_, err := p.Open(ctx, "a.pdf")
	require.NoError(t, err)

	p.Close("a.pdf")

	page, err := p.Open(ctx, "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, 10, page.LoadedCount)
}

func TestChunkPaginator_CountError(t *testing.T) {
	store := &chunkStoreStub{countErr: errors.New("backend 503")}
	p := NewChunkPaginator(store, "tenant-1")

	_, err := p.Open(context.Background(), "a.pdf")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "count chunks")
}
