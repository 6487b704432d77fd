package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

func TestBlobStore_UploadAndList(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	err := store.Upload(ctx, "tenant-1", "a.pdf", "application/pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	files, err := store.List(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.pdf", files[0].Name)
	assert.Equal(t, int64(9), files[0].Size)
	assert.Equal(t, "application/pdf", files[0].MIMEType)
	assert.False(t, files[0].UploadedAt.IsZero())
}

func TestBlobStore_ListNewestFirst(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "tenant-1", "old.txt", "text/plain", strings.NewReader("a")))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, store.Upload(ctx, "tenant-1", "new.txt", "text/plain", strings.NewReader("b")))

	files, err := store.List(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "new.txt", files[0].Name)
	assert.Equal(t, "old.txt", files[1].Name)
}

func TestBlobStore_TenantIsolation(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()

	require.NoError(t, store.Upload(ctx, "tenant-1", "a.pdf", "application/pdf", strings.NewReader("x")))

	files, err := store.List(ctx, "tenant-2")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestBlobStore_Delete(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()
	require.NoError(t, store.Upload(ctx, "tenant-1", "a.pdf", "application/pdf", strings.NewReader("x")))

	require.NoError(t, store.Delete(ctx, "tenant-1", "a.pdf"))

	files, err := store.List(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestBlobStore_DeleteMissing(t *testing.T) {
	store := NewBlobStore()

	err := store.Delete(context.Background(), "tenant-1", "ghost.pdf")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlobStore_SignedURL(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()
	require.NoError(t, store.Upload(ctx, "tenant-1", "a.pdf", "application/pdf", strings.NewReader("x")))

	url, err := store.SignedURL(ctx, "tenant-1", "a.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "memory://tenant-1/a.pdf", url)

	_, err = store.SignedURL(ctx, "tenant-1", "ghost.pdf", 15*time.Minute)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlobStore_MarkIndexed(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()
	require.NoError(t, store.Upload(ctx, "tenant-1", "a.pdf", "application/pdf", strings.NewReader("x")))

	assert.False(t, store.Indexed("tenant-1", "a.pdf"))
	require.NoError(t, store.MarkIndexed(ctx, "tenant-1", "a.pdf"))
	assert.True(t, store.Indexed("tenant-1", "a.pdf"))
}

func TestBlobStore_UploadReplaces(t *testing.T) {
	store := NewBlobStore()
	ctx := context.Background()
	require.NoError(t, store.Upload(ctx, "tenant-1", "a.pdf", "application/pdf", strings.NewReader("v1")))
	require.NoError(t, store.Upload(ctx, "tenant-1", "a.pdf", "application/pdf", strings.NewReader("version-2")))

	files, err := store.List(ctx, "tenant-1")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, int64(9), files[0].Size)

	content, ok := store.Content("tenant-1", "a.pdf")
	require.True(t, ok)
	assert.Equal(t, "version-2", string(content))
}
