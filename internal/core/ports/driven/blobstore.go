package driven

import (
	"context"
	"io"
	"time"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// BlobStore provides access to uploaded source files. The blob store
// owns the canonical file records; the orchestrator only lists, uploads
// and deletes whole objects within a tenant prefix.
type BlobStore interface {
	// List returns the tenant's source files, newest first. The adapter
	// pages through the backend internally and returns the full set.
	// Returns domain.ErrStorageUnavailable (wrapped) when the backend is
	// unreachable.
	List(ctx context.Context, tenantID string) ([]domain.SourceFile, error)

	// Upload stores a new object under the tenant prefix.
	Upload(ctx context.Context, tenantID, name string, contentType string, r io.Reader) error

	// Delete removes the object. Deleting an absent object returns
	// domain.ErrNotFound.
	Delete(ctx context.Context, tenantID, name string) error

	// SignedURL returns a time-limited download URL for the object,
	// suitable for handing to the indexing worker.
	SignedURL(ctx context.Context, tenantID, name string, ttl time.Duration) (string, error)
}

// FileFlagStore records derived flags against a file record. Writes are
// best-effort cache optimisations: callers must never let a failure
// here change a computed result.
type FileFlagStore interface {
	// MarkIndexed flags the file as having matching chunks.
	MarkIndexed(ctx context.Context, tenantID, name string) error
}
