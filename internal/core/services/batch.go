package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driving"
	"github.com/ferndock-labs/kbsync-cli/internal/logger"
)

// Ensure BatchOperationCoordinator implements the interface.
var _ driving.BatchRunner = (*BatchOperationCoordinator)(nil)

// BatchOperationCoordinator executes multi-file delete/unindex
// operations with partial-failure tolerance. Targets are processed
// sequentially to bound backend load; one target's failure never halts
// the remainder. Every batch ends with a full catalog refresh and
// reconcile so the latest view is authoritative.
type BatchOperationCoordinator struct {
	blob     driven.BlobStore
	chunks   driven.ChunkStore
	catalog  driving.Catalog
	sync     driving.SyncReader
	tenantID string
}

// NewBatchOperationCoordinator creates a coordinator for one tenant.
func NewBatchOperationCoordinator(
	blob driven.BlobStore,
	chunks driven.ChunkStore,
	catalog driving.Catalog,
	sync driving.SyncReader,
	tenantID string,
) *BatchOperationCoordinator {
	return &BatchOperationCoordinator{
		blob:     blob,
		chunks:   chunks,
		catalog:  catalog,
		sync:     sync,
		tenantID: tenantID,
	}
}

// Execute runs the operation over the targets. The caller is
// responsible for the two-step confirmation; by the time Execute runs,
// the operation is committed.
func (c *BatchOperationCoordinator) Execute(
	ctx context.Context,
	op domain.BatchOperation,
	targets []string,
) (*domain.BatchResult, error) {
	if c.tenantID == "" {
		return nil, domain.ErrNotConfigured
	}
	if op != domain.BatchDelete && op != domain.BatchUnindex {
		return nil, fmt.Errorf("%w: unknown batch operation %q", domain.ErrInvalidInput, op)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: no targets", domain.ErrInvalidInput)
	}

	result := &domain.BatchResult{
		Operation: op,
		StartedAt: time.Now(),
	}

	for _, fileName := range targets {
		if err := ctx.Err(); err != nil {
			result.Record(fileName, err)
			continue
		}
		err := c.applyOne(ctx, op, fileName)
		if err != nil {
			logger.Debug("batch %s failed for %s: %v", op, fileName, err)
		}
		result.Record(fileName, err)
	}

	// Always refresh, however many targets failed: the post-batch view
	// must reflect what actually happened.
	if err := c.catalog.Refresh(ctx); err != nil {
		logger.Warn("post-batch catalog refresh failed: %v", err)
	}
	if _, err := c.sync.Reconcile(ctx); err != nil {
		logger.Warn("post-batch reconcile failed: %v", err)
	}

	result.FinishedAt = time.Now()
	return result, nil
}

// applyOne performs the operation for a single target.
func (c *BatchOperationCoordinator) applyOne(ctx context.Context, op domain.BatchOperation, fileName string) error {
	keys := domain.CandidateKeys(fileName)
	if len(keys) == 0 {
		return fmt.Errorf("%w: empty file name", domain.ErrInvalidInput)
	}

	removed, err := c.chunks.DeleteForFile(ctx, c.tenantID, keys)
	if err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	logger.Debug("removed %d chunk(s) for %s", removed, fileName)

	if op == domain.BatchDelete {
		if err := c.blob.Delete(ctx, c.tenantID, fileName); err != nil {
			return fmt.Errorf("delete file: %w", err)
		}
	}
	return nil
}
