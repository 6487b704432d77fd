package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driving"
	"github.com/ferndock-labs/kbsync-cli/internal/logger"
)

// DefaultRefreshInterval is how often the catalog re-lists the blob
// store while auto-refresh is running.
const DefaultRefreshInterval = 15 * time.Second

// Ensure FileCatalog implements the interface.
var _ driving.Catalog = (*FileCatalog)(nil)

// FileCatalog lists source files for the tenant from the blob store and
// caches the listing. An optional background timer keeps it fresh.
type FileCatalog struct {
	blob            driven.BlobStore
	tenantID        string
	refreshInterval time.Duration

	mu        sync.Mutex
	files     []domain.SourceFile
	loaded    bool
	onRefresh func()
	running   bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

// NewFileCatalog creates a catalog for one tenant. A non-positive
// refreshInterval falls back to DefaultRefreshInterval.
func NewFileCatalog(blob driven.BlobStore, tenantID string, refreshInterval time.Duration) *FileCatalog {
	if refreshInterval <= 0 {
		refreshInterval = DefaultRefreshInterval
	}
	return &FileCatalog{
		blob:            blob,
		tenantID:        tenantID,
		refreshInterval: refreshInterval,
	}
}

// OnRefresh registers a callback invoked after every successful refresh.
// The reconciler uses it to drop its cached snapshot.
func (c *FileCatalog) OnRefresh(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRefresh = fn
}

// Files returns the cached listing, refreshing first if it has never
// been loaded. Newest first.
func (c *FileCatalog) Files(ctx context.Context) ([]domain.SourceFile, error) {
	c.mu.Lock()
	loaded := c.loaded
	c.mu.Unlock()

	if !loaded {
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.SourceFile, len(c.files))
	copy(out, c.files)
	return out, nil
}

// Refresh re-lists the tenant's files from the blob store.
func (c *FileCatalog) Refresh(ctx context.Context) error {
	if c.tenantID == "" {
		return domain.ErrNotConfigured
	}

	files, err := c.blob.List(ctx, c.tenantID)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	// Newest first, regardless of backend ordering.
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})

	c.mu.Lock()
	c.files = files
	c.loaded = true
	fn := c.onRefresh
	c.mu.Unlock()

	if fn != nil {
		fn()
	}
	return nil
}

// StartAutoRefresh begins periodic background refreshes. Calling it
// while already running is a no-op.
func (c *FileCatalog) StartAutoRefresh(ctx context.Context) {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	stopCh := c.stopCh
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case <-ticker.C:
				if err := c.Refresh(ctx); err != nil {
					logger.Debug("catalog auto-refresh failed: %v", err)
				}
			}
		}
	}()
}

// Stop cancels the background refresh timer and waits for it to exit.
func (c *FileCatalog) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopCh)
	c.mu.Unlock()

	c.wg.Wait()
}
