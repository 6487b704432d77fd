// Command kbsync keeps a tenant's knowledge files in step with their
// search index.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ferndock-labs/kbsync-cli/internal/adapters/driven/blob/gcs"
	"github.com/ferndock-labs/kbsync-cli/internal/adapters/driven/chunks/rest"
	configfile "github.com/ferndock-labs/kbsync-cli/internal/adapters/driven/config/file"
	"github.com/ferndock-labs/kbsync-cli/internal/adapters/driven/storage/memory"
	"github.com/ferndock-labs/kbsync-cli/internal/adapters/driven/storage/sqlite"
	"github.com/ferndock-labs/kbsync-cli/internal/adapters/driven/worker/httpapi"
	"github.com/ferndock-labs/kbsync-cli/internal/adapters/driving/cli"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
	"github.com/ferndock-labs/kbsync-cli/internal/core/services"
	"github.com/ferndock-labs/kbsync-cli/internal/logger"
)

// version is injected at build time via ldflags.
var version = "dev"

// memoryWorkerDelay is the simulated processing time of the in-memory
// backend's worker.
const memoryWorkerDelay = 2 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cli.SetVersion(version)

	cfg, err := configfile.Load(os.Getenv("KBSYNC_CONFIG_DIR"))
	if err != nil {
		return err
	}

	// An incomplete config still lets informational commands run; the
	// ones that need services explain what is missing.
	if err := cfg.Validate(); err != nil {
		logger.Debug("configuration incomplete: %v", err)
		return cli.Execute()
	}

	cleanup, err := wireServices(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	return cli.Execute()
}

// wireServices builds the backend adapters and core services for the
// configured backend and injects them into the CLI.
func wireServices(ctx context.Context, cfg *configfile.Config) (func(), error) {
	var (
		blob     driven.BlobStore
		flags    driven.FileFlagStore
		chunks   driven.ChunkStore
		worker   driven.IndexWorker
		jobStore driven.PendingJobStore
		closers  []func()
	)

	switch cfg.Backend {
	case configfile.BackendMemory:
		blobs := memory.NewBlobStore()
		chunkStore := memory.NewChunkStore()
		blob = blobs
		flags = blobs
		chunks = chunkStore
		worker = memory.NewIndexWorker(blobs, chunkStore, memoryWorkerDelay)
		jobStore = memory.NewPendingJobStore()

	default:
		gcsStore, err := gcs.NewBlobStore(ctx, cfg.Blob.Bucket, cfg.Blob.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("blob store: %w", err)
		}
		closers = append(closers, func() { _ = gcsStore.Close() })

		restStore, err := rest.NewChunkStore(rest.Config{
			BaseURL:           cfg.Chunks.BaseURL,
			APIKey:            cfg.Chunks.APIKey,
			RequestsPerSecond: cfg.Chunks.RequestsPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("chunk store: %w", err)
		}

		workerClient, err := httpapi.NewWorker(httpapi.Config{
			BaseURL: cfg.Worker.BaseURL,
			APIKey:  cfg.Worker.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("worker client: %w", err)
		}

		db, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("job database: %w", err)
		}
		closers = append(closers, func() { _ = db.Close() })

		blob = gcsStore
		flags = gcsStore
		chunks = restStore
		worker = workerClient
		jobStore = db.PendingJobStore()
	}

	tenantID := cfg.Tenant.ID

	catalog := services.NewFileCatalog(blob, tenantID,
		time.Duration(cfg.Sync.RefreshIntervalSeconds)*time.Second)
	reader := services.NewVectorIndexReader(chunks, tenantID, 0)
	reconciler := services.NewSyncReconciler(catalog, reader, flags, tenantID)
	catalog.OnRefresh(reconciler.Invalidate)

	catalog.StartAutoRefresh(ctx)
	closers = append(closers, catalog.Stop)

	tracker := services.NewIndexingJobTracker(blob, worker, jobStore, reconciler, tenantID,
		time.Duration(cfg.Worker.PollIntervalSeconds)*time.Second, cfg.Worker.MaxPollAttempts)
	reconciler.SetJobTracker(tracker)
	closers = append(closers, tracker.Stop)

	// Resume jobs persisted by a previous run before any command acts.
	if err := tracker.Rehydrate(ctx); err != nil {
		logger.Warn("rehydrating pending jobs: %v", err)
	}

	cli.SetServices(cli.Services{
		Catalog:  catalog,
		Sync:     reconciler,
		Jobs:     tracker,
		Chunks:   services.NewChunkPaginator(chunks, tenantID),
		Batch:    services.NewBatchOperationCoordinator(blob, chunks, catalog, reconciler, tenantID),
		Blob:     blob,
		TenantID: tenantID,
	})

	return func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}
