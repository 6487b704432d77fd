// Package cli implements the kbsync command line interface.
//
// Commands are thin: they parse flags, call the driving ports and
// render the result. All orchestration lives in the core services;
// the composition root injects them through SetServices before
// Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driving"
	"github.com/ferndock-labs/kbsync-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Injected services. Tests swap these for mocks.
var (
	catalogService driving.Catalog
	syncReader     driving.SyncReader
	jobTracker     driving.JobTracker
	chunkBrowser   driving.ChunkBrowser
	batchRunner    driving.BatchRunner
	blobStore      driven.BlobStore
	tenantID       string
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "kbsync",
	Short: "Knowledge file synchronisation and indexing",
	Long: `kbsync keeps a tenant's knowledge files in step with their search index.

It reconciles the blob store (the uploaded files) against the vector
store (the derived chunks), requests indexing for files that need it,
tracks in-flight indexing jobs across restarts, and lets you inspect
or remove what the index holds per file.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Services bundles everything the commands need.
type Services struct {
	Catalog  driving.Catalog
	Sync     driving.SyncReader
	Jobs     driving.JobTracker
	Chunks   driving.ChunkBrowser
	Batch    driving.BatchRunner
	Blob     driven.BlobStore
	TenantID string
}

// SetServices injects the service implementations. Must be called
// before Execute.
func SetServices(s Services) {
	catalogService = s.Catalog
	syncReader = s.Sync
	jobTracker = s.Jobs
	chunkBrowser = s.Chunks
	batchRunner = s.Batch
	blobStore = s.Blob
	tenantID = s.TenantID
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
