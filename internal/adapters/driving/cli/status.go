package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// State label styles.
var (
	syncedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	startedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	orphanedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

var showOrphans bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show per-file sync state",
	Long: `Reconciles the blob store against the vector store and prints the
derived sync state for every file: whether its chunks exist, whether
an indexing job is in flight, or whether it has never been indexed.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&showOrphans, "orphans", false,
		"also list chunk keys with no matching source file")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if syncReader == nil {
		return errors.New("sync service not configured")
	}

	snap, err := syncReader.Reconcile(context.Background())
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}

	if len(snap.Files) == 0 {
		cmd.Println("No files uploaded.")
	} else {
		printFileTable(cmd, snap.Files)
	}

	cmd.Printf("\n%d file(s), %d chunk(s) indexed\n", len(snap.Files), snap.TotalChunks)

	if len(snap.OrphanedKeys) > 0 {
		cmd.Printf("%d orphaned chunk key(s)", len(snap.OrphanedKeys))
		if !showOrphans {
			cmd.Println(" (run with --orphans to list them)")
		} else {
			cmd.Println(":")
			for _, key := range snap.OrphanedKeys {
				cmd.Printf("  %s\n", orphanedStyle.Render(key))
			}
		}
	}

	return nil
}

func printFileTable(cmd *cobra.Command, files []domain.FileSyncInfo) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tUPLOADED\tSTATE\tINDEXED AS")
	for _, info := range files {
		indexedAs := ""
		if info.ChunkFileName != "" && info.ChunkFileName != info.File.Name {
			indexedAs = info.ChunkFileName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			info.File.Name,
			humanSize(info.File.Size),
			info.File.UploadedAt.Format("2006-01-02 15:04"),
			stateLabel(info.State),
			indexedAs,
		)
	}
	w.Flush()
}

// stateLabel renders a coloured state name.
func stateLabel(state domain.SyncState) string {
	switch state {
	case domain.SyncSynced:
		return syncedStyle.Render("synced")
	case domain.SyncPending:
		return pendingStyle.Render("pending")
	case domain.SyncIndexStarted:
		return startedStyle.Render("indexing")
	case domain.SyncError:
		return errorStyle.Render("error")
	default:
		return strings.ToLower(string(state))
	}
}

// humanSize formats a byte count for the table.
func humanSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}
