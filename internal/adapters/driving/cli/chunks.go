package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

// contentPreviewLength bounds how much chunk text the listing shows.
const contentPreviewLength = 120

var chunkHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))

var chunksAll bool

var chunksCmd = &cobra.Command{
	Use:   "chunks <file>",
	Short: "Inspect a file's indexed chunks",
	Long: `Lists the chunks the vector store holds for a file. The first page
shows a small sample; use --all to page through everything the index
holds for the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runChunks,
}

func init() {
	chunksCmd.Flags().BoolVar(&chunksAll, "all", false, "load every chunk, not just the first page")
	rootCmd.AddCommand(chunksCmd)
}

func runChunks(cmd *cobra.Command, args []string) error {
	if chunkBrowser == nil {
		return errors.New("chunk service not configured")
	}

	fileName := args[0]
	ctx := context.Background()
	defer chunkBrowser.Close(fileName)

	page, err := chunkBrowser.Open(ctx, fileName)
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}

	for chunksAll && page.HasMore() {
		page, err = chunkBrowser.LoadMore(ctx, fileName)
		if err != nil {
			return fmt.Errorf("load more chunks: %w", err)
		}
	}

	if page.TotalCount == 0 {
		cmd.Printf("No chunks indexed for %s.\n", fileName)
		return nil
	}

	for _, chunk := range page.Chunks {
		printChunk(cmd, chunk)
	}

	cmd.Printf("\nShowing %d of %d chunk(s)", page.LoadedCount, page.TotalCount)
	if page.HasMore() {
		cmd.Print(" (use --all to load the rest)")
	}
	cmd.Println()
	return nil
}

func printChunk(cmd *cobra.Command, chunk domain.Chunk) {
	header := fmt.Sprintf("#%d %s", chunk.ChunkIndex, chunk.ID)
	if loc := formatLocation(chunk.Location); loc != "" {
		header += " " + loc
	}
	cmd.Println(chunkHeaderStyle.Render(header))
	cmd.Println(preview(chunk.Content))
	cmd.Println()
}

// formatLocation renders the optional source location.
func formatLocation(loc *domain.ChunkLocation) string {
	if loc == nil {
		return ""
	}
	switch {
	case loc.PageStart > 0 && loc.LineStart > 0:
		return fmt.Sprintf("(p.%d-%d, l.%d-%d)", loc.PageStart, loc.PageEnd, loc.LineStart, loc.LineEnd)
	case loc.PageStart > 0:
		return fmt.Sprintf("(p.%d-%d)", loc.PageStart, loc.PageEnd)
	case loc.LineStart > 0:
		return fmt.Sprintf("(l.%d-%d)", loc.LineStart, loc.LineEnd)
	default:
		return ""
	}
}

// preview flattens and truncates chunk content for the listing.
func preview(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	if len(flat) <= contentPreviewLength {
		return flat
	}
	// Back up to a rune boundary so the cut never splits a multi-byte
	// character.
	cut := contentPreviewLength
	for cut > 0 && !utf8.RuneStart(flat[cut]) {
		cut--
	}
	return flat[:cut] + "…"
}
