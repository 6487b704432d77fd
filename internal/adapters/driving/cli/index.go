package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var indexWait bool

var indexCmd = &cobra.Command{
	Use:   "index <file>...",
	Short: "Request indexing for uploaded files",
	Long: `Asks the indexing worker to chunk the named files. The request is
recorded durably before it is dispatched, so a crash or restart never
loses track of an in-flight job. Progress is polled in the background;
use --wait to block until every requested job settles.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexWait, "wait", false,
		"block until the requested jobs complete or fail")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if jobTracker == nil {
		return errors.New("job service not configured")
	}

	ctx := context.Background()
	requested := 0
	for _, fileName := range args {
		if jobTracker.Tracking(fileName) {
			cmd.Printf("%s: already indexing\n", fileName)
			continue
		}
		if err := jobTracker.RequestIndexing(ctx, fileName); err != nil {
			return fmt.Errorf("request indexing for %s: %w", fileName, err)
		}
		cmd.Printf("%s: indexing requested\n", fileName)
		requested++
	}

	if !indexWait || requested == 0 {
		return nil
	}

	cmd.Println("Waiting for jobs to settle...")
	if err := jobTracker.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for jobs: %w", err)
	}
	cmd.Println("All jobs settled.")
	return nil
}
