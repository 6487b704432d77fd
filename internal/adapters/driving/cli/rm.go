package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
)

var (
	rmYes     bool
	rmUnindex bool
)

var rmCmd = &cobra.Command{
	Use:   "rm <file>...",
	Short: "Remove files and their indexed chunks",
	Long: `Deletes the named files from the blob store together with every chunk
the vector store holds for them. With --unindex only the chunks are
removed and the files stay in place.

Removal is irreversible, so the command asks twice before touching
anything. Failures are per-file: one file failing does not stop the
rest, and a summary reports exactly what happened.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRm,
}

func init() {
	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "skip the confirmation prompts")
	rmCmd.Flags().BoolVar(&rmUnindex, "unindex", false, "remove chunks only, keep the files")
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	if batchRunner == nil {
		return errors.New("batch service not configured")
	}

	op := domain.BatchDelete
	verb := "delete"
	if rmUnindex {
		op = domain.BatchUnindex
		verb = "unindex"
	}

	if !rmYes {
		confirmed, err := confirmTwice(cmd, verb, args)
		if err != nil {
			return err
		}
		if !confirmed {
			cmd.Println("Aborted.")
			return nil
		}
	}

	result, err := batchRunner.Execute(context.Background(), op, args)
	if err != nil {
		return fmt.Errorf("%s failed: %w", verb, err)
	}

	for _, target := range result.Targets {
		if target.Success {
			cmd.Printf("%s: done\n", target.FileName)
		} else {
			cmd.Printf("%s: FAILED (%s)\n", target.FileName, target.Reason)
		}
	}
	cmd.Printf("%d succeeded, %d failed\n", result.Succeeded, result.Failed)

	if err := result.PartialFailure(); err != nil {
		return err
	}
	return nil
}

// confirmTwice runs the two-step confirmation. Both answers must be
// affirmative; a non-interactive session must pass --yes instead.
func confirmTwice(cmd *cobra.Command, verb string, targets []string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("refusing to %s without a terminal; pass --yes to confirm", verb)
	}

	cmd.Printf("About to %s %d file(s):\n", verb, len(targets))
	for _, name := range targets {
		cmd.Printf("  %s\n", name)
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Printf("Proceed? [y/N]: ")
	if !readAffirmative(reader) {
		return false, nil
	}

	cmd.Printf("This cannot be undone. Type '%s' to confirm: ", verb)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("reading confirmation: %w", err)
	}
	return strings.TrimSpace(answer) == verb, nil
}

func readAffirmative(reader *bufio.Reader) bool {
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
