package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ferndock-labs/kbsync-cli/internal/logger"
)

// watchSettleDelay is how long a file must stay quiet before it is
// uploaded. Editors and downloads write in bursts; uploading on the
// first event ships half a file.
const watchSettleDelay = 2 * time.Second

var watchIndexFlag bool

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Upload new files from a directory as they appear",
	Long: `Watches a local directory and uploads files as they are created or
modified. A file is uploaded once it has stopped changing for a couple
of seconds. Pass --index to also request indexing for each upload.

Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchIndexFlag, "index", false, "request indexing after each upload")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if blobStore == nil {
		return errors.New("blob service not configured")
	}
	if watchIndexFlag && jobTracker == nil {
		return errors.New("job service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (ctrl-c to stop)\n", dir)
	return watchLoop(ctx, cmd, watcher)
}

// watchLoop debounces filesystem events and uploads settled files.
func watchLoop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher) error {
	var mu sync.Mutex
	timers := make(map[string]*time.Timer)

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if timer, ok := timers[path]; ok {
			timer.Reset(watchSettleDelay)
			return
		}
		timers[path] = time.AfterFunc(watchSettleDelay, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()
			handleSettledFile(ctx, cmd, path)
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue // hidden and editor temp files
			}
			schedule(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// handleSettledFile uploads one quiet file and optionally requests
// indexing.
func handleSettledFile(ctx context.Context, cmd *cobra.Command, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	name, err := uploadOne(ctx, path)
	if err != nil {
		cmd.PrintErrf("%s: upload failed: %v\n", path, err)
		return
	}
	cmd.Printf("%s: uploaded\n", name)

	if watchIndexFlag {
		if err := jobTracker.RequestIndexing(ctx, name); err != nil {
			cmd.PrintErrf("%s: indexing request failed: %v\n", name, err)
			return
		}
		cmd.Printf("%s: indexing requested\n", name)
	}
}
