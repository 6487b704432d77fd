package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadIndex bool

var uploadCmd = &cobra.Command{
	Use:   "upload <path>...",
	Short: "Upload files to the blob store",
	Long: `Uploads local files to the tenant's blob store. Uploading does not
index; pass --index to request indexing for each file once it is
stored.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVar(&uploadIndex, "index", false, "request indexing after upload")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if blobStore == nil {
		return errors.New("blob service not configured")
	}

	ctx := context.Background()
	for _, path := range args {
		name, err := uploadOne(ctx, path)
		if err != nil {
			return fmt.Errorf("upload %s: %w", path, err)
		}
		cmd.Printf("%s: uploaded\n", name)

		if uploadIndex {
			if jobTracker == nil {
				return errors.New("job service not configured")
			}
			if err := jobTracker.RequestIndexing(ctx, name); err != nil {
				return fmt.Errorf("request indexing for %s: %w", name, err)
			}
			cmd.Printf("%s: indexing requested\n", name)
		}
	}

	if catalogService != nil {
		if err := catalogService.Refresh(ctx); err != nil {
			return fmt.Errorf("refresh catalog: %w", err)
		}
	}
	return nil
}

// uploadOne streams one local file into the blob store and returns the
// stored name.
func uploadOne(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	name := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := blobStore.Upload(ctx, tenantID, name, contentType, f); err != nil {
		return "", err
	}
	return name, nil
}
