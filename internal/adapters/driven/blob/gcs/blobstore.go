package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
)

// indexedMetadataKey is the object metadata key flagging a file as
// having been indexed at least once.
const indexedMetadataKey = "kbsync-indexed"

// Ensure BlobStore implements the interfaces.
var (
	_ driven.BlobStore     = (*BlobStore)(nil)
	_ driven.FileFlagStore = (*BlobStore)(nil)
)

// BlobStore is a Google Cloud Storage implementation of
// driven.BlobStore and driven.FileFlagStore. Each tenant's files live
// under a "<tenantID>/" object prefix in a single bucket.
type BlobStore struct {
	client *storage.Client
	bucket string
}

// NewBlobStore creates a blob store over the given bucket. When
// credentialsFile is empty, application default credentials are used.
func NewBlobStore(ctx context.Context, bucket, credentialsFile string) (*BlobStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("%w: bucket name required", domain.ErrInvalidInput)
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	return &BlobStore{
		client: client,
		bucket: bucket,
	}, nil
}

// Close releases the underlying client.
func (s *BlobStore) Close() error {
	return s.client.Close()
}

// List returns the tenant's files, newest first.
func (s *BlobStore) List(ctx context.Context, tenantID string) ([]domain.SourceFile, error) {
	prefix := objectPrefix(tenantID)
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	var files []domain.SourceFile
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		name := strings.TrimPrefix(attrs.Name, prefix)
		if name == "" || strings.Contains(name, "/") {
			// Skip the prefix placeholder and nested objects.
			continue
		}
		files = append(files, domain.SourceFile{
			Name:        name,
			Size:        attrs.Size,
			MIMEType:    attrs.ContentType,
			UploadedAt:  attrs.Created,
			StoragePath: attrs.Name,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	return files, nil
}

// Upload writes a file's content, replacing any previous version.
func (s *BlobStore) Upload(ctx context.Context, tenantID, name, contentType string, r io.Reader) error {
	if name == "" {
		return domain.ErrInvalidInput
	}
	w := s.object(tenantID, name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("writing object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalising object: %w", err)
	}
	return nil
}

// Delete removes a file.
func (s *BlobStore) Delete(ctx context.Context, tenantID, name string) error {
	err := s.object(tenantID, name).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("deleting object: %w", err)
	}
	return nil
}

// SignedURL returns a V4 signed GET URL for the file, valid for ttl.
func (s *BlobStore) SignedURL(_ context.Context, tenantID, name string, ttl time.Duration) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(objectName(tenantID, name), &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("signing url: %w", err)
	}
	return url, nil
}

// MarkIndexed records the indexed flag in the object's metadata.
func (s *BlobStore) MarkIndexed(ctx context.Context, tenantID, name string) error {
	obj := s.object(tenantID, name)
	_, err := obj.Update(ctx, storage.ObjectAttrsToUpdate{
		Metadata: map[string]string{indexedMetadataKey: "true"},
	})
	if errors.Is(err, storage.ErrObjectNotExist) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("updating object metadata: %w", err)
	}
	return nil
}

func (s *BlobStore) object(tenantID, name string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(objectName(tenantID, name))
}

// objectName maps a tenant and file name to the bucket object name.
func objectName(tenantID, name string) string {
	return objectPrefix(tenantID) + name
}

// objectPrefix is the per-tenant object namespace.
func objectPrefix(tenantID string) string {
	return tenantID + "/"
}
