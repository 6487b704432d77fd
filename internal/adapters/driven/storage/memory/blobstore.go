package memory

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
)

// Ensure BlobStore implements the interfaces.
var (
	_ driven.BlobStore     = (*BlobStore)(nil)
	_ driven.FileFlagStore = (*BlobStore)(nil)
)

// blobObject is a stored file plus its content and flags.
type blobObject struct {
	file    domain.SourceFile
	content []byte
	indexed bool
}

// BlobStore is an in-memory implementation of driven.BlobStore and
// driven.FileFlagStore, used by the memory backend and in tests.
type BlobStore struct {
	mu      sync.RWMutex
	tenants map[string]map[string]*blobObject
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{
		tenants: make(map[string]map[string]*blobObject),
	}
}

// List returns the tenant's files, newest first.
func (s *BlobStore) List(_ context.Context, tenantID string) ([]domain.SourceFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects := s.tenants[tenantID]
	files := make([]domain.SourceFile, 0, len(objects))
	for _, obj := range objects {
		files = append(files, obj.file)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].UploadedAt.After(files[j].UploadedAt)
	})
	return files, nil
}

// Upload stores a file's content, replacing any previous version.
func (s *BlobStore) Upload(_ context.Context, tenantID, name, contentType string, r io.Reader) error {
	if name == "" {
		return domain.ErrInvalidInput
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	objects, ok := s.tenants[tenantID]
	if !ok {
		objects = make(map[string]*blobObject)
		s.tenants[tenantID] = objects
	}
	objects[name] = &blobObject{
		file: domain.SourceFile{
			Name:        name,
			Size:        int64(len(content)),
			MIMEType:    contentType,
			UploadedAt:  time.Now(),
			StoragePath: tenantID + "/" + name,
		},
		content: content,
	}
	return nil
}

// Delete removes a file.
func (s *BlobStore) Delete(_ context.Context, tenantID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	objects := s.tenants[tenantID]
	if _, ok := objects[name]; !ok {
		return domain.ErrNotFound
	}
	delete(objects, name)
	return nil
}

// SignedURL returns a synthetic URL for a stored file. The memory
// backend has no real signing; the URL just has to be resolvable by the
// paired in-memory worker.
func (s *BlobStore) SignedURL(_ context.Context, tenantID, name string, _ time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.tenants[tenantID][name]; !ok {
		return "", domain.ErrNotFound
	}
	return "memory://" + tenantID + "/" + name, nil
}

// MarkIndexed flags a file as having been indexed at least once.
func (s *BlobStore) MarkIndexed(_ context.Context, tenantID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.tenants[tenantID][name]
	if !ok {
		return domain.ErrNotFound
	}
	obj.indexed = true
	return nil
}

// Content returns a file's stored bytes.
func (s *BlobStore) Content(tenantID, name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.tenants[tenantID][name]
	if !ok {
		return nil, false
	}
	out := make([]byte, len(obj.content))
	copy(out, obj.content)
	return out, true
}

// Indexed reports whether a file carries the indexed flag.
func (s *BlobStore) Indexed(tenantID, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.tenants[tenantID][name]
	return ok && obj.indexed
}
