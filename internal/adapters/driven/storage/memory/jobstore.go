package memory

import (
	"context"
	"sync"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
)

// Ensure PendingJobStore implements the interface.
var _ driven.PendingJobStore = (*PendingJobStore)(nil)

// PendingJobStore is an in-memory implementation of
// driven.PendingJobStore. State does not survive the process; it exists
// for the memory backend and tests.
type PendingJobStore struct {
	mu   sync.RWMutex
	sets map[string]domain.PendingJobSet
}

// NewPendingJobStore creates a new in-memory pending job store.
func NewPendingJobStore() *PendingJobStore {
	return &PendingJobStore{
		sets: make(map[string]domain.PendingJobSet),
	}
}

// Get returns the tenant's pending job set, empty when none was saved.
func (s *PendingJobStore) Get(_ context.Context, tenantID string) (domain.PendingJobSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[tenantID]
	if !ok {
		return domain.NewPendingJobSet(), nil
	}
	return set.Clone(), nil
}

// Set replaces the tenant's pending job set.
func (s *PendingJobStore) Set(_ context.Context, tenantID string, set domain.PendingJobSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[tenantID] = set.Clone()
	return nil
}
