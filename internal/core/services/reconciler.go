package services

import (
	"context"
	"sync"

	"github.com/ferndock-labs/kbsync-cli/internal/core/domain"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driven"
	"github.com/ferndock-labs/kbsync-cli/internal/core/ports/driving"
	"github.com/ferndock-labs/kbsync-cli/internal/logger"
)

// Ensure SyncReconciler implements the interface.
var _ driving.SyncReader = (*SyncReconciler)(nil)

// jobTracking is the slice of the job tracker the reconciler needs.
// Kept local to break the construction cycle between the two services.
type jobTracking interface {
	Tracking(fileName string) bool
}

// SyncReconciler derives each file's sync state by matching catalog
// entries against the chunk store's indexed key set. Matching tests the
// file's candidate keys in order; the first hit wins. Ambiguity between
// variants is resolved silently and never surfaced.
type SyncReconciler struct {
	catalog  driving.Catalog
	reader   *VectorIndexReader
	flags    driven.FileFlagStore // optional
	tenantID string

	mu      sync.Mutex
	tracker jobTracking
	last    *driving.SyncSnapshot
	flagged map[string]bool
}

// NewSyncReconciler creates a reconciler. flags may be nil; write-back
// is then skipped entirely.
func NewSyncReconciler(
	catalog driving.Catalog,
	reader *VectorIndexReader,
	flags driven.FileFlagStore,
	tenantID string,
) *SyncReconciler {
	return &SyncReconciler{
		catalog:  catalog,
		reader:   reader,
		flags:    flags,
		tenantID: tenantID,
		flagged:  make(map[string]bool),
	}
}

// SetJobTracker wires the job tracker in after construction. Files with
// an in-flight job read indexStarted instead of pending.
func (r *SyncReconciler) SetJobTracker(t jobTracking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracker = t
}

// Invalidate drops the cached snapshot so the next StateOf reconciles.
func (r *SyncReconciler) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last = nil
}

// Reconcile recomputes the snapshot from the catalog and a fresh chunk
// store read.
func (r *SyncReconciler) Reconcile(ctx context.Context) (*driving.SyncSnapshot, error) {
	if r.tenantID == "" {
		return nil, domain.ErrNotConfigured
	}

	files, err := r.catalog.Files(ctx)
	if err != nil {
		return nil, err
	}

	index, err := r.reader.IndexedKeys(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	tracker := r.tracker
	r.mu.Unlock()

	snap := &driving.SyncSnapshot{
		Files:       make([]domain.FileSyncInfo, 0, len(files)),
		TotalChunks: index.TotalChunks,
	}

	owned := make(map[string]bool, len(index.Keys))

	for _, f := range files {
		info := domain.FileSyncInfo{File: f}
		candidates := domain.CandidateKeys(f.Name)

		if len(candidates) == 0 {
			// A file whose name canonicalises to nothing cannot be
			// matched against any chunk key.
			info.State = domain.SyncError
			snap.Files = append(snap.Files, info)
			continue
		}

		// Every candidate claims its key for orphan accounting, even
		// though matching stops at the first hit.
		for _, key := range candidates {
			if index.HasKey(key) {
				owned[key] = true
			}
		}

		for _, key := range candidates {
			if orig, ok := index.Keys[key]; ok {
				info.State = domain.SyncSynced
				info.MatchedKey = key
				info.ChunkFileName = orig
				break
			}
		}

		if info.State == "" {
			if tracker != nil && tracker.Tracking(f.Name) {
				info.State = domain.SyncIndexStarted
			} else {
				info.State = domain.SyncPending
			}
		}

		if info.State == domain.SyncSynced {
			r.writeBack(ctx, f.Name)
		}

		snap.Files = append(snap.Files, info)
	}

	for key := range index.Keys {
		if !owned[key] {
			snap.OrphanedKeys = append(snap.OrphanedKeys, key)
		}
	}

	r.mu.Lock()
	r.last = snap
	r.mu.Unlock()

	return copySnapshot(snap), nil
}

// StateOf returns the derived state for one file from the latest
// snapshot, reconciling first when none is cached.
func (r *SyncReconciler) StateOf(ctx context.Context, fileName string) (domain.SyncState, error) {
	r.mu.Lock()
	last := r.last
	r.mu.Unlock()

	if last == nil {
		var err error
		if last, err = r.Reconcile(ctx); err != nil {
			return "", err
		}
	}

	for _, info := range last.Files {
		if info.File.Name == fileName {
			// The tracked set changes between reconciles; a live check
			// keeps indexStarted authoritative over a stale pending.
			if info.State == domain.SyncPending {
				r.mu.Lock()
				tracker := r.tracker
				r.mu.Unlock()
				if tracker != nil && tracker.Tracking(fileName) {
					return domain.SyncIndexStarted, nil
				}
			}
			return info.State, nil
		}
	}
	return "", domain.ErrNotFound
}

// writeBack flags the file record as indexed. Purely a cache
// optimisation for future reads: failure never changes the computed
// state, and each file is flagged at most once per process.
func (r *SyncReconciler) writeBack(ctx context.Context, fileName string) {
	if r.flags == nil {
		return
	}

	r.mu.Lock()
	done := r.flagged[fileName]
	if !done {
		r.flagged[fileName] = true
	}
	r.mu.Unlock()
	if done {
		return
	}

	if err := r.flags.MarkIndexed(ctx, r.tenantID, fileName); err != nil {
		logger.Debug("indexed write-back failed for %s: %v", fileName, err)
	}
}

// copySnapshot returns a snapshot the caller can hold without racing
// later reconciles.
func copySnapshot(s *driving.SyncSnapshot) *driving.SyncSnapshot {
	out := &driving.SyncSnapshot{
		Files:       make([]domain.FileSyncInfo, len(s.Files)),
		TotalChunks: s.TotalChunks,
	}
	copy(out.Files, s.Files)
	if len(s.OrphanedKeys) > 0 {
		out.OrphanedKeys = make([]string, len(s.OrphanedKeys))
		copy(out.OrphanedKeys, s.OrphanedKeys)
	}
	return out
}
