package domain

import "time"

// SourceFile represents an original uploaded document as stored in the
// blob store. The orchestrator holds a read-only cached copy; the blob
// store owns the canonical record.
type SourceFile struct {
	// Name is the display name as stored in the blob store.
	Name string

	// Size is the object size in bytes.
	Size int64

	// MIMEType is the content type recorded at upload.
	MIMEType string

	// UploadedAt is when the object was created.
	UploadedAt time.Time

	// StoragePath is the full object path within the tenant prefix.
	StoragePath string
}

// SyncState is the derived reconciliation status of a SourceFile against
// the chunk store. It is computed, never authoritatively persisted.
type SyncState string

const (
	// SyncPending means no chunks match the file and no job is tracked.
	SyncPending SyncState = "pending"

	// SyncIndexStarted means an indexing job for the file is in flight.
	SyncIndexStarted SyncState = "indexStarted"

	// SyncSynced means at least one chunk's canonical key matches one of
	// the file's candidate keys.
	SyncSynced SyncState = "synced"

	// SyncOrphaned labels chunk keys with no matching SourceFile.
	// Informational only; it never applies to a catalogued file.
	SyncOrphaned SyncState = "orphaned"

	// SyncError means reconciliation could not be computed for the file.
	SyncError SyncState = "error"
)

// FileSyncInfo pairs a SourceFile with its derived sync state.
type FileSyncInfo struct {
	// File is the catalogued source file.
	File SourceFile

	// State is the derived sync state.
	State SyncState

	// MatchedKey is the candidate key that matched a chunk key.
	// Empty unless State is SyncSynced.
	MatchedKey string

	// ChunkFileName is the original metadata file name recorded on the
	// matching chunks. May differ from File.Name (sanitised uploads).
	ChunkFileName string
}
