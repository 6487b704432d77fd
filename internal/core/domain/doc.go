// Package domain defines the core business entities for kbsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It defines the fundamental types:
//
//   - SourceFile: An uploaded document as stored in the blob store
//   - Chunk: A derived, searchable fragment of a SourceFile
//   - SyncState: The derived reconciliation status of a SourceFile
//   - IndexingJob: A tracked, in-flight request to chunk a SourceFile
//   - PendingJobSet: The durably persisted set of in-flight jobs
//   - BatchResult: The per-target report of a bulk operation
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import the Go
// standard library and golang.org/x/text (filename canonicalisation
// needs Unicode decomposition). All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library, golang.org/x/text
//   - Cannot Import: Any internal/ package, any other external dependency
package domain
