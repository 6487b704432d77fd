// Package driving defines the interfaces through which the outside
// world drives the core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI adapter (and any future surface) depends on these interfaces;
// core services implement them.
//
//   - Catalog: Lists source files and keeps them fresh
//   - SyncReader: Derived per-file sync state
//   - JobTracker: In-flight indexing jobs
//   - ChunkBrowser: Paginated chunk inspection
//   - BatchRunner: Bulk delete/unindex operations
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or service package
package driving
