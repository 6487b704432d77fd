// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - BlobStore: Lists and mutates uploaded source files
//   - ChunkStore: Paginated access to derived chunks
//   - IndexWorker: Dispatches and polls remote indexing jobs
//   - PendingJobStore: Durable per-tenant persistence of in-flight jobs
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - FileFlagStore: Best-effort "indexed" write-back after a match.
//     Without it, reconciliation still works; future reads just lose a
//     cache optimisation.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
