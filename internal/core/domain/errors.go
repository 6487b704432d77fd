package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates no tenant is configured.
	// Operations are blocked until a tenant is selected.
	ErrNotConfigured = errors.New("no tenant configured")

	// ErrStorageUnavailable indicates a storage backend is unreachable.
	// User-visible and retryable.
	ErrStorageUnavailable = errors.New("storage backend unavailable")

	// ErrPartialBatchFailure indicates a batch operation completed but
	// one or more targets failed. The aggregate report names them.
	ErrPartialBatchFailure = errors.New("batch completed with failures")

	// ErrJobAlreadyTracked indicates an indexing job for the file is
	// already in flight.
	ErrJobAlreadyTracked = errors.New("indexing already in progress")

	// ErrWorkerUnavailable indicates the indexing worker is unreachable.
	ErrWorkerUnavailable = errors.New("indexing worker unavailable")
)
