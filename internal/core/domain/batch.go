package domain

import (
	"fmt"
	"strings"
	"time"
)

// BatchOperation identifies a bulk operation over multiple files.
type BatchOperation string

const (
	// BatchDelete removes the blob objects and their chunks.
	BatchDelete BatchOperation = "delete"

	// BatchUnindex removes chunks only; the blob objects remain.
	BatchUnindex BatchOperation = "unindex"
)

// BatchTargetResult records the outcome for one target of a batch.
type BatchTargetResult struct {
	// FileName is the target file.
	FileName string

	// Success reports whether the operation succeeded for this target.
	Success bool

	// Reason is the human-readable failure reason. Empty on success.
	Reason string
}

// BatchResult is the aggregate report of a batch operation. It is
// created when the batch starts and immutable once the batch finishes.
type BatchResult struct {
	// Operation is the bulk operation that was run.
	Operation BatchOperation

	// StartedAt and FinishedAt bound the batch execution.
	StartedAt  time.Time
	FinishedAt time.Time

	// Targets holds one entry per target, in processing order.
	Targets []BatchTargetResult

	// Succeeded and Failed are aggregate counts over Targets.
	Succeeded int
	Failed    int
}

// Record appends a target outcome and updates the aggregate counts.
func (r *BatchResult) Record(fileName string, err error) {
	tr := BatchTargetResult{FileName: fileName, Success: err == nil}
	if err != nil {
		tr.Reason = err.Error()
		r.Failed++
	} else {
		r.Succeeded++
	}
	r.Targets = append(r.Targets, tr)
}

// PartialFailure returns a wrapped ErrPartialBatchFailure naming the
// failed targets, or nil when every target succeeded.
func (r *BatchResult) PartialFailure() error {
	if r.Failed == 0 {
		return nil
	}
	names := make([]string, 0, r.Failed)
	for _, t := range r.Targets {
		if !t.Success {
			names = append(names, t.FileName)
		}
	}
	return fmt.Errorf("%w: %d of %d targets failed (%s)",
		ErrPartialBatchFailure, r.Failed, len(r.Targets), strings.Join(names, ", "))
}
