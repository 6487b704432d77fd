package domain

import "time"

// JobStatus is the transient status of an indexing job as reported by
// the external worker.
type JobStatus string

const (
	// JobPending means the worker has accepted the request but not
	// started processing.
	JobPending JobStatus = "pending"

	// JobProcessing means the worker is chunking the file.
	JobProcessing JobStatus = "processing"

	// JobCompleted means chunks have been produced and stored.
	JobCompleted JobStatus = "completed"

	// JobFailed means the worker gave up on the file.
	JobFailed JobStatus = "failed"
)

// Terminal reports whether the status ends the job's lifecycle.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// IndexingJob is a tracked, in-flight request to produce chunks for a
// SourceFile. It is the only entity the orchestrator fully owns and
// durably persists.
type IndexingJob struct {
	// FileName identifies the source file being indexed.
	FileName string

	// RequestedAt is when indexing was requested.
	RequestedAt time.Time

	// Status is the last status reported by the worker.
	Status JobStatus

	// PollAttempts counts status polls issued for this job.
	PollAttempts int
}

// PendingJobSet is the durably persisted set of in-flight indexing jobs
// for one tenant. The whole set is read and written atomically; the
// store never updates individual entries. Concurrent writers follow
// last-writer-wins, an accepted limitation for a single-operator tool.
type PendingJobSet struct {
	// PollingFiles lists file names with an in-flight job, in request
	// order.
	PollingFiles []string

	// RequestTimes records when indexing was requested per file.
	RequestTimes map[string]time.Time
}

// NewPendingJobSet returns an empty set.
func NewPendingJobSet() PendingJobSet {
	return PendingJobSet{
		RequestTimes: make(map[string]time.Time),
	}
}

// Contains reports whether a job for the file is in the set.
func (p PendingJobSet) Contains(fileName string) bool {
	for _, f := range p.PollingFiles {
		if f == fileName {
			return true
		}
	}
	return false
}

// Add records a job for the file. Adding an already-present file only
// updates its request time.
func (p *PendingJobSet) Add(fileName string, requestedAt time.Time) {
	if p.RequestTimes == nil {
		p.RequestTimes = make(map[string]time.Time)
	}
	if !p.Contains(fileName) {
		p.PollingFiles = append(p.PollingFiles, fileName)
	}
	p.RequestTimes[fileName] = requestedAt
}

// Remove drops the file's job from the set. Removing an absent file is
// a no-op.
func (p *PendingJobSet) Remove(fileName string) {
	for i, f := range p.PollingFiles {
		if f == fileName {
			p.PollingFiles = append(p.PollingFiles[:i], p.PollingFiles[i+1:]...)
			break
		}
	}
	delete(p.RequestTimes, fileName)
}

// Len returns the number of tracked jobs.
func (p PendingJobSet) Len() int {
	return len(p.PollingFiles)
}

// Clone returns a deep copy, so callers can mutate without aliasing the
// stored value.
func (p PendingJobSet) Clone() PendingJobSet {
	out := PendingJobSet{
		PollingFiles: make([]string, len(p.PollingFiles)),
		RequestTimes: make(map[string]time.Time, len(p.RequestTimes)),
	}
	copy(out.PollingFiles, p.PollingFiles)
	for k, v := range p.RequestTimes {
		out.RequestTimes[k] = v
	}
	return out
}
