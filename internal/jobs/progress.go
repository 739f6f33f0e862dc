package jobs

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ImportJob tracks the progress of one long-running import. Each job owns
// its own handle; concurrent imports never share state. Callers hold the
// token returned at job start and poll by token.
type ImportJob struct {
	Token     string
	StartedAt time.Time

	mu        sync.Mutex
	total     int
	processed int
	done      bool
	errMsg    string
}

// JobSnapshot is the poll-safe view of a job.
type JobSnapshot struct {
	Token     string `json:"token"`
	Total     int    `json:"total"`
	Processed int    `json:"processed"`
	Done      bool   `json:"done"`
	Error     string `json:"error,omitempty"`
}

func (j *ImportJob) SetTotal(n int) {
	j.mu.Lock()
	j.total = n
	j.mu.Unlock()
}

func (j *ImportJob) Advance(processed int) {
	j.mu.Lock()
	j.processed = processed
	j.mu.Unlock()
}

func (j *ImportJob) Finish(err error) {
	j.mu.Lock()
	j.done = true
	if err != nil {
		j.errMsg = err.Error()
	}
	j.mu.Unlock()
}

func (j *ImportJob) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobSnapshot{
		Token:     j.Token,
		Total:     j.total,
		Processed: j.processed,
		Done:      j.done,
		Error:     j.errMsg,
	}
}

// ProgressRegistry hands out job handles keyed by uuid token and forgets
// finished jobs after a retention window.
type ProgressRegistry struct {
	mu   sync.Mutex
	jobs map[string]*ImportJob
}

func NewProgressRegistry() *ProgressRegistry {
	return &ProgressRegistry{jobs: make(map[string]*ImportJob)}
}

var ErrJobNotFound = errors.New("import job not found")

func (r *ProgressRegistry) NewJob() *ImportJob {
	job := &ImportJob{
		Token:     uuid.New().String(),
		StartedAt: time.Now(),
	}
	r.mu.Lock()
	r.jobs[job.Token] = job
	r.mu.Unlock()
	return job
}

func (r *ProgressRegistry) Get(token string) (*ImportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[token]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Sweep drops finished jobs older than maxAge and returns how many were
// removed.
func (r *ProgressRegistry) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for token, job := range r.jobs {
		snap := job.Snapshot()
		if snap.Done && job.StartedAt.Before(cutoff) {
			delete(r.jobs, token)
			removed++
		}
	}
	return removed
}

var globalRegistry = NewProgressRegistry()

// Registry returns the process-wide progress registry.
func Registry() *ProgressRegistry {
	return globalRegistry
}
