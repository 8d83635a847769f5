package pipeline

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

// BuildStatus represents the state of a build job.
type BuildStatus string

const (
	StatusQueued    BuildStatus = "queued"
	StatusRunning   BuildStatus = "running"
	StatusWriting   BuildStatus = "writing"
	StatusCompleted BuildStatus = "completed"
	StatusFailed    BuildStatus = "failed"
)

// Done reports whether the status is final.
func (s BuildStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks the state of a single build.
type Job struct {
	mu sync.Mutex

	ID      string      `json:"build_id"`
	Trigger string      `json:"trigger"`
	Status  BuildStatus `json:"status"`
	Phase   string      `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	result *Result
	errors []string
}

// Progress summarizes what a build produced.
type Progress struct {
	Counts
	Warnings int      `json:"warnings"`
	Errors   []string `json:"errors"`
}

// NewJob returns a queued job with a fresh, time-ordered id.
func NewJob(trigger string) *Job {
	now := time.Now()
	return &Job{
		ID:        newBuildID(),
		Trigger:   trigger,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

func newBuildID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Now(), idEntropy).String()
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	ttl    time.Duration
	latest *Job
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// SetLatest records job as the most recent successful build.
func (s *JobStore) SetLatest(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = job
}

// Latest returns the most recent successful build, or nil.
func (s *JobStore) Latest() *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Cleanup removes expired jobs. The latest build is kept.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if job == s.latest {
			continue
		}
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status BuildStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetResult attaches the build result and copies its counts.
func (j *Job) SetResult(res *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = res
	j.Progress.Counts = res.Counts
	j.Progress.Warnings = len(res.Diagnostics)
	j.UpdatedAt = time.Now()
}

// Result returns the build result, or nil while the build runs or after
// it failed.
func (j *Job) Result() *Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string      `json:"build_id"`
	Trigger   string      `json:"trigger"`
	Status    BuildStatus `json:"status"`
	Phase     string      `json:"phase"`
	Progress  Progress    `json:"progress"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	p := j.Progress
	p.Errors = append([]string(nil), j.Progress.Errors...)
	if p.Errors == nil {
		p.Errors = []string{}
	}
	return JobSnapshot{
		ID:        j.ID,
		Trigger:   j.Trigger,
		Status:    j.Status,
		Phase:     j.Phase,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
