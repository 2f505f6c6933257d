// Package jobs tracks asynchronous indexing work. Each submitted
// sweep gets a job id that callers poll for progress while the sweep
// runs in the background.
package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	loomerr "github.com/visualoom/visualoom/internal/errors"
)

// State is a job lifecycle state.
type State string

const (
	// StateCreated means the job is registered but not yet running.
	StateCreated State = "created"
	// StateRunning means the sweep is in progress.
	StateRunning State = "running"
	// StateCompleted means the sweep finished successfully.
	StateCompleted State = "completed"
	// StateFailed means the sweep aborted with an error.
	StateFailed State = "failed"
)

// Snapshot is a point-in-time view of a job, safe to serialize.
type Snapshot struct {
	ID    string `json:"id"`
	State State  `json:"state"`
	// Done is true once the job reached a terminal state.
	Done     bool   `json:"done"`
	Path     string `json:"path"`
	Tag      string `json:"tag,omitempty"`
	Progress int    `json:"progress"`
	Total    int    `json:"total"`
	Indexed  int    `json:"indexed"`
	Error    string `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// job is the mutable tracked state. All access goes through its mutex.
type job struct {
	mu sync.RWMutex

	id       string
	state    State
	path     string
	tag      string
	progress int
	total    int
	indexed  int
	err      error

	startedAt  time.Time
	finishedAt time.Time

	cancel context.CancelFunc
}

func (j *job) snapshot() Snapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()

	snap := Snapshot{
		ID:         j.id,
		State:      j.state,
		Done:       j.state == StateCompleted || j.state == StateFailed,
		Path:       j.path,
		Tag:        j.tag,
		Progress:   j.progress,
		Total:      j.total,
		Indexed:    j.indexed,
		StartedAt:  j.startedAt,
		FinishedAt: j.finishedAt,
	}
	if j.err != nil {
		snap.Error = j.err.Error()
	}
	return snap
}

// setTotal records the number of items the job will process. A sweep
// that finds nothing new is immediately complete at 100%.
func (j *job) setTotal(total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.total = total
	if total == 0 {
		j.progress = 100
		j.indexed = 0
	}
}

func (j *job) setDone(done int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.indexed = done
	if j.total > 0 {
		j.progress = done * 100 / j.total
	}
}

func (j *job) start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = StateRunning
	j.startedAt = time.Now().UTC()
}

func (j *job) finish(indexed int, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.finishedAt = time.Now().UTC()
	if err != nil {
		j.state = StateFailed
		j.err = err
		return
	}
	j.state = StateCompleted
	j.progress = 100
	j.indexed = indexed
}

// Runner executes a sweep on behalf of a job, reporting item counts
// through the callbacks.
type Runner func(ctx context.Context, path, tag string, onTotal func(int), onDone func(int)) (indexed int, err error)

// Tracker is the in-process job registry.
type Tracker struct {
	mu     sync.RWMutex
	jobs   map[string]*job
	runner Runner
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewTracker creates a Tracker that executes sweeps with run.
func NewTracker(run Runner, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		jobs:   make(map[string]*job),
		runner: run,
		logger: logger,
	}
}

// Submit registers a sweep of path and starts it in the background.
// The returned id can be polled with Status.
func (t *Tracker) Submit(ctx context.Context, path, tag string) string {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	j := &job{
		id:     uuid.NewString(),
		state:  StateCreated,
		path:   path,
		tag:    tag,
		cancel: cancel,
	}

	t.mu.Lock()
	t.jobs[j.id] = j
	t.mu.Unlock()

	t.logger.Info("job_submitted",
		slog.String("job_id", j.id),
		slog.String("path", path),
		slog.String("tag", tag))

	t.wg.Add(1)
	go t.run(runCtx, j)

	return j.id
}

func (t *Tracker) run(ctx context.Context, j *job) {
	defer t.wg.Done()
	defer j.cancel()

	j.start()

	indexed, err := t.runner(ctx, j.path, j.tag, j.setTotal, j.setDone)
	if err != nil {
		err = loomerr.New(loomerr.ErrCodeJobFailure, "indexing job failed", err).
			WithDetail("job_id", j.id)
	}
	j.finish(indexed, err)

	if err != nil {
		t.logger.Error("job_failed",
			slog.String("job_id", j.id),
			slog.String("error", err.Error()))
		return
	}
	t.logger.Info("job_completed",
		slog.String("job_id", j.id),
		slog.Int("indexed", indexed))
}

// Status returns a snapshot of the job, or ErrCodeJobNotFound.
func (t *Tracker) Status(id string) (Snapshot, error) {
	t.mu.RLock()
	j, ok := t.jobs[id]
	t.mu.RUnlock()
	if !ok {
		return Snapshot{}, loomerr.JobNotFound(id)
	}
	return j.snapshot(), nil
}

// Cancel stops a running job. Unknown ids return ErrCodeJobNotFound.
func (t *Tracker) Cancel(id string) error {
	t.mu.RLock()
	j, ok := t.jobs[id]
	t.mu.RUnlock()
	if !ok {
		return loomerr.JobNotFound(id)
	}
	j.cancel()
	return nil
}

// List returns snapshots of all known jobs in no particular order.
func (t *Tracker) List() []Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Snapshot, 0, len(t.jobs))
	for _, j := range t.jobs {
		out = append(out, j.snapshot())
	}
	return out
}

// Wait blocks until all submitted jobs have finished. Used on
// shutdown and in tests.
func (t *Tracker) Wait() {
	t.wg.Wait()
}
