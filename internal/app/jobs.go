package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/quantumcrowd/internal/domain/model"
	"github.com/okian/quantumcrowd/pkg/metrics"
)

type jobEntry struct {
	status model.JobStatus
	done   chan struct{}
}

// jobTracker records the lifecycle of prediction jobs. Transitions only move
// forward. Finished jobs are kept up to limit, oldest evicted first.
type jobTracker struct {
	mu       sync.Mutex
	entries  map[string]*jobEntry
	finished []string
	limit    int
}

func newJobTracker(limit int) *jobTracker {
	return &jobTracker{entries: make(map[string]*jobEntry), limit: limit}
}

var stateOrder = map[model.JobState]int{ //nolint:gochecknoglobals // fixed lifecycle ordering
	model.JobAccepted:            0,
	model.JobPlaceholderReturned: 1,
	model.JobComputing:           2,
	model.JobCompleted:           3,
	model.JobFailed:              3,
}

func (t *jobTracker) accept(job model.Job) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[job.ID] = &jobEntry{
		status: model.JobStatus{
			ID:         job.ID,
			StartupID:  job.StartupID,
			State:      model.JobAccepted,
			AcceptedAt: job.AcceptedAt,
		},
		done: make(chan struct{}),
	}
	metrics.UpdateTrackedJobs(len(t.entries))
}

// advance moves a non-terminal job to state.
func (t *jobTracker) advance(id string, state model.JobState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok || e.status.State.Terminal() || stateOrder[state] <= stateOrder[e.status.State] {
		return
	}
	e.status.State = state
}

// finish moves a job to a terminal state and releases waiters.
func (t *jobTracker) finish(id string, state model.JobState, cause error, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok || e.status.State.Terminal() {
		return
	}
	e.status.State = state
	e.status.FinishedAt = &at
	if cause != nil {
		e.status.Error = cause.Error()
	}
	close(e.done)

	t.finished = append(t.finished, id)
	for t.limit > 0 && len(t.finished) > t.limit {
		delete(t.entries, t.finished[0])
		t.finished = t.finished[1:]
	}
	metrics.UpdateTrackedJobs(len(t.entries))
}

// forget drops a job that never reached the queue.
func (t *jobTracker) forget(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, id)
	metrics.UpdateTrackedJobs(len(t.entries))
}

func (t *jobTracker) get(id string) (model.JobStatus, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[id]
	if !ok {
		return model.JobStatus{}, false
	}
	return e.snapshot(), true
}

func (t *jobTracker) wait(ctx context.Context, id string) (model.JobStatus, error) {
	t.mu.Lock()
	e, ok := t.entries[id]
	t.mu.Unlock()
	if !ok {
		return model.JobStatus{}, fmt.Errorf("%w: job %s", ErrNotFound, id)
	}

	select {
	case <-e.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return e.snapshot(), nil
	case <-ctx.Done():
		return model.JobStatus{}, fmt.Errorf("wait for job %s: %w", id, ctx.Err())
	}
}

func (t *jobTracker) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// snapshot copies the status. Caller holds the tracker lock.
func (e *jobEntry) snapshot() model.JobStatus {
	s := e.status
	if e.status.FinishedAt != nil {
		at := *e.status.FinishedAt
		s.FinishedAt = &at
	}
	return s
}
