package task

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"reelsmith/internal/services"
)

var (
	// ErrNotFound is returned when a task identifier is unknown.
	ErrNotFound = errors.New("task not found")
	// ErrStillActive is returned when removal is requested for a task that
	// has not reached a terminal state yet.
	ErrStillActive = errors.New("task still active")
	// ErrShutdown is returned for submissions after the registry is closed.
	ErrShutdown = errors.New("registry shut down")
)

// Registry is the process-wide task map plus the admission gate. The gate is
// enforced at submission time only: while the number of tasks occupying a
// concurrency slot is at the ceiling, new submissions are rejected with no
// side effect.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[string]*Task
	limit  int
	closed bool
}

// NewRegistry constructs a registry with the given concurrency ceiling.
func NewRegistry(limit int) *Registry {
	if limit < 1 {
		limit = 1
	}
	return &Registry{
		tasks: make(map[string]*Task),
		limit: limit,
	}
}

// Shutdown stops accepting submissions. Existing tasks remain readable so
// in-flight pipelines can record their terminal state during drain.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// Submit admits a new task when a concurrency slot is free. On rejection no
// task record is created. The returned snapshot carries the generated ID.
func (r *Registry) Submit(scriptText, searchQuery string, opts Options) (Task, error) {
	scriptText = strings.TrimSpace(scriptText)
	if scriptText == "" {
		return Task{}, errors.New("script text must not be empty")
	}
	searchQuery = strings.TrimSpace(searchQuery)
	if searchQuery == "" {
		searchQuery = "technology"
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return Task{}, ErrShutdown
	}
	if r.activeLocked() >= r.limit {
		return Task{}, services.Wrap(services.ErrCapacityExceeded, "gate", "submit",
			"concurrency ceiling reached, resubmit later", nil)
	}

	now := time.Now().UTC()
	t := &Task{
		ID:          uuid.NewString(),
		ScriptText:  scriptText,
		SearchQuery: searchQuery,
		Options:     opts,
		Status:      StatusQueued,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.tasks[t.ID] = t
	return *t, nil
}

// Get returns a snapshot of the task, if known.
func (r *Registry) Get(id string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *t, true
}

// List returns snapshots of all tasks ordered newest first.
func (r *Registry) List() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// ActiveCount returns the number of tasks currently occupying a slot.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeLocked()
}

func (r *Registry) activeLocked() int {
	active := 0
	for _, t := range r.tasks {
		if t.IsActive() {
			active++
		}
	}
	return active
}

// SetProcessing transitions a queued task to processing and records its
// working directory and first stage label.
func (r *Registry) SetProcessing(id, workDir, stage string) error {
	return r.mutate(id, func(t *Task) error {
		if t.Status != StatusQueued {
			return transitionError(t.Status, StatusProcessing)
		}
		t.Status = StatusProcessing
		t.WorkDir = workDir
		t.ProgressStage = stage
		return nil
	})
}

// SetProgress updates the free-form stage label of a processing task.
func (r *Registry) SetProgress(id, stage string) error {
	return r.mutate(id, func(t *Task) error {
		if t.Status != StatusProcessing {
			return transitionError(t.Status, StatusProcessing)
		}
		t.ProgressStage = stage
		return nil
	})
}

// SetCompleted transitions a processing task to completed with its artifact.
func (r *Registry) SetCompleted(id, outputPath string) error {
	return r.mutate(id, func(t *Task) error {
		if t.Status != StatusProcessing {
			return transitionError(t.Status, StatusCompleted)
		}
		now := time.Now().UTC()
		t.Status = StatusCompleted
		t.OutputPath = outputPath
		t.ProgressStage = "completed"
		t.ErrorKind = ""
		t.ErrorMessage = ""
		t.CompletedAt = &now
		return nil
	})
}

// SetFailed transitions a task to failed with the first fatal error. Allowed
// from queued as well: admission succeeded but the pipeline never started.
func (r *Registry) SetFailed(id, kind, message string) error {
	return r.mutate(id, func(t *Task) error {
		if t.Status.IsTerminal() {
			return transitionError(t.Status, StatusFailed)
		}
		now := time.Now().UTC()
		t.Status = StatusFailed
		t.ErrorKind = kind
		t.ErrorMessage = message
		t.ProgressStage = "failed"
		t.CompletedAt = &now
		return nil
	})
}

// Remove evicts a terminal task and returns its final snapshot so the caller
// can delete artifacts. Removal of an active task is refused; it must
// complete or fail first.
func (r *Registry) Remove(id string) (Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	if t.IsActive() {
		return Task{}, ErrStillActive
	}
	snapshot := *t
	delete(r.tasks, id)
	return snapshot, nil
}

// SweepExpired removes terminal tasks whose terminal timestamp is older than
// the retention window and returns their snapshots for artifact cleanup.
func (r *Registry) SweepExpired(retention time.Duration) []Task {
	cutoff := time.Now().UTC().Add(-retention)
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []Task
	for id, t := range r.tasks {
		if !t.Status.IsTerminal() || t.CompletedAt == nil {
			continue
		}
		if t.CompletedAt.Before(cutoff) {
			removed = append(removed, *t)
			delete(r.tasks, id)
		}
	}
	return removed
}

func (r *Registry) mutate(id string, fn func(*Task) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if err := fn(t); err != nil {
		return err
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

func transitionError(from, to Status) error {
	return errors.New("invalid transition " + string(from) + " -> " + string(to))
}
