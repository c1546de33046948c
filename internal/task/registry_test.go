package task_test

import (
	"errors"
	"testing"
	"time"

	"reelsmith/internal/services"
	"reelsmith/internal/task"
)

func submitOne(t *testing.T, reg *task.Registry) task.Task {
	t.Helper()
	created, err := reg.Submit("Hello world.", "technology", task.Options{})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return created
}

func TestSubmitBelowCeilingSucceeds(t *testing.T) {
	reg := task.NewRegistry(2)
	first := submitOne(t, reg)

	got, ok := reg.Get(first.ID)
	if !ok {
		t.Fatal("expected task in registry")
	}
	if got.Status != task.StatusQueued {
		t.Fatalf("expected queued, got %s", got.Status)
	}
	if got.ID == "" || got.CreatedAt.IsZero() {
		t.Fatalf("expected populated identity, got %+v", got)
	}
}

func TestSubmitAtCeilingRejectsWithoutSideEffect(t *testing.T) {
	reg := task.NewRegistry(1)
	submitOne(t, reg)

	before := reg.Len()
	_, err := reg.Submit("Another script here.", "ocean", task.Options{})
	if !errors.Is(err, services.ErrCapacityExceeded) {
		t.Fatalf("expected capacity error, got %v", err)
	}
	if reg.Len() != before {
		t.Fatalf("registry size changed on rejection: %d -> %d", before, reg.Len())
	}
}

func TestSlotFreedAfterTerminalState(t *testing.T) {
	reg := task.NewRegistry(1)
	first := submitOne(t, reg)

	if err := reg.SetProcessing(first.ID, "/tmp/work", "synthesize"); err != nil {
		t.Fatalf("set processing: %v", err)
	}
	if _, err := reg.Submit("Nope.", "", task.Options{}); !errors.Is(err, services.ErrCapacityExceeded) {
		t.Fatalf("expected rejection while processing, got %v", err)
	}

	if err := reg.SetFailed(first.ID, "transcode_failed", "boom"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if _, err := reg.Submit("Works now.", "", task.Options{}); err != nil {
		t.Fatalf("expected admission after slot freed, got %v", err)
	}
}

func TestTransitionsAreMonotonic(t *testing.T) {
	reg := task.NewRegistry(1)
	created := submitOne(t, reg)

	if err := reg.SetCompleted(created.ID, "/out.mp4"); err == nil {
		t.Fatal("completed from queued should be rejected")
	}
	if err := reg.SetProcessing(created.ID, "/tmp/w", "synthesize"); err != nil {
		t.Fatalf("processing: %v", err)
	}
	if err := reg.SetCompleted(created.ID, "/out.mp4"); err != nil {
		t.Fatalf("completed: %v", err)
	}
	if err := reg.SetFailed(created.ID, "internal", "late error"); err == nil {
		t.Fatal("failed after completed should be rejected")
	}
	if err := reg.SetProcessing(created.ID, "/tmp/w", "synthesize"); err == nil {
		t.Fatal("reprocessing a terminal task should be rejected")
	}

	got, _ := reg.Get(created.ID)
	if got.Status != task.StatusCompleted || got.OutputPath != "/out.mp4" {
		t.Fatalf("unexpected final state %+v", got)
	}
	if got.CompletedAt == nil {
		t.Fatal("expected terminal timestamp")
	}
}

func TestRemoveRefusesActiveTask(t *testing.T) {
	reg := task.NewRegistry(1)
	created := submitOne(t, reg)

	if _, err := reg.Remove(created.ID); !errors.Is(err, task.ErrStillActive) {
		t.Fatalf("expected ErrStillActive, got %v", err)
	}
	if err := reg.SetProcessing(created.ID, "/tmp/w", "acquire"); err != nil {
		t.Fatalf("processing: %v", err)
	}
	if _, err := reg.Remove(created.ID); !errors.Is(err, task.ErrStillActive) {
		t.Fatalf("expected ErrStillActive while processing, got %v", err)
	}

	if err := reg.SetFailed(created.ID, "internal", "x"); err != nil {
		t.Fatalf("failed: %v", err)
	}
	removed, err := reg.Remove(created.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.ID != created.ID {
		t.Fatalf("expected removed snapshot of %s, got %s", created.ID, removed.ID)
	}
	if _, err := reg.Remove(created.ID); !errors.Is(err, task.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}
}

func TestSweepExpiredRemovesOnlyOldTerminalTasks(t *testing.T) {
	reg := task.NewRegistry(3)
	stale := submitOne(t, reg)
	fresh := submitOne(t, reg)
	active := submitOne(t, reg)

	for _, id := range []string{stale.ID, fresh.ID} {
		if err := reg.SetProcessing(id, "/tmp/w", "synthesize"); err != nil {
			t.Fatalf("processing: %v", err)
		}
		if err := reg.SetCompleted(id, "/out.mp4"); err != nil {
			t.Fatalf("completed: %v", err)
		}
	}

	// Zero retention expires every terminal task immediately; the fresh one
	// is protected by a generous window in the second pass.
	time.Sleep(5 * time.Millisecond)
	removed := reg.SweepExpired(0)
	if len(removed) != 2 {
		t.Fatalf("expected both terminal tasks swept, got %d", len(removed))
	}
	if _, ok := reg.Get(active.ID); !ok {
		t.Fatal("active task must survive the sweep")
	}

	if removed := reg.SweepExpired(time.Hour); len(removed) != 0 {
		t.Fatalf("active task swept: %v", removed)
	}
}

func TestShutdownRejectsNewSubmissions(t *testing.T) {
	reg := task.NewRegistry(1)
	reg.Shutdown()
	if _, err := reg.Submit("Script.", "", task.Options{}); !errors.Is(err, task.ErrShutdown) {
		t.Fatalf("expected ErrShutdown, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := task.ParseStatus(" Processing "); !ok || status != task.StatusProcessing {
		t.Fatalf("parse = %q, %v", status, ok)
	}
	if _, ok := task.ParseStatus("unknown"); ok {
		t.Fatal("expected unknown status to fail parsing")
	}
}
