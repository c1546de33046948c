package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/notify"
	"reelsmith/internal/task"
)

func newService() notify.Service {
	cfg := config.Default()
	cfg.Workflow.NotifyTimeout = 5
	return notify.NewService(&cfg)
}

func TestNotifyTaskCompletedPostsPayload(t *testing.T) {
	var captured struct {
		contentType string
		payload     map[string]any
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		captured.contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&captured.payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tsk := &task.Task{
		ID:         "abc-123",
		OutputPath: "/out/abc-123.mp4",
		Options:    task.Options{CallbackURL: server.URL},
	}
	if err := newService().NotifyTaskCompleted(context.Background(), tsk); err != nil {
		t.Fatalf("notify completed: %v", err)
	}
	if captured.contentType != "application/json" {
		t.Fatalf("content type %q", captured.contentType)
	}
	if captured.payload["task_id"] != "abc-123" || captured.payload["status"] != "completed" {
		t.Fatalf("unexpected payload: %v", captured.payload)
	}
	if captured.payload["output"] != "/out/abc-123.mp4" {
		t.Fatalf("missing output path: %v", captured.payload)
	}
	if _, ok := captured.payload["error"]; ok {
		t.Fatalf("completed callback should omit error: %v", captured.payload)
	}
}

func TestNotifyTaskFailedIncludesErrorInfo(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&payload)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	tsk := &task.Task{
		ID:           "abc-123",
		ErrorKind:    "insufficient_footage",
		ErrorMessage: "only 1 usable clip",
		Options:      task.Options{CallbackURL: server.URL},
	}
	if err := newService().NotifyTaskFailed(context.Background(), tsk); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if payload["status"] != "failed" || payload["error_kind"] != "insufficient_footage" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload["error"] != "only 1 usable clip" {
		t.Fatalf("missing error message: %v", payload)
	}
}

func TestNotifySkipsTasksWithoutCallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for task without callback: %s", r.URL.String())
	}))
	defer server.Close()

	tsk := &task.Task{ID: "abc-123"}
	if err := newService().NotifyTaskCompleted(context.Background(), tsk); err != nil {
		t.Fatalf("expected skip to return nil, got %v", err)
	}
}

func TestNotifyReportsNon2xxResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "receiver down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	tsk := &task.Task{
		ID:      "abc-123",
		Options: task.Options{CallbackURL: server.URL},
	}
	err := newService().NotifyTaskCompleted(context.Background(), tsk)
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected delivery error, got %v", err)
	}
}
