package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/task"
)

const userAgent = "Reelsmith-Go/0.1.0"

// Service defines the callback surface exposed to workflow components.
type Service interface {
	NotifyTaskCompleted(ctx context.Context, tsk *task.Task) error
	NotifyTaskFailed(ctx context.Context, tsk *task.Task) error
}

// callbackPayload is the JSON body posted to the submitter's callback
// URL when a task reaches a terminal status.
type callbackPayload struct {
	TaskID       string `json:"task_id"`
	Status       string `json:"status"`
	ErrorKind    string `json:"error_kind,omitempty"`
	ErrorMessage string `json:"error,omitempty"`
	OutputPath   string `json:"output,omitempty"`
}

// NewService builds a webhook-backed callback service. Tasks without a
// callback URL are skipped silently.
func NewService(cfg *config.Config) Service {
	timeout := time.Duration(cfg.Workflow.NotifyTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &webhookService{
		client: &http.Client{Timeout: timeout},
	}
}

type webhookService struct {
	client *http.Client
}

func (w *webhookService) NotifyTaskCompleted(ctx context.Context, tsk *task.Task) error {
	if tsk == nil {
		return nil
	}
	return w.send(ctx, tsk.Options.CallbackURL, callbackPayload{
		TaskID:     tsk.ID,
		Status:     string(task.StatusCompleted),
		OutputPath: tsk.OutputPath,
	})
}

func (w *webhookService) NotifyTaskFailed(ctx context.Context, tsk *task.Task) error {
	if tsk == nil {
		return nil
	}
	return w.send(ctx, tsk.Options.CallbackURL, callbackPayload{
		TaskID:       tsk.ID,
		Status:       string(task.StatusFailed),
		ErrorKind:    tsk.ErrorKind,
		ErrorMessage: tsk.ErrorMessage,
	})
}

func (w *webhookService) send(ctx context.Context, url string, data callbackPayload) error {
	url = strings.TrimSpace(url)
	if w == nil || w.client == nil || url == "" {
		return nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send callback: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("callback returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// NoopService satisfies Service without performing any delivery. It is
// used by tests and by tooling that runs the pipeline directly.
type NoopService struct{}

func (NoopService) NotifyTaskCompleted(context.Context, *task.Task) error { return nil }
func (NoopService) NotifyTaskFailed(context.Context, *task.Task) error    { return nil }
