package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a running daemon over its HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the daemon listening at bind, which may
// be a bare host:port or a full URL.
func NewClient(bind string) *Client {
	base := strings.TrimSpace(bind)
	if base != "" && !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Submit creates a new task from the given request.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (TaskView, error) {
	var resp SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &resp); err != nil {
		return TaskView{}, err
	}
	return resp.Task, nil
}

// ListTasks fetches every task the daemon currently retains.
func (c *Client) ListTasks(ctx context.Context) ([]TaskView, error) {
	var resp TaskListResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// GetTask fetches a single task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (TaskView, error) {
	var resp TaskResponse
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+id, nil, &resp); err != nil {
		return TaskView{}, err
	}
	return resp.Task, nil
}

// RemoveTask deletes a terminal task from the registry.
func (c *Client) RemoveTask(ctx context.Context, id string) (TaskView, error) {
	var resp TaskResponse
	if err := c.do(ctx, http.MethodDelete, "/api/tasks/"+id, nil, &resp); err != nil {
		return TaskView{}, err
	}
	return resp.Task, nil
}

// Status fetches the daemon's runtime summary.
func (c *Client) Status(ctx context.Context) (DaemonStatus, error) {
	var resp DaemonStatus
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &resp); err != nil {
		return DaemonStatus{}, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contact daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			if apiErr.Kind != "" {
				return fmt.Errorf("daemon returned %d (%s): %s", resp.StatusCode, apiErr.Kind, apiErr.Message)
			}
			return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
