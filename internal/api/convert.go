package api

import (
	"time"

	"reelsmith/internal/task"
)

// FromTask converts a task record to its API representation.
func FromTask(tsk task.Task) TaskView {
	view := TaskView{
		ID:            tsk.ID,
		Status:        string(tsk.Status),
		ProgressStage: tsk.ProgressStage,
		SearchQuery:   tsk.SearchQuery,
		ErrorKind:     tsk.ErrorKind,
		ErrorMessage:  tsk.ErrorMessage,
		OutputPath:    tsk.OutputPath,
		CreatedAt:     FormatTime(tsk.CreatedAt),
		UpdatedAt:     FormatTime(tsk.UpdatedAt),
	}
	if tsk.CompletedAt != nil {
		view.CompletedAt = FormatTime(*tsk.CompletedAt)
	}
	return view
}

// FromTasks converts a slice of task records into API DTOs.
func FromTasks(tasks []task.Task) []TaskView {
	if len(tasks) == 0 {
		return nil
	}
	out := make([]TaskView, 0, len(tasks))
	for _, tsk := range tasks {
		out = append(out, FromTask(tsk))
	}
	return out
}

// CountByStatus tallies tasks per status for status payloads.
func CountByStatus(tasks []task.Task) map[string]int {
	counts := make(map[string]int, len(task.AllStatuses()))
	for _, status := range task.AllStatuses() {
		counts[string(status)] = 0
	}
	for _, tsk := range tasks {
		counts[string(tsk.Status)]++
	}
	return counts
}

// FormatTime converts a time to RFC3339 or returns an empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// ParseTime parses an API timestamp, returning the zero time on failure.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}
