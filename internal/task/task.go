package task

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a task. Transitions are one-directional:
// queued → processing → completed | failed.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusQueued,
	StatusProcessing,
	StatusCompleted,
	StatusFailed,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case StatusQueued, StatusProcessing, StatusCompleted, StatusFailed:
		return normalized, true
	default:
		return "", false
	}
}

// IsTerminal reports whether a status permits no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Options is the per-task configuration snapshot captured at submission.
// The pipeline reads only this snapshot, never live config, so config
// reloads cannot change a task mid-flight.
type Options struct {
	VoiceID         string
	CallbackURL     string
	CaptionsEnabled bool
	WordsPerCue     int
	Uppercase       bool
	FontName        string
	FontSize        int
	MarginV         int
	Width           int
	Height          int
	MinClips        int
	MaxClips        int
}

// Task is one video generation job. All fields are mutated only through the
// Registry, which copies on read; pipeline code never holds a live pointer
// shared with another goroutine.
type Task struct {
	ID          string
	ScriptText  string
	SearchQuery string
	Options     Options

	Status        Status
	ProgressStage string
	ErrorKind     string
	ErrorMessage  string
	OutputPath    string
	WorkDir       string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// IsActive reports whether the task still occupies a concurrency slot.
func (t Task) IsActive() bool {
	return t.Status == StatusQueued || t.Status == StatusProcessing
}
