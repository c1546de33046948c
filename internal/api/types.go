package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// TaskView describes a task in a transport-friendly format.
type TaskView struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	ProgressStage string `json:"progressStage,omitempty"`
	SearchQuery   string `json:"searchQuery,omitempty"`
	ErrorKind     string `json:"errorKind,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
	OutputPath    string `json:"outputPath,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
	CompletedAt   string `json:"completedAt,omitempty"`
}

// SubmitRequest is the payload accepted by the task submission endpoint.
type SubmitRequest struct {
	ScriptText  string `json:"scriptText"`
	SearchQuery string `json:"searchQuery,omitempty"`
	VoiceID     string `json:"voiceId,omitempty"`
	CallbackURL string `json:"callbackUrl,omitempty"`
	Captions    *bool  `json:"captions,omitempty"`
	WordsPerCue int    `json:"wordsPerCue,omitempty"`
}

// SubmitResponse wraps the freshly created task.
type SubmitResponse struct {
	Task TaskView `json:"task"`
}

// TaskListResponse wraps a collection of tasks for API responses.
type TaskListResponse struct {
	Tasks []TaskView `json:"tasks"`
}

// TaskResponse wraps a single task.
type TaskResponse struct {
	Task TaskView `json:"task"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running     bool           `json:"running"`
	PID         int            `json:"pid"`
	ActiveTasks int            `json:"activeTasks"`
	MaxTasks    int            `json:"maxTasks"`
	TaskCounts  map[string]int `json:"taskCounts"`
	OutputDir   string         `json:"outputDir"`
}

// ErrorResponse carries a machine-readable failure to API consumers.
type ErrorResponse struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}
