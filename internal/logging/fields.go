package logging

// Shared attribute keys. Stage and pipeline code must use these constants so
// log queries line up across components.
const (
	FieldComponent = "component"
	FieldTaskID    = "task_id"
	FieldStage     = "stage"
	FieldRequestID = "request_id"
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
	FieldArtifact  = "artifact"
	FieldClipIndex = "clip_index"
)
