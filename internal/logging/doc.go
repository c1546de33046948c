// Package logging builds the slog loggers used across reelsmith and keeps
// the attribute vocabulary consistent between the daemon, the pipeline, and
// the stage executors.
package logging
