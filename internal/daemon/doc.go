// Package daemon runs the long-lived service process. It enforces
// single-instance execution with a file lock, accepts task submissions
// over an HTTP API, fans each accepted task out to a pipeline
// goroutine, and periodically evicts expired terminal tasks from the
// registry.
package daemon
