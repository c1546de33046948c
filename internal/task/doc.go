// Package task holds the in-memory task model and the registry that bounds
// concurrent pipeline execution. Task state lives only for the lifetime of
// the process; the registry map is the single structure shared across
// concurrently running pipelines.
package task
