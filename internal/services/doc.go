// Package services defines the error taxonomy shared by the stage executors
// and the context keys that accompany a task through its pipeline run.
package services
