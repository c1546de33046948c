// Package notify delivers best-effort completion callbacks. When a
// task reaches a terminal status and the submitter supplied a callback
// URL, the service posts a JSON summary of the outcome. Delivery
// failures are reported to the caller for logging but never affect the
// task's recorded result.
package notify
