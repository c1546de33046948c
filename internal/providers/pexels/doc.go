// Package pexels searches and downloads stock footage from the Pexels
// video API. Search returns candidate clips ordered by the API and
// Download streams a selected rendition to local disk. Provider
// failures are classified onto the shared service error markers so the
// pipeline can report auth, quota, and availability problems
// distinctly.
package pexels
