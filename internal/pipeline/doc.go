// Package pipeline drives one task from script text to a finished
// vertical video. Each task runs through a fixed sequence of stages:
// narration synthesis, footage acquisition, per-clip normalization,
// concatenation, audio muxing, optional caption burn-in, and delivery
// of the final file to the output directory.
//
// The pipeline owns the task's working directory. Intermediate
// artifacts are deleted as soon as the following stage no longer needs
// them, and the whole directory is removed when the task reaches a
// terminal status.
package pipeline
