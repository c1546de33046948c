// Package captions converts script text into time-aligned caption cues
// without any acoustic analysis, and renders cue sequences as SRT.
//
// Timing is a heuristic: each word is weighted by a vowel-cluster syllable
// count, punctuation injects short pauses, and the whole allocation is scaled
// so the cue sequence covers the narration duration exactly.
package captions
