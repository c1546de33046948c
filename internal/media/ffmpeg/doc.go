// Package ffmpeg invokes the ffmpeg binary as a child process and builds the
// argument lists for each transcode the pipeline performs: vertical
// normalization, concatenation (stream copy and re-encode), audio muxing, and
// caption burn-in.
package ffmpeg
