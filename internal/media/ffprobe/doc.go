// Package ffprobe shells out to ffprobe for container inspection. The
// pipeline uses it to measure narration duration and to validate downloaded
// clips before they are fed to the transcoder.
package ffprobe
