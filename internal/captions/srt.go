package captions

import (
	"fmt"
	"os"
	"strings"
)

// RenderSRT serializes cues as SubRip text. Zero-width cues are kept: ffmpeg
// accepts them and dropping entries would renumber the sequence.
func RenderSRT(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", i+1, srtTimestamp(cue.Start), srtTimestamp(cue.End), cue.Text)
	}
	return b.String()
}

// WriteSRT renders cues into an .srt artifact at path.
func WriteSRT(path string, cues []Cue) error {
	return os.WriteFile(path, []byte(RenderSRT(cues)), 0o644)
}

// srtTimestamp formats seconds as HH:MM:SS,mmm.
func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(seconds*1000 + 0.5)
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	secs := millis / 1000
	millis -= secs * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}
