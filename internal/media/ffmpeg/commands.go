package ffmpeg

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// EncodeSettings carries the codec parameters shared by every re-encode.
type EncodeSettings struct {
	Width        int
	Height       int
	Preset       string
	CRF          int
	AudioBitrate string
}

// CaptionStyle configures the burn-in subtitle rendering.
type CaptionStyle struct {
	FontName string
	FontSize int
	MarginV  int
}

func (s EncodeSettings) videoArgs() []string {
	return []string{
		"-c:v", "libx264",
		"-preset", s.Preset,
		"-crf", strconv.Itoa(s.CRF),
	}
}

func (s EncodeSettings) audioArgs() []string {
	return []string{
		"-c:a", "aac",
		"-b:a", s.AudioBitrate,
	}
}

// NormalizeArgs scales and center-crops a clip to the portrait target frame
// and strips nothing else; audio is re-encoded so later concatenation sees
// uniform streams.
func NormalizeArgs(input, output string, s EncodeSettings) []string {
	filter := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d",
		s.Width, s.Height, s.Width, s.Height)
	args := []string{"-y", "-i", input, "-vf", filter}
	args = append(args, s.videoArgs()...)
	args = append(args, s.audioArgs()...)
	return append(args, output)
}

// ConcatCopyArgs joins the clips in listFile with container-level stream
// copy. Cheap, but fails on codec or container mismatches.
func ConcatCopyArgs(listFile, output string) []string {
	return []string{
		"-y", "-f", "concat", "-safe", "0", "-i", listFile,
		"-c", "copy",
		output,
	}
}

// ConcatEncodeArgs joins the clips in listFile with a full re-encode, the
// fallback when stream copy is rejected.
func ConcatEncodeArgs(listFile, output string, s EncodeSettings) []string {
	args := []string{"-y", "-f", "concat", "-safe", "0", "-i", listFile}
	args = append(args, s.videoArgs()...)
	args = append(args, s.audioArgs()...)
	return append(args, output)
}

// MuxArgs lays the narration audio over the silent video. -shortest trims to
// the shorter input; footage is never looped to match longer audio.
func MuxArgs(video, audio, output string, s EncodeSettings) []string {
	args := []string{"-y", "-i", video, "-i", audio}
	args = append(args, s.videoArgs()...)
	args = append(args, s.audioArgs()...)
	args = append(args, "-shortest", output)
	return args
}

// BurnInArgs renders the subtitle file into the video while copying the
// audio stream untouched.
func BurnInArgs(video, srtPath, output string, style CaptionStyle) []string {
	filter := fmt.Sprintf(
		"subtitles=%s:force_style='FontName=%s,FontSize=%d,Bold=0,"+
			"PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,"+
			"BorderStyle=1,Outline=2,Shadow=0,"+
			"BackColour=&H00000000,Alignment=2,MarginV=%d'",
		escapeFilterPath(srtPath), style.FontName, style.FontSize, style.MarginV)
	return []string{
		"-y", "-i", video,
		"-vf", filter,
		"-c:a", "copy",
		output,
	}
}

// WriteConcatList writes the concat demuxer list file referencing clips in
// order. Paths are absolutized and single quotes escaped per ffmpeg rules.
func WriteConcatList(path string, clips []string) error {
	var b strings.Builder
	for _, clip := range clips {
		absolute, err := filepath.Abs(clip)
		if err != nil {
			return fmt.Errorf("resolve clip path %q: %w", clip, err)
		}
		escaped := strings.ReplaceAll(filepath.ToSlash(absolute), "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// escapeFilterPath escapes a path for use inside an ffmpeg filter argument,
// where ':' is an option separator.
func escapeFilterPath(path string) string {
	escaped := filepath.ToSlash(path)
	return strings.ReplaceAll(escaped, ":", `\:`)
}
