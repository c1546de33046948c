package ffmpeg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var testSettings = EncodeSettings{
	Width:        720,
	Height:       1280,
	Preset:       "ultrafast",
	CRF:          28,
	AudioBitrate: "128k",
}

func joined(args []string) string { return strings.Join(args, " ") }

func TestNormalizeArgsBuildsVerticalCrop(t *testing.T) {
	args := joined(NormalizeArgs("in.mp4", "out.mp4", testSettings))
	if !strings.Contains(args, "scale=720:1280:force_original_aspect_ratio=increase,crop=720:1280") {
		t.Fatalf("missing crop filter: %s", args)
	}
	if !strings.Contains(args, "-c:v libx264 -preset ultrafast -crf 28") {
		t.Fatalf("missing video codec settings: %s", args)
	}
	if !strings.HasSuffix(args, "out.mp4") {
		t.Fatalf("output must come last: %s", args)
	}
}

func TestConcatCopyArgsUsesStreamCopy(t *testing.T) {
	args := joined(ConcatCopyArgs("list.txt", "out.mp4"))
	if !strings.Contains(args, "-f concat -safe 0 -i list.txt -c copy") {
		t.Fatalf("unexpected args: %s", args)
	}
	if strings.Contains(args, "libx264") {
		t.Fatalf("stream copy must not re-encode: %s", args)
	}
}

func TestConcatEncodeArgsReencodes(t *testing.T) {
	args := joined(ConcatEncodeArgs("list.txt", "out.mp4", testSettings))
	if !strings.Contains(args, "libx264") || !strings.Contains(args, "aac") {
		t.Fatalf("fallback must re-encode both streams: %s", args)
	}
}

func TestMuxArgsTrimsToShorter(t *testing.T) {
	args := joined(MuxArgs("video.mp4", "voice.mp3", "out.mp4", testSettings))
	if !strings.Contains(args, "-shortest") {
		t.Fatalf("mux must trim to the shorter input: %s", args)
	}
	if !strings.Contains(args, "-i video.mp4 -i voice.mp3") {
		t.Fatalf("inputs out of order: %s", args)
	}
}

func TestBurnInArgsStyleAndAudioCopy(t *testing.T) {
	args := joined(BurnInArgs("in.mp4", "/tmp/captions.srt", "out.mp4", CaptionStyle{
		FontName: "Arial", FontSize: 24, MarginV: 30,
	}))
	if !strings.Contains(args, "subtitles=/tmp/captions.srt:force_style='FontName=Arial,FontSize=24") {
		t.Fatalf("missing subtitles filter: %s", args)
	}
	if !strings.Contains(args, "MarginV=30") {
		t.Fatalf("missing margin: %s", args)
	}
	if !strings.Contains(args, "-c:a copy") {
		t.Fatalf("burn-in must not touch audio: %s", args)
	}
}

func TestEscapeFilterPathEscapesColons(t *testing.T) {
	if got := escapeFilterPath("C:/media/captions.srt"); got != `C\:/media/captions.srt` {
		t.Fatalf("unexpected escape: %q", got)
	}
}

func TestWriteConcatList(t *testing.T) {
	dir := t.TempDir()
	listPath := filepath.Join(dir, "list.txt")
	if err := WriteConcatList(listPath, []string{
		filepath.Join(dir, "clip_1.mp4"),
		filepath.Join(dir, "it's.mp4"),
	}); err != nil {
		t.Fatalf("write list: %v", err)
	}

	data, err := os.ReadFile(listPath)
	if err != nil {
		t.Fatalf("read list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "file '") || !strings.HasSuffix(lines[0], "clip_1.mp4'") {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], `it'\''s.mp4`) {
		t.Fatalf("single quote not escaped: %q", lines[1])
	}
}
