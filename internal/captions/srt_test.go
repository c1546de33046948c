package captions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRenderSRT(t *testing.T) {
	cues := []Cue{
		{Text: "HELLO WORLD.", Start: 0, End: 2.6},
		{Text: "WELCOME!", Start: 2.6, End: 4.0},
	}
	got := RenderSRT(cues)
	want := "1\n00:00:00,000 --> 00:00:02,600\nHELLO WORLD.\n\n" +
		"2\n00:00:02,600 --> 00:00:04,000\nWELCOME!\n\n"
	if got != want {
		t.Fatalf("unexpected SRT:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderSRTEmpty(t *testing.T) {
	if got := RenderSRT(nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestSRTTimestampRollsOverUnits(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00,000"},
		{61.5, "00:01:01,500"},
		{3661.25, "01:01:01,250"},
		{0.0004, "00:00:00,000"},
		{-1, "00:00:00,000"},
	}
	for _, tc := range tests {
		if got := srtTimestamp(tc.seconds); got != tc.want {
			t.Fatalf("srtTimestamp(%f) = %q, want %q", tc.seconds, got, tc.want)
		}
	}
}

func TestWriteSRT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.srt")
	cues := Generate("Hello world. Welcome!", 4.0, TimingOptions{WordsPerCue: 3, Uppercase: true})
	if err := WriteSRT(path, cues); err != nil {
		t.Fatalf("write srt: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read srt: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "HELLO WORLD.") || !strings.Contains(text, "WELCOME!") {
		t.Fatalf("unexpected srt contents:\n%s", text)
	}
	if !strings.HasPrefix(text, "1\n00:00:00,000 --> ") {
		t.Fatalf("unexpected srt header:\n%s", text)
	}
}
