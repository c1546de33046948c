package ffmpeg

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

// The runner is exercised against sh so tests do not require ffmpeg.

func TestRunCapturesDiagnosticOnFailure(t *testing.T) {
	cli := NewCLI("sh")
	err := cli.Run(context.Background(), Command{
		Args: []string{"-c", "echo moov atom not found >&2; exit 1"},
	})
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.Contains(err.Error(), "moov atom not found") {
		t.Fatalf("diagnostic output missing: %v", err)
	}
}

func TestRunClassifiesTimeout(t *testing.T) {
	cli := NewCLI("sh")
	err := cli.Run(context.Background(), Command{
		Args:    []string{"-c", "sleep 5"},
		Timeout: 50 * time.Millisecond,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
}

func TestRunSucceedsOnZeroExit(t *testing.T) {
	cli := NewCLI("sh")
	if err := cli.Run(context.Background(), Command{Args: []string{"-c", "true"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunRejectsEmptyArgs(t *testing.T) {
	cli := NewCLI("")
	if err := cli.Run(context.Background(), Command{}); err == nil {
		t.Fatal("expected error for empty argument list")
	}
}
