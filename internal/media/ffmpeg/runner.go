package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Command is one bounded ffmpeg invocation.
type Command struct {
	Args    []string
	Dir     string
	Timeout time.Duration
}

// Runner executes transcode commands. The pipeline depends on this interface
// so tests can substitute a scripted fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// CLI runs the real ffmpeg binary.
type CLI struct {
	binary string
}

// NewCLI constructs a runner for the given binary name ("ffmpeg" when empty).
func NewCLI(binary string) *CLI {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &CLI{binary: binary}
}

var _ Runner = (*CLI)(nil)

// Run executes ffmpeg and returns an error carrying the engine's diagnostic
// output verbatim on non-zero exit. A deadline overrun surfaces as a wrapped
// context.DeadlineExceeded so callers can classify it as a timeout.
func (c *CLI) Run(ctx context.Context, cmd Command) error {
	if len(cmd.Args) == 0 {
		return errors.New("ffmpeg: empty argument list")
	}

	runCtx := ctx
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	proc := exec.CommandContext(runCtx, c.binary, cmd.Args...)
	proc.Dir = cmd.Dir
	output, err := proc.CombinedOutput()
	if err == nil {
		return nil
	}

	diagnostic := strings.TrimSpace(string(output))
	if ctxErr := runCtx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("ffmpeg timed out after %s: %w: %s", cmd.Timeout, context.DeadlineExceeded, diagnostic)
	}
	return fmt.Errorf("ffmpeg exited with error: %w: %s", err, diagnostic)
}
