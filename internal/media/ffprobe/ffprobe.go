package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Result is the parsed outcome of one ffprobe inspection.
type Result struct {
	Duration   float64
	Width      int
	Height     int
	HasVideo   bool
	HasAudio   bool
	FormatName string
	SizeBytes  int64
}

type probePayload struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
		Name     string `json:"format_name"`
	} `json:"format"`
}

// Prober inspects media files. Declared as an interface so pipeline tests can
// substitute a canned implementation.
type Prober interface {
	Probe(ctx context.Context, path string) (Result, error)
}

// CLI runs the ffprobe binary.
type CLI struct {
	binary string
}

// NewCLI constructs a prober for the given binary name ("ffprobe" when empty).
func NewCLI(binary string) *CLI {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &CLI{binary: binary}
}

var _ Prober = (*CLI)(nil)

// Probe executes ffprobe against path and decodes the JSON response.
func (c *CLI) Probe(ctx context.Context, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, c.binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(output)))
	}
	return parse(output)
}

func parse(output []byte) (Result, error) {
	var payload probePayload
	if err := json.Unmarshal(output, &payload); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	result := Result{
		Duration:   parseFloat(payload.Format.Duration),
		SizeBytes:  int64(parseFloat(payload.Format.Size)),
		FormatName: payload.Format.Name,
	}
	for _, stream := range payload.Streams {
		switch strings.ToLower(stream.CodecType) {
		case "video":
			result.HasVideo = true
			if result.Width == 0 {
				result.Width = stream.Width
				result.Height = stream.Height
			}
		case "audio":
			result.HasAudio = true
		}
	}
	return result, nil
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}
