package pipeline

import (
	"context"
	"log/slog"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/media/ffmpeg"
	"reelsmith/internal/media/ffprobe"
	"reelsmith/internal/notify"
	"reelsmith/internal/providers/pexels"
	"reelsmith/internal/task"
)

// Stage labels recorded on the task as progress markers.
const (
	StageSynthesize = "synthesize"
	StageAcquire    = "acquire"
	StageNormalize  = "normalize"
	StageAssemble   = "assemble"
	StageMux        = "mux"
	StageCaptions   = "captions"
	StageFinalize   = "finalize"
)

// Synthesizer produces a narration audio file from script text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID, dest string) error
}

// FootageSource finds and downloads stock clips for a search query.
type FootageSource interface {
	Search(ctx context.Context, query string, count int) ([]pexels.Clip, error)
	Download(ctx context.Context, clip pexels.Clip, dest string) error
}

// Pipeline assembles videos for tasks held in the registry.
type Pipeline struct {
	cfg      *config.Config
	registry *task.Registry
	synth    Synthesizer
	footage  FootageSource
	runner   ffmpeg.Runner
	prober   ffprobe.Prober
	notifier notify.Service
	logger   *slog.Logger
}

// Options carries the pipeline's collaborators.
type Options struct {
	Config   *config.Config
	Registry *task.Registry
	Synth    Synthesizer
	Footage  FootageSource
	Runner   ffmpeg.Runner
	Prober   ffprobe.Prober
	Notifier notify.Service
	Logger   *slog.Logger
}

// New builds a pipeline. Missing optional collaborators fall back to
// noop implementations so tooling can run a reduced pipeline.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notify.NoopService{}
	}
	return &Pipeline{
		cfg:      opts.Config,
		registry: opts.Registry,
		synth:    opts.Synth,
		footage:  opts.Footage,
		runner:   opts.Runner,
		prober:   opts.Prober,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
}

func (p *Pipeline) timeout(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
