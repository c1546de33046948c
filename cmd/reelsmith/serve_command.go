package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reelsmith/internal/daemon"
	"reelsmith/internal/deps"
	"reelsmith/internal/logging"
	"reelsmith/internal/media/ffmpeg"
	"reelsmith/internal/media/ffprobe"
	"reelsmith/internal/notify"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/providers/elevenlabs"
	"reelsmith/internal/providers/pexels"
	"reelsmith/internal/task"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the video generation daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				for _, status := range missing {
					logger.Error("required dependency unavailable",
						logging.String("dependency", status.Name),
						logging.String("detail", status.Detail))
				}
				return fmt.Errorf("missing required dependencies: install ffmpeg and ffprobe or set video.ffmpeg_binary")
			}

			registry := task.NewRegistry(cfg.Workflow.MaxConcurrentTasks)
			pipe := pipeline.New(pipeline.Options{
				Config:   cfg,
				Registry: registry,
				Synth:    elevenlabs.New(cfg.ElevenLabs),
				Footage:  pexels.New(cfg.Pexels),
				Runner:   ffmpeg.NewCLI(cfg.Video.FFmpegBinary),
				Prober:   ffprobe.NewCLI(cfg.Video.FFprobeBinary),
				Notifier: notify.NewService(cfg),
				Logger:   logger,
			})

			d, err := daemon.New(cfg, registry, pipe, logger)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := d.Start(signalCtx); err != nil {
				return err
			}
			<-signalCtx.Done()
			d.Stop()
			return nil
		},
	}
}
