package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"reelsmith/internal/captions"
	"reelsmith/internal/fileutil"
	"reelsmith/internal/logging"
	"reelsmith/internal/media/ffmpeg"
	"reelsmith/internal/services"
	"reelsmith/internal/task"
)

// Run processes a submitted task to completion. The returned error is
// the terminal failure already recorded on the registry; callers only
// need it for logging.
func (p *Pipeline) Run(ctx context.Context, tsk task.Task) error {
	ctx = services.WithTaskID(ctx, tsk.ID)
	logger := p.logger.With(logging.String(logging.FieldTaskID, tsk.ID))

	workDir := filepath.Join(p.cfg.Paths.WorkDir, tsk.ID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return p.fail(ctx, logger, tsk.ID, workDir, services.Wrap(services.ErrTranscodeFailed, StageSynthesize, "workdir", "create working directory", err))
	}
	if err := p.registry.SetProcessing(tsk.ID, workDir, StageSynthesize); err != nil {
		_ = os.RemoveAll(workDir)
		return err
	}

	outputPath, err := p.process(ctx, logger, tsk, workDir)
	if err != nil {
		return p.fail(ctx, logger, tsk.ID, workDir, err)
	}

	if err := p.registry.SetCompleted(tsk.ID, outputPath); err != nil {
		logger.Error("record completion", logging.Error(err))
		return err
	}
	logger.Info("task completed",
		logging.String(logging.FieldEventType, "task_completed"),
		logging.String(logging.FieldArtifact, outputPath))

	if snapshot, ok := p.registry.Get(tsk.ID); ok {
		if err := p.notifier.NotifyTaskCompleted(ctx, &snapshot); err != nil {
			logger.Warn("completion callback failed", logging.Error(err))
		}
	}
	return nil
}

func (p *Pipeline) process(ctx context.Context, logger *slog.Logger, tsk task.Task, workDir string) (string, error) {
	voicePath := filepath.Join(workDir, "voice.mp3")
	narrationSeconds, err := p.synthesize(ctx, logger, tsk, voicePath)
	if err != nil {
		return "", err
	}

	clips, err := p.acquireAndNormalize(ctx, logger, tsk, workDir, narrationSeconds)
	if err != nil {
		return "", err
	}

	combinedPath := filepath.Join(workDir, "combined.mp4")
	if err := p.assemble(ctx, logger, tsk, workDir, clips, combinedPath); err != nil {
		return "", err
	}

	mergedPath := filepath.Join(workDir, "with_audio.mp4")
	if err := p.mux(ctx, logger, tsk, combinedPath, voicePath, mergedPath); err != nil {
		return "", err
	}
	removeArtifacts(logger, combinedPath, voicePath)

	finalPath, err := p.burnCaptions(ctx, logger, tsk, workDir, mergedPath, narrationSeconds)
	if err != nil {
		return "", err
	}

	return p.finalize(ctx, logger, tsk, workDir, finalPath)
}

// synthesize produces the narration audio and returns its duration.
func (p *Pipeline) synthesize(ctx context.Context, logger *slog.Logger, tsk task.Task, voicePath string) (float64, error) {
	p.progress(logger, tsk.ID, StageSynthesize)

	voiceID := tsk.Options.VoiceID
	if voiceID == "" {
		voiceID = p.cfg.ElevenLabs.VoiceID
	}
	if err := p.synth.Synthesize(ctx, tsk.ScriptText, voiceID, voicePath); err != nil {
		return 0, err
	}

	probe, err := p.prober.Probe(ctx, voicePath)
	if err != nil {
		return 0, services.Wrap(services.ErrTranscodeFailed, StageSynthesize, "probe", "inspect narration audio", err)
	}
	if probe.Duration <= 0 {
		return 0, services.Wrap(services.ErrTranscodeFailed, StageSynthesize, "probe", "narration audio has no duration", nil)
	}
	logger.Info("narration synthesized", logging.Float64("seconds", probe.Duration))
	return probe.Duration, nil
}

// acquireAndNormalize downloads stock clips and conforms each one to
// the output geometry. Individual clip failures are tolerated; the
// task fails only when fewer than two usable clips remain.
func (p *Pipeline) acquireAndNormalize(ctx context.Context, logger *slog.Logger, tsk task.Task, workDir string, narrationSeconds float64) ([]string, error) {
	p.progress(logger, tsk.ID, StageAcquire)

	count := p.clipCount(tsk.Options, narrationSeconds)
	found, err := p.footage.Search(ctx, tsk.SearchQuery, count)
	if err != nil {
		return nil, err
	}

	settings := p.encodeSettings(tsk.Options)
	var normalized []string
	for i, clip := range found {
		rawPath := filepath.Join(workDir, fmt.Sprintf("raw_%d.mp4", i))
		if err := p.footage.Download(ctx, clip, rawPath); err != nil {
			logger.Warn("clip download failed",
				logging.Int(logging.FieldClipIndex, i),
				logging.Error(err))
			continue
		}

		p.progress(logger, tsk.ID, StageNormalize)
		outPath := filepath.Join(workDir, fmt.Sprintf("clip_%d.mp4", i))
		cmd := ffmpeg.Command{
			Args:    ffmpeg.NormalizeArgs(rawPath, outPath, settings),
			Timeout: p.timeout(p.cfg.Video.NormalizeTimeout),
		}
		runErr := p.runner.Run(ctx, cmd)
		removeArtifacts(logger, rawPath)
		if runErr != nil {
			logger.Warn("clip normalization failed",
				logging.Int(logging.FieldClipIndex, i),
				logging.Error(runErr))
			removeArtifacts(logger, outPath)
			continue
		}
		normalized = append(normalized, outPath)
	}

	if len(normalized) < 2 {
		return nil, services.Wrap(services.ErrInsufficientFootage, StageNormalize, "gate",
			fmt.Sprintf("only %d of %d clips usable", len(normalized), len(found)), nil)
	}
	logger.Info("footage ready", logging.Int("clips", len(normalized)))
	return normalized, nil
}

// assemble concatenates the normalized clips. A stream copy is tried
// first; when it fails the clips are re-encoded together exactly once.
func (p *Pipeline) assemble(ctx context.Context, logger *slog.Logger, tsk task.Task, workDir string, clips []string, combinedPath string) error {
	p.progress(logger, tsk.ID, StageAssemble)

	listPath := filepath.Join(workDir, "concat.txt")
	if err := ffmpeg.WriteConcatList(listPath, clips); err != nil {
		return services.Wrap(services.ErrTranscodeFailed, StageAssemble, "concat list", "write concat list", err)
	}

	copyCmd := ffmpeg.Command{
		Args:    ffmpeg.ConcatCopyArgs(listPath, combinedPath),
		Timeout: p.timeout(p.cfg.Video.ConcatTimeout),
	}
	copyErr := p.runner.Run(ctx, copyCmd)
	if copyErr != nil {
		logger.Warn("stream-copy concat failed, re-encoding", logging.Error(copyErr))
		removeArtifacts(logger, combinedPath)

		encodeCmd := ffmpeg.Command{
			Args:    ffmpeg.ConcatEncodeArgs(listPath, combinedPath, p.encodeSettings(tsk.Options)),
			Timeout: p.timeout(p.cfg.Video.ConcatTimeout),
		}
		if err := p.runner.Run(ctx, encodeCmd); err != nil {
			return classifyRun(StageAssemble, "concat re-encode", err)
		}
	}

	removeArtifacts(logger, listPath)
	removeArtifacts(logger, clips...)
	return nil
}

// mux joins the assembled video with the narration, trimming to the
// shorter of the two streams.
func (p *Pipeline) mux(ctx context.Context, logger *slog.Logger, tsk task.Task, videoPath, audioPath, mergedPath string) error {
	p.progress(logger, tsk.ID, StageMux)

	cmd := ffmpeg.Command{
		Args:    ffmpeg.MuxArgs(videoPath, audioPath, mergedPath, p.encodeSettings(tsk.Options)),
		Timeout: p.timeout(p.cfg.Video.MuxTimeout),
	}
	if err := p.runner.Run(ctx, cmd); err != nil {
		return classifyRun(StageMux, "mux narration", err)
	}
	return nil
}

// burnCaptions renders timed captions onto the video when the task
// asked for them. Returns the path of the video to deliver.
func (p *Pipeline) burnCaptions(ctx context.Context, logger *slog.Logger, tsk task.Task, workDir, mergedPath string, narrationSeconds float64) (string, error) {
	if !tsk.Options.CaptionsEnabled {
		return mergedPath, nil
	}

	cues := captions.Generate(tsk.ScriptText, narrationSeconds, captions.TimingOptions{
		WordsPerCue: tsk.Options.WordsPerCue,
		Uppercase:   tsk.Options.Uppercase,
	})
	if len(cues) == 0 {
		return mergedPath, nil
	}

	p.progress(logger, tsk.ID, StageCaptions)
	srtPath := filepath.Join(workDir, "captions.srt")
	if err := captions.WriteSRT(srtPath, cues); err != nil {
		return "", services.Wrap(services.ErrTranscodeFailed, StageCaptions, "srt", "write subtitle file", err)
	}

	captionedPath := filepath.Join(workDir, "captioned.mp4")
	cmd := ffmpeg.Command{
		Args:    ffmpeg.BurnInArgs(mergedPath, srtPath, captionedPath, p.captionStyle(tsk.Options)),
		Timeout: p.timeout(p.cfg.Video.BurnInTimeout),
	}
	if err := p.runner.Run(ctx, cmd); err != nil {
		return "", classifyRun(StageCaptions, "burn in", err)
	}

	removeArtifacts(logger, mergedPath, srtPath)
	return captionedPath, nil
}

// finalize moves the finished video into the output directory and
// clears the working directory.
func (p *Pipeline) finalize(ctx context.Context, logger *slog.Logger, tsk task.Task, workDir, finalPath string) (string, error) {
	p.progress(logger, tsk.ID, StageFinalize)

	if err := os.MkdirAll(p.cfg.Paths.OutputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrTranscodeFailed, StageFinalize, "output dir", "create output directory", err)
	}
	outputPath := filepath.Join(p.cfg.Paths.OutputDir, tsk.ID+".mp4")
	if err := fileutil.MoveFile(finalPath, outputPath); err != nil {
		return "", services.Wrap(services.ErrTranscodeFailed, StageFinalize, "deliver", "move final video", err)
	}
	if err := os.RemoveAll(workDir); err != nil {
		logger.Warn("remove working directory", logging.Error(err))
	}
	return outputPath, nil
}

func (p *Pipeline) fail(ctx context.Context, logger *slog.Logger, taskID, workDir string, failure error) error {
	kind := services.Kind(failure)
	logger.Error("task failed",
		logging.String(logging.FieldEventType, "task_failed"),
		logging.String(logging.FieldErrorHint, kind),
		logging.Error(failure))

	if err := p.registry.SetFailed(taskID, kind, failure.Error()); err != nil {
		logger.Error("record failure", logging.Error(err))
	}
	if err := os.RemoveAll(workDir); err != nil {
		logger.Warn("remove working directory", logging.Error(err))
	}
	if snapshot, ok := p.registry.Get(taskID); ok {
		if err := p.notifier.NotifyTaskFailed(ctx, &snapshot); err != nil {
			logger.Warn("failure callback failed", logging.Error(err))
		}
	}
	return failure
}

func (p *Pipeline) progress(logger *slog.Logger, taskID, stage string) {
	if err := p.registry.SetProgress(taskID, stage); err != nil {
		logger.Warn("record progress", logging.String(logging.FieldStage, stage), logging.Error(err))
		return
	}
	logger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String(logging.FieldStage, stage))
}

// clipCount sizes the footage request from the narration length: one
// clip per started ten seconds plus one, clamped to the task's bounds.
func (p *Pipeline) clipCount(opts task.Options, narrationSeconds float64) int {
	minClips := opts.MinClips
	if minClips <= 0 {
		minClips = p.cfg.Video.MinClips
	}
	maxClips := opts.MaxClips
	if maxClips <= 0 {
		maxClips = p.cfg.Video.MaxClips
	}

	count := int(narrationSeconds/10) + 1
	if count < minClips {
		count = minClips
	}
	if count > maxClips {
		count = maxClips
	}
	return count
}

func (p *Pipeline) encodeSettings(opts task.Options) ffmpeg.EncodeSettings {
	width := opts.Width
	if width <= 0 {
		width = p.cfg.Video.Width
	}
	height := opts.Height
	if height <= 0 {
		height = p.cfg.Video.Height
	}
	return ffmpeg.EncodeSettings{
		Width:        width,
		Height:       height,
		Preset:       p.cfg.Video.Preset,
		CRF:          p.cfg.Video.CRF,
		AudioBitrate: p.cfg.Video.AudioBitrate,
	}
}

func (p *Pipeline) captionStyle(opts task.Options) ffmpeg.CaptionStyle {
	style := ffmpeg.CaptionStyle{
		FontName: opts.FontName,
		FontSize: opts.FontSize,
		MarginV:  opts.MarginV,
	}
	if style.FontName == "" {
		style.FontName = p.cfg.Captions.FontName
	}
	if style.FontSize <= 0 {
		style.FontSize = p.cfg.Captions.FontSize
	}
	if style.MarginV <= 0 {
		style.MarginV = p.cfg.Captions.MarginV
	}
	return style
}

// classifyRun maps transcoder failures onto the service error markers.
// A deadline overrun is a timeout; everything else is a transcode
// failure carrying the engine's diagnostic output.
func classifyRun(stage, operation string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrInternalTimeout, stage, operation, "transcode deadline exceeded", err)
	}
	return services.Wrap(services.ErrTranscodeFailed, stage, operation, "transcode failed", err)
}

func removeArtifacts(logger *slog.Logger, paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("remove artifact", logging.String(logging.FieldArtifact, path), logging.Error(err))
		}
	}
}
