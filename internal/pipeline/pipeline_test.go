package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/media/ffmpeg"
	"reelsmith/internal/media/ffprobe"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/providers/pexels"
	"reelsmith/internal/services"
	"reelsmith/internal/task"
)

type fakeSynth struct {
	err error
}

func (f *fakeSynth) Synthesize(_ context.Context, text, voiceID, dest string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, []byte("audio"), 0o644)
}

type fakeProber struct {
	duration float64
}

func (f *fakeProber) Probe(context.Context, string) (ffprobe.Result, error) {
	return ffprobe.Result{Duration: f.duration, HasAudio: true}, nil
}

type fakeFootage struct {
	clips        []pexels.Clip
	searchErr    error
	failDownload map[int]bool
	requested    int
	downloads    int
}

func (f *fakeFootage) Search(_ context.Context, _ string, count int) ([]pexels.Clip, error) {
	f.requested = count
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if count < len(f.clips) {
		return f.clips[:count], nil
	}
	return f.clips, nil
}

func (f *fakeFootage) Download(_ context.Context, clip pexels.Clip, dest string) error {
	f.downloads++
	if f.failDownload[clip.ID] {
		return services.Wrap(services.ErrProviderUnavailable, "acquire", "download", "simulated outage", nil)
	}
	return os.WriteFile(dest, []byte("raw"), 0o644)
}

// fakeRunner creates each command's output file and records which kind
// of invocation it saw, keyed on distinctive arguments.
type fakeRunner struct {
	mu       sync.Mutex
	commands []ffmpeg.Command
	fail     map[string]int // command kind -> remaining failures
}

func (f *fakeRunner) Run(_ context.Context, cmd ffmpeg.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)

	kind := commandKind(cmd.Args)
	if f.fail[kind] > 0 {
		f.fail[kind]--
		return fmt.Errorf("%s rejected", kind)
	}
	output := cmd.Args[len(cmd.Args)-1]
	return os.WriteFile(output, []byte(kind), 0o644)
}

func (f *fakeRunner) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	for i, cmd := range f.commands {
		out[i] = commandKind(cmd.Args)
	}
	return out
}

func commandKind(args []string) string {
	joined := strings.Join(args, " ")
	switch {
	case strings.Contains(joined, "subtitles="):
		return "burnin"
	case strings.Contains(joined, "-shortest"):
		return "mux"
	case strings.Contains(joined, "-f concat") && strings.Contains(joined, "-c copy"):
		return "concat_copy"
	case strings.Contains(joined, "-f concat"):
		return "concat_encode"
	case strings.Contains(joined, "force_original_aspect_ratio"):
		return "normalize"
	default:
		return "unknown"
	}
}

type fakeNotifier struct {
	mu        sync.Mutex
	completed []string
	failed    []string
}

func (f *fakeNotifier) NotifyTaskCompleted(_ context.Context, tsk *task.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, tsk.ID)
	return nil
}

func (f *fakeNotifier) NotifyTaskFailed(_ context.Context, tsk *task.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, tsk.ID)
	return nil
}

type harness struct {
	cfg      *config.Config
	registry *task.Registry
	footage  *fakeFootage
	runner   *fakeRunner
	notifier *fakeNotifier
	pipeline *pipeline.Pipeline
}

func newHarness(t *testing.T, narrationSeconds float64, clips int) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(t.TempDir(), "work")
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "out")

	footage := &fakeFootage{failDownload: map[int]bool{}}
	for i := 0; i < clips; i++ {
		footage.clips = append(footage.clips, pexels.Clip{ID: i + 1, URL: fmt.Sprintf("https://cdn.example/%d.mp4", i+1)})
	}

	h := &harness{
		cfg:      &cfg,
		registry: task.NewRegistry(2),
		footage:  footage,
		runner:   &fakeRunner{fail: map[string]int{}},
		notifier: &fakeNotifier{},
	}
	h.pipeline = pipeline.New(pipeline.Options{
		Config:   h.cfg,
		Registry: h.registry,
		Synth:    &fakeSynth{},
		Footage:  h.footage,
		Runner:   h.runner,
		Prober:   &fakeProber{duration: narrationSeconds},
		Notifier: h.notifier,
	})
	return h
}

func (h *harness) submit(t *testing.T, opts task.Options) task.Task {
	t.Helper()
	tsk, err := h.registry.Submit("The quick brown fox jumps over the lazy dog.", "nature", opts)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return tsk
}

func TestRunProducesFinalVideo(t *testing.T) {
	h := newHarness(t, 25, 3)
	tsk := h.submit(t, task.Options{})

	if err := h.pipeline.Run(context.Background(), tsk); err != nil {
		t.Fatalf("run: %v", err)
	}

	got, ok := h.registry.Get(tsk.ID)
	if !ok || got.Status != task.StatusCompleted {
		t.Fatalf("expected completed, got %+v ok=%v", got, ok)
	}
	if _, err := os.Stat(got.OutputPath); err != nil {
		t.Fatalf("final video missing: %v", err)
	}
	if got.OutputPath != filepath.Join(h.cfg.Paths.OutputDir, tsk.ID+".mp4") {
		t.Fatalf("unexpected output path %q", got.OutputPath)
	}
	if _, err := os.Stat(filepath.Join(h.cfg.Paths.WorkDir, tsk.ID)); !os.IsNotExist(err) {
		t.Fatalf("working directory should be removed, stat err=%v", err)
	}
	if len(h.notifier.completed) != 1 || h.notifier.completed[0] != tsk.ID {
		t.Fatalf("completion callback not delivered: %v", h.notifier.completed)
	}

	kinds := h.runner.kinds()
	want := []string{"normalize", "normalize", "normalize", "concat_copy", "mux"}
	if len(kinds) != len(want) {
		t.Fatalf("command sequence %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("command %d = %q, want %q (full: %v)", i, kinds[i], want[i], kinds)
		}
	}
}

func TestRunFallsBackToReencodeOnce(t *testing.T) {
	h := newHarness(t, 15, 2)
	h.runner.fail["concat_copy"] = 1
	tsk := h.submit(t, task.Options{})

	if err := h.pipeline.Run(context.Background(), tsk); err != nil {
		t.Fatalf("run: %v", err)
	}

	var copies, encodes int
	for _, kind := range h.runner.kinds() {
		switch kind {
		case "concat_copy":
			copies++
		case "concat_encode":
			encodes++
		}
	}
	if copies != 1 || encodes != 1 {
		t.Fatalf("expected one copy attempt and one re-encode, got copy=%d encode=%d", copies, encodes)
	}
}

func TestRunFailsWhenFewerThanTwoClipsSurvive(t *testing.T) {
	h := newHarness(t, 30, 3)
	h.footage.failDownload[1] = true
	h.footage.failDownload[2] = true
	tsk := h.submit(t, task.Options{})

	err := h.pipeline.Run(context.Background(), tsk)
	if !errors.Is(err, services.ErrInsufficientFootage) {
		t.Fatalf("expected insufficient footage, got %v", err)
	}

	got, _ := h.registry.Get(tsk.ID)
	if got.Status != task.StatusFailed || got.ErrorKind != "insufficient_footage" {
		t.Fatalf("task record wrong: status=%s kind=%s", got.Status, got.ErrorKind)
	}
	if _, statErr := os.Stat(filepath.Join(h.cfg.Paths.WorkDir, tsk.ID)); !os.IsNotExist(statErr) {
		t.Fatalf("working directory should be removed after failure")
	}
	if len(h.notifier.failed) != 1 {
		t.Fatalf("failure callback not delivered: %v", h.notifier.failed)
	}
}

func TestRunBurnsCaptionsWhenEnabled(t *testing.T) {
	h := newHarness(t, 12, 2)
	tsk := h.submit(t, task.Options{CaptionsEnabled: true, WordsPerCue: 3, Uppercase: true})

	if err := h.pipeline.Run(context.Background(), tsk); err != nil {
		t.Fatalf("run: %v", err)
	}

	kinds := h.runner.kinds()
	if kinds[len(kinds)-1] != "burnin" {
		t.Fatalf("expected burn-in as final command, got %v", kinds)
	}
	got, _ := h.registry.Get(tsk.ID)
	if _, err := os.Stat(got.OutputPath); err != nil {
		t.Fatalf("captioned video missing: %v", err)
	}
}

func TestRunPropagatesProviderFailure(t *testing.T) {
	h := newHarness(t, 20, 2)
	h.footage.searchErr = services.Wrap(services.ErrProviderQuota, "acquire", "search", "rate limited", nil)
	tsk := h.submit(t, task.Options{})

	err := h.pipeline.Run(context.Background(), tsk)
	if !errors.Is(err, services.ErrProviderQuota) {
		t.Fatalf("expected quota error, got %v", err)
	}
	got, _ := h.registry.Get(tsk.ID)
	if got.ErrorKind != "provider_quota" {
		t.Fatalf("error kind %q", got.ErrorKind)
	}
}

func TestClipCountScalesWithNarration(t *testing.T) {
	// 25 seconds of narration wants int(25/10)+1 = 3 clips.
	h := newHarness(t, 25, 5)
	tsk := h.submit(t, task.Options{})

	if err := h.pipeline.Run(context.Background(), tsk); err != nil {
		t.Fatalf("run: %v", err)
	}
	if h.footage.requested != 3 {
		t.Fatalf("expected 3 clips requested, got %d", h.footage.requested)
	}
}

func TestClipCountClampsToBounds(t *testing.T) {
	// Long narration is capped at the maximum clip count.
	h := newHarness(t, 300, 5)
	tsk := h.submit(t, task.Options{})

	if err := h.pipeline.Run(context.Background(), tsk); err != nil {
		t.Fatalf("run: %v", err)
	}
	if h.footage.requested != h.cfg.Video.MaxClips {
		t.Fatalf("expected request clamped to %d, got %d", h.cfg.Video.MaxClips, h.footage.requested)
	}
}
