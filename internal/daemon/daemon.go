package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/task"
)

// Daemon coordinates the task registry, pipeline workers, and the HTTP
// API, and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *task.Registry
	pipeline *pipeline.Pipeline

	lockPath string
	lock     *flock.Flock
	api      *apiServer

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	ActiveTasks  int
	MaxTasks     int
	Tasks        []task.Task
	LockFilePath string
	OutputDir    string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, registry *task.Registry, pipe *pipeline.Pipeline, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || registry == nil || pipe == nil {
		return nil, errors.New("daemon requires config, registry, and pipeline")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "reelsmith.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		registry: registry,
		pipeline: pipe,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	server, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = server
	return d, nil
}

// Start acquires the daemon lock and launches the API server and the
// retention sweeper.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another reelsmith daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}

	d.wg.Add(1)
	go d.sweepLoop(d.ctx)

	d.running.Store(true)
	d.logger.Info("reelsmith daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop cancels in-flight work, waits for worker goroutines to exit,
// stops the API server, and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	d.api.stop()
	d.registry.Shutdown()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("reelsmith daemon stopped")
}

// Submit gates a new task through the registry and, when accepted,
// hands it to a pipeline goroutine.
func (d *Daemon) Submit(scriptText, searchQuery string, opts task.Options) (task.Task, error) {
	tsk, err := d.registry.Submit(scriptText, searchQuery, opts)
	if err != nil {
		return task.Task{}, err
	}

	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.pipeline.Run(ctx, tsk); err != nil {
			d.logger.Warn("task ended in failure",
				logging.String(logging.FieldTaskID, tsk.ID),
				logging.Error(err))
		}
	}()

	d.logger.Info("task accepted",
		logging.String(logging.FieldTaskID, tsk.ID),
		logging.String("query", tsk.SearchQuery))
	return tsk, nil
}

// RemoveTask deletes a terminal task from the registry.
func (d *Daemon) RemoveTask(id string) (task.Task, error) {
	return d.registry.Remove(id)
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		ActiveTasks:  d.registry.ActiveCount(),
		MaxTasks:     d.cfg.Workflow.MaxConcurrentTasks,
		Tasks:        d.registry.List(),
		LockFilePath: d.lockPath,
		OutputDir:    d.cfg.Paths.OutputDir,
	}
}

// sweepLoop evicts expired terminal tasks on a fixed interval.
func (d *Daemon) sweepLoop(ctx context.Context) {
	defer d.wg.Done()

	interval := time.Duration(d.cfg.Workflow.SweepIntervalMins) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	retention := time.Duration(d.cfg.Workflow.TaskRetentionHours) * time.Hour

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, expired := range d.registry.SweepExpired(retention) {
				d.logger.Info("expired task evicted",
					logging.String(logging.FieldTaskID, expired.ID),
					logging.String("status", string(expired.Status)))
				if expired.OutputPath != "" {
					if err := os.Remove(expired.OutputPath); err != nil && !os.IsNotExist(err) {
						d.logger.Warn("remove expired output",
							logging.String(logging.FieldArtifact, expired.OutputPath),
							logging.Error(err))
					}
				}
			}
		}
	}
}
