package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"reelsmith/internal/api"
	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/services"
	"reelsmith/internal/task"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, errors.New("api server requires config and daemon")
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is required")
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux.HandleFunc("/api/tasks", srv.handleTasks)
	mux.HandleFunc("/api/tasks/", srv.handleTask)
	mux.HandleFunc("/api/status", srv.handleStatus)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the listener address, useful when binding to port 0.
func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleSubmit(w, r)
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, api.TaskListResponse{Tasks: api.FromTasks(s.daemon.registry.List())})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
	}
}

func (s *apiServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req api.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "", "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.ScriptText) == "" {
		s.writeError(w, http.StatusBadRequest, "", "scriptText is required")
		return
	}

	tsk, err := s.daemon.Submit(req.ScriptText, req.SearchQuery, s.taskOptions(req))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCapacityExceeded):
			s.writeError(w, http.StatusServiceUnavailable, services.Kind(err), "all task slots are busy, retry later")
		case errors.Is(err, task.ErrShutdown):
			s.writeError(w, http.StatusServiceUnavailable, "", "daemon is shutting down")
		default:
			s.writeError(w, http.StatusInternalServerError, services.Kind(err), err.Error())
		}
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.SubmitResponse{Task: api.FromTask(tsk)})
}

// taskOptions snapshots daemon configuration into the task, applying
// per-request overrides.
func (s *apiServer) taskOptions(req api.SubmitRequest) task.Options {
	cfg := s.daemon.cfg
	opts := task.Options{
		VoiceID:         strings.TrimSpace(req.VoiceID),
		CallbackURL:     strings.TrimSpace(req.CallbackURL),
		CaptionsEnabled: cfg.Captions.Enabled,
		WordsPerCue:     cfg.Captions.WordsPerCue,
		Uppercase:       cfg.Captions.Uppercase,
		FontName:        cfg.Captions.FontName,
		FontSize:        cfg.Captions.FontSize,
		MarginV:         cfg.Captions.MarginV,
		Width:           cfg.Video.Width,
		Height:          cfg.Video.Height,
		MinClips:        cfg.Video.MinClips,
		MaxClips:        cfg.Video.MaxClips,
	}
	if req.Captions != nil {
		opts.CaptionsEnabled = *req.Captions
	}
	if req.WordsPerCue > 0 {
		opts.WordsPerCue = req.WordsPerCue
	}
	return opts
}

func (s *apiServer) handleTask(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, http.StatusNotFound, "", "task not found")
		return
	}

	switch {
	case action == "download" && r.Method == http.MethodGet:
		s.handleDownload(w, r, id)
	case action != "":
		s.writeError(w, http.StatusNotFound, "", "task not found")
	case r.Method == http.MethodGet:
		tsk, ok := s.daemon.registry.Get(id)
		if !ok {
			s.writeError(w, http.StatusNotFound, "", "task not found")
			return
		}
		s.writeJSON(w, http.StatusOK, api.TaskResponse{Task: api.FromTask(tsk)})
	case r.Method == http.MethodDelete:
		tsk, err := s.daemon.RemoveTask(id)
		switch {
		case errors.Is(err, task.ErrNotFound):
			s.writeError(w, http.StatusNotFound, "", "task not found")
		case errors.Is(err, task.ErrStillActive):
			s.writeError(w, http.StatusConflict, "", "task is still active")
		case err != nil:
			s.writeError(w, http.StatusInternalServerError, "", err.Error())
		default:
			s.writeJSON(w, http.StatusOK, api.TaskResponse{Task: api.FromTask(tsk)})
		}
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
	}
}

func (s *apiServer) handleDownload(w http.ResponseWriter, r *http.Request, id string) {
	tsk, ok := s.daemon.registry.Get(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "", "task not found")
		return
	}
	if tsk.Status != task.StatusCompleted || tsk.OutputPath == "" {
		s.writeError(w, http.StatusConflict, "", "task has no downloadable output")
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tsk.ID+".mp4"))
	http.ServeFile(w, r, tsk.OutputPath)
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "", "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:     status.Running,
		PID:         status.PID,
		ActiveTasks: status.ActiveTasks,
		MaxTasks:    status.MaxTasks,
		TaskCounts:  api.CountByStatus(status.Tasks),
		OutputDir:   status.OutputDir,
	})
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, kind, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Kind: kind, Message: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
