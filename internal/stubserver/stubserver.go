// Package stubserver is an in-process fake of the pybox execution service.
//
// It implements the full endpoint surface (sync/async submission, status,
// kill, eval, health) with realistic status codes and lifecycle timing, but
// it does not run any code: terminal results come from a pluggable RunFunc.
// It backs the client's tests and the `pybox stub` command for offline
// development.
package stubserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/rgrandy/pybox/pkg/pybox"
)

// Submission is one received execution request, kept for inspection.
type Submission struct {
	Metadata pybox.Metadata
	Files    map[string][]byte
}

// RunFunc produces the terminal portion of a result for a submission:
// status (one of the terminal values), stdout, stderr, exit code, and
// optionally the eval result. The server fills in IDs and timestamps.
type RunFunc func(sub Submission) pybox.ExecutionResult

// Config controls the simulated lifecycle of async executions.
type Config struct {
	// StartDelay is how long an execution reports pending before running.
	StartDelay time.Duration
	// RunDuration is how long it reports running before turning terminal.
	RunDuration time.Duration
	Logger      *slog.Logger
}

// Server is the fake service. Safe for concurrent use.
type Server struct {
	cfg    Config
	router chi.Router
	http   *http.Server
	logger *slog.Logger

	mu          sync.Mutex
	executions  map[string]*execution
	submissions []Submission
	killCalls   int
	runFunc     RunFunc
}

// execution tracks one async submission. Status is derived lazily from
// elapsed time so no background goroutines are needed.
type execution struct {
	id          string
	submittedAt time.Time
	terminal    pybox.ExecutionResult
	killedAt    *time.Time
}

// New creates a stub server. The default RunFunc reports every execution
// as completed with exit code 0 and empty output.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		cfg:        cfg,
		router:     chi.NewRouter(),
		logger:     cfg.Logger,
		executions: make(map[string]*execution),
		runFunc: func(Submission) pybox.ExecutionResult {
			return pybox.ExecutionResult{Status: pybox.StatusCompleted}
		},
	}
	s.setupRoutes()
	return s
}

// SetRunFunc replaces the result function. Tests use this to script output
// for a scenario.
func (s *Server) SetRunFunc(fn RunFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runFunc = fn
}

// Submissions returns every submission received so far, oldest first.
func (s *Server) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Submission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

// KillCalls reports how many DELETE requests the server has received.
func (s *Server) KillCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.killCalls
}

// Handler exposes the router, for mounting under httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/exec/sync", s.handleExecSync)
		r.Post("/exec/async", s.handleExecAsync)
		r.Get("/executions/{id}", s.handleGetExecution)
		r.Delete("/executions/{id}", s.handleKillExecution)
		r.Post("/eval", s.handleEval)
	})
}

// Start begins listening on the given port and blocks.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	s.logger.Info("stub executor listening", "addr", addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops a server started with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) record(sub Submission) (string, pybox.ExecutionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, sub)
	return "exe_" + uuid.NewString(), s.runFunc(sub)
}

// snapshot derives the externally visible result for an async execution.
// Callers must hold s.mu: kill requests mutate e concurrently.
func (s *Server) snapshot(e *execution, now time.Time) pybox.ExecutionResult {
	if e.killedAt != nil {
		result := e.terminal
		result.ExecutionID = e.id
		result.Status = pybox.StatusKilled
		result.FinishedAt = e.killedAt
		return result
	}

	elapsed := now.Sub(e.submittedAt)
	switch {
	case elapsed < s.cfg.StartDelay:
		return pybox.ExecutionResult{ExecutionID: e.id, Status: pybox.StatusPending}
	case elapsed < s.cfg.StartDelay+s.cfg.RunDuration:
		started := e.submittedAt.Add(s.cfg.StartDelay)
		return pybox.ExecutionResult{ExecutionID: e.id, Status: pybox.StatusRunning, StartedAt: &started}
	default:
		result := e.terminal
		result.ExecutionID = e.id
		started := e.submittedAt.Add(s.cfg.StartDelay)
		finished := started.Add(s.cfg.RunDuration)
		result.StartedAt = &started
		result.FinishedAt = &finished
		result.DurationMs = s.cfg.RunDuration.Milliseconds()
		return result
	}
}
