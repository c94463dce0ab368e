// Package api exposes the control surface for the sync service: trigger
// a run, inspect its progress, fetch the latest report.
package api

import (
	"context"
	"net/http"
	stdsync "sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/catalog-sync/internal/pkg/httputil"
	"github.com/ignite/catalog-sync/internal/pkg/logger"
	"github.com/ignite/catalog-sync/internal/sync"
)

// Runner executes one sync pass. cmd/server wires the controller (plus
// run lock, history and upload) behind this.
type Runner func(ctx context.Context) (*sync.RunReport, error)

// Server handles the control API. One run at a time: a trigger while a
// run is active is rejected with 409.
type Server struct {
	runner Runner

	mu      stdsync.Mutex
	running bool
	done    chan struct{}
	last    *sync.RunReport
	lastErr string
}

// NewServer creates the control API around a runner.
func NewServer(runner Runner) *Server {
	return &Server{runner: runner}
}

// Router builds the chi router with all control endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api/sync", func(r chi.Router) {
		r.Post("/run", s.handleRun)
		r.Get("/status", s.handleStatus)
		r.Get("/report/latest", s.handleLatestReport)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "ok"})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		httputil.Conflict(w, "a sync run is already in progress")
		return
	}
	s.running = true
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		// detached from the request: a sync pass outlives any sane
		// HTTP timeout
		report, err := s.runner(context.Background())

		s.mu.Lock()
		s.running = false
		s.last = report
		if err != nil {
			s.lastErr = err.Error()
		} else {
			s.lastErr = ""
		}
		s.mu.Unlock()

		if err != nil {
			logger.Error("triggered run failed", "error", err.Error())
		}
	}()

	httputil.Accepted(w, map[string]string{"status": "started"})
}

type statusResponse struct {
	Running bool            `json:"running"`
	LastRun *sync.RunReport `json:"last_run,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := statusResponse{Running: s.running, LastRun: s.last, Error: s.lastErr}
	s.mu.Unlock()
	httputil.OK(w, resp)
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last == nil {
		httputil.NotFound(w, "no run has completed yet")
		return
	}
	httputil.OK(w, last)
}
