// Package api exposes the task runner over HTTP: a trigger endpoint that
// resolves and runs a job, and a read-only job listing. Runs are serialized
// because the engine executes one job at a time and the config document is
// reloaded per run.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/L3viathan/crun/internal/log"
)

// Runner executes one resolved label and classifies the outcome. The CLI
// layer supplies an implementation that reloads the config document, builds
// a fresh job context and runs it.
type Runner interface {
	RunJob(ctx context.Context, req RunRequest) RunResult
	ListJobs() ([]JobInfo, error)
}

// Config holds server configuration.
type Config struct {
	Listen string
}

// Server is the HTTP trigger server.
type Server struct {
	config    Config
	runner    Runner
	logger    *slog.Logger
	server    *http.Server
	startedAt time.Time

	// one job at a time, matching the engine's execution model
	runMu sync.Mutex
}

// New creates a server around a Runner.
func New(config Config, runner Runner) *Server {
	return &Server{
		config:    config,
		runner:    runner,
		logger:    log.WithComponent("api"),
		startedAt: time.Now(),
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute, // jobs run synchronously inside the request
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("trigger server starting", "listen", s.config.Listen)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("trigger server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/jobs", s.handleListJobs)
	r.Post("/jobs/{label}", s.handleRunJob)
	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
