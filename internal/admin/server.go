// Package admin contains the HTTP API for operating the import jobs.
package admin

import (
	"context"
	"net/http"
	"time"

	"cardbase/internal/admin/handlers"
	"cardbase/internal/admin/middleware"
	"cardbase/internal/runner"
)

// Options configures the admin server.
type Options struct {
	Addr           string
	Token          string       // bearer token; empty disables auth
	RateLimit      float64      // requests per second; 0 means unlimited
	RateLimitBurst int          //
	Metrics        http.Handler // optional /metrics handler
}

// Server is the HTTP server for the admin API.
type Server struct {
	httpServer *http.Server
}

// New creates a new admin server.
func New(opts Options, s handlers.Store, registry *runner.Registry, r handlers.JobRunner) *Server {
	h := handlers.New(s, registry, r)
	authMW := middleware.Auth(opts.Token)
	rateMW := middleware.RateLimit(opts.RateLimit, opts.RateLimitBurst)

	protected := func(hf http.HandlerFunc) http.Handler {
		return rateMW(authMW(hf))
	}

	mux := http.NewServeMux()

	mux.Handle("GET /jobs", protected(h.ListJobs))
	mux.Handle("POST /jobs/{name}/run", protected(h.TriggerRun))
	mux.Handle("GET /runs", protected(h.ListRuns))
	mux.Handle("GET /runs/{id}", protected(h.GetRun))
	mux.Handle("GET /runs/{id}/logs", protected(h.GetRunLogs))

	// Probes and metrics are unauthenticated.
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         opts.Addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}
}

// Handler exposes the request mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
