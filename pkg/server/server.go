// Package server exposes the declutter pipeline as an HTTP JSON API.
//
// # Routes
//
//	POST /v1/reposition   resolve overlaps, returns entities and stats
//	POST /v1/preview      resolve and render a before/after preview
//	POST /v1/check        list overlapping pairs without moving anything
//	GET  /v1/results/{key} fetch a cached result by key
//	GET  /healthz         liveness probe
//
// Request and response bodies use the same entity records as the JSON file
// format in [github.com/matzehuels/declutter/pkg/io]. Errors are returned as
//
//	{"code": "INVALID_BOUNDS", "message": "entity 2 (\"b\"): min x exceeds max x"}
//
// with the HTTP status derived from the code.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/declutter/pkg/pipeline"
)

// Defaults for server limits.
const (
	DefaultMaxBodyBytes = 8 << 20
	DefaultMaxBudget    = 10 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// Server serves the HTTP API on top of a pipeline runner.
type Server struct {
	runner       *pipeline.Runner
	logger       *log.Logger
	maxBodyBytes int64
	maxBudget    time.Duration
	router       chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes limits request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithMaxBudget caps the solver budget a client may ask for.
func WithMaxBudget(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.maxBudget = d
		}
	}
}

// New creates a server. A nil logger discards output.
func New(runner *pipeline.Runner, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{
		runner:       runner,
		logger:       logger,
		maxBodyBytes: DefaultMaxBodyBytes,
		maxBudget:    DefaultMaxBudget,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/reposition", s.handleReposition)
		r.Post("/preview", s.handlePreview)
		r.Post("/check", s.handleCheck)
		r.Get("/results/{key}", s.handleResult)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
