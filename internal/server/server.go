// Package server exposes layouts and live viewer sessions over HTTP.
//
// Routes:
//
//	GET    /healthz
//	POST   /layouts                 manifest + options -> layout document
//	POST   /layouts/render          manifest + options -> SVG, PNG or DOT
//	POST   /sessions                manifest -> new session snapshot
//	GET    /sessions/{id}           session snapshot
//	POST   /sessions/{id}/events    sim.Action -> session snapshot
//	DELETE /sessions/{id}
//
// Errors are JSON objects with the error code and a user-facing message.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/folio/pkg/pipeline"
	"github.com/matzehuels/folio/pkg/session"
)

const (
	// DefaultCleanupInterval is how often expired sessions are swept.
	DefaultCleanupInterval = time.Minute

	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 8 << 20
)

// Options configures a Server.
type Options struct {
	// Runner computes layouts. Nil means an uncached runner.
	Runner *pipeline.Runner

	// Store holds sessions. Nil means a new MemoryStore.
	Store session.Store

	// SessionTTL is the idle lifetime of a session. Zero means
	// session.DefaultTTL.
	SessionTTL time.Duration

	// CleanupInterval is the sweep period used by Run.
	CleanupInterval time.Duration

	Logger *log.Logger
}

// Server serves the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	store    session.Store
	ttl      time.Duration
	interval time.Duration
	logger   *log.Logger
	router   chi.Router
}

// New creates a server and builds its routes.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(nil, nil, opts.Logger)
	}
	if opts.Store == nil {
		opts.Store = session.NewMemoryStore()
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = session.DefaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = DefaultCleanupInterval
	}
	s := &Server{
		runner:   opts.Runner,
		store:    opts.Store,
		ttl:      opts.SessionTTL,
		interval: opts.CleanupInterval,
		logger:   opts.Logger,
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/layouts", func(r chi.Router) {
		r.Post("/", s.handleLayout)
		r.Post("/render", s.handleRender)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/events", s.handleSessionEvent)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "NOT_FOUND", Message: "no such route"})
	})
	return r
}

// Run serves on addr until ctx is cancelled, sweeping expired sessions in
// the background, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.sweep(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	err := srv.Shutdown(shutdownCtx)
	if ms, ok := s.store.(*session.MemoryStore); ok {
		ms.CloseAll()
	}
	return err
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.Cleanup(ctx)
			if err != nil {
				s.logger.Warn("session cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
