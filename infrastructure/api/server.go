// Package api serves the dagforge HTTP API.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// GeneratePath is the generation batch route. It is the one API route that
// is never cut off by the request deadline.
const GeneratePath = "/api/v1/artifacts/generate"

// DefaultRequestTimeout bounds every other /api/v1 request, including
// mapping creation against slow source catalogs.
const DefaultRequestTimeout = 120 * time.Second

const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	idleTimeout       = 120 * time.Second
)

// Timeouts bounds request handling.
//
// Request applies per handler to /api/v1 routes other than GeneratePath;
// zero disables it. The server sets no WriteTimeout: a generation batch
// holds its response until every item has been written and recorded.
type Timeouts struct {
	Request time.Duration
}

// DefaultTimeouts returns the timeouts used when none are configured.
func DefaultTimeouts() Timeouts {
	return Timeouts{Request: DefaultRequestTimeout}
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithTimeouts sets the server timeouts.
func WithTimeouts(t Timeouts) ServerOption {
	return func(s *Server) { s.timeouts = t }
}

// Server represents the HTTP API server.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	addr       string
	timeouts   Timeouts
}

// NewServer creates a new API Server.
func NewServer(addr string, logger *slog.Logger, opts ...ServerOption) Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	s := Server{
		router:   router,
		addr:     addr,
		logger:   logger,
		timeouts: DefaultTimeouts(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Router returns the chi router for registering routes.
func (s Server) Router() chi.Router {
	return s.router
}

// Timeouts returns the configured timeouts.
func (s Server) Timeouts() Timeouts {
	return s.timeouts
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		IdleTimeout:       idleTimeout,
	}

	s.logger.Info("starting HTTP server",
		slog.String("addr", s.addr),
		slog.Duration("request_timeout", s.timeouts.Request),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown waits for in-flight requests, including generation batches,
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s Server) Addr() string {
	return s.addr
}

// deadline applies chi's Timeout to every request except generation
// batches. A zero duration disables it.
func deadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if d <= 0 {
			return next
		}
		bounded := chimiddleware.Timeout(d)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isGenerate(r) {
				next.ServeHTTP(w, r)
				return
			}
			bounded.ServeHTTP(w, r)
		})
	}
}

func isGenerate(r *http.Request) bool {
	return r.Method == http.MethodPost && strings.TrimSuffix(r.URL.Path, "/") == GeneratePath
}
