package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/helixml/dagforge"
	apimiddleware "github.com/helixml/dagforge/infrastructure/api/middleware"
	v1 "github.com/helixml/dagforge/infrastructure/api/v1"
)

// APIServer provides an HTTP API backed by a dagforge Client.
type APIServer struct {
	client       *dagforge.Client
	corsOrigins  []string
	server       *Server
	router       chi.Router
	routerCalled bool
	timeouts     Timeouts
	logger       *slog.Logger
}

// APIServerOption configures an APIServer.
type APIServerOption func(*APIServer)

// WithRequestTimeout sets the /api/v1 request deadline. Generation batches
// are exempt. Zero disables the deadline.
func WithRequestTimeout(d time.Duration) APIServerOption {
	return func(a *APIServer) {
		if d >= 0 {
			a.timeouts.Request = d
		}
	}
}

// NewAPIServer creates a new APIServer wired to the given Client.
// corsOrigins lists the browser origins allowed to call the API; empty
// disables CORS headers.
func NewAPIServer(client *dagforge.Client, corsOrigins []string, opts ...APIServerOption) *APIServer {
	a := &APIServer{
		client:      client,
		corsOrigins: corsOrigins,
		timeouts:    DefaultTimeouts(),
		logger:      client.Logger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up the health check and all v1 API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up all routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	router.Get("/health", healthHandler)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(deadline(a.timeouts.Request))
		if len(a.corsOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   a.corsOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"Accept", "Content-Type", apimiddleware.CorrelationIDHeader},
				ExposedHeaders:   []string{apimiddleware.CorrelationIDHeader, "Content-Disposition"},
				AllowCredentials: false,
				MaxAge:           300,
			}))
		}

		r.Mount("/connections", v1.NewConnectionsRouter(c).Routes())
		r.Mount("/mappings", v1.NewMappingsRouter(c).Routes())
		r.Mount("/templates", v1.NewTemplatesRouter(c).Routes())
		r.Mount("/naming-rule", v1.NewNamingRouter(c).Routes())
		r.Mount("/artifacts", v1.NewArtifactsRouter(c).Routes())
		r.Mount("/bundle", v1.NewBundlesRouter(c).Routes())
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger, WithTimeouts(a.timeouts))
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.router.Use(apimiddleware.CorrelationID)
		a.router.Use(apimiddleware.Logging(a.logger))
		a.MountRoutes()
	}
	return a.router
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
