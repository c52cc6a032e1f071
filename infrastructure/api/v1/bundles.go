package v1

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/dagforge"
	"github.com/helixml/dagforge/infrastructure/api/middleware"
	"github.com/helixml/dagforge/infrastructure/api/v1/dto"
	"github.com/helixml/dagforge/infrastructure/bundle"
)

// BundlesRouter exports and imports YAML configuration bundles.
type BundlesRouter struct {
	client *dagforge.Client
	logger *slog.Logger
}

// NewBundlesRouter creates a new BundlesRouter.
func NewBundlesRouter(client *dagforge.Client) *BundlesRouter {
	return &BundlesRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for bundle endpoints.
func (r *BundlesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.Export)
	router.Post("/", r.Import)

	return router
}

// Export handles GET /api/v1/bundle.
func (r *BundlesRouter) Export(w http.ResponseWriter, req *http.Request) {
	b, err := r.client.Bundles.Export(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data, err := bundle.Marshal(b)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Import handles POST /api/v1/bundle with a YAML body.
func (r *BundlesRouter) Import(w http.ResponseWriter, req *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		middleware.WriteError(w, req, middleware.BadRequest("read bundle", err), r.logger)
		return
	}

	b, err := bundle.Parse(data)
	if err != nil {
		middleware.WriteError(w, req, middleware.BadRequest("invalid bundle", err), r.logger)
		return
	}

	result, err := r.client.Bundles.Import(req.Context(), b)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ImportResponse{
		TemplatesCreated:   result.TemplatesCreated,
		TemplatesUpdated:   result.TemplatesUpdated,
		ConnectionsCreated: result.ConnectionsCreated,
		ConnectionsSkipped: result.ConnectionsSkipped,
		NamingRuleSaved:    result.NamingRuleSaved,
	})
}
