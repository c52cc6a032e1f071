// Package v1 provides the v1 API routes.
package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/dagforge"
	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/connection"
	"github.com/helixml/dagforge/domain/repository"
	"github.com/helixml/dagforge/infrastructure/api/middleware"
	"github.com/helixml/dagforge/infrastructure/api/v1/dto"
)

// ConnectionsRouter handles connection API endpoints.
type ConnectionsRouter struct {
	client *dagforge.Client
	logger *slog.Logger
}

// NewConnectionsRouter creates a new ConnectionsRouter.
func NewConnectionsRouter(client *dagforge.Client) *ConnectionsRouter {
	return &ConnectionsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for connection endpoints.
func (r *ConnectionsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Delete("/{id}", r.Delete)
	router.Get("/{id}/tables", r.Tables)

	return router
}

// List handles GET /api/v1/connections, sorted by name unless ?sort= says
// otherwise.
func (r *ConnectionsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	page, err := connectionListing.Parse(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	conns, err := r.client.Connections.Find(ctx, page.Options()...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Connections.Count(ctx)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := make([]dto.ConnectionData, 0, len(conns))
	for _, c := range conns {
		data = append(data, connToDTO(c))
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ConnectionListResponse{
		Data:  data,
		Meta:  page.Meta(total),
		Links: page.Links(req, total),
	})
}

// Create handles POST /api/v1/connections.
func (r *ConnectionsRouter) Create(w http.ResponseWriter, req *http.Request) {
	var body dto.ConnectionCreateRequest
	if err := decodeJSON(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	conn, err := r.client.Connections.Create(req.Context(), service.ConnectionParams{
		Name:     body.Name,
		Type:     body.Type,
		Host:     body.Host,
		Port:     body.Port,
		Database: body.Database,
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, dto.ConnectionResponse{Data: connToDTO(conn)})
}

// Get handles GET /api/v1/connections/{id}.
func (r *ConnectionsRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	conn, err := r.client.Connections.Get(req.Context(), repository.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ConnectionResponse{Data: connToDTO(conn)})
}

// Delete handles DELETE /api/v1/connections/{id}.
func (r *ConnectionsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Connections.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Tables handles GET /api/v1/connections/{id}/tables.
func (r *ConnectionsRouter) Tables(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	tables, err := r.client.Connections.Tables(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if tables == nil {
		tables = []string{}
	}

	middleware.WriteJSON(w, http.StatusOK, dto.TableListResponse{Data: tables})
}

func connToDTO(c connection.Connection) dto.ConnectionData {
	return dto.ConnectionData{
		Type: "connection",
		ID:   strconv.FormatInt(c.ID(), 10),
		Attributes: dto.ConnectionAttributes{
			Name:      c.Name(),
			Type:      c.Kind(),
			Host:      c.Host(),
			Port:      c.Port(),
			Database:  c.Database(),
			Username:  c.Username(),
			Status:    c.Status(),
			CreatedAt: c.CreatedAt(),
		},
	}
}
