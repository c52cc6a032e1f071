package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/dagforge"
	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/repository"
	"github.com/helixml/dagforge/domain/template"
	"github.com/helixml/dagforge/infrastructure/api/middleware"
	"github.com/helixml/dagforge/infrastructure/api/v1/dto"
)

// TemplatesRouter handles template API endpoints.
type TemplatesRouter struct {
	client *dagforge.Client
	logger *slog.Logger
}

// NewTemplatesRouter creates a new TemplatesRouter.
func NewTemplatesRouter(client *dagforge.Client) *TemplatesRouter {
	return &TemplatesRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for template endpoints.
func (r *TemplatesRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Put("/{id}", r.Update)
	router.Delete("/{id}", r.Delete)

	return router
}

// List handles GET /api/v1/templates.
func (r *TemplatesRouter) List(w http.ResponseWriter, req *http.Request) {
	templates, err := r.client.Templates.List(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := make([]dto.TemplateData, 0, len(templates))
	for _, t := range templates {
		data = append(data, templateToDTO(t))
	}

	middleware.WriteJSON(w, http.StatusOK, dto.TemplateListResponse{Data: data})
}

// Create handles POST /api/v1/templates.
func (r *TemplatesRouter) Create(w http.ResponseWriter, req *http.Request) {
	var body dto.TemplateRequest
	if err := decodeJSON(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	t, err := r.client.Templates.Create(req.Context(), templateParams(body))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, dto.TemplateResponse{Data: templateToDTO(t)})
}

// Get handles GET /api/v1/templates/{id}.
func (r *TemplatesRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	t, err := r.client.Templates.Get(req.Context(), repository.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.TemplateResponse{Data: templateToDTO(t)})
}

// Update handles PUT /api/v1/templates/{id}.
func (r *TemplatesRouter) Update(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.TemplateRequest
	if err := decodeJSON(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	t, err := r.client.Templates.Update(req.Context(), id, templateParams(body))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.TemplateResponse{Data: templateToDTO(t)})
}

// Delete handles DELETE /api/v1/templates/{id}.
func (r *TemplatesRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Templates.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func templateParams(body dto.TemplateRequest) service.TemplateParams {
	return service.TemplateParams{
		Name:       body.Name,
		SourceType: body.SourceType,
		TargetType: body.TargetType,
		Comment:    body.Comment,
		Code:       body.Code,
	}
}

func templateToDTO(t template.Template) dto.TemplateData {
	placeholders := make([]string, 0, len(t.Placeholders()))
	for _, p := range t.Placeholders() {
		placeholders = append(placeholders, string(p))
	}
	return dto.TemplateData{
		Type: "template",
		ID:   strconv.FormatInt(t.ID(), 10),
		Attributes: dto.TemplateAttributes{
			Name:         t.Name(),
			SourceType:   t.SourceType(),
			TargetType:   t.TargetType(),
			Comment:      t.Comment(),
			Code:         t.Body(),
			Placeholders: placeholders,
			CreatedAt:    t.CreatedAt(),
		},
	}
}
