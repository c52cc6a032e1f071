package v1

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/dagforge"
	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/artifact"
	"github.com/helixml/dagforge/domain/repository"
	"github.com/helixml/dagforge/infrastructure/api/middleware"
	"github.com/helixml/dagforge/infrastructure/api/v1/dto"
)

// ArtifactsRouter handles generation and artifact endpoints.
type ArtifactsRouter struct {
	client *dagforge.Client
	logger *slog.Logger
}

// NewArtifactsRouter creates a new ArtifactsRouter.
func NewArtifactsRouter(client *dagforge.Client) *ArtifactsRouter {
	return &ArtifactsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for artifact endpoints.
func (r *ArtifactsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/generate", r.Generate)
	router.Post("/bulk-delete", r.BulkDelete)
	router.Get("/{id}", r.Get)
	router.Delete("/{id}", r.Delete)
	router.Get("/{id}/code", r.Code)
	router.Get("/{id}/download", r.Download)

	return router
}

// List handles GET /api/v1/artifacts. Supports ?mapping_id=, ?template_id=,
// ?status= and ?sort= on created_at, filename or status.
func (r *ArtifactsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	page, err := artifactListing.Parse(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var filters []repository.Option
	if id, ok, err := queryID(req, "mapping_id"); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	} else if ok {
		filters = append(filters, artifact.WithMappingID(id))
	}
	if id, ok, err := queryID(req, "template_id"); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	} else if ok {
		filters = append(filters, artifact.WithTemplateID(id))
	}
	if status := req.URL.Query().Get("status"); status != "" {
		filters = append(filters, artifact.WithStatus(artifact.Status(status)))
	}

	options := append(append([]repository.Option{}, filters...), page.Options()...)
	artifacts, err := r.client.Artifacts.List(ctx, options...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Artifacts.Count(ctx, filters...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := make([]dto.ArtifactData, 0, len(artifacts))
	for _, a := range artifacts {
		data = append(data, artifactToDTO(a))
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ArtifactListResponse{
		Data:  data,
		Meta:  page.Meta(total),
		Links: page.Links(req, total),
	})
}

// Generate handles POST /api/v1/artifacts/generate. The batch always
// completes; per-mapping failures are reported in items.
func (r *ArtifactsRouter) Generate(w http.ResponseWriter, req *http.Request) {
	var body dto.GenerateRequest
	if err := decodeJSON(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	result, err := r.client.Generation.Generate(req.Context(), service.GenerateParams{
		TemplateID: body.TemplateID,
		MappingIDs: body.MappingIDs,
		Prefix:     body.Prefix,
		Schedule:   body.Schedule,
		Catchup:    body.Catchup,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resp := dto.GenerateResponse{
		Succeeded: result.Succeeded(),
		Failed:    result.Failed(),
		Files:     result.Files(),
		Items:     make([]dto.GenerateItem, 0, len(result.Items)),
	}
	if resp.Files == nil {
		resp.Files = []string{}
	}
	for _, it := range result.Items {
		item := dto.GenerateItem{
			MappingID:  it.MappingID,
			Name:       it.Name,
			Status:     it.Phase.String(),
			ArtifactID: it.Artifact.ID(),
		}
		if it.Succeeded() {
			item.Filename = it.Artifact.Filename()
		}
		if it.Err != nil {
			item.Error = it.Err.Error()
		}
		resp.Items = append(resp.Items, item)
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/v1/artifacts/{id}.
func (r *ArtifactsRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	a, err := r.client.Artifacts.Get(req.Context(), repository.WithID(id))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ArtifactResponse{Data: artifactToDTO(a)})
}

// Code handles GET /api/v1/artifacts/{id}/code.
func (r *ArtifactsRouter) Code(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	a, content, err := r.client.Artifacts.Code(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ArtifactCodeResponse{Data: dto.ArtifactCode{
		ID:       strconv.FormatInt(a.ID(), 10),
		Filename: a.Filename(),
		Code:     string(content),
	}})
}

// Download handles GET /api/v1/artifacts/{id}/download.
func (r *ArtifactsRouter) Download(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	a, content, err := r.client.Artifacts.Code(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// Delete handles DELETE /api/v1/artifacts/{id}.
func (r *ArtifactsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Artifacts.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete handles POST /api/v1/artifacts/bulk-delete.
func (r *ArtifactsRouter) BulkDelete(w http.ResponseWriter, req *http.Request) {
	var body dto.IDsRequest
	if err := decodeJSON(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	result, err := r.client.Artifacts.BulkDelete(req.Context(), body.IDs)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	writeBulkDelete(w, req, result, r.logger)
}

func artifactToDTO(a artifact.Artifact) dto.ArtifactData {
	return dto.ArtifactData{
		Type: "artifact",
		ID:   strconv.FormatInt(a.ID(), 10),
		Attributes: dto.ArtifactAttributes{
			Filename:     a.Filename(),
			Filepath:     a.Filepath(),
			TemplateID:   a.TemplateID(),
			MappingID:    a.MappingID(),
			Status:       string(a.Status()),
			ErrorMessage: a.ErrorMessage(),
			CreatedAt:    a.CreatedAt(),
		},
	}
}
