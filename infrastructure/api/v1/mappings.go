package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/dagforge"
	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/domain/repository"
	"github.com/helixml/dagforge/infrastructure/api/middleware"
	"github.com/helixml/dagforge/infrastructure/api/v1/dto"
)

// MappingsRouter handles mapping API endpoints.
type MappingsRouter struct {
	client *dagforge.Client
	logger *slog.Logger
}

// NewMappingsRouter creates a new MappingsRouter.
func NewMappingsRouter(client *dagforge.Client) *MappingsRouter {
	return &MappingsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for mapping endpoints.
func (r *MappingsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Post("/bulk-delete", r.BulkDelete)
	router.Post("/preview", r.Preview)
	router.Get("/{id}", r.Get)
	router.Delete("/{id}", r.Delete)
	router.Get("/{id}/columns", r.Columns)
	router.Put("/{id}/columns", r.UpdateColumns)
	router.Get("/{id}/ddl", r.DDL)

	return router
}

// List handles GET /api/v1/mappings. Supports ?source_conn_id=, ?status=
// and ?sort= on created_at, source_table, target_table or status.
func (r *MappingsRouter) List(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	page, err := mappingListing.Parse(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var filters []repository.Option
	sourceID, ok, err := queryID(req, "source_conn_id")
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if ok {
		filters = append(filters, mapping.WithSourceConnID(sourceID))
	}
	if status := req.URL.Query().Get("status"); status != "" {
		filters = append(filters, mapping.WithStatus(mapping.Status(status)))
	}

	options := append(append([]repository.Option{}, filters...), page.Options()...)
	mappings, err := r.client.Mappings.Find(ctx, options...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	total, err := r.client.Mappings.Count(ctx, filters...)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := make([]dto.MappingData, 0, len(mappings))
	for _, m := range mappings {
		data = append(data, mappingToDTO(m))
	}

	middleware.WriteJSON(w, http.StatusOK, dto.MappingListResponse{
		Data:  data,
		Meta:  page.Meta(total),
		Links: page.Links(req, total),
	})
}

// Create handles POST /api/v1/mappings.
func (r *MappingsRouter) Create(w http.ResponseWriter, req *http.Request) {
	var body dto.MappingCreateRequest
	if err := decodeJSON(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	created, err := r.client.Mappings.Create(req.Context(), service.CreateMappingsParams{
		SourceConnID: body.SourceConnID,
		TargetConnID: body.TargetConnID,
		Tables:       body.Tables,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := make([]dto.MappingCreated, 0, len(created))
	for _, c := range created {
		item := dto.MappingCreated{
			MappingData:  mappingToDTO(c.Detail.Mapping()),
			Columns:      columnsToDTO(c.Detail.Columns()),
			Untranslated: c.Untranslated,
		}
		if c.Fallback && c.Cause != nil {
			item.Warning = "source metadata unavailable: " + c.Cause.Error()
		}
		data = append(data, item)
	}

	middleware.WriteJSON(w, http.StatusCreated, dto.MappingCreateResponse{Data: data})
}

// Get handles GET /api/v1/mappings/{id}.
func (r *MappingsRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	detail, err := r.client.Mappings.Detail(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.MappingResponse{
		Data:    mappingToDTO(detail.Mapping()),
		Columns: columnsToDTO(detail.Columns()),
	})
}

// Columns handles GET /api/v1/mappings/{id}/columns.
func (r *MappingsRouter) Columns(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	columns, err := r.client.Mappings.Columns(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ColumnListResponse{Data: columnsToDTO(columns)})
}

// UpdateColumns handles PUT /api/v1/mappings/{id}/columns. The body is the
// complete column set.
func (r *MappingsRouter) UpdateColumns(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	var body dto.ColumnsUpdateRequest
	if err := decodeJSON(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	params := make([]service.ColumnParams, len(body.Columns))
	for i, c := range body.Columns {
		params[i] = service.ColumnParams{
			ID:                    c.ID,
			SourceColumn:          c.SourceColumn,
			SourceType:            c.SourceType,
			TargetColumn:          c.TargetColumn,
			TargetType:            c.TargetType,
			Order:                 c.Order,
			IsPK:                  c.IsPK,
			IsNullable:            c.IsNullable,
			IsPartition:           c.IsPartition,
			LogicalName:           c.LogicalName,
			SourceComment:         c.SourceComment,
			TransRule:             c.TransRule,
			IsExtractionCondition: c.IsExtractionCondition,
		}
	}

	saved, err := r.client.Mappings.UpdateColumns(req.Context(), id, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.ColumnListResponse{Data: columnsToDTO(saved)})
}

// Delete handles DELETE /api/v1/mappings/{id}.
func (r *MappingsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	if err := r.client.Mappings.Delete(req.Context(), id); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BulkDelete handles POST /api/v1/mappings/bulk-delete.
func (r *MappingsRouter) BulkDelete(w http.ResponseWriter, req *http.Request) {
	var body dto.IDsRequest
	if err := decodeJSON(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	result, err := r.client.Mappings.BulkDelete(req.Context(), body.IDs)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	writeBulkDelete(w, req, result, r.logger)
}

// Preview handles POST /api/v1/mappings/preview.
func (r *MappingsRouter) Preview(w http.ResponseWriter, req *http.Request) {
	var body dto.IDsRequest
	if err := decodeJSON(w, req, &body); err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	previews, err := r.client.Mappings.PreviewSQL(req.Context(), body.IDs)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	data := make([]dto.Preview, 0, len(previews))
	for _, p := range previews {
		data = append(data, dto.Preview{
			MappingID:   p.MappingID,
			MappingName: p.MappingName,
			SourceSQL:   p.SourceSQL,
		})
	}

	middleware.WriteJSON(w, http.StatusOK, dto.PreviewResponse{Data: data})
}

// DDL handles GET /api/v1/mappings/{id}/ddl.
func (r *MappingsRouter) DDL(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	stmt, err := r.client.Mappings.DDL(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, dto.DDLResponse{Data: dto.DDL{MappingID: id, Statement: stmt}})
}

func mappingToDTO(m mapping.Mapping) dto.MappingData {
	return dto.MappingData{
		Type: "mapping",
		ID:   strconv.FormatInt(m.ID(), 10),
		Attributes: dto.MappingAttributes{
			Name:            m.Name(),
			SourceConnID:    m.SourceConnID(),
			TargetConnID:    m.TargetConnID(),
			SourceTable:     m.SourceTable(),
			TargetTable:     m.TargetTable(),
			SourceTableDesc: m.SourceTableDesc(),
			Status:          string(m.Status()),
			CreatedAt:       m.CreatedAt(),
		},
	}
}

func columnsToDTO(columns []mapping.Column) []dto.Column {
	out := make([]dto.Column, 0, len(columns))
	for _, c := range columns {
		out = append(out, dto.Column{
			ID:                    c.ID(),
			SourceColumn:          c.SourceColumn(),
			SourceType:            c.SourceType(),
			TargetColumn:          c.TargetColumn(),
			TargetType:            c.TargetType(),
			Order:                 c.Order(),
			IsPK:                  c.IsPK(),
			IsNullable:            c.IsNullable(),
			IsPartition:           c.IsPartition(),
			LogicalName:           c.LogicalName(),
			SourceComment:         c.SourceComment(),
			TransRule:             c.TransRule(),
			IsExtractionCondition: c.IsExtractionCondition(),
		})
	}
	return out
}
