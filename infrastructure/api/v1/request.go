package v1

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/infrastructure/api/middleware"
	"github.com/helixml/dagforge/infrastructure/api/v1/dto"
)

// maxBodyBytes bounds JSON and YAML request bodies.
const maxBodyBytes = 4 << 20

// pathID parses the {id} URL parameter.
func pathID(req *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, middleware.BadRequest("invalid id "+strconv.Quote(chi.URLParam(req, "id")), nil)
	}
	return id, nil
}

// queryID parses an optional positive integer query parameter.
func queryID(req *http.Request, name string) (int64, bool, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, middleware.BadRequest("invalid "+name, err)
	}
	return id, true, nil
}

// decodeJSON reads a JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, req *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return middleware.BadRequest("invalid request body", err)
	}
	return nil
}

// writeBulkDelete writes 200 when every ID was deleted, 207 when some were,
// and the joined failure when none were.
func writeBulkDelete(w http.ResponseWriter, req *http.Request, result service.BulkDeleteResult, logger *slog.Logger) {
	if len(result.Deleted) == 0 && len(result.Failures) > 0 {
		middleware.WriteError(w, req, result.Err(), logger)
		return
	}
	if result.Partial() {
		logger.WarnContext(req.Context(), "bulk delete partially failed",
			slog.Int("deleted", len(result.Deleted)),
			slog.Int("failed", len(result.Failures)),
		)
	}
	middleware.WriteJSON(w, bulkDeleteStatus(result), bulkDeleteToDTO(result))
}

func bulkDeleteToDTO(result service.BulkDeleteResult) dto.BulkDeleteResponse {
	resp := dto.BulkDeleteResponse{
		Deleted:  result.Deleted,
		Failures: make([]dto.BulkFailure, 0, len(result.Failures)),
	}
	if resp.Deleted == nil {
		resp.Deleted = []int64{}
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, dto.BulkFailure{ID: f.ID, Error: f.Err.Error()})
	}
	return resp
}

// bulkDeleteStatus is 200 when nothing failed and 207 on partial success.
func bulkDeleteStatus(result service.BulkDeleteResult) int {
	if result.Partial() {
		return http.StatusMultiStatus
	}
	return http.StatusOK
}
