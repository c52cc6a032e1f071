package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/ddl"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/domain/naming"
	"github.com/helixml/dagforge/domain/template"
	"github.com/helixml/dagforge/infrastructure/api/jsonapi"
	"github.com/helixml/dagforge/infrastructure/bundle"
	"github.com/helixml/dagforge/infrastructure/introspect"
	"github.com/helixml/dagforge/infrastructure/output"
	"github.com/helixml/dagforge/infrastructure/persistence"
	"github.com/helixml/dagforge/internal/database"
)

var notFound = []error{
	database.ErrNotFound,
	service.ErrNoFile,
	introspect.ErrTableNotFound,
	naming.ErrRuleNotFound,
	output.ErrFileNotFound,
}

var invalid = []error{
	service.ErrValidation,
	ddl.ErrUnsupportedDialect,
	ddl.ErrNoColumns,
	introspect.ErrUnsupportedSource,
	persistence.ErrForeignColumn,
	mapping.ErrDuplicateColumnOrder,
	mapping.ErrInvalidColumnOrder,
	template.ErrInvalid,
	template.ErrInvalidSchedule,
	naming.ErrUnknownKind,
	bundle.ErrUnsupportedVersion,
	output.ErrInvalidName,
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StatusOf maps an error to its HTTP status and title.
func StatusOf(err error) (int, string) {
	var apiErr *APIError
	var serverErr *ServerError
	var numErr *strconv.NumError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code(), "API Error"
	case errors.As(err, &serverErr):
		return serverErr.StatusCode(), "Server Error"
	case isAny(err, notFound):
		return http.StatusNotFound, "Not Found"
	case isAny(err, invalid):
		return http.StatusBadRequest, "Validation Error"
	case errors.As(err, &numErr), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return http.StatusBadRequest, "Bad Request"
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

// WriteError writes a JSON:API formatted error response.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, title := StatusOf(err)
	detail := err.Error()

	var apiErr *APIError
	var serverErr *ServerError
	switch {
	case errors.As(err, &apiErr):
		detail = apiErr.Message()
		if apiErr.Unwrap() != nil {
			detail += ": " + apiErr.Unwrap().Error()
		}
	case errors.As(err, &serverErr):
		detail = serverErr.Message()
	}

	correlationID := GetCorrelationID(r.Context())

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			"status", status,
			"error", err.Error(),
			"path", r.URL.Path,
		)
	}

	jerr := jsonapi.NewError(strconv.Itoa(status), title, detail)
	jerr.ID = correlationID
	resp := jsonapi.NewErrorResponse(jerr)

	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
