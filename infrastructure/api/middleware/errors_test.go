package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/helixml/dagforge/application/service"
	"github.com/helixml/dagforge/domain/mapping"
	"github.com/helixml/dagforge/domain/template"
	"github.com/helixml/dagforge/infrastructure/api/jsonapi"
	"github.com/helixml/dagforge/infrastructure/introspect"
	"github.com/helixml/dagforge/internal/database"
	"github.com/helixml/dagforge/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(404, "resource not found", nil)

	if err.Code() != 404 {
		t.Errorf("Code() = %v, want 404", err.Code())
	}
	if err.Message() != "resource not found" {
		t.Errorf("Message() = %v, want 'resource not found'", err.Message())
	}

	expected := "api error 404: resource not found"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
	if !errors.Is(err, ErrAPI) {
		t.Error("APIError should match ErrAPI with errors.Is")
	}
}

func TestAPIError_WithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewAPIError(500, "internal error", cause)

	expected := "api error 500: internal error: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}

	if err.Unwrap() != cause {
		t.Error("Unwrap() should return the cause")
	}
}

func TestServerError(t *testing.T) {
	err := NewServerError(503, "service unavailable")

	if err.StatusCode() != 503 {
		t.Errorf("StatusCode() = %v, want 503", err.StatusCode())
	}
	if err.Message() != "service unavailable" {
		t.Errorf("Message() = %v, want 'service unavailable'", err.Message())
	}

	expected := "server error 503: service unavailable"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}

	if !errors.Is(err, ErrServer) {
		t.Error("ServerError should match ErrServer with errors.Is")
	}
}

func TestErrors_CanBeWrapped(t *testing.T) {
	wrapped := fmt.Errorf("request failed: %w", NewServerError(502, "bad gateway"))

	if !errors.Is(wrapped, ErrServer) {
		t.Error("wrapped ServerError should still match ErrServer")
	}

	var target *ServerError
	if !errors.As(wrapped, &target) {
		t.Error("should be able to extract ServerError with errors.As")
	}
}

func TestStatusOf(t *testing.T) {
	_, numErr := strconv.ParseInt("abc", 10, 64)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("get mapping: %w", database.ErrNotFound), http.StatusNotFound},
		{"no file", service.ErrNoFile, http.StatusNotFound},
		{"table missing", introspect.ErrTableNotFound, http.StatusNotFound},
		{"validation", fmt.Errorf("%w: name is required", service.ErrValidation), http.StatusBadRequest},
		{"duplicate order", mapping.ErrDuplicateColumnOrder, http.StatusBadRequest},
		{"schedule", template.ErrInvalidSchedule, http.StatusBadRequest},
		{"bad id", numErr, http.StatusBadRequest},
		{"explicit", NewAPIError(http.StatusConflict, "conflict", nil), http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := StatusOf(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/mappings/9", nil)
	req = req.WithContext(log.WithCorrelationID(req.Context(), "corr-1"))
	w := httptest.NewRecorder()

	WriteError(w, req, fmt.Errorf("get mapping: %w", database.ErrNotFound), log.Discard())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/vnd.api+json", w.Header().Get("Content-Type"))

	var body jsonapi.Document
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "404", body.Errors[0].Status)
	assert.Equal(t, "Not Found", body.Errors[0].Title)
	assert.Equal(t, "corr-1", body.Errors[0].ID)
	assert.Contains(t, body.Errors[0].Detail, "entity not found")
}

func TestCorrelationID(t *testing.T) {
	var seen string
	handler := CorrelationID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = GetCorrelationID(r.Context())
	}))

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(CorrelationIDHeader))
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(CorrelationIDHeader, "abc")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, "abc", seen)
		assert.Equal(t, "abc", w.Header().Get(CorrelationIDHeader))
	})
}
