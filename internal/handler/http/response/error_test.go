package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/niwaya/kintai-backend/internal/pkg/apperror"
	"github.com/niwaya/kintai-backend/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandleError_Taxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", apperror.Validation("request is not in applied state"), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"authentication", apperror.Authentication("invalid token"), http.StatusUnauthorized, "AUTH_ERROR"},
		{"authorization", fmt.Errorf("wrapped: %w", apperror.Authorization("no access")), http.StatusForbidden, "ACCESS_DENIED"},
		{"not found", apperror.NotFound("request not found"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", apperror.Conflict("already exists"), http.StatusConflict, "CONFLICT"},
		{"internal kind", apperror.Internal("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.ErrorCode)
			assert.Equal(t, tt.status, body.StatusCode)
		})
	}
}

func TestHandleError_HidesUnexpectedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: connection refused at 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "An unexpected error occurred", body.Message)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestHandleError_ValidationDetails(t *testing.T) {
	var errs validator.ValidationErrors
	errs.Add("start_date", "start_date is required")

	rec := httptest.NewRecorder()
	HandleError(rec, httptest.NewRequest(http.MethodPost, "/", nil), fmt.Errorf("failed to create: %w", errs.Err()))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", body.ErrorCode)
	assert.Equal(t, "start_date is required", body.Details["start_date"])
}

func TestHandleError_LogsRequestContext(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Get("/api/v1/requests/{id}", func(w http.ResponseWriter, r *http.Request) {
		HandleError(w, r, errors.New("pq: connection refused at 10.0.0.3"))
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/requests/abc", nil)
	req.Header.Set(chiMiddleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "unexpected error", entry["msg"])
	assert.Equal(t, "req-42", entry["request_id"])
	assert.Equal(t, http.MethodGet, entry["method"])
	assert.Equal(t, "/api/v1/requests/{id}", entry["route"])
	assert.Contains(t, entry["error"], "connection refused")
}
