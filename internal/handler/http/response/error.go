package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/niwaya/kintai-backend/internal/pkg/apperror"
	"github.com/niwaya/kintai-backend/internal/pkg/validator"
)

// HandleError maps an error to its HTTP response. Field validation errors
// carry their details; taxonomy errors use their kind; anything else is
// logged with the request id and route, then hidden behind a generic 500.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		logError(r, "unexpected error", err)
		InternalServerError(w, "An unexpected error occurred")
		return
	}

	switch appErr.Kind {
	case apperror.KindValidation:
		Error(w, http.StatusUnprocessableEntity, appErr.Kind.Code(), appErr.Message, nil)
	case apperror.KindAuthentication:
		Unauthorized(w, appErr.Message)
	case apperror.KindAuthorization:
		Forbidden(w, appErr.Message)
	case apperror.KindNotFound:
		NotFound(w, appErr.Message)
	case apperror.KindConflict:
		Conflict(w, appErr.Message)
	default:
		logError(r, "internal error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

func logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	route := r.URL.Path
	if rctx := chi.RouteContext(ctx); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			route = pattern
		}
	}
	slog.ErrorContext(ctx, msg,
		"request_id", chiMiddleware.GetReqID(ctx),
		"method", r.Method,
		"route", route,
		"error", err,
	)
}
