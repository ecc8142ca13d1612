// Package httputil carries the response helpers shared by the API handlers
package httputil

import (
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	v1 "github.com/mesophy/mesophy-signage/api/types/v1"
	"github.com/mesophy/mesophy-signage/internal/msignd/errors"
)

// Respond writes v as a JSON response with the given status
func Respond(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Error maps a service error onto the API error taxonomy and writes the
// uniform error body
func Error(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code := classify(err)

	if status >= 500 {
		logger.Error("request failed",
			"error", err,
			"requestId", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
	}

	Respond(w, status, v1.ErrorResponse{
		Error:   code,
		Message: publicMessage(err),
	})
}

func classify(err error) (int, string) {
	switch {
	case errors.IsNotRegistered(err):
		return http.StatusUnauthorized, "not_registered"
	case errors.IsUnauthorized(err):
		return http.StatusUnauthorized, "unauthorized"
	case errors.IsForbidden(err):
		return http.StatusForbidden, "forbidden"
	case errors.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case errors.IsConflict(err):
		return http.StatusConflict, "conflict"
	case errors.IsInvalidInput(err):
		return http.StatusBadRequest, "invalid_input"
	case errors.IsUnavailable(err):
		return http.StatusServiceUnavailable, "unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

// publicMessage exposes the curated message from a service error and hides
// raw internals behind a generic line
func publicMessage(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Message
	}
	return "request failed"
}
