package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"mercator-hq/webstore/pkg/cart"
)

// statusResponse is the generic JSON envelope for outcomes without a
// dedicated body.
type statusResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// successResponse reports a completed storefront action.
type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a service error onto an HTTP response.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *cart.ValidationError
		notFoundErr   *cart.NotFoundError
		conflictErr   *cart.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  http.StatusBadRequest,
			Message: validationErr.Error(),
		})

	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, statusResponse{
			Status:  http.StatusNotFound,
			Message: notFoundErr.Error(),
		})

	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, statusResponse{
			Status:  http.StatusConflict,
			Message: "Concurrent modification, please retry",
		})

	case errors.Is(err, cart.ErrBusy):
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{
			Status:  http.StatusServiceUnavailable,
			Message: "Server busy, please retry",
		})

	default:
		slog.ErrorContext(r.Context(), "unhandled service error",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
		)
		writeJSON(w, http.StatusInternalServerError, statusResponse{
			Status:  http.StatusInternalServerError,
			Message: "An internal error occurred",
		})
	}
}
