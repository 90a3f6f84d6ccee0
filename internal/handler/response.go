package handler

// RESPONSE HELPERS:
// These standardise how handlers send JSON and map domain errors to HTTP.
//
// Every error response has the same shape:
//
//	{"error": "input_error", "message": "channel name must be between 1 and 20 characters"}
//
// The status code carries the error kind: 400 for invalid input, 403 for a
// missing permission or bad token, 500 for anything unexpected. The mapping
// lives here — the service layer returns domain errors and knows nothing
// about HTTP status codes.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/teamline/internal/apperror"
)

// ErrorResponse is the standard error body returned by every endpoint.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable kind
	Message string `json:"message"` // human-readable description
}

// writeJSON sends a JSON response with the given status code. Headers and
// status must be set before the first body byte — hence the ordering here.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already gone; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError translates a domain error into the HTTP response.
//
// errors.Is walks the chain (AppError implements Unwrap, and services wrap
// with fmt.Errorf %w), so the sentinel is found no matter how many layers
// of context were added on the way up.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		kind := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrInput):
			status = http.StatusBadRequest
			kind = "input_error"
		case errors.Is(err, apperror.ErrAccess):
			status = http.StatusForbidden
			kind = "access_error"
		}

		writeJSON(w, status, ErrorResponse{Error: kind, Message: appErr.Message})
		return
	}

	// An unexpected persistence failure. Never expose its details — raw
	// error strings can leak SQL fragments or file paths.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}
