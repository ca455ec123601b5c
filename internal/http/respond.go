package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"splitinvoice/internal/core"
	"splitinvoice/internal/recognition"
	"splitinvoice/internal/scan"
	"splitinvoice/internal/storage"
)

// errorResponse is the JSON body for every non-2xx response. Session is
// set when a scan session survives the failure and can be retried.
type errorResponse struct {
	Error   string `json:"error"`
	Session string `json:"session,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// statusForError maps sentinel errors from the domain packages onto HTTP
// status codes and client-safe messages.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, scan.ErrNoSession):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, core.ErrBatchConsumed):
		return http.StatusConflict, err.Error()
	case errors.Is(err, scan.ErrCapture):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrLastPerson),
		errors.Is(err, core.ErrUnknownPerson),
		errors.Is(err, core.ErrUnknownItem),
		errors.Is(err, core.ErrUnknownTarget):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, recognition.ErrTimeout):
		return http.StatusGatewayTimeout, "receipt recognition timed out"
	case errors.Is(err, recognition.ErrRateLimited):
		return http.StatusTooManyRequests, "receipt recognition rate limited"
	case errors.Is(err, recognition.ErrUnauthorized),
		errors.Is(err, recognition.ErrRemote),
		errors.Is(err, recognition.ErrMalformed):
		return http.StatusBadGateway, "receipt recognition failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status, msg := statusForError(err)
	writeError(w, status, msg)
}

// writeScanError reports a failure on a still-retryable scan session.
func writeScanError(w http.ResponseWriter, err error, sessionID string) {
	status, msg := statusForError(err)
	writeJSON(w, status, errorResponse{Error: msg, Session: sessionID})
}
