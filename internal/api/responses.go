package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "github.com/cyrilcaoyang/gopoe/internal/errors"
)

// Shared DTOs for API responses and helpers for sending consistent HTTP
// responses. The error mapping below is the one place the taxonomy meets
// HTTP; every class keeps a distinct status and code so front ends never see
// a collapsed generic failure.

// ErrorResponse is the standard JSON structure for error messages. Code
// carries the machine-readable error class.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// StatusResponse is the generic success body for mutations that return no
// resource.
type StatusResponse struct {
	Status string `json:"status"`
}

// respondWithError maps domain errors to HTTP status codes and writes a
// standard error body.
func respondWithError(w http.ResponseWriter, err error) {
	var statusCode int
	var message string

	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, app_errors.ErrConversationLocked):
		// The locked error text names the bound bot and user-message count,
		// which is exactly what callers need to render.
		statusCode = http.StatusConflict
		message = err.Error()
	case errors.Is(err, app_errors.ErrAuthentication):
		statusCode = http.StatusBadGateway
		message = "The bot provider rejected our credentials."
	case errors.Is(err, app_errors.ErrRateLimited):
		statusCode = http.StatusTooManyRequests
		message = "The bot provider is rate limiting requests."
	case errors.Is(err, app_errors.ErrQuotaExceeded):
		statusCode = http.StatusPaymentRequired
		message = "The bot provider reports an exhausted quota."
	case errors.Is(err, app_errors.ErrTransport):
		statusCode = http.StatusBadGateway
		message = "The connection to the bot provider failed."
	default:
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal server error occurred."
	}

	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)
	respondWithJSON(w, statusCode, ErrorResponse{Error: message, Code: errorCode(err)})
}

// errorCode returns the machine-readable class for an error. Stream
// consumers branch on this instead of parsing messages.
func errorCode(err error) string {
	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		return "not_found"
	case errors.Is(err, app_errors.ErrValidation):
		return "validation"
	case errors.Is(err, app_errors.ErrConversationLocked):
		return "locked_conversation"
	case errors.Is(err, app_errors.ErrAuthentication):
		return "authentication"
	case errors.Is(err, app_errors.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, app_errors.ErrQuotaExceeded):
		return "quota_exceeded"
	case errors.Is(err, app_errors.ErrTransport):
		return "transport"
	case errors.Is(err, app_errors.ErrStorage):
		return "storage"
	default:
		return "internal"
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

// sendStreamError reports a failure over an already-open SSE stream, keeping
// the error class intact for clients listening on the error event.
func sendStreamError(w http.ResponseWriter, err error) {
	slog.Warn("Sending stream error to client", "error", err)
	payload := ErrorResponse{Error: err.Error(), Code: errorCode(err)}

	jsonData, mErr := json.Marshal(payload)
	if mErr != nil {
		slog.Error("Failed to marshal stream error payload", "error", mErr)
		return
	}

	if _, wErr := fmt.Fprintf(w, "event: error\ndata: %s\n\n", string(jsonData)); wErr != nil {
		slog.Warn("Failed to write stream error, client might have disconnected", "error", wErr)
		return
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// writeStreamEvent marshals one chunk onto the SSE stream. A write failure
// signals a closed connection.
func writeStreamEvent(w http.ResponseWriter, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal stream data to JSON", "error", err)
		return nil
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", string(jsonData)); err != nil {
		return fmt.Errorf("failed to write data to stream: %w", err)
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
