package web

// errors.go provides unified error response handling for the web layer.
//
// respondError logs the technical error with the request ID, then answers
// with the mapped user message: JSON for API calls, an alert fragment for
// HTMX requests and a full page otherwise.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/colstats/internal/core"
	"github.com/JonMunkholm/colstats/internal/logging"
	"github.com/JonMunkholm/colstats/internal/parity"
	"github.com/JonMunkholm/colstats/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an error returned by core or parity.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrInvalidDelimiter),
		errors.Is(err, core.ErrUnknownEncoding),
		errors.Is(err, parity.ErrInvalidInput),
		errors.Is(err, parity.ErrIntegerRange):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, core.ErrInputAccess):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// logLevelFor reports server faults and errors without a specific user
// message at error level. Anticipated client errors are warnings.
func logLevelFor(err error, status int) slog.Level {
	if status >= http.StatusInternalServerError || !core.IsUserFacing(err) {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// respondError writes err in the format the client expects, using the
// status statusFor assigns to it.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	logger.Log(r.Context(), logLevelFor(err, status), "request error", attrs...)

	switch {
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, status)
	case isHTMX(r):
		renderHTML(w, r, status, templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code))
	default:
		renderHTML(w, r, status, templates.Page("Column statistics",
			templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code)))
	}
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
// API routes always get JSON.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
