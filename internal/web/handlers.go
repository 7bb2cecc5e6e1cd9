package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/colstats/internal/web/templates"
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex renders the upload form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, r, http.StatusOK, templates.Page("Column statistics", templates.Index(templates.FormDefaults{
		Delimiter: s.cfg.Stats.DefaultDelimiter,
		Encoding:  s.cfg.Stats.DefaultEncoding,
		MaxSizeMB: s.cfg.Stats.MaxFileSize / (1 << 20),
	})))
}

// handleStatus reports limiter and cache state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are only logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// renderHTML renders a templ component with the given status.
func renderHTML(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("template render error", "error", err, "path", r.URL.Path)
	}
}
