package web

import (
	"net/http"

	"github.com/JonMunkholm/colstats/internal/parity"
)

// maxParityBody bounds the JSON array accepted by handleParity.
const maxParityBody = 1 << 20

// handleParity sums the even and odd integers of a JSON array body.
// Booleans, floats, strings, nulls and nested values are ignored.
func (s *Server) handleParity(w http.ResponseWriter, r *http.Request) {
	values, err := parity.DecodeJSONArray(http.MaxBytesReader(w, r.Body, maxParityBody))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, parity.Summarize(values))
}
