package web

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/JonMunkholm/colstats/internal/core"
	"github.com/JonMunkholm/colstats/internal/web/templates"
)

// multipartMemory is how much of a multipart body is held in memory before
// the rest is buffered to temporary files.
const multipartMemory = 8 << 20

// handleStats computes statistics for an uploaded file and returns the
// report as JSON.
//
// Form or query fields: file (required), columns, delimiter, encoding.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	report, err := s.analyzeUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleStatsPage is handleStats for the HTML form. HTMX requests get the
// result fragment only.
func (s *Server) handleStatsPage(w http.ResponseWriter, r *http.Request) {
	report, err := s.analyzeUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	table := templates.StatsTable(report)
	if isHTMX(r) {
		renderHTML(w, r, http.StatusOK, table)
		return
	}
	renderHTML(w, r, http.StatusOK, templates.Page("Column statistics", table))
}

// analyzeUpload reads the multipart upload and runs it through the service.
func (s *Server) analyzeUpload(w http.ResponseWriter, r *http.Request) (*core.Report, error) {
	// The service enforces the exact file limit; this only stops runaway bodies.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Stats.MaxFileSize+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return nil, fmt.Errorf("%w: request body over %d bytes", core.ErrFileTooLarge, tooBig.Limit)
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, core.ErrNoFile
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := parseOptions(r)
	if err != nil {
		return nil, err
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, core.ErrNoFile
		}
		return nil, fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	return s.service.Analyze(r.Context(), core.AnalyzeRequest{
		FileName: uploadName(header),
		Body:     file,
		Options:  opts,
	})
}

// parseOptions reads columns, delimiter and encoding from the form or query.
// Empty values fall back to the service defaults.
func parseOptions(r *http.Request) (core.Options, error) {
	var opts core.Options

	opts.Columns = core.SplitColumns(r.FormValue("columns"))

	if d := r.FormValue("delimiter"); d != "" {
		delim, err := core.ParseDelimiter(d)
		if err != nil {
			return core.Options{}, err
		}
		opts.Delimiter = delim
	}

	opts.Encoding = r.FormValue("encoding")
	return opts, nil
}

func uploadName(h *multipart.FileHeader) string {
	if h == nil {
		return ""
	}
	return h.Filename
}
