package web

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/colstats/internal/config"
	"github.com/JonMunkholm/colstats/internal/core"
	"github.com/JonMunkholm/colstats/internal/parity"
)

const peopleCSV = "id,age,score,name\n" +
	"1,30,85.5,ann\n" +
	"2,25,91,bob\n" +
	"3,,78.25,cy\n" +
	"4,27,NA,dee\n" +
	"5,22,88,ed\n"

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.Defaults()
	cfg.Stats.TempDir = t.TempDir()
	cfg.Rate.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	svc, err := core.NewService(cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	srv := NewServer(svc, cfg)
	t.Cleanup(func() { srv.Shutdown(t.Context()) })
	return srv
}

// uploadRequest builds a multipart POST; an empty filename omits the file part.
func uploadRequest(t *testing.T, target, filename, content string, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mpw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mpw.WriteField(k, v))
	}
	if filename != "" {
		part, err := mpw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mpw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mpw.FormDataContentType())
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestAPIStats(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, uploadRequest(t, "/api/stats?columns=score,age", "people.csv", peopleCSV, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report core.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Equal(t, "people.csv", report.FileName)
	assert.Equal(t, []string{"score", "age"}, report.Columns)
	assert.Equal(t, int64(5), report.Rows)

	age := report.Stats["age"]
	assert.Equal(t, int64(4), age.Count)
	assert.Equal(t, 26.0, age.Mean.Float64)
	assert.Equal(t, 22.0, age.Min.Float64)
	assert.Equal(t, 30.0, age.Max.Float64)

	score := report.Stats["score"]
	assert.Equal(t, int64(4), score.Count)
	assert.Equal(t, 85.6875, score.Mean.Float64)
}

func TestAPIStats_NullColumnJSON(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, uploadRequest(t, "/api/stats", "a.csv", "a,b\n", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var raw struct {
		Stats map[string]json.RawMessage `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.JSONEq(t, `{"mean":null,"min":null,"max":null,"count":0}`, string(raw.Stats["a"]))
}

func TestAPIStats_FormOptions(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, uploadRequest(t, "/api/stats", "semi.csv", "caf\xe9;n\nx;4\n", map[string]string{
		"delimiter": ";",
		"encoding":  "latin-1",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report core.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, []string{"café", "n"}, report.Columns)
	assert.Equal(t, int64(1), report.Stats["n"].Count)
}

func TestAPIStats_Errors(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*config.Config)
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing file part",
			req:        func(t *testing.T) *http.Request { return uploadRequest(t, "/api/stats", "", "", map[string]string{"columns": "a"}) },
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE004",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/stats", strings.NewReader("a,b\n1,2\n"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE004",
		},
		{
			name:       "invalid delimiter",
			req:        func(t *testing.T) *http.Request { return uploadRequest(t, "/api/stats?delimiter=ab", "a.csv", peopleCSV, nil) },
			wantStatus: http.StatusBadRequest,
			wantCode:   "VAL001",
		},
		{
			name:       "unknown encoding",
			req:        func(t *testing.T) *http.Request { return uploadRequest(t, "/api/stats?encoding=klingon-8", "a.csv", peopleCSV, nil) },
			wantStatus: http.StatusBadRequest,
			wantCode:   "FILE006",
		},
		{
			name:       "invalid utf-8",
			req:        func(t *testing.T) *http.Request { return uploadRequest(t, "/api/stats", "a.csv", "v\n\xff\n", nil) },
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "FILE003",
		},
		{
			name:       "file too large",
			mutate:     func(cfg *config.Config) { cfg.Stats.MaxFileSize = 16 },
			req:        func(t *testing.T) *http.Request { return uploadRequest(t, "/api/stats", "a.csv", peopleCSV, nil) },
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "FILE001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.mutate)
			rec := serve(srv, tt.req(t))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
		})
	}
}

func TestStatsPage(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("full page", func(t *testing.T) {
		rec := serve(srv, uploadRequest(t, "/stats", "people.csv", peopleCSV, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "<!doctype html>"))
		assert.Contains(t, rec.Body.String(), "<td>age</td><td>4</td><td>26</td>")
	})

	t.Run("htmx fragment", func(t *testing.T) {
		req := uploadRequest(t, "/stats", "people.csv", peopleCSV, nil)
		req.Header.Set("HX-Request", "true")
		rec := serve(srv, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "<!doctype html>")
		assert.Contains(t, rec.Body.String(), `<section id="result">`)
	})

	t.Run("htmx error fragment", func(t *testing.T) {
		req := uploadRequest(t, "/stats", "", "", nil)
		req.Header.Set("HX-Request", "true")
		rec := serve(srv, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Code: FILE004")
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	})
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `enctype="multipart/form-data"`)
	assert.Contains(t, rec.Body.String(), "max 100 MB")
}

func TestAPIParity(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
		wantCode   string
	}{
		{"integers", `[1, 2, 3, 4]`, http.StatusOK, `{"sum_even":6,"sum_odd":4}`, ""},
		{"booleans ignored", `[true, false, 1, 2]`, http.StatusOK, `{"sum_even":2,"sum_odd":1}`, ""},
		{"mixed", `[10, "a", null, 7, 2.0]`, http.StatusOK, `{"sum_even":10,"sum_odd":7}`, ""},
		{"empty", `[]`, http.StatusOK, `{"sum_even":0,"sum_odd":0}`, ""},
		{"not an array", `{"x":1}`, http.StatusBadRequest, "", "VAL002"},
		{"integer overflow", `[99999999999999999999]`, http.StatusBadRequest, "", "VAL003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/parity", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := serve(srv, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			}
		})
	}
}

func TestAPIStatus(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.Stats.MaxConcurrent = 3 })

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var status core.ServiceStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 3, status.Limiter.MaxConcurrent)
	assert.Equal(t, 3, status.Limiter.Available)
	assert.True(t, status.Cache.Enabled)
}

func TestAPIKeyRequired(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Security.RequireAPIKey = true
		cfg.Security.APIKeys = []string{"secret"}
	})

	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, serve(srv, req).Code)

	// Pages and the health probe stay open
	assert.Equal(t, http.StatusOK, serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Rate.Enabled = true
		cfg.Rate.RequestsPerMinute = 1
	})

	assert.Equal(t, http.StatusOK, serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil)).Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{core.ErrBusy, http.StatusServiceUnavailable},
		{parity.ErrInvalidInput, http.StatusBadRequest},
		{&core.InputError{Op: core.OpRead, Err: assert.AnError}, http.StatusUnprocessableEntity},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), "statusFor(%v)", tt.err)
	}
}

func TestLogLevelFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want slog.Level
	}{
		{"mapped client error", core.ErrFileTooLarge, slog.LevelWarn},
		{"mapped parity error", parity.ErrInvalidInput, slog.LevelWarn},
		{"server fault", core.ErrBusy, slog.LevelError},
		{"unmapped client error", &core.InputError{Op: core.OpRead, Err: assert.AnError}, slog.LevelError},
		{"unmapped", assert.AnError, slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logLevelFor(tt.err, statusFor(tt.err)))
		})
	}
}
