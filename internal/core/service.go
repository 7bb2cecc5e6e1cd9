package core

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash"
	"github.com/dgraph-io/ristretto"
	"github.com/google/uuid"

	"github.com/JonMunkholm/colstats/internal/config"
	"github.com/JonMunkholm/colstats/internal/logging"
)

// Service runs column statistics for uploaded files.
//
// Uploads are spooled to a temporary file while their content hash is
// computed, so a repeated upload with the same options is answered from the
// result cache without rescanning.
type Service struct {
	cfg     *config.Config
	limiter *Limiter
	cache   *ristretto.Cache

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewService creates a Service from the application config.
func NewService(cfg *config.Config) (*Service, error) {
	s := &Service{
		cfg:     cfg,
		limiter: NewLimiter(cfg.Stats.MaxConcurrent, cfg.Stats.MaxWaitTime),
	}

	if cfg.Cache.Enabled {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: cfg.Cache.MaxEntries * 10,
			MaxCost:     cfg.Cache.MaxEntries,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("create result cache: %w", err)
		}
		s.cache = cache
	}

	return s, nil
}

// Close releases the result cache.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// DefaultOptions returns Options carrying the configured delimiter and encoding.
func (s *Service) DefaultOptions() (Options, error) {
	delim, err := ParseDelimiter(s.cfg.Stats.DefaultDelimiter)
	if err != nil {
		return Options{}, err
	}
	return Options{Delimiter: delim, Encoding: s.cfg.Stats.DefaultEncoding}, nil
}

// Analyze computes statistics for one uploaded file.
//
// It waits for a computation slot, spools the body to disk (rejecting bodies
// over the configured size), and scans the spooled copy under the
// configured timeout.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Report, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := logging.WithFields(ctx, "run_id", runID, "file", req.FileName)

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("computation slot unavailable", "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Stats.Timeout)
	defer cancel()

	opts, err := s.resolveOptions(req.Options)
	if err != nil {
		return nil, err
	}

	spool, digest, err := s.spool(ctx, req.Body)
	if err != nil {
		return nil, err
	}
	defer os.Remove(spool.Name())
	defer spool.Close()

	key := cacheKey(digest, opts)
	if report, ok := s.lookup(key); ok {
		report.RunID = runID
		report.FileName = req.FileName
		report.Cached = true
		report.DurationMS = time.Since(start).Milliseconds()
		logger.Info("stats served from cache", "columns", len(report.Columns))
		return report, nil
	}

	summary, err := summarize(NewContextReader(ctx, spool), req.FileName, opts)
	if err != nil {
		logger.Warn("stats computation failed", "error", err)
		return nil, err
	}

	report := NewReport(summary, req.FileName)
	report.RunID = runID
	report.DurationMS = time.Since(start).Milliseconds()
	s.store(key, report)

	logger.Info("stats computed",
		"columns", len(report.Columns),
		"rows", report.Rows,
		"bytes", report.Bytes,
		"duration_ms", report.DurationMS,
	)
	return report, nil
}

// NewReport wraps a Summary with a fresh run ID.
func NewReport(summary *Summary, fileName string) *Report {
	return &Report{
		RunID:    uuid.New().String(),
		FileName: fileName,
		Columns:  summary.Columns,
		Stats:    summary.Stats,
		Rows:     summary.Rows,
		Bytes:    summary.Bytes,
	}
}

// resolveOptions fills unset delimiter and encoding from config.
func (s *Service) resolveOptions(opts Options) (Options, error) {
	defaults, err := s.DefaultOptions()
	if err != nil {
		return Options{}, err
	}
	if opts.Delimiter == 0 {
		opts.Delimiter = defaults.Delimiter
	}
	if opts.Encoding == "" {
		opts.Encoding = defaults.Encoding
	}
	if err := validateDelimiter(opts.Delimiter); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// spool copies body to a temporary file, hashing it on the way.
// The returned file is positioned at its start.
func (s *Service) spool(ctx context.Context, body io.Reader) (*os.File, uint64, error) {
	if body == nil {
		return nil, 0, ErrNoFile
	}

	f, err := os.CreateTemp(s.cfg.Stats.TempDir, "colstats-*.csv")
	if err != nil {
		return nil, 0, fmt.Errorf("create spool file: %w", err)
	}
	fail := func(err error) (*os.File, uint64, error) {
		f.Close()
		os.Remove(f.Name())
		return nil, 0, err
	}

	hash := xxhash.New()
	limit := s.cfg.Stats.MaxFileSize
	n, err := io.Copy(io.MultiWriter(f, hash), io.LimitReader(NewContextReader(ctx, body), limit+1))
	if err != nil {
		return fail(&InputError{Op: OpRead, Err: err})
	}
	if n > limit {
		return fail(fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, limit))
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fail(fmt.Errorf("rewind spool file: %w", err))
	}

	return f, hash.Sum64(), nil
}

// cacheKey combines the content digest with the options that shaped the result.
func cacheKey(digest uint64, opts Options) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], digest)
	h := xxhash.New()
	h.Write(buf[:])
	io.WriteString(h, opts.cacheKey())
	return h.Sum64()
}

// lookup returns a shallow copy of a cached report. Columns and Stats are
// shared with the cache and must not be modified.
func (s *Service) lookup(key uint64) (*Report, bool) {
	if s.cache == nil {
		return nil, false
	}
	v, ok := s.cache.Get(key)
	if !ok {
		s.misses.Add(1)
		return nil, false
	}
	s.hits.Add(1)
	cached := *v.(*Report)
	return &cached, true
}

func (s *Service) store(key uint64, report *Report) {
	if s.cache == nil {
		return
	}
	stored := *report
	s.cache.Set(key, &stored, 1)
}

// WaitForIdle blocks until in-flight computations finish or ctx is done.
func (s *Service) WaitForIdle(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// CacheStatus reports result cache effectiveness.
type CacheStatus struct {
	Enabled bool   `json:"enabled"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// ServiceStatus is returned by the status endpoint.
type ServiceStatus struct {
	Limiter LimiterStatus `json:"limiter"`
	Cache   CacheStatus   `json:"cache"`
}

// Status returns a snapshot of limiter and cache state.
func (s *Service) Status() ServiceStatus {
	return ServiceStatus{
		Limiter: s.limiter.Status(),
		Cache: CacheStatus{
			Enabled: s.cache != nil,
			Hits:    s.hits.Load(),
			Misses:  s.misses.Load(),
		},
	}
}
