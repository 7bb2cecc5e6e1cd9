package core

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	// DefaultDelimiter separates fields when Options.Delimiter is zero.
	DefaultDelimiter = ','

	// DefaultEncoding is used when Options.Encoding is empty.
	DefaultEncoding = "utf-8"
)

// Options controls a single ColumnStats computation.
type Options struct {
	// Columns restricts processing to these names, in this order.
	// Nil means every header column. Names missing from the header are ignored.
	Columns []string

	// Delimiter is the field separator (default ',').
	Delimiter rune

	// Encoding names the text encoding of the input (default "utf-8").
	Encoding string
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = DefaultDelimiter
	}
	if o.Encoding == "" {
		o.Encoding = DefaultEncoding
	}
	return o
}

// cacheKey renders the options in a stable form for result caching.
// Nil and empty Columns select different targets, so they render differently.
func (o Options) cacheKey() string {
	o = o.withDefaults()
	columns := "*"
	if o.Columns != nil {
		columns = fmt.Sprintf("%q", o.Columns)
	}
	return fmt.Sprintf("%q|%q|%s", o.Delimiter, o.Encoding, columns)
}

// ColumnStats is the finalized aggregate for one target column.
// Mean, Min and Max are invalid (JSON null) when Count is zero.
type ColumnStats struct {
	Mean  pgtype.Float8 `json:"mean"`
	Min   pgtype.Float8 `json:"min"`
	Max   pgtype.Float8 `json:"max"`
	Count int64         `json:"count"`
}

// Result maps each target column name to its statistics.
type Result map[string]ColumnStats

// Summary is a Result together with the target column order and scan totals.
type Summary struct {
	Columns []string
	Stats   Result
	Rows    int64 // data rows read, header excluded
	Bytes   int64 // raw bytes consumed from the source
}

// Report is what the service and CLI hand back to callers.
type Report struct {
	RunID      string   `json:"runId"`
	FileName   string   `json:"fileName,omitempty"`
	Columns    []string `json:"columns"`
	Stats      Result   `json:"stats"`
	Rows       int64    `json:"rows"`
	Bytes      int64    `json:"bytes"`
	Cached     bool     `json:"cached"`
	DurationMS int64    `json:"durationMs"`
}

// AnalyzeRequest describes one upload handed to Service.Analyze.
type AnalyzeRequest struct {
	FileName string
	Body     io.Reader
	Options  Options
}

// validateDelimiter mirrors the checks encoding/csv applies to Reader.Comma.
func validateDelimiter(r rune) error {
	if r == 0 || r == '"' || r == '\r' || r == '\n' || !utf8.ValidRune(r) || r == utf8.RuneError {
		return fmt.Errorf("%w: %q", ErrInvalidDelimiter, r)
	}
	return nil
}
