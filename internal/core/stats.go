package core

// stats.go computes per-column numeric statistics over a delimited file.
//
// The scan is a single pass: the header is read once, then each record is
// folded into one accumulator per target column and discarded. Cells that
// are missing, blank, "NA"/"N/A" or not numeric are skipped without error.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/jackc/pgx/v5/pgtype"
)

// Compute reads the delimited file at path and returns statistics for each
// target column. The file is closed before Compute returns.
//
// An empty file yields an empty Result. Failures to open, decode or read the
// file are returned as *InputError.
func Compute(path string, opts Options) (Result, error) {
	summary, err := SummarizeFile(path, opts)
	if err != nil {
		return nil, err
	}
	return summary.Stats, nil
}

// ComputeReader is Compute over an already open stream.
func ComputeReader(r io.Reader, opts Options) (Result, error) {
	summary, err := Summarize(r, opts)
	if err != nil {
		return nil, err
	}
	return summary.Stats, nil
}

// SummarizeFile is Compute that also reports column order and scan totals.
func SummarizeFile(path string, opts Options) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	return summarize(f, path, opts)
}

// Summarize is ComputeReader that also reports column order and scan totals.
func Summarize(r io.Reader, opts Options) (*Summary, error) {
	return summarize(r, "", opts)
}

// target is a column selected for aggregation and where to find it in a record.
type target struct {
	name  string
	index int
}

func summarize(src io.Reader, path string, opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	if err := validateDelimiter(opts.Delimiter); err != nil {
		return nil, err
	}

	decode, err := resolveEncoding(opts.Encoding)
	if err != nil {
		return nil, &InputError{Op: OpDecode, Path: path, Err: err}
	}

	counter := NewCountingReader(src)
	reader := csv.NewReader(decode(counter))
	reader.Comma = opts.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	summary := &Summary{Columns: []string{}, Stats: Result{}}

	header, err := reader.Read()
	if err == io.EOF {
		summary.Bytes = counter.BytesRead
		return summary, nil
	}
	if err != nil {
		return nil, scanError(path, err)
	}
	header = slices.Clone(header)

	targets := selectTargets(header, opts.Columns)
	accs := make([]accumulator, len(targets))

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, scanError(path, err)
		}
		summary.Rows++

		for i, t := range targets {
			// Short record: trailing fields are absent
			if t.index >= len(record) {
				continue
			}
			if v := ParseNumeric(record[t.index]); v.Valid {
				accs[i].add(v.Float64)
			}
		}
	}

	for i, t := range targets {
		summary.Columns = append(summary.Columns, t.name)
		summary.Stats[t.name] = accs[i].finalize()
	}
	summary.Bytes = counter.BytesRead
	return summary, nil
}

// selectTargets resolves which header columns to aggregate.
//
// With no request every header column is a target, in header order.
// Otherwise requested names present in the header are kept in request
// order. Repeats collapse to the first mention. When the header itself
// repeats a name, its last occurrence supplies the value.
func selectTargets(header, requested []string) []target {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	names := requested
	if names == nil {
		names = header
	}

	seen := make(map[string]bool, len(names))
	targets := make([]target, 0, len(names))
	for _, name := range names {
		i, ok := index[name]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		targets = append(targets, target{name: name, index: i})
	}
	return targets
}

// scanError wraps parser failures as input errors.
func scanError(path string, err error) *InputError {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &InputError{Op: OpParse, Path: path, Err: fmt.Errorf("invalid csv: %w", err)}
	}
	return readError(path, err)
}

// accumulator folds valid numbers for one column.
// count == 0 means min and max are unset.
type accumulator struct {
	count int64
	sum   float64
	min   float64
	max   float64
}

func (a *accumulator) add(v float64) {
	if a.count == 0 || v < a.min {
		a.min = v
	}
	if a.count == 0 || v > a.max {
		a.max = v
	}
	a.count++
	a.sum += v
}

// finalize produces the result record. A zero mean is normalized to +0.
func (a accumulator) finalize() ColumnStats {
	if a.count == 0 {
		return ColumnStats{}
	}

	mean := a.sum / float64(a.count)
	if mean == 0 {
		mean = 0
	}

	return ColumnStats{
		Mean:  pgtype.Float8{Float64: mean, Valid: true},
		Min:   pgtype.Float8{Float64: a.min, Valid: true},
		Max:   pgtype.Float8{Float64: a.max, Valid: true},
		Count: a.count,
	}
}
