package core

// convert.go turns raw cell text into numbers and option strings into runes.
//
// Dirty input is the normal case: blanks, "NA" markers, stray words and
// locale-formatted numbers all show up in real exports. ParseNumeric never
// fails; anything it cannot read as a finite decimal number comes back with
// Valid=false and is simply left out of the statistics.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex accepts integers, decimals and scientific notation.
// Hex floats, "inf" and "nan" do not match.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// missingSentinels are compared case-insensitively after trimming.
var missingSentinels = []string{"NA", "N/A"}

// ParseNumeric converts a cell to a float.
// Returns invalid for empty cells, missing-value sentinels and anything
// that is not a finite decimal number. "inf", "infinity" and "nan" are not
// numbers here: a mean, min or max built from them could not be encoded as
// JSON, so such cells are skipped like any other non-numeric text.
func ParseNumeric(raw string) pgtype.Float8 {
	s := strings.TrimSpace(raw)
	if s == "" || IsMissingSentinel(s) {
		return pgtype.Float8{Valid: false}
	}

	s = stripDigitSeparators(s)
	if !numericRegex.MatchString(s) {
		return pgtype.Float8{Valid: false}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: f, Valid: true}
}

// IsMissingSentinel reports whether s (already trimmed) marks a deliberately
// absent value.
func IsMissingSentinel(s string) bool {
	for _, sentinel := range missingSentinels {
		if strings.EqualFold(s, sentinel) {
			return true
		}
	}
	return false
}

// stripDigitSeparators removes underscores that sit between two digits
// ("1_000" -> "1000"). Any other underscore leaves s untouched so the
// numeric check rejects it.
func stripDigitSeparators(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return s
		}
	}
	return strings.ReplaceAll(s, "_", "")
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// ParseDelimiter converts a user-supplied delimiter string to a rune.
// Empty means the default. Accepts a single character or the escapes
// `\t` and "tab".
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return DefaultDelimiter, nil
	case `\t`, "tab", "TAB":
		return '\t', nil
	}

	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("%w: %q must be a single character", ErrInvalidDelimiter, s)
	}
	if err := validateDelimiter(r); err != nil {
		return 0, err
	}
	return r, nil
}

// SplitColumns parses a comma-separated column list.
// Returns nil (all columns) when s has no non-blank entries.
func SplitColumns(s string) []string {
	parts := strings.Split(s, ",")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cols = append(cols, p)
		}
	}
	if len(cols) == 0 {
		return nil
	}
	return cols
}
