// Package templates renders the HTML views of the web UI as templ components.
//
// Components live in the .templ files; run `templ generate` after editing
// them to refresh the matching _templ.go files.
package templates

import (
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
)

//go:generate templ generate

// FormDefaults pre-fills the upload form.
type FormDefaults struct {
	Delimiter string
	Encoding  string
	MaxSizeMB int64
}

// formatFloat prints the shortest exact form, or "-" for null.
func formatFloat(f pgtype.Float8) string {
	if !f.Valid {
		return "-"
	}
	return strconv.FormatFloat(f.Float64, 'g', -1, 64)
}

func displayName(name string) string {
	if name == "" {
		return "upload"
	}
	return name
}

func cachedNote(cached bool) string {
	if cached {
		return " (cached)"
	}
	return ""
}
