// Command colstats prints per-column numeric statistics for a delimited file.
//
//	colstats [-columns a,b] [-delimiter ,] [-encoding utf-8] [-format table|json] file.csv
//	colstats -parity '[1, 2, true, 3.5]'
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/olekukonko/tablewriter"

	"github.com/JonMunkholm/colstats/internal/core"
	"github.com/JonMunkholm/colstats/internal/logging"
	"github.com/JonMunkholm/colstats/internal/parity"
)

// errUsage marks errors already explained by the usage text.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("colstats", flag.ContinueOnError)
	fs.SetOutput(stderr)

	columns := fs.String("columns", "", "Comma-separated columns to include (default: all)")
	delimiter := fs.String("delimiter", ",", `Field separator: one character, or \t / tab`)
	encoding := fs.String("encoding", core.DefaultEncoding, "Text encoding of the file (e.g. utf-8, latin-1, windows-1252)")
	format := fs.String("format", "table", "Output format: table, json")
	parityInput := fs.String("parity", "", "Sum even and odd integers of a JSON array instead of reading a file")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: colstats [options] <file.csv>\n")
		fmt.Fprintf(stderr, "       colstats -parity '<json array>'\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	logging.SetupWriter(stderr, *logLevel, "text")

	if *format != "table" && *format != "json" {
		fmt.Fprintf(stderr, "Error: -format must be table or json, got %q\n", *format)
		return 2
	}

	var err error
	if *parityInput != "" {
		err = runParity(stdout, *parityInput, *format)
	} else {
		err = runStats(stdout, fs, *columns, *delimiter, *encoding, *format)
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fs.Usage()
		return 2
	default:
		fmt.Fprintf(stderr, "Error: %s\n", core.FormatUserError(err))
		slog.Debug("command failed", "error", err)
		return 1
	}
}

func runStats(w io.Writer, fs *flag.FlagSet, columns, delimiter, encoding, format string) error {
	if fs.NArg() != 1 {
		return errUsage
	}
	path := fs.Arg(0)

	delim, err := core.ParseDelimiter(delimiter)
	if err != nil {
		return err
	}

	summary, err := core.SummarizeFile(path, core.Options{
		Columns:   core.SplitColumns(columns),
		Delimiter: delim,
		Encoding:  encoding,
	})
	if err != nil {
		return err
	}

	report := core.NewReport(summary, path)
	if format == "json" {
		return writeJSON(w, report)
	}
	return writeStatsTable(w, report)
}

func runParity(w io.Writer, input, format string) error {
	values, err := parity.DecodeJSONArray(strings.NewReader(input))
	if err != nil {
		return err
	}

	sums := parity.Summarize(values)
	if format == "json" {
		return writeJSON(w, sums)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Sum even", "Sum odd"})
	table.Append([]string{strconv.FormatInt(sums.Even, 10), strconv.FormatInt(sums.Odd, 10)})
	table.Render()
	return nil
}

func writeStatsTable(w io.Writer, report *core.Report) error {
	if len(report.Columns) == 0 {
		_, err := fmt.Fprintln(w, "no matching columns")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Column", "Count", "Mean", "Min", "Max"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, name := range report.Columns {
		st := report.Stats[name]
		table.Append([]string{
			name,
			strconv.FormatInt(st.Count, 10),
			formatFloat(st.Mean),
			formatFloat(st.Min),
			formatFloat(st.Max),
		})
	}
	table.Render()
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(f pgtype.Float8) string {
	if !f.Valid {
		return "null"
	}
	return strconv.FormatFloat(f.Float64, 'g', -1, 64)
}
