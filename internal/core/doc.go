// Package core computes per-column numeric statistics over delimited text.
//
// It is independent of any transport: the CLI calls [SummarizeFile]
// directly, and the web server goes through [Service], which adds upload
// spooling, a concurrency limit and a result cache.
//
// # Computation
//
// [Compute] makes a single streaming pass. The first record is the header;
// every following record is folded into one accumulator per target column.
// Only the accumulators are kept, so memory does not grow with file size.
//
//	stats, err := core.Compute("data.csv", core.Options{
//	    Columns:   []string{"age", "score"},
//	    Delimiter: ';',
//	    Encoding:  "windows-1252",
//	})
//
// A cell counts when [ParseNumeric] reads it as a finite number. Blank
// cells, "NA"/"N/A" markers, words and cells missing from a short record are
// skipped. A column with no counted cells reports count 0 and null
// mean/min/max.
//
// # Input Pipeline
//
// The raw stream passes through [CountingReader], then the decoder for the
// selected encoding. UTF-8 input goes through [BOMSkippingReader] and the
// strict [StreamingUTF8Validator]; other encodings use golang.org/x/text.
//
// # Errors
//
// Failures to open, decode or read the input are [*InputError] values and
// match [ErrInputAccess] with errors.Is. [MapError] turns any error into a
// [UserMessage] with a support code.
package core
