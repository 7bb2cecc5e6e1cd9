package core

// streaming.go provides io.Reader wrappers applied in front of the CSV parser.
//
// Each wrapper holds a fixed amount of state, so a file of any size is
// processed with one CSV record in memory at a time:
//
//   - BOMSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - StreamingUTF8Validator: fails on the first invalid UTF-8 sequence
//   - CountingReader: tracks raw bytes consumed
//   - ContextReader: stops reading once a context is done

import (
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned by StreamingUTF8Validator for malformed input.
var ErrInvalidUTF8 = errors.New("encoding error: invalid UTF-8 sequence")

var utf8BOM = [3]byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	reader  io.Reader
	checked bool
	head    []byte // bytes read during the BOM check that are not a BOM
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{reader: r}
}

// Read implements io.Reader. The first call inspects up to three bytes.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true

		var buf [3]byte
		n, err := io.ReadFull(r.reader, buf[:])
		if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
			return 0, err
		}
		if n < len(buf) || buf != utf8BOM {
			r.head = append([]byte(nil), buf[:n]...)
		}
	}

	if len(r.head) > 0 {
		n := copy(p, r.head)
		r.head = r.head[n:]
		return n, nil
	}

	return r.reader.Read(p)
}

// StreamingUTF8Validator passes bytes through unchanged and returns
// ErrInvalidUTF8 at the first malformed sequence.
//
// A multi-byte sequence split across two underlying reads is carried over
// rather than reported. Callers may read with buffers of any size.
type StreamingUTF8Validator struct {
	reader io.Reader
	buf    []byte

	// buf[start:ready] is validated and not yet returned,
	// buf[ready:end] is an incomplete trailing sequence.
	start, ready, end int

	offset int64 // bytes returned so far
	err    error // sticky terminal error, io.EOF included
}

// NewStreamingUTF8Validator creates a validator over r.
func NewStreamingUTF8Validator(r io.Reader) *StreamingUTF8Validator {
	return &StreamingUTF8Validator{
		reader: r,
		buf:    make([]byte, 32*1024),
	}
}

// Read implements io.Reader.
func (v *StreamingUTF8Validator) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for v.start == v.ready {
		if v.err != nil {
			return 0, v.err
		}
		v.fill()
	}

	n := copy(p, v.buf[v.start:v.ready])
	v.start += n
	v.offset += int64(n)
	return n, nil
}

// fill reads once from the source and validates what it got.
// Only called once every validated byte has been returned.
func (v *StreamingUTF8Validator) fill() {
	tail := copy(v.buf, v.buf[v.ready:v.end])
	v.start, v.ready, v.end = 0, 0, tail

	m, err := v.reader.Read(v.buf[v.end:])
	v.end += m
	atEOF := err == io.EOF

	valid, bad := validPrefix(v.buf[:v.end], atEOF)
	v.ready = valid

	switch {
	case bad:
		v.err = fmt.Errorf("%w at byte %d", ErrInvalidUTF8, v.offset+int64(valid))
	case err != nil:
		v.err = err
	}
}

// validPrefix returns the length of the longest valid UTF-8 prefix of data.
// bad is true when an invalid sequence follows that prefix. When final is
// false, an incomplete sequence at the very end is not counted as bad.
func validPrefix(data []byte, final bool) (valid int, bad bool) {
	if isAllASCII(data) {
		return len(data), false
	}

	i := 0
	for i < len(data) {
		if data[i] < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			if !final && !utf8.FullRune(data[i:]) {
				return i, false
			}
			return i, true
		}
		i += size
	}
	return i, false
}

// isAllASCII is the fast path: most CSV data never leaves ASCII.
func isAllASCII(data []byte) bool {
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// ContextReader fails reads with ctx.Err() once ctx is done.
type ContextReader struct {
	ctx    context.Context
	reader io.Reader
}

// NewContextReader binds r to ctx.
func NewContextReader(ctx context.Context, r io.Reader) *ContextReader {
	return &ContextReader{ctx: ctx, reader: r}
}

// Read implements io.Reader.
func (r *ContextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.reader.Read(p)
}
