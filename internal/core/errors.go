package core

import (
	"errors"
	"fmt"
	"io/fs"
)

// Operations recorded on an InputError.
const (
	OpOpen   = "open"
	OpDecode = "decode"
	OpRead   = "read"
	OpParse  = "parse"
)

var (
	// ErrInputAccess matches every *InputError via errors.Is.
	ErrInputAccess = errors.New("input access failure")

	// ErrInvalidDelimiter is returned for separators encoding/csv cannot use.
	ErrInvalidDelimiter = errors.New("invalid delimiter")

	// ErrFileTooLarge is returned when an upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoFile is returned when a request carries no file body.
	ErrNoFile = errors.New("no file provided")
)

// InputError reports a failure to open, decode or read the input.
// Malformed cell content never produces one.
type InputError struct {
	Op   string // one of the Op* constants
	Path string // empty for reader input
	Err  error
}

func (e *InputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrInputAccess) hold for any InputError.
func (e *InputError) Is(target error) bool {
	return target == ErrInputAccess
}

// openError strips the *fs.PathError layer so the path is not printed twice.
func openError(path string, err error) *InputError {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		err = pe.Err
	}
	return &InputError{Op: OpOpen, Path: path, Err: err}
}

// readError classifies an error surfaced while scanning records.
func readError(path string, err error) *InputError {
	var ie *InputError
	if errors.As(err, &ie) {
		if ie.Path == "" {
			ie.Path = path
		}
		return ie
	}

	op := OpRead
	if errors.Is(err, ErrInvalidUTF8) {
		op = OpDecode
	}
	return &InputError{Op: op, Path: path, Err: err}
}
