package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"file too large", fmt.Errorf("%w: more than 10 bytes", ErrFileTooLarge), "FILE001"},
		{"csv parse error", &InputError{Op: OpParse, Err: errors.New("invalid csv: bare quote")}, "FILE002"},
		{"invalid utf-8", &InputError{Op: OpDecode, Err: fmt.Errorf("%w at byte 4", ErrInvalidUTF8)}, "FILE003"},
		{"no file", ErrNoFile, "FILE004"},
		{"missing path", openError("/tmp/x.csv", &fs.PathError{Op: "open", Path: "/tmp/x.csv", Err: errors.New("no such file or directory")}), "FILE005"},
		{"unknown encoding", &InputError{Op: OpDecode, Err: fmt.Errorf("%w: %q", ErrUnknownEncoding, "klingon")}, "FILE006"},
		{"permission denied", errors.New("open data.csv: permission denied"), "FILE007"},
		{"bad delimiter", fmt.Errorf("%w: %q", ErrInvalidDelimiter, '"'), "VAL001"},
		{"bad json", errors.New("invalid json input: unexpected EOF"), "VAL002"},
		{"integer range", errors.New("element 0: integer out of range: 99999999999999999999"), "VAL003"},
		{"busy", ErrBusy, "RUN001"},
		{"canceled", context.Canceled, "RUN002"},
		{"deadline", fmt.Errorf("read: %w", context.DeadlineExceeded), "RUN003"},
		{"timeout", errors.New("i/o timeout"), "RUN003"},
		{"rate limit", errors.New("rate limit exceeded"), "RATE001"},
		{"case insensitive", errors.New("FILE TOO LARGE"), "FILE001"},
		{"unknown error", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestMapError_FirstMatchWins(t *testing.T) {
	// "encoding error" is listed before "unknown encoding"
	err := errors.New("encoding error: unknown encoding")
	if got := MapError(err).Code; got != "FILE003" {
		t.Errorf("Code = %q, want FILE003", got)
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrBusy)
	if !strings.Contains(got, "(Code: RUN001)") {
		t.Errorf("FormatUserError(ErrBusy) = %q, missing code", got)
	}
	if !strings.HasPrefix(got, "Too many computations in progress") {
		t.Errorf("FormatUserError(ErrBusy) = %q, want message first", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("IsUserFacing(nil) = true")
	}
	if !IsUserFacing(ErrFileTooLarge) {
		t.Error("IsUserFacing(ErrFileTooLarge) = false")
	}
	if IsUserFacing(errors.New("segfault")) {
		t.Error("IsUserFacing(unmatched) = true")
	}
}

func TestErrorPatterns_UniqueAndLowercase(t *testing.T) {
	seen := make(map[string]bool)
	for _, ep := range errorPatterns {
		if ep.pattern != strings.ToLower(ep.pattern) {
			t.Errorf("pattern %q is not lowercase", ep.pattern)
		}
		if seen[ep.pattern] {
			t.Errorf("duplicate pattern %q", ep.pattern)
		}
		seen[ep.pattern] = true
		if ep.msg.Code == "" || ep.msg.Message == "" {
			t.Errorf("pattern %q has incomplete message %+v", ep.pattern, ep.msg)
		}
	}
}
