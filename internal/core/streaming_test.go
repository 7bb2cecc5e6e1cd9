package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestBOMSkippingReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b\n1,2")...),
			expected: "a,b\n1,2",
		},
		{
			name:     "file without BOM",
			input:    []byte("a,b\n1,2"),
			expected: "a,b\n1,2",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "shorter than BOM",
			input:    []byte("a"),
			expected: "a",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(NewBOMSkippingReader(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestBOMSkippingReader_SmallReads(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("xyz")...)
	result, err := io.ReadAll(iotest.OneByteReader(NewBOMSkippingReader(bytes.NewReader(input))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != "xyz" {
		t.Errorf("got %q, want %q", result, "xyz")
	}
}

func TestStreamingUTF8Validator(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantOut string
		wantErr bool
		errAt   string
	}{
		{name: "ascii", input: "age,score\n30,91", wantOut: "age,score\n30,91"},
		{name: "multibyte", input: "名前,café\n1,2", wantOut: "名前,café\n1,2"},
		{name: "empty", input: "", wantOut: ""},
		{name: "invalid byte", input: "ab\xffcd", wantOut: "ab", wantErr: true, errAt: "at byte 2"},
		{name: "truncated at EOF", input: "ab\xc3", wantOut: "ab", wantErr: true, errAt: "at byte 2"},
		{name: "overlong encoding", input: "\xc0\xaf", wantOut: "", wantErr: true, errAt: "at byte 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := io.ReadAll(NewStreamingUTF8Validator(strings.NewReader(tt.input)))
			if string(out) != tt.wantOut {
				t.Errorf("output = %q, want %q", out, tt.wantOut)
			}
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidUTF8) {
				t.Fatalf("error = %v, want ErrInvalidUTF8", err)
			}
			if !strings.Contains(err.Error(), tt.errAt) {
				t.Errorf("error %q does not contain %q", err, tt.errAt)
			}
		})
	}
}

func TestStreamingUTF8Validator_SplitSequence(t *testing.T) {
	// One byte per underlying read splits every multi-byte rune.
	input := "é€😀,x"
	out, err := io.ReadAll(NewStreamingUTF8Validator(iotest.OneByteReader(strings.NewReader(input))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != input {
		t.Errorf("output = %q, want %q", out, input)
	}
}

func TestStreamingUTF8Validator_DataWithEOF(t *testing.T) {
	input := "naïve"
	out, err := io.ReadAll(NewStreamingUTF8Validator(iotest.DataErrReader(strings.NewReader(input))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != input {
		t.Errorf("output = %q, want %q", out, input)
	}
}

func TestStreamingUTF8Validator_StickyError(t *testing.T) {
	v := NewStreamingUTF8Validator(strings.NewReader("\xff"))
	buf := make([]byte, 16)

	_, first := v.Read(buf)
	_, second := v.Read(buf)
	if !errors.Is(first, ErrInvalidUTF8) || first != second {
		t.Errorf("errors = %v, %v; want the same ErrInvalidUTF8 twice", first, second)
	}
}

func TestStreamingUTF8Validator_ReadError(t *testing.T) {
	boom := errors.New("disk gone")
	v := NewStreamingUTF8Validator(iotest.ErrReader(boom))

	_, err := v.Read(make([]byte, 16))
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
	if errors.Is(err, ErrInvalidUTF8) {
		t.Error("read failure reported as invalid UTF-8")
	}
}

func TestStreamingUTF8Validator_TinyCallerBuffer(t *testing.T) {
	input := "a€b😀"
	out, err := io.ReadAll(iotest.OneByteReader(NewStreamingUTF8Validator(strings.NewReader(input))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != input {
		t.Errorf("output = %q, want %q", out, input)
	}
}

func TestCountingReader(t *testing.T) {
	counter := NewCountingReader(strings.NewReader("hello, world"))
	if _, err := io.Copy(io.Discard, counter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter.BytesRead != 12 {
		t.Errorf("BytesRead = %d, want 12", counter.BytesRead)
	}
}

func TestContextReader(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewContextReader(ctx, strings.NewReader("abcdef"))

	buf := make([]byte, 3)
	if n, err := r.Read(buf); n != 3 || err != nil {
		t.Fatalf("Read before cancel = %d, %v", n, err)
	}

	cancel()
	if _, err := r.Read(buf); !errors.Is(err, context.Canceled) {
		t.Errorf("Read after cancel error = %v, want context.Canceled", err)
	}
}
