package core

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrUnknownEncoding is returned for encoding names no decoder is known for.
var ErrUnknownEncoding = errors.New("unknown encoding")

// decodeFunc wraps a raw byte stream in a UTF-8 producing reader.
type decodeFunc func(io.Reader) io.Reader

// utf8Names all select the strict UTF-8 path.
var utf8Names = map[string]bool{
	"utf-8": true, "utf8": true, "u8": true, "utf": true, "cp65001": true,
	"utf-8-sig": true, "utf8-sig": true,
}

// encodingAliases covers common spellings the IANA and WHATWG indexes lack.
var encodingAliases = map[string]string{
	"latin-1": "iso-8859-1",
	"latin1":  "iso-8859-1",
	"l1":      "iso-8859-1",
	"cp1252":  "windows-1252",
	"cp1251":  "windows-1251",
	"cp1250":  "windows-1250",
	"ascii":   "us-ascii",
}

// resolveEncoding returns the reader chain for the named encoding.
//
// UTF-8 input is validated strictly (a malformed byte is an error, not a
// replacement character) and a leading BOM is dropped. Other encodings go
// through golang.org/x/text decoders.
func resolveEncoding(name string) (decodeFunc, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if key == "" || utf8Names[key] {
		return func(r io.Reader) io.Reader {
			return NewStreamingUTF8Validator(NewBOMSkippingReader(r))
		}, nil
	}

	enc, err := lookupEncoding(key)
	if err != nil {
		return nil, err
	}
	return func(r io.Reader) io.Reader {
		return enc.NewDecoder().Reader(r)
	}, nil
}

// lookupEncoding tries the IANA registry first, then the WHATWG label set.
func lookupEncoding(key string) (encoding.Encoding, error) {
	if alias, ok := encodingAliases[key]; ok {
		key = alias
	}
	if enc, err := ianaindex.IANA.Encoding(key); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(key); err == nil && enc != nil {
		return enc, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, key)
}
