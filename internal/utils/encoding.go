package utils

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrUnsupportedEncoding is returned for encodings that cannot be split on the '\n' byte.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// Encodings whose byte streams are not ASCII-compatible, so a line cannot be
// located by scanning for '\n'.
var lineUnsafeEncodings = map[string]struct{}{
	"utf-16be":    {},
	"utf-16le":    {},
	"iso-2022-jp": {},
	"replacement": {},
}

// LookupEncoding resolves a WHATWG encoding label such as "latin1",
// "windows-1252" or "shift_jis". An empty label and UTF-8 both return nil,
// which callers treat as "match on raw bytes".
func LookupEncoding(label string) (encoding.Encoding, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnsupportedEncoding, label, err)
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnsupportedEncoding, label, err)
	}
	if _, unsafe := lineUnsafeEncodings[name]; unsafe {
		return nil, fmt.Errorf("%w %q: not line-splittable", ErrUnsupportedEncoding, label)
	}
	if name == "utf-8" {
		return nil, nil
	}
	return enc, nil
}
