// Package textenc converts file bytes to text and back using one named
// encoding. Content that does not fit the encoding is an error; there is no
// detection.
package textenc

import (
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Default is the encoding used when none is configured.
const Default = "utf-8"

var (
	ErrUnknownEncoding = errors.Base("unknown encoding")
	ErrMismatch        = errors.Base("content does not match encoding")
)

// Codec decodes and encodes text in a single encoding.
type Codec struct {
	name string
	enc  encoding.Encoding // nil for utf-8
}

// New resolves name (any WHATWG label such as "utf-8", "latin1",
// "windows-1252", "shift_jis") to a Codec. An empty name selects Default.
func New(name string) (Codec, error) {
	if name == "" {
		name = Default
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return Codec{}, errors.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		canonical = strings.ToLower(name)
	}
	if canonical == "utf-8" {
		return Codec{name: canonical}, nil
	}
	return Codec{name: canonical, enc: enc}, nil
}

// Name returns the canonical encoding name.
func (c Codec) Name() string {
	if c.name == "" {
		return Default
	}
	return c.name
}

// Decode converts raw file bytes to text.
func (c Codec) Decode(data []byte) (string, error) {
	if c.enc == nil {
		if !utf8.Valid(data) {
			return "", errors.Errorf("%w: %s", ErrMismatch, c.Name())
		}
		return string(data), nil
	}
	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", errors.Errorf("%w: %s: %v", ErrMismatch, c.Name(), err)
	}
	return string(out), nil
}

// Encode converts text back to bytes. Runes the encoding cannot represent
// are an error.
func (c Codec) Encode(text string) ([]byte, error) {
	if c.enc == nil {
		if !utf8.ValidString(text) {
			return nil, errors.Errorf("%w: %s", ErrMismatch, c.Name())
		}
		return []byte(text), nil
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, errors.Errorf("%w: %s: %v", ErrMismatch, c.Name(), err)
	}
	return out, nil
}
