package randstr

import (
	"crypto/rand"
	"io"
	"math/big"
	"strings"

	"gitlab.com/tozd/go/errors"
)

const (
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Digits    = "0123456789"
)

var ErrInvalidArgument = errors.Base("invalid argument")

// source is the entropy reader; replaced in tests.
var source io.Reader = rand.Reader

// Charset selects which character classes may appear in a generated string.
// At least one flag must be set.
type Charset struct {
	Upper  bool
	Lower  bool
	Digits bool
}

// All enables every character class.
var All = Charset{Upper: true, Lower: true, Digits: true}

// Alphabet concatenates the enabled classes in a fixed order: A-Z, a-z, 0-9.
func (c Charset) Alphabet() string {
	var b strings.Builder
	if c.Upper {
		b.WriteString(Uppercase)
	}
	if c.Lower {
		b.WriteString(Lowercase)
	}
	if c.Digits {
		b.WriteString(Digits)
	}
	return b.String()
}

// Empty reports whether no character class is enabled.
func (c Charset) Empty() bool { return !c.Upper && !c.Lower && !c.Digits }

// Names returns short labels for the enabled classes, used in status output.
func (c Charset) Names() []string {
	var out []string
	if c.Upper {
		out = append(out, "UC")
	}
	if c.Lower {
		out = append(out, "lc")
	}
	if c.Digits {
		out = append(out, "numbers")
	}
	return out
}

// Generate returns length characters drawn independently and uniformly from
// the alphabet implied by cs, using crypto/rand.
func Generate(length int, cs Charset) (string, error) {
	if length <= 0 {
		return "", errors.Errorf("%w: length must be a positive number", ErrInvalidArgument)
	}
	alphabet := cs.Alphabet()
	if alphabet == "" {
		return "", errors.Errorf("%w: at least one character type must be selected", ErrInvalidArgument)
	}

	out := make([]byte, length)
	n := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(source, n)
		if err != nil {
			return "", errors.Errorf("reading random source: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
