package naming

import (
	"path/filepath"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// DateLayout is the suffix format inserted before the extension.
const DateLayout = "2006_01_02"

var ErrInvalidState = errors.Base("invalid state")

// Clock supplies the current local time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock in local time.
var SystemClock Clock = ClockFunc(time.Now)

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// SplitExt splits a file name at its last dot. The extension keeps the dot.
// A name without a dot has an empty extension.
func SplitExt(name string) (base, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// DefaultOutputName derives base_YYYY_MM_DD.ext from the file name of
// source, using the local calendar date reported by clock.
func DefaultOutputName(source string, clock Clock) (string, error) {
	if source == "" {
		return "", errors.Errorf("%w: no source file has been set", ErrInvalidState)
	}
	if clock == nil {
		clock = SystemClock
	}
	base, ext := SplitExt(filepath.Base(source))
	date := clock.Now().Local().Format(DateLayout)
	return base + "_" + date + ext, nil
}
