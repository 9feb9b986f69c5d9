package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// status prints user-facing result lines. Structured logs go to zerolog.
type status struct {
	out   io.Writer
	green *color.Color
	red   *color.Color
	cyan  *color.Color
}

func newStatus(out io.Writer, noColor bool) *status {
	s := &status{
		out:   out,
		green: color.New(color.FgGreen),
		red:   color.New(color.FgRed),
		cyan:  color.New(color.FgCyan),
	}
	if noColor {
		for _, c := range []*color.Color{s.green, s.red, s.cyan} {
			c.DisableColor()
		}
	}
	return s
}

func (s *status) Success(format string, args ...any) {
	fmt.Fprintln(s.out, s.green.Sprintf(format, args...))
}

func (s *status) Error(title string, err error) {
	fmt.Fprintf(s.out, "%s %s\n", s.red.Sprintf("error: %s:", title), err)
}

func (s *status) Info(format string, args ...any) {
	fmt.Fprintln(s.out, s.cyan.Sprintf(format, args...))
}

// Plain prints without decoration so the line can be captured by scripts.
func (s *status) Plain(line string) {
	fmt.Fprintln(s.out, line)
}
