package diff

import (
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"gitlab.com/tozd/go/errors"
)

// Options control how the diff output is rendered.
// If Color is true, hunk headers and added/removed lines are colored
// regardless of whether the writer is a terminal.
type Options struct {
	Color bool
	// Context is the number of unchanged lines shown around each change.
	Context int
	// FromName and ToName label the two sides; default "before" and "after".
	FromName string
	ToName   string
	// StrictEOL controls whether differences in a single trailing final newline are treated as changes.
	// When true, a difference in a lone trailing newline is reported as a change. When false (default), such differences are ignored.
	StrictEOL bool
}

// HasChanges reports whether the inputs differ.
func HasChanges(before, after string) bool { return before != after }

// equalIgnoringSingleTrailingFinalNL returns true if a and b are equal, or if they differ only by a single trailing final newline.
func equalIgnoringSingleTrailingFinalNL(a, b string) bool {
	if a == b {
		return true
	}
	if strings.HasSuffix(a, "\n") && !strings.HasSuffix(b, "\n") {
		return strings.TrimSuffix(a, "\n") == b
	}
	if strings.HasSuffix(b, "\n") && !strings.HasSuffix(a, "\n") {
		return strings.TrimSuffix(b, "\n") == a
	}
	return false
}

// Diff returns a unified diff of before and after and whether there were changes.
func Diff(before, after string, opts Options) (string, bool, error) {
	// Ignore a lone trailing final newline difference by default (unless StrictEOL)
	if !opts.StrictEOL && equalIgnoringSingleTrailingFinalNL(before, after) {
		return "", false, nil
	}
	if before == after {
		return "", false, nil
	}

	from, to := opts.FromName, opts.ToName
	if from == "" {
		from = "before"
	}
	if to == "" {
		to = "after"
	}
	ctxLines := opts.Context
	if ctxLines < 0 {
		ctxLines = 0
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: from,
		ToFile:   to,
		Context:  ctxLines,
	})
	if err != nil {
		return "", false, errors.Errorf("diff: %w", err)
	}
	if !opts.Color {
		return text, true, nil
	}
	return colorize(text), true, nil
}

func colorize(text string) string {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	for _, c := range []*color.Color{red, green, cyan} {
		c.EnableColor()
	}

	lines := strings.SplitAfter(text, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]
		switch {
		case strings.HasPrefix(body, "---"), strings.HasPrefix(body, "+++"):
			b.WriteString(line)
		case strings.HasPrefix(body, "@@"):
			b.WriteString(cyan.Sprint(body) + nl)
		case strings.HasPrefix(body, "-"):
			b.WriteString(red.Sprint(body) + nl)
		case strings.HasPrefix(body, "+"):
			b.WriteString(green.Sprint(body) + nl)
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}
