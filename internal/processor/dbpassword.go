package processor

import (
	"regexp"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// Keywords anchoring the quoted literals on the first line of a DB script,
// e.g. ALTER USER 'u'@'h' IDENTIFIED BY "new" REPLACE "current";
const (
	IntroducerKeyword = "BY"
	ReplaceKeyword    = "REPLACE"
)

var (
	introducerRE = regexp.MustCompile(`\b` + IntroducerKeyword + `\s+"([^"\r\n]+)"`)
	replaceRE    = regexp.MustCompile(`\b` + ReplaceKeyword + `\s+"([^"\r\n]+)"`)
)

// DBPasswords holds the quoted values found on the first line.
type DBPasswords struct {
	// Introduced is the value after BY.
	Introduced string
	// Current is the value after REPLACE.
	Current string

	// byte offsets of Current's quoted span (quotes included) within the line
	currentStart, currentEnd int
}

// firstLine returns content up to the first line terminator.
func firstLine(content string) string {
	if i := strings.IndexAny(content, "\r\n"); i >= 0 {
		return content[:i]
	}
	return content
}

// ExtractDBPasswords locates BY "x" followed later on the same first line by
// REPLACE "y". Keywords are case sensitive.
func ExtractDBPasswords(content string) (DBPasswords, error) {
	line := firstLine(content)

	by := introducerRE.FindStringSubmatchIndex(line)
	if by == nil {
		return DBPasswords{}, missingPatterns()
	}
	rest := line[by[1]:]
	rp := replaceRE.FindStringSubmatchIndex(rest)
	if rp == nil {
		return DBPasswords{}, missingPatterns()
	}

	off := by[1]
	return DBPasswords{
		Introduced: line[by[2]:by[3]],
		Current:    rest[rp[2]:rp[3]],
		// the capture group sits directly inside the quotes
		currentStart: off + rp[2] - 1,
		currentEnd:   off + rp[3] + 1,
	}, nil
}

func missingPatterns() error {
	return errors.Errorf(`%w: missing required password patterns: expected %s "..." followed by %s "..." on the first line`,
		ErrValidation, IntroducerKeyword, ReplaceKeyword)
}

func validatePassword(pw string) error {
	if pw == "" {
		return errors.Errorf("%w: password must not be empty", ErrInvalidArgument)
	}
	if strings.ContainsAny(pw, "\"\r\n") {
		return errors.Errorf("%w: password must not contain quotes or line breaks", ErrInvalidArgument)
	}
	return nil
}

// ReplaceDBPassword replaces the quoted value after REPLACE on the first
// line with newPassword. The BY value and everything else are untouched.
func ReplaceDBPassword(content, newPassword string) (string, error) {
	if err := validatePassword(newPassword); err != nil {
		return "", err
	}
	pw, err := ExtractDBPasswords(content)
	if err != nil {
		return "", err
	}
	return content[:pw.currentStart] + `"` + newPassword + `"` + content[pw.currentEnd:], nil
}

// RotateDBPasswords replaces, across the whole content, every occurrence of
// the BY value with newPassword and every occurrence of the REPLACE value
// with the old BY value. The returned count is the total replacements made.
func RotateDBPasswords(content, newPassword string) (string, int, error) {
	if err := validatePassword(newPassword); err != nil {
		return "", 0, err
	}
	pw, err := ExtractDBPasswords(content)
	if err != nil {
		return "", 0, err
	}
	if pw.Introduced == pw.Current {
		return "", 0, errors.Errorf("%w: %s and %s values are identical", ErrValidation, IntroducerKeyword, ReplaceKeyword)
	}
	olds := []string{pw.Introduced, pw.Current}
	news := []string{newPassword, pw.Introduced}
	// longest match first so a value that prefixes the other cannot split it
	if len(pw.Current) > len(pw.Introduced) {
		olds[0], olds[1] = olds[1], olds[0]
		news[0], news[1] = news[1], news[0]
	}
	out, n := replaceEach(content, olds, news)
	return out, n, nil
}

// replaceEach scans content once, left to right, replacing the first of
// olds that matches at each position. Replaced text is never rescanned.
func replaceEach(content string, olds, news []string) (string, int) {
	var b strings.Builder
	b.Grow(len(content))
	n := 0
next:
	for i := 0; i < len(content); {
		for k, old := range olds {
			if strings.HasPrefix(content[i:], old) {
				b.WriteString(news[k])
				i += len(old)
				n++
				continue next
			}
		}
		b.WriteByte(content[i])
		i++
	}
	return b.String(), n
}
