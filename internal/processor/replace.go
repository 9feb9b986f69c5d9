package processor

import "strings"

// ReplaceAll replaces every non-overlapping occurrence of find with repl,
// scanning left to right across the whole content, and returns the new
// content with the number of replacements. An empty find is a no-op.
func ReplaceAll(content, find, repl string) (string, int) {
	// Empty pattern must be a no-op; otherwise strings.ReplaceAll would inject `repl` between every rune
	if find == "" {
		return content, 0
	}
	n := strings.Count(content, find)
	if n == 0 {
		return content, 0
	}
	return strings.ReplaceAll(content, find, repl), n
}
