package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dbsubst/internal/naming"
)

// July28 is the fixed date used by tests that derive dated output names.
var July28 = time.Date(2025, time.July, 28, 9, 0, 0, 0, time.Local)

// FixedClock returns a clock pinned to July28.
func FixedClock() naming.Clock { return naming.Fixed(July28) }

// WriteFile creates a file with given content, making parent directories if needed.
// It returns the absolute path to the created file.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	p := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		t.Fatalf("abs: %v", err)
	}
	return abs
}

// ReadFile returns the content of path, failing the test if it cannot be read.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
