package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"dbsubst/internal/cli"
	"dbsubst/internal/testutil"
)

func TestRun_Process_Exit0(t *testing.T) {
	work := t.TempDir()
	p := testutil.WriteFile(t, work, "a.txt", "foo\nkeep\nfoo\n")

	var out, err bytes.Buffer
	code := cli.Run([]string{"process", "-q", "--no-color", "--source", p, "--find", "foo", "--replace", "bar", "--output", "out.txt"}, &out, &err)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d; stderr=%s", code, err.String())
	}
	if got := testutil.ReadFile(t, filepath.Join(work, "out.txt")); got != "bar\nkeep\nbar\n" {
		t.Fatalf("unexpected output: %q", got)
	}
	if !strings.Contains(out.String(), "replacements: 2") {
		t.Fatalf("missing summary; out=\n%s", out.String())
	}
	if err.Len() != 0 {
		t.Fatalf("unexpected stderr: %s", err.String())
	}
}

func TestRun_DryRun_ChangesExit1(t *testing.T) {
	work := t.TempDir()
	p := testutil.WriteFile(t, work, "a.txt", "foo\nkeep\nfoo\n")

	var out, err bytes.Buffer
	code := cli.Run([]string{"process", "-q", "--no-color", "--dry-run", "--source", p, "--find", "foo", "--replace", "bar", "--output", "out.txt"}, &out, &err)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d; stderr=%s", code, err.String())
	}
	got := out.String()
	if !strings.Contains(got, "-foo") || !strings.Contains(got, "+bar") {
		t.Fatalf("expected diff lines; out=\n%s", got)
	}
}

func TestRun_DB_PatternMissing_Exit2(t *testing.T) {
	work := t.TempDir()
	p := testutil.WriteFile(t, work, "user.sql", "SELECT 1;\n")

	var out, err bytes.Buffer
	code := cli.Run([]string{"process", "-q", "--no-color", "--db", "--source", p, "--output", "out.sql"}, &out, &err)
	if code != 2 {
		t.Fatalf("expected exit 2, got %d", code)
	}
	if !strings.Contains(err.String(), "missing required password patterns") {
		t.Fatalf("unexpected stderr: %s", err.String())
	}
}
