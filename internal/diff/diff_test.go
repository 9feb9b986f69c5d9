package diff

import (
	"strings"
	"testing"
)

func TestHasChanges(t *testing.T) {
	if HasChanges("a", "a") {
		t.Fatalf("expected no changes")
	}
	if !HasChanges("a", "b") {
		t.Fatalf("expected changes")
	}
}

func TestDiff_NoChanges(t *testing.T) {
	out, changed, err := Diff("foo", "foo", Options{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if changed {
		t.Fatalf("expected unchanged")
	}
	if out != "" {
		t.Fatalf("expected empty diff, got %q", out)
	}
}

func TestDiff_SimpleChange(t *testing.T) {
	before := "foo\nbar\n"
	after := "foo\nbaz\n"
	out, changed, err := Diff(before, after, Options{Context: 1})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !changed {
		t.Fatalf("expected changes")
	}
	if !strings.Contains(out, "-bar\n") || !strings.Contains(out, "+baz\n") {
		t.Fatalf("diff missing expected lines:\n%s", out)
	}
	if !strings.Contains(out, " foo\n") {
		t.Fatalf("expected context line:\n%s", out)
	}
}

func TestDiff_MultipleChanges(t *testing.T) {
	before := "one\ntwo\nthree\n"
	after := "ONE\ntwo\nTHREE\n"
	out, changed, err := Diff(before, after, Options{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !changed {
		t.Fatalf("expected changes")
	}
	if !strings.Contains(out, "-one") || !strings.Contains(out, "+ONE") {
		t.Fatalf("diff missing one->ONE: %s", out)
	}
	if !strings.Contains(out, "-three") || !strings.Contains(out, "+THREE") {
		t.Fatalf("diff missing three->THREE: %s", out)
	}
}

func TestDiff_Colorized(t *testing.T) {
	out, changed, err := Diff("a\n", "b\n", Options{Color: true})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !changed {
		t.Fatalf("expected changes")
	}
	if !strings.Contains(out, "\x1b[31m-a") || !strings.Contains(out, "\x1b[32m+b") {
		t.Fatalf("expected ANSI colors, got: %q", out)
	}
}

func TestDiff_IncludesHeadersWhenChanged(t *testing.T) {
	out, changed, err := Diff("x\n", "y\n", Options{FromName: "db.sql", ToName: "db_2025_07_28.sql"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !changed {
		t.Fatalf("expected changes")
	}
	if !strings.Contains(out, "--- db.sql") || !strings.Contains(out, "+++ db_2025_07_28.sql") {
		t.Fatalf("missing diff headers:\n%s", out)
	}
	if !strings.Contains(out, "@@ ") {
		t.Fatalf("missing hunk header:\n%s", out)
	}
}

func TestDiff_DefaultHeaders(t *testing.T) {
	out, _, err := Diff("x\n", "y\n", Options{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !strings.Contains(out, "--- before") || !strings.Contains(out, "+++ after") {
		t.Fatalf("missing default headers:\n%s", out)
	}
}

func TestDiff_NoColor_HasNoANSI(t *testing.T) {
	out, changed, err := Diff("a\n", "b\n", Options{Color: false})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !changed {
		t.Fatalf("expected changes")
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected ANSI escapes: %q", out)
	}
}

func TestDiff_TrailingNewlineDifference_Ignored(t *testing.T) {
	out, changed, err := Diff("a", "a\n", Options{})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if changed {
		t.Fatalf("trailing newline difference should be ignored; got diff:\n%s", out)
	}
}

func TestDiff_TrailingNewlineDifference_Strict(t *testing.T) {
	_, changed, err := Diff("a", "a\n", Options{StrictEOL: true})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !changed {
		t.Fatalf("expected change with StrictEOL")
	}
}

func TestDiff_ContextLimitsOutput(t *testing.T) {
	before := "1\n2\n3\n4\n5\n6\n7\n8\n9\n"
	after := "1\n2\n3\n4\nFIVE\n6\n7\n8\n9\n"
	narrow, _, err := Diff(before, after, Options{Context: 0})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	wide, _, err := Diff(before, after, Options{Context: 3})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if strings.Contains(narrow, " 4\n") {
		t.Fatalf("context 0 should not include neighbours:\n%s", narrow)
	}
	if !strings.Contains(wide, " 4\n") || !strings.Contains(wide, " 6\n") {
		t.Fatalf("context 3 should include neighbours:\n%s", wide)
	}
}
