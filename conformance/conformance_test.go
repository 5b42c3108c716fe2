package conformance

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/stackcalc/calc"
)

func TestShippedSuites(t *testing.T) {
	suites, err := LoadDir("testdata")
	if err != nil {
		t.Fatalf("Failed to load suites: %v", err)
	}
	if len(suites) == 0 {
		t.Fatal("No suites loaded")
	}

	e := calc.New()
	for _, suite := range suites {
		t.Run(suite.Name, func(t *testing.T) {
			rep := Run(suite, e)
			for _, res := range rep.Results {
				t.Run(res.Case.Name, func(t *testing.T) {
					if res.Skipped {
						t.Skipf("Skipped: %s", res.SkipReason)
					} else if !res.Passed {
						t.Errorf("Test failed: %v", res.Error)
					}
				})
			}
			t.Logf("%s", rep)
		})
	}
}

func writeSuite(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suite.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeSuite(t, `
name: small
tests:
  - name: one
    expr: "1"
    want: 1
  - name: zero is a value
    expr: "0"
    want: 0
  - name: boom
    expr: "(/ 1 0)"
    error: DivisionByZero
`)
	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if s.Name != "small" || len(s.Tests) != 3 {
		t.Fatalf("suite = %+v", s)
	}
	if s.Tests[1].Want == nil || *s.Tests[1].Want != 0 {
		t.Errorf("want: 0 should decode to a non-nil zero")
	}
	if s.File != path {
		t.Errorf("File = %q, want %q", s.File, path)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad yaml", "tests: [", "yaml"},
		{"empty", "name: x\n", "no tests"},
		{"neither", "tests:\n  - name: a\n    expr: \"1\"\n", "exactly one"},
		{"both", "tests:\n  - name: a\n    expr: \"1\"\n    want: 1\n    error: DivisionByZero\n", "exactly one"},
		{"unknown kind", "tests:\n  - name: a\n    expr: \"1\"\n    error: Overflow\n", "unknown error kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeSuite(t, tt.content))
			if err == nil {
				t.Fatal("LoadFile succeeded")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRunReport(t *testing.T) {
	path := writeSuite(t, `
name: mixed
tests:
  - name: pass
    expr: "(+ 1 2)"
    want: 3
  - name: wrong value
    expr: "(+ 1 2)"
    want: 4
  - name: wrong kind
    expr: "(/ 1 0)"
    error: StackUnderflow
  - name: missing error
    expr: "1"
    error: DivisionByZero
  - name: unexpected error
    expr: "(+ 1"
    want: 1
  - name: later
    expr: "1"
    want: 1
    skip: "not yet"
`)
	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	rep := Run(s, calc.New())
	if rep.Passed != 1 || rep.Failed != 4 || rep.Skipped != 1 {
		t.Errorf("report = %s", rep)
	}
	if rep.OK() {
		t.Error("OK() = true with failures")
	}
	if rep.Results[5].SkipReason != "not yet" {
		t.Errorf("SkipReason = %q", rep.Results[5].SkipReason)
	}

	var buf bytes.Buffer
	rep.Write(&buf)
	out := buf.String()
	if strings.Count(out, "FAIL ") != 4 {
		t.Errorf("Write output:\n%s", out)
	}
	if !strings.Contains(out, "mixed: 1 passed, 4 failed, 1 skipped (6 total)") {
		t.Errorf("Write output missing summary:\n%s", out)
	}
}
