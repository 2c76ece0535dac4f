package testing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

const sample = "# Suite\n\n" +
	"Prose is ignored.\n\n" +
	"```\nplain block\n```\n\n" +
	"## Test: add\n\n" +
	"```windjammer\nfn add(a: int, b: int) -> int { a + b }\n```\n\n" +
	"```rust\nfn add(a: i64, b: i64) -> i64 {\n    a + b\n```\n\n" +
	"```rust-absent\n.clone()\n```\n\n" +
	"## Test: broken\n\n" +
	"```windjammer\nfn (\n```\n\n" +
	"```compile-error\nexpected\n```\n"

func TestExtractCases(t *testing.T) {
	cases, err := ExtractCases(sample)
	be.Err(t, err, nil)
	be.Equal(t, len(cases), 2)

	add := cases[0]
	be.Equal(t, add.Name, "add")
	be.Equal(t, add.Input, "fn add(a: int, b: int) -> int { a + b }\n")
	be.Equal(t, add.Line, 9)
	be.Equal(t, len(add.Assertions), 2)
	be.Equal(t, add.Assertions[0].Kind, AssertRust)
	be.Equal(t, add.Assertions[0].Lines(), []string{"fn add(a: i64, b: i64) -> i64 {", "a + b"})
	be.Equal(t, add.Assertions[1].Kind, AssertRustAbsent)

	broken := cases[1]
	be.Equal(t, broken.Name, "broken")
	be.Equal(t, broken.Assertions[0].Kind, AssertCompileError)
	be.Equal(t, broken.Assertions[0].Content, "expected")
}

func TestExtractCasesErrors(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		message  string
	}{
		{"fence outside a case", "```rust\nfn f() {}\n```\n", "outside of a test case"},
		{"no input", "## Test: x\n\n```rust\nfn f() {}\n```\n", "has no windjammer fence"},
		{"no assertions", "## Test: x\n\n```windjammer\nfn f() {}\n```\n", "has no assertion fences"},
		{"unknown fence", "## Test: x\n\n```windjammer\nfn f() {}\n```\n\n```python\nx\n```\n", "unknown fence language"},
		{"two inputs", "## Test: x\n\n```windjammer\na\n```\n\n```windjammer\nb\n```\n", "multiple windjammer fences"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractCases(tt.markdown)
			be.Err(t, err)
			be.True(t, strings.Contains(err.Error(), tt.message))
		})
	}
}

func TestRunCase(t *testing.T) {
	calls := make(map[AssertionKind]int)
	compile := func(_ context.Context, name, source string, kind AssertionKind) (string, error) {
		calls[kind]++
		switch {
		case strings.Contains(source, "fn ("):
			return "", errors.New("parse error: expected identifier")
		case kind == AssertGo:
			return "func add(a int, b int) int {\n\treturn a + b\n}\n", nil
		}
		return "fn add(a: i64, b: i64) -> i64 {\n    a + b\n}\n", nil
	}
	tf := NewTestFramework(nil, compile)

	cases, err := ExtractCases(sample)
	be.Err(t, err, nil)

	for _, c := range cases {
		result := tf.RunCase(&c)
		be.True(t, result.Success)
		be.Equal(t, len(result.Failures), 0)
	}
	be.Equal(t, calls[AssertRust], 1)

	failing := &Case{
		Name:  "mismatch",
		Input: "fn add(a: int, b: int) -> int { a + b }",
		Assertions: []Assertion{
			{Kind: AssertGo, Content: "func add(a, b int) int {", Line: 3},
			{Kind: AssertRustAbsent, Content: "a + b", Line: 9},
			{Kind: AssertCompileError, Content: "boom", Line: 12},
		},
	}
	result := tf.RunCase(failing)
	be.True(t, !result.Success)
	be.Equal(t, len(result.Failures), 3)
	be.True(t, strings.HasPrefix(result.Failures[0], "line 3: go: missing"))
	be.True(t, strings.HasPrefix(result.Failures[1], "line 9: rust-absent: unexpected"))
	be.True(t, strings.HasPrefix(result.Failures[2], "line 12: compile-error: compilation succeeded"))
}

func TestContainsLine(t *testing.T) {
	tests := []struct {
		out, want string
		expected  bool
	}{
		{"fn main() {\n    println!(\"hi\");\n}", "println!(\"hi\");", true},
		{"let  x =\t5;", "let x = 5;", true},
		{"let x = 5;", "let x = 6;", false},
	}
	for i, tt := range tests {
		if got := ContainsLine(tt.out, tt.want); got != tt.expected {
			t.Errorf("tests[%d] - ContainsLine wrong. expected=%v, got=%v", i, tt.expected, got)
		}
	}
}

func TestReporterOutput(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTestReporter(&buf)
	pass := &TestResult{Success: true}
	fail := &TestResult{Failures: []string{"line 1: rust: missing"}}
	tr.ReportTestResult("ok", pass)
	tr.ReportTestResult("bad", fail)
	tr.ReportSummary([]*TestResult{pass, fail})

	out := buf.String()
	for _, want := range []string{"[PASS] ok", "[FAIL] bad", "Error: line 1: rust: missing", "Total: 2, Passed: 1, Failed: 1", "SOME TESTS FAILED"} {
		be.True(t, strings.Contains(out, want))
	}
}
