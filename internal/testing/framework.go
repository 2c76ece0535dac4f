// Package testing runs Markdown golden cases against the compiler.
package testing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestConfig contains configuration for test execution
type TestConfig struct {
	Timeout time.Duration
	Verbose bool
}

// DefaultTestConfig returns a default test configuration
func DefaultTestConfig() *TestConfig {
	return &TestConfig{
		Timeout: 30 * time.Second,
	}
}

// CompileFunc compiles source and returns the artifact an assertion kind
// inspects: Rust source, Go source or wasm TypeScript declarations.
type CompileFunc func(ctx context.Context, name, source string, kind AssertionKind) (string, error)

// TestResult represents the result of one golden case
type TestResult struct {
	Success  bool
	Failures []string
	Duration time.Duration
}

// TestFramework checks golden cases with a compile function
type TestFramework struct {
	config  *TestConfig
	compile CompileFunc
}

// NewTestFramework creates a new test framework instance
func NewTestFramework(config *TestConfig, compile CompileFunc) *TestFramework {
	if config == nil {
		config = DefaultTestConfig()
	}
	return &TestFramework{config: config, compile: compile}
}

type artifact struct {
	out string
	err error
}

// RunCase compiles the case once per output kind it asserts on and checks
// every assertion.
func (tf *TestFramework) RunCase(c *Case) *TestResult {
	start := time.Now()
	result := &TestResult{}

	ctx := context.Background()
	if tf.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tf.config.Timeout)
		defer cancel()
	}

	artifacts := make(map[AssertionKind]artifact)
	get := func(kind AssertionKind) artifact {
		if kind == AssertRustAbsent {
			kind = AssertRust
		}
		a, ok := artifacts[kind]
		if !ok {
			a.out, a.err = tf.compile(ctx, c.Name, c.Input, kind)
			artifacts[kind] = a
		}
		return a
	}
	fail := func(a Assertion, format string, args ...interface{}) {
		result.Failures = append(result.Failures, fmt.Sprintf("line %d: %s: ", a.Line, a.Kind)+fmt.Sprintf(format, args...))
	}

	for _, a := range c.Assertions {
		art := get(a.Kind)
		switch a.Kind {
		case AssertCompileError:
			if art.err == nil {
				fail(a, "compilation succeeded but was expected to fail")
			} else if !strings.Contains(art.err.Error(), strings.TrimSpace(a.Content)) {
				fail(a, "expected error %q, got %q", strings.TrimSpace(a.Content), art.err.Error())
			}
		case AssertRustAbsent:
			if art.err != nil {
				fail(a, "compilation failed: %v", art.err)
				continue
			}
			for _, line := range a.Lines() {
				if ContainsLine(art.out, line) {
					fail(a, "unexpected %q in output:\n%s", line, art.out)
				}
			}
		default:
			if art.err != nil {
				fail(a, "compilation failed: %v", art.err)
				continue
			}
			for _, line := range a.Lines() {
				if !ContainsLine(art.out, line) {
					fail(a, "missing %q in output:\n%s", line, art.out)
				}
			}
		}
	}

	result.Success = len(result.Failures) == 0
	result.Duration = time.Since(start)
	return result
}

// ContainsLine reports whether out contains want, ignoring differences in
// whitespace.
func ContainsLine(out, want string) bool {
	return strings.Contains(squash(out), squash(want))
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// RunSuite runs every case as a subtest
func (tf *TestFramework) RunSuite(t *testing.T, cases []Case) []*TestResult {
	t.Helper()
	results := make([]*TestResult, 0, len(cases))
	for i := range cases {
		c := &cases[i]
		t.Run(c.Name, func(t *testing.T) {
			result := tf.RunCase(c)
			results = append(results, result)

			if tf.config.Verbose {
				t.Logf("Test %s completed in %v", c.Name, result.Duration)
			}
			for _, f := range result.Failures {
				t.Error(f)
			}
		})
	}
	return results
}

// LoadCases extracts the cases of every Markdown file matching pattern,
// keyed by file name without extension.
func LoadCases(pattern string) (map[string][]Case, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]Case, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		cases, err := ExtractCases(string(content))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		out[strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))] = cases
	}
	return out, nil
}

// TestReporter provides test result reporting
type TestReporter struct {
	writer io.Writer
}

// NewTestReporter creates a new test reporter
func NewTestReporter(writer io.Writer) *TestReporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &TestReporter{writer: writer}
}

// ReportTestResult reports a single test result
func (tr *TestReporter) ReportTestResult(name string, result *TestResult) {
	status := "PASS"
	if !result.Success {
		status = "FAIL"
	}

	fmt.Fprintf(tr.writer, "[%s] %s (%.2fs)\n", status, name, result.Duration.Seconds())

	for _, f := range result.Failures {
		fmt.Fprintf(tr.writer, "  Error: %s\n", f)
	}
}

// ReportSummary reports a summary of test results
func (tr *TestReporter) ReportSummary(results []*TestResult) {
	total := len(results)
	passed := 0
	totalDuration := time.Duration(0)

	for _, result := range results {
		if result.Success {
			passed++
		}
		totalDuration += result.Duration
	}

	fmt.Fprintf(tr.writer, "\n--- Test Summary ---\n")
	fmt.Fprintf(tr.writer, "Total: %d, Passed: %d, Failed: %d\n", total, passed, total-passed)
	fmt.Fprintf(tr.writer, "Total Duration: %.2fs\n", totalDuration.Seconds())

	if passed < total {
		fmt.Fprintf(tr.writer, "SOME TESTS FAILED\n")
	} else {
		fmt.Fprintf(tr.writer, "ALL TESTS PASSED\n")
	}
}
