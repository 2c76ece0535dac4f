package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/windjammer-lang/windjammer/internal/cli"
	"github.com/windjammer-lang/windjammer/internal/codegen"
	"github.com/windjammer-lang/windjammer/internal/compiler"
)

func runWJ(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv(cli.StdlibEnv, filepath.Join(t.TempDir(), "no-stdlib"))
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	be.Err(t, os.WriteFile(path, []byte(content), 0o644), nil)
	return path
}

func TestRunVersionAndHelp(t *testing.T) {
	code, out, _ := runWJ(t, "version")
	be.Equal(t, code, 0)
	be.True(t, strings.HasPrefix(out, "wj v"+cli.Version))

	code, out, _ = runWJ(t, "help")
	be.Equal(t, code, 0)
	for _, c := range commands {
		be.True(t, strings.Contains(out, c.Name))
	}

	code, _, errOut := runWJ(t, "transpile")
	be.Equal(t, code, 2)
	be.True(t, strings.Contains(errOut, "unknown command: transpile"))

	code, _, errOut = runWJ(t, "build")
	be.Equal(t, code, 2)
	be.True(t, strings.Contains(errOut, "insufficient arguments"))
}

func TestRunBuild(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "hello.wj", "fn main() {\n    println(\"hello\")\n}\n")
	outDir := filepath.Join(dir, "out")

	code, out, errOut := runWJ(t, "build", "-o", outDir, src)
	be.Equal(t, code, 0)
	be.Equal(t, errOut, "")
	be.True(t, strings.Contains(out, "built 1 file(s)"))

	rs, err := os.ReadFile(filepath.Join(outDir, "hello.rs"))
	be.Err(t, err, nil)
	be.True(t, strings.Contains(string(rs), `println!("hello");`))

	code, _, _ = runWJ(t, "build", "-target", "go", "-o", outDir, src)
	be.Equal(t, code, 0)
	_, err = os.Stat(filepath.Join(outDir, "hello.go"))
	be.Err(t, err, nil)
}

func TestRunCheckReportsDiagnostics(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.wj", "fn main() {}\n")
	bad := writeFile(t, dir, "bad.wj", "fn main() {\n    let = 5\n}\n")

	code, out, errOut := runWJ(t, "check", dir)
	be.Equal(t, code, 1)
	be.Equal(t, out, "")
	be.True(t, strings.Contains(errOut, bad+":2:"))
	be.True(t, strings.Contains(errOut, "error:"))
	be.True(t, strings.Contains(errOut, "let = 5"))

	code, out, _ = runWJ(t, "check", filepath.Join(dir, "good.wj"))
	be.Equal(t, code, 0)
	be.Equal(t, out, "1 file(s) checked, no errors\n")
}

func TestRunRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "hello.wj", "fn main() {}\n")
	cfg := writeFile(t, dir, "wj.json", `{"target": "cobol"}`)

	code, _, errOut := runWJ(t, "build", "-config", cfg, src)
	be.Equal(t, code, 1)
	be.True(t, strings.Contains(errOut, "unknown target"))
}

func TestClassifyInput(t *testing.T) {
	tests := []struct {
		input   string
		state   inputState
		wrapped bool
	}{
		{"fn add(a: int, b: int) -> int { a + b }", inputComplete, false},
		{"let x = 5\nprintln(\"{x}\")", inputComplete, true},
		{"fn add(a: int, b: int) -> int {", inputIncomplete, false},
		{"if ready {", inputIncomplete, false},
		{"fn (", inputInvalid, false},
	}
	for i, tt := range tests {
		src, state, _ := classifyInput(tt.input)
		if state != tt.state {
			t.Errorf("tests[%d] - state wrong. expected=%d, got=%d", i, tt.state, state)
		}
		if wrapped := strings.HasPrefix(src, "fn main() {\n"); wrapped != tt.wrapped {
			t.Errorf("tests[%d] - wrapping wrong. expected=%v, got=%v", i, tt.wrapped, wrapped)
		}
	}
}

func TestSession(t *testing.T) {
	var out, errOut bytes.Buffer
	opts := compiler.Options{StdlibDir: filepath.Join(t.TempDir(), "no-stdlib")}
	s := newSession(opts, nil, &out, &errOut, false)

	s.eval(context.Background(), `fn greet(name: string) { println("Hi {name}") }`)
	be.True(t, strings.Contains(out.String(), `println!("Hi {}", name);`))

	out.Reset()
	be.True(t, !s.command(":target go"))
	be.Equal(t, s.target, codegen.TargetGo)
	s.eval(context.Background(), `fn greet(name: string) { println("Hi {name}") }`)
	be.True(t, strings.Contains(out.String(), "func greet(name string) {"))

	s.eval(context.Background(), `fn f() { let inc = |x| x + 1 }`)
	be.True(t, strings.Contains(errOut.String(), "closure"))

	be.True(t, !s.command(":target cobol"))
	be.Equal(t, s.target, codegen.TargetGo)
	be.True(t, s.command(":quit"))
}
