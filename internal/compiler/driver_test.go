package compiler

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/windjammer-lang/windjammer/internal/build"
	"github.com/windjammer-lang/windjammer/internal/codegen"
	"github.com/windjammer-lang/windjammer/internal/errors"
	wjtest "github.com/windjammer-lang/windjammer/internal/testing"
)

const helloSource = `fn main() {
    println("hello")
}
`

const mathSource = `fn add(a: int, b: int) -> int { a + b }

fn main() {
    println("{}", add(1, 2))
}
`

func writeSources(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		be.Err(t, os.MkdirAll(filepath.Dir(path), 0o755), nil)
		be.Err(t, os.WriteFile(path, []byte(content), 0o644), nil)
	}
	return dir
}

func newDriver(t *testing.T, opts Options) *Driver {
	t.Helper()
	if opts.StdlibDir == "" {
		opts.StdlibDir = filepath.Join(t.TempDir(), "no-stdlib")
	}
	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Join(t.TempDir(), "out")
	}
	d, err := New(opts, nil)
	be.Err(t, err, nil)
	return d
}

func readOutput(t *testing.T, d *Driver, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(d.Options().OutputDir, name))
	be.Err(t, err, nil)
	return string(data)
}

func TestDiscover(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"b.wj":      helloSource,
		"a.wj":      helloSource,
		"notes.txt": "not source",
		"sub/c.wj":  helloSource,
	})

	files, err := Discover(dir)
	be.Err(t, err, nil)
	be.Equal(t, files, []string{filepath.Join(dir, "a.wj"), filepath.Join(dir, "b.wj")})

	single, err := Discover(filepath.Join(dir, "b.wj"))
	be.Err(t, err, nil)
	be.Equal(t, single, []string{filepath.Join(dir, "b.wj")})

	_, err = Discover(t.TempDir())
	category, ok := errors.CategoryOf(err)
	be.True(t, ok)
	be.Equal(t, category, errors.CategoryIO)

	_, err = Discover(filepath.Join(dir, "missing.wj"))
	be.Err(t, err)
}

func TestCompileFilesKeepsOrder(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"a.wj": helloSource,
		"b.wj": "fn (a: int) {}\n",
		"c.wj": mathSource,
	})
	paths, err := Discover(dir)
	be.Err(t, err, nil)

	d := newDriver(t, Options{Jobs: 2})
	results, err := d.CompileFiles(context.Background(), paths, "app")
	be.Err(t, err, nil)
	be.Equal(t, len(results), 3)

	for i, res := range results {
		be.Equal(t, res.Path, paths[i])
	}
	be.Err(t, results[0].Err, nil)
	be.Err(t, results[2].Err, nil)
	be.True(t, strings.Contains(results[2].Output.Source, "fn add(a: i64, b: i64) -> i64"))

	category, ok := errors.CategoryOf(results[1].Err)
	be.True(t, ok)
	be.Equal(t, category, errors.CategoryParser)
}

func TestCompileFilesCanceled(t *testing.T) {
	dir := writeSources(t, map[string]string{"a.wj": helloSource})
	d := newDriver(t, Options{Jobs: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.CompileFiles(ctx, []string{filepath.Join(dir, "a.wj")}, "app")
	be.Err(t, err, context.Canceled)
}

func TestBuildRustBinary(t *testing.T) {
	dir := writeSources(t, map[string]string{"hello.wj": helloSource})
	d := newDriver(t, Options{Target: codegen.TargetRust})

	report, err := d.Build(context.Background(), filepath.Join(dir, "hello.wj"))
	be.Err(t, err, nil)
	be.Equal(t, report.Written, []string{"Cargo.toml", "hello.rs"})

	be.True(t, strings.Contains(readOutput(t, d, "hello.rs"), `println!("hello");`))
	manifest := readOutput(t, d, "Cargo.toml")
	be.True(t, strings.Contains(manifest, "name = \"hello\"\n"))
	be.True(t, strings.Contains(manifest, "[[bin]]\nname = \"hello\"\npath = \"hello.rs\"\n"))
	be.True(t, !strings.Contains(manifest, "[lib]"))
}

func TestBuildLibraryWithModuleFile(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"hello.wj": helloSource,
		"math.wj":  mathSource,
	})
	d := newDriver(t, Options{Library: true, ModuleFile: true})

	report, err := d.Build(context.Background(), dir)
	be.Err(t, err, nil)
	be.Equal(t, report.Written, []string{"Cargo.toml", "hello.rs", "math.rs", "mod.rs"})

	be.Equal(t, readOutput(t, d, "mod.rs"), "pub mod hello;\npub mod math;\n\npub use hello::*;\npub use math::*;\n")
	be.True(t, !strings.Contains(readOutput(t, d, "math.rs"), "fn main"))
	be.True(t, strings.Contains(readOutput(t, d, "math.rs"), "fn add("))

	manifest := readOutput(t, d, "Cargo.toml")
	be.True(t, strings.Contains(manifest, "[lib]\npath = \"mod.rs\"\n"))
	be.True(t, !strings.Contains(manifest, "[[bin]]"))
}

func TestBuildWasm(t *testing.T) {
	dir := writeSources(t, map[string]string{"calc.wj": `@export
fn add(a: i32, b: i32) -> i32 { a + b }
`})
	d := newDriver(t, Options{Target: codegen.TargetWasm})

	report, err := d.Build(context.Background(), filepath.Join(dir, "calc.wj"))
	be.Err(t, err, nil)
	be.Equal(t, report.Written, []string{"Cargo.toml", "calc.d.ts", "index.html", "lib.rs"})

	be.True(t, strings.Contains(readOutput(t, d, "lib.rs"), "#[wasm_bindgen]"))
	be.True(t, strings.Contains(readOutput(t, d, "calc.d.ts"), "export function add(a: number, b: number): number;"))
	manifest := readOutput(t, d, "Cargo.toml")
	be.True(t, strings.Contains(manifest, "crate-type = [\"cdylib\"]"))
	be.Equal(t, strings.Count(manifest, "wasm-bindgen = "), 1)
}

func TestBuildGoPerDirectory(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"hello.wj": helloSource,
		"math.wj":  mathSource,
	})
	d := newDriver(t, Options{Target: codegen.TargetGo})

	report, err := d.Build(context.Background(), dir)
	be.Err(t, err, nil)
	be.Equal(t, report.Written, []string{
		filepath.Join("hello", "go.mod"), filepath.Join("hello", "hello.go"),
		filepath.Join("math", "go.mod"), filepath.Join("math", "math.go"),
	})
	be.Equal(t, readOutput(t, d, filepath.Join("math", "go.mod")), "module math\n\ngo 1.23\n")
	be.True(t, strings.HasPrefix(readOutput(t, d, filepath.Join("hello", "hello.go")), "package main\n"))
}

func TestBuildStopsOnErrors(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"good.wj": helloSource,
		"bad.wj":  "fn main() { let = }\n",
	})
	d := newDriver(t, Options{})

	report, err := d.Build(context.Background(), dir)
	be.Err(t, err, ErrCompileFailed)
	be.Equal(t, len(report.Failed()), 1)
	be.Equal(t, report.Failed()[0].Path, filepath.Join(dir, "bad.wj"))

	_, statErr := os.Stat(d.Options().OutputDir)
	be.True(t, os.IsNotExist(statErr))
}

func TestCheckWritesNothing(t *testing.T) {
	dir := writeSources(t, map[string]string{"hello.wj": helloSource})
	d := newDriver(t, Options{})

	report, err := d.Check(context.Background(), dir)
	be.Err(t, err, nil)
	be.Equal(t, len(report.Results), 1)
	be.Equal(t, len(report.Written), 0)

	_, statErr := os.Stat(d.Options().OutputDir)
	be.True(t, os.IsNotExist(statErr))
}

func TestCargoStep(t *testing.T) {
	tests := []struct {
		name     string
		target   codegen.Target
		check    bool
		expected string
	}{
		{"rust build", codegen.TargetRust, false, "cargo build"},
		{"wasm build", codegen.TargetWasm, false, "wasm-pack build --target web --dev"},
		{"check", codegen.TargetRust, true, "cargo check --quiet"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeSources(t, map[string]string{"hello.wj": helloSource})
			d := newDriver(t, Options{Target: tt.target, Cargo: true})

			var ran []build.CommandSpec
			var manifest string
			d.runner = func(_ context.Context, spec build.CommandSpec, _ []byte) ([]byte, error) {
				ran = append(ran, spec)
				data, err := os.ReadFile(filepath.Join(spec.WorkDir, "Cargo.toml"))
				manifest = string(data)
				return nil, err
			}

			var err error
			if tt.check {
				_, err = d.Check(context.Background(), dir)
			} else {
				_, err = d.Build(context.Background(), dir)
			}
			be.Err(t, err, nil)
			be.Equal(t, len(ran), 1)
			be.Equal(t, ran[0].String(), tt.expected)
			be.True(t, strings.Contains(manifest, "[package]"))
			if tt.check {
				_, statErr := os.Stat(ran[0].WorkDir)
				be.True(t, os.IsNotExist(statErr))
			}
		})
	}
}

func TestCargoStepFailure(t *testing.T) {
	dir := writeSources(t, map[string]string{"hello.wj": helloSource})
	d := newDriver(t, Options{Cargo: true})
	d.runner = func(context.Context, build.CommandSpec, []byte) ([]byte, error) {
		return nil, stderrors.New("error[E0382]: borrow of moved value")
	}

	_, err := d.Build(context.Background(), dir)
	be.Err(t, err, "borrow of moved value")

	gd := newDriver(t, Options{Target: codegen.TargetGo, Cargo: true})
	_, err = gd.Build(context.Background(), dir)
	be.Err(t, err, "cargo runs only for the rust and wasm targets")
}

// goldenCompiler compiles a case for the output an assertion inspects.
// compile-error cases fail if any target rejects the source.
func goldenCompiler(t *testing.T) wjtest.CompileFunc {
	drivers := make(map[codegen.Target]*Driver)
	for _, target := range []codegen.Target{codegen.TargetRust, codegen.TargetWasm, codegen.TargetGo} {
		drivers[target] = newDriver(t, Options{Target: target})
	}

	return func(ctx context.Context, name, source string, kind wjtest.AssertionKind) (string, error) {
		filename := name + SourceExt
		switch kind {
		case wjtest.AssertGo:
			out, err := drivers[codegen.TargetGo].CompileSource(ctx, filename, source)
			if err != nil {
				return "", err
			}
			return out.Source, nil
		case wjtest.AssertWasmTypes:
			out, err := drivers[codegen.TargetWasm].CompileSource(ctx, filename, source)
			if err != nil {
				return "", err
			}
			return out.TypeDefinitions, nil
		case wjtest.AssertCompileError:
			for _, target := range []codegen.Target{codegen.TargetRust, codegen.TargetGo} {
				if _, err := drivers[target].CompileSource(ctx, filename, source); err != nil {
					return "", err
				}
			}
			return "", nil
		}
		out, err := drivers[codegen.TargetRust].CompileSource(ctx, filename, source)
		if err != nil {
			return "", err
		}
		return out.Source, nil
	}
}

func TestGolden(t *testing.T) {
	suites, err := wjtest.LoadCases(filepath.Join("testdata", "*.md"))
	be.Err(t, err, nil)
	be.True(t, len(suites) > 0)

	tf := wjtest.NewTestFramework(nil, goldenCompiler(t))
	for name, cases := range suites {
		t.Run(name, func(t *testing.T) {
			tf.RunSuite(t, cases)
		})
	}
}
