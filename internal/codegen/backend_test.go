package codegen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/parser"
)

func unitFor(t *testing.T, input string) *Unit {
	t.Helper()
	program, err := parser.ParseSource("test.wj", input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	res, err := analyzer.New(nil).Analyze(program)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	return &Unit{Program: program, Analysis: res}
}

func fileNamed(files []File, name string) (File, bool) {
	for _, f := range files {
		if f.Name == name {
			return f, true
		}
	}
	return File{}, false
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		input    string
		expected Target
	}{
		{"", TargetRust},
		{"rust", TargetRust},
		{"rs", TargetRust},
		{"WASM", TargetWasm},
		{"webassembly", TargetWasm},
		{"go", TargetGo},
		{"golang", TargetGo},
	}
	for i, tt := range tests {
		got, err := ParseTarget(tt.input)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if got != tt.expected {
			t.Errorf("tests[%d] - target wrong. expected=%s, got=%s", i, tt.expected, got)
		}
	}

	if _, err := ParseTarget("java"); err == nil {
		t.Error("expected an error for an unknown target")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		target Target
		name   string
	}{
		{TargetRust, "Rust"},
		{TargetWasm, "WebAssembly"},
		{TargetGo, "Go"},
	}
	for i, tt := range tests {
		b, err := New(tt.target)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if b.Name() != tt.name || b.Target() != tt.target {
			t.Errorf("tests[%d] - backend wrong. expected=%s/%s, got=%s/%s", i, tt.name, tt.target, b.Name(), b.Target())
		}
	}
	if _, err := New(Target(42)); err == nil {
		t.Error("expected an error for an unknown target")
	}
}

func TestRustBackend(t *testing.T) {
	unit := unitFor(t, `fn main() { println("hi") }`)
	out, err := RustBackend{}.Generate(context.Background(), unit, Config{})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if out.Extension != "rs" {
		t.Errorf("extension wrong. expected=%q, got=%q", "rs", out.Extension)
	}
	if !strings.Contains(out.Source, `println!("hi");`) {
		t.Errorf("source wrong. got=%q", out.Source)
	}
	cargo, ok := fileNamed(out.AdditionalFiles, "Cargo.toml")
	if !ok {
		t.Fatal("missing Cargo.toml")
	}
	for _, want := range []string{`name = "windjammer-app"`, "[dependencies]"} {
		if !strings.Contains(cargo.Content, want) {
			t.Errorf("Cargo.toml missing %q:\n%s", want, cargo.Content)
		}
	}
	if strings.Contains(cargo.Content, "cdylib") {
		t.Errorf("native crate must not be a cdylib:\n%s", cargo.Content)
	}
}

func TestWasmBackend(t *testing.T) {
	unit := unitFor(t, `@export
fn add(a: i32, b: i32) -> i32 { a + b }

@export
fn greet(name: string) -> string { format("Hi {name}") }`)
	out, err := WasmBackend{}.Generate(context.Background(), unit, Config{})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if !strings.Contains(out.Source, "#[wasm_bindgen]") {
		t.Errorf("missing wasm_bindgen attribute:\n%s", out.Source)
	}
	for _, want := range []string{
		"export function add(a: number, b: number): number;",
		"export function greet(name: string): string;",
	} {
		if !strings.Contains(out.TypeDefinitions, want) {
			t.Errorf("type definitions missing %q:\n%s", want, out.TypeDefinitions)
		}
	}

	cargo, ok := fileNamed(out.AdditionalFiles, "Cargo.toml")
	if !ok {
		t.Fatal("missing Cargo.toml")
	}
	for _, want := range []string{`crate-type = ["cdylib"]`, `wasm-bindgen = "0.2.93"`, "[profile.release]"} {
		if !strings.Contains(cargo.Content, want) {
			t.Errorf("Cargo.toml missing %q:\n%s", want, cargo.Content)
		}
	}
	if strings.Count(cargo.Content, "wasm-bindgen") != 1 {
		t.Errorf("wasm-bindgen listed more than once:\n%s", cargo.Content)
	}

	html, ok := fileNamed(out.AdditionalFiles, "index.html")
	if !ok {
		t.Fatal("missing index.html")
	}
	if !strings.Contains(html.Content, `from "./pkg/windjammer_app.js"`) {
		t.Errorf("harness does not load the package:\n%s", html.Content)
	}
	if !strings.Contains(html.Content, "window.add = wasm.add;") {
		t.Errorf("harness does not expose add:\n%s", html.Content)
	}
}

func TestGoBackend(t *testing.T) {
	unit := unitFor(t, `fn main() { println("hi") }`)
	out, err := GoBackend{}.Generate(context.Background(), unit, Config{PackageName: "demo", Format: true})
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if out.FormatError != nil {
		t.Fatalf("format error: %v", out.FormatError)
	}
	if out.Extension != "go" {
		t.Errorf("extension wrong. expected=%q, got=%q", "go", out.Extension)
	}
	if !strings.Contains(out.Source, `fmt.Println("hi")`) {
		t.Errorf("source wrong. got=%q", out.Source)
	}
	gomod, ok := fileNamed(out.AdditionalFiles, "go.mod")
	if !ok {
		t.Fatal("missing go.mod")
	}
	if gomod.Content != "module demo\n\ngo 1.23\n" {
		t.Errorf("go.mod wrong. got=%q", gomod.Content)
	}
}

func TestCargoManifestPinnedCrates(t *testing.T) {
	src := "use rand::Rng;\n\nfn main() {}\n"
	manifest, err := cargoManifest(src, Config{Crates: map[string]string{"rand": "0.8"}}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(manifest, `rand = "0.8.5"`) {
		t.Errorf("rand not resolved:\n%s", manifest)
	}

	_, err = cargoManifest(src, Config{Crates: map[string]string{"rand": "^0.7"}}, false)
	var ce *ConstraintError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConstraintError, got %v", err)
	}
}

func TestBackendRejectsMissingProgram(t *testing.T) {
	for _, target := range []Target{TargetRust, TargetWasm, TargetGo} {
		b, _ := New(target)
		if _, err := b.Generate(context.Background(), &Unit{}, Config{}); err == nil {
			t.Errorf("%s - expected an error for an empty unit", target)
		}
	}
}
