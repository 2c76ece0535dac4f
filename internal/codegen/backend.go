// Package codegen selects and runs the backend that turns an analyzed
// program into target source plus its auxiliary files.
package codegen

import (
	"context"
	"fmt"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/codegen/golang"
	"github.com/windjammer-lang/windjammer/internal/codegen/rust"
)

// Target is an output language.
type Target int

const (
	TargetRust Target = iota
	TargetWasm
	TargetGo
)

var targetNames = []struct {
	target  Target
	name    string
	aliases []string
}{
	{TargetRust, "rust", []string{"rs"}},
	{TargetWasm, "wasm", []string{"webassembly"}},
	{TargetGo, "go", []string{"golang"}},
}

func (t Target) String() string {
	for _, n := range targetNames {
		if n.target == t {
			return n.name
		}
	}
	return "unknown"
}

// ParseTarget maps a target name or alias to its Target; "" is Rust.
func ParseTarget(name string) (Target, error) {
	if name == "" {
		return TargetRust, nil
	}
	name = strings.ToLower(name)
	for _, n := range targetNames {
		if n.name == name {
			return n.target, nil
		}
		for _, a := range n.aliases {
			if a == name {
				return n.target, nil
			}
		}
	}
	return TargetRust, fmt.Errorf("unknown target %q (expected rust, wasm or go)", name)
}

// Unit is one parsed and analyzed source file.
type Unit struct {
	Program  *ast.Program
	Analysis *analyzer.Result
}

// Config controls a backend run.
type Config struct {
	CompileTarget rust.CompileTarget
	// PackageName names the generated crate or module.
	PackageName string
	// Crates pins crate version constraints by package name.
	Crates map[string]string
	// Format pipes the output through the target formatter.
	Format bool
	// LibPath and Bins name the crate targets written to Cargo.toml.
	LibPath string
	Bins    []BinTarget
}

// File is an auxiliary output file.
type File struct {
	Name    string
	Content string
}

// Output is the result of generating one unit.
type Output struct {
	Source          string
	Extension       string
	TypeDefinitions string
	AdditionalFiles []File
	// FormatError is set when the formatter failed; Source is then unformatted.
	FormatError error
}

// Backend generates code for one target.
type Backend interface {
	Name() string
	Target() Target
	Generate(ctx context.Context, unit *Unit, cfg Config) (*Output, error)
}

// New returns the backend for t.
func New(t Target) (Backend, error) {
	switch t {
	case TargetRust:
		return RustBackend{}, nil
	case TargetWasm:
		return WasmBackend{}, nil
	case TargetGo:
		return GoBackend{}, nil
	}
	return nil, fmt.Errorf("no backend for target %s", t)
}

// RustBackend emits Rust source and a Cargo manifest.
type RustBackend struct{}

func (RustBackend) Name() string   { return "Rust" }
func (RustBackend) Target() Target { return TargetRust }

func (b RustBackend) Generate(ctx context.Context, unit *Unit, cfg Config) (*Output, error) {
	out, err := generateRust(ctx, unit, rust.Config{Target: cfg.CompileTarget}, cfg.Format)
	if err != nil {
		return nil, err
	}
	manifest, err := cargoManifest(out.Source, cfg, false)
	if err != nil {
		return nil, err
	}
	out.AdditionalFiles = append(out.AdditionalFiles, File{Name: "Cargo.toml", Content: manifest})
	return out, nil
}

func generateRust(ctx context.Context, unit *Unit, rcfg rust.Config, format bool) (*Output, error) {
	if unit == nil || unit.Program == nil {
		return nil, fmt.Errorf("no program to generate")
	}
	src, err := rust.Generate(unit.Program, unit.Analysis, rcfg)
	if err != nil {
		return nil, err
	}
	out := &Output{Source: src, Extension: "rs"}
	if format {
		out.Source, out.FormatError = rust.Format(ctx, src)
	}
	return out, nil
}

// cratesIn lists the crates generated source depends on
func cratesIn(src string) []string {
	crates := rust.ExternalCrates(src)
	for marker, crate := range map[string]string{
		"tokio::":          "tokio",
		"#[neon::export]":  "neon",
		"#[pyfunction]":    "pyo3",
		"#[wasm_bindgen]":  "wasm_bindgen",
		"serde::":          "serde",
		"serde_json::":     "serde_json",
	} {
		if strings.Contains(src, marker) {
			crates = append(crates, crate)
		}
	}
	return crates
}

// CargoManifest renders one Cargo.toml covering the generated sources of
// several units.
func CargoManifest(sources []string, cfg Config, cdylib bool) (string, error) {
	return cargoManifest(strings.Join(sources, "\n"), cfg, cdylib)
}

func cargoManifest(src string, cfg Config, cdylib bool) (string, error) {
	crates := cratesIn(src)
	if cdylib {
		crates = append(crates, "wasm_bindgen")
	}
	deps, err := ResolveDependencies(DefaultCrates, crates, cfg.Crates)
	if err != nil {
		return "", err
	}
	name := cfg.PackageName
	if name == "" {
		name = "windjammer-app"
	}
	return Manifest{
		Name:         PackageIdent(name),
		CDyLib:       cdylib,
		LibPath:      cfg.LibPath,
		Bins:         cfg.Bins,
		Dependencies: deps,
	}.Render(), nil
}

// GoBackend emits Go source and a go.mod.
type GoBackend struct{}

func (GoBackend) Name() string   { return "Go" }
func (GoBackend) Target() Target { return TargetGo }

func (GoBackend) Generate(_ context.Context, unit *Unit, cfg Config) (*Output, error) {
	if unit == nil || unit.Program == nil {
		return nil, fmt.Errorf("no program to generate")
	}
	src, err := golang.Generate(unit.Program)
	if err != nil {
		return nil, err
	}
	out := &Output{Source: src, Extension: "go"}
	if cfg.Format {
		out.Source, out.FormatError = golang.Format(src)
	}
	name := cfg.PackageName
	if name == "" {
		name = "windjammer-app"
	}
	out.AdditionalFiles = []File{{Name: "go.mod", Content: "module " + PackageIdent(name) + "\n\ngo 1.23\n"}}
	return out, nil
}
