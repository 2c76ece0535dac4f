// Package compiler drives the pipeline over files and directories: source
// discovery, concurrent per-file compilation, output layout and the
// optional cargo step.
package compiler

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/build"
	"github.com/windjammer-lang/windjammer/internal/cli"
	"github.com/windjammer-lang/windjammer/internal/codegen"
	"github.com/windjammer-lang/windjammer/internal/codegen/rust"
	"github.com/windjammer-lang/windjammer/internal/errors"
	"github.com/windjammer-lang/windjammer/internal/lexer"
	"github.com/windjammer-lang/windjammer/internal/parser"
)

// SourceExt is the extension of Windjammer source files.
const SourceExt = ".wj"

// ErrCompileFailed is returned when at least one unit failed; the per-unit
// errors are in the Report.
var ErrCompileFailed = stderrors.New("compilation failed")

// Options configures a Driver.
type Options struct {
	Target        codegen.Target
	CompileTarget rust.CompileTarget
	OutputDir     string
	StdlibDir     string
	// Jobs bounds concurrent unit compiles; <= 0 means GOMAXPROCS.
	Jobs   int
	Crates map[string]string
	Format bool
	// Library drops top-level fn main from every unit.
	Library bool
	// ModuleFile writes a mod.rs declaring every unit as a module.
	ModuleFile bool
	// Cargo runs cargo (wasm-pack for wasm) on the output directory.
	Cargo bool
}

// OptionsFromConfig maps a wj.json configuration onto driver options.
func OptionsFromConfig(cfg *cli.Config) (Options, error) {
	target, err := codegen.ParseTarget(cfg.Target)
	if err != nil {
		return Options{}, errors.UnknownTarget(cfg.Target, err)
	}
	ct, err := rust.ParseCompileTarget(cfg.CompileTarget)
	if err != nil {
		return Options{}, errors.UnknownTarget(cfg.CompileTarget, err)
	}
	return Options{
		Target:        target,
		CompileTarget: ct,
		OutputDir:     cfg.OutputDir,
		StdlibDir:     cfg.StdlibDir,
		Jobs:          cfg.Jobs,
		Crates:        cfg.CrateVersions,
		Format:        cfg.Format,
	}, nil
}

// Result is the outcome of compiling one source file.
type Result struct {
	Path   string
	Source string
	Output *codegen.Output
	// HasMain reports a top-level fn main in the generated unit.
	HasMain bool
	Err     error
}

// Report collects the results of a build in source-path order.
type Report struct {
	Results []*Result
	// Written lists the files produced, relative to the output directory.
	Written []string
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []*Result {
	var out []*Result
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res)
		}
	}
	return out
}

// Driver compiles Windjammer sources with one backend.
type Driver struct {
	opts    Options
	log     *cli.Logger
	backend codegen.Backend
	stdlib  *analyzer.StdlibScanner
	runner  func(ctx context.Context, spec build.CommandSpec, stdin []byte) ([]byte, error)
}

// New creates a driver. log may be nil.
func New(opts Options, log *cli.Logger) (*Driver, error) {
	backend, err := codegen.New(opts.Target)
	if err != nil {
		return nil, errors.UnknownTarget(opts.Target.String(), err)
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.GOMAXPROCS(0)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "build"
	}
	if log == nil {
		log = cli.NewLogger(false, false)
	}
	return &Driver{
		opts:    opts,
		log:     log,
		backend: backend,
		stdlib:  analyzer.NewStdlibScanner(),
		runner:  build.Run,
	}, nil
}

// Options returns the effective options.
func (d *Driver) Options() Options { return d.opts }

// Discover returns path itself when it is a file, or the sorted .wj files
// directly inside it when it is a directory.
func Discover(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.ReadFailed(path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.ReadFailed(path, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != SourceExt {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, errors.NoSources(path)
	}
	return files, nil
}

// CompileSource runs the pipeline over in-memory source.
func (d *Driver) CompileSource(ctx context.Context, filename, src string) (*codegen.Output, error) {
	res := d.compileUnit(ctx, filename, src, stem(filename))
	return res.Output, res.Err
}

// CompileFiles compiles paths concurrently. Results keep the order of
// paths; a unit error does not stop the others.
func (d *Driver) CompileFiles(ctx context.Context, paths []string, packageName string) ([]*Result, error) {
	results := make([]*Result, len(paths))
	sem := semaphore.NewWeighted(int64(d.opts.Jobs))
	g, gctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			d.log.Info("compiling %s", path)
			src, err := os.ReadFile(path)
			if err != nil {
				results[i] = &Result{Path: path, Err: errors.ReadFailed(path, err)}
				return nil
			}
			results[i] = d.compileUnit(gctx, path, string(src), packageName)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (d *Driver) compileUnit(ctx context.Context, path, src, packageName string) *Result {
	res := &Result{Path: path, Source: src}

	d.log.Debug("%s: parse", path)
	program, err := parser.ParseSource(path, src)
	if err != nil {
		var le *lexer.LexError
		if stderrors.As(err, &le) {
			res.Err = errors.LexFailed(path, err)
		} else {
			res.Err = errors.ParseFailed(path, err)
		}
		return res
	}
	if d.opts.Library {
		stripMain(program)
	}
	res.HasMain = hasMain(program)

	d.log.Debug("%s: load stdlib signatures", path)
	base, err := d.stdlib.Load(ctx, d.opts.StdlibDir)
	if err != nil {
		res.Err = errors.ReadFailed(analyzer.StdlibDir(d.opts.StdlibDir), err)
		return res
	}

	d.log.Debug("%s: analyze", path)
	analysis, err := analyzer.New(base).Analyze(program)
	if err != nil {
		res.Err = errors.AnalysisFailed(path, err)
		return res
	}

	d.log.Debug("%s: generate %s", path, d.backend.Name())
	out, err := d.backend.Generate(ctx, &codegen.Unit{Program: program, Analysis: analysis}, codegen.Config{
		CompileTarget: d.opts.CompileTarget,
		PackageName:   packageName,
		Crates:        d.opts.Crates,
		Format:        d.opts.Format,
	})
	if err != nil {
		res.Err = errors.CodegenFailed(path, d.opts.Target.String(), err)
		return res
	}
	if out.FormatError != nil {
		d.log.Warn("%s: formatter failed, keeping unformatted output: %v", path, out.FormatError)
	}
	res.Output = out
	return res
}

func stripMain(program *ast.Program) {
	items := program.Items[:0]
	for _, item := range program.Items {
		if fn, ok := item.(*ast.FunctionDecl); ok && fn.Name == "main" {
			continue
		}
		items = append(items, item)
	}
	program.Items = items
}

func hasMain(program *ast.Program) bool {
	for _, item := range program.Items {
		if fn, ok := item.(*ast.FunctionDecl); ok && fn.Name == "main" {
			return true
		}
	}
	return false
}

func stem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// packageName names the generated crate or module after the file for a
// single source and after the directory otherwise
func packageName(path string, files []string) string {
	if len(files) == 1 {
		return stem(files[0])
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Base(path)
	}
	return filepath.Base(abs)
}

// Build compiles path and writes the outputs into the output directory.
func (d *Driver) Build(ctx context.Context, path string) (*Report, error) {
	return d.build(ctx, path, d.opts.OutputDir, false)
}

// Check compiles path without keeping any output. With Cargo set the
// outputs go to a temporary directory that cargo check runs in.
func (d *Driver) Check(ctx context.Context, path string) (*Report, error) {
	if !d.opts.Cargo {
		files, err := Discover(path)
		if err != nil {
			return nil, err
		}
		results, err := d.CompileFiles(ctx, files, packageName(path, files))
		if err != nil {
			return nil, err
		}
		report := &Report{Results: results}
		if len(report.Failed()) > 0 {
			return report, ErrCompileFailed
		}
		return report, nil
	}

	dir, err := os.MkdirTemp("", "wj-check-*")
	if err != nil {
		return nil, errors.WriteFailed(os.TempDir(), err)
	}
	defer os.RemoveAll(dir)
	return d.build(ctx, path, dir, true)
}

func (d *Driver) build(ctx context.Context, path, outDir string, checkOnly bool) (*Report, error) {
	files, err := Discover(path)
	if err != nil {
		return nil, err
	}
	name := packageName(path, files)
	results, err := d.CompileFiles(ctx, files, name)
	if err != nil {
		return nil, err
	}
	report := &Report{Results: results}
	if len(report.Failed()) > 0 {
		return report, ErrCompileFailed
	}

	layout, err := d.layout(results, name)
	if err != nil {
		return report, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return report, errors.WriteFailed(outDir, err)
	}
	names := make([]string, 0, len(layout))
	for rel := range layout {
		names = append(names, rel)
	}
	sort.Strings(names)
	for _, rel := range names {
		target := filepath.Join(outDir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return report, errors.WriteFailed(target, err)
		}
		if err := os.WriteFile(target, []byte(layout[rel]), 0o644); err != nil {
			return report, errors.WriteFailed(target, err)
		}
		d.log.Info("wrote %s", target)
	}
	report.Written = names

	if d.opts.Cargo {
		if err := d.cargo(ctx, outDir, checkOnly); err != nil {
			return report, err
		}
	}
	return report, nil
}

// layout maps output-relative file names to contents
func (d *Driver) layout(results []*Result, name string) (map[string]string, error) {
	files := make(map[string]string)
	single := len(results) == 1

	if d.opts.Target == codegen.TargetGo {
		for _, res := range results {
			dir := ""
			if !single {
				dir = stem(res.Path)
			}
			files[filepath.Join(dir, stem(res.Path)+".go")] = res.Output.Source
			for _, f := range res.Output.AdditionalFiles {
				content := f.Content
				if f.Name == "go.mod" && !single {
					content = strings.Replace(content, "module "+codegen.PackageIdent(name), "module "+codegen.PackageIdent(dir), 1)
				}
				files[filepath.Join(dir, f.Name)] = content
			}
		}
		return files, nil
	}

	wasm := d.opts.Target == codegen.TargetWasm
	var sources []string
	var bins []codegen.BinTarget
	var modules []string
	for _, res := range results {
		file := stem(res.Path) + ".rs"
		if wasm && single {
			file = "lib.rs"
		}
		files[file] = res.Output.Source
		sources = append(sources, res.Output.Source)
		modules = append(modules, stem(res.Path))
		if !wasm && res.HasMain {
			bins = append(bins, codegen.BinTarget{Name: codegen.PackageIdent(stem(res.Path)), Path: file})
		}
		for _, f := range res.Output.AdditionalFiles {
			if f.Name != "Cargo.toml" {
				files[f.Name] = f.Content
			}
		}
		if res.Output.TypeDefinitions != "" {
			files[stem(res.Path)+".d.ts"] = res.Output.TypeDefinitions
		}
	}

	cfg := codegen.Config{PackageName: name, Crates: d.opts.Crates, Bins: bins}
	switch {
	case d.opts.ModuleFile || (!single && (wasm || len(bins) == 0)):
		files["mod.rs"] = moduleFile(modules)
		cfg.LibPath = "mod.rs"
	case wasm:
		cfg.LibPath = "lib.rs"
	case len(bins) == 0:
		cfg.LibPath = stem(results[0].Path) + ".rs"
	}
	manifest, err := codegen.CargoManifest(sources, cfg, wasm)
	if err != nil {
		return nil, errors.CodegenFailed(name, d.opts.Target.String(), err)
	}
	files["Cargo.toml"] = manifest
	return files, nil
}

// moduleFile declares and re-exports every generated module
func moduleFile(modules []string) string {
	var b strings.Builder
	for _, m := range modules {
		fmt.Fprintf(&b, "pub mod %s;\n", m)
	}
	b.WriteString("\n")
	for _, m := range modules {
		fmt.Fprintf(&b, "pub use %s::*;\n", m)
	}
	return b.String()
}

func (d *Driver) cargo(ctx context.Context, dir string, checkOnly bool) error {
	tc := build.RustToolchain{}
	var spec build.CommandSpec
	var err error
	switch {
	case d.opts.Target == codegen.TargetGo:
		return errors.UnknownTarget(d.opts.Target.String(), fmt.Errorf("cargo runs only for the rust and wasm targets"))
	case checkOnly:
		spec, err = tc.Check(dir)
	default:
		spec, err = tc.Build(dir, d.opts.Target == codegen.TargetWasm, false)
	}
	if err != nil {
		return err
	}
	d.log.Info("running %s in %s", spec, dir)
	if _, err := d.runner(ctx, spec, nil); err != nil {
		return errors.CodegenFailed(dir, d.opts.Target.String(), err)
	}
	return nil
}
