// Package rust translates an analyzed Windjammer program into Rust source.
//
// The generator walks the AST once, in source order. Parameter types and
// call-site argument adaptations (&, &mut, .clone(), .to_string()) are
// decided from the ownership modes and signatures computed by the analyzer.
package rust

import (
	"fmt"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/position"
)

// CompileTarget selects how @export is mapped to a Rust attribute
type CompileTarget int

const (
	TargetWasm CompileTarget = iota
	TargetNode
	TargetPython
	TargetC
)

var compileTargetNames = map[CompileTarget]string{
	TargetWasm:   "wasm",
	TargetNode:   "node",
	TargetPython: "python",
	TargetC:      "c",
}

func (t CompileTarget) String() string {
	if name, ok := compileTargetNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseCompileTarget maps a target name to its CompileTarget; "" is Wasm
func ParseCompileTarget(name string) (CompileTarget, error) {
	if name == "" {
		return TargetWasm, nil
	}
	for t, n := range compileTargetNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return TargetWasm, fmt.Errorf("unknown compile target %q (expected wasm, node, python or c)", name)
}

// Config controls code generation
type Config struct {
	Target CompileTarget
}

// GenerateError reports an AST shape the generator cannot translate
type GenerateError struct {
	Span    position.Span
	Node    string
	Message string
}

func (e *GenerateError) Error() string {
	if e.Span.IsValid() {
		return fmt.Sprintf("%s: cannot generate %s: %s", e.Span.Start, e.Node, e.Message)
	}
	return fmt.Sprintf("cannot generate %s: %s", e.Node, e.Message)
}

// Generator holds the state of one translation. It is not safe for
// concurrent use; create one per program.
type Generator struct {
	cfg      Config
	res      *analyzer.Result
	registry *analyzer.SignatureRegistry

	out    *strings.Builder
	indent int

	structs map[string]*ast.StructDecl
	enums   map[string]*ast.EnumDecl
	modules map[string]bool
	derives map[string]traitSet
	exports map[string]bool

	fn          *fnScope
	implType    string
	inTraitImpl bool
	needsWasm   bool

	err error
}

// New creates a generator for a program analyzed into res
func New(res *analyzer.Result, cfg Config) *Generator {
	g := &Generator{
		cfg:     cfg,
		res:     res,
		out:     &strings.Builder{},
		structs: make(map[string]*ast.StructDecl),
		enums:   make(map[string]*ast.EnumDecl),
		modules: make(map[string]bool),
		derives: make(map[string]traitSet),
		exports: make(map[string]bool),
	}
	if res != nil {
		g.registry = res.Registry
	}
	return g
}

// Generate is a convenience wrapper around New and Generator.Generate
func Generate(program *ast.Program, res *analyzer.Result, cfg Config) (string, error) {
	return New(res, cfg).Generate(program)
}

// Generate emits the Rust translation of program
func (g *Generator) Generate(program *ast.Program) (string, error) {
	if g.res == nil {
		return "", &GenerateError{Node: "program", Message: "program has not been analyzed"}
	}
	g.collect(program.Items)
	g.inferAllDerives()

	g.items(program.Items)
	if g.err != nil {
		return "", g.err
	}

	var header strings.Builder
	if g.needsWasm {
		header.WriteString("use wasm_bindgen::prelude::*;\n\n")
	}
	return header.String() + g.out.String(), nil
}

// collect records declarations that later emission depends on
func (g *Generator) collect(items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.StructDecl:
			g.structs[it.Name] = it
			if ast.FindDecorator(it.Decorators, "export") != nil {
				g.exports[it.Name] = true
			}
		case *ast.EnumDecl:
			g.enums[it.Name] = it
		case *ast.UseDecl:
			g.registerUse(it.Path, it.Alias)
		case *ast.ModDecl:
			g.modules[it.Name] = true
			g.collect(it.Items)
		}
	}
}

func (g *Generator) registerUse(path []string, alias string) {
	if alias != "" {
		g.modules[alias] = true
		return
	}
	if len(path) == 0 {
		return
	}
	last := path[len(path)-1]
	if i := strings.LastIndex(last, "/"); i >= 0 {
		last = last[i+1:]
	}
	if last != "" && last != "*" && !strings.HasPrefix(last, "{") && !isUpper(last) {
		g.modules[last] = true
	}
}

// fail records the first generation error
func (g *Generator) fail(node ast.Node, what, format string, args ...any) {
	if g.err != nil {
		return
	}
	e := &GenerateError{Node: what, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		e.Span = node.GetSpan()
	}
	g.err = e
}

func (g *Generator) pad() string {
	return strings.Repeat("    ", g.indent)
}

// line writes one indented line
func (g *Generator) line(format string, args ...any) {
	g.out.WriteString(g.pad())
	if len(args) == 0 {
		g.out.WriteString(format)
	} else {
		fmt.Fprintf(g.out, format, args...)
	}
	g.out.WriteByte('\n')
}

func (g *Generator) blank() {
	g.out.WriteByte('\n')
}

// capture renders the output of fn one level deeper than the current
// indentation and returns it
func (g *Generator) capture(fn func()) string {
	prev := g.out
	var buf strings.Builder
	g.out = &buf
	g.indent++
	fn()
	g.indent--
	g.out = prev
	return buf.String()
}

func (g *Generator) docComment(doc string) {
	if doc == "" {
		return
	}
	for _, l := range strings.Split(doc, "\n") {
		g.line("/// %s", strings.TrimSpace(l))
	}
}

func isUpper(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// pathName rewrites a dotted source path to a Rust path
func pathName(name string) string {
	return strings.ReplaceAll(name, ".", "::")
}
