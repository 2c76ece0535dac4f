// Package golang translates a Windjammer program into Go source.
//
// The Go output favors compatibility over fidelity: ownership is erased,
// enums become sealed interfaces with one struct per variant, methods take
// pointer receivers, and printing goes through fmt.
package golang

import (
	"fmt"
	"go/format"
	"sort"
	"strings"
	"unicode"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/position"
)

// GenerateError reports an AST shape the Go backend cannot translate
type GenerateError struct {
	Span    position.Span
	Node    string
	Message string
}

func (e *GenerateError) Error() string {
	if e.Span.IsValid() {
		return fmt.Sprintf("%s: cannot generate Go for %s: %s", e.Span.Start, e.Node, e.Message)
	}
	return fmt.Sprintf("cannot generate Go for %s: %s", e.Node, e.Message)
}

type generator struct {
	out        *strings.Builder
	indent     int
	indentSkip bool
	imports    map[string]bool
	helpers    map[string]bool
	enums      map[string]*ast.EnumDecl
	// variants maps a bare or qualified variant name to its Go struct type
	variants map[string]string
	// variantEnum maps a variant struct type back to its enum
	variantEnum map[string]string
	structs     map[string]bool
	fields   map[string]map[string]ast.Type
	funcs    map[string]*ast.FunctionDecl
	methods  map[string]map[string]*ast.FunctionDecl
	scopes   []*scope
	recv     string // receiver type of the method being generated
	tmp      int
	err      error
}

// Generate emits a Go main package for program.
func Generate(program *ast.Program) (string, error) {
	g := &generator{
		out:      &strings.Builder{},
		imports:  make(map[string]bool),
		helpers:  make(map[string]bool),
		enums:    make(map[string]*ast.EnumDecl),
		variants:    make(map[string]string),
		variantEnum: make(map[string]string),
		structs:     make(map[string]bool),
		fields:   make(map[string]map[string]ast.Type),
		funcs:    make(map[string]*ast.FunctionDecl),
		methods:  make(map[string]map[string]*ast.FunctionDecl),
	}
	g.collect(program.Items)
	for i, item := range program.Items {
		if i > 0 {
			g.out.WriteString("\n")
		}
		g.item(item)
		if g.err != nil {
			return "", g.err
		}
	}
	g.emitHelpers()

	var head strings.Builder
	head.WriteString("package main\n\n")
	if len(g.imports) > 0 {
		names := make([]string, 0, len(g.imports))
		for name := range g.imports {
			names = append(names, name)
		}
		sort.Strings(names)
		head.WriteString("import (\n")
		for _, name := range names {
			fmt.Fprintf(&head, "\t%q\n", name)
		}
		head.WriteString(")\n\n")
	}
	return head.String() + g.out.String(), nil
}

// Format runs gofmt over src. On failure src is returned with the error.
func Format(src string) (string, error) {
	out, err := format.Source([]byte(src))
	if err != nil {
		return src, err
	}
	return string(out), nil
}

func (g *generator) collect(items []ast.Item) {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.EnumDecl:
			g.enums[it.Name] = it
			for _, v := range it.Variants {
				typ := it.Name + v.Name
				g.variants[it.Name+"::"+v.Name] = typ
				g.variants[v.Name] = typ
				g.variantEnum[typ] = it.Name
			}
		case *ast.StructDecl:
			g.structs[it.Name] = true
			fields := make(map[string]ast.Type, len(it.Fields))
			for _, f := range it.Fields {
				fields[f.Name] = f.Type
			}
			g.fields[it.Name] = fields
		case *ast.FunctionDecl:
			g.funcs[it.Name] = it
		case *ast.ImplBlock:
			if g.methods[it.TypeName] == nil {
				g.methods[it.TypeName] = make(map[string]*ast.FunctionDecl)
			}
			for _, fn := range it.Functions {
				g.methods[it.TypeName][fn.Name] = fn
			}
		case *ast.ModDecl:
			g.collect(it.Items)
		}
	}
}

func (g *generator) fail(node ast.Node, what, format string, args ...any) {
	if g.err != nil {
		return
	}
	e := &GenerateError{Node: what, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		e.Span = node.GetSpan()
	}
	g.err = e
}

func (g *generator) line(format string, args ...any) {
	if g.indentSkip {
		g.indentSkip = false
	} else {
		g.out.WriteString(strings.Repeat("\t", g.indent))
	}
	if len(args) == 0 {
		g.out.WriteString(format)
	} else {
		fmt.Fprintf(g.out, format, args...)
	}
	g.out.WriteString("\n")
}

func (g *generator) item(item ast.Item) {
	switch it := item.(type) {
	case *ast.FunctionDecl:
		if it.IsExtern {
			g.line("// extern %s is not available in Go", it.Name)
			return
		}
		g.function(it, "")
	case *ast.StructDecl:
		g.structDecl(it)
	case *ast.EnumDecl:
		g.enumDecl(it)
	case *ast.TraitDecl:
		g.traitDecl(it)
	case *ast.ImplBlock:
		for i, fn := range it.Functions {
			if i > 0 {
				g.out.WriteString("\n")
			}
			g.function(fn, it.TypeName)
		}
	case *ast.ConstDecl:
		g.constDecl(it.Name, it.Type, it.Value)
	case *ast.StaticDecl:
		if it.Type != nil {
			g.line("var %s %s = %s", it.Name, g.goType(it.Type), g.expr(it.Value))
		} else {
			g.line("var %s = %s", it.Name, g.expr(it.Value))
		}
	case *ast.ModDecl:
		g.line("// mod %s", it.Name)
		for _, inner := range it.Items {
			g.item(inner)
		}
	case *ast.UseDecl, *ast.BoundAlias:
		// imports and bound aliases have no Go counterpart
	default:
		g.fail(item, "item", "unsupported item %T", item)
	}
}

func (g *generator) constDecl(name string, t ast.Type, value ast.Expression) {
	if t != nil {
		g.line("const %s %s = %s", name, g.goType(t), g.expr(value))
		return
	}
	g.line("const %s = %s", name, g.expr(value))
}

func (g *generator) structDecl(s *ast.StructDecl) {
	if s.DocComment != "" {
		g.doc(s.DocComment)
	}
	if len(s.Fields) == 0 {
		g.line("type %s%s struct{}", s.Name, typeParams(s.TypeParams))
		return
	}
	g.line("type %s%s struct {", s.Name, typeParams(s.TypeParams))
	g.indent++
	for _, f := range s.Fields {
		g.line("%s %s", f.Name, g.goType(f.Type))
	}
	g.indent--
	g.line("}")
}

// enumDecl emits a sealed interface and one struct per variant
func (g *generator) enumDecl(e *ast.EnumDecl) {
	marker := "is" + e.Name
	g.line("type %s interface {", e.Name)
	g.indent++
	g.line("%s()", marker)
	g.indent--
	g.line("}")
	for _, v := range e.Variants {
		typ := e.Name + v.Name
		g.out.WriteString("\n")
		switch v.Kind {
		case ast.VariantTuple:
			g.line("type %s struct {", typ)
			g.indent++
			for i, t := range v.Types {
				g.line("Field%d %s", i, g.goType(t))
			}
			g.indent--
			g.line("}")
		case ast.VariantStruct:
			g.line("type %s struct {", typ)
			g.indent++
			for _, f := range v.Fields {
				g.line("%s %s", f.Name, g.goType(f.Type))
			}
			g.indent--
			g.line("}")
		default:
			g.line("type %s struct{}", typ)
		}
		g.out.WriteString("\n")
		g.line("func (%s) %s() {}", typ, marker)
	}
}

func (g *generator) traitDecl(t *ast.TraitDecl) {
	g.line("type %s interface {", t.Name)
	g.indent++
	for _, m := range t.Methods {
		g.line("%s(%s)%s", exported(m.Name), g.params(m), g.results(m.ReturnType))
	}
	g.indent--
	g.line("}")
}

// function emits a free function, or a method when recv names the type
func (g *generator) function(fn *ast.FunctionDecl, recv string) {
	if fn.DocComment != "" {
		g.doc(fn.DocComment)
	}
	saved := g.recv
	g.recv = recv
	defer func() { g.recv = saved }()

	name := fn.Name
	var head string
	switch {
	case recv == "":
		head = "func " + name + typeParams(fn.TypeParams)
	case fn.SelfParam() != nil && g.enums[recv] != nil:
		// enums are interfaces and cannot have methods of their own
		head = "func " + recv + exported(name)
	case fn.SelfParam() != nil:
		head = "func (self *" + recv + ") " + exported(name)
	case name == "new":
		head = "func New" + recv
	default:
		head = "func " + recv + exported(name)
	}
	params := g.params(fn)
	if fn.SelfParam() != nil && g.enums[recv] != nil {
		params = strings.TrimSuffix("self "+recv+", "+params, ", ")
	}
	g.line("%s(%s)%s {", head, params, g.results(fn.ReturnType))
	g.pushScope()
	defer g.popScope()
	for _, p := range fn.Parameters {
		if p.IsSelf() {
			g.declare("self", &ast.CustomType{Name: recv})
			continue
		}
		g.declare(p.Name, p.Type)
	}
	g.indent++
	returns := fn.ReturnType != nil && !ast.IsUnit(fn.ReturnType)
	g.block(fn.Body, returns)
	g.indent--
	g.line("}")
}

func (g *generator) params(fn *ast.FunctionDecl) string {
	parts := make([]string, 0, len(fn.Parameters))
	for _, p := range fn.Parameters {
		if p.IsSelf() {
			continue
		}
		name := p.Name
		if name == "" {
			name = "_"
		}
		parts = append(parts, name+" "+g.goType(p.Type))
	}
	return strings.Join(parts, ", ")
}

func (g *generator) results(t ast.Type) string {
	if t == nil || ast.IsUnit(t) {
		return ""
	}
	return " " + g.goType(t)
}

func (g *generator) doc(text string) {
	for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		g.line("// %s", strings.TrimSpace(l))
	}
}

func exported(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	out := string(r)
	// snake_case methods become CamelCase
	parts := strings.Split(out, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			p := []rune(parts[i])
			p[0] = unicode.ToUpper(p[0])
			parts[i] = string(p)
		}
	}
	return strings.Join(parts, "")
}

func typeParams(params []ast.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for _, p := range params {
		names = append(names, p.Name)
	}
	return "[" + strings.Join(names, ", ") + " any]"
}

var primitiveTypes = map[ast.PrimitiveKind]string{
	ast.TypeInt:    "int",
	ast.TypeInt32:  "int32",
	ast.TypeUint:   "uint64",
	ast.TypeFloat:  "float64",
	ast.TypeBool:   "bool",
	ast.TypeString: "string",
}

var helperSource = map[string]string{
	"assert": `func assert(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}`,
	"hasKey": `func hasKey[K comparable, V any](m map[K]V, k K) bool {
	_, ok := m[k]
	return ok
}`,
	"isVariant": `func isVariant[T any](v any) bool {
	_, ok := v.(T)
	return ok
}`,
	"lookup": `func lookup[K comparable, V any](m map[K]V, k K) *V {
	if v, ok := m[k]; ok {
		return &v
	}
	return nil
}`,
	"some": `func some[T any](v T) *T {
	return &v
}`,
	"unwrapOr": `func unwrapOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}`,
}

// emitHelpers appends the generic helpers the translation referenced
func (g *generator) emitHelpers() {
	names := make([]string, 0, len(g.helpers))
	for name := range g.helpers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g.out.WriteString("\n" + helperSource[name] + "\n")
	}
}

var scalarTypes = map[string]string{
	"i8": "int8", "i16": "int16", "i32": "int32", "i64": "int64", "isize": "int",
	"u8": "uint8", "u16": "uint16", "u32": "uint32", "u64": "uint64", "usize": "int",
	"f32": "float32", "f64": "float64", "bool": "bool", "char": "rune",
	"String": "string", "str": "string",
}

func (g *generator) goType(t ast.Type) string {
	switch ty := t.(type) {
	case nil:
		return ""
	case *ast.PrimitiveType:
		return primitiveTypes[ty.Kind]
	case *ast.CustomType:
		if ty.Name == "Self" && g.recv != "" {
			return g.recv
		}
		if s, ok := scalarTypes[ty.Name]; ok {
			return s
		}
		if i := strings.LastIndex(ty.Name, "::"); i >= 0 {
			return ty.Name[i+2:]
		}
		return ty.Name
	case *ast.GenericType:
		return ty.Name
	case *ast.VecType:
		return "[]" + g.goType(ty.Elem)
	case *ast.ArrayType:
		if ty.Size == "" {
			return "[]" + g.goType(ty.Elem)
		}
		return "[" + ty.Size + "]" + g.goType(ty.Elem)
	case *ast.OptionType:
		return "*" + g.goType(ty.Inner)
	case *ast.ResultType:
		return g.goType(ty.Ok)
	case *ast.ReferenceType:
		return g.goType(ty.Inner)
	case *ast.MutableReferenceType:
		return "*" + g.goType(ty.Inner)
	case *ast.ParameterizedType:
		base := ty.Base
		if i := strings.LastIndex(base, "::"); i >= 0 {
			base = base[i+2:]
		}
		switch base {
		case "HashMap", "BTreeMap", "Map":
			if len(ty.Args) == 2 {
				return "map[" + g.goType(ty.Args[0]) + "]" + g.goType(ty.Args[1])
			}
		case "HashSet", "BTreeSet":
			if len(ty.Args) == 1 {
				return "map[" + g.goType(ty.Args[0]) + "]struct{}"
			}
		case "Vec", "VecDeque":
			if len(ty.Args) == 1 {
				return "[]" + g.goType(ty.Args[0])
			}
		case "Box", "Rc", "Arc":
			if len(ty.Args) == 1 {
				return "*" + g.goType(ty.Args[0])
			}
		}
		args := make([]string, 0, len(ty.Args))
		for _, a := range ty.Args {
			args = append(args, g.goType(a))
		}
		return base + "[" + strings.Join(args, ", ") + "]"
	case *ast.TupleType:
		if len(ty.Elems) == 0 {
			return "struct{}"
		}
		return "[]any"
	case *ast.FunctionPointerType:
		params := make([]string, 0, len(ty.Params))
		for _, p := range ty.Params {
			params = append(params, g.goType(p))
		}
		return "func(" + strings.Join(params, ", ") + ")" + g.results(ty.Return)
	case *ast.TraitObjectType:
		return ty.Name
	case *ast.ImplTraitType:
		return ty.Name
	}
	return "any"
}
