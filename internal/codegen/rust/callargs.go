package rust

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/ast"
)

// callSite describes the callee of an argument list
type callSite struct {
	method   string
	sig      *analyzer.FunctionSignature
	receiver bool // called with method syntax on a value
}

func (s callSite) slot(i int) (analyzer.OwnershipMode, ast.Type, bool) {
	if s.sig == nil {
		return analyzer.Owned, nil, false
	}
	mode, ok := s.sig.ArgOwnership(i)
	return mode, s.sig.ArgType(i), ok
}

// displayMethods take an owned String as their first argument
var displayMethods = map[string]bool{
	"push":      true,
	"insert":    true,
	"draw_text": true,
	"set_title": true,
	"set_text":  true,
	"set_label": true,
	"log":       true,
	"print":     true,
}

// refMethods lists standard library methods whose argument is usually taken
// by reference. Map lookups take their key by reference; the others are
// true for slice and string searches.
var refMethods = map[string]bool{
	"remove":        true,
	"get":           true,
	"contains_key":  true,
	"get_mut":       true,
	"contains":      false,
	"binary_search": false,
	"starts_with":   false,
	"ends_with":     false,
}

func (g *Generator) args(site callSite, args []*ast.Argument) string {
	parts := make([]string, 0, len(args))
	for i, a := range args {
		parts = append(parts, g.arg(site, i, len(args), a.Value))
	}
	return strings.Join(parts, ", ")
}

// arg adapts one argument to the callee: &, &mut, .clone(), .to_string()
// or nothing
func (g *Generator) arg(site callSite, i, argc int, e ast.Expression) string {
	s := g.expr(e)

	if isStringLiteral(e) {
		if g.wantsOwnedString(site, i) {
			return s + ".to_string()"
		}
		return s
	}
	if g.neverRef(e) {
		return s + g.cloneSuffix(site, i, e)
	}

	if mode, t, ok := site.slot(i); ok {
		switch mode {
		case analyzer.Borrowed:
			if g.isCopyExpr(e) || (t != nil && g.res.IsCopy(t)) {
				return s
			}
			return "&" + refOperand(e, s)
		case analyzer.MutBorrowed:
			return "&mut " + refOperand(e, s)
		}
		return s + g.cloneSuffix(site, i, e)
	}

	if site.receiver {
		if ref, known := g.stdlibRef(site.method, argc, e); known {
			if ref {
				return "&" + refOperand(e, s)
			}
			return s
		}
	}
	return s + g.cloneSuffix(site, i, e)
}

func refOperand(e ast.Expression, s string) string {
	switch e.(type) {
	case *ast.BinaryExpr, *ast.CastExpr, *ast.RangeExpr:
		return "(" + s + ")"
	}
	return s
}

// wantsOwnedString reports whether a string literal at position i must be
// converted to a String
func (g *Generator) wantsOwnedString(site callSite, i int) bool {
	if i == 0 && displayMethods[site.method] {
		return true
	}
	if mode, t, ok := site.slot(i); ok {
		if mode != analyzer.Owned || ast.IsReference(t) {
			return false
		}
		switch t.(type) {
		case nil, *ast.GenericType:
			return true
		}
		return isStringType(t)
	}
	if i != 0 || site.sig != nil {
		return false
	}
	m := site.method
	return strings.HasPrefix(m, "add_") || strings.HasPrefix(m, "set_") || m == "new" || strings.HasSuffix(m, "_new")
}

// neverRef reports whether e must be passed as written: literals, values
// that already are references, dereferences and Copy casts
func (g *Generator) neverRef(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.Literal:
		return true
	case *ast.UnaryExpr:
		return x.Op == ast.UnaryRef || x.Op == ast.UnaryMutRef || x.Op == ast.UnaryDeref
	case *ast.CastExpr:
		return g.res.IsCopy(x.Type)
	case *ast.Identifier:
		if g.fn == nil {
			return false
		}
		if x.Name == "self" {
			mode, _ := g.mode("self")
			return mode == analyzer.Borrowed || mode == analyzer.MutBorrowed
		}
		return g.fn.refs[x.Name] || g.fn.borrowedIter[x.Name]
	}
	return false
}

// stdlibRef applies the standard library table when no signature is known
func (g *Generator) stdlibRef(method string, argc int, e ast.Expression) (ref, known bool) {
	mapStyle, ok := refMethods[method]
	if !ok {
		return false, false
	}
	if argc > 1 {
		return false, true
	}
	if _, isCast := e.(*ast.CastExpr); isCast {
		return false, true
	}
	if method == "contains_key" {
		return true, true
	}
	if g.isCopyExpr(e) {
		// Vec::remove and Vec::get take an index by value; map keys do not
		return mapStyle && looksLikeKey(e), true
	}
	return true, true
}

// looksLikeKey guesses whether a Copy argument is a map key rather than an index
func looksLikeKey(e ast.Expression) bool {
	var name string
	switch x := e.(type) {
	case *ast.Identifier:
		name = x.Name
	case *ast.FieldAccessExpr:
		name = x.Field
	default:
		return false
	}
	switch {
	case name == "id", name == "key", name == "entity":
		return true
	case strings.HasSuffix(name, "_id"), strings.HasSuffix(name, "_key"):
		return true
	}
	return false
}

// cloneSuffix returns ".clone()" when e is borrowed but the callee keeps it
func (g *Generator) cloneSuffix(site callSite, i int, e ast.Expression) string {
	if g.isCopyExpr(e) {
		return ""
	}
	storing := strings.HasPrefix(site.method, "push") || strings.HasPrefix(site.method, "insert")
	mode, _, known := site.slot(i)
	owned := known && mode == analyzer.Owned

	if id, ok := e.(*ast.Identifier); ok && g.fn != nil && g.fn.borrowedIter[id.Name] {
		if storing && !known {
			if g.returnsVecOfRefs() {
				return ""
			}
			return ".clone()"
		}
		if owned {
			return ".clone()"
		}
		return ""
	}
	if g.fieldThroughBorrowed(e) && (owned || (storing && !known)) {
		return ".clone()"
	}
	return ""
}

// needsOwnedCopy reports whether e must be cloned to be moved: a borrowed
// iteration variable or a field read through a borrowed parameter
func (g *Generator) needsOwnedCopy(e ast.Expression) bool {
	if g.isCopyExpr(e) {
		return false
	}
	if id, ok := e.(*ast.Identifier); ok && g.fn != nil && g.fn.borrowedIter[id.Name] {
		return true
	}
	return g.fieldThroughBorrowed(e)
}

// fieldThroughBorrowed reports whether e is a field path rooted at a
// parameter (or receiver) taken by reference
func (g *Generator) fieldThroughBorrowed(e ast.Expression) bool {
	fa, ok := e.(*ast.FieldAccessExpr)
	if !ok || g.fn == nil {
		return false
	}
	if _, static := g.staticPath(fa); static {
		return false
	}
	root := analyzer.RootName(fa)
	if root == "self" {
		mode, _ := g.mode("self")
		return mode == analyzer.Borrowed || mode == analyzer.MutBorrowed
	}
	if g.fn.borrowedIter[root] {
		return true
	}
	return root != "" && g.isBorrowedParam(root)
}

// returnValue adapts a value flowing to the function result
func (g *Generator) returnValue(e ast.Expression) string {
	s := g.expr(e)
	ret := g.returnType()
	switch {
	case isStringLiteral(e):
		if ret != nil && isStringType(ret) && !ast.IsReference(ret) {
			return s + ".to_string()"
		}
	case ret != nil && ast.IsReference(ret):
		return s
	case g.needsOwnedCopy(e):
		return s + ".clone()"
	}
	if m, ok := e.(*ast.MethodCallExpr); ok && len(m.Args) <= 1 {
		switch m.Method {
		case "get", "first", "last":
			if opt, ok := ret.(*ast.OptionType); ok && !ast.IsReference(opt.Inner) && g.sigFor(m) == nil {
				return s + ".cloned()"
			}
		}
	}
	return s
}

func (g *Generator) sigFor(m *ast.MethodCallExpr) *analyzer.FunctionSignature {
	sig, _ := g.methodSignature(m)
	return sig
}

// callSignature finds the signature of a function called by path
func (g *Generator) callSignature(name string) *analyzer.FunctionSignature {
	if name == "" || g.registry == nil {
		return nil
	}
	if sig, ok := g.registry.LookupCall(name); ok {
		return sig
	}
	if i := lastSep(name); i >= 0 && g.isModule(rootSegment(name)) {
		if sig, ok := g.registry.Lookup(name[i+2:]); ok {
			return sig
		}
	}
	return nil
}
