package rust

import (
	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/ast"
)

// fnScope is the lexical context of the function being emitted
type fnScope struct {
	decl *ast.FunctionDecl
	info *analyzer.AnalyzedFunction

	// locals maps every visible binding to its known type, or nil
	locals map[string]ast.Type
	// refs names bindings whose generated type is already a reference
	refs map[string]bool
	// usize names bindings known to hold a usize
	usize map[string]bool
	// borrowedIter names loop variables bound by a borrowed iteration
	borrowedIter map[string]bool
}

func (g *Generator) enterFunction(decl *ast.FunctionDecl) func() {
	prev := g.fn
	info := g.res.Function(decl)
	s := &fnScope{
		decl:         decl,
		info:         info,
		locals:       make(map[string]ast.Type),
		refs:         make(map[string]bool),
		usize:        make(map[string]bool),
		borrowedIter: make(map[string]bool),
	}
	for _, p := range decl.Parameters {
		if p.IsSelf() {
			continue
		}
		if p.Pattern != nil {
			for _, name := range ast.BoundNames(p.Pattern) {
				s.locals[name] = nil
			}
			continue
		}
		s.locals[p.Name] = p.Type
		if isUsizeType(p.Type) {
			s.usize[p.Name] = true
		}
		switch p.Type.(type) {
		case *ast.ReferenceType, *ast.MutableReferenceType:
			s.refs[p.Name] = true
			continue
		}
		mode, _ := info.Ownership(p.Name)
		if mode == analyzer.MutBorrowed || (mode == analyzer.Borrowed && !g.res.IsCopy(p.Type)) {
			s.refs[p.Name] = true
		}
	}
	g.fn = s
	return func() { g.fn = prev }
}

// mode returns the ownership chosen for a parameter of the current function
func (g *Generator) mode(name string) (analyzer.OwnershipMode, bool) {
	if g.fn == nil || g.fn.info == nil {
		return analyzer.Owned, false
	}
	return g.fn.info.Ownership(name)
}

// isBorrowedParam reports whether name is a parameter passed by shared reference
func (g *Generator) isBorrowedParam(name string) bool {
	if g.fn == nil {
		return false
	}
	for _, p := range g.fn.decl.Parameters {
		if p.Name != name {
			continue
		}
		if _, ok := p.Type.(*ast.ReferenceType); ok {
			return true
		}
		mode, _ := g.mode(name)
		return mode == analyzer.Borrowed
	}
	return false
}

func (g *Generator) isLocal(name string) bool {
	if g.fn == nil {
		return false
	}
	if name == "self" {
		return true
	}
	_, ok := g.fn.locals[name]
	return ok
}

func (g *Generator) bind(name string, t ast.Type) {
	if g.fn == nil || name == "" || name == "_" {
		return
	}
	g.fn.locals[name] = t
	delete(g.fn.refs, name)
	delete(g.fn.borrowedIter, name)
	if isUsizeType(t) {
		g.fn.usize[name] = true
	} else {
		delete(g.fn.usize, name)
	}
}

func (g *Generator) bindPattern(p ast.Pattern) {
	for _, name := range ast.BoundNames(p) {
		g.bind(name, nil)
	}
}

func (g *Generator) returnType() ast.Type {
	if g.fn == nil {
		return nil
	}
	return g.fn.decl.ReturnType
}

// returnsVecOfRefs reports whether the current function returns Vec<&T>
func (g *Generator) returnsVecOfRefs() bool {
	vec, ok := g.returnType().(*ast.VecType)
	if !ok {
		return false
	}
	switch vec.Elem.(type) {
	case *ast.ReferenceType, *ast.MutableReferenceType:
		return true
	}
	return false
}

// typeOf makes a best-effort guess at the static type of e, or nil
func (g *Generator) typeOf(e ast.Expression) ast.Type {
	switch x := e.(type) {
	case *ast.Literal:
		switch x.Kind {
		case ast.LitInt:
			return &ast.PrimitiveType{Kind: ast.TypeInt}
		case ast.LitFloat:
			return &ast.PrimitiveType{Kind: ast.TypeFloat}
		case ast.LitBool:
			return &ast.PrimitiveType{Kind: ast.TypeBool}
		case ast.LitChar:
			return &ast.CustomType{Name: "char"}
		case ast.LitString:
			return &ast.ReferenceType{Inner: &ast.PrimitiveType{Kind: ast.TypeString}}
		}
	case *ast.Identifier:
		if x.Name == "self" {
			if g.implType != "" {
				return &ast.CustomType{Name: g.implType}
			}
			return nil
		}
		if g.fn != nil {
			if g.fn.usize[x.Name] {
				return &ast.CustomType{Name: "usize"}
			}
			return g.fn.locals[x.Name]
		}
	case *ast.FieldAccessExpr:
		return g.fieldType(g.typeOf(x.Object), x.Field)
	case *ast.IndexExpr:
		if _, ok := x.Index.(*ast.RangeExpr); ok {
			return nil
		}
		switch ct := derefType(g.typeOf(x.Object)).(type) {
		case *ast.VecType:
			return ct.Elem
		case *ast.ArrayType:
			return ct.Elem
		}
	case *ast.CastExpr:
		return x.Type
	case *ast.StructLiteral:
		return &ast.CustomType{Name: x.Name}
	case *ast.UnaryExpr:
		inner := g.typeOf(x.Operand)
		switch x.Op {
		case ast.UnaryRef:
			if inner != nil {
				return &ast.ReferenceType{Inner: inner}
			}
		case ast.UnaryMutRef:
			if inner != nil {
				return &ast.MutableReferenceType{Inner: inner}
			}
		case ast.UnaryDeref:
			return derefType(inner)
		default:
			return inner
		}
	case *ast.BinaryExpr:
		switch x.Op {
		case "==", "!=", "<", ">", "<=", ">=", "&&", "||":
			return &ast.PrimitiveType{Kind: ast.TypeBool}
		}
		if t := g.typeOf(x.Left); t != nil {
			return t
		}
		return g.typeOf(x.Right)
	case *ast.MacroInvocation:
		if x.Name == "format" {
			return &ast.PrimitiveType{Kind: ast.TypeString}
		}
	case *ast.MethodCallExpr:
		switch x.Method {
		case "len", "count", "capacity":
			return &ast.CustomType{Name: "usize"}
		case "clone", "to_owned":
			return derefType(g.typeOf(x.Object))
		case "to_string", "to_uppercase", "to_lowercase":
			return &ast.PrimitiveType{Kind: ast.TypeString}
		}
		if sig, owner := g.methodSignature(x); sig != nil {
			return resolveSelf(sig.ReturnType, owner)
		}
	case *ast.CallExpr:
		name := calleeName(x.Function)
		if sig, ok := g.registry.LookupCall(name); ok {
			owner := ""
			if i := lastSep(name); i >= 0 {
				owner = name[:i]
			}
			return resolveSelf(sig.ReturnType, owner)
		}
	}
	return nil
}

// fieldType resolves field on a value of type t
func (g *Generator) fieldType(t ast.Type, field string) ast.Type {
	switch ct := derefType(t).(type) {
	case *ast.CustomType:
		if s, ok := g.structs[ct.Name]; ok {
			for _, f := range s.Fields {
				if f.Name == field {
					return f.Type
				}
			}
		}
	case *ast.TupleType:
		for i, e := range ct.Elems {
			if itoa(i) == field {
				return e
			}
		}
	}
	return nil
}

func resolveSelf(t ast.Type, owner string) ast.Type {
	if ct, ok := t.(*ast.CustomType); ok && ct.Name == "Self" && owner != "" {
		return &ast.CustomType{Name: owner}
	}
	return t
}

// isCopyExpr reports whether e certainly evaluates to a Copy value
func (g *Generator) isCopyExpr(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.Literal:
		return true
	case *ast.CastExpr:
		return g.res.IsCopy(x.Type)
	case *ast.Identifier:
		if g.fn != nil && g.fn.usize[x.Name] {
			return true
		}
	}
	t := g.typeOf(e)
	return t != nil && g.res.IsCopy(t)
}

// isUsizeExpr reports whether e is known to produce a usize, or is an
// untyped integer literal
func (g *Generator) isUsizeExpr(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.Literal:
		return x.Kind == ast.LitInt
	case *ast.BinaryExpr:
		switch x.Op {
		case "+", "-", "*", "/", "%":
			return g.isUsizeExpr(x.Left) && g.isUsizeExpr(x.Right)
		}
		return false
	}
	return isUsizeType(g.typeOf(e))
}

// isIntExpr reports whether e is known to be an integer of a type other than usize
func (g *Generator) isIntExpr(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.Literal:
		return false
	case *ast.BinaryExpr:
		switch x.Op {
		case "+", "-", "*", "/", "%":
			return g.isIntExpr(x.Left) || g.isIntExpr(x.Right)
		}
		return false
	}
	return isNonUsizeInt(g.typeOf(e))
}

// methodSignature finds the signature of a method call and the type that owns it
func (g *Generator) methodSignature(m *ast.MethodCallExpr) (*analyzer.FunctionSignature, string) {
	if path, ok := g.staticPath(m.Object); ok {
		if g.isModule(rootSegment(path)) {
			if sig, ok := g.registry.Lookup(path + "::" + m.Method); ok {
				return sig, ""
			}
			return nil, ""
		}
		sig, _ := g.registry.LookupMethod(path, m.Method)
		return sig, path
	}
	owner := typeName(g.typeOf(m.Object))
	switch {
	case g.structs[owner] != nil || g.enums[owner] != nil:
		sig, _ := g.registry.LookupMethod(owner, m.Method)
		return sig, owner
	case owner != "":
		sig, _ := g.registry.Lookup(owner + "::" + m.Method)
		return sig, owner
	case stdMethods[m.Method]:
		return nil, ""
	}
	sig, _ := g.registry.Lookup(m.Method)
	return sig, ""
}

// stdMethods are collection and string methods that an unknown receiver is
// assumed to provide, so a user method of the same name is not consulted
var stdMethods = map[string]bool{
	"push": true, "pop": true, "insert": true, "remove": true, "get": true,
	"get_mut": true, "contains": true, "contains_key": true, "len": true,
	"is_empty": true, "iter": true, "clear": true, "clone": true,
	"binary_search": true, "starts_with": true, "ends_with": true,
}

// staticPath reports whether e names a type or module rather than a value,
// returning its Rust path
func (g *Generator) staticPath(e ast.Expression) (string, bool) {
	switch x := e.(type) {
	case *ast.Identifier:
		if g.isLocal(x.Name) {
			return "", false
		}
		name := pathName(x.Name)
		if isUpper(rootSegment(name)) || g.isModule(rootSegment(name)) || lastSep(name) >= 0 {
			return name, true
		}
	case *ast.FieldAccessExpr:
		if base, ok := g.staticPath(x.Object); ok {
			return base + "::" + x.Field, true
		}
	}
	return "", false
}

// crateRoots are module paths usable without a `use`
var crateRoots = map[string]bool{"std": true, "core": true, "alloc": true}

func (g *Generator) isModule(name string) bool {
	return g.modules[name] || crateRoots[name]
}

func calleeName(e ast.Expression) string {
	switch x := e.(type) {
	case *ast.Identifier:
		return pathName(x.Name)
	case *ast.FieldAccessExpr:
		base := calleeName(x.Object)
		if base == "" {
			return ""
		}
		return base + "::" + x.Field
	}
	return ""
}

func rootSegment(path string) string {
	for i := 0; i+1 < len(path); i++ {
		if path[i] == ':' && path[i+1] == ':' {
			return path[:i]
		}
	}
	return path
}

func lastSegment(path string) string {
	if i := lastSep(path); i >= 0 {
		return path[i+2:]
	}
	return path
}

func lastSep(path string) int {
	for i := len(path) - 2; i >= 0; i-- {
		if path[i] == ':' && path[i+1] == ':' {
			return i
		}
	}
	return -1
}

func itoa(i int) string {
	if i < 10 {
		return string(rune('0' + i))
	}
	return itoa(i/10) + string(rune('0'+i%10))
}
