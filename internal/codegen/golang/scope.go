package golang

import (
	"fmt"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// scope records local types and match bindings that alias an expression
type scope struct {
	types   map[string]ast.Type
	renames map[string]string
}

func (g *generator) pushScope() {
	g.scopes = append(g.scopes, &scope{types: make(map[string]ast.Type)})
}

func (g *generator) popScope() {
	g.scopes = g.scopes[:len(g.scopes)-1]
}

func (g *generator) withRenames(renames map[string]string, f func()) {
	g.pushScope()
	g.scopes[len(g.scopes)-1].renames = renames
	f()
	g.popScope()
}

// declare records a local; t may be nil when the type is unknown
func (g *generator) declare(name string, t ast.Type) {
	if len(g.scopes) == 0 || name == "" || name == "_" {
		return
	}
	g.scopes[len(g.scopes)-1].types[name] = t
}

func (g *generator) lookup(name string) ast.Type {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		s := g.scopes[i]
		if t, ok := s.types[name]; ok {
			return t
		}
		if _, ok := s.renames[name]; ok {
			return nil
		}
	}
	return nil
}

// lookupOK reports whether name is a declared local
func (g *generator) lookupOK(name string) bool {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if _, ok := g.scopes[i].types[name]; ok {
			return true
		}
	}
	return false
}

func (g *generator) renamed(name string) (string, bool) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		s := g.scopes[i]
		if _, ok := s.types[name]; ok {
			return "", false
		}
		if alias, ok := s.renames[name]; ok {
			return alias, true
		}
	}
	return "", false
}

func (g *generator) temp() string {
	name := fmt.Sprintf("tmp%d", g.tmp)
	g.tmp++
	return name
}

func deref(t ast.Type) ast.Type {
	for {
		switch r := t.(type) {
		case *ast.ReferenceType:
			t = r.Inner
		case *ast.MutableReferenceType:
			t = r.Inner
		default:
			return t
		}
	}
}

func (g *generator) isStruct(t ast.Type) bool {
	ct, ok := deref(t).(*ast.CustomType)
	return ok && g.structs[ct.Name]
}

func isStringType(t ast.Type) bool {
	switch ty := deref(t).(type) {
	case *ast.PrimitiveType:
		return ty.Kind == ast.TypeString
	case *ast.CustomType:
		return ty.Name == "String" || ty.Name == "str"
	}
	return false
}

// isPointer reports expressions whose Go form is a pointer to dereference
func (g *generator) isPointer(e ast.Expression) bool {
	switch t := g.typeOf(e).(type) {
	case *ast.OptionType:
		return true
	case *ast.ParameterizedType:
		return t.Base == "Box" || t.Base == "Rc" || t.Base == "Arc"
	}
	return false
}

func (g *generator) isMap(e ast.Expression) bool {
	t := g.typeOf(e)
	return t != nil && strings.HasPrefix(g.goType(deref(t)), "map[")
}

func (g *generator) letType(t ast.Type, value ast.Expression) ast.Type {
	if t != nil {
		return t
	}
	return g.typeOf(value)
}

// resultType is the Go type of an if, match or block used as a value, or ""
func (g *generator) resultType(e ast.Expression) string {
	t := g.typeOf(e)
	if t == nil {
		return ""
	}
	return g.goType(t)
}

func lastValue(stmts []ast.Statement) ast.Expression {
	if len(stmts) == 0 {
		return nil
	}
	if es, ok := stmts[len(stmts)-1].(*ast.ExpressionStmt); ok && !es.Semicolon {
		return es.Expression
	}
	return nil
}

// typeOf infers the source type of e where locals, signatures and
// literals make it evident. It returns nil otherwise.
func (g *generator) typeOf(e ast.Expression) ast.Type {
	switch x := e.(type) {
	case *ast.Literal:
		switch x.Kind {
		case ast.LitInt:
			return &ast.PrimitiveType{Kind: ast.TypeInt}
		case ast.LitFloat:
			return &ast.PrimitiveType{Kind: ast.TypeFloat}
		case ast.LitString:
			return &ast.PrimitiveType{Kind: ast.TypeString}
		case ast.LitBool:
			return &ast.PrimitiveType{Kind: ast.TypeBool}
		case ast.LitChar:
			return &ast.CustomType{Name: "char"}
		}
	case *ast.Identifier:
		if t := g.lookup(x.Name); t != nil {
			return t
		}
		if typ, ok := g.variantType(x.Name); ok && !g.lookupOK(x.Name) {
			return &ast.CustomType{Name: g.variantEnum[typ]}
		}
		return nil
	case *ast.FieldAccessExpr:
		if ct, ok := deref(g.typeOf(x.Object)).(*ast.CustomType); ok {
			return g.fields[ct.Name][x.Field]
		}
	case *ast.StructLiteral:
		name := x.Name
		if name == "Self" {
			name = g.recv
		}
		if i := strings.Index(name, "::"); i >= 0 {
			name = name[:i]
		}
		return &ast.CustomType{Name: name}
	case *ast.CallExpr:
		return g.callType(x)
	case *ast.MethodCallExpr:
		return g.methodType(x)
	case *ast.BinaryExpr:
		switch x.Op {
		case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
			return &ast.PrimitiveType{Kind: ast.TypeBool}
		}
		if t := g.typeOf(x.Left); t != nil {
			return deref(t)
		}
		return g.typeOf(x.Right)
	case *ast.UnaryExpr:
		if x.Op == ast.UnaryNot {
			return &ast.PrimitiveType{Kind: ast.TypeBool}
		}
		return g.typeOf(x.Operand)
	case *ast.CastExpr:
		return x.Type
	case *ast.IndexExpr:
		switch t := deref(g.typeOf(x.Object)).(type) {
		case *ast.VecType:
			if _, ok := x.Index.(*ast.RangeExpr); ok {
				return t
			}
			return t.Elem
		case *ast.ArrayType:
			return t.Elem
		}
	case *ast.ArrayLiteral:
		if len(x.Elements) > 0 {
			if t := g.typeOf(x.Elements[0]); t != nil {
				return &ast.VecType{Elem: t}
			}
		}
	case *ast.MapLiteral:
		if len(x.Entries) > 0 {
			k, v := g.typeOf(x.Entries[0].Key), g.typeOf(x.Entries[0].Value)
			if k != nil && v != nil {
				return &ast.ParameterizedType{Base: "HashMap", Args: []ast.Type{k, v}}
			}
		}
	case *ast.MacroInvocation:
		switch x.Name {
		case "format":
			return &ast.PrimitiveType{Kind: ast.TypeString}
		case "vec":
			if len(x.Args) > 0 {
				if t := g.typeOf(x.Args[0]); t != nil {
					return &ast.VecType{Elem: t}
				}
			}
		}
	case *ast.TryExpr:
		if r, ok := g.typeOf(x.Expr).(*ast.ResultType); ok {
			return r.Ok
		}
		if o, ok := g.typeOf(x.Expr).(*ast.OptionType); ok {
			return o.Inner
		}
	case *ast.IfExpr:
		if t := g.typeOf(lastValue(x.Then.Statements)); t != nil {
			return t
		}
		return g.typeOf(x.Else)
	case *ast.BlockExpr:
		return g.typeOf(lastValue(x.Statements))
	case *ast.MatchExpr:
		for _, arm := range x.Arms {
			body := arm.Body
			if b, ok := body.(*ast.BlockExpr); ok {
				body = lastValue(b.Statements)
			}
			if t := g.typeOf(body); t != nil {
				return t
			}
		}
	}
	return nil
}

func (g *generator) callType(c *ast.CallExpr) ast.Type {
	id, ok := c.Function.(*ast.Identifier)
	if !ok {
		return nil
	}
	switch id.Name {
	case "format":
		return &ast.PrimitiveType{Kind: ast.TypeString}
	case "Some":
		if len(c.Args) == 1 {
			if t := g.typeOf(c.Args[0].Value); t != nil {
				return &ast.OptionType{Inner: t}
			}
		}
		return nil
	case "Ok":
		if len(c.Args) == 1 {
			return g.typeOf(c.Args[0].Value)
		}
		return nil
	}
	if fn := g.funcs[id.Name]; fn != nil {
		return fn.ReturnType
	}
	parts := strings.Split(id.Name, "::")
	if len(parts) < 2 {
		return nil
	}
	base, last := parts[len(parts)-2], parts[len(parts)-1]
	if base == "Self" {
		base = g.recv
	}
	if g.enums[base] != nil {
		return &ast.CustomType{Name: base}
	}
	if fn := g.methods[base][last]; fn != nil {
		if ct, ok := fn.ReturnType.(*ast.CustomType); ok && ct.Name == "Self" {
			return &ast.CustomType{Name: base}
		}
		return fn.ReturnType
	}
	if last == "new" && g.structs[base] {
		return &ast.CustomType{Name: base}
	}
	return nil
}

func (g *generator) methodType(m *ast.MethodCallExpr) ast.Type {
	switch m.Method {
	case "len", "count":
		return &ast.PrimitiveType{Kind: ast.TypeInt}
	case "to_string", "to_uppercase", "to_lowercase", "trim", "replace", "join", "to_owned", "as_str":
		if m.Method != "to_owned" || isStringType(g.typeOf(m.Object)) {
			return &ast.PrimitiveType{Kind: ast.TypeString}
		}
	case "is_empty", "is_some", "is_none", "contains", "contains_key", "starts_with", "ends_with":
		return &ast.PrimitiveType{Kind: ast.TypeBool}
	case "clone", "iter", "into_iter":
		return g.typeOf(m.Object)
	case "unwrap", "expect", "unwrap_or":
		switch t := g.typeOf(m.Object).(type) {
		case *ast.OptionType:
			return t.Inner
		case *ast.ResultType:
			return t.Ok
		}
	}
	if ct, ok := deref(g.typeOf(m.Object)).(*ast.CustomType); ok {
		if fn := g.methods[ct.Name][m.Method]; fn != nil {
			return fn.ReturnType
		}
	}
	return nil
}
