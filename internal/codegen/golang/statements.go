package golang

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// tail says what the last expression of a block turns into
type tail struct {
	kind   tailKind
	target string // tailAssign
}

type tailKind int

const (
	tailNone tailKind = iota
	tailReturn
	tailAssign
)

func (g *generator) block(stmts []ast.Statement, returns bool) {
	t := tail{}
	if returns {
		t.kind = tailReturn
	}
	g.stmts(stmts, t)
}

func (g *generator) stmts(stmts []ast.Statement, t tail) {
	g.pushScope()
	defer g.popScope()
	for i, s := range stmts {
		if g.err != nil {
			return
		}
		if i == len(stmts)-1 && t.kind != tailNone {
			g.tailStmt(s, t)
			continue
		}
		g.stmt(s)
	}
}

// tailStmt emits the final statement of a block whose value is used
func (g *generator) tailStmt(s ast.Statement, t tail) {
	switch st := s.(type) {
	case *ast.ExpressionStmt:
		if st.Semicolon {
			g.stmt(s)
			return
		}
		g.tailExpr(st.Expression, t)
	case *ast.IfStmt:
		g.ifStmt(st, t)
	case *ast.MatchStmt:
		g.match(st, st.Value, st.Arms, t)
	default:
		g.stmt(s)
	}
}

func (g *generator) tailExpr(e ast.Expression, t tail) {
	switch x := e.(type) {
	case *ast.IfExpr:
		g.ifExpr(x, t)
		return
	case *ast.MatchExpr:
		g.match(x, x.Value, x.Arms, t)
		return
	case *ast.BlockExpr:
		g.stmts(x.Statements, t)
		return
	}
	if isUnitCall(e) {
		g.line("%s", g.expr(e))
		if t.kind == tailReturn {
			g.line("return")
		}
		return
	}
	switch t.kind {
	case tailReturn:
		g.returnValue(e)
	case tailAssign:
		g.line("%s = %s", t.target, g.expr(e))
	default:
		g.line("%s", g.expr(e))
	}
}

// isUnitCall reports print calls and other expressions without a value
func isUnitCall(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.CallExpr:
		if id, ok := x.Function.(*ast.Identifier); ok {
			return printFuncs[id.Name] != "" || id.Name == "panic" || id.Name == "assert"
		}
	case *ast.MacroInvocation:
		return printFuncs[x.Name] != "" || x.Name == "panic" || x.Name == "assert"
	}
	return false
}

func (g *generator) returnValue(e ast.Expression) {
	if call, ok := e.(*ast.CallExpr); ok {
		if id, ok := call.Function.(*ast.Identifier); ok && id.Name == "Err" && len(call.Args) == 1 {
			g.imports["fmt"] = true
			g.line("panic(fmt.Sprint(%s))", g.expr(call.Args[0].Value))
			return
		}
	}
	g.line("return %s", g.expr(e))
}

func (g *generator) stmt(s ast.Statement) {
	switch st := s.(type) {
	case *ast.LetStmt:
		g.letStmt(st)
	case *ast.ConstStmt:
		g.constDecl(st.Name, st.Type, st.Value)
	case *ast.StaticStmt:
		g.varDecl(st.Name, st.Type, st.Value)
	case *ast.AssignStmt:
		g.assign(st)
	case *ast.ReturnStmt:
		if st.Value == nil {
			g.line("return")
			return
		}
		g.returnValue(st.Value)
	case *ast.ExpressionStmt:
		g.exprStmt(st.Expression)
	case *ast.IfStmt:
		g.ifStmt(st, tail{})
	case *ast.MatchStmt:
		g.match(st, st.Value, st.Arms, tail{})
	case *ast.ForStmt:
		g.forStmt(st)
	case *ast.WhileStmt:
		g.line("for %s {", g.expr(st.Condition))
		g.body(st.Body)
	case *ast.LoopStmt:
		g.line("for {")
		g.body(st.Body)
	case *ast.BreakStmt:
		g.line("break")
	case *ast.ContinueStmt:
		g.line("continue")
	case *ast.ThreadStmt:
		g.goroutine(st.Body)
	case *ast.AsyncStmt:
		g.goroutine(st.Body)
	case *ast.DeferStmt:
		g.deferStmt(st)
	case *ast.UseStmt:
	default:
		g.fail(s, "statement", "unsupported statement %T", s)
	}
}

// body emits an indented block and its closing brace
func (g *generator) body(stmts []ast.Statement) {
	g.indent++
	g.stmts(stmts, tail{})
	g.indent--
	g.line("}")
}

func (g *generator) goroutine(stmts []ast.Statement) {
	g.line("go func() {")
	g.indent++
	g.stmts(stmts, tail{})
	g.indent--
	g.line("}()")
}

func (g *generator) deferStmt(d *ast.DeferStmt) {
	if es, ok := d.Statement.(*ast.ExpressionStmt); ok {
		switch es.Expression.(type) {
		case *ast.CallExpr, *ast.MethodCallExpr, *ast.MacroInvocation:
			g.line("defer %s", g.expr(es.Expression))
			return
		}
	}
	g.line("defer func() {")
	g.indent++
	g.stmt(d.Statement)
	g.indent--
	g.line("}()")
}

func (g *generator) varDecl(name string, t ast.Type, value ast.Expression) {
	if t != nil {
		g.line("var %s %s = %s", name, g.goType(t), g.expr(value))
		return
	}
	g.line("var %s = %s", name, g.expr(value))
}

func (g *generator) letStmt(l *ast.LetStmt) {
	if l.Else != nil {
		g.letElse(l)
		return
	}
	switch p := l.Pattern.(type) {
	case *ast.IdentifierPattern:
		g.bind(p.Name, l.Type, l.Value)
		g.declare(p.Name, g.letType(l.Type, l.Value))
	case *ast.WildcardPattern:
		g.line("_ = %s", g.expr(l.Value))
	case *ast.TuplePattern:
		tup, ok := l.Value.(*ast.TupleLiteral)
		if !ok || len(tup.Elements) != len(p.Elems) {
			g.fail(l, "let", "tuple destructuring needs a tuple literal of the same arity")
			return
		}
		names := make([]string, len(p.Elems))
		for i, e := range p.Elems {
			switch ep := e.(type) {
			case *ast.IdentifierPattern:
				names[i] = ep.Name
				g.declare(ep.Name, nil)
			case *ast.WildcardPattern:
				names[i] = "_"
			default:
				g.fail(l, "let", "nested tuple pattern %s", e)
				return
			}
		}
		g.line("%s := %s", strings.Join(names, ", "), g.exprList(tup.Elements))
	default:
		g.fail(l, "let", "unsupported pattern %s", l.Pattern)
	}
}

// bind declares name and initializes it from value, expanding if and
// match expressions into statements that assign to it
func (g *generator) bind(name string, t ast.Type, value ast.Expression) {
	switch v := value.(type) {
	case *ast.IfExpr, *ast.MatchExpr, *ast.BlockExpr:
		typ := ""
		if t != nil {
			typ = g.goType(t)
		} else {
			typ = g.resultType(v)
		}
		if typ == "" {
			g.fail(value, "let", "%s needs a type annotation", name)
			return
		}
		g.line("var %s %s", name, typ)
		g.tailExpr(v, tail{kind: tailAssign, target: name})
		return
	case nil:
		if t == nil {
			g.fail(nil, "let", "%s has neither a type nor a value", name)
			return
		}
		g.line("var %s %s", name, g.goType(t))
		return
	}
	if isZeroConstructor(value) && t != nil {
		typ := g.goType(t)
		if strings.HasPrefix(typ, "map[") {
			g.line("%s := make(%s)", name, typ)
		} else {
			g.line("var %s %s", name, typ)
		}
		return
	}
	if t != nil {
		g.line("var %s %s = %s", name, g.goType(t), g.expr(value))
		return
	}
	if ct, ok := g.typeOf(value).(*ast.CustomType); ok && g.enums[ct.Name] != nil {
		g.line("var %s %s = %s", name, ct.Name, g.expr(value))
		return
	}
	g.line("%s := %s", name, g.expr(value))
}

// letElse handles `let Some(x) = v else { ... }`
func (g *generator) letElse(l *ast.LetStmt) {
	p, ok := l.Pattern.(*ast.EnumVariantPattern)
	if !ok || variantName(p.Name) != "Some" || p.Binding.Kind != ast.BindSingle {
		g.fail(l, "let", "let-else supports only Some(name) patterns")
		return
	}
	tmp := g.temp()
	g.line("%s := %s", tmp, g.expr(l.Value))
	g.line("if %s == nil {", tmp)
	g.body(l.Else)
	g.line("%s := *%s", p.Binding.Name, tmp)
}

func (g *generator) assign(a *ast.AssignStmt) {
	target := g.expr(a.Target)
	if a.Op == "" {
		g.line("%s = %s", target, g.expr(a.Value))
		return
	}
	if a.Op == "+" || a.Op == "-" {
		if lit, ok := a.Value.(*ast.Literal); ok && lit.Kind == ast.LitInt && lit.Value == "1" {
			g.line("%s%s%s", target, a.Op, a.Op)
			return
		}
	}
	g.line("%s %s= %s", target, a.Op, g.expr(a.Value))
}

func (g *generator) exprStmt(e ast.Expression) {
	switch x := e.(type) {
	case *ast.MethodCallExpr:
		if g.mutatingCall(x) {
			return
		}
	case *ast.IfExpr:
		g.ifExpr(x, tail{})
		return
	case *ast.MatchExpr:
		g.match(x, x.Value, x.Arms, tail{})
		return
	case *ast.BlockExpr:
		g.line("{")
		g.body(x.Statements)
		return
	}
	g.line("%s", g.expr(e))
}

// mutatingCall rewrites collection mutations that are statements in Go
func (g *generator) mutatingCall(m *ast.MethodCallExpr) bool {
	obj := g.expr(m.Object)
	args := make([]string, 0, len(m.Args))
	for _, a := range m.Args {
		args = append(args, g.expr(a.Value))
	}
	switch m.Method {
	case "push", "push_back":
		if len(args) == 1 {
			g.line("%s = append(%s, %s)", obj, obj, args[0])
			return true
		}
	case "push_front":
		if len(args) == 1 {
			g.line("%s = append(%s{%s}, %s...)", obj, g.sliceTypeOf(m.Object), args[0], obj)
			return true
		}
	case "extend", "append":
		if len(args) == 1 {
			g.line("%s = append(%s, %s...)", obj, obj, args[0])
			return true
		}
	case "insert":
		if len(args) == 2 {
			g.line("%s[%s] = %s", obj, args[0], args[1])
			return true
		}
		if len(args) == 1 {
			g.line("%s[%s] = struct{}{}", obj, args[0])
			return true
		}
	case "remove":
		if len(args) == 1 && g.isMap(m.Object) {
			g.line("delete(%s, %s)", obj, args[0])
			return true
		}
	case "clear":
		if len(args) == 0 {
			g.line("clear(%s)", obj)
			return true
		}
	case "pop":
		if len(args) == 0 {
			g.line("%s = %s[:len(%s)-1]", obj, obj, obj)
			return true
		}
	case "truncate":
		if len(args) == 1 {
			g.line("%s = %s[:%s]", obj, obj, args[0])
			return true
		}
	case "sort":
		if len(args) == 0 {
			g.imports["slices"] = true
			g.line("slices.Sort(%s)", obj)
			return true
		}
	case "reverse":
		if len(args) == 0 {
			g.imports["slices"] = true
			g.line("slices.Reverse(%s)", obj)
			return true
		}
	}
	return false
}

func (g *generator) ifStmt(s *ast.IfStmt, t tail) {
	g.line("if %s {", g.expr(s.Condition))
	g.indent++
	g.stmts(s.Then, t)
	g.indent--
	g.elseChain(s.Else, t)
}

func (g *generator) elseChain(els []ast.Statement, t tail) {
	if len(els) == 0 {
		g.line("}")
		if t.kind == tailReturn {
			g.fail(nil, "if", "if without else cannot produce a value")
		}
		return
	}
	if len(els) == 1 {
		if nested, ok := els[0].(*ast.IfStmt); ok {
			g.out.WriteString(strings.Repeat("\t", g.indent) + "} else ")
			g.indentSkip = true
			g.ifStmt(nested, t)
			return
		}
	}
	g.line("} else {")
	g.indent++
	g.stmts(els, t)
	g.indent--
	g.line("}")
}

func (g *generator) ifExpr(x *ast.IfExpr, t tail) {
	g.line("if %s {", g.expr(x.Condition))
	g.indent++
	g.stmts(x.Then.Statements, t)
	g.indent--
	switch e := x.Else.(type) {
	case nil:
		g.line("}")
	case *ast.IfExpr:
		g.out.WriteString(strings.Repeat("\t", g.indent) + "} else ")
		g.indentSkip = true
		g.ifExpr(e, t)
	case *ast.BlockExpr:
		g.line("} else {")
		g.indent++
		g.stmts(e.Statements, t)
		g.indent--
		g.line("}")
	default:
		g.line("} else {")
		g.indent++
		g.tailExpr(e, t)
		g.indent--
		g.line("}")
	}
}

func (g *generator) forStmt(f *ast.ForStmt) {
	g.pushScope()
	defer g.popScope()

	if r, ok := f.Iterable.(*ast.RangeExpr); ok {
		name, ok := patternName(f.Pattern)
		if !ok || r.Start == nil || r.End == nil {
			g.fail(f, "for", "ranges need a bound variable and both bounds")
			return
		}
		cmp := "<"
		if r.Inclusive {
			cmp = "<="
		}
		g.line("for %s := %s; %s %s %s; %s++ {", name, g.expr(r.Start), name, cmp, g.expr(r.End), name)
		g.body(f.Body)
		return
	}

	iterable, shape := g.iteration(f.Iterable)
	key, val := "_", "_"
	switch p := unref(f.Pattern).(type) {
	case *ast.IdentifierPattern:
		val = p.Name
	case *ast.WildcardPattern:
	case *ast.TuplePattern:
		if len(p.Elems) != 2 || (shape != iterEnumerate && shape != iterMap) {
			g.fail(f, "for", "tuple patterns need enumerate() or a map")
			return
		}
		key, _ = patternName(unref(p.Elems[0]))
		val, _ = patternName(unref(p.Elems[1]))
	default:
		g.fail(f, "for", "unsupported loop pattern %s", f.Pattern)
		return
	}
	switch shape {
	case iterKeys:
		key, val = val, "_"
	case iterReversed:
		g.imports["slices"] = true
		iterable = "slices.Backward(" + iterable + ")"
	}
	switch {
	case key == "_" && val == "_":
		g.line("for range %s {", iterable)
	case val == "_":
		g.line("for %s := range %s {", key, iterable)
	default:
		g.line("for %s, %s := range %s {", key, val, iterable)
	}
	g.body(f.Body)
}

type iterShape int

const (
	iterValues iterShape = iota
	iterEnumerate
	iterKeys
	iterMap
	iterReversed
)

// iteration strips iterator adapters that Go's range makes implicit
func (g *generator) iteration(e ast.Expression) (string, iterShape) {
	if m, ok := e.(*ast.MethodCallExpr); ok && len(m.Args) == 0 {
		switch m.Method {
		case "iter", "iter_mut", "into_iter", "chars", "bytes":
			return g.iteration(m.Object)
		case "enumerate":
			s, _ := g.iteration(m.Object)
			return s, iterEnumerate
		case "keys":
			return g.expr(m.Object), iterKeys
		case "values", "values_mut":
			return g.expr(m.Object), iterValues
		case "rev", "reversed":
			s, _ := g.iteration(m.Object)
			return s, iterReversed
		}
	}
	if g.isMap(e) {
		return g.expr(e), iterMap
	}
	return g.expr(e), iterValues
}

func unref(p ast.Pattern) ast.Pattern {
	if r, ok := p.(*ast.ReferencePattern); ok {
		return unref(r.Inner)
	}
	return p
}

func patternName(p ast.Pattern) (string, bool) {
	switch pp := p.(type) {
	case *ast.IdentifierPattern:
		return pp.Name, true
	case *ast.WildcardPattern:
		return "_", true
	}
	return "", false
}
