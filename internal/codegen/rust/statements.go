package rust

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/ast"
)

// stmtContext tells a statement whether its value is used
type stmtContext int

const (
	// ctxStmt discards values: every expression statement ends with ;
	ctxStmt stmtContext = iota
	// ctxValue keeps the trailing expression of the block as its value
	ctxValue
	// ctxReturn is ctxValue for the function result, with return adaptation
	ctxReturn
)

// block emits stmts at the current indentation. Only the last statement
// sees ctx; the rest are plain statements.
func (g *Generator) block(stmts []ast.Statement, ctx stmtContext) {
	for i, s := range stmts {
		if g.err != nil {
			return
		}
		c := ctxStmt
		if i == len(stmts)-1 {
			c = ctx
		}
		g.stmt(s, c)
	}
}

func (g *Generator) stmt(s ast.Statement, ctx stmtContext) {
	switch st := s.(type) {
	case *ast.LetStmt:
		g.letStmt(st)
	case *ast.ConstStmt:
		g.localConst(st, "const", false, st.Name, st.Type, st.Value)
	case *ast.StaticStmt:
		g.localConst(st, "static", st.Mutable, st.Name, st.Type, st.Value)
	case *ast.AssignStmt:
		g.assignStmt(st)
	case *ast.ReturnStmt:
		if st.Value == nil {
			g.line("return;")
			return
		}
		g.line("return %s;", g.returnValue(st.Value))
	case *ast.ExpressionStmt:
		g.exprStmt(st, ctx)
	case *ast.IfStmt:
		g.ifStmt(st, ctx)
	case *ast.MatchStmt:
		g.matchStmt(st.Value, st.Arms, ctx)
	case *ast.ForStmt:
		g.forStmt(st)
	case *ast.WhileStmt:
		g.line("while %s {", g.expr(st.Condition))
		g.nested(st.Body, ctxStmt)
		g.line("}")
	case *ast.LoopStmt:
		g.line("loop {")
		g.nested(st.Body, ctxStmt)
		g.line("}")
	case *ast.BreakStmt:
		g.line("break;")
	case *ast.ContinueStmt:
		g.line("continue;")
	case *ast.ThreadStmt:
		g.line("tokio::spawn(async move {")
		g.nested(st.Body, ctxStmt)
		g.line("});")
	case *ast.AsyncStmt:
		g.line("async move {")
		g.nested(st.Body, ctxStmt)
		g.line("};")
	case *ast.DeferStmt:
		g.line("// defer")
		g.stmt(st.Statement, ctxStmt)
	case *ast.UseStmt:
		g.useDecl(st.Path, st.Alias, false)
	default:
		g.fail(s, "statement", "unsupported statement %T", s)
	}
}

// nested emits a block body one level deeper. Bindings made inside do not
// leak into the enclosing scope.
func (g *Generator) nested(stmts []ast.Statement, ctx stmtContext) {
	saved := g.saveScope()
	g.indent++
	g.block(stmts, ctx)
	g.indent--
	g.restoreScope(saved)
}

type scopeSnapshot struct {
	locals       map[string]ast.Type
	refs         map[string]bool
	usize        map[string]bool
	borrowedIter map[string]bool
}

func (g *Generator) saveScope() *scopeSnapshot {
	if g.fn == nil {
		return nil
	}
	snap := &scopeSnapshot{
		locals:       g.fn.locals,
		refs:         g.fn.refs,
		usize:        g.fn.usize,
		borrowedIter: g.fn.borrowedIter,
	}
	g.fn.locals = copyMap(g.fn.locals)
	g.fn.refs = copyMap(g.fn.refs)
	g.fn.usize = copyMap(g.fn.usize)
	g.fn.borrowedIter = copyMap(g.fn.borrowedIter)
	return snap
}

func (g *Generator) restoreScope(s *scopeSnapshot) {
	if s == nil || g.fn == nil {
		return
	}
	g.fn.locals = s.locals
	g.fn.refs = s.refs
	g.fn.usize = s.usize
	g.fn.borrowedIter = s.borrowedIter
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (g *Generator) letStmt(l *ast.LetStmt) {
	var b strings.Builder
	b.WriteString("let ")
	if l.Mutable {
		b.WriteString("mut ")
	}
	b.WriteString(g.pattern(l.Pattern))
	if l.Type != nil {
		b.WriteString(": ")
		b.WriteString(g.rustType(l.Type))
	}
	if l.Value != nil {
		b.WriteString(" = ")
		b.WriteString(g.letValue(l))
	}

	// bind after rendering the value so `let x = x + 1` reads the outer x
	name := l.Name()
	if name != "" {
		t := l.Type
		if t == nil && l.Value != nil {
			t = g.typeOf(l.Value)
		}
		g.bind(name, t)
		if g.fn != nil && l.Type == nil && g.isBorrowedValue(l.Value) {
			g.fn.refs[name] = true
		}
	} else {
		g.bindPattern(l.Pattern)
	}

	if l.Else == nil {
		b.WriteString(";")
		g.line(b.String())
		return
	}
	b.WriteString(" else {")
	g.line(b.String())
	g.nested(l.Else, ctxStmt)
	g.line("};")
}

func (g *Generator) letValue(l *ast.LetStmt) string {
	if l.Type != nil && isStringType(l.Type) && !ast.IsReference(l.Type) && isStringLiteral(l.Value) {
		return g.expr(l.Value) + ".to_string()"
	}
	return g.expr(l.Value)
}

// isBorrowedValue reports whether e evaluates to a reference
func (g *Generator) isBorrowedValue(e ast.Expression) bool {
	switch x := e.(type) {
	case *ast.UnaryExpr:
		return x.Op == ast.UnaryRef || x.Op == ast.UnaryMutRef
	case *ast.Identifier:
		return g.fn != nil && (g.fn.refs[x.Name] || g.fn.borrowedIter[x.Name])
	}
	return false
}

func (g *Generator) localConst(node ast.Node, kind string, mutable bool, name string, t ast.Type, value ast.Expression) {
	g.constItem(node, kind, false, mutable, name, t, value)
	g.bind(name, t)
}

func (g *Generator) assignStmt(a *ast.AssignStmt) {
	target := g.expr(a.Target)
	value := g.expr(a.Value)
	if isStringLiteral(a.Value) && isStringType(g.typeOf(a.Target)) && a.Op == "" {
		value += ".to_string()"
	}
	if a.Op == "" && g.fieldThroughBorrowed(a.Value) && !g.isCopyExpr(a.Value) {
		value += ".clone()"
	}
	op := "="
	if a.Op != "" {
		op = a.Op + "="
	}
	g.line("%s %s %s;", target, op, value)
}

func (g *Generator) exprStmt(s *ast.ExpressionStmt, ctx stmtContext) {
	if ctx != ctxStmt && !s.Semicolon {
		switch e := s.Expression.(type) {
		case *ast.IfExpr:
			g.ifExpr(e, ctx)
			return
		case *ast.MatchExpr:
			g.matchStmt(e.Value, e.Arms, ctx)
			return
		case *ast.BlockExpr:
			g.blockStmt(e, ctx)
			return
		}
		if ctx == ctxReturn {
			g.line(g.returnValue(s.Expression))
		} else {
			g.line(g.expr(s.Expression))
		}
		return
	}
	switch e := s.Expression.(type) {
	case *ast.IfExpr:
		g.ifExpr(e, ctxStmt)
		return
	case *ast.MatchExpr:
		g.matchStmt(e.Value, e.Arms, ctxStmt)
		return
	case *ast.BlockExpr:
		g.blockStmt(e, ctxStmt)
		return
	}
	g.line("%s;", g.expr(s.Expression))
}

// blockStmt emits a block expression in statement position. Blocks that only
// wrap a statement, such as a desugared loop, emit the statement itself.
func (g *Generator) blockStmt(b *ast.BlockExpr, ctx stmtContext) {
	if !b.Unsafe && len(b.Statements) == 1 {
		if _, ok := b.Statements[0].(*ast.ExpressionStmt); !ok {
			g.stmt(b.Statements[0], ctx)
			return
		}
	}
	if b.Unsafe {
		g.line("unsafe {")
	} else {
		g.line("{")
	}
	g.nested(b.Statements, ctx)
	g.line("}")
}

func (g *Generator) ifStmt(s *ast.IfStmt, ctx stmtContext) {
	g.line("if %s {", g.expr(s.Condition))
	g.ifTail(s.Then, s.Else, ctx)
}

// ifTail emits the then body and any else chain after an `if cond {` line
func (g *Generator) ifTail(then, els []ast.Statement, ctx stmtContext) {
	if !hasFinalElse(els) {
		ctx = ctxStmt
	}
	g.nested(then, ctx)
	for len(els) == 1 {
		next, ok := elseIf(els[0])
		if !ok {
			break
		}
		g.line("} else if %s {", g.expr(next.cond))
		g.nested(next.then, ctx)
		els = next.els
	}
	if len(els) > 0 {
		g.line("} else {")
		g.nested(els, ctx)
	}
	g.line("}")
}

// hasFinalElse reports whether an else chain ends in a plain else, so the
// whole if produces a value
func hasFinalElse(els []ast.Statement) bool {
	for len(els) == 1 {
		next, ok := elseIf(els[0])
		if !ok {
			break
		}
		els = next.els
	}
	return len(els) > 0
}

type elseIfBranch struct {
	cond ast.Expression
	then []ast.Statement
	els  []ast.Statement
}

// elseIf recognizes the single nested if that `else if` parses to
func elseIf(s ast.Statement) (elseIfBranch, bool) {
	switch st := s.(type) {
	case *ast.IfStmt:
		return elseIfBranch{st.Condition, st.Then, st.Else}, true
	case *ast.ExpressionStmt:
		if e, ok := st.Expression.(*ast.IfExpr); ok {
			return elseIfBranch{e.Condition, e.Then.Statements, exprElse(e.Else)}, true
		}
	}
	return elseIfBranch{}, false
}

// exprElse converts the else arm of an if expression to statements
func exprElse(e ast.Expression) []ast.Statement {
	switch x := e.(type) {
	case nil:
		return nil
	case *ast.BlockExpr:
		return x.Statements
	default:
		return []ast.Statement{&ast.ExpressionStmt{Span: x.GetSpan(), Expression: x}}
	}
}

func (g *Generator) ifExpr(e *ast.IfExpr, ctx stmtContext) {
	g.line("if %s {", g.expr(e.Condition))
	g.ifTail(e.Then.Statements, exprElse(e.Else), ctx)
}

// matchStmt emits a match. Arms are separated by commas; block arms keep
// their braces even when empty.
func (g *Generator) matchStmt(value ast.Expression, arms []*ast.MatchArm, ctx stmtContext) {
	g.line("match %s {", g.matchScrutinee(value, arms))
	g.indent++
	for i, arm := range arms {
		sep := ","
		if i == len(arms)-1 {
			sep = ""
		}
		saved := g.saveScope()
		head := g.pattern(arm.Pattern)
		g.bindPattern(arm.Pattern)
		if arm.Guard != nil {
			head += " if " + g.expr(arm.Guard)
		}
		if blk, ok := arm.Body.(*ast.BlockExpr); ok && !blk.Unsafe {
			g.line("%s => {", head)
			g.nested(blk.Statements, ctx)
			g.line("}%s", sep)
		} else {
			var body string
			if ctx == ctxReturn {
				body = g.returnValue(arm.Body)
			} else {
				body = g.expr(arm.Body)
			}
			g.line("%s => %s,", head, body)
		}
		g.restoreScope(saved)
	}
	g.indent--
	g.line("}")
}

// matchScrutinee adds .as_str() when a String is matched against literals
func (g *Generator) matchScrutinee(value ast.Expression, arms []*ast.MatchArm) string {
	v := g.expr(value)
	if isStringLiteral(value) {
		return v
	}
	for _, arm := range arms {
		if hasStringLiteralPattern(arm.Pattern) {
			if t := g.typeOf(value); t != nil && !isStringType(t) {
				return v
			}
			return g.wrapPostfix(value, v) + ".as_str()"
		}
	}
	return v
}

func hasStringLiteralPattern(p ast.Pattern) bool {
	switch pp := p.(type) {
	case *ast.LiteralPattern:
		return isStringLiteral(pp.Value)
	case *ast.OrPattern:
		for _, alt := range pp.Alternatives {
			if hasStringLiteralPattern(alt) {
				return true
			}
		}
	}
	return false
}

// forStmt emits a for loop, borrowing place iterables so the loop does not
// consume them
func (g *Generator) forStmt(s *ast.ForStmt) {
	saved := g.saveScope()
	iter, borrowed, elem := g.forIterable(s)

	pat := g.pattern(s.Pattern)
	if id, ok := s.Pattern.(*ast.IdentifierPattern); ok {
		g.bind(id.Name, elem)
		switch {
		case g.isRangeOverUsize(s.Iterable):
			g.fn.usize[id.Name] = true
		case borrowed && elem != nil && g.res.IsCopy(elem) && !id.Mutable:
			pat = "&" + pat
		case borrowed:
			g.fn.borrowedIter[id.Name] = true
		}
	} else {
		g.bindPattern(s.Pattern)
		g.bindLoopTuple(s.Pattern, s.Iterable)
	}

	g.line("for %s in %s {", pat, iter)
	g.indent++
	g.block(s.Body, ctxStmt)
	g.indent--
	g.line("}")
	g.restoreScope(saved)
}

// forIterable renders the iterable and reports whether the loop variable is
// a reference, along with the element type when known
func (g *Generator) forIterable(s *ast.ForStmt) (string, bool, ast.Type) {
	it := s.Iterable
	switch x := it.(type) {
	case *ast.RangeExpr:
		return g.rangeExpr(x, false), false, nil
	case *ast.MethodCallExpr:
		return g.expr(it), borrowingIterator(x), nil
	case *ast.UnaryExpr:
		return g.expr(it), x.Op == ast.UnaryRef || x.Op == ast.UnaryMutRef, elemType(g.typeOf(x.Operand))
	case *ast.Identifier, *ast.FieldAccessExpr, *ast.IndexExpr:
		elem := elemType(g.typeOf(it))
		if id, ok := it.(*ast.Identifier); ok && g.fn != nil && g.fn.refs[id.Name] {
			return g.expr(it), true, elem
		}
		if _, static := g.staticPath(it); static {
			return g.expr(it), false, elem
		}
		if loopMutatesVar(s) {
			return "&mut " + g.expr(it), false, elem
		}
		return "&" + g.expr(it), true, elem
	}
	return g.expr(it), false, nil
}

func elemType(t ast.Type) ast.Type {
	switch ty := derefType(t).(type) {
	case *ast.VecType:
		return ty.Elem
	case *ast.ArrayType:
		return ty.Elem
	}
	return nil
}

// borrowingIterator reports whether a method chain yields references
func borrowingIterator(m *ast.MethodCallExpr) bool {
	for e := ast.Expression(m); e != nil; {
		call, ok := e.(*ast.MethodCallExpr)
		if !ok {
			return false
		}
		switch call.Method {
		case "iter", "keys", "values":
			return true
		case "into_iter", "drain", "iter_mut", "values_mut", "chars", "lines", "split", "split_whitespace", "bytes":
			return false
		}
		e = call.Object
	}
	return false
}

// loopMutatesVar reports whether the loop body mutates its loop variable
func loopMutatesVar(s *ast.ForStmt) bool {
	for _, name := range ast.BoundNames(s.Pattern) {
		mutated := false
		for _, st := range s.Body {
			ast.Inspect(st, func(n ast.Node) bool {
				switch x := n.(type) {
				case *ast.AssignStmt:
					if analyzer.RootName(x.Target) == name {
						mutated = true
					}
				case *ast.MethodCallExpr:
					if analyzer.IsMutatingMethod(x.Method) && analyzer.RootName(x.Object) == name {
						mutated = true
					}
				}
				return !mutated
			})
		}
		if mutated {
			return true
		}
	}
	return false
}

// isRangeOverUsize reports whether a range loop counts in usize
func (g *Generator) isRangeOverUsize(e ast.Expression) bool {
	r, ok := e.(*ast.RangeExpr)
	if !ok {
		return false
	}
	for _, bound := range []ast.Expression{r.Start, r.End} {
		if bound == nil {
			continue
		}
		if lit, ok := bound.(*ast.Literal); ok && lit.Kind == ast.LitInt {
			continue
		}
		if g.isUsizeExpr(bound) {
			return true
		}
	}
	return false
}

// bindLoopTuple types `(i, x)` over an enumerate() chain
func (g *Generator) bindLoopTuple(p ast.Pattern, iterable ast.Expression) {
	tp, ok := p.(*ast.TuplePattern)
	if !ok || len(tp.Elems) != 2 {
		return
	}
	m, ok := iterable.(*ast.MethodCallExpr)
	if !ok {
		return
	}
	if m.Method == "enumerate" {
		if id, ok := tp.Elems[0].(*ast.IdentifierPattern); ok {
			g.fn.usize[id.Name] = true
		}
		if inner, ok := m.Object.(*ast.MethodCallExpr); ok && borrowingIterator(inner) {
			if id, ok := tp.Elems[1].(*ast.IdentifierPattern); ok {
				g.fn.borrowedIter[id.Name] = true
			}
		}
		return
	}
	if borrowingIterator(m) {
		for _, e := range tp.Elems {
			if id, ok := e.(*ast.IdentifierPattern); ok {
				g.fn.borrowedIter[id.Name] = true
			}
		}
	}
}

func isStringLiteral(e ast.Expression) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Kind == ast.LitString
}
