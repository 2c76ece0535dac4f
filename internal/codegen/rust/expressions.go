package rust

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// binaryPrec is Rust's binding strength for binary operators
var binaryPrec = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, ">": 3, "<=": 3, ">=": 3,
	"|":  4,
	"^":  5,
	"&":  6,
	"<<": 7, ">>": 7,
	"+": 8, "-": 8,
	"*": 9, "/": 9, "%": 9,
}

func isComparison(op string) bool {
	return binaryPrec[op] == 3
}

// expr renders an expression. Multi-line forms (match, blocks) are laid out
// relative to the current indentation.
func (g *Generator) expr(e ast.Expression) string {
	switch x := e.(type) {
	case nil:
		return ""
	case *ast.Literal:
		return literal(x)
	case *ast.Identifier:
		return pathName(x.Name)
	case *ast.BinaryExpr:
		return g.binary(x)
	case *ast.UnaryExpr:
		return g.unary(x)
	case *ast.CallExpr:
		return g.call(x)
	case *ast.MethodCallExpr:
		return g.methodCall(x)
	case *ast.GenericPathExpr:
		return g.expr(x.Base) + "::<" + g.typeList(x.TypeArgs) + ">::" + strings.Join(x.Rest, "::")
	case *ast.FieldAccessExpr:
		if path, ok := g.staticPath(x); ok {
			return path
		}
		return g.wrapPostfix(x.Object, g.expr(x.Object)) + "." + x.Field
	case *ast.IndexExpr:
		return g.index(x)
	case *ast.RangeExpr:
		return g.rangeExpr(x, true)
	case *ast.ClosureExpr:
		return g.closure(x)
	case *ast.StructLiteral:
		return g.structLiteral(x)
	case *ast.ArrayLiteral:
		return "vec![" + g.exprList(x.Elements) + "]"
	case *ast.TupleLiteral:
		if len(x.Elements) == 1 {
			return "(" + g.expr(x.Elements[0]) + ",)"
		}
		return "(" + g.exprList(x.Elements) + ")"
	case *ast.MapLiteral:
		return g.mapLiteral(x)
	case *ast.CastExpr:
		inner := g.expr(x.Expr)
		switch x.Expr.(type) {
		case *ast.BinaryExpr, *ast.RangeExpr, *ast.ClosureExpr:
			inner = "(" + inner + ")"
		}
		return inner + " as " + g.rustType(x.Type)
	case *ast.TryExpr:
		return g.wrapPostfix(x.Expr, g.expr(x.Expr)) + "?"
	case *ast.AwaitExpr:
		return g.wrapPostfix(x.Expr, g.expr(x.Expr)) + ".await"
	case *ast.ChannelSendExpr:
		return g.wrapPostfix(x.Channel, g.expr(x.Channel)) + ".send(" + g.expr(x.Value) + ").unwrap()"
	case *ast.ChannelRecvExpr:
		return g.wrapPostfix(x.Channel, g.expr(x.Channel)) + ".recv().unwrap()"
	case *ast.MacroInvocation:
		return g.macro(x)
	case *ast.MatchExpr:
		return g.inlineStmt(func() { g.matchStmt(x.Value, x.Arms, ctxValue) })
	case *ast.IfExpr:
		return g.ifValue(x)
	case *ast.BlockExpr:
		if len(x.Statements) == 1 && !x.Unsafe {
			if s, ok := x.Statements[0].(*ast.ExpressionStmt); ok && !s.Semicolon && isSimple(s.Expression) {
				return "{ " + g.expr(s.Expression) + " }"
			}
		}
		return g.inlineStmt(func() { g.blockStmt(x, ctxValue) })
	}
	g.fail(e, "expression", "unsupported expression %s", ast.Describe(e))
	return ""
}

func (g *Generator) exprList(es []ast.Expression) string {
	parts := make([]string, 0, len(es))
	for _, e := range es {
		parts = append(parts, g.expr(e))
	}
	return strings.Join(parts, ", ")
}

// inlineStmt renders a statement-shaped expression at the current
// indentation and strips the leading padding so it can follow other text
func (g *Generator) inlineStmt(fn func()) string {
	g.indent--
	s := g.capture(fn)
	g.indent++
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimPrefix(s, g.pad())
}

// isSimple reports whether e renders on one line without braces
func isSimple(e ast.Expression) bool {
	switch e.(type) {
	case *ast.MatchExpr, *ast.IfExpr, *ast.BlockExpr, *ast.ClosureExpr:
		return false
	}
	return true
}

// ifValue renders an if expression, on one line when each branch is a
// single simple expression
func (g *Generator) ifValue(x *ast.IfExpr) string {
	if then, ok := singleValue(x.Then.Statements); ok {
		switch els := x.Else.(type) {
		case *ast.BlockExpr:
			if v, ok := singleValue(els.Statements); ok {
				return "if " + g.expr(x.Condition) + " { " + g.expr(then) + " } else { " + g.expr(v) + " }"
			}
		case *ast.IfExpr:
			if _, ok := singleValue(els.Then.Statements); ok {
				return "if " + g.expr(x.Condition) + " { " + g.expr(then) + " } else " + g.ifValue(els)
			}
		}
	}
	return g.inlineStmt(func() { g.ifExpr(x, ctxValue) })
}

func singleValue(stmts []ast.Statement) (ast.Expression, bool) {
	if len(stmts) != 1 {
		return nil, false
	}
	s, ok := stmts[0].(*ast.ExpressionStmt)
	if !ok || s.Semicolon || !isSimple(s.Expression) {
		return nil, false
	}
	return s.Expression, true
}

// wrapPostfix parenthesizes rendered when e binds looser than a postfix operator
func (g *Generator) wrapPostfix(e ast.Expression, rendered string) string {
	switch x := e.(type) {
	case *ast.BinaryExpr, *ast.UnaryExpr, *ast.CastExpr, *ast.RangeExpr, *ast.ClosureExpr:
		return "(" + rendered + ")"
	case *ast.Literal:
		if x.Kind == ast.LitInt || x.Kind == ast.LitFloat {
			if strings.HasPrefix(rendered, "-") {
				return "(" + rendered + ")"
			}
		}
	}
	return rendered
}

func literal(l *ast.Literal) string {
	switch l.Kind {
	case ast.LitFloat:
		return floatLiteral(l.Value)
	case ast.LitString:
		return rustQuote(l.Value)
	case ast.LitChar:
		return rustChar(l.Value)
	}
	return l.Value
}

// floatLiteral guarantees a decimal point: 1 -> 1.0, 2. -> 2.0
func floatLiteral(v string) string {
	switch {
	case strings.HasSuffix(v, "."):
		return v + "0"
	case strings.ContainsAny(v, ".eE"):
		return v
	}
	return v + ".0"
}

var quoteReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\x00", `\0`,
)

// rustQuote renders s as a Rust string literal
func rustQuote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}

func rustChar(s string) string {
	switch s {
	case "'":
		return `'\''`
	case `\`:
		return `'\\'`
	case "\n":
		return `'\n'`
	case "\r":
		return `'\r'`
	case "\t":
		return `'\t'`
	case "\x00":
		return `'\0'`
	}
	return "'" + s + "'"
}

func (g *Generator) binary(b *ast.BinaryExpr) string {
	if g.isStringConcat(b) {
		format, args := g.concatFormat(b)
		return "format!(" + joinFormat(format, args) + ")"
	}

	left, right := g.expr(b.Left), g.expr(b.Right)
	leftCast := false
	if isComparison(b.Op) {
		switch {
		case g.isUsizeExpr(b.Left) && !isIntLiteral(b.Left) && g.isIntExpr(b.Right):
			right = g.asUsize(b.Right, right)
		case g.isUsizeExpr(b.Right) && !isIntLiteral(b.Right) && g.isIntExpr(b.Left):
			left = g.asUsize(b.Left, left)
			leftCast = true
		}
	}
	prec := binaryPrec[b.Op]
	// `x as T < y` parses as generic arguments
	_, isCast := b.Left.(*ast.CastExpr)
	if g.needsParens(b.Left, prec, false) || ((isCast || leftCast) && (b.Op == "<" || b.Op == "<<")) {
		left = "(" + left + ")"
	}
	if g.needsParens(b.Right, prec, true) {
		right = "(" + right + ")"
	}
	return left + " " + b.Op + " " + right
}

// needsParens reports whether a child expression must be wrapped to keep
// its grouping under an operator of precedence prec
func (g *Generator) needsParens(child ast.Expression, prec int, right bool) bool {
	switch c := child.(type) {
	case *ast.BinaryExpr:
		cp := binaryPrec[c.Op]
		if g.isStringConcat(c) {
			return false
		}
		if right || prec == 3 {
			return cp <= prec
		}
		return cp < prec
	case *ast.RangeExpr, *ast.ClosureExpr:
		return true
	}
	return false
}

func isIntLiteral(e ast.Expression) bool {
	lit, ok := e.(*ast.Literal)
	return ok && lit.Kind == ast.LitInt
}

// asUsize casts a non-usize integer expression
func (g *Generator) asUsize(e ast.Expression, rendered string) string {
	switch e.(type) {
	case *ast.BinaryExpr, *ast.UnaryExpr, *ast.CastExpr:
		rendered = "(" + rendered + ")"
	}
	return rendered + " as usize"
}

func (g *Generator) unary(u *ast.UnaryExpr) string {
	operand := g.expr(u.Operand)
	switch u.Operand.(type) {
	case *ast.BinaryExpr, *ast.CastExpr, *ast.RangeExpr:
		operand = "(" + operand + ")"
	}
	return u.Op.String() + operand
}

func (g *Generator) index(x *ast.IndexExpr) string {
	obj := g.wrapPostfix(x.Object, g.expr(x.Object))
	return obj + "[" + g.indexValue(x.Index) + "]"
}

// indexValue renders an index, casting known non-usize integers
func (g *Generator) indexValue(e ast.Expression) string {
	s := g.expr(e)
	if !g.isUsizeExpr(e) && g.isIntExpr(e) {
		return g.asUsize(e, s)
	}
	return s
}

func (g *Generator) rangeExpr(r *ast.RangeExpr, wrap bool) string {
	var start, end string
	if r.Start != nil {
		start = g.expr(r.Start)
		if _, ok := r.Start.(*ast.BinaryExpr); ok && wrap {
			start = "(" + start + ")"
		}
	}
	if r.End != nil {
		end = g.expr(r.End)
		if _, ok := r.End.(*ast.BinaryExpr); ok && wrap {
			end = "(" + end + ")"
		}
	}
	op := ".."
	if r.Inclusive {
		op = "..="
	}
	return start + op + end
}

func (g *Generator) closure(c *ast.ClosureExpr) string {
	saved := g.saveScope()
	defer g.restoreScope(saved)
	for _, p := range c.Params {
		name := strings.TrimLeft(p, "&")
		name = strings.TrimPrefix(name, "mut ")
		if !strings.HasPrefix(name, "(") {
			g.bind(name, nil)
			continue
		}
		for _, part := range strings.Split(strings.Trim(name, "()"), ",") {
			g.bind(strings.TrimSpace(part), nil)
		}
	}
	head := "|" + strings.Join(c.Params, ", ") + "|"
	if blk, ok := c.Body.(*ast.BlockExpr); ok && !blk.Unsafe {
		if v, ok := singleValue(blk.Statements); ok {
			return head + " " + g.expr(v)
		}
		return head + " " + g.inlineStmt(func() {
			g.line("{")
			g.nested(blk.Statements, ctxValue)
			g.line("}")
		})
	}
	return head + " " + g.expr(c.Body)
}

// structLiteral renders Name { a, b: expr }, collapsing `x: x` to `x`
func (g *Generator) structLiteral(s *ast.StructLiteral) string {
	name := pathName(s.Name)
	if len(s.Fields) == 0 {
		return name + " {}"
	}
	decl := g.structs[lastSegment(name)]
	parts := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		var ft ast.Type
		if decl != nil {
			for _, df := range decl.Fields {
				if df.Name == f.Name {
					ft = df.Type
				}
			}
		}
		v := g.storedValue(f.Value, ft)
		if id, ok := f.Value.(*ast.Identifier); ok && id.Name == f.Name && v == f.Name {
			parts = append(parts, f.Name)
			continue
		}
		parts = append(parts, f.Name+": "+v)
	}
	return name + " { " + strings.Join(parts, ", ") + " }"
}

// storedValue adapts a value moved into a field of type t: string literals
// become Strings and borrowed values are cloned
func (g *Generator) storedValue(e ast.Expression, t ast.Type) string {
	s := g.expr(e)
	if isStringLiteral(e) {
		if t != nil && isStringType(t) && !ast.IsReference(t) {
			return s + ".to_string()"
		}
		return s
	}
	if t != nil && ast.IsReference(t) {
		return s
	}
	if g.needsOwnedCopy(e) {
		return s + ".clone()"
	}
	return s
}

func (g *Generator) mapLiteral(m *ast.MapLiteral) string {
	if len(m.Entries) == 0 {
		return "std::collections::HashMap::new()"
	}
	parts := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		parts = append(parts, "("+g.expr(e.Key)+", "+g.expr(e.Value)+")")
	}
	return "std::collections::HashMap::from([" + strings.Join(parts, ", ") + "])"
}

func (g *Generator) methodCall(m *ast.MethodCallExpr) string {
	if m.Method == "" {
		return g.expr(m.Object) + "::<" + g.typeList(m.TypeArgs) + ">(" + g.args(callSite{}, m.Args) + ")"
	}

	switch {
	case m.Method == "reversed" && len(m.Args) == 0:
		return g.wrapPostfix(m.Object, g.expr(m.Object)) + ".into_iter().rev()"
	case m.Method == "slice" && len(m.Args) == 2:
		obj := g.wrapPostfix(m.Object, g.expr(m.Object))
		return "&" + obj + "[" + g.indexValue(m.Args[0].Value) + ".." + g.indexValue(m.Args[1].Value) + "]"
	}

	turbofish := ""
	if len(m.TypeArgs) > 0 {
		turbofish = "::<" + g.typeList(m.TypeArgs) + ">"
	}
	sig, _ := g.methodSignature(m)
	if path, ok := g.staticPath(m.Object); ok {
		site := callSite{method: m.Method, sig: sig}
		return path + "::" + m.Method + turbofish + "(" + g.args(site, m.Args) + ")"
	}
	site := callSite{method: m.Method, sig: sig, receiver: true}
	obj := g.wrapPostfix(m.Object, g.expr(m.Object))
	return obj + "." + m.Method + turbofish + "(" + g.args(site, m.Args) + ")"
}

// call renders a function call, mapping print and assertion helpers to macros
func (g *Generator) call(c *ast.CallExpr) string {
	name := calleeName(c.Function)
	if id, ok := c.Function.(*ast.Identifier); ok && !g.isLocal(id.Name) {
		if macro, ok := printMacros[id.Name]; ok {
			return macro + "!(" + g.printArgs(argValues(c.Args)) + ")"
		}
		if callMacros[id.Name] {
			return g.macroCall(id.Name, argValues(c.Args))
		}
		switch id.Name {
		case "Some", "Ok", "Err":
			return id.Name + "(" + g.wrapperArgs(c.Args) + ")"
		}
	}

	sig := g.callSignature(name)
	fn := g.expr(c.Function)
	switch c.Function.(type) {
	case *ast.ClosureExpr, *ast.BinaryExpr, *ast.UnaryExpr:
		fn = "(" + fn + ")"
	}
	return fn + "(" + g.args(callSite{method: lastSegment(name), sig: sig}, c.Args) + ")"
}

func argValues(args []*ast.Argument) []ast.Expression {
	out := make([]ast.Expression, 0, len(args))
	for _, a := range args {
		out = append(out, a.Value)
	}
	return out
}

// wrapperArgs adapts the payload of Some, Ok and Err to an owned value
func (g *Generator) wrapperArgs(args []*ast.Argument) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		s := g.expr(a.Value)
		switch {
		case isStringLiteral(a.Value):
			s += ".to_string()"
		case g.needsOwnedCopy(a.Value):
			s += ".clone()"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
