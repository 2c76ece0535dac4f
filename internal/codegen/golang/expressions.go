package golang

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// printFuncs maps print calls to the fmt function family they use
var printFuncs = map[string]string{
	"print":    "Print",
	"println":  "Println",
	"eprint":   "Print",
	"eprintln": "Println",
}

func (g *generator) exprList(exprs []ast.Expression) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, g.expr(e))
	}
	return strings.Join(parts, ", ")
}

func (g *generator) args(args []*ast.Argument) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, g.expr(a.Value))
	}
	return strings.Join(parts, ", ")
}

func argValues(args []*ast.Argument) []ast.Expression {
	out := make([]ast.Expression, 0, len(args))
	for _, a := range args {
		out = append(out, a.Value)
	}
	return out
}

func (g *generator) expr(e ast.Expression) string {
	if g.err != nil {
		return ""
	}
	switch x := e.(type) {
	case nil:
		return ""
	case *ast.Literal:
		return literal(x)
	case *ast.Identifier:
		return g.identifier(x.Name)
	case *ast.BinaryExpr:
		return g.binary(x)
	case *ast.UnaryExpr:
		return g.unary(x)
	case *ast.CallExpr:
		return g.call(x)
	case *ast.MethodCallExpr:
		return g.methodCall(x)
	case *ast.FieldAccessExpr:
		obj := g.expr(x.Object)
		if _, err := strconv.Atoi(x.Field); err == nil {
			return obj + "[" + x.Field + "]"
		}
		return obj + "." + x.Field
	case *ast.IndexExpr:
		if r, ok := x.Index.(*ast.RangeExpr); ok {
			return g.expr(x.Object) + "[" + g.sliceBounds(r) + "]"
		}
		return g.expr(x.Object) + "[" + g.expr(x.Index) + "]"
	case *ast.StructLiteral:
		return g.structLiteral(x)
	case *ast.ArrayLiteral:
		return g.sliceLiteral(x.Elements)
	case *ast.TupleLiteral:
		if len(x.Elements) == 0 {
			return "struct{}{}"
		}
		return "[]any{" + g.exprList(x.Elements) + "}"
	case *ast.MapLiteral:
		return g.mapLiteral(x)
	case *ast.CastExpr:
		return g.goType(x.Type) + "(" + g.expr(x.Expr) + ")"
	case *ast.TryExpr:
		return g.expr(x.Expr)
	case *ast.AwaitExpr:
		return g.expr(x.Expr)
	case *ast.ChannelSendExpr:
		return g.expr(x.Channel) + " <- " + g.expr(x.Value)
	case *ast.ChannelRecvExpr:
		return "<-" + g.expr(x.Channel)
	case *ast.MacroInvocation:
		return g.macro(x)
	case *ast.IfExpr, *ast.MatchExpr, *ast.BlockExpr:
		return g.valueBlock(x)
	case *ast.RangeExpr:
		g.fail(x, "range", "ranges are only supported in for loops and slicing")
	case *ast.ClosureExpr:
		g.fail(x, "closure", "closures have no typed Go equivalent")
	default:
		g.fail(e, "expression", "unsupported expression %T", e)
	}
	return ""
}

// valueBlock wraps an if, match or block used as a value in a function
// literal that returns it
func (g *generator) valueBlock(e ast.Expression) string {
	typ := g.resultType(e)
	if typ == "" {
		g.fail(e, "expression", "cannot infer the type of %s", e)
		return ""
	}
	saved := g.out
	g.out = &strings.Builder{}
	savedIndent := g.indent
	g.indent = 1
	g.tailExpr(e, tail{kind: tailReturn})
	body := g.out.String()
	g.out = saved
	g.indent = savedIndent
	return "func() " + typ + " {\n" + body + "}()"
}

func literal(l *ast.Literal) string {
	switch l.Kind {
	case ast.LitString:
		return strconv.Quote(l.Value)
	case ast.LitChar:
		for _, r := range l.Value {
			return strconv.QuoteRune(r)
		}
		return "0"
	}
	return l.Value
}

func (g *generator) identifier(name string) string {
	if alias, ok := g.renamed(name); ok {
		return alias
	}
	switch name {
	case "None":
		return "nil"
	case "self", "true", "false":
		return name
	}
	if strings.Contains(name, "::") {
		return g.path(name)
	}
	if typ, ok := g.variants[name]; ok && !g.lookupOK(name) {
		return typ + "{}"
	}
	if t, ok := g.lookup(name).(*ast.MutableReferenceType); ok && !g.isStruct(t.Inner) {
		return "(*" + name + ")"
	}
	return name
}

// path resolves Type::item paths to Go names
func (g *generator) path(name string) string {
	parts := strings.Split(name, "::")
	base, last := parts[len(parts)-2], parts[len(parts)-1]
	if base == "Self" {
		base = g.recv
	}
	if typ, ok := g.variants[base+"::"+last]; ok {
		return typ + "{}"
	}
	if last == "new" && (g.structs[base] || g.enums[base] != nil) {
		return "New" + base
	}
	if g.structs[base] || g.enums[base] != nil {
		return base + exported(last)
	}
	switch name {
	case "std::f64::consts::PI", "f64::consts::PI":
		g.imports["math"] = true
		return "math.Pi"
	case "i64::MAX", "i32::MAX", "usize::MAX":
		g.imports["math"] = true
		return "math.Max" + exported(strings.TrimPrefix(scalarTypes[base], "u"))
	}
	return strings.Join(parts, ".")
}

var precedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"+": 4, "-": 4, "|": 4, "^": 4,
	"*": 5, "/": 5, "%": 5, "<<": 5, ">>": 5, "&": 5,
}

func (g *generator) binary(b *ast.BinaryExpr) string {
	prec := precedence[b.Op]
	left := g.operand(b.Left, prec, false)
	right := g.operand(b.Right, prec, true)
	return left + " " + b.Op + " " + right
}

func (g *generator) operand(e ast.Expression, parent int, right bool) string {
	s := g.expr(e)
	if b, ok := e.(*ast.BinaryExpr); ok {
		p := precedence[b.Op]
		if p < parent || (right && p == parent) {
			return "(" + s + ")"
		}
	}
	return s
}

func (g *generator) unary(u *ast.UnaryExpr) string {
	operand := g.expr(u.Operand)
	if _, ok := u.Operand.(*ast.BinaryExpr); ok {
		operand = "(" + operand + ")"
	}
	switch u.Op {
	case ast.UnaryNot:
		return "!" + operand
	case ast.UnaryNeg:
		return "-" + operand
	case ast.UnaryRef:
		return operand
	case ast.UnaryMutRef:
		if id, ok := u.Operand.(*ast.Identifier); ok {
			switch t := g.lookup(id.Name).(type) {
			case *ast.MutableReferenceType:
				return id.Name
			case *ast.CustomType:
				if g.structs[t.Name] && id.Name == "self" {
					return id.Name
				}
			}
		}
		return "&" + operand
	case ast.UnaryDeref:
		if g.isPointer(u.Operand) {
			return "*" + operand
		}
		return operand
	}
	return operand
}

func (g *generator) call(c *ast.CallExpr) string {
	id, ok := c.Function.(*ast.Identifier)
	if !ok {
		return g.expr(c.Function) + "(" + g.args(c.Args) + ")"
	}
	name := id.Name
	if _, shadowed := g.renamed(name); !shadowed && g.lookup(name) == nil {
		if out, ok := g.builtinCall(c, name, argValues(c.Args)); ok {
			return out
		}
	}
	parts := strings.Split(name, "::")
	if len(parts) >= 2 {
		base, last := parts[len(parts)-2], parts[len(parts)-1]
		if base == "Self" {
			base = g.recv
		}
		if typ, ok := g.variants[base+"::"+last]; ok {
			return g.variantLiteral(typ, c.Args)
		}
		if base+"::"+last == "String::new" {
			return `""`
		}
		if zeroConstructors[base+"::"+last] {
			g.fail(c, "call", "%s needs a type annotation on the binding", name)
			return ""
		}
	} else if typ, ok := g.variants[name]; ok && !isOptionVariant(name) {
		return g.variantLiteral(typ, c.Args)
	}
	return g.expr(c.Function) + "(" + g.args(c.Args) + ")"
}

// zeroConstructors build empty collections; Go needs their type spelled out
var zeroConstructors = map[string]bool{
	"Vec::new":           true,
	"Vec::with_capacity": true,
	"HashMap::new":       true,
	"HashSet::new":       true,
	"BTreeMap::new":      true,
	"BTreeSet::new":      true,
	"VecDeque::new":      true,
}

func isZeroConstructor(e ast.Expression) bool {
	c, ok := e.(*ast.CallExpr)
	if !ok {
		return false
	}
	id, ok := c.Function.(*ast.Identifier)
	return ok && zeroConstructors[id.Name]
}

func (g *generator) variantLiteral(typ string, args []*ast.Argument) string {
	fields := make([]string, 0, len(args))
	for i, a := range args {
		fields = append(fields, fmt.Sprintf("Field%d: %s", i, g.expr(a.Value)))
	}
	return typ + "{" + strings.Join(fields, ", ") + "}"
}

func isOptionVariant(name string) bool {
	switch variantName(name) {
	case "Some", "None", "Ok", "Err":
		return true
	}
	return false
}

func variantName(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

// builtinCall translates calls that are functions or macros in the source
// language but library calls or builtins in Go
func (g *generator) builtinCall(node ast.Node, name string, args []ast.Expression) (string, bool) {
	switch name {
	case "print", "println", "eprint", "eprintln":
		return g.printCall(name, args), true
	case "format":
		g.imports["fmt"] = true
		format, fargs := g.formatArgs(args)
		if len(fargs) == 0 && !strings.Contains(format, "%") {
			return strconv.Quote(format), true
		}
		return "fmt.Sprintf(" + joinFormat(format, fargs) + ")", true
	case "panic", "unreachable", "todo":
		if len(args) == 0 {
			return "panic(" + strconv.Quote(name) + ")", true
		}
		format, fargs := g.formatArgs(args)
		if len(fargs) == 0 {
			return "panic(" + strconv.Quote(unescapePercent(format)) + ")", true
		}
		g.imports["fmt"] = true
		return "panic(fmt.Sprintf(" + joinFormat(format, fargs) + "))", true
	case "assert":
		if len(args) == 0 {
			return "", false
		}
		g.helpers["assert"] = true
		return "assert(" + g.expr(args[0]) + ", " + strconv.Quote("assertion failed: "+args[0].String()) + ")", true
	case "assert_eq", "assert_ne":
		if len(args) < 2 {
			return "", false
		}
		op := "=="
		if name == "assert_ne" {
			op = "!="
		}
		g.helpers["assert"] = true
		cond := g.operand(args[0], 3, false) + " " + op + " " + g.operand(args[1], 3, true)
		return "assert(" + cond + ", " + strconv.Quote("assertion failed: "+args[0].String()+" "+op+" "+args[1].String()) + ")", true
	case "Some":
		if len(args) != 1 {
			return "", false
		}
		g.helpers["some"] = true
		return "some(" + g.expr(args[0]) + ")", true
	case "Ok":
		if len(args) == 1 {
			return g.expr(args[0]), true
		}
		return "struct{}{}", true
	case "Err":
		g.fail(node, "call", "Err values are only supported in return position")
		return "", true
	case "vec":
		return g.sliceLiteral(args), true
	case "len":
		if len(args) == 1 {
			return "len(" + g.expr(args[0]) + ")", true
		}
	}
	return "", false
}

func (g *generator) printCall(name string, args []ast.Expression) string {
	g.imports["fmt"] = true
	stderr := strings.HasPrefix(name, "e")
	newline := strings.HasSuffix(name, "ln")
	dest := ""
	if stderr {
		g.imports["os"] = true
		dest = "os.Stderr, "
	}
	prefix := "fmt."
	if stderr {
		prefix = "fmt.F"
	}
	if len(args) == 0 {
		if stderr {
			return "fmt.Fprintln(os.Stderr)"
		}
		return "fmt.Println()"
	}
	format, fargs := g.formatArgs(args)
	if !strings.Contains(format, "%") {
		fn := printFuncs[name]
		if stderr {
			fn = strings.ToLower(fn[:1]) + fn[1:]
		}
		return prefix + fn + "(" + dest + strconv.Quote(format) + ")"
	}
	if newline {
		format += "\n"
	}
	if stderr {
		return "fmt.Fprintf(os.Stderr, " + joinFormat(format, fargs) + ")"
	}
	return "fmt.Printf(" + joinFormat(format, fargs) + ")"
}

func joinFormat(format string, args []string) string {
	if len(args) == 0 {
		return strconv.Quote(format)
	}
	return strconv.Quote(format) + ", " + strings.Join(args, ", ")
}

func unescapePercent(s string) string {
	return strings.ReplaceAll(s, "%%", "%")
}

// formatArgs turns the arguments of a print or format call into a Printf
// format string and its operands
func (g *generator) formatArgs(args []ast.Expression) (string, []string) {
	first, rest := args[0], args[1:]
	var format string
	var fargs []string
	switch x := first.(type) {
	case *ast.Literal:
		if x.Kind == ast.LitString {
			format, fargs = g.convertFormat(x.Value)
			break
		}
		format, fargs = "%v", []string{g.expr(first)}
	case *ast.MacroInvocation:
		if x.Name == "format" && len(x.Args) > 0 {
			return g.formatArgs(x.Args)
		}
		format, fargs = "%v", []string{g.expr(first)}
	case *ast.BinaryExpr:
		if leaves := concatLeaves(x); x.Op == "+" && hasStringLeaf(leaves) {
			var b strings.Builder
			for _, leaf := range leaves {
				if lit, ok := leaf.(*ast.Literal); ok && lit.Kind == ast.LitString {
					b.WriteString(strings.ReplaceAll(lit.Value, "%", "%%"))
					continue
				}
				b.WriteString("%v")
				fargs = append(fargs, g.expr(leaf))
			}
			format = b.String()
			break
		}
		format, fargs = "%v", []string{g.expr(first)}
	default:
		format, fargs = "%v", []string{g.expr(first)}
		for range rest {
			format += " %v"
		}
	}
	for _, a := range rest {
		fargs = append(fargs, g.expr(a))
	}
	return format, fargs
}

func concatLeaves(e ast.Expression) []ast.Expression {
	if b, ok := e.(*ast.BinaryExpr); ok && b.Op == "+" {
		return append(concatLeaves(b.Left), concatLeaves(b.Right)...)
	}
	return []ast.Expression{e}
}

func hasStringLeaf(leaves []ast.Expression) bool {
	for _, l := range leaves {
		if lit, ok := l.(*ast.Literal); ok && lit.Kind == ast.LitString {
			return true
		}
	}
	return false
}

// convertFormat rewrites {} placeholders into Printf verbs. Named
// placeholders become operands.
func (g *generator) convertFormat(text string) (string, []string) {
	var out strings.Builder
	var args []string
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '%':
			out.WriteString("%%")
			continue
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			out.WriteByte('{')
			i++
			continue
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			out.WriteByte('}')
			i++
			continue
		case c != '{':
			out.WriteByte(c)
			continue
		}
		end := strings.IndexByte(text[i:], '}')
		if end < 0 {
			out.WriteString(text[i:])
			break
		}
		inner := text[i+1 : i+end]
		name, spec := inner, ""
		if j := strings.IndexByte(inner, ':'); j >= 0 {
			name, spec = inner[:j], inner[j+1:]
		}
		out.WriteString(verb(spec))
		if name != "" {
			if _, err := strconv.Atoi(name); err != nil {
				args = append(args, g.expr(placeholderExpr(name)))
			}
		}
		i += end
	}
	return out.String(), args
}

// verb maps a format spec such as ?, .2 or >8 to a Printf verb
func verb(spec string) string {
	switch spec {
	case "":
		return "%v"
	case "?", "#?":
		return "%+v"
	case "x", "X", "o", "b", "e", "E":
		return "%" + spec
	case "#x":
		return "%#x"
	}
	flags := ""
	switch spec[0] {
	case '<':
		flags, spec = "-", spec[1:]
	case '>', '^':
		spec = spec[1:]
	}
	if strings.HasPrefix(spec, "0") && len(spec) > 1 {
		flags += "0"
		spec = spec[1:]
	}
	if i := strings.IndexByte(spec, '.'); i >= 0 {
		return "%" + flags + spec[:i] + "." + strings.TrimSuffix(spec[i+1:], "?") + "f"
	}
	return "%" + flags + spec + "v"
}

func placeholderExpr(path string) ast.Expression {
	parts := strings.Split(path, ".")
	var e ast.Expression = &ast.Identifier{Name: parts[0]}
	for _, f := range parts[1:] {
		e = &ast.FieldAccessExpr{Object: e, Field: f}
	}
	return e
}

func (g *generator) macro(m *ast.MacroInvocation) string {
	if m.Name == "vec" && m.Repeat && len(m.Args) == 2 {
		g.imports["slices"] = true
		return "slices.Repeat(" + g.sliceLiteral(m.Args[:1]) + ", int(" + g.expr(m.Args[1]) + "))"
	}
	if out, ok := g.builtinCall(m, m.Name, m.Args); ok {
		return out
	}
	g.fail(m, "macro", "%s! has no Go translation", m.Name)
	return ""
}

func (g *generator) methodCall(m *ast.MethodCallExpr) string {
	if m.Method == "" {
		g.fail(m, "method call", "turbofish calls have no Go translation")
		return ""
	}
	obj := g.expr(m.Object)
	args := make([]string, 0, len(m.Args))
	for _, a := range m.Args {
		args = append(args, g.expr(a.Value))
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	switch m.Method {
	case "len", "count":
		return "len(" + obj + ")"
	case "is_empty":
		return "len(" + obj + ") == 0"
	case "clone", "to_owned", "iter", "into_iter", "iter_mut", "as_str", "as_ref", "borrow", "to_vec", "cloned", "copied":
		return obj
	case "to_string":
		if lit, ok := m.Object.(*ast.Literal); ok && lit.Kind == ast.LitString {
			return obj
		}
		if isStringType(g.typeOf(m.Object)) {
			return obj
		}
		g.imports["fmt"] = true
		return "fmt.Sprint(" + obj + ")"
	case "unwrap", "expect":
		if g.isPointer(m.Object) {
			return "*" + obj
		}
		return obj
	case "unwrap_or":
		if g.isPointer(m.Object) {
			g.helpers["unwrapOr"] = true
			return "unwrapOr(" + obj + ", " + arg(0) + ")"
		}
		return obj
	case "is_some":
		return obj + " != nil"
	case "is_none":
		return obj + " == nil"
	case "contains":
		if isStringType(g.typeOf(m.Object)) {
			g.imports["strings"] = true
			return "strings.Contains(" + obj + ", " + arg(0) + ")"
		}
		if g.isMap(m.Object) {
			g.helpers["hasKey"] = true
			return "hasKey(" + obj + ", " + arg(0) + ")"
		}
		g.imports["slices"] = true
		return "slices.Contains(" + obj + ", " + arg(0) + ")"
	case "contains_key":
		g.helpers["hasKey"] = true
		return "hasKey(" + obj + ", " + arg(0) + ")"
	case "to_uppercase", "to_lowercase", "trim", "starts_with", "ends_with", "replace", "split", "trim_start", "trim_end":
		g.imports["strings"] = true
		fn := map[string]string{
			"to_uppercase": "ToUpper",
			"to_lowercase": "ToLower",
			"trim":         "TrimSpace",
			"trim_start":   "TrimLeft",
			"trim_end":     "TrimRight",
			"starts_with":  "HasPrefix",
			"ends_with":    "HasSuffix",
			"replace":      "ReplaceAll",
			"split":        "Split",
		}[m.Method]
		all := append([]string{obj}, args...)
		if m.Method == "trim_start" || m.Method == "trim_end" {
			all = append(all, `" \t\n"`)
		}
		return "strings." + fn + "(" + strings.Join(all, ", ") + ")"
	case "join":
		g.imports["strings"] = true
		return "strings.Join(" + obj + ", " + arg(0) + ")"
	case "sqrt", "abs", "floor", "ceil", "round", "sin", "cos", "tan":
		if len(args) == 0 {
			g.imports["math"] = true
			return "math." + exported(m.Method) + "(" + obj + ")"
		}
	case "pow", "powi", "powf":
		g.imports["math"] = true
		return "math.Pow(float64(" + obj + "), float64(" + arg(0) + "))"
	case "min", "max":
		if len(args) == 1 {
			return m.Method + "(" + obj + ", " + arg(0) + ")"
		}
	case "get":
		if g.isMap(m.Object) && len(args) == 1 {
			g.helpers["lookup"] = true
			return "lookup(" + obj + ", " + arg(0) + ")"
		}
	case "push", "push_back", "insert", "extend", "remove", "pop", "clear", "sort", "reverse":
		if t := g.typeOf(m.Object); t == nil || !g.isStruct(t) {
			g.fail(m, "method call", "%s mutates its receiver and must be used as a statement", m.Method)
			return ""
		}
	case "send":
		return obj + " <- " + arg(0)
	case "recv":
		return "<-" + obj
	}
	if ct, ok := deref(g.typeOf(m.Object)).(*ast.CustomType); ok && g.enums[ct.Name] != nil {
		return ct.Name + exported(m.Method) + "(" + strings.Join(append([]string{obj}, args...), ", ") + ")"
	}
	return obj + "." + exported(m.Method) + "(" + strings.Join(args, ", ") + ")"
}

func (g *generator) sliceBounds(r *ast.RangeExpr) string {
	lo, hi := "", ""
	if r.Start != nil {
		lo = g.expr(r.Start)
	}
	if r.End != nil {
		hi = g.expr(r.End)
		if r.Inclusive {
			hi = g.operand(r.End, 4, false) + "+1"
		}
	}
	return lo + ":" + hi
}

func (g *generator) structLiteral(s *ast.StructLiteral) string {
	name := s.Name
	if name == "Self" {
		name = g.recv
	}
	if strings.Contains(name, "::") {
		parts := strings.Split(name, "::")
		base := parts[len(parts)-2]
		if base == "Self" {
			base = g.recv
		}
		if typ, ok := g.variants[base+"::"+parts[len(parts)-1]]; ok {
			name = typ
		}
	}
	fields := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if ft := g.fields[name][f.Name]; ft != nil && isZeroConstructor(f.Value) {
			if typ := g.goType(ft); strings.HasPrefix(typ, "map[") {
				fields = append(fields, f.Name+": make("+typ+")")
			}
			continue
		}
		fields = append(fields, f.Name+": "+g.expr(f.Value))
	}
	return name + "{" + strings.Join(fields, ", ") + "}"
}

func (g *generator) sliceLiteral(elems []ast.Expression) string {
	elem := "any"
	if len(elems) > 0 {
		if t := g.typeOf(elems[0]); t != nil {
			elem = g.goType(t)
		}
	}
	return "[]" + elem + "{" + g.exprList(elems) + "}"
}

func (g *generator) mapLiteral(m *ast.MapLiteral) string {
	key, val := "any", "any"
	if len(m.Entries) > 0 {
		if t := g.typeOf(m.Entries[0].Key); t != nil {
			key = g.goType(t)
		}
		if t := g.typeOf(m.Entries[0].Value); t != nil {
			val = g.goType(t)
		}
	}
	entries := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		entries = append(entries, g.expr(e.Key)+": "+g.expr(e.Value))
	}
	return "map[" + key + "]" + val + "{" + strings.Join(entries, ", ") + "}"
}

// sliceTypeOf returns the Go slice type of e, or []any
func (g *generator) sliceTypeOf(e ast.Expression) string {
	if t := g.typeOf(e); t != nil {
		if s := g.goType(t); strings.HasPrefix(s, "[]") {
			return s
		}
	}
	return "[]any"
}
