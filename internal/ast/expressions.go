package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/position"
)

// LiteralKind identifies the payload of a Literal
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitString
	LitChar
	LitBool
)

// Literal is an integer, float, string, char or bool constant.
// Value holds the source digits, the decoded text, or "true"/"false".
type Literal struct {
	Span  position.Span
	Kind  LiteralKind
	Value string
}

func (l *Literal) GetSpan() position.Span { return l.Span }
func (l *Literal) expressionNode()        {}
func (l *Literal) String() string {
	switch l.Kind {
	case LitString:
		return strconv.Quote(l.Value)
	case LitChar:
		for _, r := range l.Value {
			return strconv.QuoteRune(r)
		}
		return "''"
	default:
		return l.Value
	}
}

// Identifier is a name, possibly qualified with :: segments (HashMap::new)
type Identifier struct {
	Span position.Span
	Name string
}

func (i *Identifier) GetSpan() position.Span { return i.Span }
func (i *Identifier) expressionNode()        {}
func (i *Identifier) String() string         { return i.Name }

// BinaryExpr is Left Op Right; Op is the operator's source text
type BinaryExpr struct {
	Span  position.Span
	Left  Expression
	Op    string
	Right Expression
}

func (b *BinaryExpr) GetSpan() position.Span { return b.Span }
func (b *BinaryExpr) expressionNode()        {}
func (b *BinaryExpr) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

// UnaryOp enumerates the prefix operators
type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryNeg
	UnaryRef
	UnaryMutRef
	UnaryDeref
)

var unaryText = map[UnaryOp]string{
	UnaryNot:    "!",
	UnaryNeg:    "-",
	UnaryRef:    "&",
	UnaryMutRef: "&mut ",
	UnaryDeref:  "*",
}

func (op UnaryOp) String() string { return unaryText[op] }

// UnaryExpr is a prefix operation
type UnaryExpr struct {
	Span    position.Span
	Op      UnaryOp
	Operand Expression
}

func (u *UnaryExpr) GetSpan() position.Span { return u.Span }
func (u *UnaryExpr) expressionNode()        {}
func (u *UnaryExpr) String() string         { return "(" + u.Op.String() + u.Operand.String() + ")" }

// Argument is a call argument with an optional label
type Argument struct {
	Label string
	Value Expression
}

func argsString(args []*Argument) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		if a.Label != "" {
			parts = append(parts, a.Label+": "+a.Value.String())
		} else {
			parts = append(parts, a.Value.String())
		}
	}
	return strings.Join(parts, ", ")
}

// CallExpr is Function(Args)
type CallExpr struct {
	Span     position.Span
	Function Expression
	Args     []*Argument
}

func (c *CallExpr) GetSpan() position.Span { return c.Span }
func (c *CallExpr) expressionNode()        {}
func (c *CallExpr) String() string         { return c.Function.String() + "(" + argsString(c.Args) + ")" }

// MethodCallExpr is Object.Method::<TypeArgs>(Args). An empty Method is a
// turbofish call on a path: Vec::<int>(...).
type MethodCallExpr struct {
	Span     position.Span
	Object   Expression
	Method   string
	TypeArgs []Type
	Args     []*Argument
}

func (m *MethodCallExpr) GetSpan() position.Span { return m.Span }
func (m *MethodCallExpr) expressionNode()        {}
func (m *MethodCallExpr) String() string {
	turbofish := ""
	if len(m.TypeArgs) > 0 {
		turbofish = "::<" + joinTypes(m.TypeArgs) + ">"
	}
	if m.Method == "" {
		return m.Object.String() + turbofish + "(" + argsString(m.Args) + ")"
	}
	return m.Object.String() + "." + m.Method + turbofish + "(" + argsString(m.Args) + ")"
}

// GenericPathExpr is a path that continues after a turbofish: Vec::<int>::new.
type GenericPathExpr struct {
	Span     position.Span
	Base     Expression
	TypeArgs []Type
	Rest     []string
}

func (g *GenericPathExpr) GetSpan() position.Span { return g.Span }
func (g *GenericPathExpr) expressionNode()        {}
func (g *GenericPathExpr) String() string {
	return g.Base.String() + "::<" + joinTypes(g.TypeArgs) + ">::" + strings.Join(g.Rest, "::")
}

// FieldAccessExpr is Object.Field (Field may be a tuple index)
type FieldAccessExpr struct {
	Span   position.Span
	Object Expression
	Field  string
}

func (f *FieldAccessExpr) GetSpan() position.Span { return f.Span }
func (f *FieldAccessExpr) expressionNode()        {}
func (f *FieldAccessExpr) String() string         { return f.Object.String() + "." + f.Field }

// IndexExpr is Object[Index]
type IndexExpr struct {
	Span   position.Span
	Object Expression
	Index  Expression
}

func (i *IndexExpr) GetSpan() position.Span { return i.Span }
func (i *IndexExpr) expressionNode()        {}
func (i *IndexExpr) String() string         { return i.Object.String() + "[" + i.Index.String() + "]" }

// RangeExpr is Start..End or Start..=End; either bound may be nil
type RangeExpr struct {
	Span      position.Span
	Start     Expression
	End       Expression
	Inclusive bool
}

func (r *RangeExpr) GetSpan() position.Span { return r.Span }
func (r *RangeExpr) expressionNode()        {}
func (r *RangeExpr) String() string {
	op := ".."
	if r.Inclusive {
		op = "..="
	}
	s := ""
	if r.Start != nil {
		s = r.Start.String()
	}
	s += op
	if r.End != nil {
		s += r.End.String()
	}
	return s
}

// ClosureExpr is |params| body
type ClosureExpr struct {
	Span   position.Span
	Params []string
	Body   Expression
}

func (c *ClosureExpr) GetSpan() position.Span { return c.Span }
func (c *ClosureExpr) expressionNode()        {}
func (c *ClosureExpr) String() string {
	return "|" + strings.Join(c.Params, ", ") + "| " + c.Body.String()
}

// FieldInit is one `name: value` entry of a struct literal
type FieldInit struct {
	Name  string
	Value Expression
}

// StructLiteral is Name { field: value, ... }
type StructLiteral struct {
	Span   position.Span
	Name   string
	Fields []*FieldInit
}

func (s *StructLiteral) GetSpan() position.Span { return s.Span }
func (s *StructLiteral) expressionNode()        {}
func (s *StructLiteral) String() string {
	fields := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, f.Name+": "+f.Value.String())
	}
	if len(fields) == 0 {
		return s.Name + " {}"
	}
	return s.Name + " { " + strings.Join(fields, ", ") + " }"
}

// ArrayLiteral is [a, b, c]
type ArrayLiteral struct {
	Span     position.Span
	Elements []Expression
}

func (a *ArrayLiteral) GetSpan() position.Span { return a.Span }
func (a *ArrayLiteral) expressionNode()        {}
func (a *ArrayLiteral) String() string         { return "[" + joinExprs(a.Elements) + "]" }

// TupleLiteral is (a, b)
type TupleLiteral struct {
	Span     position.Span
	Elements []Expression
}

func (t *TupleLiteral) GetSpan() position.Span { return t.Span }
func (t *TupleLiteral) expressionNode()        {}
func (t *TupleLiteral) String() string {
	if len(t.Elements) == 1 {
		return "(" + t.Elements[0].String() + ",)"
	}
	return "(" + joinExprs(t.Elements) + ")"
}

// MapEntry is one key: value pair of a map literal
type MapEntry struct {
	Key   Expression
	Value Expression
}

// MapLiteral is { key: value, ... }
type MapLiteral struct {
	Span    position.Span
	Entries []*MapEntry
}

func (m *MapLiteral) GetSpan() position.Span { return m.Span }
func (m *MapLiteral) expressionNode()        {}
func (m *MapLiteral) String() string {
	parts := make([]string, 0, len(m.Entries))
	for _, e := range m.Entries {
		parts = append(parts, e.Key.String()+": "+e.Value.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// CastExpr is Expr as Type
type CastExpr struct {
	Span position.Span
	Expr Expression
	Type Type
}

func (c *CastExpr) GetSpan() position.Span { return c.Span }
func (c *CastExpr) expressionNode()        {}
func (c *CastExpr) String() string         { return "(" + c.Expr.String() + " as " + c.Type.String() + ")" }

// TryExpr is Expr?
type TryExpr struct {
	Span position.Span
	Expr Expression
}

func (t *TryExpr) GetSpan() position.Span { return t.Span }
func (t *TryExpr) expressionNode()        {}
func (t *TryExpr) String() string         { return t.Expr.String() + "?" }

// AwaitExpr is Expr.await
type AwaitExpr struct {
	Span position.Span
	Expr Expression
}

func (a *AwaitExpr) GetSpan() position.Span { return a.Span }
func (a *AwaitExpr) expressionNode()        {}
func (a *AwaitExpr) String() string         { return a.Expr.String() + ".await" }

// ChannelSendExpr is Channel <- Value
type ChannelSendExpr struct {
	Span    position.Span
	Channel Expression
	Value   Expression
}

func (c *ChannelSendExpr) GetSpan() position.Span { return c.Span }
func (c *ChannelSendExpr) expressionNode()        {}
func (c *ChannelSendExpr) String() string {
	return "(" + c.Channel.String() + " <- " + c.Value.String() + ")"
}

// ChannelRecvExpr is <-Channel
type ChannelRecvExpr struct {
	Span    position.Span
	Channel Expression
}

func (c *ChannelRecvExpr) GetSpan() position.Span { return c.Span }
func (c *ChannelRecvExpr) expressionNode()        {}
func (c *ChannelRecvExpr) String() string         { return "(<-" + c.Channel.String() + ")" }

// MacroDelimiter is the bracket style of a macro invocation
type MacroDelimiter int

const (
	DelimParens MacroDelimiter = iota
	DelimBrackets
	DelimBraces
)

// MacroInvocation is name!(args), name![args] or name!{args}.
// Repeat marks the [value; count] form.
type MacroInvocation struct {
	Span      position.Span
	Name      string
	Args      []Expression
	Delimiter MacroDelimiter
	Repeat    bool
}

func (m *MacroInvocation) GetSpan() position.Span { return m.Span }
func (m *MacroInvocation) expressionNode()        {}
func (m *MacroInvocation) String() string {
	sep := ", "
	if m.Repeat {
		sep = "; "
	}
	parts := make([]string, 0, len(m.Args))
	for _, a := range m.Args {
		parts = append(parts, a.String())
	}
	body := strings.Join(parts, sep)
	switch m.Delimiter {
	case DelimBrackets:
		return m.Name + "![" + body + "]"
	case DelimBraces:
		return m.Name + "!{" + body + "}"
	default:
		return m.Name + "!(" + body + ")"
	}
}

// MatchArm is `pattern [if guard] => body`
type MatchArm struct {
	Pattern Pattern
	Guard   Expression
	Body    Expression
}

func (a *MatchArm) String() string {
	s := a.Pattern.String()
	if a.Guard != nil {
		s += " if " + a.Guard.String()
	}
	return s + " => " + a.Body.String()
}

func armsString(arms []*MatchArm) string {
	parts := make([]string, 0, len(arms))
	for _, a := range arms {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, ", ")
}

// MatchExpr is a match in expression position
type MatchExpr struct {
	Span  position.Span
	Value Expression
	Arms  []*MatchArm
}

func (m *MatchExpr) GetSpan() position.Span { return m.Span }
func (m *MatchExpr) expressionNode()        {}
func (m *MatchExpr) String() string {
	return "match " + m.Value.String() + " { " + armsString(m.Arms) + " }"
}

// IfExpr is an if in expression position. Else is a *BlockExpr, an *IfExpr, or nil.
type IfExpr struct {
	Span      position.Span
	Condition Expression
	Then      *BlockExpr
	Else      Expression
}

func (i *IfExpr) GetSpan() position.Span { return i.Span }
func (i *IfExpr) expressionNode()        {}
func (i *IfExpr) String() string {
	s := "if " + i.Condition.String() + " " + i.Then.String()
	if i.Else != nil {
		s += " else " + i.Else.String()
	}
	return s
}

// BlockExpr is { statements }, optionally marked unsafe
type BlockExpr struct {
	Span       position.Span
	Statements []Statement
	Unsafe     bool
}

func (b *BlockExpr) GetSpan() position.Span { return b.Span }
func (b *BlockExpr) expressionNode()        {}
func (b *BlockExpr) String() string {
	prefix := ""
	if b.Unsafe {
		prefix = "unsafe "
	}
	return prefix + blockString(b.Statements)
}

func joinExprs(exprs []Expression) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}

func blockString(stmts []Statement) string {
	if len(stmts) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(stmts))
	for _, s := range stmts {
		parts = append(parts, s.String())
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// Describe returns a short name of the expression kind for error messages
func Describe(e Expression) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", e), "*ast.")
}
