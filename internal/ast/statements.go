package ast

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/position"
)

// LetStmt is `let [mut] pattern [: Type] = value [else { ... }]`
type LetStmt struct {
	Span    position.Span
	Pattern Pattern
	Mutable bool
	Type    Type
	Value   Expression
	Else    []Statement // required when Pattern is refutable
}

func (l *LetStmt) GetSpan() position.Span { return l.Span }
func (l *LetStmt) statementNode()         {}
func (l *LetStmt) String() string {
	s := "let "
	if l.Mutable {
		s += "mut "
	}
	s += l.Pattern.String()
	if l.Type != nil {
		s += ": " + l.Type.String()
	}
	if l.Value != nil {
		s += " = " + l.Value.String()
	}
	if l.Else != nil {
		s += " else " + blockString(l.Else)
	}
	return s
}

// Name returns the bound name for a simple `let x = ...`, or ""
func (l *LetStmt) Name() string {
	if ip, ok := l.Pattern.(*IdentifierPattern); ok {
		return ip.Name
	}
	return ""
}

// ConstStmt is a block-local constant
type ConstStmt struct {
	Span  position.Span
	Name  string
	Type  Type
	Value Expression
}

func (c *ConstStmt) GetSpan() position.Span { return c.Span }
func (c *ConstStmt) statementNode()         {}
func (c *ConstStmt) String() string {
	return "const " + c.Name + ": " + typeString(c.Type) + " = " + c.Value.String()
}

// StaticStmt is a block-local static
type StaticStmt struct {
	Span    position.Span
	Name    string
	Mutable bool
	Type    Type
	Value   Expression
}

func (s *StaticStmt) GetSpan() position.Span { return s.Span }
func (s *StaticStmt) statementNode()         {}
func (s *StaticStmt) String() string {
	mut := ""
	if s.Mutable {
		mut = "mut "
	}
	return "static " + mut + s.Name + ": " + typeString(s.Type) + " = " + s.Value.String()
}

// AssignStmt is `target = value` or a compound form; Op is "" or one of + - * / %
type AssignStmt struct {
	Span   position.Span
	Target Expression
	Value  Expression
	Op     string
}

func (a *AssignStmt) GetSpan() position.Span { return a.Span }
func (a *AssignStmt) statementNode()         {}
func (a *AssignStmt) String() string {
	return a.Target.String() + " " + a.Op + "= " + a.Value.String()
}

// ReturnStmt is `return [value]`
type ReturnStmt struct {
	Span  position.Span
	Value Expression
}

func (r *ReturnStmt) GetSpan() position.Span { return r.Span }
func (r *ReturnStmt) statementNode()         {}
func (r *ReturnStmt) String() string {
	if r.Value == nil {
		return "return"
	}
	return "return " + r.Value.String()
}

// ExpressionStmt wraps an expression used as a statement.
// Semicolon records whether the source terminated it with `;`.
type ExpressionStmt struct {
	Span       position.Span
	Expression Expression
	Semicolon  bool
}

func (e *ExpressionStmt) GetSpan() position.Span { return e.Span }
func (e *ExpressionStmt) statementNode()         {}
func (e *ExpressionStmt) String() string         { return e.Expression.String() }

// IfStmt is an if statement. Else holds either a block's statements or a
// single nested *IfStmt for `else if`; nil when absent.
type IfStmt struct {
	Span      position.Span
	Condition Expression
	Then      []Statement
	Else      []Statement
}

func (i *IfStmt) GetSpan() position.Span { return i.Span }
func (i *IfStmt) statementNode()         {}
func (i *IfStmt) String() string {
	s := "if " + i.Condition.String() + " " + blockString(i.Then)
	if i.Else != nil {
		s += " else " + blockString(i.Else)
	}
	return s
}

// MatchStmt is a match in statement position; also the desugaring target of if let
type MatchStmt struct {
	Span  position.Span
	Value Expression
	Arms  []*MatchArm
}

func (m *MatchStmt) GetSpan() position.Span { return m.Span }
func (m *MatchStmt) statementNode()         {}
func (m *MatchStmt) String() string {
	return "match " + m.Value.String() + " { " + armsString(m.Arms) + " }"
}

// ForStmt is `for pattern in iterable { body }`
type ForStmt struct {
	Span     position.Span
	Pattern  Pattern
	Iterable Expression
	Body     []Statement
}

func (f *ForStmt) GetSpan() position.Span { return f.Span }
func (f *ForStmt) statementNode()         {}
func (f *ForStmt) String() string {
	return "for " + f.Pattern.String() + " in " + f.Iterable.String() + " " + blockString(f.Body)
}

// WhileStmt is `while condition { body }`
type WhileStmt struct {
	Span      position.Span
	Condition Expression
	Body      []Statement
}

func (w *WhileStmt) GetSpan() position.Span { return w.Span }
func (w *WhileStmt) statementNode()         {}
func (w *WhileStmt) String() string {
	return "while " + w.Condition.String() + " " + blockString(w.Body)
}

// LoopStmt is `loop { body }`; also the desugaring target of while let
type LoopStmt struct {
	Span position.Span
	Body []Statement
}

func (l *LoopStmt) GetSpan() position.Span { return l.Span }
func (l *LoopStmt) statementNode()         {}
func (l *LoopStmt) String() string         { return "loop " + blockString(l.Body) }

// BreakStmt is `break`
type BreakStmt struct {
	Span position.Span
}

func (b *BreakStmt) GetSpan() position.Span { return b.Span }
func (b *BreakStmt) statementNode()         {}
func (b *BreakStmt) String() string         { return "break" }

// ContinueStmt is `continue`
type ContinueStmt struct {
	Span position.Span
}

func (c *ContinueStmt) GetSpan() position.Span { return c.Span }
func (c *ContinueStmt) statementNode()         {}
func (c *ContinueStmt) String() string         { return "continue" }

// ThreadStmt is `thread { body }` or `go { body }`
type ThreadStmt struct {
	Span position.Span
	Body []Statement
}

func (t *ThreadStmt) GetSpan() position.Span { return t.Span }
func (t *ThreadStmt) statementNode()         {}
func (t *ThreadStmt) String() string         { return "thread " + blockString(t.Body) }

// AsyncStmt is `async { body }`
type AsyncStmt struct {
	Span position.Span
	Body []Statement
}

func (a *AsyncStmt) GetSpan() position.Span { return a.Span }
func (a *AsyncStmt) statementNode()         {}
func (a *AsyncStmt) String() string         { return "async " + blockString(a.Body) }

// DeferStmt is `defer statement`
type DeferStmt struct {
	Span      position.Span
	Statement Statement
}

func (d *DeferStmt) GetSpan() position.Span { return d.Span }
func (d *DeferStmt) statementNode()         {}
func (d *DeferStmt) String() string         { return "defer " + d.Statement.String() }

// UseStmt is a block-local import
type UseStmt struct {
	Span  position.Span
	Path  []string
	Alias string
}

func (u *UseStmt) GetSpan() position.Span { return u.Span }
func (u *UseStmt) statementNode()         {}
func (u *UseStmt) String() string {
	s := "use " + strings.Join(u.Path, "::")
	if u.Alias != "" {
		s += " as " + u.Alias
	}
	return s
}
