package rust

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// printMacros maps source print functions to Rust macros
var printMacros = map[string]string{
	"print":    "println",
	"println":  "println",
	"eprint":   "eprint",
	"eprintln": "eprintln",
}

// callMacros are functions in the source language that are macros in Rust
var callMacros = map[string]bool{
	"assert":      true,
	"assert_eq":   true,
	"assert_ne":   true,
	"panic":       true,
	"unreachable": true,
	"todo":        true,
	"format":      true,
	"vec":         true,
}

// formatMacros take a format string as their first argument
var formatMacros = map[string]bool{
	"println":  true,
	"print":    true,
	"eprintln": true,
	"eprint":   true,
	"format":   true,
	"panic":    true,
}

func (g *Generator) macroCall(name string, args []ast.Expression) string {
	if formatMacros[name] {
		return name + "!(" + g.printArgs(args) + ")"
	}
	if name == "vec" {
		return "vec![" + g.exprList(args) + "]"
	}
	return name + "!(" + g.exprList(args) + ")"
}

// macro renders a macro invocation written in source, flattening a format!
// passed to a print macro
func (g *Generator) macro(m *ast.MacroInvocation) string {
	if formatMacros[m.Name] && len(m.Args) > 0 && m.Delimiter == ast.DelimParens {
		return m.Name + "!(" + g.printArgs(m.Args) + ")"
	}
	open, closing := "(", ")"
	switch m.Delimiter {
	case ast.DelimBrackets:
		open, closing = "[", "]"
	case ast.DelimBraces:
		open, closing = "{", "}"
	}
	if m.Repeat && len(m.Args) == 2 {
		return m.Name + "!" + open + g.expr(m.Args[0]) + "; " + g.expr(m.Args[1]) + closing
	}
	return m.Name + "!" + open + g.exprList(m.Args) + closing
}

// printArgs builds the argument list of a formatting macro. The first
// argument becomes the format string: format! calls are inlined, string
// concatenations are folded and {name} placeholders become positional.
func (g *Generator) printArgs(args []ast.Expression) string {
	if len(args) == 0 {
		return ""
	}
	first, rest := args[0], args[1:]
	var format string
	var fargs []string
	switch x := first.(type) {
	case *ast.MacroInvocation:
		if x.Name == "format" && len(x.Args) > 0 && isStringLiteral(x.Args[0]) {
			format = x.Args[0].(*ast.Literal).Value
			for _, a := range x.Args[1:] {
				fargs = append(fargs, g.expr(a))
			}
		} else {
			format, fargs = "{}", []string{g.expr(first)}
		}
	case *ast.Literal:
		if x.Kind == ast.LitString {
			format, fargs = g.expandPlaceholders(x.Value)
		} else {
			format, fargs = "{}", []string{g.expr(first)}
		}
	case *ast.BinaryExpr:
		if g.isStringConcat(x) {
			format, fargs = g.concatFormat(x)
		} else {
			format, fargs = "{}", []string{g.expr(first)}
		}
	default:
		format, fargs = "{}", []string{g.expr(first)}
		for range rest {
			format += " {}"
		}
	}
	for _, a := range rest {
		fargs = append(fargs, g.expr(a))
	}
	return joinFormat(format, fargs)
}

func joinFormat(format string, args []string) string {
	if len(args) == 0 {
		return rustQuote(format)
	}
	return rustQuote(format) + ", " + strings.Join(args, ", ")
}

// expandPlaceholders rewrites {name} and {a.b:spec} placeholders into
// positional {} arguments. Escaped braces and positional forms are kept.
func (g *Generator) expandPlaceholders(text string) (string, []string) {
	var out strings.Builder
	var args []string
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '{' && i+1 < len(text) && text[i+1] == '{' {
			out.WriteString("{{")
			i++
			continue
		}
		if c == '}' && i+1 < len(text) && text[i+1] == '}' {
			out.WriteString("}}")
			i++
			continue
		}
		if c != '{' {
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
			name, spec = inner[:j], inner[j:]
		}
		if !isPlaceholderPath(name) {
			out.WriteString(text[i : i+end+1])
			i += end
			continue
		}
		out.WriteString("{" + spec + "}")
		args = append(args, g.expr(placeholderExpr(name)))
		i += end
	}
	return out.String(), args
}

// isPlaceholderPath accepts identifiers and dotted field paths
func isPlaceholderPath(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			switch {
			case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			case i > 0 && r >= '0' && r <= '9':
			default:
				return false
			}
		}
	}
	return true
}

func placeholderExpr(path string) ast.Expression {
	parts := strings.Split(path, ".")
	var e ast.Expression = &ast.Identifier{Name: parts[0]}
	for _, f := range parts[1:] {
		e = &ast.FieldAccessExpr{Object: e, Field: f}
	}
	return e
}

// isStringConcat reports whether a + chain builds a string
func (g *Generator) isStringConcat(b *ast.BinaryExpr) bool {
	if b.Op != "+" {
		return false
	}
	leaves := concatLeaves(b)
	for _, l := range leaves {
		if isStringLiteral(l) {
			return true
		}
		if m, ok := l.(*ast.MacroInvocation); ok && m.Name == "format" {
			return true
		}
	}
	return isStringType(g.typeOf(leaves[0]))
}

func concatLeaves(e ast.Expression) []ast.Expression {
	if b, ok := e.(*ast.BinaryExpr); ok && b.Op == "+" {
		return append(concatLeaves(b.Left), concatLeaves(b.Right)...)
	}
	return []ast.Expression{e}
}

// concatFormat folds a string concatenation into a format string with
// literal text inlined and every other operand as a positional argument
func (g *Generator) concatFormat(b *ast.BinaryExpr) (string, []string) {
	var format strings.Builder
	var args []string
	for _, leaf := range concatLeaves(b) {
		switch x := leaf.(type) {
		case *ast.Literal:
			if x.Kind == ast.LitString {
				format.WriteString(escapeBraces(x.Value))
				continue
			}
		case *ast.MacroInvocation:
			if x.Name == "format" && len(x.Args) > 0 && isStringLiteral(x.Args[0]) {
				format.WriteString(x.Args[0].(*ast.Literal).Value)
				for _, a := range x.Args[1:] {
					args = append(args, g.expr(a))
				}
				continue
			}
		}
		format.WriteString("{}")
		args = append(args, g.expr(leaf))
	}
	return format.String(), args
}

func escapeBraces(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}
