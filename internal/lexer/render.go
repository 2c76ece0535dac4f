package lexer

import "strings"

// Render returns source text that lexes back to tok. It is the inverse of
// NextToken for single tokens and is used by diagnostics and tests.
func Render(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return ""
	case TokenString:
		return `"` + escape(tok.Literal, '"') + `"`
	case TokenInterpolatedString:
		return `"` + renderParts(tok.Parts) + `"`
	case TokenChar:
		return "'" + escape(tok.Literal, '\'') + "'"
	case TokenDecorator:
		return "@" + tok.Literal
	case TokenDocComment:
		return "/// " + tok.Literal + "\n"
	}
	if text, ok := operatorText[tok.Type]; ok {
		return text
	}
	return tok.Literal
}

func renderParts(parts []StringPart) string {
	var sb strings.Builder
	for _, part := range parts {
		if part.Kind == PartExpression {
			sb.WriteString("${" + part.Text + "}")
		} else {
			sb.WriteString(escape(part.Text, '"'))
		}
	}
	return sb.String()
}

func escape(s string, quote byte) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		case '\\':
			sb.WriteString(`\\`)
		case quote:
			sb.WriteByte('\\')
			sb.WriteByte(c)
		default:
			if c == 0 && quote == '\'' {
				sb.WriteString(`\0`)
				continue
			}
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
