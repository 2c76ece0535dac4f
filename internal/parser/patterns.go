package parser

import (
	"unicode"
	"unicode/utf8"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/lexer"
)

// parsePatternWithOr parses p1 | p2 | ...
func (p *Parser) parsePatternWithOr() ast.Pattern {
	first := p.parsePattern()
	if !p.at(lexer.TokenPipe) {
		return first
	}
	alternatives := []ast.Pattern{first}
	for p.accept(lexer.TokenPipe) {
		alternatives = append(alternatives, p.parsePattern())
	}
	return &ast.OrPattern{Alternatives: alternatives}
}

// parsePattern parses a single pattern
func (p *Parser) parsePattern() ast.Pattern {
	switch p.cur().Type {
	case lexer.TokenUnderscore:
		p.advance()
		return &ast.WildcardPattern{}

	case lexer.TokenAmpersand:
		p.advance()
		p.accept(lexer.TokenMut)
		return &ast.ReferencePattern{Inner: p.parsePattern()}

	case lexer.TokenMut:
		p.advance()
		return &ast.IdentifierPattern{Name: p.expectIdent("binding name"), Mutable: true}

	case lexer.TokenLParen:
		p.advance()
		tuple := &ast.TuplePattern{}
		for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
			tuple.Elems = append(tuple.Elems, p.parsePatternWithOr())
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
		p.expect(lexer.TokenRParen)
		return tuple

	case lexer.TokenInteger, lexer.TokenFloat, lexer.TokenString, lexer.TokenChar, lexer.TokenBool:
		return &ast.LiteralPattern{Value: p.parseLiteral()}

	case lexer.TokenMinus:
		if next := p.peek(1).Type; next == lexer.TokenInteger || next == lexer.TokenFloat {
			minus := p.advance()
			lit := p.parseLiteral()
			lit.Value = "-" + lit.Value
			lit.Span = p.spanFrom(minus)
			return &ast.LiteralPattern{Value: lit}
		}

	case lexer.TokenIdentifier:
		return p.parseNamedPattern()
	}

	p.fail(UnexpectedToken, "", "expected pattern, found %s", describe(p.cur()))
	return nil
}

// parseNamedPattern parses bindings and enum variants, qualified with `.`
// or `::`: x, None, Some(v), Color::Red, Shape.Circle { r, .. }
func (p *Parser) parseNamedPattern() ast.Pattern {
	name := p.advance().Literal
	qualified := false
	for (p.at(lexer.TokenDoubleColon) || p.at(lexer.TokenDot)) && p.peekIs(1, lexer.TokenIdentifier) {
		p.advance()
		name += "::" + p.advance().Literal
		qualified = true
	}

	switch {
	case p.at(lexer.TokenLParen):
		return &ast.EnumVariantPattern{Name: name, Binding: p.parseTupleBinding()}
	case p.at(lexer.TokenLBrace) && startsUpper(name):
		return &ast.EnumVariantPattern{Name: name, Binding: p.parseStructBinding()}
	case qualified || name == "None":
		return &ast.EnumVariantPattern{Name: name}
	}
	return &ast.IdentifierPattern{Name: name}
}

// parseTupleBinding parses the (...) payload of a variant pattern
func (p *Parser) parseTupleBinding() ast.VariantBinding {
	p.expect(lexer.TokenLParen)
	var elems []ast.Pattern
	for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
		elems = append(elems, p.parsePatternWithOr())
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRParen)

	if len(elems) == 1 {
		switch e := elems[0].(type) {
		case *ast.WildcardPattern:
			return ast.VariantBinding{Kind: ast.BindWildcard}
		case *ast.IdentifierPattern:
			return ast.VariantBinding{Kind: ast.BindSingle, Name: e.Name, Mutable: e.Mutable}
		}
	}
	if len(elems) == 0 {
		return ast.VariantBinding{Kind: ast.BindTuple}
	}
	return ast.VariantBinding{Kind: ast.BindTuple, Patterns: elems}
}

// parseStructBinding parses { a, b: pat, mut c, .. }
func (p *Parser) parseStructBinding() ast.VariantBinding {
	p.expect(lexer.TokenLBrace)
	binding := ast.VariantBinding{Kind: ast.BindStruct}
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		if p.accept(lexer.TokenDotDot) {
			binding.Rest = true
			break
		}
		mutable := p.accept(lexer.TokenMut)
		field := p.fieldName()
		var pat ast.Pattern = &ast.IdentifierPattern{Name: field, Mutable: mutable}
		if !mutable && p.accept(lexer.TokenColon) {
			pat = p.parsePatternWithOr()
		}
		binding.Fields = append(binding.Fields, ast.FieldPattern{Name: field, Pattern: pat})
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRBrace)
	return binding
}

func startsUpper(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
