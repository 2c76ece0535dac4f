// Package parser implements the Windjammer recursive descent parser.
//
// The parser works on the token slice produced by the lexer. Errors are
// collected rather than returned one by one: a failing rule records a
// ParseError and unwinds to the enclosing statement or item, which then
// skips to a synchronization point and carries on.
package parser

import (
	"fmt"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/lexer"
	"github.com/windjammer-lang/windjammer/internal/position"
)

// Parser represents the recursive descent parser
type Parser struct {
	tokens   []lexer.Token
	docs     map[int]string // doc comment text keyed by the index of the token it precedes
	pos      int
	filename string
	errors   ErrorList

	// Parser state
	noStruct   bool              // struct literals disallowed in control-flow heads
	typeParams []map[string]bool // generic parameter scopes, innermost last
}

// New creates a parser over tokens. Doc comment tokens are removed from the
// stream and remembered for the item or field that follows them.
func New(tokens []lexer.Token, filename string) *Parser {
	p := &Parser{
		filename: filename,
		docs:     make(map[int]string),
		tokens:   make([]lexer.Token, 0, len(tokens)+1),
	}

	var pending []string
	for _, tok := range tokens {
		if tok.Type == lexer.TokenDocComment {
			pending = append(pending, tok.Literal)
			continue
		}
		if len(pending) > 0 {
			p.docs[len(p.tokens)] = strings.Join(pending, "\n")
			pending = nil
		}
		p.tokens = append(p.tokens, tok)
	}
	if len(p.tokens) == 0 || p.tokens[len(p.tokens)-1].Type != lexer.TokenEOF {
		eof := lexer.Token{Type: lexer.TokenEOF}
		if len(p.tokens) > 0 {
			end := p.tokens[len(p.tokens)-1].Span.End
			eof.Span = position.SpanAt(end)
		}
		p.tokens = append(p.tokens, eof)
	}

	return p
}

// ParseSource lexes and parses one compilation unit. The error is a
// *lexer.LexError or an ErrorList.
func ParseSource(filename, src string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(filename, src)
	if err != nil {
		return nil, err
	}
	program, errs := New(tokens, filename).Parse()
	return program, errs.Err()
}

// Parse parses the input and returns an AST. The program is returned even
// when errors occurred; it then holds every item that parsed cleanly.
func (p *Parser) Parse() (*ast.Program, ErrorList) {
	program := p.parseProgram()
	return program, p.errors
}

// ParsePartial is Parse packaged as a PartialResult
func (p *Parser) ParsePartial() PartialResult[*ast.Program] {
	program, errs := p.Parse()
	return PartialResult[*ast.Program]{Value: program, Errors: errs}
}

// ParseExpression parses src as a single expression
func ParseExpression(filename, src string) (ast.Expression, error) {
	tokens, err := lexer.Tokenize(filename, src)
	if err != nil {
		return nil, err
	}
	p := New(tokens, filename)
	var expr ast.Expression
	p.guard(func() {
		expr = p.parseExpr()
		if !p.at(lexer.TokenEOF) {
			p.fail(UnexpectedToken, "", "unexpected %s after expression", describe(p.cur()))
		}
	})
	return expr, p.errors.Err()
}

// ====== Token helpers ======

func (p *Parser) cur() lexer.Token {
	return p.peek(0)
}

// peek returns the token n positions ahead, or EOF past the end
func (p *Parser) peek(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) at(tokenType lexer.TokenType) bool {
	return p.cur().Type == tokenType
}

func (p *Parser) peekIs(n int, tokenType lexer.TokenType) bool {
	return p.peek(n).Type == tokenType
}

// advance consumes the current token and returns it
func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if tok.Type != lexer.TokenEOF {
		p.pos++
	}
	return tok
}

// accept consumes the current token if it has the given type
func (p *Parser) accept(tokenType lexer.TokenType) bool {
	if p.at(tokenType) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of the given type or fails
func (p *Parser) expect(tokenType lexer.TokenType) lexer.Token {
	if p.at(tokenType) {
		return p.advance()
	}
	kind := UnexpectedToken
	suggestion := ""
	if p.at(lexer.TokenEOF) {
		kind = MissingToken
	}
	switch tokenType {
	case lexer.TokenSemicolon:
		suggestion = "Add `;`"
	case lexer.TokenRParen, lexer.TokenRBrace, lexer.TokenRBracket:
		kind = MissingToken
		suggestion = fmt.Sprintf("Add `%s`", tokenType.Text())
	}
	p.fail(kind, suggestion, "expected `%s`, found %s", tokenType.Text(), describe(p.cur()))
	return lexer.Token{}
}

// expectIdent consumes an identifier and returns its text
func (p *Parser) expectIdent(what string) string {
	if p.at(lexer.TokenIdentifier) {
		return p.advance().Literal
	}
	tok := p.cur()
	if tok.Type.IsKeyword() {
		p.fail(NameError, fmt.Sprintf("`%s` is a reserved word; choose another name", tok.Literal),
			"expected %s, found keyword `%s`", what, tok.Literal)
	}
	p.fail(UnexpectedToken, "", "expected %s, found %s", what, describe(tok))
	return ""
}

// spanFrom returns the span from start to the end of the last consumed token
func (p *Parser) spanFrom(start lexer.Token) position.Span {
	end := start.Span.End
	if p.pos > 0 {
		end = p.tokens[p.pos-1].Span.End
	}
	return position.Span{Start: start.Span.Start, End: end}
}

// docAt returns the doc comment attached to the current token
func (p *Parser) docAt() string {
	return p.docs[p.pos]
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenEOF:
		return "end of file"
	case lexer.TokenIdentifier:
		return fmt.Sprintf("identifier `%s`", tok.Literal)
	case lexer.TokenDecorator:
		return fmt.Sprintf("decorator `@%s`", tok.Literal)
	}
	return "`" + lexer.Render(tok) + "`"
}

// ====== Generic scopes ======

func (p *Parser) pushTypeParams(params []ast.TypeParam) {
	scope := make(map[string]bool, len(params))
	for _, tp := range params {
		scope[tp.Name] = true
	}
	p.typeParams = append(p.typeParams, scope)
}

func (p *Parser) popTypeParams() {
	p.typeParams = p.typeParams[:len(p.typeParams)-1]
}

func (p *Parser) isTypeParam(name string) bool {
	for i := len(p.typeParams) - 1; i >= 0; i-- {
		if p.typeParams[i][name] {
			return true
		}
	}
	return false
}

// ====== Grammar Rules ======

// parseProgram parses the entire program
func (p *Parser) parseProgram() *ast.Program {
	start := p.cur()
	program := &ast.Program{}

	for !p.at(lexer.TokenEOF) {
		if p.accept(lexer.TokenSemicolon) {
			continue
		}
		itemStart := p.pos
		ok := p.guard(func() {
			if item := p.parseItem(); item != nil {
				program.Items = append(program.Items, item)
			}
		})
		if !ok {
			p.syncItem(itemStart)
		}
	}

	program.Span = p.spanFrom(start)
	return program
}
