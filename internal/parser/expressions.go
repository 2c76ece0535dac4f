package parser

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/lexer"
	"github.com/windjammer-lang/windjammer/internal/position"
)

// Operator precedence levels, lowest first
const (
	precPipe = iota + 1
	precOr
	precAnd
	precEquality
	precCompare
	precSum
	precProduct
)

var binaryPrecedence = map[lexer.TokenType]int{
	lexer.TokenPipeOp:  precPipe,
	lexer.TokenOr:      precOr,
	lexer.TokenAnd:     precAnd,
	lexer.TokenEq:      precEquality,
	lexer.TokenNe:      precEquality,
	lexer.TokenLt:      precCompare,
	lexer.TokenLe:      precCompare,
	lexer.TokenGt:      precCompare,
	lexer.TokenGe:      precCompare,
	lexer.TokenPlus:    precSum,
	lexer.TokenMinus:   precSum,
	lexer.TokenStar:    precProduct,
	lexer.TokenSlash:   precProduct,
	lexer.TokenPercent: precProduct,
}

// parseExpr parses a full expression: ranges, channel sends and binary chains
func (p *Parser) parseExpr() ast.Expression {
	start := p.cur()

	if p.at(lexer.TokenDotDot) || p.at(lexer.TokenDotDotEq) {
		inclusive := p.advance().Type == lexer.TokenDotDotEq
		return &ast.RangeExpr{Span: p.spanFrom(start), End: p.parseRangeEnd(), Inclusive: inclusive}
	}

	left := p.parseBinary(precPipe)

	if p.at(lexer.TokenDotDot) || p.at(lexer.TokenDotDotEq) {
		inclusive := p.advance().Type == lexer.TokenDotDotEq
		end := p.parseRangeEnd()
		return &ast.RangeExpr{Span: p.spanFrom(start), Start: left, End: end, Inclusive: inclusive}
	}

	if p.accept(lexer.TokenLeftArrow) {
		value := p.parseExpr()
		return &ast.ChannelSendExpr{Span: p.spanFrom(start), Channel: left, Value: value}
	}

	return left
}

// parseExprNoStruct parses an expression in a control-flow head, where
// `Name {` opens the body rather than a struct literal
func (p *Parser) parseExprNoStruct() ast.Expression {
	saved := p.noStruct
	p.noStruct = true
	defer func() { p.noStruct = saved }()
	return p.parseExpr()
}

// withStructs parses fn with struct literals allowed again, as inside brackets
func (p *Parser) withStructs(fn func()) {
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()
	fn()
}

func (p *Parser) parseRangeEnd() ast.Expression {
	switch p.cur().Type {
	case lexer.TokenRBracket, lexer.TokenRParen, lexer.TokenRBrace,
		lexer.TokenComma, lexer.TokenSemicolon, lexer.TokenEOF:
		return nil
	case lexer.TokenLBrace:
		if p.noStruct {
			return nil
		}
	}
	return p.parseBinary(precPipe)
}

// parseBinary parses a left-associative operator chain by precedence climbing
func (p *Parser) parseBinary(minPrec int) ast.Expression {
	start := p.cur()
	left := p.parseCast()

	for {
		opTok := p.cur()
		prec, ok := binaryPrecedence[opTok.Type]
		if !ok || prec < minPrec {
			return left
		}
		p.advance()
		right := p.parseBinary(prec + 1)

		if opTok.Type == lexer.TokenPipeOp {
			left = pipeInto(left, right, p.spanFrom(start))
			continue
		}
		left = &ast.BinaryExpr{Span: p.spanFrom(start), Left: left, Op: opTok.Type.Text(), Right: right}
	}
}

// pipeInto rewrites `x |> f` to f(x) and `x |> f(a)` to f(x, a)
func pipeInto(value, fn ast.Expression, span position.Span) ast.Expression {
	if call, ok := fn.(*ast.CallExpr); ok {
		args := append([]*ast.Argument{{Value: value}}, call.Args...)
		return &ast.CallExpr{Span: span, Function: call.Function, Args: args}
	}
	return &ast.CallExpr{Span: span, Function: fn, Args: []*ast.Argument{{Value: value}}}
}

// parseCast parses unary expressions followed by any number of `as T`
func (p *Parser) parseCast() ast.Expression {
	start := p.cur()
	expr := p.parseUnary()
	for p.accept(lexer.TokenAs) {
		typ := p.parseTypeIn(true)
		expr = &ast.CastExpr{Span: p.spanFrom(start), Expr: expr, Type: typ}
	}
	return expr
}

// parseUnary parses prefix operators
func (p *Parser) parseUnary() ast.Expression {
	start := p.cur()

	var op ast.UnaryOp
	switch start.Type {
	case lexer.TokenBang:
		op = ast.UnaryNot
	case lexer.TokenMinus:
		op = ast.UnaryNeg
	case lexer.TokenStar:
		op = ast.UnaryDeref
	case lexer.TokenAmpersand:
		p.advance()
		if p.accept(lexer.TokenMut) {
			operand := p.parseUnary()
			return &ast.UnaryExpr{Span: p.spanFrom(start), Op: ast.UnaryMutRef, Operand: operand}
		}
		operand := p.parseUnary()
		return &ast.UnaryExpr{Span: p.spanFrom(start), Op: ast.UnaryRef, Operand: operand}
	case lexer.TokenAnd:
		// &&x in operand position is a reference to a reference
		p.advance()
		operand := p.parseUnary()
		inner := &ast.UnaryExpr{Span: p.spanFrom(start), Op: ast.UnaryRef, Operand: operand}
		return &ast.UnaryExpr{Span: p.spanFrom(start), Op: ast.UnaryRef, Operand: inner}
	case lexer.TokenLeftArrow:
		p.advance()
		channel := p.parseUnary()
		return &ast.ChannelRecvExpr{Span: p.spanFrom(start), Channel: channel}
	default:
		return p.parsePostfix(p.parsePrimary())
	}

	p.advance()
	operand := p.parseUnary()
	return &ast.UnaryExpr{Span: p.spanFrom(start), Op: op, Operand: operand}
}

// parsePostfix parses calls, field and method access, indexing, `?` and `.await`
func (p *Parser) parsePostfix(expr ast.Expression) ast.Expression {
	start := p.tokenAt(expr)

	for {
		switch p.cur().Type {
		case lexer.TokenDot:
			p.advance()
			if p.accept(lexer.TokenAwait) {
				expr = &ast.AwaitExpr{Span: p.spanFrom(start), Expr: expr}
				continue
			}
			var name string
			if p.at(lexer.TokenInteger) {
				name = p.advance().Literal
			} else {
				name = p.fieldName()
			}
			var typeArgs []ast.Type
			if p.at(lexer.TokenDoubleColon) && p.peekIs(1, lexer.TokenLt) {
				p.advance()
				typeArgs = p.parseTypeArgs()
				if !p.at(lexer.TokenLParen) {
					p.fail(InvalidSyntax, "Add the call arguments", "type arguments on `%s` require a call", name)
				}
			}
			if p.at(lexer.TokenLParen) {
				args := p.parseArguments()
				expr = &ast.MethodCallExpr{Span: p.spanFrom(start), Object: expr, Method: name, TypeArgs: typeArgs, Args: args}
				continue
			}
			expr = &ast.FieldAccessExpr{Span: p.spanFrom(start), Object: expr, Field: name}

		case lexer.TokenDoubleColon:
			if !p.peekIs(1, lexer.TokenLt) {
				return expr
			}
			p.advance()
			typeArgs := p.parseTypeArgs()
			if p.at(lexer.TokenDoubleColon) && isPathSegment(p.peek(1).Type) {
				path := &ast.GenericPathExpr{Base: expr, TypeArgs: typeArgs}
				for p.at(lexer.TokenDoubleColon) && isPathSegment(p.peek(1).Type) {
					p.advance()
					path.Rest = append(path.Rest, p.advance().Literal)
				}
				path.Span = p.spanFrom(start)
				expr = path
				continue
			}
			args := p.parseArguments()
			expr = &ast.MethodCallExpr{Span: p.spanFrom(start), Object: expr, TypeArgs: typeArgs, Args: args}

		case lexer.TokenLParen:
			args := p.parseArguments()
			expr = &ast.CallExpr{Span: p.spanFrom(start), Function: expr, Args: args}

		case lexer.TokenLBracket:
			expr = p.parseIndexOrSlice(expr, start)

		case lexer.TokenQuestion:
			p.advance()
			expr = &ast.TryExpr{Span: p.spanFrom(start), Expr: expr}

		default:
			return expr
		}
	}
}

// tokenAt recovers the start token of an already parsed expression so that
// postfix spans cover the whole chain
func (p *Parser) tokenAt(expr ast.Expression) lexer.Token {
	span := expr.GetSpan()
	return lexer.Token{Span: position.SpanAt(span.Start)}
}

// parseIndexOrSlice parses obj[i], obj[a..b], obj[a..], obj[..b] and obj[a..=b].
// Slices become obj.slice(start, end).
func (p *Parser) parseIndexOrSlice(object ast.Expression, start lexer.Token) ast.Expression {
	p.expect(lexer.TokenLBracket)

	var first ast.Expression
	p.withStructs(func() {
		if !p.at(lexer.TokenDotDot) && !p.at(lexer.TokenDotDotEq) {
			first = p.parseBinary(precPipe)
		}
	})

	if !p.at(lexer.TokenDotDot) && !p.at(lexer.TokenDotDotEq) {
		p.expect(lexer.TokenRBracket)
		return &ast.IndexExpr{Span: p.spanFrom(start), Object: object, Index: first}
	}

	rangeTok := p.advance()
	var end ast.Expression
	if !p.at(lexer.TokenRBracket) {
		p.withStructs(func() { end = p.parseBinary(precPipe) })
	}
	p.expect(lexer.TokenRBracket)

	if first == nil {
		first = &ast.Literal{Span: rangeTok.Span, Kind: ast.LitInt, Value: "0"}
	}
	switch {
	case end == nil:
		end = &ast.MethodCallExpr{Span: p.spanFrom(start), Object: object, Method: "len"}
	case rangeTok.Type == lexer.TokenDotDotEq:
		one := &ast.Literal{Span: rangeTok.Span, Kind: ast.LitInt, Value: "1"}
		end = &ast.BinaryExpr{Span: end.GetSpan(), Left: end, Op: "+", Right: one}
	}

	return &ast.MethodCallExpr{
		Span:   p.spanFrom(start),
		Object: object,
		Method: "slice",
		Args:   []*ast.Argument{{Value: first}, {Value: end}},
	}
}

// parseArguments parses (a, label: b, ...)
func (p *Parser) parseArguments() []*ast.Argument {
	p.expect(lexer.TokenLParen)
	args := []*ast.Argument{}
	p.withStructs(func() {
		for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
			arg := &ast.Argument{}
			if p.at(lexer.TokenIdentifier) && p.peekIs(1, lexer.TokenColon) {
				arg.Label = p.advance().Literal
				p.advance()
			}
			arg.Value = p.parseExpr()
			args = append(args, arg)
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
	})
	p.expect(lexer.TokenRParen)
	return args
}

// parseLiteral converts a literal token
func (p *Parser) parseLiteral() *ast.Literal {
	tok := p.cur()
	lit := &ast.Literal{Span: tok.Span, Value: tok.Literal}
	switch tok.Type {
	case lexer.TokenInteger:
		lit.Kind = ast.LitInt
	case lexer.TokenFloat:
		lit.Kind = ast.LitFloat
	case lexer.TokenString:
		lit.Kind = ast.LitString
	case lexer.TokenChar:
		lit.Kind = ast.LitChar
	case lexer.TokenBool:
		lit.Kind = ast.LitBool
	default:
		p.fail(UnexpectedToken, "", "expected literal, found %s", describe(tok))
	}
	p.advance()
	return lit
}

// parsePrimary parses literals, names, grouping and the expression forms of
// control flow
func (p *Parser) parsePrimary() ast.Expression {
	start := p.cur()

	switch start.Type {
	case lexer.TokenInteger, lexer.TokenFloat, lexer.TokenString, lexer.TokenChar, lexer.TokenBool:
		return p.parseLiteral()

	case lexer.TokenInterpolatedString:
		return p.parseInterpolation()

	case lexer.TokenIdentifier:
		return p.parseNameExpr()

	case lexer.TokenSelf:
		p.advance()
		return &ast.Identifier{Span: start.Span, Name: "self"}

	case lexer.TokenUse:
		// use(x) is an ordinary call
		if p.peekIs(1, lexer.TokenLParen) {
			p.advance()
			return &ast.Identifier{Span: start.Span, Name: start.Literal}
		}

	case lexer.TokenThread, lexer.TokenAsync:
		if p.peekIs(1, lexer.TokenDoubleColon) {
			return p.parseNameExpr()
		}
		if p.peekIs(1, lexer.TokenLBrace) {
			stmt := p.parseStatement()
			return &ast.BlockExpr{Span: p.spanFrom(start), Statements: []ast.Statement{stmt}}
		}

	case lexer.TokenLParen:
		return p.parseParenthesized()

	case lexer.TokenLBracket:
		return p.parseArrayLiteral()

	case lexer.TokenLBrace:
		if p.looksLikeMapLiteral() {
			return p.parseMapLiteral()
		}
		body := p.parseBlock()
		return &ast.BlockExpr{Span: p.spanFrom(start), Statements: body}

	case lexer.TokenPipe, lexer.TokenOr:
		return p.parseClosure()

	case lexer.TokenIf:
		return p.parseIfExpr()

	case lexer.TokenMatch:
		p.advance()
		value := p.parseExprNoStruct()
		arms := p.parseMatchArms()
		return &ast.MatchExpr{Span: p.spanFrom(start), Value: value, Arms: arms}

	case lexer.TokenLoop, lexer.TokenWhile, lexer.TokenFor,
		lexer.TokenReturn, lexer.TokenBreak, lexer.TokenContinue:
		stmt := p.parseStatement()
		return &ast.BlockExpr{Span: p.spanFrom(start), Statements: []ast.Statement{stmt}}

	case lexer.TokenUnsafe:
		p.advance()
		body := p.parseBlock()
		return &ast.BlockExpr{Span: p.spanFrom(start), Statements: body, Unsafe: true}
	}

	if start.Type.IsKeyword() {
		p.fail(UnexpectedToken, "", "unexpected keyword `%s` in expression", start.Literal)
	}
	p.fail(UnexpectedToken, "", "expected expression, found %s", describe(start))
	return nil
}

// parseNameExpr parses a possibly qualified name, then a macro invocation or
// struct literal if one follows
func (p *Parser) parseNameExpr() ast.Expression {
	start := p.advance()
	name := start.Literal

	for p.at(lexer.TokenDoubleColon) && isPathSegment(p.peek(1).Type) {
		p.advance()
		name += "::" + p.advance().Literal
	}

	if p.at(lexer.TokenBang) {
		switch p.peek(1).Type {
		case lexer.TokenLParen, lexer.TokenLBracket, lexer.TokenLBrace:
			return p.parseMacro(start, name)
		}
	}

	if !p.noStruct && p.at(lexer.TokenLBrace) && startsUpper(lastSegment(name)) && p.looksLikeStructBody() {
		return p.parseStructLiteral(start, name)
	}

	return &ast.Identifier{Span: p.spanFrom(start), Name: name}
}

func isPathSegment(tt lexer.TokenType) bool {
	switch tt {
	case lexer.TokenIdentifier, lexer.TokenThread, lexer.TokenAsync, lexer.TokenTypeKw, lexer.TokenSelf:
		return true
	}
	return false
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "::"); i >= 0 {
		return path[i+2:]
	}
	return path
}

// looksLikeStructBody reports whether the `{` at the cursor opens field
// initializers: `{}`, `{ x: ..`, `{ x, ..` or `{ x }`
func (p *Parser) looksLikeStructBody() bool {
	switch p.peek(1).Type {
	case lexer.TokenRBrace:
		return true
	case lexer.TokenIdentifier:
		switch p.peek(2).Type {
		case lexer.TokenColon, lexer.TokenComma, lexer.TokenRBrace:
			return true
		}
	}
	return false
}

// looksLikeMapLiteral reports whether the `{` at the cursor opens `{ key: value }`
func (p *Parser) looksLikeMapLiteral() bool {
	switch p.peek(1).Type {
	case lexer.TokenString, lexer.TokenInteger, lexer.TokenChar, lexer.TokenBool, lexer.TokenIdentifier:
		return p.peekIs(2, lexer.TokenColon)
	}
	return false
}

// parseStructLiteral parses Name { a: 1, b } with shorthand fields
func (p *Parser) parseStructLiteral(start lexer.Token, name string) ast.Expression {
	p.expect(lexer.TokenLBrace)
	lit := &ast.StructLiteral{Name: name}
	p.withStructs(func() {
		for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
			fieldTok := p.cur()
			field := p.fieldName()
			var value ast.Expression
			if p.accept(lexer.TokenColon) {
				value = p.parseExpr()
			} else {
				value = &ast.Identifier{Span: fieldTok.Span, Name: field}
			}
			lit.Fields = append(lit.Fields, &ast.FieldInit{Name: field, Value: value})
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
	})
	p.expect(lexer.TokenRBrace)
	lit.Span = p.spanFrom(start)
	return lit
}

// parseMapLiteral parses { key: value, ... }
func (p *Parser) parseMapLiteral() ast.Expression {
	start := p.expect(lexer.TokenLBrace)
	lit := &ast.MapLiteral{}
	p.withStructs(func() {
		for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
			key := p.parseExpr()
			p.expect(lexer.TokenColon)
			value := p.parseExpr()
			lit.Entries = append(lit.Entries, &ast.MapEntry{Key: key, Value: value})
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
	})
	p.expect(lexer.TokenRBrace)
	lit.Span = p.spanFrom(start)
	return lit
}

// parseMacro parses name!(...), name![...] and name!{...}. vec![v; n] sets Repeat.
func (p *Parser) parseMacro(start lexer.Token, name string) ast.Expression {
	p.expect(lexer.TokenBang)
	open := p.advance()

	closer := lexer.TokenRParen
	delim := ast.DelimParens
	switch open.Type {
	case lexer.TokenLBracket:
		closer, delim = lexer.TokenRBracket, ast.DelimBrackets
	case lexer.TokenLBrace:
		closer, delim = lexer.TokenRBrace, ast.DelimBraces
	}

	macro := &ast.MacroInvocation{Name: name, Delimiter: delim}
	p.withStructs(func() {
		for !p.at(closer) && !p.at(lexer.TokenEOF) {
			macro.Args = append(macro.Args, p.parseExpr())
			if len(macro.Args) == 1 && p.accept(lexer.TokenSemicolon) {
				macro.Repeat = true
				macro.Args = append(macro.Args, p.parseExpr())
				break
			}
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
	})
	p.expect(closer)
	macro.Span = p.spanFrom(start)
	return macro
}

// parseParenthesized parses (), (e), and (a, b, ...)
func (p *Parser) parseParenthesized() ast.Expression {
	start := p.expect(lexer.TokenLParen)
	var elems []ast.Expression
	trailingComma := false
	p.withStructs(func() {
		for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
			elems = append(elems, p.parseExpr())
			trailingComma = p.accept(lexer.TokenComma)
			if !trailingComma {
				break
			}
		}
	})
	p.expect(lexer.TokenRParen)

	if len(elems) == 1 && !trailingComma {
		return elems[0]
	}
	return &ast.TupleLiteral{Span: p.spanFrom(start), Elements: elems}
}

// parseArrayLiteral parses [a, b, c] and [value; count]
func (p *Parser) parseArrayLiteral() ast.Expression {
	start := p.expect(lexer.TokenLBracket)
	var elems []ast.Expression
	repeat := false
	p.withStructs(func() {
		for !p.at(lexer.TokenRBracket) && !p.at(lexer.TokenEOF) {
			elems = append(elems, p.parseExpr())
			if len(elems) == 1 && p.accept(lexer.TokenSemicolon) {
				repeat = true
				elems = append(elems, p.parseExpr())
				break
			}
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
	})
	p.expect(lexer.TokenRBracket)

	if repeat {
		return &ast.MacroInvocation{
			Span:      p.spanFrom(start),
			Name:      "vec",
			Args:      elems,
			Delimiter: ast.DelimBrackets,
			Repeat:    true,
		}
	}
	return &ast.ArrayLiteral{Span: p.spanFrom(start), Elements: elems}
}

// parseClosure parses |a, b| body and || body
func (p *Parser) parseClosure() ast.Expression {
	start := p.cur()
	params := []string{}

	if !p.accept(lexer.TokenOr) {
		p.expect(lexer.TokenPipe)
		for !p.at(lexer.TokenPipe) && !p.at(lexer.TokenEOF) {
			params = append(params, p.parseClosureParam())
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
		p.expect(lexer.TokenPipe)
	}

	var body ast.Expression
	p.withStructs(func() { body = p.parseExpr() })
	return &ast.ClosureExpr{Span: p.spanFrom(start), Params: params, Body: body}
}

// parseClosureParam parses one closure parameter pattern with an optional
// type annotation and returns its source text
func (p *Parser) parseClosureParam() string {
	pattern := p.parsePattern()
	text := pattern.String()
	if ip, ok := pattern.(*ast.IdentifierPattern); ok && ip.Mutable {
		text = "mut " + ip.Name
	}
	if p.accept(lexer.TokenColon) {
		text += ": " + p.parseType().String()
	}
	return text
}

// parseIfExpr parses if/else in expression position. `if let` becomes a match.
func (p *Parser) parseIfExpr() ast.Expression {
	start := p.expect(lexer.TokenIf)

	if p.accept(lexer.TokenLet) {
		pattern := p.parsePatternWithOr()
		p.expect(lexer.TokenAssign)
		value := p.parseExprNoStruct()
		then := p.parseBlock()
		var elseBody []ast.Statement
		if p.accept(lexer.TokenElse) {
			elseBody = p.parseElseBranch()
		}
		return &ast.MatchExpr{
			Span:  p.spanFrom(start),
			Value: value,
			Arms:  desugarIfLet(pattern, then, elseBody),
		}
	}

	expr := &ast.IfExpr{Condition: p.parseExprNoStruct()}
	thenStart := p.cur()
	then := p.parseBlock()
	expr.Then = &ast.BlockExpr{Span: p.spanFrom(thenStart), Statements: then}

	if p.accept(lexer.TokenElse) {
		if p.at(lexer.TokenIf) {
			expr.Else = p.parseIfExpr()
		} else {
			elseStart := p.cur()
			body := p.parseBlock()
			expr.Else = &ast.BlockExpr{Span: p.spanFrom(elseStart), Statements: body}
		}
	}
	expr.Span = p.spanFrom(start)
	return expr
}

// parseElseBranch parses the body after `else` as statements
func (p *Parser) parseElseBranch() []ast.Statement {
	if p.at(lexer.TokenIf) {
		start := p.cur()
		nested := p.parseIfExpr()
		return []ast.Statement{&ast.ExpressionStmt{Span: p.spanFrom(start), Expression: nested}}
	}
	return p.parseBlock()
}

// parseInterpolation turns "Hello, ${name}!" into format!("Hello, {}!", name)
func (p *Parser) parseInterpolation() ast.Expression {
	tok := p.advance()

	var format strings.Builder
	args := []ast.Expression{}
	for _, part := range tok.Parts {
		if part.Kind == lexer.PartLiteral {
			text := strings.ReplaceAll(part.Text, "{", "{{")
			format.WriteString(strings.ReplaceAll(text, "}", "}}"))
			continue
		}
		expr, err := ParseExpression(p.filename, part.Text)
		if err != nil {
			p.failAt(tok, InvalidSyntax, "Check the expression inside `${...}`",
				"invalid expression in string interpolation: "+err.Error())
		}
		format.WriteString("{}")
		args = append(args, expr)
	}

	formatLit := &ast.Literal{Span: tok.Span, Kind: ast.LitString, Value: format.String()}
	return &ast.MacroInvocation{
		Span:      tok.Span,
		Name:      "format",
		Args:      append([]ast.Expression{formatLit}, args...),
		Delimiter: ast.DelimParens,
	}
}
