package parser

import (
	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/lexer"
)

var compoundOps = map[lexer.TokenType]string{
	lexer.TokenPlusAssign:    "+",
	lexer.TokenMinusAssign:   "-",
	lexer.TokenStarAssign:    "*",
	lexer.TokenSlashAssign:   "/",
	lexer.TokenPercentAssign: "%",
}

// parseBlock parses { statements } with statement-level error recovery
func (p *Parser) parseBlock() []ast.Statement {
	p.expect(lexer.TokenLBrace)
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()

	stmts := []ast.Statement{}
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		if p.accept(lexer.TokenSemicolon) {
			continue
		}
		start := p.pos
		ok := p.guard(func() {
			stmts = append(stmts, p.parseStatement())
		})
		if !ok {
			p.syncStatement(start)
		}
	}
	p.expect(lexer.TokenRBrace)
	return stmts
}

// parseStatement parses one statement; trailing semicolons are optional
func (p *Parser) parseStatement() ast.Statement {
	start := p.cur()

	switch start.Type {
	case lexer.TokenLet:
		return p.parseLet()
	case lexer.TokenConst:
		p.advance()
		stmt := &ast.ConstStmt{Name: p.expectIdent("constant name")}
		if p.accept(lexer.TokenColon) {
			stmt.Type = p.parseType()
		}
		p.expect(lexer.TokenAssign)
		stmt.Value = p.parseExpr()
		p.accept(lexer.TokenSemicolon)
		stmt.Span = p.spanFrom(start)
		return stmt
	case lexer.TokenStatic:
		p.advance()
		stmt := &ast.StaticStmt{Mutable: p.accept(lexer.TokenMut)}
		stmt.Name = p.expectIdent("static name")
		if p.accept(lexer.TokenColon) {
			stmt.Type = p.parseType()
		}
		p.expect(lexer.TokenAssign)
		stmt.Value = p.parseExpr()
		p.accept(lexer.TokenSemicolon)
		stmt.Span = p.spanFrom(start)
		return stmt
	case lexer.TokenReturn:
		return p.parseReturn()
	case lexer.TokenIf:
		return p.parseIfStatement()
	case lexer.TokenMatch:
		p.advance()
		value := p.parseExprNoStruct()
		arms := p.parseMatchArms()
		return &ast.MatchStmt{Span: p.spanFrom(start), Value: value, Arms: arms}
	case lexer.TokenFor:
		return p.parseFor()
	case lexer.TokenWhile:
		return p.parseWhile()
	case lexer.TokenLoop:
		p.advance()
		body := p.parseBlock()
		return &ast.LoopStmt{Span: p.spanFrom(start), Body: body}
	case lexer.TokenThread:
		if p.peekIs(1, lexer.TokenLBrace) {
			p.advance()
			body := p.parseBlock()
			return &ast.ThreadStmt{Span: p.spanFrom(start), Body: body}
		}
	case lexer.TokenAsync:
		if p.peekIs(1, lexer.TokenLBrace) {
			p.advance()
			body := p.parseBlock()
			return &ast.AsyncStmt{Span: p.spanFrom(start), Body: body}
		}
	case lexer.TokenDefer:
		p.advance()
		inner := p.parseStatement()
		return &ast.DeferStmt{Span: p.spanFrom(start), Statement: inner}
	case lexer.TokenBreak:
		p.advance()
		p.accept(lexer.TokenSemicolon)
		return &ast.BreakStmt{Span: p.spanFrom(start)}
	case lexer.TokenContinue:
		p.advance()
		p.accept(lexer.TokenSemicolon)
		return &ast.ContinueStmt{Span: p.spanFrom(start)}
	case lexer.TokenUse:
		if p.peekIs(1, lexer.TokenLParen) {
			break
		}
		p.advance()
		path, alias := p.parseUsePath()
		p.accept(lexer.TokenSemicolon)
		return &ast.UseStmt{Span: p.spanFrom(start), Path: path, Alias: alias}
	case lexer.TokenFn, lexer.TokenStruct, lexer.TokenEnum, lexer.TokenImpl, lexer.TokenTrait:
		p.fail(InvalidSyntax, "Move the declaration to the top level",
			"%s declarations are not allowed inside a block", describe(start))
	}

	return p.parseExpressionStatement()
}

// parseExpressionStatement parses an expression, assignment or compound assignment
func (p *Parser) parseExpressionStatement() ast.Statement {
	start := p.cur()
	expr := p.parseExpr()

	if p.at(lexer.TokenAssign) {
		p.advance()
		value := p.parseExpr()
		p.accept(lexer.TokenSemicolon)
		return &ast.AssignStmt{Span: p.spanFrom(start), Target: expr, Value: value}
	}
	if op, ok := compoundOps[p.cur().Type]; ok {
		p.advance()
		value := p.parseExpr()
		p.accept(lexer.TokenSemicolon)
		return &ast.AssignStmt{Span: p.spanFrom(start), Target: expr, Value: value, Op: op}
	}

	semicolon := p.accept(lexer.TokenSemicolon)
	return &ast.ExpressionStmt{Span: p.spanFrom(start), Expression: expr, Semicolon: semicolon}
}

// parseLet parses `let [mut] pattern [: Type] [= value] [else { ... }]`
func (p *Parser) parseLet() ast.Statement {
	start := p.expect(lexer.TokenLet)
	stmt := &ast.LetStmt{}

	if p.at(lexer.TokenMut) && p.peekIs(1, lexer.TokenIdentifier) {
		p.advance()
		stmt.Mutable = true
	}
	stmt.Pattern = p.parsePattern()
	if ip, ok := stmt.Pattern.(*ast.IdentifierPattern); ok && ip.Mutable {
		stmt.Mutable = true
		ip.Mutable = false
	}

	if p.accept(lexer.TokenColon) {
		stmt.Type = p.parseType()
	}
	if p.accept(lexer.TokenAssign) {
		stmt.Value = p.parseExpr()
	}

	if p.at(lexer.TokenElse) {
		p.advance()
		stmt.Else = p.parseBlock()
	} else if ast.IsRefutable(stmt.Pattern) {
		p.failAt(start, InvalidSyntax, "Add `else { ... }` that diverges, or use `match`",
			"Refutable pattern in let binding requires `else`")
	}

	p.accept(lexer.TokenSemicolon)
	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseReturn parses `return [value]`
func (p *Parser) parseReturn() *ast.ReturnStmt {
	start := p.expect(lexer.TokenReturn)
	stmt := &ast.ReturnStmt{}
	switch p.cur().Type {
	case lexer.TokenSemicolon, lexer.TokenRBrace, lexer.TokenComma, lexer.TokenEOF:
	default:
		stmt.Value = p.parseExpr()
	}
	p.accept(lexer.TokenSemicolon)
	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseIfStatement parses if / else if / else chains. `if let` becomes a
// match with a wildcard arm.
func (p *Parser) parseIfStatement() ast.Statement {
	start := p.expect(lexer.TokenIf)

	if p.accept(lexer.TokenLet) {
		pattern := p.parsePatternWithOr()
		p.expect(lexer.TokenAssign)
		value := p.parseExprNoStruct()
		then := p.parseBlock()
		elseBody := p.parseElseStatements()
		return &ast.MatchStmt{
			Span:  p.spanFrom(start),
			Value: value,
			Arms:  desugarIfLet(pattern, then, elseBody),
		}
	}

	stmt := &ast.IfStmt{Condition: p.parseExprNoStruct()}
	stmt.Then = p.parseBlock()
	stmt.Else = p.parseElseStatements()
	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseElseStatements parses an optional else branch; `else if` yields a
// single nested statement
func (p *Parser) parseElseStatements() []ast.Statement {
	if !p.accept(lexer.TokenElse) {
		return nil
	}
	if p.at(lexer.TokenIf) {
		return []ast.Statement{p.parseIfStatement()}
	}
	return p.parseBlock()
}

// desugarIfLet builds the arms `pattern => then, _ => else`
func desugarIfLet(pattern ast.Pattern, then, elseBody []ast.Statement) []*ast.MatchArm {
	if elseBody == nil {
		elseBody = []ast.Statement{}
	}
	return []*ast.MatchArm{
		{Pattern: pattern, Body: &ast.BlockExpr{Statements: then}},
		{Pattern: &ast.WildcardPattern{}, Body: &ast.BlockExpr{Statements: elseBody}},
	}
}

// parseFor parses `for pattern in iterable { body }`
func (p *Parser) parseFor() *ast.ForStmt {
	start := p.expect(lexer.TokenFor)
	stmt := &ast.ForStmt{Pattern: p.parsePatternWithOr()}
	p.expect(lexer.TokenIn)
	stmt.Iterable = p.parseExprNoStruct()
	stmt.Body = p.parseBlock()
	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseWhile parses `while cond { body }`; `while let` becomes a loop over
// a match whose fallback arm breaks
func (p *Parser) parseWhile() ast.Statement {
	start := p.expect(lexer.TokenWhile)

	if p.accept(lexer.TokenLet) {
		pattern := p.parsePatternWithOr()
		p.expect(lexer.TokenAssign)
		value := p.parseExprNoStruct()
		body := p.parseBlock()
		span := p.spanFrom(start)
		match := &ast.MatchStmt{
			Span:  span,
			Value: value,
			Arms: []*ast.MatchArm{
				{Pattern: pattern, Body: &ast.BlockExpr{Statements: body}},
				{Pattern: &ast.WildcardPattern{}, Body: &ast.BlockExpr{Statements: []ast.Statement{&ast.BreakStmt{Span: span}}}},
			},
		}
		return &ast.LoopStmt{Span: span, Body: []ast.Statement{match}}
	}

	stmt := &ast.WhileStmt{Condition: p.parseExprNoStruct()}
	stmt.Body = p.parseBlock()
	stmt.Span = p.spanFrom(start)
	return stmt
}

// parseMatchArms parses { pattern [if guard] => body, ... }
func (p *Parser) parseMatchArms() []*ast.MatchArm {
	p.expect(lexer.TokenLBrace)
	saved := p.noStruct
	p.noStruct = false
	defer func() { p.noStruct = saved }()

	var arms []*ast.MatchArm
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		arm := &ast.MatchArm{Pattern: p.parsePatternWithOr()}
		if p.accept(lexer.TokenIf) {
			arm.Guard = p.parseExpr()
		}
		p.expect(lexer.TokenFatArrow)
		arm.Body = p.parseArmBody()
		arms = append(arms, arm)
		p.accept(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBrace)
	return arms
}

// parseArmBody parses a block, a diverging statement, or an expression
func (p *Parser) parseArmBody() ast.Expression {
	start := p.cur()
	switch start.Type {
	case lexer.TokenLBrace:
		if !p.looksLikeMapLiteral() {
			body := p.parseBlock()
			return &ast.BlockExpr{Span: p.spanFrom(start), Statements: body}
		}
	case lexer.TokenReturn, lexer.TokenBreak, lexer.TokenContinue:
		stmt := p.parseStatement()
		return &ast.BlockExpr{Span: p.spanFrom(start), Statements: []ast.Statement{stmt}}
	}
	return p.parseExpr()
}
