package parser

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/lexer"
)

// itemPrefix gathers the modifiers that may precede an item
type itemPrefix struct {
	start      lexer.Token
	doc        string
	isPub      bool
	isExtern   bool
	isAsync    bool
	decorators []*ast.Decorator
}

func (p *Parser) parseItemPrefix() itemPrefix {
	prefix := itemPrefix{start: p.cur(), doc: p.docAt()}
	for {
		if prefix.doc == "" {
			prefix.doc = p.docAt()
		}
		switch p.cur().Type {
		case lexer.TokenDecorator:
			prefix.decorators = append(prefix.decorators, p.parseDecorator())
		case lexer.TokenPub:
			p.advance()
			prefix.isPub = true
			if p.at(lexer.TokenLParen) {
				// pub(crate) and friends
				for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
					p.advance()
				}
				p.expect(lexer.TokenRParen)
			}
		case lexer.TokenExtern:
			p.advance()
			prefix.isExtern = true
		case lexer.TokenAsync:
			if !p.peekIs(1, lexer.TokenFn) {
				return prefix
			}
			p.advance()
			prefix.isAsync = true
		default:
			return prefix
		}
	}
}

// parseItem parses a top-level declaration
func (p *Parser) parseItem() ast.Item {
	prefix := p.parseItemPrefix()

	switch p.cur().Type {
	case lexer.TokenUse:
		p.advance()
		path, alias := p.parseUsePath()
		p.accept(lexer.TokenSemicolon)
		return &ast.UseDecl{Span: p.spanFrom(prefix.start), Path: path, Alias: alias, IsPub: prefix.isPub}
	case lexer.TokenMod:
		return p.parseMod(prefix)
	case lexer.TokenFn:
		fn := p.parseFunction(prefix)
		return fn
	case lexer.TokenStruct:
		return p.parseStruct(prefix)
	case lexer.TokenEnum:
		return p.parseEnum(prefix)
	case lexer.TokenTrait:
		return p.parseTrait(prefix)
	case lexer.TokenImpl:
		return p.parseImpl(prefix)
	case lexer.TokenConst:
		return p.parseConstItem(prefix)
	case lexer.TokenStatic:
		return p.parseStaticItem(prefix)
	case lexer.TokenBound:
		return p.parseBoundAlias(prefix)
	case lexer.TokenIdentifier:
		p.fail(UnexpectedToken, keywordSuggestion(p.cur().Literal),
			"expected item, found %s", describe(p.cur()))
	}
	p.fail(UnexpectedToken, "", "expected item, found %s", describe(p.cur()))
	return nil
}

// parseDecorator parses @name or @name(args)
func (p *Parser) parseDecorator() *ast.Decorator {
	tok := p.expect(lexer.TokenDecorator)
	dec := &ast.Decorator{Name: tok.Literal}

	if p.accept(lexer.TokenLParen) {
		saved := p.noStruct
		p.noStruct = false
		for !p.at(lexer.TokenRParen) {
			arg := ast.DecoratorArg{}
			if p.at(lexer.TokenIdentifier) && p.peekIs(1, lexer.TokenColon) {
				arg.Key = p.advance().Literal
				p.advance()
			}
			arg.Value = p.parseExpr()
			dec.Arguments = append(dec.Arguments, arg)
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
		p.noStruct = saved
		p.expect(lexer.TokenRParen)
	}

	dec.Span = p.spanFrom(tok)
	return dec
}

// parseUsePath parses the path after `use`: std::fs, ./util::Helper,
// module::{A, B} and an optional alias
func (p *Parser) parseUsePath() ([]string, string) {
	var segments []string
	relative := ""

	switch {
	case p.at(lexer.TokenDot) && p.peekIs(1, lexer.TokenSlash):
		p.advance()
		p.advance()
		relative = "./"
	case p.at(lexer.TokenDotDot) && p.peekIs(1, lexer.TokenSlash):
		p.advance()
		p.advance()
		relative = "../"
	}

	if relative != "" {
		// directories are separated by / up to the first ::
		dirs := []string{p.usePathSegment()}
		for p.accept(lexer.TokenSlash) {
			dirs = append(dirs, p.usePathSegment())
		}
		segments = append(segments, relative+strings.Join(dirs, "/"))
		if !p.accept(lexer.TokenDoubleColon) {
			return segments, p.parseUseAlias()
		}
	}

	for {
		switch {
		case p.at(lexer.TokenLBrace):
			segments = append(segments, p.parseUseGroup())
			return segments, p.parseUseAlias()
		case p.at(lexer.TokenStar):
			p.advance()
			segments = append(segments, "*")
			return segments, p.parseUseAlias()
		}

		segments = append(segments, p.usePathSegment())

		switch p.cur().Type {
		case lexer.TokenDoubleColon:
			p.advance()
		case lexer.TokenDot, lexer.TokenSlash:
			p.fail(InvalidSyntax, "Use `::` for module paths, not `"+p.cur().Type.Text()+"`",
				"invalid module separator %s in use path", describe(p.cur()))
		default:
			return segments, p.parseUseAlias()
		}
	}
}

// usePathSegment accepts identifiers and the keywords that double as path segments
func (p *Parser) usePathSegment() string {
	switch p.cur().Type {
	case lexer.TokenSelf, lexer.TokenThread, lexer.TokenAsync, lexer.TokenTypeKw:
		return p.advance().Literal
	}
	return p.expectIdent("module path segment")
}

// parseUseGroup parses {A, B as C, ...} as one terminal segment
func (p *Parser) parseUseGroup() string {
	p.expect(lexer.TokenLBrace)
	var names []string
	for !p.at(lexer.TokenRBrace) {
		name := p.usePathSegment()
		for p.accept(lexer.TokenDoubleColon) {
			name += "::" + p.usePathSegment()
		}
		if p.accept(lexer.TokenAs) {
			name += " as " + p.expectIdent("alias")
		}
		names = append(names, name)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRBrace)
	return "{" + strings.Join(names, ", ") + "}"
}

func (p *Parser) parseUseAlias() string {
	if p.accept(lexer.TokenAs) {
		return p.expectIdent("alias after `as`")
	}
	return ""
}

// parseMod parses `mod name { items }` or `mod name`
func (p *Parser) parseMod(prefix itemPrefix) *ast.ModDecl {
	p.expect(lexer.TokenMod)
	mod := &ast.ModDecl{Name: p.expectIdent("module name"), IsPublic: prefix.isPub}

	if !p.accept(lexer.TokenLBrace) {
		p.accept(lexer.TokenSemicolon)
		mod.IsExternal = true
		mod.Span = p.spanFrom(prefix.start)
		return mod
	}

	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		if p.accept(lexer.TokenSemicolon) {
			continue
		}
		itemStart := p.pos
		ok := p.guard(func() {
			if item := p.parseItem(); item != nil {
				mod.Items = append(mod.Items, item)
			}
		})
		if !ok {
			p.syncItem(itemStart)
		}
	}
	p.expect(lexer.TokenRBrace)

	mod.Span = p.spanFrom(prefix.start)
	return mod
}

// parseFunction parses a function declaration. A missing body is allowed
// for extern functions and trait method signatures.
func (p *Parser) parseFunction(prefix itemPrefix) *ast.FunctionDecl {
	p.expect(lexer.TokenFn)

	fn := &ast.FunctionDecl{
		Name:       p.expectIdent("function name"),
		IsPub:      prefix.isPub,
		IsExtern:   prefix.isExtern,
		IsAsync:    prefix.isAsync || ast.FindDecorator(prefix.decorators, "async") != nil,
		Decorators: prefix.decorators,
		DocComment: prefix.doc,
	}

	fn.TypeParams = p.parseTypeParams()
	p.pushTypeParams(fn.TypeParams)
	defer p.popTypeParams()

	p.expect(lexer.TokenLParen)
	fn.Parameters = p.parseParameters()
	p.expect(lexer.TokenRParen)

	if p.accept(lexer.TokenArrow) {
		fn.ReturnType = p.parseType()
	}
	fn.WhereClause = p.parseWhereClause()

	if p.at(lexer.TokenLBrace) {
		fn.Body = p.parseBlock()
		fn.HasBody = true
	} else {
		p.accept(lexer.TokenSemicolon)
	}

	fn.Span = p.spanFrom(prefix.start)
	return fn
}

// parseParameters parses the parameter list between parentheses
func (p *Parser) parseParameters() []*ast.Parameter {
	var params []*ast.Parameter

	for !p.at(lexer.TokenRParen) && !p.at(lexer.TokenEOF) {
		start := p.cur()
		param := &ast.Parameter{}
		selfType := &ast.CustomType{Name: "Self"}

		switch {
		case p.at(lexer.TokenAmpersand) && p.peekIs(1, lexer.TokenSelf):
			p.advance()
			p.advance()
			param.Name, param.Type, param.Ownership = "self", selfType, ast.OwnershipRef
		case p.at(lexer.TokenAmpersand) && p.peekIs(1, lexer.TokenMut) && p.peekIs(2, lexer.TokenSelf):
			p.advance()
			p.advance()
			p.advance()
			param.Name, param.Type, param.Ownership = "self", selfType, ast.OwnershipMut
		case p.at(lexer.TokenSelf):
			p.advance()
			param.Name, param.Type, param.Ownership = "self", selfType, ast.OwnershipOwned
		case p.at(lexer.TokenMut) && p.peekIs(1, lexer.TokenSelf):
			p.advance()
			p.advance()
			param.Name, param.Type, param.Ownership = "self", selfType, ast.OwnershipOwned
			param.IsMutable = true
		case p.at(lexer.TokenLParen):
			param.Pattern = p.parsePattern()
			param.Name = patternName(param.Pattern)
			p.expect(lexer.TokenColon)
			param.Type = p.parseType()
			param.Ownership = ownershipFromType(param.Type)
		default:
			param.IsMutable = p.accept(lexer.TokenMut)
			if p.accept(lexer.TokenUnderscore) {
				param.Name = "_"
			} else {
				param.Name = p.expectIdent("parameter name")
			}
			p.expect(lexer.TokenColon)
			param.Type = p.parseType()
			param.Ownership = ownershipFromType(param.Type)
		}

		param.Span = p.spanFrom(start)
		params = append(params, param)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}

	return params
}

// ownershipFromType maps an explicit reference type to its ownership hint
func ownershipFromType(t ast.Type) ast.OwnershipHint {
	switch t.(type) {
	case *ast.ReferenceType:
		return ast.OwnershipRef
	case *ast.MutableReferenceType:
		return ast.OwnershipMut
	}
	return ast.OwnershipInferred
}

// patternName derives a parameter name from a destructuring pattern
func patternName(pat ast.Pattern) string {
	names := ast.BoundNames(pat)
	if len(names) == 0 {
		return "_"
	}
	return strings.Join(names, "_")
}

// parseStruct parses a struct declaration
func (p *Parser) parseStruct(prefix itemPrefix) *ast.StructDecl {
	p.expect(lexer.TokenStruct)

	decl := &ast.StructDecl{
		Name:       p.expectIdent("struct name"),
		IsPub:      prefix.isPub,
		Decorators: prefix.decorators,
		DocComment: prefix.doc,
	}
	decl.TypeParams = p.parseTypeParams()
	p.pushTypeParams(decl.TypeParams)
	defer p.popTypeParams()
	decl.WhereClause = p.parseWhereClause()

	if p.accept(lexer.TokenSemicolon) || !p.at(lexer.TokenLBrace) {
		decl.IsUnit = true
		decl.Span = p.spanFrom(prefix.start)
		return decl
	}

	decl.Fields = p.parseFieldList()
	decl.Span = p.spanFrom(prefix.start)
	return decl
}

// parseFieldList parses { [@dec] [pub] name: Type, ... }; commas are optional
func (p *Parser) parseFieldList() []*ast.StructField {
	p.expect(lexer.TokenLBrace)
	var fields []*ast.StructField

	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		start := p.cur()
		field := &ast.StructField{DocComment: p.docAt()}
		for p.at(lexer.TokenDecorator) {
			field.Decorators = append(field.Decorators, p.parseDecorator())
		}
		if field.DocComment == "" {
			field.DocComment = p.docAt()
		}
		if p.accept(lexer.TokenPub) {
			field.IsPub = true
		}
		field.Name = p.fieldName()
		p.expect(lexer.TokenColon)
		field.Type = p.parseType()
		field.Span = p.spanFrom(start)
		fields = append(fields, field)

		p.accept(lexer.TokenComma)
	}

	p.expect(lexer.TokenRBrace)
	return fields
}

// fieldName accepts identifiers and keywords usable as field names
func (p *Parser) fieldName() string {
	switch p.cur().Type {
	case lexer.TokenTypeKw, lexer.TokenAsync, lexer.TokenThread:
		return p.advance().Literal
	}
	return p.expectIdent("field name")
}

// parseEnum parses an enum declaration
func (p *Parser) parseEnum(prefix itemPrefix) *ast.EnumDecl {
	p.expect(lexer.TokenEnum)

	decl := &ast.EnumDecl{
		Name:       p.expectIdent("enum name"),
		IsPub:      prefix.isPub,
		Decorators: prefix.decorators,
		DocComment: prefix.doc,
	}
	decl.TypeParams = p.parseTypeParams()
	p.pushTypeParams(decl.TypeParams)
	defer p.popTypeParams()

	p.expect(lexer.TokenLBrace)
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		for p.at(lexer.TokenDecorator) {
			p.parseDecorator()
		}
		variant := &ast.EnumVariant{Name: p.expectIdent("variant name")}

		switch p.cur().Type {
		case lexer.TokenLParen:
			p.advance()
			variant.Kind = ast.VariantTuple
			for !p.at(lexer.TokenRParen) {
				variant.Types = append(variant.Types, p.parseType())
				if !p.accept(lexer.TokenComma) {
					break
				}
			}
			p.expect(lexer.TokenRParen)
		case lexer.TokenLBrace:
			variant.Kind = ast.VariantStruct
			variant.Fields = p.parseFieldList()
		}

		decl.Variants = append(decl.Variants, variant)
		p.accept(lexer.TokenComma)
	}
	p.expect(lexer.TokenRBrace)

	decl.Span = p.spanFrom(prefix.start)
	return decl
}

// parseTrait parses a trait with associated types and method signatures
func (p *Parser) parseTrait(prefix itemPrefix) *ast.TraitDecl {
	p.expect(lexer.TokenTrait)

	decl := &ast.TraitDecl{
		Name:       p.expectIdent("trait name"),
		IsPub:      prefix.isPub,
		Decorators: prefix.decorators,
		DocComment: prefix.doc,
	}
	decl.Generics = p.parseTypeParams()
	p.pushTypeParams(decl.Generics)
	defer p.popTypeParams()

	if p.accept(lexer.TokenColon) {
		decl.Supertraits = p.parseBounds()
	}
	p.parseWhereClause()

	p.expect(lexer.TokenLBrace)
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		if p.accept(lexer.TokenSemicolon) {
			continue
		}
		if p.accept(lexer.TokenTypeKw) {
			assoc := ast.AssociatedTypeDecl{Name: p.expectIdent("associated type name")}
			if p.accept(lexer.TokenColon) {
				p.parseBounds()
			}
			p.accept(lexer.TokenSemicolon)
			decl.AssociatedTypes = append(decl.AssociatedTypes, assoc)
			continue
		}

		methodPrefix := p.parseItemPrefix()
		if !p.at(lexer.TokenFn) {
			p.fail(UnexpectedToken, "", "expected `fn` or `type` in trait body, found %s", describe(p.cur()))
		}
		method := p.parseFunction(methodPrefix)
		method.ParentType = decl.Name
		decl.Methods = append(decl.Methods, method)
	}
	p.expect(lexer.TokenRBrace)

	decl.Span = p.spanFrom(prefix.start)
	return decl
}

// parseImpl parses `impl<T> Type<Args> { ... }` or `impl Trait<Args> for Type<Args> { ... }`
func (p *Parser) parseImpl(prefix itemPrefix) *ast.ImplBlock {
	p.expect(lexer.TokenImpl)

	impl := &ast.ImplBlock{Decorators: prefix.decorators}
	impl.TypeParams = p.parseTypeParams()
	p.pushTypeParams(impl.TypeParams)
	defer p.popTypeParams()

	firstName, firstArgs := p.parseImplTarget()
	if p.accept(lexer.TokenFor) {
		impl.TraitName, impl.TraitTypeArgs = firstName, firstArgs
		impl.TypeName, impl.TypeArgs = p.parseImplTarget()
	} else {
		impl.TypeName, impl.TypeArgs = firstName, firstArgs
	}
	impl.WhereClause = p.parseWhereClause()

	p.expect(lexer.TokenLBrace)
	for !p.at(lexer.TokenRBrace) && !p.at(lexer.TokenEOF) {
		if p.accept(lexer.TokenSemicolon) {
			continue
		}
		if p.accept(lexer.TokenTypeKw) {
			assoc := ast.AssociatedTypeDecl{Name: p.expectIdent("associated type name")}
			p.expect(lexer.TokenAssign)
			assoc.Concrete = p.parseType()
			p.accept(lexer.TokenSemicolon)
			impl.AssociatedTypes = append(impl.AssociatedTypes, assoc)
			continue
		}

		methodPrefix := p.parseItemPrefix()
		if !p.at(lexer.TokenFn) {
			p.fail(UnexpectedToken, "", "expected `fn` in impl body, found %s", describe(p.cur()))
		}
		method := p.parseFunction(methodPrefix)
		method.ParentType = impl.TypeName
		impl.Functions = append(impl.Functions, method)
	}
	p.expect(lexer.TokenRBrace)

	impl.Span = p.spanFrom(prefix.start)
	return impl
}

// parseImplTarget parses a possibly qualified name with optional type arguments
func (p *Parser) parseImplTarget() (string, []ast.Type) {
	name := p.expectIdent("type name")
	for p.at(lexer.TokenDoubleColon) && p.peekIs(1, lexer.TokenIdentifier) {
		p.advance()
		name += "::" + p.advance().Literal
	}
	var args []ast.Type
	if p.at(lexer.TokenLt) {
		args = p.parseTypeArgs()
	}
	return name, args
}

// parseConstItem parses `const NAME: Type = value`
func (p *Parser) parseConstItem(prefix itemPrefix) *ast.ConstDecl {
	p.expect(lexer.TokenConst)
	decl := &ast.ConstDecl{Name: p.expectIdent("constant name"), IsPub: prefix.isPub}
	if p.accept(lexer.TokenColon) {
		decl.Type = p.parseType()
	}
	p.expect(lexer.TokenAssign)
	decl.Value = p.parseExpr()
	p.accept(lexer.TokenSemicolon)
	decl.Span = p.spanFrom(prefix.start)
	return decl
}

// parseStaticItem parses `static [mut] NAME: Type = value`
func (p *Parser) parseStaticItem(prefix itemPrefix) *ast.StaticDecl {
	p.expect(lexer.TokenStatic)
	decl := &ast.StaticDecl{IsPub: prefix.isPub}
	decl.Mutable = p.accept(lexer.TokenMut)
	decl.Name = p.expectIdent("static name")
	if p.accept(lexer.TokenColon) {
		decl.Type = p.parseType()
	}
	p.expect(lexer.TokenAssign)
	decl.Value = p.parseExpr()
	p.accept(lexer.TokenSemicolon)
	decl.Span = p.spanFrom(prefix.start)
	return decl
}

// parseBoundAlias parses `bound Name = A + B`
func (p *Parser) parseBoundAlias(prefix itemPrefix) *ast.BoundAlias {
	p.expect(lexer.TokenBound)
	alias := &ast.BoundAlias{Name: p.expectIdent("bound name")}
	p.expect(lexer.TokenAssign)
	alias.Traits = p.parseBounds()
	p.accept(lexer.TokenSemicolon)
	alias.Span = p.spanFrom(prefix.start)
	return alias
}
