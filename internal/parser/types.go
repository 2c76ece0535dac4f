package parser

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/lexer"
)

// rustPrimitives are the target scalar names usable directly in source
var rustPrimitives = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
	"f32": true, "f64": true, "char": true, "str": true,
}

// IsPrimitiveName reports whether name is a scalar type that never takes
// generic arguments
func IsPrimitiveName(name string) bool {
	if rustPrimitives[name] {
		return true
	}
	_, ok := ast.LookupPrimitive(name)
	return ok
}

// parseType parses a type in declaration position
func (p *Parser) parseType() ast.Type {
	return p.parseTypeIn(false)
}

// parseTypeIn parses a type. In a cast a `<` after a primitive is left for
// the expression parser as a comparison.
func (p *Parser) parseTypeIn(inCast bool) ast.Type {
	switch p.cur().Type {
	case lexer.TokenAmpersand:
		p.advance()
		if p.accept(lexer.TokenMut) {
			return &ast.MutableReferenceType{Inner: p.parseTypeIn(inCast)}
		}
		return &ast.ReferenceType{Inner: p.parseTypeIn(inCast)}

	case lexer.TokenAnd:
		// && is two references
		p.advance()
		inner := &ast.ReferenceType{Inner: p.parseTypeIn(inCast)}
		return &ast.ReferenceType{Inner: inner}

	case lexer.TokenStar:
		p.advance()
		switch {
		case p.accept(lexer.TokenConst):
			return &ast.RawPointerType{Pointee: p.parseTypeIn(inCast)}
		case p.accept(lexer.TokenMut):
			return &ast.RawPointerType{Mutable: true, Pointee: p.parseTypeIn(inCast)}
		}
		p.fail(TypeError, "Write `*const T` or `*mut T`",
			"raw pointer types require `const` or `mut`, found %s", describe(p.cur()))

	case lexer.TokenDyn:
		p.advance()
		return &ast.TraitObjectType{Name: p.parseBound()}

	case lexer.TokenTrait, lexer.TokenImpl:
		p.advance()
		return &ast.ImplTraitType{Name: p.parseBound()}

	case lexer.TokenLBracket:
		p.advance()
		elem := p.parseType()
		if p.accept(lexer.TokenSemicolon) {
			var size string
			switch p.cur().Type {
			case lexer.TokenInteger, lexer.TokenIdentifier:
				size = p.advance().Literal
			default:
				p.fail(TypeError, "", "expected array size, found %s", describe(p.cur()))
			}
			p.expect(lexer.TokenRBracket)
			return &ast.ArrayType{Elem: elem, Size: size}
		}
		p.expect(lexer.TokenRBracket)
		return &ast.VecType{Elem: elem}

	case lexer.TokenFn:
		p.advance()
		return p.parseFnSugar()

	case lexer.TokenLParen:
		p.advance()
		var elems []ast.Type
		trailingComma := false
		for !p.at(lexer.TokenRParen) {
			elems = append(elems, p.parseType())
			trailingComma = p.accept(lexer.TokenComma)
			if !trailingComma {
				break
			}
		}
		p.expect(lexer.TokenRParen)
		if len(elems) == 1 && !trailingComma {
			return elems[0]
		}
		return &ast.TupleType{Elems: elems}

	case lexer.TokenUnderscore:
		p.advance()
		return &ast.InferType{}

	case lexer.TokenIdentifier:
		return p.parseNamedType(inCast)
	}

	p.fail(UnexpectedToken, "", "expected type, found %s", describe(p.cur()))
	return nil
}

// parseNamedType parses primitives, paths, associated types and generic applications
func (p *Parser) parseNamedType(inCast bool) ast.Type {
	nameTok := p.advance()
	name := nameTok.Literal

	if IsPrimitiveName(name) {
		if p.at(lexer.TokenLt) && !inCast {
			p.fail(TypeError, "Primitive types take no type arguments",
				"primitive type `%s` cannot have generic arguments", name)
		}
		if kind, ok := ast.LookupPrimitive(name); ok {
			return &ast.PrimitiveType{Kind: kind}
		}
		return &ast.CustomType{Name: name}
	}

	segments := []string{name}
	for {
		if p.at(lexer.TokenDoubleColon) && p.peekIs(1, lexer.TokenIdentifier) {
			p.advance()
			segments = append(segments, p.advance().Literal)
			continue
		}
		if !inCast && p.at(lexer.TokenDot) && p.peekIs(1, lexer.TokenIdentifier) {
			p.advance()
			segments = append(segments, p.advance().Literal)
			continue
		}
		break
	}

	// T::Output and Self::Item are projections
	if len(segments) == 2 && (segments[0] == "Self" || p.isTypeParam(segments[0])) {
		return &ast.AssociatedType{Base: segments[0], Name: segments[1]}
	}
	name = strings.Join(segments, "::")

	if !p.at(lexer.TokenLt) {
		if len(segments) == 1 && p.isTypeParam(name) {
			return &ast.GenericType{Name: name}
		}
		return &ast.CustomType{Name: name}
	}

	args := p.parseTypeArgs()
	switch name {
	case "Vec":
		if len(args) == 1 {
			return &ast.VecType{Elem: args[0]}
		}
	case "Option":
		if len(args) == 1 {
			return &ast.OptionType{Inner: args[0]}
		}
	case "Result":
		if len(args) == 2 {
			return &ast.ResultType{Ok: args[0], Err: args[1]}
		}
		if len(args) == 1 {
			return &ast.ResultType{Ok: args[0], Err: &ast.PrimitiveType{Kind: ast.TypeString}}
		}
	}
	if len(args) == 0 {
		p.failAt(nameTok, TypeError, "", "empty type argument list for `"+name+"`")
	}
	return &ast.ParameterizedType{Base: name, Args: args}
}

// parseTypeArgs parses <T, U>. A `>>` never reaches the parser fused, so
// nested lists close one `>` at a time.
func (p *Parser) parseTypeArgs() []ast.Type {
	p.expect(lexer.TokenLt)
	var args []ast.Type
	for !p.at(lexer.TokenGt) && !p.at(lexer.TokenEOF) {
		args = append(args, p.parseType())
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenGt)
	return args
}

// parseTypeParams parses an optional <T, U: Clone + Send> list
func (p *Parser) parseTypeParams() []ast.TypeParam {
	if !p.accept(lexer.TokenLt) {
		return nil
	}
	var params []ast.TypeParam
	for !p.at(lexer.TokenGt) && !p.at(lexer.TokenEOF) {
		tp := ast.TypeParam{Name: p.expectIdent("type parameter")}
		if p.accept(lexer.TokenColon) {
			tp.Bounds = p.parseBounds()
		}
		params = append(params, tp)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenGt)
	return params
}

// parseWhereClause parses an optional `where T: A + B, T::Output: C`
func (p *Parser) parseWhereClause() []ast.WherePredicate {
	if !p.accept(lexer.TokenWhere) {
		return nil
	}
	var preds []ast.WherePredicate
	for p.at(lexer.TokenIdentifier) {
		path := p.advance().Literal
		for p.at(lexer.TokenDoubleColon) && p.peekIs(1, lexer.TokenIdentifier) {
			p.advance()
			path += "::" + p.advance().Literal
		}
		p.expect(lexer.TokenColon)
		preds = append(preds, ast.WherePredicate{TypePath: path, Bounds: p.parseBounds()})
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	return preds
}

// parseBounds parses A + B<T> + C
func (p *Parser) parseBounds() []string {
	bounds := []string{p.parseBound()}
	for p.accept(lexer.TokenPlus) {
		bounds = append(bounds, p.parseBound())
	}
	return bounds
}

// parseBound parses one trait path with optional type arguments
func (p *Parser) parseBound() string {
	name := p.expectIdent("trait name")
	for p.at(lexer.TokenDoubleColon) && p.peekIs(1, lexer.TokenIdentifier) {
		p.advance()
		name += "::" + p.advance().Literal
	}
	if p.at(lexer.TokenLt) {
		args := p.parseTypeArgs()
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, a.String())
		}
		name += "<" + strings.Join(parts, ", ") + ">"
	}
	if p.at(lexer.TokenLParen) {
		// Fn(A, B) -> R
		fp := p.parseFnSugar()
		name += strings.TrimPrefix(fp.String(), "fn")
	}
	return name
}

func (p *Parser) parseFnSugar() *ast.FunctionPointerType {
	p.expect(lexer.TokenLParen)
	fp := &ast.FunctionPointerType{}
	for !p.at(lexer.TokenRParen) {
		fp.Params = append(fp.Params, p.parseType())
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	p.expect(lexer.TokenRParen)
	if p.accept(lexer.TokenArrow) {
		fp.Return = p.parseType()
	}
	return fp
}
