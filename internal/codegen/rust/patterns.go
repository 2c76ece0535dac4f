package rust

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

func (g *Generator) pattern(p ast.Pattern) string {
	switch pp := p.(type) {
	case nil, *ast.WildcardPattern:
		return "_"
	case *ast.IdentifierPattern:
		if pp.Mutable {
			return "mut " + pp.Name
		}
		return pp.Name
	case *ast.ReferencePattern:
		return "&" + g.pattern(pp.Inner)
	case *ast.TuplePattern:
		return "(" + g.patternList(pp.Elems) + ")"
	case *ast.LiteralPattern:
		return g.expr(pp.Value)
	case *ast.OrPattern:
		parts := make([]string, 0, len(pp.Alternatives))
		for _, alt := range pp.Alternatives {
			parts = append(parts, g.pattern(alt))
		}
		return strings.Join(parts, " | ")
	case *ast.EnumVariantPattern:
		return g.variantPattern(pp)
	}
	return p.String()
}

func (g *Generator) patternList(ps []ast.Pattern) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, g.pattern(p))
	}
	return strings.Join(parts, ", ")
}

func (g *Generator) variantPattern(p *ast.EnumVariantPattern) string {
	name := pathName(p.Name)
	b := p.Binding
	switch b.Kind {
	case ast.BindSingle:
		if b.Mutable {
			return name + "(mut " + b.Name + ")"
		}
		return name + "(" + b.Name + ")"
	case ast.BindWildcard:
		return name + "(_)"
	case ast.BindTuple:
		return name + "(" + g.patternList(b.Patterns) + ")"
	case ast.BindStruct:
		fields := make([]string, 0, len(b.Fields)+1)
		for _, f := range b.Fields {
			if id, ok := f.Pattern.(*ast.IdentifierPattern); ok && id.Name == f.Name {
				fields = append(fields, g.pattern(id))
				continue
			}
			fields = append(fields, f.Name+": "+g.pattern(f.Pattern))
		}
		if b.Rest {
			fields = append(fields, "..")
		}
		if len(fields) == 0 {
			return name + " {}"
		}
		return name + " { " + strings.Join(fields, ", ") + " }"
	}
	return name
}
