package golang

import (
	"strconv"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// match lowers a match to a type switch over enum variants, a value
// switch over literals, or a tagless switch of pattern conditions
func (g *generator) match(node ast.Node, value ast.Expression, arms []*ast.MatchArm, t tail) {
	switch {
	case g.variantArms(arms):
		g.typeSwitch(value, arms, t)
	case literalArms(arms):
		g.valueSwitch(value, arms, t)
	default:
		g.condSwitch(node, value, arms, t)
	}
}

func alternatives(p ast.Pattern) []ast.Pattern {
	if or, ok := p.(*ast.OrPattern); ok {
		var out []ast.Pattern
		for _, a := range or.Alternatives {
			out = append(out, alternatives(a)...)
		}
		return out
	}
	return []ast.Pattern{p}
}

func isCatchAll(p ast.Pattern) bool {
	switch p.(type) {
	case *ast.WildcardPattern, *ast.IdentifierPattern:
		return true
	}
	return false
}

func (g *generator) variantType(name string) (string, bool) {
	if isOptionVariant(name) {
		return "", false
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		base, last := name[:i], name[i+2:]
		if j := strings.LastIndex(base, "::"); j >= 0 {
			base = base[j+2:]
		}
		if base == "Self" {
			base = g.recv
		}
		typ, ok := g.variants[base+"::"+last]
		return typ, ok
	}
	typ, ok := g.variants[name]
	return typ, ok
}

// variantArms reports a guard-free match over user enum variants
func (g *generator) variantArms(arms []*ast.MatchArm) bool {
	found := false
	for _, arm := range arms {
		if arm.Guard != nil {
			return false
		}
		for _, p := range alternatives(arm.Pattern) {
			if isCatchAll(p) {
				continue
			}
			vp, ok := p.(*ast.EnumVariantPattern)
			if !ok {
				return false
			}
			if _, ok := g.variantType(vp.Name); !ok {
				return false
			}
			found = true
		}
	}
	return found
}

func literalArms(arms []*ast.MatchArm) bool {
	found := false
	for _, arm := range arms {
		if arm.Guard != nil {
			return false
		}
		for _, p := range alternatives(arm.Pattern) {
			if isCatchAll(p) {
				continue
			}
			if _, ok := p.(*ast.LiteralPattern); !ok {
				return false
			}
			found = true
		}
	}
	return found
}

// subject evaluates a match scrutinee once; init is empty for plain names
func (g *generator) subject(value ast.Expression) (init, subj string) {
	s := g.expr(value)
	switch v := value.(type) {
	case *ast.Identifier:
		return "", s
	case *ast.FieldAccessExpr:
		if _, ok := v.Object.(*ast.Identifier); ok {
			return "", s
		}
	}
	tmp := g.temp()
	return tmp + " := " + s, tmp
}

func (g *generator) typeSwitch(value ast.Expression, arms []*ast.MatchArm, t tail) {
	init, subj := g.subject(value)
	bound := g.temp()

	type clause struct {
		types   []string
		renames map[string]string
		arm     *ast.MatchArm
	}
	var clauses []clause
	used := false
	hasDefault := false
	for _, arm := range arms {
		c := clause{renames: make(map[string]string), arm: arm}
		alts := alternatives(arm.Pattern)
		for _, p := range alts {
			switch pp := p.(type) {
			case *ast.IdentifierPattern:
				c.renames[pp.Name] = subj
				c.types = nil
				hasDefault = true
			case *ast.WildcardPattern:
				hasDefault = true
			case *ast.EnumVariantPattern:
				typ, _ := g.variantType(pp.Name)
				c.types = append(c.types, typ)
				if len(alts) == 1 {
					g.variantBindings(pp, bound, c.renames)
				}
			}
		}
		for name, alias := range c.renames {
			if strings.HasPrefix(alias, bound+".") && ast.References(arm.Body, name) {
				used = true
			}
		}
		clauses = append(clauses, c)
	}

	head := "switch "
	if init != "" {
		head += init + "; "
	}
	if used {
		head += bound + " := "
	}
	g.line("%s%s.(type) {", head, subj)
	for _, c := range clauses {
		if len(c.types) == 0 {
			g.line("default:")
		} else {
			g.line("case %s:", strings.Join(c.types, ", "))
		}
		g.indent++
		g.withRenames(c.renames, func() { g.armBody(c.arm.Body, t) })
		g.indent--
	}
	g.line("}")
	if t.kind == tailReturn && !hasDefault {
		g.line(`panic("unreachable")`)
	}
}

// variantBindings maps names bound by a variant pattern to fields of v
func (g *generator) variantBindings(p *ast.EnumVariantPattern, v string, renames map[string]string) {
	b := p.Binding
	switch b.Kind {
	case ast.BindSingle:
		renames[b.Name] = v + ".Field0"
	case ast.BindTuple:
		for i, sub := range b.Patterns {
			switch sp := unref(sub).(type) {
			case *ast.IdentifierPattern:
				renames[sp.Name] = v + ".Field" + strconv.Itoa(i)
			case *ast.WildcardPattern:
			default:
				g.fail(nil, "match", "nested pattern %s in %s", sub, p.Name)
			}
		}
	case ast.BindStruct:
		for _, f := range b.Fields {
			switch sp := unref(f.Pattern).(type) {
			case *ast.IdentifierPattern:
				renames[sp.Name] = v + "." + f.Name
			case *ast.WildcardPattern:
			default:
				g.fail(nil, "match", "nested pattern %s in %s", f.Pattern, p.Name)
			}
		}
	}
}

func (g *generator) valueSwitch(value ast.Expression, arms []*ast.MatchArm, t tail) {
	init, subj := g.subject(value)
	if init != "" {
		g.line("switch %s; %s {", init, subj)
	} else {
		g.line("switch %s {", subj)
	}
	hasDefault := false
	for _, arm := range arms {
		renames := make(map[string]string)
		var values []string
		catchAll := false
		for _, p := range alternatives(arm.Pattern) {
			switch pp := p.(type) {
			case *ast.LiteralPattern:
				values = append(values, literal(pp.Value))
			case *ast.IdentifierPattern:
				renames[pp.Name] = subj
				catchAll = true
			default:
				catchAll = true
			}
		}
		if catchAll {
			if hasDefault {
				continue
			}
			hasDefault = true
			g.line("default:")
		} else {
			g.line("case %s:", strings.Join(values, ", "))
		}
		g.indent++
		g.withRenames(renames, func() { g.armBody(arm.Body, t) })
		g.indent--
	}
	g.line("}")
	if t.kind == tailReturn && !hasDefault {
		g.line(`panic("unreachable")`)
	}
}

func (g *generator) condSwitch(node ast.Node, value ast.Expression, arms []*ast.MatchArm, t tail) {
	var elems []string
	var init, subj string
	if tup, ok := value.(*ast.TupleLiteral); ok {
		for _, e := range tup.Elements {
			ei, es := g.subject(e)
			if ei != "" {
				g.line("%s", ei)
			}
			elems = append(elems, es)
		}
	} else {
		init, subj = g.subject(value)
	}
	if init != "" {
		g.line("switch %s; {", init)
	} else {
		g.line("switch {")
	}
	hasDefault := false
	for _, arm := range arms {
		renames := make(map[string]string)
		cond, skip := g.condition(arm.Pattern, subj, elems, renames)
		if skip {
			continue
		}
		if arm.Guard != nil {
			var guard string
			g.withRenames(renames, func() { guard = g.expr(arm.Guard) })
			cond = joinConds(cond, guard)
		}
		switch {
		case cond != "":
			g.line("case %s:", cond)
		case hasDefault:
			g.line("case true:")
		default:
			hasDefault = true
			g.line("default:")
		}
		g.indent++
		g.withRenames(renames, func() { g.armBody(arm.Body, t) })
		g.indent--
	}
	g.line("}")
	if t.kind == tailReturn && !hasDefault {
		g.line(`panic("unreachable")`)
	}
	if g.err != nil && node != nil {
		if ge, ok := g.err.(*GenerateError); ok && !ge.Span.IsValid() {
			ge.Span = node.GetSpan()
		}
	}
}

func joinConds(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " && " + b
}

// condition builds the boolean test for p against subj. skip reports
// arms that can never match in Go, such as Err arms of erased results.
func (g *generator) condition(p ast.Pattern, subj string, elems []string, renames map[string]string) (cond string, skip bool) {
	switch pp := p.(type) {
	case *ast.WildcardPattern:
		return "", false
	case *ast.IdentifierPattern:
		renames[pp.Name] = subj
		return "", false
	case *ast.ReferencePattern:
		return g.condition(pp.Inner, subj, elems, renames)
	case *ast.LiteralPattern:
		return subj + " == " + literal(pp.Value), false
	case *ast.OrPattern:
		var parts []string
		for _, alt := range pp.Alternatives {
			c, s := g.condition(alt, subj, elems, make(map[string]string))
			if s {
				continue
			}
			if c == "" {
				return "", false
			}
			parts = append(parts, c)
		}
		if len(parts) == 0 {
			return "", true
		}
		if len(parts) == 1 {
			return parts[0], false
		}
		return "(" + strings.Join(parts, " || ") + ")", false
	case *ast.TuplePattern:
		if len(elems) != len(pp.Elems) {
			g.fail(nil, "match", "tuple pattern %s needs a tuple scrutinee of the same arity", pp)
			return "", false
		}
		var conds []string
		for i, e := range pp.Elems {
			c, s := g.condition(e, elems[i], nil, renames)
			if s {
				return "", true
			}
			if c != "" {
				conds = append(conds, c)
			}
		}
		return strings.Join(conds, " && "), false
	case *ast.EnumVariantPattern:
		switch variantName(pp.Name) {
		case "Some":
			inner := "(*" + subj + ")"
			switch pp.Binding.Kind {
			case ast.BindSingle:
				renames[pp.Binding.Name] = inner
			case ast.BindTuple:
				if len(pp.Binding.Patterns) == 1 {
					c, s := g.condition(pp.Binding.Patterns[0], inner, nil, renames)
					return joinConds(subj+" != nil", c), s
				}
			}
			return subj + " != nil", false
		case "None":
			return subj + " == nil", false
		case "Ok":
			switch pp.Binding.Kind {
			case ast.BindSingle:
				renames[pp.Binding.Name] = subj
			case ast.BindTuple:
				if len(pp.Binding.Patterns) == 1 {
					return g.condition(pp.Binding.Patterns[0], subj, nil, renames)
				}
			}
			return "", false
		case "Err":
			return "", true
		}
		typ, ok := g.variantType(pp.Name)
		if !ok {
			g.fail(nil, "match", "unknown variant %s", pp.Name)
			return "", false
		}
		g.helpers["isVariant"] = true
		g.variantBindings(pp, subj+".("+typ+")", renames)
		return "isVariant[" + typ + "](" + subj + ")", false
	}
	g.fail(nil, "match", "unsupported pattern %s", p)
	return "", false
}

func (g *generator) armBody(body ast.Expression, t tail) {
	switch b := body.(type) {
	case *ast.BlockExpr:
		g.stmts(b.Statements, t)
		return
	case *ast.TupleLiteral:
		if len(b.Elements) == 0 {
			if t.kind == tailReturn {
				g.line("return")
			}
			return
		}
	}
	if t.kind == tailNone {
		g.exprStmt(body)
		return
	}
	g.tailExpr(body, t)
}
