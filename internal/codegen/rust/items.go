package rust

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/ast"
)

// items emits top-level or module items in source order, separated by a
// blank line
func (g *Generator) items(items []ast.Item) {
	for i, item := range items {
		if g.err != nil {
			return
		}
		if i > 0 && !(isUse(item) && isUse(items[i-1])) {
			g.blank()
		}
		g.item(item)
	}
}

func isUse(item ast.Item) bool {
	_, ok := item.(*ast.UseDecl)
	return ok
}

func (g *Generator) item(item ast.Item) {
	switch it := item.(type) {
	case *ast.FunctionDecl:
		if it.IsExtern {
			g.externFunction(it)
			return
		}
		g.function(it)
	case *ast.StructDecl:
		g.structDecl(it)
	case *ast.EnumDecl:
		g.enumDecl(it)
	case *ast.TraitDecl:
		g.traitDecl(it)
	case *ast.ImplBlock:
		g.implBlock(it)
	case *ast.UseDecl:
		g.useDecl(it.Path, it.Alias, it.IsPub)
	case *ast.ModDecl:
		g.modDecl(it)
	case *ast.ConstDecl:
		g.constItem(it, "const", it.IsPub, false, it.Name, it.Type, it.Value)
	case *ast.StaticDecl:
		g.constItem(it, "static", it.IsPub, it.Mutable, it.Name, it.Type, it.Value)
	case *ast.BoundAlias:
		g.boundAlias(it)
	default:
		g.fail(item, "item", "unsupported item %T", item)
	}
}

func vis(pub bool) string {
	if pub {
		return "pub "
	}
	return ""
}

func isExported(decorators []*ast.Decorator) bool {
	return ast.FindDecorator(decorators, "export") != nil
}

// function emits a free function, method or trait method with a default body
func (g *Generator) function(decl *ast.FunctionDecl) {
	restore := g.enterFunction(decl)
	defer restore()

	g.docComment(decl.DocComment)
	isAsync := decl.IsAsync || ast.FindDecorator(decl.Decorators, "async") != nil
	if isAsync && decl.Name == "main" && decl.ParentType == "" {
		g.line("#[tokio::main]")
	}
	g.attributes(decl.Decorators)

	g.line("%s {", g.signature(decl, isAsync))
	g.indent++
	g.body(decl.Body, decl.ReturnType != nil && !ast.IsUnit(decl.ReturnType))
	g.indent--
	g.line("}")
}

// signature renders everything before the body
func (g *Generator) signature(decl *ast.FunctionDecl, isAsync bool) string {
	var b strings.Builder
	if g.isPub(decl) {
		b.WriteString("pub ")
	}
	if isAsync {
		b.WriteString("async ")
	}
	b.WriteString("fn ")
	b.WriteString(decl.Name)
	b.WriteString(typeParams(decl.TypeParams))
	b.WriteString("(")
	b.WriteString(g.parameters(decl))
	b.WriteString(")")
	if decl.ReturnType != nil && !ast.IsUnit(decl.ReturnType) {
		b.WriteString(" -> ")
		b.WriteString(g.rustType(decl.ReturnType))
	}
	b.WriteString(whereClause(decl.WhereClause))
	return b.String()
}

// isPub reports whether decl gets a pub qualifier. Trait items never do.
func (g *Generator) isPub(decl *ast.FunctionDecl) bool {
	if g.inTraitImpl || (decl.ParentType != "" && g.implType == "") {
		return false
	}
	return decl.IsPub || isExported(decl.Decorators)
}

func (g *Generator) parameters(decl *ast.FunctionDecl) string {
	info := g.res.Function(decl)
	parts := make([]string, 0, len(decl.Parameters))
	for _, p := range decl.Parameters {
		if p.IsSelf() {
			parts = append(parts, g.receiver(p, info))
			continue
		}
		name := p.Name
		if p.Pattern != nil {
			name = g.pattern(p.Pattern)
		}
		mode, ok := info.Ownership(p.Name)
		if !ok || p.Pattern != nil {
			mode = analyzer.Owned
		}
		if p.IsMutable && mode == analyzer.Owned {
			name = "mut " + name
		}
		parts = append(parts, name+": "+g.paramType(p.Type, mode))
	}
	return strings.Join(parts, ", ")
}

func (g *Generator) receiver(p *ast.Parameter, info *analyzer.AnalyzedFunction) string {
	mode, _ := info.Ownership("self")
	switch mode {
	case analyzer.Borrowed:
		return "&self"
	case analyzer.MutBorrowed:
		return "&mut self"
	}
	if p.IsMutable {
		return "mut self"
	}
	return "self"
}

// body emits a function body; when the function returns a value the last
// expression statement is emitted as the tail
func (g *Generator) body(stmts []ast.Statement, returns bool) {
	ctx := ctxStmt
	if returns {
		ctx = ctxReturn
	}
	g.block(stmts, ctx)
}

func (g *Generator) externFunction(decl *ast.FunctionDecl) {
	restore := g.enterFunction(decl)
	defer restore()

	g.docComment(decl.DocComment)
	g.line(`extern "C" {`)
	g.indent++
	params := make([]string, 0, len(decl.Parameters))
	for _, p := range decl.Parameters {
		params = append(params, p.Name+": "+g.rustType(p.Type))
	}
	sig := vis(decl.IsPub) + "fn " + decl.Name + "(" + strings.Join(params, ", ") + ")"
	if decl.ReturnType != nil && !ast.IsUnit(decl.ReturnType) {
		sig += " -> " + g.rustType(decl.ReturnType)
	}
	g.line("%s;", sig)
	g.indent--
	g.line("}")
}

func (g *Generator) structDecl(s *ast.StructDecl) {
	g.docComment(s.DocComment)
	if d := g.deriveLine(s.Name, s.Decorators); d != "" {
		g.line(d)
	}
	g.attributes(s.Decorators)
	pub := s.IsPub || isExported(s.Decorators)
	head := vis(pub) + "struct " + s.Name + typeParams(s.TypeParams) + whereClause(s.WhereClause)
	if s.IsUnit {
		g.line("%s;", head)
		return
	}
	if len(s.Fields) == 0 {
		g.line("%s {}", head)
		return
	}
	g.line("%s {", head)
	g.indent++
	for _, f := range s.Fields {
		g.docComment(f.DocComment)
		for _, d := range f.Decorators {
			g.line(g.passthrough(d))
		}
		g.line("%s%s: %s,", vis(f.IsPub || pub), f.Name, g.rustType(f.Type))
	}
	g.indent--
	g.line("}")
}

func (g *Generator) enumDecl(e *ast.EnumDecl) {
	g.docComment(e.DocComment)
	if d := g.deriveLine(e.Name, e.Decorators); d != "" {
		g.line(d)
	}
	g.attributes(e.Decorators)
	g.line("%senum %s%s {", vis(e.IsPub || isExported(e.Decorators)), e.Name, typeParams(e.TypeParams))
	g.indent++
	for _, v := range e.Variants {
		switch v.Kind {
		case ast.VariantTuple:
			g.line("%s(%s),", v.Name, g.typeList(v.Types))
		case ast.VariantStruct:
			fields := make([]string, 0, len(v.Fields))
			for _, f := range v.Fields {
				fields = append(fields, f.Name+": "+g.rustType(f.Type))
			}
			g.line("%s { %s },", v.Name, strings.Join(fields, ", "))
		default:
			g.line("%s,", v.Name)
		}
	}
	g.indent--
	g.line("}")
}

func (g *Generator) traitDecl(t *ast.TraitDecl) {
	g.docComment(t.DocComment)
	g.attributes(t.Decorators)
	head := vis(t.IsPub) + "trait " + t.Name + typeParams(t.Generics)
	if len(t.Supertraits) > 0 {
		head += ": " + boundList(t.Supertraits)
	}
	g.line("%s {", head)
	g.indent++
	for _, at := range t.AssociatedTypes {
		g.line("type %s;", at.Name)
	}
	for i, m := range t.Methods {
		if i > 0 || len(t.AssociatedTypes) > 0 {
			g.blank()
		}
		if m.HasBody {
			g.function(m)
			continue
		}
		restore := g.enterFunction(m)
		g.docComment(m.DocComment)
		g.line("%s;", g.signature(m, m.IsAsync))
		restore()
	}
	g.indent--
	g.line("}")
}

func (g *Generator) implBlock(impl *ast.ImplBlock) {
	prevType, prevTrait := g.implType, g.inTraitImpl
	g.implType, g.inTraitImpl = impl.TypeName, impl.TraitName != ""
	defer func() { g.implType, g.inTraitImpl = prevType, prevTrait }()

	g.attributes(impl.Decorators)
	target := pathName(impl.TypeName)
	if len(impl.TypeArgs) > 0 {
		target += "<" + g.typeList(impl.TypeArgs) + ">"
	}
	head := "impl" + typeParams(impl.TypeParams) + " "
	if impl.TraitName != "" {
		trait := pathName(impl.TraitName)
		if len(impl.TraitTypeArgs) > 0 {
			trait += "<" + g.typeList(impl.TraitTypeArgs) + ">"
		}
		head += trait + " for "
	}
	head += target + whereClause(impl.WhereClause)
	g.line("%s {", head)
	g.indent++
	for _, at := range impl.AssociatedTypes {
		g.line("type %s = %s;", at.Name, g.rustType(at.Concrete))
	}
	for i, fn := range impl.Functions {
		if i > 0 || len(impl.AssociatedTypes) > 0 {
			g.blank()
		}
		g.function(fn)
	}
	g.indent--
	g.line("}")
}

// useDecl rewrites a source import path into a Rust use declaration.
// Relative paths resolve against the crate root (./) or the parent module (../).
func (g *Generator) useDecl(path []string, alias string, pub bool) {
	if len(path) == 0 {
		return
	}
	segs := make([]string, 0, len(path)+1)
	for i, seg := range path {
		if i == 0 {
			switch {
			case strings.HasPrefix(seg, "./"):
				segs = append(segs, "crate")
				seg = strings.TrimPrefix(seg, "./")
			case strings.HasPrefix(seg, "../"):
				for strings.HasPrefix(seg, "../") {
					segs = append(segs, "super")
					seg = strings.TrimPrefix(seg, "../")
				}
			}
		}
		seg = strings.ReplaceAll(seg, "/", "::")
		seg = strings.ReplaceAll(seg, ".", "::")
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	s := vis(pub) + "use " + strings.Join(segs, "::")
	if alias != "" {
		s += " as " + alias
	}
	g.line("%s;", s)
}

func (g *Generator) modDecl(m *ast.ModDecl) {
	if m.IsExternal {
		g.line("%smod %s;", vis(m.IsPublic), m.Name)
		return
	}
	g.line("%smod %s {", vis(m.IsPublic), m.Name)
	g.indent++
	g.items(m.Items)
	g.indent--
	g.line("}")
}

// constItem emits const and static items. A missing type is inferred from
// a literal initializer.
func (g *Generator) constItem(node ast.Node, kind string, pub, mutable bool, name string, t ast.Type, value ast.Expression) {
	ty := ""
	if t != nil {
		ty = g.rustType(t)
	} else if lit, ok := value.(*ast.Literal); ok {
		ty = literalType(lit)
	}
	if ty == "" {
		g.fail(node, kind, "`%s` needs a type annotation", name)
		return
	}
	mut := ""
	if mutable {
		mut = "mut "
	}
	val := g.expr(value)
	if lit, ok := value.(*ast.Literal); ok && lit.Kind == ast.LitString && ty == "String" {
		ty = "&str"
	}
	g.line("%s%s %s%s: %s = %s;", vis(pub), kind, mut, name, ty, val)
}

func literalType(lit *ast.Literal) string {
	switch lit.Kind {
	case ast.LitInt:
		return "i64"
	case ast.LitFloat:
		return "f64"
	case ast.LitBool:
		return "bool"
	case ast.LitChar:
		return "char"
	case ast.LitString:
		return "&str"
	}
	return ""
}

// boundAlias emits a trait bound alias as a trait with a blanket impl
func (g *Generator) boundAlias(b *ast.BoundAlias) {
	bounds := boundList(b.Traits)
	g.line("pub trait %s: %s {}", b.Name, bounds)
	g.line("impl<T: %s> %s for T {}", bounds, b.Name)
}
