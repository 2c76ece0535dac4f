package rust

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// traitSet is a bitmask of derivable standard traits
type traitSet uint8

const (
	traitDebug traitSet = 1 << iota
	traitClone
	traitCopy
	traitPartialEq
	traitEq
	traitHash
	traitDefault

	allTraits = traitDebug | traitClone | traitCopy | traitPartialEq | traitEq | traitHash | traitDefault
)

var traitOrder = []struct {
	bit  traitSet
	name string
}{
	{traitDebug, "Debug"},
	{traitClone, "Clone"},
	{traitCopy, "Copy"},
	{traitPartialEq, "PartialEq"},
	{traitEq, "Eq"},
	{traitHash, "Hash"},
	{traitDefault, "Default"},
}

func (s traitSet) has(t traitSet) bool { return s&t == t }

func (s traitSet) names() []string {
	var out []string
	for _, t := range traitOrder {
		if s.has(t.bit) {
			out = append(out, t.name)
		}
	}
	return out
}

// fieldTraits returns what a field of type t allows its container to derive
func (g *Generator) fieldTraits(t ast.Type) traitSet {
	switch ty := t.(type) {
	case *ast.PrimitiveType:
		switch ty.Kind {
		case ast.TypeFloat:
			return allTraits &^ (traitEq | traitHash)
		case ast.TypeString:
			return allTraits &^ traitCopy
		}
		return allTraits
	case *ast.CustomType:
		switch ty.Name {
		case "f32", "f64":
			return allTraits &^ (traitEq | traitHash)
		case "String":
			return allTraits &^ traitCopy
		case "char", "bool", "usize":
			return allTraits
		}
		if intScalars[ty.Name] {
			return allTraits
		}
		if set, ok := g.derives[ty.Name]; ok {
			return set
		}
		return traitDebug | traitClone
	case *ast.VecType:
		return (g.fieldTraits(ty.Elem) | traitDefault) &^ traitCopy
	case *ast.OptionType:
		return (g.fieldTraits(ty.Inner) | traitDefault) &^ traitCopy
	case *ast.ResultType:
		return g.fieldTraits(ty.Ok) & g.fieldTraits(ty.Err) &^ (traitCopy | traitDefault)
	case *ast.ParameterizedType:
		switch ty.Base {
		case "HashMap", "std::collections::HashMap", "std.collections.HashMap":
			set := traitDebug | traitClone | traitPartialEq | traitEq | traitDefault
			for _, a := range ty.Args {
				set &= g.fieldTraits(a) | traitDefault
			}
			return set
		case "Box":
			set := traitDebug | traitClone | traitPartialEq | traitEq | traitHash | traitDefault
			for _, a := range ty.Args {
				set &= g.fieldTraits(a)
			}
			return set
		}
		return traitDebug | traitClone
	case *ast.TupleType:
		set := allTraits
		for _, e := range ty.Elems {
			set &= g.fieldTraits(e)
		}
		return set
	case *ast.ArrayType:
		return g.fieldTraits(ty.Elem)
	case *ast.ReferenceType:
		return (g.fieldTraits(ty.Inner) | traitCopy | traitClone) &^ traitDefault
	case *ast.MutableReferenceType:
		return traitDebug
	case *ast.GenericType:
		return traitDebug | traitClone
	}
	return traitDebug | traitClone
}

// inferAllDerives computes the derive set of every struct and enum, iterating
// until user types that contain each other settle
func (g *Generator) inferAllDerives() {
	for name := range g.structs {
		g.derives[name] = allTraits
	}
	for name := range g.enums {
		g.derives[name] = allTraits
	}
	for changed := true; changed; {
		changed = false
		for name, s := range g.structs {
			set := traitDebug | traitClone | g.structFieldTraits(s)
			if set != g.derives[name] {
				g.derives[name] = set
				changed = true
			}
		}
		for name, e := range g.enums {
			set := traitDebug | traitClone | g.enumTraits(e)
			if set != g.derives[name] {
				g.derives[name] = set
				changed = true
			}
		}
	}
}

func (g *Generator) structFieldTraits(s *ast.StructDecl) traitSet {
	set := allTraits
	for _, f := range s.Fields {
		set &= g.fieldTraits(f.Type)
	}
	if !g.res.CopyTypes[s.Name] && ast.FindDecorator(s.Decorators, "auto") == nil {
		set &^= traitCopy
	}
	return set
}

func (g *Generator) enumTraits(e *ast.EnumDecl) traitSet {
	set := allTraits &^ traitDefault
	for _, v := range e.Variants {
		for _, t := range v.Types {
			set &= g.fieldTraits(t)
		}
		for _, f := range v.Fields {
			set &= g.fieldTraits(f.Type)
		}
	}
	if !e.IsFieldless() && !g.res.CopyTypes[e.Name] {
		set &^= traitCopy
	}
	return set
}

// deriveLine renders the #[derive] attribute for a struct or enum, honoring
// @auto and explicit @derive(...) decorators
func (g *Generator) deriveLine(name string, decorators []*ast.Decorator) string {
	if d := ast.FindDecorator(decorators, "derive"); d != nil {
		return "#[derive(" + strings.Join(decoratorIdents(d), ", ") + ")]"
	}
	if d := ast.FindDecorator(decorators, "auto"); d != nil && len(d.Arguments) > 0 {
		return "#[derive(" + strings.Join(decoratorIdents(d), ", ") + ")]"
	}
	set := g.derives[name]
	if !g.res.CopyTypes[name] {
		set &^= traitCopy
	}
	if set == 0 {
		return ""
	}
	return "#[derive(" + strings.Join(set.names(), ", ") + ")]"
}

func decoratorIdents(d *ast.Decorator) []string {
	out := make([]string, 0, len(d.Arguments))
	for _, a := range d.Arguments {
		if id, ok := a.Value.(*ast.Identifier); ok {
			out = append(out, pathName(id.Name))
		} else if a.Value != nil {
			out = append(out, a.Value.String())
		}
	}
	return out
}

var exportAttrs = map[CompileTarget]string{
	TargetWasm:   "#[wasm_bindgen]",
	TargetNode:   "#[neon::export]",
	TargetPython: "#[pyfunction]",
	TargetC:      "#[no_mangle]",
}

// consumedDecorators never appear verbatim in the output
var consumedDecorators = map[string]bool{
	"export": true,
	"test":   true,
	"async":  true,
	"auto":   true,
	"derive": true,
}

// attributes writes the Rust attributes for an item's decorators
func (g *Generator) attributes(decorators []*ast.Decorator) {
	for _, d := range decorators {
		switch d.Name {
		case "export":
			if g.cfg.Target == TargetWasm {
				g.needsWasm = true
			}
			g.line(exportAttrs[g.cfg.Target])
		case "test":
			g.line("#[test]")
		}
		if consumedDecorators[d.Name] {
			continue
		}
		g.line(g.passthrough(d))
	}
}

func (g *Generator) passthrough(d *ast.Decorator) string {
	if len(d.Arguments) == 0 {
		return "#[" + d.Name + "]"
	}
	args := make([]string, 0, len(d.Arguments))
	for _, a := range d.Arguments {
		v := g.expr(a.Value)
		if a.Key != "" {
			v = a.Key + " = " + v
		}
		args = append(args, v)
	}
	return "#[" + d.Name + "(" + strings.Join(args, ", ") + ")]"
}
