package ast

import (
	"strings"
)

// Pattern represents patterns in let, for, match and parameter positions
type Pattern interface {
	String() string
	patternNode()
}

// WildcardPattern is `_`
type WildcardPattern struct{}

func (p *WildcardPattern) patternNode()   {}
func (p *WildcardPattern) String() string { return "_" }

// IdentifierPattern binds a name, optionally mutable
type IdentifierPattern struct {
	Name    string
	Mutable bool
}

func (p *IdentifierPattern) patternNode() {}
func (p *IdentifierPattern) String() string {
	if p.Mutable {
		return "mut " + p.Name
	}
	return p.Name
}

// ReferencePattern is &inner
type ReferencePattern struct {
	Inner Pattern
}

func (p *ReferencePattern) patternNode()   {}
func (p *ReferencePattern) String() string { return "&" + p.Inner.String() }

// TuplePattern is (a, b, ...)
type TuplePattern struct {
	Elems []Pattern
}

func (p *TuplePattern) patternNode()   {}
func (p *TuplePattern) String() string { return "(" + joinPatterns(p.Elems, ", ") + ")" }

// LiteralPattern matches a literal value
type LiteralPattern struct {
	Value *Literal
}

func (p *LiteralPattern) patternNode()   {}
func (p *LiteralPattern) String() string { return p.Value.String() }

// BindingKind is the shape of an enum variant pattern's payload
type BindingKind int

const (
	BindNone BindingKind = iota
	BindSingle
	BindWildcard
	BindTuple
	BindStruct
)

// FieldPattern is one `name: pattern` entry of a struct-like variant pattern
type FieldPattern struct {
	Name    string
	Pattern Pattern
}

// VariantBinding describes what an enum variant pattern binds
type VariantBinding struct {
	Kind     BindingKind
	Name     string // BindSingle
	Mutable  bool   // BindSingle
	Patterns []Pattern
	Fields   []FieldPattern
	Rest     bool // struct binding ends with ..
}

// EnumVariantPattern matches a qualified or bare variant: Some(x), Color::Red, Shape::Circle { r }
type EnumVariantPattern struct {
	Name    string
	Binding VariantBinding
}

func (p *EnumVariantPattern) patternNode() {}
func (p *EnumVariantPattern) String() string {
	b := p.Binding
	switch b.Kind {
	case BindSingle:
		if b.Mutable {
			return p.Name + "(mut " + b.Name + ")"
		}
		return p.Name + "(" + b.Name + ")"
	case BindWildcard:
		return p.Name + "(_)"
	case BindTuple:
		return p.Name + "(" + joinPatterns(b.Patterns, ", ") + ")"
	case BindStruct:
		fields := make([]string, 0, len(b.Fields)+1)
		for _, f := range b.Fields {
			if ip, ok := f.Pattern.(*IdentifierPattern); ok && ip.Name == f.Name && !ip.Mutable {
				fields = append(fields, f.Name)
			} else {
				fields = append(fields, f.Name+": "+f.Pattern.String())
			}
		}
		if b.Rest {
			fields = append(fields, "..")
		}
		return p.Name + " { " + strings.Join(fields, ", ") + " }"
	default:
		return p.Name
	}
}

// OrPattern is p1 | p2 | ...
type OrPattern struct {
	Alternatives []Pattern
}

func (p *OrPattern) patternNode()   {}
func (p *OrPattern) String() string { return joinPatterns(p.Alternatives, " | ") }

// IsRefutable reports whether p might fail to match: it is, or contains,
// an enum variant, a literal, or an or-pattern.
func IsRefutable(p Pattern) bool {
	switch pp := p.(type) {
	case *EnumVariantPattern, *LiteralPattern, *OrPattern:
		return true
	case *TuplePattern:
		for _, e := range pp.Elems {
			if IsRefutable(e) {
				return true
			}
		}
	case *ReferencePattern:
		return IsRefutable(pp.Inner)
	}
	return false
}

// BoundNames returns the identifiers a pattern introduces, in source order
func BoundNames(p Pattern) []string {
	var names []string
	var visit func(Pattern)
	visit = func(p Pattern) {
		switch pp := p.(type) {
		case *IdentifierPattern:
			names = append(names, pp.Name)
		case *ReferencePattern:
			visit(pp.Inner)
		case *TuplePattern:
			for _, e := range pp.Elems {
				visit(e)
			}
		case *OrPattern:
			if len(pp.Alternatives) > 0 {
				visit(pp.Alternatives[0])
			}
		case *EnumVariantPattern:
			switch pp.Binding.Kind {
			case BindSingle:
				names = append(names, pp.Binding.Name)
			case BindTuple:
				for _, e := range pp.Binding.Patterns {
					visit(e)
				}
			case BindStruct:
				for _, f := range pp.Binding.Fields {
					visit(f.Pattern)
				}
			}
		}
	}
	visit(p)
	return names
}

func joinPatterns(patterns []Pattern, sep string) string {
	parts := make([]string, 0, len(patterns))
	for _, p := range patterns {
		parts = append(parts, p.String())
	}
	return strings.Join(parts, sep)
}
