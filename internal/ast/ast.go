// Package ast defines the Abstract Syntax Tree nodes of the Windjammer language.
//
// Items, statements and expressions carry a position.Span for diagnostics.
// Types and patterns are plain values: the analyzer and code generators
// synthesize them freely (for example the implicit Self type of a receiver).
package ast

import (
	"fmt"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/position"
)

// Node is the base interface for items, statements and expressions
type Node interface {
	// GetSpan returns the source span covered by this node
	GetSpan() position.Span
	// String returns a human-readable representation of the node
	String() string
}

// Item represents a top-level declaration
type Item interface {
	Node
	itemNode()
}

// Statement represents all statement nodes in the AST
type Statement interface {
	Node
	statementNode()
}

// Expression represents all expression nodes in the AST
type Expression interface {
	Node
	expressionNode()
}

// Program is the root of the AST for one source file
type Program struct {
	Span  position.Span
	Items []Item
}

func (p *Program) GetSpan() position.Span { return p.Span }
func (p *Program) String() string {
	parts := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		parts = append(parts, item.String())
	}
	return strings.Join(parts, "\n")
}

// ===== Shared declaration pieces =====

// Decorator is an @name or @name(args) annotation
type Decorator struct {
	Span      position.Span
	Name      string
	Arguments []DecoratorArg
}

// DecoratorArg is one decorator argument; Key is empty for positional arguments
type DecoratorArg struct {
	Key   string
	Value Expression
}

func (d *Decorator) String() string {
	if len(d.Arguments) == 0 {
		return "@" + d.Name
	}
	args := make([]string, 0, len(d.Arguments))
	for _, a := range d.Arguments {
		if a.Key != "" {
			args = append(args, a.Key+": "+a.Value.String())
		} else {
			args = append(args, a.Value.String())
		}
	}
	return fmt.Sprintf("@%s(%s)", d.Name, strings.Join(args, ", "))
}

// FindDecorator returns the first decorator called name, or nil
func FindDecorator(decorators []*Decorator, name string) *Decorator {
	for _, d := range decorators {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// TypeParam is a generic parameter with optional trait bounds: T: Clone + Send
type TypeParam struct {
	Name   string
	Bounds []string
}

func (tp TypeParam) String() string {
	if len(tp.Bounds) == 0 {
		return tp.Name
	}
	return tp.Name + ": " + strings.Join(tp.Bounds, " + ")
}

// WherePredicate joins a type path such as T or T::Output to its bounds
type WherePredicate struct {
	TypePath string
	Bounds   []string
}

// OwnershipHint is the ownership a parameter was declared with
type OwnershipHint int

const (
	OwnershipInferred OwnershipHint = iota
	OwnershipOwned
	OwnershipRef
	OwnershipMut
)

func (o OwnershipHint) String() string {
	switch o {
	case OwnershipOwned:
		return "owned"
	case OwnershipRef:
		return "ref"
	case OwnershipMut:
		return "mut"
	default:
		return "inferred"
	}
}

// Parameter is a function or method parameter
type Parameter struct {
	Span      position.Span
	Name      string
	Pattern   Pattern // destructuring pattern, nil for plain names
	Type      Type
	Ownership OwnershipHint
	IsMutable bool
}

// IsSelf reports whether the parameter is a self receiver
func (p *Parameter) IsSelf() bool {
	return p.Name == "self"
}

func (p *Parameter) String() string {
	if p.IsSelf() {
		switch p.Ownership {
		case OwnershipRef:
			return "&self"
		case OwnershipMut:
			return "&mut self"
		}
		if p.IsMutable {
			return "mut self"
		}
		return "self"
	}
	name := p.Name
	if p.Pattern != nil {
		name = p.Pattern.String()
	}
	if p.IsMutable {
		name = "mut " + name
	}
	if p.Type == nil {
		return name
	}
	return name + ": " + p.Type.String()
}

// ===== Items =====

// FunctionDecl is a function, method, or trait method declaration
type FunctionDecl struct {
	Span        position.Span
	Name        string
	IsPub       bool
	IsExtern    bool
	IsAsync     bool
	TypeParams  []TypeParam
	WhereClause []WherePredicate
	Decorators  []*Decorator
	Parameters  []*Parameter
	ReturnType  Type
	Body        []Statement
	HasBody     bool // false for extern functions and trait methods without a default
	DocComment  string
	ParentType  string // implementing type or trait for methods
}

func (f *FunctionDecl) GetSpan() position.Span { return f.Span }
func (f *FunctionDecl) itemNode()               {}
func (f *FunctionDecl) String() string {
	params := make([]string, 0, len(f.Parameters))
	for _, p := range f.Parameters {
		params = append(params, p.String())
	}
	s := fmt.Sprintf("fn %s%s(%s)", f.Name, typeParamsString(f.TypeParams), strings.Join(params, ", "))
	if f.IsPub {
		s = "pub " + s
	}
	if f.ReturnType != nil {
		s += " -> " + f.ReturnType.String()
	}
	return s
}

// SelfParam returns the self receiver, or nil for free functions
func (f *FunctionDecl) SelfParam() *Parameter {
	if len(f.Parameters) > 0 && f.Parameters[0].IsSelf() {
		return f.Parameters[0]
	}
	return nil
}

// StructField is a named field of a struct or struct-like enum variant
type StructField struct {
	Span       position.Span
	Name       string
	Type       Type
	Decorators []*Decorator
	IsPub      bool
	DocComment string
}

func (f *StructField) String() string {
	s := f.Name + ": " + f.Type.String()
	if f.IsPub {
		s = "pub " + s
	}
	return s
}

// StructDecl is a struct declaration
type StructDecl struct {
	Span        position.Span
	Name        string
	IsPub       bool
	IsUnit      bool
	TypeParams  []TypeParam
	WhereClause []WherePredicate
	Fields      []*StructField
	Decorators  []*Decorator
	DocComment  string
}

func (s *StructDecl) GetSpan() position.Span { return s.Span }
func (s *StructDecl) itemNode()               {}
func (s *StructDecl) String() string {
	fields := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		fields = append(fields, f.String())
	}
	return fmt.Sprintf("struct %s%s { %s }", s.Name, typeParamsString(s.TypeParams), strings.Join(fields, ", "))
}

// VariantKind describes the payload shape of an enum variant
type VariantKind int

const (
	VariantUnit VariantKind = iota
	VariantTuple
	VariantStruct
)

// EnumVariant is a single variant of an enum
type EnumVariant struct {
	Name   string
	Kind   VariantKind
	Types  []Type         // VariantTuple
	Fields []*StructField // VariantStruct
}

func (v *EnumVariant) String() string {
	switch v.Kind {
	case VariantTuple:
		return v.Name + "(" + joinTypes(v.Types) + ")"
	case VariantStruct:
		fields := make([]string, 0, len(v.Fields))
		for _, f := range v.Fields {
			fields = append(fields, f.String())
		}
		return v.Name + " { " + strings.Join(fields, ", ") + " }"
	default:
		return v.Name
	}
}

// EnumDecl is an enum declaration
type EnumDecl struct {
	Span       position.Span
	Name       string
	IsPub      bool
	TypeParams []TypeParam
	Variants   []*EnumVariant
	Decorators []*Decorator
	DocComment string
}

func (e *EnumDecl) GetSpan() position.Span { return e.Span }
func (e *EnumDecl) itemNode()               {}
func (e *EnumDecl) String() string {
	variants := make([]string, 0, len(e.Variants))
	for _, v := range e.Variants {
		variants = append(variants, v.String())
	}
	return fmt.Sprintf("enum %s%s { %s }", e.Name, typeParamsString(e.TypeParams), strings.Join(variants, ", "))
}

// IsFieldless reports whether every variant is a unit variant
func (e *EnumDecl) IsFieldless() bool {
	for _, v := range e.Variants {
		if v.Kind != VariantUnit {
			return false
		}
	}
	return true
}

// AssociatedTypeDecl is `type Name` in a trait or `type Name = T` in an impl
type AssociatedTypeDecl struct {
	Name     string
	Concrete Type
}

// TraitDecl is a trait declaration. Methods without a default body have HasBody false.
type TraitDecl struct {
	Span            position.Span
	Name            string
	IsPub           bool
	Generics        []TypeParam
	Supertraits     []string
	AssociatedTypes []AssociatedTypeDecl
	Methods         []*FunctionDecl
	Decorators      []*Decorator
	DocComment      string
}

func (t *TraitDecl) GetSpan() position.Span { return t.Span }
func (t *TraitDecl) itemNode()               {}
func (t *TraitDecl) String() string {
	s := "trait " + t.Name + typeParamsString(t.Generics)
	if len(t.Supertraits) > 0 {
		s += ": " + strings.Join(t.Supertraits, " + ")
	}
	return s
}

// FindMethod returns the trait method called name, or nil
func (t *TraitDecl) FindMethod(name string) *FunctionDecl {
	for _, m := range t.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ImplBlock is `impl Type { ... }` or `impl Trait for Type { ... }`
type ImplBlock struct {
	Span            position.Span
	TypeName        string
	TypeArgs        []Type
	TypeParams      []TypeParam
	WhereClause     []WherePredicate
	TraitName       string // empty for inherent impls
	TraitTypeArgs   []Type
	AssociatedTypes []AssociatedTypeDecl
	Functions       []*FunctionDecl
	Decorators      []*Decorator
}

func (i *ImplBlock) GetSpan() position.Span { return i.Span }
func (i *ImplBlock) itemNode()               {}
func (i *ImplBlock) String() string {
	target := i.TypeName
	if len(i.TypeArgs) > 0 {
		target += "<" + joinTypes(i.TypeArgs) + ">"
	}
	if i.TraitName == "" {
		return "impl" + typeParamsString(i.TypeParams) + " " + target
	}
	trait := i.TraitName
	if len(i.TraitTypeArgs) > 0 {
		trait += "<" + joinTypes(i.TraitTypeArgs) + ">"
	}
	return "impl" + typeParamsString(i.TypeParams) + " " + trait + " for " + target
}

// UseDecl is an import: use std::collections::HashMap as Map
type UseDecl struct {
	Span  position.Span
	Path  []string
	Alias string
	IsPub bool
}

func (u *UseDecl) GetSpan() position.Span { return u.Span }
func (u *UseDecl) itemNode()               {}
func (u *UseDecl) String() string {
	s := "use " + strings.Join(u.Path, "::")
	if u.Alias != "" {
		s += " as " + u.Alias
	}
	return s
}

// ModDecl is an inline (`mod m { ... }`) or external (`mod m`) module
type ModDecl struct {
	Span       position.Span
	Name       string
	Items      []Item
	IsPublic   bool
	IsExternal bool
}

func (m *ModDecl) GetSpan() position.Span { return m.Span }
func (m *ModDecl) itemNode()               {}
func (m *ModDecl) String() string {
	if m.IsExternal {
		return "mod " + m.Name
	}
	return fmt.Sprintf("mod %s { %d items }", m.Name, len(m.Items))
}

// ConstDecl is a top-level constant
type ConstDecl struct {
	Span  position.Span
	Name  string
	IsPub bool
	Type  Type
	Value Expression
}

func (c *ConstDecl) GetSpan() position.Span { return c.Span }
func (c *ConstDecl) itemNode()               {}
func (c *ConstDecl) String() string {
	return fmt.Sprintf("const %s: %s = %s", c.Name, typeString(c.Type), c.Value)
}

// StaticDecl is a top-level static, optionally mutable
type StaticDecl struct {
	Span    position.Span
	Name    string
	IsPub   bool
	Mutable bool
	Type    Type
	Value   Expression
}

func (s *StaticDecl) GetSpan() position.Span { return s.Span }
func (s *StaticDecl) itemNode()               {}
func (s *StaticDecl) String() string {
	mut := ""
	if s.Mutable {
		mut = "mut "
	}
	return fmt.Sprintf("static %s%s: %s = %s", mut, s.Name, typeString(s.Type), s.Value)
}

// BoundAlias names a set of trait bounds: bound Printable = Display + Debug
type BoundAlias struct {
	Span   position.Span
	Name   string
	Traits []string
}

func (b *BoundAlias) GetSpan() position.Span { return b.Span }
func (b *BoundAlias) itemNode()               {}
func (b *BoundAlias) String() string {
	return "bound " + b.Name + " = " + strings.Join(b.Traits, " + ")
}

func typeParamsString(params []TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.String())
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func typeString(t Type) string {
	if t == nil {
		return "_"
	}
	return t.String()
}
