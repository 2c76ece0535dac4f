package ast

import (
	"strings"
)

// Type represents all type expressions
type Type interface {
	String() string
	typeNode()
}

// PrimitiveKind enumerates the built-in scalar types of the language
type PrimitiveKind int

const (
	TypeInt PrimitiveKind = iota
	TypeInt32
	TypeUint
	TypeFloat
	TypeBool
	TypeString
)

var primitiveNames = map[PrimitiveKind]string{
	TypeInt:    "int",
	TypeInt32:  "int32",
	TypeUint:   "uint",
	TypeFloat:  "float",
	TypeBool:   "bool",
	TypeString: "string",
}

// LookupPrimitive maps a source type name to its primitive kind
func LookupPrimitive(name string) (PrimitiveKind, bool) {
	for kind, n := range primitiveNames {
		if n == name {
			return kind, true
		}
	}
	return 0, false
}

// PrimitiveType is int, int32, uint, float, bool or string
type PrimitiveType struct {
	Kind PrimitiveKind
}

func (t *PrimitiveType) typeNode()      {}
func (t *PrimitiveType) String() string { return primitiveNames[t.Kind] }

// CustomType is a named type such as a struct, enum, or a Rust type like usize
type CustomType struct {
	Name string
}

func (t *CustomType) typeNode()      {}
func (t *CustomType) String() string { return t.Name }

// GenericType is a reference to a type parameter in scope
type GenericType struct {
	Name string
}

func (t *GenericType) typeNode()      {}
func (t *GenericType) String() string { return t.Name }

// ParameterizedType is Name<Args> for any name other than Vec, Option and Result
type ParameterizedType struct {
	Base string
	Args []Type
}

func (t *ParameterizedType) typeNode()      {}
func (t *ParameterizedType) String() string { return t.Base + "<" + joinTypes(t.Args) + ">" }

// OptionType is Option<T>
type OptionType struct {
	Inner Type
}

func (t *OptionType) typeNode()      {}
func (t *OptionType) String() string { return "Option<" + t.Inner.String() + ">" }

// ResultType is Result<T, E>
type ResultType struct {
	Ok  Type
	Err Type
}

func (t *ResultType) typeNode()      {}
func (t *ResultType) String() string { return "Result<" + t.Ok.String() + ", " + t.Err.String() + ">" }

// VecType is Vec<T>
type VecType struct {
	Elem Type
}

func (t *VecType) typeNode()      {}
func (t *VecType) String() string { return "Vec<" + t.Elem.String() + ">" }

// ArrayType is [T; N]; an empty Size denotes an unsized slice [T]
type ArrayType struct {
	Elem Type
	Size string
}

func (t *ArrayType) typeNode() {}
func (t *ArrayType) String() string {
	if t.Size == "" {
		return "[" + t.Elem.String() + "]"
	}
	return "[" + t.Elem.String() + "; " + t.Size + "]"
}

// TupleType is (A, B, ...); the empty tuple is the unit type
type TupleType struct {
	Elems []Type
}

func (t *TupleType) typeNode() {}
func (t *TupleType) String() string {
	if len(t.Elems) == 1 {
		return "(" + t.Elems[0].String() + ",)"
	}
	return "(" + joinTypes(t.Elems) + ")"
}

// ReferenceType is &T
type ReferenceType struct {
	Inner Type
}

func (t *ReferenceType) typeNode()      {}
func (t *ReferenceType) String() string { return "&" + t.Inner.String() }

// MutableReferenceType is &mut T
type MutableReferenceType struct {
	Inner Type
}

func (t *MutableReferenceType) typeNode()      {}
func (t *MutableReferenceType) String() string { return "&mut " + t.Inner.String() }

// RawPointerType is *const T or *mut T
type RawPointerType struct {
	Mutable bool
	Pointee Type
}

func (t *RawPointerType) typeNode() {}
func (t *RawPointerType) String() string {
	if t.Mutable {
		return "*mut " + t.Pointee.String()
	}
	return "*const " + t.Pointee.String()
}

// AssociatedType is a projection such as T::Output or Self::Item
type AssociatedType struct {
	Base string
	Name string
}

func (t *AssociatedType) typeNode()      {}
func (t *AssociatedType) String() string { return t.Base + "::" + t.Name }

// TraitObjectType is dyn Trait (explicit dynamic dispatch)
type TraitObjectType struct {
	Name string
}

func (t *TraitObjectType) typeNode()      {}
func (t *TraitObjectType) String() string { return "dyn " + t.Name }

// ImplTraitType is `trait Trait` in type position; the backend picks the dispatch
type ImplTraitType struct {
	Name string
}

func (t *ImplTraitType) typeNode()      {}
func (t *ImplTraitType) String() string { return "impl " + t.Name }

// FunctionPointerType is fn(A, B) -> R
type FunctionPointerType struct {
	Params []Type
	Return Type
}

func (t *FunctionPointerType) typeNode() {}
func (t *FunctionPointerType) String() string {
	s := "fn(" + joinTypes(t.Params) + ")"
	if t.Return != nil {
		s += " -> " + t.Return.String()
	}
	return s
}

// InferType is the `_` placeholder
type InferType struct{}

func (t *InferType) typeNode()      {}
func (t *InferType) String() string { return "_" }

func joinTypes(types []Type) string {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, typeString(t))
	}
	return strings.Join(parts, ", ")
}

// IsReference reports whether t is &T or &mut T
func IsReference(t Type) bool {
	switch t.(type) {
	case *ReferenceType, *MutableReferenceType:
		return true
	}
	return false
}

// IsUnit reports whether t is absent or the empty tuple
func IsUnit(t Type) bool {
	if t == nil {
		return true
	}
	tt, ok := t.(*TupleType)
	return ok && len(tt.Elems) == 0
}

// Named returns the base name of a named type (custom, generic or parameterized), or "".
func Named(t Type) string {
	switch tt := t.(type) {
	case *CustomType:
		return tt.Name
	case *GenericType:
		return tt.Name
	case *ParameterizedType:
		return tt.Base
	}
	return ""
}
