package rust

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/ast"
)

var primitiveTypes = map[ast.PrimitiveKind]string{
	ast.TypeInt:    "i64",
	ast.TypeInt32:  "i32",
	ast.TypeUint:   "u64",
	ast.TypeFloat:  "f64",
	ast.TypeBool:   "bool",
	ast.TypeString: "String",
}

// rustType renders t in type position
func (g *Generator) rustType(t ast.Type) string {
	switch ty := t.(type) {
	case nil:
		return "()"
	case *ast.PrimitiveType:
		return primitiveTypes[ty.Kind]
	case *ast.CustomType:
		return pathName(ty.Name)
	case *ast.GenericType:
		return ty.Name
	case *ast.ParameterizedType:
		return pathName(ty.Base) + "<" + g.typeList(ty.Args) + ">"
	case *ast.OptionType:
		return "Option<" + g.rustType(ty.Inner) + ">"
	case *ast.ResultType:
		return "Result<" + g.rustType(ty.Ok) + ", " + g.rustType(ty.Err) + ">"
	case *ast.VecType:
		return "Vec<" + g.rustType(ty.Elem) + ">"
	case *ast.ArrayType:
		if ty.Size == "" {
			return "[" + g.rustType(ty.Elem) + "]"
		}
		return "[" + g.rustType(ty.Elem) + "; " + ty.Size + "]"
	case *ast.TupleType:
		if len(ty.Elems) == 1 {
			return "(" + g.rustType(ty.Elems[0]) + ",)"
		}
		return "(" + g.typeList(ty.Elems) + ")"
	case *ast.ReferenceType:
		return "&" + g.borrowedType(ty.Inner)
	case *ast.MutableReferenceType:
		if obj, ok := ty.Inner.(*ast.TraitObjectType); ok {
			return "&mut dyn " + pathName(obj.Name)
		}
		return "&mut " + g.rustType(ty.Inner)
	case *ast.RawPointerType:
		if ty.Mutable {
			return "*mut " + g.rustType(ty.Pointee)
		}
		return "*const " + g.rustType(ty.Pointee)
	case *ast.AssociatedType:
		return pathName(ty.Base) + "::" + ty.Name
	case *ast.TraitObjectType:
		return "Box<dyn " + pathName(ty.Name) + ">"
	case *ast.ImplTraitType:
		return "impl " + pathName(ty.Name)
	case *ast.FunctionPointerType:
		s := "fn(" + g.typeList(ty.Params) + ")"
		if ty.Return != nil {
			s += " -> " + g.rustType(ty.Return)
		}
		return s
	case *ast.InferType:
		return "_"
	}
	return t.String()
}

// borrowedType renders the target of a shared reference. Vectors borrow as
// slices and strings as str.
func (g *Generator) borrowedType(t ast.Type) string {
	switch ty := t.(type) {
	case *ast.VecType:
		return "[" + g.rustType(ty.Elem) + "]"
	case *ast.PrimitiveType:
		if ty.Kind == ast.TypeString {
			return "str"
		}
	case *ast.TraitObjectType:
		return "dyn " + pathName(ty.Name)
	}
	return g.rustType(t)
}

func (g *Generator) typeList(types []ast.Type) string {
	parts := make([]string, 0, len(types))
	for _, t := range types {
		parts = append(parts, g.rustType(t))
	}
	return strings.Join(parts, ", ")
}

// paramType renders a parameter's type for the chosen ownership mode
func (g *Generator) paramType(t ast.Type, mode analyzer.OwnershipMode) string {
	switch t.(type) {
	case *ast.ReferenceType, *ast.MutableReferenceType:
		return g.rustType(t)
	}
	switch mode {
	case analyzer.Borrowed:
		if g.res.IsCopy(t) {
			return g.rustType(t)
		}
		return "&" + g.borrowedType(t)
	case analyzer.MutBorrowed:
		return "&mut " + g.rustType(t)
	}
	return g.rustType(t)
}

func typeParams(params []ast.TypeParam) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if len(p.Bounds) == 0 {
			parts = append(parts, p.Name)
			continue
		}
		parts = append(parts, p.Name+": "+boundList(p.Bounds))
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func whereClause(preds []ast.WherePredicate) string {
	if len(preds) == 0 {
		return ""
	}
	parts := make([]string, 0, len(preds))
	for _, p := range preds {
		parts = append(parts, pathName(p.TypePath)+": "+boundList(p.Bounds))
	}
	return " where " + strings.Join(parts, ", ")
}

func boundList(bounds []string) string {
	out := make([]string, 0, len(bounds))
	for _, b := range bounds {
		out = append(out, pathName(b))
	}
	return strings.Join(out, " + ")
}

// derefType strips shared and mutable references
func derefType(t ast.Type) ast.Type {
	for {
		switch ty := t.(type) {
		case *ast.ReferenceType:
			t = ty.Inner
		case *ast.MutableReferenceType:
			t = ty.Inner
		default:
			return t
		}
	}
}

// typeName returns the nominal name used for method lookup, or ""
func typeName(t ast.Type) string {
	switch ty := derefType(t).(type) {
	case *ast.CustomType:
		return ty.Name
	case *ast.ParameterizedType:
		return ty.Base
	case *ast.VecType:
		return "Vec"
	case *ast.OptionType:
		return "Option"
	case *ast.ResultType:
		return "Result"
	case *ast.PrimitiveType:
		if ty.Kind == ast.TypeString {
			return "String"
		}
	}
	return ""
}

func isStringType(t ast.Type) bool {
	switch ty := derefType(t).(type) {
	case *ast.PrimitiveType:
		return ty.Kind == ast.TypeString
	case *ast.CustomType:
		return ty.Name == "String" || ty.Name == "str"
	}
	return false
}

var intScalars = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true,
}

// isNonUsizeInt reports whether t is an integer type other than usize
func isNonUsizeInt(t ast.Type) bool {
	switch ty := t.(type) {
	case *ast.PrimitiveType:
		return ty.Kind == ast.TypeInt || ty.Kind == ast.TypeInt32 || ty.Kind == ast.TypeUint
	case *ast.CustomType:
		return intScalars[ty.Name]
	}
	return false
}

func isUsizeType(t ast.Type) bool {
	ct, ok := t.(*ast.CustomType)
	return ok && ct.Name == "usize"
}
