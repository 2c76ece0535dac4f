// Package analyzer infers how each function parameter is passed in the
// generated code and records the result in a signature registry consulted
// by the code generators at every call site.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/position"
)

// Error reports a failed analysis. Analysis stops at the first error.
type Error struct {
	Function string
	Message  string
	Span     position.Span
}

func (e *Error) Error() string {
	return fmt.Sprintf("in function `%s`: %s", e.Function, e.Message)
}

// AnalyzedFunction pairs a declaration with the ownership chosen for each
// of its parameters, keyed by parameter name ("self" for the receiver)
type AnalyzedFunction struct {
	Decl              *ast.FunctionDecl
	Key               string
	InferredOwnership map[string]OwnershipMode
}

// Ownership returns the mode chosen for the named parameter
func (f *AnalyzedFunction) Ownership(name string) (OwnershipMode, bool) {
	if f == nil {
		return Owned, false
	}
	mode, ok := f.InferredOwnership[name]
	return mode, ok
}

// Result is the outcome of analyzing one program
type Result struct {
	Functions []*AnalyzedFunction
	Registry  *SignatureRegistry
	CopyTypes map[string]bool

	byDecl map[*ast.FunctionDecl]*AnalyzedFunction
}

// Function returns the analysis of decl, or nil if it was not analyzed
func (r *Result) Function(decl *ast.FunctionDecl) *AnalyzedFunction {
	return r.byDecl[decl]
}

// IsCopy reports whether values of t are Copy, including user types known
// to be Copy in this program
func (r *Result) IsCopy(t ast.Type) bool {
	return IsCopyType(t, r.CopyTypes)
}

// Analyzer performs ownership inference over programs. An Analyzer may be
// reused for several programs; trait declarations seen in one program stay
// available for impl blocks in the next.
type Analyzer struct {
	base      *SignatureRegistry
	traits    map[string]*ast.TraitDecl
	copyTypes map[string]bool
}

// New creates an analyzer whose registries start as copies of base, which
// may be nil
func New(base *SignatureRegistry) *Analyzer {
	a := &Analyzer{
		base:   base,
		traits: make(map[string]*ast.TraitDecl),
	}
	a.registerOperatorTraits()
	return a
}

// registerOperatorTraits pre-declares the binary operator traits so impl
// blocks for them take their parameter modes from a known declaration
func (a *Analyzer) registerOperatorTraits() {
	ops := map[string]string{"Add": "add", "Sub": "sub", "Mul": "mul", "Div": "div", "Rem": "rem"}
	for trait, method := range ops {
		a.traits[trait] = &ast.TraitDecl{
			Name:            trait,
			Generics:        []ast.TypeParam{{Name: "Rhs"}},
			AssociatedTypes: []ast.AssociatedTypeDecl{{Name: "Output"}},
			Methods: []*ast.FunctionDecl{{
				Name: method,
				Parameters: []*ast.Parameter{
					{Name: "self", Type: &ast.CustomType{Name: "Self"}, Ownership: ast.OwnershipOwned},
					{Name: "rhs", Type: &ast.CustomType{Name: "Rhs"}, Ownership: ast.OwnershipOwned},
				},
				ReturnType: &ast.AssociatedType{Base: "Self", Name: "Output"},
				ParentType: trait,
			}},
		}
	}
}

// RegisterTraits makes the trait declarations of another program, such as
// an imported module, known to later analyses
func (a *Analyzer) RegisterTraits(program *ast.Program) {
	ast.Inspect(program, func(n ast.Node) bool {
		if t, ok := n.(*ast.TraitDecl); ok {
			a.traits[t.Name] = t
		}
		return true
	})
}

// Analyze infers parameter ownership for every function, method and trait
// default method of program and builds the signature registry
func (a *Analyzer) Analyze(program *ast.Program) (*Result, error) {
	a.copyTypes = collectCopyTypes(program)
	a.RegisterTraits(program)

	res := &Result{
		Registry:  a.base.Clone(),
		CopyTypes: a.copyTypes,
		byDecl:    make(map[*ast.FunctionDecl]*AnalyzedFunction),
	}
	if err := a.analyzeItems(program.Items, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (a *Analyzer) analyzeItems(items []ast.Item, res *Result) error {
	for _, item := range items {
		switch it := item.(type) {
		case *ast.FunctionDecl:
			fn, err := a.analyzeFunction(it, it.Name)
			if err != nil {
				return err
			}
			a.record(res, fn)
			res.Registry.Add(fn.Key, a.buildSignature(fn))

		case *ast.ImplBlock:
			for _, decl := range it.Functions {
				fn, err := a.analyzeFunction(decl, it.TypeName+"::"+decl.Name)
				if err != nil {
					return err
				}
				if it.TraitName != "" {
					a.applyTraitModes(fn, it.TraitName)
				}
				a.record(res, fn)
				sig := a.buildSignature(fn)
				res.Registry.Add(fn.Key, sig)
				res.Registry.addIfAbsent(decl.Name, sig)
			}

		case *ast.TraitDecl:
			for _, decl := range it.Methods {
				fn, err := a.analyzeFunction(decl, it.Name+"::"+decl.Name)
				if err != nil {
					return err
				}
				a.record(res, fn)
				res.Registry.Add(fn.Key, a.buildSignature(fn))
			}

		case *ast.ModDecl:
			if err := a.analyzeItems(it.Items, res); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *Analyzer) record(res *Result, fn *AnalyzedFunction) {
	res.Functions = append(res.Functions, fn)
	res.byDecl[fn.Decl] = fn
}

// analyzeFunction chooses a mode for every parameter of decl
func (a *Analyzer) analyzeFunction(decl *ast.FunctionDecl, key string) (*AnalyzedFunction, error) {
	fn := &AnalyzedFunction{
		Decl:              decl,
		Key:               key,
		InferredOwnership: make(map[string]OwnershipMode, len(decl.Parameters)),
	}

	for i, param := range decl.Parameters {
		if param.IsSelf() {
			if decl.ParentType == "" || i != 0 {
				return nil, &Error{
					Function: decl.Name,
					Message:  "`self` is only allowed as the first parameter of a method",
					Span:     param.Span,
				}
			}
			fn.InferredOwnership["self"] = a.receiverMode(decl, param)
			continue
		}
		if param.Name != "_" {
			if _, dup := fn.InferredOwnership[param.Name]; dup {
				return nil, &Error{
					Function: decl.Name,
					Message:  fmt.Sprintf("parameter `%s` is declared more than once", param.Name),
					Span:     param.Span,
				}
			}
		}
		fn.InferredOwnership[param.Name] = a.parameterMode(decl, param)
	}

	return fn, nil
}

// parameterMode applies the explicit hint or runs the inference cascade
func (a *Analyzer) parameterMode(decl *ast.FunctionDecl, param *ast.Parameter) OwnershipMode {
	switch param.Ownership {
	case ast.OwnershipOwned:
		return Owned
	case ast.OwnershipRef:
		return Borrowed
	case ast.OwnershipMut:
		return MutBorrowed
	}
	if param.Pattern != nil {
		// destructured parameters bind by value
		return Owned
	}
	if !decl.HasBody {
		if IsCopyType(param.Type, a.copyTypes) {
			return Owned
		}
		if decl.IsExtern {
			return Owned
		}
		return Borrowed
	}

	mode := inferOwnership(param.Name, decl)
	if mode != MutBorrowed && IsCopyType(param.Type, a.copyTypes) {
		return Owned
	}
	return mode
}

// receiverMode maps `&self` and `&mut self` directly. A bare `self` is
// inferred: methods returning Self consume the receiver, methods writing
// fields borrow it mutably, methods reading fields borrow it.
func (a *Analyzer) receiverMode(decl *ast.FunctionDecl, param *ast.Parameter) OwnershipMode {
	switch param.Ownership {
	case ast.OwnershipRef:
		return Borrowed
	case ast.OwnershipMut:
		return MutBorrowed
	}
	if param.IsMutable || !decl.HasBody {
		return Owned
	}
	switch {
	case returnsSelfType(decl):
		return Owned
	case isMutated("self", decl.Body):
		return MutBorrowed
	case usesReceiver(decl.Body):
		return Borrowed
	}
	return Owned
}

// applyTraitModes overrides the inferred modes of a trait impl method with
// those of the trait declaration, matched by position
func (a *Analyzer) applyTraitModes(fn *AnalyzedFunction, traitName string) {
	if i := strings.LastIndex(traitName, "::"); i >= 0 {
		traitName = traitName[i+2:]
	}
	trait, ok := a.traits[traitName]
	if !ok {
		return
	}
	method := trait.FindMethod(fn.Decl.Name)
	if method == nil {
		return
	}
	for i, tp := range method.Parameters {
		if i >= len(fn.Decl.Parameters) {
			break
		}
		name := fn.Decl.Parameters[i].Name
		switch tp.Ownership {
		case ast.OwnershipOwned:
			fn.InferredOwnership[name] = Owned
		case ast.OwnershipMut:
			fn.InferredOwnership[name] = MutBorrowed
		default:
			fn.InferredOwnership[name] = Borrowed
		}
	}
}

// buildSignature assembles the registry entry. Declared references win over
// inference; Copy parameters are passed by value unless mutated.
func (a *Analyzer) buildSignature(fn *AnalyzedFunction) *FunctionSignature {
	decl := fn.Decl
	sig := &FunctionSignature{
		Name:            fn.Key,
		ParamTypes:      make([]ast.Type, 0, len(decl.Parameters)),
		ParamOwnership:  make([]OwnershipMode, 0, len(decl.Parameters)),
		ReturnType:      decl.ReturnType,
		ReturnOwnership: Owned,
		HasSelfReceiver: decl.SelfParam() != nil,
		IsExtern:        decl.IsExtern,
	}

	for _, param := range decl.Parameters {
		sig.ParamTypes = append(sig.ParamTypes, param.Type)

		var mode OwnershipMode
		switch param.Type.(type) {
		case *ast.ReferenceType:
			mode = Borrowed
		case *ast.MutableReferenceType:
			mode = MutBorrowed
		default:
			mode, _ = fn.Ownership(param.Name)
			if !param.IsSelf() && mode != MutBorrowed && IsCopyType(param.Type, a.copyTypes) {
				mode = Owned
			}
		}
		sig.ParamOwnership = append(sig.ParamOwnership, mode)
	}
	return sig
}

// collectCopyTypes finds the user types that are Copy: fieldless enums,
// structs deriving Copy explicitly, and @auto structs whose fields are all Copy
func collectCopyTypes(program *ast.Program) map[string]bool {
	copyTypes := make(map[string]bool)
	var autoStructs []*ast.StructDecl

	ast.Inspect(program, func(n ast.Node) bool {
		switch d := n.(type) {
		case *ast.EnumDecl:
			if d.IsFieldless() {
				copyTypes[d.Name] = true
			}
		case *ast.StructDecl:
			if derivesCopy(d.Decorators) {
				copyTypes[d.Name] = true
			} else if dec := ast.FindDecorator(d.Decorators, "auto"); dec != nil && len(dec.Arguments) == 0 {
				autoStructs = append(autoStructs, d)
			}
		}
		return true
	})

	// @auto structs may contain each other; iterate to a fixed point
	for changed := true; changed; {
		changed = false
		for _, s := range autoStructs {
			if copyTypes[s.Name] {
				continue
			}
			allCopy := true
			for _, f := range s.Fields {
				if !IsCopyType(f.Type, copyTypes) {
					allCopy = false
					break
				}
			}
			if allCopy {
				copyTypes[s.Name] = true
				changed = true
			}
		}
	}
	return copyTypes
}

func derivesCopy(decorators []*ast.Decorator) bool {
	for _, d := range decorators {
		if d.Name != "derive" && d.Name != "auto" {
			continue
		}
		for _, arg := range d.Arguments {
			if id, ok := arg.Value.(*ast.Identifier); ok && id.Name == "Copy" {
				return true
			}
		}
	}
	return false
}

// copyScalars are the target scalar types that are always Copy
var copyScalars = map[string]bool{
	"i8": true, "i16": true, "i32": true, "i64": true, "i128": true, "isize": true,
	"u8": true, "u16": true, "u32": true, "u64": true, "u128": true, "usize": true,
	"f32": true, "f64": true, "bool": true, "char": true,
}

// IsCopyScalar reports whether name is a built-in Copy scalar
func IsCopyScalar(name string) bool {
	return copyScalars[name]
}

// IsCopyType reports whether values of t are Copy. userCopy names user
// types known to be Copy and may be nil.
func IsCopyType(t ast.Type, userCopy map[string]bool) bool {
	switch ty := t.(type) {
	case *ast.PrimitiveType:
		return ty.Kind != ast.TypeString
	case *ast.CustomType:
		return copyScalars[ty.Name] || userCopy[ty.Name]
	case *ast.ReferenceType:
		return true
	case *ast.TupleType:
		for _, e := range ty.Elems {
			if !IsCopyType(e, userCopy) {
				return false
			}
		}
		return true
	case *ast.ArrayType:
		return ty.Size != "" && IsCopyType(ty.Elem, userCopy)
	case *ast.FunctionPointerType, *ast.RawPointerType:
		return true
	}
	return false
}
