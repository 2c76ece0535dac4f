package analyzer

import (
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// inferOwnership runs the cascade for one parameter: mutated parameters are
// borrowed mutably, returned or stored parameters are owned, and everything
// else is borrowed. The first matching rule wins.
func inferOwnership(name string, decl *ast.FunctionDecl) OwnershipMode {
	switch {
	case isMutated(name, decl.Body):
		return MutBorrowed
	case isReturned(name, decl):
		return Owned
	case isStored(name, decl.Body):
		return Owned
	}
	return Borrowed
}

// IsMutatingMethod reports whether calling method modifies its receiver
func IsMutatingMethod(method string) bool {
	for _, prefix := range []string{"push", "insert", "remove", "clear"} {
		if strings.HasPrefix(method, prefix) {
			return true
		}
	}
	return strings.HasSuffix(method, "_mut")
}

// isStoringMethod reports whether method takes ownership of its arguments
// to keep them in the receiver
func isStoringMethod(method string) bool {
	return strings.HasPrefix(method, "push") || strings.HasPrefix(method, "insert")
}

// RootName returns the variable at the base of a place expression such as
// a.b[i].c, or "" when e is not a place
func RootName(e ast.Expression) string {
	for {
		switch x := e.(type) {
		case *ast.Identifier:
			return x.Name
		case *ast.FieldAccessExpr:
			e = x.Object
		case *ast.IndexExpr:
			e = x.Object
		case *ast.UnaryExpr:
			if x.Op != ast.UnaryDeref {
				return ""
			}
			e = x.Operand
		default:
			return ""
		}
	}
}

// isMutated reports whether name is assigned through or used as the
// receiver of a mutating method anywhere in body
func isMutated(name string, body []ast.Statement) bool {
	found := false
	visit(body, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.AssignStmt:
			if RootName(x.Target) == name {
				found = true
			}
		case *ast.MethodCallExpr:
			if IsMutatingMethod(x.Method) && RootName(x.Object) == name {
				found = true
			}
		}
		return !found
	})
	return found
}

// isReturned reports whether name flows out of the function through a
// return statement or the tail expression
func isReturned(name string, decl *ast.FunctionDecl) bool {
	found := false
	visit(decl.Body, func(n ast.Node) bool {
		if r, ok := n.(*ast.ReturnStmt); ok && r.Value != nil && ast.References(r.Value, name) {
			found = true
		}
		return !found
	})
	if found {
		return true
	}
	if decl.ReturnType == nil {
		return false
	}
	return tailReferences(decl.Body, name)
}

// tailReferences checks the value a block evaluates to, descending into
// the branches of a trailing if or match
func tailReferences(stmts []ast.Statement, name string) bool {
	if len(stmts) == 0 {
		return false
	}
	switch last := stmts[len(stmts)-1].(type) {
	case *ast.ExpressionStmt:
		if last.Semicolon {
			return false
		}
		return exprTailReferences(last.Expression, name)
	case *ast.IfStmt:
		return tailReferences(last.Then, name) || tailReferences(last.Else, name)
	case *ast.MatchStmt:
		for _, arm := range last.Arms {
			if exprTailReferences(arm.Body, name) {
				return true
			}
		}
	}
	return false
}

func exprTailReferences(e ast.Expression, name string) bool {
	switch x := e.(type) {
	case *ast.BlockExpr:
		return tailReferences(x.Statements, name)
	case *ast.IfExpr:
		if x.Then != nil && tailReferences(x.Then.Statements, name) {
			return true
		}
		return x.Else != nil && exprTailReferences(x.Else, name)
	case *ast.MatchExpr:
		for _, arm := range x.Arms {
			if exprTailReferences(arm.Body, name) {
				return true
			}
		}
		return false
	}
	return ast.References(e, name)
}

// isStored reports whether name ends up inside a longer-lived value: a
// struct literal field, a field of self, or a collection
func isStored(name string, body []ast.Statement) bool {
	found := false
	visit(body, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.StructLiteral:
			for _, f := range x.Fields {
				if ast.References(f.Value, name) {
					found = true
				}
			}
		case *ast.AssignStmt:
			if fa, ok := x.Target.(*ast.FieldAccessExpr); ok && isSelf(fa.Object) && isIdent(x.Value, name) {
				found = true
			}
		case *ast.MethodCallExpr:
			if fa, ok := x.Object.(*ast.FieldAccessExpr); ok && isSelf(fa.Object) {
				for _, arg := range x.Args {
					if ast.References(arg.Value, name) {
						found = true
					}
				}
			}
			if isStoringMethod(x.Method) {
				for _, arg := range x.Args {
					if isIdent(arg.Value, name) {
						found = true
					}
				}
			}
		}
		return !found
	})
	return found
}

// returnsSelfType reports whether a method produces a value of its own
// type, either by signature or by returning self or a literal of the type
func returnsSelfType(decl *ast.FunctionDecl) bool {
	if isOwnType(decl.ReturnType, decl.ParentType) {
		return true
	}
	found := false
	check := func(e ast.Expression) {
		switch x := e.(type) {
		case *ast.Identifier:
			found = found || x.Name == "self"
		case *ast.StructLiteral:
			found = found || x.Name == "Self" || x.Name == decl.ParentType
		}
	}
	visit(decl.Body, func(n ast.Node) bool {
		if r, ok := n.(*ast.ReturnStmt); ok && r.Value != nil {
			check(r.Value)
		}
		return !found
	})
	if !found && len(decl.Body) > 0 {
		if es, ok := decl.Body[len(decl.Body)-1].(*ast.ExpressionStmt); ok && !es.Semicolon {
			check(es.Expression)
		}
	}
	return found
}

func isOwnType(t ast.Type, parent string) bool {
	switch x := t.(type) {
	case *ast.CustomType:
		return x.Name == "Self" || (parent != "" && x.Name == parent)
	case *ast.ParameterizedType:
		return parent != "" && x.Base == parent
	}
	return false
}

// usesReceiver reports whether body reads a field of self or calls a method on it
func usesReceiver(body []ast.Statement) bool {
	found := false
	visit(body, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.FieldAccessExpr:
			found = RootName(x) == "self"
		case *ast.MethodCallExpr:
			found = RootName(x.Object) == "self"
		}
		return !found
	})
	return found
}

func visit(body []ast.Statement, f func(ast.Node) bool) {
	for _, stmt := range body {
		ast.Inspect(stmt, f)
	}
}

func isSelf(e ast.Expression) bool {
	return isIdent(e, "self")
}

func isIdent(e ast.Expression, name string) bool {
	id, ok := e.(*ast.Identifier)
	return ok && id.Name == name
}
