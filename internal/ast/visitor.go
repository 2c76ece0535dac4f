package ast

// Inspect traverses the tree rooted at node in depth-first order, calling
// f for every item, statement and expression. If f returns false the
// children of that node are skipped.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}

	switch n := node.(type) {
	// Items
	case *Program:
		for _, item := range n.Items {
			Inspect(item, f)
		}
	case *FunctionDecl:
		inspectStatements(n.Body, f)
	case *ImplBlock:
		for _, fn := range n.Functions {
			Inspect(fn, f)
		}
	case *TraitDecl:
		for _, m := range n.Methods {
			Inspect(m, f)
		}
	case *ModDecl:
		for _, item := range n.Items {
			Inspect(item, f)
		}
	case *ConstDecl:
		inspectExpr(n.Value, f)
	case *StaticDecl:
		inspectExpr(n.Value, f)

	// Statements
	case *LetStmt:
		inspectExpr(n.Value, f)
		inspectStatements(n.Else, f)
	case *ConstStmt:
		inspectExpr(n.Value, f)
	case *StaticStmt:
		inspectExpr(n.Value, f)
	case *AssignStmt:
		inspectExpr(n.Target, f)
		inspectExpr(n.Value, f)
	case *ReturnStmt:
		inspectExpr(n.Value, f)
	case *ExpressionStmt:
		inspectExpr(n.Expression, f)
	case *IfStmt:
		inspectExpr(n.Condition, f)
		inspectStatements(n.Then, f)
		inspectStatements(n.Else, f)
	case *MatchStmt:
		inspectExpr(n.Value, f)
		inspectArms(n.Arms, f)
	case *ForStmt:
		inspectExpr(n.Iterable, f)
		inspectStatements(n.Body, f)
	case *WhileStmt:
		inspectExpr(n.Condition, f)
		inspectStatements(n.Body, f)
	case *LoopStmt:
		inspectStatements(n.Body, f)
	case *ThreadStmt:
		inspectStatements(n.Body, f)
	case *AsyncStmt:
		inspectStatements(n.Body, f)
	case *DeferStmt:
		if n.Statement != nil {
			Inspect(n.Statement, f)
		}

	// Expressions
	case *BinaryExpr:
		inspectExpr(n.Left, f)
		inspectExpr(n.Right, f)
	case *UnaryExpr:
		inspectExpr(n.Operand, f)
	case *CallExpr:
		inspectExpr(n.Function, f)
		inspectArgs(n.Args, f)
	case *MethodCallExpr:
		inspectExpr(n.Object, f)
		inspectArgs(n.Args, f)
	case *FieldAccessExpr:
		inspectExpr(n.Object, f)
	case *GenericPathExpr:
		inspectExpr(n.Base, f)
	case *IndexExpr:
		inspectExpr(n.Object, f)
		inspectExpr(n.Index, f)
	case *RangeExpr:
		inspectExpr(n.Start, f)
		inspectExpr(n.End, f)
	case *ClosureExpr:
		inspectExpr(n.Body, f)
	case *StructLiteral:
		for _, fi := range n.Fields {
			inspectExpr(fi.Value, f)
		}
	case *ArrayLiteral:
		for _, e := range n.Elements {
			inspectExpr(e, f)
		}
	case *TupleLiteral:
		for _, e := range n.Elements {
			inspectExpr(e, f)
		}
	case *MapLiteral:
		for _, e := range n.Entries {
			inspectExpr(e.Key, f)
			inspectExpr(e.Value, f)
		}
	case *CastExpr:
		inspectExpr(n.Expr, f)
	case *TryExpr:
		inspectExpr(n.Expr, f)
	case *AwaitExpr:
		inspectExpr(n.Expr, f)
	case *ChannelSendExpr:
		inspectExpr(n.Channel, f)
		inspectExpr(n.Value, f)
	case *ChannelRecvExpr:
		inspectExpr(n.Channel, f)
	case *MacroInvocation:
		for _, e := range n.Args {
			inspectExpr(e, f)
		}
	case *MatchExpr:
		inspectExpr(n.Value, f)
		inspectArms(n.Arms, f)
	case *IfExpr:
		inspectExpr(n.Condition, f)
		if n.Then != nil {
			Inspect(n.Then, f)
		}
		inspectExpr(n.Else, f)
	case *BlockExpr:
		inspectStatements(n.Statements, f)
	}
}

func inspectExpr(e Expression, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}

func inspectStatements(stmts []Statement, f func(Node) bool) {
	for _, s := range stmts {
		Inspect(s, f)
	}
}

func inspectArgs(args []*Argument, f func(Node) bool) {
	for _, a := range args {
		inspectExpr(a.Value, f)
	}
}

func inspectArms(arms []*MatchArm, f func(Node) bool) {
	for _, a := range arms {
		inspectExpr(a.Guard, f)
		inspectExpr(a.Body, f)
	}
}

// References reports whether the identifier name occurs anywhere inside e
func References(e Expression, name string) bool {
	found := false
	inspectExpr(e, func(n Node) bool {
		if found {
			return false
		}
		if id, ok := n.(*Identifier); ok && id.Name == name {
			found = true
		}
		return !found
	})
	return found
}
