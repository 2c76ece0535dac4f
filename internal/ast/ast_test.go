package ast

import (
	"reflect"
	"testing"

	"github.com/windjammer-lang/windjammer/internal/position"
)

// createTestSpan creates a basic position span for testing
func createTestSpan(line, col int) position.Span {
	return position.Span{
		Start: position.Position{Filename: "test.wj", Line: line, Column: col},
		End:   position.Position{Filename: "test.wj", Line: line, Column: col + 1},
	}
}

func ident(name string) *Identifier { return &Identifier{Name: name} }

func intLit(v string) *Literal { return &Literal{Kind: LitInt, Value: v} }

func TestBasicNodeTypes(t *testing.T) {
	span := createTestSpan(1, 1)

	id := &Identifier{Span: span, Name: "testVar"}
	if id.GetSpan() != span {
		t.Error("Identifier span not set correctly")
	}
	if id.String() != "testVar" {
		t.Errorf("Expected 'testVar', got '%s'", id.String())
	}

	tests := []struct {
		lit      *Literal
		expected string
	}{
		{&Literal{Kind: LitInt, Value: "42"}, "42"},
		{&Literal{Kind: LitFloat, Value: "0.5"}, "0.5"},
		{&Literal{Kind: LitString, Value: "a\"b"}, `"a\"b"`},
		{&Literal{Kind: LitChar, Value: "x"}, "'x'"},
		{&Literal{Kind: LitBool, Value: "true"}, "true"},
	}
	for i, tt := range tests {
		if got := tt.lit.String(); got != tt.expected {
			t.Errorf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestExpressionStrings(t *testing.T) {
	tests := []struct {
		expr     Expression
		expected string
	}{
		{
			&BinaryExpr{Left: ident("a"), Op: "+", Right: &BinaryExpr{Left: ident("b"), Op: "*", Right: ident("c")}},
			"(a + (b * c))",
		},
		{&UnaryExpr{Op: UnaryMutRef, Operand: ident("v")}, "(&mut v)"},
		{
			&MethodCallExpr{Object: ident("items"), Method: "push", Args: []*Argument{{Value: ident("x")}}},
			"items.push(x)",
		},
		{
			&MethodCallExpr{Object: ident("s"), Method: "parse", TypeArgs: []Type{&PrimitiveType{Kind: TypeInt}}},
			"s.parse::<int>()",
		},
		{
			&CallExpr{Function: ident("greet"), Args: []*Argument{{Label: "name", Value: ident("n")}}},
			"greet(name: n)",
		},
		{&RangeExpr{Start: intLit("0"), End: ident("n"), Inclusive: true}, "0..=n"},
		{&RangeExpr{End: intLit("3")}, "..3"},
		{
			&StructLiteral{Name: "Point", Fields: []*FieldInit{{Name: "x", Value: intLit("1")}}},
			"Point { x: 1 }",
		},
		{&CastExpr{Expr: ident("i"), Type: &CustomType{Name: "usize"}}, "(i as usize)"},
		{
			&MacroInvocation{Name: "vec", Args: []Expression{intLit("0"), ident("n")}, Delimiter: DelimBrackets, Repeat: true},
			"vec![0; n]",
		},
		{&TupleLiteral{Elements: []Expression{ident("a")}}, "(a,)"},
		{&ChannelRecvExpr{Channel: ident("ch")}, "(<-ch)"},
	}

	for i, tt := range tests {
		if got := tt.expr.String(); got != tt.expected {
			t.Errorf("tests[%d] - wrong string. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		typ      Type
		expected string
	}{
		{&VecType{Elem: &OptionType{Inner: &PrimitiveType{Kind: TypeString}}}, "Vec<Option<string>>"},
		{&ResultType{Ok: &CustomType{Name: "Config"}, Err: &PrimitiveType{Kind: TypeString}}, "Result<Config, string>"},
		{&MutableReferenceType{Inner: &VecType{Elem: &PrimitiveType{Kind: TypeInt}}}, "&mut Vec<int>"},
		{&RawPointerType{Pointee: &CustomType{Name: "u8"}}, "*const u8"},
		{&ArrayType{Elem: &CustomType{Name: "u8"}, Size: "4"}, "[u8; 4]"},
		{&FunctionPointerType{Params: []Type{&PrimitiveType{Kind: TypeInt}}, Return: &PrimitiveType{Kind: TypeBool}}, "fn(int) -> bool"},
		{&AssociatedType{Base: "T", Name: "Output"}, "T::Output"},
		{&TraitObjectType{Name: "Shape"}, "dyn Shape"},
		{&TupleType{}, "()"},
	}

	for i, tt := range tests {
		if got := tt.typ.String(); got != tt.expected {
			t.Errorf("tests[%d] - wrong string. expected=%q, got=%q", i, tt.expected, got)
		}
	}

	if !IsUnit(nil) || !IsUnit(&TupleType{}) || IsUnit(&TupleType{Elems: []Type{&InferType{}}}) {
		t.Error("IsUnit misclassified a type")
	}
}

func TestLookupPrimitive(t *testing.T) {
	for _, name := range []string{"int", "int32", "uint", "float", "bool", "string"} {
		kind, ok := LookupPrimitive(name)
		if !ok {
			t.Fatalf("%s not recognized as primitive", name)
		}
		if (&PrimitiveType{Kind: kind}).String() != name {
			t.Errorf("kind %d renders as %q, want %q", kind, (&PrimitiveType{Kind: kind}).String(), name)
		}
	}
	if _, ok := LookupPrimitive("usize"); ok {
		t.Error("usize must be a custom type")
	}
}

func TestPatternRefutability(t *testing.T) {
	some := &EnumVariantPattern{Name: "Some", Binding: VariantBinding{Kind: BindSingle, Name: "x"}}

	tests := []struct {
		name      string
		pattern   Pattern
		refutable bool
	}{
		{"wildcard", &WildcardPattern{}, false},
		{"identifier", &IdentifierPattern{Name: "x"}, false},
		{"tuple of identifiers", &TuplePattern{Elems: []Pattern{&IdentifierPattern{Name: "a"}, &WildcardPattern{}}}, false},
		{"reference", &ReferencePattern{Inner: &IdentifierPattern{Name: "v"}}, false},
		{"enum variant", some, true},
		{"literal", &LiteralPattern{Value: intLit("1")}, true},
		{"or", &OrPattern{Alternatives: []Pattern{&WildcardPattern{}, &WildcardPattern{}}}, true},
		{"tuple containing variant", &TuplePattern{Elems: []Pattern{&IdentifierPattern{Name: "a"}, some}}, true},
		{"reference to variant", &ReferencePattern{Inner: some}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRefutable(tt.pattern); got != tt.refutable {
				t.Errorf("IsRefutable(%s) = %v, want %v", tt.pattern, got, tt.refutable)
			}
		})
	}
}

func TestBoundNames(t *testing.T) {
	p := &TuplePattern{Elems: []Pattern{
		&IdentifierPattern{Name: "idx"},
		&EnumVariantPattern{Name: "Shape::Rect", Binding: VariantBinding{
			Kind:   BindStruct,
			Fields: []FieldPattern{{Name: "w", Pattern: &IdentifierPattern{Name: "w"}}, {Name: "h", Pattern: &WildcardPattern{}}},
		}},
	}}

	got := BoundNames(p)
	if !reflect.DeepEqual(got, []string{"idx", "w"}) {
		t.Errorf("BoundNames = %v", got)
	}
	if s := p.String(); s != "(idx, Shape::Rect { w, h: _ })" {
		t.Errorf("pattern string = %q", s)
	}
}

func TestInspect(t *testing.T) {
	fn := &FunctionDecl{
		Name: "push_tag",
		Body: []Statement{
			&IfStmt{
				Condition: &BinaryExpr{Left: ident("n"), Op: ">", Right: intLit("0")},
				Then: []Statement{
					&ExpressionStmt{Expression: &MethodCallExpr{
						Object: ident("tags"),
						Method: "push",
						Args:   []*Argument{{Value: ident("t")}},
					}},
				},
			},
		},
	}

	var calls []string
	Inspect(fn, func(n Node) bool {
		if m, ok := n.(*MethodCallExpr); ok {
			calls = append(calls, m.Method)
		}
		return true
	})
	if len(calls) != 1 || calls[0] != "push" {
		t.Errorf("Inspect found calls %v", calls)
	}

	stmt := fn.Body[0].(*IfStmt)
	if !References(stmt.Condition, "n") {
		t.Error("condition should reference n")
	}
	if References(stmt.Condition, "t") {
		t.Error("condition should not reference t")
	}
}

func TestFindDecoratorAndSelf(t *testing.T) {
	fn := &FunctionDecl{
		Name:       "area",
		Decorators: []*Decorator{{Name: "export"}, {Name: "test"}},
		Parameters: []*Parameter{{Name: "self", Ownership: OwnershipRef}, {Name: "k", Type: &PrimitiveType{Kind: TypeFloat}}},
		ReturnType: &PrimitiveType{Kind: TypeFloat},
	}

	if FindDecorator(fn.Decorators, "test") == nil {
		t.Error("expected @test decorator")
	}
	if FindDecorator(fn.Decorators, "auto") != nil {
		t.Error("unexpected @auto decorator")
	}
	if fn.SelfParam() == nil {
		t.Fatal("expected self receiver")
	}
	if got := fn.String(); got != "fn area(&self, k: float) -> float" {
		t.Errorf("fn string = %q", got)
	}
}
