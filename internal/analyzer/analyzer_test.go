package analyzer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/parser"
)

func analyze(t *testing.T, input string) *Result {
	t.Helper()
	program, err := parser.ParseSource("test.wj", input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	res, err := New(nil).Analyze(program)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	return res
}

func findFunction(t *testing.T, res *Result, key string) *AnalyzedFunction {
	t.Helper()
	for _, fn := range res.Functions {
		if fn.Key == key {
			return fn
		}
	}
	t.Fatalf("function %q not analyzed", key)
	return nil
}

func TestParameterInference(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		function string
		param    string
		expected OwnershipMode
	}{
		{"read only", `fn greet(name: string) { println("Hi {name}") }`, "greet", "name", Borrowed},
		{"push mutates receiver", `fn push_tag(tags: Vec<string>, t: string) { tags.push(t) }`, "push_tag", "tags", MutBorrowed},
		{"pushed value is stored", `fn push_tag(tags: Vec<string>, t: string) { tags.push(t) }`, "push_tag", "t", Owned},
		{"assignment through field", `fn reset(p: Point) { p.x = 0 }`, "reset", "p", MutBorrowed},
		{"index assignment", `fn mark(cells: Vec<bool>, i: int) { cells[i] = true }`, "mark", "cells", MutBorrowed},
		{"mut suffix method", `fn grab(v: Vec<int>) { let x = v.get_mut(0) }`, "grab", "v", MutBorrowed},
		{"nested mutation", `fn f(v: Vec<int>) { for i in 0..3 { if i > 1 { v.clear() } } }`, "f", "v", MutBorrowed},
		{"explicit return", `fn keep(s: string) -> string { return s }`, "keep", "s", Owned},
		{"tail expression", `fn id(s: string) -> string { s }`, "id", "s", Owned},
		{"tail if branch", `fn pick(a: string, b: string, c: bool) -> string { if c { a } else { b } }`, "pick", "b", Owned},
		{"tail without return type", `fn show(s: string) { s }`, "show", "s", Borrowed},
		{"struct literal field", `fn store(name: string) { let u = User { name: name } }`, "store", "name", Owned},
		{"copy parameter", `fn show(n: int) { println("{n}") }`, "show", "n", Owned},
		{"mutated copy parameter", `fn bump(n: int) { n += 1 }`, "bump", "n", MutBorrowed},
		{"declared reference", `fn size(s: &string) -> int { s.len() }`, "size", "s", Borrowed},
		{"declared mutable reference", `fn fill(s: &mut string) { }`, "fill", "s", MutBorrowed},
		{"fieldless enum is copy", "enum Dir { Up, Down }\nfn turn(d: Dir) { check(d) }", "turn", "d", Owned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analyze(t, tt.input)
			fn := findFunction(t, res, tt.function)
			got, ok := fn.Ownership(tt.param)
			if !ok {
				t.Fatalf("parameter %q missing", tt.param)
			}
			if got != tt.expected {
				t.Errorf("ownership wrong. expected=%s, got=%s", tt.expected, got)
			}
		})
	}
}

func TestSelfReceiverInference(t *testing.T) {
	res := analyze(t, `
struct Counter { count: int }

impl Counter {
	fn get(self) -> int { self.count }
	fn inc(self) { self.count += 1 }
	fn add_to(self, items: Vec<int>) { self.items.push(1) }
	fn with(self, n: int) -> Counter { Counter { count: n } }
	fn label(self) -> string { "counter" }
	fn finish(mut self) { self.count = 0 }
	fn peek(&self) -> int { 0 }
	fn poke(&mut self) { }
}`)

	tests := []struct {
		method   string
		expected OwnershipMode
	}{
		{"get", Borrowed},
		{"inc", MutBorrowed},
		{"add_to", MutBorrowed},
		{"with", Owned},
		{"label", Owned},
		{"finish", Owned},
		{"peek", Borrowed},
		{"poke", MutBorrowed},
	}

	for i, tt := range tests {
		fn := findFunction(t, res, "Counter::"+tt.method)
		got, _ := fn.Ownership("self")
		if got != tt.expected {
			t.Errorf("tests[%d] - self ownership of %s wrong. expected=%s, got=%s",
				i, tt.method, tt.expected, got)
		}
	}
}

func TestCopyParametersAreNeverBorrowed(t *testing.T) {
	res := analyze(t, `
@auto
struct Vec2 { x: f32, y: f32 }

fn f(a: int, b: f32, c: bool, d: (int, usize), e: Vec2, s: &string) { println("{a}") }`)

	sig, ok := res.Registry.Lookup("f")
	if !ok {
		t.Fatal("f not registered")
	}
	for i, p := range findFunction(t, res, "f").Decl.Parameters {
		if !res.IsCopy(p.Type) {
			t.Errorf("tests[%d] - %s should be Copy", i, p.Type)
			continue
		}
		if p.Name == "s" {
			continue
		}
		if sig.ParamOwnership[i] != Owned {
			t.Errorf("tests[%d] - %s passed as %s, expected owned", i, p.Name, sig.ParamOwnership[i])
		}
	}
}

func TestCopyTypes(t *testing.T) {
	res := analyze(t, `
@auto
struct P { x: f32, y: f32 }

@auto
struct Outer { p: P, n: int }

@auto
struct Named { name: string }

@derive(Copy, Clone)
struct Tagged { id: u32 }

enum Color { Red, Green }

enum Shape { Circle(f32), Square(f32) }`)

	tests := []struct {
		name     string
		expected bool
	}{
		{"P", true},
		{"Outer", true},
		{"Named", false},
		{"Tagged", true},
		{"Color", true},
		{"Shape", false},
	}

	for i, tt := range tests {
		if got := res.CopyTypes[tt.name]; got != tt.expected {
			t.Errorf("tests[%d] - Copy for %s wrong. expected=%t, got=%t", i, tt.name, tt.expected, got)
		}
	}

	scalars := []ast.Type{
		&ast.PrimitiveType{Kind: ast.TypeInt},
		&ast.CustomType{Name: "usize"},
		&ast.CustomType{Name: "char"},
		&ast.ReferenceType{Inner: &ast.PrimitiveType{Kind: ast.TypeString}},
	}
	for _, ty := range scalars {
		if !IsCopyType(ty, nil) {
			t.Errorf("%s should be Copy", ty)
		}
	}
	nonCopy := []ast.Type{
		&ast.PrimitiveType{Kind: ast.TypeString},
		&ast.VecType{Elem: &ast.PrimitiveType{Kind: ast.TypeInt}},
		&ast.OptionType{Inner: &ast.PrimitiveType{Kind: ast.TypeInt}},
		&ast.MutableReferenceType{Inner: &ast.PrimitiveType{Kind: ast.TypeInt}},
	}
	for _, ty := range nonCopy {
		if IsCopyType(ty, nil) {
			t.Errorf("%s should not be Copy", ty)
		}
	}
}

func TestRegistryCoversEveryFunction(t *testing.T) {
	res := analyze(t, `
fn helper(x: string) { println("{x}") }

struct Counter { count: int }

impl Counter {
	fn inc(&mut self, by: int) { self.count += by }
}

trait Shape {
	fn area(&self) -> f32
	fn describe(&self) -> string { "shape" }
}

extern fn native_call(handle: int)

mod util {
	fn nested() { }
}`)

	for _, key := range []string{"helper", "Counter::inc", "inc", "Shape::describe", "Shape::area", "native_call", "nested"} {
		if _, ok := res.Registry.Lookup(key); !ok {
			t.Errorf("key %q missing from registry. keys=%v", key, res.Registry.Keys())
		}
	}

	sig, _ := res.Registry.LookupMethod("Counter", "inc")
	if !sig.HasSelfReceiver {
		t.Errorf("Counter::inc should have a receiver")
	}
	if len(sig.ParamOwnership) != 2 || sig.ParamOwnership[0] != MutBorrowed {
		t.Errorf("receiver ownership wrong. got=%v", sig.ParamOwnership)
	}
	if mode, ok := sig.ArgOwnership(0); !ok || mode != Owned {
		t.Errorf("first argument ownership wrong. got=%s", mode)
	}

	native, _ := res.Registry.Lookup("native_call")
	if !native.IsExtern {
		t.Errorf("native_call should be extern")
	}
}

func TestFreeFunctionWinsBareName(t *testing.T) {
	res := analyze(t, `
impl Stack {
	fn push(&mut self, v: int) { }
}

fn push(items: Vec<int>, v: int) { items.push(v) }`)

	sig, _ := res.Registry.Lookup("push")
	if sig.HasSelfReceiver {
		t.Errorf("bare name should resolve to the free function")
	}
	if sig, _ := res.Registry.LookupMethod("Stack", "push"); !sig.HasSelfReceiver {
		t.Errorf("Stack::push should resolve to the method")
	}
}

func TestTraitImplTakesTraitModes(t *testing.T) {
	res := analyze(t, `
trait Render {
	fn draw(&self, target: string)
}

struct Sprite { name: string }

impl Render for Sprite {
	fn draw(self, target: string) { target.push_str(self.name) }
}

struct V { x: f32 }

impl Add for V {
	fn add(self, other: V) -> V { V { x: self.x + other.x } }
}`)

	draw := findFunction(t, res, "Sprite::draw")
	if mode, _ := draw.Ownership("self"); mode != Borrowed {
		t.Errorf("draw self wrong. expected=borrowed, got=%s", mode)
	}
	if mode, _ := draw.Ownership("target"); mode != Borrowed {
		t.Errorf("draw target wrong. expected=borrowed, got=%s", mode)
	}

	add := findFunction(t, res, "V::add")
	for _, name := range []string{"self", "other"} {
		if mode, _ := add.Ownership(name); mode != Owned {
			t.Errorf("add %s wrong. expected=owned, got=%s", name, mode)
		}
	}
}

func TestAnalyzerErrors(t *testing.T) {
	tests := []struct {
		input    string
		function string
		message  string
	}{
		{`fn f(a: int, a: int) { }`, "f", "declared more than once"},
		{`fn g(self) { }`, "g", "`self`"},
	}

	for i, tt := range tests {
		program, err := parser.ParseSource("test.wj", tt.input)
		if err != nil {
			t.Fatalf("tests[%d] - parse error: %v", i, err)
		}
		_, err = New(nil).Analyze(program)
		var aerr *Error
		if !errors.As(err, &aerr) {
			t.Fatalf("tests[%d] - expected *Error, got %v", i, err)
		}
		if aerr.Function != tt.function || !strings.Contains(aerr.Message, tt.message) {
			t.Errorf("tests[%d] - error wrong. got=%v", i, aerr)
		}
	}
}

func TestBaseRegistryIsNotModified(t *testing.T) {
	base := FallbackRegistry()
	before := base.Len()

	program, err := parser.ParseSource("test.wj", `fn extra() { }`)
	if err != nil {
		t.Fatal(err)
	}
	res, err := New(base).Analyze(program)
	if err != nil {
		t.Fatal(err)
	}
	if base.Len() != before {
		t.Errorf("base registry modified. before=%d, after=%d", before, base.Len())
	}
	if _, ok := res.Registry.Lookup("game::create_entity"); !ok {
		t.Errorf("base entries missing from result registry")
	}
}

func TestScanStdlib(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"game.rs": `
use std::collections::HashMap;

pub fn create_entity(world: &mut World) -> Entity {
    world.spawn()
}

pub fn add_transform(world: &mut World, entity: Entity, t: Transform) {}

pub fn lookup(map: &HashMap<String, i32>, key: &str) -> Option<i32> { None }

fn private_helper(x: i32) {}
`,
		"lib.rs":    `pub fn ignored(x: &str) {}`,
		"notes.txt": `pub fn not_source(x: &str) {}`,
		"text.wj":   `pub fn shout(self, s: &str) -> String {}`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reg, err := NewStdlibScanner().Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	tests := []struct {
		key      string
		expected []OwnershipMode
	}{
		{"game::create_entity", []OwnershipMode{MutBorrowed}},
		{"game::add_transform", []OwnershipMode{MutBorrowed, Owned, Owned}},
		{"game::lookup", []OwnershipMode{Borrowed, Borrowed}},
		{"text::shout", []OwnershipMode{Owned, Borrowed}},
	}
	for i, tt := range tests {
		sig, ok := reg.Lookup(tt.key)
		if !ok {
			t.Errorf("tests[%d] - %s missing. keys=%v", i, tt.key, reg.Keys())
			continue
		}
		if len(sig.ParamOwnership) != len(tt.expected) {
			t.Errorf("tests[%d] - param count wrong. expected=%d, got=%d", i, len(tt.expected), len(sig.ParamOwnership))
			continue
		}
		for j := range tt.expected {
			if sig.ParamOwnership[j] != tt.expected[j] {
				t.Errorf("tests[%d] - param %d wrong. expected=%s, got=%s", i, j, tt.expected[j], sig.ParamOwnership[j])
			}
		}
	}

	for _, key := range []string{"lib::ignored", "notes::not_source", "game::private_helper"} {
		if _, ok := reg.Lookup(key); ok {
			t.Errorf("%s should not be registered", key)
		}
	}
	if sig, _ := reg.Lookup("text::shout"); !sig.HasSelfReceiver {
		t.Errorf("text::shout should have a receiver")
	}
}

func TestScanStdlibFallback(t *testing.T) {
	reg, err := ScanStdlib(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("expected fallback, got error: %v", err)
	}
	sig, ok := reg.Lookup("game::add_mesh")
	if !ok {
		t.Fatal("fallback table missing game::add_mesh")
	}
	if sig.ParamOwnership[0] != MutBorrowed {
		t.Errorf("add_mesh world wrong. got=%s", sig.ParamOwnership[0])
	}
}

func TestStdlibDirFromEnvironment(t *testing.T) {
	t.Setenv(StdlibEnv, "/opt/wj/std")
	if got := StdlibDir(""); got != "/opt/wj/std" {
		t.Errorf("env dir wrong. got=%q", got)
	}
	if got := StdlibDir("local"); got != "local" {
		t.Errorf("explicit dir wrong. got=%q", got)
	}
}
