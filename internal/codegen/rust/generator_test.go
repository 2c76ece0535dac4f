package rust

import (
	"errors"
	"strings"
	"testing"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/parser"
)

func generate(t *testing.T, input string, cfg Config) string {
	t.Helper()
	program, err := parser.ParseSource("test.wj", input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	res, err := analyzer.New(nil).Analyze(program)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	out, err := Generate(program, res, cfg)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	return out
}

// squash collapses all whitespace runs to a single space
func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func checkContains(t *testing.T, name, out string, want, unwanted []string) {
	t.Helper()
	flat := squash(out)
	for _, w := range want {
		if !strings.Contains(flat, squash(w)) {
			t.Errorf("%s - missing %q in output:\n%s", name, w, out)
		}
	}
	for _, u := range unwanted {
		if strings.Contains(flat, squash(u)) {
			t.Errorf("%s - unexpected %q in output:\n%s", name, u, out)
		}
	}
}

func TestEndToEndScenarios(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []string
		unwanted []string
	}{
		{
			name:     "print placeholder",
			input:    `fn greet(name: string) { println("Hi {name}") }`,
			want:     []string{`fn greet(name: &str) {`, `println!("Hi {}", name);`},
			unwanted: []string{`&name`},
		},
		{
			name: "mutated and stored parameters",
			input: `fn push_tag(tags: Vec<string>, t: string) { tags.push(t) }
fn main() {
    let mut tags = Vec::new()
    push_tag(tags, "a")
}`,
			want: []string{
				`fn push_tag(tags: &mut Vec<String>, t: String) {`,
				`tags.push(t);`,
				`push_tag(&mut tags, "a".to_string());`,
			},
			unwanted: []string{`tags.push(&t)`, `t.clone()`},
		},
		{
			name: "cast is not repeated at the index",
			input: `fn mark(cells: Vec<bool>, y: i32, w: i32, z: i32) {
    let x = (y * w + z) as usize
    cells[x] = true
}`,
			want:     []string{`let x = (y * w + z) as usize;`, `cells[x] = true;`},
			unwanted: []string{`x as usize`, `as usize as usize`},
		},
		{
			name:  "auto derive on floats",
			input: `@auto struct P { x: f32, y: f32 }`,
			want:  []string{`#[derive(Debug, Clone, Copy, PartialEq, Default)] struct P {`},
			unwanted: []string{
				`, Eq`, `Hash`, `#[auto]`,
			},
		},
		{
			name: "borrowed loop variable is cloned into a vector",
			input: `struct Item { name: string }
struct Bag { items: Vec<Item> }
impl Bag {
    fn collect(self) -> Vec<Item> {
        let mut out = Vec::new()
        for item in self.items { out.push(item) }
        out
    }
}`,
			want: []string{`for item in &self.items {`, `out.push(item.clone());`},
		},
		{
			name:  "if let becomes match",
			input: `fn pick(opt: Option<string>) { if let Some(x) = opt { use(x) } else { fallback() } }`,
			want:  []string{`match opt { Some(x) => { use(x); }, _ => { fallback(); } }`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := generate(t, tt.input, Config{})
			checkContains(t, tt.name, out, tt.want, tt.unwanted)
		})
	}
}

func TestNoCloneOnCopy(t *testing.T) {
	input := `struct Counter { n: i32, names: Vec<string> }
impl Counter {
    fn count(self) -> i32 { self.n }
}
fn total(values: Vec<i32>) -> i32 {
    let mut sum = 0
    for v in values { sum += v }
    sum
}`
	out := generate(t, input, Config{})
	checkContains(t, "copy", out,
		[]string{`self.n`, `for &v in values {`, `sum += v;`},
		[]string{`self.n.clone()`, `v.clone()`})
}

func TestNoReferenceToReference(t *testing.T) {
	input := `fn show(name: string) { shout(name) }
fn shout(name: string) { println(name) }`
	out := generate(t, input, Config{})
	checkContains(t, "ref", out,
		[]string{`fn show(name: &str) {`, `shout(name);`},
		[]string{`&&`, `shout(&name)`})
}

func TestAssignmentTargetsAreNeverCloned(t *testing.T) {
	input := `struct Player { name: string, score: i32 }
impl Player {
    fn rename(self, name: string) { self.name = name }
    fn bump(self) { self.score += 1 }
}`
	out := generate(t, input, Config{})
	checkContains(t, "assign", out,
		[]string{`fn rename(&mut self, name: String) {`, `self.name = name;`, `self.score += 1;`},
		[]string{`self.name.clone() =`, `.clone() +=`})
}

func TestStringLiteralArguments(t *testing.T) {
	input := `struct Menu { items: Vec<string> }
impl Menu {
    fn add_item(self, label: string) { self.items.push(label) }
}
fn main() {
    let mut menu = Menu { items: Vec::new() }
    menu.add_item("Open")
    let mut names = Vec::new()
    names.push("Ada")
}`
	out := generate(t, input, Config{})
	checkContains(t, "literals", out,
		[]string{`menu.add_item("Open".to_string());`, `names.push("Ada".to_string());`},
		nil)
}

func TestStdlibFallback(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []string
		unwanted []string
	}{
		{
			name:     "contains_key borrows a Copy key",
			input:    `fn has(seen: HashMap<int, bool>, n: int) -> bool { seen.contains_key(n) }`,
			want:     []string{`seen.contains_key(&n)`},
			unwanted: []string{`seen.contains_key(n)`},
		},
		{
			name:  "map get by id",
			input: `fn find(names: HashMap<int, string>, id: int) -> Option<string> { names.get(id) }`,
			want:  []string{`names.get(&id).cloned()`},
		},
		{
			name:  "map remove by key",
			input: `fn forget(cache: HashMap<int, string>, entity_id: int) { cache.remove(entity_id) }`,
			want:  []string{`cache.remove(&entity_id);`},
		},
		{
			name:     "vec remove takes its index by value",
			input:    `fn take(items: Vec<string>, index: usize) -> string { items.remove(index) }`,
			want:     []string{`items.remove(index)`},
			unwanted: []string{`&index`},
		},
		{
			name:     "contains_key with a borrowed string",
			input:    `fn known(cache: HashMap<string, int>, name: string) -> bool { cache.contains_key(name) }`,
			want:     []string{`cache.contains_key(`},
			unwanted: []string{`name.clone()`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := generate(t, tt.input, Config{})
			checkContains(t, tt.name, out, tt.want, tt.unwanted)
		})
	}
}

func TestOptionResultsAreCloned(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`fn top(items: Vec<string>) -> Option<string> { items.first() }`, `items.first().cloned()`},
		{`fn bottom(items: Vec<string>) -> Option<string> { items.last() }`, `items.last().cloned()`},
		{`fn lookup(m: HashMap<string, string>, key: string) -> Option<string> { m.get(key) }`, `.cloned()`},
	}

	for i, tt := range tests {
		out := squash(generate(t, tt.input, Config{}))
		if !strings.Contains(out, tt.expected) {
			t.Errorf("tests[%d] - cloned wrong. expected=%q, got=%q", i, tt.expected, out)
		}
	}
}

func TestLenComparisons(t *testing.T) {
	input := `fn fits(items: Vec<string>, limit: i32) -> bool {
    items.len() > 0 && items.len() < limit
}`
	out := generate(t, input, Config{})
	checkContains(t, "len", out,
		[]string{`items.len() > 0`, `items.len() < limit as usize`},
		[]string{`0 as usize`, `items.len() as`})
}

func TestStdPathWithoutUse(t *testing.T) {
	input := `fn load(p: string) {
    let data = std.fs.read(p)
    let text = core.str.from_utf8(data)
}`
	out := generate(t, input, Config{})
	checkContains(t, "std path", out,
		[]string{`std::fs::read(`, `core::str::from_utf8(`},
		[]string{`std.fs`, `core.str`})
}

func TestDeriveInference(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`struct User { name: string, age: i32 }`, `#[derive(Debug, Clone, PartialEq, Eq, Hash, Default)]`},
		{`struct Samples { values: Vec<f64> }`, `#[derive(Debug, Clone, PartialEq, Default)]`},
		{`@derive(Debug, Clone) struct A { v: i32 }`, `#[derive(Debug, Clone)]`},
		{`@auto(Debug, PartialEq) struct B { v: i32 }`, `#[derive(Debug, PartialEq)]`},
		{`enum Color { Red, Green }`, `#[derive(Debug, Clone, Copy, PartialEq, Eq, Hash)]`},
	}

	for i, tt := range tests {
		out := generate(t, tt.input, Config{})
		first := strings.SplitN(out, "\n", 2)[0]
		if first != tt.expected {
			t.Errorf("tests[%d] - derive wrong. expected=%q, got=%q", i, tt.expected, first)
		}
	}
}

func TestExportPerTarget(t *testing.T) {
	input := `@export fn add(a: i32, b: i32) -> i32 { a + b }`
	tests := []struct {
		target  CompileTarget
		attr    string
		prelude bool
	}{
		{TargetWasm, "#[wasm_bindgen]", true},
		{TargetNode, "#[neon::export]", false},
		{TargetPython, "#[pyfunction]", false},
		{TargetC, "#[no_mangle]", false},
	}

	for i, tt := range tests {
		out := generate(t, input, Config{Target: tt.target})
		if !strings.Contains(out, tt.attr+"\npub fn add(a: i32, b: i32) -> i32 {") {
			t.Errorf("tests[%d] - export attribute wrong. expected=%q, got=%q", i, tt.attr, out)
		}
		hasPrelude := strings.HasPrefix(out, "use wasm_bindgen::prelude::*;")
		if hasPrelude != tt.prelude {
			t.Errorf("tests[%d] - prelude wrong. expected=%t, got=%t", i, tt.prelude, hasPrelude)
		}
	}
}

func TestDecorators(t *testing.T) {
	input := `@test
fn adds() { assert_eq(1 + 1, 2) }

@timing
fn slow() {}

@async
fn fetch() {}`
	out := generate(t, input, Config{})
	checkContains(t, "decorators", out,
		[]string{
			"#[test]\nfn adds() {", `assert_eq!(1 + 1, 2);`,
			"#[timing]\nfn slow() {",
			`async fn fetch() {`,
		},
		[]string{`#[async]`})
}

func TestUsePaths(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"use std::collections::HashMap", "use std::collections::HashMap;"},
		{"use std::fs as files", "use std::fs as files;"},
		{"use ./utils/math::add", "use crate::utils::math::add;"},
		{"use ../shared::Config", "use super::shared::Config;"},
	}

	for i, tt := range tests {
		out := strings.TrimSpace(generate(t, tt.input, Config{}))
		if out != tt.expected {
			t.Errorf("tests[%d] - use wrong. expected=%q, got=%q", i, tt.expected, out)
		}
	}
}

func TestConstants(t *testing.T) {
	out := generate(t, `const LIMIT = 10
const NAME = "wj"
const RATE: f64 = 0.5`, Config{})
	checkContains(t, "const", out,
		[]string{`const LIMIT: i64 = 10;`, `const NAME: &str = "wj";`, `const RATE: f64 = 0.5;`},
		nil)

	program, err := parser.ParseSource("test.wj", `const SIZE = compute()`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	res, err := analyzer.New(nil).Analyze(program)
	if err != nil {
		t.Fatalf("analyze error: %v", err)
	}
	_, err = Generate(program, res, Config{})
	var genErr *GenerateError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *GenerateError, got %T (%v)", err, err)
	}
	if !strings.Contains(genErr.Message, "SIZE") {
		t.Errorf("error should name the constant, got %q", genErr.Message)
	}
}

func TestStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			"reversed",
			`fn f(items: Vec<i32>) { for x in items.reversed() { println("{}", x) } }`,
			[]string{`for x in items.into_iter().rev() {`},
		},
		{
			"native range",
			`fn f() { for i in 0..10 { println("{}", i) } }`,
			[]string{`for i in 0..10 {`},
		},
		{
			"thread",
			`fn f() { thread { work() } }`,
			[]string{`tokio::spawn(async move { work(); });`},
		},
		{
			"defer",
			`fn f() { defer cleanup() }`,
			[]string{"// defer", `cleanup();`},
		},
		{
			"let else",
			`fn f(v: Option<i32>) -> i32 {
    let Some(x) = v else { return 0 }
    x
}`,
			[]string{`let Some(x) = v else { return 0; };`},
		},
		{
			"struct shorthand",
			`struct Point { x: i32, y: i32 }
fn make(x: i32, y: i32) -> Point { Point { x: x, y: y } }`,
			[]string{`Point { x, y }`},
		},
		{
			"turbofish path",
			`fn make() -> Vec<int> { Vec::<int>::new() }`,
			[]string{`Vec::<i64>::new()`},
		},
		{
			"float literal",
			`fn f() -> f64 { 2.0 }`,
			[]string{`2.0`},
		},
		{
			"match guard",
			`fn sign(n: i32) -> string {
    match n {
        x if x < 0 => "neg",
        _ => "pos",
    }
}`,
			[]string{`x if x < 0 => "neg".to_string(),`, `_ => "pos".to_string(),`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := generate(t, tt.input, Config{})
			checkContains(t, tt.name, out, tt.want, nil)
		})
	}
}

func TestParseCompileTarget(t *testing.T) {
	tests := []struct {
		input    string
		expected CompileTarget
	}{
		{"", TargetWasm},
		{"wasm", TargetWasm},
		{"Node", TargetNode},
		{"python", TargetPython},
		{"c", TargetC},
	}
	for i, tt := range tests {
		got, err := ParseCompileTarget(tt.input)
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		if got != tt.expected {
			t.Errorf("tests[%d] - target wrong. expected=%s, got=%s", i, tt.expected, got)
		}
	}
	if _, err := ParseCompileTarget("jvm"); err == nil {
		t.Errorf("expected error for unknown target")
	}
}

func TestExternalCrates(t *testing.T) {
	src := `use std::collections::HashMap;
use serde::Serialize;
use crate::utils::add;
pub use rand::Rng;
use serde::Deserialize;
use super::x;
fn main() {}
`
	got := ExternalCrates(src)
	if strings.Join(got, ",") != "serde,rand" {
		t.Errorf("crates wrong. expected=%q, got=%q", "serde,rand", got)
	}
}
