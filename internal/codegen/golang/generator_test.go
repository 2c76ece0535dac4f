package golang

import (
	"errors"
	"strings"
	"testing"

	"github.com/windjammer-lang/windjammer/internal/parser"
)

func generate(t *testing.T, input string) string {
	t.Helper()
	program, err := parser.ParseSource("test.wj", input)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := Generate(program)
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	if _, err := Format(out); err != nil {
		t.Fatalf("generated source is not valid Go: %v\n%s", err, out)
	}
	return out
}

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

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []string
		unwanted []string
	}{
		{
			name: "struct with methods",
			input: `struct Counter { count: int }
impl Counter {
    fn new() -> Counter { Counter { count: 0 } }
    fn increment(self) { self.count += 1 }
    fn get(self) -> int { self.count }
}
fn main() {
    let mut c = Counter::new()
    c.increment()
    println("{}", c.get())
}`,
			want: []string{
				"type Counter struct {", "count int",
				"func NewCounter() Counter {", "return Counter{count: 0}",
				"func (self *Counter) Increment() {", "self.count++",
				"func (self *Counter) Get() int {", "return self.count",
				"c := NewCounter()", "c.Increment()",
				`fmt.Printf("%v\n", c.Get())`,
			},
		},
		{
			name: "enum as sealed interface",
			input: `enum Shape { Circle(f64), Rect { w: f64, h: f64 }, Empty }
fn area(s: Shape) -> f64 {
    match s {
        Shape::Circle(r) => 3.14 * r * r,
        Shape::Rect { w, h } => w * h,
        Shape::Empty => 0.0,
    }
}`,
			want: []string{
				"type Shape interface { isShape() }",
				"type ShapeCircle struct { Field0 float64 }",
				"type ShapeRect struct { w float64 h float64 }",
				"type ShapeEmpty struct{}",
				"func (ShapeCircle) isShape() {}",
				"func area(s Shape) float64 {",
				"switch tmp0 := s.(type) {",
				"case ShapeCircle: return 3.14 * tmp0.Field0 * tmp0.Field0",
				"case ShapeRect: return tmp0.w * tmp0.h",
				"case ShapeEmpty: return 0.0",
				`panic("unreachable")`,
			},
		},
		{
			name: "enum methods become functions",
			input: `enum Light { Red, Green }
impl Light {
    fn next(self) -> Light {
        match self {
            Light::Red => Light::Green,
            Light::Green => Light::Red,
        }
    }
}`,
			want: []string{
				"func LightNext(self Light) Light {",
				"switch self.(type) {",
				"case LightRed: return LightGreen{}",
				"case LightGreen: return LightRed{}",
			},
			unwanted: []string{"func (self *Light)"},
		},
		{
			name: "option and if let",
			input: `fn first(items: Vec<int>) -> Option<int> {
    if items.len() > 0 { Some(items[0]) } else { None }
}
fn show(items: Vec<int>) {
    if let Some(x) = first(items) { println("first {}", x) } else { println("empty") }
}`,
			want: []string{
				"func first(items []int) *int {",
				"if len(items) > 0 { return some(items[0]) } else { return nil }",
				"switch tmp0 := first(items); {",
				`case tmp0 != nil: fmt.Printf("first %v\n", (*tmp0))`,
				`default: fmt.Println("empty")`,
				"func some[T any](v T) *T {",
			},
		},
		{
			name: "loops",
			input: `fn sum(values: Vec<int>) -> int {
    let mut total = 0
    for v in values { total += v }
    for i in 0..10 { total += i }
    let mut n = 3
    while n > 0 { n -= 1 }
    total
}`,
			want: []string{
				"total := 0",
				"for _, v := range values { total += v }",
				"for i := 0; i < 10; i++ { total += i }",
				"for n > 0 { n-- }",
				"return total",
			},
		},
		{
			name: "push through a mutable reference",
			input: `fn push_tag(tags: &mut Vec<string>, t: string) { tags.push(t) }
fn main() {
    let mut tags: Vec<string> = Vec::new()
    push_tag(&mut tags, "a")
    println("{}", tags.len())
}`,
			want: []string{
				"func push_tag(tags *[]string, t string) {",
				"(*tags) = append((*tags), t)",
				"var tags []string",
				`push_tag(&tags, "a")`,
				`fmt.Printf("%v\n", len(tags))`,
			},
		},
		{
			name: "goroutines and defer",
			input: `fn work() {
    defer println("done")
    thread { println("bg") }
}`,
			want: []string{
				`defer fmt.Println("done")`,
				`go func() { fmt.Println("bg") }()`,
			},
		},
		{
			name: "match with guard",
			input: `fn sign(n: int) -> string {
    match n {
        0 => "zero",
        x if x < 0 => "neg",
        _ => "pos",
    }
}`,
			want: []string{
				"switch {",
				`case n == 0: return "zero"`,
				`case n < 0: return "neg"`,
				`default: return "pos"`,
			},
			unwanted: []string{`panic("unreachable")`},
		},
		{
			name: "literal match",
			input: `fn size(n: int) -> string {
    match n {
        1 | 2 => "small",
        _ => "big",
    }
}`,
			want: []string{
				"switch n {",
				`case 1, 2: return "small"`,
				`default: return "big"`,
			},
		},
		{
			name:  "format placeholders",
			input: `fn p(x: int, y: f64) { println("x = {x}, y = {:.2}", y) }`,
			want:  []string{`fmt.Printf("x = %v, y = %.2f\n", x, y)`},
		},
		{
			name:  "stderr printing",
			input: `fn warn() { eprintln("oops") }`,
			want:  []string{`import ( "fmt" "os" )`, `fmt.Fprintln(os.Stderr, "oops")`},
		},
		{
			name: "enum locals keep the interface type",
			input: `enum Light { Red, Green }
fn main() {
    let mut l = Light::Red
    l = Light::Green
}`,
			want: []string{"var l Light = LightRed{}", "l = LightGreen{}"},
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := generate(t, tt.input)
			checkContains(t, tt.name, out, tt.want, tt.unwanted)
			if !strings.HasPrefix(out, "package main\n") {
				t.Errorf("tests[%d] - package clause wrong. got=%q", i, out[:min(len(out), 20)])
			}
		})
	}
}

func TestGenerateRejectsClosures(t *testing.T) {
	program, err := parser.ParseSource("test.wj", `fn f() { let inc = |x| x + 1 }`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, err = Generate(program)
	var ge *GenerateError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GenerateError, got %v", err)
	}
	if ge.Node != "closure" {
		t.Errorf("node wrong. expected=%q, got=%q", "closure", ge.Node)
	}
}

func TestFormat(t *testing.T) {
	out, err := Format("package main\nfunc main(){}\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "func main() {}") {
		t.Errorf("format output wrong. got=%q", out)
	}

	bad := "package main\nfunc {"
	out, err = Format(bad)
	if err == nil {
		t.Fatal("expected an error for invalid source")
	}
	if out != bad {
		t.Errorf("invalid source should be returned unchanged. got=%q", out)
	}
}

func TestExported(t *testing.T) {
	tests := []struct {
		input, expected string
	}{
		{"get", "Get"},
		{"add_item", "AddItem"},
		{"to_json_string", "ToJsonString"},
		{"", ""},
	}
	for i, tt := range tests {
		if got := exported(tt.input); got != tt.expected {
			t.Errorf("tests[%d] - exported(%q) wrong. expected=%q, got=%q", i, tt.input, tt.expected, got)
		}
	}
}
