package diagnostic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/codegen"
	"github.com/windjammer-lang/windjammer/internal/codegen/golang"
	"github.com/windjammer-lang/windjammer/internal/errors"
	"github.com/windjammer-lang/windjammer/internal/lexer"
	"github.com/windjammer-lang/windjammer/internal/parser"
	"github.com/windjammer-lang/windjammer/internal/position"
)

func pos(file string, line, col int) position.Position {
	return position.Position{Filename: file, Line: line, Column: col}
}

func TestRender(t *testing.T) {
	src := position.NewSourceFile("a.wj", "fn main() {\n    bar(1\n}")
	d := NewDiagnostic().Error().Code("E2002").
		Message("expected `)`").
		Suggest("close the call").
		Span(position.Span{Start: pos("a.wj", 2, 5), End: pos("a.wj", 2, 8)}).
		Build()

	expected := "a.wj:2:5: error: expected `)`\n" +
		"  help: close the call\n" +
		"  |\n" +
		"2 |     bar(1\n" +
		"  |     ^^^\n"
	if got := Render(d, src, false); got != expected {
		t.Errorf("render wrong.\nexpected=%q\ngot=%q", expected, got)
	}

	colored := Render(d, src, true)
	if !strings.Contains(colored, ansiRed) || !strings.Contains(colored, ansiReset) {
		t.Errorf("color output missing escapes: %q", colored)
	}
}

func TestRenderWithoutSource(t *testing.T) {
	tests := []struct {
		diag     *Diagnostic
		expected string
	}{
		{NewDiagnostic().Error().Message("boom").Build(), "error: boom\n"},
		{NewDiagnostic().Warning().Message("hmm").At(pos("x.wj", 3, 1)).Build(), "x.wj:3:1: warning: hmm\n"},
		{NewDiagnostic().Error().Message("no span").Note("see docs").Build(), "error: no span\n  note: see docs\n"},
	}
	for i, tt := range tests {
		if got := Render(tt.diag, nil, false); got != tt.expected {
			t.Errorf("tests[%d] - render wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestMarker(t *testing.T) {
	tests := []struct {
		line     string
		span     position.Span
		expected string
	}{
		{"let x = 1", position.SpanAt(pos("", 1, 5)), "    ^"},
		{"\tx = 1", position.Span{Start: pos("", 1, 2), End: pos("", 1, 3)}, "\t^"},
		{"abc", position.Span{Start: pos("", 1, 2), End: pos("", 1, 40)}, " ^^"},
		{"abc", position.SpanAt(pos("", 1, 9)), "   ^"},
	}
	for i, tt := range tests {
		if got := marker(tt.line, tt.span); got != tt.expected {
			t.Errorf("tests[%d] - marker wrong. expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestFromLexError(t *testing.T) {
	_, err := lexer.Tokenize("main.wj", "let x = 1 # 2")
	ds := FromError(err)
	if len(ds) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(ds))
	}
	d := ds[0]
	if d.Category != DiagnosticLexical || d.Code != "E1001" {
		t.Errorf("classification wrong. got=%s/%s", d.Category, d.Code)
	}
	if d.Span.Start.Line != 1 || d.Span.Start.Column != 11 {
		t.Errorf("position wrong. got=%s", d.Span.Start)
	}
	out := Render(d, position.NewSourceFile("main.wj", "let x = 1 # 2"), false)
	for _, want := range []string{"main.wj:1:11: error: unexpected character '#'", "1 | let x = 1 # 2", "  |           ^"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}

func TestFromParseErrors(t *testing.T) {
	_, err := parser.ParseSource("t.wj", "fn main() { let = 5 }")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	ds := FromError(fmt.Errorf("build t.wj: %w", err))
	if len(ds) == 0 {
		t.Fatal("no diagnostics")
	}
	for i, d := range ds {
		if d.Category != DiagnosticSyntax || !strings.HasPrefix(d.Code, "E2") {
			t.Errorf("ds[%d] - classification wrong. got=%s/%s", i, d.Category, d.Code)
		}
		if d.Span.Start.Filename != "t.wj" || d.Span.Start.Line != 1 {
			t.Errorf("ds[%d] - position wrong. got=%s", i, d.Span.Start)
		}
	}
}

func TestFromError(t *testing.T) {
	program, err := parser.ParseSource("t.wj", "fn f() { let g = |x| x }")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, goErr := golang.Generate(program)

	tests := []struct {
		name     string
		err      error
		code     string
		category DiagnosticCategory
		message  string
	}{
		{
			name:     "analyzer",
			err:      fmt.Errorf("analyze: %w", &analyzer.Error{Function: "f", Message: "bad"}),
			code:     "E3001",
			category: DiagnosticOwnership,
			message:  "in function `f`: bad",
		},
		{
			name:     "go generator",
			err:      goErr,
			code:     "E4002",
			category: DiagnosticCodegen,
			message:  "cannot generate Go for closure",
		},
		{
			name:     "crate constraint",
			err:      &codegen.ConstraintError{Crate: "rand", Reason: "nope"},
			code:     "E4003",
			category: DiagnosticCodegen,
			message:  "crate rand: nope",
		},
		{
			name:     "config",
			err:      errors.InvalidConfig("wj.json", fmt.Errorf("bad json")),
			code:     "E5002",
			category: DiagnosticIO,
			message:  "invalid config wj.json: bad json",
		},
		{
			name:     "plain",
			err:      fmt.Errorf("disk full"),
			code:     "E5001",
			category: DiagnosticIO,
			message:  "disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := FromError(tt.err)
			if len(ds) != 1 {
				t.Fatalf("expected 1 diagnostic, got %d", len(ds))
			}
			d := ds[0]
			if d.Code != tt.code || d.Category != tt.category {
				t.Errorf("classification wrong. expected=%s/%s, got=%s/%s", tt.category, tt.code, d.Category, d.Code)
			}
			if !strings.HasPrefix(d.Message, tt.message) {
				t.Errorf("message wrong. expected prefix %q, got=%q", tt.message, d.Message)
			}
		})
	}

	if FromError(nil) != nil {
		t.Error("nil error must produce no diagnostics")
	}
}

func TestEngine(t *testing.T) {
	de := NewDiagnosticEngine(DiagnosticConfig{MaxErrors: 2, ShowSuggestions: true})
	de.AddDiagnostic(NewDiagnostic().Error().Message("second").At(pos("b.wj", 1, 1)).Build())
	de.AddDiagnostic(NewDiagnostic().Error().Message("first").At(pos("a.wj", 4, 2)).Suggest("fix it").Build())
	de.AddDiagnostic(NewDiagnostic().Error().Message("dropped").At(pos("a.wj", 1, 1)).Build())

	if got := len(de.GetErrors()); got != 2 {
		t.Fatalf("error count wrong. expected=2, got=%d", got)
	}
	if !de.HasErrors() {
		t.Error("HasErrors() = false")
	}

	out := de.FormatDiagnostics()
	if strings.Contains(out, "dropped") {
		t.Errorf("diagnostic past the limit was kept:\n%s", out)
	}
	first, second := strings.Index(out, "first"), strings.Index(out, "second")
	if first < 0 || second < 0 || first > second {
		t.Errorf("diagnostics not sorted by file:\n%s", out)
	}
	for _, want := range []string{"stopping after 2 errors", "help: fix it", "2 error(s) emitted"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	de.Clear()
	if de.HasErrors() || de.FormatDiagnostics() != "" {
		t.Error("Clear() left diagnostics behind")
	}
}

func TestEngineSnippets(t *testing.T) {
	de := NewDiagnosticEngine(DiagnosticConfig{})
	de.AddSource(position.NewSourceFile("m.wj", "fn main() {\n    oops\n}"))
	de.AddDiagnostic(NewDiagnostic().Error().Message("bad").Suggest("hidden").At(pos("m.wj", 2, 5)).Build())

	out := de.FormatDiagnostics()
	if !strings.Contains(out, "2 |     oops") {
		t.Errorf("snippet missing:\n%s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("suggestions shown although disabled:\n%s", out)
	}
}
