package testing

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputFence is the fence language of a case's Windjammer source.
const InputFence = "windjammer"

// AssertionKind names what an assertion fence checks.
type AssertionKind string

const (
	// AssertRust requires every line of the fence in the Rust output.
	AssertRust AssertionKind = "rust"
	// AssertRustAbsent forbids every line of the fence in the Rust output.
	AssertRustAbsent AssertionKind = "rust-absent"
	// AssertGo requires every line of the fence in the Go output.
	AssertGo AssertionKind = "go"
	// AssertWasmTypes requires every line in the TypeScript declarations of the wasm target.
	AssertWasmTypes AssertionKind = "wasm-dts"
	// AssertCompileError requires compilation to fail with a message containing the fence text.
	AssertCompileError AssertionKind = "compile-error"
)

var assertionKinds = map[string]AssertionKind{
	string(AssertRust):         AssertRust,
	string(AssertRustAbsent):   AssertRustAbsent,
	string(AssertGo):           AssertGo,
	string(AssertWasmTypes):    AssertWasmTypes,
	string(AssertCompileError): AssertCompileError,
}

// Assertion is one assertion fence.
type Assertion struct {
	Kind    AssertionKind
	Content string
	Line    int
}

// Lines returns the non-blank lines of the assertion, trimmed.
func (a Assertion) Lines() []string {
	var out []string
	for _, l := range strings.Split(a.Content, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Case is a golden case extracted from a "Test: <name>" section.
type Case struct {
	Name       string
	Input      string
	Line       int
	Assertions []Assertion
}

// ExtractCases parses a Markdown document into golden cases. A case
// starts at a heading "Test: <name>" and holds one windjammer fence plus
// at least one assertion fence. Fences without a language are prose.
func ExtractCases(markdown string) ([]Case, error) {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var current *Case

	flush := func() error {
		if current == nil {
			return nil
		}
		if current.Input == "" {
			return fmt.Errorf("line %d: test %q has no %s fence", current.Line, current.Name, InputFence)
		}
		if len(current.Assertions) == 0 {
			return fmt.Errorf("line %d: test %q has no assertion fences", current.Line, current.Name)
		}
		cases = append(cases, *current)
		current = nil
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := nodeText(n, source)
			if !strings.HasPrefix(heading, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := flush(); err != nil {
				return ast.WalkStop, err
			}
			current = &Case{
				Name: strings.TrimSpace(strings.TrimPrefix(heading, "Test: ")),
				Line: lineOf(n, source),
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			if language == "" {
				return ast.WalkContinue, nil
			}
			line := lineOf(n, source)
			if current == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of a test case", line, language)
			}
			content := fenceContent(n, source)

			if language == InputFence {
				if current.Input != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple %s fences in test %q", line, InputFence, current.Name)
				}
				current.Input = content
				return ast.WalkContinue, nil
			}

			kind, ok := assertionKinds[language]
			if !ok {
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language %q in test %q", line, language, current.Name)
			}
			current.Assertions = append(current.Assertions, Assertion{
				Kind:    kind,
				Content: strings.TrimRight(content, "\n"),
				Line:    line,
			})
		}

		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return cases, nil
}

func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				buf.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func fenceContent(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf returns the 1-based line where node's content starts
func lineOf(node ast.Node, source []byte) int {
	start := -1
	if node.Type() == ast.TypeBlock && node.Lines().Len() > 0 {
		start = node.Lines().At(0).Start
	} else if t, ok := node.FirstChild().(*ast.Text); ok {
		start = t.Segment.Start
	}
	if start < 0 {
		return 1
	}
	return bytes.Count(source[:min(start, len(source))], []byte("\n")) + 1
}
