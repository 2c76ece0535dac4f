package diagnostic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/position"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiCyan   = "\x1b[36m"
)

type painter bool

func (p painter) paint(code, s string) string {
	if !p {
		return s
	}
	return code + s + ansiReset
}

// Render formats d as
//
//	path:line:col: error: message
//	  help: suggestion
//	   |
//	 3 | let x = y +
//	   |            ^
//
// The snippet is omitted when src is nil or the span has no line.
func Render(d *Diagnostic, src *position.SourceFile, color bool) string {
	p := painter(color)
	var b strings.Builder

	start := d.Span.Start
	switch {
	case start.Filename != "" && start.Line > 0:
		fmt.Fprintf(&b, "%s:%d:%d: ", start.Filename, start.Line, start.Column)
	case start.Filename != "":
		fmt.Fprintf(&b, "%s: ", start.Filename)
	}

	level := d.Level.String()
	switch d.Level {
	case DiagnosticError:
		level = p.paint(ansiBold+ansiRed, level)
	case DiagnosticWarning:
		level = p.paint(ansiBold+ansiYellow, level)
	}
	fmt.Fprintf(&b, "%s: %s\n", level, p.paint(ansiBold, d.Message))

	for _, s := range d.Suggestions {
		fmt.Fprintf(&b, "  %s: %s\n", p.paint(ansiCyan, "help"), s)
	}
	for _, n := range d.Notes {
		fmt.Fprintf(&b, "  note: %s\n", n)
	}

	if src == nil || start.Line <= 0 {
		return b.String()
	}
	line := src.GetLine(start.Line)
	if line == "" && start.Line > len(src.Lines) {
		return b.String()
	}

	num := strconv.Itoa(start.Line)
	gutter := strings.Repeat(" ", len(num))
	bar := p.paint(ansiBlue, "|")
	fmt.Fprintf(&b, "%s %s\n", gutter, bar)
	fmt.Fprintf(&b, "%s %s %s\n", p.paint(ansiBlue, num), bar, line)
	fmt.Fprintf(&b, "%s %s %s\n", gutter, bar, p.paint(ansiBold+ansiRed, marker(line, d.Span)))
	return b.String()
}

// marker builds the caret line under the span, keeping tabs so the carets
// line up with the source text
func marker(line string, span position.Span) string {
	col := span.Start.Column
	if col < 1 {
		col = 1
	}
	if col > len(line)+1 {
		col = len(line) + 1
	}
	var b strings.Builder
	for i := 0; i < col-1; i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	width := 1
	if span.End.Line == span.Start.Line && span.End.Column > span.Start.Column {
		width = span.End.Column - span.Start.Column
	}
	if rest := len(line) - (col - 1); width > rest && rest > 0 {
		width = rest
	}
	b.WriteString(strings.Repeat("^", width))
	return b.String()
}
