// Diagnostic reporting for the Windjammer compiler.
// Phase errors are converted into diagnostics and rendered with source context.

package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic message.
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticNote
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticNote:
		return "note"
	default:
		return "unknown"
	}
}

// DiagnosticCategory represents the pipeline stage that produced a diagnostic.
type DiagnosticCategory int

const (
	DiagnosticLexical DiagnosticCategory = iota
	DiagnosticSyntax
	DiagnosticOwnership
	DiagnosticCodegen
	DiagnosticIO
)

func (dc DiagnosticCategory) String() string {
	switch dc {
	case DiagnosticLexical:
		return "lexical"
	case DiagnosticSyntax:
		return "syntax"
	case DiagnosticOwnership:
		return "ownership"
	case DiagnosticCodegen:
		return "codegen"
	case DiagnosticIO:
		return "io"
	default:
		return "unknown"
	}
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Code        string
	Message     string
	Suggestions []string
	Notes       []string
	Span        position.Span
	Level       DiagnosticLevel
	Category    DiagnosticCategory
}

// DiagnosticBuilder helps construct diagnostic messages with fluent API.
type DiagnosticBuilder struct {
	diagnostic *Diagnostic
}

// NewDiagnostic creates a new diagnostic builder.
func NewDiagnostic() *DiagnosticBuilder {
	return &DiagnosticBuilder{diagnostic: &Diagnostic{}}
}

func (db *DiagnosticBuilder) Error() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticError

	return db
}

func (db *DiagnosticBuilder) Warning() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticWarning

	return db
}

// AsNote marks the diagnostic as informational.
func (db *DiagnosticBuilder) AsNote() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticNote

	return db
}

func (db *DiagnosticBuilder) Category(c DiagnosticCategory) *DiagnosticBuilder {
	db.diagnostic.Category = c

	return db
}

func (db *DiagnosticBuilder) Code(code string) *DiagnosticBuilder {
	db.diagnostic.Code = code

	return db
}

func (db *DiagnosticBuilder) Message(format string, args ...interface{}) *DiagnosticBuilder {
	if len(args) == 0 {
		db.diagnostic.Message = format
	} else {
		db.diagnostic.Message = fmt.Sprintf(format, args...)
	}

	return db
}

func (db *DiagnosticBuilder) Span(span position.Span) *DiagnosticBuilder {
	db.diagnostic.Span = span

	return db
}

func (db *DiagnosticBuilder) At(pos position.Position) *DiagnosticBuilder {
	db.diagnostic.Span = position.SpanAt(pos)

	return db
}

func (db *DiagnosticBuilder) Suggest(help string) *DiagnosticBuilder {
	if help != "" {
		db.diagnostic.Suggestions = append(db.diagnostic.Suggestions, help)
	}

	return db
}

func (db *DiagnosticBuilder) Note(note string) *DiagnosticBuilder {
	if note != "" {
		db.diagnostic.Notes = append(db.diagnostic.Notes, note)
	}

	return db
}

func (db *DiagnosticBuilder) Build() *Diagnostic {
	return db.diagnostic
}

// DiagnosticEngine collects diagnostics for a compilation and renders them
// against the sources they refer to.
type DiagnosticEngine struct {
	diagnostics []Diagnostic
	sources     map[string]*position.SourceFile
	config      DiagnosticConfig
}

// DiagnosticConfig controls diagnostic behavior.
type DiagnosticConfig struct {
	// MaxErrors stops collection after this many errors; 0 means no limit.
	MaxErrors       int
	ShowSuggestions bool
	Color           bool
}

// NewDiagnosticEngine creates a new diagnostic engine.
func NewDiagnosticEngine(config DiagnosticConfig) *DiagnosticEngine {
	return &DiagnosticEngine{
		sources: make(map[string]*position.SourceFile),
		config:  config,
	}
}

// AddSource registers the text of a file so snippets can be shown.
func (de *DiagnosticEngine) AddSource(sf *position.SourceFile) {
	de.sources[sf.Filename] = sf
}

// AddDiagnostic adds a diagnostic to the engine.
func (de *DiagnosticEngine) AddDiagnostic(diagnostic *Diagnostic) {
	if de.truncated() {
		return
	}

	de.diagnostics = append(de.diagnostics, *diagnostic)

	if de.config.MaxErrors > 0 && diagnostic.Level == DiagnosticError && len(de.GetErrors()) == de.config.MaxErrors {
		de.diagnostics = append(de.diagnostics, *NewDiagnostic().
			AsNote().
			Code("E0001").
			Message("stopping after %d errors", de.config.MaxErrors).
			Build())
	}
}

func (de *DiagnosticEngine) truncated() bool {
	return de.config.MaxErrors > 0 && len(de.GetErrors()) >= de.config.MaxErrors
}

// AddError converts err into diagnostics and adds them.
func (de *DiagnosticEngine) AddError(err error) {
	for _, d := range FromError(err) {
		de.AddDiagnostic(d)
	}
}

// GetDiagnostics returns all diagnostics.
func (de *DiagnosticEngine) GetDiagnostics() []Diagnostic {
	return de.diagnostics
}

// GetErrors returns only error-level diagnostics.
func (de *DiagnosticEngine) GetErrors() []Diagnostic {
	errors := make([]Diagnostic, 0)

	for _, diag := range de.diagnostics {
		if diag.Level == DiagnosticError {
			errors = append(errors, diag)
		}
	}

	return errors
}

// HasErrors returns true if there are any errors.
func (de *DiagnosticEngine) HasErrors() bool {
	return len(de.GetErrors()) > 0
}

// Clear removes all diagnostics.
func (de *DiagnosticEngine) Clear() {
	de.diagnostics = de.diagnostics[:0]
}

// SortDiagnostics sorts diagnostics by position and severity.
func (de *DiagnosticEngine) SortDiagnostics() {
	sort.SliceStable(de.diagnostics, func(i, j int) bool {
		a, b := de.diagnostics[i], de.diagnostics[j]

		if a.Span.Start.Filename != b.Span.Start.Filename {
			return a.Span.Start.Filename < b.Span.Start.Filename
		}

		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}

		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}

		return a.Level < b.Level
	})
}

// FormatDiagnostics returns every diagnostic rendered with its snippet,
// followed by a summary line.
func (de *DiagnosticEngine) FormatDiagnostics() string {
	if len(de.diagnostics) == 0 {
		return ""
	}

	de.SortDiagnostics()

	var result strings.Builder

	for i := range de.diagnostics {
		diag := &de.diagnostics[i]
		if i > 0 {
			result.WriteString("\n")
		}

		if !de.config.ShowSuggestions {
			plain := *diag
			plain.Suggestions = nil
			diag = &plain
		}

		result.WriteString(Render(diag, de.sources[diag.Span.Start.Filename], de.config.Color))
	}

	result.WriteString(de.formatSummary())

	return result.String()
}

func (de *DiagnosticEngine) formatSummary() string {
	errorCount := len(de.GetErrors())
	if errorCount == 0 {
		return ""
	}

	return fmt.Sprintf("\n%d error(s) emitted\n", errorCount)
}
