package diagnostic

import (
	stderrors "errors"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/analyzer"
	"github.com/windjammer-lang/windjammer/internal/codegen"
	"github.com/windjammer-lang/windjammer/internal/codegen/golang"
	"github.com/windjammer-lang/windjammer/internal/codegen/rust"
	"github.com/windjammer-lang/windjammer/internal/errors"
	"github.com/windjammer-lang/windjammer/internal/lexer"
	"github.com/windjammer-lang/windjammer/internal/parser"
	"github.com/windjammer-lang/windjammer/internal/position"
)

// FromError converts a phase error into diagnostics. A parse error list
// yields one diagnostic per entry; unknown errors yield one without a span.
func FromError(err error) []*Diagnostic {
	if err == nil {
		return nil
	}

	var list parser.ErrorList
	if stderrors.As(err, &list) {
		out := make([]*Diagnostic, 0, len(list))
		for _, pe := range list {
			out = append(out, fromParseError(pe))
		}
		return out
	}

	var (
		pe  *parser.ParseError
		le  *lexer.LexError
		ae  *analyzer.Error
		rge *rust.GenerateError
		gge *golang.GenerateError
		ce  *codegen.ConstraintError
	)
	switch {
	case stderrors.As(err, &pe):
		return []*Diagnostic{fromParseError(pe)}
	case stderrors.As(err, &le):
		b := NewDiagnostic().Error().Category(DiagnosticLexical).Code("E1001").
			Message(le.Message).At(le.Pos)
		if le.Text != "" {
			b.Note("found `" + le.Text + "`")
		}
		return []*Diagnostic{b.Build()}
	case stderrors.As(err, &ae):
		msg := ae.Message
		if ae.Function != "" {
			msg = "in function `" + ae.Function + "`: " + msg
		}
		return []*Diagnostic{NewDiagnostic().Error().Category(DiagnosticOwnership).Code("E3001").
			Message(msg).Span(ae.Span).Build()}
	case stderrors.As(err, &rge):
		return []*Diagnostic{NewDiagnostic().Error().Category(DiagnosticCodegen).Code("E4001").
			Message("cannot generate %s: %s", rge.Node, rge.Message).Span(rge.Span).Build()}
	case stderrors.As(err, &gge):
		return []*Diagnostic{NewDiagnostic().Error().Category(DiagnosticCodegen).Code("E4002").
			Message("cannot generate Go for %s: %s", gge.Node, gge.Message).Span(gge.Span).
			Suggest("use the rust target for this program").Build()}
	case stderrors.As(err, &ce):
		return []*Diagnostic{NewDiagnostic().Error().Category(DiagnosticCodegen).Code("E4003").
			Message(ce.Error()).Suggest("adjust crate_versions in wj.json").Build()}
	}

	var se *errors.StandardError
	if stderrors.As(err, &se) && se.Category == errors.CategoryConfig {
		return []*Diagnostic{NewDiagnostic().Error().Category(DiagnosticIO).Code("E5002").
			Message(se.Message).Build()}
	}
	return []*Diagnostic{NewDiagnostic().Error().Category(DiagnosticIO).Code("E5001").
		Message(err.Error()).Build()}
}

func fromParseError(pe *parser.ParseError) *Diagnostic {
	b := NewDiagnostic().Error().Category(DiagnosticSyntax).Code(parseCode(pe.Kind)).
		Message(pe.Message).Suggest(pe.Suggestion)
	span := position.SpanAt(pe.Pos)
	if pe.Token.Literal != "" && pe.Token.Span.IsValid() {
		span = pe.Token.Span
	}
	return b.Span(span).Build()
}

func parseCode(k parser.ErrorKind) string {
	switch k {
	case parser.UnexpectedToken:
		return "E2001"
	case parser.MissingToken:
		return "E2002"
	case parser.TypeError:
		return "E2004"
	case parser.NameError:
		return "E2005"
	}
	return "E2003"
}

// Summary is a one-line description of err suitable for logs.
func Summary(err error) string {
	ds := FromError(err)
	if len(ds) == 0 {
		return ""
	}
	msgs := make([]string, len(ds))
	for i, d := range ds {
		msgs[i] = d.Message
	}
	return strings.Join(msgs, "; ")
}
