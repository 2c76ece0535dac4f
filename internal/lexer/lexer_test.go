package lexer

import (
	"errors"
	"testing"
)

type expectedToken struct {
	expectedType  TokenType
	expectedValue string
}

func checkTokens(t *testing.T, input string, tests []expectedToken) {
	t.Helper()

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedValue {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedValue, tok.Literal)
		}
	}
}

func TestBasicTokens(t *testing.T) {
	input := `fn main() {
	println("Hello, Windjammer!");
}`

	checkTokens(t, input, []expectedToken{
		{TokenFn, "fn"},
		{TokenIdentifier, "main"},
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenLBrace, "{"},
		{TokenIdentifier, "println"},
		{TokenLParen, "("},
		{TokenString, "Hello, Windjammer!"},
		{TokenRParen, ")"},
		{TokenSemicolon, ";"},
		{TokenRBrace, "}"},
		{TokenEOF, ""},
	})
}

func TestKeywords(t *testing.T) {
	input := `fn let mut const static struct enum trait impl match if else for in while loop
return break continue use go thread async await defer pub self unsafe as where type dyn bound mod extern Self`

	checkTokens(t, input, []expectedToken{
		{TokenFn, "fn"},
		{TokenLet, "let"},
		{TokenMut, "mut"},
		{TokenConst, "const"},
		{TokenStatic, "static"},
		{TokenStruct, "struct"},
		{TokenEnum, "enum"},
		{TokenTrait, "trait"},
		{TokenImpl, "impl"},
		{TokenMatch, "match"},
		{TokenIf, "if"},
		{TokenElse, "else"},
		{TokenFor, "for"},
		{TokenIn, "in"},
		{TokenWhile, "while"},
		{TokenLoop, "loop"},
		{TokenReturn, "return"},
		{TokenBreak, "break"},
		{TokenContinue, "continue"},
		{TokenUse, "use"},
		{TokenThread, "go"},
		{TokenThread, "thread"},
		{TokenAsync, "async"},
		{TokenAwait, "await"},
		{TokenDefer, "defer"},
		{TokenPub, "pub"},
		{TokenSelf, "self"},
		{TokenUnsafe, "unsafe"},
		{TokenAs, "as"},
		{TokenWhere, "where"},
		{TokenTypeKw, "type"},
		{TokenDyn, "dyn"},
		{TokenBound, "bound"},
		{TokenMod, "mod"},
		{TokenExtern, "extern"},
		{TokenIdentifier, "Self"},
		{TokenEOF, ""},
	})
}

func TestOperators(t *testing.T) {
	input := `== != <= >= && || -> => <- |> .. ..= :: += -= *= /= %= + - * / % = < > ! & | @ ? _ ; , . :`

	checkTokens(t, input, []expectedToken{
		{TokenEq, "=="},
		{TokenNe, "!="},
		{TokenLe, "<="},
		{TokenGe, ">="},
		{TokenAnd, "&&"},
		{TokenOr, "||"},
		{TokenArrow, "->"},
		{TokenFatArrow, "=>"},
		{TokenLeftArrow, "<-"},
		{TokenPipeOp, "|>"},
		{TokenDotDot, ".."},
		{TokenDotDotEq, "..="},
		{TokenDoubleColon, "::"},
		{TokenPlusAssign, "+="},
		{TokenMinusAssign, "-="},
		{TokenStarAssign, "*="},
		{TokenSlashAssign, "/="},
		{TokenPercentAssign, "%="},
		{TokenPlus, "+"},
		{TokenMinus, "-"},
		{TokenStar, "*"},
		{TokenSlash, "/"},
		{TokenPercent, "%"},
		{TokenAssign, "="},
		{TokenLt, "<"},
		{TokenGt, ">"},
		{TokenBang, "!"},
		{TokenAmpersand, "&"},
		{TokenPipe, "|"},
		{TokenAt, "@"},
		{TokenQuestion, "?"},
		{TokenUnderscore, "_"},
		{TokenSemicolon, ";"},
		{TokenComma, ","},
		{TokenDot, "."},
		{TokenColon, ":"},
		{TokenEOF, ""},
	})
}

func TestGenericCloseIsNotFused(t *testing.T) {
	checkTokens(t, `Vec<Option<int>>`, []expectedToken{
		{TokenIdentifier, "Vec"},
		{TokenLt, "<"},
		{TokenIdentifier, "Option"},
		{TokenLt, "<"},
		{TokenIdentifier, "int"},
		{TokenGt, ">"},
		{TokenGt, ">"},
		{TokenEOF, ""},
	})
}

func TestNumbers(t *testing.T) {
	checkTokens(t, `42 3.14 1_000 0xff 1..5 t.0.1 7.`, []expectedToken{
		{TokenInteger, "42"},
		{TokenFloat, "3.14"},
		{TokenInteger, "1000"},
		{TokenInteger, "0xff"},
		{TokenInteger, "1"},
		{TokenDotDot, ".."},
		{TokenInteger, "5"},
		{TokenIdentifier, "t"},
		{TokenDot, "."},
		{TokenInteger, "0"},
		{TokenDot, "."},
		{TokenInteger, "1"},
		{TokenInteger, "7"},
		{TokenDot, "."},
		{TokenEOF, ""},
	})
}

func TestDecorators(t *testing.T) {
	checkTokens(t, `@export @auto @ (x)`, []expectedToken{
		{TokenDecorator, "export"},
		{TokenDecorator, "auto"},
		{TokenAt, "@"},
		{TokenLParen, "("},
		{TokenIdentifier, "x"},
		{TokenRParen, ")"},
		{TokenEOF, ""},
	})
}

func TestStringEscapes(t *testing.T) {
	checkTokens(t, `"a\nb\t\"q\"\\" '\n' '\'' '\0' 'x' true false`, []expectedToken{
		{TokenString, "a\nb\t\"q\"\\"},
		{TokenChar, "\n"},
		{TokenChar, "'"},
		{TokenChar, "\x00"},
		{TokenChar, "x"},
		{TokenBool, "true"},
		{TokenBool, "false"},
		{TokenEOF, ""},
	})
}

func TestStringInterpolation(t *testing.T) {
	l := New(`"Hello ${user.name}, you have ${count({a: 1})} items"`)
	tok := l.NextToken()

	if tok.Type != TokenInterpolatedString {
		t.Fatalf("tokentype wrong. expected=%q, got=%q", TokenInterpolatedString, tok.Type)
	}

	expected := []StringPart{
		{Kind: PartLiteral, Text: "Hello "},
		{Kind: PartExpression, Text: "user.name"},
		{Kind: PartLiteral, Text: ", you have "},
		{Kind: PartExpression, Text: "count({a: 1})"},
		{Kind: PartLiteral, Text: " items"},
	}

	if len(tok.Parts) != len(expected) {
		t.Fatalf("parts length wrong. expected=%d, got=%d (%v)", len(expected), len(tok.Parts), tok.Parts)
	}
	for i, part := range expected {
		if tok.Parts[i] != part {
			t.Errorf("parts[%d] wrong. expected=%+v, got=%+v", i, part, tok.Parts[i])
		}
	}
}

func TestCommentsAndDocComments(t *testing.T) {
	input := `// plain comment
/// Adds two numbers.
fn add() // trailing
//// banner
`
	checkTokens(t, input, []expectedToken{
		{TokenDocComment, "Adds two numbers."},
		{TokenFn, "fn"},
		{TokenIdentifier, "add"},
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenEOF, ""},
	})
}

func TestTokenPositions(t *testing.T) {
	tokens, err := Tokenize("pos.wj", "let x = 1\n  y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		line, column int
	}{
		{1, 1}, {1, 5}, {1, 7}, {1, 9}, {2, 3},
	}

	for i, tt := range tests {
		pos := tokens[i].Pos()
		if pos.Line != tt.line || pos.Column != tt.column {
			t.Errorf("tokens[%d] %s at %d:%d, want %d:%d",
				i, tokens[i].Literal, pos.Line, pos.Column, tt.line, tt.column)
		}
		if pos.Filename != "pos.wj" {
			t.Errorf("tokens[%d] filename = %q", i, pos.Filename)
		}
	}
}

func TestUnexpectedCharacterIsFatal(t *testing.T) {
	tests := []struct {
		input   string
		line    int
		column  int
		message string
	}{
		{"let x = 1 # 2", 1, 11, "unexpected character '#'"},
		{"let s = \"open", 1, 9, "unterminated string literal"},
		{"\n  'ab'", 2, 3, "unterminated character literal"},
		{`"${oops"`, 1, 1, "unterminated string interpolation"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Tokenize("", tt.input)

			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("expected *LexError, got %v", err)
			}
			if lexErr.Pos.Line != tt.line || lexErr.Pos.Column != tt.column {
				t.Errorf("position = %s, want %d:%d", lexErr.Pos, tt.line, tt.column)
			}
			if lexErr.Message != tt.message {
				t.Errorf("message = %q, want %q", lexErr.Message, tt.message)
			}
		})
	}
}

func TestRenderRoundTrip(t *testing.T) {
	var samples []Token

	for word, tt := range keywords {
		samples = append(samples, Token{Type: tt, Literal: word})
	}
	for tt, text := range operatorText {
		samples = append(samples, Token{Type: tt, Literal: text})
	}
	samples = append(samples,
		Token{Type: TokenIdentifier, Literal: "value_1"},
		Token{Type: TokenInteger, Literal: "1234"},
		Token{Type: TokenFloat, Literal: "0.5"},
		Token{Type: TokenString, Literal: "tab\there \"quoted\""},
		Token{Type: TokenChar, Literal: "'"},
		Token{Type: TokenChar, Literal: "\x00"},
		Token{Type: TokenDecorator, Literal: "route"},
	)

	for _, want := range samples {
		src := Render(want)
		tokens, err := Tokenize("", src)
		if err != nil {
			t.Fatalf("Tokenize(%q) failed: %v", src, err)
		}
		if len(tokens) != 2 || tokens[1].Type != TokenEOF {
			t.Fatalf("Tokenize(%q) produced %d tokens, want token + EOF", src, len(tokens))
		}
		if tokens[0].Type != want.Type || tokens[0].Literal != want.Literal {
			t.Errorf("round trip of %q: got {%s %q}, want {%s %q}",
				src, tokens[0].Type, tokens[0].Literal, want.Type, want.Literal)
		}
	}
}
