// Package lexer implements the Windjammer lexical analyzer.
// It turns UTF-8 source text into located tokens, including the parts of
// interpolated strings, and fails on the first unexpected character.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/windjammer-lang/windjammer/internal/position"
)

// Lexer represents the lexical analyzer
type Lexer struct {
	input        string
	filename     string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int  // current line number
	column       int  // current column number
	prevType     TokenType
	message      string // reason for the last TokenIllegal
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with filename for error reporting
func NewWithFilename(input, filename string) *Lexer {
	l := &Lexer{
		input:    input,
		filename: filename,
		line:     1,
		prevType: TokenEOF,
	}
	l.readChar()
	return l
}

// Tokenize lexes the whole source of filename.
func Tokenize(filename, input string) ([]Token, error) {
	return NewWithFilename(input, filename).Tokenize()
}

// Tokenize reads tokens until EOF. The returned slice always ends with
// TokenEOF unless an error is returned.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == TokenIllegal {
			return tokens, &LexError{Pos: tok.Span.Start, Text: tok.Literal, Message: l.message}
		}
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
	}
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++

	if l.position > 0 && l.position <= len(l.input) && l.input[l.position-1] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// peekCharAt returns the character n bytes after the current one
func (l *Lexer) peekCharAt(n int) byte {
	idx := l.position + n
	if idx >= len(l.input) {
		return 0
	}
	return l.input[idx]
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// match consumes the next character when it equals next.
func (l *Lexer) match(next byte) bool {
	if l.peekChar() == next {
		l.readChar()
		return true
	}
	return false
}

// skipWhitespace skips blanks, newlines and plain // comments. It stops in
// front of a /// doc comment.
func (l *Lexer) skipWhitespace() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			if l.peekCharAt(2) == '/' && l.peekCharAt(3) != '/' {
				return
			}
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) currentPosition() position.Position {
	return position.Position{Filename: l.filename, Line: l.line, Column: l.column, Offset: l.position}
}

func (l *Lexer) tokenFrom(tokenType TokenType, literal string, start position.Position) Token {
	l.prevType = tokenType
	return Token{
		Type:    tokenType,
		Literal: literal,
		Span:    position.Span{Start: start, End: l.currentPosition()},
	}
}

func (l *Lexer) illegal(start position.Position, text, message string) Token {
	l.message = message
	return l.tokenFrom(TokenIllegal, text, start)
}

// NextToken returns the next token of the input
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	start := l.currentPosition()

	if l.atEOF() {
		return l.tokenFrom(TokenEOF, "", start)
	}

	simple := func(tt TokenType) Token {
		l.readChar()
		return l.tokenFrom(tt, operatorText[tt], start)
	}

	switch l.ch {
	case '=':
		if l.match('=') {
			return simple(TokenEq)
		}
		if l.match('>') {
			return simple(TokenFatArrow)
		}
		return simple(TokenAssign)
	case '+':
		if l.match('=') {
			return simple(TokenPlusAssign)
		}
		return simple(TokenPlus)
	case '-':
		if l.match('=') {
			return simple(TokenMinusAssign)
		}
		if l.match('>') {
			return simple(TokenArrow)
		}
		return simple(TokenMinus)
	case '*':
		if l.match('=') {
			return simple(TokenStarAssign)
		}
		return simple(TokenStar)
	case '/':
		if l.peekChar() == '/' {
			return l.readDocComment(start)
		}
		if l.match('=') {
			return simple(TokenSlashAssign)
		}
		return simple(TokenSlash)
	case '%':
		if l.match('=') {
			return simple(TokenPercentAssign)
		}
		return simple(TokenPercent)
	case '!':
		if l.match('=') {
			return simple(TokenNe)
		}
		return simple(TokenBang)
	case '<':
		if l.match('=') {
			return simple(TokenLe)
		}
		if l.match('-') {
			return simple(TokenLeftArrow)
		}
		return simple(TokenLt)
	case '>':
		// '>>' is never fused so nested generic lists close one level per token.
		if l.match('=') {
			return simple(TokenGe)
		}
		return simple(TokenGt)
	case '&':
		if l.match('&') {
			return simple(TokenAnd)
		}
		return simple(TokenAmpersand)
	case '|':
		if l.match('|') {
			return simple(TokenOr)
		}
		if l.match('>') {
			return simple(TokenPipeOp)
		}
		return simple(TokenPipe)
	case '.':
		if l.peekChar() == '.' {
			l.readChar()
			if l.match('=') {
				return simple(TokenDotDotEq)
			}
			return simple(TokenDotDot)
		}
		return simple(TokenDot)
	case ':':
		if l.match(':') {
			return simple(TokenDoubleColon)
		}
		return simple(TokenColon)
	case '(':
		return simple(TokenLParen)
	case ')':
		return simple(TokenRParen)
	case '{':
		return simple(TokenLBrace)
	case '}':
		return simple(TokenRBrace)
	case '[':
		return simple(TokenLBracket)
	case ']':
		return simple(TokenRBracket)
	case ',':
		return simple(TokenComma)
	case ';':
		return simple(TokenSemicolon)
	case '?':
		return simple(TokenQuestion)
	case '@':
		if isIdentStart(l.peekChar()) {
			l.readChar()
			name := l.readIdentifier()
			return l.tokenFrom(TokenDecorator, name, start)
		}
		return simple(TokenAt)
	case '"':
		return l.readString(start)
	case '\'':
		return l.readCharLiteral(start)
	}

	if isDigit(l.ch) {
		return l.readNumber(start)
	}
	if isIdentStart(l.ch) || l.isUnicodeLetter() {
		ident := l.readIdentifier()
		if ident == "_" {
			return l.tokenFrom(TokenUnderscore, ident, start)
		}
		return l.tokenFrom(lookupIdent(ident), ident, start)
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.position:])
	return l.illegal(start, string(r), "unexpected character "+quoteRune(r))
}

// readDocComment reads a /// comment. skipWhitespace guarantees the current
// input is a doc comment when this is reached.
func (l *Lexer) readDocComment(start position.Position) Token {
	l.readChar()
	l.readChar()
	l.readChar()
	begin := l.position
	for l.ch != '\n' && !l.atEOF() {
		l.readChar()
	}
	text := strings.TrimRight(l.input[begin:l.position], "\r")
	text = strings.TrimPrefix(text, " ")
	tok := l.tokenFrom(TokenDocComment, text, start)
	return tok
}

// readIdentifier reads an identifier made of letters, digits and underscores
func (l *Lexer) readIdentifier() string {
	begin := l.position
	for !l.atEOF() {
		if isIdentStart(l.ch) || isDigit(l.ch) {
			l.readChar()
			continue
		}
		if l.isUnicodeLetter() {
			_, size := utf8.DecodeRuneInString(l.input[l.position:])
			for i := 0; i < size; i++ {
				l.readChar()
			}
			continue
		}
		break
	}
	return l.input[begin:l.position]
}

func (l *Lexer) isUnicodeLetter() bool {
	if l.ch < utf8.RuneSelf || l.atEOF() {
		return false
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.position:])
	return unicode.IsLetter(r)
}

// readNumber reads an integer or float literal. A float requires a digit
// after the dot, and a number directly after '.' (tuple index) is never a float.
func (l *Lexer) readNumber(start position.Position) Token {
	var sb strings.Builder

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		sb.WriteString("0x")
		l.readChar()
		l.readChar()
		for isHexDigit(l.ch) || l.ch == '_' {
			if l.ch != '_' {
				sb.WriteByte(l.ch)
			}
			l.readChar()
		}
		return l.tokenFrom(TokenInteger, sb.String(), start)
	}

	l.readDigits(&sb)

	tupleIndex := l.prevType == TokenDot
	if l.ch == '.' && isDigit(l.peekChar()) && !tupleIndex {
		sb.WriteByte('.')
		l.readChar()
		l.readDigits(&sb)
		return l.tokenFrom(TokenFloat, sb.String(), start)
	}

	return l.tokenFrom(TokenInteger, sb.String(), start)
}

func (l *Lexer) readDigits(sb *strings.Builder) {
	for isDigit(l.ch) || l.ch == '_' {
		if l.ch != '_' {
			sb.WriteByte(l.ch)
		}
		l.readChar()
	}
}

// readString reads a plain or interpolated string literal
func (l *Lexer) readString(start position.Position) Token {
	var (
		parts   []StringPart
		literal strings.Builder
		interp  bool
	)

	flush := func() {
		if literal.Len() > 0 {
			parts = append(parts, StringPart{Kind: PartLiteral, Text: literal.String()})
			literal.Reset()
		}
	}

	l.readChar()
	for l.ch != '"' {
		if l.atEOF() {
			return l.illegal(start, "\"", "unterminated string literal")
		}

		switch {
		case l.ch == '\\':
			l.readChar()
			if l.atEOF() {
				return l.illegal(start, "\"", "unterminated string literal")
			}
			literal.WriteString(unescape(l.ch, false))
			l.readChar()
		case l.ch == '$' && l.peekChar() == '{':
			flush()
			interp = true
			l.readChar()
			l.readChar()
			begin := l.position
			depth := 1
			for depth > 0 {
				if l.atEOF() {
					return l.illegal(start, "${", "unterminated string interpolation")
				}
				switch l.ch {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth > 0 {
					l.readChar()
				}
			}
			parts = append(parts, StringPart{Kind: PartExpression, Text: strings.TrimSpace(l.input[begin:l.position])})
			l.readChar()
		default:
			literal.WriteByte(l.ch)
			l.readChar()
		}
	}
	l.readChar()

	if !interp {
		return l.tokenFrom(TokenString, literal.String(), start)
	}

	flush()
	tok := l.tokenFrom(TokenInterpolatedString, renderParts(parts), start)
	tok.Parts = parts
	return tok
}

// readCharLiteral reads a character literal such as 'a' or '\n'
func (l *Lexer) readCharLiteral(start position.Position) Token {
	l.readChar()
	if l.atEOF() || l.ch == '\'' {
		return l.illegal(start, "'", "empty or unterminated character literal")
	}

	var value string
	if l.ch == '\\' {
		l.readChar()
		value = unescape(l.ch, true)
		l.readChar()
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.position:])
		value = string(r)
		for i := 0; i < size; i++ {
			l.readChar()
		}
	}

	if l.ch != '\'' {
		return l.illegal(start, "'", "unterminated character literal")
	}
	l.readChar()
	return l.tokenFrom(TokenChar, value, start)
}

// unescape decodes the character following a backslash
func unescape(ch byte, inChar bool) string {
	switch ch {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case '\\':
		return "\\"
	case '"':
		return "\""
	}
	if inChar {
		switch ch {
		case '\'':
			return "'"
		case '0':
			return "\x00"
		}
	}
	return "\\" + string(ch)
}

func isIdentStart(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

func quoteRune(r rune) string {
	return "'" + string(r) + "'"
}
