package lexer

import (
	"fmt"
	"sort"

	"github.com/windjammer-lang/windjammer/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// Token types of the Windjammer language
const (
	TokenEOF TokenType = iota
	TokenIllegal
	TokenDocComment

	// Literals
	TokenIdentifier
	TokenInteger
	TokenFloat
	TokenString
	TokenInterpolatedString
	TokenChar
	TokenBool
	TokenDecorator

	// Keywords
	TokenFn
	TokenLet
	TokenMut
	TokenConst
	TokenStatic
	TokenStruct
	TokenEnum
	TokenTrait
	TokenImpl
	TokenMatch
	TokenIf
	TokenElse
	TokenFor
	TokenIn
	TokenWhile
	TokenLoop
	TokenReturn
	TokenBreak
	TokenContinue
	TokenUse
	TokenThread
	TokenAsync
	TokenAwait
	TokenDefer
	TokenPub
	TokenSelf
	TokenUnsafe
	TokenAs
	TokenWhere
	TokenTypeKw
	TokenDyn
	TokenBound
	TokenMod
	TokenExtern

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenAssign
	TokenPlusAssign
	TokenMinusAssign
	TokenStarAssign
	TokenSlashAssign
	TokenPercentAssign
	TokenEq
	TokenNe
	TokenLt
	TokenLe
	TokenGt
	TokenGe
	TokenAnd
	TokenOr
	TokenBang
	TokenArrow     // ->
	TokenLeftArrow // <-
	TokenFatArrow  // =>
	TokenPipeOp    // |>
	TokenAmpersand
	TokenPipe
	TokenAt

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenDot
	TokenDotDot
	TokenDotDotEq
	TokenColon
	TokenDoubleColon
	TokenSemicolon
	TokenQuestion
	TokenUnderscore
)

// PartKind distinguishes the pieces of an interpolated string.
type PartKind int

const (
	PartLiteral PartKind = iota
	PartExpression
)

// StringPart is one literal run or one ${...} expression of an interpolated string.
type StringPart struct {
	Kind PartKind
	Text string
}

// Token represents a lexical token with position information.
// For string and char tokens Literal holds the decoded value; for decorators
// it holds the name without '@'.
type Token struct {
	Type    TokenType
	Literal string
	Parts   []StringPart
	Span    position.Span
}

// Pos returns the start position of the token
func (t Token) Pos() position.Position {
	return t.Span.Start
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Line: %d, Column: %d}",
		tokenNames[t.Type], t.Literal, t.Span.Start.Line, t.Span.Start.Column)
}

// tokenNames provides string representations for token types
var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenIllegal:    "ILLEGAL",
	TokenDocComment: "DOC_COMMENT",

	TokenIdentifier:         "IDENTIFIER",
	TokenInteger:            "INTEGER",
	TokenFloat:              "FLOAT",
	TokenString:             "STRING",
	TokenInterpolatedString: "INTERPOLATED_STRING",
	TokenChar:               "CHAR",
	TokenBool:               "BOOL",
	TokenDecorator:          "DECORATOR",

	TokenFn:       "FN",
	TokenLet:      "LET",
	TokenMut:      "MUT",
	TokenConst:    "CONST",
	TokenStatic:   "STATIC",
	TokenStruct:   "STRUCT",
	TokenEnum:     "ENUM",
	TokenTrait:    "TRAIT",
	TokenImpl:     "IMPL",
	TokenMatch:    "MATCH",
	TokenIf:       "IF",
	TokenElse:     "ELSE",
	TokenFor:      "FOR",
	TokenIn:       "IN",
	TokenWhile:    "WHILE",
	TokenLoop:     "LOOP",
	TokenReturn:   "RETURN",
	TokenBreak:    "BREAK",
	TokenContinue: "CONTINUE",
	TokenUse:      "USE",
	TokenThread:   "THREAD",
	TokenAsync:    "ASYNC",
	TokenAwait:    "AWAIT",
	TokenDefer:    "DEFER",
	TokenPub:      "PUB",
	TokenSelf:     "SELF",
	TokenUnsafe:   "UNSAFE",
	TokenAs:       "AS",
	TokenWhere:    "WHERE",
	TokenTypeKw:   "TYPE",
	TokenDyn:      "DYN",
	TokenBound:    "BOUND",
	TokenMod:      "MOD",
	TokenExtern:   "EXTERN",

	TokenPlus:          "PLUS",
	TokenMinus:         "MINUS",
	TokenStar:          "STAR",
	TokenSlash:         "SLASH",
	TokenPercent:       "PERCENT",
	TokenAssign:        "ASSIGN",
	TokenPlusAssign:    "PLUS_ASSIGN",
	TokenMinusAssign:   "MINUS_ASSIGN",
	TokenStarAssign:    "STAR_ASSIGN",
	TokenSlashAssign:   "SLASH_ASSIGN",
	TokenPercentAssign: "PERCENT_ASSIGN",
	TokenEq:            "EQ",
	TokenNe:            "NE",
	TokenLt:            "LT",
	TokenLe:            "LE",
	TokenGt:            "GT",
	TokenGe:            "GE",
	TokenAnd:           "AND",
	TokenOr:            "OR",
	TokenBang:          "BANG",
	TokenArrow:         "ARROW",
	TokenLeftArrow:     "LEFT_ARROW",
	TokenFatArrow:      "FAT_ARROW",
	TokenPipeOp:        "PIPE_OP",
	TokenAmpersand:     "AMPERSAND",
	TokenPipe:          "PIPE",
	TokenAt:            "AT",

	TokenLParen:      "LPAREN",
	TokenRParen:      "RPAREN",
	TokenLBrace:      "LBRACE",
	TokenRBrace:      "RBRACE",
	TokenLBracket:    "LBRACKET",
	TokenRBracket:    "RBRACKET",
	TokenComma:       "COMMA",
	TokenDot:         "DOT",
	TokenDotDot:      "DOT_DOT",
	TokenDotDotEq:    "DOT_DOT_EQ",
	TokenColon:       "COLON",
	TokenDoubleColon: "DOUBLE_COLON",
	TokenSemicolon:   "SEMICOLON",
	TokenQuestion:    "QUESTION",
	TokenUnderscore:  "UNDERSCORE",
}

// keywords maps string keywords to their token types
var keywords = map[string]TokenType{
	"fn":       TokenFn,
	"let":      TokenLet,
	"mut":      TokenMut,
	"const":    TokenConst,
	"static":   TokenStatic,
	"struct":   TokenStruct,
	"enum":     TokenEnum,
	"trait":    TokenTrait,
	"impl":     TokenImpl,
	"match":    TokenMatch,
	"if":       TokenIf,
	"else":     TokenElse,
	"for":      TokenFor,
	"in":       TokenIn,
	"while":    TokenWhile,
	"loop":     TokenLoop,
	"return":   TokenReturn,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"use":      TokenUse,
	"go":       TokenThread,
	"thread":   TokenThread,
	"async":    TokenAsync,
	"await":    TokenAwait,
	"defer":    TokenDefer,
	"pub":      TokenPub,
	"self":     TokenSelf,
	"unsafe":   TokenUnsafe,
	"as":       TokenAs,
	"where":    TokenWhere,
	"type":     TokenTypeKw,
	"dyn":      TokenDyn,
	"bound":    TokenBound,
	"mod":      TokenMod,
	"extern":   TokenExtern,
	"true":     TokenBool,
	"false":    TokenBool,
}

// operatorText is the source spelling of fixed-text tokens.
var operatorText = map[TokenType]string{
	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenPercent:       "%",
	TokenAssign:        "=",
	TokenPlusAssign:    "+=",
	TokenMinusAssign:   "-=",
	TokenStarAssign:    "*=",
	TokenSlashAssign:   "/=",
	TokenPercentAssign: "%=",
	TokenEq:            "==",
	TokenNe:            "!=",
	TokenLt:            "<",
	TokenLe:            "<=",
	TokenGt:            ">",
	TokenGe:            ">=",
	TokenAnd:           "&&",
	TokenOr:            "||",
	TokenBang:          "!",
	TokenArrow:         "->",
	TokenLeftArrow:     "<-",
	TokenFatArrow:      "=>",
	TokenPipeOp:        "|>",
	TokenAmpersand:     "&",
	TokenPipe:          "|",
	TokenAt:            "@",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenComma:         ",",
	TokenDot:           ".",
	TokenDotDot:        "..",
	TokenDotDotEq:      "..=",
	TokenColon:         ":",
	TokenDoubleColon:   "::",
	TokenSemicolon:     ";",
	TokenQuestion:      "?",
	TokenUnderscore:    "_",
}

// IsKeyword reports whether the token type is a reserved word.
func (tt TokenType) IsKeyword() bool {
	return tt >= TokenFn && tt <= TokenExtern
}

// lookupIdent checks if identifier is keyword
func lookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return TokenIdentifier
}

// Text returns the fixed source spelling of a keyword or operator token
// type, or the type name for tokens whose text varies.
func (tt TokenType) Text() string {
	if text, ok := operatorText[tt]; ok {
		return text
	}
	if tt == TokenThread {
		return "thread"
	}
	if tt.IsKeyword() {
		for word, kw := range keywords {
			if kw == tt {
				return word
			}
		}
	}
	switch tt {
	case TokenIdentifier:
		return "identifier"
	case TokenEOF:
		return "end of file"
	}
	return tokenNames[tt]
}

// Keywords returns the reserved words of the language
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for word, tt := range keywords {
		if tt != TokenBool {
			words = append(words, word)
		}
	}
	sort.Strings(words)
	return words
}
