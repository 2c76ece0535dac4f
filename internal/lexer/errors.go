package lexer

import (
	"fmt"

	"github.com/windjammer-lang/windjammer/internal/position"
)

// LexError reports a character sequence the lexer cannot turn into a token.
// Lexing stops at the first LexError.
type LexError struct {
	Pos     position.Position
	Text    string
	Message string
}

// Error implements the error interface
func (e *LexError) Error() string {
	return fmt.Sprintf("Lex error at %s: %s", e.Pos, e.Message)
}
