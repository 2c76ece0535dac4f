package parser

import (
	"fmt"

	"github.com/windjammer-lang/windjammer/internal/lexer"
)

// bailout unwinds the parser to the nearest synchronization point after an
// error has been recorded.
type bailout struct{}

// fail records an error at the current token and unwinds
func (p *Parser) fail(kind ErrorKind, suggestion, format string, args ...interface{}) {
	p.failAt(p.cur(), kind, suggestion, fmt.Sprintf(format, args...))
}

func (p *Parser) failAt(tok lexer.Token, kind ErrorKind, suggestion, message string) {
	p.errors = append(p.errors, &ParseError{
		Kind:       kind,
		Message:    message,
		Pos:        tok.Pos(),
		Suggestion: suggestion,
		Token:      tok,
	})
	panic(bailout{})
}

// guard runs fn and converts a bailout into a false return. Any other panic
// is re-raised.
func (p *Parser) guard(fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isBailout := r.(bailout); !isBailout {
				panic(r)
			}
			ok = false
		}
	}()
	fn()
	return true
}

// syncStatement skips to the end of the broken statement: past the next
// `;`, or up to the `}` that closes the enclosing block.
func (p *Parser) syncStatement(start int) {
	depth := 0
	for !p.at(lexer.TokenEOF) {
		switch p.cur().Type {
		case lexer.TokenLBrace:
			depth++
		case lexer.TokenRBrace:
			if depth == 0 {
				p.ensureProgress(start)
				return
			}
			depth--
		case lexer.TokenSemicolon:
			if depth == 0 {
				p.advance()
				return
			}
		case lexer.TokenLet, lexer.TokenReturn, lexer.TokenFor, lexer.TokenWhile,
			lexer.TokenLoop, lexer.TokenMatch:
			if depth == 0 && p.pos > start {
				return
			}
		}
		p.advance()
	}
}

// syncItem skips to the next token that can begin a top-level item
func (p *Parser) syncItem(start int) {
	depth := 0
	for !p.at(lexer.TokenEOF) {
		switch p.cur().Type {
		case lexer.TokenLBrace:
			depth++
		case lexer.TokenRBrace:
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				p.advance()
				if p.startsItem() {
					return
				}
				continue
			}
		default:
			if depth == 0 && p.pos > start && p.startsItem() {
				return
			}
		}
		p.advance()
	}
}

// ensureProgress consumes one token when recovery has not moved past start
func (p *Parser) ensureProgress(start int) {
	if p.pos == start && !p.at(lexer.TokenEOF) {
		p.advance()
	}
}

func (p *Parser) startsItem() bool {
	switch p.cur().Type {
	case lexer.TokenFn, lexer.TokenStruct, lexer.TokenEnum, lexer.TokenTrait,
		lexer.TokenImpl, lexer.TokenUse, lexer.TokenMod, lexer.TokenConst,
		lexer.TokenStatic, lexer.TokenPub, lexer.TokenExtern, lexer.TokenDecorator,
		lexer.TokenBound, lexer.TokenDocComment:
		return true
	case lexer.TokenAsync:
		return p.peek(1).Type == lexer.TokenFn
	}
	return false
}

// keywordSuggestion proposes a keyword close to a mistyped identifier
func keywordSuggestion(word string) string {
	aliases := map[string]string{
		"func":      "fn",
		"function":  "fn",
		"def":       "fn",
		"var":       "let",
		"elif":      "else if",
		"class":     "struct",
		"import":    "use",
		"interface": "trait",
	}
	if kw, ok := aliases[word]; ok {
		return fmt.Sprintf("Did you mean `%s`?", kw)
	}

	best, bestDistance := "", 3
	for _, kw := range lexer.Keywords() {
		if d := editDistance(word, kw); d > 0 && d < bestDistance && d < len(kw) {
			best, bestDistance = kw, d
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("Did you mean `%s`?", best)
}

// editDistance calculates the Levenshtein distance between two strings
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	matrix := make([][]int, len(a)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(b)+1)
		matrix[i][0] = i
	}
	for j := range matrix[0] {
		matrix[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}

	return matrix[len(a)][len(b)]
}
