package parser

import (
	"fmt"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/lexer"
	"github.com/windjammer-lang/windjammer/internal/position"
)

// ErrorKind classifies parse errors
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	MissingToken
	InvalidSyntax
	TypeError
	NameError
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "unexpected token"
	case MissingToken:
		return "missing token"
	case InvalidSyntax:
		return "invalid syntax"
	case TypeError:
		return "type error"
	case NameError:
		return "name error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError represents a parsing error with context
type ParseError struct {
	Kind       ErrorKind
	Message    string
	Pos        position.Position
	Suggestion string
	Token      lexer.Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Parse error at %s: %s", e.Pos.String(), e.Message)
}

// ErrorList is the ordered set of errors collected during one parse
type ErrorList []*ParseError

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, 0, len(l))
	for _, e := range l {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("%d parse errors:\n%s", len(l), strings.Join(msgs, "\n"))
}

// Err returns the list as an error, or nil when it is empty
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// PartialResult pairs whatever could be built with the errors met on the way
type PartialResult[T any] struct {
	Value  T
	Errors ErrorList
}

// OK reports whether the value was built without errors
func (r PartialResult[T]) OK() bool {
	return len(r.Errors) == 0
}

// IsIncomplete reports whether parsing failed only because the input ended
// early, i.e. more lines could make it valid.
func IsIncomplete(err error) bool {
	var list ErrorList
	switch e := err.(type) {
	case ErrorList:
		list = e
	case *ParseError:
		list = ErrorList{e}
	default:
		return false
	}
	if len(list) == 0 {
		return false
	}
	for _, e := range list {
		if e.Token.Type != lexer.TokenEOF {
			return false
		}
	}
	return true
}
