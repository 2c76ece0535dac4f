// Package errors provides standardized error messaging for the Windjammer
// compiler driver. Phase errors are wrapped into a StandardError that
// records which stage of the pipeline failed.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryLexer    ErrorCategory = "LEXER"
	CategoryParser   ErrorCategory = "PARSER"
	CategoryAnalyzer ErrorCategory = "ANALYZER"
	CategoryCodegen  ErrorCategory = "CODEGEN"
	CategoryIO       ErrorCategory = "IO"
	CategoryConfig   ErrorCategory = "CONFIG"
)

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Context  map[string]interface{}
	Caller   string
	Err      error
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the phase error this one wraps, if any
func (e *StandardError) Unwrap() error {
	return e.Err
}

// NewStandardError creates a new standardized error
func NewStandardError(category ErrorCategory, code, message string, context map[string]interface{}) *StandardError {
	return &StandardError{
		Category: category,
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller(2),
	}
}

// Wrap records err under category. The message is taken from err.
func Wrap(category ErrorCategory, code string, err error, context map[string]interface{}) *StandardError {
	if err == nil {
		return nil
	}
	return &StandardError{
		Category: category,
		Code:     code,
		Message:  err.Error(),
		Context:  context,
		Caller:   caller(2),
		Err:      err,
	}
}

func caller(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fn.Name()
	}
	return "unknown"
}

// CategoryOf reports the category of the first StandardError in err's chain
func CategoryOf(err error) (ErrorCategory, bool) {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Category, true
	}
	return "", false
}

// Common error constructors

func ReadFailed(path string, err error) *StandardError {
	return Wrap(CategoryIO, "READ_FAILED", fmt.Errorf("cannot read %s: %w", path, err),
		map[string]interface{}{"path": path})
}

func WriteFailed(path string, err error) *StandardError {
	return Wrap(CategoryIO, "WRITE_FAILED", fmt.Errorf("cannot write %s: %w", path, err),
		map[string]interface{}{"path": path})
}

func NoSources(path string) *StandardError {
	return NewStandardError(CategoryIO, "NO_SOURCES",
		fmt.Sprintf("no .wj files found in %s", path),
		map[string]interface{}{"path": path})
}

func InvalidConfig(path string, err error) *StandardError {
	return Wrap(CategoryConfig, "INVALID_CONFIG", fmt.Errorf("invalid config %s: %w", path, err),
		map[string]interface{}{"path": path})
}

func UnknownTarget(name string, err error) *StandardError {
	return Wrap(CategoryConfig, "UNKNOWN_TARGET", err, map[string]interface{}{"target": name})
}

func LexFailed(path string, err error) *StandardError {
	return Wrap(CategoryLexer, "LEX_FAILED", err, map[string]interface{}{"path": path})
}

func ParseFailed(path string, err error) *StandardError {
	return Wrap(CategoryParser, "PARSE_FAILED", err, map[string]interface{}{"path": path})
}

func AnalysisFailed(path string, err error) *StandardError {
	return Wrap(CategoryAnalyzer, "ANALYSIS_FAILED", err, map[string]interface{}{"path": path})
}

func CodegenFailed(path, target string, err error) *StandardError {
	return Wrap(CategoryCodegen, "CODEGEN_FAILED", err,
		map[string]interface{}{"path": path, "target": target})
}
