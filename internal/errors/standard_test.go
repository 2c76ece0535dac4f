package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestWrap(t *testing.T) {
	inner := fmt.Errorf("boom")
	err := Wrap(CategoryParser, "PARSE_FAILED", inner, map[string]interface{}{"path": "a.wj"})

	if err.Error() != "[PARSER:PARSE_FAILED] boom" {
		t.Errorf("message wrong. got=%q", err.Error())
	}
	if !stderrors.Is(err, inner) {
		t.Error("wrapped error is not reachable through Unwrap")
	}
	if !strings.Contains(err.Caller, "TestWrap") {
		t.Errorf("caller wrong. got=%q", err.Caller)
	}
	if Wrap(CategoryIO, "X", nil, nil) != nil {
		t.Error("wrapping nil must yield nil")
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		err      error
		expected ErrorCategory
		ok       bool
	}{
		{ReadFailed("a.wj", fs.ErrNotExist), CategoryIO, true},
		{fmt.Errorf("build: %w", AnalysisFailed("a.wj", fmt.Errorf("x"))), CategoryAnalyzer, true},
		{InvalidConfig("wj.json", fmt.Errorf("bad")), CategoryConfig, true},
		{NoSources("src"), CategoryIO, true},
		{fmt.Errorf("plain"), "", false},
	}
	for i, tt := range tests {
		got, ok := CategoryOf(tt.err)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("tests[%d] - category wrong. expected=%q/%v, got=%q/%v", i, tt.expected, tt.ok, got, ok)
		}
	}
}

func TestReadFailedKeepsCause(t *testing.T) {
	err := ReadFailed("missing.wj", fs.ErrNotExist)
	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Error("cause lost")
	}
	if err.Context["path"] != "missing.wj" {
		t.Errorf("context wrong. got=%v", err.Context)
	}
}
