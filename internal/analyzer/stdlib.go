package analyzer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// StdlibEnv names the environment variable overriding the standard library directory
const StdlibEnv = "WINDJAMMER_STDLIB"

// DefaultStdlibDir is used when neither an explicit directory nor StdlibEnv is set
const DefaultStdlibDir = "std"

// StdlibScanner extracts call signatures from the public functions of the
// standard library sources. Results are cached per directory and concurrent
// scans of the same directory are collapsed into one.
type StdlibScanner struct {
	mu    sync.Mutex
	cache map[string]*SignatureRegistry
	sf    singleflight.Group
}

// NewStdlibScanner creates a scanner with an empty cache
func NewStdlibScanner() *StdlibScanner {
	return &StdlibScanner{cache: make(map[string]*SignatureRegistry)}
}

// StdlibDir resolves the directory to scan: dir if set, then StdlibEnv,
// then DefaultStdlibDir
func StdlibDir(dir string) string {
	if dir != "" {
		return dir
	}
	if env := strings.TrimSpace(os.Getenv(StdlibEnv)); env != "" {
		return env
	}
	return DefaultStdlibDir
}

// Load returns the signatures found in dir. A missing directory yields the
// built-in fallback table rather than an error.
func (s *StdlibScanner) Load(ctx context.Context, dir string) (*SignatureRegistry, error) {
	dir = StdlibDir(dir)

	s.mu.Lock()
	if reg, ok := s.cache[dir]; ok {
		s.mu.Unlock()
		return reg, nil
	}
	s.mu.Unlock()

	v, err, _ := s.sf.Do("scan:"+dir, func() (any, error) {
		reg, err := ScanStdlib(ctx, dir)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[dir] = reg
		s.mu.Unlock()
		return reg, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SignatureRegistry), nil
}

// ScanStdlib reads every .rs and .wj file directly inside dir and registers
// each `pub fn` under `module::name`, where module is the file stem
func ScanStdlib(ctx context.Context, dir string) (*SignatureRegistry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FallbackRegistry(), nil
		}
		return nil, fmt.Errorf("failed to read stdlib directory %s: %w", dir, err)
	}

	reg := NewRegistry()
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".rs" && ext != ".wj" {
			continue
		}
		module := strings.TrimSuffix(entry.Name(), ext)
		if module == "lib" || module == "mod" {
			continue
		}
		if err := scanFile(filepath.Join(dir, entry.Name()), module, reg); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func scanFile(path, module string, reg *SignatureRegistry) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if sig := parseSignatureLine(scanner.Text(), module); sig != nil {
			reg.Add(sig.Name, sig)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

// parseSignatureLine recognizes `pub fn name(params)` on a single line
func parseSignatureLine(line, module string) *FunctionSignature {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "pub fn ")
	if !ok {
		return nil
	}
	open := strings.IndexByte(rest, '(')
	if open <= 0 {
		return nil
	}
	name := rest[:open]
	if lt := strings.IndexByte(name, '<'); lt >= 0 {
		name = name[:lt]
	}
	params, ok := paramList(rest[open+1:])
	if !ok {
		return nil
	}

	sig := &FunctionSignature{
		Name:            module + "::" + name,
		ReturnOwnership: Owned,
	}
	for i, param := range splitParams(params) {
		if i == 0 && isSelfParam(param) {
			sig.HasSelfReceiver = true
		}
		sig.ParamOwnership = append(sig.ParamOwnership, paramMode(param))
	}
	return sig
}

// paramList returns the text up to the parenthesis closing the parameter list
func paramList(s string) (string, bool) {
	depth := 1
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:i], true
			}
		}
	}
	return "", false
}

// splitParams splits on commas outside of generic arguments and tuples
func splitParams(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '<', '(', '[':
			depth++
		case '>', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" {
		out = append(out, last)
	}
	return out
}

func isSelfParam(param string) bool {
	switch param {
	case "self", "mut self", "&self", "&mut self":
		return true
	}
	return false
}

func paramMode(param string) OwnershipMode {
	typ := param
	if _, after, ok := strings.Cut(param, ":"); ok {
		typ = strings.TrimSpace(after)
	}
	switch {
	case strings.HasPrefix(typ, "&mut "):
		return MutBorrowed
	case strings.HasPrefix(typ, "&"):
		return Borrowed
	}
	return Owned
}

// FallbackRegistry holds the signatures used when no standard library
// sources are available
func FallbackRegistry() *SignatureRegistry {
	reg := NewRegistry()
	reg.Add("println", &FunctionSignature{
		Name:            "println",
		ParamTypes:      []ast.Type{&ast.ReferenceType{Inner: &ast.PrimitiveType{Kind: ast.TypeString}}},
		ParamOwnership:  []OwnershipMode{Borrowed},
		ReturnOwnership: Owned,
	})
	reg.Add("game::create_entity", &FunctionSignature{
		Name:            "game::create_entity",
		ParamOwnership:  []OwnershipMode{MutBorrowed},
		ReturnOwnership: Owned,
	})
	for _, name := range []string{"add_transform", "add_velocity", "add_mesh"} {
		key := "game::" + name
		reg.Add(key, &FunctionSignature{
			Name:            key,
			ParamOwnership:  []OwnershipMode{MutBorrowed, Owned, Owned},
			ReturnOwnership: Owned,
		})
	}
	return reg
}
