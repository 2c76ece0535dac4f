package analyzer

import (
	"sort"
	"strings"
	"sync"

	"github.com/windjammer-lang/windjammer/internal/ast"
)

// OwnershipMode is how a parameter is passed in the generated code
type OwnershipMode int

const (
	Owned OwnershipMode = iota
	Borrowed
	MutBorrowed
)

// String returns the string representation of OwnershipMode.
func (m OwnershipMode) String() string {
	switch m {
	case Owned:
		return "owned"
	case Borrowed:
		return "borrowed"
	case MutBorrowed:
		return "mut_borrowed"
	default:
		return "unknown"
	}
}

// FunctionSignature records how a function expects its arguments. For
// methods with a receiver, ParamOwnership[0] is the receiver.
type FunctionSignature struct {
	Name            string
	ParamTypes      []ast.Type
	ParamOwnership  []OwnershipMode
	ReturnType      ast.Type
	ReturnOwnership OwnershipMode
	HasSelfReceiver bool
	IsExtern        bool
}

// ArgOwnership returns the mode of the i-th call argument, skipping the receiver
func (s *FunctionSignature) ArgOwnership(i int) (OwnershipMode, bool) {
	if s.HasSelfReceiver {
		i++
	}
	if i < 0 || i >= len(s.ParamOwnership) {
		return Owned, false
	}
	return s.ParamOwnership[i], true
}

// ArgType returns the declared type of the i-th call argument, skipping the receiver
func (s *FunctionSignature) ArgType(i int) ast.Type {
	if s.HasSelfReceiver {
		i++
	}
	if i < 0 || i >= len(s.ParamTypes) {
		return nil
	}
	return s.ParamTypes[i]
}

// SignatureRegistry maps function keys to signatures. Keys are plain
// function names, `Type::method`, `Trait::method` or `module::function`.
type SignatureRegistry struct {
	mu         sync.RWMutex
	signatures map[string]*FunctionSignature
}

// NewRegistry creates an empty registry
func NewRegistry() *SignatureRegistry {
	return &SignatureRegistry{signatures: make(map[string]*FunctionSignature)}
}

// Add registers sig under key, replacing any previous entry
func (r *SignatureRegistry) Add(key string, sig *FunctionSignature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signatures[key] = sig
}

// addIfAbsent registers sig under key unless the key is taken
func (r *SignatureRegistry) addIfAbsent(key string, sig *FunctionSignature) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.signatures[key]; !exists {
		r.signatures[key] = sig
	}
}

// Lookup returns the signature registered under key
func (r *SignatureRegistry) Lookup(key string) (*FunctionSignature, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sig, ok := r.signatures[key]
	return sig, ok
}

// LookupMethod resolves Type::method, falling back to the bare method name
// when the receiver type is unknown or has no entry
func (r *SignatureRegistry) LookupMethod(typeName, method string) (*FunctionSignature, bool) {
	if typeName != "" {
		if sig, ok := r.Lookup(typeName + "::" + method); ok {
			return sig, true
		}
	}
	return r.Lookup(method)
}

// LookupCall resolves a call target. Paths written with `.` are looked up
// with `::`.
func (r *SignatureRegistry) LookupCall(name string) (*FunctionSignature, bool) {
	return r.Lookup(strings.ReplaceAll(name, ".", "::"))
}

// Len returns the number of registered keys
func (r *SignatureRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.signatures)
}

// Keys returns all registered keys in sorted order
func (r *SignatureRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.signatures))
	for k := range r.signatures {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy. Signatures themselves are shared and
// must not be mutated after registration.
func (r *SignatureRegistry) Clone() *SignatureRegistry {
	out := NewRegistry()
	if r == nil {
		return out
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for k, v := range r.signatures {
		out.signatures[k] = v
	}
	return out
}
