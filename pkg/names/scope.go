// Package names tracks the bindings of each function scope and hands out
// fresh temporary names that cannot collide with anything in the unit.
package names

import (
	"fmt"
	"strconv"

	"expando/pkg/errors"
	"expando/pkg/js"

	"github.com/dlclark/regexp2"
)

// Allocator hands out fresh identifiers derived from a hint.
type Allocator interface {
	Allocate(hint string) (string, error)
}

// Kind classifies a symbol.
type Kind int

const (
	Variable Kind = iota
	Parameter
	Temporary
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Parameter:
		return "parameter"
	case Temporary:
		return "temporary"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Symbol represents an entry in a scope.
type Symbol struct {
	Name string
	Kind Kind
}

// maxSuffix bounds the numbered candidates tried for one hint.
const maxSuffix = 10000

var invalidHintChars = regexp2.MustCompile(`[^\p{L}\p{Nd}_$]`, regexp2.None)

// Scope manages the symbols of one function body.
type Scope struct {
	Outer *Scope            // Enclosing scope, nil for the unit's top level
	store map[string]Symbol // Symbols defined in *this* scope

	// Only set on the top-level scope; shared by every enclosed scope.
	reserved map[string]bool
	hints    map[string]string
}

// NewScope creates the top-level scope of a compilation unit.
func NewScope() *Scope {
	return &Scope{
		store:    make(map[string]Symbol),
		reserved: make(map[string]bool),
		hints:    make(map[string]string),
	}
}

// NewEnclosedScope creates a function scope nested in outer.
func NewEnclosedScope(outer *Scope) *Scope {
	return &Scope{
		Outer: outer,
		store: make(map[string]Symbol),
	}
}

func (s *Scope) root() *Scope {
	for s.Outer != nil {
		s = s.Outer
	}
	return s
}

// Reserve marks names that appear anywhere in the unit so temporaries never
// shadow or capture them, even in scopes that have not been entered yet.
func (s *Scope) Reserve(names ...string) {
	root := s.root()
	for _, name := range names {
		root.reserved[name] = true
	}
}

// SetHint replaces the base name used for hint.
func (s *Scope) SetHint(hint, base string) {
	s.root().hints[hint] = base
}

// Define adds a symbol to the current scope.
func (s *Scope) Define(name string, kind Kind) Symbol {
	symbol := Symbol{Name: name, Kind: kind}
	s.store[name] = symbol
	return symbol
}

// Resolve looks a name up through the enclosing scopes and returns the
// symbol and the scope defining it.
func (s *Scope) Resolve(name string) (Symbol, *Scope, bool) {
	for scope := s; scope != nil; scope = scope.Outer {
		if symbol, ok := scope.store[name]; ok {
			return symbol, scope, true
		}
	}
	return Symbol{}, nil, false
}

// DefinedHere reports whether name is defined in this scope itself.
func (s *Scope) DefinedHere(name string) bool {
	_, ok := s.store[name]
	return ok
}

// Names returns the symbols of this scope with the given kind, in no
// particular order.
func (s *Scope) Names(kind Kind) []string {
	var out []string
	for name, symbol := range s.store {
		if symbol.Kind == kind {
			out = append(out, name)
		}
	}
	return out
}

func (s *Scope) taken(name string) bool {
	if s.root().reserved[name] {
		return true
	}
	_, _, ok := s.Resolve(name)
	return ok
}

// Allocate returns hint, hint1, hint2, ... whichever is first free, and
// defines it as a temporary of this scope.
func (s *Scope) Allocate(hint string) (string, error) {
	base := SanitizeHint(hint)
	if override, ok := s.root().hints[base]; ok && override != "" {
		base = SanitizeHint(override)
	}

	for i := 0; i < maxSuffix; i++ {
		candidate := base
		if i > 0 {
			candidate = base + strconv.Itoa(i)
		}
		if !s.taken(candidate) {
			s.Define(candidate, Temporary)
			return candidate, nil
		}
	}
	return "", &errors.InternalError{
		Msg: fmt.Sprintf("no free name for hint %q after %d candidates", hint, maxSuffix),
	}
}

// SanitizeHint turns an arbitrary string into a usable identifier stem.
func SanitizeHint(hint string) string {
	cleaned, err := invalidHintChars.Replace(hint, "_", -1, -1)
	if err != nil || cleaned == "" {
		cleaned = "ref"
	}
	if cleaned[0] >= '0' && cleaned[0] <= '9' {
		cleaned = "_" + cleaned
	}
	if !js.IsIdentifier(cleaned) {
		cleaned = "_" + cleaned
	}
	return cleaned
}
