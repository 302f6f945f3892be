// Package pattern describes destructuring patterns: arrays with at most one
// expansion segment anywhere, objects, nested sub-patterns, defaults and
// member targets.
package pattern

import "expando/pkg/js"

// Pattern is one of *Leaf, *Array, *Object, or, inside element lists such as
// parameter lists, *Segment.
type Pattern interface {
	patternNode()
}

// Target is the storage location of a leaf: *Name or *Member.
type Target interface {
	targetNode()
	// Expr returns the target as an assignable expression.
	Expr() js.Expr
}

// Name is a local variable.
type Name struct {
	Value string
}

// Member is object.property, or object[property] when Computed. A
// non-computed Property is a *js.Ident or *js.String.
type Member struct {
	Object   js.Expr
	Property js.Expr
	Computed bool
}

// Leaf binds one value to a target.
type Leaf struct {
	Target  Target
	Default js.Expr // nil when absent
}

// Segment is the expansion position of an array. A nil Target discards the
// matched elements; otherwise it is a *Leaf without default, *Array or
// *Object and receives them as an array.
type Segment struct {
	Target Pattern
}

// Array is [leading..., segment, trailing...].
type Array struct {
	Leading  []Pattern
	Segment  *Segment // nil when the pattern has no expansion
	Trailing []Pattern
	Default  js.Expr
}

// Entry is key: value inside an object pattern.
type Entry struct {
	Key      js.Expr // *js.Ident, *js.String or *js.Number unless Computed
	Computed bool
	Value    Pattern
	Default  js.Expr
}

// Object is {entries...}.
type Object struct {
	Entries []*Entry
	Default js.Expr
}

func (*Leaf) patternNode()    {}
func (*Segment) patternNode() {}
func (*Array) patternNode()   {}
func (*Object) patternNode()  {}

func (*Name) targetNode()   {}
func (*Member) targetNode() {}

func (n *Name) Expr() js.Expr { return js.Id(n.Value) }

func (m *Member) Expr() js.Expr {
	if m.Computed {
		return js.At(m.Object, m.Property)
	}
	switch p := m.Property.(type) {
	case *js.Ident:
		return js.Dot(m.Object, p.Name)
	case *js.String:
		return js.Dot(m.Object, p.Value)
	}
	return js.At(m.Object, m.Property)
}

// Bind returns a leaf for a local variable.
func Bind(name string) *Leaf {
	return &Leaf{Target: &Name{Value: name}}
}

// BindThis returns a leaf for this.property.
func BindThis(property string) *Leaf {
	return &Leaf{Target: &Member{Object: &js.This{}, Property: js.Id(property)}}
}

// Default returns the default value carried by p, if any.
func Default(p Pattern) js.Expr {
	switch x := p.(type) {
	case *Leaf:
		return x.Default
	case *Array:
		return x.Default
	case *Object:
		return x.Default
	}
	return nil
}

// IsEmpty reports whether p binds nothing: [] or {}.
func IsEmpty(p Pattern) bool {
	switch x := p.(type) {
	case *Array:
		return len(x.Leading) == 0 && x.Segment == nil && len(x.Trailing) == 0
	case *Object:
		return len(x.Entries) == 0
	}
	return false
}

// MinRequired is the number of positional elements outside the segment.
func (a *Array) MinRequired() int {
	return len(a.Leading) + len(a.Trailing)
}

// Walk calls fn for every leaf of p in source order.
func Walk(p Pattern, fn func(*Leaf)) {
	switch x := p.(type) {
	case *Leaf:
		fn(x)
	case *Segment:
		if x.Target != nil {
			Walk(x.Target, fn)
		}
	case *Array:
		for _, e := range x.Leading {
			Walk(e, fn)
		}
		if x.Segment != nil {
			Walk(x.Segment, fn)
		}
		for _, e := range x.Trailing {
			Walk(e, fn)
		}
	case *Object:
		for _, e := range x.Entries {
			Walk(e.Value, fn)
		}
	}
}

// BoundNames lists the local variables p assigns, in source order.
func BoundNames(p Pattern) []string {
	var names []string
	Walk(p, func(l *Leaf) {
		if n, ok := l.Target.(*Name); ok {
			names = append(names, n.Value)
		}
	})
	return names
}

// HasMemberTarget reports whether any leaf of p assigns to a property.
func HasMemberTarget(p Pattern) bool {
	found := false
	Walk(p, func(l *Leaf) {
		if _, ok := l.Target.(*Member); ok {
			found = true
		}
	})
	return found
}
