// Package lower turns destructuring patterns with an expansion segment
// anywhere into elementary JavaScript bindings.
package lower

import (
	"fmt"

	"expando/pkg/errors"
	"expando/pkg/js"
	"expando/pkg/names"
	"expando/pkg/pattern"
)

const debugLower = false

func debugPrintf(format string, args ...interface{}) {
	if debugLower {
		fmt.Printf(format, args...)
	}
}

// DefaultKeyword introduces declarations unless the context says otherwise.
const DefaultKeyword = "let"

// TargetKind selects whether leaf names are declared or assigned.
type TargetKind int

const (
	Declaration TargetKind = iota
	Assign
)

// Context configures one lowering.
type Context struct {
	// ExpressionResult requests that Result.Expression() evaluate to the
	// original source value.
	ExpressionResult bool
	TargetKind       TargetKind
	Scope            names.Allocator
	// Repeatable replaces IsRepeatable when set.
	Repeatable func(js.Expr) bool
	// Keyword is the declaration keyword, "let" when empty.
	Keyword string
	// Declare lists extra names the split form must declare, such as
	// assigned names that are new to the enclosing scope.
	Declare []string
}

type emitter struct {
	ctx       Context
	bindings  []Binding
	conflicts map[string]bool
}

func (e *emitter) add(b Binding) {
	e.bindings = append(e.bindings, b)
}

// LowerDestructure lowers `p = source`.
func LowerDestructure(p pattern.Pattern, source js.Expr, ctx Context) (*Result, error) {
	if ctx.Scope == nil {
		return nil, &errors.InternalError{Msg: "lowering needs a name allocator"}
	}
	if ctx.Keyword == "" {
		ctx.Keyword = DefaultKeyword
	}

	e := &emitter{ctx: ctx, conflicts: make(map[string]bool)}
	for _, name := range pattern.BoundNames(p) {
		e.conflicts[name] = true
	}

	var value js.Expr
	var err error
	switch x := p.(type) {
	case *pattern.Array:
		value, err = e.array(x, source, true)
	case *pattern.Object:
		value, err = e.object(x, source, true)
	default:
		return nil, &errors.PatternError{Msg: fmt.Sprintf("cannot destructure into %T", p)}
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Bindings:         e.bindings,
		Value:            value,
		keyword:          ctx.Keyword,
		extra:            ctx.Declare,
		expressionResult: ctx.ExpressionResult,
	}, nil
}

// sourceFor hoists src for a native binding only when the pattern's value
// is itself needed afterwards.
func (e *emitter) sourceFor(src js.Expr, top bool, hint string) (js.Expr, error) {
	if !top || !e.ctx.ExpressionResult {
		return src, nil
	}
	ref, err := e.hoist(src, hint)
	return ref.Expr, err
}

func (e *emitter) array(a *pattern.Array, src js.Expr, top bool) (js.Expr, error) {
	if pattern.IsEmpty(a) {
		ref, err := e.hoist(src, "array")
		return ref.Expr, err
	}

	if nativeArray(a) {
		ref, err := e.sourceFor(src, top, "array")
		if err != nil {
			return nil, err
		}
		e.native(nativeArrayPattern(a), js.CallOf(js.Dot(js.Id("Array"), "from"), ref), a)
		return ref, nil
	}

	ref, err := e.hoist(src, "array")
	if err != nil {
		return nil, err
	}
	s := ref.Expr

	for i, el := range a.Leading {
		if err := e.element(el, js.At(s, js.Int(i)), Index); err != nil {
			return nil, err
		}
	}
	if a.Segment == nil {
		return s, nil
	}

	named := a.Segment.Target != nil
	plan, err := PlanLength(s, len(a.Leading), len(a.Trailing), named, e.ctx.Scope)
	if err != nil {
		return nil, err
	}
	if plan.Adjusted != nil {
		e.add(Binding{Kind: Length, Target: plan.Adjusted, Value: plan.Init, Declare: true, Names: []string{plan.Adjusted.Name}})
	}
	if named {
		if err := e.element(a.Segment.Target, plan.Slice(), Slice); err != nil {
			return nil, err
		}
	}
	for p, el := range a.Trailing {
		if err := e.element(el, plan.TrailingIndex(p), Index); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (e *emitter) object(o *pattern.Object, src js.Expr, top bool) (js.Expr, error) {
	if pattern.IsEmpty(o) {
		ref, err := e.hoist(src, "obj")
		return ref.Expr, err
	}

	if nativeObject(o) {
		ref, err := e.sourceFor(src, top, "obj")
		if err != nil {
			return nil, err
		}
		e.native(nativeObjectPattern(o), ref, o)
		return ref, nil
	}

	ref, err := e.hoist(src, "obj")
	if err != nil {
		return nil, err
	}
	for _, entry := range o.Entries {
		if err := e.bind(entry.Value, property(ref.Expr, entry), entry.Default, Property); err != nil {
			return nil, err
		}
	}
	return ref.Expr, nil
}

func property(src js.Expr, entry *pattern.Entry) js.Expr {
	if !entry.Computed {
		switch k := entry.Key.(type) {
		case *js.Ident:
			return js.Dot(src, k.Name)
		case *js.String:
			return js.Dot(src, k.Value)
		}
	}
	return js.At(src, entry.Key)
}

func (e *emitter) element(p pattern.Pattern, value js.Expr, kind BindingKind) error {
	return e.bind(p, value, pattern.Default(p), kind)
}

// bind assigns value to p, substituting def when value is null or
// undefined.
func (e *emitter) bind(p pattern.Pattern, value js.Expr, def js.Expr, kind BindingKind) error {
	if def != nil {
		name, err := e.temp("val")
		if err != nil {
			return err
		}
		e.add(Binding{Kind: DefaultTemp, Target: js.Id(name), Value: value, Declare: true, Names: []string{name}})
		value = &js.Conditional{
			Test:      js.Bin("!=", js.Id(name), &js.Null{}),
			Then:      js.Id(name),
			Otherwise: def,
		}
		kind = Default
	}

	switch x := p.(type) {
	case *pattern.Leaf:
		e.leaf(x.Target, value, kind)
		return nil
	case *pattern.Array:
		_, err := e.array(x, value, false)
		return err
	case *pattern.Object:
		_, err := e.object(x, value, false)
		return err
	case *pattern.Segment:
		return &errors.PatternError{Msg: "expansion outside an array pattern"}
	}
	return &errors.PatternError{Msg: fmt.Sprintf("unsupported pattern %T", p)}
}

func (e *emitter) leaf(target pattern.Target, value js.Expr, kind BindingKind) {
	b := Binding{Kind: kind, Target: target.Expr(), Value: value}
	if n, ok := target.(*pattern.Name); ok && e.ctx.TargetKind == Declaration {
		b.Declare = true
		b.Names = []string{n.Value}
	}
	e.add(b)
}

func (e *emitter) native(target js.Expr, value js.Expr, p pattern.Pattern) {
	b := Binding{Kind: Native, Target: target, Value: value}
	if e.ctx.TargetKind == Declaration {
		b.Declare = true
		b.Names = pattern.BoundNames(p)
	}
	e.add(b)
}

// --- Native destructuring ---

// nativeSafe reports whether p may appear inside a native pattern: a bare
// name, or an object of such entries. Array sub-patterns are excluded so
// array-like values are never iterated.
func nativeSafe(p pattern.Pattern) bool {
	switch x := p.(type) {
	case *pattern.Leaf:
		_, ok := x.Target.(*pattern.Name)
		return ok && x.Default == nil
	case *pattern.Object:
		return x.Default == nil && nativeObject(x)
	}
	return false
}

func nativeObject(o *pattern.Object) bool {
	for _, entry := range o.Entries {
		if entry.Default != nil || !nativeSafe(entry.Value) {
			return false
		}
	}
	return true
}

func nativeArray(a *pattern.Array) bool {
	if len(a.Trailing) > 0 {
		return false
	}
	if a.Segment != nil && a.Segment.Target != nil {
		leaf, ok := a.Segment.Target.(*pattern.Leaf)
		if !ok || !nativeSafe(leaf) {
			return false
		}
	}
	for _, el := range a.Leading {
		if !nativeSafe(el) {
			return false
		}
	}
	return true
}

func nativeTarget(p pattern.Pattern) js.Expr {
	switch x := p.(type) {
	case *pattern.Leaf:
		return x.Target.Expr()
	case *pattern.Object:
		return nativeObjectPattern(x)
	}
	return nil
}

func nativeArrayPattern(a *pattern.Array) *js.ArrayPattern {
	out := &js.ArrayPattern{}
	for _, el := range a.Leading {
		out.Elements = append(out.Elements, nativeTarget(el))
	}
	if a.Segment != nil && a.Segment.Target != nil {
		out.Rest = nativeTarget(a.Segment.Target)
	}
	return out
}

func nativeObjectPattern(o *pattern.Object) *js.ObjectPattern {
	out := &js.ObjectPattern{}
	for _, entry := range o.Entries {
		out.Props = append(out.Props, &js.PatternProp{
			Key:      entry.Key,
			Computed: entry.Computed,
			Value:    nativeTarget(entry.Value),
		})
	}
	return out
}
