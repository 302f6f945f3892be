package lower

import "expando/pkg/js"

// SourceRef is the expression a pattern reads from. After hoisting it is
// always safe to mention any number of times.
type SourceRef struct {
	Expr    js.Expr
	Hoisted bool
}

// IsRepeatable reports whether expr can be evaluated more than once without
// observable difference: identifiers, this, and primitive literals.
func IsRepeatable(expr js.Expr) bool {
	switch expr.(type) {
	case *js.Ident, *js.This, *js.Number, *js.String, *js.Bool, *js.Null, *js.Undefined:
		return true
	}
	return false
}

func (e *emitter) repeatable(expr js.Expr) bool {
	if id, ok := expr.(*js.Ident); ok && e.conflicts[id.Name] {
		return false
	}
	if e.ctx.Repeatable != nil {
		return e.ctx.Repeatable(expr)
	}
	return IsRepeatable(expr)
}

// hoist returns src when it is repeatable; otherwise it binds src to a fresh
// temporary and returns the temporary.
func (e *emitter) hoist(src js.Expr, hint string) (SourceRef, error) {
	if e.repeatable(src) {
		return SourceRef{Expr: src}, nil
	}
	name, err := e.temp(hint)
	if err != nil {
		return SourceRef{}, err
	}
	e.add(Binding{Kind: Hoist, Target: js.Id(name), Value: src, Declare: true, Names: []string{name}})
	debugPrintf("// DEBUG hoist: %s = %s\n", name, js.PrintExpr(src))
	return SourceRef{Expr: js.Id(name), Hoisted: true}, nil
}

func (e *emitter) temp(hint string) (string, error) {
	return e.ctx.Scope.Allocate(hint)
}
