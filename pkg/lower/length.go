package lower

import (
	"expando/pkg/js"
	"expando/pkg/names"
)

// LengthPlan describes how the positions around an expansion segment are
// addressed.
type LengthPlan struct {
	Source   js.Expr
	Leading  int
	Trailing int
	Named    bool

	// Adjusted is the clamped length variable; nil unless a named segment
	// is followed by trailing elements.
	Adjusted *js.Ident
	// Init is Math.max(source.length, leading + trailing) when Adjusted is set.
	Init js.Expr
}

// PlanLength decides the addressing for an array pattern with a segment.
// src must already be repeatable.
func PlanLength(src js.Expr, leading, trailing int, named bool, scope names.Allocator) (*LengthPlan, error) {
	plan := &LengthPlan{Source: src, Leading: leading, Trailing: trailing, Named: named}
	if named && trailing > 0 {
		name, err := scope.Allocate("adjustedLength")
		if err != nil {
			return nil, err
		}
		plan.Adjusted = js.Id(name)
		plan.Init = js.CallOf(js.Dot(js.Id("Math"), "max"), js.Dot(src, "length"), js.Int(leading+trailing))
	}
	return plan, nil
}

// MinRequired is the number of positions outside the segment.
func (lp *LengthPlan) MinRequired() int {
	return lp.Leading + lp.Trailing
}

// TrailingIndex addresses trailing element p (0-based). With a discard
// segment it counts from the true end of the source.
func (lp *LengthPlan) TrailingIndex(p int) js.Expr {
	var length js.Expr = js.Dot(lp.Source, "length")
	if lp.Adjusted != nil {
		length = lp.Adjusted
	}
	return js.At(lp.Source, js.Bin("-", length, js.Int(lp.Trailing-p)))
}

// Slice returns the expression producing the elements matched by a named
// segment. Short sources yield an empty array.
func (lp *LengthPlan) Slice() js.Expr {
	slice := js.Dot(lp.Source, "slice")
	if lp.Adjusted == nil {
		return js.CallOf(slice, js.Int(lp.Leading))
	}
	return js.CallOf(slice, js.Int(lp.Leading), js.Bin("-", lp.Adjusted, js.Int(lp.Trailing)))
}
