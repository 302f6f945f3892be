package lower

import (
	"expando/pkg/errors"
	"expando/pkg/js"
	"expando/pkg/names"
	"expando/pkg/pattern"
)

// ParamResult is a lowered parameter list.
type ParamResult struct {
	Params   []js.Param
	Prologue []js.Stmt
	// Declared lists every name the parameters introduce into the function
	// scope, temporaries included.
	Declared []string
}

// LowerParameters lowers a parameter list using the default declaration
// keyword.
func LowerParameters(params []pattern.Pattern, scope names.Allocator) (*ParamResult, error) {
	return LowerParametersWith(params, Context{Scope: scope})
}

// LowerParametersWith lowers a parameter list. Plain names stay parameters;
// from the first parameter that is not a plain name on, the arguments are
// captured by one rest parameter and destructured in the prologue.
func LowerParametersWith(params []pattern.Pattern, ctx Context) (*ParamResult, error) {
	segments := 0
	for _, p := range params {
		if _, ok := p.(*pattern.Segment); ok {
			segments++
		}
	}
	if segments > 1 {
		return nil, &errors.PatternError{Msg: "multiple expansions are disallowed in a parameter list"}
	}

	if n := len(params); n > 0 {
		if seg, ok := params[n-1].(*pattern.Segment); ok && seg.Target == nil {
			params = params[:n-1]
		}
	}

	k := len(params)
	for i, p := range params {
		if plainName(p) == "" {
			k = i
			break
		}
	}

	out := &ParamResult{}
	keep := func(upto int) {
		for _, p := range params[:upto] {
			name := plainName(p)
			out.Params = append(out.Params, js.Param{Name: name})
			out.Declared = append(out.Declared, name)
		}
	}

	if k == len(params) {
		keep(k)
		return out, nil
	}
	if k == len(params)-1 {
		if seg, ok := params[k].(*pattern.Segment); ok {
			if name := plainName(seg.Target); name != "" {
				keep(k)
				out.Params = append(out.Params, js.Param{Name: name, Rest: true})
				out.Declared = append(out.Declared, name)
				return out, nil
			}
		}
	}

	region, err := pattern.Split(params[k:])
	if err != nil {
		return nil, err
	}
	if region.Segment != nil && region.Segment.Target == nil && len(region.Trailing) > 0 && k > 0 {
		k = 0
		if region, err = pattern.Split(params); err != nil {
			return nil, err
		}
	}

	hint := "args"
	if k > 0 {
		hint = "rest"
	}
	if ctx.Scope == nil {
		return nil, &errors.InternalError{Msg: "lowering needs a name allocator"}
	}
	captured, err := ctx.Scope.Allocate(hint)
	if err != nil {
		return nil, err
	}
	debugPrintf("// DEBUG params: keeping %d, capturing into %s\n", k, captured)

	keep(k)
	out.Params = append(out.Params, js.Param{Name: captured, Rest: true})
	out.Declared = append(out.Declared, captured)

	ctx.TargetKind = Declaration
	ctx.ExpressionResult = false
	ctx.Declare = nil
	result, err := LowerDestructure(region, js.Id(captured), ctx)
	if err != nil {
		return nil, err
	}
	out.Prologue = result.Statements()
	out.Declared = append(out.Declared, result.Declared()...)
	return out, nil
}

// plainName returns the name of a leaf that is a bare local variable
// without default, or "".
func plainName(p pattern.Pattern) string {
	leaf, ok := p.(*pattern.Leaf)
	if !ok || leaf.Default != nil {
		return ""
	}
	if n, ok := leaf.Target.(*pattern.Name); ok {
		return n.Value
	}
	return ""
}
