package compiler

import (
	"expando/pkg/js"
	"expando/pkg/lower"
	"expando/pkg/names"
	"expando/pkg/parser"
	"expando/pkg/pattern"
)

// compileFunction translates a function literal. Parameters go through
// lower.LowerParametersWith; the body runs in a nested Compiler whose
// errors are merged back.
func (c *Compiler) compileFunction(fn *parser.FunctionLiteral) (js.Expr, error) {
	fc := newFunctionCompiler(c)
	defer func() { c.errors = append(c.errors, fc.errors...) }()

	params, err := pattern.FromParameters(fn.Parameters, fc.expression)
	if err != nil {
		return nil, err
	}
	lowered, err := lower.LowerParametersWith(params, lower.Context{Scope: fc.scope, Keyword: c.options.Keyword})
	if err != nil {
		return nil, err
	}
	for _, name := range lowered.Declared {
		if !fc.scope.DefinedHere(name) {
			fc.scope.Define(name, names.Parameter)
		}
	}

	var body []js.Stmt
	if len(fc.pending) > 0 {
		body = append(body, lower.DeclareNames(c.options.Keyword, fc.pending))
		fc.pending = nil
	}
	body = append(body, lowered.Prologue...)
	if fn.Body != nil {
		stmts, err := fc.compileStatements(fn.Body.Statements, true)
		if err != nil {
			return nil, err
		}
		body = append(body, stmts...)
	}
	debugPrintf("// DEBUG compileFunction: %d params, %d statements\n", len(lowered.Params), len(body))
	return &js.Function{Params: lowered.Params, Body: body, Arrow: fn.Bound}, nil
}
