package compiler

import (
	"expando/pkg/js"
	"expando/pkg/lower"
	"expando/pkg/names"
	"expando/pkg/parser"
	"expando/pkg/pattern"
)

// compileAssignmentStatement handles `target = value` in statement
// position: new names are declared in place.
func (c *Compiler) compileAssignmentStatement(assign *parser.AssignmentExpression, wantValue bool) ([]js.Stmt, error) {
	switch left := assign.Left.(type) {
	case *parser.Identifier:
		fresh := !c.isDefined(left.Value)
		if fresh {
			c.scope.Define(left.Value, names.Variable)
		}
		value, err := c.expression(assign.Value)
		if err != nil {
			return nil, err
		}
		var stmts []js.Stmt
		switch {
		case fresh && references(assign.Value, left.Value):
			// `let a = a + 1` would read a in its dead zone.
			stmts = []js.Stmt{
				lower.DeclareNames(c.options.Keyword, []string{left.Value}),
				&js.ExprStmt{Expr: js.Set(js.Id(left.Value), value)},
			}
		case fresh:
			stmts = []js.Stmt{&js.VarDecl{Kind: c.options.Keyword, Decls: []*js.Declarator{{Target: js.Id(left.Value), Init: value}}}}
		default:
			stmts = []js.Stmt{&js.ExprStmt{Expr: js.Set(js.Id(left.Value), value)}}
		}
		if wantValue {
			stmts = append(stmts, &js.Return{Value: js.Id(left.Value)})
		}
		return stmts, nil

	case *parser.ArrayLiteral, *parser.ObjectLiteral:
		return c.destructureStatement(assign, wantValue)
	}

	expr, err := c.assignment(assign)
	if err != nil {
		return nil, err
	}
	if wantValue {
		return []js.Stmt{&js.Return{Value: expr}}, nil
	}
	return []js.Stmt{&js.ExprStmt{Expr: expr}}, nil
}

func (c *Compiler) destructureStatement(assign *parser.AssignmentExpression, wantValue bool) ([]js.Stmt, error) {
	p, err := pattern.FromExpression(assign.Left, c.expression)
	if err != nil {
		return nil, err
	}
	source, err := c.expression(assign.Value)
	if err != nil {
		return nil, err
	}

	ctx, _ := c.destructureContext(p, wantValue)
	result, err := lower.LowerDestructure(p, source, ctx)
	if err != nil {
		return nil, err
	}
	stmts := result.Statements()
	if wantValue {
		stmts = append(stmts, &js.Return{Value: result.Value})
	}
	return stmts, nil
}

// destructureContext picks declaration mode when every name the pattern
// binds is new here, and assignment mode otherwise. It returns the new
// names and defines them.
func (c *Compiler) destructureContext(p pattern.Pattern, expressionResult bool) (lower.Context, []string) {
	bound := pattern.BoundNames(p)
	seen := make(map[string]bool)
	var fresh []string
	duplicate := false
	for _, name := range bound {
		if seen[name] {
			duplicate = true
			continue
		}
		seen[name] = true
		if !c.isDefined(name) {
			fresh = append(fresh, name)
		}
	}

	ctx := lower.Context{
		ExpressionResult: expressionResult,
		Scope:            c.scope,
		Keyword:          c.options.Keyword,
	}
	if !duplicate && len(fresh) == len(bound) {
		ctx.TargetKind = lower.Declaration
	} else {
		ctx.TargetKind = lower.Assign
		ctx.Declare = fresh
	}
	for _, name := range fresh {
		c.scope.Define(name, names.Variable)
	}
	return ctx, fresh
}

// assignment translates an assignment used as an expression.
func (c *Compiler) assignment(assign *parser.AssignmentExpression) (js.Expr, error) {
	switch left := assign.Left.(type) {
	case *parser.Identifier:
		if !c.isDefined(left.Value) {
			c.declareLater(left.Value)
		}
		value, err := c.expression(assign.Value)
		if err != nil {
			return nil, err
		}
		return js.Set(js.Id(left.Value), value), nil

	case *parser.MemberExpression, *parser.IndexExpression:
		target, err := c.expression(left)
		if err != nil {
			return nil, err
		}
		value, err := c.expression(assign.Value)
		if err != nil {
			return nil, err
		}
		return js.Set(target, value), nil

	case *parser.ArrayLiteral, *parser.ObjectLiteral:
		p, err := pattern.FromExpression(left, c.expression)
		if err != nil {
			return nil, err
		}
		source, err := c.expression(assign.Value)
		if err != nil {
			return nil, err
		}
		ctx, fresh := c.destructureContext(p, true)
		ctx.TargetKind = lower.Assign
		ctx.Declare = nil
		result, err := lower.LowerDestructure(p, source, ctx)
		if err != nil {
			return nil, err
		}
		c.declareLater(fresh...)
		c.declareLater(result.Declared()...)
		return result.Expression(), nil
	}
	return nil, NewCompileError(assign, "invalid assignment target: "+assign.Left.String())
}
