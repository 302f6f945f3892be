package compiler

import (
	"expando/pkg/js"
	"expando/pkg/lower"
	"expando/pkg/parser"
)

// compileStatements translates a statement list. In a function body the
// last expression statement becomes the return value, unless the body ends
// with a bare return, which is dropped.
func (c *Compiler) compileStatements(stmts []parser.Statement, functionBody bool) ([]js.Stmt, error) {
	implicitReturn := functionBody
	if functionBody && len(stmts) > 0 {
		if ret, ok := stmts[len(stmts)-1].(*parser.ReturnStatement); ok && ret.ReturnValue == nil {
			stmts = stmts[:len(stmts)-1]
			implicitReturn = false
		}
	}

	var out []js.Stmt
	for i, stmt := range stmts {
		wantValue := implicitReturn && i == len(stmts)-1
		compiled, err := c.compileStatement(stmt, wantValue)
		if err != nil {
			c.pending = nil
			if err := c.classify(stmt, err); err != nil {
				return nil, err
			}
			continue
		}
		if len(c.pending) > 0 {
			out = append(out, lower.DeclareNames(c.options.Keyword, c.pending))
			c.pending = nil
		}
		out = append(out, compiled...)
	}
	return out, nil
}

func (c *Compiler) compileStatement(stmt parser.Statement, wantValue bool) ([]js.Stmt, error) {
	debugPrintf("// DEBUG compileStatement: %s\n", stmt.String())
	switch s := stmt.(type) {
	case *parser.ReturnStatement:
		if s.ReturnValue == nil {
			return []js.Stmt{&js.Return{}}, nil
		}
		value, err := c.expression(s.ReturnValue)
		if err != nil {
			return nil, err
		}
		return []js.Stmt{&js.Return{Value: value}}, nil

	case *parser.ExpressionStatement:
		if assign, ok := s.Expression.(*parser.AssignmentExpression); ok {
			return c.compileAssignmentStatement(assign, wantValue)
		}
		value, err := c.expression(s.Expression)
		if err != nil {
			return nil, err
		}
		if wantValue {
			return []js.Stmt{&js.Return{Value: value}}, nil
		}
		return []js.Stmt{&js.ExprStmt{Expr: value}}, nil

	case *parser.BlockStatement:
		return c.compileStatements(s.Statements, false)
	}
	return nil, NewCompileError(stmt, "unsupported statement "+stmt.String())
}
