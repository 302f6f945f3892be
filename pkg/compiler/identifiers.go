package compiler

import "expando/pkg/parser"

// collectIdentifiers returns every identifier the program mentions, in
// first-seen order. Property names after `.` are skipped; object keys are
// kept.
func collectIdentifiers(program *parser.Program) []string {
	seen := make(map[string]bool)
	var out []string
	w := identifierWalker{keys: true, functions: true, visit: func(name string) bool {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
		return true
	}}
	for _, s := range program.Statements {
		if !w.walk(s) {
			break
		}
	}
	return out
}

// references reports whether evaluating expr reads name right away.
// Function bodies run later and are not entered; plain object keys are
// not reads.
func references(expr parser.Expression, name string) bool {
	found := false
	w := identifierWalker{visit: func(id string) bool {
		found = id == name
		return !found
	}}
	w.walk(expr)
	return found
}

type identifierWalker struct {
	keys      bool // visit non-computed object keys
	functions bool // descend into function literals
	visit     func(name string) bool
}

// walk calls visit for each identifier under n and stops as soon as visit
// returns false.
func (w identifierWalker) walk(n parser.Node) bool {
	switch x := n.(type) {
	case nil:
	case *parser.ExpressionStatement:
		return w.walk(x.Expression)
	case *parser.ReturnStatement:
		if x.ReturnValue != nil {
			return w.walk(x.ReturnValue)
		}
	case *parser.BlockStatement:
		for _, s := range x.Statements {
			if !w.walk(s) {
				return false
			}
		}
	case *parser.Identifier:
		if x != nil {
			return w.visit(x.Value)
		}
	case *parser.InterpolatedString:
		return w.walkAll(x.Expressions)
	case *parser.MemberExpression:
		return w.walk(x.Object)
	case *parser.IndexExpression:
		return w.walk(x.Left) && w.walk(x.Index)
	case *parser.CallExpression:
		return w.walk(x.Function) && w.walkAll(x.Arguments)
	case *parser.PrefixExpression:
		return w.walk(x.Right)
	case *parser.InfixExpression:
		return w.walk(x.Left) && w.walk(x.Right)
	case *parser.AssignmentExpression:
		return w.walk(x.Left) && w.walk(x.Value)
	case *parser.ArrayLiteral:
		return w.walkAll(x.Elements)
	case *parser.ObjectLiteral:
		for _, prop := range x.Properties {
			if w.keys || prop.Computed || !isPlainKey(prop.Key) {
				if !w.walk(prop.Key) {
					return false
				}
			}
			if !w.walk(prop.Value) {
				return false
			}
		}
	case *parser.SpreadElement:
		if x.Argument != nil {
			return w.walk(x.Argument)
		}
	case *parser.FunctionLiteral:
		if !w.functions {
			return true
		}
		if !w.walkAll(x.Parameters) {
			return false
		}
		if x.Body != nil {
			return w.walk(x.Body)
		}
	}
	return true
}

func (w identifierWalker) walkAll(list []parser.Expression) bool {
	for _, e := range list {
		if !w.walk(e) {
			return false
		}
	}
	return true
}

func isPlainKey(key parser.Expression) bool {
	_, ok := key.(*parser.Identifier)
	return ok
}
