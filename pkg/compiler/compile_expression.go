package compiler

import (
	"expando/pkg/js"
	"expando/pkg/parser"
)

var binaryOperators = map[string]string{
	"==": "===",
	"!=": "!==",
}

// expression translates a value-position expression. It is also the
// translator handed to pkg/pattern for defaults, keys and member objects.
func (c *Compiler) expression(e parser.Expression) (js.Expr, error) {
	switch x := e.(type) {
	case *parser.Identifier:
		return js.Id(x.Value), nil
	case *parser.NumberLiteral:
		return &js.Number{Raw: x.Raw}, nil
	case *parser.StringLiteral:
		return js.Str(x.Value), nil
	case *parser.InterpolatedString:
		tpl := &js.Template{Quasis: x.Quasis}
		for _, sub := range x.Expressions {
			v, err := c.expression(sub)
			if err != nil {
				return nil, err
			}
			tpl.Exprs = append(tpl.Exprs, v)
		}
		return tpl, nil
	case *parser.BooleanLiteral:
		return &js.Bool{Value: x.Value}, nil
	case *parser.NullLiteral:
		return &js.Null{}, nil
	case *parser.UndefinedLiteral:
		return &js.Undefined{}, nil
	case *parser.ThisExpression:
		return &js.This{}, nil

	case *parser.MemberExpression:
		object, err := c.expression(x.Object)
		if err != nil {
			return nil, err
		}
		return js.Dot(object, x.Property.Value), nil

	case *parser.IndexExpression:
		object, err := c.expression(x.Left)
		if err != nil {
			return nil, err
		}
		index, err := c.expression(x.Index)
		if err != nil {
			return nil, err
		}
		return js.At(object, index), nil

	case *parser.CallExpression:
		callee, err := c.expression(x.Function)
		if err != nil {
			return nil, err
		}
		args, err := c.elements(x.Arguments)
		if err != nil {
			return nil, err
		}
		return js.CallOf(callee, args...), nil

	case *parser.PrefixExpression:
		operand, err := c.expression(x.Right)
		if err != nil {
			return nil, err
		}
		return &js.Unary{Op: x.Operator, Operand: operand}, nil

	case *parser.InfixExpression:
		left, err := c.expression(x.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.expression(x.Right)
		if err != nil {
			return nil, err
		}
		op := x.Operator
		if mapped, ok := binaryOperators[op]; ok {
			op = mapped
		}
		return js.Bin(op, left, right), nil

	case *parser.AssignmentExpression:
		return c.assignment(x)

	case *parser.ArrayLiteral:
		elements, err := c.elements(x.Elements)
		if err != nil {
			return nil, err
		}
		return &js.Array{Elements: elements}, nil

	case *parser.ObjectLiteral:
		return c.object(x)

	case *parser.FunctionLiteral:
		return c.compileFunction(x)

	case *parser.SpreadElement:
		return nil, NewCompileError(x, "expansion is only allowed in patterns, arrays and calls")
	}
	return nil, NewCompileError(e, "unsupported expression "+e.String())
}

// elements translates array elements or call arguments, where `x...`
// spreads x.
func (c *Compiler) elements(list []parser.Expression) ([]js.Expr, error) {
	out := make([]js.Expr, 0, len(list))
	for _, el := range list {
		if spread, ok := el.(*parser.SpreadElement); ok {
			if spread.Argument == nil {
				return nil, NewCompileError(spread, "expansion without a value outside a pattern")
			}
			arg, err := c.expression(spread.Argument)
			if err != nil {
				return nil, err
			}
			out = append(out, &js.Spread{Arg: arg})
			continue
		}
		v, err := c.expression(el)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Compiler) object(lit *parser.ObjectLiteral) (js.Expr, error) {
	obj := &js.Object{}
	for _, prop := range lit.Properties {
		if _, ok := prop.Value.(*parser.AssignmentExpression); ok && prop.Shorthand {
			return nil, NewCompileError(prop.Value, "default values are only allowed in patterns")
		}
		value, err := c.expression(prop.Value)
		if err != nil {
			return nil, err
		}
		out := &js.Property{Value: value, Computed: prop.Computed}
		switch key := prop.Key.(type) {
		case *parser.Identifier:
			out.Key = js.Id(key.Value)
		case *parser.StringLiteral:
			out.Key = js.Str(key.Value)
		case *parser.NumberLiteral:
			out.Key = &js.Number{Raw: key.Raw}
		default:
			k, err := c.expression(prop.Key)
			if err != nil {
				return nil, err
			}
			out.Key = k
			out.Computed = true
		}
		obj.Props = append(obj.Props, out)
	}
	return obj, nil
}
