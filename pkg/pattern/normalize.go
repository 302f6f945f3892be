package pattern

import (
	"fmt"

	"expando/pkg/errors"
	"expando/pkg/js"
	"expando/pkg/lexer"
	"expando/pkg/parser"
)

// Translate converts a surface expression (a default value, a computed key,
// the object of a member target) into target JavaScript.
type Translate func(parser.Expression) (js.Expr, error)

// FromExpression normalizes the left side of a destructuring assignment.
func FromExpression(expr parser.Expression, translate Translate) (Pattern, error) {
	switch x := expr.(type) {
	case *parser.ArrayLiteral:
		return fromArray(x, translate)
	case *parser.ObjectLiteral:
		return fromObject(x, translate)
	}
	return nil, patternError(expr, fmt.Sprintf("%s is not a destructuring pattern", expr.String()))
}

// FromParameters normalizes a function parameter list. The result may
// contain one *Segment.
func FromParameters(params []parser.Expression, translate Translate) ([]Pattern, error) {
	var out []Pattern
	var seen parser.Expression
	for _, param := range params {
		p, err := fromElement(param, translate)
		if err != nil {
			return nil, err
		}
		if _, ok := p.(*Segment); ok {
			if seen != nil {
				return nil, patternError(param, "multiple expansions are disallowed in a parameter list")
			}
			seen = param
		}
		out = append(out, p)
	}
	return out, nil
}

// Split arranges an element list into an array pattern.
func Split(elements []Pattern) (*Array, error) {
	arr := &Array{}
	for _, e := range elements {
		if seg, ok := e.(*Segment); ok {
			if arr.Segment != nil {
				return nil, &errors.PatternError{Msg: "multiple expansions are disallowed in one array pattern"}
			}
			arr.Segment = seg
			continue
		}
		if arr.Segment == nil {
			arr.Leading = append(arr.Leading, e)
		} else {
			arr.Trailing = append(arr.Trailing, e)
		}
	}
	return arr, nil
}

func fromArray(lit *parser.ArrayLiteral, translate Translate) (*Array, error) {
	elements := make([]Pattern, 0, len(lit.Elements))
	segments := 0
	for _, el := range lit.Elements {
		p, err := fromElement(el, translate)
		if err != nil {
			return nil, err
		}
		if _, ok := p.(*Segment); ok {
			segments++
			if segments > 1 {
				return nil, patternError(el, "multiple expansions are disallowed in one array pattern")
			}
		}
		elements = append(elements, p)
	}
	return Split(elements)
}

// fromElement handles one position of an array pattern or parameter list.
func fromElement(expr parser.Expression, translate Translate) (Pattern, error) {
	switch x := expr.(type) {
	case *parser.SpreadElement:
		if x.Argument == nil {
			return &Segment{}, nil
		}
		if _, ok := x.Argument.(*parser.AssignmentExpression); ok {
			return nil, patternError(x, "an expansion cannot have a default value")
		}
		target, err := fromElement(x.Argument, translate)
		if err != nil {
			return nil, err
		}
		if _, ok := target.(*Segment); ok {
			return nil, patternError(x, "nested expansion")
		}
		return &Segment{Target: target}, nil

	case *parser.AssignmentExpression:
		if _, ok := x.Left.(*parser.SpreadElement); ok {
			return nil, patternError(x, "an expansion cannot have a default value")
		}
		p, err := fromElement(x.Left, translate)
		if err != nil {
			return nil, err
		}
		def, err := translate(x.Value)
		if err != nil {
			return nil, err
		}
		return withDefault(p, def), nil

	case *parser.ArrayLiteral:
		return fromArray(x, translate)
	case *parser.ObjectLiteral:
		return fromObject(x, translate)
	}

	target, err := fromTarget(expr, translate)
	if err != nil {
		return nil, err
	}
	return &Leaf{Target: target}, nil
}

func withDefault(p Pattern, def js.Expr) Pattern {
	switch x := p.(type) {
	case *Leaf:
		x.Default = def
	case *Array:
		x.Default = def
	case *Object:
		x.Default = def
	}
	return p
}

func fromTarget(expr parser.Expression, translate Translate) (Target, error) {
	switch x := expr.(type) {
	case *parser.Identifier:
		return &Name{Value: x.Value}, nil
	case *parser.MemberExpression:
		object, err := translate(x.Object)
		if err != nil {
			return nil, err
		}
		return &Member{Object: object, Property: js.Id(x.Property.Value)}, nil
	case *parser.IndexExpression:
		object, err := translate(x.Left)
		if err != nil {
			return nil, err
		}
		index, err := translate(x.Index)
		if err != nil {
			return nil, err
		}
		return &Member{Object: object, Property: index, Computed: true}, nil
	}
	return nil, patternError(expr, fmt.Sprintf("cannot assign to %s", expr.String()))
}

func fromObject(lit *parser.ObjectLiteral, translate Translate) (*Object, error) {
	obj := &Object{}
	for _, prop := range lit.Properties {
		entry, err := fromProperty(prop, translate)
		if err != nil {
			return nil, err
		}
		obj.Entries = append(obj.Entries, entry)
	}
	return obj, nil
}

func fromProperty(prop *parser.ObjectProperty, translate Translate) (*Entry, error) {
	entry := &Entry{Computed: prop.Computed}

	switch k := prop.Key.(type) {
	case *parser.Identifier:
		if !prop.Computed {
			entry.Key = js.Id(k.Value)
		}
	case *parser.StringLiteral:
		if !prop.Computed {
			entry.Key = js.Str(k.Value)
		}
	case *parser.NumberLiteral:
		if !prop.Computed {
			entry.Key = &js.Number{Raw: k.Raw}
		}
	}
	if entry.Key == nil {
		key, err := translate(prop.Key)
		if err != nil {
			return nil, err
		}
		entry.Key = key
		entry.Computed = true
	}

	value := prop.Value
	if assign, ok := value.(*parser.AssignmentExpression); ok {
		def, err := translate(assign.Value)
		if err != nil {
			return nil, err
		}
		entry.Default = def
		value = assign.Left
	}
	if spread, ok := value.(*parser.SpreadElement); ok {
		return nil, patternError(spread, "object patterns do not support expansions")
	}

	p, err := fromElement(value, translate)
	if err != nil {
		return nil, err
	}
	entry.Value = p
	return entry, nil
}

func patternError(node parser.Node, msg string) *errors.PatternError {
	return &errors.PatternError{Position: positionOf(parser.TokenOf(node)), Msg: msg}
}

func positionOf(tok lexer.Token) errors.Position {
	return errors.Position{Line: tok.Line, Column: tok.Column, StartPos: tok.StartPos, EndPos: tok.EndPos}
}
