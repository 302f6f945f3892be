package parser

import (
	"bytes"
	"strings"

	"expando/pkg/lexer"
)

// --- Interfaces ---

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string // Returns the literal value of the token associated with the node
	String() string       // Returns a string representation of the node (for debugging)
}

// Statement represents a statement node in the AST.
type Statement interface {
	Node
	statementNode()
}

// Expression represents an expression node in the AST.
type Expression interface {
	Node
	expressionNode()
}

// --- Program Node ---

// Program is the root node of the AST.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for i, s := range p.Statements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(s.String())
	}
	return out.String()
}

// --- Statement Nodes ---

// ExpressionStatement represents a statement consisting of a single expression.
type ExpressionStatement struct {
	Token      lexer.Token // The first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Literal }
func (es *ExpressionStatement) String() string {
	if es.Expression != nil {
		return es.Expression.String()
	}
	return ""
}

// ReturnStatement represents `return` with an optional value.
type ReturnStatement struct {
	Token       lexer.Token // The lexer.RETURN token
	ReturnValue Expression  // nil for a bare return
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Token.Literal }
func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return"
	}
	return "return " + rs.ReturnValue.String()
}

// BlockStatement is an indented statement list.
type BlockStatement struct {
	Token      lexer.Token // The INDENT token, or the first token of an inline body
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Literal }
func (bs *BlockStatement) String() string {
	parts := make([]string, len(bs.Statements))
	for i, s := range bs.Statements {
		parts[i] = s.String()
	}
	return strings.Join(parts, "; ")
}

// --- Expression Nodes ---

// Identifier represents an identifier.
type Identifier struct {
	Token lexer.Token // The lexer.IDENT token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }

// NumberLiteral keeps the number as written; the target language accepts
// the same spellings.
type NumberLiteral struct {
	Token lexer.Token
	Raw   string
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string       { return n.Raw }

// StringLiteral represents a string without interpolation.
type StringLiteral struct {
	Token lexer.Token
	Value string // unescaped
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) String() string       { return `"` + s.Value + `"` }

// InterpolatedString represents "text #{expr} text". Quasis always has one
// more entry than Expressions.
type InterpolatedString struct {
	Token       lexer.Token
	Quasis      []string
	Expressions []Expression
}

func (is *InterpolatedString) expressionNode()      {}
func (is *InterpolatedString) TokenLiteral() string { return is.Token.Literal }
func (is *InterpolatedString) String() string {
	var out bytes.Buffer
	out.WriteString(`"`)
	for i, q := range is.Quasis {
		out.WriteString(q)
		if i < len(is.Expressions) {
			out.WriteString("#{")
			out.WriteString(is.Expressions[i].String())
			out.WriteString("}")
		}
	}
	out.WriteString(`"`)
	return out.String()
}

// BooleanLiteral represents true/false.
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (b *BooleanLiteral) expressionNode()      {}
func (b *BooleanLiteral) TokenLiteral() string { return b.Token.Literal }
func (b *BooleanLiteral) String() string       { return b.Token.Literal }

// NullLiteral represents `null`.
type NullLiteral struct {
	Token lexer.Token
}

func (nl *NullLiteral) expressionNode()      {}
func (nl *NullLiteral) TokenLiteral() string { return nl.Token.Literal }
func (nl *NullLiteral) String() string       { return "null" }

// UndefinedLiteral represents `undefined`.
type UndefinedLiteral struct {
	Token lexer.Token
}

func (ul *UndefinedLiteral) expressionNode()      {}
func (ul *UndefinedLiteral) TokenLiteral() string { return ul.Token.Literal }
func (ul *UndefinedLiteral) String() string       { return "undefined" }

// ThisExpression represents `this` or a bare `@`.
type ThisExpression struct {
	Token lexer.Token
}

func (te *ThisExpression) expressionNode()      {}
func (te *ThisExpression) TokenLiteral() string { return te.Token.Literal }
func (te *ThisExpression) String() string       { return "this" }

// MemberExpression represents object.property (and @property).
type MemberExpression struct {
	Token    lexer.Token // The '.' or '@' token
	Object   Expression
	Property *Identifier
}

func (me *MemberExpression) expressionNode()      {}
func (me *MemberExpression) TokenLiteral() string { return me.Token.Literal }
func (me *MemberExpression) String() string {
	if _, ok := me.Object.(*ThisExpression); ok && me.Token.Type == lexer.AT {
		return "@" + me.Property.Value
	}
	return me.Object.String() + "." + me.Property.Value
}

// IndexExpression represents left[index].
type IndexExpression struct {
	Token lexer.Token // The '[' token
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) expressionNode()      {}
func (ie *IndexExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *IndexExpression) String() string {
	return ie.Left.String() + "[" + ie.Index.String() + "]"
}

// CallExpression represents fn(args...).
type CallExpression struct {
	Token     lexer.Token // The '(' token
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) expressionNode()      {}
func (ce *CallExpression) TokenLiteral() string { return ce.Token.Literal }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinExpressions(ce.Arguments) + ")"
}

// PrefixExpression represents a unary operator application.
type PrefixExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()      {}
func (pe *PrefixExpression) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression represents a binary operator application.
type InfixExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()      {}
func (ie *InfixExpression) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// AssignmentExpression represents `left = value`. Inside array and object
// patterns the same node spells a default value.
type AssignmentExpression struct {
	Token lexer.Token // The '=' token
	Left  Expression
	Value Expression
}

func (ae *AssignmentExpression) expressionNode()      {}
func (ae *AssignmentExpression) TokenLiteral() string { return ae.Token.Literal }
func (ae *AssignmentExpression) String() string {
	return ae.Left.String() + " = " + ae.Value.String()
}

// ArrayLiteral represents [a, b, c] and, on the left of '=', an array pattern.
type ArrayLiteral struct {
	Token    lexer.Token // The '[' token
	Elements []Expression
}

func (al *ArrayLiteral) expressionNode()      {}
func (al *ArrayLiteral) TokenLiteral() string { return al.Token.Literal }
func (al *ArrayLiteral) String() string {
	return "[" + joinExpressions(al.Elements) + "]"
}

// ObjectProperty is one key/value pair of an object literal.
type ObjectProperty struct {
	Key       Expression // *Identifier, *StringLiteral, *NumberLiteral, *InterpolatedString, or computed expression
	Value     Expression
	Computed  bool // [key]: value
	Shorthand bool // {a} or {@a}
}

// ObjectLiteral represents {k: v, ...} and, on the left of '=', an object pattern.
type ObjectLiteral struct {
	Token      lexer.Token // The '{' token
	Properties []*ObjectProperty
}

func (ol *ObjectLiteral) expressionNode()      {}
func (ol *ObjectLiteral) TokenLiteral() string { return ol.Token.Literal }
func (ol *ObjectLiteral) String() string {
	parts := make([]string, len(ol.Properties))
	for i, prop := range ol.Properties {
		switch {
		case prop.Shorthand:
			parts[i] = prop.Value.String()
		case prop.Computed:
			parts[i] = "[" + prop.Key.String() + "]: " + prop.Value.String()
		default:
			parts[i] = prop.Key.String() + ": " + prop.Value.String()
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// SpreadElement is the expansion marker: `a...`, `...a`, or a bare `...`
// (Argument nil).
type SpreadElement struct {
	Token    lexer.Token // The '...' token
	Argument Expression
}

func (se *SpreadElement) expressionNode()      {}
func (se *SpreadElement) TokenLiteral() string { return se.Token.Literal }
func (se *SpreadElement) String() string {
	if se.Argument == nil {
		return "..."
	}
	return se.Argument.String() + "..."
}

// FunctionLiteral represents `(params) -> body` and, when Bound, `(params) => body`.
type FunctionLiteral struct {
	Token      lexer.Token // The '->' or '=>' token
	Parameters []Expression
	Body       *BlockStatement
	Bound      bool
}

func (fl *FunctionLiteral) expressionNode()      {}
func (fl *FunctionLiteral) TokenLiteral() string { return fl.Token.Literal }
func (fl *FunctionLiteral) String() string {
	arrow := "->"
	if fl.Bound {
		arrow = "=>"
	}
	out := "(" + joinExpressions(fl.Parameters) + ") " + arrow
	if fl.Body != nil && len(fl.Body.Statements) > 0 {
		out += " " + fl.Body.String()
	}
	return out
}

func joinExpressions(exprs []Expression) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// TokenOf returns the token a node was built from, for error positions.
func TokenOf(n Node) lexer.Token {
	switch x := n.(type) {
	case *ExpressionStatement:
		return x.Token
	case *ReturnStatement:
		return x.Token
	case *BlockStatement:
		return x.Token
	case *Identifier:
		return x.Token
	case *NumberLiteral:
		return x.Token
	case *StringLiteral:
		return x.Token
	case *InterpolatedString:
		return x.Token
	case *BooleanLiteral:
		return x.Token
	case *NullLiteral:
		return x.Token
	case *UndefinedLiteral:
		return x.Token
	case *ThisExpression:
		return x.Token
	case *MemberExpression:
		return x.Token
	case *IndexExpression:
		return x.Token
	case *CallExpression:
		return x.Token
	case *PrefixExpression:
		return x.Token
	case *InfixExpression:
		return x.Token
	case *AssignmentExpression:
		return x.Token
	case *ArrayLiteral:
		return x.Token
	case *ObjectLiteral:
		return x.Token
	case *SpreadElement:
		return x.Token
	case *FunctionLiteral:
		return x.Token
	}
	return lexer.Token{}
}
