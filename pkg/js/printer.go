package js

import (
	"bytes"
	"fmt"
	"strings"
)

// DefaultIndent is used when no indentation is configured.
const DefaultIndent = "  "

// Operator precedence, loosest first.
const (
	precLowest = iota
	precSequence
	precAssign
	precConditional
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precCall
	precPrimary
)

var binaryPrecedence = map[string]int{
	"||":  precOr,
	"&&":  precAnd,
	"==":  precEquality,
	"!=":  precEquality,
	"===": precEquality,
	"!==": precEquality,
	"<":   precRelational,
	">":   precRelational,
	"<=":  precRelational,
	">=":  precRelational,
	"+":   precAdditive,
	"-":   precAdditive,
	"*":   precMultiplicative,
	"/":   precMultiplicative,
	"%":   precMultiplicative,
}

// Printer turns target nodes into JavaScript source text.
type Printer struct {
	indent string
	level  int
	buffer bytes.Buffer
}

// NewPrinter creates a printer indenting nested bodies with indent.
func NewPrinter(indent string) *Printer {
	if indent == "" {
		indent = DefaultIndent
	}
	return &Printer{indent: indent}
}

// Print renders a statement list, one statement per line.
func (p *Printer) Print(stmts []Stmt) string {
	p.buffer.Reset()
	p.level = 0
	for _, stmt := range stmts {
		p.statement(stmt)
	}
	return p.buffer.String()
}

// PrintProgram renders stmts with the default indentation.
func PrintProgram(stmts []Stmt) string {
	return NewPrinter(DefaultIndent).Print(stmts)
}

// PrintExpr renders a single expression.
func PrintExpr(e Expr) string {
	p := NewPrinter(DefaultIndent)
	p.expr(e, precLowest)
	return p.buffer.String()
}

// PrintStmt renders a single statement without the trailing newline.
func PrintStmt(s Stmt) string {
	return strings.TrimSuffix(PrintProgram([]Stmt{s}), "\n")
}

// Helper methods

func (p *Printer) writeIndent() {
	for i := 0; i < p.level; i++ {
		p.buffer.WriteString(p.indent)
	}
}

func (p *Printer) write(s string) {
	p.buffer.WriteString(s)
}

// --- Statements ---

func (p *Printer) statement(stmt Stmt) {
	p.writeIndent()
	switch s := stmt.(type) {
	case *VarDecl:
		p.write(s.Kind)
		p.write(" ")
		for i, d := range s.Decls {
			if i > 0 {
				p.write(", ")
			}
			p.expr(d.Target, precCall)
			if d.Init != nil {
				p.write(" = ")
				p.expr(d.Init, precAssign)
			}
		}
		p.write(";")
	case *ExprStmt:
		if needsStatementParens(s.Expr) {
			p.write("(")
			p.expr(s.Expr, precLowest)
			p.write(")")
		} else {
			p.expr(s.Expr, precLowest)
		}
		p.write(";")
	case *Return:
		if s.Value == nil {
			p.write("return;")
		} else {
			p.write("return ")
			p.expr(s.Value, precLowest)
			p.write(";")
		}
	default:
		p.write(fmt.Sprintf("/* unsupported statement %T */", s))
	}
	p.write("\n")
}

// needsStatementParens reports whether e would start with `function` or `{`
// at the beginning of a statement.
func needsStatementParens(e Expr) bool {
	for {
		switch x := e.(type) {
		case *Function:
			return !x.Arrow
		case *Object, *ObjectPattern:
			return true
		case *Assign:
			e = x.Target
		case *Binary:
			if precedence(x.Left) < binaryPrecedence[x.Op] {
				return false
			}
			e = x.Left
		case *Call:
			if precedence(x.Callee) < precCall {
				return false
			}
			e = x.Callee
		case *Member:
			e = x.Object
		case *Index:
			e = x.Object
		case *Sequence:
			if len(x.Exprs) == 0 || precedence(x.Exprs[0]) < precAssign {
				return false
			}
			e = x.Exprs[0]
		case *Conditional:
			if precedence(x.Test) < precOr {
				return false
			}
			e = x.Test
		default:
			return false
		}
	}
}

// --- Expressions ---

func precedence(e Expr) int {
	switch x := e.(type) {
	case *Sequence:
		return precSequence
	case *Assign, *Spread:
		return precAssign
	case *Function:
		if x.Arrow {
			return precAssign
		}
		return precPrimary
	case *Conditional:
		return precConditional
	case *Binary:
		return binaryPrecedence[x.Op]
	case *Unary:
		return precUnary
	case *Call, *Member, *Index:
		return precCall
	}
	return precPrimary
}

func (p *Printer) expr(e Expr, min int) {
	wrap := precedence(e) < min
	if wrap {
		p.write("(")
	}

	switch x := e.(type) {
	case *Ident:
		p.write(x.Name)
	case *Number:
		p.write(x.Raw)
	case *String:
		p.write(Quote(x.Value))
	case *Template:
		p.template(x)
	case *Bool:
		p.write(fmt.Sprintf("%t", x.Value))
	case *Null:
		p.write("null")
	case *Undefined:
		p.write("undefined")
	case *This:
		p.write("this")
	case *Member:
		p.memberObject(x.Object)
		if IsIdentifierName(x.Property) {
			p.write(".")
			p.write(x.Property)
		} else {
			p.write("[")
			p.write(Quote(x.Property))
			p.write("]")
		}
	case *Index:
		p.memberObject(x.Object)
		p.write("[")
		p.expr(x.Index, precLowest)
		p.write("]")
	case *Call:
		p.expr(x.Callee, precCall)
		p.write("(")
		p.list(x.Args)
		p.write(")")
	case *Unary:
		p.write(x.Op)
		operand := precUnary
		if u, ok := x.Operand.(*Unary); ok && (u.Op == "-" || u.Op == "+") && (x.Op == "-" || x.Op == "+") {
			operand = precCall // force parens: -(-a)
		}
		p.expr(x.Operand, operand)
	case *Binary:
		prec := binaryPrecedence[x.Op]
		p.expr(x.Left, prec)
		p.write(" ")
		p.write(x.Op)
		p.write(" ")
		p.expr(x.Right, prec+1)
	case *Conditional:
		p.expr(x.Test, precOr)
		p.write(" ? ")
		p.expr(x.Then, precAssign)
		p.write(" : ")
		p.expr(x.Otherwise, precAssign)
	case *Assign:
		p.expr(x.Target, precCall)
		p.write(" = ")
		p.expr(x.Value, precAssign)
	case *Sequence:
		p.list(x.Exprs)
	case *Array:
		p.write("[")
		p.list(x.Elements)
		p.write("]")
	case *Spread:
		p.write("...")
		p.expr(x.Arg, precAssign)
	case *Object:
		p.object(x)
	case *Function:
		p.function(x)
	case *ArrayPattern:
		p.write("[")
		p.list(x.Elements)
		if x.Rest != nil {
			if len(x.Elements) > 0 {
				p.write(", ")
			}
			p.write("...")
			p.expr(x.Rest, precCall)
		}
		p.write("]")
	case *ObjectPattern:
		p.write("{")
		for i, prop := range x.Props {
			if i > 0 {
				p.write(", ")
			}
			p.property(prop.Key, prop.Computed, prop.Value)
		}
		p.write("}")
	default:
		p.write(fmt.Sprintf("/* unsupported expression %T */", e))
	}

	if wrap {
		p.write(")")
	}
}

// memberObject prints the object of a member access; integer literals need
// parens so the dot is not read as a decimal point.
func (p *Printer) memberObject(object Expr) {
	if n, ok := object.(*Number); ok && !strings.ContainsAny(n.Raw, ".eExXbBoO") {
		p.write("(")
		p.write(n.Raw)
		p.write(")")
		return
	}
	p.expr(object, precCall)
}

func (p *Printer) list(exprs []Expr) {
	for i, e := range exprs {
		if i > 0 {
			p.write(", ")
		}
		p.expr(e, precAssign)
	}
}

func (p *Printer) template(t *Template) {
	p.write("`")
	for i, q := range t.Quasis {
		p.write(escapeTemplate(q))
		if i < len(t.Exprs) {
			p.write("${")
			p.expr(t.Exprs[i], precLowest)
			p.write("}")
		}
	}
	p.write("`")
}

func (p *Printer) object(o *Object) {
	if len(o.Props) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	for i, prop := range o.Props {
		if i > 0 {
			p.write(", ")
		}
		p.property(prop.Key, prop.Computed, prop.Value)
	}
	p.write("}")
}

// property prints `key: value`, or just `key` when the value is the
// identifier of the same name.
func (p *Printer) property(key Expr, computed bool, value Expr) {
	if computed {
		p.write("[")
		p.expr(key, precAssign)
		p.write("]: ")
		p.expr(value, precAssign)
		return
	}

	name, named := keyName(key)
	if named {
		if id, ok := value.(*Ident); ok && id.Name == name && IsIdentifier(name) {
			p.write(name)
			return
		}
		if IsIdentifierName(name) {
			p.write(name)
		} else {
			p.write(Quote(name))
		}
	} else {
		p.expr(key, precPrimary)
	}
	p.write(": ")
	p.expr(value, precAssign)
}

func keyName(key Expr) (string, bool) {
	switch k := key.(type) {
	case *Ident:
		return k.Name, true
	case *String:
		return k.Value, true
	}
	return "", false
}

func (p *Printer) function(fn *Function) {
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		if param.Rest {
			params[i] = "..." + param.Name
		} else {
			params[i] = param.Name
		}
	}

	if fn.Arrow {
		p.write("(" + strings.Join(params, ", ") + ") => ")
	} else {
		p.write("function(" + strings.Join(params, ", ") + ") ")
	}

	if len(fn.Body) == 0 {
		p.write("{}")
		return
	}
	p.write("{\n")
	p.level++
	for _, stmt := range fn.Body {
		p.statement(stmt)
	}
	p.level--
	p.writeIndent()
	p.write("}")
}

// Quote renders s as a double-quoted JavaScript string literal.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		case '\u2028', '\u2029':
			fmt.Fprintf(&b, `\u%04x`, r)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

func escapeTemplate(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "`", "\\`")
	return strings.ReplaceAll(s, "${", `\${`)
}
