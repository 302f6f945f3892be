// Package js models the JavaScript produced by the compiler and prints it.
package js

import "strconv"

// Node is implemented by every target node.
type Node interface {
	jsNode()
}

// Expr is a JavaScript expression. Binding patterns are expressions too so
// they can stand on the left of an assignment.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a JavaScript statement.
type Stmt interface {
	Node
	stmtNode()
}

// --- Expressions ---

type Ident struct {
	Name string
}

// Number is a numeric literal kept in source spelling.
type Number struct {
	Raw string
}

type String struct {
	Value string
}

// Template is a backtick literal; len(Quasis) == len(Exprs)+1.
type Template struct {
	Quasis []string
	Exprs  []Expr
}

type Bool struct {
	Value bool
}

type Null struct{}

type Undefined struct{}

type This struct{}

// Member is object.property. Properties that are not identifier names are
// printed as object["property"].
type Member struct {
	Object   Expr
	Property string
}

// Index is object[index].
type Index struct {
	Object Expr
	Index  Expr
}

type Call struct {
	Callee Expr
	Args   []Expr
}

type Unary struct {
	Op      string
	Operand Expr
}

type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

// Conditional is test ? then : otherwise.
type Conditional struct {
	Test      Expr
	Then      Expr
	Otherwise Expr
}

type Assign struct {
	Target Expr
	Value  Expr
}

// Sequence is the comma operator.
type Sequence struct {
	Exprs []Expr
}

type Array struct {
	Elements []Expr
}

// Spread is ...arg inside array literals and call arguments.
type Spread struct {
	Arg Expr
}

// Property is one entry of an object literal.
type Property struct {
	Key      Expr // *Ident, *String, *Number, or any expression when Computed
	Computed bool
	Value    Expr
}

type Object struct {
	Props []*Property
}

// Param is a function parameter: a plain name or a rest parameter.
type Param struct {
	Name string
	Rest bool
}

// Function is `function(params) {body}` or, when Arrow, `(params) => {body}`.
type Function struct {
	Params []Param
	Body   []Stmt
	Arrow  bool
}

// --- Binding patterns (native destructuring) ---

// ArrayPattern is [a, b, ...rest]. Rest is nil when absent.
type ArrayPattern struct {
	Elements []Expr
	Rest     Expr
}

// PatternProp is key: value inside an object pattern.
type PatternProp struct {
	Key      Expr
	Computed bool
	Value    Expr
}

type ObjectPattern struct {
	Props []*PatternProp
}

// --- Statements ---

// Declarator is one `target = init` entry of a declaration. Init may be nil.
type Declarator struct {
	Target Expr
	Init   Expr
}

// VarDecl is `let a = 1, b;` (Kind may be "let", "var" or "const").
type VarDecl struct {
	Kind  string
	Decls []*Declarator
}

type ExprStmt struct {
	Expr Expr
}

// Return with a nil Value prints as a bare `return;`.
type Return struct {
	Value Expr
}

func (*Ident) jsNode()         {}
func (*Number) jsNode()        {}
func (*String) jsNode()        {}
func (*Template) jsNode()      {}
func (*Bool) jsNode()          {}
func (*Null) jsNode()          {}
func (*Undefined) jsNode()     {}
func (*This) jsNode()          {}
func (*Member) jsNode()        {}
func (*Index) jsNode()         {}
func (*Call) jsNode()          {}
func (*Unary) jsNode()         {}
func (*Binary) jsNode()        {}
func (*Conditional) jsNode()   {}
func (*Assign) jsNode()        {}
func (*Sequence) jsNode()      {}
func (*Array) jsNode()         {}
func (*Spread) jsNode()        {}
func (*Object) jsNode()        {}
func (*Function) jsNode()      {}
func (*ArrayPattern) jsNode()  {}
func (*ObjectPattern) jsNode() {}
func (*VarDecl) jsNode()       {}
func (*ExprStmt) jsNode()      {}
func (*Return) jsNode()        {}

func (*Ident) exprNode()         {}
func (*Number) exprNode()        {}
func (*String) exprNode()        {}
func (*Template) exprNode()      {}
func (*Bool) exprNode()          {}
func (*Null) exprNode()          {}
func (*Undefined) exprNode()     {}
func (*This) exprNode()          {}
func (*Member) exprNode()        {}
func (*Index) exprNode()         {}
func (*Call) exprNode()          {}
func (*Unary) exprNode()         {}
func (*Binary) exprNode()        {}
func (*Conditional) exprNode()   {}
func (*Assign) exprNode()        {}
func (*Sequence) exprNode()      {}
func (*Array) exprNode()         {}
func (*Spread) exprNode()        {}
func (*Object) exprNode()        {}
func (*Function) exprNode()      {}
func (*ArrayPattern) exprNode()  {}
func (*ObjectPattern) exprNode() {}

func (*VarDecl) stmtNode()  {}
func (*ExprStmt) stmtNode() {}
func (*Return) stmtNode()   {}

// --- Constructors used throughout the lowering code ---

func Id(name string) *Ident { return &Ident{Name: name} }

func Int(n int) *Number { return &Number{Raw: strconv.Itoa(n)} }

func Str(s string) *String { return &String{Value: s} }

func Dot(object Expr, property string) *Member {
	return &Member{Object: object, Property: property}
}

func At(object Expr, index Expr) *Index {
	return &Index{Object: object, Index: index}
}

func CallOf(callee Expr, args ...Expr) *Call {
	return &Call{Callee: callee, Args: args}
}

func Bin(op string, left, right Expr) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

func Set(target, value Expr) *Assign {
	return &Assign{Target: target, Value: value}
}
