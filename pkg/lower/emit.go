package lower

import "expando/pkg/js"

// BindingKind says where a binding came from.
type BindingKind int

const (
	Hoist       BindingKind = iota // temporary holding a non-repeatable source
	Index                          // positional element
	Slice                          // named segment
	Length                         // clamped length
	DefaultTemp                    // temporary tested against null
	Default                        // value or default
	Native                         // native destructuring of a safe sub-pattern
	Property                       // object entry
)

var bindingKindNames = [...]string{"hoist", "index", "slice", "length", "default-temp", "default", "native", "property"}

func (k BindingKind) String() string {
	if int(k) < len(bindingKindNames) {
		return bindingKindNames[k]
	}
	return "BindingKind(?)"
}

// Binding is one `target = value` step. Declare marks targets introduced
// by the lowering itself; Names lists the local variables Target declares.
type Binding struct {
	Kind    BindingKind
	Target  js.Expr
	Value   js.Expr
	Declare bool
	Names   []string
}

// Result is the ordered output of lowering one pattern.
type Result struct {
	Bindings []Binding
	// Value is the expression standing for the whole destructuring. It never
	// re-evaluates the original source when the pattern hoisted it.
	Value js.Expr

	keyword          string
	extra            []string
	expressionResult bool
}

// Declared lists the names that must be declared for Expression() or the
// split form of Statements(), in binding order without duplicates.
func (r *Result) Declared() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, b := range r.Bindings {
		if !b.Declare {
			continue
		}
		for _, name := range b.Names {
			add(name)
		}
	}
	for _, name := range r.extra {
		add(name)
	}
	return out
}

// Statements renders the bindings as statements. When every target is
// declared here the result is one declaration `let a = x, b = y;`;
// otherwise the declared names get a bare `let t;` and the bindings become
// one assignment statement.
func (r *Result) Statements() []js.Stmt {
	if len(r.Bindings) == 0 {
		return nil
	}

	allDeclared := len(r.extra) == 0
	for _, b := range r.Bindings {
		if !b.Declare {
			allDeclared = false
			break
		}
	}
	if allDeclared {
		decl := &js.VarDecl{Kind: r.keyword}
		for _, b := range r.Bindings {
			decl.Decls = append(decl.Decls, &js.Declarator{Target: b.Target, Init: b.Value})
		}
		return []js.Stmt{decl}
	}

	var stmts []js.Stmt
	if declared := r.Declared(); len(declared) > 0 {
		stmts = append(stmts, DeclareNames(r.keyword, declared))
	}
	return append(stmts, &js.ExprStmt{Expr: r.assignments(false)})
}

// Expression renders the bindings as one comma expression. With an
// expression result the last operand is Value. Names from Declared() must be
// declared by the caller.
func (r *Result) Expression() js.Expr {
	if len(r.Bindings) == 0 {
		if r.Value == nil {
			return &js.Undefined{}
		}
		return r.Value
	}
	return r.assignments(r.expressionResult)
}

func (r *Result) assignments(withValue bool) js.Expr {
	exprs := make([]js.Expr, 0, len(r.Bindings)+1)
	for _, b := range r.Bindings {
		exprs = append(exprs, js.Set(b.Target, b.Value))
	}
	if withValue && r.Value != nil {
		exprs = append(exprs, r.Value)
	}
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &js.Sequence{Exprs: exprs}
}

// DeclareNames builds `keyword a, b;` without initializers.
func DeclareNames(keyword string, names []string) *js.VarDecl {
	if keyword == "" {
		keyword = DefaultKeyword
	}
	decl := &js.VarDecl{Kind: keyword}
	for _, name := range names {
		decl.Decls = append(decl.Decls, &js.Declarator{Target: js.Id(name)})
	}
	return decl
}
