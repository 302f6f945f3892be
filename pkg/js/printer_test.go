package js

import "testing"

func TestPrintExpr(t *testing.T) {
	arr := Id("arr")
	tests := []struct {
		name     string
		expr     Expr
		expected string
	}{
		{"index from end", At(arr, Bin("-", Dot(arr, "length"), Int(2))), "arr[arr.length - 2]"},
		{"math max", CallOf(Dot(Id("Math"), "max"), Dot(arr, "length"), Int(2)), "Math.max(arr.length, 2)"},
		{"default", &Conditional{Test: Bin("!=", Id("val"), &Null{}), Then: Id("val"), Otherwise: Int(1)},
			"val != null ? val : 1"},
		{"non identifier property", Dot(Id("o"), "a-b"), `o["a-b"]`},
		{"reserved word property", Dot(Id("o"), "class"), "o.class"},
		{"left assoc minus", Bin("-", Id("a"), Bin("-", Id("b"), Id("c"))), "a - (b - c)"},
		{"mixed precedence", Bin("*", Bin("+", Id("a"), Id("b")), Id("c")), "(a + b) * c"},
		{"logical", Bin("||", Bin("&&", Id("a"), Id("b")), Id("c")), "a && b || c"},
		{"sequence in argument", CallOf(Id("f"), &Sequence{Exprs: []Expr{Id("a"), Id("b")}}), "f((a, b))"},
		{"assignment in sequence", &Sequence{Exprs: []Expr{Set(Id("a"), Id("x")), Id("x")}}, "a = x, x"},
		{"nested assignment", Set(Id("c"), Set(Id("a"), Id("b"))), "c = a = b"},
		{"double negation", &Unary{Op: "-", Operand: &Unary{Op: "-", Operand: Id("a")}}, "-(-a)"},
		{"not", &Unary{Op: "!", Operand: Bin("==", Id("a"), Id("b"))}, "!(a == b)"},
		{"number member", Dot(Int(1), "toString"), "(1).toString"},
		{"template", &Template{Quasis: []string{"", "`x`"}, Exprs: []Expr{CallOf(Id("a"), Id("b"))}}, "`${a(b)}\\`x\\``"},
		{"string escapes", Str("a\"b\n"), `"a\"b\n"`},
		{"array with spread", &Array{Elements: []Expr{Int(1), &Spread{Arg: Id("xs")}}}, "[1, ...xs]"},
		{"object shorthand", &Object{Props: []*Property{
			{Key: Id("a"), Value: Id("a")},
			{Key: Str("b"), Value: Id("b")},
			{Key: Str("c-d"), Value: Int(1)},
			{Key: Id("k"), Computed: true, Value: Id("v")},
		}}, `{a, b, "c-d": 1, [k]: v}`},
		{"empty object", &Object{}, "{}"},
		{"array pattern", Set(&ArrayPattern{Elements: []Expr{Id("a"), Id("b")}, Rest: Id("c")},
			CallOf(Dot(Id("Array"), "from"), arr)), "[a, b, ...c] = Array.from(arr)"},
		{"object pattern", &ObjectPattern{Props: []*PatternProp{
			{Key: Id("a"), Value: Id("a")},
			{Key: Id("b"), Value: Id("c")},
		}}, "{a, b: c}"},
		{"arrow callee", CallOf(&Function{Arrow: true}), "(() => {})()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrintExpr(tt.expr); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestPrintStatements(t *testing.T) {
	tests := []struct {
		name     string
		stmts    []Stmt
		expected string
	}{
		{
			"declaration",
			[]Stmt{&VarDecl{Kind: "let", Decls: []*Declarator{{Target: Id("a"), Init: Int(1)}, {Target: Id("b")}}}},
			"let a = 1, b;\n",
		},
		{
			"function statement gets parens",
			[]Stmt{&ExprStmt{Expr: &Function{Params: []Param{{Name: "a"}, {Name: "b"}}}}},
			"(function(a, b) {});\n",
		},
		{
			"arrow statement has no parens",
			[]Stmt{&ExprStmt{Expr: &Function{Arrow: true, Params: []Param{{Name: "args", Rest: true}}}}},
			"(...args) => {};\n",
		},
		{
			"object pattern assignment gets parens",
			[]Stmt{&ExprStmt{Expr: Set(&ObjectPattern{Props: []*PatternProp{{Key: Id("a"), Value: Dot(&This{}, "a")}}}, Id("x"))}},
			"({a: this.a} = x);\n",
		},
		{
			"function body",
			[]Stmt{&VarDecl{Kind: "let", Decls: []*Declarator{{
				Target: Id("fn"),
				Init: &Function{
					Params: []Param{{Name: "args", Rest: true}},
					Body: []Stmt{
						&VarDecl{Kind: "let", Decls: []*Declarator{{Target: Id("a"), Init: At(Id("args"), Int(0))}}},
						&Return{Value: Id("a")},
					},
				},
			}}}},
			"let fn = function(...args) {\n  let a = args[0];\n  return a;\n};\n",
		},
		{
			"bare return",
			[]Stmt{&Return{}},
			"return;\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrintProgram(tt.stmts); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestPrinterIndent(t *testing.T) {
	fn := &Function{Body: []Stmt{&Return{Value: Int(1)}}}
	got := NewPrinter("\t").Print([]Stmt{&ExprStmt{Expr: fn}})
	if got != "(function() {\n\treturn 1;\n});\n" {
		t.Errorf("got %q", got)
	}
}

func TestIdentifiers(t *testing.T) {
	tests := []struct {
		input      string
		name       bool
		identifier bool
	}{
		{"a", true, true},
		{"$el", true, true},
		{"_x1", true, true},
		{"adjustedLength", true, true},
		{"café", true, true},
		{"class", true, false},
		{"let", true, false},
		{"letter", true, true},
		{"1a", false, false},
		{"a-b", false, false},
		{"", false, false},
		{"a\n", false, false},
		{"let\n", false, false},
		{"a\nb", false, false},
	}
	for _, tt := range tests {
		if got := IsIdentifierName(tt.input); got != tt.name {
			t.Errorf("IsIdentifierName(%q) = %v, want %v", tt.input, got, tt.name)
		}
		if got := IsIdentifier(tt.input); got != tt.identifier {
			t.Errorf("IsIdentifier(%q) = %v, want %v", tt.input, got, tt.identifier)
		}
	}
}
