package lower

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dop251/goja"

	"expando/pkg/js"
	"expando/pkg/jsvm"
	"expando/pkg/pattern"
)

// evaluate runs prelude, the lowered pattern and then returns the inspected
// value of result.
func evaluate(t *testing.T, vm *jsvm.Runtime, prelude []js.Stmt, p pattern.Pattern, src js.Expr, result js.Expr) string {
	t.Helper()
	lowered, err := LowerDestructure(p, src, Context{Scope: newScope("arr", "a", "b", "c", "d", "e", "getArray")})
	if err != nil {
		t.Fatalf("LowerDestructure failed: %v", err)
	}
	program := append(append([]js.Stmt{}, prelude...), lowered.Statements()...)
	program = append(program, &js.ExprStmt{Expr: result})
	v, err := vm.Run(program)
	if err != nil {
		t.Fatalf("running %q: %v", js.PrintProgram(program), err)
	}
	return jsvm.Inspect(v)
}

func numbers(n int) *js.Array {
	out := &js.Array{}
	for i := 1; i <= n; i++ {
		out.Elements = append(out.Elements, js.Int(i))
	}
	return out
}

func letArr(init js.Expr) js.Stmt {
	return &js.VarDecl{Kind: "let", Decls: []*js.Declarator{{Target: js.Id("arr"), Init: init}}}
}

func ids(names ...string) *js.Array {
	out := &js.Array{}
	for _, n := range names {
		out.Elements = append(out.Elements, js.Id(n))
	}
	return out
}

// reference computes the values bound by [leading..., rest..., trailing...]
// over [1..n].
func reference(n, lead, trail int, named bool) string {
	at := func(i int) string {
		if i >= 0 && i < n {
			return fmt.Sprint(i + 1)
		}
		return "undefined"
	}
	var parts []string
	for i := 0; i < lead; i++ {
		parts = append(parts, at(i))
	}
	length := n
	if named {
		if lead+trail > length {
			length = lead + trail
		}
		var rest []string
		for i := lead; i < length-trail && i < n; i++ {
			rest = append(rest, at(i))
		}
		parts = append(parts, "["+strings.Join(rest, ", ")+"]")
	}
	for p := 0; p < trail; p++ {
		parts = append(parts, at(length-trail+p))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func TestExpansionLengthSweep(t *testing.T) {
	shapes := []struct {
		lead, trail int
		named       bool
	}{
		{0, 2, true}, {1, 1, true}, {2, 2, true}, {1, 0, true},
		{0, 2, false}, {1, 1, false}, {2, 2, false},
	}
	letters := []string{"a", "b", "c", "d", "e"}

	for _, shape := range shapes {
		var elements []pattern.Pattern
		var bound []string
		next := 0
		take := func() string {
			n := letters[next]
			next++
			bound = append(bound, n)
			return n
		}
		for i := 0; i < shape.lead; i++ {
			elements = append(elements, name(take()))
		}
		if shape.named {
			elements = append(elements, rest(name(take())))
		} else {
			elements = append(elements, expansion())
		}
		for i := 0; i < shape.trail; i++ {
			elements = append(elements, name(take()))
		}
		p := array(elements...)

		for n := 0; n <= 8; n++ {
			t.Run(fmt.Sprintf("%d+%d named=%v len=%d", shape.lead, shape.trail, shape.named, n), func(t *testing.T) {
				got := evaluate(t, jsvm.New(), []js.Stmt{letArr(numbers(n))}, p, js.Id("arr"), ids(bound...))
				if expected := reference(n, shape.lead, shape.trail, shape.named); got != expected {
					t.Errorf("expected %s, got %s", expected, got)
				}
			})
		}
	}
}

func TestSourceEvaluatedOnce(t *testing.T) {
	patterns := []struct {
		name    string
		pattern pattern.Pattern
	}{
		{"leading and trailing", array(name("a"), expansion(), name("b"))},
		{"interior rest", array(name("a"), rest(name("b")), name("c"))},
		{"native", array(name("a"), rest(name("b")))},
		{"empty", array()},
		{"object with default", object(&pattern.Entry{Key: js.Id("length"), Value: name("a"), Default: js.Int(0)})},
		{"nested", array(expansion(), array(expansion(), name("a")))},
	}

	for _, tt := range patterns {
		t.Run(tt.name, func(t *testing.T) {
			vm := jsvm.New()
			calls := 0
			vm.Define("getArray", func(goja.FunctionCall) goja.Value {
				calls++
				return vm.VM().NewArray(1, 2, 3)
			})
			evaluate(t, vm, nil, tt.pattern, js.CallOf(js.Id("getArray")), &js.Undefined{})
			if calls != 1 {
				t.Errorf("source evaluated %d times", calls)
			}
		})
	}
}

func TestExpressionValueEvaluatedOnce(t *testing.T) {
	vm := jsvm.New()
	calls := 0
	vm.Define("getArray", func(goja.FunctionCall) goja.Value {
		calls++
		return vm.VM().NewArray(1, 2)
	})

	p := array(expansion(), name("a"))
	result, err := LowerDestructure(p, js.CallOf(js.Id("getArray")), Context{
		ExpressionResult: true,
		TargetKind:       Assign,
		Scope:            newScope("a", "getArray"),
	})
	if err != nil {
		t.Fatal(err)
	}
	program := []js.Stmt{DeclareNames("let", append([]string{"a"}, result.Declared()...))}
	program = append(program, &js.ExprStmt{Expr: &js.Array{Elements: []js.Expr{result.Expression(), js.Id("a")}}})
	v, err := vm.Run(program)
	if err != nil {
		t.Fatal(err)
	}
	if got := jsvm.Inspect(v); got != "[[1, 2], 2]" {
		t.Errorf("unexpected value %s", got)
	}
	if calls != 1 {
		t.Errorf("source evaluated %d times", calls)
	}
}

func TestDefaultTrigger(t *testing.T) {
	tests := []struct {
		value    js.Expr
		expected string
	}{
		{js.Int(0), "0"},
		{&js.Bool{Value: false}, "false"},
		{js.Str(""), `""`},
		{&js.Null{}, "9"},
		{&js.Undefined{}, "9"},
		{js.Int(5), "5"},
	}
	for _, tt := range tests {
		t.Run(js.PrintExpr(tt.value), func(t *testing.T) {
			source := &js.Array{Elements: []js.Expr{tt.value}}
			for _, p := range []pattern.Pattern{
				array(withDefault("a", js.Int(9))),
				array(expansion(), withDefault("a", js.Int(9))),
				object(&pattern.Entry{Key: js.Int(0), Value: name("a"), Default: js.Int(9)}),
			} {
				got := evaluate(t, jsvm.New(), []js.Stmt{letArr(source)}, p, js.Id("arr"), js.Id("a"))
				if got != tt.expected {
					t.Errorf("expected %s, got %s", tt.expected, got)
				}
			}
		})
	}
}

func TestMissingPositionsWithDefault(t *testing.T) {
	p := array(name("a"), rest(name("b")), withDefault("c", js.Int(3)))
	got := evaluate(t, jsvm.New(), []js.Stmt{letArr(numbers(0))}, p, js.Id("arr"), ids("a", "b", "c"))
	if got != "[undefined, [], 3]" {
		t.Errorf("got %s", got)
	}
}

func TestNestedRestSemantics(t *testing.T) {
	// [a, [b, c..., d]..., e] = [1, 2, 3, 4, 5, 6]
	p := array(name("a"), rest(array(name("b"), rest(name("c")), name("d"))), name("e"))
	result := js.Bin("+", js.Bin("+", js.Bin("+", js.Bin("+", js.Id("a"), js.Id("b")), js.Id("d")), js.Id("e")), js.Dot(js.Id("c"), "length"))
	got := evaluate(t, jsvm.New(), []js.Stmt{letArr(numbers(6))}, p, js.Id("arr"), result)
	if got != "16" {
		t.Errorf("expected 16, got %s", got)
	}
}

func TestArrayLikeSources(t *testing.T) {
	arrayLike := func(words ...string) js.Expr {
		obj := &js.Object{Props: []*js.Property{{Key: js.Id("length"), Value: js.Int(len(words))}}}
		for i, w := range words {
			obj.Props = append(obj.Props, &js.Property{Key: js.Int(i), Value: js.Str(w)})
		}
		return obj
	}
	tests := []struct {
		name     string
		pattern  pattern.Pattern
		source   js.Expr
		expected string
	}{
		{"plain", array(name("a")), js.Id("arr"), `"Hello"`},
		{"nested", array(array(name("a"))), &js.Array{Elements: []js.Expr{js.Id("arr")}}, `"Hello"`},
		{"expansion", array(expansion(), name("a")), js.Id("arr"), `"World"`},
		{"leading and trailing", array(name("b"), expansion(), name("a")), js.Id("arr"), `"World"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluate(t, jsvm.New(), []js.Stmt{letArr(arrayLike("Hello", "World"))}, tt.pattern, tt.source, js.Id("a"))
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}
