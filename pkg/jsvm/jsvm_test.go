package jsvm

import (
	"bytes"
	stderrors "errors"
	"testing"

	"github.com/dop251/goja"

	"expando/pkg/errors"
	"expando/pkg/js"
)

func let(name string, init js.Expr) js.Stmt {
	return &js.VarDecl{Kind: "let", Decls: []*js.Declarator{{Target: js.Id(name), Init: init}}}
}

func expr(e js.Expr) js.Stmt { return &js.ExprStmt{Expr: e} }

func nums(ns ...int) *js.Array {
	out := &js.Array{}
	for _, n := range ns {
		out.Elements = append(out.Elements, js.Int(n))
	}
	return out
}

func TestRunEmittedCode(t *testing.T) {
	arr := js.Id("arr")
	tests := []struct {
		name     string
		stmts    []js.Stmt
		expected string
	}{
		{"arithmetic", []js.Stmt{expr(js.Bin("-", js.Bin("*", js.Int(3), js.Int(4)), js.Int(2)))}, "10"},
		{"string concat", []js.Stmt{expr(js.Bin("+", js.Str("a"), js.Int(1)))}, `"a1"`},
		{"index from end", []js.Stmt{
			let("arr", nums(1, 2, 3)),
			expr(js.At(arr, js.Bin("-", js.Dot(arr, "length"), js.Int(1)))),
		}, "3"},
		{"out of range", []js.Stmt{let("arr", nums(1)), expr(js.At(arr, js.Int(-1)))}, "undefined"},
		{"slice past end", []js.Stmt{let("arr", nums(1)), expr(js.CallOf(js.Dot(arr, "slice"), js.Int(1), js.Int(0)))}, "[]"},
		{"null default", []js.Stmt{
			let("val", &js.Undefined{}),
			expr(&js.Conditional{Test: js.Bin("!=", js.Id("val"), &js.Null{}), Then: js.Id("val"), Otherwise: js.Int(7)}),
		}, "7"},
		{"template", []js.Stmt{expr(&js.Template{Quasis: []string{"a", "c"}, Exprs: []js.Expr{js.Str("b")}})}, `"abc"`},
		{"object literal", []js.Stmt{expr(&js.Object{Props: []*js.Property{
			{Key: js.Id("a"), Value: js.Int(1)},
			{Key: js.Str("b-c"), Value: &js.Null{}},
		}})}, `{a: 1, "b-c": null}`},
		{"array from array-like", []js.Stmt{expr(js.CallOf(js.Dot(js.Id("Array"), "from"), &js.Object{Props: []*js.Property{
			{Key: js.Id("length"), Value: js.Int(2)},
			{Key: js.Int(0), Value: js.Str("a")},
		}}))}, `["a", undefined]`},
		{"native array pattern", []js.Stmt{
			&js.VarDecl{Kind: "let", Decls: []*js.Declarator{{
				Target: &js.ArrayPattern{Elements: []js.Expr{js.Id("a")}, Rest: js.Id("b")},
				Init:   nums(1, 2, 3),
			}}},
			expr(&js.Array{Elements: []js.Expr{js.Id("a"), js.Id("b")}}),
		}, "[1, [2, 3]]"},
		{"declaration has no value", []js.Stmt{let("a", js.Int(1))}, "undefined"},
		{"rest parameters", []js.Stmt{
			let("f", &js.Function{
				Params: []js.Param{{Name: "a"}, {Name: "rest", Rest: true}},
				Body:   []js.Stmt{&js.Return{Value: &js.Array{Elements: []js.Expr{js.Id("a"), js.Id("rest")}}}},
			}),
			expr(js.CallOf(js.Id("f"), js.Int(1), js.Int(2), js.Int(3))),
		}, "[1, [2, 3]]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := New().Run(tt.stmts)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if got := Inspect(v); got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name  string
		stmts []js.Stmt
		kind  string
	}{
		{"undefined variable", []js.Stmt{expr(js.Id("nope"))}, "ReferenceError"},
		{"assign undeclared", []js.Stmt{expr(js.Set(js.Id("nope"), js.Int(1)))}, "ReferenceError"},
		{"redeclare", []js.Stmt{let("a", nil), let("a", nil)}, "SyntaxError"},
		{"read from undefined", []js.Stmt{expr(js.Dot(&js.Undefined{}, "a"))}, "TypeError"},
		{"array-like is not iterable", []js.Stmt{
			&js.VarDecl{Kind: "let", Decls: []*js.Declarator{{
				Target: &js.ArrayPattern{Elements: []js.Expr{js.Id("a")}},
				Init:   &js.Object{},
			}}},
		}, "TypeError"},
		{"call non-function", []js.Stmt{expr(js.CallOf(js.Int(1)))}, "TypeError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Run(tt.stmts)
			var runtimeErr *errors.RuntimeError
			if !stderrors.As(err, &runtimeErr) {
				t.Fatalf("expected a RuntimeError, got %v", err)
			}
			if runtimeErr.Name != tt.kind {
				t.Errorf("expected %s, got %s (%s)", tt.kind, runtimeErr.Name, runtimeErr.Msg)
			}
		})
	}
}

func TestGlobalsPersist(t *testing.T) {
	rt := New()
	if _, err := rt.RunString("first", "let a = 2;"); err != nil {
		t.Fatal(err)
	}
	v, err := rt.RunString("second", "a * 3;")
	if err != nil {
		t.Fatal(err)
	}
	if got := Inspect(v); got != "6" {
		t.Errorf("expected 6, got %s", got)
	}
}

func TestSetResultAndConsole(t *testing.T) {
	rt := New()
	var out bytes.Buffer
	rt.SetOutput(&out)
	if _, ok := rt.Result(); ok {
		t.Fatal("expected no result before setResult")
	}
	_, err := rt.Run([]js.Stmt{
		expr(js.CallOf(js.Dot(js.Id("console"), "log"), js.Str("hi"), nums(1, 2), js.Str("x"))),
		expr(js.CallOf(js.Id("setResult"), js.Bin("==", nums(), nums()))),
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.String() != "hi [1, 2] x\n" {
		t.Errorf("unexpected output %q", out.String())
	}
	result, ok := rt.Result()
	if !ok || Inspect(result) != "false" {
		t.Errorf("expected false result, got %v", result)
	}
}

func TestDefineNative(t *testing.T) {
	rt := New()
	calls := 0
	err := rt.Define("getArray", func(goja.FunctionCall) goja.Value {
		calls++
		return rt.VM().NewArray(1, 2)
	})
	if err != nil {
		t.Fatal(err)
	}
	v, err := rt.RunString("", "[getArray(), getArray().length];")
	if err != nil {
		t.Fatal(err)
	}
	if got := Inspect(v); got != "[[1, 2], 2]" || calls != 2 {
		t.Errorf("got %s after %d calls", got, calls)
	}
}

func TestInspect(t *testing.T) {
	rt := New()
	tests := []struct {
		src      string
		expected string
	}{
		{"undefined;", "undefined"},
		{"null;", "null"},
		{"'a\\n';", `"a\n"`},
		{"0 / 0;", "NaN"},
		{"1.5;", "1.5"},
		{"[1, , 3];", "[1, undefined, 3]"},
		{"({});", "{}"},
		{"let o = {a: [1]}; o.self = o; o;", "{a: [1], self: [Circular]}"},
	}
	for _, tt := range tests {
		v, err := rt.RunString("", tt.src)
		if err != nil {
			t.Fatalf("%s: %v", tt.src, err)
		}
		if got := Inspect(v); got != tt.expected {
			t.Errorf("%s: expected %s, got %s", tt.src, tt.expected, got)
		}
	}
	if got := Inspect(nil); got != "undefined" {
		t.Errorf("expected undefined for nil, got %s", got)
	}
}
