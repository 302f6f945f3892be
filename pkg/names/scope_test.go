package names

import (
	goerrors "errors"
	"strconv"
	"testing"

	"expando/pkg/errors"
)

func TestAllocateSequence(t *testing.T) {
	s := NewScope()
	want := []string{"array", "array1", "array2"}
	for i, w := range want {
		got, err := s.Allocate("array")
		if err != nil {
			t.Fatalf("allocation %d: %v", i, err)
		}
		if got != w {
			t.Errorf("allocation %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestAllocateAvoidsReservedAndOuterNames(t *testing.T) {
	root := NewScope()
	root.Reserve("val", "val1")
	root.Define("args", Parameter)
	inner := NewEnclosedScope(root)

	if got, _ := inner.Allocate("val"); got != "val2" {
		t.Errorf("expected val2, got %q", got)
	}
	if got, _ := inner.Allocate("args"); got != "args1" {
		t.Errorf("expected args1, got %q", got)
	}
	if _, scope, ok := inner.Resolve("val2"); !ok || scope != inner {
		t.Errorf("temporary should be defined in the inner scope")
	}
	if root.DefinedHere("val2") {
		t.Errorf("temporary leaked into the outer scope")
	}
}

func TestSiblingScopesMayReuseNames(t *testing.T) {
	root := NewScope()
	a := NewEnclosedScope(root)
	b := NewEnclosedScope(root)
	x, _ := a.Allocate("obj")
	y, _ := b.Allocate("obj")
	if x != "obj" || y != "obj" {
		t.Errorf("expected both siblings to get obj, got %q and %q", x, y)
	}
}

func TestHintOverride(t *testing.T) {
	s := NewScope()
	s.SetHint("array", "ref")
	if got, _ := s.Allocate("array"); got != "ref" {
		t.Errorf("expected override ref, got %q", got)
	}
}

func TestAllocateExhaustion(t *testing.T) {
	s := NewScope()
	s.Reserve("t")
	for i := 1; i < maxSuffix; i++ {
		s.Reserve("t" + strconv.Itoa(i))
	}
	_, err := s.Allocate("t")
	if err == nil {
		t.Fatal("expected an error")
	}
	var internal *errors.InternalError
	if !goerrors.As(err, &internal) {
		t.Errorf("expected InternalError, got %T", err)
	}
}

func TestSanitizeHint(t *testing.T) {
	tests := map[string]string{
		"array":          "array",
		"adjustedLength": "adjustedLength",
		"a-b":            "a_b",
		"1st":            "_1st",
		"":               "ref",
		"class":          "_class",
	}
	for in, want := range tests {
		if got := SanitizeHint(in); got != want {
			t.Errorf("SanitizeHint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestKindString(t *testing.T) {
	if Temporary.String() != "temporary" || Kind(9).String() != "Kind(9)" {
		t.Errorf("unexpected kind strings")
	}
}
