package driver

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"expando/pkg/jsvm"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEmitJavaScript(t *testing.T) {
	code, errs := EmitJavaScript("[a, b..., c] = arr", DefaultConfig())
	if len(errs) > 0 {
		t.Fatal(errs[0])
	}
	expected := "let a = arr[0], adjustedLength = Math.max(arr.length, 2), b = arr.slice(1, adjustedLength - 1), c = arr[adjustedLength - 1];\n"
	if code != expected {
		t.Errorf("expected %q, got %q", expected, code)
	}
}

func TestEmitJavaScriptConfig(t *testing.T) {
	config := Config{Declaration: "var", Indent: "\t", Hints: map[string]string{"args": "params"}}
	code, errs := EmitJavaScript("(..., a) ->", config)
	if len(errs) > 0 {
		t.Fatal(errs[0])
	}
	expected := "(function(...params) {\n\tvar a = params[params.length - 1];\n});\n"
	if code != expected {
		t.Errorf("expected %q, got %q", expected, code)
	}
}

func TestEmitJavaScriptErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  string
	}{
		{"[a..., b...] = c", "Pattern"},
		{"x = {a = 1}", "Compile"},
		{"[a, b", "Syntax"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			code, errs := EmitJavaScript(tt.input, DefaultConfig())
			if code != "" {
				t.Errorf("expected no output, got %q", code)
			}
			if len(errs) == 0 {
				t.Fatal("expected errors")
			}
			if errs[0].Kind() != tt.kind {
				t.Errorf("expected a %s error, got %s: %v", tt.kind, errs[0].Kind(), errs[0])
			}
		})
	}
}

func TestWriteJavaScriptFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "pattern.coffee", "[..., last] = list\n")

	output, errs := WriteJavaScriptFile(input, "", DefaultConfig())
	if len(errs) > 0 {
		t.Fatal(errs[0])
	}
	if output != filepath.Join(dir, "pattern.js") {
		t.Errorf("unexpected output path %s", output)
	}
	written, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(written) != "let last = list[list.length - 1];\n" {
		t.Errorf("unexpected output %q", written)
	}

	if _, errs := WriteJavaScriptFile(filepath.Join(dir, "missing.coffee"), "", DefaultConfig()); len(errs) != 1 {
		t.Errorf("expected a read error, got %v", errs)
	}
}

func TestOutputPath(t *testing.T) {
	tests := map[string]string{
		"a.coffee":     "a.js",
		"dir/b.ex":     "dir/b.js",
		"noext":        "noext.js",
		"already.js":   "already.js.js",
		"two.dots.src": "two.dots.js",
	}
	for input, expected := range tests {
		if got := OutputPath(input); got != expected {
			t.Errorf("OutputPath(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestRunString(t *testing.T) {
	var out bytes.Buffer
	value, errs := RunString("[a, ..., b] = [1, 2, 3]\nconsole.log a, b\na + b", DefaultConfig(), &out)
	if len(errs) > 0 {
		t.Fatal(errs[0])
	}
	if got := jsvm.Inspect(value); got != "4" {
		t.Errorf("expected 4, got %s", got)
	}
	if out.String() != "1 3\n" {
		t.Errorf("unexpected console output %q", out.String())
	}
}

func TestRunStringRuntimeError(t *testing.T) {
	_, errs := RunString("f = 1\nf()", DefaultConfig(), nil)
	if len(errs) != 1 || errs[0].Kind() != "Runtime" {
		t.Fatalf("expected one runtime error, got %v", errs)
	}
}

func TestSessionKeepsState(t *testing.T) {
	session := NewSession(DefaultConfig(), nil)
	steps := []struct {
		input string
		code  string
		value string
	}{
		{"arr = [1, 2, 3]", "let arr = [1, 2, 3];\n", "undefined"},
		{"[..., last] = arr", "let last = arr[arr.length - 1];\n", "undefined"},
		{"last = last * 2", "last = last * 2;\n", "6"},
		{"last", "last;\n", "6"},
	}
	for _, step := range steps {
		code, value, errs := session.Eval(step.input)
		if len(errs) > 0 {
			t.Fatalf("%q: %v", step.input, errs[0])
		}
		if code != step.code {
			t.Errorf("%q: expected code %q, got %q", step.input, step.code, code)
		}
		if got := jsvm.Inspect(value); got != step.value {
			t.Errorf("%q: expected value %s, got %s", step.input, step.value, got)
		}
	}
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.coffee", "f = (a, b..., c, d) ->\n  return [a, b, c, d]\nsetResult(f(1, 2))\nf(1, 2, 3, 4, 5)\n")
	value, errs := RunFile(path, DefaultConfig(), nil)
	if len(errs) > 0 {
		t.Fatal(errs[0])
	}
	if got := jsvm.Inspect(value); got != "[1, [2, 3], 4, 5]" {
		t.Errorf("unexpected value %s", got)
	}
}

func TestCompileFiles(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, content := range []string{
		"[a, ...] = x\n",
		"[..., b] = y\n",
		"[a..., b...] = z\n",
		"{c} = w\n",
	} {
		paths = append(paths, writeFile(t, dir, "unit"+string(rune('0'+i))+".coffee", content))
	}
	paths = append(paths, filepath.Join(dir, "missing.coffee"))

	results, stats, err := CompileFiles(context.Background(), paths, Config{Declaration: "let", Indent: "  ", Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(paths) {
		t.Fatalf("expected %d results, got %d", len(paths), len(results))
	}
	expected := []string{
		"let [a] = Array.from(x);\n",
		"let b = y[y.length - 1];\n",
		"",
		"let {c} = w;\n",
		"",
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("result %d: expected path %s, got %s", i, paths[i], r.Path)
		}
		if r.Output != expected[i] {
			t.Errorf("result %d: expected %q, got %q", i, expected[i], r.Output)
		}
		if failed := expected[i] == ""; failed != (len(r.Errors) > 0) {
			t.Errorf("result %d: unexpected errors %v", i, r.Errors)
		}
	}
	if !strings.Contains(results[4].Errors[0].Message(), "Failed to read file") {
		t.Errorf("unexpected error %v", results[4].Errors[0])
	}
	if stats.WorkerCount != 2 || stats.TotalJobs != 5 || stats.CompletedJobs != 3 || stats.FailedJobs != 2 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestCompileFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	dir := t.TempDir()
	paths := []string{writeFile(t, dir, "a.coffee", "a = 1\n")}
	results, _, err := CompileFiles(ctx, paths, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0] == nil {
		t.Fatalf("expected one result, got %v", results)
	}
	// A cancelled pool may still have picked the job up; either outcome
	// must be reported on the result.
	if results[0].Output == "" && len(results[0].Errors) == 0 {
		t.Errorf("expected output or an error, got %+v", results[0])
	}
}

func TestWorkerPoolLifecycle(t *testing.T) {
	pool := newWorkerPool(Config{Workers: 1}, 1)
	if err := pool.Submit(&compileJob{}); err == nil {
		t.Error("expected an error submitting before start")
	}
	if err := pool.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := pool.Start(context.Background()); err == nil {
		t.Error("expected an error starting twice")
	}
	if err := pool.Shutdown(); err != nil {
		t.Fatal(err)
	}
	if err := pool.Shutdown(); err == nil {
		t.Error("expected an error stopping twice")
	}
	if err := pool.Submit(&compileJob{}); err == nil {
		t.Error("expected an error submitting after shutdown")
	}
	if _, ok := <-pool.Results(); ok {
		t.Error("expected the result channel to be closed")
	}
}
