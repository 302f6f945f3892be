// Package jsvm runs emitted JavaScript on goja. It backs the -run flag and
// the REPL of the command, and the behavior tests of the lowering.
package jsvm

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"expando/pkg/errors"
	"expando/pkg/js"
)

const debugVM = false

func debugPrintf(format string, args ...interface{}) {
	if debugVM {
		fmt.Printf(format, args...)
	}
}

// Runtime is one goja runtime with console.log and setResult installed.
// Global declarations survive between calls to Run.
type Runtime struct {
	vm        *goja.Runtime
	out       io.Writer
	result    goja.Value
	hasResult bool
}

// New creates a Runtime whose console.log writes to stdout.
func New() *Runtime {
	rt := &Runtime{vm: goja.New(), out: os.Stdout}

	console := rt.vm.NewObject()
	_ = console.Set("log", func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, a := range call.Arguments {
			if s, ok := a.Export().(string); ok {
				parts[i] = s
			} else {
				parts[i] = Inspect(a)
			}
		}
		fmt.Fprintln(rt.out, strings.Join(parts, " "))
		return goja.Undefined()
	})
	_ = rt.vm.Set("console", console)

	_ = rt.vm.Set("setResult", func(call goja.FunctionCall) goja.Value {
		rt.result = call.Argument(0)
		rt.hasResult = true
		return goja.Undefined()
	})
	return rt
}

// SetOutput redirects console.log.
func (rt *Runtime) SetOutput(w io.Writer) {
	rt.out = w
}

// Define binds a global. Go functions of type func(goja.FunctionCall)
// goja.Value become native JavaScript functions.
func (rt *Runtime) Define(name string, value interface{}) error {
	return rt.vm.Set(name, value)
}

// VM exposes the underlying goja runtime.
func (rt *Runtime) VM() *goja.Runtime {
	return rt.vm
}

// Run prints stmts and evaluates them as one strict-mode script. It
// returns the completion value of the script.
func (rt *Runtime) Run(stmts []js.Stmt) (goja.Value, error) {
	return rt.RunString("", js.PrintProgram(stmts))
}

// RunString evaluates JavaScript source text.
func (rt *Runtime) RunString(name, src string) (goja.Value, error) {
	debugPrintf("// DEBUG jsvm run %s:\n%s", name, src)
	program, err := goja.Compile(name, src, true)
	if err != nil {
		return goja.Undefined(), convertError(err)
	}
	value, err := rt.vm.RunProgram(program)
	if err != nil {
		return goja.Undefined(), convertError(err)
	}
	return value, nil
}

// Result returns the last value passed to setResult.
func (rt *Runtime) Result() (goja.Value, bool) {
	if !rt.hasResult {
		return goja.Undefined(), false
	}
	return rt.result, true
}

// IsUndefined reports whether v is missing or undefined.
func IsUndefined(v goja.Value) bool {
	return v == nil || goja.IsUndefined(v)
}

func convertError(err error) *errors.RuntimeError {
	switch e := err.(type) {
	case *goja.Exception:
		name, msg := "Error", e.Value().String()
		if obj, ok := e.Value().(*goja.Object); ok {
			if n := obj.Get("name"); !IsUndefined(n) {
				name = n.String()
			}
			if m := obj.Get("message"); !IsUndefined(m) {
				msg = m.String()
			}
		}
		return &errors.RuntimeError{Name: name, Msg: msg, Cause: err}
	case *goja.CompilerSyntaxError:
		return &errors.RuntimeError{Name: "SyntaxError", Msg: e.Message, Cause: err}
	}
	return &errors.RuntimeError{Name: "Error", Msg: err.Error(), Cause: err}
}

// Inspect formats v the way test expectations and the REPL show values:
// strings quoted, arrays and objects expanded.
func Inspect(v goja.Value) string {
	var b strings.Builder
	inspect(&b, v, make(map[*goja.Object]bool))
	return b.String()
}

func inspect(b *strings.Builder, v goja.Value, seen map[*goja.Object]bool) {
	if IsUndefined(v) {
		b.WriteString("undefined")
		return
	}
	if goja.IsNull(v) {
		b.WriteString("null")
		return
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		if s, ok := v.Export().(string); ok {
			b.WriteString(js.Quote(s))
			return
		}
		b.WriteString(v.String())
		return
	}

	if _, ok := goja.AssertFunction(obj); ok {
		if name := obj.Get("name"); !IsUndefined(name) && name.String() != "" {
			b.WriteString("[Function: " + name.String() + "]")
		} else {
			b.WriteString("[Function (anonymous)]")
		}
		return
	}
	if seen[obj] {
		b.WriteString("[Circular]")
		return
	}
	seen[obj] = true
	defer delete(seen, obj)

	if obj.ClassName() == "Array" {
		length := obj.Get("length").ToInteger()
		b.WriteByte('[')
		for i := int64(0); i < length; i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			inspect(b, obj.Get(strconv.FormatInt(i, 10)), seen)
		}
		b.WriteByte(']')
		return
	}

	keys := obj.Keys()
	if len(keys) == 0 {
		b.WriteString("{}")
		return
	}
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		if js.IsIdentifierName(k) {
			b.WriteString(k)
		} else {
			b.WriteString(js.Quote(k))
		}
		b.WriteString(": ")
		inspect(b, obj.Get(k), seen)
	}
	b.WriteByte('}')
}
