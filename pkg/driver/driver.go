package driver

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"

	"expando/pkg/compiler"
	"expando/pkg/errors"
	"expando/pkg/js"
	"expando/pkg/jsvm"
	"expando/pkg/lexer"
	"expando/pkg/parser"
	"expando/pkg/source"
)

const debugDriver = false

func debugPrintf(format string, args ...interface{}) {
	if debugDriver {
		fmt.Printf(format, args...)
	}
}

// CompileSource parses and compiles one unit, returning the JavaScript
// statements or every error found.
func CompileSource(sf *source.SourceFile, config Config) ([]js.Stmt, []errors.ExpandoError) {
	l := lexer.NewLexerWithSource(sf)
	p := parser.NewParser(l)
	program, parseErrs := p.ParseProgram()
	if len(parseErrs) > 0 {
		return nil, parseErrs
	}
	debugPrintf("// DEBUG CompileSource %s: %d statements\n", sf.DisplayPath(), len(program.Statements))

	comp := compiler.NewCompiler(config.Options())
	return comp.Compile(program)
}

// EmitJavaScript compiles source code held in a string and prints it.
func EmitJavaScript(sourceCode string, config Config) (string, []errors.ExpandoError) {
	return emit(source.NewEvalSource(sourceCode), config)
}

// EmitJavaScriptFile reads and compiles filename.
func EmitJavaScriptFile(filename string, config Config) (string, []errors.ExpandoError) {
	sourceBytes, err := os.ReadFile(filename)
	if err != nil {
		readErr := &errors.CompileError{
			Msg:   fmt.Sprintf("Failed to read file '%s': %s", filename, err.Error()),
			Cause: err,
		}
		return "", []errors.ExpandoError{readErr}
	}
	return emit(source.FromFile(filename, string(sourceBytes)), config)
}

func emit(sf *source.SourceFile, config Config) (string, []errors.ExpandoError) {
	stmts, errs := CompileSource(sf, config)
	if len(errs) > 0 {
		return "", errs
	}
	return js.NewPrinter(config.Indent).Print(stmts), nil
}

// OutputPath derives the .js path written for input.
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	if ext == ".js" || ext == "" {
		return input + ".js"
	}
	return strings.TrimSuffix(input, ext) + ".js"
}

// WriteJavaScriptFile compiles input and writes the result to output, or
// to OutputPath(input) when output is empty.
func WriteJavaScriptFile(input, output string, config Config) (string, []errors.ExpandoError) {
	if output == "" {
		output = OutputPath(input)
	}
	code, errs := EmitJavaScriptFile(input, config)
	if len(errs) > 0 {
		return output, errs
	}
	if err := os.WriteFile(output, []byte(code), 0o644); err != nil {
		return output, []errors.ExpandoError{&errors.CompileError{
			Msg:   fmt.Sprintf("Failed to write file '%s': %s", output, err.Error()),
			Cause: err,
		}}
	}
	return output, nil
}

// Session keeps compiler and runtime state across inputs, for the REPL.
type Session struct {
	config   Config
	compiler *compiler.Compiler
	vm       *jsvm.Runtime
}

// NewSession creates a Session whose console.log writes to out.
func NewSession(config Config, out io.Writer) *Session {
	vm := jsvm.New()
	if out != nil {
		vm.SetOutput(out)
	}
	return &Session{
		config:   config,
		compiler: compiler.NewCompiler(config.Options()),
		vm:       vm,
	}
}

// Eval compiles and runs one input. It returns the emitted JavaScript and
// the completion value of the script.
func (s *Session) Eval(input string) (string, goja.Value, []errors.ExpandoError) {
	l := lexer.NewLexerWithSource(source.NewReplSource(input))
	program, parseErrs := parser.NewParser(l).ParseProgram()
	if len(parseErrs) > 0 {
		return "", goja.Undefined(), parseErrs
	}
	stmts, errs := s.compiler.Compile(program)
	if len(errs) > 0 {
		return "", goja.Undefined(), errs
	}
	code := js.NewPrinter(s.config.Indent).Print(stmts)
	value, err := s.vm.RunString("<repl>", code)
	if err != nil {
		return code, goja.Undefined(), []errors.ExpandoError{runtimeError(err)}
	}
	return code, value, nil
}

// Result reports the last value passed to setResult.
func (s *Session) Result() (goja.Value, bool) {
	return s.vm.Result()
}

// RunString compiles and evaluates sourceCode in a fresh Session.
func RunString(sourceCode string, config Config, out io.Writer) (goja.Value, []errors.ExpandoError) {
	_, value, errs := NewSession(config, out).Eval(sourceCode)
	return value, errs
}

// RunFile reads filename, compiles it and evaluates the result.
func RunFile(filename string, config Config, out io.Writer) (goja.Value, []errors.ExpandoError) {
	code, errs := EmitJavaScriptFile(filename, config)
	if len(errs) > 0 {
		return goja.Undefined(), errs
	}
	vm := jsvm.New()
	if out != nil {
		vm.SetOutput(out)
	}
	value, err := vm.RunString(OutputPath(filename), code)
	if err != nil {
		return goja.Undefined(), []errors.ExpandoError{runtimeError(err)}
	}
	return value, nil
}

func runtimeError(err error) errors.ExpandoError {
	var rt *errors.RuntimeError
	if stderrors.As(err, &rt) {
		return rt
	}
	return &errors.RuntimeError{Name: "Error", Msg: err.Error(), Cause: err}
}
