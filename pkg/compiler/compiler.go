// Package compiler translates a parsed program into JavaScript statements.
// Destructuring and parameter lists go through pkg/lower; everything else
// maps one to one.
package compiler

import (
	stderrors "errors"
	"fmt"

	"expando/pkg/errors"
	"expando/pkg/js"
	"expando/pkg/lexer"
	"expando/pkg/lower"
	"expando/pkg/names"
	"expando/pkg/parser"
)

const debugCompiler = false

func debugPrintf(format string, args ...interface{}) {
	if debugCompiler {
		fmt.Printf(format, args...)
	}
}

// Options configures code generation.
type Options struct {
	// Keyword introduces declarations; "let" when empty.
	Keyword string
	// Hints renames temporaries: "array", "obj", "val", "args", "rest",
	// "adjustedLength".
	Hints map[string]string
}

// Compiler translates one compilation unit. A nested Compiler handles
// each function body.
type Compiler struct {
	scope     *names.Scope
	enclosing *Compiler
	options   Options
	errors    []errors.ExpandoError

	// pending collects names that expressions in the current statement
	// assign for the first time; they are declared before the statement.
	pending []string
}

// NewCompiler creates a top-level Compiler.
func NewCompiler(options Options) *Compiler {
	if options.Keyword == "" {
		options.Keyword = lower.DefaultKeyword
	}
	scope := names.NewScope()
	for hint, base := range options.Hints {
		scope.SetHint(hint, base)
	}
	return &Compiler{scope: scope, options: options}
}

func newFunctionCompiler(enclosing *Compiler) *Compiler {
	return &Compiler{
		scope:     names.NewEnclosedScope(enclosing.scope),
		enclosing: enclosing,
		options:   enclosing.options,
	}
}

// fatal is returned to abandon the unit after a pattern or internal error.
type fatal struct {
	err errors.ExpandoError
}

func (f *fatal) Error() string { return f.err.Error() }

// Compile translates program. Compile errors are collected per statement;
// a pattern or internal error stops the unit. Calling Compile again on the
// same Compiler continues in the same top-level scope.
func (c *Compiler) Compile(program *parser.Program) ([]js.Stmt, []errors.ExpandoError) {
	c.errors = nil
	c.pending = nil
	c.scope.Reserve(collectIdentifiers(program)...)
	c.scope.Reserve("Math", "Array", "undefined")

	stmts, err := c.compileStatements(program.Statements, false)
	if err != nil {
		var f *fatal
		if stderrors.As(err, &f) {
			c.errors = append(c.errors, f.err)
		}
		return nil, c.errors
	}
	if len(c.errors) > 0 {
		return nil, c.errors
	}
	return stmts, nil
}

// Errors returns the errors collected so far.
func (c *Compiler) Errors() []errors.ExpandoError {
	return c.errors
}

// classify wraps pattern and internal errors so they abort the unit and
// records everything else as a compile error at node.
func (c *Compiler) classify(node parser.Node, err error) error {
	var patternErr *errors.PatternError
	if stderrors.As(err, &patternErr) {
		if patternErr.Position.IsZero() {
			patternErr.Position = positionOf(parser.TokenOf(node))
		}
		return &fatal{err: patternErr}
	}
	var internalErr *errors.InternalError
	if stderrors.As(err, &internalErr) {
		if internalErr.Position.IsZero() {
			internalErr.Position = positionOf(parser.TokenOf(node))
		}
		return &fatal{err: internalErr}
	}
	var f *fatal
	if stderrors.As(err, &f) {
		return f
	}
	var compileErr *errors.CompileError
	if stderrors.As(err, &compileErr) {
		c.errors = append(c.errors, compileErr)
		return nil
	}
	c.errors = append(c.errors, NewCompileError(node, err.Error()))
	return nil
}

// NewCompileError builds a CompileError positioned at node.
func NewCompileError(node parser.Node, msg string) *errors.CompileError {
	return &errors.CompileError{Position: positionOf(parser.TokenOf(node)), Msg: msg}
}

func positionOf(tok lexer.Token) errors.Position {
	return errors.Position{Line: tok.Line, Column: tok.Column, StartPos: tok.StartPos, EndPos: tok.EndPos}
}

// declareLater records a name that must be declared before the current
// statement and defines it in the current scope.
func (c *Compiler) declareLater(ids ...string) {
	for _, name := range ids {
		if !c.scope.DefinedHere(name) {
			c.scope.Define(name, names.Variable)
		}
		c.pending = append(c.pending, name)
	}
}

// isDefined reports whether name is visible from the current scope.
func (c *Compiler) isDefined(name string) bool {
	_, _, ok := c.scope.Resolve(name)
	return ok
}
