package errors

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ExpandoError is the interface implemented by all expando errors.
type ExpandoError interface {
	error
	Pos() Position
	Kind() string // e.g., "Syntax", "Pattern", "Compile", "Internal"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// SyntaxError represents an error during lexing or parsing.
type SyntaxError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }
func (e *SyntaxError) Unwrap() error   { return e.Cause }
func (e *SyntaxError) CausedBy(cause error) *SyntaxError {
	e.Cause = cause
	return e
}

// PatternError reports a binding pattern that violates a structural
// invariant the parser is expected to enforce, such as two rest segments in
// one array pattern. It is fatal for the unit being lowered.
type PatternError struct {
	Position
	Msg   string
	Cause error
}

func (e *PatternError) Error() string {
	if e.Position.IsZero() {
		return fmt.Sprintf("Pattern Error: %s", e.Msg)
	}
	return fmt.Sprintf("Pattern Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *PatternError) Pos() Position   { return e.Position }
func (e *PatternError) Kind() string    { return "Pattern" }
func (e *PatternError) Message() string { return e.Msg }
func (e *PatternError) Unwrap() error   { return e.Cause }
func (e *PatternError) CausedBy(cause error) *PatternError {
	e.Cause = cause
	return e
}

// CompileError represents a surface construct the compiler cannot translate.
type CompileError struct {
	Position
	Msg   string
	Cause error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("Compile Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *CompileError) Pos() Position   { return e.Position }
func (e *CompileError) Kind() string    { return "Compile" }
func (e *CompileError) Message() string { return e.Msg }
func (e *CompileError) Unwrap() error   { return e.Cause }
func (e *CompileError) CausedBy(cause error) *CompileError {
	e.Cause = cause
	return e
}

// InternalError signals a broken invariant inside the toolchain itself,
// e.g. the name allocator running out of candidates for a hint.
type InternalError struct {
	Position
	Msg   string
	Cause error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("Internal Error: %s", e.Msg)
}
func (e *InternalError) Pos() Position   { return e.Position }
func (e *InternalError) Kind() string    { return "Internal" }
func (e *InternalError) Message() string { return e.Msg }
func (e *InternalError) Unwrap() error   { return e.Cause }
func (e *InternalError) CausedBy(cause error) *InternalError {
	e.Cause = cause
	return e
}

// RuntimeError is a JavaScript exception raised while evaluating emitted
// code. Name is the JavaScript error class, e.g. "TypeError".
type RuntimeError struct {
	Position
	Name  string
	Msg   string
	Cause error
}

func (e *RuntimeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("Runtime Error: %s", e.Msg)
	}
	return fmt.Sprintf("Runtime Error: %s: %s", e.Name, e.Msg)
}
func (e *RuntimeError) Pos() Position   { return e.Position }
func (e *RuntimeError) Kind() string    { return "Runtime" }
func (e *RuntimeError) Message() string { return e.Msg }
func (e *RuntimeError) Unwrap() error   { return e.Cause }
func (e *RuntimeError) CausedBy(cause error) *RuntimeError {
	e.Cause = cause
	return e
}

// --- Error Reporting ---

// DisplayErrors prints a list of errors to stderr in a user-friendly format,
// including the source line and position marker.
func DisplayErrors(source string, errs []ExpandoError) {
	FprintErrors(os.Stderr, source, errs)
}

// FprintErrors is DisplayErrors writing to w.
func FprintErrors(w io.Writer, source string, errs []ExpandoError) {
	if len(errs) == 0 {
		return
	}

	lines := strings.Split(source, "\n")

	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		lineIdx := pos.Line - 1
		if lineIdx < 0 || lineIdx >= len(lines) {
			fmt.Fprintf(w, "%s Error: %s\n", kind, msg)
			continue
		}

		trimmedLine := strings.TrimRight(lines[lineIdx], "\r\n\t ")

		fmt.Fprintf(w, "%s Error at %d:%d: %s\n", kind, pos.Line, pos.Column, msg)
		fmt.Fprintf(w, "  %s\n", trimmedLine)

		col := pos.Column - 1
		if col < 0 {
			col = 0
		}
		marker := strings.Repeat(" ", col) + "^"
		if span := pos.EndPos - pos.StartPos; span > 1 {
			marker += strings.Repeat("~", span-1)
		}
		fmt.Fprintf(w, "  %s\n", marker)
		fmt.Fprintln(w)
	}
}
