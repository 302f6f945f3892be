package js

import (
	"strings"

	"github.com/dlclark/regexp2"
)

var reservedWords = []string{
	"await", "break", "case", "catch", "class", "const", "continue", "debugger",
	"default", "delete", "do", "else", "enum", "export", "extends", "false",
	"finally", "for", "function", "if", "implements", "import", "in",
	"instanceof", "interface", "let", "new", "null", "package", "private",
	"protected", "public", "return", "static", "super", "switch", "this",
	"throw", "true", "try", "typeof", "var", "void", "while", "with", "yield",
}

const identifierName = `[\p{L}\p{Nl}_$][\p{L}\p{Nl}\p{Mn}\p{Mc}\p{Nd}\p{Pc}_$]*`

var (
	// \z rather than $: regexp2's $ also matches before a final newline.
	identifierNameRe = regexp2.MustCompile(`^`+identifierName+`\z`, regexp2.None)

	// Binding identifiers exclude reserved words.
	identifierRe = regexp2.MustCompile(
		`^(?!(?:`+strings.Join(reservedWords, "|")+`)\z)`+identifierName+`\z`, regexp2.None)
)

// IsIdentifierName reports whether s can follow a '.' or stand unquoted as
// an object key.
func IsIdentifierName(s string) bool {
	ok, err := identifierNameRe.MatchString(s)
	return err == nil && ok
}

// IsIdentifier reports whether s can be declared as a variable.
func IsIdentifier(s string) bool {
	ok, err := identifierRe.MatchString(s)
	return err == nil && ok
}
