package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"expando/pkg/source"

	"golang.org/x/text/unicode/norm"
)

// TokenType represents the type of a token.
type TokenType string

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Literal  string // The actual text of the token (lexeme)
	Line     int    // 1-based line number where the token starts
	Column   int    // 1-based column number where the token starts
	StartPos int    // 0-based byte offset where the token starts
	EndPos   int    // 0-based byte offset after the token ends
}

// --- Token Types ---
const (
	// Special
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Layout
	NEWLINE TokenType = "NEWLINE" // statement terminator at the same indentation
	INDENT  TokenType = "INDENT"
	OUTDENT TokenType = "OUTDENT"

	// Identifiers + Literals
	IDENT     TokenType = "IDENT"
	NUMBER    TokenType = "NUMBER"
	STRING    TokenType = "STRING"   // 'plain' or "plain" (unescaped content)
	TEMPLATE  TokenType = "TEMPLATE" // "with #{interpolation}" (raw content)
	NULL      TokenType = "NULL"
	UNDEFINED TokenType = "UNDEFINED"

	// Operators
	ASSIGN      TokenType = "="
	PLUS        TokenType = "+"
	MINUS       TokenType = "-"
	BANG        TokenType = "!"
	ASTERISK    TokenType = "*"
	SLASH       TokenType = "/"
	LT          TokenType = "<"
	GT          TokenType = ">"
	LE          TokenType = "<="
	GE          TokenType = ">="
	EQ          TokenType = "=="
	NOT_EQ      TokenType = "!="
	LOGICAL_AND TokenType = "&&"
	LOGICAL_OR  TokenType = "||"
	DOT         TokenType = "."
	SPREAD      TokenType = "..."
	AT          TokenType = "@"

	// Delimiters
	COMMA     TokenType = ","
	SEMICOLON TokenType = ";"
	COLON     TokenType = ":"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"
	ARROW     TokenType = "->"
	FAT_ARROW TokenType = "=>"

	// Keywords
	TRUE   TokenType = "TRUE"
	FALSE  TokenType = "FALSE"
	RETURN TokenType = "RETURN"
	THIS   TokenType = "THIS"
)

var keywords = map[string]TokenType{
	"true":      TRUE,
	"false":     FALSE,
	"return":    RETURN,
	"null":      NULL,
	"undefined": UNDEFINED,
	"this":      THIS,
	"and":       LOGICAL_AND,
	"or":        LOGICAL_OR,
}

// LookupIdent checks the keywords table for an identifier.
func LookupIdent(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return IDENT
}

// Lexer holds the state of the scanner.
//
// Indentation is significant: a deeper line opens an INDENT instead of a
// NEWLINE, a shallower line closes one OUTDENT per popped level followed by
// a NEWLINE. Newlines inside (), [] and {} are ignored.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char's byte offset)
	readPosition int  // current reading position in input (byte offset after current char)
	ch           byte // current char under examination
	line         int  // current 1-based line number
	column       int  // current 1-based column number

	source *source.SourceFile

	indents     []int   // indentation widths of open blocks; indents[0] == 0
	depth       int     // bracket nesting depth
	atLineStart bool    // next call must measure indentation
	pending     []Token // queued layout tokens
	sawContent  bool    // at least one real token has been produced
	closed      bool    // end-of-input layout tokens were queued
}

// NewLexer creates a new Lexer.
func NewLexer(input string) *Lexer {
	return NewLexerWithSource(source.NewEvalSource(input))
}

// NewLexerWithSource creates a Lexer reading sf.Content.
func NewLexerWithSource(sf *source.SourceFile) *Lexer {
	l := &Lexer{input: sf.Content, source: sf, line: 1, column: 0, indents: []int{0}, atLineStart: true}
	l.readChar()
	return l
}

// GetSource returns the source file the lexer reads from.
func (l *Lexer) GetSource() *source.SourceFile {
	return l.source
}

// readChar gives us the next character and advances our position in the input string.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0 // 0 is ASCII for NUL, signifies EOF
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

// peekChar looks ahead in the input without consuming the character.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) peekCharAt(offset int) byte {
	if l.position+offset >= len(l.input) {
		return 0
	}
	return l.input[l.position+offset]
}

func (l *Lexer) layoutToken(t TokenType) Token {
	return Token{Type: t, Line: l.line, Column: l.column, StartPos: l.position, EndPos: l.position}
}

// skipSpaces consumes spaces, tabs and carriage returns, plus newlines when
// inside brackets. Comments run from '#' to the end of the line.
func (l *Lexer) skipSpaces() {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\r':
			l.readChar()
		case l.ch == '\n' && l.depth > 0:
			l.readChar()
		case l.ch == '#':
			l.skipComment()
		default:
			return
		}
	}
}

// measureIndent runs at the start of a logical line. It skips blank and
// comment-only lines and queues the layout tokens for the first real line.
func (l *Lexer) measureIndent() {
	for {
		width := 0
		for l.ch == ' ' || l.ch == '\t' {
			width++
			l.readChar()
		}
		if l.ch == '\r' {
			l.readChar()
		}
		if l.ch == '#' {
			l.skipComment()
		}
		if l.ch == '\n' {
			l.readChar()
			continue
		}
		if l.ch == 0 {
			l.closeIndents()
			return
		}

		top := l.indents[len(l.indents)-1]
		switch {
		case !l.sawContent:
			// Leading indentation of the first line is not a block.
			l.indents[0] = width
		case width > top:
			l.indents = append(l.indents, width)
			l.pending = append(l.pending, l.layoutToken(INDENT))
		case width < top:
			for len(l.indents) > 1 && width < l.indents[len(l.indents)-1] {
				l.indents = l.indents[:len(l.indents)-1]
				l.pending = append(l.pending, l.layoutToken(OUTDENT))
			}
			if width != l.indents[len(l.indents)-1] {
				l.pending = append(l.pending, Token{Type: ILLEGAL, Literal: "inconsistent indentation",
					Line: l.line, Column: l.column, StartPos: l.position, EndPos: l.position})
			}
			l.pending = append(l.pending, l.layoutToken(NEWLINE))
		default:
			l.pending = append(l.pending, l.layoutToken(NEWLINE))
		}
		return
	}
}

func (l *Lexer) closeIndents() {
	if l.closed {
		return
	}
	l.closed = true
	if l.sawContent {
		l.pending = append(l.pending, l.layoutToken(NEWLINE))
	}
	for len(l.indents) > 1 {
		l.indents = l.indents[:len(l.indents)-1]
		l.pending = append(l.pending, l.layoutToken(OUTDENT))
	}
}

// NextToken scans the input and returns the next token.
func (l *Lexer) NextToken() Token {
	if len(l.pending) == 0 && l.atLineStart {
		l.atLineStart = false
		l.measureIndent()
	}
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		return tok
	}

	l.skipSpaces()

	if l.ch == '\n' {
		l.readChar()
		l.atLineStart = true
		return l.NextToken()
	}
	if l.ch == 0 && !l.closed {
		l.closeIndents()
		return l.NextToken()
	}

	tok := l.scanToken()
	if tok.Type != EOF {
		l.sawContent = true
	}
	return tok
}

// Tokenize drains the lexer into a slice ending with EOF.
func (l *Lexer) Tokenize() []Token {
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks
		}
	}
}

func (l *Lexer) scanToken() Token {
	startLine := l.line
	startCol := l.column
	startPos := l.position

	simple := func(t TokenType, width int) Token {
		for i := 0; i < width; i++ {
			l.readChar()
		}
		return Token{Type: t, Literal: l.input[startPos:l.position], Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	}

	switch l.ch {
	case '=':
		switch l.peekChar() {
		case '=':
			return simple(EQ, 2)
		case '>':
			return simple(FAT_ARROW, 2)
		}
		return simple(ASSIGN, 1)
	case '!':
		if l.peekChar() == '=' {
			return simple(NOT_EQ, 2)
		}
		return simple(BANG, 1)
	case '-':
		if l.peekChar() == '>' {
			return simple(ARROW, 2)
		}
		return simple(MINUS, 1)
	case '+':
		return simple(PLUS, 1)
	case '*':
		return simple(ASTERISK, 1)
	case '/':
		return simple(SLASH, 1)
	case '<':
		if l.peekChar() == '=' {
			return simple(LE, 2)
		}
		return simple(LT, 1)
	case '>':
		if l.peekChar() == '=' {
			return simple(GE, 2)
		}
		return simple(GT, 1)
	case '&':
		if l.peekChar() == '&' {
			return simple(LOGICAL_AND, 2)
		}
		return simple(ILLEGAL, 1)
	case '|':
		if l.peekChar() == '|' {
			return simple(LOGICAL_OR, 2)
		}
		return simple(ILLEGAL, 1)
	case '@':
		return simple(AT, 1)
	case ';':
		return simple(SEMICOLON, 1)
	case ':':
		return simple(COLON, 1)
	case ',':
		return simple(COMMA, 1)
	case '(':
		l.depth++
		return simple(LPAREN, 1)
	case ')':
		l.closeBracket()
		return simple(RPAREN, 1)
	case '{':
		l.depth++
		return simple(LBRACE, 1)
	case '}':
		l.closeBracket()
		return simple(RBRACE, 1)
	case '[':
		l.depth++
		return simple(LBRACKET, 1)
	case ']':
		l.closeBracket()
		return simple(RBRACKET, 1)
	case '.':
		if l.peekChar() == '.' && l.peekCharAt(2) == '.' {
			return simple(SPREAD, 3)
		}
		return simple(DOT, 1)
	case '\'':
		literal, ok := l.readString('\'')
		if !ok {
			return Token{Type: ILLEGAL, Literal: "Invalid string literal", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
		unescaped, ok := Unescape(literal)
		if !ok {
			return Token{Type: ILLEGAL, Literal: "Invalid escape sequence", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
		return Token{Type: STRING, Literal: unescaped, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case '"':
		literal, ok := l.readString('"')
		if !ok {
			return Token{Type: ILLEGAL, Literal: "Invalid string literal", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
		if strings.Contains(literal, "#{") {
			return Token{Type: TEMPLATE, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
		unescaped, ok := Unescape(literal)
		if !ok {
			return Token{Type: ILLEGAL, Literal: "Invalid escape sequence", Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
		}
		return Token{Type: STRING, Literal: unescaped, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	case 0:
		return Token{Type: EOF, Line: startLine, Column: startCol, StartPos: startPos, EndPos: startPos}
	}

	if l.isIdentStart() {
		literal := l.readIdentifier()
		return Token{Type: LookupIdent(literal), Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	}
	if isDigit(l.ch) {
		literal := l.readNumber()
		return Token{Type: NUMBER, Literal: literal, Line: startLine, Column: startCol, StartPos: startPos, EndPos: l.position}
	}
	return simple(ILLEGAL, 1)
}

func (l *Lexer) closeBracket() {
	if l.depth > 0 {
		l.depth--
	}
}

func (l *Lexer) isIdentStart() bool {
	if isLetter(l.ch) || l.ch == '$' {
		return true
	}
	if l.ch >= utf8.RuneSelf {
		r, _ := utf8.DecodeRuneInString(l.input[l.position:])
		return unicode.IsLetter(r)
	}
	return false
}

// readIdentifier reads an identifier and returns it in NFC form, so that
// differently composed spellings of one name bind the same variable.
func (l *Lexer) readIdentifier() string {
	startPos := l.position
	for {
		if isLetter(l.ch) || isDigit(l.ch) || l.ch == '$' {
			l.readChar()
			continue
		}
		if l.ch >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(l.input[l.position:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
				for i := 0; i < size; i++ {
					l.readChar()
				}
				continue
			}
		}
		break
	}
	return norm.NFC.String(l.input[startPos:l.position])
}

// readNumber reads decimal (with optional fraction/exponent) or 0x/0b/0o literals.
func (l *Lexer) readNumber() string {
	startPos := l.position
	if l.ch == '0' {
		switch l.peekChar() {
		case 'x', 'X', 'b', 'B', 'o', 'O':
			l.readChar()
			l.readChar()
			for isHexDigit(l.ch) || l.ch == '_' {
				l.readChar()
			}
			return l.input[startPos:l.position]
		}
	}
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekCharAt(2))) {
			l.readChar()
			if l.ch == '+' || l.ch == '-' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}
	return l.input[startPos:l.position]
}

// readString reads a string literal enclosed in quote and returns its raw
// content. Escapes are kept as written; see Unescape.
func (l *Lexer) readString(quote byte) (string, bool) {
	l.readChar() // opening quote
	start := l.position
	for {
		switch l.ch {
		case quote:
			raw := l.input[start:l.position]
			l.readChar()
			return raw, true
		case 0, '\n':
			return "", false
		case '\\':
			l.readChar()
			if l.ch == 0 {
				return "", false
			}
		}
		l.readChar()
	}
}

// Unescape resolves the escape sequences of a raw string body.
func Unescape(raw string) (string, bool) {
	if !strings.ContainsRune(raw, '\\') {
		return raw, true
	}
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(raw) {
			return "", false
		}
		switch raw[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\\', '\'', '"', '#', '`', '$':
			b.WriteByte(raw[i])
		default:
			return "", false
		}
	}
	return b.String(), true
}

// skipComment reads until the end of the line.
func (l *Lexer) skipComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

// String implements fmt.Stringer for diagnostics.
func (t Token) String() string {
	if t.Literal == "" {
		return string(t.Type)
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return ('0' <= ch && ch <= '9') || ('a' <= ch && ch <= 'f') || ('A' <= ch && ch <= 'F')
}
