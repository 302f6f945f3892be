package parser

import (
	"fmt"
	"strings"

	"expando/pkg/errors"
	"expando/pkg/lexer"
	"expando/pkg/source"
)

// --- Debug Flag ---
const debugParser = false

func debugPrint(format string, args ...interface{}) {
	if debugParser {
		fmt.Printf("[Parser Debug] "+format+"\n", args...)
	}
}

// --- End Debug Flag ---

// Parser takes the token stream of a lexer and builds an AST.
//
// The whole stream is buffered up front: deciding whether '(' opens a
// parameter list needs to look past the matching ')'.
type Parser struct {
	tokens []lexer.Token
	idx    int // index of curToken in tokens

	source *source.SourceFile // cached from lexer
	errors []errors.ExpandoError

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

// Parsing functions types for Pratt parser
type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression // Arg is the left side expression
)

// Precedence levels
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // =
	LOGICAL_OR  // || or
	LOGICAL_AND // && and
	EQUALS      // == !=
	LESSGREATER // > < >= <=
	SUM         // + -
	PRODUCT     // * /
	PREFIX      // -X !X
	POSTFIX     // X...
	CALL        // fn(X)
	INDEX       // array[index]
	MEMBER      // object.property
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:      ASSIGNMENT,
	lexer.LOGICAL_OR:  LOGICAL_OR,
	lexer.LOGICAL_AND: LOGICAL_AND,
	lexer.EQ:          EQUALS,
	lexer.NOT_EQ:      EQUALS,
	lexer.LT:          LESSGREATER,
	lexer.GT:          LESSGREATER,
	lexer.LE:          LESSGREATER,
	lexer.GE:          LESSGREATER,
	lexer.PLUS:        SUM,
	lexer.MINUS:       SUM,
	lexer.ASTERISK:    PRODUCT,
	lexer.SLASH:       PRODUCT,
	lexer.SPREAD:      POSTFIX,
	lexer.LPAREN:      CALL,
	lexer.LBRACKET:    INDEX,
	lexer.DOT:         MEMBER,
}

// NewParser creates a new Parser reading every token from l.
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{
		tokens: l.Tokenize(),
		idx:    -1,
		source: l.GetSource(),
		errors: []errors.ExpandoError{},
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TEMPLATE, p.parseInterpolatedString)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.UNDEFINED, p.parseUndefinedLiteral)
	p.registerPrefix(lexer.THIS, p.parseThis)
	p.registerPrefix(lexer.AT, p.parseAt)
	p.registerPrefix(lexer.BANG, p.parsePrefixExpression)
	p.registerPrefix(lexer.MINUS, p.parsePrefixExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedOrFunction)
	p.registerPrefix(lexer.ARROW, p.parseFunctionWithoutParams)
	p.registerPrefix(lexer.FAT_ARROW, p.parseFunctionWithoutParams)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayLiteral)
	p.registerPrefix(lexer.LBRACE, p.parseObjectLiteral)
	p.registerPrefix(lexer.SPREAD, p.parseLeadingSpread)
	p.registerPrefix(lexer.ILLEGAL, p.parseIllegal)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, t := range []lexer.TokenType{
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH,
		lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.EQ, lexer.NOT_EQ,
		lexer.LOGICAL_AND, lexer.LOGICAL_OR,
	} {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(lexer.ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(lexer.SPREAD, p.parsePostfixSpread)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.LBRACKET, p.parseIndexExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)

	p.nextToken()

	return p
}

// Errors returns the list of parsing errors.
func (p *Parser) Errors() []errors.ExpandoError {
	return p.errors
}

func (p *Parser) tokenAt(i int) lexer.Token {
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[i]
}

// nextToken advances the current and peek tokens.
func (p *Parser) nextToken() {
	p.idx++
	p.curToken = p.tokenAt(p.idx)
	p.peekToken = p.tokenAt(p.idx + 1)
	debugPrint("nextToken(): cur='%s' (%s), peek='%s' (%s)", p.curToken.Literal, p.curToken.Type, p.peekToken.Literal, p.peekToken.Type)
}

// ParseProgram parses the entire input and returns the root Program node and any errors.
func (p *Parser) ParseProgram() (*Program, []errors.ExpandoError) {
	program := &Program{Statements: []Statement{}}

	for !p.curTokenIs(lexer.EOF) {
		if p.isTerminator(p.curToken.Type) {
			if p.curTokenIs(lexer.OUTDENT) {
				p.addError(p.curToken, "unexpected dedent")
			}
			p.nextToken()
			continue
		}
		if p.curTokenIs(lexer.INDENT) {
			p.addError(p.curToken, "unexpected indentation")
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.finishStatement()
	}

	return program, p.errors
}

func (p *Parser) isTerminator(t lexer.TokenType) bool {
	switch t {
	case lexer.NEWLINE, lexer.SEMICOLON, lexer.OUTDENT, lexer.EOF:
		return true
	}
	return false
}

// finishStatement moves past the last token of a statement, reporting and
// skipping anything left before the terminator.
func (p *Parser) finishStatement() {
	if !p.isTerminator(p.peekToken.Type) {
		p.noPrefixParseFnError(p.peekToken)
		for !p.isTerminator(p.peekToken.Type) {
			p.nextToken()
		}
	}
	p.nextToken()
}

func (p *Parser) parseStatement() Statement {
	switch p.curToken.Type {
	case lexer.RETURN:
		return p.parseReturnStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseReturnStatement() *ReturnStatement {
	stmt := &ReturnStatement{Token: p.curToken}
	if p.isTerminator(p.peekToken.Type) {
		return stmt
	}
	p.nextToken()
	stmt.ReturnValue = p.parseExpression(LOWEST)
	return stmt
}

func (p *Parser) parseExpressionStatement() Statement {
	stmt := &ExpressionStatement{Token: p.curToken}
	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}
	return stmt
}

// parseBlock expects curToken to be INDENT and stops on the matching OUTDENT.
func (p *Parser) parseBlock() *BlockStatement {
	block := &BlockStatement{Token: p.curToken, Statements: []Statement{}}
	p.nextToken()

	for !p.curTokenIs(lexer.OUTDENT) && !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.NEWLINE) || p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			continue
		}
		if p.curTokenIs(lexer.INDENT) {
			p.addError(p.curToken, "unexpected indentation")
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.finishStatement()
	}
	return block
}

// --- Expression Parsing (Pratt Parser) ---

func (p *Parser) parseExpression(precedence int) Expression {
	debugPrint("parseExpression(prec=%d): cur='%s' (%s)", precedence, p.curToken.Literal, p.curToken.Type)
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()
	if leftExp == nil {
		return nil
	}

	for {
		if precedence < CALL && p.startsImplicitCall(leftExp) {
			leftExp = p.parseImplicitCall(leftExp)
			if leftExp == nil {
				return nil
			}
			continue
		}
		if precedence >= p.peekPrecedence() {
			break
		}
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

// -- Prefix Parse Functions --

func (p *Parser) parseIdentifier() Expression {
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() Expression {
	return &NumberLiteral{Token: p.curToken, Raw: strings.ReplaceAll(p.curToken.Literal, "_", "")}
}

func (p *Parser) parseStringLiteral() Expression {
	return &StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() Expression {
	return &BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE)}
}

func (p *Parser) parseNullLiteral() Expression {
	return &NullLiteral{Token: p.curToken}
}

func (p *Parser) parseUndefinedLiteral() Expression {
	return &UndefinedLiteral{Token: p.curToken}
}

func (p *Parser) parseThis() Expression {
	return &ThisExpression{Token: p.curToken}
}

// parseAt handles `@name` (this.name) and a lone `@` (this).
func (p *Parser) parseAt() Expression {
	at := p.curToken
	if p.peekTokenIs(lexer.IDENT) && p.peekToken.StartPos == at.EndPos {
		p.nextToken()
		return &MemberExpression{
			Token:    at,
			Object:   &ThisExpression{Token: at},
			Property: &Identifier{Token: p.curToken, Value: p.curToken.Literal},
		}
	}
	return &ThisExpression{Token: at}
}

func (p *Parser) parseIllegal() Expression {
	p.addError(p.curToken, p.curToken.Literal)
	return nil
}

func (p *Parser) parsePrefixExpression() Expression {
	expr := &PrefixExpression{Token: p.curToken, Operator: p.curToken.Literal}
	p.nextToken()
	expr.Right = p.parseExpression(PREFIX)
	if expr.Right == nil {
		return nil
	}
	return expr
}

// parseLeadingSpread handles a bare `...` expansion and the `...name` spelling.
func (p *Parser) parseLeadingSpread() Expression {
	spread := &SpreadElement{Token: p.curToken}
	switch p.peekToken.Type {
	case lexer.COMMA, lexer.RBRACKET, lexer.RPAREN:
		return spread
	}
	p.nextToken()
	spread.Argument = p.parseExpression(POSTFIX)
	if spread.Argument == nil {
		return nil
	}
	return spread
}

// parseGroupedOrFunction decides between `(expr)` and `(params) ->`.
func (p *Parser) parseGroupedOrFunction() Expression {
	if p.isParameterList() {
		return p.parseFunctionLiteral()
	}
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return exp
}

// isParameterList reports whether the '(' at curToken is closed by a ')'
// directly followed by an arrow.
func (p *Parser) isParameterList() bool {
	depth := 0
	for i := p.idx; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case lexer.LPAREN:
			depth++
		case lexer.RPAREN:
			depth--
			if depth == 0 {
				next := p.tokenAt(i + 1).Type
				return next == lexer.ARROW || next == lexer.FAT_ARROW
			}
		case lexer.EOF:
			return false
		}
	}
	return false
}

func (p *Parser) parseFunctionLiteral() Expression {
	params := p.parseExpressionList(lexer.RPAREN)
	if params == nil {
		return nil
	}
	p.nextToken() // the arrow
	return p.parseFunctionBody(params)
}

func (p *Parser) parseFunctionWithoutParams() Expression {
	return p.parseFunctionBody([]Expression{})
}

// parseFunctionBody expects curToken to be the arrow.
func (p *Parser) parseFunctionBody(params []Expression) Expression {
	fn := &FunctionLiteral{
		Token:      p.curToken,
		Parameters: params,
		Bound:      p.curTokenIs(lexer.FAT_ARROW),
	}
	debugPrint("parseFunctionBody: %d params, peek='%s'", len(params), p.peekToken.Type)

	switch p.peekToken.Type {
	case lexer.INDENT:
		p.nextToken()
		fn.Body = p.parseBlock()
	case lexer.NEWLINE, lexer.SEMICOLON, lexer.OUTDENT, lexer.EOF,
		lexer.RPAREN, lexer.RBRACKET, lexer.RBRACE, lexer.COMMA:
		fn.Body = &BlockStatement{Token: p.curToken, Statements: []Statement{}}
	default:
		p.nextToken()
		fn.Body = &BlockStatement{Token: p.curToken, Statements: []Statement{}}
		if stmt := p.parseStatement(); stmt != nil {
			fn.Body.Statements = append(fn.Body.Statements, stmt)
		}
	}
	return fn
}

func (p *Parser) parseArrayLiteral() Expression {
	array := &ArrayLiteral{Token: p.curToken}
	array.Elements = p.parseExpressionList(lexer.RBRACKET)
	if array.Elements == nil {
		return nil
	}
	return array
}

func (p *Parser) parseObjectLiteral() Expression {
	obj := &ObjectLiteral{Token: p.curToken, Properties: []*ObjectProperty{}}

	for !p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		prop := p.parseObjectProperty()
		if prop == nil {
			return nil
		}
		obj.Properties = append(obj.Properties, prop)

		if !p.peekTokenIs(lexer.RBRACE) && !p.expectPeek(lexer.COMMA) {
			return nil
		}
	}
	p.nextToken() // '}'
	return obj
}

func (p *Parser) parseObjectProperty() *ObjectProperty {
	switch p.curToken.Type {
	case lexer.AT:
		// {@a} and {@a = d}
		target, ok := p.parseAt().(*MemberExpression)
		if !ok {
			p.addError(p.curToken, "expected property name after '@'")
			return nil
		}
		return p.finishShorthand(target.Property, target)

	case lexer.LBRACKET:
		p.nextToken()
		key := p.parseExpression(LOWEST)
		if key == nil || !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		return p.finishKeyed(key, true)

	case lexer.STRING:
		return p.finishKeyed(&StringLiteral{Token: p.curToken, Value: p.curToken.Literal}, false)

	case lexer.TEMPLATE:
		key := p.parseInterpolatedString()
		if key == nil {
			return nil
		}
		_, interpolated := key.(*InterpolatedString)
		return p.finishKeyed(key, interpolated)

	case lexer.NUMBER:
		return p.finishKeyed(&NumberLiteral{Token: p.curToken, Raw: p.curToken.Literal}, false)
	}

	if !isPropertyName(p.curToken) {
		p.addError(p.curToken, fmt.Sprintf("unexpected %s in object literal", p.curToken.Type))
		return nil
	}
	key := &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	if p.peekTokenIs(lexer.COLON) {
		return p.finishKeyed(key, false)
	}
	if !p.curTokenIs(lexer.IDENT) {
		p.addError(p.curToken, fmt.Sprintf("%q cannot be used as a shorthand property", key.Value))
		return nil
	}
	return p.finishShorthand(key, key)
}

// finishShorthand handles an optional `= default` after a shorthand key.
func (p *Parser) finishShorthand(key *Identifier, target Expression) *ObjectProperty {
	prop := &ObjectProperty{Key: key, Value: target, Shorthand: true}
	if p.peekTokenIs(lexer.ASSIGN) {
		p.nextToken()
		assign := &AssignmentExpression{Token: p.curToken, Left: target}
		p.nextToken()
		assign.Value = p.parseExpression(LOWEST)
		if assign.Value == nil {
			return nil
		}
		prop.Value = assign
	}
	return prop
}

func (p *Parser) finishKeyed(key Expression, computed bool) *ObjectProperty {
	if !p.expectPeek(lexer.COLON) {
		return nil
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	return &ObjectProperty{Key: key, Value: value, Computed: computed}
}

// isPropertyName accepts identifiers and word keywords after '.' or as keys.
func isPropertyName(tok lexer.Token) bool {
	if tok.Type == lexer.IDENT {
		return true
	}
	switch tok.Type {
	case lexer.TRUE, lexer.FALSE, lexer.NULL, lexer.UNDEFINED, lexer.THIS, lexer.RETURN:
		return true
	case lexer.LOGICAL_AND, lexer.LOGICAL_OR:
		return tok.Literal == "and" || tok.Literal == "or"
	}
	return false
}

// parseInterpolatedString splits a TEMPLATE token on #{...} and parses each
// embedded expression with a nested parser.
func (p *Parser) parseInterpolatedString() Expression {
	tok := p.curToken
	raw := tok.Literal
	str := &InterpolatedString{Token: tok}

	var quasi strings.Builder
	flush := func() bool {
		text, ok := lexer.Unescape(quasi.String())
		if !ok {
			p.addError(tok, "invalid escape sequence")
			return false
		}
		str.Quasis = append(str.Quasis, text)
		quasi.Reset()
		return true
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == '\\' && i+1 < len(raw) {
			quasi.WriteByte(c)
			quasi.WriteByte(raw[i+1])
			i++
			continue
		}
		if c != '#' || i+1 >= len(raw) || raw[i+1] != '{' {
			quasi.WriteByte(c)
			continue
		}

		end := matchingBrace(raw, i+2)
		if end < 0 {
			p.addError(tok, "unterminated interpolation")
			return nil
		}
		if !flush() {
			return nil
		}
		expr := p.parseEmbedded(raw[i+2:end], tok)
		if expr == nil {
			return nil
		}
		str.Expressions = append(str.Expressions, expr)
		i = end
	}
	if !flush() {
		return nil
	}

	if len(str.Expressions) == 0 {
		return &StringLiteral{Token: tok, Value: str.Quasis[0]}
	}
	return str
}

func matchingBrace(s string, start int) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func (p *Parser) parseEmbedded(src string, at lexer.Token) Expression {
	sub := NewParser(lexer.NewLexer(src))
	if sub.curTokenIs(lexer.EOF) {
		p.addError(at, "empty interpolation")
		return nil
	}
	expr := sub.parseExpression(LOWEST)
	if expr != nil && !sub.peekTokenIs(lexer.NEWLINE) && !sub.peekTokenIs(lexer.EOF) {
		sub.addError(sub.peekToken, fmt.Sprintf("unexpected %s in interpolation", sub.peekToken.Type))
	}
	for _, err := range sub.errors {
		p.addError(at, "in interpolation: "+err.Message())
	}
	if len(sub.errors) > 0 {
		return nil
	}
	return expr
}

// -- Infix Parse Functions --

func (p *Parser) parseInfixExpression(left Expression) Expression {
	expr := &InfixExpression{
		Token:    p.curToken,
		Operator: string(p.curToken.Type), // "and"/"or" normalize to &&/||
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseAssignmentExpression(left Expression) Expression {
	expr := &AssignmentExpression{Token: p.curToken, Left: left}
	valid := isAssignable(left)
	if !valid {
		p.addError(p.curToken, fmt.Sprintf("invalid assignment target: %s", left.String()))
	}
	p.nextToken()
	// Right-associative: a = b = c
	expr.Value = p.parseExpression(ASSIGNMENT - 1)
	if expr.Value == nil || !valid {
		return nil
	}
	return expr
}

func isAssignable(e Expression) bool {
	switch e.(type) {
	case *Identifier, *MemberExpression, *IndexExpression, *ArrayLiteral, *ObjectLiteral:
		return true
	}
	return false
}

func (p *Parser) parsePostfixSpread(left Expression) Expression {
	return &SpreadElement{Token: p.curToken, Argument: left}
}

func (p *Parser) parseCallExpression(function Expression) Expression {
	call := &CallExpression{Token: p.curToken, Function: function}
	call.Arguments = p.parseExpressionList(lexer.RPAREN)
	if call.Arguments == nil {
		return nil
	}
	return call
}

// startsImplicitCall reports whether `f a, b` style application begins at
// peekToken: a callable on the left, then whitespace, then an argument start.
func (p *Parser) startsImplicitCall(left Expression) bool {
	switch left.(type) {
	case *Identifier, *MemberExpression, *IndexExpression, *CallExpression:
	default:
		return false
	}
	if p.peekToken.StartPos == p.curToken.EndPos {
		return false
	}
	switch p.peekToken.Type {
	case lexer.IDENT, lexer.NUMBER, lexer.STRING, lexer.TEMPLATE, lexer.AT, lexer.THIS,
		lexer.NULL, lexer.UNDEFINED, lexer.TRUE, lexer.FALSE, lexer.ARROW, lexer.FAT_ARROW:
		return true
	}
	return false
}

// parseImplicitCall consumes comma separated arguments up to the end of the
// enclosing expression.
func (p *Parser) parseImplicitCall(function Expression) Expression {
	call := &CallExpression{Token: p.peekToken, Function: function}
	for {
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		call.Arguments = append(call.Arguments, arg)
		if !p.peekTokenIs(lexer.COMMA) {
			return call
		}
		p.nextToken()
	}
}

func (p *Parser) parseIndexExpression(left Expression) Expression {
	expr := &IndexExpression{Token: p.curToken, Left: left}
	p.nextToken()
	expr.Index = p.parseExpression(LOWEST)
	if expr.Index == nil || !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return expr
}

func (p *Parser) parseMemberExpression(object Expression) Expression {
	dot := p.curToken
	if !isPropertyName(p.peekToken) {
		p.addError(p.peekToken, fmt.Sprintf("expected property name after '.', got %s", p.peekToken.Type))
		return nil
	}
	p.nextToken()
	return &MemberExpression{
		Token:    dot,
		Object:   object,
		Property: &Identifier{Token: p.curToken, Value: p.curToken.Literal},
	}
}

// parseExpressionList parses comma separated expressions up to end, which
// becomes curToken. A trailing comma is allowed. Returns nil on error.
func (p *Parser) parseExpressionList(end lexer.TokenType) []Expression {
	list := []Expression{}

	if p.peekTokenIs(end) {
		p.nextToken()
		return list
	}

	p.nextToken()
	first := p.parseExpression(LOWEST)
	if first == nil {
		return nil
	}
	list = append(list, first)

	for p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
		p.nextToken()
		item := p.parseExpression(LOWEST)
		if item == nil {
			return nil
		}
		list = append(list, item)
	}

	if !p.expectPeek(end) {
		return nil
	}
	return list
}

func (p *Parser) registerPrefix(tokenType lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t lexer.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

// --- Error Handling ---

func (p *Parser) peekError(t lexer.TokenType) {
	msg := fmt.Sprintf("expected next token to be %s, got %s instead",
		t, p.peekToken.Type)
	p.addError(p.peekToken, msg)
}

func (p *Parser) noPrefixParseFnError(tok lexer.Token) {
	msg := fmt.Sprintf("unexpected %s", tok.Type)
	if tok.Type == lexer.ILLEGAL {
		msg = tok.Literal
	}
	p.addError(tok, msg)
}

// --- Precedence Helper ---
func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	// Prevent memory exhaustion from infinite error generation
	const maxErrors = 100
	if len(p.errors) > maxErrors {
		return
	}
	if len(p.errors) == maxErrors {
		msg = fmt.Sprintf("too many parse errors (limit: %d), stopping parser", maxErrors)
	}
	p.errors = append(p.errors, &errors.SyntaxError{
		Position: errors.Position{
			Line:     tok.Line,
			Column:   tok.Column,
			StartPos: tok.StartPos,
			EndPos:   tok.EndPos,
			Source:   p.source,
		},
		Msg: msg,
	})
}
