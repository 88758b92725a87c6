// Package compiler turns source text into a code.Chunk in a single pass.
// There is no syntax tree: a precedence-climbing parser emits bytecode as it
// recognizes each construct.
package compiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"lox/internal/code"
	"lox/internal/diag"
	"lox/internal/lexer"
	"lox/internal/limits"
	"lox/internal/object"
	"lox/internal/token"
)

type Options struct {
	// DumpCode writes the disassembly of a successfully compiled chunk to
	// Dump (stdout when nil).
	DumpCode bool
	Dump     io.Writer
	// Errors receives one report line per diagnostic. Nil only collects.
	Errors io.Writer
}

type Compiler struct {
	l       *lexer.Lexer
	strings object.Interner
	opts    Options

	current  token.Token
	previous token.Token

	hadError  bool
	panicMode bool

	chunk *code.Chunk
	diags []diag.Diagnostic
}

func New(source string, strings object.Interner, opts Options) *Compiler {
	return &Compiler{
		l:       lexer.New(source),
		strings: strings,
		opts:    opts,
		chunk:   code.NewChunk(),
	}
}

// Compile is a convenience wrapper returning the chunk and whether it may be
// executed.
func Compile(source string, strings object.Interner, opts Options) (*code.Chunk, bool) {
	c := New(source, strings, opts)
	ok := c.Compile()
	return c.Chunk(), ok
}

// Compile parses the whole source, reporting every independent error it
// finds, and returns false if any was reported.
func (c *Compiler) Compile() bool {
	c.hadError = false
	c.panicMode = false

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}

	c.endCompiler()
	return !c.hadError
}

func (c *Compiler) Chunk() *code.Chunk              { return c.chunk }
func (c *Compiler) Diagnostics() []diag.Diagnostic { return c.diags }

func (c *Compiler) endCompiler() {
	if c.hadError || !c.opts.DumpCode {
		return
	}
	w := c.opts.Dump
	if w == nil {
		w = os.Stdout
	}
	dumpChunk(w, c.chunk, "code")
}

/* -------------------- statements -------------------- */

func (c *Compiler) declaration() {
	c.statement()
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emit(code.OpPrint)
}

// returnStatement prints its value and ends the program. A bare return
// yields nil.
func (c *Compiler) returnStatement() {
	if c.match(token.SEMICOLON) {
		c.emit(code.OpNil)
	} else {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after return value.")
	}
	c.emit(code.OpReturn)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emit(code.OpPop)
}

// synchronize skips tokens until a likely statement boundary so one mistake
// produces one report.
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.current.Type != token.EOF {
		if c.previous.Type == token.SEMICOLON {
			return
		}
		switch c.current.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR,
			token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

/* -------------------- expressions -------------------- */

func (c *Compiler) expression() {
	c.parsePrecedence(ASSIGNMENT)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.previous.Type).prefix
	if prefix == actNone {
		c.error("Expect expression.")
		return
	}
	c.apply(prefix)

	for prec <= getRule(c.current.Type).precedence {
		c.advance()
		c.apply(getRule(c.previous.Type).infix)
	}
}

func (c *Compiler) apply(a action) {
	switch a {
	case actGrouping:
		c.grouping()
	case actUnary:
		c.unary()
	case actBinary:
		c.binary()
	case actNumber:
		c.number()
	case actString:
		c.string()
	case actLiteral:
		c.literal()
	}
}

func (c *Compiler) grouping() {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary() {
	op := c.previous.Type
	line := c.previous.Line

	c.parsePrecedence(UNARY)

	switch op {
	case token.MINUS:
		c.emitAt(line, code.OpNegate)
	case token.BANG:
		c.emitAt(line, code.OpNot)
	}
}

// binary compiles the right operand one level tighter, which makes every
// binary operator left-associative. !=, >= and <= are emitted as the negation
// of ==, < and >.
func (c *Compiler) binary() {
	op := c.previous.Type
	line := c.previous.Line
	rule := getRule(op)

	c.parsePrecedence(rule.precedence + 1)

	switch op {
	case token.NE:
		c.emitAt(line, code.OpEqual)
		c.emitAt(line, code.OpNot)
	case token.EQ:
		c.emitAt(line, code.OpEqual)
	case token.GT:
		c.emitAt(line, code.OpGreater)
	case token.GE:
		c.emitAt(line, code.OpLess)
		c.emitAt(line, code.OpNot)
	case token.LT:
		c.emitAt(line, code.OpLess)
	case token.LE:
		c.emitAt(line, code.OpGreater)
		c.emitAt(line, code.OpNot)
	case token.PLUS:
		c.emitAt(line, code.OpAdd)
	case token.MINUS:
		c.emitAt(line, code.OpSubtract)
	case token.STAR:
		c.emitAt(line, code.OpMultiply)
	case token.SLASH:
		c.emitAt(line, code.OpDivide)
	}
}

func (c *Compiler) number() {
	v, err := strconv.ParseFloat(c.previous.Literal, 64)
	if err != nil {
		c.error(fmt.Sprintf("Invalid number literal %q.", c.previous.Literal))
		return
	}
	c.emitConstant(object.Number{Value: v})
}

// string strips the surrounding quotes and interns the contents.
func (c *Compiler) string() {
	lit := c.previous.Literal
	s, err := c.strings.CopyString(lit[1 : len(lit)-1])
	if err != nil {
		c.errorWithCode(c.previous, memoryCode(err), err.Error())
		return
	}
	c.emitConstant(s)
}

func (c *Compiler) literal() {
	switch c.previous.Type {
	case token.FALSE:
		c.emit(code.OpFalse)
	case token.TRUE:
		c.emit(code.OpTrue)
	case token.NIL:
		c.emit(code.OpNil)
	}
}

/* -------------------- emission -------------------- */

func (c *Compiler) emit(op code.Opcode, operands ...int) int {
	return c.chunk.Emit(c.previous.Line, op, operands...)
}

func (c *Compiler) emitAt(line int, op code.Opcode, operands ...int) int {
	return c.chunk.Emit(line, op, operands...)
}

func (c *Compiler) emitConstant(v object.Object) {
	c.emit(code.OpConstant, c.makeConstant(v))
}

func (c *Compiler) makeConstant(v object.Object) int {
	if len(c.chunk.Constants) >= code.MaxConstants {
		c.errorWithCode(c.previous, diag.CodeTooManyConsts, "Too many constants in one chunk.")
		return 0
	}
	return c.chunk.AddConstant(v)
}

/* -------------------- tokens -------------------- */

func (c *Compiler) advance() {
	c.previous = c.current

	for {
		c.current = c.l.NextToken()
		if c.current.Type != token.ILLEGAL {
			break
		}
		c.errorWithCode(c.current, diag.CodeLexical, c.current.Literal)
	}
}

func (c *Compiler) consume(t token.Type, message string) {
	if c.current.Type == t {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *Compiler) check(t token.Type) bool {
	return c.current.Type == t
}

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

/* -------------------- errors -------------------- */

func (c *Compiler) error(message string) {
	c.errorWithCode(c.previous, diag.CodeSyntax, message)
}

func (c *Compiler) errorAtCurrent(message string) {
	c.errorWithCode(c.current, diag.CodeSyntax, message)
}

// errorWithCode records a diagnostic unless the parser is already
// recovering from an earlier one.
func (c *Compiler) errorWithCode(tok token.Token, errCode, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	d := diag.Diagnostic{
		Code:     errCode,
		Message:  message,
		Severity: diag.SeverityError,
		Range:    diag.Range{Line: tok.Line, Col: tok.Col, Length: len(tok.Literal)},
	}
	switch tok.Type {
	case token.EOF:
		d.Where = " at end"
		d.Range.Length = 1
	case token.ILLEGAL:
		d.Range.Length = 1
	default:
		d.Where = fmt.Sprintf(" at '%s'", tok.Literal)
	}
	c.diags = append(c.diags, d)

	if c.opts.Errors != nil {
		fmt.Fprintln(c.opts.Errors, d.Report())
	}
}

func memoryCode(err error) string {
	var memErr limits.MaxMemoryError
	if errors.As(err, &memErr) {
		return diag.CodeMemory
	}
	return diag.CodeSyntax
}
