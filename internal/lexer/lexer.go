package lexer

import (
	"lox/internal/token"
)

type Lexer struct {
	input string

	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination

	line int // 1-based
	col  int // 1-based column of current char
}

func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0, // readChar() will advance to col=1 for first char
	}
	l.readChar()
	return l
}

// NextToken scans exactly one token. Once the input is exhausted every call
// returns EOF.
func (l *Lexer) NextToken() token.Token {
	for {
		l.skipWhitespace()

		if l.ch == '/' && l.peekChar() == '/' {
			l.skipLineComment()
			continue
		}

		break
	}

	if l.atEnd() {
		return l.newToken(token.EOF, "", l.position, l.line, l.col)
	}

	startLine, startCol := l.line, l.col
	startIdx := l.position

	switch l.ch {
	case '(':
		return l.single(token.LPAREN)
	case ')':
		return l.single(token.RPAREN)
	case '{':
		return l.single(token.LBRACE)
	case '}':
		return l.single(token.RBRACE)
	case ';':
		return l.single(token.SEMICOLON)
	case ',':
		return l.single(token.COMMA)
	case '.':
		return l.single(token.DOT)
	case '-':
		return l.single(token.MINUS)
	case '+':
		return l.single(token.PLUS)
	case '/':
		return l.single(token.SLASH)
	case '*':
		return l.single(token.STAR)

	case '!':
		return l.oneOrTwo(token.BANG, token.NE)
	case '=':
		return l.oneOrTwo(token.ASSIGN, token.EQ)
	case '<':
		return l.oneOrTwo(token.LT, token.LE)
	case '>':
		return l.oneOrTwo(token.GT, token.GE)

	case '"', '\'':
		return l.readStringToken(l.ch, startLine, startCol, startIdx)
	}

	if isAlpha(l.ch) {
		lit := l.readIdentifier()
		return l.newToken(token.LookupIdent(lit), lit, startIdx, startLine, startCol)
	}

	if isDigit(l.ch) {
		lit := l.readNumber()
		return l.newToken(token.NUMBER, lit, startIdx, startLine, startCol)
	}

	l.readChar()
	return l.newToken(token.ILLEGAL, "Unexpected character.", startIdx, startLine, startCol)
}

func (l *Lexer) newToken(t token.Type, lit string, start, line, col int) token.Token {
	return token.Token{
		Type:    t,
		Literal: lit,
		Start:   start,
		Line:    line,
		Col:     col,
	}
}

func (l *Lexer) single(t token.Type) token.Token {
	tok := l.newToken(t, l.input[l.position:l.position+1], l.position, l.line, l.col)
	l.readChar()
	return tok
}

// oneOrTwo resolves a one-char operator or its '='-suffixed form.
func (l *Lexer) oneOrTwo(one, two token.Type) token.Token {
	start, line, col := l.position, l.line, l.col
	if l.peekChar() == '=' {
		l.readChar()
		l.readChar()
		return l.newToken(two, l.input[start:l.position], start, line, col)
	}
	l.readChar()
	return l.newToken(one, l.input[start:l.position], start, line, col)
}

func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) readChar() {
	// Leaving a newline moves to the next line.
	if l.readPosition > 0 && l.position < len(l.input) && l.input[l.position] == '\n' {
		l.line++
		l.col = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input)
		l.col++
		return
	}

	l.ch = l.input[l.readPosition]
	l.position = l.readPosition
	l.readPosition++
	l.col++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) skipWhitespace() {
	for !l.atEnd() && (l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n') {
		l.readChar()
	}
}

func (l *Lexer) skipLineComment() {
	for !l.atEnd() && l.ch != '\n' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for !l.atEnd() && isAlphaNumeric(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() string {
	start := l.position
	for !l.atEnd() && isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for !l.atEnd() && isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position]
}

// readStringToken scans up to the matching terminator. Raw newlines are
// allowed; the literal keeps both quotes.
func (l *Lexer) readStringToken(terminator byte, startLine, startCol, startIdx int) token.Token {
	l.readChar() // move past opening quote

	for !l.atEnd() && l.ch != terminator {
		l.readChar()
	}

	if l.atEnd() {
		return l.newToken(token.ILLEGAL, "Unterminated string.", startIdx, startLine, startCol)
	}

	l.readChar() // consume closing quote
	return l.newToken(token.STRING, l.input[startIdx:l.position], startIdx, startLine, startCol)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}
