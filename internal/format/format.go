// Package format rewrites lox source into its canonical layout: one
// statement per line, single spaces around binary operators, no space after
// unary operators or inside parentheses. Comments and single blank lines
// between statements are kept.
package format

import (
	"bytes"
	"fmt"
	"strings"

	"lox/internal/lexer"
	"lox/internal/token"
)

type Options struct {
	Indent string // "  " or "\t"
}

// Error reports source the lexer rejects; such input is never rewritten.
type Error struct {
	Line    int
	Col     int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Message)
}

type printer struct {
	opt Options
	out bytes.Buffer

	depth       int // brace nesting
	parens      int
	atLineStart bool
	lastLine    int // source line of the last thing written
}

func Format(src string, opt Options) (string, error) {
	if opt.Indent == "" {
		opt.Indent = "  "
	}
	p := &printer{opt: opt, atLineStart: true}

	l := lexer.New(src)
	var prev token.Token
	havePrev := false
	prevUnary := false
	prevEnd := 0

	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			return "", &Error{Line: tok.Line, Col: tok.Col, Message: tok.Literal}
		}

		gapStart := p.lastLine
		if !havePrev {
			gapStart = 1
		}
		p.comments(src[prevEnd:tok.Start], gapStart, havePrev)
		if tok.Type == token.EOF {
			break
		}

		unary := isUnary(tok, prev, havePrev)

		if tok.Type == token.RBRACE {
			p.newline()
			if p.depth > 0 {
				p.depth--
			}
		}

		if p.atLineStart {
			p.startLine(tok.Line)
		} else if needSpace(prev, tok, prevUnary) {
			p.out.WriteByte(' ')
		}
		p.out.WriteString(tok.Literal)
		p.lastLine = tok.Line + strings.Count(tok.Literal, "\n")

		switch tok.Type {
		case token.LPAREN:
			p.parens++
		case token.RPAREN:
			if p.parens > 0 {
				p.parens--
			}
		case token.SEMICOLON:
			if p.parens == 0 {
				p.newline()
			}
		case token.LBRACE:
			p.depth++
			p.newline()
		case token.RBRACE:
			p.newline()
		}

		prev, havePrev, prevUnary = tok, true, unary
		prevEnd = tok.Start + len(tok.Literal)
	}

	p.newline()
	return p.out.String(), nil
}

// comments writes the // comments found in gap, the text between two tokens
// whose first line is line. A comment on the same line as the previous
// token stays trailing.
func (p *printer) comments(gap string, line int, trailingOK bool) {
	for {
		i := strings.Index(gap, "//")
		if i < 0 {
			return
		}
		line += strings.Count(gap[:i], "\n")
		end := strings.IndexByte(gap[i:], '\n')
		var text string
		if end < 0 {
			text, gap = gap[i:], ""
		} else {
			text, gap = gap[i:i+end], gap[i+end:]
		}
		text = strings.TrimRight(text, " \t\r")

		if trailingOK && line == p.lastLine && !p.atLineStart {
			p.out.WriteByte(' ')
		} else if trailingOK && line == p.lastLine && p.out.Len() > 0 {
			// the previous token already ended its line; keep the comment on it
			p.out.Truncate(p.out.Len() - 1)
			p.out.WriteByte(' ')
			p.atLineStart = false
		} else {
			p.newline()
			p.startLine(line)
		}
		p.out.WriteString(text)
		p.lastLine = line
		p.newline()
		trailingOK = false
	}
}

func (p *printer) startLine(line int) {
	if p.out.Len() > 0 && line-p.lastLine > 1 {
		p.out.WriteByte('\n')
	}
	for i := 0; i < p.depth; i++ {
		p.out.WriteString(p.opt.Indent)
	}
	p.atLineStart = false
}

func (p *printer) newline() {
	if p.atLineStart {
		return
	}
	p.out.WriteByte('\n')
	p.atLineStart = true
}

func isOperandEnd(t token.Type) bool {
	switch t {
	case token.NUMBER, token.STRING, token.IDENT, token.TRUE, token.FALSE,
		token.NIL, token.THIS, token.SUPER, token.RPAREN:
		return true
	}
	return false
}

func isUnary(tok, prev token.Token, havePrev bool) bool {
	switch tok.Type {
	case token.BANG:
		return true
	case token.MINUS:
		return !havePrev || !isOperandEnd(prev.Type)
	}
	return false
}

func needSpace(prev, tok token.Token, prevUnary bool) bool {
	switch tok.Type {
	case token.RPAREN, token.SEMICOLON, token.COMMA, token.DOT:
		return false
	case token.LPAREN:
		if prev.Type == token.IDENT || prev.Type == token.RPAREN {
			return false
		}
	}
	switch prev.Type {
	case token.LPAREN, token.DOT:
		return false
	}
	return !prevUnary
}
