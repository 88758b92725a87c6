package lsp

import (
	"fmt"
	"strconv"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"lox/internal/lexer"
	"lox/internal/token"
)

// HoverAt describes the token under pos: its kind and, for literals, the
// value the program would see.
func HoverAt(text string, pos protocol.Position) (*protocol.Hover, bool) {
	ls := splitLines(text)
	line, col, ok := ls.byteCol(pos)
	if !ok {
		return nil, false
	}

	lx := lexer.New(text)
	for {
		tok := lx.NextToken()
		if tok.Type == token.EOF || tok.Line > line {
			return nil, false
		}
		if tok.Line != line || col < tok.Col || col >= tok.Col+len(firstLine(tok.Literal)) {
			continue
		}
		if tok.Type == token.ILLEGAL {
			return nil, false
		}

		r := ls.span(tok.Line, tok.Col, len(firstLine(tok.Literal)))
		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: describe(tok),
			},
			Range: &r,
		}, true
	}
}

func describe(tok token.Token) string {
	switch tok.Type {
	case token.NUMBER:
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return "number"
		}
		return fmt.Sprintf("number `%s`", strconv.FormatFloat(v, 'g', -1, 64))
	case token.STRING:
		s := tok.Literal[1 : len(tok.Literal)-1]
		return fmt.Sprintf("string, %d byte(s)\n\n```\n%s\n```", len(s), s)
	case token.IDENT:
		return fmt.Sprintf("identifier `%s`", tok.Literal)
	}
	if token.IsKeyword(tok.Type) {
		return fmt.Sprintf("keyword `%s`", tok.Literal)
	}
	return fmt.Sprintf("`%s`", tok.Literal)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
