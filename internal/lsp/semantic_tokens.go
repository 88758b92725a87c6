package lsp

import (
	"strings"

	"lox/internal/lexer"
	"lox/internal/token"
)

// SemanticTokensForText classifies every token of text. A string literal
// spanning several lines yields one token per line.
func SemanticTokensForText(text string) []SemTok {
	ls := splitLines(text)
	lx := lexer.New(text)
	sem := make([]SemTok, 0, 256)

	for {
		tok := lx.NextToken()
		if tok.Type == token.EOF {
			break
		}
		tt, ok := Classify(tok)
		if !ok {
			continue
		}

		parts := strings.Split(tok.Literal, "\n")
		for i, part := range parts {
			line, col := tok.Line+i, tok.Col
			if i > 0 {
				col = 1
			}
			if part == "" {
				continue
			}
			r := ls.span(line, col, len(part))
			sem = append(sem, SemTok{
				Line:   line,
				Col:    int(r.Start.Character) + 1,
				Length: int(r.End.Character - r.Start.Character),
				Type:   tt,
			})
		}
	}
	return sem
}
