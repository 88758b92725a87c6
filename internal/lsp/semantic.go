package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"lox/internal/token"
)

// semantic token type indices, in legend order
const (
	ttKeyword = iota
	ttString
	ttNumber
	ttOperator
	ttVariable
)

type SemTok struct {
	Line   int
	Col    int
	Length int // UTF-16 code units
	Type   int
}

func Legend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes: []string{
			string(protocol.SemanticTokenTypeKeyword),
			string(protocol.SemanticTokenTypeString),
			string(protocol.SemanticTokenTypeNumber),
			string(protocol.SemanticTokenTypeOperator),
			string(protocol.SemanticTokenTypeVariable),
		},
		TokenModifiers: []string{},
	}
}

func Classify(tok token.Token) (int, bool) {
	if token.IsKeyword(tok.Type) {
		return ttKeyword, true
	}

	switch tok.Type {
	case token.STRING:
		return ttString, true
	case token.NUMBER:
		return ttNumber, true
	case token.ASSIGN, token.PLUS, token.MINUS, token.STAR, token.SLASH, token.BANG,
		token.EQ, token.NE, token.LT, token.LE, token.GT, token.GE, token.DOT:
		return ttOperator, true
	case token.IDENT:
		return ttVariable, true
	}
	return 0, false
}
