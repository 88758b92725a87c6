package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"lox/internal/format"
)

// FormatEdits returns a single whole-document edit, or none when text is
// already formatted or cannot be lexed.
func FormatEdits(text string, opts protocol.FormattingOptions) []protocol.TextEdit {
	formatted, err := format.Format(text, format.Options{Indent: indentFromOptions(opts)})
	if err != nil || formatted == text {
		return []protocol.TextEdit{}
	}
	return []protocol.TextEdit{{
		Range:   splitLines(text).fullRange(),
		NewText: formatted,
	}}
}

func indentFromOptions(opts protocol.FormattingOptions) string {
	insertSpaces := true
	if v, ok := opts[protocol.FormattingOptionInsertSpaces].(bool); ok {
		insertSpaces = v
	}
	if !insertSpaces {
		return "\t"
	}

	tabSize := 2
	switch n := opts[protocol.FormattingOptionTabSize].(type) {
	case int:
		tabSize = n
	case int32:
		tabSize = int(n)
	case uint32:
		tabSize = int(n)
	case float64:
		tabSize = int(n)
	}
	if tabSize <= 0 {
		tabSize = 2
	}
	return strings.Repeat(" ", tabSize)
}
