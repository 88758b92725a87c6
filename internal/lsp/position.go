package lsp

import (
	"strings"
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// lines holds a document split on '\n' so byte columns reported by the lexer
// can be turned into the UTF-16 columns the protocol expects.
type lines []string

func splitLines(text string) lines {
	return strings.Split(text, "\n")
}

func (ls lines) line(line1 int) (string, bool) {
	if line1 <= 0 || line1 > len(ls) {
		return "", false
	}
	return ls[line1-1], true
}

// position converts a 1-based line and byte column into an LSP position.
func (ls lines) position(line1, col1 int) protocol.Position {
	p := protocol.Position{}
	if line1 > 0 {
		p.Line = uint32(line1 - 1)
	}
	if text, ok := ls.line(line1); ok {
		p.Character = byteColToUTF16(text, col1)
	} else if col1 > 0 {
		p.Character = uint32(col1 - 1)
	}
	return p
}

// span is the range starting at (line1, col1) covering n bytes, clipped to
// the end of that line and never empty.
func (ls lines) span(line1, col1, n int) protocol.Range {
	start := ls.position(line1, col1)
	end := start
	if text, ok := ls.line(line1); ok && col1 > 0 {
		endCol := col1 + n
		if endCol > len(text)+1 {
			endCol = len(text) + 1
		}
		end.Character = byteColToUTF16(text, endCol)
	} else {
		end.Character = start.Character + uint32(n)
	}
	if end.Character <= start.Character {
		end.Character = start.Character + 1
	}
	return protocol.Range{Start: start, End: end}
}

// byteCol returns the 1-based byte column for an LSP position.
func (ls lines) byteCol(pos protocol.Position) (line1, col1 int, ok bool) {
	text, ok := ls.line(int(pos.Line) + 1)
	if !ok {
		return 0, 0, false
	}
	return int(pos.Line) + 1, utf16ColToByte(text, int(pos.Character)), true
}

func byteColToUTF16(lineText string, byteCol int) uint32 {
	if byteCol <= 1 {
		return 0
	}
	limit := byteCol - 1
	if limit > len(lineText) {
		limit = len(lineText)
	}
	var count uint32
	for _, r := range lineText[:limit] {
		count += uint32(runeLen16(r))
	}
	return count
}

func utf16ColToByte(lineText string, utf16Col int) int {
	if utf16Col <= 0 {
		return 1
	}
	count := 0
	for idx, r := range lineText {
		n := runeLen16(r)
		if count+n > utf16Col {
			return idx + 1
		}
		count += n
	}
	return len(lineText) + 1
}

func runeLen16(r rune) int {
	n := utf16.RuneLen(r)
	if n < 0 {
		return 1
	}
	return n
}

// fullRange covers the whole document.
func (ls lines) fullRange() protocol.Range {
	last := ls[len(ls)-1]
	return protocol.Range{
		Start: protocol.Position{},
		End: protocol.Position{
			Line:      uint32(len(ls) - 1),
			Character: byteColToUTF16(last, len(last)+1),
		},
	}
}
