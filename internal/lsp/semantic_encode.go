package lsp

import "sort"

// EncodeSemanticTokens produces the relative five-integer encoding of the
// protocol: delta line, delta start, length, type, modifiers.
func EncodeSemanticTokens(toks []SemTok) []uint32 {
	sort.Slice(toks, func(i, j int) bool {
		if toks[i].Line != toks[j].Line {
			return toks[i].Line < toks[j].Line
		}
		return toks[i].Col < toks[j].Col
	})

	data := make([]uint32, 0, len(toks)*5)
	prevLine, prevCol := 1, 1
	for _, t := range toks {
		if t.Length <= 0 {
			continue
		}
		deltaLine := t.Line - prevLine
		deltaStart := t.Col - 1
		if deltaLine == 0 {
			deltaStart = t.Col - prevCol
		}
		data = append(data, uint32(deltaLine), uint32(deltaStart), uint32(t.Length), uint32(t.Type), 0)
		prevLine, prevCol = t.Line, t.Col
	}
	return data
}
