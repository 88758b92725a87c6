package code

import (
	"bytes"
	"fmt"
	"io"

	"lox/internal/object"
)

// DisassembleInstruction writes the instruction at offset and returns the
// offset of the next one.
func DisassembleInstruction(w io.Writer, c *Chunk, offset int) int {
	fmt.Fprintf(w, "%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Fprint(w, "   | ")
	} else {
		fmt.Fprintf(w, "%4d ", c.Lines[offset])
	}

	op := Opcode(c.Code[offset])
	def, ok := Lookup(op)
	if !ok {
		fmt.Fprintf(w, "UNKNOWN_OPCODE %d\n", op)
		return offset + 1
	}

	if op == OpConstant {
		if offset+1 >= len(c.Code) {
			fmt.Fprintf(w, "%s <truncated>\n", def.Name)
			return len(c.Code)
		}
		idx := int(c.Code[offset+1])
		value := "<invalid>"
		if idx < len(c.Constants) {
			value = c.Constants[idx].Inspect()
		}
		fmt.Fprintf(w, "%-16s %4d '%s'\n", def.Name, idx, value)
		return offset + def.Width()
	}

	fmt.Fprintf(w, "%s\n", def.Name)
	return offset + def.Width()
}

// Disassemble writes every instruction under a "== name ==" header.
func (c *Chunk) Disassemble(w io.Writer, name string) {
	fmt.Fprintf(w, "== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = DisassembleInstruction(w, c, offset)
	}
}

func (c *Chunk) String() string {
	var out bytes.Buffer
	for offset := 0; offset < len(c.Code); {
		offset = DisassembleInstruction(&out, c, offset)
	}
	return out.String()
}

func FormatConstants(constants []object.Object) string {
	var b bytes.Buffer
	b.WriteString("== constants ==\n")
	for i, c := range constants {
		switch v := c.(type) {
		case *object.String:
			fmt.Fprintf(&b, "%04d STRING %q\n", i, v.Chars)
		default:
			fmt.Fprintf(&b, "%04d %s %s\n", i, c.Type(), c.Inspect())
		}
	}
	return b.String()
}
