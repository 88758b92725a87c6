package compiler

import (
	"fmt"
	"io"

	"lox/internal/code"
)

func dumpChunk(w io.Writer, c *code.Chunk, name string) {
	fmt.Fprint(w, code.FormatConstants(c.Constants))
	c.Disassemble(w, name)
}
