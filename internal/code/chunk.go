package code

import "lox/internal/object"

// MaxConstants is the number of constants addressable by a one-byte operand.
const MaxConstants = 256

// Chunk is a compiled unit: bytecode, one source line per byte, and the
// constant pool the bytecode indexes into.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []object.Object
}

func NewChunk() *Chunk {
	return &Chunk{}
}

// Write appends one byte produced by source line line.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// Emit appends an encoded instruction, attributing every byte to line.
func (c *Chunk) Emit(line int, op Opcode, operands ...int) int {
	pos := len(c.Code)
	for _, b := range Make(op, operands...) {
		c.Write(b, line)
	}
	return pos
}

// AddConstant appends v to the pool and returns its index. The caller is
// responsible for keeping the index within MaxConstants.
func (c *Chunk) AddConstant(v object.Object) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

func (c *Chunk) Len() int { return len(c.Code) }

// Free drops code, lines and constants.
func (c *Chunk) Free() {
	c.Code = nil
	c.Lines = nil
	c.Constants = nil
}
