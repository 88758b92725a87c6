package code

import (
	"bytes"
	"testing"

	"lox/internal/object"
)

func TestDisassemble(t *testing.T) {
	c := NewChunk()
	c.Emit(123, OpConstant, c.AddConstant(object.Number{Value: 1.2}))
	c.Emit(123, OpNegate)
	c.Emit(124, OpConstant, c.AddConstant(newString("hi")))
	c.Emit(124, OpPrint)
	c.Emit(125, OpReturn)

	var out bytes.Buffer
	c.Disassemble(&out, "test")

	expected := `== test ==
0000  123 OpConstant          0 '1.2'
0002    | OpNegate
0003  124 OpConstant          1 'hi'
0005    | OpPrint
0006  125 OpReturn
`
	if out.String() != expected {
		t.Fatalf("wrong disassembly.\nwant=%q\ngot =%q", expected, out.String())
	}
}

func TestDisassembleInstructionOffsets(t *testing.T) {
	c := NewChunk()
	c.Emit(1, OpConstant, c.AddConstant(object.Number{Value: 3}))
	c.Emit(1, OpPop)
	c.Write(200, 1)

	var out bytes.Buffer
	if next := DisassembleInstruction(&out, c, 0); next != 2 {
		t.Fatalf("expected next offset 2, got %d", next)
	}
	if next := DisassembleInstruction(&out, c, 2); next != 3 {
		t.Fatalf("expected next offset 3, got %d", next)
	}
	out.Reset()
	if next := DisassembleInstruction(&out, c, 3); next != 4 {
		t.Fatalf("expected next offset 4, got %d", next)
	}
	if out.String() != "0003    | UNKNOWN_OPCODE 200\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestFormatConstants(t *testing.T) {
	got := FormatConstants([]object.Object{object.Number{Value: 2}, newString("a b"), object.True})
	expected := "== constants ==\n0000 NUMBER 2\n0001 STRING \"a b\"\n0002 BOOLEAN true\n"
	if got != expected {
		t.Fatalf("want=%q got=%q", expected, got)
	}
}

func newString(chars string) *object.String {
	return &object.String{Chars: chars, Hash: object.HashString(chars)}
}
