package code

import (
	"testing"

	"lox/internal/object"
)

func TestMake(t *testing.T) {
	tests := []struct {
		op       Opcode
		operands []int
		expected []byte
	}{
		{OpConstant, []int{254}, []byte{byte(OpConstant), 254}},
		{OpAdd, []int{}, []byte{byte(OpAdd)}},
		{OpReturn, nil, []byte{byte(OpReturn)}},
	}

	for _, tt := range tests {
		instruction := Make(tt.op, tt.operands...)

		if len(instruction) != len(tt.expected) {
			t.Fatalf("instruction has wrong length. want=%d, got=%d", len(tt.expected), len(instruction))
		}
		for i, b := range tt.expected {
			if instruction[i] != b {
				t.Fatalf("wrong byte at pos %d. want=%d, got=%d", i, b, instruction[i])
			}
		}
	}
}

func TestEveryOpcodeHasDefinition(t *testing.T) {
	for op := OpConstant; op <= OpReturn; op++ {
		def, ok := Lookup(op)
		if !ok {
			t.Fatalf("opcode %d has no definition", op)
		}
		if op.String() != def.Name {
			t.Fatalf("String() mismatch: %q vs %q", op.String(), def.Name)
		}
	}
	if _, ok := Lookup(OpReturn + 1); ok {
		t.Fatal("unexpected definition past OpReturn")
	}
}

func TestChunkWriteKeepsLinesParallel(t *testing.T) {
	c := NewChunk()
	idx := c.AddConstant(object.Number{Value: 1.2})
	if idx != 0 {
		t.Fatalf("expected first constant at 0, got %d", idx)
	}
	c.Emit(1, OpConstant, idx)
	c.Write(byte(OpNegate), 2)
	c.Emit(2, OpReturn)

	if len(c.Code) != len(c.Lines) {
		t.Fatalf("len(code)=%d len(lines)=%d", len(c.Code), len(c.Lines))
	}
	wantLines := []int{1, 1, 2, 2}
	for i, l := range wantLines {
		if c.Lines[i] != l {
			t.Fatalf("lines[%d] expected=%d got=%d", i, l, c.Lines[i])
		}
	}
	if c.AddConstant(object.Null) != 1 {
		t.Fatal("expected second constant at 1")
	}

	c.Free()
	if c.Len() != 0 || len(c.Lines) != 0 || len(c.Constants) != 0 {
		t.Fatal("expected empty chunk after Free")
	}
}
