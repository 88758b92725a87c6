package code

import "fmt"

type Opcode byte

const (
	OpConstant Opcode = iota // push constants[operand]
	OpNil
	OpTrue
	OpFalse
	OpPop

	OpEqual
	OpGreater
	OpLess

	OpAdd
	OpSubtract
	OpMultiply
	OpDivide

	OpNot
	OpNegate

	OpPrint  // pop and print with a newline
	OpReturn // pop, print with a newline and halt
)

type Definition struct {
	Name          string
	OperandWidths []int
}

var definitions = map[Opcode]*Definition{
	OpConstant: {"OpConstant", []int{1}},
	OpNil:      {"OpNil", nil},
	OpTrue:     {"OpTrue", nil},
	OpFalse:    {"OpFalse", nil},
	OpPop:      {"OpPop", nil},
	OpEqual:    {"OpEqual", nil},
	OpGreater:  {"OpGreater", nil},
	OpLess:     {"OpLess", nil},
	OpAdd:      {"OpAdd", nil},
	OpSubtract: {"OpSubtract", nil},
	OpMultiply: {"OpMultiply", nil},
	OpDivide:   {"OpDivide", nil},
	OpNot:      {"OpNot", nil},
	OpNegate:   {"OpNegate", nil},
	OpPrint:    {"OpPrint", nil},
	OpReturn:   {"OpReturn", nil},
}

func Lookup(op Opcode) (*Definition, bool) {
	def, ok := definitions[op]
	return def, ok
}

func (op Opcode) String() string {
	if def, ok := definitions[op]; ok {
		return def.Name
	}
	return fmt.Sprintf("Opcode(%d)", byte(op))
}

// Width is the encoded size of the instruction, opcode byte included.
func (d *Definition) Width() int {
	n := 1
	for _, w := range d.OperandWidths {
		n += w
	}
	return n
}

// Make encodes one instruction.
func Make(op Opcode, operands ...int) []byte {
	def, ok := definitions[op]
	if !ok {
		return nil
	}

	ins := make([]byte, def.Width())
	ins[0] = byte(op)

	offset := 1
	for i, o := range operands {
		w := def.OperandWidths[i]
		switch w {
		case 1:
			ins[offset] = byte(o)
		default:
			panic("unsupported operand width")
		}
		offset += w
	}
	return ins
}

// StackEffect gives how many values an instruction needs on the stack and
// how it changes the depth.
func StackEffect(op Opcode) (needs, delta int) {
	switch op {
	case OpConstant, OpNil, OpTrue, OpFalse:
		return 0, 1
	case OpPop, OpPrint, OpReturn:
		return 1, -1
	case OpEqual, OpGreater, OpLess, OpAdd, OpSubtract, OpMultiply, OpDivide:
		return 2, -1
	case OpNot, OpNegate:
		return 1, 0
	}
	return 0, 0
}
