// Package vm executes compiled chunks on a fixed-size value stack.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"lox/internal/code"
	"lox/internal/compiler"
	"lox/internal/diag"
	"lox/internal/heap"
	"lox/internal/limits"
	"lox/internal/object"
)

const StackMax = 256

type Result int

const (
	InterpretOK Result = iota
	InterpretCompileError
	InterpretRuntimeError
)

func (r Result) String() string {
	switch r {
	case InterpretOK:
		return "ok"
	case InterpretCompileError:
		return "compile error"
	case InterpretRuntimeError:
		return "runtime error"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

type Options struct {
	Stdout io.Writer // program output; os.Stdout when nil
	Stderr io.Writer // compile and runtime errors; os.Stderr when nil

	Trace    bool // print the stack and each instruction before executing it
	DumpCode bool // disassemble every successfully compiled chunk

	MaxMemory int64 // heap byte ceiling, 0 for unlimited
	MaxSteps  int64 // instruction ceiling per Execute, 0 for unlimited
}

type VM struct {
	chunk *code.Chunk
	ip    int
	start int // offset of the instruction being executed

	stack      [StackMax]object.Object
	sp         int
	lastPopped object.Object

	heap   *heap.Heap
	budget *limits.Budget
	steps  int64

	stdout io.Writer
	stderr io.Writer
	opts   Options

	lastErr *RuntimeError
	diags   []diag.Diagnostic

	log commonlog.Logger
}

func New(opts Options) *VM {
	m := &VM{
		opts:   opts,
		stdout: opts.Stdout,
		stderr: opts.Stderr,
		budget: limits.NewBudget(opts.MaxMemory),
		log:    commonlog.GetLogger("lox.vm"),
	}
	if m.stdout == nil {
		m.stdout = os.Stdout
	}
	if m.stderr == nil {
		m.stderr = os.Stderr
	}
	m.heap = heap.New(m.budget)
	return m
}

func (m *VM) Heap() *heap.Heap { return m.heap }

// Diagnostics returns the compile errors of the last Interpret call.
func (m *VM) Diagnostics() []diag.Diagnostic { return m.diags }

// LastError returns the runtime error of the last run, or nil.
func (m *VM) LastError() *RuntimeError { return m.lastErr }

func (m *VM) LastPoppedStackElem() object.Object { return m.lastPopped }

// Interpret compiles source against this VM's heap and runs it. Strings
// interned by earlier calls stay interned.
func (m *VM) Interpret(source string) Result {
	c := compiler.New(source, m.heap, compiler.Options{
		DumpCode: m.opts.DumpCode,
		Dump:     m.stdout,
		Errors:   m.stderr,
	})
	ok := c.Compile()
	m.diags = c.Diagnostics()
	if !ok {
		m.log.Debugf("compile failed with %d diagnostic(s)", len(m.diags))
		return InterpretCompileError
	}
	return m.Execute(c.Chunk())
}

// Execute runs an already compiled chunk from its first instruction.
func (m *VM) Execute(chunk *code.Chunk) Result {
	m.chunk = chunk
	m.ip = 0
	m.steps = 0
	m.lastErr = nil
	m.resetStack()
	return m.run()
}

// Free releases every heap object and the intern table. The VM can be used
// again afterwards.
func (m *VM) Free() {
	stats := m.heap.Stats()
	n := m.heap.Free()
	m.log.Debugf("freed %d object(s), %d interned, %d byte(s)", n, stats.Interned, stats.Bytes)
	m.resetStack()
	m.lastPopped = nil
	m.chunk = nil
}

func (m *VM) resetStack() {
	for i := 0; i < m.sp; i++ {
		m.stack[i] = nil
	}
	m.sp = 0
}

func (m *VM) push(o object.Object) error {
	if m.sp >= StackMax {
		return errStackOverflow
	}
	m.stack[m.sp] = o
	m.sp++
	return nil
}

func (m *VM) pop() object.Object {
	m.sp--
	o := m.stack[m.sp]
	m.stack[m.sp] = nil
	m.lastPopped = o
	return o
}

func (m *VM) peek(distance int) object.Object {
	return m.stack[m.sp-1-distance]
}

func (m *VM) readByte() byte {
	b := m.chunk.Code[m.ip]
	m.ip++
	return b
}

func (m *VM) run() Result {
	for m.ip < len(m.chunk.Code) {
		m.start = m.ip
		if m.opts.Trace {
			m.traceInstruction()
		}
		if m.opts.MaxSteps > 0 {
			m.steps++
			if m.steps > m.opts.MaxSteps {
				return m.runtimeError("Instruction limit exceeded (%d).", m.opts.MaxSteps)
			}
		}

		op := code.Opcode(m.readByte())
		if needs, _ := code.StackEffect(op); m.sp < needs {
			return m.runtimeError("Stack underflow.")
		}

		switch op {
		case code.OpConstant:
			idx := int(m.readByte())
			if err := m.push(m.chunk.Constants[idx]); err != nil {
				return m.fail(err)
			}

		case code.OpNil:
			if err := m.push(object.Null); err != nil {
				return m.fail(err)
			}

		case code.OpTrue:
			if err := m.push(object.True); err != nil {
				return m.fail(err)
			}

		case code.OpFalse:
			if err := m.push(object.False); err != nil {
				return m.fail(err)
			}

		case code.OpPop:
			m.pop()

		case code.OpEqual:
			b := m.pop()
			a := m.pop()
			m.push(object.NativeBool(object.Equal(a, b)))

		case code.OpGreater, code.OpLess, code.OpSubtract, code.OpMultiply, code.OpDivide:
			if r, failed := m.binaryNumberOp(op); failed {
				return r
			}

		case code.OpAdd:
			if r, failed := m.add(); failed {
				return r
			}

		case code.OpNot:
			m.push(object.NativeBool(object.IsFalsey(m.pop())))

		case code.OpNegate:
			n, ok := m.peek(0).(object.Number)
			if !ok {
				return m.runtimeError("Operand must be a number.")
			}
			m.pop()
			m.push(object.Number{Value: -n.Value})

		case code.OpPrint:
			m.printValue(m.pop())

		case code.OpReturn:
			m.printValue(m.pop())
			return InterpretOK

		default:
			return m.runtimeError("Unknown opcode %d.", byte(op))
		}
	}
	return InterpretOK
}

// binaryNumberOp handles the operators defined only on numbers. Operand
// types are checked before anything is popped.
func (m *VM) binaryNumberOp(op code.Opcode) (Result, bool) {
	b, okB := m.peek(0).(object.Number)
	a, okA := m.peek(1).(object.Number)
	if !okA || !okB {
		return m.runtimeError("Operands must be numbers."), true
	}
	m.pop()
	m.pop()

	var out object.Object
	switch op {
	case code.OpGreater:
		out = object.NativeBool(a.Value > b.Value)
	case code.OpLess:
		out = object.NativeBool(a.Value < b.Value)
	case code.OpSubtract:
		out = object.Number{Value: a.Value - b.Value}
	case code.OpMultiply:
		out = object.Number{Value: a.Value * b.Value}
	case code.OpDivide:
		out = object.Number{Value: a.Value / b.Value}
	}
	m.push(out)
	return InterpretOK, false
}

// add concatenates two strings or sums two numbers.
func (m *VM) add() (Result, bool) {
	if bs, ok := m.peek(0).(*object.String); ok {
		if as, ok := m.peek(1).(*object.String); ok {
			return m.concatenate(as, bs)
		}
	}

	b, okB := m.peek(0).(object.Number)
	a, okA := m.peek(1).(object.Number)
	if !okA || !okB {
		return m.runtimeError("Operands must be two numbers or two strings."), true
	}
	m.pop()
	m.pop()
	m.push(object.Number{Value: a.Value + b.Value})
	return InterpretOK, false
}

func (m *VM) concatenate(a, b *object.String) (Result, bool) {
	buf := make([]byte, 0, len(a.Chars)+len(b.Chars))
	buf = append(buf, a.Chars...)
	buf = append(buf, b.Chars...)

	s, err := m.heap.TakeString(buf)
	if err != nil {
		return m.fail(err), true
	}
	m.pop()
	m.pop()
	m.push(s)
	return InterpretOK, false
}

func (m *VM) printValue(v object.Object) {
	fmt.Fprintln(m.stdout, v.Inspect())
}

func (m *VM) traceInstruction() {
	fmt.Fprint(m.stdout, "          ")
	for i := 0; i < m.sp; i++ {
		fmt.Fprintf(m.stdout, "[ %s ]", m.stack[i].Inspect())
	}
	fmt.Fprintln(m.stdout)
	code.DisassembleInstruction(m.stdout, m.chunk, m.ip)
}
