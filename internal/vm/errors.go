package vm

import (
	"errors"
	"fmt"
)

var errStackOverflow = errors.New("Stack overflow.")

// RuntimeError is the error that stopped the last run.
type RuntimeError struct {
	Message string
	Line    int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Line)
}

func (m *VM) runtimeError(format string, args ...any) Result {
	line := 0
	if m.start < len(m.chunk.Lines) {
		line = m.chunk.Lines[m.start]
	}
	m.lastErr = &RuntimeError{Message: fmt.Sprintf(format, args...), Line: line}
	fmt.Fprintln(m.stderr, m.lastErr.Error())
	m.log.Infof("runtime error at line %d: %s", line, m.lastErr.Message)
	m.resetStack()
	return InterpretRuntimeError
}

// fail reports err, which came from the stack or the heap, as a runtime error.
func (m *VM) fail(err error) Result {
	return m.runtimeError("%s", err.Error())
}
