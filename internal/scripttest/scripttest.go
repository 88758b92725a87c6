// Package scripttest runs annotated .lox scripts end to end and checks their
// output. Expectations live in comments:
//
//	print 1 + 2; // expect: 3
//	print -nil;  // expect runtime error: Operand must be a number.
//	print ;      // Error at ';': Expect expression.
//	// [line 3] Error at end: Expect ';' after value.
//
// Each script runs twice: compiled and executed in one VM, and round-tripped
// through a chunk image into a fresh VM.
package scripttest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"testing"

	"lox/internal/code"
	"lox/internal/compiler"
	"lox/internal/heap"
	"lox/internal/vm"
)

type Mode string

const (
	ModeSource Mode = "source"
	ModeImage  Mode = "image"
)

var Modes = []Mode{ModeSource, ModeImage}

type Expectation struct {
	Stdout        string
	CompileErrors []string // full report lines, "[line N] Error..."
	RuntimeError  string   // "msg\n[line N] in script"
}

type Result struct {
	Stdout string
	Stderr string
	Status vm.Result
}

var (
	expectOutput  = regexp.MustCompile(`// expect: ?(.*)$`)
	expectRuntime = regexp.MustCompile(`// expect runtime error: (.+)$`)
	expectError   = regexp.MustCompile(`// (Error.*)$`)
	expectLineErr = regexp.MustCompile(`// \[line (\d+)\] (Error.*)$`)
)

// Parse collects the expectations annotated in src.
func Parse(src string) Expectation {
	var exp Expectation
	var out strings.Builder
	for i, line := range strings.Split(src, "\n") {
		lineNo := i + 1
		if m := expectOutput.FindStringSubmatch(line); m != nil {
			out.WriteString(m[1])
			out.WriteByte('\n')
			continue
		}
		if m := expectRuntime.FindStringSubmatch(line); m != nil {
			exp.RuntimeError = fmt.Sprintf("%s\n[line %d] in script", m[1], lineNo)
			continue
		}
		if m := expectLineErr.FindStringSubmatch(line); m != nil {
			exp.CompileErrors = append(exp.CompileErrors, fmt.Sprintf("[line %s] %s", m[1], m[2]))
			continue
		}
		if m := expectError.FindStringSubmatch(line); m != nil {
			exp.CompileErrors = append(exp.CompileErrors, fmt.Sprintf("[line %d] %s", lineNo, m[1]))
		}
	}
	exp.Stdout = out.String()
	return exp
}

// Run executes src in the given mode. Writers in opts are replaced.
func Run(t *testing.T, mode Mode, src string, opts vm.Options) Result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	opts.Stdout = &stdout
	opts.Stderr = &stderr

	var status vm.Result
	switch mode {
	case ModeSource:
		m := vm.New(opts)
		status = m.Interpret(src)
		m.Free()
	case ModeImage:
		status = runImage(t, src, opts)
	default:
		t.Fatalf("unknown mode: %q", mode)
	}

	return Result{Stdout: stdout.String(), Stderr: stderr.String(), Status: status}
}

func runImage(t *testing.T, src string, opts vm.Options) vm.Result {
	t.Helper()

	chunk, ok := compiler.Compile(src, heap.New(nil), compiler.Options{Errors: opts.Stderr})
	if !ok {
		return vm.InterpretCompileError
	}
	data, err := code.MarshalChunk(chunk)
	if err != nil {
		t.Fatalf("marshal chunk: %v", err)
	}

	m := vm.New(opts)
	defer m.Free()
	loaded, err := code.UnmarshalChunk(data, m.Heap())
	if err != nil {
		t.Fatalf("unmarshal chunk: %v", err)
	}
	return m.Execute(loaded)
}

func Assert(t *testing.T, res Result, exp Expectation) {
	t.Helper()

	if res.Stdout != exp.Stdout {
		t.Fatalf("stdout mismatch.\nexpected=%q\ngot=%q", exp.Stdout, res.Stdout)
	}

	switch {
	case len(exp.CompileErrors) > 0:
		if res.Status != vm.InterpretCompileError {
			t.Fatalf("expected compile error, got %s (stderr %q)", res.Status, res.Stderr)
		}
		want := strings.Join(exp.CompileErrors, "\n") + "\n"
		if res.Stderr != want {
			t.Fatalf("compile errors mismatch.\nexpected=%q\ngot=%q", want, res.Stderr)
		}
	case exp.RuntimeError != "":
		if res.Status != vm.InterpretRuntimeError {
			t.Fatalf("expected runtime error, got %s (stderr %q)", res.Status, res.Stderr)
		}
		if res.Stderr != exp.RuntimeError+"\n" {
			t.Fatalf("runtime error mismatch.\nexpected=%q\ngot=%q", exp.RuntimeError+"\n", res.Stderr)
		}
	default:
		if res.Status != vm.InterpretOK {
			t.Fatalf("unexpected %s: %q", res.Status, res.Stderr)
		}
	}
}

// RunDir runs every .lox script under dir as a subtest per mode.
func RunDir(t *testing.T, dir string, opts vm.Options) {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join(dir, "*.lox"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(paths) == 0 {
		t.Fatalf("no scripts in %s", dir)
	}
	sort.Strings(paths)

	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		src := string(b)
		exp := Parse(src)
		name := strings.TrimSuffix(filepath.Base(path), ".lox")
		for _, mode := range Modes {
			t.Run(name+"/"+string(mode), func(t *testing.T) {
				Assert(t, Run(t, mode, src, opts), exp)
			})
		}
	}
}
