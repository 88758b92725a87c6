package compiler

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"lox/internal/code"
	"lox/internal/diag"
	"lox/internal/heap"
	"lox/internal/limits"
	"lox/internal/object"
)

type compilerTestCase struct {
	input                string
	expectedConstants    []any
	expectedInstructions [][]byte
}

func concatInstructions(s [][]byte) []byte {
	var out []byte
	for _, ins := range s {
		out = append(out, ins...)
	}
	return out
}

func runCompilerTests(t *testing.T, tests []compilerTestCase) {
	t.Helper()
	for _, tt := range tests {
		h := heap.New(nil)
		chunk, ok := Compile(tt.input, h, Options{})
		if !ok {
			t.Fatalf("compile failed for %q", tt.input)
		}

		want := concatInstructions(tt.expectedInstructions)
		if !bytes.Equal(chunk.Code, want) {
			t.Fatalf("wrong instructions for %q.\nwant=\n%s\ngot=\n%s", tt.input,
				(&code.Chunk{Code: want, Lines: make([]int, len(want)), Constants: chunk.Constants}).String(),
				chunk.String())
		}
		if len(chunk.Lines) != len(chunk.Code) {
			t.Fatalf("lines out of step with code: %d vs %d", len(chunk.Lines), len(chunk.Code))
		}
		testConstants(t, tt.input, tt.expectedConstants, chunk.Constants)
	}
}

func testConstants(t *testing.T, input string, expected []any, actual []object.Object) {
	t.Helper()
	if len(expected) != len(actual) {
		t.Fatalf("wrong number of constants for %q. expected=%d got=%d", input, len(expected), len(actual))
	}
	for i, want := range expected {
		switch want := want.(type) {
		case float64:
			n, ok := actual[i].(object.Number)
			if !ok || n.Value != want {
				t.Fatalf("constant %d for %q: expected=%v got=%#v", i, input, want, actual[i])
			}
		case string:
			s, ok := actual[i].(*object.String)
			if !ok || s.Chars != want {
				t.Fatalf("constant %d for %q: expected=%q got=%#v", i, input, want, actual[i])
			}
		}
	}
}

func TestArithmetic(t *testing.T) {
	tests := []compilerTestCase{
		{
			input:             "1 + 2 * 3;",
			expectedConstants: []any{1.0, 2.0, 3.0},
			expectedInstructions: [][]byte{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpConstant, 2),
				code.Make(code.OpMultiply),
				code.Make(code.OpAdd),
				code.Make(code.OpPop),
			},
		},
		{
			input:             "1 - 2 - 3;",
			expectedConstants: []any{1.0, 2.0, 3.0},
			expectedInstructions: [][]byte{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpSubtract),
				code.Make(code.OpConstant, 2),
				code.Make(code.OpSubtract),
				code.Make(code.OpPop),
			},
		},
		{
			input:             "(1 + 2) / 4;",
			expectedConstants: []any{1.0, 2.0, 4.0},
			expectedInstructions: [][]byte{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpAdd),
				code.Make(code.OpConstant, 2),
				code.Make(code.OpDivide),
				code.Make(code.OpPop),
			},
		},
		{
			input:             "-1.5;",
			expectedConstants: []any{1.5},
			expectedInstructions: [][]byte{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpNegate),
				code.Make(code.OpPop),
			},
		},
		{
			input:             "--2;",
			expectedConstants: []any{2.0},
			expectedInstructions: [][]byte{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpNegate),
				code.Make(code.OpNegate),
				code.Make(code.OpPop),
			},
		},
	}
	runCompilerTests(t, tests)
}

func TestComparisonDesugaring(t *testing.T) {
	tests := []compilerTestCase{
		{
			input:             "1 != 2;",
			expectedConstants: []any{1.0, 2.0},
			expectedInstructions: [][]byte{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpEqual),
				code.Make(code.OpNot),
				code.Make(code.OpPop),
			},
		},
		{
			input:             "1 >= 2;",
			expectedConstants: []any{1.0, 2.0},
			expectedInstructions: [][]byte{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpLess),
				code.Make(code.OpNot),
				code.Make(code.OpPop),
			},
		},
		{
			input:             "1 <= 2;",
			expectedConstants: []any{1.0, 2.0},
			expectedInstructions: [][]byte{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpGreater),
				code.Make(code.OpNot),
				code.Make(code.OpPop),
			},
		},
		{
			input:             "1 < 2 == true;",
			expectedConstants: []any{1.0, 2.0},
			expectedInstructions: [][]byte{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpLess),
				code.Make(code.OpTrue),
				code.Make(code.OpEqual),
				code.Make(code.OpPop),
			},
		},
		{
			input:             "!nil == !false;",
			expectedConstants: []any{},
			expectedInstructions: [][]byte{
				code.Make(code.OpNil),
				code.Make(code.OpNot),
				code.Make(code.OpFalse),
				code.Make(code.OpNot),
				code.Make(code.OpEqual),
				code.Make(code.OpPop),
			},
		},
	}
	runCompilerTests(t, tests)
}

func TestStatements(t *testing.T) {
	tests := []compilerTestCase{
		{
			input:             `print "a" + 'b';`,
			expectedConstants: []any{"a", "b"},
			expectedInstructions: [][]byte{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpConstant, 1),
				code.Make(code.OpAdd),
				code.Make(code.OpPrint),
			},
		},
		{
			input:             "return;",
			expectedConstants: []any{},
			expectedInstructions: [][]byte{
				code.Make(code.OpNil),
				code.Make(code.OpReturn),
			},
		},
		{
			input:             "return 1;",
			expectedConstants: []any{1.0},
			expectedInstructions: [][]byte{
				code.Make(code.OpConstant, 0),
				code.Make(code.OpReturn),
			},
		},
		{
			input:                "",
			expectedConstants:    []any{},
			expectedInstructions: nil,
		},
	}
	runCompilerTests(t, tests)
}

func TestStringLiteralsAreInterned(t *testing.T) {
	h := heap.New(nil)
	chunk, ok := Compile(`"x"; "x"; "y";`, h, Options{})
	if !ok {
		t.Fatal("compile failed")
	}
	if len(chunk.Constants) != 3 {
		t.Fatalf("expected 3 constants, got %d", len(chunk.Constants))
	}
	if chunk.Constants[0] != chunk.Constants[1] {
		t.Fatalf("equal literals should share one object")
	}
	if h.Len() != 2 {
		t.Fatalf("expected 2 heap strings, got %d", h.Len())
	}
}

func TestLinesFollowSource(t *testing.T) {
	chunk, ok := Compile("1 +\n2;\nprint 3;", heap.New(nil), Options{})
	if !ok {
		t.Fatal("compile failed")
	}
	// OpConstant 0 (line 1), OpConstant 1 (line 2), OpAdd (line 1), OpPop (line 2),
	// OpConstant 2 (line 3), OpPrint (line 3)
	want := []int{1, 1, 2, 2, 1, 2, 3, 3, 3}
	if fmt.Sprint(chunk.Lines) != fmt.Sprint(want) {
		t.Fatalf("wrong lines. expected=%v got=%v", want, chunk.Lines)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"1 +;", []string{"[line 1] Error at ';': Expect expression."}},
		{"(1;", []string{"[line 1] Error at ';': Expect ')' after expression."}},
		{"print 1", []string{"[line 1] Error at end: Expect ';' after value."}},
		{"1", []string{"[line 1] Error at end: Expect ';' after expression."}},
		{"return 1 2;", []string{"[line 1] Error at '2': Expect ';' after return value."}},
		{"x;", []string{"[line 1] Error at 'x': Expect expression."}},
		{"\n\"abc", []string{"[line 2] Error: Unterminated string."}},
		{"1 # 2;", []string{"[line 1] Error: Unexpected character."}},
		{
			"1 +;\nprint ;\nprint 2;",
			[]string{
				"[line 1] Error at ';': Expect expression.",
				"[line 2] Error at ';': Expect expression.",
			},
		},
		{
			// one report per statement even when the statement is badly broken
			"1 + + + ;",
			[]string{"[line 1] Error at '+': Expect expression."},
		},
	}

	for _, tt := range tests {
		var errs bytes.Buffer
		_, ok := Compile(tt.input, heap.New(nil), Options{Errors: &errs})
		if ok {
			t.Fatalf("expected compile error for %q", tt.input)
		}
		got := strings.Split(strings.TrimSpace(errs.String()), "\n")
		if strings.Join(got, "\n") != strings.Join(tt.expected, "\n") {
			t.Fatalf("wrong errors for %q.\nexpected=%q\ngot=%q", tt.input, tt.expected, got)
		}
	}
}

func TestDiagnosticsCarryCodesAndPositions(t *testing.T) {
	c := New("print 1;\n  1 +;", heap.New(nil), Options{})
	if c.Compile() {
		t.Fatal("expected failure")
	}
	diags := c.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	d := diags[0]
	if d.Code != diag.CodeSyntax || d.Range.Line != 2 || d.Range.Col != 6 {
		t.Fatalf("unexpected diagnostic %+v", d)
	}

	c = New(`"oops`, heap.New(nil), Options{})
	c.Compile()
	if got := c.Diagnostics()[0].Code; got != diag.CodeLexical {
		t.Fatalf("expected lexical code, got %q", got)
	}
}

func TestTooManyConstants(t *testing.T) {
	var src strings.Builder
	for i := 0; i < code.MaxConstants; i++ {
		fmt.Fprintf(&src, "%d;", i)
	}

	chunk, ok := Compile(src.String(), heap.New(nil), Options{})
	if !ok {
		t.Fatal("256 constants should fit")
	}
	if len(chunk.Constants) != code.MaxConstants {
		t.Fatalf("expected %d constants, got %d", code.MaxConstants, len(chunk.Constants))
	}

	src.WriteString("256;")
	var errs bytes.Buffer
	c := New(src.String(), heap.New(nil), Options{Errors: &errs})
	if c.Compile() {
		t.Fatal("expected constant overflow")
	}
	if !strings.Contains(errs.String(), "Error at '256': Too many constants in one chunk.") {
		t.Fatalf("unexpected errors %q", errs.String())
	}
	if c.Diagnostics()[0].Code != diag.CodeTooManyConsts {
		t.Fatalf("expected %s, got %s", diag.CodeTooManyConsts, c.Diagnostics()[0].Code)
	}
	if len(c.Chunk().Constants) != code.MaxConstants {
		t.Fatalf("pool grew past the limit: %d", len(c.Chunk().Constants))
	}
}

func TestStringOverMemoryBudget(t *testing.T) {
	h := heap.New(limits.NewBudget(object.CostString(3)))
	c := New(`"abc"; "defg";`, h, Options{})
	if c.Compile() {
		t.Fatal("expected memory failure")
	}
	if got := c.Diagnostics()[0].Code; got != diag.CodeMemory {
		t.Fatalf("expected %s, got %s", diag.CodeMemory, got)
	}
}

func TestDumpCode(t *testing.T) {
	var out bytes.Buffer
	_, ok := Compile("print 1;", heap.New(nil), Options{DumpCode: true, Dump: &out})
	if !ok {
		t.Fatal("compile failed")
	}
	expected := "== constants ==\n" +
		"0000 NUMBER 1\n" +
		"== code ==\n" +
		"0000    1 OpConstant          0 '1'\n" +
		"0002    | OpPrint\n"
	if out.String() != expected {
		t.Fatalf("wrong dump.\nexpected=%q\ngot=%q", expected, out.String())
	}

	out.Reset()
	Compile("print ;", heap.New(nil), Options{DumpCode: true, Dump: &out})
	if out.Len() != 0 {
		t.Fatalf("failed compile should not dump, got %q", out.String())
	}
}
