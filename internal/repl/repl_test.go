package repl

import (
	"bytes"
	"strings"
	"testing"
)

func TestStartRunsEachLine(t *testing.T) {
	in := strings.NewReader("print 1 + 2;\nprint \"a\" + 'b';\n")
	var out bytes.Buffer
	Start(in, &out, Config{})

	if out.String() != "3\nab\n" {
		t.Fatalf("expected=%q got=%q", "3\nab\n", out.String())
	}
}

func TestStartContinuesAfterErrors(t *testing.T) {
	in := strings.NewReader("print ;\nprint -nil;\nprint 4;\n")
	var out bytes.Buffer
	Start(in, &out, Config{})

	expected := "[line 1] Error at ';': Expect expression.\n" +
		"Operand must be a number.\n[line 1] in script\n" +
		"4\n"
	if out.String() != expected {
		t.Fatalf("expected=%q got=%q", expected, out.String())
	}
}

func TestStartJoinsOpenLines(t *testing.T) {
	in := strings.NewReader("print (1 +\n2);\nprint \"x\n y\";\n")
	var out bytes.Buffer
	Start(in, &out, Config{})

	if out.String() != "3\nx\n y\n" {
		t.Fatalf("expected=%q got=%q", "3\nx\n y\n", out.String())
	}
}

func TestStartPrompts(t *testing.T) {
	in := strings.NewReader("print (1\n);\nexit\nprint 2;\n")
	var out bytes.Buffer
	Start(in, &out, Config{Prompt: true})

	expected := "lox REPL (Ctrl+D to exit)\n> . 1\n> "
	if out.String() != expected {
		t.Fatalf("expected=%q got=%q", expected, out.String())
	}
}

func TestBalance(t *testing.T) {
	tests := []struct {
		lines    []string
		expected bool
	}{
		{[]string{"print (1"}, true},
		{[]string{"print (1", ");"}, false},
		{[]string{"print ')'(;"}, true},
		{[]string{`print "abc`}, true},
		{[]string{`print "a'b";`}, false},
		{[]string{"print 1; // ( \""}, false},
		{[]string{"{", "print 1;"}, true},
		{[]string{"{", "print 1;", "}"}, false},
		{[]string{"{ print (1", "); }"}, false},
		{[]string{"print \"{\";"}, false},
	}
	for _, tt := range tests {
		var b balance
		for _, l := range tt.lines {
			b.update(l)
		}
		if b.open() != tt.expected {
			t.Fatalf("%q: expected open=%v got=%v", tt.lines, tt.expected, b.open())
		}
	}
}
