// Package repl runs lines of source against one long-lived VM, so strings
// interned by earlier lines stay interned.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"lox/internal/vm"
)

const (
	prompt1 = "> "
	prompt2 = ". "
)

type Config struct {
	// Prompt prints prompts and the banner; off when input is piped.
	Prompt bool
	VM     vm.Options
}

// Start reads from in until EOF or "exit". Program output and errors go to
// out unless cfg.VM names other writers.
func Start(in io.Reader, out io.Writer, cfg Config) {
	opts := cfg.VM
	if opts.Stdout == nil {
		opts.Stdout = out
	}
	if opts.Stderr == nil {
		opts.Stderr = out
	}
	m := vm.New(opts)
	defer m.Free()

	scanner := bufio.NewScanner(in)
	if cfg.Prompt {
		fmt.Fprint(out, "lox REPL (Ctrl+D to exit)\n")
	}

	var buf strings.Builder
	var st balance

	for {
		if cfg.Prompt {
			if buf.Len() == 0 {
				fmt.Fprint(out, prompt1)
			} else {
				fmt.Fprint(out, prompt2)
			}
		}

		if !scanner.Scan() {
			if cfg.Prompt {
				fmt.Fprint(out, "\n")
			}
			if buf.Len() > 0 {
				m.Interpret(buf.String())
			}
			return
		}

		line := scanner.Text()
		trim := strings.TrimSpace(line)
		if buf.Len() == 0 && (trim == "exit" || trim == "quit") {
			return
		}

		buf.WriteString(line)
		buf.WriteString("\n")

		st.update(line)
		if st.open() {
			continue
		}

		src := buf.String()
		buf.Reset()
		m.Interpret(src)
	}
}

// balance tracks whether the input so far ends inside parentheses, braces
// or a string literal.
type balance struct {
	parens int
	braces int
	quote  byte // opening quote of an unterminated string, 0 outside
}

func (b *balance) open() bool {
	return b.parens > 0 || b.braces > 0 || b.quote != 0
}

func (b *balance) update(line string) {
	for i := 0; i < len(line); i++ {
		ch := line[i]

		if b.quote != 0 {
			if ch == b.quote {
				b.quote = 0
			}
			continue
		}

		if ch == '/' && i+1 < len(line) && line[i+1] == '/' {
			return
		}

		switch ch {
		case '"', '\'':
			b.quote = ch
		case '(':
			b.parens++
		case ')':
			if b.parens > 0 {
				b.parens--
			}
		case '{':
			b.braces++
		case '}':
			if b.braces > 0 {
				b.braces--
			}
		}
	}
}
