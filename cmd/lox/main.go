package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"lox/internal/code"
	"lox/internal/compiler"
	"lox/internal/config"
	"lox/internal/heap"
	"lox/internal/lexer"
	"lox/internal/repl"
	"lox/internal/runtimeio"
	"lox/internal/token"
	"lox/internal/vm"
)

// Exit codes follow sysexits.h.
const (
	exitOK       = 0
	exitUsage    = 64
	exitDataErr  = 65
	exitSoftware = 70
	exitIOErr    = 74
)

const imageExt = ".loxc"

var log = commonlog.GetLogger("lox.cli")

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	tokens bool
	opts   vm.Options
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("lox", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: lox [flags] [run] [path] | repl | build [-o out.loxc] [path] | fmt [-w] [path...] | init [-name n] [dir]")
		fs.PrintDefaults()
	}

	tokensMode := fs.Bool("tokens", false, "print tokens instead of running")
	disMode := fs.Bool("dis", false, "dump constants and instructions after compiling")
	traceMode := fs.Bool("trace", false, "trace the stack and every instruction while running")
	maxMemory := fs.Int64("max-memory", 0, "heap byte limit (0 = unlimited)")
	maxSteps := fs.Int64("max-steps", 0, "instruction limit (0 = unlimited)")
	verbosity := fs.Int("v", 0, "log verbosity")
	logPath := fs.String("log", "", "log file (default stderr)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *logPath != "" {
		commonlog.Configure(*verbosity, logPath)
	} else {
		commonlog.Configure(*verbosity, nil)
	}

	c := &cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		tokens: *tokensMode,
	}

	// Flags given explicitly override lox.toml.
	explicit := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	applyFlags := func(opts *vm.Options) {
		if explicit["trace"] {
			opts.Trace = *traceMode
		}
		if explicit["dis"] {
			opts.DumpCode = *disMode
		}
		if explicit["max-memory"] {
			opts.MaxMemory = *maxMemory
		}
		if explicit["max-steps"] {
			opts.MaxSteps = *maxSteps
		}
	}

	rest := fs.Args()
	if len(rest) == 0 {
		rest = []string{"repl"}
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "repl":
		if c.tokens {
			fmt.Fprintln(stderr, "-tokens needs a source file")
			return exitUsage
		}
		if len(cmdArgs) != 0 {
			fmt.Fprintln(stderr, "usage: lox repl")
			return exitUsage
		}
		applyFlags(&c.opts)
		return c.repl()
	case "build":
		return c.build(cmdArgs, applyFlags)
	case "fmt":
		return c.fmtFiles(cmdArgs)
	case "init":
		return c.initProject(cmdArgs)
	case "run":
	default:
		cmdArgs = rest
	}

	if len(cmdArgs) > 1 {
		fmt.Fprintln(stderr, "usage: lox run [path]")
		return exitUsage
	}
	target := "."
	if len(cmdArgs) == 1 {
		target = cmdArgs[0]
	}

	path, man, err := resolveTarget(target)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitIOErr
	}
	if man != nil {
		man.Apply(&c.opts)
	}
	applyFlags(&c.opts)

	if strings.HasSuffix(path, imageExt) {
		return c.runImage(path)
	}
	return c.runFile(path)
}

// resolveTarget maps a run target to a file. A directory, or "." with no
// file, is resolved through the nearest lox.toml.
func resolveTarget(target string) (string, *config.Manifest, error) {
	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("path not found: %s", target)
		}
		return "", nil, err
	}

	if !info.IsDir() {
		abs, err := filepath.Abs(target)
		if err != nil {
			return "", nil, err
		}
		man, err := config.FindAndLoad(filepath.Dir(abs))
		if err != nil {
			return "", nil, err
		}
		return abs, man, nil
	}

	man, err := config.Load(target)
	if err != nil {
		return "", nil, err
	}
	return man.EntryPath(), man, nil
}

func (c *cli) repl() int {
	repl.Start(c.stdin, c.stdout, repl.Config{
		Prompt: runtimeio.IsTerminal(c.stdin),
		VM:     c.vmOptions(),
	})
	return exitOK
}

func (c *cli) vmOptions() vm.Options {
	opts := c.opts
	opts.Stdout = c.stdout
	opts.Stderr = c.stderr
	return opts
}

func (c *cli) runFile(path string) int {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(c.stderr, "Could not open file \"%s\".\n", path)
		return exitIOErr
	}

	if c.tokens {
		printTokens(c.stdout, string(src))
		return exitOK
	}

	m := vm.New(c.vmOptions())
	defer m.Free()

	log.Debugf("running %s", path)
	return exitCode(m.Interpret(string(src)))
}

func (c *cli) runImage(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(c.stderr, "Could not open file \"%s\".\n", path)
		return exitIOErr
	}

	m := vm.New(c.vmOptions())
	defer m.Free()

	chunk, err := code.UnmarshalChunk(data, m.Heap())
	if err != nil {
		fmt.Fprintf(c.stderr, "%s: %v\n", path, err)
		return exitDataErr
	}
	if c.opts.DumpCode {
		fmt.Fprint(c.stdout, code.FormatConstants(chunk.Constants))
		chunk.Disassemble(c.stdout, filepath.Base(path))
	}

	log.Debugf("running image %s (%d bytes of code)", path, chunk.Len())
	return exitCode(m.Execute(chunk))
}

func (c *cli) build(args []string, applyFlags func(*vm.Options)) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	out := fs.String("o", "", "output image (default: source name with "+imageExt+")")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(c.stderr, "usage: lox build [-o out.loxc] [path]")
		return exitUsage
	}
	target := "."
	if fs.NArg() == 1 {
		target = fs.Arg(0)
	}

	path, man, err := resolveTarget(target)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitIOErr
	}
	if man != nil {
		man.Apply(&c.opts)
	}
	applyFlags(&c.opts)

	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(c.stderr, "Could not open file \"%s\".\n", path)
		return exitIOErr
	}

	chunk, ok := compiler.Compile(string(src), heap.New(nil), compiler.Options{
		DumpCode: c.opts.DumpCode,
		Dump:     c.stdout,
		Errors:   c.stderr,
	})
	if !ok {
		return exitDataErr
	}
	data, err := code.MarshalChunk(chunk)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitSoftware
	}

	dest := *out
	if dest == "" {
		dest = strings.TrimSuffix(path, filepath.Ext(path)) + imageExt
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitIOErr
	}
	log.Infof("wrote %s (%d bytes)", dest, len(data))
	return exitOK
}

func printTokens(w io.Writer, src string) {
	l := lexer.New(src)
	for {
		tok := l.NextToken()
		fmt.Fprintf(w, "%4d:%-3d  %-10s  %q\n", tok.Line, tok.Col, tok.Type, tok.Literal)
		if tok.Type == token.EOF {
			break
		}
	}
}

func exitCode(r vm.Result) int {
	switch r {
	case vm.InterpretCompileError:
		return exitDataErr
	case vm.InterpretRuntimeError:
		return exitSoftware
	default:
		return exitOK
	}
}
