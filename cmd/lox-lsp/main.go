package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"lox/internal/lsp"
)

const version = "0.1"

func main() {
	verbosity := flag.Int("v", 0, "log verbosity")
	logPath := flag.String("log", "", "log file (default stderr)")
	flag.Parse()

	if *logPath != "" {
		commonlog.Configure(*verbosity, logPath)
	} else {
		commonlog.Configure(*verbosity, nil)
	}

	if err := lsp.NewServer(version).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
