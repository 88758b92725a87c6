// Package runtimeio answers questions about the process's standard streams.
package runtimeio

import (
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether r is backed by a terminal. Readers that are not
// files never are.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
