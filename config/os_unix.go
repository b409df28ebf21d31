//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// colorConsole reports whether log levels could be colored on stream.
func colorConsole(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
