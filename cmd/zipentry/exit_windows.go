//go:build windows

package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"
)

// exit keeps the console open when zipentry was started by double-clicking so that the extracted entry or error can be
// read before the window closes.
func exit(err error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		_, _ = fmt.Fprintf(os.Stderr, "zipentry finished; press Enter to close this window\n")
		_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
	}

	if code := exitCode(err); code != 0 {
		os.Exit(code)
	}
}
