//go:build !windows

package main

import (
	"os"
)

// exit maps the result of parsing and running a command to the process exit status.
//
// go-flags has already printed err unless it is the help message, which exits with status 0.
func exit(err error) {
	if code := exitCode(err); code != 0 {
		os.Exit(code)
	}
}
