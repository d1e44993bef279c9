package main

import (
	"log"

	"github.com/jessevdk/go-flags"
	"github.com/nguyengg/zipentry/internal/cmd"
)

func main() {
	p, err := cmd.NewParser()
	if err != nil {
		log.Fatal(err)
	}

	_, err = p.Parse()
	exit(err)
}

// exitCode returns 0 for success and for the help message, which go-flags reports as an error, and 1 otherwise.
//
// go-flags has already printed err.
func exitCode(err error) int {
	switch {
	case err == nil, flags.WroteHelp(err):
		return 0
	default:
		return 1
	}
}
