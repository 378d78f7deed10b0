package main

import (
	"fmt"
	"os"
)

// outputHuman writes a human-readable line to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format+"\n", args...)
}

// outputError writes an error message to stderr and returns the exit code.
func outputError(code int, format string, args ...interface{}) int {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	return code
}

func exitWithError(code int, format string, args ...interface{}) {
	os.Exit(outputError(code, format, args...))
}

// exitWithCode exits after the error has already been reported.
func exitWithCode(code int) {
	os.Exit(code)
}
