package sdk

import (
	"fmt"
	"os"
)

// Exit codes returned by the covcheck binary.
const (
	ExitOK          = 0
	ExitGateFailure = 1
	ExitUsage       = 2
	ExitToolFailure = 3
)

// Exit prints a message on stderr and exits with code 1.
func Exit(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

// ExitCode prints a message on stderr and exits with the given code.
func ExitCode(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(code)
}
