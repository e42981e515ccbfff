package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.msg != "" {
				fmt.Fprintln(os.Stderr, exit.msg)
			}
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// exitError ends the process with code after printing msg, without the
// "Error:" prefix. Used when the command itself succeeded but its verdict
// must fail a CI step.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }
