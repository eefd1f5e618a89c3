// Command prep scans a GitHub repository, generates interview questions about
// the selected files through the gateway, and runs practice sessions.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
