// ./main.go
package main

import (
	"github.com/authscope/authscope-cli/cmd"
)

// main is the entry point for the authscope CLI.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles all command-line parsing, configuration, and execution.
	cmd.Execute()
}
