// Command interviewai is the interview answer streaming backend.
//
// Usage:
//
//	interviewai [flags] <command> [args]
//
// Commands:
//
//	serve    - Run the HTTP and WebSocket server
//	ask      - Stream one answer to the terminal
//	solve    - Solve a coding problem from a screenshot
//	config   - Show or initialize the configuration file
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/interviewai/backend/cmd/interviewai/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
