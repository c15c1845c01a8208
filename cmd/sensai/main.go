// Command sensai runs mock voice interviews against a realtime model.
//
// Usage:
//
//	sensai [flags] <command> [subcommand] [args]
//
// Commands:
//
//	config     - Configuration management (contexts, services)
//	setup      - Create an interview from a role description and resume
//	interview  - Run, list, show and delete interviews
//	devices    - List audio devices
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/jagtap-suraj/sensai/cmd/sensai/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
