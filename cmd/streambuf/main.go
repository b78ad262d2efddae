// Package main provides the streambuf CLI tool.
//
// Usage:
//
//	streambuf [flags] <command> [args]
//
// Commands:
//
//	pipe   - Copy data between files/stdio through a bounded ring buffer
//	bench  - Measure ring buffer throughput across tunings
//	config - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.streambuf/streambuf/
//	Use 'streambuf config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/streambuf/cmd/streambuf/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
