// Package main is the entry point for the callbridge service.
//
// Usage:
//
//	callbridge [flags] <command>
//
// Commands:
//
//	serve      - Run the media-stream bridge server
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/telvox/callbridge/cmd/callbridge/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
