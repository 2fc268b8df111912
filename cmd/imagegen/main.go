// Package main provides the image studio CLI.
//
// Usage:
//
//	imagegen [flags] <command> [args]
//
// Commands:
//
//	generate - generate one image and preview the result in the terminal
//	ratios   - list the supported aspect ratios
//
// Configuration:
//
//	The CLI reads the same environment (and optional .env file) as the
//	API server. Flags override the environment.
package main

import (
	"fmt"
	"os"

	"imagestudio/cmd/imagegen/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
