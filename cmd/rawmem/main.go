// Package main provides the rawmem CLI tool.
//
// Usage:
//
//	rawmem [flags] <command> [args]
//
// Commands:
//
//	dump        - Allocate a block, optionally fill/write it, print address and hex dump
//	allocators  - List allocators available in this build
package main

import (
	"fmt"
	"os"

	"github.com/momentics/hioload-rawmem/cmd/rawmem/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
