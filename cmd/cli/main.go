// Package main is the entry point for the measureconvert CLI.
package main

import (
	"os"

	"measureconvert/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
