// Package main provides the entry point for the visualoom CLI.
package main

import (
	"os"

	"github.com/visualoom/visualoom/cmd/visualoom/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
