// Package main provides the entry point for the bookmind CLI.
package main

import (
	"os"

	"github.com/bookmind/bookmind/cmd/bookmind/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
