// Package main implements the opsweep CLI for bulk 1Password permission management.
package main

import (
	"os"

	"github.com/jackm43/opsweep/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
