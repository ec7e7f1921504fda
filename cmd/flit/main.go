// Package main is the entry point for the flit launcher.
package main

import (
	"os"

	"github.com/runger/flit/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
