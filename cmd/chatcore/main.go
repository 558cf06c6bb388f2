// Package main provides the entry point for the chatcore CLI.
package main

import (
	"os"

	"github.com/induxo/chatcore/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
