// Package main provides the entry point for the qrvault CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/qrvault/cmd/qrvault/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
