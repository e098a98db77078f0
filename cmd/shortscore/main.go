package main

import (
	"os"

	"github.com/wonny/shortscore/cmd/shortscore/commands"
)

// main is the entry point for the shortscore CLI
// ⭐ Unified CLI entry point: go run ./cmd/shortscore [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
