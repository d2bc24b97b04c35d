package main

import (
	"os"

	"github.com/proteinmcp/proteinmcp/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
