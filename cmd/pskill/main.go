package main

import (
	"os"

	"github.com/proteinmcp/proteinmcp/internal/cli/skillcmd"
)

func main() {
	if err := skillcmd.Execute(); err != nil {
		os.Exit(1)
	}
}
