// Package commands implements the pmcp command tree: discovery,
// inspection, and lifecycle management of MCP server units.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/app"
	"github.com/proteinmcp/proteinmcp/internal/cli/errors"
	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var (
	cliTool    string
	jsonOutput bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "pmcp",
	Short: "ProteinMCP - manage MCP servers for protein engineering workflows",
	Long: `ProteinMCP manages MCP servers for protein engineering, analysis, and
prediction: discover what is available, install server code, and register
servers with an assistant CLI such as Claude Code or Gemini.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cliTool, "cli", "", "assistant CLI to target (claude or gemini)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// formatter builds the renderer for the chosen output mode.
func formatter() *output.Formatter {
	var fmtMode output.OutputFormat = output.FormatText
	if jsonOutput {
		fmtMode = output.FormatJSON
	}
	return output.NewFormatter(fmtMode, !jsonOutput)
}

// newApp wires the application for one command invocation. Wiring
// failures are terminal.
func newApp() (*app.App, *output.Formatter) {
	f := formatter()
	a, err := app.New(app.Options{
		Verbose:   verbose,
		CLI:       cliTool,
		AssumeYes: jsonOutput,
	})
	if err != nil {
		fail(f, err)
	}
	return a, f
}

// fail prints a classified error and exits.
func fail(f *output.Formatter, err error) {
	fmt.Println(f.FormatError(errors.Classify(err)))
	os.Exit(1)
}
