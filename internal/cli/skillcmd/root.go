// Package skillcmd implements the pskill command tree: listing,
// installing, and walking through workflow skills.
package skillcmd

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
	Use:   "pskill",
	Short: "ProteinMCP skills - manage and run workflow skills",
	Long: `pskill manages workflow skills: markdown playbooks that install as
assistant slash commands and declare which MCP server units they need.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cliTool, "cli", "", "assistant CLI to target (claude or gemini)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func formatter() *output.Formatter {
	var fmtMode output.OutputFormat = output.FormatText
	if jsonOutput {
		fmtMode = output.FormatJSON
	}
	return output.NewFormatter(fmtMode, !jsonOutput)
}

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

func fail(f *output.Formatter, err error) {
	fmt.Println(f.FormatError(errors.Classify(err)))
	os.Exit(1)
}
