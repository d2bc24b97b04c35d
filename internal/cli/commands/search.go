package commands

import (
	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search units by name, description, or source",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()

		rows := output.UnitRows(a.Units.Search(args[0]))
		if f.JSONMode() {
			f.JSON(rows)
			return
		}

		if len(rows) == 0 {
			f.Printf("\n  No units found matching '%s'\n", args[0])
			return
		}
		f.Title("\n🔍 Search results for '%s':", args[0])
		f.UnitTable(rows)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
