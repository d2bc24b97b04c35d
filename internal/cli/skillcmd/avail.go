package skillcmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var availCmd = &cobra.Command{
	Use:   "avail",
	Short: "Show all available skills that can be installed",
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()

		if !f.JSONMode() {
			f.Printf("Finding available skills in '%s'...\n", a.Paths.SkillsDir)
		}

		skills := a.Skills.LoadAvailable()
		rows := make([]output.SkillRow, 0, len(skills))
		for name, s := range skills {
			rows = append(rows, output.SkillRow{
				Name:        name,
				Command:     s.CommandName,
				Description: s.Description(),
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

		if f.JSONMode() {
			f.JSON(rows)
			return
		}
		if len(rows) == 0 {
			f.Printf("  No skills found.\n")
			return
		}
		f.Title("\nAvailable Skills:")
		f.SkillTable(rows)
		f.Printf("\nTotal: %d skills found.\n", len(rows))
	},
}

func init() {
	rootCmd.AddCommand(availCmd)
}
