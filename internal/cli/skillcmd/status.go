package skillcmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/errors"
	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Show the installation status of skills",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()

		if len(args) == 1 {
			s, ok := a.Skills.Get(args[0])
			if !ok {
				fail(f, fmt.Errorf("%w: %s", errors.ErrSkillNotFound, args[0]))
			}
			f.SkillInfo(output.SkillDetail{
				Name:          s.Name,
				Command:       s.CommandName,
				Description:   s.Description(),
				File:          s.FilePath,
				State:         s.State().String(),
				RequiredUnits: s.RequiredUnits(),
			})
			return
		}

		if !f.JSONMode() {
			f.Printf("Checking skill installation status...\n")
		}

		skills := a.Skills.LoadAvailable()
		rows := make([]output.SkillRow, 0, len(skills))
		for name, s := range skills {
			rows = append(rows, output.SkillRow{
				Name:        name,
				Command:     s.CommandName,
				State:       s.State().String(),
				Description: s.Description(),
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })

		if f.JSONMode() {
			f.JSON(rows)
			return
		}
		if len(rows) == 0 {
			f.Printf("  No skills found to check.\n")
			return
		}
		f.Title("\nSkill Status:")
		f.SkillTable(rows)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
