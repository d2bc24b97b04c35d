package skillcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/errors"
	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show detailed information about a skill",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()

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
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
