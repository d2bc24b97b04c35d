package skillcmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/errors"
	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var executeCmd = &cobra.Command{
	Use:   "execute <name>",
	Short: "Walk through an installed skill's guided prompts",
	Long: `Print the step-by-step prompts defined in a skill file so they can
be copied into a conversation with the assistant. Execution refuses to
start while any required unit is not registered.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()

		s, ok := a.Skills.Get(args[0])
		if !ok {
			fail(f, fmt.Errorf("%w: %s", errors.ErrSkillNotFound, args[0]))
		}

		_, missing := a.Skills.CheckRequiredUnits(cmd.Context(), s.RequiredUnits(), a.Tool())
		if len(missing) > 0 {
			f.Warnf("⚠️  Required units not registered with %s:", a.Tool())
			for _, name := range missing {
				f.Printf("    - %s\n", name)
			}
			f.Printf("  Install them first: pskill install %s\n", s.Name)
			os.Exit(1)
		}

		steps, err := s.ExecutionSteps()
		if err != nil {
			fail(f, err)
		}
		f.Steps(s.Name, output.StepRows(steps))
	},
}

func init() {
	rootCmd.AddCommand(executeCmd)
}
