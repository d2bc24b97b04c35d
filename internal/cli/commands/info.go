package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/errors"
	"github.com/proteinmcp/proteinmcp/internal/cli/output"
	"github.com/proteinmcp/proteinmcp/internal/domain/status"
)

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show detailed information about a unit",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()
		tool := a.Tool()

		u, ok := a.Units.Get(args[0])
		if !ok {
			fail(f, fmt.Errorf("%w: %s", errors.ErrUnitNotFound, args[0]))
		}

		installed := u.IsInstalled(a.Env)
		registered := u.IsRegistered(cmd.Context(), a.Env, tool)
		f.UnitInfo(output.NewUnitDetail(u, status.FromState(installed, registered), installed, registered, tool))
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
