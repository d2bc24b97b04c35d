package commands

import (
	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var (
	availLocal  bool
	availPublic bool
)

var availCmd = &cobra.Command{
	Use:   "avail",
	Short: "Show all available units that can be installed",
	Long: `Show all known units that can be installed.

By default both collections are listed: local units developed in this
project and public units from the public registry. Use --local or
--public to filter.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()

		var local, public []output.UnitRow
		if !availPublic {
			local = output.UnitRows(a.Units.LoadInstalled(false))
		}
		if !availLocal {
			public = output.UnitRows(a.Units.LoadPublic(false))
		}

		if f.JSONMode() {
			f.JSON(struct {
				Local  []output.UnitRow `json:"local,omitempty"`
				Public []output.UnitRow `json:"public,omitempty"`
			}{local, public})
			return
		}

		if len(local) > 0 {
			f.Title("\n📁 Local units (under tool-mcps/ when installed)")
			f.UnitTable(local)
			f.Printf("\n  Total: %d local units\n", len(local))
		}
		if len(public) > 0 {
			f.Title("\n🌐 Public units (from the public registry)")
			sources, groups := output.GroupBySource(public)
			for _, src := range sources {
				f.Printf("\n  [%s]\n", src)
				f.UnitTable(groups[src])
			}
			f.Printf("\n  Total: %d public units\n", len(public))
		}
		if len(local) == 0 && len(public) == 0 {
			f.Printf("  No units found.\n")
		}
	},
}

func init() {
	rootCmd.AddCommand(availCmd)
	availCmd.Flags().BoolVar(&availLocal, "local", false, "show local units only")
	availCmd.Flags().BoolVar(&availPublic, "public", false, "show public units only")
}
