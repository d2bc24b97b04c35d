package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/errors"
	"github.com/proteinmcp/proteinmcp/internal/cli/output"
	"github.com/proteinmcp/proteinmcp/internal/domain/status"
)

var statusRefresh bool

var statusCmd = &cobra.Command{
	Use:   "status [name]",
	Short: "Show downloaded and registered status of units",
	Long: `Show which units are downloaded to this machine and which are
registered with the assistant CLI. Status checks are cached for five
minutes; use --refresh for a slower but accurate answer.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()
		ctx := cmd.Context()
		tool := a.Tool()

		if statusRefresh {
			a.Env.Cache.InvalidateAll()
			if !f.JSONMode() {
				f.Printf("🔄 Cache invalidated, fetching fresh status...\n\n")
			}
		}

		if len(args) == 1 {
			u, ok := a.Units.Get(args[0])
			if !ok {
				fail(f, fmt.Errorf("%w: %s", errors.ErrUnitNotFound, args[0]))
			}
			installed := u.IsInstalled(a.Env)
			registered := u.IsRegistered(ctx, a.Env, tool)
			st := status.FromState(installed, registered)
			f.UnitInfo(output.NewUnitDetail(u, st, installed, registered, tool))
			return
		}

		local := a.Units.LoadInstalled(false)
		all := a.Units.LoadPublic(false)
		for name, u := range local {
			all[name] = u
		}

		var both, downloaded, registered []output.UnitRow
		for name, u := range all {
			scope := "Public"
			if _, ok := local[name]; ok {
				scope = "Local"
			}
			row := output.UnitRow{
				Name:        name,
				Runtime:     u.Runtime,
				Source:      u.Source,
				Scope:       scope,
				Description: u.Description,
			}
			switch st := u.GetStatus(ctx, a.Env, tool, true); st {
			case status.Both:
				row.Status = st
				both = append(both, row)
			case status.Installed:
				row.Status = st
				downloaded = append(downloaded, row)
			case status.Registered:
				row.Status = st
				registered = append(registered, row)
			}
		}
		for _, group := range [][]output.UnitRow{both, downloaded, registered} {
			sort.Slice(group, func(i, j int) bool { return group[i].Name < group[j].Name })
		}

		if f.JSONMode() {
			f.JSON(struct {
				Both       []output.UnitRow `json:"both,omitempty"`
				Installed  []output.UnitRow `json:"installed,omitempty"`
				Registered []output.UnitRow `json:"registered,omitempty"`
			}{both, downloaded, registered})
			return
		}

		f.Title("📊 Unit Status Overview")
		if len(both) > 0 {
			f.Printf("\n🟢 Downloaded & registered with %s:\n", tool)
			f.UnitTable(both)
		}
		if len(downloaded) > 0 {
			f.Printf("\n🔵 Downloaded but not registered with %s:\n", tool)
			f.UnitTable(downloaded)
			f.Printf("  Tip: register with 'pmcp install <name>'\n")
		}
		if len(registered) > 0 {
			f.Printf("\n🟡 Registered but not downloaded:\n")
			f.UnitTable(registered)
		}
		if len(both)+len(downloaded)+len(registered) == 0 {
			f.Printf("\n  No units downloaded or registered.\n")
			f.Printf("  Use 'pmcp avail' to see available units\n")
			f.Printf("  Use 'pmcp install <name>' to install\n")
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusRefresh, "refresh", false, "refresh the status cache (slower but accurate)")
}
