package commands

import (
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var (
	discoverSave      bool
	discoverOverwrite bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover [dir]",
	Short: "Discover units from directory layout conventions",
	Long: `Scan the tool units directory (or dir, when given) and build unit
definitions from layout conventions: runtime from the package manifest,
entry point from conventional locations, setup commands from the
packaging files present.

Without --save this is a preview; with --save discovered units are
merged into the installed registry. Existing entries are kept unless
--overwrite is set.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()

		if len(args) == 1 {
			dir, err := filepath.Abs(args[0])
			if err != nil {
				fail(f, err)
			}
			a.Env.Paths.ToolUnitsDir = dir
		}

		if !discoverSave {
			discovered := a.Units.DiscoverConventions()
			rows := output.UnitRows(discovered)
			if f.JSONMode() {
				f.JSON(rows)
				return
			}
			if len(rows) == 0 {
				f.Printf("  No units discovered.\n")
				return
			}
			f.Title("🔍 Discovered units (preview, use --save to persist):")
			f.UnitTable(rows)
			return
		}

		sum, err := a.Units.DiscoverAndAdd(discoverOverwrite)
		if err != nil {
			fail(f, err)
		}
		sort.Strings(sum.Added)
		sort.Strings(sum.Updated)
		sort.Strings(sum.Skipped)

		if f.JSONMode() {
			f.JSON(struct {
				Added   []string `json:"added"`
				Updated []string `json:"updated"`
				Skipped []string `json:"skipped"`
				Total   int      `json:"total"`
			}{sum.Added, sum.Updated, sum.Skipped, sum.Total})
			return
		}

		for _, name := range sum.Added {
			f.Printf("  + %s\n", name)
		}
		for _, name := range sum.Updated {
			f.Printf("  ~ %s\n", name)
		}
		for _, name := range sum.Skipped {
			f.Printf("  = %s (kept existing, use --overwrite to replace)\n", name)
		}
		f.Success("✅ Discovery complete: %d added, %d updated, %d skipped",
			len(sum.Added), len(sum.Updated), len(sum.Skipped))
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "merge discovered units into the installed registry")
	discoverCmd.Flags().BoolVar(&discoverOverwrite, "overwrite", false, "replace existing registry entries on conflict")
}
