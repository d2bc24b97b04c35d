package commands

import (
	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the installed registry with the filesystem",
	Long: `Reconcile the installed registry with what is actually on disk:
units found under the public units directory are added, entries whose
path no longer exists are dropped.`,
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()

		if !f.JSONMode() {
			f.Printf("🔄 Synchronizing registry with filesystem...\n")
		}

		added, removed, err := a.Units.SyncWithFilesystem()
		if err != nil {
			fail(f, err)
		}

		if f.JSONMode() {
			f.JSON(output.SyncReport{
				Added:   added,
				Removed: removed,
				Total:   len(a.Units.LoadInstalled(false)),
			})
			return
		}

		for _, name := range added {
			f.Printf("  + %s\n", name)
		}
		for _, name := range removed {
			f.Printf("  - %s\n", name)
		}
		if len(added)+len(removed) == 0 {
			f.Printf("  Registry already in sync.\n")
		} else {
			f.Success("✅ Sync complete: %d added, %d removed", len(added), len(removed))
		}
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
