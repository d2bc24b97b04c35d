package skillcmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var uninstallRemoveFiles bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name>",
	Short: "Uninstall a skill and unregister its units",
	Long: `Remove a skill's installed files and unregister its cleanup units
from the assistant CLI. Unit files stay on disk unless --remove-files
is set.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()
		name, tool := args[0], a.Tool()

		if !f.JSONMode() {
			f.Printf("Uninstalling skill '%s'...\n", name)
		}

		results, err := a.Skills.UninstallWithUnits(cmd.Context(), name, tool, uninstallRemoveFiles)
		if err != nil {
			fail(f, err)
		}

		success := true
		for _, ok := range results {
			success = success && ok
		}

		if f.JSONMode() {
			f.JSON(output.SkillReport{Name: name, Tool: tool, Units: results, Success: success})
		} else {
			for _, unitName := range sortedKeys(results) {
				if results[unitName] {
					f.Printf("  ✅ %s\n", unitName)
				} else {
					f.Warnf("  ❌ %s failed", unitName)
				}
			}
			if success {
				f.Success("✅ Skill '%s' uninstalled.", name)
			} else {
				f.Warnf("⚠️  Skill '%s' uninstalled, but some units failed.", name)
			}
		}

		if !success {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
	uninstallCmd.Flags().BoolVar(&uninstallRemoveFiles, "remove-files", false, "also remove unit installation files")
}
