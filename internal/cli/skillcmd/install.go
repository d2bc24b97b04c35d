package skillcmd

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var installNoRegister bool

var installCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a skill and its required units",
	Long: `Install a skill as an assistant slash command, then install and
register every unit the skill requires. Unit failures do not roll the
skill back; they are reported and the command exits nonzero.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()
		name, tool := args[0], a.Tool()

		if !f.JSONMode() {
			f.Printf("Installing skill '%s'...\n", name)
		}

		results, err := a.Skills.InstallWithUnits(cmd.Context(), name, tool, installNoRegister)
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
				f.Success("🎉 Skill '%s' installed.", name)
			} else {
				f.Warnf("⚠️  Skill '%s' installed, but some units failed.", name)
			}
		}

		if !success {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().BoolVar(&installNoRegister, "no-register", false, "install units without registering them")
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
