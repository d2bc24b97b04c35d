package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/errors"
	"github.com/proteinmcp/proteinmcp/internal/cli/output"
)

var uninstallRemoveFiles bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <name>",
	Short: "Unregister a unit and optionally remove its files",
	Long: `Unregister a unit from the assistant CLI.

By default only the registration is removed. Use --remove-files to also
delete the installation files from disk.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()
		ctx := cmd.Context()
		name, tool := args[0], a.Tool()

		u, ok := a.Units.Get(name)
		if !ok {
			fail(f, fmt.Errorf("%w: %s", errors.ErrUnitNotFound, name))
		}

		// A failed unregister is not terminal: the files can still be
		// removed and the CLI may simply have lost the entry already.
		if u.IsRegistered(ctx, a.Env, tool) {
			if !f.JSONMode() {
				f.Printf("🗑️  Unregistering '%s' from %s...\n", name, tool)
			}
			if !a.Units.Unregister(ctx, name, tool) {
				f.Warnf("⚠️  Failed to unregister, continuing...")
			}
		}

		success := true
		if uninstallRemoveFiles {
			if u.IsInstalled(a.Env) {
				if !f.JSONMode() {
					f.Printf("🗑️  Removing installation files...\n")
				}
				success = a.Units.Uninstall(name, true)
			}
		}

		after := u.GetStatus(ctx, a.Env, tool, false)

		if f.JSONMode() {
			f.JSON(output.InstallReport{
				Name:    name,
				Tool:    tool,
				After:   after,
				Success: success,
			})
		} else if success {
			if uninstallRemoveFiles {
				f.Success("✅ Successfully uninstalled '%s'", name)
			} else {
				f.Success("✅ Successfully unregistered '%s'", name)
			}
		}

		if !success {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(uninstallCmd)
	uninstallCmd.Flags().BoolVar(&uninstallRemoveFiles, "remove-files", false, "also remove installation files")
}
