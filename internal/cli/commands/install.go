package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/proteinmcp/proteinmcp/internal/cli/errors"
	"github.com/proteinmcp/proteinmcp/internal/cli/output"
	"github.com/proteinmcp/proteinmcp/internal/domain/status"
)

var (
	installForce      bool
	installNoRegister bool
)

var installCmd = &cobra.Command{
	Use:   "install <name>",
	Short: "Install a unit and register it with the assistant CLI",
	Long: `Install a unit and register it with the assistant CLI.

By default the unit is materialized on disk and registered with the
configured CLI. Use --no-register to skip registration, --force to
reinstall over an existing checkout, and --cli to pick the CLI.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a, f := newApp()
		ctx := cmd.Context()
		name, tool := args[0], a.Tool()

		u, ok := a.Units.Get(name)
		if !ok {
			fail(f, fmt.Errorf("%w: %s", errors.ErrUnitNotFound, name))
		}

		// The CLI may have been driven behind our back since the last
		// check; always start an install from a fresh status.
		u.InvalidateStatus(a.Env, tool)
		before := u.GetStatus(ctx, a.Env, tool, false)
		if !f.JSONMode() {
			f.Printf("\n📊 Current status: %s\n", before.Label())
		}

		success := true
		if installForce || before == status.NotInstalled || before == status.Registered {
			if !f.JSONMode() {
				f.Printf("\n📦 Installing '%s'...\n", name)
			}
			success = a.Units.Install(ctx, name, installForce)
		} else if !f.JSONMode() {
			f.Printf("✅ Unit '%s' already installed\n", name)
		}

		if success && !installNoRegister {
			if before == status.NotInstalled || before == status.Installed {
				success = a.Units.Register(ctx, name, tool)
			} else if !f.JSONMode() {
				f.Printf("✅ Unit '%s' already registered with %s\n", name, tool)
			}
		}

		after := u.GetStatus(ctx, a.Env, tool, false)

		if f.JSONMode() {
			f.JSON(output.InstallReport{
				Name:    name,
				Tool:    tool,
				Before:  before,
				After:   after,
				Success: success,
			})
		} else {
			f.Printf("\n✨ Final status: %s\n", after.Label())
			if success && after == status.Both {
				f.Success("🎉 Successfully installed and registered '%s'!", name)
			}
		}

		if !success {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().BoolVar(&installForce, "force", false, "reinstall even when already present")
	installCmd.Flags().BoolVar(&installNoRegister, "no-register", false, "install only, do not register with the CLI")
}
