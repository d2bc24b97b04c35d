package unit

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/proteinmcp/proteinmcp/internal/domain/gateway"
)

// Install materializes the unit locally. Idempotent: an already-installed
// unit is a successful no-op unless force, which re-runs setup on an
// existing checkout. A unit with neither a usable path nor a URL has
// nothing to install from and fails.
func (u *Unit) Install(ctx context.Context, env *Env, force bool) bool {
	log := u.logger(env)

	// The CLI may have been driven directly since the last check.
	u.invalidateAllTools(env)

	if u.IsInstalled(env) && !force {
		log.Info("already installed", zap.String("path", u.Path))
		return true
	}

	if u.Runtime.IsPackage() {
		log.Info("package runtime, nothing to materialize",
			zap.String("runtime", string(u.Runtime)))
		u.invalidateAllTools(env)
		return true
	}

	if u.Path != "" {
		local := env.Paths.Resolve(u.Path)
		if _, err := os.Stat(local); err == nil {
			// A local checkout wins even when a URL is also configured.
			log.Info("found local unit", zap.String("path", local))
			u.invalidateAllTools(env)
			return u.runSetup(ctx, env)
		}
		if u.URL == "" {
			log.Warn("local path does not exist and no url to clone from",
				zap.String("path", local))
			return false
		}
		log.Info("local path missing, will clone",
			zap.String("path", local), zap.String("url", u.URL))
	}

	return u.clone(ctx, env, force)
}

func (u *Unit) clone(ctx context.Context, env *Env, force bool) bool {
	log := u.logger(env)

	if u.URL == "" {
		log.Warn("no url to install from")
		return false
	}

	target := filepath.Join(env.Paths.PublicUnitsDir, repoNameFromURL(u.URL))
	if u.Path != "" {
		target = env.Paths.Resolve(u.Path)
	}

	if _, err := os.Stat(target); err == nil {
		if !force {
			log.Info("already cloned", zap.String("path", target))
			u.Path = target
			return true
		}
		log.Info("removing existing checkout", zap.String("path", target))
		if err := os.RemoveAll(target); err != nil {
			log.Warn("cannot remove existing checkout", zap.Error(err))
			return false
		}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		log.Warn("cannot create clone parent directory", zap.Error(err))
		return false
	}

	log.Info("cloning", zap.String("url", u.URL), zap.String("dest", target))
	res := env.Runner.Run(ctx, gateway.Request{
		Args:    []string{"git", "clone", u.URL, target},
		Timeout: CloneTimeout,
	})
	if !res.Ok() {
		if res.TimedOut {
			log.Warn("clone timed out")
		} else {
			log.Warn("clone failed", zap.String("stderr", strings.TrimSpace(res.Stderr)))
		}
		return false
	}

	u.Path = target
	u.invalidateAllTools(env)
	return u.runSetup(ctx, env)
}

// runSetup prefers the configured setup script; on its failure or absence
// it falls back to the setup command list. Neither configured means setup
// trivially succeeds.
func (u *Unit) runSetup(ctx context.Context, env *Env) bool {
	log := u.logger(env)

	if u.SetupScript != "" && u.Path != "" {
		script := filepath.Join(env.Paths.Resolve(u.Path), u.SetupScript)
		if _, err := os.Stat(script); err == nil {
			if u.runSetupScript(ctx, env, script) {
				return true
			}
			log.Warn("setup script failed, falling back to setup commands")
		} else {
			log.Warn("setup script not found", zap.String("script", script))
		}
	}

	if len(u.SetupCommands) > 0 {
		return u.runSetupCommands(ctx, env)
	}

	log.Debug("no setup script or commands configured")
	return true
}

func (u *Unit) runSetupScript(ctx context.Context, env *Env, script string) bool {
	log := u.logger(env)

	if err := os.Chmod(script, 0o755); err != nil {
		log.Warn("cannot mark setup script executable", zap.Error(err))
	}

	log.Info("running setup script", zap.String("script", u.SetupScript))
	res := env.Runner.Run(ctx, gateway.Request{
		Args:    []string{"bash", script},
		Dir:     env.Paths.Resolve(u.Path),
		Stream:  true,
		Timeout: SetupScriptTimeout,
	})
	if res.TimedOut {
		log.Warn("setup script timed out", zap.Duration("timeout", SetupScriptTimeout))
		return false
	}
	if !res.Ok() {
		log.Warn("setup script failed", zap.Int("exit", res.ExitCode))
		return false
	}
	return true
}

// runSetupCommands runs each command in the unit directory. Individual
// failures are logged and execution continues; only a timeout aborts.
func (u *Unit) runSetupCommands(ctx context.Context, env *Env) bool {
	if u.Path == "" {
		return false
	}
	log := u.logger(env)
	dir := env.Paths.Resolve(u.Path)

	for _, cmd := range u.SetupCommands {
		log.Info("running setup command", zap.String("command", cmd))
		res := gateway.RunShell(ctx, env.Runner, cmd, dir, SetupCmdTimeout)
		if res.TimedOut {
			log.Warn("setup command timed out", zap.String("command", cmd))
			return false
		}
		if !res.Ok() {
			log.Warn("setup command failed, you may need to run it manually",
				zap.String("command", cmd),
				zap.String("stderr", strings.TrimSpace(res.Stderr)))
		}
	}
	return true
}

// Uninstall removes the local materialization. Not-installed units and
// package runtimes succeed trivially; only a filesystem removal error is
// a failure.
func (u *Unit) Uninstall(env *Env, removeFiles bool) bool {
	log := u.logger(env)

	if !u.IsInstalled(env) {
		log.Info("not installed, nothing to remove")
		return true
	}

	if u.Runtime.IsPackage() {
		u.Path = ""
		u.invalidateAllTools(env)
		return true
	}

	if removeFiles && u.Path != "" {
		resolved := env.Paths.Resolve(u.Path)
		if _, err := os.Stat(resolved); err == nil {
			log.Info("removing", zap.String("path", resolved))
			if err := os.RemoveAll(resolved); err != nil {
				log.Warn("failed to remove files", zap.Error(err))
				return false
			}
		}
		u.Path = ""
		u.invalidateAllTools(env)
	}

	return true
}
