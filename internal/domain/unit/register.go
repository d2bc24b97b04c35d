package unit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/proteinmcp/proteinmcp/internal/domain/gateway"
)

// mcpPathPlaceholder in server args is substituted with the resolved
// absolute unit directory at registration time.
const mcpPathPlaceholder = "$MCP_PATH"

// Register adds the unit's launch command to the assistant CLI. A missing
// CLI binary fails before any subprocess runs. When the name is already
// listed, the confirmer decides whether to replace the registration;
// declining counts as success (the unit is registered, after all).
func (u *Unit) Register(ctx context.Context, env *Env, cli string, scope Scope) bool {
	_ = scope // reserved: the CLIs we drive register globally for now

	log := u.logger(env).With(zap.String("cli", cli))
	clean := u.CleanName()

	if !env.Runner.LookPath(cli) {
		log.Warn("cli not found, install it first")
		return false
	}

	if u.IsRegistered(ctx, env, cli) {
		question := fmt.Sprintf("'%s' is already registered with %s. Update registration?", clean, cli)
		if !env.Confirm(question) {
			return true
		}
		u.Unregister(ctx, env, cli)
	}

	log.Info("registering", zap.String("name", clean), zap.String("runtime", string(u.Runtime)))

	var args []string
	var ok bool
	switch u.Runtime {
	case RuntimeUvx:
		args, ok = u.packageAddArgs(cli, clean, "uvx"), true
	case RuntimeNpx:
		args, ok = u.packageAddArgs(cli, clean, "npx"), true
	case RuntimeNode:
		args, ok = u.nodeAddArgs(env, cli, clean)
	default:
		// python, and anything that launches a local script (binary included).
		args, ok = u.pythonAddArgs(env, cli, clean)
	}
	if !ok {
		return false
	}

	return u.runRegister(ctx, env, cli, clean, args)
}

// Unregister removes the unit from the CLI's registration list.
func (u *Unit) Unregister(ctx context.Context, env *Env, cli string) bool {
	log := u.logger(env).With(zap.String("cli", cli))
	clean := u.CleanName()

	if !env.Runner.LookPath(cli) {
		log.Warn("cli not found")
		return false
	}

	log.Info("unregistering", zap.String("name", clean))
	res := env.Runner.Run(ctx, gateway.Request{
		Args:    []string{cli, "mcp", "remove", clean},
		Timeout: UnregisterTimeout,
	})
	if !res.Ok() {
		if res.TimedOut {
			log.Warn("unregistration timed out")
		} else {
			log.Warn("unregistration failed", zap.String("stderr", strings.TrimSpace(res.Stderr)))
		}
		return false
	}

	u.InvalidateStatus(env, cli)
	return true
}

// addCommandPrefix builds `<cli> mcp add <name> [--env K=V]* --`. Env
// pairs are emitted in sorted key order so the command is reproducible.
func (u *Unit) addCommandPrefix(cli, clean string) []string {
	args := []string{cli, "mcp", "add", clean}

	keys := make([]string, 0, len(u.EnvVars))
	for k := range u.EnvVars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--env", k+"="+u.EnvVars[k])
	}

	return append(args, "--")
}

// packageAddArgs covers uvx/npx units: the launcher plus the server args,
// no local path involved.
func (u *Unit) packageAddArgs(cli, clean, launcher string) []string {
	args := u.addCommandPrefix(cli, clean)
	args = append(args, launcher)
	return append(args, u.ServerArgs...)
}

func (u *Unit) nodeAddArgs(env *Env, cli, clean string) ([]string, bool) {
	if u.Path == "" {
		u.logger(env).Warn("not installed, install before registering")
		return nil, false
	}

	command := u.ServerCommand
	if command == "" {
		command = "node"
	}

	args := u.addCommandPrefix(cli, clean)
	args = append(args, command)
	args = append(args, u.resolveServerArgs(env, ".js", ".py")...)
	return args, true
}

func (u *Unit) pythonAddArgs(env *Env, cli, clean string) ([]string, bool) {
	if u.Path == "" {
		u.logger(env).Warn("not installed, install before registering")
		return nil, false
	}

	args := u.addCommandPrefix(cli, clean)
	args = append(args, u.findPythonInterpreter(env))

	if u.ServerCommand != "" && len(u.ServerArgs) > 0 {
		args = append(args, u.resolveServerArgs(env, ".py")...)
		return args, true
	}

	entry, ok := u.findServerEntry(env)
	if !ok {
		u.logger(env).Warn("could not find server entry point", zap.String("path", u.Path))
		return nil, false
	}
	return append(args, entry), true
}

// resolveServerArgs substitutes the $MCP_PATH placeholder and anchors
// relative script-looking args (matching one of exts, or containing a
// path separator) at the unit directory.
func (u *Unit) resolveServerArgs(env *Env, exts ...string) []string {
	dir := env.Paths.Resolve(u.Path)

	out := make([]string, 0, len(u.ServerArgs))
	for _, arg := range u.ServerArgs {
		arg = strings.ReplaceAll(arg, mcpPathPlaceholder, dir)
		if !filepath.IsAbs(arg) && looksLikeScriptPath(arg, exts) {
			arg = filepath.Join(dir, arg)
		}
		out = append(out, arg)
	}
	return out
}

func looksLikeScriptPath(arg string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(arg, ext) {
			return true
		}
	}
	return strings.Contains(arg, "/")
}

// venvCandidates are the conventional virtual-environment directories
// probed for a project-local interpreter, in preference order.
var venvCandidates = []string{
	"env/bin/python",
	".venv/bin/python",
	"venv/bin/python",
}

func (u *Unit) findPythonInterpreter(env *Env) string {
	if u.Path == "" {
		return "python"
	}
	dir := env.Paths.Resolve(u.Path)

	for _, rel := range venvCandidates {
		candidate := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return "python"
}

var (
	entryCandidates = []string{
		"src/server.py",
		"server.py",
		"src/index.py",
		"index.py",
		"main.py",
		"src/main.py",
	}
	entryGlobs = []string{"**/server.py", "**/main.py", "**/index.py"}
)

// findServerEntry locates the unit's entry-point script: the conventional
// locations first, then a recursive glob sweep.
func (u *Unit) findServerEntry(env *Env) (string, bool) {
	if u.Path == "" {
		return "", false
	}
	dir := env.Paths.Resolve(u.Path)

	for _, rel := range entryCandidates {
		candidate := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	for _, pattern := range entryGlobs {
		matches, err := doublestar.Glob(os.DirFS(dir), pattern)
		if err != nil || len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return filepath.Join(dir, filepath.FromSlash(matches[0])), true
	}

	return "", false
}

// runRegister executes the add command. A failure whose output mentions
// an existing registration gets one remove-then-retry; anything else is
// terminal.
func (u *Unit) runRegister(ctx context.Context, env *Env, cli, clean string, args []string) bool {
	log := u.logger(env).With(zap.String("cli", cli))
	log.Debug("registration command", zap.Strings("args", args))

	res := env.Runner.Run(ctx, gateway.Request{Args: args, Timeout: RegisterTimeout})
	if !res.Ok() && mentionsAlreadyExists(res) {
		log.Info("name already registered, replacing", zap.String("name", clean))
		env.Runner.Run(ctx, gateway.Request{
			Args:    []string{cli, "mcp", "remove", clean},
			Timeout: UnregisterTimeout,
		})
		res = env.Runner.Run(ctx, gateway.Request{Args: args, Timeout: RegisterTimeout})
	}

	if !res.Ok() {
		if res.TimedOut {
			log.Warn("registration timed out")
		} else {
			log.Warn("registration failed", zap.String("stderr", strings.TrimSpace(res.Stderr)))
		}
		return false
	}

	log.Info("registered", zap.String("name", clean))
	u.InvalidateStatus(env, cli)
	return true
}

func mentionsAlreadyExists(res gateway.Result) bool {
	out := strings.ToLower(res.Stdout + res.Stderr)
	return strings.Contains(out, "already exists")
}
