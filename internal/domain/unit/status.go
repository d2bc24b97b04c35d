package unit

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/proteinmcp/proteinmcp/internal/domain/gateway"
	"github.com/proteinmcp/proteinmcp/internal/domain/settings"
	"github.com/proteinmcp/proteinmcp/internal/domain/status"
)

// IsInstalled reports local materialization. Package runtimes are always
// installed: there is nothing to put on disk. Otherwise an explicit path
// decides; failing that, the conventional clone location derived from the
// URL is probed, and Path is adopted on a hit.
func (u *Unit) IsInstalled(env *Env) bool {
	if u.Runtime.IsPackage() {
		return true
	}

	if u.Path != "" {
		_, err := os.Stat(env.Paths.Resolve(u.Path))
		return err == nil
	}

	if u.URL != "" {
		candidate := filepath.Join(env.Paths.PublicUnitsDir, repoNameFromURL(u.URL))
		if _, err := os.Stat(candidate); err == nil {
			u.Path = candidate
			return true
		}
	}

	return false
}

// IsRegistered asks the assistant CLI for its registration listing and
// substring-matches the clean name. A missing binary or a timeout reads
// as not registered; this is a query, not an operation that can fail.
func (u *Unit) IsRegistered(ctx context.Context, env *Env, cli string) bool {
	res := env.Runner.Run(ctx, gateway.Request{
		Args:    []string{cli, "mcp", "list"},
		Timeout: ListTimeout,
	})
	if !res.Ok() {
		return false
	}
	return strings.Contains(res.Stdout, u.CleanName())
}

// GetStatus derives the four-valued status, consulting the cache first
// when useCache is set. Cache entries that parse to no valid status fall
// through to a real check. Fresh results are written back.
func (u *Unit) GetStatus(ctx context.Context, env *Env, cli string, useCache bool) status.Status {
	key := status.Key(u.Name, cli)

	if useCache {
		if cached, ok := env.Cache.Get(key); ok {
			return cached
		}
	}

	st := status.FromState(u.IsInstalled(env), u.IsRegistered(ctx, env, cli))
	env.Cache.Set(key, st)
	return st
}

// InvalidateStatus drops this unit's cached status for one CLI. Callers
// must invalidate before any state-changing operation so a later
// GetStatus within the same process is never stale.
func (u *Unit) InvalidateStatus(env *Env, cli string) {
	env.Cache.Invalidate(status.Key(u.Name, cli))
}

// invalidateAllTools drops the cached status for every supported CLI.
// Materialization changes (install/uninstall) affect all of them alike.
func (u *Unit) invalidateAllTools(env *Env) {
	for _, cli := range settings.SupportedTools {
		u.InvalidateStatus(env, cli)
	}
}

// repoNameFromURL extracts the last path segment of a clone URL.
func repoNameFromURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

func (u *Unit) logger(env *Env) *zap.Logger {
	return env.Log.With(zap.String("unit", u.Name))
}
