// Package app assembles the domain layer for the command trees. Both
// binaries go through New so settings, logging, the status cache and the
// managers are wired identically.
package app

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/proteinmcp/proteinmcp/internal/cli/prompt"
	"github.com/proteinmcp/proteinmcp/internal/domain/gateway"
	"github.com/proteinmcp/proteinmcp/internal/domain/registry"
	"github.com/proteinmcp/proteinmcp/internal/domain/settings"
	"github.com/proteinmcp/proteinmcp/internal/domain/skill"
	"github.com/proteinmcp/proteinmcp/internal/domain/status"
	"github.com/proteinmcp/proteinmcp/internal/domain/unit"
	"github.com/proteinmcp/proteinmcp/internal/logger"
)

// Options come from persistent command-line flags.
type Options struct {
	// Verbose enables debug logging to stderr.
	Verbose bool

	// CLI overrides the configured default assistant tool for this run.
	CLI string

	// AssumeYes suppresses confirmation prompts. JSON mode implies it:
	// machine output must never block on a terminal question.
	AssumeYes bool
}

// App is the wired application. Commands read managers off it and never
// construct domain objects themselves.
type App struct {
	Settings settings.Settings
	Paths    settings.Paths
	Log      *zap.Logger
	Env      *unit.Env
	Units    *registry.Manager
	Skills   *skill.Manager
}

// New loads settings from the project root, applies flag overrides and
// wires the managers. Config files are created on first use.
func New(opts Options) (*App, error) {
	root := settings.ProjectRoot()
	store := settings.NewStore(filepath.Join(root, settings.FileName))
	cfg, err := store.Load()
	if err != nil {
		return nil, err
	}
	if opts.CLI != "" {
		cfg.DefaultTool = opts.CLI
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(opts.Verbose)
	paths := settings.NewPaths(root, cfg)
	cache := status.NewCache(paths.CacheFile, log)

	confirm := prompt.Confirmer()
	if opts.AssumeYes || cfg.AutoConfirm {
		confirm = unit.AssumeYes
	}

	env := unit.NewEnv(paths, gateway.NewExecRunner(log), cache, log, confirm)
	units := registry.New(env, log)
	if err := units.EnsureConfigs(); err != nil {
		return nil, err
	}

	return &App{
		Settings: cfg,
		Paths:    paths,
		Log:      log,
		Env:      env,
		Units:    units,
		Skills:   skill.NewManager(env, units, log),
	}, nil
}

// Tool is the assistant CLI this run targets.
func (a *App) Tool() string {
	return a.Settings.DefaultTool
}
