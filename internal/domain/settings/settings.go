// Package settings holds the tool's own configuration: where the project
// root is, where the registries and skill files live under it, and which
// assistant CLI is targeted by default. Everything is overridable from a
// TOML file at the project root.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the settings file looked up under the project root.
const FileName = "pmcp.toml"

// Settings is the persisted configuration. Path fields are optional
// overrides; empty means the conventional location under the project root.
type Settings struct {
	// DefaultTool is the assistant CLI targeted when --cli is not given.
	DefaultTool string `toml:"default_tool"`

	// AutoConfirm answers yes to every confirmation prompt.
	AutoConfirm bool `toml:"auto_confirm"`

	PublicConfig    string `toml:"public_config,omitempty"`
	InstalledConfig string `toml:"installed_config,omitempty"`
	SkillsConfig    string `toml:"skills_config,omitempty"`
	ToolUnitsDir    string `toml:"tool_units_dir,omitempty"`
	PublicUnitsDir  string `toml:"public_units_dir,omitempty"`
	SkillsDir       string `toml:"skills_dir,omitempty"`
	CacheFile       string `toml:"cache_file,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{DefaultTool: "claude"}
}

// SupportedTools lists the assistant CLIs whose `mcp` subcommands we know
// how to drive.
var SupportedTools = []string{"claude", "gemini"}

// IsSupportedTool reports whether name is a known assistant CLI.
func IsSupportedTool(name string) bool {
	for _, t := range SupportedTools {
		if t == name {
			return true
		}
	}
	return false
}

// Validate checks the settings are usable.
func (s Settings) Validate() error {
	if !IsSupportedTool(s.DefaultTool) {
		return fmt.Errorf("unsupported default tool %q (supported: %v)", s.DefaultTool, SupportedTools)
	}
	return nil
}

// Store handles persistence of settings to a TOML file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads settings from the file. A missing file yields defaults, never
// an error; a present but unparsable file is an error the caller surfaces.
func (s *Store) Load() (Settings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Settings{}, err
	}

	var cfg Settings
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", s.path, err)
	}

	if cfg.DefaultTool == "" {
		cfg.DefaultTool = Default().DefaultTool
	}
	return cfg, nil
}

// Save writes settings to the file.
func (s *Store) Save(cfg Settings) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// ProjectRoot resolves the root every relative registry path is anchored
// to: $PMCP_ROOT when set, else the working directory.
func ProjectRoot() string {
	if root := os.Getenv("PMCP_ROOT"); root != "" {
		return root
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
