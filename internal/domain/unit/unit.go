// Package unit models one installable MCP server or workflow tool: its
// identity, runtime kind, source location, and the install / register /
// unregister / uninstall lifecycle against an assistant CLI. The external
// system is always the authority: every operation checks the filesystem
// and the CLI's own listing rather than trusting stored state.
package unit

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/proteinmcp/proteinmcp/internal/domain/gateway"
	"github.com/proteinmcp/proteinmcp/internal/domain/settings"
	"github.com/proteinmcp/proteinmcp/internal/domain/status"
)

// Runtime selects the registration strategy for a unit.
type Runtime string

const (
	RuntimePython Runtime = "python"
	RuntimeNode   Runtime = "node"
	RuntimeUvx    Runtime = "uvx"
	RuntimeNpx    Runtime = "npx"
	RuntimeBinary Runtime = "binary"
)

// NormalizeRuntime maps unknown runtime strings to RuntimePython.
// Registry files from older or newer versions may carry values this build
// does not know; construction must not fail on them.
func NormalizeRuntime(s string) Runtime {
	switch Runtime(s) {
	case RuntimePython, RuntimeNode, RuntimeUvx, RuntimeNpx, RuntimeBinary:
		return Runtime(s)
	}
	return RuntimePython
}

// IsPackage reports whether the runtime launches from a package manager
// (uvx/npx). Package units never own local files.
func (r Runtime) IsPackage() bool {
	return r == RuntimeUvx || r == RuntimeNpx
}

// Scope is the registration scope. Accepted and plumbed through but not
// yet honored by the CLIs we drive.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeProject Scope = "project"
)

// Unit sources, as displayed and persisted in the registry files.
const (
	SourceCommunity = "Community"
	SourceLocal     = "Local"
	SourceTool      = "Tool"
)

// Confirmer answers an interactive yes/no question. The command layer
// passes a prompt; automation passes AssumeYes or AssumeNo.
type Confirmer func(question string) bool

func AssumeYes(string) bool { return true }
func AssumeNo(string) bool  { return false }

// Timeouts for the external calls this package makes. Each blocking call
// is bounded; a timeout is a terminal failure for that call.
const (
	ListTimeout        = 30 * time.Second
	CloneTimeout       = 300 * time.Second
	SetupCmdTimeout    = 600 * time.Second
	SetupScriptTimeout = 1800 * time.Second
	RegisterTimeout    = 30 * time.Second
	UnregisterTimeout  = 10 * time.Second
)

// Env bundles what lifecycle operations need from the outside world. One
// Env is built per CLI invocation and shared across units.
type Env struct {
	Paths   settings.Paths
	Runner  gateway.Runner
	Cache   *status.Cache
	Log     *zap.Logger
	Confirm Confirmer
}

// NewEnv fills the optional fields with safe defaults.
func NewEnv(paths settings.Paths, runner gateway.Runner, cache *status.Cache, log *zap.Logger, confirm Confirmer) *Env {
	if log == nil {
		log = zap.NewNop()
	}
	if confirm == nil {
		confirm = AssumeYes
	}
	return &Env{
		Paths:   paths,
		Runner:  runner,
		Cache:   cache,
		Log:     log.Named("unit"),
		Confirm: confirm,
	}
}

// Unit is one registry entry. All fields except Name are optional; Name
// is the registry map key and is not serialized in the value.
type Unit struct {
	Name        string `yaml:"-"`
	URL         string `yaml:"url,omitempty"`
	Description string `yaml:"description,omitempty"`
	Source      string `yaml:"source,omitempty"`

	Runtime Runtime `yaml:"runtime,omitempty"`

	SetupCommands []string `yaml:"setup_commands,omitempty"`
	SetupScript   string   `yaml:"setup_script,omitempty"`

	ServerCommand string            `yaml:"server_command,omitempty"`
	ServerArgs    []string          `yaml:"server_args,omitempty"`
	EnvVars       map[string]string `yaml:"env_vars,omitempty"`
	Dependencies  []string          `yaml:"dependencies,omitempty"`

	// Path is the local checkout, stored project-root-relative when it
	// lies inside the root so registry files survive moving the checkout.
	Path string `yaml:"path,omitempty"`
}

// New constructs a Unit with the conventional defaults applied.
func New(name string) *Unit {
	u := &Unit{Name: name}
	u.Normalize()
	return u
}

// Normalize applies construction defaults: unknown runtimes become
// python, empty sources become Community. Called after every YAML decode.
func (u *Unit) Normalize() {
	u.Runtime = NormalizeRuntime(string(u.Runtime))
	if u.Source == "" {
		u.Source = SourceCommunity
	}
}

// CleanName is the identifier used when talking to the assistant CLI,
// which dislikes slashes and dashes in server names.
func (u *Unit) CleanName() string {
	clean := strings.ReplaceAll(u.Name, "/", "_")
	return strings.ReplaceAll(clean, "-", "_")
}
