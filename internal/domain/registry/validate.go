package registry

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/proteinmcp/proteinmcp/internal/domain/unit"
)

// ValidationError represents a single validation finding.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult holds the result of validating a unit or a registry
// file. Warnings never make a result invalid; they flag entries that will
// load but probably not behave as intended.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Warnings []ValidationError `json:"warnings,omitempty"`
}

func (r *ValidationResult) addError(field, message string) {
	r.Errors = append(r.Errors, ValidationError{field, message})
}

func (r *ValidationResult) addWarning(field, message string) {
	r.Warnings = append(r.Warnings, ValidationError{field, message})
}

// Regular expressions for validation
var (
	namePattern   = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)
	envVarPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
)

// ValidRuntimes contains all runtime values the install and register
// paths understand. Anything else silently degrades to python at load
// time, which is almost never what the author meant.
var ValidRuntimes = map[unit.Runtime]bool{
	unit.RuntimePython: true,
	unit.RuntimeNode:   true,
	unit.RuntimeUvx:    true,
	unit.RuntimeNpx:    true,
	unit.RuntimeBinary: true,
}

// ValidSources contains all source values the formatter groups by.
var ValidSources = map[string]bool{
	unit.SourceCommunity: true,
	unit.SourceLocal:     true,
	unit.SourceTool:      true,
}

// ValidURLSchemes are the clone schemes git accepts from a registry entry.
var ValidURLSchemes = map[string]bool{
	"https": true,
	"http":  true,
	"git":   true,
	"ssh":   true,
}

// ValidateUnit checks one registry entry against the rules the install,
// register, and display paths rely on. The name comes in separately
// because it lives in the mapping key, not the entry body.
func ValidateUnit(name string, u *unit.Unit) *ValidationResult {
	result := &ValidationResult{Valid: true}

	validateName(name, result)
	validateURL(u.URL, result)
	validateRuntime(u, result)
	validateEnvVars(u.EnvVars, result)
	validateSetup(u, result)
	validateDependencies(name, u.Dependencies, result)
	addWarnings(u, result)

	result.Valid = len(result.Errors) == 0
	return result
}

func validateName(name string, result *ValidationResult) {
	if name == "" {
		result.addError("name", "required field is missing")
		return
	}
	if len(name) < 2 || len(name) > 64 {
		result.addError("name", "must be between 2 and 64 characters")
	} else if !namePattern.MatchString(name) {
		result.addError("name", "must be letters, numbers, dots, underscores, and hyphens, starting with a letter or number")
	}
}

func validateURL(raw string, result *ValidationResult) {
	if raw == "" {
		return
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		result.addError("url", fmt.Sprintf("not a valid URL: %v", err))
		return
	}
	if !ValidURLSchemes[parsed.Scheme] {
		result.addError("url", fmt.Sprintf("invalid scheme: %s", parsed.Scheme))
		return
	}
	if parsed.Scheme == "http" {
		result.addWarning("url", "unencrypted http clone URL; prefer https")
	}
}

func validateRuntime(u *unit.Unit, result *ValidationResult) {
	if u.Runtime != "" && !ValidRuntimes[u.Runtime] {
		result.addError("runtime", fmt.Sprintf("invalid runtime: %s (would silently fall back to python)", u.Runtime))
		return
	}

	switch u.Runtime {
	case unit.RuntimeUvx, unit.RuntimeNpx:
		if len(u.ServerArgs) == 0 {
			result.addError("server_args", fmt.Sprintf("required for %s units: the first argument names the package to launch", u.Runtime))
		}
	case unit.RuntimeNode:
		if len(u.ServerArgs) == 0 {
			result.addWarning("server_args", "registration will search conventional entry points (build/index.js, dist/index.js, index.js)")
		}
	}
}

func validateEnvVars(envVars map[string]string, result *ValidationResult) {
	names := make([]string, 0, len(envVars))
	for name := range envVars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !envVarPattern.MatchString(name) {
			result.addError(fmt.Sprintf("env_vars.%s", name), "must be uppercase letters, numbers, and underscores")
		}
	}
}

func validateSetup(u *unit.Unit, result *ValidationResult) {
	if u.SetupScript != "" && filepath.IsAbs(u.SetupScript) {
		result.addWarning("setup_script", "expected a path relative to the unit directory")
	}
	for i, cmd := range u.SetupCommands {
		if cmd == "" {
			result.addError(fmt.Sprintf("setup_commands[%d]", i), "empty command")
		}
	}
}

func validateDependencies(name string, deps []string, result *ValidationResult) {
	for i, dep := range deps {
		if dep == name {
			result.addError(fmt.Sprintf("dependencies[%d]", i), "unit depends on itself")
		} else if dep == "" {
			result.addError(fmt.Sprintf("dependencies[%d]", i), "empty dependency name")
		}
	}
}

func addWarnings(u *unit.Unit, result *ValidationResult) {
	if u.Source != "" && !ValidSources[u.Source] {
		result.addWarning("source", fmt.Sprintf("unrecognized source %q; display grouping expects Community, Local, or Tool", u.Source))
	}
	if u.Description == "" {
		result.addWarning("description", "recommended: add a description for search and listings")
	} else if len(u.Description) > 200 {
		result.addWarning("description", "longer than 200 characters; listings truncate well before that")
	}
	if u.URL == "" && u.Path == "" && u.Runtime != unit.RuntimeUvx && u.Runtime != unit.RuntimeNpx {
		result.addWarning("url/path", "neither url nor path is set; install has nothing to materialize")
	}
}

// ValidateFile reads and validates one registry YAML file. An unreadable
// file is an error; unparseable YAML and per-entry findings are reported
// in the result. Entry findings carry the unit name as a field prefix.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var doc rawDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "yaml", Message: fmt.Sprintf("invalid YAML: %v", err)}},
		}, nil
	}

	result := &ValidationResult{Valid: true}
	if doc.MCPs == nil {
		result.addWarning("mcps", "no mcps mapping found; the file loads as an empty registry")
		return result, nil
	}

	names := make([]string, 0, len(doc.MCPs))
	for name := range doc.MCPs {
		names = append(names, name)
	}
	sort.Strings(names)

	// CLI registration collapses slashes and dashes to underscores, so two
	// differently named entries can still collide there.
	cliNames := map[string]string{}

	for _, name := range names {
		node := doc.MCPs[name]
		u := &unit.Unit{Name: name}
		if !node.IsZero() && node.Tag != "!!null" {
			if err := node.Decode(u); err != nil {
				result.addError(name, fmt.Sprintf("invalid entry: %v", err))
				continue
			}
		}

		if prev, ok := cliNames[u.CleanName()]; ok {
			result.addError(name, fmt.Sprintf("registers under the same CLI name as %q", prev))
		} else {
			cliNames[u.CleanName()] = name
		}

		sub := ValidateUnit(name, u)
		for _, e := range sub.Errors {
			result.addError(name+"."+e.Field, e.Message)
		}
		for _, w := range sub.Warnings {
			result.addWarning(name+"."+w.Field, w.Message)
		}
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

// ValidateFiles validates several registry files, keyed by path. A file
// that cannot be read yields an invalid result rather than aborting the
// rest.
func ValidateFiles(paths ...string) map[string]*ValidationResult {
	results := make(map[string]*ValidationResult, len(paths))
	for _, path := range paths {
		result, err := ValidateFile(path)
		if err != nil {
			result = &ValidationResult{
				Valid:  false,
				Errors: []ValidationError{{Field: "file", Message: err.Error()}},
			}
		}
		results[path] = result
	}
	return results
}
