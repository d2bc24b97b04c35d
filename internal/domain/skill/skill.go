// Package skill manages workflow skills: markdown playbooks that install
// as assistant commands and declare which units they need. A skill
// installs by copying its file into the assistant's commands and skills
// directories; its unit requirements come from skills.yaml or, failing
// that, from the install directives written in the markdown itself.
package skill

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/proteinmcp/proteinmcp/internal/domain/settings"
)

// State is a skill's installation state. Install copies the file to two
// places, so a skill can be half-installed when one copy goes missing.
type State int

const (
	StateNotInstalled State = iota
	StateCommandOnly
	StateSkillOnly
	StateInstalled
)

func (s State) String() string {
	switch s {
	case StateInstalled:
		return "Installed"
	case StateSkillOnly:
		return "Partially installed (skill only)"
	case StateCommandOnly:
		return "Partially installed (command only)"
	default:
		return "Not Installed"
	}
}

// Config is the optional per-skill override from skills.yaml. The zero
// value means everything derives from the markdown file. A non-nil
// RequiredMCPs wins over file parsing even when empty.
type Config struct {
	Description  string   `yaml:"description,omitempty"`
	RequiredMCPs []string `yaml:"required_mcps,omitempty"`
}

// Skill is one workflow skill backed by a markdown file.
type Skill struct {
	Name     string
	FilePath string

	// CommandName is the slash-command identifier: dashes instead of
	// underscores, and "modeling" shortened to "model" to keep commands
	// typeable.
	CommandName string

	// CommandFile and SkillFile are the two install targets.
	CommandFile string
	SkillFile   string

	cfg Config
}

// New builds a Skill from its name and markdown path. The name is the
// file stem with any _skill suffix already stripped.
func New(name, filePath string, paths settings.Paths, cfg Config) *Skill {
	dashed := strings.ReplaceAll(name, "_", "-")
	command := dashed
	if strings.Contains(command, "modeling") {
		command = strings.ReplaceAll(command, "modeling", "model")
	}
	return &Skill{
		Name:        name,
		FilePath:    filePath,
		CommandName: command,
		CommandFile: filepath.Join(paths.CommandsDir, command+".md"),
		SkillFile:   filepath.Join(paths.SkillFilesDir, dashed+".md"),
		cfg:         cfg,
	}
}

// Description returns the configured description, or the first non-empty
// line after the file's first heading.
func (s *Skill) Description() string {
	if s.cfg.Description != "" {
		return s.cfg.Description
	}

	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		return "Could not read description."
	}
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		for _, next := range lines[i+1:] {
			if t := strings.TrimSpace(next); t != "" {
				return t
			}
		}
	}
	return "No description found."
}

var unitDirective = regexp.MustCompile(`pmcp install (\w+)`)

// RequiredUnits returns the units this skill depends on: the configured
// list when one exists, otherwise every unit named in a `pmcp install`
// directive in the file, sorted and deduplicated.
func (s *Skill) RequiredUnits() []string {
	if s.cfg.RequiredMCPs != nil {
		return s.cfg.RequiredMCPs
	}

	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	var names []string
	for _, match := range unitDirective.FindAllStringSubmatch(string(data), -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	sort.Strings(names)
	return names
}

// CleanupUnits returns the units to tear down on uninstall. Same set as
// RequiredUnits; the distinction exists so callers read as intended.
func (s *Skill) CleanupUnits() []string {
	return s.RequiredUnits()
}

// State reports which of the two install targets exist.
func (s *Skill) State() State {
	_, cmdErr := os.Stat(s.CommandFile)
	_, skillErr := os.Stat(s.SkillFile)
	switch {
	case cmdErr == nil && skillErr == nil:
		return StateInstalled
	case skillErr == nil:
		return StateSkillOnly
	case cmdErr == nil:
		return StateCommandOnly
	default:
		return StateNotInstalled
	}
}

// Install copies the skill file to both targets, creating the
// directories as needed. Re-installing overwrites stale copies.
func (s *Skill) Install() error {
	data, err := os.ReadFile(s.FilePath)
	if err != nil {
		return fmt.Errorf("read skill file: %w", err)
	}
	for _, target := range []string{s.CommandFile, s.SkillFile} {
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create install dir: %w", err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("install %s: %w", filepath.Base(target), err)
		}
	}
	return nil
}

// Uninstall removes whichever install targets exist and reports whether
// anything was actually removed. Removing an uninstalled skill is fine.
func (s *Skill) Uninstall() (bool, error) {
	removed := false
	for _, target := range []string{s.CommandFile, s.SkillFile} {
		err := os.Remove(target)
		switch {
		case err == nil:
			removed = true
		case !os.IsNotExist(err):
			return removed, fmt.Errorf("remove %s: %w", filepath.Base(target), err)
		}
	}
	return removed, nil
}
