package output

import (
	"sort"

	"github.com/proteinmcp/proteinmcp/internal/domain/skill"
	"github.com/proteinmcp/proteinmcp/internal/domain/status"
	"github.com/proteinmcp/proteinmcp/internal/domain/unit"
)

// UnitRow is one unit prepared for display. Rows carry the full
// description; table rendering truncates, JSON does not.
type UnitRow struct {
	Name        string        `json:"name"`
	Runtime     unit.Runtime  `json:"runtime"`
	Source      string        `json:"source,omitempty"`
	Scope       string        `json:"scope,omitempty"`
	Description string        `json:"description,omitempty"`
	Status      status.Status `json:"status,omitempty"`
}

// UnitRows flattens a collection into rows sorted by name.
func UnitRows(units map[string]*unit.Unit) []UnitRow {
	rows := make([]UnitRow, 0, len(units))
	for name, u := range units {
		rows = append(rows, UnitRow{
			Name:        name,
			Runtime:     u.Runtime,
			Source:      u.Source,
			Description: u.Description,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// GroupBySource splits rows into per-source buckets and returns the
// source names in sorted order alongside the buckets.
func GroupBySource(rows []UnitRow) ([]string, map[string][]UnitRow) {
	groups := make(map[string][]UnitRow)
	for _, r := range rows {
		src := r.Source
		if src == "" {
			src = "other"
		}
		groups[src] = append(groups[src], r)
	}
	names := make([]string, 0, len(groups))
	for src := range groups {
		names = append(names, src)
	}
	sort.Strings(names)
	return names, groups
}

// SkillRow is one skill prepared for display.
type SkillRow struct {
	Name          string   `json:"name"`
	Command       string   `json:"command"`
	Description   string   `json:"description,omitempty"`
	State         string   `json:"state,omitempty"`
	RequiredUnits []string `json:"required_units,omitempty"`
}

// InstallReport is the machine-readable result of a unit install or
// uninstall.
type InstallReport struct {
	Name    string        `json:"name"`
	Tool    string        `json:"tool"`
	Before  status.Status `json:"before,omitempty"`
	After   status.Status `json:"after,omitempty"`
	Success bool          `json:"success"`
}

// SkillReport is the machine-readable result of a skill install or
// uninstall, with the per-unit outcomes.
type SkillReport struct {
	Name    string          `json:"name"`
	Tool    string          `json:"tool"`
	Units   map[string]bool `json:"units,omitempty"`
	Success bool            `json:"success"`
}

// SyncReport summarizes a registry/filesystem reconciliation.
type SyncReport struct {
	Added   []string `json:"added"`
	Removed []string `json:"removed"`
	Total   int      `json:"total"`
}

// UnitDetail is the full view of one unit for the info command.
type UnitDetail struct {
	Name          string            `json:"name"`
	Description   string            `json:"description,omitempty"`
	Source        string            `json:"source,omitempty"`
	Runtime       unit.Runtime      `json:"runtime"`
	URL           string            `json:"url,omitempty"`
	Path          string            `json:"path,omitempty"`
	Status        status.Status     `json:"status"`
	Installed     bool              `json:"installed"`
	Registered    bool              `json:"registered"`
	Tool          string            `json:"tool"`
	ServerCommand string            `json:"server_command,omitempty"`
	ServerArgs    []string          `json:"server_args,omitempty"`
	EnvVars       map[string]string `json:"env_vars,omitempty"`
}

// NewUnitDetail assembles the detail view from a unit and its observed
// state.
func NewUnitDetail(u *unit.Unit, st status.Status, installed, registered bool, tool string) UnitDetail {
	return UnitDetail{
		Name:          u.Name,
		Description:   u.Description,
		Source:        u.Source,
		Runtime:       u.Runtime,
		URL:           u.URL,
		Path:          u.Path,
		Status:        st,
		Installed:     installed,
		Registered:    registered,
		Tool:          tool,
		ServerCommand: u.ServerCommand,
		ServerArgs:    u.ServerArgs,
		EnvVars:       u.EnvVars,
	}
}

// SkillDetail is the full view of one skill for the info command.
type SkillDetail struct {
	Name          string   `json:"name"`
	Command       string   `json:"command"`
	Description   string   `json:"description,omitempty"`
	File          string   `json:"file"`
	State         string   `json:"state"`
	RequiredUnits []string `json:"required_units,omitempty"`
}

// StepRow is one guided prompt from a skill file, numbered for display.
type StepRow struct {
	Index  int    `json:"index"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

// StepRows numbers a parsed step list.
func StepRows(steps []skill.Step) []StepRow {
	rows := make([]StepRow, 0, len(steps))
	for i, s := range steps {
		rows = append(rows, StepRow{Index: i + 1, Title: s.Title, Prompt: s.Prompt})
	}
	return rows
}
