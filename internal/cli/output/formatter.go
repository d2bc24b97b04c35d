// Package output renders command results as human-readable text or JSON.
// Commands build row/report values once and hand them here; the
// formatter decides presentation.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/proteinmcp/proteinmcp/internal/cli/errors"
)

type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

type Formatter struct {
	format OutputFormat
	color  bool
	out    io.Writer
}

func NewFormatter(format OutputFormat, useColor bool) *Formatter {
	return &Formatter{format: format, color: useColor, out: os.Stdout}
}

// NewFormatterTo renders into w instead of stdout; tests capture output
// this way.
func NewFormatterTo(w io.Writer, format OutputFormat, useColor bool) *Formatter {
	return &Formatter{format: format, color: useColor, out: w}
}

// JSONMode reports whether the formatter is in machine-output mode.
// Commands skip their progress chatter when it is.
func (f *Formatter) JSONMode() bool {
	return f.format == FormatJSON
}

// JSON writes v as indented JSON.
func (f *Formatter) JSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(f.out, `{"error": %q}`+"\n", err.Error())
		return
	}
	fmt.Fprintln(f.out, string(data))
}

// Title prints a cyan section heading.
func (f *Formatter) Title(format string, args ...any) {
	if f.color {
		fmt.Fprintln(f.out, color.CyanString(format, args...))
	} else {
		fmt.Fprintf(f.out, format+"\n", args...)
	}
}

// Printf writes plain text.
func (f *Formatter) Printf(format string, args ...any) {
	fmt.Fprintf(f.out, format, args...)
}

// Success prints a green confirmation line.
func (f *Formatter) Success(format string, args ...any) {
	if f.color {
		fmt.Fprintln(f.out, color.GreenString(format, args...))
	} else {
		fmt.Fprintf(f.out, format+"\n", args...)
	}
}

// Warnf prints a yellow caution line.
func (f *Formatter) Warnf(format string, args ...any) {
	if f.color {
		fmt.Fprintln(f.out, color.YellowString(format, args...))
	} else {
		fmt.Fprintf(f.out, format+"\n", args...)
	}
}

// FormatError renders a classified error with its hint.
func (f *Formatter) FormatError(err errors.ClassifiedError) string {
	if f.format == FormatJSON {
		data, _ := json.MarshalIndent(err, "", "  ")
		return string(data)
	}

	var msg string
	if f.color {
		msg = color.RedString("Error [%s]: %s", err.Kind, err.Message)
		if err.Hint != "" {
			msg += "\n" + color.YellowString("Hint: %s", err.Hint)
		}
	} else {
		msg = fmt.Sprintf("Error [%s]: %s", err.Kind, err.Message)
		if err.Hint != "" {
			msg += "\nHint: " + err.Hint
		}
	}
	return msg
}

// UnitTable renders unit rows. The scope and status columns appear only
// when some row carries them, so listings stay narrow.
func (f *Formatter) UnitTable(rows []UnitRow) {
	if f.format == FormatJSON {
		f.JSON(rows)
		return
	}

	withScope, withStatus := false, false
	for _, r := range rows {
		withScope = withScope || r.Scope != ""
		withStatus = withStatus || r.Status != ""
	}

	header := []string{"Name", "Runtime"}
	if withScope {
		header = append(header, "Scope")
	}
	if withStatus {
		header = append(header, "Status")
	}
	header = append(header, "Description")

	table := tablewriter.NewTable(f.out, tablewriter.WithHeader(header))
	for _, r := range rows {
		row := []string{r.Name, string(r.Runtime)}
		if withScope {
			row = append(row, r.Scope)
		}
		if withStatus {
			row = append(row, fmt.Sprintf("%s %s", r.Status.Icon(), r.Status.Label()))
		}
		row = append(row, truncate(r.Description, 60))
		table.Append(row)
	}
	table.Render()
}

// SkillTable renders skill rows.
func (f *Formatter) SkillTable(rows []SkillRow) {
	if f.format == FormatJSON {
		f.JSON(rows)
		return
	}

	withState := false
	for _, r := range rows {
		withState = withState || r.State != ""
	}

	header := []string{"Name", "Command"}
	if withState {
		header = append(header, "Status")
	}
	header = append(header, "Description")

	table := tablewriter.NewTable(f.out, tablewriter.WithHeader(header))
	for _, r := range rows {
		row := []string{r.Name, "/" + r.Command}
		if withState {
			row = append(row, r.State)
		}
		row = append(row, truncate(r.Description, 70))
		table.Append(row)
	}
	table.Render()
}

// UnitInfo renders the full detail view of one unit.
func (f *Formatter) UnitInfo(d UnitDetail) {
	if f.format == FormatJSON {
		f.JSON(d)
		return
	}

	f.Title("📦 %s", d.Name)
	f.Printf("%s\n", strings.Repeat("=", 60))
	f.Printf("  Description: %s\n", d.Description)
	f.Printf("  Source: %s\n", d.Source)
	f.Printf("  Runtime: %s\n", d.Runtime)
	if d.URL != "" {
		f.Printf("  URL: %s\n", d.URL)
	}
	if d.Path != "" {
		f.Printf("  Path: %s\n", d.Path)
	}
	f.Printf("  Status: %s %s\n", d.Status.Icon(), d.Status.Label())
	f.Printf("  Installed: %s\n", mark(d.Installed))
	f.Printf("  Registered (%s): %s\n", d.Tool, mark(d.Registered))
	if d.ServerCommand != "" {
		f.Printf("  Server Command: %s\n", d.ServerCommand)
	}
	if len(d.ServerArgs) > 0 {
		f.Printf("  Server Args: %s\n", strings.Join(d.ServerArgs, " "))
	}
	if len(d.EnvVars) > 0 {
		f.Printf("  Environment Variables:\n")
		keys := make([]string, 0, len(d.EnvVars))
		for k := range d.EnvVars {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			f.Printf("    %s=%s\n", k, d.EnvVars[k])
		}
	}
}

// SkillInfo renders the full detail view of one skill.
func (f *Formatter) SkillInfo(d SkillDetail) {
	if f.format == FormatJSON {
		f.JSON(d)
		return
	}

	f.Title("Details for Skill: %s", d.Name)
	f.Printf("%s\n", strings.Repeat("=", 60))
	f.Printf("  Description: %s\n", d.Description)
	f.Printf("  File Path: %s\n", d.File)
	f.Printf("  Status: %s\n", d.State)
	f.Printf("  Command Name: '/%s'\n", d.Command)
	if len(d.RequiredUnits) > 0 {
		f.Printf("\n  Required Units (%d):\n", len(d.RequiredUnits))
		for _, name := range d.RequiredUnits {
			f.Printf("    - %s\n", name)
		}
	}
}

// Steps renders a skill's guided prompts for copy-and-paste execution.
func (f *Formatter) Steps(name string, steps []StepRow) {
	if f.format == FormatJSON {
		f.JSON(steps)
		return
	}

	f.Title("Executing Skill: %s", name)
	f.Printf("%s\n", strings.Repeat("=", 70))
	f.Printf("Copy and paste each prompt into your conversation with the assistant.\n")
	f.Printf("%s\n", strings.Repeat("=", 70))

	if len(steps) == 0 {
		f.Printf("\nNo executable steps (prompts) found in this skill.\n")
		return
	}
	for _, step := range steps {
		f.Printf("\n--- Step %d: %s ---\n\n", step.Index, step.Title)
		for _, line := range strings.Split(step.Prompt, "\n") {
			f.Printf("    %s\n", line)
		}
	}
}

func mark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
