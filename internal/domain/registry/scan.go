package registry

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/proteinmcp/proteinmcp/internal/domain/unit"
)

var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// DescriptionFromReadme extracts a one-line description from README
// content: the first substantial line that is not a heading, not inside a
// code fence, not a blockquote, and not just links. Markdown link syntax
// is stripped; the result is truncated to limit runes. Returns "" when
// nothing qualifies.
func DescriptionFromReadme(content []byte, limit int) string {
	inFence := false
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") {
			inFence = !inFence
			continue
		}
		if inFence || line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, ">") {
			continue
		}
		if strings.TrimSpace(markdownLink.ReplaceAllString(line, "")) == "" {
			continue // badge rows and bare link lines
		}
		line = markdownLink.ReplaceAllString(line, "$1")
		if len(line) <= 10 {
			continue
		}
		if len(line) > limit {
			return line[:limit] + "..."
		}
		return line
	}
	return ""
}

// ScanFilesystem enumerates the public units directory and builds a
// minimal unit per subdirectory, with a best-effort README description.
// Units found this way carry no install source; they describe what is
// already on disk.
func (m *Manager) ScanFilesystem() map[string]*unit.Unit {
	found := map[string]*unit.Unit{}

	dir := m.env.Paths.PublicUnitsDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return found
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		u := unit.New(e.Name())
		u.Source = unit.SourceLocal
		u.Path = filepath.Join(dir, e.Name())
		u.Description = "Locally installed MCP"
		if data, err := os.ReadFile(filepath.Join(u.Path, "README.md")); err == nil {
			if desc := DescriptionFromReadme(data, 80); desc != "" {
				u.Description = desc
			}
		}
		found[e.Name()] = u
	}
	return found
}

// skipDirs are tool-units subdirectories that are never units themselves.
var skipDirs = map[string]bool{
	"public":      true,
	".git":        true,
	"__pycache__": true,
	"mcp.status":  true,
}

// DiscoverConventions walks the tool units directory and builds fully
// configured units from layout conventions: runtime from the package
// manifest, entry point from conventional locations, setup commands from
// the packaging files present. Directories with no discoverable entry
// point produce nothing rather than a broken unit.
func (m *Manager) DiscoverConventions() map[string]*unit.Unit {
	found := map[string]*unit.Unit{}

	dir := m.env.Paths.ToolUnitsDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return found
	}

	for _, e := range entries {
		if !e.IsDir() || skipDirs[e.Name()] {
			continue
		}
		u, ok := m.detectConventions(filepath.Join(dir, e.Name()), e.Name())
		if !ok {
			m.log.Debug("no entry point, skipping", zap.String("dir", e.Name()))
			continue
		}
		found[u.Name] = u
	}
	return found
}

func (m *Manager) detectConventions(dir, name string) (*unit.Unit, bool) {
	u := unit.New(name)
	u.Source = unit.SourceTool
	u.Path = dir
	u.Description = "Tool unit from local repository"
	if data, err := os.ReadFile(filepath.Join(dir, "README.md")); err == nil {
		if desc := DescriptionFromReadme(data, 100); desc != "" {
			u.Description = desc
		}
	}

	if fileExists(dir, "package.json") {
		u.Runtime = unit.RuntimeNode
		u.ServerCommand = "node"
		entry, ok := firstExisting(dir, "build/index.js", "dist/index.js", "index.js")
		if !ok {
			return nil, false
		}
		u.ServerArgs = []string{entry}
		u.SetupCommands = []string{"npm install"}
		if fileExists(dir, "tsconfig.json") {
			u.SetupCommands = append(u.SetupCommands, "npm run build")
		}
	} else {
		u.Runtime = unit.RuntimePython
		u.ServerCommand = "python"
		entry, ok := firstExisting(dir, pythonEntryGuesses(name)...)
		if !ok {
			return nil, false
		}
		u.ServerArgs = []string{entry}
		switch {
		case fileExists(dir, "setup.py") || fileExists(dir, "pyproject.toml"):
			u.SetupCommands = []string{"pip install -e ."}
		case fileExists(dir, "requirements.txt"):
			u.SetupCommands = []string{"pip install -r requirements.txt"}
		default:
			u.SetupCommands = []string{"pip install fastmcp requests"}
		}
	}

	if fileExists(dir, "quick_setup.sh") {
		u.SetupScript = "quick_setup.sh"
	}
	return u, true
}

// pythonEntryGuesses lists candidate entry scripts in preference order.
// A shortened name guess comes first: a directory called msa_server_mcp
// conventionally keeps its entry point in src/msa_mcp.py.
func pythonEntryGuesses(name string) []string {
	var guesses []string
	if strings.Contains(name, "_") {
		short := strings.ReplaceAll(name, "_server", "")
		guesses = append(guesses, "src/"+short+".py")
	}
	return append(guesses,
		"src/"+name+".py",
		"src/mcp.py",
		"src/server.py",
		name+".py",
		"server.py",
	)
}

// firstExisting returns the first relative candidate that exists under
// dir, kept relative so registry entries stay portable.
func firstExisting(dir string, candidates ...string) (string, bool) {
	for _, rel := range candidates {
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel))); err == nil {
			return rel, true
		}
	}
	return "", false
}

func fileExists(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}

// SyncWithFilesystem reconciles the installed collection with reality:
// units discovered on disk are added, entries whose path no longer exists
// are dropped, and the result is persisted. Returns the names that were
// added and removed, sorted, for display.
func (m *Manager) SyncWithFilesystem() (added, removed []string, err error) {
	installed := m.LoadInstalled(false)

	for name, u := range m.ScanFilesystem() {
		if _, ok := installed[name]; !ok {
			m.log.Info("found new unit", zap.String("name", name))
			installed[name] = u
			added = append(added, name)
		}
	}

	for name, u := range installed {
		if u.Path == "" {
			continue
		}
		if _, err := os.Stat(m.env.Paths.Resolve(u.Path)); err != nil {
			m.log.Info("dropping unit, path gone",
				zap.String("name", name), zap.String("path", u.Path))
			delete(installed, name)
			removed = append(removed, name)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	return added, removed, m.SaveInstalled(installed)
}

// DiscoverSummary reports what DiscoverAndAdd did, for display.
type DiscoverSummary struct {
	Added   []string
	Updated []string
	Skipped []string
	Total   int
}

// DiscoverAndAdd merges convention-discovered units into the installed
// collection. Existing entries are kept unless overwrite is set.
func (m *Manager) DiscoverAndAdd(overwrite bool) (DiscoverSummary, error) {
	var sum DiscoverSummary

	discovered := m.DiscoverConventions()
	if len(discovered) == 0 {
		return sum, nil
	}

	installed := m.LoadInstalled(false)
	for name, u := range discovered {
		switch {
		case installed[name] != nil && !overwrite:
			sum.Skipped = append(sum.Skipped, name)
		case installed[name] != nil:
			installed[name] = u
			sum.Updated = append(sum.Updated, name)
		default:
			installed[name] = u
			sum.Added = append(sum.Added, name)
		}
	}
	sum.Total = len(installed)

	if err := m.SaveInstalled(installed); err != nil {
		return sum, err
	}
	return sum, nil
}
