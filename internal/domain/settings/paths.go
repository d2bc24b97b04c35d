package settings

import (
	"path/filepath"
	"strings"
)

// Paths is the resolved on-disk layout for one project root. Registry
// files persist unit paths relative to ProjectRoot so a checkout can move
// without invalidating its registries.
type Paths struct {
	ProjectRoot string

	PublicConfig    string
	InstalledConfig string
	SkillsConfig    string

	// ToolUnitsDir holds per-tool generated units; PublicUnitsDir is where
	// units cloned from a URL land by default.
	ToolUnitsDir   string
	PublicUnitsDir string

	// SkillsDir holds the skill markdown sources; CommandsDir and
	// SkillFilesDir are the two install targets the assistant reads.
	SkillsDir     string
	CommandsDir   string
	SkillFilesDir string

	CacheFile string
}

// NewPaths lays out the conventional locations under root, then applies
// any overrides from cfg. Override values may themselves be relative to
// root.
func NewPaths(root string, cfg Settings) Paths {
	p := Paths{
		ProjectRoot:     root,
		PublicConfig:    filepath.Join(root, "configs", "public_mcps.yaml"),
		InstalledConfig: filepath.Join(root, "configs", "mcps.yaml"),
		SkillsConfig:    filepath.Join(root, "configs", "skills.yaml"),
		ToolUnitsDir:    filepath.Join(root, "tool-mcps"),
		PublicUnitsDir:  filepath.Join(root, "tool-mcps", "public"),
		SkillsDir:       filepath.Join(root, "workflow-skills"),
		CommandsDir:     filepath.Join(root, ".claude", "commands"),
		SkillFilesDir:   filepath.Join(root, ".claude", "skills"),
		CacheFile:       filepath.Join(root, ".mcp_status_cache.json"),
	}

	override := func(dst *string, v string) {
		if v == "" {
			return
		}
		if filepath.IsAbs(v) {
			*dst = v
		} else {
			*dst = filepath.Join(root, v)
		}
	}
	override(&p.PublicConfig, cfg.PublicConfig)
	override(&p.InstalledConfig, cfg.InstalledConfig)
	override(&p.SkillsConfig, cfg.SkillsConfig)
	override(&p.ToolUnitsDir, cfg.ToolUnitsDir)
	override(&p.PublicUnitsDir, cfg.PublicUnitsDir)
	override(&p.SkillsDir, cfg.SkillsDir)
	override(&p.CacheFile, cfg.CacheFile)

	return p
}

// Resolve turns a possibly root-relative path into an absolute one.
func (p Paths) Resolve(path string) string {
	if path == "" {
		return ""
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(p.ProjectRoot, path)
}

// Relativize converts an absolute path under the project root to a
// root-relative one for persistence. Paths outside the root (and already
// relative paths) are returned unchanged.
func (p Paths) Relativize(path string) string {
	if path == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(p.ProjectRoot, path)
	if err != nil {
		return path
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
