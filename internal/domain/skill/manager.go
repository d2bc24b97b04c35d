package skill

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/proteinmcp/proteinmcp/internal/domain/registry"
	"github.com/proteinmcp/proteinmcp/internal/domain/unit"
)

// Manager discovers skills in the skills directory and runs the combined
// skill-plus-units install and uninstall flows.
type Manager struct {
	env   *unit.Env
	units *registry.Manager
	log   *zap.Logger
}

func NewManager(env *unit.Env, units *registry.Manager, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{env: env, units: units, log: log.Named("skill")}
}

// configDoc is the skills.yaml shape: one mapping of skill name to
// overrides.
type configDoc struct {
	Skills map[string]Config `yaml:"skills"`
}

// loadConfig reads skills.yaml. A missing or malformed file means no
// overrides; skills still work from their markdown alone.
func (m *Manager) loadConfig() map[string]Config {
	data, err := os.ReadFile(m.env.Paths.SkillsConfig)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn("cannot read skills config", zap.Error(err))
		}
		return nil
	}
	var doc configDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		m.log.Warn("malformed skills config, ignoring", zap.Error(err))
		return nil
	}
	return doc.Skills
}

// LoadAvailable scans the skills directory for markdown files. The skill
// name is the file stem, minus any _skill suffix.
func (m *Manager) LoadAvailable() map[string]*Skill {
	skills := map[string]*Skill{}

	entries, err := os.ReadDir(m.env.Paths.SkillsDir)
	if err != nil {
		return skills
	}
	cfg := m.loadConfig()

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		name = strings.TrimSuffix(name, "_skill")
		skills[name] = New(name,
			filepath.Join(m.env.Paths.SkillsDir, e.Name()), m.env.Paths, cfg[name])
	}
	return skills
}

// Get retrieves one skill by name.
func (m *Manager) Get(name string) (*Skill, bool) {
	s, ok := m.LoadAvailable()[name]
	return s, ok
}

// InstallWithUnits installs the skill files, then brings every required
// unit to installed-and-registered state against cli (installed only,
// when noRegister is set). Unit failures do not roll the skill back;
// they come back in the result map for the caller to report.
func (m *Manager) InstallWithUnits(ctx context.Context, name, cli string, noRegister bool) (map[string]bool, error) {
	s, ok := m.Get(name)
	if !ok {
		return nil, fmt.Errorf("skill %q not found", name)
	}
	if err := s.Install(); err != nil {
		return nil, err
	}
	m.log.Info("skill installed",
		zap.String("name", name), zap.String("command", s.CommandName))

	required := s.RequiredUnits()
	if len(required) == 0 {
		return nil, nil
	}

	var results map[string]bool
	if noRegister {
		// Install only. Sequential is fine here: the parallel fast path
		// exists to overlap clone I/O before the shared registration
		// phase, and without registration there is nothing to order.
		results = make(map[string]bool, len(required))
		for _, unitName := range required {
			results[unitName] = m.units.Install(ctx, unitName, false)
		}
	} else {
		results = m.units.BulkInstallAndRegister(ctx, required, cli, false)
	}

	for unitName, ok := range results {
		if !ok {
			m.log.Warn("required unit failed",
				zap.String("skill", name), zap.String("unit", unitName))
		}
	}
	return results, nil
}

// UninstallWithUnits removes the skill files and unregisters its cleanup
// units from cli. By default unit files stay on disk and only their
// registrations go; removeFiles also deletes the files and drops the
// units from the installed registry.
func (m *Manager) UninstallWithUnits(ctx context.Context, name, cli string, removeFiles bool) (map[string]bool, error) {
	s, ok := m.Get(name)
	if !ok {
		return nil, fmt.Errorf("skill %q not found", name)
	}
	removed, err := s.Uninstall()
	if err != nil {
		return nil, err
	}
	if !removed {
		m.log.Info("skill files were not installed", zap.String("name", name))
	}

	cleanup := s.CleanupUnits()
	if len(cleanup) == 0 {
		return nil, nil
	}

	results := make(map[string]bool, len(cleanup))
	for _, unitName := range cleanup {
		u, ok := m.units.Get(unitName)
		if !ok {
			m.log.Warn("cleanup unit not in registry", zap.String("unit", unitName))
			results[unitName] = false
			continue
		}

		ok = true
		if u.IsRegistered(ctx, m.env, cli) {
			ok = u.Unregister(ctx, m.env, cli)
		}
		if removeFiles && u.IsInstalled(m.env) {
			ok = m.units.Uninstall(unitName, true) && ok
		}
		results[unitName] = ok
	}
	return results, nil
}

// CheckRequiredUnits partitions unit names by whether they are known and
// registered with cli. Execution refuses to start while any are missing.
func (m *Manager) CheckRequiredUnits(ctx context.Context, names []string, cli string) (available, missing []string) {
	for _, name := range names {
		u, ok := m.units.Get(name)
		if ok && u.IsRegistered(ctx, m.env, cli) {
			available = append(available, name)
		} else {
			missing = append(missing, name)
		}
	}
	return available, missing
}
