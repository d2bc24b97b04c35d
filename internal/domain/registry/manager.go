// Package registry keeps the two persisted unit collections — the
// installed registry and the public registry — and the operations that
// work across them: lookup, search, filesystem discovery, and the
// install/register lifecycle addressed by unit name.
package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/proteinmcp/proteinmcp/internal/domain/unit"
)

// registryDoc is the on-disk shape: one top-level mapping keyed by unit
// name. The key carries the name; the value omits it.
type registryDoc struct {
	MCPs map[string]*unit.Unit `yaml:"mcps"`
}

// rawDoc defers per-entry decoding so one malformed entry cannot poison
// the whole file.
type rawDoc struct {
	MCPs map[string]yaml.Node `yaml:"mcps"`
}

// Manager owns both collections. Methods are safe for concurrent use: the
// bulk install path runs one goroutine per unit, and they all funnel
// registry reads and writes through m.mu. Load methods hand out copies;
// the maps behind m.mu are never exposed.
type Manager struct {
	env *unit.Env
	log *zap.Logger

	mu        sync.Mutex
	installed map[string]*unit.Unit
	public    map[string]*unit.Unit
}

func New(env *unit.Env, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{env: env, log: log.Named("registry")}
}

// EnsureConfigs creates empty registry files where none exist, so the
// first run of any command starts from a well-formed state.
func (m *Manager) EnsureConfigs() error {
	for _, path := range []string{m.env.Paths.InstalledConfig, m.env.Paths.PublicConfig} {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
		if err := os.WriteFile(path, []byte("mcps: {}\n"), 0o644); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Base(path), err)
		}
		m.log.Info("created registry file", zap.String("path", path))
	}
	return nil
}

// LoadInstalled returns the installed collection, reading the file once
// and serving from memory until forceReload or a save.
func (m *Manager) LoadInstalled(forceReload bool) map[string]*unit.Unit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyUnits(m.installedLocked(forceReload))
}

// LoadPublic is LoadInstalled for the public collection.
func (m *Manager) LoadPublic(forceReload bool) map[string]*unit.Unit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyUnits(m.publicLocked(forceReload))
}

func (m *Manager) installedLocked(forceReload bool) map[string]*unit.Unit {
	if m.installed == nil || forceReload {
		m.installed = m.loadFile(m.env.Paths.InstalledConfig)
	}
	return m.installed
}

func (m *Manager) publicLocked(forceReload bool) map[string]*unit.Unit {
	if m.public == nil || forceReload {
		m.public = m.loadFile(m.env.Paths.PublicConfig)
	}
	return m.public
}

func copyUnits(units map[string]*unit.Unit) map[string]*unit.Unit {
	out := make(map[string]*unit.Unit, len(units))
	for name, u := range units {
		out[name] = u
	}
	return out
}

// loadFile parses one registry file. An absent, empty, or null document
// is an empty collection; a malformed entry is skipped, never fatal.
func (m *Manager) loadFile(path string) map[string]*unit.Unit {
	units := map[string]*unit.Unit{}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			m.log.Warn("cannot read registry file", zap.String("path", path), zap.Error(err))
		}
		return units
	}

	var doc rawDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		m.log.Warn("malformed registry file, treating as empty",
			zap.String("path", path), zap.Error(err))
		return units
	}

	for name, node := range doc.MCPs {
		u := &unit.Unit{}
		if !node.IsZero() && node.Tag != "!!null" {
			if err := node.Decode(u); err != nil {
				m.log.Warn("skipping malformed registry entry",
					zap.String("name", name), zap.Error(err))
				continue
			}
		}
		u.Name = name
		u.Normalize()
		units[name] = u
	}
	return units
}

// SaveInstalled writes the installed collection and replaces the
// in-memory cache with it.
func (m *Manager) SaveInstalled(units map[string]*unit.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saveFile(m.env.Paths.InstalledConfig, units); err != nil {
		return err
	}
	m.installed = copyUnits(units)
	return nil
}

// SavePublic is SaveInstalled for the public collection.
func (m *Manager) SavePublic(units map[string]*unit.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.saveFile(m.env.Paths.PublicConfig, units); err != nil {
		return err
	}
	m.public = copyUnits(units)
	return nil
}

// saveFile serializes a collection. Paths inside the project root are
// stored relative so the registry survives moving the checkout; paths
// outside it persist verbatim.
func (m *Manager) saveFile(path string, units map[string]*unit.Unit) error {
	out := make(map[string]*unit.Unit, len(units))
	for name, u := range units {
		c := *u
		if c.Path != "" {
			c.Path = m.env.Paths.Relativize(c.Path)
		}
		out[name] = &c
	}

	data, err := yaml.Marshal(registryDoc{MCPs: out})
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// CRUD
// --------------------------------------------------------------------------

// AddInstalled upserts into the installed collection and persists.
func (m *Manager) AddInstalled(u *unit.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	units := m.installedLocked(false)
	units[u.Name] = u
	return m.saveFile(m.env.Paths.InstalledConfig, units)
}

// RemoveInstalled deletes by name and persists. A missing name is a
// reported no-op, not an error.
func (m *Manager) RemoveInstalled(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	units := m.installedLocked(false)
	if _, ok := units[name]; !ok {
		m.log.Warn("not in installed registry", zap.String("name", name))
		return false
	}
	delete(units, name)
	if err := m.saveFile(m.env.Paths.InstalledConfig, units); err != nil {
		m.log.Warn("save failed", zap.Error(err))
		return false
	}
	return true
}

// UpdateInstalled replaces an existing entry; unknown names are refused
// so a typo cannot silently create a new unit.
func (m *Manager) UpdateInstalled(u *unit.Unit) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	units := m.installedLocked(false)
	if _, ok := units[u.Name]; !ok {
		m.log.Warn("not in installed registry, use add", zap.String("name", u.Name))
		return false
	}
	units[u.Name] = u
	if err := m.saveFile(m.env.Paths.InstalledConfig, units); err != nil {
		m.log.Warn("save failed", zap.Error(err))
		return false
	}
	return true
}

// AddPublic upserts into the public collection and persists.
func (m *Manager) AddPublic(u *unit.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	units := m.publicLocked(false)
	units[u.Name] = u
	return m.saveFile(m.env.Paths.PublicConfig, units)
}

// RemovePublic deletes by name and persists; missing names are a
// reported no-op.
func (m *Manager) RemovePublic(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	units := m.publicLocked(false)
	if _, ok := units[name]; !ok {
		m.log.Warn("not in public registry", zap.String("name", name))
		return false
	}
	delete(units, name)
	if err := m.saveFile(m.env.Paths.PublicConfig, units); err != nil {
		m.log.Warn("save failed", zap.Error(err))
		return false
	}
	return true
}

// UpdatePublic replaces an existing public entry.
func (m *Manager) UpdatePublic(u *unit.Unit) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	units := m.publicLocked(false)
	if _, ok := units[u.Name]; !ok {
		m.log.Warn("not in public registry, use add", zap.String("name", u.Name))
		return false
	}
	units[u.Name] = u
	if err := m.saveFile(m.env.Paths.PublicConfig, units); err != nil {
		m.log.Warn("save failed", zap.Error(err))
		return false
	}
	return true
}

// --------------------------------------------------------------------------
// Queries
// --------------------------------------------------------------------------

// Get looks a unit up in the installed collection first, then the public
// one.
func (m *Manager) Get(name string) (*unit.Unit, bool) {
	if u, ok := m.LoadInstalled(false)[name]; ok {
		return u, true
	}
	u, ok := m.LoadPublic(false)[name]
	return u, ok
}

// GetInstalled looks up the installed collection only.
func (m *Manager) GetInstalled(name string) (*unit.Unit, bool) {
	u, ok := m.LoadInstalled(false)[name]
	return u, ok
}

// GetPublic looks up the public collection only.
func (m *Manager) GetPublic(name string) (*unit.Unit, bool) {
	u, ok := m.LoadPublic(false)[name]
	return u, ok
}

// Search matches query case-insensitively against name, description, and
// source across the union of both collections. Installed entries shadow
// public ones of the same name.
func (m *Manager) Search(query string) map[string]*unit.Unit {
	query = strings.ToLower(query)

	all := m.LoadPublic(false)
	for name, u := range m.LoadInstalled(false) {
		all[name] = u
	}

	results := map[string]*unit.Unit{}
	for name, u := range all {
		if strings.Contains(strings.ToLower(name), query) ||
			strings.Contains(strings.ToLower(u.Description), query) ||
			strings.Contains(strings.ToLower(u.Source), query) {
			results[name] = u
		}
	}
	return results
}

// --------------------------------------------------------------------------
// Lifecycle by name
// --------------------------------------------------------------------------

// Install materializes the named unit and records it in the installed
// collection on success.
func (m *Manager) Install(ctx context.Context, name string, force bool) bool {
	u, ok := m.Get(name)
	if !ok {
		m.log.Warn("unit not found", zap.String("name", name))
		return false
	}
	if !u.Install(ctx, m.env, force) {
		return false
	}
	if err := m.AddInstalled(u); err != nil {
		m.log.Warn("installed but not recorded", zap.String("name", name), zap.Error(err))
	}
	return true
}

// Uninstall removes the named unit's files and drops it from the
// installed collection. Only installed units qualify.
func (m *Manager) Uninstall(name string, removeFiles bool) bool {
	u, ok := m.GetInstalled(name)
	if !ok {
		m.log.Warn("not in installed registry", zap.String("name", name))
		return false
	}
	if !u.Uninstall(m.env, removeFiles) {
		return false
	}
	return m.RemoveInstalled(name)
}

// Register registers the named unit with the given CLI.
func (m *Manager) Register(ctx context.Context, name, cli string) bool {
	u, ok := m.Get(name)
	if !ok {
		m.log.Warn("unit not found", zap.String("name", name))
		return false
	}
	return u.Register(ctx, m.env, cli, unit.ScopeGlobal)
}

// Unregister removes the named unit from the given CLI.
func (m *Manager) Unregister(ctx context.Context, name, cli string) bool {
	u, ok := m.Get(name)
	if !ok {
		m.log.Warn("unit not found", zap.String("name", name))
		return false
	}
	return u.Unregister(ctx, m.env, cli)
}

// InstallAndRegister installs then registers. A failed install
// short-circuits; the unit is never registered half-materialized.
func (m *Manager) InstallAndRegister(ctx context.Context, name, cli string, force bool) bool {
	if !m.Install(ctx, name, force) {
		return false
	}
	return m.Register(ctx, name, cli)
}
