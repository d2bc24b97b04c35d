package skill

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/proteinmcp/proteinmcp/internal/domain/gateway"
	"github.com/proteinmcp/proteinmcp/internal/domain/gateway/gatewaytest"
	"github.com/proteinmcp/proteinmcp/internal/domain/registry"
	"github.com/proteinmcp/proteinmcp/internal/domain/settings"
	"github.com/proteinmcp/proteinmcp/internal/domain/status"
	"github.com/proteinmcp/proteinmcp/internal/domain/unit"
)

func testManager(t *testing.T) (*Manager, *gatewaytest.FakeRunner) {
	t.Helper()
	root := t.TempDir()
	paths := settings.NewPaths(root, settings.Default())
	fake := gatewaytest.New()
	cache := status.NewCache(paths.CacheFile, zap.NewNop())
	env := unit.NewEnv(paths, fake, cache, zap.NewNop(), unit.AssumeYes)
	units := registry.New(env, zap.NewNop())
	return NewManager(env, units, zap.NewNop()), fake
}

func cloneStub(t *testing.T, fake *gatewaytest.FakeRunner) {
	t.Helper()
	fake.RespondFunc("git clone", func(c gatewaytest.Call) gateway.Result {
		target := c.Args[len(c.Args)-1]
		if err := os.MkdirAll(target, 0o755); err != nil {
			return gateway.Result{ExitCode: 1, Err: err}
		}
		return gateway.Result{}
	})
}

func TestLoadAvailable(t *testing.T) {
	m, _ := testManager(t)
	paths := m.env.Paths

	writeSkillFile(t, paths, "protein_modeling_skill.md", "# Modeling\n\nPredict.\n")
	writeSkillFile(t, paths, "docking.md", "# Docking\n\nDock.\n")
	writeSkillFile(t, paths, "notes.txt", "not a skill\n")
	require.NoError(t, os.MkdirAll(filepath.Join(paths.SkillsDir, "archive.md"), 0o755))

	skills := m.LoadAvailable()
	require.Len(t, skills, 2)

	modeling := skills["protein_modeling"]
	require.NotNil(t, modeling, "the _skill suffix is stripped from the name")
	assert.Equal(t, filepath.Join(paths.SkillsDir, "protein_modeling_skill.md"), modeling.FilePath)
	assert.Contains(t, skills, "docking")
}

func TestLoadAvailableMissingDir(t *testing.T) {
	m, _ := testManager(t)
	assert.Empty(t, m.LoadAvailable())
}

func TestConfigOverrides(t *testing.T) {
	m, _ := testManager(t)
	paths := m.env.Paths

	writeSkillFile(t, paths, "docking.md",
		"# Docking\n\nFile description.\n\npmcp install file_tool\n")
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.SkillsConfig), 0o755))
	require.NoError(t, os.WriteFile(paths.SkillsConfig, []byte(`skills:
  docking:
    description: Configured docking description
    required_mcps:
      - vina_tool
`), 0o644))

	s, ok := m.Get("docking")
	require.True(t, ok)
	assert.Equal(t, "Configured docking description", s.Description())
	assert.Equal(t, []string{"vina_tool"}, s.RequiredUnits())
}

func TestConfigMalformedIsIgnored(t *testing.T) {
	m, _ := testManager(t)
	paths := m.env.Paths

	writeSkillFile(t, paths, "docking.md", "# Docking\n\nFile description.\n")
	require.NoError(t, os.MkdirAll(filepath.Dir(paths.SkillsConfig), 0o755))
	require.NoError(t, os.WriteFile(paths.SkillsConfig, []byte("skills: [broken\n"), 0o644))

	s, ok := m.Get("docking")
	require.True(t, ok)
	assert.Equal(t, "File description.", s.Description())
}

func TestInstallWithUnits(t *testing.T) {
	m, fake := testManager(t)
	cloneStub(t, fake)
	paths := m.env.Paths

	writeSkillFile(t, paths, "fold_pipeline_skill.md",
		"# Fold Pipeline\n\nPredict structures end to end.\n\n"+
			"Setup: `pmcp install alpha_tool` and `pmcp install beta_tool`\n")

	for _, name := range []string{"alpha_tool", "beta_tool"} {
		u := unit.New(name)
		u.URL = "https://github.com/example/" + name + ".git"
		u.ServerArgs = []string{"server.py"}
		require.NoError(t, m.units.AddPublic(u))
	}

	results, err := m.InstallWithUnits(context.Background(), "fold_pipeline", "claude", false)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"alpha_tool": true, "beta_tool": true}, results)

	s, ok := m.Get("fold_pipeline")
	require.True(t, ok)
	assert.Equal(t, StateInstalled, s.State())

	assert.Equal(t, 2, fake.CountMatching("git clone"))
	assert.Equal(t, 2, fake.CountMatching("claude mcp add"))
}

func TestInstallWithUnitsNoRegister(t *testing.T) {
	m, fake := testManager(t)
	cloneStub(t, fake)
	paths := m.env.Paths

	writeSkillFile(t, paths, "fold_pipeline_skill.md",
		"# Fold Pipeline\n\nPredict structures end to end.\n\npmcp install alpha_tool\n")

	u := unit.New("alpha_tool")
	u.URL = "https://github.com/example/alpha_tool.git"
	require.NoError(t, m.units.AddPublic(u))

	results, err := m.InstallWithUnits(context.Background(), "fold_pipeline", "claude", true)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"alpha_tool": true}, results)

	assert.Equal(t, 1, fake.CountMatching("git clone"))
	assert.Empty(t, fake.CallsMatching("claude mcp add"))
}

func TestInstallWithUnitsUnknownSkill(t *testing.T) {
	m, _ := testManager(t)
	_, err := m.InstallWithUnits(context.Background(), "ghost", "claude", false)
	assert.Error(t, err)
}

func TestInstallWithUnitsNoUnits(t *testing.T) {
	m, fake := testManager(t)
	paths := m.env.Paths
	writeSkillFile(t, paths, "solo.md", "# Solo\n\nNeeds nothing.\n")

	results, err := m.InstallWithUnits(context.Background(), "solo", "claude", false)
	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Empty(t, fake.Calls())

	s, _ := m.Get("solo")
	assert.Equal(t, StateInstalled, s.State())
}

func TestInstallWithUnitsReportsFailures(t *testing.T) {
	m, _ := testManager(t)
	paths := m.env.Paths
	writeSkillFile(t, paths, "broken.md",
		"# Broken\n\nWants a unit nobody has.\n\npmcp install ghost_tool\n")

	results, err := m.InstallWithUnits(context.Background(), "broken", "claude", false)
	require.NoError(t, err, "unit failures do not roll the skill back")
	assert.Equal(t, map[string]bool{"ghost_tool": false}, results)

	s, _ := m.Get("broken")
	assert.Equal(t, StateInstalled, s.State())
}

func TestUninstallWithUnits(t *testing.T) {
	m, fake := testManager(t)
	paths := m.env.Paths

	writeSkillFile(t, paths, "fold.md",
		"# Fold\n\nDesc.\n\npmcp install alpha_tool\npmcp install beta_tool\npmcp install ghost_tool\n")

	alpha := unit.New("alpha_tool")
	beta := unit.New("beta_tool")
	require.NoError(t, m.units.AddInstalled(alpha))
	require.NoError(t, m.units.AddInstalled(beta))
	fake.Respond("claude mcp list", gateway.Result{Stdout: "alpha_tool: sse\n"})

	s, ok := m.Get("fold")
	require.True(t, ok)
	require.NoError(t, s.Install())

	results, err := m.UninstallWithUnits(context.Background(), "fold", "claude", false)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{
		"alpha_tool": true,
		"beta_tool":  true,
		"ghost_tool": false,
	}, results)

	assert.Equal(t, StateNotInstalled, s.State())
	assert.Equal(t, 1, fake.CountMatching("claude mcp remove alpha_tool"),
		"only the registered unit gets unregistered")
	assert.Zero(t, fake.CountMatching("claude mcp remove beta_tool"))
}

func TestUninstallWithUnitsRemoveFiles(t *testing.T) {
	m, fake := testManager(t)
	paths := m.env.Paths

	writeSkillFile(t, paths, "fold.md", "# Fold\n\nDesc.\n\npmcp install alpha_tool\n")

	alpha := unit.New("alpha_tool")
	alpha.Path = filepath.Join(paths.PublicUnitsDir, "alpha_tool")
	require.NoError(t, os.MkdirAll(alpha.Path, 0o755))
	require.NoError(t, m.units.AddInstalled(alpha))
	fake.Respond("claude mcp list", gateway.Result{Stdout: "alpha_tool: sse\n"})

	s, ok := m.Get("fold")
	require.True(t, ok)
	require.NoError(t, s.Install())

	results, err := m.UninstallWithUnits(context.Background(), "fold", "claude", true)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"alpha_tool": true}, results)

	assert.Equal(t, 1, fake.CountMatching("claude mcp remove alpha_tool"))
	assert.NoDirExists(t, alpha.Path, "remove-files deletes the unit checkout")
	assert.NotContains(t, m.units.LoadInstalled(true), "alpha_tool",
		"removed units are dropped from the installed registry")
}

func TestCheckRequiredUnits(t *testing.T) {
	m, fake := testManager(t)

	require.NoError(t, m.units.AddInstalled(unit.New("alpha_tool")))
	require.NoError(t, m.units.AddInstalled(unit.New("beta_tool")))
	fake.Respond("claude mcp list", gateway.Result{Stdout: "alpha_tool: sse\n"})

	available, missing := m.CheckRequiredUnits(context.Background(),
		[]string{"alpha_tool", "beta_tool", "ghost_tool"}, "claude")

	assert.Equal(t, []string{"alpha_tool"}, available)
	assert.Equal(t, []string{"beta_tool", "ghost_tool"}, missing)
}
