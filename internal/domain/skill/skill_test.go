package skill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proteinmcp/proteinmcp/internal/domain/settings"
)

func testPaths(t *testing.T) settings.Paths {
	t.Helper()
	return settings.NewPaths(t.TempDir(), settings.Default())
}

func writeSkillFile(t *testing.T, paths settings.Paths, filename, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(paths.SkillsDir, 0o755))
	path := filepath.Join(paths.SkillsDir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCommandName(t *testing.T) {
	paths := testPaths(t)

	cases := []struct {
		name    string
		command string
	}{
		{"protein_modeling", "protein-model"},
		{"fitness_modeling", "fitness-model"},
		{"md_analysis", "md-analysis"},
		{"docking", "docking"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := New(tc.name, "unused.md", paths, Config{})
			assert.Equal(t, tc.command, s.CommandName)
			assert.Equal(t, filepath.Join(paths.CommandsDir, tc.command+".md"), s.CommandFile)
		})
	}
}

func TestSkillFileKeepsFullName(t *testing.T) {
	paths := testPaths(t)
	s := New("protein_modeling", "unused.md", paths, Config{})

	// Only the command name gets the modeling shorthand; the skill copy
	// keeps the dashed full name.
	assert.Equal(t, filepath.Join(paths.SkillFilesDir, "protein-modeling.md"), s.SkillFile)
}

func TestDescription(t *testing.T) {
	paths := testPaths(t)

	t.Run("config wins", func(t *testing.T) {
		path := writeSkillFile(t, paths, "a.md", "# Title\n\nFrom the file.\n")
		s := New("a", path, paths, Config{Description: "configured"})
		assert.Equal(t, "configured", s.Description())
	})

	t.Run("first line after heading", func(t *testing.T) {
		path := writeSkillFile(t, paths, "b.md", "# Title\n\nPredicts structures.\nMore text.\n")
		s := New("b", path, paths, Config{})
		assert.Equal(t, "Predicts structures.", s.Description())
	})

	t.Run("no heading", func(t *testing.T) {
		path := writeSkillFile(t, paths, "c.md", "plain text without headings\n")
		s := New("c", path, paths, Config{})
		assert.Equal(t, "No description found.", s.Description())
	})

	t.Run("unreadable file", func(t *testing.T) {
		s := New("d", filepath.Join(paths.SkillsDir, "absent.md"), paths, Config{})
		assert.Equal(t, "Could not read description.", s.Description())
	})
}

func TestRequiredUnits(t *testing.T) {
	paths := testPaths(t)
	content := "# Fold\n\nSetup:\n" +
		"Run `pmcp install uniprot_tool` first.\n" +
		"pmcp install pdb_tool\n" +
		"pmcp install uniprot_tool\n"
	path := writeSkillFile(t, paths, "fold.md", content)

	t.Run("parsed from file", func(t *testing.T) {
		s := New("fold", path, paths, Config{})
		assert.Equal(t, []string{"pdb_tool", "uniprot_tool"}, s.RequiredUnits(),
			"sorted and deduplicated")
	})

	t.Run("config list wins", func(t *testing.T) {
		s := New("fold", path, paths, Config{RequiredMCPs: []string{"zeta_tool"}})
		assert.Equal(t, []string{"zeta_tool"}, s.RequiredUnits())
	})

	t.Run("configured empty beats parsing", func(t *testing.T) {
		s := New("fold", path, paths, Config{RequiredMCPs: []string{}})
		assert.Empty(t, s.RequiredUnits())
	})

	t.Run("missing file", func(t *testing.T) {
		s := New("ghost", filepath.Join(paths.SkillsDir, "ghost.md"), paths, Config{})
		assert.Nil(t, s.RequiredUnits())
	})
}

func TestInstallUninstallLifecycle(t *testing.T) {
	paths := testPaths(t)
	content := "# Docking\n\nDock a ligand.\n"
	path := writeSkillFile(t, paths, "docking.md", content)
	s := New("docking", path, paths, Config{})

	assert.Equal(t, StateNotInstalled, s.State())

	require.NoError(t, s.Install())
	assert.Equal(t, StateInstalled, s.State())
	for _, target := range []string{s.CommandFile, s.SkillFile} {
		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, content, string(data))
	}

	require.NoError(t, os.Remove(s.SkillFile))
	assert.Equal(t, StateCommandOnly, s.State())

	require.NoError(t, s.Install(), "reinstall repairs a partial state")
	require.NoError(t, os.Remove(s.CommandFile))
	assert.Equal(t, StateSkillOnly, s.State())

	require.NoError(t, s.Install())
	removed, err := s.Uninstall()
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, StateNotInstalled, s.State())

	removed, err = s.Uninstall()
	require.NoError(t, err)
	assert.False(t, removed, "second uninstall has nothing to remove")
}

func TestInstallMissingSource(t *testing.T) {
	paths := testPaths(t)
	s := New("ghost", filepath.Join(paths.SkillsDir, "ghost.md"), paths, Config{})
	assert.Error(t, s.Install())
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "Installed", StateInstalled.String())
	assert.Equal(t, "Partially installed (skill only)", StateSkillOnly.String())
	assert.Equal(t, "Partially installed (command only)", StateCommandOnly.String())
	assert.Equal(t, "Not Installed", StateNotInstalled.String())
}
