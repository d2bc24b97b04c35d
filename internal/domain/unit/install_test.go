package unit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/proteinmcp/proteinmcp/internal/domain/gateway"
	"github.com/proteinmcp/proteinmcp/internal/domain/gateway/gatewaytest"
)

// cloneStub makes "git clone" create its target directory, the way the
// real command would.
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

func TestInstallWithoutPathOrURL(t *testing.T) {
	fake := gatewaytest.New()
	env := testEnv(t, fake)

	u := &Unit{Name: "uniprot", Runtime: RuntimePython}
	ok := u.Install(context.Background(), env, false)

	assert.False(t, ok)
	assert.Equal(t, 0, fake.CountMatching("git clone"), "nothing to clone from")
}

func TestInstallPackageRuntimeIsNoop(t *testing.T) {
	fake := gatewaytest.New()
	env := testEnv(t, fake)

	u := &Unit{Name: "pubmed", Runtime: RuntimeUvx}
	assert.True(t, u.Install(context.Background(), env, false))
	assert.Empty(t, fake.Calls())
}

func TestInstallClonesIntoPublicDir(t *testing.T) {
	fake := gatewaytest.New()
	cloneStub(t, fake)
	env := testEnv(t, fake)

	u := &Unit{Name: "uniprot", Runtime: RuntimePython, URL: "https://github.com/example/uniprot-mcp"}
	ok := u.Install(context.Background(), env, false)

	require.True(t, ok)
	want := filepath.Join(env.Paths.PublicUnitsDir, "uniprot-mcp")
	assert.Equal(t, want, u.Path)
	assert.DirExists(t, want)
	assert.Equal(t, 1, fake.CountMatching("git clone"))
}

func TestInstallHonorsExplicitPath(t *testing.T) {
	fake := gatewaytest.New()
	cloneStub(t, fake)
	env := testEnv(t, fake)

	u := &Unit{
		Name:    "uniprot",
		Runtime: RuntimePython,
		URL:     "https://github.com/example/uniprot-mcp",
		Path:    "tool-mcps/uniprot",
	}
	require.True(t, u.Install(context.Background(), env, false))

	assert.DirExists(t, filepath.Join(env.Paths.ProjectRoot, "tool-mcps", "uniprot"))
}

func TestInstallTwiceIsIdempotent(t *testing.T) {
	fake := gatewaytest.New()
	cloneStub(t, fake)
	env := testEnv(t, fake)

	u := &Unit{Name: "uniprot", Runtime: RuntimePython, URL: "https://github.com/example/uniprot-mcp"}
	require.True(t, u.Install(context.Background(), env, false))
	require.True(t, u.Install(context.Background(), env, false))

	assert.Equal(t, 1, fake.CountMatching("git clone"), "second install must not re-clone")
}

func TestInstallAdoptsExistingCloneWithoutSetup(t *testing.T) {
	fake := gatewaytest.New()
	env := testEnv(t, fake)

	target := filepath.Join(env.Paths.PublicUnitsDir, "uniprot-mcp")
	require.NoError(t, os.MkdirAll(target, 0o755))

	u := &Unit{
		Name:          "uniprot",
		Runtime:       RuntimePython,
		URL:           "https://github.com/example/uniprot-mcp",
		SetupCommands: []string{"pip install -e ."},
	}
	ok := u.Install(context.Background(), env, false)

	require.True(t, ok)
	assert.Equal(t, target, u.Path)
	assert.Equal(t, 0, fake.CountMatching("git clone"))
	assert.Equal(t, 0, fake.CountMatching("sh -c"), "adoption skips setup")
}

func TestInstallForceRefreshesAdoptedClone(t *testing.T) {
	fake := gatewaytest.New()
	env := testEnv(t, fake)

	target := filepath.Join(env.Paths.PublicUnitsDir, "uniprot-mcp")
	require.NoError(t, os.MkdirAll(target, 0o755))
	kept := filepath.Join(target, "local-edits.txt")
	require.NoError(t, os.WriteFile(kept, []byte("keep"), 0o644))

	u := &Unit{
		Name:          "uniprot",
		Runtime:       RuntimePython,
		URL:           "https://github.com/example/uniprot-mcp",
		SetupCommands: []string{"pip install -e ."},
	}
	require.True(t, u.Install(context.Background(), env, true))

	assert.Equal(t, 0, fake.CountMatching("git clone"), "existing checkout is reused")
	assert.Equal(t, 1, fake.CountMatching("sh -c pip install -e ."))
	assert.FileExists(t, kept)
}

func TestInstallForceRerunsSetupInPlace(t *testing.T) {
	fake := gatewaytest.New()
	env := testEnv(t, fake)

	dir := filepath.Join(env.Paths.ProjectRoot, "tool-mcps", "uniprot")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	u := &Unit{
		Name:          "uniprot",
		Runtime:       RuntimePython,
		Path:          "tool-mcps/uniprot",
		SetupCommands: []string{"pip install -e ."},
	}
	require.True(t, u.Install(context.Background(), env, true))

	assert.Equal(t, 1, fake.CountMatching("sh -c pip install -e ."))
	assert.Equal(t, 0, fake.CountMatching("git clone"))
}

func TestInstallCloneFailure(t *testing.T) {
	fake := gatewaytest.New()
	fake.Respond("git clone", gateway.Result{Stderr: "fatal: repository not found", ExitCode: 128})
	env := testEnv(t, fake)

	u := &Unit{Name: "uniprot", Runtime: RuntimePython, URL: "https://github.com/example/nope"}
	assert.False(t, u.Install(context.Background(), env, false))
	assert.Empty(t, u.Path, "failed clone must not record a path")
}

func TestInstallRunsSetupCommands(t *testing.T) {
	fake := gatewaytest.New()
	cloneStub(t, fake)
	env := testEnv(t, fake)

	u := &Unit{
		Name:          "uniprot",
		Runtime:       RuntimePython,
		URL:           "https://github.com/example/uniprot-mcp",
		SetupCommands: []string{"pip install -e .", "pip install requests"},
	}
	require.True(t, u.Install(context.Background(), env, false))

	assert.Equal(t, 1, fake.CountMatching("sh -c pip install -e ."))
	assert.Equal(t, 1, fake.CountMatching("sh -c pip install requests"))
}

func TestInstallSetupCommandFailureContinues(t *testing.T) {
	fake := gatewaytest.New()
	cloneStub(t, fake)
	fake.Respond("sh -c pip install -e .", gateway.Result{Stderr: "boom", ExitCode: 1})
	env := testEnv(t, fake)

	u := &Unit{
		Name:          "uniprot",
		Runtime:       RuntimePython,
		URL:           "https://github.com/example/uniprot-mcp",
		SetupCommands: []string{"pip install -e .", "pip install requests"},
	}
	ok := u.Install(context.Background(), env, false)

	assert.True(t, ok, "a failing setup command is tolerated")
	assert.Equal(t, 1, fake.CountMatching("sh -c pip install requests"))
}

func TestInstallSetupCommandTimeoutAborts(t *testing.T) {
	fake := gatewaytest.New()
	cloneStub(t, fake)
	fake.Respond("sh -c pip install -e .", gateway.Result{TimedOut: true, ExitCode: -1, Err: context.DeadlineExceeded})
	env := testEnv(t, fake)

	u := &Unit{
		Name:          "uniprot",
		Runtime:       RuntimePython,
		URL:           "https://github.com/example/uniprot-mcp",
		SetupCommands: []string{"pip install -e .", "pip install requests"},
	}
	ok := u.Install(context.Background(), env, false)

	assert.False(t, ok)
	assert.Equal(t, 0, fake.CountMatching("sh -c pip install requests"),
		"a timeout aborts the remaining commands")
}

func TestInstallPrefersSetupScript(t *testing.T) {
	fake := gatewaytest.New()
	fake.RespondFunc("git clone", func(c gatewaytest.Call) gateway.Result {
		target := c.Args[len(c.Args)-1]
		if err := os.MkdirAll(target, 0o755); err != nil {
			return gateway.Result{ExitCode: 1, Err: err}
		}
		script := filepath.Join(target, "quick_setup.sh")
		return gateway.Result{Err: os.WriteFile(script, []byte("#!/bin/bash\n"), 0o644)}
	})
	env := testEnv(t, fake)

	u := &Unit{
		Name:          "uniprot",
		Runtime:       RuntimePython,
		URL:           "https://github.com/example/uniprot-mcp",
		SetupScript:   "quick_setup.sh",
		SetupCommands: []string{"pip install -e ."},
	}
	require.True(t, u.Install(context.Background(), env, false))

	assert.Equal(t, 1, fake.CountMatching("bash "))
	assert.Equal(t, 0, fake.CountMatching("sh -c"), "script success skips the fallback commands")

	script := filepath.Join(env.Paths.PublicUnitsDir, "uniprot-mcp", "quick_setup.sh")
	info, err := os.Stat(script)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestInstallScriptFailureFallsBackToCommands(t *testing.T) {
	fake := gatewaytest.New()
	fake.RespondFunc("git clone", func(c gatewaytest.Call) gateway.Result {
		target := c.Args[len(c.Args)-1]
		if err := os.MkdirAll(target, 0o755); err != nil {
			return gateway.Result{ExitCode: 1, Err: err}
		}
		script := filepath.Join(target, "quick_setup.sh")
		return gateway.Result{Err: os.WriteFile(script, []byte("#!/bin/bash\nexit 1\n"), 0o644)}
	})
	fake.Respond("bash ", gateway.Result{ExitCode: 1})
	env := testEnv(t, fake)

	u := &Unit{
		Name:          "uniprot",
		Runtime:       RuntimePython,
		URL:           "https://github.com/example/uniprot-mcp",
		SetupScript:   "quick_setup.sh",
		SetupCommands: []string{"pip install -e ."},
	}
	require.True(t, u.Install(context.Background(), env, false))

	assert.Equal(t, 1, fake.CountMatching("sh -c pip install -e ."))
}

func TestInstallMissingScriptNoCommands(t *testing.T) {
	fake := gatewaytest.New()
	cloneStub(t, fake)
	env := testEnv(t, fake)

	u := &Unit{
		Name:        "uniprot",
		Runtime:     RuntimePython,
		URL:         "https://github.com/example/uniprot-mcp",
		SetupScript: "does_not_exist.sh",
	}
	assert.True(t, u.Install(context.Background(), env, false))
	assert.Equal(t, 0, fake.CountMatching("bash "))
}

func TestUninstall(t *testing.T) {
	t.Run("not installed", func(t *testing.T) {
		env := testEnv(t, gatewaytest.New())
		u := &Unit{Name: "uniprot", Runtime: RuntimePython}
		assert.True(t, u.Uninstall(env, true))
	})

	t.Run("package runtime clears path", func(t *testing.T) {
		env := testEnv(t, gatewaytest.New())
		u := &Unit{Name: "pubmed", Runtime: RuntimeNpx, Path: "tool-mcps/pubmed"}
		assert.True(t, u.Uninstall(env, true))
		assert.Empty(t, u.Path)
	})

	t.Run("keeps files by default", func(t *testing.T) {
		env := testEnv(t, gatewaytest.New())
		dir := filepath.Join(env.Paths.ProjectRoot, "tool-mcps", "uniprot")
		require.NoError(t, os.MkdirAll(dir, 0o755))

		u := &Unit{Name: "uniprot", Runtime: RuntimePython, Path: "tool-mcps/uniprot"}
		assert.True(t, u.Uninstall(env, false))
		assert.DirExists(t, dir)
	})

	t.Run("removes files when asked", func(t *testing.T) {
		env := testEnv(t, gatewaytest.New())
		dir := filepath.Join(env.Paths.ProjectRoot, "tool-mcps", "uniprot")
		require.NoError(t, os.MkdirAll(dir, 0o755))

		u := &Unit{Name: "uniprot", Runtime: RuntimePython, Path: "tool-mcps/uniprot"}
		assert.True(t, u.Uninstall(env, true))
		assert.NoDirExists(t, dir)
		assert.Empty(t, u.Path)
	})
}
