package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunCapturesStdout(t *testing.T) {
	r := NewExecRunner(zap.NewNop())

	res := r.Run(context.Background(), Request{
		Args:    []string{"echo", "hello"},
		Timeout: 5 * time.Second,
	})

	require.True(t, res.Ok())
	assert.Equal(t, "hello\n", res.Stdout)
	assert.Equal(t, 0, res.ExitCode)
}

func TestRunReportsExitCode(t *testing.T) {
	r := NewExecRunner(zap.NewNop())

	res := r.Run(context.Background(), Request{
		Args:    []string{"sh", "-c", "echo oops >&2; exit 3"},
		Timeout: 5 * time.Second,
	})

	assert.False(t, res.Ok())
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Stderr, "oops")
}

func TestRunMissingBinary(t *testing.T) {
	r := NewExecRunner(zap.NewNop())

	res := r.Run(context.Background(), Request{
		Args:    []string{"definitely-not-a-real-binary-xyz"},
		Timeout: 5 * time.Second,
	})

	assert.False(t, res.Ok())
	assert.Error(t, res.Err)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRunTimeout(t *testing.T) {
	r := NewExecRunner(zap.NewNop())

	res := r.Run(context.Background(), Request{
		Args:    []string{"sleep", "5"},
		Timeout: 50 * time.Millisecond,
	})

	assert.False(t, res.Ok())
	assert.True(t, res.TimedOut)
}

func TestRunEmptyArgs(t *testing.T) {
	r := NewExecRunner(zap.NewNop())

	res := r.Run(context.Background(), Request{})

	assert.False(t, res.Ok())
	assert.Error(t, res.Err)
}

func TestRunShellUsesWorkingDirectory(t *testing.T) {
	r := NewExecRunner(zap.NewNop())
	dir := t.TempDir()

	res := RunShell(context.Background(), r, "pwd", dir, 5*time.Second)

	require.True(t, res.Ok())
	assert.Contains(t, res.Stdout, dir)
}

func TestLookPath(t *testing.T) {
	r := NewExecRunner(zap.NewNop())

	assert.True(t, r.LookPath("sh"))
	assert.False(t, r.LookPath("definitely-not-a-real-binary-xyz"))
}
