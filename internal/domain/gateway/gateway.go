// Package gateway is the process-invocation boundary for everything the
// tool shells out to: git, package managers, setup scripts, and the
// assistant CLIs whose `mcp` subcommands we drive. Every call is bounded
// by a caller-supplied timeout and never retried here; retry and fallback
// policy belongs to the caller.
package gateway

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Request describes one external invocation.
type Request struct {
	// Args is the full argument vector; Args[0] is the binary.
	Args []string

	// Dir is the working directory ("" means inherit).
	Dir string

	// Env entries ("K=V") appended to the inherited environment.
	Env []string

	// Stream wires the child to the parent's stdout/stderr instead of
	// capturing. Setup scripts run this way so build output stays visible.
	Stream bool

	// Timeout bounds the call. Zero means no bound.
	Timeout time.Duration
}

// Result reports what happened. A timeout or a missing binary is a Result,
// not a panic: callers interpret failure and decide what to do next.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
	Err      error
}

// Ok reports whether the process ran to completion with exit code zero.
func (r Result) Ok() bool {
	return r.Err == nil && !r.TimedOut && r.ExitCode == 0
}

// Runner runs external commands. The one non-test implementation is
// ExecRunner; tests substitute fakes that record invocations.
type Runner interface {
	Run(ctx context.Context, req Request) Result
	LookPath(name string) bool
}

// ExecRunner invokes real processes via os/exec.
type ExecRunner struct {
	log *zap.Logger
}

func NewExecRunner(log *zap.Logger) *ExecRunner {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExecRunner{log: log.Named("gateway")}
}

func (r *ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func (r *ExecRunner) Run(ctx context.Context, req Request) Result {
	if len(req.Args) == 0 {
		return Result{Err: errors.New("gateway: empty argument vector"), ExitCode: -1}
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, req.Args[0], req.Args[1:]...)
	cmd.Dir = req.Dir
	if len(req.Env) > 0 {
		cmd.Env = append(os.Environ(), req.Env...)
	}

	var stdout, stderr bytes.Buffer
	if req.Stream {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	r.log.Debug("exec",
		zap.Strings("args", req.Args),
		zap.String("dir", req.Dir),
		zap.Duration("timeout", req.Timeout))

	err := cmd.Run()

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		res.Err = ctx.Err()
		r.log.Warn("command timed out",
			zap.String("binary", req.Args[0]),
			zap.Duration("timeout", req.Timeout))
		return res
	}

	if err != nil {
		res.Err = err
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		} else {
			// Binary missing, permission denied, and friends.
			res.ExitCode = -1
		}
		return res
	}

	res.ExitCode = 0
	return res
}

// RunShell executes a single shell command line via `sh -c` in dir. Setup
// commands from registry entries are free-form shell, so they go through
// the shell rather than being tokenized here.
func RunShell(ctx context.Context, r Runner, command, dir string, timeout time.Duration) Result {
	return r.Run(ctx, Request{
		Args:    []string{"sh", "-c", command},
		Dir:     dir,
		Timeout: timeout,
	})
}
