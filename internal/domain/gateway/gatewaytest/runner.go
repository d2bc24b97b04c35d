// Package gatewaytest provides a recording gateway.Runner for tests: no
// real subprocesses, scripted results, and call counting for asserting
// which external commands ran.
package gatewaytest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/proteinmcp/proteinmcp/internal/domain/gateway"
)

// Call is one recorded invocation.
type Call struct {
	Args []string
	Dir  string
}

func (c Call) String() string {
	return strings.Join(c.Args, " ")
}

type stub struct {
	prefix string
	fn     func(Call) gateway.Result
}

// FakeRunner satisfies gateway.Runner. Every call succeeds with empty
// output unless a stub matches or the binary was marked missing.
type FakeRunner struct {
	mu      sync.Mutex
	calls   []Call
	stubs   []stub
	missing map[string]bool
}

func New() *FakeRunner {
	return &FakeRunner{missing: map[string]bool{}}
}

// Respond makes any command whose space-joined argv starts with prefix
// return res. Later stubs win over earlier ones.
func (f *FakeRunner) Respond(prefix string, res gateway.Result) {
	f.RespondFunc(prefix, func(Call) gateway.Result { return res })
}

// RespondFunc is Respond with a computed result, for stubs that need side
// effects (e.g. a fake clone creating its target directory).
func (f *FakeRunner) RespondFunc(prefix string, fn func(Call) gateway.Result) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stubs = append(f.stubs, stub{prefix: prefix, fn: fn})
}

// MarkMissing makes LookPath report the named binaries as absent and any
// attempt to run them fail the way exec does.
func (f *FakeRunner) MarkMissing(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.missing[n] = true
	}
}

func (f *FakeRunner) LookPath(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.missing[name]
}

func (f *FakeRunner) Run(_ context.Context, req gateway.Request) gateway.Result {
	call := Call{Args: append([]string(nil), req.Args...), Dir: req.Dir}

	f.mu.Lock()
	f.calls = append(f.calls, call)
	missing := len(req.Args) > 0 && f.missing[req.Args[0]]
	stubs := append([]stub(nil), f.stubs...)
	f.mu.Unlock()

	if len(req.Args) == 0 {
		return gateway.Result{Err: fmt.Errorf("empty argument vector"), ExitCode: -1}
	}
	if missing {
		return gateway.Result{Err: fmt.Errorf("exec: %q: executable file not found in $PATH", req.Args[0]), ExitCode: -1}
	}

	joined := strings.Join(req.Args, " ")
	for i := len(stubs) - 1; i >= 0; i-- {
		if strings.HasPrefix(joined, stubs[i].prefix) {
			return stubs[i].fn(call)
		}
	}
	return gateway.Result{ExitCode: 0}
}

// Calls returns a copy of every recorded invocation.
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CountMatching counts recorded calls whose space-joined argv starts with
// prefix.
func (f *FakeRunner) CountMatching(prefix string) int {
	return len(f.CallsMatching(prefix))
}

// CallsMatching returns the recorded calls whose space-joined argv starts
// with prefix, in invocation order.
func (f *FakeRunner) CallsMatching(prefix string) []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Call
	for _, c := range f.calls {
		if strings.HasPrefix(c.String(), prefix) {
			out = append(out, c)
		}
	}
	return out
}
