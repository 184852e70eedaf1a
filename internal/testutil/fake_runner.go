package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/jmgilman/go/exec"
)

// RunnerCall records one git invocation.
type RunnerCall struct {
	Dir  string
	Args []string
}

// FakeRunner records git invocations and answers them through Handler.
type FakeRunner struct {
	mu      sync.Mutex
	Calls   []RunnerCall
	Handler func(dir string, args []string) (*exec.Result, error)
}

func (f *FakeRunner) Run(_ context.Context, dir string, args ...string) (*exec.Result, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, RunnerCall{Dir: dir, Args: append([]string(nil), args...)})
	f.mu.Unlock()

	if f.Handler == nil {
		return &exec.Result{}, nil
	}
	return f.Handler(dir, args)
}

// Subcommands returns the first argument of every recorded call, e.g. "ls-remote".
func (f *FakeRunner) Subcommands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		if len(c.Args) > 0 {
			out = append(out, c.Args[0])
		}
	}
	return out
}

// LsRemoteOutput renders refs as git ls-remote prints them. Pairs are name, hash.
func LsRemoteOutput(pairs ...string) string {
	var sb strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		sb.WriteString(pairs[i+1])
		sb.WriteString("\t")
		sb.WriteString(pairs[i])
		sb.WriteString("\n")
	}
	return sb.String()
}

// Failure builds the error exec returns when git exits non-zero.
func Failure(stderr string, args ...string) (*exec.Result, error) {
	result := &exec.Result{Stderr: stderr, Combined: stderr, ExitCode: 128}
	return result, &exec.ExecError{
		Command:  append([]string{"git"}, args...),
		ExitCode: 128,
		Stderr:   stderr,
	}
}
