package remote

import (
	"context"
	"strings"

	"github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/exec"
)

// Runner runs git with the given arguments. dir may be empty.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (*exec.Result, error)
}

// ExecRunner runs the git binary found on PATH.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) (*exec.Result, error) {
	git := exec.NewWrapper(exec.New(), "git").WithContext(ctx)
	if dir != "" {
		git = git.WithDir(dir)
	}
	return git.Run(args...)
}

// Diagnostic extracts the most useful text from a failed git invocation.
func Diagnostic(result *exec.Result, err error) string {
	var execErr *exec.ExecError
	if errors.As(err, &execErr) && strings.TrimSpace(execErr.Stderr) != "" {
		return strings.TrimSpace(execErr.Stderr)
	}
	if result != nil && strings.TrimSpace(result.Stderr) != "" {
		return strings.TrimSpace(result.Stderr)
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
