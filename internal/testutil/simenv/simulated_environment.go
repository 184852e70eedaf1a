// Package simenv builds runtime contexts backed by a simulated git remote so
// commands can be exercised end to end without network access.
package simenv

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmgilman/go/exec"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/smartcontractkit/scaffold-cli/internal/constants"
	"github.com/smartcontractkit/scaffold-cli/internal/runtime"
	"github.com/smartcontractkit/scaffold-cli/internal/settings"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil"
)

const HeadHash = "0123456789abcdef0123456789abcdef01234567"

// SimulatedEnvironment owns a temporary application root and answers git
// invocations as a single repository with Files on every branch.
type SimulatedEnvironment struct {
	Root   string
	Runner *testutil.FakeRunner

	// Refs are name, hash pairs returned by ls-remote.
	Refs  []string
	Files map[string]string
}

func NewSimulatedEnvironment(t *testing.T) *SimulatedEnvironment {
	t.Helper()

	se := &SimulatedEnvironment{
		Root: t.TempDir(),
		Refs: []string{
			"HEAD", HeadHash,
			"refs/heads/main", HeadHash,
			"refs/heads/dev", "fedcba9876543210fedcba9876543210fedcba98",
			"refs/tags/v1.0.0", "1111111111111111111111111111111111111111",
		},
		Files: map[string]string{
			"README.md":    "# starter\n",
			"package.json": `{"name":"starter","version":"1.0.0"}`,
		},
	}
	se.Runner = &testutil.FakeRunner{Handler: se.handle}
	return se
}

func (se *SimulatedEnvironment) NewRuntimeContext() *runtime.Context {
	return se.createContextWithLogger(testutil.NewTestLogger())
}

func (se *SimulatedEnvironment) NewRuntimeContextWithBufferedOutput() (*runtime.Context, *bytes.Buffer) {
	logger, buf := testutil.NewBufferedLogger()
	return se.createContextWithLogger(logger), buf
}

// Paths are the application paths rooted at se.Root.
func (se *SimulatedEnvironment) Paths() settings.Paths {
	return settings.PathsFor(se.Root)
}

func (se *SimulatedEnvironment) createContextWithLogger(logger *zerolog.Logger) *runtime.Context {
	ctx := runtime.NewContext(logger, viper.New())
	ctx.Runner = se.Runner
	ctx.Settings = &settings.Settings{
		Paths:          se.Paths(),
		Mode:           constants.DefaultMode,
		NonInteractive: true,
		NoUpdateCheck:  true,
	}
	return ctx
}

func (se *SimulatedEnvironment) handle(_ string, args []string) (*exec.Result, error) {
	switch args[0] {
	case "ls-remote":
		return &exec.Result{Stdout: testutil.LsRemoteOutput(se.Refs...)}, nil
	case "clone":
		dest := args[len(args)-1]
		if err := os.MkdirAll(filepath.Join(dest, ".git"), 0755); err != nil {
			return nil, err
		}
		for name, body := range se.Files {
			path := filepath.Join(dest, filepath.FromSlash(name))
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, err
			}
			if err := os.WriteFile(path, []byte(body), 0644); err != nil {
				return nil, err
			}
		}
		return &exec.Result{}, nil
	default:
		return testutil.Failure("unsupported: git "+strings.Join(args, " "), args...)
	}
}
