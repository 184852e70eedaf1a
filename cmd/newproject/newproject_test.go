package newproject

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil/simenv"
	"github.com/smartcontractkit/scaffold-cli/internal/transport"
)

func run(t *testing.T, se *simenv.SimulatedEnvironment, args ...string) error {
	t.Helper()

	ctx := se.NewRuntimeContext()
	cmd := New(ctx)
	require.NoError(t, ctx.Viper.BindPFlags(cmd.Flags()))
	cmd.SetArgs(append([]string{}, args...))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.Execute()
}

func TestNew_ClonesIntoDestination(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	dest := filepath.Join(t.TempDir(), "app")

	err := run(t, se, "https://github.com/foo/bar", "-d", dest)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dest, "README.md"))
	assert.NoDirExists(t, filepath.Join(dest, ".git"))
	assert.Equal(t, []string{"clone"}, se.Runner.Subcommands())
}

func TestNew_ExplicitBranchAsSecondArgument(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	dest := filepath.Join(t.TempDir(), "app")

	err := run(t, se, "https://github.com/foo/bar", "-d", dest, "-b", "dev")
	require.NoError(t, err)

	require.Len(t, se.Runner.Calls, 1)
	assert.Contains(t, se.Runner.Calls[0].Args, "--branch")
	assert.Contains(t, se.Runner.Calls[0].Args, "dev")
}

func TestNew_InteractiveBranchRequiresTerminal(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	dest := filepath.Join(t.TempDir(), "app")

	err := run(t, se, "https://github.com/foo/bar", "-d", dest, "-b")
	require.Error(t, err)
	assert.Equal(t, failure.KindInput, failure.KindOf(err))
}

func TestNew_RejectsUnexpectedArgument(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)

	err := run(t, se, "https://github.com/foo/bar", "extra")
	assert.ErrorContains(t, err, "unexpected argument")
	assert.Empty(t, se.Runner.Calls)
}

func TestNew_InvalidMode(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)

	err := run(t, se, "https://github.com/foo/bar", "--mode", "svn")
	assert.ErrorContains(t, err, "--mode must be either git or tar")
}

func TestNew_NonEmptyDestinationWithoutForce(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "keep.txt"), []byte("x"), 0644))

	err := run(t, se, "https://github.com/foo/bar", "-d", dest)
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.CodeDestinationNotEmpty))

	require.NoError(t, run(t, se, "https://github.com/foo/bar", "-d", dest, "--force"))
	assert.NoFileExists(t, filepath.Join(dest, "keep.txt"))
}

func TestBranchFor(t *testing.T) {
	assert.Equal(t, transport.DefaultBranch(), branchFor(""))
	assert.Equal(t, transport.InteractiveBranch(), branchFor(pickBranch))
	assert.Equal(t, transport.ExplicitBranch("v1.0.0"), branchFor("v1.0.0"))
}
