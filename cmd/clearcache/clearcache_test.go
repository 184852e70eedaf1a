package clearcache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/scaffold-cli/cmd/clearcache"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil/simenv"
)

func fillCache(t *testing.T, se *simenv.SimulatedEnvironment) string {
	t.Helper()
	path := filepath.Join(se.Paths().Cache, "foo", "bar", "ab", "cdef", "archive.tar.gz")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte("archive"), 0600))
	return path
}

func run(t *testing.T, se *simenv.SimulatedEnvironment, args ...string) error {
	t.Helper()

	ctx := se.NewRuntimeContext()
	cmd := clearcache.New(ctx)
	require.NoError(t, ctx.Viper.BindPFlags(cmd.Flags()))
	cmd.SetArgs(append([]string{}, args...))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.Execute()
}

func TestClear_Force(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	fillCache(t, se)

	require.NoError(t, run(t, se, "--force"))

	assert.DirExists(t, se.Paths().Cache)
	children, err := os.ReadDir(se.Paths().Cache)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestClear_DryRunKeepsFiles(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	path := fillCache(t, se)

	require.NoError(t, run(t, se, "--dry-run"))
	assert.FileExists(t, path)
}

func TestClear_NeedsConfirmation(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	path := fillCache(t, se)

	err := run(t, se)
	assert.ErrorContains(t, err, "pass --force")
	assert.FileExists(t, path)
}

func TestClear_EmptyCache(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	assert.NoError(t, run(t, se))
}
