package remove_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/scaffold-cli/cmd/templates/remove"
	"github.com/smartcontractkit/scaffold-cli/internal/manifest"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil/simenv"
)

func seed(t *testing.T, se *simenv.SimulatedEnvironment, names ...string) *manifest.FileStore {
	t.Helper()

	store := manifest.NewFileStore(se.Paths().Manifest, testutil.NewTestLogger())
	m := manifest.New()
	for _, name := range names {
		require.NoError(t, m.Add(name, manifest.Template{URL: "https://github.com/foo/" + name}))
		dir := filepath.Join(se.Paths().Templates, name)
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello"), 0644))
	}
	require.NoError(t, store.Save(m))
	return store
}

func run(t *testing.T, se *simenv.SimulatedEnvironment, args ...string) error {
	t.Helper()

	ctx := se.NewRuntimeContext()
	cmd := remove.New(ctx)
	require.NoError(t, ctx.Viper.BindPFlags(cmd.Flags()))
	cmd.SetArgs(append([]string{}, args...))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.Execute()
}

func TestRemove_WithForce(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	store := seed(t, se, "web", "api")

	require.NoError(t, run(t, se, "web", "--force"))

	assert.NoDirExists(t, filepath.Join(se.Paths().Templates, "web"))
	assert.DirExists(t, filepath.Join(se.Paths().Templates, "api"))
	m, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"api"}, m.Names())
}

func TestRemove_AllEmptiesRegistry(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	store := seed(t, se, "web", "api")

	require.NoError(t, run(t, se, "--all", "--force", "--quiet"))

	m, err := store.Load()
	require.NoError(t, err)
	assert.Zero(t, m.Len())
	children, err := os.ReadDir(se.Paths().Templates)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestRemove_NeedsConfirmation(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	seed(t, se, "web")

	err := run(t, se, "web")
	assert.ErrorContains(t, err, "pass --force")
	assert.DirExists(t, filepath.Join(se.Paths().Templates, "web"))
}

func TestRemove_DryRun(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	seed(t, se, "web")

	require.NoError(t, run(t, se, "web", "--dry-run"))
	assert.DirExists(t, filepath.Join(se.Paths().Templates, "web"))
}

func TestRemove_UnknownTemplate(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	seed(t, se, "web")

	err := run(t, se, "ghost", "--force")
	assert.ErrorContains(t, err, "none of the requested templates")
}
