package update_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmgilman/go/exec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/scaffold-cli/cmd/templates/update"
	"github.com/smartcontractkit/scaffold-cli/internal/manifest"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil/simenv"
)

func register(t *testing.T, se *simenv.SimulatedEnvironment, names ...string) {
	t.Helper()

	store := manifest.NewFileStore(se.Paths().Manifest, testutil.NewTestLogger())
	m := manifest.New()
	for _, name := range names {
		require.NoError(t, m.Add(name, manifest.Template{URL: "https://github.com/foo/" + name, Alias: name + "-alias"}))
	}
	require.NoError(t, store.Save(m))
}

func run(t *testing.T, se *simenv.SimulatedEnvironment, args ...string) error {
	t.Helper()

	ctx := se.NewRuntimeContext()
	cmd := update.New(ctx)
	require.NoError(t, ctx.Viper.BindPFlags(cmd.Flags()))
	cmd.SetArgs(append([]string{}, args...))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.Execute()
}

func TestUpdate_ByAlias(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	register(t, se, "web", "api")

	require.NoError(t, run(t, se, "web-alias"))

	assert.FileExists(t, filepath.Join(se.Paths().Templates, "web", "README.md"))
	assert.NoDirExists(t, filepath.Join(se.Paths().Templates, "api"))
}

func TestUpdate_All(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	register(t, se, "web", "api")

	require.NoError(t, run(t, se, "--all"))

	for _, name := range []string{"web", "api"} {
		assert.FileExists(t, filepath.Join(se.Paths().Templates, name, "package.json"))
	}
}

func TestUpdate_DryRunDownloadsNothing(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	register(t, se, "web")

	require.NoError(t, run(t, se, "--all", "--dry-run"))
	assert.Empty(t, se.Runner.Calls)
}

func TestUpdate_FailuresExitNonZero(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	register(t, se, "web")

	err := run(t, se, "web", "ghost")
	assert.ErrorContains(t, err, "failed to update 1 of 2 templates")

	se.Runner.Handler = func(_ string, args []string) (*exec.Result, error) {
		return testutil.Failure("fatal: repository not found", args...)
	}
	require.NoError(t, os.WriteFile(filepath.Join(se.Paths().Templates, "web", "marker"), []byte("x"), 0644))

	err = run(t, se, "web")
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(se.Paths().Templates, "web", "marker"))
}

func TestUpdate_RequiresNamesOrAll(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	register(t, se, "web")

	err := run(t, se)
	assert.ErrorContains(t, err, "--all")
}
