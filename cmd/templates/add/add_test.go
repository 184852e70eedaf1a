package add_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/scaffold-cli/cmd/templates/add"
	"github.com/smartcontractkit/scaffold-cli/internal/failure"
	"github.com/smartcontractkit/scaffold-cli/internal/manifest"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil/simenv"
)

func run(t *testing.T, se *simenv.SimulatedEnvironment, args ...string) error {
	t.Helper()

	ctx := se.NewRuntimeContext()
	cmd := add.New(ctx)
	require.NoError(t, ctx.Viper.BindPFlags(cmd.Flags()))
	cmd.SetArgs(append([]string{}, args...))
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return cmd.Execute()
}

func load(t *testing.T, se *simenv.SimulatedEnvironment) *manifest.Manifest {
	t.Helper()
	m, err := manifest.NewFileStore(se.Paths().Manifest, testutil.NewTestLogger()).Load()
	require.NoError(t, err)
	return m
}

func TestAdd_RegistersWithDefaultName(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)

	require.NoError(t, run(t, se, "https://github.com/foo/bar", "--description", "demo"))

	tmpl, ok := load(t, se).Get("github-foo-bar")
	require.True(t, ok)
	assert.Equal(t, "https://github.com/foo/bar", tmpl.URL)
	assert.Equal(t, "demo", tmpl.Description)
	assert.Empty(t, se.Runner.Calls)
}

func TestAdd_UpdateDownloads(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)

	require.NoError(t, run(t, se, "https://gitlab.com/foo/web", "--name", "web", "--alias", "w", "--update"))

	tmpl, ok := load(t, se).Get("web")
	require.True(t, ok)
	assert.Equal(t, "w", tmpl.Alias)
	assert.FileExists(t, filepath.Join(se.Paths().Templates, "web", "README.md"))
}

func TestAdd_ExistingNameNeedsForce(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)

	require.NoError(t, run(t, se, "https://github.com/foo/bar", "--name", "bar"))

	err := run(t, se, "https://github.com/foo/other", "--name", "bar")
	require.Error(t, err)
	assert.Equal(t, failure.KindStateConflict, failure.KindOf(err))

	require.NoError(t, run(t, se, "https://github.com/foo/other", "--name", "bar", "--force"))
	tmpl, _ := load(t, se).Get("bar")
	assert.Equal(t, "https://github.com/foo/other", tmpl.URL)
}

func TestAdd_ValidatesInputs(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)

	err := run(t, se, "https://example.org/foo/bar")
	assert.ErrorContains(t, err, "url must be a GitHub or GitLab repository URL")

	err = run(t, se, "https://github.com/foo/bar", "--name", "../escape")
	assert.ErrorContains(t, err, "--name must be a relative name")
}
