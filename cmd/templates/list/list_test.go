package list_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/scaffold-cli/cmd/templates/list"
	"github.com/smartcontractkit/scaffold-cli/internal/manifest"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil/simenv"
)

func seed(t *testing.T, se *simenv.SimulatedEnvironment) {
	t.Helper()

	store := manifest.NewFileStore(se.Paths().Manifest, testutil.NewTestLogger())
	m := manifest.New()
	require.NoError(t, m.Add("web", manifest.Template{URL: "https://github.com/foo/web", Alias: "w", Description: "web starter"}))
	require.NoError(t, m.Add("api", manifest.Template{URL: "https://gitlab.com/foo/api"}))
	require.NoError(t, store.Save(m))

	dir := filepath.Join(se.Paths().Templates, "web")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello"), 0644))
}

func run(t *testing.T, se *simenv.SimulatedEnvironment, args ...string) string {
	t.Helper()

	ctx := se.NewRuntimeContext()
	cmd := list.New(ctx)
	require.NoError(t, ctx.Viper.BindPFlags(cmd.Flags()))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{}, args...))
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestList_Table(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	seed(t, se)

	out := run(t, se)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "https://github.com/foo/web")
	assert.Contains(t, out, "web starter")
	assert.Less(t, bytes.Index([]byte(out), []byte("api")), bytes.Index([]byte(out), []byte("web starter")))
}

func TestList_YAML(t *testing.T) {
	se := simenv.NewSimulatedEnvironment(t)
	seed(t, se)

	out := run(t, se, "-o", "yaml")

	var doc map[string]map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Len(t, doc, 2)
	assert.Equal(t, "w", doc["web"]["alias"])
	assert.Equal(t, true, doc["web"]["downloaded"])
	assert.Equal(t, 5, doc["web"]["size"])
	assert.Equal(t, false, doc["api"]["downloaded"])
}

func TestList_RejectsUnknownFormat(t *testing.T) {
	err := list.ValidateInputs(list.Inputs{Output: "json"})
	assert.Error(t, err)
}
