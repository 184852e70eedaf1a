package archivecache

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil"
)

const archiveURL = "https://github.com/foo/bar/archive/abcdef0123.tar.gz"

func newMockedCache(t *testing.T, opts ...Option) (*Cache, string) {
	t.Helper()

	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	root := t.TempDir()
	opts = append([]Option{WithHTTPClient(client)}, opts...)
	return New(testutil.NewTestLogger(), root, opts...), root
}

func TestPath(t *testing.T) {
	c := New(testutil.NewTestLogger(), "/cache")

	path, err := c.Path(Key{Owner: "foo", Repo: "bar", Hash: "abcdef0123"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/cache", "foo", "bar", "ab", "cdef0123", "archive.tar.gz"), path)
}

func TestPath_RejectsBadKeys(t *testing.T) {
	c := New(testutil.NewTestLogger(), "/cache")

	bad := []Key{
		{Owner: "", Repo: "bar", Hash: "abcdef"},
		{Owner: "..", Repo: "bar", Hash: "abcdef"},
		{Owner: "foo", Repo: "a/b", Hash: "abcdef"},
		{Owner: "foo", Repo: "bar", Hash: "ab"},
		{Owner: "foo", Repo: "bar", Hash: "../../x"},
	}
	for _, k := range bad {
		_, err := c.Path(k)
		require.Error(t, err, k.String())
		assert.Equal(t, failure.KindInput, failure.KindOf(err))
	}
}

func TestFetch_SecondCallHitsCache(t *testing.T) {
	c, _ := newMockedCache(t)
	httpmock.RegisterResponder(http.MethodGet, archiveURL, httpmock.NewBytesResponder(200, []byte("archive-bytes")))

	key := Key{Owner: "foo", Repo: "bar", Hash: "abcdef0123"}

	first, err := c.Fetch(context.Background(), key, archiveURL)
	require.NoError(t, err)
	second, err := c.Fetch(context.Background(), key, archiveURL)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, "archive-bytes", string(data))

	siblings, err := os.ReadDir(filepath.Dir(first))
	require.NoError(t, err)
	assert.Len(t, siblings, 1, "no temporary files left behind")
}

func TestFetch_PrepopulatedEntryNeedsNoNetwork(t *testing.T) {
	c, _ := newMockedCache(t)
	key := Key{Owner: "foo", Repo: "bar", Hash: "abcdef0123"}

	path, err := c.Path(key)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte("cached"), 0600))

	got, err := c.Fetch(context.Background(), key, archiveURL)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	c, _ := newMockedCache(t)
	httpmock.RegisterResponder(http.MethodGet, archiveURL, httpmock.NewStringResponder(404, "not found"))

	key := Key{Owner: "foo", Repo: "bar", Hash: "abcdef0123"}
	_, err := c.Fetch(context.Background(), key, archiveURL)
	require.Error(t, err)
	assert.Equal(t, failure.KindTransport, failure.KindOf(err))
	assert.Contains(t, err.Error(), "404")

	path, _ := c.Path(key)
	assert.NoFileExists(t, path)
}

func TestFetch_UsesCopier(t *testing.T) {
	var seen string
	c, _ := newMockedCache(t, WithCopier(func(body io.ReadCloser, _ int64, dst *os.File, message string) error {
		seen = message
		_, err := io.Copy(dst, body)
		return err
	}))
	httpmock.RegisterResponder(http.MethodGet, archiveURL, httpmock.NewBytesResponder(200, []byte("x")))

	_, err := c.Fetch(context.Background(), Key{Owner: "foo", Repo: "bar", Hash: "abcdef0123"}, archiveURL)
	require.NoError(t, err)
	assert.Equal(t, "Downloading foo/bar...", seen)
}

func TestStatsEntriesClear(t *testing.T) {
	c, root := newMockedCache(t)
	httpmock.RegisterResponder(http.MethodGet, archiveURL, httpmock.NewBytesResponder(200, []byte("12345")))

	_, err := c.Fetch(context.Background(), Key{Owner: "foo", Repo: "bar", Hash: "abcdef0123"}, archiveURL)
	require.NoError(t, err)

	files, size, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, files)
	assert.Equal(t, int64(5), size)

	entries, err := c.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(5), entries[0].Size)

	require.NoError(t, c.Clear())
	assert.DirExists(t, root)
	children, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestStats_MissingRoot(t *testing.T) {
	c := New(testutil.NewTestLogger(), filepath.Join(t.TempDir(), "absent"))

	files, size, err := c.Stats()
	require.NoError(t, err)
	assert.Zero(t, files)
	assert.Zero(t, size)
	require.NoError(t, c.Clear())
}
