package update

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/scaffold-cli/internal/remote"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil"
)

type stubLister struct {
	refs  []remote.Ref
	err   error
	calls int
}

func (s *stubLister) List(_ context.Context, _ string) ([]remote.Ref, error) {
	s.calls++
	return s.refs, s.err
}

func releaseRefs() []remote.Ref {
	return []remote.Ref{
		{Name: "HEAD", Hash: "aaa"},
		{Name: "refs/heads/main", Hash: "aaa"},
		{Name: "refs/tags/v1.2.0", Hash: "bbb"},
		{Name: "refs/tags/v1.10.0", Hash: "ccc"},
		{Name: "refs/tags/v1.10.0^{}", Hash: "ddd"},
		{Name: "refs/tags/v2.0.0-rc1", Hash: "eee"},
		{Name: "refs/tags/nightly", Hash: "fff"},
	}
}

func newChecker(t *testing.T, lister *stubLister) *Checker {
	t.Helper()
	return NewChecker(testutil.NewTestLogger(), lister, filepath.Join(t.TempDir(), "update-check.json"))
}

func TestLatest_PicksHighestStableTag(t *testing.T) {
	c := newChecker(t, &stubLister{refs: releaseRefs()})

	latest, err := c.Latest(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, "1.10.0", latest.String())
}

func TestLatest_UsesCacheWithinInterval(t *testing.T) {
	lister := &stubLister{refs: releaseRefs()}
	c := newChecker(t, lister)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return start }

	_, err := c.Latest(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)

	c.now = func() time.Time { return start.Add(time.Hour) }
	_, err = c.Latest(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)

	c.now = func() time.Time { return start.Add(25 * time.Hour) }
	_, err = c.Latest(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}

func TestLatest_FallsBackToStaleCache(t *testing.T) {
	lister := &stubLister{refs: releaseRefs()}
	c := newChecker(t, lister)

	_, err := c.Latest(context.Background(), false)
	require.NoError(t, err)

	lister.err = errors.New("offline")
	latest, err := c.Latest(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "1.10.0", latest.String())
}

func TestLatest_NoReleases(t *testing.T) {
	c := newChecker(t, &stubLister{refs: []remote.Ref{{Name: "refs/heads/main", Hash: "aaa"}}})

	_, err := c.Latest(context.Background(), false)
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	t.Setenv(ForceCheckEnvVar, "")

	tests := []struct {
		name    string
		version string
		notice  bool
	}{
		{name: "older release", version: "version v1.2.0", notice: true},
		{name: "current release", version: "v1.10.0", notice: false},
		{name: "development build", version: "development", notice: false},
		{name: "unparseable", version: "build c8ab91c", notice: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newChecker(t, &stubLister{refs: releaseRefs()})
			var out bytes.Buffer

			c.Check(context.Background(), tt.version, &out)

			if tt.notice {
				assert.Contains(t, out.String(), "Update available")
				assert.Contains(t, out.String(), "1.10.0")
			} else {
				assert.Empty(t, out.String())
			}
		})
	}
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("version v0.7.3-alpha")
	require.NoError(t, err)
	assert.Equal(t, "0.7.3-alpha", v.String())
}
