package remote_test

import (
	"context"
	"testing"

	"github.com/jmgilman/go/exec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
	"github.com/smartcontractkit/scaffold-cli/internal/remote"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil"
)

const (
	mainHash = "1111111111111111111111111111111111111111"
	devHash  = "2222222222222222222222222222222222222222"
	tagHash  = "3333333333333333333333333333333333333333"
	peeled   = "4444444444444444444444444444444444444444"
)

func sampleOutput() string {
	return testutil.LsRemoteOutput(
		"HEAD", mainHash,
		"refs/heads/main", mainHash,
		"refs/heads/dev", devHash,
		"refs/pull/1/head", devHash,
		"refs/tags/v1.0.0", tagHash,
		"refs/tags/v1.0.0^{}", peeled,
	)
}

func TestList_PreservesRemoteOrder(t *testing.T) {
	runner := &testutil.FakeRunner{
		Handler: func(dir string, args []string) (*exec.Result, error) {
			return &exec.Result{Stdout: sampleOutput()}, nil
		},
	}
	lister := remote.NewLister(testutil.NewTestLogger(), runner)

	refs, err := lister.List(context.Background(), "https://github.com/foo/bar")
	require.NoError(t, err)
	require.Len(t, refs, 6)
	assert.Equal(t, remote.Ref{Name: "HEAD", Hash: mainHash}, refs[0])
	assert.Equal(t, "refs/heads/dev", refs[2].Name)

	require.Len(t, runner.Calls, 1)
	assert.Equal(t, []string{"ls-remote", "https://github.com/foo/bar"}, runner.Calls[0].Args)
}

func TestList_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler func(dir string, args []string) (*exec.Result, error)
		message string
	}{
		{
			name: "process failure",
			handler: func(dir string, args []string) (*exec.Result, error) {
				return testutil.Failure("fatal: repository 'https://github.com/foo/missing/' not found", args...)
			},
			message: "repository 'https://github.com/foo/missing/' not found",
		},
		{
			name: "no references",
			handler: func(dir string, args []string) (*exec.Result, error) {
				return &exec.Result{Stdout: ""}, nil
			},
			message: "advertised no references",
		},
		{
			name: "invalid text",
			handler: func(dir string, args []string) (*exec.Result, error) {
				return &exec.Result{Stdout: "\xff\xfe\tHEAD\n"}, nil
			},
			message: "not valid UTF-8",
		},
		{
			name: "malformed line",
			handler: func(dir string, args []string) (*exec.Result, error) {
				return &exec.Result{Stdout: "no-tab-here\n"}, nil
			},
			message: "malformed ls-remote line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := remote.NewLister(testutil.NewTestLogger(), &testutil.FakeRunner{Handler: tt.handler})

			_, err := lister.List(context.Background(), "https://github.com/foo/missing")
			require.Error(t, err)
			assert.True(t, failure.Is(err, failure.CodeRefListFailed))
			assert.Equal(t, failure.KindTransport, failure.KindOf(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestFilters(t *testing.T) {
	refs, err := remote.ParseRefs(sampleOutput())
	require.NoError(t, err)

	heads := remote.Heads(refs)
	require.Len(t, heads, 2)
	assert.Equal(t, "main", heads[0].ShortName())
	assert.Equal(t, "dev", heads[1].ShortName())

	tags := remote.Tags(refs)
	require.Len(t, tags, 1)
	assert.Equal(t, "v1.0.0", tags[0].ShortName())

	both := remote.HeadsAndTags(refs)
	assert.Len(t, both, 3)

	head, ok := remote.FindHead(refs)
	require.True(t, ok)
	assert.Equal(t, mainHash, head.Hash)
}

func TestFindBranchOrTag(t *testing.T) {
	refs, err := remote.ParseRefs(sampleOutput())
	require.NoError(t, err)

	r, ok := remote.FindBranchOrTag(refs, "dev")
	require.True(t, ok)
	assert.Equal(t, devHash, r.Hash)

	r, ok = remote.FindBranchOrTag(refs, "v1.0.0")
	require.True(t, ok)
	assert.Equal(t, "refs/tags/v1.0.0", r.Name)
	assert.Equal(t, peeled, r.Hash)

	_, ok = remote.FindBranchOrTag(refs, "ma")
	assert.False(t, ok)
}

func TestDiagnostic(t *testing.T) {
	result, err := testutil.Failure("fatal: boom\n")
	assert.Equal(t, "fatal: boom", remote.Diagnostic(result, err))
	assert.Equal(t, "", remote.Diagnostic(nil, nil))
}

func TestPeel(t *testing.T) {
	refs, err := remote.ParseRefs(sampleOutput())
	require.NoError(t, err)

	tag := remote.Tags(refs)[0]
	assert.Equal(t, peeled, remote.Peel(refs, tag).Hash)

	lightweight := remote.Ref{Name: "refs/tags/v0.1.0", Hash: tagHash}
	assert.Equal(t, tagHash, remote.Peel(refs, lightweight).Hash)

	head := remote.Heads(refs)[0]
	assert.Equal(t, head, remote.Peel(refs, head))
}
