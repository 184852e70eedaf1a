package pathsafe

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
	"github.com/smartcontractkit/scaffold-cli/internal/testutil"
)

func TestSanitize(t *testing.T) {
	cwd := filepath.FromSlash("/work/project")

	tests := []struct {
		name  string
		path  string
		want  string
		valid bool
	}{
		{"plain name", "x", filepath.Join(cwd, "x"), true},
		{"nested", "a/b/c", filepath.Join(cwd, "a", "b", "c"), true},
		{"dot prefix", "./a/b", filepath.Join(cwd, "a", "b"), true},
		{"absolute inside", filepath.Join(cwd, "sub"), filepath.Join(cwd, "sub"), true},
		{"absolute equals cwd", cwd, cwd, true},
		{"parent", "../x", "", false},
		{"hidden parent", "a/../../b", "", false},
		{"inner parent", "a/../b", "", false},
		{"absolute outside", filepath.FromSlash("/etc/passwd"), "", false},
		{"absolute sibling", filepath.FromSlash("/work/project-other"), "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.path, cwd)
			if !tt.valid {
				require.Error(t, err)
				assert.Equal(t, failure.KindInput, failure.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeWD(t *testing.T) {
	dir := t.TempDir()
	restore, err := testutil.ChangeWorkingDirectory(dir)
	require.NoError(t, err)
	defer restore()

	got, err := SanitizeWD("app")
	require.NoError(t, err)
	assert.Equal(t, "app", filepath.Base(got))

	_, err = SanitizeWD("../app")
	require.Error(t, err)
}
