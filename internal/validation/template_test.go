package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateValidators(t *testing.T) {
	type Inputs struct {
		URL  string `validate:"required,repo_url" cli:"url"`
		Name string `validate:"omitempty,template_name" cli:"--name"`
		Mode string `validate:"transport_mode" cli:"--mode"`
	}

	v, err := NewValidator()
	require.NoError(t, err)

	assert.NoError(t, v.Struct(&Inputs{URL: "https://github.com/foo/bar", Name: "web-starter", Mode: "tar"}))
	assert.NoError(t, v.Struct(&Inputs{URL: "https://gitlab.com/foo/bar.git"}))

	err = v.Struct(&Inputs{URL: "https://example.org/foo/bar", Name: "../evil", Mode: "svn"})
	require.Error(t, err)

	AssertErrors(t, err, "Inputs.URL", "url must be a GitHub or GitLab repository URL like https://github.com/<owner>/<repo>: https://example.org/foo/bar", v)
	AssertErrors(t, err, "Inputs.Name", "--name must be a plain name without path separators: ../evil", v)
	AssertErrors(t, err, "Inputs.Mode", "--mode must be either git or tar: svn", v)

	err = v.Struct(&Inputs{URL: "https://github.com/foo/bar", Name: "web/starter"})
	require.Error(t, err)
	AssertErrors(t, err, "Inputs.Name", "--name must be a plain name without path separators: web/starter", v)
}
