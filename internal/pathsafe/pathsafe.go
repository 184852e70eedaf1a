// Package pathsafe validates user supplied destination paths lexically,
// without touching the filesystem or following symlinks.
package pathsafe

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
)

// Sanitize resolves path against cwd. Absolute paths must lie under cwd.
// Relative paths must not contain a ".." component and are joined onto cwd.
func Sanitize(path, cwd string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", failure.Input(failure.CodeUnsafePath, "destination path is empty")
	}

	if filepath.IsAbs(path) {
		clean := filepath.Clean(path)
		rel, err := filepath.Rel(filepath.Clean(cwd), clean)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", failure.Input(failure.CodeUnsafePath, "destination %q is outside the working directory %q", path, cwd)
		}
		return clean, nil
	}

	for _, part := range strings.FieldsFunc(path, isSeparator) {
		if part == ".." {
			return "", failure.Input(failure.CodeUnsafePath, "destination %q must not contain '..'", path)
		}
	}
	return filepath.Join(cwd, path), nil
}

// SanitizeWD is Sanitize against the process working directory.
func SanitizeWD(path string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", failure.IO(err, "failed to get working directory")
	}
	return Sanitize(path, cwd)
}

func isSeparator(r rune) bool {
	return r == '/' || r == filepath.Separator
}
