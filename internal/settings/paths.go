package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/smartcontractkit/scaffold-cli/internal/constants"
)

// Paths is the on-disk layout below the application root.
type Paths struct {
	Root        string
	Cache       string
	Manifest    string
	Templates   string
	UpdateCheck string
}

// ResolvePaths picks the application root: the explicit override, else
// $XDG_CACHE_HOME/scaffold, else the platform user cache directory.
func ResolvePaths(override string) (Paths, error) {
	root := override
	if root == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			dir, err := os.UserCacheDir()
			if err != nil {
				return Paths{}, fmt.Errorf("failed to determine user cache directory: %w", err)
			}
			base = dir
		}
		root = filepath.Join(base, constants.AppName)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return Paths{}, fmt.Errorf("failed to resolve application root %s: %w", root, err)
	}

	return PathsFor(root), nil
}

// PathsFor derives the layout for a fixed root.
func PathsFor(root string) Paths {
	return Paths{
		Root:        root,
		Cache:       filepath.Join(root, constants.CacheDirName),
		Manifest:    filepath.Join(root, constants.ManifestFileName),
		Templates:   filepath.Join(root, constants.TemplatesDirName),
		UpdateCheck: filepath.Join(root, constants.UpdateCheckFile),
	}
}
