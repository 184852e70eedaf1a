package scaffold

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
)

const packageManifest = "package.json"

var skippedPackageDirs = map[string]bool{
	gitDir:         true,
	"node_modules": true,
}

// RenamePackages sets the top-level "name" of every package.json below dir to
// name and returns how many files were rewritten. Key order and formatting of
// the rest of each document are preserved. Files that are not JSON objects are
// left alone.
func RenamePackages(logger *zerolog.Logger, dir, name string) (int, error) {
	renamed := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && skippedPackageDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != packageManifest || !d.Type().IsRegular() {
			return nil
		}

		ok, err := renamePackage(path, name)
		if err != nil {
			return err
		}
		if ok {
			logger.Debug().Msgf("Renamed package in %s to %s", path, name)
			renamed++
		} else {
			logger.Debug().Msgf("Skipping %s: not a JSON object", path)
		}
		return nil
	})
	if err != nil {
		return renamed, failure.IO(err, "failed to rename packages in %s", dir)
	}
	return renamed, nil
}

func renamePackage(path, name string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return false, nil
	}

	updated, err := sjson.SetBytes(data, "name", name)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(path, updated, info.Mode().Perm())
}
