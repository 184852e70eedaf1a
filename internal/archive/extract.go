// Package archive unpacks provider generated gzip tarballs into a destination.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
)

// Extractor unpacks archives produced by GitHub and GitLab. Both wrap the
// repository in a single generated top-level folder which is stripped.
type Extractor struct {
	logger *zerolog.Logger
}

func NewExtractor(logger *zerolog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract unpacks the gzip tarball at archivePath into dest.
func (e *Extractor) Extract(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return failure.IO(err, "failed to open archive %s", archivePath)
	}
	defer f.Close()

	return e.ExtractReader(f, dest)
}

// ExtractReader unpacks a gzip tarball stream into dest. Entries that would
// land outside dest fail the extraction before anything is written for them.
// A failure part way through leaves whatever was already written.
func (e *Extractor) ExtractReader(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return failure.Transport(err, failure.CodeMalformedArchive, "failed to read gzip stream")
	}
	defer gz.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return failure.IO(err, "failed to resolve destination %s", dest)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return failure.IO(err, "failed to create destination %s", root)
	}
	if root, err = filepath.EvalSymlinks(root); err != nil {
		return failure.IO(err, "failed to resolve destination %s", dest)
	}

	tr := tar.NewReader(gz)
	count := 0
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return failure.Transport(err, failure.CodeMalformedArchive, "tar read error")
		}

		// PAX records carry metadata, not files.
		if header.Typeflag == tar.TypeXGlobalHeader || header.Typeflag == tar.TypeXHeader {
			continue
		}

		name := stripFirst(header.Name)
		if name == "" {
			continue
		}

		if _, ok := within(root, name); !ok {
			return failure.Transport(nil, failure.CodeMalformedArchive, "illegal file path in archive: %s", header.Name)
		}
		name = filepath.Clean(filepath.FromSlash(name))
		if name == "." {
			continue
		}

		// Earlier entries may have planted symlinks, so the parent is resolved
		// on disk rather than by string.
		parent, ok := resolve(root, root, filepath.Dir(name))
		if !ok {
			return failure.Transport(nil, failure.CodeMalformedArchive, "illegal file path in archive: %s", header.Name)
		}
		target := filepath.Join(parent, filepath.Base(name))

		switch header.Typeflag {
		case tar.TypeDir:
			e.logger.Debug().Msgf("Extracting dir: %s -> %s", name, target)
			if _, ok := resolve(root, parent, filepath.Base(name)); !ok {
				return failure.Transport(nil, failure.CodeMalformedArchive, "illegal file path in archive: %s", header.Name)
			}
			if err := os.MkdirAll(target, 0755); err != nil {
				return failure.IO(err, "failed to create directory %s", target)
			}
		case tar.TypeReg:
			e.logger.Debug().Msgf("Extracting file: %s -> %s", name, target)
			if err := removeLink(target); err != nil {
				return err
			}
			if err := writeFile(target, tr, os.FileMode(header.Mode)&0755|0600); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if filepath.IsAbs(header.Linkname) {
				e.logger.Debug().Msgf("Skipping absolute symlink %s", name)
				continue
			}
			if _, ok := resolve(root, parent, header.Linkname); !ok {
				e.logger.Debug().Msgf("Skipping symlink %s pointing outside destination", name)
				continue
			}
			if err := os.MkdirAll(parent, 0755); err != nil {
				return failure.IO(err, "failed to create parent directory of %s", target)
			}
			_ = os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return failure.IO(err, "failed to create symlink %s", target)
			}
		default:
			e.logger.Debug().Msgf("Skipping unsupported entry %s (type %c)", name, header.Typeflag)
			continue
		}
		count++
	}

	e.logger.Debug().Msgf("Extracted %d entries into %s", count, root)
	return nil
}

// stripFirst drops the first path component of an archive entry name.
func stripFirst(name string) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	_, rest, found := strings.Cut(name, "/")
	if !found {
		return ""
	}
	return strings.Trim(rest, "/")
}

// within joins name onto root and reports whether the cleaned result stays
// inside root.
func within(root, name string) (string, bool) {
	var target string
	if filepath.IsAbs(name) {
		target = filepath.Clean(name)
	} else {
		target = filepath.Join(root, filepath.FromSlash(name))
	}
	if !inside(root, target) {
		return "", false
	}
	return target, true
}

// resolve walks rel from base one component at a time, following symlinks
// that already exist, and reports whether every step stays inside root.
// A ".." after a component that does not exist yet is rejected since a later
// entry could turn that component into a symlink.
func resolve(root, base, rel string) (string, bool) {
	cur := base
	missing := false
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if missing {
				return "", false
			}
			cur = filepath.Dir(cur)
		default:
			cur = filepath.Join(cur, part)
			if missing {
				continue
			}
			real, err := filepath.EvalSymlinks(cur)
			if err != nil {
				if !os.IsNotExist(err) {
					return "", false
				}
				missing = true
				continue
			}
			cur = real
		}
		if !inside(root, cur) {
			return "", false
		}
	}
	return cur, inside(root, cur)
}

func inside(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}

// removeLink drops a symlink sitting where a regular file is about to be
// written so the write cannot follow it.
func removeLink(target string) error {
	info, err := os.Lstat(target)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return nil
	}
	return failure.IO(os.Remove(target), "failed to replace symlink %s", target)
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return failure.IO(err, "failed to create parent directory of %s", target)
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return failure.IO(err, "failed to create file %s", target)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return failure.IO(err, "failed to write file %s", target)
	}
	return failure.IO(f.Close(), "failed to close file %s", target)
}
