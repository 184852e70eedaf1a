package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/require"
)

// ArchiveEntry is one member of an in-memory tarball.
type ArchiveEntry struct {
	Name     string
	Body     string
	Mode     int64
	Typeflag byte
	Linkname string
}

// TarGz builds a gzip tarball from entries. Entries without a Typeflag are
// regular files, or directories when the name ends in a slash.
func TarGz(t *testing.T, entries ...ArchiveEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.Name,
			Mode:     e.Mode,
			Typeflag: e.Typeflag,
			Linkname: e.Linkname,
		}
		if hdr.Typeflag == 0 {
			hdr.Typeflag = tar.TypeReg
			if len(e.Name) > 0 && e.Name[len(e.Name)-1] == '/' {
				hdr.Typeflag = tar.TypeDir
			}
		}
		if hdr.Mode == 0 {
			hdr.Mode = 0644
			if hdr.Typeflag == tar.TypeDir {
				hdr.Mode = 0755
			}
		}
		if hdr.Typeflag == tar.TypeReg {
			hdr.Size = int64(len(e.Body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.Body))
			require.NoError(t, err)
		}
	}

	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// RepoArchive is a small provider style tarball wrapped in a generated
// top-level folder.
func RepoArchive(t *testing.T) []byte {
	t.Helper()
	return TarGz(t,
		ArchiveEntry{Name: "repo-abc123/"},
		ArchiveEntry{Name: "repo-abc123/README.md", Body: "# hello\n"},
		ArchiveEntry{Name: "repo-abc123/src/"},
		ArchiveEntry{Name: "repo-abc123/src/main.go", Body: "package main\n"},
		ArchiveEntry{Name: "repo-abc123/package.json", Body: `{"name":"starter","version":"1.0.0"}`},
	)
}
