// Package archivecache stores downloaded repository archives addressed by
// owner, repository and commit hash.
//
// A file present at a key's path is trusted as complete. Writes go through a
// temporary file in the same directory followed by a rename, so an interrupted
// download never leaves a partial archive at the final path. Nothing verifies
// the content of an existing entry.
package archivecache

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
)

const archiveFileName = "archive.tar.gz"

// Key identifies one archive.
type Key struct {
	Owner string
	Repo  string
	Hash  string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s@%s", k.Owner, k.Repo, k.Hash)
}

func (k Key) validate() error {
	for _, part := range []string{k.Owner, k.Repo, k.Hash} {
		if part == "" || part == "." || part == ".." || strings.ContainsAny(part, `/\`) {
			return failure.Input(errors.CodeInvalidInput, "invalid cache key %s", k)
		}
	}
	if len(k.Hash) < 3 {
		return failure.Input(errors.CodeInvalidInput, "cache key hash %q is too short", k.Hash)
	}
	for _, r := range k.Hash {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return failure.Input(errors.CodeInvalidInput, "cache key hash %q is not hexadecimal", k.Hash)
		}
	}
	return nil
}

// Copier streams a response body into the destination file. It exists so the
// CLI can render a progress bar while the default just copies.
type Copier func(body io.ReadCloser, contentLength int64, dst *os.File, message string) error

// Entry is one cached archive on disk.
type Entry struct {
	Path string
	Size int64
}

type Cache struct {
	logger     *zerolog.Logger
	root       string
	httpClient *http.Client
	copier     Copier
}

type Option func(*Cache)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) {
		c.httpClient = client
	}
}

func WithCopier(copier Copier) Option {
	return func(c *Cache) {
		c.copier = copier
	}
}

// New creates a cache rooted at root. The directory is created lazily.
func New(logger *zerolog.Logger, root string, opts ...Option) *Cache {
	c := &Cache{
		logger:     logger,
		root:       root,
		httpClient: http.DefaultClient,
		copier: func(body io.ReadCloser, _ int64, dst *os.File, _ string) error {
			_, err := io.Copy(dst, body)
			return err
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

// Path returns <root>/<owner>/<repo>/<hash[0:2]>/<hash[2:]>/archive.tar.gz.
func (c *Cache) Path(key Key) (string, error) {
	if err := key.validate(); err != nil {
		return "", err
	}
	return filepath.Join(c.root, key.Owner, key.Repo, key.Hash[:2], key.Hash[2:], archiveFileName), nil
}

// Fetch returns the cached archive for key, downloading it from url first when
// it is not present yet.
func (c *Cache) Fetch(ctx context.Context, key Key, url string) (string, error) {
	path, err := c.Path(key)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		c.logger.Debug().Msgf("Using cached archive for %s", key)
		return path, nil
	}

	c.logger.Debug().Msgf("Downloading archive for %s from %s", key, url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", failure.Transport(err, errors.CodeNetwork, "failed to create request for %s", url)
	}
	req.Header.Set("User-Agent", "scaffold-cli")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", failure.Transport(err, errors.CodeNetwork, "failed to download %s", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", failure.Transport(nil, errors.CodeNetwork, "archive download from %s failed with status: %s", url, resp.Status)
	}

	if err := c.store(path, resp, fmt.Sprintf("Downloading %s/%s...", key.Owner, key.Repo)); err != nil {
		return "", err
	}

	c.logger.Debug().Msgf("Cached archive for %s at %s", key, path)
	return path, nil
}

func (c *Cache) store(path string, resp *http.Response, message string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return failure.IO(err, "failed to create cache directory %s", dir)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		return failure.IO(err, "failed to create %s", tmp)
	}

	cleanup := func() {
		f.Close()
		_ = os.Remove(tmp)
	}

	if err := c.copier(resp.Body, resp.ContentLength, f, message); err != nil {
		cleanup()
		return failure.Transport(err, errors.CodeNetwork, "failed to download archive")
	}
	if err := f.Sync(); err != nil {
		cleanup()
		return failure.IO(err, "failed to flush %s", tmp)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return failure.IO(err, "failed to close %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return failure.IO(err, "failed to move archive into %s", path)
	}
	return nil
}

// Entries lists every cached archive, sorted by path.
func (c *Cache) Entries() ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != archiveFileName {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries = append(entries, Entry{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return nil, failure.IO(err, "failed to scan cache %s", c.root)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Stats counts every file under the cache root and their total size.
func (c *Cache) Stats() (files int, size int64, err error) {
	err = filepath.WalkDir(c.root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		size += info.Size()
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return 0, 0, failure.IO(err, "failed to scan cache %s", c.root)
	}
	return files, size, nil
}

// Clear removes everything below the cache root, keeping the root itself.
func (c *Cache) Clear() error {
	children, err := os.ReadDir(c.root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return failure.IO(err, "failed to read cache %s", c.root)
	}

	for _, child := range children {
		path := filepath.Join(c.root, child.Name())
		if err := os.RemoveAll(path); err != nil {
			return failure.IO(err, "failed to remove %s", path)
		}
	}

	c.logger.Debug().Msgf("Cleared %d entries from %s", len(children), c.root)
	return nil
}
