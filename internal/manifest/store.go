package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
)

// FileStore persists the manifest as a TOML document.
type FileStore struct {
	path   string
	logger *zerolog.Logger
}

func NewFileStore(path string, logger *zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load reads the manifest, creating an empty one on first use.
func (s *FileStore) Load() (*Manifest, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.logger.Debug().Msg("Creating empty template manifest at " + s.path)
		m := New()
		if err := s.Save(m); err != nil {
			return nil, err
		}
		return m, nil
	}
	if err != nil {
		return nil, failure.IO(err, "failed to read manifest %s", s.path)
	}

	m := New()
	if _, err := toml.Decode(string(data), m); err != nil {
		return nil, failure.IO(err, "failed to parse manifest %s", s.path)
	}
	if m.Templates == nil {
		m.Templates = map[string]Template{}
	}
	for _, name := range m.Names() {
		if err := ValidateName(name); err != nil {
			return nil, failure.IO(err, "manifest %s has an unusable entry", s.path)
		}
	}

	s.logger.Debug().Msgf("Loaded %d templates from %s", m.Len(), s.path)
	return m, nil
}

// Save rewrites the whole document through a temporary file and a rename.
func (s *FileStore) Save(m *Manifest) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return failure.IO(err, "failed to encode manifest")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return failure.IO(err, "failed to create directory %s", dir)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", s.path, uuid.NewString())
	if err := os.WriteFile(tmp, buf.Bytes(), 0600); err != nil {
		_ = os.Remove(tmp)
		return failure.IO(err, "failed to write temp file %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return failure.IO(err, "failed to rename temp file onto %s", s.path)
	}
	return nil
}

// MemoryStore keeps the manifest in memory.
type MemoryStore struct {
	mu    sync.Mutex
	m     *Manifest
	Saves int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: New()}
}

func (s *MemoryStore) Load() (*Manifest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.clone(), nil
}

func (s *MemoryStore) Save(m *Manifest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = m.clone()
	s.Saves++
	return nil
}
