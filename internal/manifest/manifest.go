// Package manifest keeps the registry of named templates at
// <app root>/template.toml.
package manifest

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/jmgilman/go/errors"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
)

// Template is one registered template.
type Template struct {
	URL         string `toml:"url" yaml:"url"`
	Description string `toml:"description,omitempty" yaml:"description,omitempty"`
	Alias       string `toml:"alias,omitempty" yaml:"alias,omitempty"`
}

// Manifest maps template names to templates. Names are unique, aliases are not.
type Manifest struct {
	Templates map[string]Template `toml:"templates"`
}

func New() *Manifest {
	return &Manifest{Templates: map[string]Template{}}
}

// Store loads and saves the whole registry.
type Store interface {
	Load() (*Manifest, error)
	Save(m *Manifest) error
}

// ValidateName rejects names that cannot be used as a single directory below
// the templates directory. Names are flat: a separator would let one template
// live inside another's directory.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return failure.Input(failure.CodeInvalidTemplateName, "template name is empty")
	}
	if strings.ContainsAny(name, `/\`) || filepath.IsAbs(name) {
		return failure.Input(failure.CodeInvalidTemplateName, "template name %q must not contain path separators", name)
	}
	if name == "." || name == ".." {
		return failure.Input(failure.CodeInvalidTemplateName, "template name %q is reserved", name)
	}
	return nil
}

// Add inserts or overwrites name.
func (m *Manifest) Add(name string, t Template) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if strings.TrimSpace(t.URL) == "" {
		return failure.Input(errors.CodeInvalidInput, "template %q has no url", name)
	}
	if m.Templates == nil {
		m.Templates = map[string]Template{}
	}
	m.Templates[name] = t
	return nil
}

// Get returns the template stored under the exact name.
func (m *Manifest) Get(name string) (Template, bool) {
	t, ok := m.Templates[name]
	return t, ok
}

// Find resolves name to a stored key: the exact key first, then the first key
// in sorted order whose alias equals name.
func (m *Manifest) Find(name string) (string, bool) {
	if _, ok := m.Templates[name]; ok {
		return name, true
	}
	for _, key := range m.Names() {
		if m.Templates[key].Alias != "" && m.Templates[key].Alias == name {
			return key, true
		}
	}
	return "", false
}

// Remove deletes the entry Find resolves name to and returns its key.
// The materialized directory is left for the caller.
func (m *Manifest) Remove(name string) (string, bool) {
	key, ok := m.Find(name)
	if !ok {
		return "", false
	}
	delete(m.Templates, key)
	return key, true
}

// Names returns every key in sorted order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Templates))
	for name := range m.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manifest) Len() int {
	return len(m.Templates)
}

func (m *Manifest) clone() *Manifest {
	c := New()
	for k, v := range m.Templates {
		c.Templates[k] = v
	}
	return c
}
