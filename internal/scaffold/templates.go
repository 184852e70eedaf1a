package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmgilman/go/errors"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
	"github.com/smartcontractkit/scaffold-cli/internal/manifest"
	"github.com/smartcontractkit/scaffold-cli/internal/source"
	"github.com/smartcontractkit/scaffold-cli/internal/transport"
)

// DefaultName derives "<host>-<owner>-<repo>" from a repository URL.
func DefaultName(url string) (string, error) {
	desc, err := source.Parse(url)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%s", desc.Host, desc.Owner, desc.Repo), nil
}

// RegisterOptions control Register.
type RegisterOptions struct {
	// Materialize downloads the template right after registering it.
	Materialize bool
	// Force overwrites an existing registration with the same name.
	Force bool
	Mode  transport.Mode
}

// Register adds t under name, deriving the name from the URL when empty, and
// returns the name used.
func (s *Scaffolder) Register(ctx context.Context, name string, t manifest.Template, opts RegisterOptions) (string, error) {
	if !source.IsValidURL(t.URL) {
		return "", failure.Input(failure.CodeInvalidURL, "invalid repository URL %q: expected https://github.com/<owner>/<repo> or https://gitlab.com/<owner>/<repo>", t.URL)
	}
	if name == "" {
		derived, err := DefaultName(t.URL)
		if err != nil {
			return "", err
		}
		name = derived
	}

	m, err := s.deps.Store.Load()
	if err != nil {
		return "", err
	}
	if _, exists := m.Get(name); exists && !opts.Force {
		return "", failure.Conflict(errors.CodeConflict, "template %q is already registered, use --force to replace it", name)
	}
	if err := m.Add(name, t); err != nil {
		return "", err
	}
	if err := s.deps.Store.Save(m); err != nil {
		return "", err
	}
	s.logger.Debug().Msgf("Registered template %s -> %s", name, t.URL)

	if !opts.Materialize {
		return name, nil
	}
	results, err := s.Update(ctx, []string{name}, false, opts.Mode)
	if err != nil {
		return name, err
	}
	return name, results[0].Err
}

// Target is a requested template name resolved against the manifest.
type Target struct {
	Requested string
	Name      string
	Template  manifest.Template
	Found     bool
	Dir       string
	Size      int64
}

// ViaAlias reports whether the request matched an alias rather than the name.
func (t Target) ViaAlias() bool {
	return t.Found && t.Requested != t.Name
}

// Resolve maps names, or every registered template when all is set, to
// targets. Unknown names are returned with Found unset.
func (s *Scaffolder) Resolve(names []string, all bool) ([]Target, error) {
	m, err := s.deps.Store.Load()
	if err != nil {
		return nil, err
	}
	return s.resolve(m, names, all)
}

func (s *Scaffolder) resolve(m *manifest.Manifest, names []string, all bool) ([]Target, error) {
	if all {
		names = m.Names()
	} else if len(names) == 0 {
		return nil, invalidInput("no template names given, pass names or --all")
	}

	targets := make([]Target, 0, len(names))
	seen := map[string]bool{}
	for _, requested := range names {
		key, ok := m.Find(requested)
		if !ok {
			targets = append(targets, Target{Requested: requested})
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		t, _ := m.Get(key)
		dir := s.templateDir(key)
		size, err := dirSize(dir)
		if err != nil {
			return nil, err
		}
		targets = append(targets, Target{
			Requested: requested,
			Name:      key,
			Template:  t,
			Found:     true,
			Dir:       dir,
			Size:      size,
		})
	}
	return targets, nil
}

// UpdateResult is the outcome for one requested template.
type UpdateResult struct {
	Target
	Err error
}

// Update downloads each template afresh into templates/<name>. A failure for
// one template does not stop the others; the returned error is only set when
// the manifest itself could not be read.
func (s *Scaffolder) Update(ctx context.Context, names []string, all bool, mode transport.Mode) ([]UpdateResult, error) {
	targets, err := s.Resolve(names, all)
	if err != nil {
		return nil, err
	}

	results := make([]UpdateResult, 0, len(targets))
	for _, target := range targets {
		if !target.Found {
			results = append(results, UpdateResult{
				Target: target,
				Err:    failure.Conflict(failure.CodeTemplateNotFound, "template %q not found", target.Requested),
			})
			continue
		}
		err := s.materialize(ctx, target, mode)
		if err == nil {
			target.Size, err = dirSize(target.Dir)
		}
		results = append(results, UpdateResult{Target: target, Err: err})
	}
	return results, nil
}

// materialize acquires the template into a sibling temporary directory and
// swaps it into place, so a failed download keeps the previous copy.
func (s *Scaffolder) materialize(ctx context.Context, target Target, mode transport.Mode) error {
	parent := filepath.Dir(target.Dir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return failure.IO(err, "failed to create %s", parent)
	}
	tmp := filepath.Join(parent, fmt.Sprintf(".%s.%s.tmp", filepath.Base(target.Dir), uuid.NewString()))
	defer os.RemoveAll(tmp)

	req := transport.Request{
		Destination: tmp,
		Mode:        mode,
		Force:       true,
		KeepHistory: false,
		Branch:      transport.DefaultBranch(),
	}
	if err := s.transportFor(mode).Acquire(ctx, target.Template.URL, req); err != nil {
		return err
	}

	if err := os.RemoveAll(target.Dir); err != nil {
		return failure.IO(err, "failed to remove previous copy of %s", target.Name)
	}
	if err := os.Rename(tmp, target.Dir); err != nil {
		return failure.IO(err, "failed to move %s into place", target.Name)
	}
	s.logger.Debug().Msgf("Materialized template %s into %s", target.Name, target.Dir)
	return nil
}

// Removed is the outcome of removing one requested template.
type Removed struct {
	Target
	Err error
}

// Remove deletes the registration and the downloaded copy of each template.
// The manifest is saved once, after all removals.
func (s *Scaffolder) Remove(names []string, all bool) ([]Removed, error) {
	m, err := s.deps.Store.Load()
	if err != nil {
		return nil, err
	}
	targets, err := s.resolve(m, names, all)
	if err != nil {
		return nil, err
	}

	results := make([]Removed, 0, len(targets))
	changed := false
	for _, target := range targets {
		if !target.Found {
			results = append(results, Removed{
				Target: target,
				Err:    failure.Conflict(failure.CodeTemplateNotFound, "template %q not found", target.Requested),
			})
			continue
		}
		if err := os.RemoveAll(target.Dir); err != nil {
			results = append(results, Removed{Target: target, Err: failure.IO(err, "failed to remove %s", target.Dir)})
			continue
		}
		m.Remove(target.Name)
		changed = true
		results = append(results, Removed{Target: target})
	}

	if changed {
		if err := s.deps.Store.Save(m); err != nil {
			return results, err
		}
	}
	return results, nil
}

// Entry is one registered template as shown by List.
type Entry struct {
	Name     string
	Template manifest.Template
	Dir      string
	Present  bool
	Size     int64
}

// List returns every registered template sorted by name.
func (s *Scaffolder) List() ([]Entry, error) {
	m, err := s.deps.Store.Load()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, m.Len())
	for _, name := range m.Names() {
		t, _ := m.Get(name)
		dir := s.templateDir(name)
		info, statErr := os.Stat(dir)
		size, err := dirSize(dir)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{
			Name:     name,
			Template: t,
			Dir:      dir,
			Present:  statErr == nil && info.IsDir(),
			Size:     size,
		})
	}
	return entries, nil
}
