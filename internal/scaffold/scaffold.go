// Package scaffold composes source resolution, the transports, the manifest
// and the filesystem helpers into the operations the CLI exposes.
package scaffold

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
	"github.com/smartcontractkit/scaffold-cli/internal/manifest"
	"github.com/smartcontractkit/scaffold-cli/internal/pathsafe"
	"github.com/smartcontractkit/scaffold-cli/internal/remote"
	"github.com/smartcontractkit/scaffold-cli/internal/source"
	"github.com/smartcontractkit/scaffold-cli/internal/transport"
)

// Deps are the collaborators of a Scaffolder. Decision and Observer may be nil;
// without a Decision every question that would need an answer becomes an error.
type Deps struct {
	Lister       transport.RefLister
	Runner       remote.Runner
	Cache        transport.Fetcher
	Extractor    transport.Extractor
	Store        manifest.Store
	TemplatesDir string
	Decision     transport.Decision
	Observer     transport.Observer

	// WorkDir anchors relative destinations. Empty means the process working directory.
	WorkDir string
}

type Scaffolder struct {
	logger *zerolog.Logger
	deps   Deps
	git    *transport.GitTransport
	tar    *transport.ArchiveTransport
}

func New(logger *zerolog.Logger, deps Deps) *Scaffolder {
	if deps.Observer == nil {
		deps.Observer = transport.NopObserver()
	}
	return &Scaffolder{
		logger: logger,
		deps:   deps,
		git:    transport.NewGitTransport(logger, deps.Runner, deps.Lister, deps.Decision, deps.Observer),
		tar:    transport.NewArchiveTransport(logger, deps.Lister, deps.Cache, deps.Extractor, deps.Decision, deps.Observer),
	}
}

// CreateRequest is an acquisition request plus the options that only apply to
// templates copied from the registry.
type CreateRequest struct {
	transport.Request

	// RenamePackages rewrites the "name" of every package.json in the copy to
	// the destination's base name.
	RenamePackages bool
}

// Result describes what Create did.
type Result struct {
	Source      string
	Template    string
	Destination string
	Mode        transport.Mode
	Skipped     bool
	Renamed     int
}

// Create materializes rawSource into req.Destination. rawSource is either a
// repository URL or the name or alias of a registered template.
func (s *Scaffolder) Create(ctx context.Context, rawSource string, req CreateRequest) (Result, error) {
	if source.IsValidURL(rawSource) {
		return s.createFromURL(ctx, rawSource, req)
	}
	return s.createFromTemplate(rawSource, req)
}

func (s *Scaffolder) createFromURL(ctx context.Context, url string, req CreateRequest) (Result, error) {
	desc, err := source.Parse(url)
	if err != nil {
		return Result{}, err
	}

	dest, err := s.destination(req.Destination, desc.Repo)
	if err != nil {
		return Result{}, err
	}
	result := Result{Source: url, Destination: dest, Mode: req.Mode}

	if req.Mode == transport.ModeTar && req.KeepHistory {
		useGit, err := s.confirm("Tar mode does not support keeping history, do you want to use git instead?")
		if err != nil {
			return Result{}, err
		}
		if !useGit {
			return Result{}, failure.Input(failure.CodeHistoryRequiresGit, "tar mode does not support keeping history, use git mode instead")
		}
		result.Mode = transport.ModeGit
	}

	proceed, err := s.prepareDestination(dest, req.Force)
	if err != nil {
		return Result{}, err
	}
	if !proceed {
		result.Skipped = true
		return result, nil
	}

	acquire := req.Request
	acquire.Destination = dest
	acquire.Mode = result.Mode
	if err := s.transportFor(result.Mode).Acquire(ctx, url, acquire); err != nil {
		return Result{}, err
	}

	s.logger.Debug().Msgf("Materialized %s into %s using %s", desc, dest, result.Mode)
	return result, nil
}

func (s *Scaffolder) createFromTemplate(name string, req CreateRequest) (Result, error) {
	m, err := s.deps.Store.Load()
	if err != nil {
		return Result{}, err
	}

	key, ok := m.Find(name)
	if !ok {
		return Result{}, failure.Conflict(failure.CodeTemplateNotFound, "%q is neither a repository URL nor a registered template", name)
	}

	src := s.templateDir(key)
	if info, err := os.Stat(src); err != nil || !info.IsDir() {
		return Result{}, failure.Conflict(failure.CodeTemplateNotFound, "template %q has not been downloaded yet, run `scaffold templates update %s`", key, key)
	}

	dest, err := s.destination(req.Destination, filepath.Base(key))
	if err != nil {
		return Result{}, err
	}
	result := Result{Source: name, Template: key, Destination: dest}

	proceed, err := s.prepareDestination(dest, req.Force)
	if err != nil {
		return Result{}, err
	}
	if !proceed {
		result.Skipped = true
		return result, nil
	}

	s.deps.Observer.Start(fmt.Sprintf("Copying template %s", key))
	if err := copyTree(src, dest); err != nil {
		s.deps.Observer.Finish("")
		return Result{}, err
	}

	if req.RenamePackages {
		s.deps.Observer.Update("Renaming packages")
		n, err := RenamePackages(s.logger, dest, filepath.Base(dest))
		if err != nil {
			s.deps.Observer.Finish("")
			return Result{}, err
		}
		result.Renamed = n
	}

	s.deps.Observer.Finish("Template copied successfully")
	return result, nil
}

// destination sanitizes raw, falling back to fallback when raw is empty.
func (s *Scaffolder) destination(raw, fallback string) (string, error) {
	if raw == "" {
		raw = fallback
	}
	if s.deps.WorkDir != "" {
		return pathsafe.Sanitize(raw, s.deps.WorkDir)
	}
	return pathsafe.SanitizeWD(raw)
}

// prepareDestination applies the non-empty directory policy. It returns false
// when the user declined to overwrite.
func (s *Scaffolder) prepareDestination(dest string, force bool) (bool, error) {
	empty, err := isEmptyDir(dest)
	if err != nil {
		return false, err
	}
	if empty {
		return true, nil
	}

	if !force {
		if s.deps.Decision == nil {
			return false, failure.Conflict(failure.CodeDestinationNotEmpty, "destination %s is not empty, use --force to overwrite it", dest)
		}
		ok, err := s.deps.Decision.Confirm(fmt.Sprintf("Directory %s is not empty. Overwrite it?", dest))
		if err != nil {
			return false, fmt.Errorf("failed to confirm overwrite: %w", err)
		}
		if !ok {
			s.logger.Debug().Msgf("Overwrite of %s declined", dest)
			return false, nil
		}
	}

	s.logger.Debug().Msgf("Removing existing destination %s", dest)
	if err := os.RemoveAll(dest); err != nil {
		return false, failure.IO(err, "failed to remove %s", dest)
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return false, failure.IO(err, "failed to recreate %s", dest)
	}
	return true, nil
}

func (s *Scaffolder) confirm(prompt string) (bool, error) {
	if s.deps.Decision == nil {
		return false, nil
	}
	ok, err := s.deps.Decision.Confirm(prompt)
	if err != nil {
		return false, fmt.Errorf("failed to confirm: %w", err)
	}
	return ok, nil
}

func (s *Scaffolder) transportFor(mode transport.Mode) transport.Transport {
	if mode == transport.ModeTar {
		return s.tar
	}
	return s.git
}

func (s *Scaffolder) templateDir(name string) string {
	return filepath.Join(s.deps.TemplatesDir, filepath.FromSlash(name))
}

func invalidInput(format string, args ...any) error {
	return failure.Input(errors.CodeInvalidInput, format, args...)
}
