package transport

import (
	"context"
	"fmt"

	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	"github.com/smartcontractkit/scaffold-cli/internal/archivecache"
	"github.com/smartcontractkit/scaffold-cli/internal/failure"
	"github.com/smartcontractkit/scaffold-cli/internal/remote"
	"github.com/smartcontractkit/scaffold-cli/internal/source"
)

// Fetcher returns a local path holding the archive for key.
type Fetcher interface {
	Fetch(ctx context.Context, key archivecache.Key, url string) (string, error)
}

// Extractor unpacks an archive into a destination directory.
type Extractor interface {
	Extract(archivePath, dest string) error
}

// ArchiveTransport downloads a provider archive of one commit and unpacks it.
// It never produces version control metadata.
type ArchiveTransport struct {
	logger    *zerolog.Logger
	lister    RefLister
	fetcher   Fetcher
	extractor Extractor
	decision  Decision
	observer  Observer
}

func NewArchiveTransport(logger *zerolog.Logger, lister RefLister, fetcher Fetcher, extractor Extractor, decision Decision, observer Observer) *ArchiveTransport {
	return &ArchiveTransport{
		logger:    logger,
		lister:    lister,
		fetcher:   fetcher,
		extractor: extractor,
		decision:  decision,
		observer:  observerOrNop(observer),
	}
}

// ArchiveURL builds the provider download URL for one commit.
func ArchiveURL(d source.Descriptor, hash string) (string, error) {
	switch d.Host {
	case source.HostGitHub:
		return fmt.Sprintf("https://github.com/%s/%s/archive/%s.tar.gz", d.Owner, d.Repo, hash), nil
	case source.HostGitLab:
		return fmt.Sprintf("https://gitlab.com/%s/%s/repository/archive.tar.gz?ref=%s", d.Owner, d.Repo, hash), nil
	case source.HostUnknown:
		return "", failure.Transport(nil, failure.CodeUnsupportedHost, "archives cannot be downloaded from %s", d)
	default:
		return "", failure.Transport(nil, failure.CodeUnsupportedHost, "unsupported host %s", d.Host)
	}
}

func (a *ArchiveTransport) Acquire(ctx context.Context, url string, req Request) error {
	if req.KeepHistory {
		return failure.Input(failure.CodeHistoryRequiresGit, "tar mode does not support keeping history, use git mode instead")
	}

	desc, err := source.Parse(url)
	if err != nil {
		return err
	}

	refs, err := a.lister.List(ctx, source.CloneURL(url))
	if err != nil {
		return err
	}

	ref, err := a.resolve(refs, req.Branch, desc)
	if err != nil {
		return err
	}
	a.logger.Debug().Msgf("Resolved %s to %s (%s)", desc, ref.Name, ref.Hash)

	archiveURL, err := ArchiveURL(desc, ref.Hash)
	if err != nil {
		return err
	}

	a.observer.Start("Downloading archive from " + archiveURL)
	path, err := a.fetcher.Fetch(ctx, archivecache.Key{Owner: desc.Owner, Repo: desc.Repo, Hash: ref.Hash}, archiveURL)
	if err != nil {
		a.observer.Finish("")
		return err
	}

	a.observer.Update("Extracting archive")
	if err := a.extractor.Extract(path, req.Destination); err != nil {
		a.observer.Finish("")
		return err
	}

	a.observer.Finish("Archive extracted successfully")
	return nil
}

func (a *ArchiveTransport) resolve(refs []remote.Ref, branch Branch, desc source.Descriptor) (remote.Ref, error) {
	switch branch.Kind {
	case BranchExplicit:
		ref, ok := remote.FindBranchOrTag(refs, branch.Name)
		if !ok {
			return remote.Ref{}, failure.Conflict(failure.CodeRefNotFound, "branch or tag %q not found in %s", branch.Name, desc)
		}
		return ref, nil
	case BranchInteractive:
		return a.pick(refs, desc)
	default:
		head, ok := remote.FindHead(refs)
		if !ok {
			return remote.Ref{}, failure.Conflict(failure.CodeRefNotFound, "no HEAD reference in %s, cannot determine the default branch", desc)
		}
		return head, nil
	}
}

func (a *ArchiveTransport) pick(refs []remote.Ref, desc source.Descriptor) (remote.Ref, error) {
	if a.decision == nil {
		return remote.Ref{}, failure.Input(errors.CodeInvalidInput, "interactive branch selection needs a terminal, pass a branch or tag name instead")
	}

	candidates := remote.HeadsAndTags(refs)
	if len(candidates) == 0 {
		return remote.Ref{}, failure.Conflict(failure.CodeRefNotFound, "%s has no branches or tags", desc)
	}

	labels := make([]string, len(candidates))
	for i, r := range candidates {
		labels[i] = r.ShortName()
		if r.IsTag() {
			labels[i] += " (tag)"
		}
	}

	idx, err := a.decision.Select("Pick the branch or tag you want to download", labels)
	if err != nil {
		return remote.Ref{}, fmt.Errorf("failed to select a branch or tag: %w", err)
	}
	if idx < 0 || idx >= len(candidates) {
		return remote.Ref{}, failure.Input(errors.CodeInvalidInput, "selection %d is out of range", idx)
	}
	return remote.Peel(refs, candidates[idx]), nil
}
