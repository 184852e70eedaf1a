package transport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmgilman/go/errors"
	"github.com/rs/zerolog"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
	"github.com/smartcontractkit/scaffold-cli/internal/remote"
	"github.com/smartcontractkit/scaffold-cli/internal/source"
)

const gitMetadataDir = ".git"

// GitTransport clones the repository with the git binary.
type GitTransport struct {
	logger   *zerolog.Logger
	runner   remote.Runner
	lister   RefLister
	decision Decision
	observer Observer
}

func NewGitTransport(logger *zerolog.Logger, runner remote.Runner, lister RefLister, decision Decision, observer Observer) *GitTransport {
	return &GitTransport{
		logger:   logger,
		runner:   runner,
		lister:   lister,
		decision: decision,
		observer: observerOrNop(observer),
	}
}

func (g *GitTransport) Acquire(ctx context.Context, url string, req Request) error {
	if !source.IsValidURL(url) {
		return failure.Input(failure.CodeInvalidURL, "the source %q is not a valid repository URL", url)
	}
	cloneURL := source.CloneURL(url)

	args := []string{"clone", "--quiet"}
	switch req.Branch.Kind {
	case BranchExplicit:
		args = append(args, "--branch", req.Branch.Name, "--single-branch")
	case BranchInteractive:
		name, err := g.pickBranch(ctx, cloneURL)
		if err != nil {
			return err
		}
		args = append(args, "--branch", name, "--single-branch")
	case BranchDefault:
	}
	if !req.KeepHistory {
		args = append(args, "--depth", "1")
	}
	args = append(args, cloneURL, req.Destination)

	g.observer.Start("Cloning " + cloneURL)
	g.logger.Debug().Strs("args", args).Msg("Running git clone")

	result, err := g.runner.Run(ctx, "", args...)
	if err != nil {
		g.observer.Finish("")
		return failure.Transport(err, errors.CodeExecutionFailed, "git clone failed: %s", remote.Diagnostic(result, err))
	}

	if !req.KeepHistory {
		g.observer.Update("Removing git metadata")
		metadata := filepath.Join(req.Destination, gitMetadataDir)
		if err := os.RemoveAll(metadata); err != nil {
			g.observer.Finish("")
			return failure.IO(err, "failed to remove %s, the destination is left incomplete", metadata)
		}
	}

	g.observer.Finish("Repository cloned successfully")
	return nil
}

func (g *GitTransport) pickBranch(ctx context.Context, url string) (string, error) {
	if g.decision == nil {
		return "", failure.Input(errors.CodeInvalidInput, "interactive branch selection needs a terminal, pass a branch name instead")
	}

	refs, err := g.lister.List(ctx, url)
	if err != nil {
		return "", err
	}
	heads := remote.Heads(refs)
	if len(heads) == 0 {
		return "", failure.Conflict(failure.CodeRefNotFound, "remote %s has no branches", url)
	}

	names := make([]string, len(heads))
	for i, h := range heads {
		names[i] = h.ShortName()
	}

	idx, err := g.decision.Select("Pick the branch you want to clone (use tar mode to clone a tag)", names)
	if err != nil {
		return "", fmt.Errorf("failed to select a branch: %w", err)
	}
	if idx < 0 || idx >= len(names) {
		return "", failure.Input(errors.CodeInvalidInput, "branch selection %d is out of range", idx)
	}
	return names[idx], nil
}
