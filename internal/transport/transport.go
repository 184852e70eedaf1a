// Package transport materializes a remote repository into a local directory,
// either by cloning it with git or by downloading a provider archive.
package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/smartcontractkit/scaffold-cli/internal/remote"
)

// Mode selects the acquisition strategy.
type Mode int

const (
	ModeGit Mode = iota
	ModeTar
)

func (m Mode) String() string {
	switch m {
	case ModeGit:
		return "git"
	case ModeTar:
		return "tar"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "git" or "tar".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "git":
		return ModeGit, nil
	case "tar":
		return ModeTar, nil
	default:
		return 0, fmt.Errorf("unknown mode %q: expected git or tar", s)
	}
}

type BranchKind int

const (
	BranchDefault BranchKind = iota
	BranchExplicit
	BranchInteractive
)

// Branch says which ref to materialize.
type Branch struct {
	Kind BranchKind
	Name string
}

func DefaultBranch() Branch {
	return Branch{Kind: BranchDefault}
}

func ExplicitBranch(name string) Branch {
	return Branch{Kind: BranchExplicit, Name: name}
}

func InteractiveBranch() Branch {
	return Branch{Kind: BranchInteractive}
}

// Request describes one acquisition into Destination.
type Request struct {
	Destination string
	Mode        Mode
	Force       bool
	KeepHistory bool
	Branch      Branch
}

// Decision answers questions on behalf of the user.
type Decision interface {
	Select(prompt string, choices []string) (int, error)
	Confirm(prompt string) (bool, error)
}

// Observer receives progress events. Implementations must not affect the outcome.
type Observer interface {
	Start(msg string)
	Update(msg string)
	Finish(msg string)
}

type nopObserver struct{}

func (nopObserver) Start(string)  {}
func (nopObserver) Update(string) {}
func (nopObserver) Finish(string) {}

// NopObserver discards every event.
func NopObserver() Observer {
	return nopObserver{}
}

// RefLister lists the references advertised by a remote.
type RefLister interface {
	List(ctx context.Context, url string) ([]remote.Ref, error)
}

// Transport materializes url into req.Destination.
type Transport interface {
	Acquire(ctx context.Context, url string, req Request) error
}

func observerOrNop(o Observer) Observer {
	if o == nil {
		return NopObserver()
	}
	return o
}
