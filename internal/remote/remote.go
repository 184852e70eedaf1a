// Package remote enumerates the references advertised by a git remote.
package remote

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
)

const (
	HeadRef    = "HEAD"
	headPrefix = "refs/heads/"
	tagPrefix  = "refs/tags/"
	peeledTag  = "^{}"
)

// Ref is a single advertised reference.
type Ref struct {
	Name string
	Hash string
}

func (r Ref) IsHead() bool {
	return strings.HasPrefix(r.Name, headPrefix)
}

func (r Ref) IsTag() bool {
	return strings.HasPrefix(r.Name, tagPrefix) && !strings.HasSuffix(r.Name, peeledTag)
}

// ShortName strips the refs/heads/ or refs/tags/ prefix.
func (r Ref) ShortName() string {
	switch {
	case strings.HasPrefix(r.Name, headPrefix):
		return strings.TrimPrefix(r.Name, headPrefix)
	case strings.HasPrefix(r.Name, tagPrefix):
		return strings.TrimPrefix(r.Name, tagPrefix)
	default:
		return r.Name
	}
}

// Lister lists remote references through git ls-remote.
type Lister struct {
	logger *zerolog.Logger
	runner Runner
}

func NewLister(logger *zerolog.Logger, runner Runner) *Lister {
	return &Lister{
		logger: logger,
		runner: runner,
	}
}

// List returns the remote's references in the order the remote reports them.
func (l *Lister) List(ctx context.Context, url string) ([]Ref, error) {
	l.logger.Debug().Str("url", url).Msg("Listing remote references")

	result, err := l.runner.Run(ctx, "", "ls-remote", url)
	if err != nil {
		return nil, failure.Transport(err, failure.CodeRefListFailed, "failed to list references of %s: %s", url, Diagnostic(result, err))
	}

	refs, err := ParseRefs(result.Stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to list references of %s: %w", url, err)
	}
	if len(refs) == 0 {
		return nil, failure.Transport(nil, failure.CodeRefListFailed, "remote %s advertised no references (empty or missing repository)", url)
	}

	l.logger.Debug().Msgf("Remote %s advertised %d references", url, len(refs))
	return refs, nil
}

// ParseRefs parses "<hash>\t<name>" lines.
func ParseRefs(output string) ([]Ref, error) {
	if !utf8.ValidString(output) {
		return nil, failure.Transport(nil, failure.CodeRefListFailed, "ls-remote output is not valid UTF-8")
	}

	var refs []Ref
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		hash, name, found := strings.Cut(line, "\t")
		if !found || hash == "" || name == "" {
			return nil, failure.Transport(nil, failure.CodeRefListFailed, "malformed ls-remote line %q", line)
		}
		refs = append(refs, Ref{Name: strings.TrimSpace(name), Hash: strings.TrimSpace(hash)})
	}
	return refs, nil
}

// Heads keeps refs/heads/* entries.
func Heads(refs []Ref) []Ref {
	var out []Ref
	for _, r := range refs {
		if r.IsHead() {
			out = append(out, r)
		}
	}
	return out
}

// Tags keeps refs/tags/* entries, dropping peeled duplicates.
func Tags(refs []Ref) []Ref {
	var out []Ref
	for _, r := range refs {
		if r.IsTag() {
			out = append(out, r)
		}
	}
	return out
}

// HeadsAndTags keeps branches followed by tags, each group in remote order.
func HeadsAndTags(refs []Ref) []Ref {
	return append(Heads(refs), Tags(refs)...)
}

// FindHead returns the HEAD reference.
func FindHead(refs []Ref) (Ref, bool) {
	for _, r := range refs {
		if r.Name == HeadRef {
			return r, true
		}
	}
	return Ref{}, false
}

// FindBranchOrTag matches name exactly against refs/heads/<name>, then refs/tags/<name>.
func FindBranchOrTag(refs []Ref, name string) (Ref, bool) {
	for _, r := range refs {
		if r.Name == headPrefix+name {
			return r, true
		}
	}
	for _, r := range refs {
		if r.Name == tagPrefix+name {
			return Peel(refs, r), true
		}
	}
	return Ref{}, false
}

// Peel replaces an annotated tag's hash with the commit it points to when the
// remote advertised one.
func Peel(refs []Ref, tag Ref) Ref {
	if !tag.IsTag() {
		return tag
	}
	for _, r := range refs {
		if r.Name == tag.Name+peeledTag {
			return Ref{Name: tag.Name, Hash: r.Hash}
		}
	}
	return tag
}
