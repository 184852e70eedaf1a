// Package source classifies a user supplied source string as either a remote
// repository URL on a supported host or a local template name.
package source

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/smartcontractkit/scaffold-cli/internal/failure"
)

var (
	validURL = regexp.MustCompile(`^(?:https://)?(github|gitlab)\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?$`)
	hostURL  = regexp.MustCompile(`^(?:https?://)?(?:www\.)?([^./:]+)\.com(?:[/:?#]|$)`)
)

// Host is the closed set of repository providers.
type Host int

const (
	HostUnknown Host = iota
	HostGitHub
	HostGitLab
)

func (h Host) String() string {
	switch h {
	case HostGitHub:
		return "github"
	case HostGitLab:
		return "gitlab"
	default:
		return "unknown"
	}
}

// ParseHost maps a lowercase host label to a Host.
func ParseHost(label string) Host {
	switch strings.ToLower(label) {
	case "github":
		return HostGitHub
	case "gitlab":
		return HostGitLab
	default:
		return HostUnknown
	}
}

// Descriptor identifies a repository on a provider.
type Descriptor struct {
	Host  Host
	Owner string
	Repo  string
}

// String returns "host:owner/repo".
func (d Descriptor) String() string {
	return d.Host.String() + ":" + d.Owner + "/" + d.Repo
}

// IsValidURL reports whether s is a repository URL on a supported host.
// Anything else is treated as a template name by callers.
func IsValidURL(s string) bool {
	m := validURL.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	for _, segment := range m[2:] {
		if segment == "." || segment == ".." {
			return false
		}
	}
	return true
}

// ExtractPath returns the owner and repository of url with any ".git" suffix
// removed from the repository.
func ExtractPath(rawURL string) (owner, repo string, ok bool) {
	u, err := parse(rawURL)
	if err != nil || u.Host == "" {
		return "", "", false
	}

	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return "", "", false
	}

	owner = segments[0]
	repo = strings.TrimSuffix(segments[len(segments)-1], ".git")
	if owner == "" || repo == "" {
		return "", "", false
	}
	return owner, repo, true
}

// ExtractHost returns the lowercase label preceding ".com" in url.
func ExtractHost(rawURL string) (string, bool) {
	m := hostURL.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// Parse resolves a valid repository URL into a Descriptor.
func Parse(rawURL string) (Descriptor, error) {
	if !IsValidURL(rawURL) {
		return Descriptor{}, failure.Input(failure.CodeInvalidURL, "invalid repository URL %q: expected https://github.com/<owner>/<repo> or https://gitlab.com/<owner>/<repo>", rawURL)
	}

	owner, repo, ok := ExtractPath(rawURL)
	if !ok {
		return Descriptor{}, failure.Input(failure.CodeInvalidURL, "repository URL %q has no owner/repo path", rawURL)
	}

	label, _ := ExtractHost(rawURL)
	return Descriptor{
		Host:  ParseHost(label),
		Owner: owner,
		Repo:  repo,
	}, nil
}

// CloneURL returns a URL git can clone, adding the https scheme when missing.
func CloneURL(rawURL string) string {
	if strings.HasPrefix(rawURL, "https://") || strings.HasPrefix(rawURL, "http://") {
		return rawURL
	}
	return "https://" + rawURL
}

func parse(rawURL string) (*url.URL, error) {
	return url.Parse(CloneURL(rawURL))
}
