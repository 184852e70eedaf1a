// Package update tells the user when a newer release is published.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/smartcontractkit/scaffold-cli/internal/constants"
	"github.com/smartcontractkit/scaffold-cli/internal/remote"
	"github.com/smartcontractkit/scaffold-cli/internal/transport"
)

const ForceCheckEnvVar = "SCAFFOLD_FORCE_UPDATE_CHECK"

// cacheState stores the data for our update check cache.
type cacheState struct {
	LatestVersion string    `json:"latest_version"`
	LastCheck     time.Time `json:"last_check"`
}

// Checker compares the running version with the highest release tag of the
// CLI repository.
type Checker struct {
	logger    *zerolog.Logger
	lister    transport.RefLister
	cachePath string
	repoURL   string
	now       func() time.Time
}

func NewChecker(logger *zerolog.Logger, lister transport.RefLister, cachePath string) *Checker {
	return &Checker{
		logger:    logger,
		lister:    lister,
		cachePath: cachePath,
		repoURL:   constants.RepositoryURL,
		now:       time.Now,
	}
}

// Latest returns the newest known release, consulting the remote at most once
// per constants.UpdateCheckInterval unless force is set.
func (c *Checker) Latest(ctx context.Context, force bool) (*semver.Version, error) {
	state := c.loadCache()

	now := c.now()
	if force || state.LatestVersion == "" || now.Sub(state.LastCheck) > constants.UpdateCheckInterval {
		c.logger.Debug().Msg("Update cache expired or empty, listing release tags")
		latest, err := c.fetchLatest(ctx)
		if err != nil {
			if state.LatestVersion == "" {
				return nil, err
			}
			c.logger.Debug().Msgf("Failed to fetch latest version, using cached value: %v", err)
		} else {
			state = cacheState{LatestVersion: latest.Original(), LastCheck: now}
			if err := c.saveCache(state); err != nil {
				c.logger.Debug().Msgf("Failed to save update cache: %v", err)
			}
		}
	} else {
		c.logger.Debug().Msgf("Using cached latest version: %s", state.LatestVersion)
	}

	latest, err := semver.NewVersion(state.LatestVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to parse latest version %q: %w", state.LatestVersion, err)
	}
	return latest, nil
}

func (c *Checker) fetchLatest(ctx context.Context) (*semver.Version, error) {
	refs, err := c.lister.List(ctx, c.repoURL)
	if err != nil {
		return nil, err
	}

	var latest *semver.Version
	for _, ref := range remote.Tags(refs) {
		v, err := semver.NewVersion(ref.ShortName())
		if err != nil || v.Prerelease() != "" {
			continue
		}
		if latest == nil || v.GreaterThan(latest) {
			latest = v
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("no release tags found at %s", c.repoURL)
	}
	c.logger.Debug().Msgf("Latest release tag found: %s", latest.Original())
	return latest, nil
}

// Check prints a notice to out when a release newer than currentVersion
// exists. Every failure is logged at debug level and otherwise ignored.
func (c *Checker) Check(ctx context.Context, currentVersion string, out io.Writer) {
	force := os.Getenv(ForceCheckEnvVar) == "1"
	if currentVersion == "development" && !force {
		c.logger.Debug().Msgf("Current version is 'development', skipping update check. (Set %s=1 to override)", ForceCheckEnvVar)
		return
	}

	current, err := ParseVersion(currentVersion)
	if err != nil {
		c.logger.Debug().Msgf("Failed to parse current version %q: %v", currentVersion, err)
		return
	}

	latest, err := c.Latest(ctx, force)
	if err != nil {
		c.logger.Debug().Msgf("Update check failed: %v", err)
		return
	}

	if !latest.GreaterThan(current) {
		c.logger.Debug().Msgf("Current version %s is up-to-date.", current)
		return
	}
	fmt.Fprintf(out,
		"\nUpdate available! You're running %s, but %s is the latest.\nVisit %s to upgrade.\n\n",
		current, latest, constants.ReleasesURL,
	)
}

// ParseVersion accepts the build stamped forms "v1.2.3" and "version v1.2.3".
func ParseVersion(s string) (*semver.Version, error) {
	cleaned := strings.TrimSpace(strings.Replace(s, "version", "", 1))
	return semver.NewVersion(cleaned)
}

func (c *Checker) loadCache() cacheState {
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Debug().Msgf("Failed to read update cache: %v", err)
		}
		return cacheState{}
	}

	var state cacheState
	if err := json.Unmarshal(data, &state); err != nil {
		c.logger.Debug().Msgf("Update cache corrupted, ignoring: %v", err)
		return cacheState{}
	}
	return state
}

func (c *Checker) saveCache(state cacheState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.cachePath), 0750); err != nil {
		return err
	}
	return os.WriteFile(c.cachePath, data, 0640)
}
