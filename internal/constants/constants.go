package constants

import (
	"time"
)

const (
	AppName   = "scaffold"
	EnvPrefix = "SCAFFOLD"

	// Layout below the application root
	CacheDirName     = "cache"
	TemplatesDirName = "templates"
	ManifestFileName = "template.toml"
	UpdateCheckFile  = "update-check.json"

	DefaultEnvFileName = ".env"
	DefaultMode        = "git"

	// Repository the CLI itself is released from
	RepositoryURL = "https://github.com/smartcontractkit/scaffold-cli"
	ReleasesURL   = RepositoryURL + "/releases"

	UpdateCheckInterval = 24 * time.Hour
)
