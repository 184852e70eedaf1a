package runtime

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/smartcontractkit/scaffold-cli/internal/archive"
	"github.com/smartcontractkit/scaffold-cli/internal/archivecache"
	"github.com/smartcontractkit/scaffold-cli/internal/manifest"
	"github.com/smartcontractkit/scaffold-cli/internal/remote"
	"github.com/smartcontractkit/scaffold-cli/internal/scaffold"
	"github.com/smartcontractkit/scaffold-cli/internal/settings"
	"github.com/smartcontractkit/scaffold-cli/internal/transport"
	"github.com/smartcontractkit/scaffold-cli/internal/ui"
)

// Context is handed to every command.
type Context struct {
	Logger   *zerolog.Logger
	Viper    *viper.Viper
	Settings *settings.Settings
	Runner   remote.Runner
}

func NewContext(logger *zerolog.Logger, viper *viper.Viper) *Context {
	return &Context{
		Logger: logger,
		Viper:  viper,
		Runner: remote.NewExecRunner(),
	}
}

func (ctx *Context) AttachSettings() error {
	var err error

	ctx.Settings, err = settings.New(ctx.Logger, ctx.Viper)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	return nil
}

// Interactive reports whether prompts may be shown.
func (ctx *Context) Interactive() bool {
	if ctx.Settings != nil && ctx.Settings.NonInteractive {
		return false
	}
	return ui.IsInteractive()
}

// Decision returns the prompt backed Decision, or nil when prompts are disabled.
func (ctx *Context) Decision() transport.Decision {
	if !ctx.Interactive() {
		return nil
	}
	return ui.NewPromptDecision()
}

func (ctx *Context) Cache(opts ...archivecache.Option) *archivecache.Cache {
	return archivecache.New(ctx.Logger, ctx.Settings.Paths.Cache, opts...)
}

func (ctx *Context) ManifestStore() *manifest.FileStore {
	return manifest.NewFileStore(ctx.Settings.Paths.Manifest, ctx.Logger)
}

// Scaffolder wires the orchestrator against the real git binary, cache and
// manifest. observer may be nil.
func (ctx *Context) Scaffolder(observer transport.Observer) *scaffold.Scaffolder {
	copier := archivecache.Copier(ui.DownloadWithProgress)
	if so, ok := observer.(*ui.SpinnerObserver); ok {
		copier = so.Download
	}

	return scaffold.New(ctx.Logger, scaffold.Deps{
		Lister:       remote.NewLister(ctx.Logger, ctx.Runner),
		Runner:       ctx.Runner,
		Cache:        ctx.Cache(archivecache.WithCopier(copier)),
		Extractor:    archive.NewExtractor(ctx.Logger),
		Store:        ctx.ManifestStore(),
		TemplatesDir: ctx.Settings.Paths.Templates,
		Decision:     ctx.Decision(),
		Observer:     observer,
	})
}

// Mode resolves the acquisition mode from --mode, SCAFFOLD_MODE or the default.
func (ctx *Context) Mode(flagValue string) (transport.Mode, error) {
	if flagValue == "" && ctx.Settings != nil {
		flagValue = ctx.Settings.Mode
	}
	if flagValue == "" {
		return transport.ModeGit, nil
	}
	return transport.ParseMode(flagValue)
}
