package clearcache

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smartcontractkit/scaffold-cli/internal/archivecache"
	"github.com/smartcontractkit/scaffold-cli/internal/runtime"
	"github.com/smartcontractkit/scaffold-cli/internal/settings"
	"github.com/smartcontractkit/scaffold-cli/internal/ui"
)

type Inputs struct {
	Force   bool
	DryRun  bool
	Verbose bool
}

type handler struct {
	log            *zerolog.Logger
	runtimeContext *runtime.Context
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Empties the archive cache",
		Long: `Deletes every archive downloaded by tar mode. Registered templates and their
downloaded copies are not touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := &handler{log: runtimeContext.Logger, runtimeContext: runtimeContext}
			return h.Execute(ResolveInputs(runtimeContext.Viper))
		},
	}

	settings.AddForceFlag(cmd, "Clear without asking for confirmation")
	settings.AddDryRunFlag(cmd)

	return cmd
}

func ResolveInputs(v *viper.Viper) Inputs {
	return Inputs{
		Force:   v.GetBool(settings.Flags.Force.Name),
		DryRun:  v.GetBool(settings.Flags.DryRun.Name),
		Verbose: v.GetBool(settings.Flags.Verbose.Name),
	}
}

func (h *handler) Execute(inputs Inputs) error {
	cache := h.runtimeContext.Cache()

	files, size, err := cache.Stats()
	if err != nil {
		return err
	}
	if files == 0 {
		ui.Dim(fmt.Sprintf("Cache %s is already empty", cache.Root()))
		return nil
	}

	if inputs.Verbose {
		if err := h.listEntries(cache); err != nil {
			return err
		}
	}
	ui.Print(fmt.Sprintf("%d file(s), %s in %s", files, ui.FormatBytes(size), cache.Root()))

	if inputs.DryRun {
		ui.Dim("Dry run: nothing removed")
		return nil
	}

	if !inputs.Force {
		decision := h.runtimeContext.Decision()
		if decision == nil {
			return fmt.Errorf("refusing to clear the cache without confirmation, pass --force")
		}
		proceed, err := decision.Confirm("Clear the archive cache?")
		if err != nil {
			return err
		}
		if !proceed {
			ui.Warning("Nothing removed")
			return nil
		}
	}

	if err := cache.Clear(); err != nil {
		return err
	}
	ui.Success(fmt.Sprintf("Removed %d file(s), freed %s", files, ui.FormatBytes(size)))
	return nil
}

func (h *handler) listEntries(cache *archivecache.Cache) error {
	entries, err := cache.Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		rel, err := filepath.Rel(cache.Root(), e.Path)
		if err != nil {
			rel = e.Path
		}
		ui.Dim(fmt.Sprintf("  %s (%s)", filepath.ToSlash(rel), ui.FormatBytes(e.Size)))
	}
	return nil
}
