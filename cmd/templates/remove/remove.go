package remove

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smartcontractkit/scaffold-cli/internal/runtime"
	"github.com/smartcontractkit/scaffold-cli/internal/scaffold"
	"github.com/smartcontractkit/scaffold-cli/internal/settings"
	"github.com/smartcontractkit/scaffold-cli/internal/ui"
	"github.com/smartcontractkit/scaffold-cli/internal/validation"
)

type Inputs struct {
	Names  []string `validate:"dive,template_name" cli:"names"`
	All    bool
	DryRun bool
	Force  bool
	Quiet  bool
}

type handler struct {
	log            *zerolog.Logger
	runtimeContext *runtime.Context
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove [name...]",
		Short: "Removes registered templates",
		Long: `Removes each named template, or every template with --all, from the registry
and deletes its downloaded copy. Asks for confirmation unless --force is given.`,
		Example: `  scaffold templates remove web api
  scaffold templates remove --all --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := &handler{log: runtimeContext.Logger, runtimeContext: runtimeContext}

			inputs := ResolveInputs(args, runtimeContext.Viper)
			if err := ValidateInputs(inputs); err != nil {
				return err
			}
			return h.Execute(inputs)
		},
	}

	settings.AddAllFlag(cmd, "Remove every registered template")
	settings.AddDryRunFlag(cmd)
	settings.AddForceFlag(cmd, "Remove without asking for confirmation")
	settings.AddQuietFlag(cmd)

	return cmd
}

func ResolveInputs(args []string, v *viper.Viper) Inputs {
	return Inputs{
		Names:  args,
		All:    v.GetBool(settings.Flags.All.Name),
		DryRun: v.GetBool(settings.Flags.DryRun.Name),
		Force:  v.GetBool(settings.Flags.Force.Name),
		Quiet:  v.GetBool(settings.Flags.Quiet.Name),
	}
}

func ValidateInputs(inputs Inputs) error {
	validator, err := validation.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to create validator: %w", err)
	}
	if err := validator.Struct(inputs); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func (h *handler) Execute(inputs Inputs) error {
	scaffolder := h.runtimeContext.Scaffolder(nil)

	targets, err := scaffolder.Resolve(inputs.Names, inputs.All)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		ui.Warning("No templates registered")
		return nil
	}

	found, total := summarize(targets)
	if found == 0 {
		for _, t := range targets {
			ui.Warning(fmt.Sprintf("Template %s not found", t.Requested))
		}
		return fmt.Errorf("none of the requested templates are registered")
	}

	if !inputs.Quiet || inputs.DryRun {
		for _, t := range targets {
			if t.Found {
				ui.Print(fmt.Sprintf("  %s (%s)", t.Name, ui.FormatBytes(t.Size)))
			}
		}
	}
	ui.Dim(fmt.Sprintf("%d template(s), %s on disk", found, ui.FormatBytes(total)))

	if inputs.DryRun {
		ui.Dim("Dry run: nothing removed")
		return nil
	}

	if !inputs.Force {
		proceed, err := h.confirm(found)
		if err != nil {
			return err
		}
		if !proceed {
			ui.Warning("Nothing removed")
			return nil
		}
	}

	removed, err := scaffolder.Remove(inputs.Names, inputs.All)
	if err != nil {
		return err
	}

	failed := 0
	var freed int64
	for _, r := range removed {
		if r.Err != nil {
			failed++
			ui.Error(fmt.Sprintf("Failed to remove %s: %v", r.Requested, r.Err))
			continue
		}
		freed += r.Size
		if !inputs.Quiet {
			ui.Success(fmt.Sprintf("Removed %s", r.Name))
		}
	}

	ui.Dim(fmt.Sprintf("%d removed, %d failed, %s freed", len(removed)-failed, failed, ui.FormatBytes(freed)))
	if failed > 0 {
		return fmt.Errorf("failed to remove %d of %d templates", failed, len(removed))
	}
	return nil
}

func (h *handler) confirm(count int) (bool, error) {
	decision := h.runtimeContext.Decision()
	if decision == nil {
		return false, fmt.Errorf("refusing to remove %d template(s) without confirmation, pass --force", count)
	}
	return decision.Confirm(fmt.Sprintf("Remove %d template(s)?", count))
}

func summarize(targets []scaffold.Target) (found int, size int64) {
	for _, t := range targets {
		if t.Found {
			found++
			size += t.Size
		}
	}
	return found, size
}
