package update

import (
	"context"
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
	Quiet  bool
	Mode   string `validate:"transport_mode" cli:"--mode"`
}

type handler struct {
	log            *zerolog.Logger
	runtimeContext *runtime.Context
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update [name...]",
		Short: "Downloads registered templates afresh",
		Long: `Downloads the default branch of each named template, or of every template with
--all, replacing the local copy. A failed download keeps the previous copy.`,
		Example: `  scaffold templates update web
  scaffold templates update --all --mode tar`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := &handler{log: runtimeContext.Logger, runtimeContext: runtimeContext}

			inputs := ResolveInputs(args, runtimeContext.Viper)
			if err := ValidateInputs(inputs); err != nil {
				return err
			}
			return h.Execute(cmd.Context(), inputs)
		},
	}

	settings.AddAllFlag(cmd, "Update every registered template")
	settings.AddDryRunFlag(cmd)
	settings.AddQuietFlag(cmd)
	settings.AddModeFlag(cmd)

	return cmd
}

func ResolveInputs(args []string, v *viper.Viper) Inputs {
	return Inputs{
		Names:  args,
		All:    v.GetBool(settings.Flags.All.Name),
		DryRun: v.GetBool(settings.Flags.DryRun.Name),
		Quiet:  v.GetBool(settings.Flags.Quiet.Name),
		Mode:   v.GetString(settings.Flags.Mode.Name),
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

func (h *handler) Execute(ctx context.Context, inputs Inputs) error {
	mode, err := h.runtimeContext.Mode(inputs.Mode)
	if err != nil {
		return err
	}

	observer := ui.NewSpinnerObserver(ui.GlobalSpinner(), true)
	scaffolder := h.runtimeContext.Scaffolder(observer)

	if inputs.DryRun {
		targets, err := scaffolder.Resolve(inputs.Names, inputs.All)
		if err != nil {
			return err
		}
		return h.preview(targets)
	}

	results, err := scaffolder.Update(ctx, inputs.Names, inputs.All, mode)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		ui.Warning("No templates registered")
		return nil
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			ui.Error(fmt.Sprintf("Failed to update %s: %v", r.Requested, r.Err))
			continue
		}
		if !inputs.Quiet {
			ui.Success(fmt.Sprintf("Updated %s (%s)", describe(r.Target), ui.FormatBytes(r.Size)))
		}
	}

	summary := fmt.Sprintf("%d succeeded, %d failed", len(results)-failed, failed)
	if failed > 0 {
		ui.Warning(summary)
		return fmt.Errorf("failed to update %d of %d templates", failed, len(results))
	}
	ui.Dim(summary)
	return nil
}

func (h *handler) preview(targets []scaffold.Target) error {
	missing := 0
	for _, t := range targets {
		if !t.Found {
			missing++
			ui.Warning(fmt.Sprintf("Template %s not found", t.Requested))
			continue
		}
		ui.Print(fmt.Sprintf("Would update %s from %s", describe(t), t.Template.URL))
	}
	ui.Dim(fmt.Sprintf("Dry run: %d to update, %d not found", len(targets)-missing, missing))
	return nil
}

func describe(t scaffold.Target) string {
	if t.ViaAlias() {
		return fmt.Sprintf("%s (via alias %s)", t.Name, t.Requested)
	}
	return t.Name
}
