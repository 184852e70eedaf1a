package newproject

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smartcontractkit/scaffold-cli/internal/runtime"
	"github.com/smartcontractkit/scaffold-cli/internal/scaffold"
	"github.com/smartcontractkit/scaffold-cli/internal/settings"
	"github.com/smartcontractkit/scaffold-cli/internal/transport"
	"github.com/smartcontractkit/scaffold-cli/internal/ui"
	"github.com/smartcontractkit/scaffold-cli/internal/validation"
)

const (
	destinationFlag    = "dir"
	branchFlag         = "branch"
	keepHistoryFlag    = "keep-history"
	renamePackagesFlag = "rename-packages"

	// pickBranch is the value --branch takes when given without one.
	pickBranch = "\x00pick"
)

type Inputs struct {
	Source         string `validate:"required" cli:"source"`
	Destination    string `cli:"--dir"`
	Branch         string `cli:"--branch"`
	Mode           string `validate:"transport_mode" cli:"--mode"`
	Force          bool
	KeepHistory    bool
	RenamePackages bool
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	newCmd := &cobra.Command{
		Use:   "new <source>",
		Short: "Create a project from a repository URL or a registered template",
		Long: `Creates a new project directory from a GitHub or GitLab repository, or from a
template registered with 'scaffold templates add'.

Repositories are cloned with git by default. With --mode tar the archive of the
selected commit is downloaded instead and kept in the local cache, so creating
the same commit again does not hit the network.`,
		Example: `  scaffold new https://github.com/owner/repo
  scaffold new https://gitlab.com/group/project -d my-app --mode tar
  scaffold new https://github.com/owner/repo --branch=dev
  scaffold new https://github.com/owner/repo -b           # pick a branch interactively
  scaffold new web-starter -d my-app --rename-packages`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := newHandler(runtimeContext)

			inputs, err := h.ResolveInputs(args, runtimeContext.Viper)
			if err != nil {
				return err
			}
			if err := h.ValidateInputs(inputs); err != nil {
				return err
			}
			return h.Execute(cmd.Context(), inputs)
		},
	}

	newCmd.Flags().StringP(destinationFlag, "d", "", "Destination directory (default: the repository or template name)")
	newCmd.Flags().StringP(branchFlag, "b", "", "Branch or tag to use; without a value, pick one from a list")
	newCmd.Flags().Lookup(branchFlag).NoOptDefVal = pickBranch
	newCmd.Flags().BoolP(keepHistoryFlag, "H", false, "Keep the git history (git mode only)")
	newCmd.Flags().Bool(renamePackagesFlag, false, "Rename every package.json to the destination name (templates only)")
	settings.AddModeFlag(newCmd)
	settings.AddForceFlag(newCmd, "Overwrite a non-empty destination without asking")

	return newCmd
}

type handler struct {
	log            *zerolog.Logger
	runtimeContext *runtime.Context
	validated      bool
}

func newHandler(ctx *runtime.Context) *handler {
	return &handler{
		log:            ctx.Logger,
		runtimeContext: ctx,
	}
}

// ResolveInputs reads flags through viper. A second positional argument is
// accepted as the branch name for "-b <name>", which pflag would otherwise
// treat as a bare -b.
func (h *handler) ResolveInputs(args []string, v *viper.Viper) (Inputs, error) {
	inputs := Inputs{
		Source:         args[0],
		Destination:    v.GetString(destinationFlag),
		Branch:         v.GetString(branchFlag),
		Mode:           v.GetString(settings.Flags.Mode.Name),
		Force:          v.GetBool(settings.Flags.Force.Name),
		KeepHistory:    v.GetBool(keepHistoryFlag),
		RenamePackages: v.GetBool(renamePackagesFlag),
	}

	if len(args) == 2 {
		if inputs.Branch != pickBranch {
			return Inputs{}, fmt.Errorf("unexpected argument %q", args[1])
		}
		inputs.Branch = args[1]
	}
	return inputs, nil
}

func (h *handler) ValidateInputs(inputs Inputs) error {
	validator, err := validation.NewValidator()
	if err != nil {
		return fmt.Errorf("failed to create validator: %w", err)
	}

	if err := validator.Struct(inputs); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	h.validated = true
	return nil
}

func (h *handler) Execute(ctx context.Context, inputs Inputs) error {
	if !h.validated {
		return fmt.Errorf("handler inputs not validated")
	}

	mode, err := h.runtimeContext.Mode(inputs.Mode)
	if err != nil {
		return err
	}

	req := scaffold.CreateRequest{
		Request: transport.Request{
			Destination: inputs.Destination,
			Mode:        mode,
			Force:       inputs.Force,
			KeepHistory: inputs.KeepHistory,
			Branch:      branchFor(inputs.Branch),
		},
		RenamePackages: inputs.RenamePackages,
	}

	observer := ui.NewSpinnerObserver(ui.GlobalSpinner(), false)
	scaffolder := h.runtimeContext.Scaffolder(observer)

	result, err := scaffolder.Create(ctx, inputs.Source, req)
	if err != nil {
		return err
	}
	if result.Skipped {
		ui.Warning(fmt.Sprintf("Left %s untouched", result.Destination))
		return nil
	}

	ui.Line()
	if result.Template != "" {
		ui.Success(fmt.Sprintf("Created %s from template %s", result.Destination, result.Template))
	} else {
		ui.Success(fmt.Sprintf("Created %s from %s (%s)", result.Destination, result.Source, result.Mode))
	}
	if result.Renamed > 0 {
		ui.Dim(fmt.Sprintf("Renamed %d package.json file(s) to %s", result.Renamed, filepath.Base(result.Destination)))
	}
	ui.Line()
	ui.Dim("Next steps:")
	ui.Command(fmt.Sprintf("  cd %s", result.Destination))
	ui.Line()
	return nil
}

func branchFor(flag string) transport.Branch {
	switch flag {
	case "":
		return transport.DefaultBranch()
	case pickBranch:
		return transport.InteractiveBranch()
	default:
		return transport.ExplicitBranch(flag)
	}
}
