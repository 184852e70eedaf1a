package add

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smartcontractkit/scaffold-cli/internal/manifest"
	"github.com/smartcontractkit/scaffold-cli/internal/runtime"
	"github.com/smartcontractkit/scaffold-cli/internal/scaffold"
	"github.com/smartcontractkit/scaffold-cli/internal/settings"
	"github.com/smartcontractkit/scaffold-cli/internal/ui"
	"github.com/smartcontractkit/scaffold-cli/internal/validation"
)

const (
	nameFlag        = "name"
	descriptionFlag = "description"
	aliasFlag       = "alias"
	updateFlag      = "update"
)

type Inputs struct {
	URL         string `validate:"required,repo_url" cli:"url"`
	Name        string `validate:"omitempty,template_name" cli:"--name"`
	Description string
	Alias       string `validate:"omitempty,template_name" cli:"--alias"`
	Update      bool
	Force       bool
	Mode        string `validate:"transport_mode" cli:"--mode"`
}

type handler struct {
	log            *zerolog.Logger
	runtimeContext *runtime.Context
	validated      bool
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Registers a repository as a named template",
		Long: `Registers a GitHub or GitLab repository in the template registry. The name
defaults to <host>-<owner>-<repo>. Nothing is downloaded unless --update is given.`,
		Args: cobra.ExactArgs(1),
		Example: `  scaffold templates add https://github.com/owner/starter
  scaffold templates add https://gitlab.com/group/web --name web --alias w --update`,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := &handler{log: runtimeContext.Logger, runtimeContext: runtimeContext}

			inputs := h.ResolveInputs(args, runtimeContext.Viper)
			if err := h.ValidateInputs(inputs); err != nil {
				return err
			}
			return h.Execute(cmd.Context(), inputs)
		},
	}

	cmd.Flags().String(nameFlag, "", "Template name (default: <host>-<owner>-<repo>)")
	cmd.Flags().String(descriptionFlag, "", "Free-form description shown by 'templates list'")
	cmd.Flags().String(aliasFlag, "", "Short alias accepted wherever the name is")
	cmd.Flags().Bool(updateFlag, false, "Download the template right away")
	settings.AddForceFlag(cmd, "Replace an existing template with the same name")
	settings.AddModeFlag(cmd)

	return cmd
}

func (h *handler) ResolveInputs(args []string, v *viper.Viper) Inputs {
	return Inputs{
		URL:         args[0],
		Name:        v.GetString(nameFlag),
		Description: v.GetString(descriptionFlag),
		Alias:       v.GetString(aliasFlag),
		Update:      v.GetBool(updateFlag),
		Force:       v.GetBool(settings.Flags.Force.Name),
		Mode:        v.GetString(settings.Flags.Mode.Name),
	}
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

	name := inputs.Name
	if name == "" && h.runtimeContext.Interactive() {
		if name, err = h.promptName(inputs.URL); err != nil {
			return err
		}
	}

	template := manifest.Template{
		URL:         inputs.URL,
		Description: inputs.Description,
		Alias:       inputs.Alias,
	}
	opts := scaffold.RegisterOptions{
		Materialize: inputs.Update,
		Force:       inputs.Force,
		Mode:        mode,
	}

	observer := ui.NewSpinnerObserver(ui.GlobalSpinner(), true)
	name, err = h.runtimeContext.Scaffolder(observer).Register(ctx, name, template, opts)
	if err != nil {
		return err
	}

	ui.Line()
	if inputs.Update {
		ui.Success(fmt.Sprintf("Added and downloaded %s", name))
	} else {
		ui.Success(fmt.Sprintf("Added %s", name))
		ui.Dim("Download it with:")
		ui.Command(fmt.Sprintf("  scaffold templates update %s", name))
	}
	ui.Line()
	return nil
}

// promptName asks for a template name, offering the derived default.
func (h *handler) promptName(url string) (string, error) {
	fallback, err := scaffold.DefaultName(url)
	if err != nil {
		return "", err
	}

	name, err := ui.Input("Template name",
		ui.WithPlaceholder(fallback),
		ui.WithInputDescription("Leave empty to use "+fallback),
	)
	if err != nil {
		return "", fmt.Errorf("failed to read template name: %w", err)
	}
	if name == "" {
		return fallback, nil
	}
	if err := manifest.ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
