package list

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/smartcontractkit/scaffold-cli/internal/runtime"
	"github.com/smartcontractkit/scaffold-cli/internal/scaffold"
	"github.com/smartcontractkit/scaffold-cli/internal/settings"
	"github.com/smartcontractkit/scaffold-cli/internal/ui"
	"github.com/smartcontractkit/scaffold-cli/internal/validation"
)

const (
	OutputTable = "table"
	OutputYAML  = "yaml"
)

type Inputs struct {
	Output string `validate:"oneof=table yaml" cli:"--output"`
}

type handler struct {
	log            *zerolog.Logger
	runtimeContext *runtime.Context
	out            io.Writer
}

func New(runtimeContext *runtime.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists registered templates",
		Long:  `Lists every registered template with its URL, alias and whether it has been downloaded.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h := &handler{log: runtimeContext.Logger, runtimeContext: runtimeContext, out: cmd.OutOrStdout()}

			inputs := ResolveInputs(runtimeContext.Viper)
			if err := ValidateInputs(inputs); err != nil {
				return err
			}
			return h.Execute(inputs)
		},
	}

	cmd.Flags().StringP(settings.Flags.Output.Name, settings.Flags.Output.Short, OutputTable, "Output format: table or yaml")

	return cmd
}

func ResolveInputs(v *viper.Viper) Inputs {
	output := v.GetString(settings.Flags.Output.Name)
	if output == "" {
		output = OutputTable
	}
	return Inputs{Output: output}
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
	entries, err := h.runtimeContext.Scaffolder(nil).List()
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	if inputs.Output == OutputYAML {
		return WriteYAML(h.out, entries)
	}

	if len(entries) == 0 {
		ui.Line()
		ui.Warning("No templates registered")
		ui.Dim("Add one with: scaffold templates add <url>")
		ui.Line()
		return nil
	}

	fmt.Fprintln(h.out, FormatTable(entries))
	return nil
}

// FormatTable renders entries as a table sorted by name.
func FormatTable(entries []scaffold.Entry) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Alias", "URL", "Downloaded", "Size", "Description"})

	for _, e := range entries {
		downloaded := "no"
		size := "-"
		if e.Present {
			downloaded = "yes"
			size = ui.FormatBytes(e.Size)
		}
		t.AppendRow(table.Row{
			e.Name,
			e.Template.Alias,
			e.Template.URL,
			downloaded,
			size,
			e.Template.Description,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 4, Align: text.AlignCenter},
		{Number: 5, Align: text.AlignRight},
	})

	t.SortBy([]table.SortBy{
		{Name: "Name", Mode: table.Asc},
	})

	return t.Render()
}

type yamlEntry struct {
	URL         string `yaml:"url"`
	Alias       string `yaml:"alias,omitempty"`
	Description string `yaml:"description,omitempty"`
	Downloaded  bool   `yaml:"downloaded"`
	Path        string `yaml:"path"`
	Size        int64  `yaml:"size"`
}

// WriteYAML writes entries as a mapping keyed by template name.
func WriteYAML(w io.Writer, entries []scaffold.Entry) error {
	doc := make(map[string]yamlEntry, len(entries))
	for _, e := range entries {
		doc[e.Name] = yamlEntry{
			URL:         e.Template.URL,
			Alias:       e.Template.Alias,
			Description: e.Template.Description,
			Downloaded:  e.Present,
			Path:        e.Dir,
			Size:        e.Size,
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode templates: %w", err)
	}
	return enc.Close()
}
