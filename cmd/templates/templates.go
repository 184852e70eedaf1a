package templates

import (
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/scaffold-cli/cmd/templates/add"
	"github.com/smartcontractkit/scaffold-cli/cmd/templates/list"
	"github.com/smartcontractkit/scaffold-cli/cmd/templates/remove"
	"github.com/smartcontractkit/scaffold-cli/cmd/templates/update"
	"github.com/smartcontractkit/scaffold-cli/internal/runtime"
)

func New(runtimeContext *runtime.Context) *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Manages registered templates",
		Long: `Manages the local template registry that scaffold new can create projects from.

Templates are registered by name in template.toml under the application
directory and downloaded into templates/<name>. Use 'scaffold templates update'
to refresh the downloaded copies.`,
	}

	templatesCmd.AddCommand(list.New(runtimeContext))
	templatesCmd.AddCommand(add.New(runtimeContext))
	templatesCmd.AddCommand(remove.New(runtimeContext))
	templatesCmd.AddCommand(update.New(runtimeContext))

	return templatesCmd
}
