package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/scaffold-cli/internal/constants"
	"github.com/smartcontractkit/scaffold-cli/internal/runtime"
)

// Default placeholder value
var Version = "development"

func New(runtimeContext *runtime.Context) *cobra.Command {
	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the scaffold version",
		Long:  "This command prints the current version of the scaffold CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runtimeContext.Logger.Debug().Msgf("Printing version %s", Version)
			fmt.Fprintln(cmd.OutOrStdout(), constants.AppName, Version)
			return nil
		},
	}

	return versionCmd
}
