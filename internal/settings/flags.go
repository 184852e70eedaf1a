package settings

import (
	"github.com/spf13/cobra"
)

type Flag struct {
	Name  string
	Short string
}

type flagNames struct {
	CliEnvFile     Flag
	Verbose        Flag
	CacheDir       Flag
	NonInteractive Flag
	Force          Flag
	DryRun         Flag
	Quiet          Flag
	All            Flag
	Mode           Flag
	Output         Flag
}

var Flags = flagNames{
	CliEnvFile:     Flag{"env", "e"},
	Verbose:        Flag{"verbose", "v"},
	CacheDir:       Flag{"cache-dir", ""},
	NonInteractive: Flag{"non-interactive", ""},
	Force:          Flag{"force", "f"},
	DryRun:         Flag{"dry-run", ""},
	Quiet:          Flag{"quiet", "q"},
	All:            Flag{"all", "a"},
	Mode:           Flag{"mode", "m"},
	Output:         Flag{"output", "o"},
}

func AddForceFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().BoolP(Flags.Force.Name, Flags.Force.Short, false, usage)
}

func AddDryRunFlag(cmd *cobra.Command) {
	cmd.Flags().Bool(Flags.DryRun.Name, false, "Show what would happen without changing anything")
}

func AddQuietFlag(cmd *cobra.Command) {
	cmd.Flags().BoolP(Flags.Quiet.Name, Flags.Quiet.Short, false, "Only print errors and the final summary")
}

func AddAllFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().BoolP(Flags.All.Name, Flags.All.Short, false, usage)
}

// AddModeFlag registers --mode/-m defaulting to the configured acquisition mode.
func AddModeFlag(cmd *cobra.Command) {
	cmd.Flags().StringP(Flags.Mode.Name, Flags.Mode.Short, "", "Acquisition mode: git (clone) or tar (download archive). Defaults to SCAFFOLD_MODE or git")
}
