package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/smartcontractkit/scaffold-cli/cmd/clearcache"
	"github.com/smartcontractkit/scaffold-cli/cmd/newproject"
	"github.com/smartcontractkit/scaffold-cli/cmd/templates"
	"github.com/smartcontractkit/scaffold-cli/cmd/version"
	"github.com/smartcontractkit/scaffold-cli/internal/constants"
	"github.com/smartcontractkit/scaffold-cli/internal/logger"
	"github.com/smartcontractkit/scaffold-cli/internal/remote"
	scaffoldruntime "github.com/smartcontractkit/scaffold-cli/internal/runtime"
	"github.com/smartcontractkit/scaffold-cli/internal/settings"
	"github.com/smartcontractkit/scaffold-cli/internal/ui"
	"github.com/smartcontractkit/scaffold-cli/internal/update"
)

// updateCheckTimeout bounds the release lookup done after every command.
const updateCheckTimeout = 3 * time.Second

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCommand()

func Execute() {
	err := RootCmd.Execute()
	ui.GlobalSpinner().StopAll()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootLogger := createLogger()
	rootViper := createViper()
	runtimeContext := scaffoldruntime.NewContext(rootLogger, rootViper)

	// By defining a Run func, we force PersistentPreRunE to execute
	// even when 'scaffold' or 'scaffold templates' is called with no subcommand
	helpRunE := func(cmd *cobra.Command, args []string) error {
		err := cmd.Help()
		if err != nil {
			return fmt.Errorf("fail to show help: %w", err)
		}
		return nil
	}

	rootCmd := &cobra.Command{
		Use:   constants.AppName,
		Short: "Scaffold projects from git repositories",
		Long: `A command line tool that creates new projects from GitHub and GitLab repositories,
either by cloning them with git or by downloading an archive, and keeps a local
registry of named templates for repeated use.`,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		RunE:              helpRunE,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log := runtimeContext.Logger
			v := runtimeContext.Viper

			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("failed to bind flags: %w", err)
			}

			if verbose := v.GetBool(settings.Flags.Verbose.Name); verbose {
				runtimeContext.Logger = logger.SetLevel(log, "debug")
			}

			if !isLoadSettings(cmd) {
				return nil
			}
			if err := runtimeContext.AttachSettings(); err != nil {
				return err
			}
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if !isUpdateCheck(cmd, runtimeContext) {
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), updateCheckTimeout)
			defer cancel()

			lister := remote.NewLister(runtimeContext.Logger, runtimeContext.Runner)
			checker := update.NewChecker(runtimeContext.Logger, lister, runtimeContext.Settings.Paths.UpdateCheck)
			checker.Check(ctx, version.Version, os.Stderr)
		},
	}

	cobra.AddTemplateFunc("wrappedFlagUsages", func(fs *pflag.FlagSet) string {
		// 100 = wrap width
		return strings.TrimRight(fs.FlagUsagesWrapped(100), "\n")
	})

	cobra.AddTemplateFunc("hasUngrouped", func(c *cobra.Command) bool {
		for _, cmd := range c.Commands() {
			if cmd.IsAvailableCommand() && !cmd.Hidden && cmd.GroupID == "" {
				return true
			}
		}
		return false
	})

	rootCmd.SetHelpTemplate(`
{{- with (or .Long .Short)}}{{.}}{{end}}

Usage:
{{- if .Runnable}}
  {{.UseLine}}
{{- else if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]
{{- end}}

{{- if .HasAvailableSubCommands}}

Available Commands:
  {{- $groupsUsed := false -}}
  {{- $firstGroup := true -}}

  {{- range $grp := .Groups}}
    {{- $has := false -}}
    {{- range $.Commands}}
      {{- if (and (not .Hidden) (.IsAvailableCommand) (eq .GroupID $grp.ID))}}
        {{- $has = true}}
      {{- end}}
    {{- end}}

    {{- if $has}}
      {{- $groupsUsed = true -}}
      {{- if $firstGroup}}{{- $firstGroup = false -}}{{else}}

{{- end}}

  {{printf "%s:" $grp.Title}}
      {{- range $.Commands}}
        {{- if (and (not .Hidden) (.IsAvailableCommand) (eq .GroupID $grp.ID))}}
    {{rpad .Name .NamePadding}}  {{.Short}}
        {{- end}}
      {{- end}}
    {{- end}}
  {{- end}}

  {{- if $groupsUsed }}
    {{- if hasUngrouped .}}

  Other:
      {{- range .Commands}}
        {{- if (and (not .Hidden) (.IsAvailableCommand) (eq .GroupID ""))}}
    {{rpad .Name .NamePadding}}  {{.Short}}
        {{- end}}
      {{- end}}
    {{- end}}
  {{- else }}
    {{- range .Commands}}
      {{- if (and (not .Hidden) (.IsAvailableCommand))}}
    {{rpad .Name .NamePadding}}  {{.Short}}
      {{- end}}
    {{- end}}
  {{- end }}
{{- end }}

{{- if .HasExample}}

Examples:
{{.Example}}
{{- end }}

{{- $local := (.LocalFlags.FlagUsagesWrapped 100 | trimTrailingWhitespaces) -}}
{{- if $local }}

Flags:
{{$local}}
{{- end }}

{{- $inherited := (.InheritedFlags.FlagUsagesWrapped 100 | trimTrailingWhitespaces) -}}
{{- if $inherited }}

Global Flags:
{{$inherited}}
{{- end }}

{{- if .HasAvailableSubCommands }}

Use "{{.CommandPath}} [command] --help" for more information about a command.
{{- end }}

Tip: New here? Run:
  $ scaffold new https://github.com/<owner>/<repo>
    to create a project from any GitHub or GitLab repository, or:
  $ scaffold templates add https://github.com/<owner>/<repo> --update
    to keep a template around for offline use.
`)

	// Definition of global flags:
	// env file flag is present for every subcommand
	rootCmd.PersistentFlags().StringP(
		settings.Flags.CliEnvFile.Name,
		settings.Flags.CliEnvFile.Short,
		constants.DefaultEnvFileName,
		fmt.Sprintf("Path to %s file with SCAFFOLD_* settings", constants.DefaultEnvFileName),
	)

	// verbose flag is present in every subcommand
	rootCmd.PersistentFlags().BoolP(
		settings.Flags.Verbose.Name,
		settings.Flags.Verbose.Short,
		false,
		"Run command in VERBOSE mode",
	)

	rootCmd.PersistentFlags().String(
		settings.Flags.CacheDir.Name,
		"",
		"Application directory holding the archive cache, the template registry and downloaded templates",
	)

	rootCmd.PersistentFlags().Bool(
		settings.Flags.NonInteractive.Name,
		false,
		"Never prompt; fail where a question would be asked",
	)
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	newCmd := newproject.New(runtimeContext)
	templatesCmd := templates.New(runtimeContext)
	clearCmd := clearcache.New(runtimeContext)
	versionCmd := version.New(runtimeContext)

	templatesCmd.RunE = helpRunE

	// Define groups (order controls display order)
	rootCmd.AddGroup(&cobra.Group{ID: "getting-started", Title: "Getting Started"})
	rootCmd.AddGroup(&cobra.Group{ID: "templates", Title: "Templates"})
	rootCmd.AddGroup(&cobra.Group{ID: "maintenance", Title: "Maintenance"})

	newCmd.GroupID = "getting-started"
	templatesCmd.GroupID = "templates"
	clearCmd.GroupID = "maintenance"

	rootCmd.AddCommand(
		newCmd,
		templatesCmd,
		clearCmd,
		versionCmd,
	)

	return rootCmd
}

// Commands that never touch the application directory.
var noSettingsCommands = map[string]struct{}{
	"bash":       {},
	"fish":       {},
	"powershell": {},
	"zsh":        {},
	"completion": {},
	"help":       {},
}

func isLoadSettings(cmd *cobra.Command) bool {
	_, exists := noSettingsCommands[cmd.Name()]
	return !exists
}

func isUpdateCheck(cmd *cobra.Command, runtimeContext *scaffoldruntime.Context) bool {
	if !isLoadSettings(cmd) || runtimeContext.Settings == nil {
		return false
	}
	return !runtimeContext.Settings.NoUpdateCheck
}

func createLogger() *zerolog.Logger {
	return logger.NewConsoleLogger()
}

func createViper() *viper.Viper {
	return viper.New() //nolint:forbidigo
}
