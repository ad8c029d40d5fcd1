package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/offshoot-dev/offshoot/internal/app"
	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/output"
)

var (
	verbose    bool
	jsonOutput bool
	quiet      bool
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "offshoot",
	Short: "Git worktree and jj workspace manager with per-repo setup",
	Long: `offshoot creates and removes git worktrees and jj workspaces, and
prepares each new one from .offshoot/config.yaml in the repository:
  - Directories to create
  - Files to symlink or copy from the main checkout
  - Hooks to run before and after add and remove

Hooks only run after the repository has been trusted with 'offshoot trust'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, cmd.ErrOrStderr())
		if app.Default == nil {
			out, errw := cmd.OutOrStdout(), cmd.ErrOrStderr()
			printer := output.New(out, errw,
				output.WithQuiet(quiet),
				output.WithColor(output.ColorEnabled(out, noColor)),
			)
			app.SetDefault(app.New(app.WithPrinter(printer)))
		}
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print warnings and errors")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
