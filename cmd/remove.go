package cmd

import (
	"github.com/spf13/cobra"

	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/operation"
)

var removeCmd = &cobra.Command{
	Use:     "remove <path>...",
	Aliases: []string{"rm"},
	Short:   "Remove workspaces",
	Long: `Remove one or more workspaces, running the pre_remove and post_remove
hooks around each removal.

Workspaces with uncommitted changes or unpushed commits are only removed
after confirmation, or with --force.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var (
	removeForce   bool
	removeDryRun  bool
	removeNoSetup bool
)

func init() {
	removeCmd.Flags().BoolVarP(&removeForce, "force", "f", false, "Remove even with uncommitted changes or unpushed commits")
	removeCmd.Flags().BoolVar(&removeDryRun, "dry-run", false, "Show what would be removed without removing it")
	removeCmd.Flags().BoolVar(&removeNoSetup, "no-setup", false, "Skip hooks")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	deps, err := application().Deps(ctx)
	if err != nil {
		return err
	}

	removed, err := operation.NewRemover(&deps).Remove(ctx, operation.RemoveOptions{
		Paths:   args,
		Force:   removeForce,
		DryRun:  removeDryRun,
		NoSetup: removeNoSetup,
	})
	logging.Debug("remove finished", "removed", len(removed))
	return err
}
