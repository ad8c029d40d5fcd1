package cmd

import (
	"github.com/spf13/cobra"
)

var branchesCmd = &cobra.Command{
	Use:   "branches",
	Short: "List branches or jj bookmarks",
	Args:  cobra.NoArgs,
	RunE:  runBranches,
}

var branchesRemote bool

func init() {
	branchesCmd.Flags().BoolVarP(&branchesRemote, "remote", "r", false, "List remote branches")
	rootCmd.AddCommand(branchesCmd)
}

func runBranches(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a := application()

	provider, err := a.Workspace(ctx, "")
	if err != nil {
		return err
	}

	list := provider.Branches
	if branchesRemote {
		list = provider.RemoteBranches
	}
	branches, err := list(ctx)
	if err != nil {
		return err
	}

	for _, b := range branches {
		a.Printer.Raw("%s", b)
	}
	return nil
}
