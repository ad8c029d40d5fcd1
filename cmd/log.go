package cmd

import (
	"github.com/spf13/cobra"

	"github.com/offshoot-dev/offshoot/internal/workspace"
)

var logCmd = &cobra.Command{
	Use:   "log [rev]",
	Short: "Show the oneline log between a revision and the workspace head",
	Long: `Show commits between rev and the current workspace head, one per line.

rev defaults to HEAD for git and trunk() for jj.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLog,
}

var logLimit int

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 10, "Maximum number of commits")
	rootCmd.AddCommand(logCmd)
}

func defaultRev(kind workspace.Kind) string {
	if kind.IsJj() {
		return "trunk()"
	}
	return "HEAD"
}

func runLog(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a := application()

	provider, err := a.Workspace(ctx, "")
	if err != nil {
		return err
	}

	rev := optionalPath(args)
	if rev == "" {
		rev = defaultRev(provider.Kind())
	}

	lines, err := provider.LogOneline(ctx, rev, logLimit)
	if err != nil {
		return err
	}
	for _, line := range lines {
		a.Printer.Raw("%s", line)
	}
	return nil
}
