package cmd

import (
	"github.com/spf13/cobra"

	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/operation"
	"github.com/offshoot-dev/offshoot/internal/workspace"
)

var addCmd = &cobra.Command{
	Use:   "add [path] [commitish]",
	Short: "Create a workspace and set it up from config",
	Long: `Create a git worktree or jj workspace at path, then apply the
repository config: create directories, link and copy files, and run the
pre_add and post_add hooks.

When path is omitted, worktree.path_template from the config is expanded
with {{branch}} and {{repository}}.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runAdd,
}

var (
	addWorkspace  workspace.AddOptions
	addOnConflict config.ConflictMode
	addDryRun     bool
	addNoSetup    bool
)

func init() {
	f := addCmd.Flags()
	f.StringVarP(&addWorkspace.NewBranch, "new-branch", "b", "", "Create a new branch")
	f.StringVarP(&addWorkspace.ForceNewBranch, "force-new-branch", "B", "", "Create or reset a branch")
	f.BoolVar(&addWorkspace.Force, "force", false, "Create even if the branch is checked out elsewhere")
	f.BoolVar(&addWorkspace.Detach, "detach", false, "Detach HEAD in the new workspace")
	f.BoolVar(&addWorkspace.NoCheckout, "no-checkout", false, "Do not check out files")
	f.BoolVar(&addWorkspace.Lock, "lock", false, "Lock the new worktree")
	f.BoolVar(&addWorkspace.Track, "track", false, "Set up upstream tracking")
	f.BoolVar(&addWorkspace.NoTrack, "no-track", false, "Do not set up upstream tracking")
	f.BoolVar(&addWorkspace.GuessRemote, "guess-remote", false, "Base the new branch on a matching remote branch")
	f.BoolVar(&addWorkspace.NoGuessRemote, "no-guess-remote", false, "Do not guess a remote branch")
	f.Var(&addOnConflict, "on-conflict", "Conflict mode for every link and copy: abort, skip, overwrite or backup")
	f.BoolVar(&addDryRun, "dry-run", false, "Show what would be done without doing it")
	f.BoolVar(&addNoSetup, "no-setup", false, "Create the workspace only; skip file setup and hooks")

	addCmd.MarkFlagsMutuallyExclusive("new-branch", "force-new-branch", "detach")
	addCmd.MarkFlagsMutuallyExclusive("track", "no-track")
	addCmd.MarkFlagsMutuallyExclusive("guess-remote", "no-guess-remote")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	a := application()

	deps, err := a.Deps(ctx)
	if err != nil {
		return err
	}

	opts := operation.AddOptions{
		Path:      optionalPath(args),
		Workspace: addWorkspace,
		DryRun:    addDryRun,
		NoSetup:   addNoSetup,
	}
	if len(args) > 1 {
		opts.Workspace.Commitish = args[1]
	}
	opts.Workspace.Quiet = quiet
	if cmd.Flags().Changed("on-conflict") {
		mode := addOnConflict
		opts.OnConflict = &mode
	}

	logging.Debug("adding workspace", "path", opts.Path, "branch", opts.Workspace.BranchName())

	result, err := operation.NewAdder(&deps).Add(ctx, opts)
	if err != nil {
		return err
	}
	logging.Debug("workspace added", "path", result.Path, "post_add_failed", result.PostAddFailed)
	return nil
}
