package cmd

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/offshoot-dev/offshoot/internal/config"
)

const repoStarterConfig = `# offshoot repository config.
# Paths are relative: sources to the repository root, targets to the new
# workspace.

options:
  # abort, skip, overwrite or backup
  on_conflict: abort

# worktree:
#   path_template: "../{{repository}}-{{branch}}"

# mkdir:
#   - path: tmp/cache
#     description: Build cache

# link:
#   - source: .env
#     description: Share local secrets
#   - source: node_modules
#     on_conflict: skip
#   - source: secrets/*.env
#     ignore_tracked: true

# copy:
#   - source: config/local.example.yaml
#     target: config/local.yaml

# Hooks run only after 'offshoot trust'.
# Templates: {{worktree_path}}, {{worktree_name}}, {{branch}}, {{repo_root}}
# hooks:
#   post_add:
#     - command: npm install
#       description: Install dependencies
#   pre_remove:
#     - command: make clean
`

const globalStarterConfig = `# offshoot global config. Only options and worktree may be set here;
# repository config wins where both set a value.

options:
  on_conflict: abort

# worktree:
#   path_template: "../worktrees/{{repository}}/{{branch}}"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Write a commented starter config to .offshoot/config.yaml in the
repository, or to the global config directory with --global.

An existing config file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initGlobal bool

func init() {
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "Write the global config instead")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	a := application()

	dir, content := a.GlobalConfigDir, globalStarterConfig
	if !initGlobal {
		repo, err := a.Repo(commandContext(cmd), "")
		if err != nil {
			return err
		}
		dir, content = config.RepoConfigDir(repo.Root), repoStarterConfig
	}

	path, err := writeStarter(dir, content)
	if err != nil {
		return err
	}
	a.Printer.Success("Created %s", path)
	return nil
}

// writeStarter creates the default config file in dir. It fails if any
// config file already exists there.
func writeStarter(dir, content string) (string, error) {
	if existing, ok := config.FindFile(dir); ok {
		return "", fmt.Errorf("config already exists: %s", existing)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := config.DefaultFilePath(dir)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if stderrors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("config already exists: %s", path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, f.Close()
}
