package cmd

import (
	"github.com/spf13/cobra"

	"github.com/offshoot-dev/offshoot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect offshoot configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the repository and global config",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file locations",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	a := application()
	p := a.Printer

	repo, err := a.Repo(commandContext(cmd), "")
	if err != nil {
		return err
	}

	global, err := config.LoadGlobal(a.GlobalConfigDir)
	if err != nil {
		return err
	}
	if path, ok := config.FindFile(a.GlobalConfigDir); ok && global != nil {
		p.Success("Global config is valid: %s", path)
	}

	path, ok := config.FindFile(config.RepoConfigDir(repo.Root))
	if !ok {
		p.Info("No repository config in %s", config.RepoConfigDir(repo.Root))
		return nil
	}
	cfg, err := config.Load(repo.Root)
	if err != nil {
		return err
	}

	p.Success("Repository config is valid: %s", path)
	p.Println("  mkdir: %d, link: %d, copy: %d, hooks: %d", len(cfg.Mkdir), len(cfg.Link), len(cfg.Copy), cfg.Hooks.Count())
	if cfg.Options.OnConflict != nil {
		p.Println("  on_conflict: %s", cfg.Options.OnConflict)
	}
	if cfg.Worktree.PathTemplate != "" {
		p.Println("  path_template: %s", cfg.Worktree.PathTemplate)
	}
	return nil
}

// runConfigPath prints existing files, or the preferred location when none
// exists yet.
func runConfigPath(cmd *cobra.Command, args []string) error {
	a := application()
	p := a.Printer

	global := configFileOrDefault(a.GlobalConfigDir)
	repo, err := a.Repo(commandContext(cmd), "")
	if err != nil {
		p.Raw("global: %s", global)
		return nil
	}
	p.Raw("repository: %s", configFileOrDefault(config.RepoConfigDir(repo.Root)))
	p.Raw("global: %s", global)
	return nil
}

func configFileOrDefault(dir string) string {
	if path, ok := config.FindFile(dir); ok {
		return path
	}
	return config.DefaultFilePath(dir)
}
