package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/offshoot-dev/offshoot/internal/app"
	"github.com/offshoot-dev/offshoot/internal/audit"
	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/output"
)

var trustCmd = &cobra.Command{
	Use:   "trust [path]",
	Short: "Review and trust the hooks of a repository",
	Long: `Show the hooks in the repository config and, after confirmation,
record that they may run.

Trust is tied to the exact hook commands. Any change to them requires
running 'offshoot trust' again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTrust,
}

var (
	trustShow  bool
	trustCheck bool
)

func init() {
	trustCmd.Flags().BoolVar(&trustShow, "show", false, "Show the hooks and their trust status only")
	trustCmd.Flags().BoolVar(&trustCheck, "check", false, "Exit with an error when hooks exist and are not trusted")
	trustCmd.MarkFlagsMutuallyExclusive("show", "check")
	rootCmd.AddCommand(trustCmd)
}

// repoAt detects the repository at the optional path argument.
func repoAt(cmd *cobra.Command, a *app.App, args []string) (app.Repo, error) {
	dir := optionalPath(args)
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(a.Cwd, dir)
	}
	return a.Repo(commandContext(cmd), dir)
}

func runTrust(cmd *cobra.Command, args []string) error {
	a := application()
	p := a.Printer

	if trustCheck {
		return checkTrust(cmd, a, args)
	}

	repo, err := repoAt(cmd, a, args)
	if err != nil {
		return err
	}
	cfg, err := loadRepoConfig(repo.Root)
	if err != nil {
		return err
	}
	if !cfg.Hooks.HasHooks() {
		return errors.NoHooksDefined()
	}

	if trustShow {
		trusted, err := a.Trust.IsTrusted(repo.MainPath, cfg.Hooks)
		if err != nil {
			return err
		}
		p.Raw("Hooks in %s:", repo.Root)
		printHooks(p, cfg.Hooks)
		p.Raw("")
		p.Raw("Trust status: %s", trustStatus(trusted))
		return nil
	}

	p.Warn("Review these commands before trusting")
	p.Raw("Repository: %s", repo.Root)
	printHooks(p, cfg.Hooks)
	p.Raw("")

	ok, err := a.Prompter.Confirm("Trust these hooks?", nil, "run 'offshoot trust' in an interactive terminal")
	if err != nil {
		return err
	}
	if !ok {
		p.Println("Hooks were not trusted.")
		return errors.Aborted()
	}

	if err := a.Trust.Trust(repo.MainPath, cfg.Hooks); err != nil {
		return err
	}
	recordEvent(a, audit.EventTrust, repo.MainPath, fmt.Sprintf("hooks=%d", cfg.Hooks.Count()))
	p.Success("Hooks trusted for: %s", repo.Root)
	p.Println("These hooks will now run on offshoot add and remove.")
	return nil
}

// checkTrust succeeds outside a repository, without config, without hooks,
// or when the hooks are trusted.
func checkTrust(cmd *cobra.Command, a *app.App, args []string) error {
	repo, err := repoAt(cmd, a, args)
	if errors.Is(err, errors.KindNotInRepo) {
		return nil
	}
	if err != nil {
		return err
	}

	cfg, err := config.Load(repo.Root)
	if err != nil {
		return err
	}
	if !cfg.Hooks.HasHooks() {
		return nil
	}

	trusted, err := a.Trust.IsTrusted(repo.MainPath, cfg.Hooks)
	if err != nil {
		return err
	}
	if !trusted {
		return errors.HooksNotTrusted()
	}
	return nil
}

func printHooks(p *output.Printer, hooks config.Hooks) {
	for _, phase := range hooks.Phases() {
		if len(phase.Entries) == 0 {
			continue
		}
		p.Raw("")
		p.Raw("%s", p.Bold(phase.Name+":"))
		for _, entry := range phase.Entries {
			p.Raw("  %s", entry.Command)
			if entry.Description != "" {
				p.Raw("  -> %s", entry.Description)
			} else {
				p.Raw("  -> %s", p.Dim("no description"))
			}
		}
	}
}

func trustStatus(trusted bool) string {
	if trusted {
		return "trusted"
	}
	return "not trusted"
}
