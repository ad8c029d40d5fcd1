package cmd

import (
	"github.com/spf13/cobra"

	"github.com/offshoot-dev/offshoot/internal/audit"
)

var untrustCmd = &cobra.Command{
	Use:   "untrust [path]",
	Short: "Revoke trust for the hooks of a repository",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUntrust,
}

var untrustList bool

func init() {
	untrustCmd.Flags().BoolVar(&untrustList, "list", false, "List all trusted repositories")
	rootCmd.AddCommand(untrustCmd)
}

func runUntrust(cmd *cobra.Command, args []string) error {
	a := application()
	p := a.Printer

	if untrustList {
		entries := a.Trust.List()
		if len(entries) == 0 {
			p.Raw("No trusted repositories")
			return nil
		}
		p.Raw("Trusted repositories:")
		for _, e := range entries {
			if e.Err != nil {
				p.Warn("Unreadable trust record %s: %v", e.Path, e.Err)
				continue
			}
			p.Raw("  %s", e.Record.RepoRoot)
			p.Raw("    Trusted at: %s", e.Record.TrustedAt)
		}
		return nil
	}

	repo, err := repoAt(cmd, a, args)
	if err != nil {
		return err
	}
	cfg, err := loadRepoConfig(repo.Root)
	if err != nil {
		return err
	}

	removed, err := a.Trust.Untrust(repo.MainPath, cfg.Hooks)
	if err != nil {
		return err
	}
	if removed {
		recordEvent(a, audit.EventUntrust, repo.MainPath, "")
		p.Success("Untrusted hooks for: %s", repo.Root)
	} else {
		p.Info("Hooks were not trusted: %s", repo.Root)
	}
	return nil
}
