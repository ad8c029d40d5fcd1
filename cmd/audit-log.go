package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var auditLogCmd = &cobra.Command{
	Use:   "audit-log [path]",
	Short: "Display the audit trail for a repository",
	Long: `Display recorded adds, removes, hook failures and trust changes for the
repository containing path, or the current directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuditLog,
}

var auditLogJSON bool

func init() {
	auditLogCmd.Flags().BoolVar(&auditLogJSON, "json", false, "Output events as JSON lines")
	rootCmd.AddCommand(auditLogCmd)
}

func runAuditLog(cmd *cobra.Command, args []string) error {
	a := application()
	p := a.Printer

	repo, err := repoAt(cmd, a, args)
	if err != nil {
		return err
	}

	events, err := a.Audit.Events(repo.MainPath)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	if len(events) == 0 {
		p.Info("No events found for %s", repo.MainPath)
		return nil
	}

	for _, e := range events {
		if auditLogJSON {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			p.Raw("%s", data)
			continue
		}

		ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
		subject := e.Path
		if subject == "" {
			subject = e.Repo
		}
		if e.Details != "" {
			p.Raw("[%s] %-11s %s (%s)", ts, e.Type, subject, e.Details)
		} else {
			p.Raw("[%s] %-11s %s", ts, e.Type, subject)
		}
	}

	return nil
}
