package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/offshoot-dev/offshoot/internal/app"
	"github.com/offshoot-dev/offshoot/internal/audit"
	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/output"
)

// application returns the app the root command set up.
func application() *app.App {
	if app.Default == nil {
		app.SetDefault(app.New())
	}
	return app.Default
}

// printer returns the application printer.
func printer() *output.Printer {
	return application().Printer
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// optionalPath returns args[0] when present.
func optionalPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// loadRepoConfig loads the repository config, failing when there is no
// config file at all.
func loadRepoConfig(root string) (*config.Config, error) {
	if _, ok := config.FindFile(config.RepoConfigDir(root)); !ok {
		return nil, errors.ConfigNotFound(root)
	}
	return config.Load(root)
}

// recordEvent appends to the audit log, logging rather than returning failures.
func recordEvent(a *app.App, kind audit.EventType, repo, details string) {
	if err := a.Audit.LogEvent(kind, repo, "", details); err != nil {
		logging.Debug("failed to write audit event", "type", kind, "error", err)
	}
}
