package hook

import (
	"context"
	stderrors "errors"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/output"
	"github.com/offshoot-dev/offshoot/internal/system"
)

// Env holds the values available to hook templates. It is built once per
// add or remove.
type Env struct {
	WorktreePath string
	WorktreeName string
	// Branch is empty for a detached head.
	Branch   string
	RepoRoot string
}

// ShellQuote wraps s in single quotes for POSIX sh. Embedded single quotes
// become '\''.
func ShellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Expand substitutes {{worktree_path}}, {{worktree_name}}, {{branch}} and
// {{repo_root}} in template with shell-quoted values. An empty branch
// expands to nothing. Other text is left untouched.
func Expand(template string, env Env) string {
	branch := ""
	if env.Branch != "" {
		branch = ShellQuote(env.Branch)
	}
	r := strings.NewReplacer(
		"{{worktree_path}}", ShellQuote(env.WorktreePath),
		"{{worktree_name}}", ShellQuote(env.WorktreeName),
		"{{branch}}", branch,
		"{{repo_root}}", ShellQuote(env.RepoRoot),
	)
	return r.Replace(template)
}

// Executor runs hook commands through the system shell.
type Executor struct {
	exec    system.CommandExecutor
	printer *output.Printer
}

// NewExecutor returns an Executor. A nil exec uses the default executor and
// a nil printer discards progress output.
func NewExecutor(exec system.CommandExecutor, printer *output.Printer) *Executor {
	if exec == nil {
		exec = system.DefaultExecutor()
	}
	if printer == nil {
		printer = output.Discard()
	}
	return &Executor{exec: exec, printer: printer}
}

// Run executes the entries of one phase in order from dir and stops at the
// first failure. Hook output goes straight to the terminal.
func (e *Executor) Run(ctx context.Context, phase config.Phase, env Env, dir string) error {
	for _, entry := range phase.Entries {
		e.printer.Info("Running %s hook: %s", phase.Name, label(entry))

		cmd, err := shellCommand(Expand(entry.Command, env), dir)
		if err != nil {
			return err
		}

		logging.Debug("running hook", "phase", phase.Name, "dir", dir, "command", entry.Command)
		if err := e.exec.ExecuteAttached(ctx, cmd); err != nil {
			var exitErr *system.ExitError
			if stderrors.As(err, &exitErr) {
				return errors.HookFailed(entry.Command, exitErr.Code)
			}
			return errors.HookExecutionFailed(entry.Command, err)
		}
	}
	return nil
}

// DryRun describes what Run would execute without running anything.
func (e *Executor) DryRun(phase config.Phase, env Env, dir string) {
	for _, entry := range phase.Entries {
		argv := shellquote.Join("sh", "-c", Expand(entry.Command, env))
		e.printer.DryRun("Would run %s hook in %s: %s", phase.Name, dir, argv)
	}
}

// label returns the description of an entry, or its command when undescribed.
func label(entry config.HookEntry) string {
	if entry.Description != "" {
		return entry.Description
	}
	return entry.Command
}

// Display lists hooks grouped by phase for review before trusting them.
func Display(p *output.Printer, hooks config.Hooks) {
	p.Notef("%s", p.Bold("Hooks defined in config:"))
	for _, phase := range hooks.Phases() {
		if len(phase.Entries) == 0 {
			continue
		}
		p.Notef("")
		p.Notef("  %s:", phase.Name)
		for _, entry := range phase.Entries {
			p.Notef("    $ %s", entry.Command)
			if entry.Description != "" {
				p.Notef("      %s", p.Dim(entry.Description))
			}
		}
	}
}
