package operation

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/offshoot-dev/offshoot/internal/audit"
	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/hook"
	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/output"
	"github.com/offshoot-dev/offshoot/internal/trust"
	"github.com/offshoot-dev/offshoot/internal/workspace"
)

// RemoveOptions are the inputs of one remove invocation.
type RemoveOptions struct {
	Paths []string
	// Force skips the safety gate and forces the VCS removal.
	Force   bool
	DryRun  bool
	NoSetup bool
}

// Remover deletes workspaces after safety checks.
type Remover struct {
	deps *Deps
}

// NewRemover returns a Remover using deps.
func NewRemover(deps *Deps) *Remover {
	return &Remover{deps: deps}
}

// Remove runs the remove workflow. Every target is resolved and checked
// before the first one is touched.
func (rm *Remover) Remove(ctx context.Context, opts RemoveOptions) ([]string, error) {
	d := rm.deps
	p := d.printer()

	if len(opts.Paths) == 0 {
		return nil, errors.New(errors.KindPathRequired, "at least one workspace path is required")
	}

	r, err := d.detect(ctx)
	if err != nil {
		return nil, err
	}

	cfg := &config.Config{}
	if !opts.NoSetup {
		if cfg, err = config.LoadMerged(r.root, d.globalConfigDir()); err != nil {
			return nil, err
		}
		if err := d.gate(r, cfg, "offshoot remove --no-setup <path>"); err != nil {
			return nil, err
		}
	}

	live, err := d.Provider.List(ctx)
	if err != nil {
		return nil, err
	}
	targets, err := rm.resolveTargets(opts.Paths, live)
	if err != nil {
		return nil, err
	}

	for _, t := range targets {
		if t.IsMain {
			return nil, errors.CannotRemoveMainWorkspace(t.Path)
		}
	}

	var warnings []SafetyWarning
	if !opts.Force {
		if warnings, err = rm.safetyWarnings(ctx, targets); err != nil {
			return nil, err
		}
	}
	if len(warnings) > 0 {
		switch {
		case opts.DryRun:
			for _, w := range warnings {
				describeWarning(p, w)
			}
		case d.prompter().Interactive():
			ok, err := d.prompter().ConfirmRemove(warnings)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errors.Aborted()
			}
		default:
			return nil, gateError(warnings[0])
		}
	}

	if !opts.NoSetup && !opts.DryRun {
		if err := d.recheck(r, cfg.Hooks); err != nil {
			return nil, err
		}
	}

	hooks := d.hooks()
	preRemove := config.Phase{Name: config.PhasePreRemove, Entries: cfg.Hooks.PreRemove}
	postRemove := config.Phase{Name: config.PhasePostRemove, Entries: cfg.Hooks.PostRemove}
	force := opts.Force || len(warnings) > 0

	removed := make([]string, 0, len(targets))
	for _, t := range targets {
		env := hook.Env{
			WorktreePath: t.Path,
			WorktreeName: filepath.Base(t.Path),
			Branch:       t.Branch,
			RepoRoot:     r.root,
		}

		if opts.DryRun {
			hooks.DryRun(preRemove, env, t.Path)
			p.DryRun("Would remove: %s", t.Path)
			hooks.DryRun(postRemove, env, r.root)
			continue
		}

		if err := hooks.Run(ctx, preRemove, env, t.Path); err != nil {
			return removed, err
		}
		if err := d.Provider.RemoveChecked(ctx, t.Path, force); err != nil {
			return removed, err
		}
		removed = append(removed, t.Path)
		d.record(audit.EventRemove, r, t.Path, "")
		p.Success("Removed: %s", t.Path)

		if err := hooks.Run(ctx, postRemove, env, r.root); err != nil {
			d.warnPostHook(r, t.Path, config.PhasePostRemove, err, "Worktree was removed but post-cleanup may be incomplete.")
		}
	}
	return removed, nil
}

// resolveTargets maps each argument onto a live workspace by canonical path.
func (rm *Remover) resolveTargets(paths []string, live []workspace.Info) ([]workspace.Info, error) {
	byPath := lo.SliceToMap(live, func(info workspace.Info) (string, workspace.Info) {
		if canonical, err := trust.Canonicalize(info.Path); err == nil {
			return canonical, info
		}
		return filepath.Clean(info.Path), info
	})

	targets := make([]workspace.Info, 0, len(paths))
	for _, arg := range paths {
		abs, err := rm.deps.absPath(arg)
		if err != nil {
			return nil, err
		}
		canonical, err := trust.Canonicalize(abs)
		if err != nil {
			return nil, errors.WorkspaceNotFound(arg)
		}
		info, ok := byPath[canonical]
		if !ok {
			return nil, errors.WorkspaceNotFound(arg)
		}
		info.Path = canonical
		targets = append(targets, info)
	}

	return lo.UniqBy(targets, func(info workspace.Info) string { return info.Path }), nil
}

func (rm *Remover) safetyWarnings(ctx context.Context, targets []workspace.Info) ([]SafetyWarning, error) {
	var warnings []SafetyWarning
	for _, t := range targets {
		status, err := rm.deps.Provider.Status(ctx, t.Path)
		if err != nil {
			return nil, err
		}
		unpushed, err := rm.deps.Provider.Unpushed(ctx, t.Path)
		if err != nil {
			return nil, err
		}
		if status.HasUncommittedChanges || unpushed.HasUnpushed {
			logging.Debug("remove safety warning", "path", t.Path, "status", status, "unpushed", unpushed)
			warnings = append(warnings, SafetyWarning{Path: t.Path, Status: status, Unpushed: unpushed})
		}
	}
	return warnings, nil
}

func gateError(w SafetyWarning) error {
	if w.Status.HasUncommittedChanges {
		return errors.WorkspaceHasUncommittedChanges(w.Path)
	}
	return errors.WorkspaceHasUnpushedCommits(w.Path, w.Unpushed.Count)
}

// WarningLines renders a warning as one line per problem.
func WarningLines(w SafetyWarning) []string {
	var lines []string
	add := func(n int, noun string) {
		switch {
		case n == 1:
			lines = append(lines, "1 "+noun)
		case n > 1:
			lines = append(lines, fmt.Sprintf("%d %ss", n, noun))
		}
	}
	add(w.Status.Modified, "modified file")
	add(w.Status.Deleted, "deleted file")
	add(w.Status.Untracked, "untracked file")
	if len(lines) == 0 && w.Status.HasUncommittedChanges {
		lines = append(lines, "uncommitted changes")
	}
	if w.Unpushed.HasUnpushed {
		if w.Unpushed.Count > 0 {
			add(w.Unpushed.Count, "unpushed commit")
		} else {
			lines = append(lines, "unpushed commits")
		}
	}
	return lines
}

func describeWarning(p *output.Printer, w SafetyWarning) {
	for _, line := range WarningLines(w) {
		p.Warn("%s - %s", w.Path, line)
	}
}
