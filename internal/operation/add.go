package operation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/offshoot-dev/offshoot/internal/audit"
	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/hook"
	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/setup"
	"github.com/offshoot-dev/offshoot/internal/workspace"
)

// AddOptions are the inputs of one add invocation.
type AddOptions struct {
	// Path is the new workspace location. Empty means worktree.path_template.
	Path      string
	Workspace workspace.AddOptions
	// OnConflict overrides every configured conflict mode.
	OnConflict *config.ConflictMode
	DryRun     bool
	// NoSetup creates the workspace only: no trust check, hooks or file setup.
	NoSetup bool
}

// AddResult describes a finished add.
type AddResult struct {
	Path string
	// PostAddFailed is set when the workspace exists but a post_add hook failed.
	PostAddFailed bool
}

// Adder creates workspaces and prepares them from config.
type Adder struct {
	deps *Deps
}

// NewAdder returns an Adder using deps.
func NewAdder(deps *Deps) *Adder {
	return &Adder{deps: deps}
}

// Add runs the add workflow. Once the workspace exists, any failure before
// post_add removes it again and the original error is returned.
func (a *Adder) Add(ctx context.Context, opts AddOptions) (*AddResult, error) {
	d := a.deps
	p := d.printer()

	r, err := d.detect(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadMerged(r.root, d.globalConfigDir())
	if err != nil {
		return nil, err
	}

	path, err := a.resolvePath(r, cfg, opts)
	if err != nil {
		return nil, err
	}
	result := &AddResult{Path: path}

	if err := a.validateBranch(ctx, opts.Workspace); err != nil {
		return nil, err
	}

	if opts.NoSetup {
		if opts.DryRun {
			p.DryRun("Would run: %s add %s", d.Provider.Kind(), path)
			return result, nil
		}
		if err := d.Provider.Add(ctx, opts.Workspace, path); err != nil {
			return nil, err
		}
		d.record(audit.EventAdd, r, path, "no-setup")
		p.Success("Worktree created: %s", path)
		return result, nil
	}

	if err := prevalidateSources(r.root, cfg); err != nil {
		return nil, err
	}
	if err := d.gate(r, cfg, "offshoot add --no-setup <path>"); err != nil {
		return nil, err
	}

	env := hook.Env{
		WorktreePath: path,
		WorktreeName: filepath.Base(path),
		Branch:       opts.Workspace.BranchName(),
		RepoRoot:     r.root,
	}
	hooks := d.hooks()
	preAdd := config.Phase{Name: config.PhasePreAdd, Entries: cfg.Hooks.PreAdd}
	postAdd := config.Phase{Name: config.PhasePostAdd, Entries: cfg.Hooks.PostAdd}

	if opts.DryRun {
		hooks.DryRun(preAdd, env, r.root)
		p.DryRun("Would run: %s add %s", d.Provider.Kind(), path)
		if err := a.setup(ctx, r.root, path, cfg, opts); err != nil {
			return nil, err
		}
		hooks.DryRun(postAdd, env, path)
		return result, nil
	}

	if err := d.recheck(r, cfg.Hooks); err != nil {
		return nil, err
	}
	if err := hooks.Run(ctx, preAdd, env, r.root); err != nil {
		return nil, err
	}

	existed := exists(path)
	if err := d.Provider.Add(ctx, opts.Workspace, path); err != nil {
		if !existed && exists(path) {
			a.rollback(ctx, path)
		}
		return nil, err
	}

	if err := a.setup(ctx, r.root, path, cfg, opts); err != nil {
		a.rollback(ctx, path)
		return nil, err
	}

	if err := hooks.Run(ctx, postAdd, env, path); err != nil {
		d.warnPostHook(r, path, config.PhasePostAdd, err, "Worktree was created but post-setup may be incomplete.")
		result.PostAddFailed = true
	}

	d.record(audit.EventAdd, r, path, "branch="+env.Branch)
	p.Success("Worktree created: %s", path)
	return result, nil
}

func (a *Adder) rollback(ctx context.Context, path string) {
	a.deps.printer().Notef("Setup failed, rolling back workspace creation...")
	a.deps.Provider.Remove(ctx, path, true)
}

// resolvePath returns the absolute workspace path, generating it from the
// path template when none was given.
func (a *Adder) resolvePath(r repo, cfg *config.Config, opts AddOptions) (string, error) {
	path := opts.Path
	if path == "" {
		branch := opts.Workspace.BranchName()
		if branch == "" {
			return "", errors.PathRequired()
		}
		generated, ok := cfg.Worktree.GeneratePath(branch, filepath.Base(r.root))
		if !ok {
			return "", errors.PathRequired()
		}
		logging.Debug("generated workspace path", "template", cfg.Worktree.PathTemplate, "path", generated)
		path = generated
	}
	return a.deps.absPath(path)
}

// validateBranch checks the name of a branch that add would create.
func (a *Adder) validateBranch(ctx context.Context, ws workspace.AddOptions) error {
	for _, name := range []string{ws.NewBranch, ws.ForceNewBranch} {
		if name == "" {
			continue
		}
		reason, err := a.deps.Provider.ValidateBranchName(ctx, name)
		if err != nil {
			return err
		}
		if reason != "" {
			return fmt.Errorf("invalid branch name %q: %s", name, reason)
		}
	}
	return nil
}

// prevalidateSources fails before anything is created when a link or copy
// source is missing from the repository root. Patterns may match nothing and
// are not checked.
func prevalidateSources(root string, cfg *config.Config) error {
	sources := make([]string, 0, len(cfg.Link)+len(cfg.Copy))
	for _, l := range cfg.Link {
		if l.IsPattern() {
			continue
		}
		sources = append(sources, l.Source)
	}
	for _, c := range cfg.Copy {
		sources = append(sources, c.Source)
	}

	for _, src := range sources {
		resolved, err := config.ResolveIn(root, src)
		if err != nil {
			return err
		}
		if _, err := os.Stat(resolved); err != nil {
			return errors.SourceNotFound(src)
		}
	}
	return nil
}

// fileOp is one link or copy entry after path resolution.
type fileOp struct {
	verb        string
	source      string
	target      string
	mode        *config.ConflictMode
	description string
	apply       func(source, target string) error
}

// setup creates mkdir entries, then links, then copies. Conflicts are
// resolved by the invocation override, the entry, the configured default,
// and finally the prompter. Dry runs resolve nothing and only describe.
func (a *Adder) setup(ctx context.Context, root, path string, cfg *config.Config, opts AddOptions) error {
	p := a.deps.printer()

	for _, m := range cfg.Mkdir {
		target, err := config.ResolveIn(path, m.Path)
		if err != nil {
			return err
		}
		if opts.DryRun {
			p.DryRun("Would create directory: %s", target)
			continue
		}
		if err := setup.CreateDirectory(target); err != nil {
			return err
		}
		p.Println("Creating: %s", withDescription(target, m.Description))
	}

	ops, err := a.fileOps(ctx, root, path, cfg)
	if err != nil {
		return err
	}

	override := opts.OnConflict
	for _, op := range ops {
		if opts.DryRun {
			if setup.CheckConflict(op.target) {
				p.DryRun("Conflict at %s", op.target)
			}
			p.DryRun("Would %s: %s -> %s", op.verb, op.source, op.target)
			continue
		}

		proceed, err := a.resolve(op, cfg.Options.OnConflict, &override)
		if err != nil {
			return err
		}
		if !proceed {
			continue
		}

		if err := op.apply(op.source, op.target); err != nil {
			return err
		}
		p.Println("%s", describeOp(op))
	}
	return nil
}

// resolve frees op.target when something is already there. It returns false
// when the entry is skipped.
func (a *Adder) resolve(op fileOp, fallback *config.ConflictMode, override **config.ConflictMode) (bool, error) {
	if !setup.CheckConflict(op.target) {
		return true, nil
	}

	mode, ok := config.ResolveMode(*override, op.mode, fallback)
	if !ok {
		choice, err := a.deps.prompter().PromptConflict(op.target)
		if err != nil {
			return false, err
		}
		if choice.ApplyToAll {
			m := choice.Mode
			*override = &m
		}
		mode = choice.Mode
	}

	action, err := setup.ResolveConflict(op.target, mode)
	if err != nil {
		return false, err
	}
	logging.Debug("conflict resolved", "target", op.target, "mode", mode, "action", action)

	switch action {
	case setup.Abort:
		return false, errors.Aborted()
	case setup.Skip:
		a.deps.printer().Println("Skipped: %s (conflict)", op.target)
		return false, nil
	}
	return true, nil
}

// fileOps resolves link and copy entries against root and path. Pattern
// links expand to one op per match.
func (a *Adder) fileOps(ctx context.Context, root, path string, cfg *config.Config) ([]fileOp, error) {
	ops := make([]fileOp, 0, len(cfg.Link)+len(cfg.Copy))
	add := func(verb, source, target string, mode *config.ConflictMode, desc string, apply func(string, string) error) error {
		src, err := config.ResolveIn(root, source)
		if err != nil {
			return err
		}
		dst, err := config.ResolveIn(path, target)
		if err != nil {
			return err
		}
		ops = append(ops, fileOp{verb: verb, source: src, target: dst, mode: mode, description: desc, apply: apply})
		return nil
	}

	var tracked map[string]bool
	for _, l := range cfg.Link {
		if !l.IsPattern() {
			if err := add("link", l.Source, l.TargetPath(), l.OnConflict, l.Description, setup.CreateSymlink); err != nil {
				return nil, err
			}
			continue
		}

		var skip func(string) bool
		if l.IgnoreTracked {
			if tracked == nil {
				files, err := a.deps.Provider.ListTrackedFiles(ctx, root)
				if err != nil {
					return nil, err
				}
				tracked = lo.SliceToMap(files, func(f string) (string, bool) { return f, true })
			}
			skip = func(rel string) bool { return tracked[rel] }
		}

		matches, err := setup.MatchPattern(root, l.Source, skip)
		if err != nil {
			return nil, err
		}
		logging.Debug("expanded link pattern", "pattern", l.Source, "matches", len(matches))
		for _, rel := range matches {
			if err := add("link", rel, rel, l.OnConflict, l.Description, setup.CreateSymlink); err != nil {
				return nil, err
			}
		}
	}

	for _, c := range cfg.Copy {
		if err := add("copy", c.Source, c.TargetPath(), c.OnConflict, c.Description, setup.CopyFile); err != nil {
			return nil, err
		}
	}
	return ops, nil
}

func describeOp(op fileOp) string {
	verb := "Linking"
	if op.verb == "copy" {
		verb = "Copying"
	}
	src, dst := filepath.Base(op.source), filepath.Base(op.target)
	line := verb + ": " + src
	if src != dst {
		line += " → " + dst
	}
	return withDescription(line, op.description)
}

func withDescription(s, description string) string {
	if description == "" {
		return s
	}
	return s + " (" + description + ")"
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
