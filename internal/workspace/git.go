package workspace

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/system"
)

// GitProvider implements Provider for git repositories using worktrees
type GitProvider struct {
	dir  string
	exec system.CommandExecutor
}

func (p *GitProvider) Kind() Kind {
	return Git
}

func (p *GitProvider) git(ctx context.Context, dir string, args ...string) (system.Result, error) {
	if dir == "" {
		dir = p.dir
	}
	return run(ctx, p.exec, dir, "git", args...)
}

func (p *GitProvider) IsInsideRepo(ctx context.Context) bool {
	_, err := p.git(ctx, "", "rev-parse", "--git-dir")
	return err == nil
}

func (p *GitProvider) RepositoryRoot(ctx context.Context) (string, error) {
	res, err := p.git(ctx, "", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", errors.NotInRepo()
	}
	return strings.TrimSpace(res.Stdout), nil
}

// MainWorkspacePathFor returns the worktree whose git dir is a plain .git
// directory, i.e. the primary worktree rather than a linked one.
func (p *GitProvider) MainWorkspacePathFor(ctx context.Context, root string) (string, error) {
	res, err := p.git(ctx, root, "worktree", "list", "--porcelain")
	if err != nil {
		return "", errors.NotInRepo()
	}

	for _, line := range nonEmptyLines(res.Stdout) {
		path, ok := strings.CutPrefix(line, "worktree ")
		if !ok || strings.TrimSpace(path) == "" || !exists(path) {
			continue
		}

		gitDir, err := p.git(ctx, path, "rev-parse", "--git-dir")
		if err != nil {
			continue
		}
		if filepath.Base(strings.TrimSpace(gitDir.Stdout)) == ".git" {
			return canonicalize(path)
		}
	}

	return "", errors.NotInRepo()
}

// worktreeAddArgs builds the git worktree add argument list. Flag order is fixed.
func worktreeAddArgs(opts AddOptions, path string) []string {
	args := []string{"worktree", "add"}
	if opts.Force {
		args = append(args, "--force")
	}
	if opts.Detach {
		args = append(args, "--detach")
	}
	if opts.NewBranch != "" {
		args = append(args, "-b", opts.NewBranch)
	}
	if opts.ForceNewBranch != "" {
		args = append(args, "-B", opts.ForceNewBranch)
	}
	if opts.NoCheckout {
		args = append(args, "--no-checkout")
	}
	if opts.Lock {
		args = append(args, "--lock")
	}
	if opts.Track {
		args = append(args, "--track")
	}
	if opts.NoTrack {
		args = append(args, "--no-track")
	}
	if opts.GuessRemote {
		args = append(args, "--guess-remote")
	}
	if opts.NoGuessRemote {
		args = append(args, "--no-guess-remote")
	}
	if opts.Quiet {
		args = append(args, "--quiet")
	}
	args = append(args, path)
	if opts.Commitish != "" {
		args = append(args, opts.Commitish)
	}
	return args
}

func (p *GitProvider) Add(ctx context.Context, opts AddOptions, path string) error {
	res, err := p.git(ctx, "", worktreeAddArgs(opts, path)...)
	if err != nil {
		return errors.VcsCommandFailed("git worktree add", strings.TrimSpace(res.Stderr), err)
	}
	return nil
}

func (p *GitProvider) removeArgs(path string, force bool) []string {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	return append(args, path)
}

func (p *GitProvider) Remove(ctx context.Context, path string, force bool) {
	res, err := p.git(ctx, "", p.removeArgs(path, force)...)
	if err != nil {
		logging.Warn("failed to remove worktree", "path", path, "stderr", strings.TrimSpace(res.Stderr), "error", err)
	}
}

func (p *GitProvider) RemoveChecked(ctx context.Context, path string, force bool) error {
	res, err := p.git(ctx, "", p.removeArgs(path, force)...)
	if err != nil {
		return errors.VcsCommandFailed("git worktree remove", strings.TrimSpace(res.Stderr), err)
	}
	return nil
}

func (p *GitProvider) List(ctx context.Context) ([]Info, error) {
	res, err := p.git(ctx, "", "worktree", "list", "--porcelain")
	if err != nil {
		return nil, errors.VcsCommandFailed("git worktree list", strings.TrimSpace(res.Stderr), err)
	}
	return parseWorktreeList(res.Stdout), nil
}

// parseWorktreeList parses `git worktree list --porcelain`. A worktree line
// starts a new record and the first record is the main worktree.
func parseWorktreeList(out string) []Info {
	var worktrees []Info
	var current *Info

	flush := func() {
		if current != nil {
			worktrees = append(worktrees, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			current = &Info{
				Path:   strings.TrimPrefix(line, "worktree "),
				IsMain: len(worktrees) == 0,
			}
		case current == nil:
			continue
		case strings.HasPrefix(line, "HEAD "):
			current.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			current.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "detached":
			current.Branch = ""
		case line == "locked" || strings.HasPrefix(line, "locked "):
			current.IsLocked = true
		}
	}
	flush()

	return worktrees
}

func (p *GitProvider) Status(ctx context.Context, path string) (Status, error) {
	res, err := p.git(ctx, path, "status", "--porcelain")
	if err != nil {
		return Status{}, errors.VcsCommandFailed("git status", strings.TrimSpace(res.Stderr), err)
	}
	return parseGitStatus(res.Stdout), nil
}

// parseGitStatus classifies porcelain lines by their two-character prefix.
func parseGitStatus(out string) Status {
	var s Status
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 {
			continue
		}
		index, tree := line[0], line[1]
		switch {
		case index == '?' && tree == '?':
			s.Untracked++
		case index == 'M' || tree == 'M':
			s.Modified++
		case index == 'D' || tree == 'D':
			s.Deleted++
		case index == 'A':
			s.Modified++
		}
	}
	s.HasUncommittedChanges = s.Modified > 0 || s.Deleted > 0 || s.Untracked > 0
	return s
}

// Unpushed never fails: any git error is reported as zero unpushed commits.
func (p *GitProvider) Unpushed(ctx context.Context, path string) (Unpushed, error) {
	if _, err := p.git(ctx, path, "rev-parse", "--abbrev-ref", "@{upstream}"); err == nil {
		res, err := p.git(ctx, path, "log", "--oneline", "@{upstream}..HEAD")
		if err != nil {
			return Unpushed{}, nil
		}
		return countUnpushed(res.Stdout), nil
	}
	return p.unpushedAgainstRemote(ctx, path), nil
}

func (p *GitProvider) unpushedAgainstRemote(ctx context.Context, path string) Unpushed {
	res, err := p.git(ctx, path, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return Unpushed{}
	}
	branch := strings.TrimSpace(res.Stdout)
	if branch == "HEAD" || branch == "" {
		return Unpushed{}
	}

	res, err = p.git(ctx, path, "config", "--get", fmt.Sprintf("branch.%s.remote", branch))
	if err != nil {
		return Unpushed{}
	}
	remoteRef := strings.TrimSpace(res.Stdout) + "/" + branch

	if _, err := p.git(ctx, path, "rev-parse", "--verify", remoteRef); err != nil {
		return Unpushed{}
	}

	res, err = p.git(ctx, path, "log", "--oneline", remoteRef+"..HEAD")
	if err != nil {
		return Unpushed{}
	}
	return countUnpushed(res.Stdout)
}

func countUnpushed(out string) Unpushed {
	n := len(nonEmptyLines(out))
	return Unpushed{HasUnpushed: n > 0, Count: n}
}

func (p *GitProvider) Branches(ctx context.Context) ([]string, error) {
	res, err := p.git(ctx, "", "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, errors.VcsCommandFailed("git branch", strings.TrimSpace(res.Stderr), err)
	}
	return nonEmptyLines(res.Stdout), nil
}

func (p *GitProvider) ListTrackedFiles(ctx context.Context, root string) ([]string, error) {
	res, err := p.git(ctx, root, "ls-files", "-z")
	if err != nil {
		return nil, errors.VcsCommandFailed("git ls-files", strings.TrimSpace(res.Stderr), err)
	}
	return parseNulList(res.Stdout), nil
}

// parseNulList splits -z output, which leaves paths unquoted.
func parseNulList(out string) []string {
	return lo.Compact(strings.Split(out, "\x00"))
}

func (p *GitProvider) RemoteBranches(ctx context.Context) ([]string, error) {
	res, err := p.git(ctx, "", "for-each-ref", "--format=%(refname:short) %(symref)", "refs/remotes/")
	if err != nil {
		return nil, errors.VcsCommandFailed("git for-each-ref", strings.TrimSpace(res.Stderr), err)
	}
	return parseRemoteBranches(res.Stdout), nil
}

// parseRemoteBranches drops symbolic refs such as origin/HEAD.
func parseRemoteBranches(out string) []string {
	return lo.FilterMap(nonEmptyLines(out), func(line string, _ int) (string, bool) {
		fields := strings.Fields(line)
		if len(fields) != 1 {
			return "", false
		}
		return fields[0], true
	})
}

func (p *GitProvider) LogOneline(ctx context.Context, rev string, limit int) ([]string, error) {
	res, err := p.git(ctx, "", "log", "--oneline", "-n"+strconv.Itoa(limit), rev)
	if err != nil {
		return nil, errors.VcsCommandFailed("git log", strings.TrimSpace(res.Stderr), err)
	}
	return nonEmptyLines(res.Stdout), nil
}

// ValidateBranchName uses git check-ref-format. Exit status 1 means the name
// is invalid; any other failure is an error.
func (p *GitProvider) ValidateBranchName(ctx context.Context, name string) (string, error) {
	res, err := p.git(ctx, "", "check-ref-format", "--branch", name)
	if err == nil {
		return "", nil
	}

	reason := strings.TrimSpace(res.Stderr)
	if reason == "" {
		reason = "Invalid branch name"
	}
	if res.ExitCode == 1 {
		return reason, nil
	}
	return "", errors.VcsCommandFailed("git check-ref-format --branch "+name, reason, err)
}

var _ Provider = (*GitProvider)(nil)
