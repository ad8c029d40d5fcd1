package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/system"
)

const (
	defaultWorkspaceName = "default"

	jjWorkspaceListTemplate = `self.name() ++ "\t" ++ self.target().commit_id().short(12) ++ "\n"`
	jjLogTemplate           = `change_id.short(12) ++ " " ++ description.first_line() ++ "\n"`
	jjUnpushedRevset        = `heads(::@) ~ heads(::remote_bookmarks())`
)

// JjProvider implements Provider for jj (Jujutsu) repositories
type JjProvider struct {
	kind Kind
	dir  string
	exec system.CommandExecutor
}

func (p *JjProvider) Kind() Kind {
	return p.kind
}

func (p *JjProvider) jj(ctx context.Context, dir string, args ...string) (system.Result, error) {
	if dir == "" {
		dir = p.dir
	}
	return run(ctx, p.exec, dir, "jj", args...)
}

func (p *JjProvider) IsInsideRepo(ctx context.Context) bool {
	_, err := p.jj(ctx, "", "root")
	return err == nil
}

// RepositoryRoot returns the default workspace root. jj root would return the
// current workspace, which differs when running inside a secondary workspace.
func (p *JjProvider) RepositoryRoot(ctx context.Context) (string, error) {
	res, err := p.jj(ctx, "", "root")
	if err != nil {
		return "", errors.NotInRepo()
	}
	return defaultWorkspaceRoot(strings.TrimSpace(res.Stdout)), nil
}

// defaultWorkspaceRoot follows a secondary workspace's .jj/repo file back to
// the shared store at <default>/.jj/repo and returns <default>.
func defaultWorkspaceRoot(workspaceRoot string) string {
	store, ok := resolveRepoStore(workspaceRoot)
	if !ok {
		return workspaceRoot
	}
	return filepath.Dir(filepath.Dir(store))
}

// resolveRepoStore reads <ws>/.jj/repo when it is a file and returns the
// canonical store directory it points to, relative to <ws>/.jj.
func resolveRepoStore(workspaceRoot string) (string, bool) {
	jjDir := filepath.Join(workspaceRoot, ".jj")
	repoFile := filepath.Join(jjDir, "repo")
	if !isFile(repoFile) {
		return "", false
	}

	data, err := os.ReadFile(repoFile)
	if err != nil {
		return "", false
	}
	target := strings.TrimSpace(string(data))
	if !filepath.IsAbs(target) {
		target = filepath.Join(jjDir, target)
	}

	canonical, err := canonicalize(target)
	if err != nil {
		return "", false
	}
	return canonical, true
}

func (p *JjProvider) MainWorkspacePathFor(ctx context.Context, root string) (string, error) {
	workspaces, err := p.listAt(ctx, root)
	if err != nil {
		return "", err
	}
	for _, ws := range workspaces {
		if ws.Name == defaultWorkspaceName {
			return canonicalize(ws.Path)
		}
	}
	if len(workspaces) == 0 {
		return "", errors.NotInRepo()
	}
	return canonicalize(workspaces[0].Path)
}

// Add creates the workspace named after the target directory. jj workspace
// add does not create bookmarks, so a requested branch is created afterwards.
func (p *JjProvider) Add(ctx context.Context, opts AddOptions, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	args := []string{"workspace", "add", "--name", filepath.Base(path)}
	if opts.Commitish != "" {
		args = append(args, "-r", opts.Commitish)
	}
	args = append(args, path)

	res, err := p.jj(ctx, "", args...)
	if err != nil {
		return errors.VcsCommandFailed("jj workspace add", strings.TrimSpace(res.Stderr), err)
	}

	if bookmark := opts.requestedBookmark(); bookmark != "" {
		res, err := p.jj(ctx, path, "bookmark", "create", bookmark, "-r", "@")
		if err != nil {
			return errors.VcsCommandFailed("jj bookmark create "+bookmark, strings.TrimSpace(res.Stderr), err)
		}
	}
	return nil
}

// Remove forgets the workspace and deletes its directory, logging failures.
func (p *JjProvider) Remove(ctx context.Context, path string, force bool) {
	if res, err := p.forget(ctx, path); err != nil {
		logging.Warn("failed to forget workspace", "path", path, "stderr", strings.TrimSpace(res.Stderr), "error", err)
	}
	if err := os.RemoveAll(path); err != nil {
		logging.Warn("failed to delete workspace directory", "path", path, "error", err)
	}
}

// RemoveChecked forgets the workspace and deletes its directory. jj has no
// notion of a forced forget, so force has no effect.
func (p *JjProvider) RemoveChecked(ctx context.Context, path string, force bool) error {
	res, err := p.forget(ctx, path)
	if err != nil {
		return errors.VcsCommandFailed("jj workspace forget", strings.TrimSpace(res.Stderr), err)
	}
	if err := os.RemoveAll(path); err != nil {
		return err
	}
	return nil
}

// forget runs jj workspace forget from the repository root, since the
// workspace directory itself may already be gone.
func (p *JjProvider) forget(ctx context.Context, path string) (system.Result, error) {
	root, err := p.repoRootForWorkspace(ctx, path)
	if err != nil {
		return system.Result{}, err
	}
	return p.jj(ctx, root, "workspace", "forget", p.workspaceName(ctx, root, path))
}

// workspaceName maps a workspace path to its jj name, falling back to the
// directory basename used at creation.
func (p *JjProvider) workspaceName(ctx context.Context, root, path string) string {
	want, err := canonicalize(path)
	if err == nil {
		if workspaces, err := p.listAt(ctx, root); err == nil {
			for _, ws := range workspaces {
				if got, err := canonicalize(ws.Path); err == nil && got == want {
					return ws.Name
				}
			}
		}
	}
	return filepath.Base(path)
}

func (p *JjProvider) repoRootForWorkspace(ctx context.Context, path string) (string, error) {
	if isDir(path) {
		if res, err := p.jj(ctx, path, "root"); err == nil {
			return strings.TrimSpace(res.Stdout), nil
		}
	}

	current := path
	for {
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		if isDir(filepath.Join(parent, ".jj")) {
			return parent, nil
		}
		current = parent
	}

	if root, err := p.RepositoryRoot(ctx); err == nil {
		return root, nil
	}
	return "", errors.NotInRepo()
}

func (p *JjProvider) List(ctx context.Context) ([]Info, error) {
	root, err := p.RepositoryRoot(ctx)
	if err != nil {
		return nil, err
	}
	return p.listAt(ctx, root)
}

func (p *JjProvider) listAt(ctx context.Context, root string) ([]Info, error) {
	res, err := p.jj(ctx, root, "workspace", "list", "--template", jjWorkspaceListTemplate)
	if err != nil {
		return nil, errors.VcsCommandFailed("jj workspace list", strings.TrimSpace(res.Stderr), err)
	}

	entries := parseJjWorkspaceList(res.Stdout)
	workspaces := make([]Info, 0, len(entries))
	for _, e := range entries {
		path := p.workspacePath(ctx, root, e.name)

		var branch string
		if exists(path) {
			branch = p.bookmarkAt(ctx, path)
		}

		workspaces = append(workspaces, Info{
			Path:   path,
			Head:   e.commit,
			Branch: branch,
			IsMain: e.name == defaultWorkspaceName,
			Name:   e.name,
		})
	}
	return workspaces, nil
}

type jjWorkspaceEntry struct {
	name   string
	commit string
}

// parseJjWorkspaceList parses the tab-separated workspace list template.
// jj quotes names containing special characters.
func parseJjWorkspaceList(out string) []jjWorkspaceEntry {
	var entries []jjWorkspaceEntry
	for _, line := range nonEmptyLines(out) {
		name, commit, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		entries = append(entries, jjWorkspaceEntry{
			name:   strings.Trim(name, `"`),
			commit: strings.TrimSpace(commit),
		})
	}
	return entries
}

// workspacePath resolves where a named workspace lives on disk.
func (p *JjProvider) workspacePath(ctx context.Context, root, name string) string {
	if res, err := p.jj(ctx, root, "workspace", "root", "--name", name); err == nil {
		if path := strings.TrimSpace(res.Stdout); path != "" {
			return path
		}
	}
	if name == defaultWorkspaceName {
		return root
	}
	if path, ok := findWorkspaceDir(root, name); ok {
		return path
	}
	return filepath.Join(root, name)
}

// bookmarkAt returns the first bookmark on the workspace's working copy commit.
func (p *JjProvider) bookmarkAt(ctx context.Context, path string) string {
	res, err := p.jj(ctx, path, "log", "-r", "@", "--no-graph", "-T", `bookmarks.join(",")`)
	if err != nil {
		return ""
	}
	lines := nonEmptyLines(res.Stdout)
	if len(lines) == 0 {
		return ""
	}
	first, _, _ := strings.Cut(strings.TrimSpace(lines[0]), ",")
	return first
}

func (p *JjProvider) Status(ctx context.Context, path string) (Status, error) {
	res, err := p.jj(ctx, path, "status")
	if err != nil {
		return Status{}, errors.VcsCommandFailed("jj status", strings.TrimSpace(res.Stderr), err)
	}
	return parseJjStatus(res.Stdout), nil
}

// parseJjStatus counts change lines of jj status. jj snapshots new files
// automatically, so added files count as modified and nothing is untracked.
func parseJjStatus(out string) Status {
	var s Status
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "M "), strings.HasPrefix(line, "A "):
			s.Modified++
		case strings.HasPrefix(line, "D "):
			s.Deleted++
		}
	}
	s.HasUncommittedChanges = s.Modified > 0 || s.Deleted > 0 || s.Untracked > 0
	return s
}

// Unpushed never fails: any jj error is reported as zero unpushed changes.
func (p *JjProvider) Unpushed(ctx context.Context, path string) (Unpushed, error) {
	res, err := p.jj(ctx, path, "log", "-r", jjUnpushedRevset, "--no-graph", "-T", `change_id.short() ++ "\n"`)
	if err != nil {
		return Unpushed{}, nil
	}
	return countUnpushed(res.Stdout), nil
}

func (p *JjProvider) Branches(ctx context.Context) ([]string, error) {
	res, err := p.jj(ctx, "", "bookmark", "list", "--template", `name ++ "\n"`)
	if err != nil {
		return nil, errors.VcsCommandFailed("jj bookmark list", strings.TrimSpace(res.Stderr), err)
	}
	return nonEmptyLines(res.Stdout), nil
}

func (p *JjProvider) ListTrackedFiles(ctx context.Context, root string) ([]string, error) {
	res, err := p.jj(ctx, root, "file", "list")
	if err != nil {
		return nil, errors.VcsCommandFailed("jj file list", strings.TrimSpace(res.Stderr), err)
	}
	return lo.Map(nonEmptyLines(res.Stdout), func(line string, _ int) string {
		return filepath.ToSlash(line)
	}), nil
}

func (p *JjProvider) RemoteBranches(ctx context.Context) ([]string, error) {
	res, err := p.jj(ctx, "", "bookmark", "list", "--all-remotes", "--template", `if(remote, name ++ "@" ++ remote ++ "\n")`)
	if err != nil {
		return nil, errors.VcsCommandFailed("jj bookmark list --all-remotes", strings.TrimSpace(res.Stderr), err)
	}
	return nonEmptyLines(res.Stdout), nil
}

func (p *JjProvider) LogOneline(ctx context.Context, rev string, limit int) ([]string, error) {
	revset := rev + "::@ | @::" + rev
	res, err := p.jj(ctx, "", "log", "-r", revset, "--limit", strconv.Itoa(limit), "--no-graph", "-T", jjLogTemplate)
	if err != nil {
		return nil, errors.VcsCommandFailed("jj log -r "+rev, strings.TrimSpace(res.Stderr), err)
	}
	return nonEmptyLines(res.Stdout), nil
}

func (p *JjProvider) ValidateBranchName(ctx context.Context, name string) (string, error) {
	return validateBookmarkName(name), nil
}

// validateBookmarkName rejects only names jj can never accept; jj is
// otherwise permissive about bookmark names.
func validateBookmarkName(name string) string {
	switch {
	case name == "":
		return "Bookmark name cannot be empty"
	case strings.ContainsRune(name, 0):
		return "Bookmark name cannot contain null character"
	case strings.HasPrefix(name, "-"):
		return "Bookmark name cannot start with '-'"
	}
	return ""
}

var _ Provider = (*JjProvider)(nil)
