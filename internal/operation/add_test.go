package operation

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/offshoot-dev/offshoot/internal/audit"
	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/testutil"
)

func newTestDeps(t *testing.T) (*testutil.TestEnv, *fakeProvider, *Deps) {
	t.Helper()
	env := testutil.NewTestEnv(t)
	fp := newFakeProvider(env.Root)
	deps := &Deps{
		Provider:        fp,
		Exec:            env.Exec,
		Printer:         env.Printer,
		Trust:           env.Store(),
		Audit:           audit.NewLogger(filepath.Join(filepath.Dir(env.Root), "audit")),
		GlobalConfigDir: env.GlobalDir,
		Cwd:             env.Root,
	}
	return env, fp, deps
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlinks and hooks need a POSIX platform")
	}
}

func sibling(env *testutil.TestEnv, name string) string {
	return filepath.Join(filepath.Dir(env.Root), name)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestAdd_SetupEntries(t *testing.T) {
	skipOnWindows(t)
	env, fp, deps := newTestDeps(t)

	env.WriteFile(".env", "SECRET=1")
	env.WriteFile("config/local.json", "{}")
	env.WriteConfig(`
mkdir:
  - path: tmp/cache
link:
  - source: .env
copy:
  - source: config/local.json
    target: config/app.json
`)

	res, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	want := sibling(env, "feature")
	if res.Path != want {
		t.Errorf("Path = %q, want %q", res.Path, want)
	}
	if len(fp.added) != 1 || fp.added[0] != want {
		t.Errorf("provider.Add calls = %v", fp.added)
	}

	if info, err := os.Stat(filepath.Join(want, "tmp", "cache")); err != nil || !info.IsDir() {
		t.Errorf("mkdir entry not created: %v", err)
	}
	link, err := os.Readlink(filepath.Join(want, ".env"))
	if err != nil {
		t.Fatalf(".env is not a symlink: %v", err)
	}
	if link != env.Path(".env") {
		t.Errorf("symlink points at %q, want %q", link, env.Path(".env"))
	}
	if got := readFile(t, filepath.Join(want, "config", "app.json")); got != "{}" {
		t.Errorf("copied content = %q", got)
	}
	if len(fp.removed) != 0 {
		t.Errorf("successful add should not roll back: %v", fp.removed)
	}
	if !strings.Contains(env.Stdout.String(), "Worktree created") {
		t.Errorf("stdout = %q", env.Stdout.String())
	}
}

func TestAdd_SourceNotFound(t *testing.T) {
	env, fp, deps := newTestDeps(t)
	env.WriteConfig("copy:\n  - source: missing.txt\n")

	_, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature"})
	if !errors.Is(err, errors.KindSourceNotFound) {
		t.Fatalf("Add() error = %v, want SourceNotFound", err)
	}
	if len(fp.added) != 0 {
		t.Error("workspace must not be created when a source is missing")
	}
}

func TestAdd_PatternLinks(t *testing.T) {
	skipOnWindows(t)
	env, fp, deps := newTestDeps(t)

	env.WriteFile("secrets/api.env", "API=1")
	env.WriteFile("secrets/db.env", "DB=1")
	env.WriteFile("secrets/readme.md", "docs")
	env.WriteConfig(`
link:
  - source: "secrets/*.env"
  - source: "nothing/*.here"
`)

	res, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	for _, rel := range []string{"secrets/api.env", "secrets/db.env"} {
		link, err := os.Readlink(filepath.Join(res.Path, rel))
		if err != nil {
			t.Errorf("%s is not a symlink: %v", rel, err)
			continue
		}
		if link != env.Path(rel) {
			t.Errorf("%s points at %q, want %q", rel, link, env.Path(rel))
		}
	}
	if _, err := os.Lstat(filepath.Join(res.Path, "secrets", "readme.md")); !os.IsNotExist(err) {
		t.Errorf("non-matching file was linked: %v", err)
	}
	if fp.trackedCalls != 0 {
		t.Errorf("tracked files listed %d times without ignore_tracked", fp.trackedCalls)
	}
}

func TestAdd_PatternLinksIgnoreTracked(t *testing.T) {
	skipOnWindows(t)
	env, fp, deps := newTestDeps(t)

	env.WriteFile("config/app.local", "tracked")
	env.WriteFile("config/db.local", "untracked")
	env.WriteFile("config/cache.local", "untracked")
	fp.tracked = []string{"config/app.local", "README.md"}
	env.WriteConfig(`
link:
  - source: "config/*.local"
    ignore_tracked: true
  - source: "config/c*.local"
    ignore_tracked: true
`)

	res, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature", OnConflict: modePtr(config.Skip)})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if _, err := os.Lstat(filepath.Join(res.Path, "config", "app.local")); !os.IsNotExist(err) {
		t.Errorf("tracked file was linked: %v", err)
	}
	for _, rel := range []string{"config/db.local", "config/cache.local"} {
		if _, err := os.Readlink(filepath.Join(res.Path, rel)); err != nil {
			t.Errorf("%s should be linked: %v", rel, err)
		}
	}
	if fp.trackedCalls != 1 {
		t.Errorf("tracked files listed %d times, want 1", fp.trackedCalls)
	}
}

func TestAdd_RollbackOnAbort(t *testing.T) {
	skipOnWindows(t)
	env, fp, deps := newTestDeps(t)

	env.WriteFile(".env", "SECRET=1")
	env.WriteConfig("link:\n  - source: .env\n    on_conflict: abort\n")
	fp.seed = map[string]string{".env": "tracked"}

	_, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature"})
	if !errors.Is(err, errors.KindAborted) {
		t.Fatalf("Add() error = %v, want Aborted", err)
	}
	if errors.GetExitCode(err) != 0 {
		t.Errorf("exit code = %d, want 0", errors.GetExitCode(err))
	}

	path := sibling(env, "feature")
	if len(fp.removed) != 1 || fp.removed[0] != path || !fp.removeArgs[0] {
		t.Errorf("rollback = %v (force %v), want forced removal of %s", fp.removed, fp.removeArgs, path)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("workspace directory should be gone after rollback")
	}
	if !strings.Contains(env.Stderr.String(), "rolling back") {
		t.Errorf("stderr = %q", env.Stderr.String())
	}
}

func TestAdd_RollbackOnProviderFailure(t *testing.T) {
	_, fp, deps := newTestDeps(t)
	fp.addErr = errors.VcsCommandFailed("jj bookmark create x", "boom", nil)

	_, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature"})
	if !errors.Is(err, errors.KindVcsCommandFailed) {
		t.Fatalf("Add() error = %v, want the provider error", err)
	}
	if len(fp.removed) != 1 {
		t.Errorf("a half-created workspace should be rolled back, removed = %v", fp.removed)
	}
}

func TestAdd_ProviderFailureKeepsExistingDirectory(t *testing.T) {
	env, fp, deps := newTestDeps(t)
	path := sibling(env, "feature")
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatal(err)
	}
	fp.addErr = errors.VcsCommandFailed("git worktree add", "already exists", nil)

	if _, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: path}); err == nil {
		t.Fatal("Add() should fail")
	}
	if len(fp.removed) != 0 {
		t.Errorf("a directory that existed before add must not be removed: %v", fp.removed)
	}
}

func TestAdd_ConflictPrecedence(t *testing.T) {
	skipOnWindows(t)

	tests := []struct {
		name     string
		override *config.ConflictMode
		// wantNotes is "kept" or "backup".
		wantNotes string
	}{
		{name: "entry and default", override: nil, wantNotes: "kept"},
		{name: "invocation override", override: modePtr(config.Backup), wantNotes: "backup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, fp, deps := newTestDeps(t)
			env.WriteFile(".env", "SECRET=1")
			env.WriteFile("notes.txt", "fresh")
			env.WriteConfig(`
options:
  on_conflict: skip
link:
  - source: .env
    on_conflict: overwrite
copy:
  - source: notes.txt
`)
			fp.seed = map[string]string{".env": "old", "notes.txt": "existing"}

			_, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature", OnConflict: tt.override})
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			path := sibling(env, "feature")

			if _, err := os.Readlink(filepath.Join(path, ".env")); err != nil {
				t.Errorf(".env should be replaced by a symlink: %v", err)
			}

			notes := readFile(t, filepath.Join(path, "notes.txt"))
			switch tt.wantNotes {
			case "kept":
				if notes != "existing" {
					t.Errorf("notes.txt = %q, want the existing file kept", notes)
				}
			case "backup":
				if notes != "fresh" {
					t.Errorf("notes.txt = %q, want the copied file", notes)
				}
				if got := readFile(t, filepath.Join(path, "notes.txt.bak")); got != "existing" {
					t.Errorf("notes.txt.bak = %q", got)
				}
				if got := readFile(t, filepath.Join(path, ".env.bak")); got != "old" {
					t.Errorf(".env.bak = %q", got)
				}
			}
		})
	}
}

func TestAdd_PromptApplyToAll(t *testing.T) {
	env, fp, deps := newTestDeps(t)
	env.WriteFile("a.txt", "new a")
	env.WriteFile("b.txt", "new b")
	env.WriteConfig("copy:\n  - source: a.txt\n  - source: b.txt\n")
	fp.seed = map[string]string{"a.txt": "old a", "b.txt": "old b"}

	prompter := &scriptedPrompter{interactive: true, choices: []ConflictChoice{{Mode: config.Skip, ApplyToAll: true}}}
	deps.Prompter = prompter

	if _, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if len(prompter.conflicts) != 1 {
		t.Errorf("prompted %d times, want 1", len(prompter.conflicts))
	}
	path := sibling(env, "feature")
	for _, name := range []string{"a.txt", "b.txt"} {
		if got := readFile(t, filepath.Join(path, name)); !strings.HasPrefix(got, "old") {
			t.Errorf("%s = %q, want it skipped", name, got)
		}
	}
	if strings.Count(env.Stdout.String(), "Skipped:") != 2 {
		t.Errorf("stdout = %q", env.Stdout.String())
	}
}

func TestAdd_NonInteractiveConflict(t *testing.T) {
	env, fp, deps := newTestDeps(t)
	env.WriteFile("a.txt", "new")
	env.WriteConfig("copy:\n  - source: a.txt\n")
	fp.seed = map[string]string{"a.txt": "old"}

	_, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature"})
	if !errors.Is(err, errors.KindNonInteractive) {
		t.Fatalf("Add() error = %v, want NonInteractive", err)
	}
	if len(fp.removed) != 1 {
		t.Error("a failed conflict prompt should roll back")
	}
}

const hookConfig = `
hooks:
  pre_add:
    - command: "exit 3"
  post_add:
    - command: "echo {{branch}}"
      description: Print branch
`

func TestAdd_UntrustedHooks(t *testing.T) {
	env, fp, deps := newTestDeps(t)
	env.WriteConfig(hookConfig)

	_, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature"})
	if !errors.Is(err, errors.KindHooksNotTrusted) {
		t.Fatalf("Add() error = %v, want HooksNotTrusted", err)
	}
	if len(fp.added) != 0 || len(env.Exec.Commands) != 0 {
		t.Error("nothing may run before hooks are trusted")
	}

	stderr := env.Stderr.String()
	for _, want := range []string{"exit 3", "offshoot trust", "--no-setup"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
}

func TestAdd_TrustedHooks(t *testing.T) {
	skipOnWindows(t)
	env, fp, deps := newTestDeps(t)
	env.WriteConfig(strings.Replace(hookConfig, "exit 3", "true", 1))
	env.TrustConfig()

	opts := AddOptions{Path: "../feature"}
	opts.Workspace.NewBranch = "refs/heads/feat"

	if _, err := NewAdder(deps).Add(context.Background(), opts); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	cmds := env.Exec.Commands
	if len(cmds) != 2 {
		t.Fatalf("ran %v, want pre_add and post_add", env.Exec.CommandLines())
	}
	if cmds[0].Dir != env.Root {
		t.Errorf("pre_add ran in %q, want repo root", cmds[0].Dir)
	}
	if cmds[1].Dir != sibling(env, "feature") {
		t.Errorf("post_add ran in %q, want workspace", cmds[1].Dir)
	}
	if cmds[1].Args[1] != "echo 'feat'" {
		t.Errorf("post_add command = %q", cmds[1].Args[1])
	}
	if len(fp.added) != 1 {
		t.Error("workspace should be created")
	}
}

func TestAdd_PreAddFailureAborts(t *testing.T) {
	skipOnWindows(t)
	env, fp, deps := newTestDeps(t)
	env.WriteConfig(hookConfig)
	env.TrustConfig()
	env.Exec.AddFailure("sh -c exit 3", 3, "")

	_, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature"})
	if !errors.Is(err, errors.KindHookFailed) {
		t.Fatalf("Add() error = %v, want HookFailed", err)
	}
	if len(fp.added) != 0 {
		t.Error("pre_add failure must prevent workspace creation")
	}
}

func TestAdd_PostAddFailureWarns(t *testing.T) {
	skipOnWindows(t)
	env, fp, deps := newTestDeps(t)
	env.WriteConfig(strings.Replace(hookConfig, "exit 3", "true", 1))
	env.TrustConfig()
	env.Exec.AddFailure("sh -c echo 'feat'", 9, "")

	opts := AddOptions{Path: "../feature"}
	opts.Workspace.NewBranch = "feat"

	res, err := NewAdder(deps).Add(context.Background(), opts)
	if err != nil {
		t.Fatalf("Add() error = %v, post_add failures are warnings", err)
	}
	if !res.PostAddFailed {
		t.Error("PostAddFailed should be set")
	}
	if len(fp.removed) != 0 {
		t.Error("post_add failure must not roll back")
	}
	if !strings.Contains(env.Stderr.String(), "post_add hook failed") {
		t.Errorf("stderr = %q", env.Stderr.String())
	}

	events, _ := deps.Audit.Events(env.Root)
	if got := eventTypes(events); strings.Join(got, ",") != "hook-failed,add" {
		t.Errorf("audit events = %v, want [hook-failed add]", got)
	}
}

func eventTypes(events []audit.Event) []string {
	var types []string
	for _, e := range events {
		types = append(types, string(e.Type))
	}
	return types
}

func TestAdd_DryRun(t *testing.T) {
	env, fp, deps := newTestDeps(t)
	env.WriteFile(".env", "x")
	env.WriteConfig("mkdir:\n  - path: tmp\nlink:\n  - source: .env\n")

	if _, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature", DryRun: true}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if len(fp.added) != 0 {
		t.Error("dry run must not create the workspace")
	}
	if _, err := os.Stat(sibling(env, "feature")); !os.IsNotExist(err) {
		t.Error("dry run must not touch the filesystem")
	}
	out := env.Stdout.String()
	for _, want := range []string{"[dry-run] Would run: git add", "Would create directory", "Would link"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestAdd_NoSetup(t *testing.T) {
	env, fp, deps := newTestDeps(t)
	env.WriteConfig(hookConfig + "copy:\n  - source: missing.txt\n")

	if _, err := NewAdder(deps).Add(context.Background(), AddOptions{Path: "../feature", NoSetup: true}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if len(fp.added) != 1 {
		t.Error("workspace should be created")
	}
	if len(env.Exec.Commands) != 0 {
		t.Errorf("--no-setup must not run hooks: %v", env.Exec.CommandLines())
	}
}

func TestAdd_PathResolution(t *testing.T) {
	tests := []struct {
		name     string
		repo     string
		global   string
		path     string
		branch   string
		want     string
		wantKind errors.Kind
	}{
		{name: "explicit relative", path: "../x", want: "x"},
		{name: "repo template", repo: "worktree:\n  path_template: \"../{{repository}}-{{branch}}\"\n", branch: "feat", want: "repo-feat"},
		{name: "template without variables appends branch", repo: "worktree:\n  path_template: \"../wt-\"\n", branch: "feat", want: "wt-feat"},
		{name: "global template", global: "[worktree]\npath_template = \"../g/{{branch}}\"\n", branch: "feat", want: "g/feat"},
		{name: "no path and no template", branch: "feat", wantKind: errors.KindPathRequired},
		{name: "no path and no branch", repo: "worktree:\n  path_template: \"../{{branch}}\"\n", wantKind: errors.KindPathRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, deps := newTestDeps(t)
			if tt.repo != "" {
				env.WriteConfig(tt.repo)
			}
			if tt.global != "" {
				if err := os.WriteFile(filepath.Join(env.GlobalDir, "config.toml"), []byte(tt.global), 0644); err != nil {
					t.Fatal(err)
				}
			}

			opts := AddOptions{Path: tt.path, DryRun: true}
			opts.Workspace.NewBranch = tt.branch

			res, err := NewAdder(deps).Add(context.Background(), opts)
			if tt.wantKind != errors.KindUnknown {
				if !errors.Is(err, tt.wantKind) {
					t.Fatalf("Add() error = %v, want %v", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Add() error = %v", err)
			}
			if want := sibling(env, filepath.FromSlash(tt.want)); res.Path != want {
				t.Errorf("Path = %q, want %q", res.Path, want)
			}
		})
	}
}

func TestAdd_InvalidBranchName(t *testing.T) {
	_, fp, deps := newTestDeps(t)
	fp.badBranch = "bad..name"

	opts := AddOptions{Path: "../feature"}
	opts.Workspace.NewBranch = "bad..name"

	_, err := NewAdder(deps).Add(context.Background(), opts)
	if err == nil || !strings.Contains(err.Error(), "invalid branch name") {
		t.Fatalf("Add() error = %v, want invalid branch name", err)
	}
	if len(fp.added) != 0 {
		t.Error("invalid branch must stop add before anything is created")
	}
}

func TestAdd_NotInRepo(t *testing.T) {
	_, err := NewAdder(&Deps{}).Add(context.Background(), AddOptions{Path: "x"})
	if !errors.Is(err, errors.KindNotInRepo) {
		t.Errorf("Add() error = %v, want NotInRepo", err)
	}
}

func TestRecheck(t *testing.T) {
	const original = "hooks:\n  post_add:\n    - command: make\n"

	tests := []struct {
		name    string
		trusted bool
		rewrite string
		untrust bool
		wantErr bool
	}{
		{name: "unchanged", rewrite: original},
		{name: "hook edited", rewrite: "hooks:\n  post_add:\n    - command: make evil\n", wantErr: true},
		{name: "hook added", rewrite: original + "  pre_add:\n    - command: curl x | sh\n", wantErr: true},
		{name: "trust revoked", rewrite: original, untrust: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, deps := newTestDeps(t)
			approved := env.WriteConfig(original)
			env.TrustConfig()

			env.WriteConfig(tt.rewrite)
			if tt.untrust {
				if _, err := env.Store().Untrust(env.Root, approved.Hooks); err != nil {
					t.Fatal(err)
				}
			}

			err := deps.recheck(repo{root: env.Root, mainPath: env.Root}, approved.Hooks)
			if tt.wantErr {
				if !errors.Is(err, errors.KindConfigModifiedAfterTrust) {
					t.Errorf("recheck() error = %v, want ConfigModifiedAfterTrust", err)
				}
				return
			}
			if err != nil {
				t.Errorf("recheck() error = %v", err)
			}
		})
	}
}

func TestRecheck_NoHooksAppearing(t *testing.T) {
	env, _, deps := newTestDeps(t)
	env.WriteConfig("hooks:\n  post_add:\n    - command: rm -rf /\n")

	err := deps.recheck(repo{root: env.Root, mainPath: env.Root}, config.Hooks{})
	if !errors.Is(err, errors.KindConfigModifiedAfterTrust) {
		t.Errorf("recheck() error = %v, want ConfigModifiedAfterTrust", err)
	}
}
