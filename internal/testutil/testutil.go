package testutil

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/output"
	"github.com/offshoot-dev/offshoot/internal/system"
	"github.com/offshoot-dev/offshoot/internal/trust"
)

// TestEnv is an isolated repository directory with its own trust store and
// global config directory.
type TestEnv struct {
	T *testing.T
	// Root is the canonical repository root.
	Root      string
	TrustDir  string
	GlobalDir string
	Exec      *system.MockExecutor
	Stdout    *bytes.Buffer
	Stderr    *bytes.Buffer
	Printer   *output.Printer
}

// NewTestEnv creates the directories and a mock executor. No VCS state is
// created.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	tmp := t.TempDir()
	// t.TempDir may sit behind a symlink (macOS /var).
	if resolved, err := filepath.EvalSymlinks(tmp); err == nil {
		tmp = resolved
	}

	env := &TestEnv{
		T:         t,
		Root:      filepath.Join(tmp, "repo"),
		TrustDir:  filepath.Join(tmp, "trusted"),
		GlobalDir: filepath.Join(tmp, "global"),
		Exec:      system.NewMockExecutor(),
		Stdout:    &bytes.Buffer{},
		Stderr:    &bytes.Buffer{},
	}
	env.Printer = output.New(env.Stdout, env.Stderr)

	for _, dir := range []string{env.Root, env.GlobalDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	return env
}

// Store returns the trust store of the environment.
func (e *TestEnv) Store() *trust.Store {
	return trust.NewStore(e.TrustDir)
}

// Path returns rel joined onto the repository root.
func (e *TestEnv) Path(rel string) string {
	return filepath.Join(e.Root, filepath.FromSlash(rel))
}

// WriteFile writes content at rel under the repository root.
func (e *TestEnv) WriteFile(rel, content string) string {
	e.T.Helper()
	path := e.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.T.Fatalf("failed to create parent of %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.T.Fatalf("failed to write %s: %v", rel, err)
	}
	return path
}

// WriteConfig writes .offshoot/config.yaml and returns it parsed.
func (e *TestEnv) WriteConfig(yaml string) *config.Config {
	e.T.Helper()
	e.WriteFile(filepath.Join(config.DirName, "config.yaml"), yaml)
	cfg, err := config.Load(e.Root)
	if err != nil {
		e.T.Fatalf("config does not load: %v", err)
	}
	return cfg
}

// TrustConfig records the current repository hooks as trusted.
func (e *TestEnv) TrustConfig() {
	e.T.Helper()
	cfg, err := config.Load(e.Root)
	if err != nil {
		e.T.Fatalf("config does not load: %v", err)
	}
	if err := e.Store().Trust(e.Root, cfg.Hooks); err != nil {
		e.T.Fatalf("Trust() error: %v", err)
	}
}

// RequireGit skips the test when git is not installed.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// RequireJJ skips the test when jj is not installed.
func RequireJJ(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("jj"); err != nil {
		t.Skip("jj not available")
	}
}

// Run runs a command in dir and fails the test on error.
func Run(t *testing.T, dir, name string, args ...string) string {
	t.Helper()
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=offshoot", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=offshoot", "GIT_COMMITTER_EMAIL=test@example.com",
		"JJ_USER=offshoot", "JJ_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("%s %s: %v\n%s", name, strings.Join(args, " "), err, out)
	}
	return string(out)
}

// InitGitRepo turns the environment root into a git repository with one
// commit on main.
func (e *TestEnv) InitGitRepo() {
	e.T.Helper()
	RequireGit(e.T)
	Run(e.T, e.Root, "git", "init", "-q", "-b", "main")
	e.WriteFile("README.md", "# test\n")
	Run(e.T, e.Root, "git", "add", "README.md")
	Run(e.T, e.Root, "git", "commit", "-q", "-m", "initial")
}

// InitJJRepo turns the environment root into a jj repository. Whether it is
// colocated depends on the installed jj defaults.
func (e *TestEnv) InitJJRepo() {
	e.T.Helper()
	RequireJJ(e.T)
	Run(e.T, e.Root, "jj", "git", "init")
}
