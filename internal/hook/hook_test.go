package hook

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/output"
	"github.com/offshoot-dev/offshoot/internal/system"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "''"},
		{"feature/login", "'feature/login'"},
		{"it's", `'it'\''s'`},
		{"$(whoami)", "'$(whoami)'"},
		{"a b", "'a b'"},
	}

	for _, tt := range tests {
		if got := ShellQuote(tt.in); got != tt.want {
			t.Errorf("ShellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpand(t *testing.T) {
	env := Env{
		WorktreePath: "/src/app-feature",
		WorktreeName: "app-feature",
		Branch:       "feature/x",
		RepoRoot:     "/src/app",
	}

	tests := []struct {
		name     string
		template string
		env      Env
		want     string
	}{
		{
			name:     "all variables",
			template: "cd {{worktree_path}} && echo {{worktree_name}} {{branch}} {{repo_root}}",
			env:      env,
			want:     "cd '/src/app-feature' && echo 'app-feature' 'feature/x' '/src/app'",
		},
		{
			name:     "repeated variable",
			template: "{{branch}}:{{branch}}",
			env:      env,
			want:     "'feature/x':'feature/x'",
		},
		{
			name:     "no variables",
			template: "npm install",
			env:      env,
			want:     "npm install",
		},
		{
			name:     "unknown variable untouched",
			template: "echo {{user}}",
			env:      env,
			want:     "echo {{user}}",
		},
		{
			name:     "empty branch",
			template: "echo [{{branch}}]",
			env:      Env{WorktreePath: "/w"},
			want:     "echo []",
		},
		{
			name:     "injection attempt stays quoted",
			template: "git log {{branch}}",
			env:      Env{Branch: "x'; rm -rf ~; echo '"},
			want:     `git log 'x'\''; rm -rf ~; echo '\'''`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expand(tt.template, tt.env); got != tt.want {
				t.Errorf("Expand() = %q, want %q", got, tt.want)
			}
		})
	}
}

func newTestExecutor(mock *system.MockExecutor) (*Executor, *bytes.Buffer) {
	var out bytes.Buffer
	return NewExecutor(mock, output.New(&out, &out)), &out
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hooks are not supported on Windows")
	}
}

func TestRun_InOrder(t *testing.T) {
	skipOnWindows(t)

	mock := system.NewMockExecutor()
	e, out := newTestExecutor(mock)

	phase := config.Phase{Name: config.PhasePostAdd, Entries: []config.HookEntry{
		{Command: "npm install", Description: "Install dependencies"},
		{Command: "echo {{branch}}"},
	}}

	if err := e.Run(context.Background(), phase, Env{Branch: "main"}, "/w"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(mock.Commands) != 2 {
		t.Fatalf("ran %d commands, want 2", len(mock.Commands))
	}
	first, second := mock.Commands[0], mock.Commands[1]
	if first.Name != "sh" || first.Args[0] != "-c" || first.Args[1] != "npm install" {
		t.Errorf("first command = %v", first)
	}
	if first.Dir != "/w" {
		t.Errorf("Dir = %q, want /w", first.Dir)
	}
	if second.Args[1] != "echo 'main'" {
		t.Errorf("second command = %q, want expanded branch", second.Args[1])
	}

	if !strings.Contains(out.String(), "Running post_add hook: Install dependencies") {
		t.Errorf("output missing description:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Running post_add hook: echo {{branch}}") {
		t.Errorf("output should fall back to the command:\n%s", out.String())
	}
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	skipOnWindows(t)

	mock := system.NewMockExecutor()
	mock.AddFailure("sh -c false", 3, "")
	e, _ := newTestExecutor(mock)

	phase := config.Phase{Name: config.PhasePreAdd, Entries: []config.HookEntry{
		{Command: "false"},
		{Command: "echo never"},
	}}

	err := e.Run(context.Background(), phase, Env{}, "/w")
	if !errors.Is(err, errors.KindHookFailed) {
		t.Fatalf("Run() error = %v, want HookFailed", err)
	}

	var oe *errors.OffshootError
	if !errors.As(err, &oe) || oe.HookExitCode != 3 {
		t.Errorf("HookExitCode = %v, want 3", oe)
	}
	if len(mock.Commands) != 1 {
		t.Errorf("ran %d commands, want 1", len(mock.Commands))
	}
}

func TestRun_SpawnFailure(t *testing.T) {
	skipOnWindows(t)

	mock := system.NewMockExecutor()
	mock.AttachedErr = fmt.Errorf("exec: \"sh\": executable file not found")
	e, _ := newTestExecutor(mock)

	phase := config.Phase{Name: config.PhasePreRemove, Entries: []config.HookEntry{{Command: "true"}}}

	err := e.Run(context.Background(), phase, Env{}, "/w")
	if !errors.Is(err, errors.KindHookExecutionFailed) {
		t.Fatalf("Run() error = %v, want HookExecutionFailed", err)
	}
}

func TestRun_Empty(t *testing.T) {
	mock := system.NewMockExecutor()
	e, out := newTestExecutor(mock)

	if err := e.Run(context.Background(), config.Phase{Name: config.PhasePostRemove}, Env{}, "/w"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(mock.Commands) != 0 || out.Len() != 0 {
		t.Error("empty phase should do nothing")
	}
}

func TestDryRun(t *testing.T) {
	mock := system.NewMockExecutor()
	e, out := newTestExecutor(mock)

	phase := config.Phase{Name: config.PhasePostAdd, Entries: []config.HookEntry{
		{Command: "echo {{worktree_name}}"},
	}}
	e.DryRun(phase, Env{WorktreeName: "app-x"}, "/w")

	if len(mock.Commands) != 0 {
		t.Error("DryRun should not execute anything")
	}
	got := out.String()
	if !strings.Contains(got, "[dry-run]") || !strings.Contains(got, "post_add") {
		t.Errorf("DryRun output = %q", got)
	}
	if !strings.Contains(got, "app-x") {
		t.Errorf("DryRun output should show the expanded command: %q", got)
	}
}

func TestDisplay(t *testing.T) {
	var buf bytes.Buffer
	p := output.New(&buf, &buf)

	Display(p, config.Hooks{
		PostAdd:   []config.HookEntry{{Command: "make deps", Description: "Fetch deps"}},
		PreRemove: []config.HookEntry{{Command: "make clean"}},
	})

	got := buf.String()
	for _, want := range []string{"post_add:", "$ make deps", "Fetch deps", "pre_remove:", "$ make clean"} {
		if !strings.Contains(got, want) {
			t.Errorf("Display output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "pre_add:") {
		t.Errorf("Display should skip empty phases:\n%s", got)
	}
}

func TestRun_RealShell(t *testing.T) {
	skipOnWindows(t)
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	e := NewExecutor(system.DefaultExecutor(), output.Discard())

	phase := config.Phase{Name: config.PhasePostAdd, Entries: []config.HookEntry{
		{Command: "printf %s {{branch}} > marker"},
	}}
	if err := e.Run(context.Background(), phase, Env{Branch: "it's $HOME"}, dir); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "marker"))
	if err != nil {
		t.Fatalf("marker not written: %v", err)
	}
	if string(data) != "it's $HOME" {
		t.Errorf("marker = %q, want the literal branch", data)
	}

	failing := config.Phase{Name: config.PhasePreAdd, Entries: []config.HookEntry{{Command: "exit 7"}}}
	err = e.Run(context.Background(), failing, Env{}, dir)
	var oe *errors.OffshootError
	if !errors.As(err, &oe) || oe.HookExitCode != 7 {
		t.Errorf("Run() error = %v, want exit code 7", err)
	}
}
