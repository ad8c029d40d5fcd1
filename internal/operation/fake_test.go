package operation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/workspace"
)

// fakeProvider backs workspaces with plain directories.
type fakeProvider struct {
	root       string
	workspaces []workspace.Info
	status     map[string]workspace.Status
	unpushed   map[string]workspace.Unpushed

	// seed is written into every new workspace, keyed by relative path.
	seed       map[string]string
	addErr     error
	removeErr  error
	badBranch  string
	tracked    []string
	// trackedCalls counts ListTrackedFiles calls.
	trackedCalls int
	added      []string
	removed    []string
	removeArgs []bool
	checked    []string
}

func newFakeProvider(root string) *fakeProvider {
	return &fakeProvider{
		root:       root,
		workspaces: []workspace.Info{{Path: root, Branch: "main", IsMain: true}},
		status:     map[string]workspace.Status{},
		unpushed:   map[string]workspace.Unpushed{},
	}
}

// addWorkspace creates a linked workspace directory next to the root.
func (f *fakeProvider) addWorkspace(name, branch string) string {
	path := filepath.Join(filepath.Dir(f.root), name)
	if err := os.MkdirAll(path, 0755); err != nil {
		panic(err)
	}
	f.workspaces = append(f.workspaces, workspace.Info{Path: path, Branch: branch})
	return path
}

func (f *fakeProvider) Kind() workspace.Kind { return workspace.Git }

func (f *fakeProvider) IsInsideRepo(ctx context.Context) bool { return true }

func (f *fakeProvider) RepositoryRoot(ctx context.Context) (string, error) { return f.root, nil }

func (f *fakeProvider) MainWorkspacePathFor(ctx context.Context, root string) (string, error) {
	return f.root, nil
}

func (f *fakeProvider) Add(ctx context.Context, opts workspace.AddOptions, path string) error {
	f.added = append(f.added, path)
	if err := os.MkdirAll(path, 0755); err != nil {
		return err
	}
	for rel, content := range f.seed {
		target := filepath.Join(path, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(target, []byte(content), 0644); err != nil {
			return err
		}
	}
	if f.addErr != nil {
		return f.addErr
	}
	f.workspaces = append(f.workspaces, workspace.Info{Path: path, Branch: opts.BranchName()})
	return nil
}

func (f *fakeProvider) Remove(ctx context.Context, path string, force bool) {
	f.removed = append(f.removed, path)
	f.removeArgs = append(f.removeArgs, force)
	_ = os.RemoveAll(path)
}

func (f *fakeProvider) RemoveChecked(ctx context.Context, path string, force bool) error {
	f.checked = append(f.checked, path)
	f.removeArgs = append(f.removeArgs, force)
	if f.removeErr != nil {
		return f.removeErr
	}
	return os.RemoveAll(path)
}

func (f *fakeProvider) List(ctx context.Context) ([]workspace.Info, error) {
	return f.workspaces, nil
}

func (f *fakeProvider) Status(ctx context.Context, path string) (workspace.Status, error) {
	return f.status[path], nil
}

func (f *fakeProvider) Unpushed(ctx context.Context, path string) (workspace.Unpushed, error) {
	return f.unpushed[path], nil
}

func (f *fakeProvider) Branches(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeProvider) RemoteBranches(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeProvider) LogOneline(ctx context.Context, rev string, limit int) ([]string, error) {
	return nil, nil
}

func (f *fakeProvider) ListTrackedFiles(ctx context.Context, root string) ([]string, error) {
	f.trackedCalls++
	return f.tracked, nil
}

func (f *fakeProvider) ValidateBranchName(ctx context.Context, name string) (string, error) {
	if name == f.badBranch {
		return "not a valid branch name", nil
	}
	return "", nil
}

// scriptedPrompter answers prompts from fixed values and counts them.
type scriptedPrompter struct {
	interactive bool
	choices     []ConflictChoice
	confirm     bool
	conflicts   []string
	confirms    int
}

func (s *scriptedPrompter) Interactive() bool { return s.interactive }

func (s *scriptedPrompter) PromptConflict(target string) (ConflictChoice, error) {
	s.conflicts = append(s.conflicts, target)
	if len(s.choices) == 0 {
		return ConflictChoice{}, fmt.Errorf("unexpected prompt for %s", target)
	}
	c := s.choices[0]
	s.choices = s.choices[1:]
	return c, nil
}

func (s *scriptedPrompter) ConfirmRemove(warnings []SafetyWarning) (bool, error) {
	s.confirms++
	if !s.interactive {
		return false, errors.NonInteractive("")
	}
	return s.confirm, nil
}

func modePtr(m config.ConflictMode) *config.ConflictMode {
	return &m
}
