package workspace

import (
	"context"
	"fmt"
	"strings"

	"github.com/offshoot-dev/offshoot/internal/system"
)

// Kind identifies the version control system backing a repository.
type Kind int

const (
	Git Kind = iota
	Jj
	// JjColocated is a jj repository that also keeps a .git directory.
	JjColocated
)

func (k Kind) String() string {
	switch k {
	case Git:
		return "git"
	case Jj:
		return "jj"
	case JjColocated:
		return "jj (colocated)"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsJj reports whether jj semantics govern workspace operations.
func (k Kind) IsJj() bool {
	return k == Jj || k == JjColocated
}

// Info describes one live workspace. It is produced fresh by every List call.
type Info struct {
	Path string
	// Head is the VCS-specific revision id of the workspace head.
	Head string
	// Branch is empty for a detached head or a jj change without bookmarks.
	Branch   string
	IsMain   bool
	IsLocked bool
	// Name is the jj workspace name; empty for git.
	Name string
}

// Status summarizes uncommitted changes in a workspace.
type Status struct {
	HasUncommittedChanges bool
	Modified              int
	Deleted               int
	Untracked             int
}

// Unpushed counts commits reachable from the workspace head but absent from
// its upstream or any remote-tracking ref.
type Unpushed struct {
	HasUnpushed bool
	Count       int
}

// AddOptions maps the add command flags onto workspace creation.
type AddOptions struct {
	Force          bool
	Detach         bool
	NewBranch      string
	ForceNewBranch string
	NoCheckout     bool
	Lock           bool
	Track          bool
	NoTrack        bool
	GuessRemote    bool
	NoGuessRemote  bool
	Quiet          bool
	Commitish      string
}

// BranchName returns the branch the new workspace will be on, as exposed to
// hooks: the new branch, else the commitish, else the force-created branch.
// A leading refs/heads/ is stripped.
func (o AddOptions) BranchName() string {
	branch := o.NewBranch
	if branch == "" {
		branch = o.Commitish
	}
	if branch == "" {
		branch = o.ForceNewBranch
	}
	return strings.TrimPrefix(branch, "refs/heads/")
}

// requestedBookmark returns the bookmark jj should create after workspace add.
func (o AddOptions) requestedBookmark() string {
	if o.NewBranch != "" {
		return o.NewBranch
	}
	return o.ForceNewBranch
}

// Provider is the capability set shared by the git and jj implementations.
type Provider interface {
	// Kind returns the detected repository kind.
	Kind() Kind

	IsInsideRepo(ctx context.Context) bool

	// RepositoryRoot returns the main repository root. For jj this is the
	// default workspace root rather than the current workspace root.
	RepositoryRoot(ctx context.Context) (string, error)

	// MainWorkspacePathFor returns the canonical main workspace path of the
	// repository containing root.
	MainWorkspacePathFor(ctx context.Context, root string) (string, error)

	Add(ctx context.Context, opts AddOptions, path string) error

	// Remove is the best-effort variant used for rollback. Failures are
	// logged and never returned.
	Remove(ctx context.Context, path string, force bool)

	// RemoveChecked is the user-initiated variant and propagates failures.
	RemoveChecked(ctx context.Context, path string, force bool) error

	List(ctx context.Context) ([]Info, error)
	Status(ctx context.Context, path string) (Status, error)
	Unpushed(ctx context.Context, path string) (Unpushed, error)
	Branches(ctx context.Context) ([]string, error)
	RemoteBranches(ctx context.Context) ([]string, error)
	LogOneline(ctx context.Context, rev string, limit int) ([]string, error)

	// ListTrackedFiles returns the files under version control in root as
	// slash-separated paths relative to root.
	ListTrackedFiles(ctx context.Context, root string) ([]string, error)

	// ValidateBranchName returns an empty reason for a valid name.
	ValidateBranchName(ctx context.Context, name string) (string, error)
}

// New returns the provider for kind. dir is the directory commands run from.
func New(kind Kind, dir string, exec system.CommandExecutor) Provider {
	if exec == nil {
		exec = system.DefaultExecutor()
	}
	switch kind {
	case Git:
		return &GitProvider{dir: dir, exec: exec}
	case Jj, JjColocated:
		return &JjProvider{kind: kind, dir: dir, exec: exec}
	}
	panic(fmt.Sprintf("workspace: unknown kind %d", int(kind)))
}

// run executes a VCS command and trims nothing; callers parse the output.
func run(ctx context.Context, exec system.CommandExecutor, dir, name string, args ...string) (system.Result, error) {
	return exec.Execute(ctx, system.Cmd{Name: name, Args: args, Dir: dir})
}

// nonEmptyLines splits output into lines, dropping blank ones.
func nonEmptyLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
