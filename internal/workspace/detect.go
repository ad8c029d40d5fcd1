package workspace

import (
	"context"
	"os"
	"path/filepath"

	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/logging"
	"github.com/offshoot-dev/offshoot/internal/system"
)

// Detect returns the repository kind for the current directory.
func Detect(ctx context.Context, exec system.CommandExecutor) (Kind, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return 0, err
	}
	return DetectAt(ctx, exec, cwd)
}

// DetectAt returns the repository kind for path. Marker directories are
// searched upward first; jj is checked before git. When no marker is found
// the VCS binaries are asked directly.
func DetectAt(ctx context.Context, exec system.CommandExecutor, path string) (Kind, error) {
	if kind, root, ok := findMarkers(path); ok {
		logging.Debug("detected repository", "kind", kind, "root", root)
		return kind, nil
	}

	if exec == nil {
		exec = system.DefaultExecutor()
	}

	if succeeds(ctx, exec, path, "jj", "root") {
		if succeeds(ctx, exec, path, "git", "rev-parse", "--git-dir") {
			return JjColocated, nil
		}
		return Jj, nil
	}
	if succeeds(ctx, exec, path, "git", "rev-parse", "--git-dir") {
		return Git, nil
	}

	return 0, errors.NotInRepo()
}

// findMarkers walks from start to the filesystem root looking for .jj (a
// directory) or .git (a directory or, in linked worktrees, a file).
func findMarkers(start string) (Kind, string, bool) {
	current, err := filepath.Abs(start)
	if err != nil {
		return 0, "", false
	}

	for {
		hasJj := isDir(filepath.Join(current, ".jj"))
		hasGit := exists(filepath.Join(current, ".git"))

		switch {
		case hasJj && hasGit:
			return JjColocated, current, true
		case hasJj:
			return Jj, current, true
		case hasGit:
			return Git, current, true
		}

		parent := filepath.Dir(current)
		if parent == current {
			return 0, "", false
		}
		current = parent
	}
}

func succeeds(ctx context.Context, exec system.CommandExecutor, dir, name string, args ...string) bool {
	_, err := run(ctx, exec, dir, name, args...)
	return err == nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
