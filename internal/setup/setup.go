package setup

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/offshoot-dev/offshoot/internal/config"
	"github.com/offshoot-dev/offshoot/internal/errors"
)

// Action is the outcome of resolving a conflict.
type Action int

const (
	// Proceed means the target path is now free.
	Proceed Action = iota
	// Skip means the existing target stays and the entry is not applied.
	Skip
	// Abort means setup must stop.
	Abort
)

func (a Action) String() string {
	switch a {
	case Proceed:
		return "proceed"
	case Skip:
		return "skip"
	case Abort:
		return "abort"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// CreateDirectory creates target and its parents. Anything already at
// target, of any type, is left alone.
func CreateDirectory(target string) error {
	if CheckConflict(target) {
		return nil
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", target, err)
	}
	return nil
}

// CreateSymlink creates a symlink at target pointing at source.
func CreateSymlink(source, target string) error {
	if err := ensureParent(target); err != nil {
		return errors.SymlinkFailed(source, target, err)
	}
	return symlink(source, target)
}

// CopyFile copies source to target. Directories are copied recursively and
// file modes are kept.
func CopyFile(source, target string) error {
	if err := ensureParent(target); err != nil {
		return errors.CopyFailed(source, target, err)
	}

	info, err := os.Stat(source)
	if err != nil {
		return errors.CopyFailed(source, target, err)
	}
	if info.IsDir() {
		return copyDir(source, target)
	}
	if err := copyRegular(source, target, info.Mode().Perm()); err != nil {
		return errors.CopyFailed(source, target, err)
	}
	return nil
}

func copyDir(source, target string) error {
	return filepath.WalkDir(source, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return errors.CopyFailed(path, target, walkErr)
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return errors.CopyFailed(path, target, err)
		}
		dst := filepath.Join(target, rel)

		info, err := os.Stat(path)
		if err != nil {
			return errors.CopyFailed(path, dst, err)
		}

		if info.IsDir() {
			if err := os.MkdirAll(dst, info.Mode().Perm()|0700); err != nil {
				return errors.CopyFailed(path, dst, err)
			}
			return nil
		}
		if err := copyRegular(path, dst, info.Mode().Perm()); err != nil {
			return errors.CopyFailed(path, dst, err)
		}
		return nil
	})
}

func copyRegular(source, target string, perm fs.FileMode) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chmod(target, perm)
}

func ensureParent(target string) error {
	return os.MkdirAll(filepath.Dir(target), 0755)
}

// CheckConflict reports whether anything exists at target. A dangling
// symlink counts.
func CheckConflict(target string) bool {
	_, err := os.Lstat(target)
	return err == nil
}

// ResolveConflict applies mode to an existing target. Overwrite and Backup
// free the path and return Proceed. Backup replaces an older backup file but
// refuses to touch a backup directory.
func ResolveConflict(target string, mode config.ConflictMode) (Action, error) {
	switch mode {
	case config.Abort:
		return Abort, nil
	case config.Skip:
		return Skip, nil
	case config.Overwrite:
		if err := removeExisting(target); err != nil {
			return Abort, fmt.Errorf("failed to remove %s: %w", target, err)
		}
		return Proceed, nil
	case config.Backup:
		backup := BackupPath(target)
		if info, err := os.Lstat(backup); err == nil && info.IsDir() {
			return Abort, fmt.Errorf("failed to back up %s: %s already exists and is a directory", target, backup)
		}
		if err := os.Rename(target, backup); err != nil {
			return Abort, fmt.Errorf("failed to back up %s: %w", target, err)
		}
		return Proceed, nil
	}
	return Abort, fmt.Errorf("unknown conflict mode %v", mode)
}

// removeExisting deletes a file or symlink, or a directory tree. The link
// itself is removed, never what it points at.
func removeExisting(path string) error {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(path)
	}
	return os.Remove(path)
}

// BackupPath returns where Backup moves target: file.txt becomes
// file.txt.bak and Makefile becomes Makefile.bak.
func BackupPath(target string) string {
	return target + ".bak"
}
