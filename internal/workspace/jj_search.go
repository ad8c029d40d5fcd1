package workspace

import (
	"os"
	"path/filepath"
)

// canonicalize returns an absolute path with symlinks resolved.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// findWorkspaceDir locates the directory of a jj workspace when jj cannot
// report it. The search is bounded to the places workspaces are usually
// created: inside the root, next to it, and one level further up.
func findWorkspaceDir(root, name string) (string, bool) {
	store, err := canonicalize(filepath.Join(root, ".jj", "repo"))
	if err != nil {
		return "", false
	}

	belongs := func(candidate string) bool {
		got, ok := resolveRepoStore(candidate)
		return ok && got == store
	}

	direct := filepath.Join(root, name)
	if belongs(direct) {
		return direct, true
	}

	parent := filepath.Dir(root)
	if parent == root {
		return "", false
	}

	sibling := filepath.Join(parent, name)
	if belongs(sibling) {
		return sibling, true
	}

	for _, dir := range childDirs(parent) {
		if filepath.Base(dir) == name && belongs(dir) {
			return dir, true
		}
		if nested := filepath.Join(dir, name); belongs(nested) {
			return nested, true
		}
	}

	grandparent := filepath.Dir(parent)
	if grandparent == parent {
		return "", false
	}
	for _, dir := range childDirs(grandparent) {
		if nested := filepath.Join(dir, name); belongs(nested) {
			return nested, true
		}
	}

	return "", false
}

func childDirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, filepath.Join(dir, e.Name()))
		}
	}
	return dirs
}
