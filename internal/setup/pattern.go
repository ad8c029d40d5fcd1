package setup

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/gobwas/glob"
)

// vcsDirs are never matched or descended into.
var vcsDirs = map[string]bool{".git": true, ".jj": true}

// MatchPattern returns the paths under root matching pattern, relative to root
// and slash-separated, in lexical order. A * or ? never crosses a /, ** does.
// A matching directory is returned whole and its contents are not visited.
// Paths for which skip returns true are left out; skip may be nil.
func MatchPattern(root, pattern string, skip func(rel string) bool) ([]string, error) {
	g, err := glob.Compile(filepath.ToSlash(pattern), '/')
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	var matches []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if d.IsDir() && vcsDirs[d.Name()] {
			return filepath.SkipDir
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !g.Match(rel) || (skip != nil && skip(rel)) {
			return nil
		}

		matches = append(matches, rel)
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to match %s under %s: %w", pattern, root, err)
	}
	return matches, nil
}
