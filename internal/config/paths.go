package config

import (
	"fmt"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// ResolveIn joins a configured relative path onto root. Symlinks in the
// parent components are resolved inside root, so the result cannot escape
// it. The final component is kept as written: it may itself be a symlink
// that setup must see, not follow.
func ResolveIn(root, rel string) (string, error) {
	if p := pathProblem(rel); p != "" {
		return "", fmt.Errorf("%s", p)
	}

	clean := filepath.Clean(rel)
	if clean == "." {
		return filepath.Clean(root), nil
	}

	parent, err := securejoin.SecureJoin(root, filepath.Dir(clean))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s under %s: %w", rel, root, err)
	}
	return filepath.Join(parent, filepath.Base(clean)), nil
}
