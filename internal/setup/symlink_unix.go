//go:build !windows

package setup

import (
	"os"

	"github.com/offshoot-dev/offshoot/internal/errors"
)

func symlink(source, target string) error {
	if err := os.Symlink(source, target); err != nil {
		return errors.SymlinkFailed(source, target, err)
	}
	return nil
}
