//go:build windows

package hook

import (
	"github.com/offshoot-dev/offshoot/internal/errors"
	"github.com/offshoot-dev/offshoot/internal/system"
)

func shellCommand(command, dir string) (system.Cmd, error) {
	return system.Cmd{}, errors.UnsupportedPlatform(
		"hooks are not supported on Windows\n  Run offshoot from WSL or Git Bash, or pass --no-setup to skip hooks.")
}
