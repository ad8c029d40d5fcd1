//go:build !windows

package hook

import "github.com/offshoot-dev/offshoot/internal/system"

func shellCommand(command, dir string) (system.Cmd, error) {
	return system.Cmd{Name: "sh", Args: []string{"-c", command}, Dir: dir}, nil
}
