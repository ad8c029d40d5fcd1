//go:build windows

package setup

import (
	stderrors "errors"
	"os"

	"golang.org/x/sys/windows"

	"github.com/offshoot-dev/offshoot/internal/errors"
)

// symlink creates a file or directory symlink matching the source. Without
// Developer Mode or elevation Windows refuses with ERROR_PRIVILEGE_NOT_HELD.
func symlink(source, target string) error {
	var flags uint32 = windows.SYMBOLIC_LINK_FLAG_ALLOW_UNPRIVILEGED_CREATE
	if info, err := os.Stat(source); err == nil && info.IsDir() {
		flags |= windows.SYMBOLIC_LINK_FLAG_DIRECTORY
	}

	src, err := windows.UTF16PtrFromString(source)
	if err != nil {
		return errors.SymlinkFailed(source, target, err)
	}
	dst, err := windows.UTF16PtrFromString(target)
	if err != nil {
		return errors.SymlinkFailed(source, target, err)
	}

	if err := windows.CreateSymbolicLink(dst, src, flags); err != nil {
		if stderrors.Is(err, windows.ERROR_PRIVILEGE_NOT_HELD) {
			return errors.WindowsSymlinkPermission()
		}
		return errors.SymlinkFailed(source, target, err)
	}
	return nil
}
