//go:build linux

package fsstore

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// renameNoReplace uses renameat2 with RENAME_NOREPLACE. Filesystems or
// kernels without support for the flag report EINVAL or ENOSYS, in which case
// fallback is used.
func renameNoReplace(oldpath, newpath string, fallback func(string, string) error) error {
	err := unix.Renameat2(unix.AT_FDCWD, oldpath, unix.AT_FDCWD, newpath, unix.RENAME_NOREPLACE)
	if err == nil {
		return nil
	}
	if errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOSYS) {
		return fallback(oldpath, newpath)
	}
	return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: err}
}
