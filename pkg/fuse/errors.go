package fuse

import (
	"errors"
	"syscall"

	"bazil.org/fuse"

	"github.com/example/devfs/pkg/fs"
)

// toErrno converts a filesystem error to the errno reported to the kernel.
func toErrno(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fuse.ENOENT
	case errors.Is(err, fs.ErrPermission):
		return fuse.EPERM
	case errors.Is(err, fs.ErrExist):
		return fuse.EEXIST
	case errors.Is(err, fs.ErrIsDir):
		return fuse.Errno(syscall.EISDIR)
	case errors.Is(err, fs.ErrNotDir):
		return fuse.Errno(syscall.ENOTDIR)
	case errors.Is(err, fs.ErrReadOnly):
		return fuse.Errno(syscall.EROFS)
	case errors.Is(err, fs.ErrNotSupported):
		return fuse.ENOTSUP
	default:
		return fuse.EIO
	}
}
