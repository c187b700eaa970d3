// Package fuse serves an fs.FileSystem through a kernel FUSE mount.
package fuse

import (
	"log/slog"
	"math"

	bfs "bazil.org/fuse/fs"

	"github.com/example/devfs/pkg/devfs"
	"github.com/example/devfs/pkg/fs"
)

// DeviceLookup maps a node back to the device number it is registered
// under, so the mount can report st_rdev.
type DeviceLookup interface {
	DeviceOf(node fs.Node) (devfs.DeviceID, bool)
}

// FS implements the FUSE filesystem interface on top of an fs.FileSystem
type FS struct {
	fsys    fs.FileSystem
	devices DeviceLookup
}

// NewFS creates a FUSE filesystem serving fsys. devices may be nil, in which
// case every device reports a zero st_rdev.
func NewFS(fsys fs.FileSystem, devices DeviceLookup) *FS {
	return &FS{
		fsys:    fsys,
		devices: devices,
	}
}

// Root returns the root directory of the filesystem
func (f *FS) Root() (bfs.Node, error) {
	return &Dir{fs: f, node: f.fsys.RootDir()}, nil
}

// wrap returns the FUSE node for a filesystem node.
func (f *FS) wrap(node fs.Node) (bfs.Node, error) {
	attr, err := node.GetAttr()
	if err != nil {
		return nil, toErrno(err)
	}
	if attr.IsDir() {
		return &Dir{fs: f, node: node}, nil
	}
	return &Device{fs: f, node: node}, nil
}

func (f *FS) rdev(node fs.Node) uint32 {
	if f.devices == nil {
		return 0
	}
	id, ok := f.devices.DeviceOf(node)
	if !ok {
		return 0
	}
	rdev := id.Rdev()
	if rdev > math.MaxUint32 {
		slog.Debug("Device number does not fit st_rdev.", "dev", id.String())
		return 0
	}
	return uint32(rdev)
}
