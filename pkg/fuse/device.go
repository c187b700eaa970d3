package fuse

import (
	"context"
	"log/slog"
	"os"

	"bazil.org/fuse"
	bfs "bazil.org/fuse/fs"

	"github.com/example/devfs/pkg/fs"
)

// Device represents a non-directory node, usually a character device. It is
// its own handle.
type Device struct {
	fs   *FS
	node fs.Node
}

// Attr sets the attributes of the device
func (d *Device) Attr(ctx context.Context, attr *fuse.Attr) error {
	a, err := d.node.GetAttr()
	if err != nil {
		return toErrno(err)
	}

	mode := os.FileMode(a.Mode & fs.ModeMask)
	switch a.Type {
	case fs.FileTypeChar:
		mode |= os.ModeDevice | os.ModeCharDevice
	case fs.FileTypeBlock:
		mode |= os.ModeDevice
	case fs.FileTypeFIFO:
		mode |= os.ModeNamedPipe
	case fs.FileTypeSocket:
		mode |= os.ModeSocket
	case fs.FileTypeSymlink:
		mode |= os.ModeSymlink
	}

	attr.Mode = mode
	attr.Size = a.Size
	attr.Blocks = a.Blocks
	attr.Nlink = 1
	attr.Rdev = d.fs.rdev(d.node)
	return nil
}

// Open opens the device. Devices are unbounded streams that report a size of
// zero, so the page cache is bypassed.
func (d *Device) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (bfs.Handle, error) {
	if err := d.node.Open(); err != nil {
		return nil, toErrno(err)
	}
	resp.Flags |= fuse.OpenDirectIO | fuse.OpenNonSeekable
	return d, nil
}

// Release closes the device
func (d *Device) Release(ctx context.Context, req *fuse.ReleaseRequest) error {
	return toErrno(d.node.Release())
}

// Read reads from the device at the requested offset
func (d *Device) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	buf := make([]byte, req.Size)
	n, err := d.node.ReadAt(uint64(req.Offset), buf)
	if err != nil {
		slog.Debug("FUSE read failed.", "err", err)
		return toErrno(err)
	}
	resp.Data = buf[:n]
	return nil
}

// Write writes to the device at the requested offset
func (d *Device) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	n, err := d.node.WriteAt(uint64(req.Offset), req.Data)
	if err != nil {
		slog.Debug("FUSE write failed.", "err", err)
		return toErrno(err)
	}
	resp.Size = n
	return nil
}

// Fsync flushes the device
func (d *Device) Fsync(ctx context.Context, req *fuse.FsyncRequest) error {
	return toErrno(d.node.Fsync())
}

var (
	_ bfs.Node           = (*Device)(nil)
	_ bfs.NodeOpener     = (*Device)(nil)
	_ bfs.HandleReader   = (*Device)(nil)
	_ bfs.HandleWriter   = (*Device)(nil)
	_ bfs.HandleReleaser = (*Device)(nil)
	_ bfs.NodeFsyncer    = (*Device)(nil)
)
