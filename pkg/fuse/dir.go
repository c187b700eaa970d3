package fuse

import (
	"context"
	"os"

	"bazil.org/fuse"
	bfs "bazil.org/fuse/fs"

	"github.com/example/devfs/pkg/fs"
)

// Dir represents a directory in the filesystem
type Dir struct {
	fs   *FS
	node fs.Node
}

// Attr sets the attributes of the directory
func (d *Dir) Attr(ctx context.Context, attr *fuse.Attr) error {
	a, err := d.node.GetAttr()
	if err != nil {
		return toErrno(err)
	}
	attr.Mode = os.ModeDir | os.FileMode(a.Mode&fs.ModeMask)
	attr.Size = a.Size
	attr.Blocks = a.Blocks
	attr.Nlink = 1
	return nil
}

// Lookup looks up a specific entry in the directory
func (d *Dir) Lookup(ctx context.Context, name string) (bfs.Node, error) {
	node, err := d.node.Lookup(name)
	if err != nil {
		return nil, toErrno(err)
	}
	return d.fs.wrap(node)
}

// ReadDirAll returns all entries in the directory
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := fs.ReadDirAll(d.node)
	if err != nil {
		return nil, toErrno(err)
	}

	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, entry := range entries {
		// the kernel synthesizes . and ..
		if entry.Name == "." || entry.Name == ".." {
			continue
		}
		dirents = append(dirents, fuse.Dirent{
			Name: entry.Name,
			Type: direntType(entry.Type),
		})
	}
	return dirents, nil
}

func direntType(ty fs.FileType) fuse.DirentType {
	switch ty {
	case fs.FileTypeDirectory:
		return fuse.DT_Dir
	case fs.FileTypeChar:
		return fuse.DT_Char
	case fs.FileTypeBlock:
		return fuse.DT_Block
	case fs.FileTypeRegular:
		return fuse.DT_File
	case fs.FileTypeSymlink:
		return fuse.DT_Link
	case fs.FileTypeFIFO:
		return fuse.DT_FIFO
	case fs.FileTypeSocket:
		return fuse.DT_Socket
	default:
		return fuse.DT_Unknown
	}
}

var (
	_ bfs.Node               = (*Dir)(nil)
	_ bfs.NodeStringLookuper = (*Dir)(nil)
	_ bfs.HandleReadDirAller = (*Dir)(nil)
)
