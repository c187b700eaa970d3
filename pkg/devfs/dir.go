package devfs

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/example/devfs/pkg/fs"
)

// dirSize is the size reported for every directory.
const dirSize = 4096

// DirNode is a directory of the device filesystem. Its children are either
// nested directories or device nodes. Nodes cannot be created or removed
// through the fs.Node interface; the tree is built with Mkdir and Add.
type DirNode struct {
	fs.DirDefaults

	parentMu sync.RWMutex
	parent   fs.Node

	mu       sync.RWMutex
	children map[string]fs.Node
}

// NewDirNode creates an empty directory below parent, which may be nil.
func NewDirNode(parent fs.Node) *DirNode {
	return &DirNode{
		parent:   parent,
		children: make(map[string]fs.Node),
	}
}

// SetParent replaces the directory above d. A nil parent clears it.
func (d *DirNode) SetParent(parent fs.Node) {
	d.parentMu.Lock()
	defer d.parentMu.Unlock()
	d.parent = parent
}

// Mkdir creates an empty subdirectory called name and returns it. An existing
// child of the same name is replaced.
func (d *DirNode) Mkdir(name string) *DirNode {
	node := NewDirNode(d)
	d.Add(name, node)
	return node
}

// Add attaches node under name. An existing child of the same name is
// replaced.
func (d *DirNode) Add(name string, node fs.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.children[name] = node
}

// Len returns the number of children.
func (d *DirNode) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.children)
}

func (d *DirNode) child(name string) (fs.Node, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	node, ok := d.children[name]
	return node, ok
}

// resolve returns the node a single path component refers to.
func (d *DirNode) resolve(name string) (fs.Node, error) {
	switch name {
	case "", ".":
		return d, nil
	case "..":
		if parent := d.Parent(); parent != nil {
			return parent, nil
		}
		return nil, fs.ErrNotExist
	default:
		if node, ok := d.child(name); ok {
			return node, nil
		}
		return nil, fs.ErrNotExist
	}
}

// GetAttr implements fs.Node.
func (d *DirNode) GetAttr() (fs.NodeAttr, error) {
	return fs.NewDirAttr(dirSize, 0), nil
}

// GetAttrX implements fs.Node.
func (d *DirNode) GetAttrX() (fs.NodeAttrX, error) {
	return fs.NodeAttrX{
		Nlink: 1,
		Mode:  fs.DefaultDir(),
		Type:  fs.FileTypeDirectory,
		Size:  dirSize,
	}, nil
}

// Parent implements fs.Node.
func (d *DirNode) Parent() fs.Node {
	d.parentMu.RLock()
	defer d.parentMu.RUnlock()
	return d.parent
}

// Lookup implements fs.Node.
func (d *DirNode) Lookup(path string) (fs.Node, error) {
	name, rest, more := fs.SplitPath(path)

	node, err := d.resolve(name)
	if err != nil {
		return nil, err
	}

	if more {
		return node.Lookup(rest)
	}
	return node, nil
}

// ReadDir implements fs.Node. Index 0 is ".", index 1 is "..", and the
// children follow in name order.
func (d *DirNode) ReadDir(start int, dirents []fs.DirEntry) (int, error) {
	d.mu.RLock()
	names := slices.Sorted(maps.Keys(d.children))
	nodes := make([]fs.Node, len(names))
	for i, name := range names {
		nodes[i] = d.children[name]
	}
	d.mu.RUnlock()

	for i := range dirents {
		idx := start + i
		switch {
		case idx == 0:
			dirents[i] = fs.DirEntry{Name: ".", Type: fs.FileTypeDirectory}
		case idx == 1:
			dirents[i] = fs.DirEntry{Name: "..", Type: fs.FileTypeDirectory}
		case idx-2 < len(names):
			attr, err := nodes[idx-2].GetAttr()
			if err != nil {
				return i, err
			}
			dirents[i] = fs.DirEntry{Name: names[idx-2], Type: attr.Type}
		default:
			return i, nil
		}
	}

	return len(dirents), nil
}

// Create implements fs.Node. Intermediate components are resolved as in
// Lookup; the final component may only name an existing directory entry
// such as "." or "..", since devices are attached by the host, not created.
func (d *DirNode) Create(path string, ty fs.FileType) error {
	slog.Debug("Create at devfs.", "type", ty, "path", path)

	name, rest, more := fs.SplitPath(path)
	if more {
		node, err := d.resolve(name)
		if err != nil {
			return err
		}
		return node.Create(rest, ty)
	}

	switch name {
	case "", ".", "..":
		return nil
	default:
		return fs.ErrPermission
	}
}

// Remove implements fs.Node. Nothing can be removed from a device
// filesystem; the path is still resolved so a missing node reports
// ErrNotExist.
func (d *DirNode) Remove(path string) error {
	slog.Debug("Remove at devfs.", "path", path)

	name, rest, more := fs.SplitPath(path)
	if more {
		node, err := d.resolve(name)
		if err != nil {
			return err
		}
		return node.Remove(rest)
	}

	return fs.ErrPermission
}

var _ fs.Node = (*DirNode)(nil)
