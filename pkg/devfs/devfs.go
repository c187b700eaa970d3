// Package devfs implements an in-memory device filesystem. Devices are
// reachable two ways: by path through a tree of DirNodes, and by their
// (major, minor) number through a registry that is independent of the tree.
package devfs

import (
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/example/devfs/pkg/fs"
)

// DeviceFileSystem is a device filesystem implementing fs.FileSystem.
type DeviceFileSystem struct {
	root *DirNode

	// parent is set by the first mount whose mount point has a parent and
	// is never replaced afterwards.
	parentOnce sync.Once
	parent     fs.Node

	mu     sync.RWMutex
	devMap map[DeviceID]fs.Node
}

// New creates an empty, unmounted device filesystem.
func New() *DeviceFileSystem {
	return &DeviceFileSystem{
		root:   NewDirNode(nil),
		devMap: make(map[DeviceID]fs.Node),
	}
}

// Mkdir creates a subdirectory of the root directory.
func (d *DeviceFileSystem) Mkdir(name string) *DirNode {
	return d.root.Mkdir(name)
}

// Add attaches a node to the root directory.
func (d *DeviceFileSystem) Add(name string, node fs.Node) {
	d.root.Add(name, node)
}

// RegisterDevice makes node reachable by its device number. A node already
// registered under the same number is replaced. Registration does not place
// the node in the tree.
func (d *DeviceFileSystem) RegisterDevice(major, minor uint32, node fs.Node) {
	id := MakeDev(major, minor)

	d.mu.Lock()
	d.devMap[id] = node
	d.mu.Unlock()
}

// GetDevice returns the node registered under the device number.
func (d *DeviceFileSystem) GetDevice(major, minor uint32) (fs.Node, bool) {
	id := MakeDev(major, minor)

	d.mu.RLock()
	defer d.mu.RUnlock()
	node, ok := d.devMap[id]
	return node, ok
}

// Devices returns every registered device number in ascending order.
func (d *DeviceFileSystem) Devices() []DeviceID {
	d.mu.RLock()
	ids := make([]DeviceID, 0, len(d.devMap))
	for id := range d.devMap {
		ids = append(ids, id)
	}
	d.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// DeviceOf returns the device number node is registered under. When the node
// is registered more than once the lowest number is returned.
func (d *DeviceFileSystem) DeviceOf(node fs.Node) (DeviceID, bool) {
	var (
		found DeviceID
		ok    bool
	)

	d.mu.RLock()
	defer d.mu.RUnlock()

	for id, n := range d.devMap {
		if sameNode(n, node) && (!ok || id < found) {
			found, ok = id, true
		}
	}

	return found, ok
}

// Mount implements fs.FileSystem. The root directory adopts the parent of
// mountPoint, so ".." from the root leads to the directory containing the
// mount point. The path is not interpreted; the filesystem is always mounted
// as a whole.
func (d *DeviceFileSystem) Mount(path string, mountPoint fs.Node) error {
	parent := mountPoint.Parent()
	if parent == nil {
		d.root.SetParent(nil)
		slog.Debug("Mounted devfs without parent.", "path", path)
		return nil
	}

	d.parentOnce.Do(func() {
		d.parent = parent
	})
	if !sameNode(d.parent, parent) {
		slog.Warn("Devfs already mounted under another parent, keeping the first.", "path", path)
	}

	d.root.SetParent(d.parent)
	slog.Debug("Mounted devfs.", "path", path)

	return nil
}

// sameNode reports whether a and b are the same node. Values of a type that
// cannot be compared never match, not even themselves.
func sameNode(a, b fs.Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// RootDir implements fs.FileSystem.
func (d *DeviceFileSystem) RootDir() fs.Node {
	return d.root
}

// Root returns the root directory as a DirNode, for callers that populate
// nested directories.
func (d *DeviceFileSystem) Root() *DirNode {
	return d.root
}

// Mounted reports whether the root directory currently has a parent.
func (d *DeviceFileSystem) Mounted() bool {
	return d.root.Parent() != nil
}

var _ fs.FileSystem = (*DeviceFileSystem)(nil)
