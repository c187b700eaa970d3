package fs

// Node defines the operations every entry of a filesystem tree supports,
// whether it is a directory or a device. Directory operations on a
// non-directory fail with ErrNotDir, and byte I/O on a directory fails with
// ErrIsDir.
//
// Node values are shared: the same node may be held by a parent directory,
// a device registry and any number of callers at once.
type Node interface {
	// Open is called when the node is opened.
	Open() error

	// Release is called when the node is closed.
	Release() error

	// GetAttr returns the basic attributes of the node.
	GetAttr() (NodeAttr, error)

	// GetAttrX returns the extended, stat-like attributes of the node.
	GetAttrX() (NodeAttrX, error)

	// Parent returns the directory above this node, or nil.
	Parent() Node

	// Lookup resolves a slash separated path relative to this node.
	// "." and ".." are honoured.
	Lookup(path string) (Node, error)

	// Create creates a node of the given type at path, relative to this node.
	Create(path string, ty FileType) error

	// Remove removes the node at path, relative to this node.
	Remove(path string) error

	// ReadDir fills dirents with entries starting at index start and returns
	// the number of entries filled. Fewer than len(dirents) means the end of
	// the directory was reached.
	ReadDir(start int, dirents []DirEntry) (int, error)

	// ReadAt reads into buf at offset and returns the number of bytes read.
	ReadAt(offset uint64, buf []byte) (int, error)

	// WriteAt writes buf at offset and returns the number of bytes written.
	WriteAt(offset uint64, buf []byte) (int, error)

	// Fsync flushes the node to its backing store.
	Fsync() error

	// Truncate changes the size of the node.
	Truncate(size uint64) error
}

// FileSystem is the contract a filesystem implementation offers to the host
// that mounts it.
type FileSystem interface {
	// Mount attaches the filesystem at path. mountPoint is the host node the
	// filesystem is mounted over.
	Mount(path string, mountPoint Node) error

	// RootDir returns the root directory of the filesystem.
	RootDir() Node
}

// NodeDefaults supplies the operations that behave the same for every node
// kind. Embed it in node implementations.
type NodeDefaults struct{}

// Open does nothing.
func (NodeDefaults) Open() error { return nil }

// Release does nothing.
func (NodeDefaults) Release() error { return nil }

// GetAttrX reports no extended attributes.
func (NodeDefaults) GetAttrX() (NodeAttrX, error) { return NodeAttrX{}, ErrNotSupported }

// Parent reports that the node has no parent.
func (NodeDefaults) Parent() Node { return nil }

// Fsync does nothing.
func (NodeDefaults) Fsync() error { return nil }

// Truncate does nothing.
func (NodeDefaults) Truncate(uint64) error { return nil }

// FileDefaults supplies the directory operations of a non-directory node,
// all of which fail with ErrNotDir.
type FileDefaults struct {
	NodeDefaults
}

// Lookup fails with ErrNotDir.
func (FileDefaults) Lookup(string) (Node, error) { return nil, ErrNotDir }

// Create fails with ErrNotDir.
func (FileDefaults) Create(string, FileType) error { return ErrNotDir }

// Remove fails with ErrNotDir.
func (FileDefaults) Remove(string) error { return ErrNotDir }

// ReadDir fails with ErrNotDir.
func (FileDefaults) ReadDir(int, []DirEntry) (int, error) { return 0, ErrNotDir }

// DirDefaults supplies the byte I/O operations of a directory node, all of
// which fail with ErrIsDir.
type DirDefaults struct {
	NodeDefaults
}

// ReadAt fails with ErrIsDir.
func (DirDefaults) ReadAt(uint64, []byte) (int, error) { return 0, ErrIsDir }

// WriteAt fails with ErrIsDir.
func (DirDefaults) WriteAt(uint64, []byte) (int, error) { return 0, ErrIsDir }

// Truncate fails with ErrIsDir.
func (DirDefaults) Truncate(uint64) error { return ErrIsDir }
