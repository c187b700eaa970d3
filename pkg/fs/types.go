package fs

import (
	"strings"
)

// FileType represents the type of a node.
type FileType uint8

const (
	// FileTypeFIFO is a named pipe
	FileTypeFIFO FileType = 0o1
	// FileTypeChar is a character special device
	FileTypeChar FileType = 0o2
	// FileTypeDirectory is a directory
	FileTypeDirectory FileType = 0o4
	// FileTypeBlock is a block special device
	FileTypeBlock FileType = 0o6
	// FileTypeRegular is a regular file
	FileTypeRegular FileType = 0o10
	// FileTypeSymlink is a symbolic link
	FileTypeSymlink FileType = 0o12
	// FileTypeSocket is a socket
	FileTypeSocket FileType = 0o14
)

// String returns a string representation of the file type
func (ft FileType) String() string {
	switch ft {
	case FileTypeRegular:
		return "regular"
	case FileTypeDirectory:
		return "directory"
	case FileTypeSymlink:
		return "symlink"
	case FileTypeBlock:
		return "block"
	case FileTypeChar:
		return "char"
	case FileTypeFIFO:
		return "fifo"
	case FileTypeSocket:
		return "socket"
	default:
		return "unknown"
	}
}

// ParseFileType is the inverse of FileType.String. Unknown names yield 0.
func ParseFileType(s string) FileType {
	for _, ft := range []FileType{
		FileTypeRegular, FileTypeDirectory, FileTypeSymlink, FileTypeBlock,
		FileTypeChar, FileTypeFIFO, FileTypeSocket,
	} {
		if ft.String() == s {
			return ft
		}
	}
	return 0
}

// IsDir reports whether the type is a directory.
func (ft FileType) IsDir() bool {
	return ft == FileTypeDirectory
}

// FileMode represents the permission bits of a node.
type FileMode uint16

const (
	// ModeMask is the mask for the file permission bits
	ModeMask FileMode = 0o777
)

// DefaultFile returns the permissions of a newly created file or device: rw-rw-rw-.
func DefaultFile() FileMode {
	return 0o666
}

// DefaultDir returns the permissions of a newly created directory: rwxr-xr-x.
func DefaultDir() FileMode {
	return 0o755
}

// String renders the permission bits in ls(1) form, e.g. "rwxr-xr-x".
func (m FileMode) String() string {
	const rwx = "rwxrwxrwx"
	var b strings.Builder
	for i := 0; i < 9; i++ {
		if m&(1<<uint(8-i)) != 0 {
			b.WriteByte(rwx[i])
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// NodeAttr contains the basic attributes of a node.
type NodeAttr struct {
	// Mode contains the permission bits
	Mode FileMode

	// Type is the node type
	Type FileType

	// Size is the size in bytes
	Size uint64

	// Blocks is the number of 512B blocks allocated
	Blocks uint64
}

// NewDirAttr returns the attributes of a directory with the given size.
func NewDirAttr(size, blocks uint64) NodeAttr {
	return NodeAttr{
		Mode:   DefaultDir(),
		Type:   FileTypeDirectory,
		Size:   size,
		Blocks: blocks,
	}
}

// IsDir reports whether the attributes describe a directory.
func (a NodeAttr) IsDir() bool {
	return a.Type.IsDir()
}

// NodeAttrX contains the extended, stat(2)-like attributes of a node.
type NodeAttrX struct {
	// Dev is the id of the device containing the node
	Dev uint64

	// Ino is the inode number
	Ino uint64

	// Nlink is the number of hard links
	Nlink uint32

	// Uid is the user ID of the owner
	Uid uint32

	// Gid is the group ID of the owner
	Gid uint32

	// Rdev is the device ID (if special file)
	Rdev uint64

	// Blksize is the preferred I/O block size
	Blksize uint32

	// Mode contains the permission bits
	Mode FileMode

	// Type is the node type
	Type FileType

	// Size is the size in bytes
	Size uint64

	// Blocks is the number of 512B blocks allocated
	Blocks uint64

	Atime     int64
	AtimeNsec int64
	Mtime     int64
	MtimeNsec int64
	Ctime     int64
	CtimeNsec int64
}

// Basic narrows the extended attributes to a NodeAttr.
func (a NodeAttrX) Basic() NodeAttr {
	return NodeAttr{
		Mode:   a.Mode,
		Type:   a.Type,
		Size:   a.Size,
		Blocks: a.Blocks,
	}
}

// DirEntry represents an entry in a directory.
type DirEntry struct {
	// Name is the name of the entry
	Name string

	// Type is the type of the entry
	Type FileType
}
