package devfs

import (
	"github.com/example/devfs/pkg/fs"
)

// NullDev behaves like /dev/null. Reads always hit end of file and writes are
// discarded.
type NullDev struct {
	charDevice
}

// ReadAt implements fs.Node.
func (*NullDev) ReadAt(uint64, []byte) (int, error) {
	return 0, nil
}

var _ fs.Node = (*NullDev)(nil)
