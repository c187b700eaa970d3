package devfs

import (
	"github.com/example/devfs/pkg/fs"
)

// ZeroDev behaves like /dev/zero. Reads fill the buffer with zero bytes and
// writes are discarded.
type ZeroDev struct {
	charDevice
}

// ReadAt implements fs.Node.
func (*ZeroDev) ReadAt(_ uint64, buf []byte) (int, error) {
	clear(buf)
	return len(buf), nil
}

var _ fs.Node = (*ZeroDev)(nil)
