package devfs

import (
	"github.com/example/devfs/pkg/fs"
)

// URandomDev behaves like /dev/urandom. Reads fill the buffer with
// pseudo-random bytes and writes are discarded. The bytes are not suitable
// for cryptographic use.
type URandomDev struct {
	charDevice
}

// ReadAt implements fs.Node.
func (*URandomDev) ReadAt(_ uint64, buf []byte) (int, error) {
	return FillRandom(buf), nil
}

var _ fs.Node = (*URandomDev)(nil)
