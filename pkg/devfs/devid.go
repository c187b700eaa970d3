// pkg/devfs/devid.go
package devfs

import (
	"encoding/binary"
	"fmt"

	"github.com/example/devfs/pkg/fs"
)

// DeviceIDSize is the size of a serialized DeviceID in bytes.
const DeviceIDSize = 8

// DeviceID identifies a device independently of where it sits in the tree.
// The major number occupies the high 32 bits and the minor number the low 32.
type DeviceID uint64

// MakeDev packs a major/minor pair into a DeviceID.
func MakeDev(major, minor uint32) DeviceID {
	return DeviceID(uint64(major)<<32 | uint64(minor))
}

// Major returns the major number of the device.
func (id DeviceID) Major() uint32 {
	return uint32(id >> 32)
}

// Minor returns the minor number of the device.
func (id DeviceID) Minor() uint32 {
	return uint32(id)
}

// Bytes serializes the id as big-endian bytes
func (id DeviceID) Bytes() []byte {
	data := make([]byte, DeviceIDSize)
	binary.BigEndian.PutUint64(data, uint64(id))
	return data
}

// ParseDeviceID parses bytes produced by Bytes.
func ParseDeviceID(data []byte) (DeviceID, error) {
	if len(data) < DeviceIDSize {
		return 0, fs.NewError("parse", "", fs.ErrInvalidHandle)
	}
	return DeviceID(binary.BigEndian.Uint64(data[:DeviceIDSize])), nil
}

// String returns the id in "major:minor" form
func (id DeviceID) String() string {
	return fmt.Sprintf("%d:%d", id.Major(), id.Minor())
}
