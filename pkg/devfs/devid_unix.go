//go:build unix

package devfs

import (
	"golang.org/x/sys/unix"
)

// Rdev returns the id in the host's dev_t encoding, as reported in st_rdev.
// The conversion is platform dependent and, unlike DeviceID itself, not
// always able to represent every major/minor pair.
func (id DeviceID) Rdev() uint64 {
	return unix.Mkdev(id.Major(), id.Minor())
}
