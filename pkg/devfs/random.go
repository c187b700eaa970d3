package devfs

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/zeebo/blake3"
)

const (
	initialSeed   = 0xa2ce_a2ce
	lcgMultiplier = 6364136223846793005
	lcgIncrement  = 1
)

// seed is shared by every URandomDev and every caller of Rand and Random.
var seed atomic.Uint64

func init() {
	seed.Store(initialSeed)
}

// next advances the shared seed by one linear congruential step and returns
// the new state. Each call consumes a distinct predecessor state.
func next() uint64 {
	for {
		old := seed.Load()
		updated := old*lcgMultiplier + lcgIncrement
		if seed.CompareAndSwap(old, updated) {
			return updated
		}
	}
}

// Rand returns a pseudo-random 32-bit integer.
func Rand() int32 {
	return int32(next() >> 33)
}

// Random returns a pseudo-random 64-bit integer.
func Random() int64 {
	return int64(next())
}

// FillRandom fills buf with pseudo-random bytes and returns len(buf). One
// generator step seeds a BLAKE3 output stream, so a buffer of any size
// costs a single update of the shared seed.
func FillRandom(buf []byte) int {
	if len(buf) == 0 {
		return 0
	}

	var key [8]byte
	binary.LittleEndian.PutUint64(key[:], uint64(Random()))

	h := blake3.New()
	_, _ = h.Write(key[:])
	_, _ = h.Digest().Read(buf)

	return len(buf)
}
