package bitvec

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func bitAt(data []byte, i int) bool {
	return data[i/8]&(0x80>>(i%8)) != 0
}

func TestMergeShifted(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	src := make([]byte, 7)
	rng.Read(src)

	for shift := uint(0); shift < 8; shift++ {
		r := require.New(t)

		// Garbage everywhere, so that only the kept prefix may survive.
		dst := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
		dst[0] = 0xa5
		prefix := dst[0]

		mergeShifted(dst, src, shift)

		for i := 0; i < int(shift); i++ {
			r.Equal(bitAt([]byte{prefix}, i), bitAt(dst, i), "shift %d, prefix bit %d", shift, i)
		}
		for i := 0; i < 8*len(src); i++ {
			r.Equal(bitAt(src, i), bitAt(dst, int(shift)+i), "shift %d, bit %d", shift, i)
		}
		if shift > 0 {
			// The carry byte holds the spilled bits, and zeros after them.
			end := int(shift) + 8*len(src)
			for i := end; i < 8*(len(src)+1); i++ {
				r.False(bitAt(dst, i), "shift %d, padding bit %d", shift, i)
			}
			r.Equal(byte(0xff), dst[len(src)+1], "shift %d: wrote past the carry byte", shift)
		} else {
			r.Equal(byte(0xff), dst[len(src)], "wrote past the data")
		}
	}
}

func TestMergeShifted_Example(t *testing.T) {
	r := require.New(t)

	// 1011 followed by 0xFF, 0x00.
	dst := []byte{0xb0, 0x00, 0x00}
	mergeShifted(dst, []byte{0xff, 0x00}, 4)
	r.Equal([]byte{0xbf, 0xf0, 0x00}, dst)
}
