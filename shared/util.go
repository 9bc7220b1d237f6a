package shared

import (
	"math"
	"math/bits"
)

// IsPowerOfTwo reports whether x is a power of two. Zero is not.
func IsPowerOfTwo(x uint64) bool {
	return x != 0 && x&(x-1) == 0
}

// NextPowerOfTwo returns the smallest power of two that is greater or equal
// than x, or floor if x < floor. floor must be a power of two.
// ok is false if the result doesn't fit in an uint64.
func NextPowerOfTwo(x, floor uint64) (r uint64, ok bool) {
	r = floor
	for r < x {
		if r > math.MaxUint64>>1 {
			return 0, false
		}
		r <<= 1
	}
	return r, true
}

// RoundUpToByte rounds a number of bits up to the next multiple of 8.
func RoundUpToByte(numBits uint64) uint64 {
	return BytesForBits(numBits) * 8
}

// BytesForBits returns the number of bytes needed to hold numBits bits.
func BytesForBits(numBits uint64) uint64 {
	n := numBits / 8
	if numBits%8 != 0 {
		n++
	}
	return n
}

// Uint64MulOverflow checks whether the multiplication of two uint64 overflows.
func Uint64MulOverflow(a, b uint64) bool {
	hi, _ := bits.Mul64(a, b)
	return hi != 0
}

// Uint64AddOverflow checks whether the addition of two uint64 overflows.
func Uint64AddOverflow(a, b uint64) bool {
	_, carry := bits.Add64(a, b, 0)
	return carry != 0
}
