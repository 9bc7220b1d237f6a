// Package bitvec provides a growable bit-addressable buffer.
//
// Bits are indexed as an array, packed MSB first:
//
//	  0    1          i              n
//	+----+----+     +--------+     +----+
//	|BYTE|BYTE| ... |01101100| ... |BYTE| ...
//	+----+----+     +--------+     +----+
//	                 ^      ^
//	                {bit 0, bit 7} of byte i
//
// i.e. bit i lives in byte i/8, under the mask 0x80 >> (i%8).
package bitvec

import (
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/spacemeshos/bitvec/shared"
)

const (
	// DefaultBits is the initial, and minimal, capacity in bits (1KB).
	DefaultBits = 8192

	// MaxBits is the largest capacity a BitVec can grow to.
	MaxBits = 1 << 63
)

// BitVec is a sequence of bits with O(1) random access Get and Set, O(1) Pop,
// amortized O(1) Push and O(n) PushBytes and PushBits.
//
// A BitVec must have a single owner; it is not safe for concurrent use.
type BitVec struct {
	vec   []byte
	nbits uint64 // capacity, always a power of 2.
	off   uint64 // number of bits pushed so far.

	logger *zap.Logger
}

// New returns an empty BitVec with DefaultBits zeroed bits of capacity.
func New(opts ...Option) *BitVec {
	options := option{
		logger: zap.NewNop(),
		bits:   DefaultBits,
	}
	for _, opt := range opts {
		opt(&options)
	}

	nbits, ok := shared.NextPowerOfTwo(options.bits, DefaultBits)
	if !ok || nbits/8 > math.MaxInt {
		panic(fmt.Errorf("%w: initial capacity of %d bits", ErrCapacityOverflow, options.bits))
	}

	b := &BitVec{
		vec:    make([]byte, nbits/8),
		nbits:  nbits,
		logger: options.logger,
	}
	if options.fill {
		for i := range b.vec {
			b.vec[i] = 0xff
		}
	}
	return b
}

// Init is like New, but pre-sets the whole initial storage to v.
// The BitVec is still empty; only storage beyond Len is affected.
func Init(v bool, opts ...Option) *BitVec {
	return New(append([]Option{WithFill(v)}, opts...)...)
}

// Len returns the number of bits pushed so far.
func (b *BitVec) Len() uint64 {
	return b.off
}

// Cap returns the number of bits backed by the current storage.
func (b *BitVec) Cap() uint64 {
	return b.nbits
}

// Get returns the value of the given bit. It panics if bit >= Len().
func (b *BitVec) Get(bit uint64) bool {
	b.checkIndex(bit)
	return b.vec[bit/8]&(byte(0x80)>>(bit%8)) != 0
}

// Set sets the value of the given bit. It panics if bit >= Len().
func (b *BitVec) Set(bit uint64, v bool) {
	b.checkIndex(bit)
	b.put(bit, v)
}

// Push appends v, doubling the capacity if needed.
func (b *BitVec) Push(v bool) {
	b.checkAlive()
	if b.off == b.nbits {
		if b.nbits > MaxBits>>1 {
			panic(fmt.Errorf("%w: cannot grow beyond %d bits", ErrCapacityOverflow, b.nbits))
		}
		b.grow(b.nbits * 2)
	}

	b.put(b.off, v)
	b.off++
}

// Pop removes the last bit and returns its value. It panics if the BitVec is empty.
func (b *BitVec) Pop() bool {
	b.checkAlive()
	if b.off == 0 {
		panic(ErrEmpty)
	}

	b.off--
	v := b.vec[b.off/8]&(byte(0x80)>>(b.off%8)) != 0
	b.put(b.off, false)
	return v
}

// PushBytes appends the 8*nbytes bits of data[:nbytes].
// The tail doesn't have to be byte-aligned.
func (b *BitVec) PushBytes(data []byte, nbytes uint64) {
	b.checkAlive()
	if uint64(len(data)) < nbytes {
		panic(fmt.Errorf("%w: %d bytes requested, %d given", ErrShortData, nbytes, len(data)))
	}
	if shared.Uint64MulOverflow(nbytes, 8) {
		panic(fmt.Errorf("%w: %d bytes", ErrCapacityOverflow, nbytes))
	}
	n := nbytes * 8

	// Reserve one bit past the appended data.
	if shared.Uint64AddOverflow(b.off, n+1) || b.off+n+1 > MaxBits {
		panic(fmt.Errorf("%w: %d bits appended to %d", ErrCapacityOverflow, n, b.off))
	}
	if required := shared.RoundUpToByte(b.off + n + 1); required > b.nbits {
		nbits, _ := shared.NextPowerOfTwo(required, DefaultBits)
		b.grow(nbits)
	}

	mergeShifted(b.vec[b.off/8:], data[:nbytes], uint(b.off%8))
	b.off += n
}

// PushBits appends the first nbits bits of data, starting from the MSB of data[0].
// Unused low-order bits of the last source byte are ignored.
func (b *BitVec) PushBits(data []byte, nbits uint64) {
	nbytes := shared.BytesForBits(nbits)
	b.PushBytes(data, nbytes)
	b.off -= nbytes*8 - nbits
}

// ToArray returns a copy of the content, zero-padded to a whole number of bytes,
// and the number of valid bits in it. The returned slice is owned by the caller.
func (b *BitVec) ToArray() ([]byte, uint64) {
	b.checkAlive()
	n := shared.BytesForBits(b.off)
	data := make([]byte, n)
	copy(data, b.vec[:n])
	if rem := b.off % 8; rem != 0 {
		data[n-1] &= byte(0xff) << (8 - rem)
	}

	return data, b.off
}

// Write appends p at the tail. It implements io.Writer and never fails.
func (b *BitVec) Write(p []byte) (int, error) {
	b.PushBytes(p, uint64(len(p)))
	return len(p), nil
}

// WriteTo writes the content, as returned by ToArray, to w.
func (b *BitVec) WriteTo(w io.Writer) (int64, error) {
	data, _ := b.ToArray()
	n, err := w.Write(data)
	return int64(n), err
}

// Destroy releases the storage. The BitVec must not be used afterwards.
func (b *BitVec) Destroy() {
	b.vec = nil
	b.nbits = 0
	b.off = 0
}

func (b *BitVec) put(bit uint64, v bool) {
	mask := byte(0x80) >> (bit % 8)
	if v {
		b.vec[bit/8] |= mask
	} else {
		b.vec[bit/8] &^= mask
	}
}

// grow reallocates the storage to hold nbits bits, zero-extended.
func (b *BitVec) grow(nbits uint64) {
	if nbits/8 > math.MaxInt {
		panic(fmt.Errorf("%w: %d bits are not addressable", ErrCapacityOverflow, nbits))
	}

	b.logger.Debug("bitvec: growing storage",
		zap.Uint64("from", b.nbits),
		zap.Uint64("to", nbits),
		zap.Uint64("len", b.off),
	)

	vec := make([]byte, nbits/8)
	copy(vec, b.vec)
	b.vec = vec
	b.nbits = nbits
}

func (b *BitVec) checkAlive() {
	if b.vec == nil {
		panic(ErrDestroyed)
	}
}

func (b *BitVec) checkIndex(bit uint64) {
	b.checkAlive()
	if bit >= b.off {
		panic(fmt.Errorf("%w: index %d, length %d", ErrIndexOutOfRange, bit, b.off))
	}
}
