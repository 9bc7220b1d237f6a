// Package bitstream provides wrappers for io.Writer and io.Reader to allow
// bit-granularity access to the stream, following the MSB pattern, where
// most-significant bits are written/read first. This is the same bit order
// used by bitvec, so streams and vectors can be converted into each other.
package bitstream

type Bit bool

const (
	Zero Bit = false
	One  Bit = true
)
