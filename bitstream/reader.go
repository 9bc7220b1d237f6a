package bitstream

import (
	"errors"
	"io"

	"github.com/spacemeshos/bitvec/bitvec"
)

// DefaultChunkSize is the number of bytes ReadInto buffers before pushing them into a BitVec.
const DefaultChunkSize = 4096

// BitReader reads bits from an io.Reader.
type BitReader struct {
	stream    io.Reader
	pending   [1]byte
	alignment uint8 // number of MS bits of pending already consumed.

	chunkSize int
}

type ReaderOption func(*BitReader)

// WithChunkSize sets the number of bytes buffered by ReadInto.
func WithChunkSize(size int) ReaderOption {
	return func(br *BitReader) {
		if size > 0 {
			br.chunkSize = size
		}
	}
}

// NewReader returns a new instance of BitReader.
func NewReader(r io.Reader, opts ...ReaderOption) *BitReader {
	br := new(BitReader)
	br.stream = r
	br.alignment = 8
	br.chunkSize = DefaultChunkSize
	for _, opt := range opts {
		opt(br)
	}
	return br
}

// Read reads the next numBits from the stream, regardless of the alignment.
// A trailing partial byte holds the bits in its MS end.
func (br *BitReader) Read(numBits uint) ([]byte, error) {
	size := numBits / 8
	if numBits%8 > 0 {
		size++
	}

	data := make([]byte, size)
	var idx int

	for numBits >= 8 {
		byt, err := br.ReadByte()
		if err != nil {
			return nil, unexpected(err, idx > 0)
		}

		data[idx] = byt
		idx++
		numBits -= 8
	}

	for i := uint(0); i < numBits; i++ {
		bit, err := br.ReadBit()
		if err != nil {
			return nil, unexpected(err, idx > 0 || i > 0)
		}

		if bit {
			data[idx] |= 0x80 >> i
		}
	}

	return data, nil
}

// ReadUint64BE reads the next numBits from the stream as uint64 in Big-Endian order,
// regardless of the alignment.
func (br *BitReader) ReadUint64BE(numBits int) (uint64, error) {
	var val uint64
	var consumed bool

	for numBits >= 8 {
		byt, err := br.ReadByte()
		if err != nil {
			return 0, unexpected(err, consumed)
		}

		val = uint64(byt) | (val << 8)
		numBits -= 8
		consumed = true
	}

	for numBits > 0 {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, unexpected(err, consumed)
		}

		val <<= 1
		if bit {
			val |= 1
		}
		numBits--
		consumed = true
	}

	return val, nil
}

// ReadVec reads the next numBits from the stream into a new BitVec.
func (br *BitReader) ReadVec(numBits uint64, opts ...bitvec.Option) (*bitvec.BitVec, error) {
	bv := bitvec.New(opts...)
	n, err := br.ReadInto(bv, numBits)
	if err != nil {
		return nil, unexpected(err, n > 0)
	}
	return bv, nil
}

// ReadInto appends up to numBits bits from the stream to bv, and returns the
// number of bits appended. Bits read before an error are kept in bv.
func (br *BitReader) ReadInto(bv *bitvec.BitVec, numBits uint64) (uint64, error) {
	var read uint64
	chunk := make([]byte, 0, br.chunkSize)
	flush := func() {
		bv.PushBytes(chunk, uint64(len(chunk)))
		read += 8 * uint64(len(chunk))
		chunk = chunk[:0]
	}

	for numBits-read-8*uint64(len(chunk)) >= 8 {
		byt, err := br.ReadByte()
		if err != nil {
			flush()
			return read, err
		}

		chunk = append(chunk, byt)
		if len(chunk) == cap(chunk) {
			flush()
		}
	}
	flush()

	for read < numBits {
		bit, err := br.ReadBit()
		if err != nil {
			return read, err
		}

		bv.Push(bool(bit))
		read++
	}

	return read, nil
}

// ReadByte reads the next single byte from the stream, regardless of the alignment.
// If the byte is split, the remaining bits of the current byte form its MS bits.
func (br *BitReader) ReadByte() (byte, error) {
	if br.alignment == 8 {
		var b [1]byte
		if _, err := io.ReadFull(br.stream, b[:]); err != nil {
			return 0, err
		}
		return b[0], nil
	}

	// The byte stream is not aligned.
	// Use the current byte LS bits, combined with the next byte MS bits as LS bits.

	current := br.pending[0] << br.alignment
	if _, err := io.ReadFull(br.stream, br.pending[:]); err != nil {
		return 0, unexpected(err, true)
	}

	current |= br.pending[0] >> (8 - br.alignment)

	return current, nil
}

// ReadBit reads the next single bit from the stream, MSB first.
func (br *BitReader) ReadBit() (Bit, error) {
	if br.alignment == 8 {
		if _, err := io.ReadFull(br.stream, br.pending[:]); err != nil {
			return Zero, err
		}
		br.alignment = 0
	}

	msb := Bit(br.pending[0]&(0x80>>br.alignment) != 0)
	br.alignment++

	return msb, nil
}

// unexpected converts io.EOF to io.ErrUnexpectedEOF if part of the value was already consumed.
func unexpected(err error, consumed bool) error {
	if consumed && errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
