// Package persistence stores BitVec snapshots on disk.
//
// A snapshot is an XDR-encoded Header followed by the raw content of the
// BitVec, as returned by ToArray.
package persistence

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/natefinch/atomic"
	"github.com/nullstyle/go-xdr/xdr3"
	"github.com/spacemeshos/sha256-simd"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitvec/bitvec"
	"github.com/spacemeshos/bitvec/shared"
)

const (
	// Version is the current snapshot format version.
	Version = 1

	// HeaderSize is the size of the XDR-encoded Header, in bytes.
	HeaderSize = 4 + 8 + 32
)

type Header struct {
	Version  uint32
	NumBits  uint64
	Checksum [32]byte
}

// Checksum returns the checksum of a snapshot content.
func Checksum(data []byte, numBits uint64) [32]byte {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], numBits)

	h := sha256.New()
	h.Write(n[:])
	h.Write(data)

	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// Encode writes a snapshot of bv to w.
func Encode(w io.Writer, bv *bitvec.BitVec) error {
	data, numBits := bv.ToArray()
	header := Header{
		Version:  Version,
		NumBits:  numBits,
		Checksum: Checksum(data, numBits),
	}

	if _, err := xdr.Marshal(w, &header); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	return nil
}

// Decode reads a snapshot from r into a new BitVec. r must hold exactly one snapshot.
func Decode(r io.Reader, opts ...Option) (*bitvec.BitVec, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	var header Header
	if _, err := xdr.Unmarshal(r, &header); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	if header.Version != Version {
		return nil, SnapshotMismatchError{
			Field:    "version",
			Expected: strconv.Itoa(Version),
			Found:    strconv.FormatUint(uint64(header.Version), 10),
		}
	}

	size := shared.BytesForBits(header.NumBits)
	if size > options.maxSize {
		return nil, fmt.Errorf("%w: %v of data, max allowed: %v",
			ErrTooLarge, bytefmt.ByteSize(size), bytefmt.ByteSize(options.maxSize))
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, SnapshotMismatchError{
				Field:    "data length",
				Expected: strconv.FormatUint(size, 10),
				Found:    "less",
			}
		}
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	var extra [1]byte
	switch _, err := io.ReadFull(r, extra[:]); {
	case err == nil:
		return nil, ErrTrailingData
	case !errors.Is(err, io.EOF):
		return nil, fmt.Errorf("failed to read past data: %w", err)
	}

	if Checksum(data, header.NumBits) != header.Checksum {
		return nil, ErrChecksumMismatch
	}

	bv := bitvec.New(
		// PushBits reserves one bit past the data.
		bitvec.WithInitialBits(header.NumBits+1),
		bitvec.WithLogger(options.logger),
	)
	bv.PushBits(data, header.NumBits)
	return bv, nil
}

// Save atomically writes a snapshot of bv to the given file.
func Save(filename string, bv *bitvec.BitVec, opts ...Option) error {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, bv); err != nil {
		return fmt.Errorf("serialization failure: %w", err)
	}
	size := buf.Len()

	if err := atomic.WriteFile(filename, &buf); err != nil {
		return fmt.Errorf("write to disk failure: %w", err)
	}
	if err := os.Chmod(filename, shared.OwnerReadWrite); err != nil {
		return fmt.Errorf("failed to set snapshot permissions: %w", err)
	}

	options.logger.Info("saved snapshot",
		zap.String("filename", filename),
		zap.Uint64("bits", bv.Len()),
		zap.String("size", bytefmt.ByteSize(uint64(size))),
	)
	return nil
}

// Load reads a snapshot from the given file.
func Load(filename string, opts ...Option) (*bitvec.BitVec, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	if size := uint64(info.Size()); size > HeaderSize && size-HeaderSize > options.maxSize {
		return nil, fmt.Errorf("%w: %v of data, max allowed: %v",
			ErrTooLarge, bytefmt.ByteSize(size-HeaderSize), bytefmt.ByteSize(options.maxSize))
	}

	bv, err := Decode(bufio.NewReader(f), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %v: %w", filename, err)
	}

	options.logger.Debug("loaded snapshot",
		zap.String("filename", filename),
		zap.Uint64("bits", bv.Len()),
	)
	return bv, nil
}
