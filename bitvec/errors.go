package bitvec

import "errors"

var (
	ErrIndexOutOfRange  = errors.New("bit index out of range")
	ErrEmpty            = errors.New("bitvec is empty")
	ErrShortData        = errors.New("data is shorter than requested")
	ErrDestroyed        = errors.New("bitvec was destroyed")
	ErrCapacityOverflow = errors.New("capacity overflow")
)
