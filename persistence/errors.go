package persistence

import (
	"errors"
	"fmt"
)

var (
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
	ErrTooLarge         = errors.New("snapshot too large")
	ErrTrailingData     = errors.New("snapshot has trailing data")
)

type SnapshotMismatchError struct {
	Field    string
	Expected string
	Found    string
}

func (err SnapshotMismatchError) Error() string {
	return fmt.Sprintf("`%v` snapshot mismatch; expected: %v, found: %v",
		err.Field, err.Expected, err.Found)
}
