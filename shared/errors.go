package shared

import (
	"fmt"

	"code.cloudfoundry.org/bytefmt"
)

type InsufficientSpaceError struct {
	Path      string
	Required  uint64
	Available uint64
}

func (err InsufficientSpaceError) Error() string {
	return fmt.Sprintf("not enough disk space at %v; required: %v, available: %v",
		err.Path, bytefmt.ByteSize(err.Required), bytefmt.ByteSize(err.Available))
}
