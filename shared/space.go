package shared

import (
	"github.com/ricochet2200/go-disk-usage/du"
)

// AvailableSpace returns the number of bytes available to the current user
// on the filesystem holding path.
func AvailableSpace(path string) uint64 {
	usage := du.NewDiskUsage(path)
	return usage.Available()
}

// CheckAvailableSpace returns an InsufficientSpaceError if the filesystem
// holding path has less than required bytes available.
func CheckAvailableSpace(path string, required uint64) error {
	available := AvailableSpace(path)
	if required > available {
		return InsufficientSpaceError{
			Path:      path,
			Required:  required,
			Available: available,
		}
	}
	return nil
}
