package shared

import (
	"errors"
	"math"
	"testing"

	"github.com/spacemeshos/smutil"
	"github.com/stretchr/testify/require"
)

func TestAvailableSpace(t *testing.T) {
	r := require.New(t)

	// Sanity test.
	space := AvailableSpace(smutil.GetUserHomeDirectory())
	r.True(space > 0)
}

func TestCheckAvailableSpace(t *testing.T) {
	r := require.New(t)

	dir := t.TempDir()
	r.NoError(CheckAvailableSpace(dir, 1))

	err := CheckAvailableSpace(dir, math.MaxUint64)
	var spaceErr InsufficientSpaceError
	r.True(errors.As(err, &spaceErr))
	r.Equal(dir, spaceErr.Path)
	r.Equal(uint64(math.MaxUint64), spaceErr.Required)
	r.Contains(err.Error(), "not enough disk space")
}
