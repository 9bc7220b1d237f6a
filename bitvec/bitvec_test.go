package bitvec_test

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spacemeshos/bitvec/bitvec"
)

func requirePanicsWith(t *testing.T, target error, f func()) {
	t.Helper()
	defer func() {
		rec := recover()
		require.NotNil(t, rec, "expected a panic")
		err, ok := rec.(error)
		require.True(t, ok, "expected an error, got %v", rec)
		require.ErrorIs(t, err, target)
	}()
	f()
}

func randomBits(seed int64, n int) []bool {
	rng := rand.New(rand.NewSource(seed))
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = rng.Intn(2) == 1
	}
	return bits
}

func requireBits(t *testing.T, expected []bool, bv *bitvec.BitVec) {
	t.Helper()
	require.Equal(t, uint64(len(expected)), bv.Len())
	for i, v := range expected {
		if bv.Get(uint64(i)) != v {
			require.Failf(t, "bit mismatch", "bit %d: expected %v", i, v)
		}
	}
}

func TestNew(t *testing.T) {
	r := require.New(t)

	bv := bitvec.New()
	r.Equal(uint64(0), bv.Len())
	r.Equal(uint64(bitvec.DefaultBits), bv.Cap())

	data, nbits := bv.ToArray()
	r.Empty(data)
	r.Equal(uint64(0), nbits)
}

func TestNew_InitialBits(t *testing.T) {
	r := require.New(t)

	r.Equal(uint64(bitvec.DefaultBits), bitvec.New(bitvec.WithInitialBits(0)).Cap())
	r.Equal(uint64(bitvec.DefaultBits), bitvec.New(bitvec.WithInitialBits(100)).Cap())
	r.Equal(uint64(16384), bitvec.New(bitvec.WithInitialBits(10000)).Cap())
	r.Equal(uint64(1<<20), bitvec.New(bitvec.WithInitialBits(1<<20)).Cap())

	requirePanicsWith(t, bitvec.ErrCapacityOverflow, func() {
		bitvec.New(bitvec.WithInitialBits(1<<63 + 1))
	})
}

func TestPushGet(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 8191, 8192, 8193, 3*bitvec.DefaultBits + 5, 9 * bitvec.DefaultBits} {
		bits := randomBits(int64(n), n)
		bv := bitvec.New()
		for _, v := range bits {
			bv.Push(v)
		}
		requireBits(t, bits, bv)
	}
}

func TestPush_Growth(t *testing.T) {
	r := require.New(t)

	core, logs := observer.New(zapcore.DebugLevel)
	bv := bitvec.New(bitvec.WithLogger(zap.New(core)))

	for i := 0; i < bitvec.DefaultBits+1; i++ {
		bv.Push(i%2 == 0)
	}
	r.Equal(uint64(bitvec.DefaultBits+1), bv.Len())
	r.Equal(uint64(2*bitvec.DefaultBits), bv.Cap())
	for i := 0; i < bitvec.DefaultBits+1; i++ {
		r.Equal(i%2 == 0, bv.Get(uint64(i)), "bit %d", i)
	}

	growth := logs.FilterMessage("bitvec: growing storage").All()
	r.Len(growth, 1)
	r.Equal(uint64(bitvec.DefaultBits), growth[0].ContextMap()["from"])
	r.Equal(uint64(2*bitvec.DefaultBits), growth[0].ContextMap()["to"])
}

func TestPush_PreservedAcrossGrowth(t *testing.T) {
	r := require.New(t)

	n := 5*bitvec.DefaultBits + 3
	bits := randomBits(42, n)
	bv := bitvec.New()
	for i, v := range bits {
		bv.Push(v)
		if uint64(i+1) == bv.Cap() {
			// Check everything before each reallocation.
			requireBits(t, bits[:i+1], bv)
		}
	}
	r.Equal(uint64(8*bitvec.DefaultBits), bv.Cap())
	requireBits(t, bits, bv)
}

func TestPopPush_Inverse(t *testing.T) {
	r := require.New(t)

	bv := bitvec.New()
	for _, v := range randomBits(3, 13) {
		bv.Push(v)
	}
	before, _ := bv.ToArray()

	for i := 0; i < 10000; i++ {
		v := i%3 == 0
		bv.Push(v)
		r.Equal(uint64(14), bv.Len())
		r.Equal(v, bv.Pop())
		r.Equal(uint64(13), bv.Len())
	}

	after, _ := bv.ToArray()
	r.Equal(before, after)
}

func TestPop_Stack(t *testing.T) {
	r := require.New(t)

	n := bitvec.DefaultBits + 100
	bits := randomBits(4, n)
	bv := bitvec.New()
	for _, v := range bits {
		bv.Push(v)
	}
	for i := n - 1; i >= 0; i-- {
		r.Equal(bits[i], bv.Pop(), "bit %d", i)
	}
	r.Equal(uint64(0), bv.Len())
	// Capacity never shrinks.
	r.Equal(uint64(2*bitvec.DefaultBits), bv.Cap())
}

func TestPop_ClearsBit(t *testing.T) {
	r := require.New(t)

	bv := bitvec.New()
	bv.Push(true)
	bv.Push(true)
	r.True(bv.Pop())

	// The popped slot must read back as the newly pushed value.
	bv.Push(false)
	r.False(bv.Get(1))
	data, nbits := bv.ToArray()
	r.Equal([]byte{0x80}, data)
	r.Equal(uint64(2), nbits)
}

func TestSet(t *testing.T) {
	r := require.New(t)

	bits := randomBits(5, 200)
	bv := bitvec.New()
	for _, v := range bits {
		bv.Push(v)
	}

	for i := range bits {
		bits[i] = !bits[i]
		bv.Set(uint64(i), bits[i])
		r.Equal(bits[i], bv.Get(uint64(i)))
		requireBits(t, bits, bv)
	}
	r.Equal(uint64(200), bv.Len())
}

func TestInit(t *testing.T) {
	r := require.New(t)

	bv := bitvec.Init(true)
	r.Equal(uint64(0), bv.Len())
	r.Equal(uint64(bitvec.DefaultBits), bv.Cap())

	bv.Push(false)
	bv.Push(true)
	bv.Push(false)
	r.False(bv.Get(0))
	r.True(bv.Get(1))
	r.False(bv.Get(2))

	data, nbits := bv.ToArray()
	r.Equal([]byte{0x40}, data)
	r.Equal(uint64(3), nbits)
}

func TestInit_PushBits(t *testing.T) {
	r := require.New(t)

	bv := bitvec.Init(true)
	bv.PushBits([]byte{0x00, 0x00}, 16)
	data, nbits := bv.ToArray()
	r.Equal([]byte{0x00, 0x00}, data)
	r.Equal(uint64(16), nbits)

	// Unaligned tail over pre-filled storage.
	bv = bitvec.Init(true)
	bv.Push(true)
	bv.PushBytes([]byte{0x00}, 1)
	data, nbits = bv.ToArray()
	r.Equal([]byte{0x80, 0x00}, data)
	r.Equal(uint64(9), nbits)
}

func TestInit_False(t *testing.T) {
	r := require.New(t)

	bv := bitvec.Init(false)
	bv.Push(true)
	data, nbits := bv.ToArray()
	r.Equal([]byte{0x80}, data)
	r.Equal(uint64(1), nbits)
}

func TestPushBytes_Unaligned(t *testing.T) {
	r := require.New(t)

	bv := bitvec.New()
	bv.Push(true)
	bv.Push(false)
	bv.Push(true)
	bv.Push(true)
	bv.PushBytes([]byte{0xff, 0x00}, 2)

	expected := []bool{
		true, false, true, true,
		true, true, true, true, true, true, true, true,
		false, false, false, false, false, false, false, false,
	}
	requireBits(t, expected, bv)

	data, nbits := bv.ToArray()
	r.Equal([]byte{0xbf, 0xf0, 0x00}, data)
	r.Equal(uint64(20), nbits)
}

func TestPushBytes_AllOffsets(t *testing.T) {
	src := []byte{0x5a, 0xc3, 0x01, 0xfe, 0x80}
	srcBits := make([]bool, 8*len(src))
	for i := range srcBits {
		srcBits[i] = src[i/8]&(0x80>>(i%8)) != 0
	}

	for _, base := range []int{0, bitvec.DefaultBits - 8} {
		for offset := 0; offset < 8; offset++ {
			prefix := randomBits(int64(offset), base+offset)
			bv := bitvec.New()
			for _, v := range prefix {
				bv.Push(v)
			}
			bv.PushBytes(src, uint64(len(src)))
			requireBits(t, append(prefix, srcBits...), bv)
		}
	}
}

func TestPushBytes_Partial(t *testing.T) {
	bv := bitvec.New()
	bv.Push(true)
	bv.PushBytes([]byte{0xff, 0xaa, 0x55}, 1)
	requireBits(t, []bool{true, true, true, true, true, true, true, true, true}, bv)
}

func TestPushBytes_Growth(t *testing.T) {
	r := require.New(t)

	bv := bitvec.New()
	data := make([]byte, 5000)
	rand.New(rand.NewSource(6)).Read(data)

	// 40000 bits, plus one reserved bit, rounded up to the next power of 2.
	bv.PushBytes(data, uint64(len(data)))
	r.Equal(uint64(40000), bv.Len())
	r.Equal(uint64(65536), bv.Cap())

	out, nbits := bv.ToArray()
	r.Equal(data, out)
	r.Equal(uint64(40000), nbits)

	// A full vector grows on the reserved bit alone.
	bv = bitvec.New()
	bv.PushBytes(make([]byte, bitvec.DefaultBits/8), bitvec.DefaultBits/8)
	r.Equal(uint64(2*bitvec.DefaultBits), bv.Cap())
}

func TestPushBytes_ShortData(t *testing.T) {
	bv := bitvec.New()
	requirePanicsWith(t, bitvec.ErrShortData, func() {
		bv.PushBytes([]byte{0x01}, 2)
	})
	require.Equal(t, uint64(0), bv.Len())
}

func TestPushBits(t *testing.T) {
	r := require.New(t)

	bv := bitvec.New()
	bv.PushBits([]byte{0xa0}, 3)
	requireBits(t, []bool{true, false, true}, bv)

	data, nbits := bv.ToArray()
	r.Equal([]byte{0xa0}, data)
	r.Equal(uint64(3), nbits)
}

func TestPushBits_DropsPadding(t *testing.T) {
	r := require.New(t)

	// Low-order bits of the last byte are don't-care.
	bv := bitvec.New()
	bv.PushBits([]byte{0xbf}, 3)
	bv.PushBits([]byte{0x7f}, 1)
	requireBits(t, []bool{true, false, true, false}, bv)

	data, nbits := bv.ToArray()
	r.Equal([]byte{0xa0}, data)
	r.Equal(uint64(4), nbits)

	bv.Push(true)
	requireBits(t, []bool{true, false, true, false, true}, bv)
}

func TestPushBits_AllLengths(t *testing.T) {
	src := []byte{0xd6, 0x3b, 0x99}
	for offset := 0; offset < 8; offset++ {
		for n := 0; n <= 8*len(src); n++ {
			prefix := randomBits(int64(n), offset)
			bv := bitvec.New()
			for _, v := range prefix {
				bv.Push(v)
			}
			bv.PushBits(src, uint64(n))

			expected := append([]bool(nil), prefix...)
			for i := 0; i < n; i++ {
				expected = append(expected, src[i/8]&(0x80>>(i%8)) != 0)
			}
			requireBits(t, expected, bv)
		}
	}
}

func TestPushBits_Zero(t *testing.T) {
	bv := bitvec.New()
	bv.Push(true)
	bv.PushBits(nil, 0)
	requireBits(t, []bool{true}, bv)
}

func TestToArray_RoundTrip(t *testing.T) {
	r := require.New(t)

	rng := rand.New(rand.NewSource(7))
	bv := bitvec.New()
	var bits []bool
	for len(bits) < 3*bitvec.DefaultBits {
		switch rng.Intn(3) {
		case 0:
			v := rng.Intn(2) == 1
			bv.Push(v)
			bits = append(bits, v)
		default:
			chunk := make([]byte, rng.Intn(16)+1)
			rng.Read(chunk)
			n := rng.Intn(8*len(chunk) + 1)
			bv.PushBits(chunk, uint64(n))
			for i := 0; i < n; i++ {
				bits = append(bits, chunk[i/8]&(0x80>>(i%8)) != 0)
			}
		}
	}
	requireBits(t, bits, bv)

	data, nbits := bv.ToArray()
	r.Equal(uint64(len(bits)), nbits)
	r.Len(data, (len(bits)+7)/8)

	fresh := bitvec.New()
	fresh.PushBits(data, nbits)
	requireBits(t, bits, fresh)

	again, n := fresh.ToArray()
	r.Equal(data, again)
	r.Equal(nbits, n)
}

func TestToArray_Owned(t *testing.T) {
	r := require.New(t)

	bv := bitvec.New()
	bv.PushBytes([]byte{0x0f}, 1)
	data, _ := bv.ToArray()
	data[0] = 0xff
	r.False(bv.Get(0))
}

func TestWriter(t *testing.T) {
	r := require.New(t)

	bv := bitvec.New()
	bv.Push(true)
	n, err := bv.Write([]byte{0x00, 0xff})
	r.NoError(err)
	r.Equal(2, n)
	r.Equal(uint64(17), bv.Len())

	var buf bytes.Buffer
	written, err := bv.WriteTo(&buf)
	r.NoError(err)
	r.Equal(int64(3), written)
	r.Equal([]byte{0x80, 0x7f, 0x80}, buf.Bytes())
}

func TestPreconditions(t *testing.T) {
	bv := bitvec.New()
	requirePanicsWith(t, bitvec.ErrEmpty, func() { bv.Pop() })
	requirePanicsWith(t, bitvec.ErrIndexOutOfRange, func() { bv.Get(0) })
	requirePanicsWith(t, bitvec.ErrIndexOutOfRange, func() { bv.Set(0, true) })

	bv.Push(true)
	requirePanicsWith(t, bitvec.ErrIndexOutOfRange, func() { bv.Get(1) })
	requirePanicsWith(t, bitvec.ErrIndexOutOfRange, func() { bv.Set(bitvec.DefaultBits, true) })
	require.True(t, bv.Get(0))
}

func TestDestroy(t *testing.T) {
	bv := bitvec.New()
	bv.Push(true)
	bv.Destroy()

	require.Equal(t, uint64(0), bv.Len())
	requirePanicsWith(t, bitvec.ErrDestroyed, func() { bv.Get(0) })
	requirePanicsWith(t, bitvec.ErrDestroyed, func() { bv.Push(true) })
	requirePanicsWith(t, bitvec.ErrDestroyed, func() { bv.Pop() })
	requirePanicsWith(t, bitvec.ErrDestroyed, func() { bv.PushBytes([]byte{0x01}, 1) })
	requirePanicsWith(t, bitvec.ErrDestroyed, func() { bv.ToArray() })
}

func TestErrorsAreWrapped(t *testing.T) {
	defer func() {
		err := recover().(error)
		require.True(t, errors.Is(err, bitvec.ErrIndexOutOfRange))
		require.Contains(t, err.Error(), "index 5, length 0")
	}()
	bitvec.New().Get(5)
}
