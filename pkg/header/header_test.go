package header

import (
	"encoding/binary"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/require"
)

func TestClassBoundaries(t *testing.T) {
	cases := []struct {
		n    uint64
		size int
	}{
		{0, 1},
		{63, 1},
		{64, 2},
		{16383, 2},
		{16384, 4},
		{1073741823, 4},
		{1073741824, 8},
		{Max64 - 1, 8},
	}
	for _, c := range cases {
		b, err := Append(nil, c.n)
		require.NoError(t, err)
		require.Len(t, b, c.size, "n=%d", c.n)
		require.Equal(t, c.size, Size(c.n))
		n, used, err := Decode(b)
		require.NoError(t, err)
		require.Equal(t, c.n, n)
		require.Equal(t, c.size, used)
	}
}

func TestClassInFirstByte(t *testing.T) {
	if binary.NativeEndian.Uint16([]byte{1, 0}) != 1 {
		t.Skip("big-endian host")
	}
	for c, n := range []uint64{1, Max8, Max16, Max32} {
		b, err := Append(nil, n)
		require.NoError(t, err)
		require.Equal(t, byte(c), b[0]&3, "n=%d", n)
		require.Len(t, b, 1<<c)
	}
}

func TestSmallValue(t *testing.T) {
	b, err := Append(nil, 3)
	require.NoError(t, err)
	require.Equal(t, []byte{0x0C}, b)
}

func TestUnsupported(t *testing.T) {
	dst := []byte{0xAA}
	out, err := Append(dst, Max64)
	require.ErrorIs(t, err, ErrSizeUnsupported)
	require.Equal(t, dst, out)
	require.Equal(t, 0, Size(Max64))
	_, err = Class(^uint64(0))
	require.ErrorIs(t, err, ErrSizeUnsupported)
}

func TestShortBuffer(t *testing.T) {
	_, _, err := Decode(nil)
	require.ErrorIs(t, err, ErrShortBuffer)
	b, err := Append(nil, 100000)
	require.NoError(t, err)
	_, _, err = Decode(b[:2])
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestAppendKeepsPrefix(t *testing.T) {
	b, err := Append([]byte{9, 9}, 70)
	require.NoError(t, err)
	require.Equal(t, []byte{9, 9}, b[:2])
	n, used, err := Decode(b[2:])
	require.NoError(t, err)
	require.Equal(t, uint64(70), n)
	require.Equal(t, 2, used)
}

func TestRoundTrip(t *testing.T) {
	condition := func(n uint64) bool {
		n &= Max64 - 1
		b, err := Append(nil, n)
		if err != nil {
			return false
		}
		got, used, err := Decode(b)
		return err == nil && got == n && used == Size(n)
	}
	require.NoError(t, quick.Check(condition, &quick.Config{MaxCount: 5000}))
}

func FuzzDecode(f *testing.F) {
	f.Add([]byte{0x0C})
	f.Add([]byte{0x01, 0x01})
	f.Fuzz(func(t *testing.T, b []byte) {
		n, used, err := Decode(b)
		if err != nil {
			return
		}
		again, err := Append(nil, n)
		require.NoError(t, err)
		require.LessOrEqual(t, len(again), used)
	})
}

func BenchmarkAppend(b *testing.B) {
	buf := make([]byte, 0, 64)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf, _ = Append(buf[:0], uint64(i))
	}
}
