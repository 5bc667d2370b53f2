package frame

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allCodecs = []Codec{CodecNone, CodecZstd, CodecS2, CodecLZ4}

func payload() []byte {
	return bytes.Repeat([]byte("partwire frame payload "), 64)
}

// reseal recomputes the checksum after a test edits a frame.
func reseal(f []byte) []byte {
	end := len(f) - crcLen
	binary.LittleEndian.PutUint32(f[end:], crc32.ChecksumIEEE(f[len(Magic):end]))
	return f
}

func TestRoundTrip(t *testing.T) {
	for _, c := range allCodecs {
		t.Run(c.String(), func(t *testing.T) {
			in := Header{Flags: FlagPartial, Codec: c, SchemaID: 0xDEADBEEF01}
			f, err := Encode(payload(), in)
			require.NoError(t, err)
			require.Equal(t, Magic, string(f[:2]))

			h, out, err := Decode(f)
			require.NoError(t, err)
			require.Equal(t, payload(), out)
			require.Equal(t, uint8(Version), h.Version)
			require.Equal(t, c, h.Codec)
			require.Equal(t, in.SchemaID, h.SchemaID)
			require.True(t, h.Partial())

			if c != CodecNone {
				assert.Less(t, len(f), len(payload()))
			}
		})
	}
}

func TestEmptyPayload(t *testing.T) {
	for _, c := range allCodecs {
		f, err := Encode(nil, Header{Codec: c})
		require.NoError(t, err)
		h, out, err := Decode(f)
		require.NoError(t, err, c.String())
		require.Empty(t, out)
		require.False(t, h.Partial())
	}
}

func TestPeek(t *testing.T) {
	f, err := Encode([]byte{1, 2, 3}, Header{Codec: CodecS2, SchemaID: 7})
	require.NoError(t, err)
	h, err := Peek(f)
	require.NoError(t, err)
	require.Equal(t, Header{Version: Version, Codec: CodecS2, SchemaID: 7}, h)
}

func TestCorruption(t *testing.T) {
	good, err := Encode([]byte("hello"), Header{SchemaID: 1})
	require.NoError(t, err)

	clone := func() []byte { return append([]byte(nil), good...) }

	f := clone()
	f[0] = 'X'
	_, _, err = Decode(f)
	require.ErrorIs(t, err, ErrBadMagic)

	f = clone()
	f[len(f)-6] ^= 0xFF
	_, _, err = Decode(f)
	require.ErrorIs(t, err, ErrChecksum)

	f = clone()
	f[4] = 99
	_, _, err = Decode(reseal(f))
	require.ErrorIs(t, err, ErrUnknownCodec)

	f = clone()
	f[2] = 2
	_, _, err = Decode(reseal(f))
	require.ErrorIs(t, err, ErrVersion)

	_, _, err = Decode(good[:10])
	require.ErrorIs(t, err, ErrLength)

	// stored length that disagrees with the bytes present
	f = clone()
	f[fixedLen+1] = 2 << 2
	_, _, err = Decode(reseal(f))
	require.ErrorIs(t, err, ErrLength)
}

func TestParseCodec(t *testing.T) {
	for _, c := range allCodecs {
		got, err := ParseCodec(c.String())
		require.NoError(t, err)
		require.Equal(t, c, got)
	}
	got, err := ParseCodec("")
	require.NoError(t, err)
	require.Equal(t, CodecNone, got)
	got, err = ParseCodec("ZSTD")
	require.NoError(t, err)
	require.Equal(t, CodecZstd, got)

	_, err = ParseCodec("brotli")
	require.ErrorIs(t, err, ErrUnknownCodec)
	_, err = Encode([]byte{1}, Header{Codec: Codec(9)})
	require.ErrorIs(t, err, ErrUnknownCodec)
	require.Equal(t, "codec(9)", Codec(9).String())
}

func FuzzDecode(f *testing.F) {
	for _, c := range allCodecs {
		fr, err := Encode([]byte("seed payload seed payload"), Header{Codec: c})
		if err != nil {
			f.Fatal(err)
		}
		f.Add(fr)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		h, out, err := Decode(data)
		if err != nil {
			return
		}
		again, err := Encode(out, h)
		require.NoError(t, err)
		_, back, err := Decode(again)
		require.NoError(t, err)
		require.Equal(t, out, back)
	})
}

func BenchmarkEncode(b *testing.B) {
	p := payload()
	for _, c := range allCodecs {
		b.Run(c.String(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				_, _ = Encode(p, Header{Codec: c})
			}
		})
	}
}
