package partwire

import (
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func u16(x uint16) []byte { return binary.NativeEndian.AppendUint16(nil, x) }
func u32(x uint32) []byte { return binary.NativeEndian.AppendUint32(nil, x) }
func u64(x uint64) []byte { return binary.NativeEndian.AppendUint64(nil, x) }

// hdr returns a one-byte header; n must be below 64.
func hdr(n byte) []byte { return []byte{n << 2} }

func str(s string) []byte { return cat(hdr(byte(len(s))), []byte(s)) }

func mustMarshal(t testing.TB, v any) []byte {
	t.Helper()
	b, err := Marshal(v)
	require.NoError(t, err)
	return b
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func typeOf(v any) reflect.Type { return reflect.TypeOf(v) }
