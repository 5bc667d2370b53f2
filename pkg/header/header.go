// Package header implements the compact size header used for every length,
// count and field index in the partwire format.
//
// A header carries a size class c in its two low bits and the value in the
// remaining high bits, stored as a 1, 2, 4 or 8 byte integer in native byte
// order:
//
//	class 0: 1 byte, n < 64
//	class 1: 2 bytes, n < 16384
//	class 2: 4 bytes, n < 1073741824
//	class 3: 8 bytes, n < 4611686018427387904
//
// Decode reads the class from the first byte of a header, which holds the
// low bits of the integer only on little-endian hosts. Big-endian hosts are
// not supported: the width of a native big-endian header cannot be known
// before its last byte is found.
package header

import (
	"encoding/binary"
	"errors"
)

var (
	ErrSizeUnsupported = errors.New("size not supported")
	ErrShortBuffer     = errors.New("header: short buffer")
)

// Class bounds, exclusive.
const (
	Max8  = 1 << 6
	Max16 = 1 << 14
	Max32 = 1 << 30
	Max64 = 1 << 62
)

// Class returns the smallest size class that can hold n.
func Class(n uint64) (int, error) {
	switch {
	case n < Max8:
		return 0, nil
	case n < Max16:
		return 1, nil
	case n < Max32:
		return 2, nil
	case n < Max64:
		return 3, nil
	default:
		return -1, ErrSizeUnsupported
	}
}

// Size returns the number of bytes Append writes for n, or 0 if n is not
// representable.
func Size(n uint64) int {
	c, err := Class(n)
	if err != nil {
		return 0
	}
	return 1 << c
}

// Append appends the header for n to dst. Nothing is appended on error.
func Append(dst []byte, n uint64) ([]byte, error) {
	c, err := Class(n)
	if err != nil {
		return dst, err
	}
	v := n<<2 | uint64(c)
	switch c {
	case 0:
		return append(dst, byte(v)), nil
	case 1:
		return binary.NativeEndian.AppendUint16(dst, uint16(v)), nil
	case 2:
		return binary.NativeEndian.AppendUint32(dst, uint32(v)), nil
	default:
		return binary.NativeEndian.AppendUint64(dst, v), nil
	}
}

// Decode reads one header from the start of b and returns its value and the
// number of bytes consumed. It assumes a little-endian host.
func Decode(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrShortBuffer
	}
	// class bits sit in the first byte only on little-endian hosts
	c := int(b[0] & 3)
	w := 1 << c
	if len(b) < w {
		return 0, 0, ErrShortBuffer
	}
	var v uint64
	switch c {
	case 0:
		v = uint64(b[0])
	case 1:
		v = uint64(binary.NativeEndian.Uint16(b))
	case 2:
		v = uint64(binary.NativeEndian.Uint32(b))
	default:
		v = binary.NativeEndian.Uint64(b)
	}
	return v >> 2, w, nil
}
