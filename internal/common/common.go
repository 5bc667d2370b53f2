package common

import (
	"encoding/binary"
	"math"
	"reflect"
	"unsafe"
)

// IsFixedKind reports whether k is written as its raw in-memory bytes.
// Bool is excluded; it has its own one-byte encoding.
func IsFixedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

// FixedSize returns the byte width for fixed kinds and -1 otherwise.
func FixedSize(t reflect.Type) int {
	if !IsFixedKind(t.Kind()) {
		return -1
	}
	return int(t.Size())
}

// AppendFixed appends the native-order bytes of a fixed-kind value.
func AppendFixed(dst []byte, v reflect.Value) []byte {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return appendUint(dst, uint64(v.Int()), int(v.Type().Size()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return appendUint(dst, v.Uint(), int(v.Type().Size()))
	case reflect.Float32:
		return binary.NativeEndian.AppendUint32(dst, math.Float32bits(float32(v.Float())))
	case reflect.Float64:
		return binary.NativeEndian.AppendUint64(dst, math.Float64bits(v.Float()))
	case reflect.Complex64:
		c := v.Complex()
		dst = binary.NativeEndian.AppendUint32(dst, math.Float32bits(float32(real(c))))
		return binary.NativeEndian.AppendUint32(dst, math.Float32bits(float32(imag(c))))
	case reflect.Complex128:
		c := v.Complex()
		dst = binary.NativeEndian.AppendUint64(dst, math.Float64bits(real(c)))
		return binary.NativeEndian.AppendUint64(dst, math.Float64bits(imag(c)))
	default:
		panic("common: not a fixed kind: " + v.Kind().String())
	}
}

func appendUint(dst []byte, x uint64, size int) []byte {
	switch size {
	case 1:
		return append(dst, byte(x))
	case 2:
		return binary.NativeEndian.AppendUint16(dst, uint16(x))
	case 4:
		return binary.NativeEndian.AppendUint32(dst, uint32(x))
	default:
		return binary.NativeEndian.AppendUint64(dst, x)
	}
}

func readUint(b []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.NativeEndian.Uint16(b))
	case 4:
		return uint64(binary.NativeEndian.Uint32(b))
	default:
		return binary.NativeEndian.Uint64(b)
	}
}

// SetFixed decodes a fixed-kind value from b into dst. b must hold at least
// FixedSize(dst.Type()) bytes.
func SetFixed(dst reflect.Value, b []byte) {
	size := int(dst.Type().Size())
	switch dst.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		x := readUint(b, size)
		// sign-extend from the stored width
		shift := 64 - 8*uint(size)
		dst.SetInt(int64(x<<shift) >> shift)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		dst.SetUint(readUint(b, size))
	case reflect.Float32:
		dst.SetFloat(float64(math.Float32frombits(binary.NativeEndian.Uint32(b))))
	case reflect.Float64:
		dst.SetFloat(math.Float64frombits(binary.NativeEndian.Uint64(b)))
	case reflect.Complex64:
		re := math.Float32frombits(binary.NativeEndian.Uint32(b))
		im := math.Float32frombits(binary.NativeEndian.Uint32(b[4:]))
		dst.SetComplex(complex(float64(re), float64(im)))
	case reflect.Complex128:
		re := math.Float64frombits(binary.NativeEndian.Uint64(b))
		im := math.Float64frombits(binary.NativeEndian.Uint64(b[8:]))
		dst.SetComplex(complex(re, im))
	default:
		panic("common: not a fixed kind: " + dst.Kind().String())
	}
}

// BlockBytes returns the memory backing a slice, or an addressable array, of
// fixed-kind elements without copying. ok is false when v has no stable
// address.
func BlockBytes(v reflect.Value) (b []byte, ok bool) {
	n := v.Len()
	if n == 0 {
		return nil, true
	}
	elemSize := int(v.Type().Elem().Size())
	var p unsafe.Pointer
	switch v.Kind() {
	case reflect.Slice:
		p = v.UnsafePointer()
	case reflect.Array:
		if !v.CanAddr() {
			return nil, false
		}
		p = v.Addr().UnsafePointer()
	default:
		return nil, false
	}
	return unsafe.Slice((*byte)(p), n*elemSize), true
}

// SetBlock copies raw element bytes from b into a slice or array of fixed
// kind elements. len(b) must equal v.Len() times the element size.
func SetBlock(v reflect.Value, b []byte) {
	dst, ok := BlockBytes(v)
	if !ok {
		panic("common: SetBlock on unaddressable value")
	}
	copy(dst, b)
}
