/*
Package partwire encodes Go values into a compact binary format and can write
a selected subset of a value's fields while keeping the layout a full
encoding would have.

# Format

Every length, count and field ordinal is a size header (package
pkg/header): 1, 2, 4 or 8 bytes with the size class in the two low bits.

	bool                 1 byte, 0x00 or 0x01
	numbers              raw bytes in native byte order, no prefix
	string               header(len) + bytes
	slice                header(count) + elements
	array                elements only, the length is part of the type
	map                  header(count) + key, value pairs
	pointer              0x00, or 0x01 + payload
	struct               header(N) + N × (header(ordinal) + value)
	tuple struct         fields by position, no count, no ordinals
	func, chan           nothing

A struct field's ordinal is its position in the struct's Table: exported
fields in declaration order, renamed with a `wire:"name"` tag or excluded
with `wire:"-"`. Tables can also be registered explicitly with computed
fields, or to mark a struct as a tuple (see Register).

# Partial encoding

MarshalPartial takes selectors in JSON pointer syntax, "/a/b/0". At each
level the selected keys of a struct or map are grouped; the output is
header(number of groups) and, per group in lexicographic key order, the
field ordinal (struct) or the encoded key (map) followed by the partial
encoding of what is selected below it. A value selected whole is encoded as
by Marshal.

	type Point struct{ X, Y, Z int32 }
	b, err := partwire.MarshalPartial(Point{1, 2, 3}, "/Z", "/X")
	// header(2) header(0) 01000000 header(2) 03000000

There is no magic number or version tag; callers that need one wrap the
payload with pkg/frame.
*/
package partwire
