package partwire

import (
	"reflect"
	"strconv"

	"github.com/rawbytedev/partwire/internal/common"
)

// Category is the encoding strategy chosen for a type.
type Category uint8

const (
	Skip      Category = iota // behavior, not data: writes nothing
	Bool                      // one byte, 0 or 1
	Raw                       // fixed-width number in native byte order
	Str                       // header(len) + bytes
	Seq                       // [header(count)] + elements; no count for arrays
	Map                       // header(count) + key/value pairs
	Optional                  // presence byte + payload when present
	Aggregate                 // header(N) + N × (header(ordinal) + value)
	Tuple                     // fields by position, no count or ordinals
)

var categoryNames = [...]string{
	Skip:      "skip",
	Bool:      "bool",
	Raw:       "raw",
	Str:       "string",
	Seq:       "sequence",
	Map:       "map",
	Optional:  "optional",
	Aggregate: "aggregate",
	Tuple:     "tuple",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "category(" + strconv.Itoa(int(c)) + ")"
}

// CategoryOf returns how values of type t are encoded. Interface types
// report Skip here; their values are dispatched on the dynamic type.
// Struct types resolve through the table registry, which decides between
// Aggregate and Tuple.
func CategoryOf(t reflect.Type) Category {
	k := t.Kind()
	switch {
	case k == reflect.Bool:
		return Bool
	case common.IsFixedKind(k):
		return Raw
	}
	switch k {
	case reflect.String:
		return Str
	case reflect.Slice, reflect.Array:
		return Seq
	case reflect.Map:
		return Map
	case reflect.Pointer:
		return Optional
	case reflect.Struct:
		tbl, err := TableOf(t)
		if err == nil && tbl.Kind() == KindTuple {
			return Tuple
		}
		return Aggregate
	default:
		// func, chan, unsafe.Pointer, interface
		return Skip
	}
}

// hasStaticLen reports whether a Seq type's length is part of the type.
func hasStaticLen(t reflect.Type) bool {
	return t.Kind() == reflect.Array
}
