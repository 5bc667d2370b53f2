package partwire

import (
	"fmt"
	"reflect"

	"github.com/rawbytedev/partwire/pkg/selector"
)

// EncodePartial encodes only the parts of v named by selectors into the
// encoder's buffer. See AppendPaths for the format.
func (e *Encoder) EncodePartial(v any, selectors ...string) ([]byte, error) {
	var err error
	e.buf, err = e.AppendPartial(e.buf[:0], v, selectors...)
	return e.buf, err
}

// AppendPartial parses selectors (JSON pointer syntax) and appends the
// partial encoding of v to dst. No selectors, or only "", encodes v whole.
func (e *Encoder) AppendPartial(dst []byte, v any, selectors ...string) ([]byte, error) {
	paths, err := selector.ParseAll(selectors...)
	if err != nil {
		return dst, err
	}
	return e.AppendPaths(dst, v, paths)
}

// AppendPaths appends the partial encoding of v selected by paths, which must
// be sorted and free of duplicates as returned by selector.Normalize.
//
// At each level the selected keys of a struct or map are written as a
// header(count) followed, per key, by the field ordinal or the encoded map
// key and then the nested partial encoding. A key selected whole is encoded
// in full.
func (e *Encoder) AppendPaths(dst []byte, v any, paths []selector.Path) ([]byte, error) {
	st := encodeState{opts: e.Opts, maxDepth: e.Opts.maxDepth(), buf: dst}
	err := st.encodePartial(topLevel(v), paths)
	return st.buf, err
}

// MarshalPartial returns the partial encoding of v with default options.
func MarshalPartial(v any, selectors ...string) ([]byte, error) {
	return AppendPartial(nil, v, selectors...)
}

// AppendPartial appends the partial encoding of v with default options.
func AppendPartial(dst []byte, v any, selectors ...string) ([]byte, error) {
	var e Encoder
	return e.AppendPartial(dst, v, selectors...)
}

func (e *encodeState) encodePartial(v reflect.Value, paths []selector.Path) error {
	if selector.IsWhole(paths) {
		return e.encode(v)
	}
	if e.depth >= e.maxDepth {
		return ErrMaxDepth
	}
	e.depth++
	defer func() { e.depth-- }()

	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	var tbl *Table
	switch v.Kind() {
	case reflect.Struct:
		var err error
		if tbl, err = TableOf(v.Type()); err != nil {
			return err
		}
		if tbl.kind == KindTuple {
			return typeErrf(v.Type(), ErrUnsupportedPartialTarget, "tuple")
		}
	case reflect.Map:
	default:
		if !v.IsValid() {
			return ErrUnsupportedPartialTarget
		}
		return typeErrf(v.Type(), ErrUnsupportedPartialTarget, "%v", CategoryOf(v.Type()))
	}

	groups, err := selector.Partition(paths)
	if err != nil {
		return err
	}
	if err := e.header(len(groups)); err != nil {
		return err
	}
	if tbl != nil {
		return e.partialStruct(tbl, v, groups)
	}
	return e.partialMap(v, groups)
}

func (e *encodeState) partialStruct(tbl *Table, v reflect.Value, groups []selector.Group) error {
	for _, g := range groups {
		ord, err := tbl.Ordinal(g.Key)
		if err != nil {
			return withPath(g.Key, fmt.Errorf("%w: %w", ErrInvalidKey, err))
		}
		if err := e.header(ord); err != nil {
			return err
		}
		if err := e.encodePartial(tbl.accessors[ord](v), g.SubPaths); err != nil {
			return withPath(g.Key, err)
		}
	}
	return nil
}

func (e *encodeState) partialMap(v reflect.Value, groups []selector.Group) error {
	keyType := v.Type().Key()
	for _, g := range groups {
		key, err := lookupKey(v, g.Key)
		if err != nil {
			return withPath(g.Key, fmt.Errorf("%w %q for %v: %w", ErrInvalidKey, g.Key, keyType, err))
		}
		if err := e.encode(key); err != nil {
			return withPath(g.Key, err)
		}
		val := v.MapIndex(key)
		if !val.IsValid() {
			return withPath(g.Key, fmt.Errorf("%w %q", ErrMissingMapKey, g.Key))
		}
		if err := e.encodePartial(val, g.SubPaths); err != nil {
			return withPath(g.Key, err)
		}
	}
	return nil
}
