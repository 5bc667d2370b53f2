package partwire

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/rawbytedev/partwire/internal/common"
	"github.com/rawbytedev/partwire/pkg/header"
)

// Encoder writes values in the partwire binary format. It keeps an output
// buffer between calls and is not safe for concurrent use; the package-level
// functions allocate per call and are.
type Encoder struct {
	Opts Options
	buf  []byte
}

func NewEncoder(opts Options) *Encoder {
	return &Encoder{Opts: opts}
}

// Encode encodes v into the encoder's buffer. The result is only valid until
// the next call on e. On error the partially written bytes are returned.
func (e *Encoder) Encode(v any) ([]byte, error) {
	var err error
	e.buf, err = e.Append(e.buf[:0], v)
	return e.buf, err
}

// Append appends the encoding of v to dst. A non-nil pointer is followed
// first; a nil pointer encodes as an absent optional.
//
// On error the bytes written before the failure are kept in the returned
// slice; they are not a valid encoding.
func (e *Encoder) Append(dst []byte, v any) ([]byte, error) {
	st := encodeState{opts: e.Opts, maxDepth: e.Opts.maxDepth(), buf: dst}
	err := st.encode(topLevel(v))
	return st.buf, err
}

// Marshal returns the encoding of v with default options.
func Marshal(v any) ([]byte, error) {
	return Append(nil, v)
}

// Append appends the encoding of v to dst with default options.
func Append(dst []byte, v any) ([]byte, error) {
	var e Encoder
	return e.Append(dst, v)
}

func topLevel(v any) reflect.Value {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv
}

type encodeState struct {
	opts     Options
	maxDepth int
	depth    int
	buf      []byte
}

func (e *encodeState) header(n int) error {
	var err error
	e.buf, err = header.Append(e.buf, uint64(n))
	return err
}

func (e *encodeState) encode(v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	if e.depth >= e.maxDepth {
		return ErrMaxDepth
	}
	e.depth++
	defer func() { e.depth-- }()

	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch k := v.Kind(); {
	case k == reflect.Bool:
		if v.Bool() {
			e.buf = append(e.buf, 1)
		} else {
			e.buf = append(e.buf, 0)
		}
		return nil
	case common.IsFixedKind(k):
		e.buf = common.AppendFixed(e.buf, v)
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		s := v.String()
		if err := e.header(len(s)); err != nil {
			return err
		}
		e.buf = append(e.buf, s...)
		return nil
	case reflect.Slice, reflect.Array:
		return e.encodeSeq(v)
	case reflect.Map:
		return e.encodeMap(v)
	case reflect.Pointer:
		if v.IsNil() {
			e.buf = append(e.buf, 0)
			return nil
		}
		e.buf = append(e.buf, 1)
		return e.encode(v.Elem())
	case reflect.Struct:
		tbl, err := TableOf(v.Type())
		if err != nil {
			return err
		}
		return e.encodeStruct(tbl, v)
	default:
		// func, chan and unsafe.Pointer carry no data
		return nil
	}
}

func (e *encodeState) encodeSeq(v reflect.Value) error {
	t := v.Type()
	n := v.Len()
	if !hasStaticLen(t) {
		if err := e.header(n); err != nil {
			return err
		}
	}
	elemKind := t.Elem().Kind()
	if elemKind == reflect.Uint8 && t.Kind() == reflect.Slice {
		e.buf = append(e.buf, v.Bytes()...)
		return nil
	}
	if e.opts.UnsafePrimitives && common.IsFixedKind(elemKind) {
		if b, ok := common.BlockBytes(v); ok {
			e.buf = append(e.buf, b...)
			return nil
		}
	}
	for i := 0; i < n; i++ {
		if err := e.encode(v.Index(i)); err != nil {
			return withPath(strconv.Itoa(i), err)
		}
	}
	return nil
}

func (e *encodeState) encodeMap(v reflect.Value) error {
	if err := e.header(v.Len()); err != nil {
		return err
	}
	if e.opts.SortMapKeys {
		return e.encodeMapSorted(v)
	}
	iter := v.MapRange()
	for iter.Next() {
		if err := e.encode(iter.Key()); err != nil {
			return withPath(fmt.Sprint(iter.Key()), err)
		}
		if err := e.encode(iter.Value()); err != nil {
			return withPath(fmt.Sprint(iter.Key()), err)
		}
	}
	return nil
}

type mapEntry struct {
	key []byte
	val reflect.Value
	raw reflect.Value
}

func (e *encodeState) encodeMapSorted(v reflect.Value) error {
	entries := make([]mapEntry, 0, v.Len())
	out := e.buf
	iter := v.MapRange()
	for iter.Next() {
		e.buf = nil
		if err := e.encode(iter.Key()); err != nil {
			e.buf = out
			return withPath(fmt.Sprint(iter.Key()), err)
		}
		entries = append(entries, mapEntry{key: e.buf, val: iter.Value(), raw: iter.Key()})
	}
	e.buf = out
	slices.SortFunc(entries, func(a, b mapEntry) int { return bytes.Compare(a.key, b.key) })
	for _, ent := range entries {
		e.buf = append(e.buf, ent.key...)
		if err := e.encode(ent.val); err != nil {
			return withPath(fmt.Sprint(ent.raw), err)
		}
	}
	return nil
}

func (e *encodeState) encodeStruct(tbl *Table, v reflect.Value) error {
	if tbl.kind == KindTuple {
		for i, f := range tbl.fields {
			if err := e.encode(tbl.accessors[i](v)); err != nil {
				return withPath(f.Name, err)
			}
		}
		return nil
	}
	if err := e.header(len(tbl.fields)); err != nil {
		return err
	}
	for i, f := range tbl.fields {
		if err := e.header(i); err != nil {
			return err
		}
		if err := e.encode(tbl.accessors[i](v)); err != nil {
			return withPath(f.Name, err)
		}
	}
	return nil
}
