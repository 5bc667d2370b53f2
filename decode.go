package partwire

import (
	"fmt"
	"reflect"
	"strconv"
	"unsafe"

	"github.com/rawbytedev/partwire/internal/common"
	"github.com/rawbytedev/partwire/pkg/header"
)

// Decoder reads full (non-partial) encodings back into Go values.
type Decoder struct {
	Opts Options
}

func NewDecoder(opts Options) *Decoder {
	return &Decoder{Opts: opts}
}

// Decode decodes data into the value out points to. All of data must be
// consumed.
func (d *Decoder) Decode(data []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return ErrNotPointer
	}
	st := decodeState{opts: d.Opts, maxDepth: d.Opts.maxDepth(), data: data}
	if err := st.decode(rv.Elem()); err != nil {
		return err
	}
	if st.off != len(data) {
		return fmt.Errorf("%w: %d of %d bytes used", ErrTrailingData, st.off, len(data))
	}
	return nil
}

// Unmarshal decodes data into out with default options.
//
// A nil interface value reads nothing and stays nil, mirroring the encoder
// which writes nothing for it. Decoding into a non-nil interface fails with
// ErrUnsupported.
func Unmarshal(data []byte, out any) error {
	var d Decoder
	return d.Decode(data, out)
}

type decodeState struct {
	opts     Options
	maxDepth int
	depth    int
	data     []byte
	off      int
}

func (d *decodeState) remaining() int { return len(d.data) - d.off }

func (d *decodeState) next(n int) ([]byte, error) {
	if n < 0 || n > d.remaining() {
		return nil, ErrShortBuffer
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

func (d *decodeState) header() (int, error) {
	n, used, err := header.Decode(d.data[d.off:])
	if err != nil {
		return 0, ErrShortBuffer
	}
	d.off += used
	return int(n), nil
}

func (d *decodeState) decode(v reflect.Value) error {
	if d.depth >= d.maxDepth {
		return ErrMaxDepth
	}
	d.depth++
	defer func() { d.depth-- }()

	t := v.Type()
	switch k := t.Kind(); {
	case k == reflect.Bool:
		b, err := d.next(1)
		if err != nil {
			return err
		}
		v.SetBool(b[0] != 0)
		return nil
	case common.IsFixedKind(k):
		b, err := d.next(int(t.Size()))
		if err != nil {
			return err
		}
		common.SetFixed(v, b)
		return nil
	}

	switch t.Kind() {
	case reflect.String:
		n, err := d.header()
		if err != nil {
			return err
		}
		b, err := d.next(n)
		if err != nil {
			return err
		}
		if d.opts.UnsafeStrings && n > 0 {
			v.SetString(unsafe.String(&b[0], n))
		} else {
			v.SetString(string(b))
		}
		return nil
	case reflect.Slice:
		n, err := d.header()
		if err != nil {
			return err
		}
		return d.decodeSlice(v, n)
	case reflect.Array:
		return d.decodeElems(v, v.Len())
	case reflect.Map:
		return d.decodeMap(v)
	case reflect.Pointer:
		b, err := d.next(1)
		if err != nil {
			return err
		}
		switch b[0] {
		case 0:
			v.SetZero()
			return nil
		case 1:
			if v.IsNil() {
				v.Set(reflect.New(t.Elem()))
			}
			return d.decode(v.Elem())
		default:
			return fmt.Errorf("%w: presence byte %#x", ErrInvalidData, b[0])
		}
	case reflect.Struct:
		tbl, err := TableOf(t)
		if err != nil {
			return err
		}
		return d.decodeStruct(tbl, v)
	case reflect.Interface:
		// a nil interface is skipped on encode, so there is nothing to read
		if v.IsNil() {
			return nil
		}
		return typeErrf(t, ErrUnsupported, "cannot decode into an interface")
	default:
		// func, chan and unsafe.Pointer: nothing on the wire
		return nil
	}
}

func (d *decodeState) decodeSlice(v reflect.Value, n int) error {
	elem := v.Type().Elem()
	if size := common.FixedSize(elem); size > 0 {
		if n > d.remaining()/size {
			return ErrShortBuffer
		}
		s := reflect.MakeSlice(v.Type(), n, n)
		b, _ := d.next(n * size)
		common.SetBlock(s, b)
		v.Set(s)
		return nil
	}
	// grow as elements arrive so a corrupt count cannot force a huge
	// allocation up front
	s := reflect.MakeSlice(v.Type(), 0, min(n, d.remaining()))
	for i := 0; i < n; i++ {
		s = reflect.Append(s, reflect.Zero(elem))
		if err := d.decode(s.Index(i)); err != nil {
			return withPath(strconv.Itoa(i), err)
		}
	}
	v.Set(s)
	return nil
}

func (d *decodeState) decodeElems(v reflect.Value, n int) error {
	for i := 0; i < n; i++ {
		if err := d.decode(v.Index(i)); err != nil {
			return withPath(strconv.Itoa(i), err)
		}
	}
	return nil
}

func (d *decodeState) decodeMap(v reflect.Value) error {
	n, err := d.header()
	if err != nil {
		return err
	}
	t := v.Type()
	m := reflect.MakeMapWithSize(t, min(n, d.remaining()))
	for i := 0; i < n; i++ {
		key := reflect.New(t.Key()).Elem()
		if err := d.decode(key); err != nil {
			return withPath(strconv.Itoa(i), err)
		}
		val := reflect.New(t.Elem()).Elem()
		if err := d.decode(val); err != nil {
			return withPath(fmt.Sprint(key), err)
		}
		m.SetMapIndex(key, val)
	}
	v.Set(m)
	return nil
}

func (d *decodeState) decodeStruct(tbl *Table, v reflect.Value) error {
	if tbl.kind == KindTuple {
		for i, f := range tbl.fields {
			if err := d.decodeField(tbl, i, v); err != nil {
				return withPath(f.Name, err)
			}
		}
		return nil
	}
	n, err := d.header()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		ord, err := d.header()
		if err != nil {
			return err
		}
		if ord >= len(tbl.fields) {
			return fmt.Errorf("%w: ordinal %d in %v", ErrUnknownField, ord, tbl.typ)
		}
		if err := d.decodeField(tbl, ord, v); err != nil {
			return withPath(tbl.fields[ord].Name, err)
		}
	}
	return nil
}

// decodeField decodes into the field through its accessor; values of fields
// that cannot be set, such as computed getters, are read and dropped.
func (d *decodeState) decodeField(tbl *Table, ord int, v reflect.Value) error {
	fv := tbl.accessors[ord](v)
	if !fv.CanSet() {
		fv = reflect.New(tbl.fields[ord].Type).Elem()
	}
	return d.decode(fv)
}
