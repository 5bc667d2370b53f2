package partwire

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Kind distinguishes named-field tables from positional ones.
type Kind uint8

const (
	KindObject Kind = iota // encoded as Aggregate
	KindTuple              // encoded as Tuple
)

func (k Kind) String() string {
	if k == KindTuple {
		return "tuple"
	}
	return "object"
}

// Field describes one reflected field of a struct type.
//
// Get receives a struct value and returns the field value. For fields
// derived from a struct declaration it is a plain field access; registered
// fields may compute the value instead.
type Field struct {
	Name string
	Doc  string
	Type reflect.Type
	Get  func(reflect.Value) reflect.Value
}

// WithDoc returns a copy of f with its doc string set.
func (f Field) WithDoc(doc string) Field {
	f.Doc = doc
	return f
}

// Table is the immutable field metadata of one struct type. Field order is
// declaration order and defines each field's ordinal.
type Table struct {
	typ         reflect.Type
	kind        Kind
	fields      []Field
	ordinals    map[string]int
	accessors   []func(reflect.Value) reflect.Value
	fingerprint uint64
}

func newTable(t reflect.Type, kind Kind, fields []Field) *Table {
	tbl := &Table{
		typ:       t,
		kind:      kind,
		fields:    fields,
		ordinals:  make(map[string]int, len(fields)),
		accessors: make([]func(reflect.Value) reflect.Value, len(fields)),
	}
	h := xxhash.New()
	h.WriteString(t.String())
	h.WriteString(kind.String())
	for i, f := range fields {
		tbl.ordinals[f.Name] = i
		tbl.accessors[i] = f.Get
		h.WriteString("\x00")
		h.WriteString(f.Name)
		h.WriteString("\x00")
		h.WriteString(f.Type.String())
	}
	tbl.fingerprint = h.Sum64()
	return tbl
}

func (tbl *Table) Type() reflect.Type { return tbl.typ }
func (tbl *Table) Kind() Kind         { return tbl.kind }
func (tbl *Table) Len() int           { return len(tbl.fields) }

// Fields returns the fields in ordinal order. The slice must not be
// modified.
func (tbl *Table) Fields() []Field { return tbl.fields }

// Field returns the field with the given ordinal.
func (tbl *Table) Field(ordinal int) (Field, error) {
	if ordinal < 0 || ordinal >= len(tbl.fields) {
		return Field{}, fmt.Errorf("%w: ordinal %d in %v", ErrUnknownField, ordinal, tbl.typ)
	}
	return tbl.fields[ordinal], nil
}

// Ordinal resolves a field name to its ordinal.
func (tbl *Table) Ordinal(name string) (int, error) {
	i, ok := tbl.ordinals[name]
	if !ok {
		return -1, fmt.Errorf("%w %q in %v", ErrUnknownField, name, tbl.typ)
	}
	return i, nil
}

// Accessor returns the accessor of the field with the given ordinal.
func (tbl *Table) Accessor(ordinal int) (func(reflect.Value) reflect.Value, error) {
	if ordinal < 0 || ordinal >= len(tbl.accessors) {
		return nil, fmt.Errorf("%w: ordinal %d in %v", ErrUnknownField, ordinal, tbl.typ)
	}
	return tbl.accessors[ordinal], nil
}

// Fingerprint hashes the type name, kind and field list. Two tables with the
// same fingerprint produce compatible encodings.
func (tbl *Table) Fingerprint() uint64 { return tbl.fingerprint }

// SchemaID returns the table fingerprint of v's struct type, following a
// top-level pointer. Values that are not structs, or whose table cannot be
// derived, have schema id 0.
func SchemaID(v any) uint64 {
	rv := topLevel(v)
	if rv.Kind() != reflect.Struct {
		return 0
	}
	tbl, err := TableOf(rv.Type())
	if err != nil {
		return 0
	}
	return tbl.fingerprint
}

func (tbl *Table) String() string {
	var buf strings.Builder
	buf.WriteString(tbl.typ.String())
	buf.WriteString(" ")
	buf.WriteString(tbl.kind.String())
	buf.WriteString(" {")
	for i, f := range tbl.fields {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%d:%s %v", i, f.Name, f.Type)
	}
	buf.WriteString("}")
	return buf.String()
}

// structFields derives fields from a struct declaration: exported fields in
// order, named by the `wire` tag or the Go name, `wire:"-"` skipped.
func structFields(t reflect.Type) []Field {
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("wire"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		fields = append(fields, Field{
			Name: name,
			Doc:  sf.Tag.Get("doc"),
			Type: sf.Type,
			Get: func(v reflect.Value) reflect.Value {
				return v.Field(i)
			},
		})
	}
	return fields
}
