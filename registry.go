package partwire

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/hengadev/errsx"
)

// registry holds one table per struct type. Tables are built once, either
// explicitly through Register or on first use from the struct declaration,
// and never change afterwards.
type registry struct {
	mu     sync.RWMutex
	tables map[reflect.Type]*Table
}

var tables = &registry{tables: make(map[reflect.Type]*Table)}

func (r *registry) lookup(t reflect.Type) (*Table, error) {
	r.mu.RLock()
	if tbl, ok := r.tables[t]; ok {
		r.mu.RUnlock()
		return tbl, nil
	}
	r.mu.RUnlock()

	if t.Kind() != reflect.Struct {
		return nil, typeErrf(t, ErrNotStruct, "no field table")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check
	if tbl, ok := r.tables[t]; ok {
		return tbl, nil
	}
	tbl := newTable(t, KindObject, structFields(t))
	r.tables[t] = tbl
	return tbl, nil
}

func (r *registry) register(t reflect.Type, kind Kind, fields []Field) (*Table, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: cannot register %v", ErrNotStruct, t)
	}
	if len(fields) == 0 {
		fields = structFields(t)
	} else {
		fields = append([]Field(nil), fields...)
		if err := validateFields(fields); err != nil {
			return nil, typeErrf(t, err, "invalid fields")
		}
	}
	tbl := newTable(t, kind, fields)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[t]; ok {
		return nil, typeErrf(t, ErrAlreadyRegistered, "")
	}
	r.tables[t] = tbl
	return tbl, nil
}

func validateFields(fields []Field) error {
	errs := errsx.Map{}
	seen := make(map[string]int, len(fields))
	for i, f := range fields {
		key := fmt.Sprintf("field %d", i)
		switch {
		case f.Name == "":
			errs.Set(key, errors.New("empty name"))
		case f.Get == nil:
			errs.Set(key, fmt.Errorf("%q has no accessor", f.Name))
		case f.Type == nil:
			errs.Set(key, fmt.Errorf("%q has no type", f.Name))
		}
		if f.Name == "" {
			continue
		}
		if prev, dup := seen[f.Name]; dup {
			errs.Set(key, fmt.Errorf("%q duplicates field %d", f.Name, prev))
			continue
		}
		seen[f.Name] = i
	}
	return errs.AsError()
}

// TableOf returns the field table of struct type t, deriving it from the
// struct declaration when t was not registered.
func TableOf(t reflect.Type) (*Table, error) {
	return tables.lookup(t)
}

// Register installs the table for struct type t. With no fields the table is
// derived from the declaration, which is how a struct is marked as a tuple.
// A type can be registered once, and only before it is first encoded.
func Register(t reflect.Type, kind Kind, fields ...Field) (*Table, error) {
	return tables.register(t, kind, fields)
}

// RegisterObject registers T as a named-field aggregate.
func RegisterObject[T any](fields ...Field) (*Table, error) {
	return Register(reflect.TypeFor[T](), KindObject, fields...)
}

// RegisterTuple registers T as a positional tuple.
func RegisterTuple[T any](fields ...Field) (*Table, error) {
	return Register(reflect.TypeFor[T](), KindTuple, fields...)
}

// Member describes a field reached through a pointer into the struct, such
// as func(p *Point) *int { return &p.X }.
func Member[T, F any](name string, ref func(*T) *F) Field {
	return Field{
		Name: name,
		Type: reflect.TypeFor[F](),
		Get: func(v reflect.Value) reflect.Value {
			if !v.CanAddr() {
				tmp := reflect.New(v.Type()).Elem()
				tmp.Set(v)
				v = tmp
			}
			return reflect.ValueOf(ref(v.Addr().Interface().(*T))).Elem()
		},
	}
}

// Getter describes a computed field. Its value is encoded but cannot be
// decoded back into the struct.
func Getter[T, F any](name string, get func(T) F) Field {
	return Field{
		Name: name,
		Type: reflect.TypeFor[F](),
		Get: func(v reflect.Value) reflect.Value {
			f := get(v.Interface().(T))
			// keep F as the static type even when F is an interface
			return reflect.ValueOf(&f).Elem()
		},
	}
}
