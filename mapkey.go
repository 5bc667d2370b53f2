package partwire

import (
	"encoding"
	"reflect"
	"strconv"
)

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// mapKey converts a selector segment into a key of type t.
func mapKey(t reflect.Type, s string) (reflect.Value, error) {
	k := reflect.New(t).Elem()
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		err := k.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
		return k, err
	}
	switch t.Kind() {
	case reflect.String:
		k.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return k, err
		}
		k.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return k, err
		}
		k.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return k, err
		}
		k.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return k, err
		}
		k.SetBool(b)
	case reflect.Interface:
		sv := reflect.ValueOf(s)
		if !sv.Type().AssignableTo(t) {
			return k, ErrUnsupported
		}
		k.Set(sv)
	default:
		return k, ErrUnsupported
	}
	return k, nil
}

// lookupKey converts s into a key of map m. Interface-keyed maps, as built
// by generic YAML or JSON decoders, may hold keys of any scalar type, so s
// is tried as an int, a bool, a float and a string, keeping the first key
// present in m. When none is present the plain mapKey conversion is used.
func lookupKey(m reflect.Value, s string) (reflect.Value, error) {
	t := m.Type().Key()
	if t.Kind() != reflect.Interface || reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return mapKey(t, s)
	}
	for _, c := range keyCandidates(s) {
		cv := reflect.ValueOf(c)
		if !cv.Type().AssignableTo(t) {
			continue
		}
		k := reflect.New(t).Elem()
		k.Set(cv)
		if m.MapIndex(k).IsValid() {
			return k, nil
		}
	}
	return mapKey(t, s)
}

func keyCandidates(s string) []any {
	var out []any
	if n, err := strconv.ParseInt(s, 10, strconv.IntSize); err == nil {
		out = append(out, int(n))
	}
	if s == "true" || s == "false" {
		out = append(out, s == "true")
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		out = append(out, f)
	}
	return append(out, s)
}
