package partwire

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/rawbytedev/partwire/pkg/header"
	"github.com/rawbytedev/partwire/pkg/selector"
)

var (
	ErrSizeUnsupported          = header.ErrSizeUnsupported
	ErrInvalidSelectorSet       = selector.ErrInvalidSelectorSet
	ErrUnknownField             = errors.New("unknown field")
	ErrInvalidKey               = errors.New("invalid key")
	ErrMissingMapKey            = errors.New("missing map key")
	ErrUnsupportedPartialTarget = errors.New("partial selection requires a struct or map")
	ErrUnsupported              = errors.New("unsupported type")
	ErrNotStruct                = errors.New("expected struct")
	ErrNotPointer               = errors.New("expected non-nil pointer")
	ErrAlreadyRegistered        = errors.New("type already registered")
	ErrMaxDepth                 = errors.New("maximum nesting depth exceeded")
	ErrShortBuffer              = errors.New("unexpected end of data")
	ErrTrailingData             = errors.New("trailing data after value")
	ErrInvalidData              = errors.New("invalid data")
)

// PathError records where in a value an encode or decode failed.
type PathError struct {
	Path []string
	Err  error
}

// withPath prefixes the location of err with seg. Errors are wrapped once
// at the failure point and the path grows as the recursion unwinds.
func withPath(seg string, err error) error {
	var pe *PathError
	if errors.As(err, &pe) {
		pe.Path = append([]string{seg}, pe.Path...)
		return err
	}
	return &PathError{Path: []string{seg}, Err: err}
}

func (e *PathError) Unwrap() error { return e.Err }

func (e *PathError) Error() string {
	if len(e.Path) == 0 {
		return e.Err.Error()
	}
	return "/" + strings.Join(e.Path, "/") + ": " + e.Err.Error()
}

// TypeError reports a Go type the codec cannot handle in some position.
type TypeError struct {
	Type reflect.Type
	Msg  string
	Err  error
}

func typeErrf(t reflect.Type, err error, format string, args ...any) error {
	return &TypeError{Type: t, Err: err, Msg: fmt.Sprintf(format, args...)}
}

func (e *TypeError) Unwrap() error { return e.Err }

func (e *TypeError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Type.String())
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}
