package partwire_test

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/rawbytedev/partwire"
	"github.com/rawbytedev/partwire/pkg/frame"
)

type Reading struct {
	Station string `wire:"station"`
	Temp    int8   `wire:"temp"`
	Wind    struct {
		Speed uint8 `wire:"speed"`
		Dir   uint8 `wire:"dir"`
	} `wire:"wind"`
}

func ExampleMarshal() {
	b, err := partwire.Marshal([]byte{1, 2, 3})
	if err != nil {
		panic(err)
	}
	fmt.Printf("% x\n", b)
	// Output: 0c 01 02 03
}

func ExampleMarshalPartial() {
	var r Reading
	r.Station = "north"
	r.Temp = -4
	r.Wind.Speed = 12
	r.Wind.Dir = 90

	b, err := partwire.MarshalPartial(r, "/temp", "/wind/speed")
	if err != nil {
		panic(err)
	}
	fmt.Printf("% x\n", b)
	// Output: 08 04 fc 08 04 00 0c
}

func ExampleTableOf() {
	tbl, err := partwire.TableOf(reflect.TypeFor[Reading]())
	if err != nil {
		panic(err)
	}
	for _, f := range tbl.Fields() {
		ord, _ := tbl.Ordinal(f.Name)
		fmt.Println(ord, f.Name)
	}
	// Output:
	// 0 station
	// 1 temp
	// 2 wind
}

func ExampleRegisterTuple() {
	type Span struct{ Lo, Hi uint8 }
	_, err := partwire.RegisterTuple[Span]()
	if err != nil && !errors.Is(err, partwire.ErrAlreadyRegistered) {
		panic(err)
	}
	b, _ := partwire.Marshal(Span{Lo: 1, Hi: 9})
	fmt.Printf("% x\n", b)
	// Output: 01 09
}

func Example_frame() {
	r := Reading{Station: "north", Temp: -4}
	payload, _ := partwire.MarshalPartial(r, "/temp")
	f, err := frame.Encode(payload, frame.Header{
		Codec:    frame.CodecS2,
		Flags:    frame.FlagPartial,
		SchemaID: partwire.SchemaID(r),
	})
	if err != nil {
		panic(err)
	}
	h, out, err := frame.Decode(f)
	if err != nil {
		panic(err)
	}
	tbl, _ := partwire.TableOf(reflect.TypeFor[Reading]())
	fmt.Println(h.Codec, h.Partial(), h.SchemaID == tbl.Fingerprint(), len(out) == len(payload))
	// Output: s2 true true true
}
