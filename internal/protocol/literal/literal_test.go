package literal

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/danmuck/tcpevents/internal/protocol"
)

func TestRoundTripSupportedValues(t *testing.T) {
	ts := time.Date(2024, 3, 9, 17, 4, 5, 123456789, time.UTC)
	cases := []any{
		nil,
		true,
		false,
		int64(0),
		int64(-42),
		int64(math.MaxInt64),
		int64(math.MinInt64),
		1.5,
		-0.25,
		3.0,
		1e300,
		"",
		"plain",
		"quote \" backslash \\ newline \n tab \t",
		"unicode é 日本 \u2028",
		"\x01 control",
		ts,
		[]any{},
		[]any{int64(1), "two", 3.5, nil, []any{true}},
		map[string]any{},
		map[string]any{"a": int64(1), "b": []any{"x"}, "c": map[string]any{"d": nil}},
	}
	for _, in := range cases {
		enc, err := Encode(in)
		if err != nil {
			t.Fatalf("encode %#v: %v", in, err)
		}
		out, err := Decode(enc)
		if err != nil {
			t.Fatalf("decode %q: %v", enc, err)
		}
		if !reflect.DeepEqual(in, out) {
			t.Fatalf("round-trip mismatch: in=%#v enc=%q out=%#v", in, enc, out)
		}
	}
}

func TestRoundTripSpecialFloats(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1)} {
		enc, err := Encode(f)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		out, err := Decode(enc)
		if err != nil || out.(float64) != f {
			t.Fatalf("inf mismatch enc=%q out=%v err=%v", enc, out, err)
		}
	}
	enc, _ := Encode(math.NaN())
	out, err := Decode(enc)
	if err != nil || !math.IsNaN(out.(float64)) {
		t.Fatalf("nan mismatch enc=%q out=%v err=%v", enc, out, err)
	}
}

func TestIntegerAndFloatStayDistinct(t *testing.T) {
	enc, _ := Encode(2.0)
	if enc != "2.0" {
		t.Fatalf("float must keep a fraction: %q", enc)
	}
	v, _ := Decode("2")
	if _, ok := v.(int64); !ok {
		t.Fatalf("expected int64, got %T", v)
	}
	v, _ = Decode("2e3")
	if _, ok := v.(float64); !ok {
		t.Fatalf("expected float64, got %T", v)
	}
}

func TestEncodeNormalizesGoTypes(t *testing.T) {
	in := map[string]any{
		"ints":  []int{1, 2, 3},
		"u8":    uint8(7),
		"f32":   float32(0.5),
		"bytes": []byte("raw"),
		"ptr":   (*int)(nil),
	}
	out, err := Normalize(in)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	want := map[string]any{
		"ints":  []any{int64(1), int64(2), int64(3)},
		"u8":    int64(7),
		"f32":   0.5,
		"bytes": "raw",
		"ptr":   nil,
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("unexpected normalized value: %#v", out)
	}
}

func TestEncodeSortsMapKeys(t *testing.T) {
	enc, err := Encode(map[string]int{"b": 2, "a": 1})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if enc != `{"a": 1, "b": 2}` {
		t.Fatalf("unexpected encoding: %q", enc)
	}
}

func TestEncodeRejectsUnsupported(t *testing.T) {
	if _, err := Encode(map[int]string{1: "x"}); !errors.Is(err, protocol.ErrUnsupportedLiteral) {
		t.Fatalf("expected ErrUnsupportedLiteral for int keys, got %v", err)
	}
	if _, err := Encode(make(chan int)); !errors.Is(err, protocol.ErrUnsupportedLiteral) {
		t.Fatalf("expected ErrUnsupportedLiteral for chan, got %v", err)
	}
	if _, err := Encode(uint64(math.MaxUint64)); !errors.Is(err, protocol.ErrUnsupportedLiteral) {
		t.Fatalf("expected ErrUnsupportedLiteral for uint64 overflow, got %v", err)
	}
}

func TestDecodeAcceptsLegacySpellings(t *testing.T) {
	v, err := Decode(`[None, True, False, 'single \'q\'', {'k': 1,}, ]`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []any{nil, true, false, "single 'q'", map[string]any{"k": int64(1)}}
	if !reflect.DeepEqual(v, want) {
		t.Fatalf("unexpected value: %#v", v)
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, in := range []string{
		"",
		"[1, 2",
		"{1: 2}",
		`"open`,
		"[1 2]",
		"5 6",
		"foo",
		"-",
		"1e",
		`t"not a time"`,
		`"\q"`,
		"99999999999999999999",
	} {
		if _, err := Decode(in); !errors.Is(err, protocol.ErrMalformedLiteral) {
			t.Fatalf("Decode(%q) expected ErrMalformedLiteral, got %v", in, err)
		}
	}
}

func TestWrapped(t *testing.T) {
	enc, err := EncodeWrapped([]any{int64(1), int64(2), int64(3)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if enc != "[[1, 2, 3]]" {
		t.Fatalf("unexpected wrapped encoding: %q", enc)
	}
	v, err := DecodeWrapped(`["1+1"]`)
	if err != nil || v != "1+1" {
		t.Fatalf("unexpected unwrap: %#v %v", v, err)
	}
	v, err = DecodeWrapped("[5]")
	if err != nil || v != int64(5) {
		t.Fatalf("unexpected unwrap: %#v %v", v, err)
	}
	if _, err := DecodeWrapped("5"); !errors.Is(err, protocol.ErrMalformedLiteral) {
		t.Fatalf("expected ErrMalformedLiteral for bare scalar, got %v", err)
	}
	if _, err := DecodeWrapped("[1, 2, 3]"); !errors.Is(err, protocol.ErrMalformedLiteral) {
		t.Fatalf("expected ErrMalformedLiteral for multi-element list, got %v", err)
	}
}

func TestUnwrap(t *testing.T) {
	cases := []struct {
		in   string
		want any
	}{
		{"[5]", int64(5)},
		{"5", int64(5)},
		{"[1, 2, 3]", []any{int64(1), int64(2), int64(3)}},
		{"[[1, 2, 3]]", []any{int64(1), int64(2), int64(3)}},
		{"[]", []any{}},
	}
	for _, tc := range cases {
		got, err := Unwrap(tc.in)
		if err != nil {
			t.Fatalf("unwrap %q: %v", tc.in, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("unwrap %q: got %#v want %#v", tc.in, got, tc.want)
		}
	}
	if _, err := Unwrap("withoutRelease"); !errors.Is(err, protocol.ErrMalformedLiteral) {
		t.Fatalf("expected ErrMalformedLiteral, got %v", err)
	}
}

func TestRender(t *testing.T) {
	if Render("as is") != "as is" {
		t.Fatalf("strings must pass through")
	}
	if Render([]any{int64(1)}) != "[1]" {
		t.Fatalf("unexpected render: %q", Render([]any{int64(1)}))
	}
}
