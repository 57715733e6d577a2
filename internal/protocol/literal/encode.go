package literal

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/danmuck/tcpevents/internal/protocol"
)

const hexDigits = "0123456789abcdef"

var timeType = reflect.TypeOf(time.Time{})

// Encode renders v in literal form.
func Encode(v any) (string, error) {
	var b strings.Builder
	if err := encodeValue(&b, reflect.ValueOf(v), 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

// EncodeWrapped renders v as a one-element list, the form every value takes on the wire.
func EncodeWrapped(v any) (string, error) {
	return Encode([]any{v})
}

// Render is the plain-text form used for peers that do not decode literals:
// strings pass through untouched, everything else is encoded.
func Render(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	out, err := Encode(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return out
}

func encodeValue(b *strings.Builder, rv reflect.Value, depth int) error {
	if depth > maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", protocol.ErrUnsupportedLiteral, maxDepth)
	}
	if !rv.IsValid() {
		b.WriteString("null")
		return nil
	}
	if rv.Type() == timeType {
		t := rv.Interface().(time.Time)
		b.WriteByte('t')
		writeString(b, t.UTC().Format(time.RFC3339Nano))
		return nil
	}
	switch rv.Kind() {
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			b.WriteString("null")
			return nil
		}
		return encodeValue(b, rv.Elem(), depth)
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return fmt.Errorf("%w: integer %d overflows int64", protocol.ErrUnsupportedLiteral, u)
		}
		b.WriteString(strconv.FormatUint(u, 10))
	case reflect.Float32, reflect.Float64:
		writeFloat(b, rv.Float())
	case reflect.String:
		writeString(b, rv.String())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			writeString(b, string(rv.Bytes()))
			return nil
		}
		b.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := encodeValue(b, rv.Index(i), depth+1); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return fmt.Errorf("%w: map key type %s", protocol.ErrUnsupportedLiteral, rv.Type().Key())
		}
		keys := make([]string, 0, rv.Len())
		byKey := make(map[string]reflect.Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			keys = append(keys, k)
			byKey[k] = iter.Value()
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			writeString(b, k)
			b.WriteString(": ")
			if err := encodeValue(b, byKey[k], depth+1); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("%w: %s", protocol.ErrUnsupportedLiteral, rv.Type())
	}
	return nil
}

func writeFloat(b *strings.Builder, f float64) {
	switch {
	case math.IsNaN(f):
		b.WriteString("nan")
		return
	case math.IsInf(f, 1):
		b.WriteString("inf")
		return
	case math.IsInf(f, -1):
		b.WriteString("-inf")
		return
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	b.WriteString(s)
}

func writeString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f || r == 0x2028 || r == 0x2029:
			writeUnicodeEscape(b, r)
		case r == utf8.RuneError && size == 1:
			// invalid byte; escape as the replacement character
			writeUnicodeEscape(b, utf8.RuneError)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	b.WriteByte('"')
}

func writeUnicodeEscape(b *strings.Builder, r rune) {
	b.WriteString(`\u`)
	b.WriteByte(hexDigits[(r>>12)&0xf])
	b.WriteByte(hexDigits[(r>>8)&0xf])
	b.WriteByte(hexDigits[(r>>4)&0xf])
	b.WriteByte(hexDigits[r&0xf])
}

// Normalize converts v into the decoded value model (int64, float64, []any,
// map[string]any, ...), as a receiver would see it.
func Normalize(v any) (any, error) {
	s, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return Decode(s)
}
