package literal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/danmuck/tcpevents/internal/protocol"
)

const maxDepth = 256

// Decode parses one literal value; trailing input other than whitespace is an error.
func Decode(s string) (any, error) {
	d := decoder{src: s}
	d.skipSpace()
	v, err := d.value(0)
	if err != nil {
		return nil, err
	}
	d.skipSpace()
	if d.pos != len(d.src) {
		return nil, d.errorf("trailing input")
	}
	return v, nil
}

// DecodeWrapped parses a one-element list and returns its element.
func DecodeWrapped(s string) (any, error) {
	v, err := Decode(s)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected one-element list, got %s", protocol.ErrMalformedLiteral, kindName(v))
	}
	if len(list) != 1 {
		return nil, fmt.Errorf("%w: expected one-element list, got %d elements", protocol.ErrMalformedLiteral, len(list))
	}
	return list[0], nil
}

// Unwrap is the lenient receiver-side form: a one-element list yields its
// element, any other well-formed literal is returned as is.
func Unwrap(s string) (any, error) {
	v, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if list, ok := v.([]any); ok && len(list) == 1 {
		return list[0], nil
	}
	return v, nil
}

type decoder struct {
	src string
	pos int
}

func (d *decoder) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d", protocol.ErrMalformedLiteral, fmt.Sprintf(format, args...), d.pos)
}

func (d *decoder) skipSpace() {
	for d.pos < len(d.src) {
		switch d.src[d.pos] {
		case ' ', '\t', '\r', '\n':
			d.pos++
		default:
			return
		}
	}
}

func (d *decoder) value(depth int) (any, error) {
	if depth > maxDepth {
		return nil, d.errorf("nesting deeper than %d", maxDepth)
	}
	if d.pos >= len(d.src) {
		return nil, d.errorf("unexpected end of input")
	}
	c := d.src[d.pos]
	switch {
	case c == '[':
		return d.list(depth)
	case c == '{':
		return d.mapping(depth)
	case c == '"' || c == '\'':
		return d.str()
	case c == 't' && d.pos+1 < len(d.src) && (d.src[d.pos+1] == '"' || d.src[d.pos+1] == '\''):
		return d.timestamp()
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return d.number()
	default:
		return d.ident()
	}
}

func (d *decoder) list(depth int) (any, error) {
	d.pos++
	out := make([]any, 0)
	for {
		d.skipSpace()
		if d.pos < len(d.src) && d.src[d.pos] == ']' {
			d.pos++
			return out, nil
		}
		v, err := d.value(depth + 1)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		d.skipSpace()
		if d.pos >= len(d.src) {
			return nil, d.errorf("unterminated list")
		}
		switch d.src[d.pos] {
		case ',':
			d.pos++
		case ']':
			d.pos++
			return out, nil
		default:
			return nil, d.errorf("expected ',' or ']'")
		}
	}
}

func (d *decoder) mapping(depth int) (any, error) {
	d.pos++
	out := make(map[string]any)
	for {
		d.skipSpace()
		if d.pos < len(d.src) && d.src[d.pos] == '}' {
			d.pos++
			return out, nil
		}
		if d.pos >= len(d.src) || (d.src[d.pos] != '"' && d.src[d.pos] != '\'') {
			return nil, d.errorf("map keys must be strings")
		}
		key, err := d.str()
		if err != nil {
			return nil, err
		}
		d.skipSpace()
		if d.pos >= len(d.src) || d.src[d.pos] != ':' {
			return nil, d.errorf("expected ':'")
		}
		d.pos++
		d.skipSpace()
		v, err := d.value(depth + 1)
		if err != nil {
			return nil, err
		}
		out[key.(string)] = v
		d.skipSpace()
		if d.pos >= len(d.src) {
			return nil, d.errorf("unterminated map")
		}
		switch d.src[d.pos] {
		case ',':
			d.pos++
		case '}':
			d.pos++
			return out, nil
		default:
			return nil, d.errorf("expected ',' or '}'")
		}
	}
}

func (d *decoder) timestamp() (any, error) {
	d.pos++
	raw, err := d.str()
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, raw.(string))
	if err != nil {
		return nil, d.errorf("invalid time %q", raw)
	}
	return t, nil
}

func (d *decoder) str() (any, error) {
	quote := d.src[d.pos]
	d.pos++
	var b strings.Builder
	for {
		if d.pos >= len(d.src) {
			return nil, d.errorf("unterminated string")
		}
		c := d.src[d.pos]
		switch {
		case c == quote:
			d.pos++
			return b.String(), nil
		case c == '\\':
			if err := d.escape(&b); err != nil {
				return nil, err
			}
		case c < 0x20:
			return nil, d.errorf("control character in string")
		default:
			r, size := utf8.DecodeRuneInString(d.src[d.pos:])
			b.WriteRune(r)
			d.pos += size
		}
	}
}

func (d *decoder) escape(b *strings.Builder) error {
	d.pos++
	if d.pos >= len(d.src) {
		return d.errorf("unterminated escape")
	}
	c := d.src[d.pos]
	d.pos++
	switch c {
	case '"', '\'', '\\', '/':
		b.WriteByte(c)
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'u':
		r, err := d.hex4()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			if !strings.HasPrefix(d.src[d.pos:], `\u`) {
				b.WriteRune(utf8.RuneError)
				return nil
			}
			d.pos += 2
			r2, err := d.hex4()
			if err != nil {
				return err
			}
			r = utf16.DecodeRune(r, r2)
		}
		b.WriteRune(r)
	default:
		return d.errorf("invalid escape '\\%c'", c)
	}
	return nil
}

func (d *decoder) hex4() (rune, error) {
	if d.pos+4 > len(d.src) {
		return 0, d.errorf("short unicode escape")
	}
	n, err := strconv.ParseUint(d.src[d.pos:d.pos+4], 16, 32)
	if err != nil {
		return 0, d.errorf("invalid unicode escape")
	}
	d.pos += 4
	return rune(n), nil
}

func (d *decoder) number() (any, error) {
	start := d.pos
	if c := d.src[d.pos]; c == '-' || c == '+' {
		d.pos++
		if strings.HasPrefix(d.src[d.pos:], "inf") {
			d.pos += 3
			if c == '-' {
				return math.Inf(-1), nil
			}
			return math.Inf(1), nil
		}
	}
	isFloat := false
	digits := d.digits()
	if d.pos < len(d.src) && d.src[d.pos] == '.' {
		isFloat = true
		d.pos++
		digits += d.digits()
	}
	if digits == 0 {
		return nil, d.errorf("invalid number")
	}
	if d.pos < len(d.src) && (d.src[d.pos] == 'e' || d.src[d.pos] == 'E') {
		isFloat = true
		d.pos++
		if d.pos < len(d.src) && (d.src[d.pos] == '+' || d.src[d.pos] == '-') {
			d.pos++
		}
		if d.digits() == 0 {
			return nil, d.errorf("invalid exponent")
		}
	}
	text := d.src[start:d.pos]
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, d.errorf("invalid float %q", text)
		}
		return f, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, d.errorf("invalid integer %q", text)
	}
	return n, nil
}

func (d *decoder) digits() int {
	n := 0
	for d.pos < len(d.src) && d.src[d.pos] >= '0' && d.src[d.pos] <= '9' {
		d.pos++
		n++
	}
	return n
}

func (d *decoder) ident() (any, error) {
	start := d.pos
	for d.pos < len(d.src) {
		c := d.src[d.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			d.pos++
			continue
		}
		break
	}
	switch word := d.src[start:d.pos]; word {
	case "null", "None":
		return nil, nil
	case "true", "True":
		return true, nil
	case "false", "False":
		return false, nil
	case "inf":
		return math.Inf(1), nil
	case "nan":
		return math.NaN(), nil
	default:
		d.pos = start
		return nil, d.errorf("unexpected token")
	}
}

func kindName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	case time.Time:
		return "time"
	case []any:
		return "list"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
