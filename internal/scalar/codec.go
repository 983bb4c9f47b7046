package scalar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
)

// ErrSerialization is returned for every malformed, unrecognized or
// unsupported scalar on either side of the codec.
var ErrSerialization = errors.New("scalar serialization error")

const (
	tagField   = "$tc"
	valueField = "$val"
)

// wireScalar is the tagged object written for every non-null value.
type wireScalar struct {
	TC  Kind            `json:"$tc"`
	Val json.RawMessage `json:"$val"`
}

// Encode serializes v as {"$tc": <type code>, "$val": <value>}, or as the
// JSON null token for nil and Null.
//
// v may be a Value or any Go type accepted by Of. Unsupported kinds fail
// with ErrSerialization instead of being stringified.
func Encode(v any) ([]byte, error) {
	val, err := Of(v)
	if err != nil {
		return nil, err
	}
	if _, ok := val.(Null); ok {
		return []byte("null"), nil
	}

	raw, err := encodeNatural(val)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(wireScalar{TC: val.Kind(), Val: raw})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return out, nil
}

// encodeNatural renders the value in its kind's natural JSON encoding.
func encodeNatural(v Value) (json.RawMessage, error) {
	switch val := v.(type) {
	case Bool:
		return json.Marshal(bool(val))
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		return json.RawMessage(val.String()), nil
	case Float32:
		return encodeFloat(float64(val), 32), nil
	case Float64:
		return encodeFloat(float64(val), 64), nil
	case Decimal:
		if val.d.Form != apd.Finite {
			return nil, fmt.Errorf("%w: non-finite decimal", ErrSerialization)
		}
		return json.RawMessage(val.d.Text('f')), nil
	case Char:
		if !utf8.ValidRune(rune(val)) {
			return nil, fmt.Errorf("%w: invalid char %U", ErrSerialization, rune(val))
		}
		return json.Marshal(string(rune(val)))
	case String:
		return json.Marshal(string(val))
	case DateTime:
		return encodeDateTime(time.Time(val))
	default:
		return nil, fmt.Errorf("%w: unsupported kind %T", ErrSerialization, v)
	}
}

// encodeDateTime writes t as RFC 3339. Offsets with a seconds part are not
// representable there, so those instants are written in UTC instead.
func encodeDateTime(t time.Time) (json.RawMessage, error) {
	if _, offset := t.Zone(); offset%60 != 0 {
		t = t.UTC()
	}
	if y := t.Year(); y < 0 || y > 9999 {
		return nil, fmt.Errorf("%w: year %d outside 0000-9999", ErrSerialization, y)
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

// encodeFloat writes the shortest representation that parses back to the
// same value at the given bit size. Non-finite values become strings.
func encodeFloat(f float64, bits int) json.RawMessage {
	switch {
	case math.IsNaN(f):
		return json.RawMessage(`"NaN"`)
	case math.IsInf(f, 1):
		return json.RawMessage(`"Infinity"`)
	case math.IsInf(f, -1):
		return json.RawMessage(`"-Infinity"`)
	}
	return json.RawMessage(strconv.FormatFloat(f, 'g', -1, bits))
}

// Decode parses one encoded scalar.
//
// The JSON null token decodes to Null, as do the Empty and DBNull type codes.
// Every other input must be an object carrying both "$tc" and "$val", with a
// recognized primitive type code and a value in that kind's natural
// encoding. Nothing is coerced across kinds.
func Decode(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrSerialization)
	}

	switch data[0] {
	case 'n':
		if !bytes.Equal(data, []byte("null")) {
			return nil, fmt.Errorf("%w: invalid token %q", ErrSerialization, data)
		}
		return Null{}, nil
	case '{':
	default:
		return nil, fmt.Errorf("%w: object token expected", ErrSerialization)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}

	rawTag, ok := obj[tagField]
	if !ok {
		return nil, fmt.Errorf("%w: %s property expected", ErrSerialization, tagField)
	}
	rawVal, ok := obj[valueField]
	if !ok {
		return nil, fmt.Errorf("%w: %s property expected", ErrSerialization, valueField)
	}

	kind, err := decodeTag(rawTag)
	if err != nil {
		return nil, err
	}
	return decodeNatural(kind, rawVal)
}

// decodeTag accepts the numeric type code or its name.
func decodeTag(raw json.RawMessage) (Kind, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return 0, fmt.Errorf("%w: invalid type code: %v", ErrSerialization, err)
		}
		kind, ok := ParseKind(name)
		if !ok {
			return 0, fmt.Errorf("%w: type not supported: %s", ErrSerialization, name)
		}
		return kind, nil
	}

	n, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid type code %s", ErrSerialization, raw)
	}
	kind := Kind(n)
	if !kind.Known() {
		return 0, fmt.Errorf("%w: type not supported: %d", ErrSerialization, n)
	}
	return kind, nil
}

func decodeNatural(kind Kind, raw json.RawMessage) (Value, error) {
	switch kind {
	case KindEmpty, KindDBNull:
		return Null{}, nil
	case KindObject:
		return nil, fmt.Errorf("%w: object type not supported", ErrSerialization)
	case KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, kindError(kind, raw)
		}
		return Bool(b), nil
	case KindInt8, KindInt16, KindInt32, KindInt64:
		n, err := parseInt(kind, raw)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindInt8:
			return Int8(n), nil
		case KindInt16:
			return Int16(n), nil
		case KindInt32:
			return Int32(n), nil
		default:
			return Int64(n), nil
		}
	case KindUint8, KindUint16, KindUint32, KindUint64:
		n, err := parseUint(kind, raw)
		if err != nil {
			return nil, err
		}
		switch kind {
		case KindUint8:
			return Uint8(n), nil
		case KindUint16:
			return Uint16(n), nil
		case KindUint32:
			return Uint32(n), nil
		default:
			return Uint64(n), nil
		}
	case KindFloat32:
		f, err := parseFloat(kind, raw, 32)
		if err != nil {
			return nil, err
		}
		return Float32(f), nil
	case KindFloat64:
		f, err := parseFloat(kind, raw, 64)
		if err != nil {
			return nil, err
		}
		return Float64(f), nil
	case KindDecimal:
		if !isNumberToken(raw) {
			return nil, kindError(kind, raw)
		}
		return NewDecimal(string(raw))
	case KindChar:
		s, err := parseString(kind, raw)
		if err != nil {
			return nil, err
		}
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || size != len(s) {
			return nil, fmt.Errorf("%w: char must be exactly one code point, got %q", ErrSerialization, s)
		}
		return Char(r), nil
	case KindString:
		s, err := parseString(kind, raw)
		if err != nil {
			return nil, err
		}
		return String(s), nil
	case KindDateTime:
		s, err := parseString(kind, raw)
		if err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date-time %q: %v", ErrSerialization, s, err)
		}
		return DateTime(t), nil
	default:
		return nil, fmt.Errorf("%w: type not supported: %s", ErrSerialization, kind)
	}
}

func kindError(kind Kind, raw json.RawMessage) error {
	return fmt.Errorf("%w: %s is not a valid %s value", ErrSerialization, raw, kind)
}

func bitSize(kind Kind) int {
	switch kind {
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32:
		return 32
	default:
		return 64
	}
}

// isNumberToken reports whether raw starts like a JSON number.
func isNumberToken(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	c := raw[0]
	return c == '-' || (c >= '0' && c <= '9')
}

func parseInt(kind Kind, raw json.RawMessage) (int64, error) {
	if !isNumberToken(raw) {
		return 0, kindError(kind, raw)
	}
	n, err := strconv.ParseInt(string(raw), 10, bitSize(kind))
	if err != nil {
		return 0, kindError(kind, raw)
	}
	return n, nil
}

func parseUint(kind Kind, raw json.RawMessage) (uint64, error) {
	if !isNumberToken(raw) {
		return 0, kindError(kind, raw)
	}
	n, err := strconv.ParseUint(string(raw), 10, bitSize(kind))
	if err != nil {
		return 0, kindError(kind, raw)
	}
	return n, nil
}

func parseFloat(kind Kind, raw json.RawMessage, bits int) (float64, error) {
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, kindError(kind, raw)
		}
		switch s {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
		return 0, kindError(kind, raw)
	}
	if !isNumberToken(raw) {
		return 0, kindError(kind, raw)
	}
	f, err := strconv.ParseFloat(string(raw), bits)
	if err != nil {
		return 0, kindError(kind, raw)
	}
	return f, nil
}

func parseString(kind Kind, raw json.RawMessage) (string, error) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", kindError(kind, raw)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", kindError(kind, raw)
	}
	return s, nil
}
