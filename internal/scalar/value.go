package scalar

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Kind identifies the exact primitive kind of a Value.
//
// The numeric values are the type codes written to the "$tc" field and are
// part of the persisted format. Gaps (17) are intentional.
type Kind int

const (
	KindEmpty    Kind = 0
	KindObject   Kind = 1
	KindDBNull   Kind = 2
	KindBool     Kind = 3
	KindChar     Kind = 4
	KindInt8     Kind = 5
	KindUint8    Kind = 6
	KindInt16    Kind = 7
	KindUint16   Kind = 8
	KindInt32    Kind = 9
	KindUint32   Kind = 10
	KindInt64    Kind = 11
	KindUint64   Kind = 12
	KindFloat32  Kind = 13
	KindFloat64  Kind = 14
	KindDecimal  Kind = 15
	KindDateTime Kind = 16
	KindString   Kind = 18
)

var kindNames = map[Kind]string{
	KindEmpty:    "Empty",
	KindObject:   "Object",
	KindDBNull:   "DBNull",
	KindBool:     "Boolean",
	KindChar:     "Char",
	KindInt8:     "SByte",
	KindUint8:    "Byte",
	KindInt16:    "Int16",
	KindUint16:   "UInt16",
	KindInt32:    "Int32",
	KindUint32:   "UInt32",
	KindInt64:    "Int64",
	KindUint64:   "UInt64",
	KindFloat32:  "Single",
	KindFloat64:  "Double",
	KindDecimal:  "Decimal",
	KindDateTime: "DateTime",
	KindString:   "String",
}

// String returns the type code name, e.g. "Int32".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Known reports whether k is one of the recognized type codes.
func (k Kind) Known() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind resolves a type code name ("Int32", "Double", ...).
// Matching is exact.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Value is a sealed interface over the closed set of primitive kinds a
// parameter value may hold. Only the types in this file implement it.
type Value interface {
	Kind() Kind
	String() string
	scalarValue()
}

// Null is the explicit null value. It is distinct from an absent value
// (a nil Value).
type Null struct{}

type (
	Bool    bool
	Int8    int8
	Uint8   uint8
	Int16   int16
	Uint16  uint16
	Int32   int32
	Uint32  uint32
	Int64   int64
	Uint64  uint64
	Float32 float32
	Float64 float64
	// Char is a single Unicode code point.
	Char rune
	String string
)

// Decimal is an arbitrary-precision decimal backed by apd.
// The zero value is 0.
type Decimal struct {
	d apd.Decimal
}

// DateTime is an instant with its UTC offset.
type DateTime time.Time

func (Null) scalarValue()     {}
func (Bool) scalarValue()     {}
func (Int8) scalarValue()     {}
func (Uint8) scalarValue()    {}
func (Int16) scalarValue()    {}
func (Uint16) scalarValue()   {}
func (Int32) scalarValue()    {}
func (Uint32) scalarValue()   {}
func (Int64) scalarValue()    {}
func (Uint64) scalarValue()   {}
func (Float32) scalarValue()  {}
func (Float64) scalarValue()  {}
func (Decimal) scalarValue()  {}
func (Char) scalarValue()     {}
func (String) scalarValue()   {}
func (DateTime) scalarValue() {}

func (Null) Kind() Kind     { return KindEmpty }
func (Bool) Kind() Kind     { return KindBool }
func (Int8) Kind() Kind     { return KindInt8 }
func (Uint8) Kind() Kind    { return KindUint8 }
func (Int16) Kind() Kind    { return KindInt16 }
func (Uint16) Kind() Kind   { return KindUint16 }
func (Int32) Kind() Kind    { return KindInt32 }
func (Uint32) Kind() Kind   { return KindUint32 }
func (Int64) Kind() Kind    { return KindInt64 }
func (Uint64) Kind() Kind   { return KindUint64 }
func (Float32) Kind() Kind  { return KindFloat32 }
func (Float64) Kind() Kind  { return KindFloat64 }
func (Decimal) Kind() Kind  { return KindDecimal }
func (Char) Kind() Kind     { return KindChar }
func (String) Kind() Kind   { return KindString }
func (DateTime) Kind() Kind { return KindDateTime }

func (Null) String() string      { return "null" }
func (v Bool) String() string    { return strconv.FormatBool(bool(v)) }
func (v Int8) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Uint8) String() string   { return strconv.FormatUint(uint64(v), 10) }
func (v Int16) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Uint16) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v Int32) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Uint32) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v Int64) String() string   { return strconv.FormatInt(int64(v), 10) }
func (v Uint64) String() string  { return strconv.FormatUint(uint64(v), 10) }
func (v Float32) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 32) }
func (v Float64) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Decimal) String() string { return v.d.Text('f') }
func (v Char) String() string    { return string(rune(v)) }
func (v String) String() string  { return string(v) }

func (v DateTime) String() string {
	return time.Time(v).Format(time.RFC3339Nano)
}

// Time returns the underlying time.Time.
func (v DateTime) Time() time.Time { return time.Time(v) }

// NewDecimal parses a decimal literal such as "12.50".
// Non-finite literals (NaN, Infinity) are rejected.
func NewDecimal(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Decimal{}, fmt.Errorf("%w: invalid decimal %q: %v", ErrSerialization, s, err)
	}
	if d.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("%w: non-finite decimal %q", ErrSerialization, s)
	}
	return Decimal{d: *d}, nil
}

// DecimalFromApd copies d into a Decimal.
func DecimalFromApd(d *apd.Decimal) (Decimal, error) {
	if d == nil {
		return Decimal{}, fmt.Errorf("%w: nil decimal", ErrSerialization)
	}
	if d.Form != apd.Finite {
		return Decimal{}, fmt.Errorf("%w: non-finite decimal %s", ErrSerialization, d.String())
	}
	var out Decimal
	out.d.Set(d)
	return out, nil
}

// Apd returns a copy of the decimal as an *apd.Decimal.
func (v Decimal) Apd() *apd.Decimal {
	var d apd.Decimal
	d.Set(&v.d)
	return &d
}

// Of converts a Go value into a Value.
//
// Accepted inputs are Value implementations, nil, bool, the sized integer
// types, float32, float64, string, time.Time, apd.Decimal and *apd.Decimal.
// Platform-sized int/uint and every composite type are rejected; characters
// must be passed as Char since rune is an alias of int32.
func Of(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case int8:
		return Int8(val), nil
	case uint8:
		return Uint8(val), nil
	case int16:
		return Int16(val), nil
	case uint16:
		return Uint16(val), nil
	case int32:
		return Int32(val), nil
	case uint32:
		return Uint32(val), nil
	case int64:
		return Int64(val), nil
	case uint64:
		return Uint64(val), nil
	case float32:
		return Float32(val), nil
	case float64:
		return Float64(val), nil
	case string:
		return String(val), nil
	case time.Time:
		return DateTime(val), nil
	case apd.Decimal:
		return DecimalFromApd(&val)
	case *apd.Decimal:
		return DecimalFromApd(val)
	default:
		return nil, fmt.Errorf("%w: unsupported kind %T", ErrSerialization, v)
	}
}

// MustOf is like Of but panics on unsupported input. Intended for literals
// in tests and fixtures.
func MustOf(v any) Value {
	out, err := Of(v)
	if err != nil {
		panic(err)
	}
	return out
}

// Equal reports whether a and b hold the same kind and the same value.
// Two nil Values are equal; NaN equals NaN of the same kind.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Float32:
		bv := b.(Float32)
		if math.IsNaN(float64(av)) {
			return math.IsNaN(float64(bv))
		}
		return av == bv
	case Float64:
		bv := b.(Float64)
		if math.IsNaN(float64(av)) {
			return math.IsNaN(float64(bv))
		}
		return av == bv
	case Decimal:
		bv := b.(Decimal)
		return av.d.Cmp(&bv.d) == 0
	case DateTime:
		return time.Time(av).Equal(time.Time(b.(DateTime)))
	default:
		return a == b
	}
}
