package scalar

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parse converts a textual literal to a value of the given kind, applying
// the same range and syntax rules as Decode. Numbers and booleans use their
// JSON spelling; floats also accept "NaN", "Infinity" and "-Infinity".
// The literal is ignored for the null kinds.
func Parse(kind Kind, literal string) (Value, error) {
	var raw json.RawMessage
	switch kind {
	case KindChar, KindString, KindDateTime:
		raw, _ = json.Marshal(literal)
	case KindFloat32, KindFloat64:
		s := strings.TrimSpace(literal)
		switch s {
		case "NaN", "Infinity", "-Infinity":
			raw, _ = json.Marshal(s)
		default:
			raw = json.RawMessage(s)
		}
	case KindEmpty, KindDBNull:
		return Null{}, nil
	default:
		if !kind.Known() {
			return nil, fmt.Errorf("%w: type not supported: %s", ErrSerialization, kind)
		}
		raw = json.RawMessage(strings.TrimSpace(literal))
	}
	if !json.Valid(raw) {
		return nil, kindError(kind, raw)
	}
	return decodeNatural(kind, raw)
}
