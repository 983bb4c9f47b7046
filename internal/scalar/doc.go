// Package scalar implements type-preserving serialization of single
// primitive values.
//
// A parameter value is one of a closed set of primitive kinds chosen at
// runtime. Encoding writes a two-field object whose "$tc" field names the
// exact kind and whose "$val" field holds the value in that kind's natural
// JSON encoding:
//
//	{"$tc": 9, "$val": 2}          // Int32
//	{"$tc": 14, "$val": 0.5}       // Float64
//	{"$tc": 18, "$val": "positive"} // String
//	null                            // explicit null
//
// Decoding dispatches on the type code before parsing the value, so the
// text for an Int32 always comes back as an Int32, never as an Int64, a
// Float64 or a String.
//
// Type codes are stable and persisted; see Kind for the full table.
package scalar
