package paramspace

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindInvalid is the zero Kind.
	KindInvalid Kind = iota
	// KindNull represents a null value.
	KindNull
	// KindBool represents a boolean value.
	KindBool
	// KindInt represents a signed integer value.
	KindInt
	// KindFloat represents a floating point value.
	KindFloat
	// KindString represents a string value.
	KindString
	// KindTuple represents an ordered, fixed list of values.
	KindTuple
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindNull:    "null",
	KindBool:    "bool",
	KindInt:     "int",
	KindFloat:   "float",
	KindString:  "string",
	KindTuple:   "tuple",
}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a leaf parameter value in a normalised, internable form.
//
// Two values are the same parameter value exactly when their Keys are equal.
// An Int and a Float holding the same number are different values.
type Value struct {
	Kind Kind
	I64  int64
	F64  float64
	S    string
	B    bool
	T    []Value
}

// Null returns a null Value.
func Null() Value { return Value{Kind: KindNull} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{Kind: KindBool, B: v} }

// Int returns an integer Value.
func Int(v int64) Value { return Value{Kind: KindInt, I64: v} }

// Float returns a floating point Value.
func Float(v float64) Value { return Value{Kind: KindFloat, F64: v} }

// String returns a string Value.
func String(v string) Value { return Value{Kind: KindString, S: v} }

// Tuple returns a tuple Value.
func Tuple(items ...Value) Value { return Value{Kind: KindTuple, T: items} }

// ValueOf converts a Go value into a Value.
//
// Accepted inputs are nil, booleans, integers, floats, json.Number, strings
// and slices or arrays of those (tuples). Maps are rejected: nested
// configurations are not leaf values.
func ValueOf(v any) (Value, error) {
	switch tv := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return tv, nil
	case bool:
		return Bool(tv), nil
	case int:
		return Int(int64(tv)), nil
	case int64:
		return Int(tv), nil
	case int32:
		return Int(int64(tv)), nil
	case float64:
		return Float(tv), nil
	case float32:
		return Float(float64(tv)), nil
	case string:
		return String(tv), nil
	case json.Number:
		return numberValue(tv)
	case []any:
		return tupleOf(tv)
	}

	return reflectValue(reflect.ValueOf(v))
}

func numberValue(n json.Number) (Value, error) {
	if i, err := n.Int64(); err == nil {
		return Int(i), nil
	}

	f, err := n.Float64()
	if err != nil {
		return Value{}, fmt.Errorf("%w: number %q: %w", ErrInvalidConfig, n.String(), err)
	}

	return Float(f), nil
}

func tupleOf(items []any) (Value, error) {
	out := make([]Value, len(items))

	for i, item := range items {
		v, err := ValueOf(item)
		if err != nil {
			return Value{}, err
		}

		out[i] = v
	}

	return Tuple(out...), nil
}

func reflectValue(rv reflect.Value) (Value, error) {
	//exhaustive:ignore
	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: integer %d overflows int64", ErrInvalidConfig, u)
		}

		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}

		return tupleOf(items)
	case reflect.Invalid:
		return Null(), nil
	default:
		return Value{}, fmt.Errorf("%w: unsupported value type %s", ErrInvalidConfig, rv.Type())
	}
}

// Key returns a canonical string that identifies the value for interning.
func (v Value) Key() string {
	var sb strings.Builder

	v.writeKey(&sb)

	return sb.String()
}

func (v Value) writeKey(sb *strings.Builder) {
	switch v.Kind {
	case KindNull:
		sb.WriteString("n")
	case KindBool:
		if v.B {
			sb.WriteString("b:1")
		} else {
			sb.WriteString("b:0")
		}
	case KindInt:
		sb.WriteString("i:")
		sb.WriteString(strconv.FormatInt(v.I64, 10))
	case KindFloat:
		sb.WriteString("f:")
		sb.WriteString(strconv.FormatUint(math.Float64bits(v.F64), 16))
	case KindString:
		sb.WriteString("s:")
		sb.WriteString(strconv.Quote(v.S))
	case KindTuple:
		sb.WriteString("t(")

		for i, item := range v.T {
			if i > 0 {
				sb.WriteByte(',')
			}

			item.writeKey(sb)
		}

		sb.WriteByte(')')
	case KindInvalid:
		sb.WriteString("?")
	}
}

// Interface returns the value in native Go form: nil, bool, int, float64,
// string, or []any for tuples. Integers that do not fit in int are returned
// as int64.
func (v Value) Interface() any {
	switch v.Kind {
	case KindBool:
		return v.B
	case KindInt:
		if n := int(v.I64); int64(n) == v.I64 {
			return n
		}

		return v.I64
	case KindFloat:
		return v.F64
	case KindString:
		return v.S
	case KindTuple:
		out := make([]any, len(v.T))
		for i, item := range v.T {
			out[i] = item.Interface()
		}

		return out
	case KindNull, KindInvalid:
		return nil
	}

	return nil
}

// String formats the value for humans.
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.B)
	case KindInt:
		return strconv.FormatInt(v.I64, 10)
	case KindFloat:
		return strconv.FormatFloat(v.F64, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.S)
	case KindTuple:
		parts := make([]string, len(v.T))
		for i, item := range v.T {
			parts[i] = item.String()
		}

		return "(" + strings.Join(parts, ", ") + ")"
	case KindInvalid:
		return "<invalid>"
	}

	return "<invalid>"
}
