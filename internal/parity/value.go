package parity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
)

var (
	// ErrInvalidInput is returned when a payload is not a JSON array.
	ErrInvalidInput = errors.New("invalid json input")

	// ErrIntegerRange is returned for integer literals outside int64.
	ErrIntegerRange = errors.New("integer out of range")
)

// Kind tags the dynamic type a Value carries.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindOther
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindOther:  "other",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Value is one element of a heterogeneous sequence. The kind is fixed at
// construction, so a boolean can never be mistaken for an integer.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    bool
	x    any
}

// Null returns the absent value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean. Booleans never count as integers.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer, the only kind that is summed.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float, even one with an integral value such as 2.0.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps text. Numeric-looking strings stay strings.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Other wraps anything without a dedicated kind, such as arrays, objects
// or unsigned integers too large for int64.
func Other(x any) Value { return Value{kind: KindOther, x: x} }

// Kind reports the kind v was constructed with.
func (v Value) Kind() Kind { return v.kind }

// AsInt returns the integer payload when v is KindInt.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInt
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	default:
		return fmt.Sprintf("%v", v.x)
	}
}

// FromAny classifies a native Go value.
// Unsigned values above math.MaxInt64 do not fit and become KindOther.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Other(t)
		}
		return Int(int64(t))
	case uint64:
		if t > math.MaxInt64 {
			return Other(t)
		}
		return Int(int64(t))
	case float32:
		return Float(float64(t))
	case float64:
		return Float(t)
	case string:
		return String(t)
	case json.Number:
		if v, err := fromNumber(string(t)); err == nil {
			return v
		}
		return Other(t)
	default:
		return Other(t)
	}
}

// Of classifies each argument with FromAny.
func Of(xs ...any) []Value {
	values := make([]Value, len(xs))
	for i, x := range xs {
		values[i] = FromAny(x)
	}
	return values
}

// FromJSON classifies one JSON value by its lexical form: 2 is an int,
// 2.0 and 2e0 are floats, true/false are bools.
func FromJSON(raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Value{}, fmt.Errorf("%w: empty value", ErrInvalidInput)
	}

	switch raw[0] {
	case 'n':
		return Null(), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return Bool(b), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return String(s), nil
	case '[', '{':
		return Other(json.RawMessage(bytes.Clone(raw))), nil
	default:
		return fromNumber(string(raw))
	}
}

func fromNumber(s string) (Value, error) {
	if bytes.ContainsAny([]byte(s), ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q", ErrInvalidInput, s)
		}
		return Float(f), nil
	}

	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Value{}, fmt.Errorf("%w: %s", ErrIntegerRange, s)
		}
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidInput, s)
	}
	return Int(i), nil
}

// DecodeJSONArray reads a JSON array and classifies every element.
// A JSON null decodes to an empty sequence.
func DecodeJSONArray(r io.Reader) ([]Value, error) {
	var raws []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after array", ErrInvalidInput)
	}

	values := make([]Value, 0, len(raws))
	for i, raw := range raws {
		v, err := FromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		values = append(values, v)
	}
	return values, nil
}
