package value

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strconv"
)

// ErrUnsupported is returned by FromAny for Go values with no JSON shape.
var ErrUnsupported = errors.New("unsupported value type")

// FromAny converts the output of encoding/json, gojq or Go literals into a
// Value. Go maps carry no order, so map keys are sorted.
func FromAny(v any) (Value, error) {
	return fromAny(v, 0)
}

func fromAny(v any, level int) (Value, error) {
	if level > MaxParseDepth {
		return nil, ErrTooDeep
	}

	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case float64:
		return NumberOf(val), nil
	case float32:
		return NumberOf(float64(val)), nil
	case int:
		return intNumber(int64(val)), nil
	case int8:
		return intNumber(int64(val)), nil
	case int16:
		return intNumber(int64(val)), nil
	case int32:
		return intNumber(int64(val)), nil
	case int64:
		return intNumber(val), nil
	case uint:
		return uintNumber(uint64(val)), nil
	case uint8:
		return uintNumber(uint64(val)), nil
	case uint16:
		return uintNumber(uint64(val)), nil
	case uint32:
		return uintNumber(uint64(val)), nil
	case uint64:
		return uintNumber(val), nil
	case json.Number:
		f, _ := val.Float64()
		return Number{Float: f, Literal: val.String()}, nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(val).Float64()
		return Number{Float: f, Literal: val.String()}, nil
	case []any:
		arr := make(Array, 0, len(val))
		for _, item := range val {
			iv, err := fromAny(item, level+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, iv)
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		obj := NewObject()
		for _, k := range keys {
			fv, err := fromAny(val[k], level+1)
			if err != nil {
				return nil, err
			}
			obj.Set(k, fv)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
}

func intNumber(i int64) Number {
	return Number{Float: float64(i), Literal: strconv.FormatInt(i, 10)}
}

func uintNumber(u uint64) Number {
	return Number{Float: float64(u), Literal: strconv.FormatUint(u, 10)}
}

// ToAny converts a Value into the generic form produced by encoding/json:
// nil, bool, float64, string, []any and map[string]any. Object order is lost.
func ToAny(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(val)
	case String:
		return string(val)
	case Number:
		return val.Float
	case Array:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToAny(item)
		}
		return out
	case *Object:
		out := make(map[string]any, val.Len())
		val.Range(func(k string, fv Value) bool {
			out[k] = ToAny(fv)
			return true
		})
		return out
	default:
		return nil
	}
}

// Marshal encodes v as compact JSON, writing object fields in insertion
// order. The output is stable for equal values.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case String:
		b, err := json.Marshal(string(val))
		if err != nil {
			return err
		}
		buf.Write(b)
	case Number:
		s, err := val.text()
		if err != nil {
			return err
		}
		buf.WriteString(s)
	case Array:
		buf.WriteByte('[')
		for i, item := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *Object:
		buf.WriteByte('{')
		var err error
		first := true
		val.Range(func(k string, fv Value) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			kb, kerr := json.Marshal(k)
			if kerr != nil {
				err = kerr
				return false
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err = writeJSON(buf, fv); err != nil {
				return false
			}
			return true
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("%w: %T", ErrUnsupported, v)
	}
	return nil
}

func (n Number) text() (string, error) {
	if n.Literal != "" {
		return n.Literal, nil
	}
	if math.IsInf(n.Float, 0) || math.IsNaN(n.Float) {
		return "", fmt.Errorf("number %v has no JSON representation", n.Float)
	}
	return strconv.FormatFloat(n.Float, 'g', -1, 64), nil
}

// MarshalJSON implements json.Marshaler.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	s, err := n.text()
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// MarshalJSON implements json.Marshaler.
func (a Array) MarshalJSON() ([]byte, error) {
	return Marshal(a)
}

// MarshalJSON implements json.Marshaler.
func (o *Object) MarshalJSON() ([]byte, error) {
	return Marshal(o)
}

// Equal reports whether a and b hold the same data. Object key order is
// significant, since it shapes the declarations generated from a value.
func Equal(a, b Value) bool {
	ab, aerr := Marshal(a)
	bb, berr := Marshal(b)
	if aerr != nil || berr != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
