package merge

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Value is a JSON-like configuration value.
// The set of implementations is closed: String, Number, Bool, Null, List, Map.
type Value interface {
	isValue()
}

// String is a string scalar.
type String string

// Number is a numeric scalar.
type Number float64

// Bool is a boolean scalar.
type Bool bool

// Null is the explicit null scalar.
type Null struct{}

// List is an ordered sequence of values.
type List []Value

// Map is a string-keyed mapping of values.
type Map map[string]Value

func (String) isValue() {}
func (Number) isValue() {}
func (Bool) isValue()   {}
func (Null) isValue()   {}
func (List) isValue()   {}
func (Map) isValue()    {}

// Lookup walks the map along path and returns the value found there.
func (m Map) Lookup(path ...string) (Value, bool) {
	var cur Value = m
	for _, key := range path {
		mm, ok := cur.(Map)
		if !ok {
			return nil, false
		}
		cur, ok = mm[key]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// StringAt returns the string stored at path.
// Numbers are formatted so that a class map written as {"1": 2} still reads.
func (m Map) StringAt(path ...string) (string, bool) {
	v, ok := m.Lookup(path...)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case String:
		return string(s), true
	case Number:
		return strconv.FormatFloat(float64(s), 'f', -1, 64), true
	default:
		return "", false
	}
}

// Keys returns the map keys in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of v.
func Clone(v Value) Value {
	switch t := v.(type) {
	case List:
		if t == nil {
			return List(nil)
		}
		out := make(List, len(t))
		for i, item := range t {
			out[i] = Clone(item)
		}
		return out
	case Map:
		if t == nil {
			return Map(nil)
		}
		out := make(Map, len(t))
		for k, item := range t {
			out[k] = Clone(item)
		}
		return out
	default:
		return v
	}
}

// FromAny converts a decoded JSON or TOML value into a Value.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return Clone(t), nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(t), nil
	case int:
		return Number(t), nil
	case int32:
		return Number(t), nil
	case int64:
		return Number(t), nil
	case uint64:
		return Number(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("merge: invalid number %q: %w", t, err)
		}
		return Number(f), nil
	case []any:
		out := make(List, 0, len(t))
		for i, item := range t {
			val, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("merge: [%d]: %w", i, err)
			}
			out = append(out, val)
		}
		return out, nil
	case []map[string]any:
		out := make(List, 0, len(t))
		for i, item := range t {
			val, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("merge: [%d]: %w", i, err)
			}
			out = append(out, val)
		}
		return out, nil
	case []string:
		out := make(List, 0, len(t))
		for _, item := range t {
			out = append(out, String(item))
		}
		return out, nil
	case map[string]any:
		out := make(Map, len(t))
		for k, item := range t {
			val, err := FromAny(item)
			if err != nil {
				return nil, fmt.Errorf("merge: %s: %w", k, err)
			}
			out[k] = val
		}
		return out, nil
	case map[string]string:
		out := make(Map, len(t))
		for k, item := range t {
			out[k] = String(item)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("merge: unsupported value type %T", v)
	}
}

// MapFromAny converts a decoded object into a Map.
// A nil input yields an empty Map.
func MapFromAny(v map[string]any) (Map, error) {
	if v == nil {
		return Map{}, nil
	}
	val, err := FromAny(v)
	if err != nil {
		return nil, err
	}
	return val.(Map), nil
}

// MustMap is like MapFromAny but panics on unsupported values.
// Intended for literals in package initialisation and tests.
func MustMap(v map[string]any) Map {
	m, err := MapFromAny(v)
	if err != nil {
		panic(err)
	}
	return m
}

// ToAny converts v back into plain Go values (string, float64, bool, nil,
// []any, map[string]any).
func ToAny(v Value) any {
	switch t := v.(type) {
	case String:
		return string(t)
	case Number:
		return float64(t)
	case Bool:
		return bool(t)
	case List:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = ToAny(item)
		}
		return out
	case Map:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = ToAny(item)
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON implements json.Marshaler.
func (m Map) MarshalJSON() ([]byte, error) {
	return json.Marshal(ToAny(m))
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *Map) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := MapFromAny(raw)
	if err != nil {
		return err
	}
	*m = out
	return nil
}

// UnmarshalTOML implements toml.Unmarshaler.
func (m *Map) UnmarshalTOML(data any) error {
	raw, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("merge: expected a table, got %T", data)
	}
	out, err := MapFromAny(raw)
	if err != nil {
		return err
	}
	*m = out
	return nil
}
