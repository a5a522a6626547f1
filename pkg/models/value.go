package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Value is a decoded JSON value returned by Jolokia: a scalar or an object.
// Numbers are kept as json.Number so their textual form survives.
type Value struct {
	raw any
}

func NewValue(raw any) Value {
	return Value{raw: raw}
}

// NumberValue creates a numeric Value from a float, dropping a zero fraction.
func NumberValue(f float64) Value {
	return Value{raw: json.Number(strconv.FormatFloat(f, 'f', -1, 64))}
}

func (v Value) Raw() any {
	return v.raw
}

func (v Value) IsNull() bool {
	return v.raw == nil
}

// Index returns the member `key` of an object value.
func (v Value) Index(key string) (Value, error) {
	obj, ok := v.raw.(map[string]any)
	if !ok {
		return Value{}, fmt.Errorf("%w: can't get `%s` from %s", ErrorAttributeNotFound, key, v)
	}
	member, ok := obj[key]
	if !ok {
		return Value{}, fmt.Errorf("%w: `%s`", ErrorAttributeNotFound, key)
	}
	return Value{raw: member}, nil
}

func (v Value) Float64() (float64, error) {
	switch val := v.raw.(type) {
	case json.Number:
		return val.Float64()
	case float64:
		return val, nil
	case int:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: `%s`", ErrorNotNumeric, val)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrorNotNumeric, v)
	}
}

func (v Value) String() string {
	switch val := v.raw.(type) {
	case nil:
		return "null"
	case json.Number:
		return val.String()
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		jbz, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(jbz)
	}
}

// Result is a single MBean returned by a Jolokia read request.
type Result struct {
	Name    string
	Content Value
}

// ValueOf extracts `content[attribute]` or `content[attribute][key]` when key is set.
func (r Result) ValueOf(attribute, key string) (Value, error) {
	v, err := r.Content.Index(attribute)
	if err != nil {
		return Value{}, fmt.Errorf("%s: %w", r.Name, err)
	}
	if key == "" {
		return v, nil
	}
	v, err = v.Index(key)
	if err != nil {
		return Value{}, fmt.Errorf("%s A:%s: %w", r.Name, attribute, err)
	}
	return v, nil
}
