package store

import (
	"bytes"
	"encoding/json"
)

// DecodeFields decodes a JSON object keeping integer precision: integers
// that fit in an int64 stay int64, every other number becomes float64.
func DecodeFields(data []byte) (Fields, error) {
	var fields Fields
	if err := decodeNumbers(data, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		fields[k] = NormalizeNumbers(v)
	}
	return fields, nil
}

// decodeValue is DecodeFields for a single JSON value.
func decodeValue(data []byte) (interface{}, error) {
	var value interface{}
	if err := decodeNumbers(data, &value); err != nil {
		return nil, err
	}
	return NormalizeNumbers(value), nil
}

func decodeNumbers(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// NormalizeNumbers replaces every json.Number inside v with an int64 or a
// float64.
func NormalizeNumbers(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case map[string]interface{}:
		for k, inner := range val {
			val[k] = NormalizeNumbers(inner)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = NormalizeNumbers(inner)
		}
		return val
	default:
		return val
	}
}
