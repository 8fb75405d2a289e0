package reports

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errInvalidReadings = errors.New("diabetic_values must be valid JSON")

// ParseReadings normalizes a submitted readings payload into a JSON object.
func ParseReadings(v any) (map[string]any, error) {
	switch val := v.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		if val == nil {
			return map[string]any{}, nil
		}
		return val, nil
	case string:
		if val == "" {
			return nil, wrap(ErrValidation, errInvalidReadings)
		}
		return decodeReadings([]byte(val), false)
	case []byte:
		if len(bytes.TrimSpace(val)) == 0 {
			return map[string]any{}, nil
		}
		return decodeReadings(val, false)
	case json.RawMessage:
		if len(bytes.TrimSpace(val)) == 0 {
			return map[string]any{}, nil
		}
		return decodeReadings(val, true)
	default:
		return nil, wrap(ErrValidation, fmt.Errorf("unsupported diabetic_values type %T", v))
	}
}

// decodeReadings parses data as a JSON object. When unquote is set, a JSON
// string holding an encoded object is accepted as well.
func decodeReadings(data []byte, unquote bool) (map[string]any, error) {
	var decoded any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&decoded); err != nil {
		return nil, wrap(ErrValidation, errInvalidReadings)
	}
	if dec.More() {
		return nil, wrap(ErrValidation, errInvalidReadings)
	}
	switch val := decoded.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return normalizeNumbers(val).(map[string]any), nil
	case string:
		if unquote {
			if val == "" {
				return nil, wrap(ErrValidation, errInvalidReadings)
			}
			return decodeReadings([]byte(val), false)
		}
	}
	return nil, wrap(ErrValidation, errors.New("diabetic_values must be a JSON object"))
}

// normalizeNumbers converts json.Number leaves to float64 so stored readings
// look the same regardless of which store decoded them.
func normalizeNumbers(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeNumbers(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeNumbers(item)
		}
		return val
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return v
	}
}
