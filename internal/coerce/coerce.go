// Package coerce defensively converts untyped upstream JSON values.
// The API mixes numbers, numeric strings, and nested objects for the
// same fields, so conversion is total: bad shapes degrade to zero values
// instead of failing.
package coerce

import (
	"encoding/json"
	"strconv"
	"strings"

	"slapred/bonusscraper/logger"
)

// Number converts a decoded JSON value to a float64.
// Accepted shapes: nil and empty string (0), numbers, numeric strings
// (whitespace trimmed), and objects wrapping the value under "value" or
// "min". Anything else yields 0 with a warning log.
func Number(raw interface{}) float64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	case map[string]interface{}:
		for _, key := range []string{"value", "min"} {
			if nested, ok := v[key]; ok {
				return Number(nested)
			}
		}
		return 0
	default:
		logger.Warn("unexpected numeric field shape %T, coercing to 0", raw)
		return 0
	}
}

// Int converts a decoded JSON value to an int via Number.
func Int(raw interface{}) int {
	return int(Number(raw))
}

// List converts a decoded JSON value to a list, treating any other
// shape as empty.
func List(raw interface{}) []interface{} {
	if list, ok := raw.([]interface{}); ok {
		return list
	}
	return nil
}

// String converts a decoded JSON value to a string. Numbers are
// formatted without an exponent; nil becomes empty.
func String(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
