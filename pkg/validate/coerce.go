package validate

import "math"

// Coerce normalizes a decoded value to the Go representation of kind:
//
//	KindBool    bool
//	KindInt     int
//	KindFloat   float64
//	KindString  string (also KindColor)
//	KindStrings []string
//	KindFloats  []float64 (also KindPair)
//	KindMap     map[string]any
//	KindRecords []map[string]any
//
// Values produced by encoding/json, yaml.v3 and BurntSushi/toml are all
// accepted. The second result is false on a type mismatch.
func Coerce(kind Kind, v any) (any, bool) {
	switch kind {
	case KindBool:
		b, ok := v.(bool)
		return b, ok
	case KindInt:
		return toInt(v)
	case KindFloat:
		return toFloat(v)
	case KindString, KindColor:
		s, ok := v.(string)
		return s, ok
	case KindStrings:
		return toStrings(v)
	case KindFloats, KindPair:
		return toFloats(v)
	case KindMap:
		m, ok := v.(map[string]any)
		return m, ok
	case KindRecords:
		return toRecords(v)
	}
	return nil, false
}

func toFloat(v any) (any, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return nil, false
}

func toInt(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case int32:
		return int(n), true
	case uint64:
		return int(n), true
	case uint:
		return int(n), true
	case float64:
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return int(n), true
		}
	}
	return nil, false
}

func toStrings(v any) (any, bool) {
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...), true
	case []any:
		out := make([]string, len(s))
		for i, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = str
		}
		return out, true
	}
	return nil, false
}

func toFloats(v any) (any, bool) {
	switch s := v.(type) {
	case []float64:
		return append([]float64(nil), s...), true
	case []int:
		out := make([]float64, len(s))
		for i, n := range s {
			out[i] = float64(n)
		}
		return out, true
	case []any:
		out := make([]float64, len(s))
		for i, item := range s {
			f, ok := toFloat(item)
			if !ok {
				return nil, false
			}
			out[i] = f.(float64)
		}
		return out, true
	}
	return nil, false
}

func toRecords(v any) (any, bool) {
	switch s := v.(type) {
	case []map[string]any:
		return s, true
	case []any:
		out := make([]map[string]any, len(s))
		for i, item := range s {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out[i] = m
		}
		return out, true
	}
	return nil, false
}
