package registry

import "strconv"

// Record is one verification entry as returned by the registry. The
// registry omits fields freely, so access goes through zero-value-tolerant
// helpers instead of direct indexing.
type Record map[string]any

// Str returns the value under key rendered as a string, or "" when the key
// is absent.
func (r Record) Str(key string) string {
	switch v := r[key].(type) {
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

// StrDefault is Str with a fallback for absent keys. A present-but-empty
// value is returned as-is, not replaced.
func (r Record) StrDefault(key, fallback string) string {
	if _, ok := r[key]; !ok {
		return fallback
	}
	return r.Str(key)
}

// Bool reports whether the value under key is true, accepting both the
// JSON bool and its string spelling.
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
