// Package attrs reads values back out of flat [key, value, key, value, ...]
// attribute slices, the shape captured log lines arrive in.
package attrs

// ExtractString returns the string value stored under key, or "" when the
// key is absent or its value is not a string.
func ExtractString(attrs []any, key string) string {
	for i := 0; i+1 < len(attrs); i += 2 {
		k, ok := attrs[i].(string)
		if !ok || k != key {
			continue
		}
		if v, ok := attrs[i+1].(string); ok {
			return v
		}
	}
	return ""
}
