package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToString converts upstream JSON values to their snapshot string form.
// nil becomes "", booleans become "true"/"false" and integral floats drop the
// exponent so numeric IDs survive a trip through encoding/json.
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool reports whether val is a truthy token.
// Non-string values are stringified first; the result is compared case-insensitively
// against "true" and "1".
func ToBool(val any) bool {
	if b, ok := val.(bool); ok {
		return b
	}
	s := strings.TrimSpace(ToString(val))
	return s == "1" || strings.EqualFold(s, "true")
}
