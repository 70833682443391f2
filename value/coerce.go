package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Stringify renders an arbitrary JSON value as display text. Numbers keep
// their canonical form (no trailing ".0" for integral floats), maps carrying
// a "valor" or "descricao" key recurse into that key, nil renders as "".
// The upstream model emits all of these shapes for the same logical field.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return FormatNumber(t)
	case float32:
		return FormatNumber(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		if inner, ok := t["valor"]; ok {
			return Stringify(inner)
		}
		if inner, ok := t["descricao"]; ok {
			return Stringify(inner)
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}

// ParseNumber parses a numeric literal tolerantly: comma accepted as the
// decimal separator, spaces stripped, currency-style thousand dots left to
// strconv (a value like "1.234,56" resolves via the comma form). Returns
// false on anything that is not a number; it never panics. A failed parse
// is not the same thing as the null marker.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || IsNullMarker(s) {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		// pt-BR decimal comma; dots before it are thousand separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// FormatNumber renders a float without a spurious fractional part.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatQuantity redisplays a parsed quantity in pt-BR comma-decimal form:
// 10.5 renders as "10,5", integral values without decimals.
func FormatQuantity(f float64) string {
	return strings.Replace(FormatNumber(f), ".", ",", 1)
}
