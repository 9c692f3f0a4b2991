package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Text renders a raw tabular value as text. It is the only place values are coerced:
// integers render without a decimal point, integral floats keep one decimal digit
// ("12.0"), booleans render as True/False and null renders as "".
func Text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return ""
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	format := byte('f')
	if abs := math.Abs(f); abs >= 1e16 || (abs != 0 && abs < 1e-4) {
		format = 'g'
	}
	s := strconv.FormatFloat(f, format, -1, bits)
	if strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

// columnKind is the narrowest type every non-empty cell of a CSV column parses as.
type columnKind int

const (
	kindInt columnKind = iota
	kindFloat
	kindText
)

// A numeric column with empty cells is typed float, like integer columns with nulls are.
func inferKind(values []string) columnKind {
	kind := kindInt
	hasEmpty := false
	for _, v := range values {
		if v == "" {
			hasEmpty = true
			continue
		}
		if kind == kindInt {
			if _, err := strconv.ParseInt(v, 10, 64); err == nil {
				continue
			}
			kind = kindFloat
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return kindText
		}
	}
	if kind == kindInt && hasEmpty {
		return kindFloat
	}
	return kind
}

// typed converts a CSV cell to the column's inferred type so that numeric
// columns render the same way regardless of the source format.
func typed(raw string, kind columnKind) any {
	if raw == "" {
		return nil
	}
	switch kind {
	case kindInt:
		n, _ := strconv.ParseInt(raw, 10, 64)
		return n
	case kindFloat:
		f, _ := strconv.ParseFloat(raw, 64)
		return f
	default:
		return raw
	}
}
