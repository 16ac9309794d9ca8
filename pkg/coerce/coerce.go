// Package coerce converts loosely typed values (JSON columns, rule literals)
// into decimals and strings without panicking.
package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal converts v to a decimal. ok is false for nil, booleans, empty or
// unparsable strings, NaN/Inf floats and unsupported types.
func Decimal(v any) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return x, true
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, false
		}
		return *x, true
	case decimal.NullDecimal:
		return x.Decimal, x.Valid
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int8:
		return decimal.NewFromInt(int64(x)), true
	case int16:
		return decimal.NewFromInt(int64(x)), true
	case int32:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case uint:
		return fromString(strconv.FormatUint(uint64(x), 10))
	case uint8:
		return fromString(strconv.FormatUint(uint64(x), 10))
	case uint16:
		return fromString(strconv.FormatUint(uint64(x), 10))
	case uint32:
		return fromString(strconv.FormatUint(uint64(x), 10))
	case uint64:
		return fromString(strconv.FormatUint(x, 10))
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case json.Number:
		return fromString(x.String())
	case string:
		return fromString(x)
	case []byte:
		return fromString(string(x))
	default:
		return decimal.Zero, false
	}
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func fromString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// String renders v the way a rule author would write it. ok is false only
// for nil.
func String(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	case bool:
		return strconv.FormatBool(x), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case decimal.Decimal:
		return x.String(), true
	case decimal.NullDecimal:
		if !x.Valid {
			return "", false
		}
		return x.Decimal.String(), true
	case json.Number:
		return x.String(), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(x), true
	}
}

// Integer converts v to a whole number. integral is false when v parsed but
// carries a fractional part; ok is false when v could not be parsed at all or
// does not fit in an int64.
func Integer(v any) (n int64, integral bool, ok bool) {
	d, ok := Decimal(v)
	if !ok {
		return 0, false, false
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, false, true
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return 0, false, false
	}
	return d.IntPart(), true, true
}
