package domain

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fulfillment-billing/pkg/coerce"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
)

// Anomaly reasons reported by NormalizeQuantities.
const (
	AnomalyEmptySKU           = "empty_sku"
	AnomalyMalformedQuantity  = "malformed_quantity"
	AnomalyNegativeQuantity   = "negative_quantity"
	AnomalyNonIntegerQuantity = "non_integer_quantity"
	AnomalyQuantityOverflow   = "quantity_overflow"
)

var (
	ErrEmptySKU           = errors.New(AnomalyEmptySKU)
	ErrMalformedQuantity  = errors.New(AnomalyMalformedQuantity)
	ErrNegativeQuantity   = errors.New(AnomalyNegativeQuantity)
	ErrNonIntegerQuantity = errors.New(AnomalyNonIntegerQuantity)
	ErrQuantityOverflow   = errors.New(AnomalyQuantityOverflow)
)

var anomalyErrors = map[string]error{
	AnomalyEmptySKU:           ErrEmptySKU,
	AnomalyMalformedQuantity:  ErrMalformedQuantity,
	AnomalyNegativeQuantity:   ErrNegativeQuantity,
	AnomalyNonIntegerQuantity: ErrNonIntegerQuantity,
	AnomalyQuantityOverflow:   ErrQuantityOverflow,
}

// Anomaly describes one malformed SKU entry and how it was defaulted.
type Anomaly struct {
	OrderID snowflake.ID
	Field   string
	Key     string
	Reason  string
}

// Err returns the anomaly as a data_anomaly error wrapping the sentinel of
// its reason.
func (a Anomaly) Err() *errs.Error {
	cause, ok := anomalyErrors[a.Reason]
	if !ok {
		cause = errors.New(a.Reason)
	}
	return errs.Anomaly("order data defaulted", cause).
		With("order_id", a.OrderID.String()).
		With("field", a.Field).
		With("key", a.Key)
}

// NormalizeSKU strips hyphens and whitespace and uppercases the rest.
// NormalizeSKU(NormalizeSKU(x)) == NormalizeSKU(x).
func NormalizeSKU(sku string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, sku)
}

// NormalizeSKUSet normalizes a list of SKUs into a set, dropping empties.
func NormalizeSKUSet(skus []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skus))
	for _, sku := range skus {
		key := NormalizeSKU(sku)
		if key == "" {
			continue
		}
		set[key] = struct{}{}
	}
	return set
}

// NormalizeQuantities normalizes raw SKU keys and coerces quantities.
//
// Unparsable quantities and empty keys are dropped. Negative and fractional
// quantities are kept as zero. Keys that collide after normalization are
// summed.
func NormalizeQuantities(raw map[string]any) (map[string]int64, []Anomaly) {
	out := make(map[string]int64, len(raw))
	var anomalies []Anomaly

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, rawKey := range keys {
		key := NormalizeSKU(rawKey)
		if key == "" {
			anomalies = append(anomalies, Anomaly{Field: "sku_quantity", Key: rawKey, Reason: AnomalyEmptySKU})
			continue
		}

		qty, integral, ok := coerce.Integer(raw[rawKey])
		switch {
		case !ok:
			anomalies = append(anomalies, Anomaly{Field: "sku_quantity", Key: rawKey, Reason: AnomalyMalformedQuantity})
			continue
		case !integral:
			anomalies = append(anomalies, Anomaly{Field: "sku_quantity", Key: rawKey, Reason: AnomalyNonIntegerQuantity})
			qty = 0
		case qty < 0:
			anomalies = append(anomalies, Anomaly{Field: "sku_quantity", Key: rawKey, Reason: AnomalyNegativeQuantity})
			qty = 0
		}
		sum, overflow := addQuantity(out[key], qty)
		if overflow {
			anomalies = append(anomalies, Anomaly{Field: "sku_quantity", Key: rawKey, Reason: AnomalyQuantityOverflow})
		}
		out[key] = sum
	}

	return out, anomalies
}

// addQuantity adds two non-negative quantities, saturating at MaxInt64.
func addQuantity(a, b int64) (int64, bool) {
	if b > math.MaxInt64-a {
		return math.MaxInt64, true
	}
	return a + b, false
}

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
