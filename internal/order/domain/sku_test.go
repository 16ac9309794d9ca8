package domain

import (
	"math"
	"testing"

	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSKU(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeSKU("ABC-123"))
	assert.Equal(t, "ABC123", NormalizeSKU("abc 123"))
	assert.Equal(t, "ABC123", NormalizeSKU(" a-b\tc 1-2-3 "))

	for _, raw := range []string{"ABC-123", "abc 123", "x-y z", "", "--", "Ünï-cödé"} {
		once := NormalizeSKU(raw)
		assert.Equal(t, once, NormalizeSKU(once), "normalize must be idempotent for %q", raw)
	}
}

func TestNormalizeQuantities(t *testing.T) {
	raw := map[string]any{
		"abc-001": 5,
		"ABC 001": "2",
		"xyz-999": 3.0,
		"neg":     -4,
		"frac":    1.5,
		"bad":     "lots",
		"nil":     nil,
		" - ":     7,
	}

	got, anomalies := NormalizeQuantities(raw)

	assert.Equal(t, map[string]int64{
		"ABC001": 7,
		"XYZ999": 3,
		"NEG":    0,
		"FRAC":   0,
	}, got)

	reasons := map[string]string{}
	for _, a := range anomalies {
		reasons[a.Key] = a.Reason
	}
	assert.Equal(t, map[string]string{
		"neg":  AnomalyNegativeQuantity,
		"frac": AnomalyNonIntegerQuantity,
		"bad":  AnomalyMalformedQuantity,
		"nil":  AnomalyMalformedQuantity,
		" - ":  AnomalyEmptySKU,
	}, reasons)
}

func TestOrderTotalsAndFields(t *testing.T) {
	o := Order{
		ID:          42,
		SKUQuantity: map[string]any{"ABC-001": 5, "XYZ-999": 3, "oops": "x"},
		Fields:      map[string]any{"Ship_To_Country": "CA", "priority": "high"},
	}

	assert.Equal(t, int64(8), o.TotalQuantity())

	v, ok := o.Field("ship_to_country")
	assert.True(t, ok)
	assert.Equal(t, "CA", v)

	_, ok = o.Field("carrier")
	assert.False(t, ok)

	anomalies := o.Anomalies()
	if assert.Len(t, anomalies, 1) {
		assert.Equal(t, o.ID, anomalies[0].OrderID)
		assert.Equal(t, AnomalyMalformedQuantity, anomalies[0].Reason)
	}
}

func TestNormalizeQuantitiesOverflow(t *testing.T) {
	got, anomalies := NormalizeQuantities(map[string]any{
		"A-1": int64(math.MaxInt64),
		"a 1": 1,
		"big": "99999999999999999999",
	})

	assert.Equal(t, map[string]int64{"A1": math.MaxInt64}, got)

	reasons := map[string]string{}
	for _, a := range anomalies {
		reasons[a.Key] = a.Reason
	}
	assert.Equal(t, map[string]string{
		"a 1": AnomalyQuantityOverflow,
		"big": AnomalyMalformedQuantity,
	}, reasons)
}

func TestTotalQuantitySaturates(t *testing.T) {
	o := Order{
		ID:          7,
		SKUQuantity: map[string]any{"A": int64(math.MaxInt64), "B": 1},
	}

	assert.Equal(t, int64(math.MaxInt64), o.TotalQuantity())

	anomalies := o.Anomalies()
	require.Len(t, anomalies, 1)
	assert.Equal(t, "total_quantity", anomalies[0].Field)
	assert.Equal(t, AnomalyQuantityOverflow, anomalies[0].Reason)
	assert.Equal(t, o.ID, anomalies[0].OrderID)
}

func TestAnomalyErr(t *testing.T) {
	err := Anomaly{OrderID: 9, Field: "sku_quantity", Key: "neg", Reason: AnomalyNegativeQuantity}.Err()

	assert.ErrorIs(t, err, ErrNegativeQuantity)
	assert.True(t, errs.IsKind(err, errs.KindDataAnomaly))
	assert.Equal(t, "9", err.Context["order_id"])
	assert.Equal(t, "neg", err.Context["key"])
}

func TestNormalizeSKUSet(t *testing.T) {
	set := NormalizeSKUSet([]string{"xyz-999", "XYZ 999", "", "abc"})
	assert.Len(t, set, 2)
	assert.Contains(t, set, "XYZ999")
	assert.Contains(t, set, "ABC")
}
