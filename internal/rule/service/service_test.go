package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	orderdomain "github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	ruledomain "github.com/smallbiznis/fulfillment-billing/internal/rule/domain"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func newOrder(fields map[string]any, skus map[string]any) orderdomain.Order {
	return orderdomain.Order{
		ID:          42,
		CustomerID:  7,
		OrderNumber: "SO-1001",
		Status:      "shipped",
		OrderDate:   time.Date(2024, 3, 5, 13, 0, 0, 0, time.UTC),
		Weight:      decimal.NewNullDecimal(decimal.RequireFromString("12.5")),
		SKUQuantity: datatypes.JSONMap(skus),
		Fields:      datatypes.JSONMap(fields),
	}
}

func TestResolve(t *testing.T) {
	order := newOrder(
		map[string]any{"ship_to_country": "CA", "Priority": "high", "declared_value": 99.5, "tags": []any{"a"}, "note": nil},
		map[string]any{"abc-001": 5, "XYZ 999": "3"},
	)

	v := Resolve(order, "status")
	assert.Equal(t, ruledomain.KindScalar, v.Kind)
	assert.Equal(t, "shipped", v.Str)

	v = Resolve(order, "weight")
	require.True(t, v.IsNum)
	assert.True(t, v.Num.Equal(decimal.RequireFromString("12.5")))

	v = Resolve(order, "order_date")
	assert.Equal(t, "2024-03-05", v.Str)

	v = Resolve(order, "total_quantity")
	assert.Equal(t, "8", v.Str)

	v = Resolve(order, "SKU")
	require.Equal(t, ruledomain.KindSKUMap, v.Kind)
	assert.Equal(t, map[string]int64{"ABC001": 5, "XYZ999": 3}, v.SKUs)

	v = Resolve(order, "priority")
	assert.Equal(t, "high", v.Str)

	v = Resolve(order, "declared_value")
	require.True(t, v.IsNum)
	assert.Equal(t, "99.5", v.Str)

	assert.True(t, Resolve(order, "tags").IsMissing())
	assert.True(t, Resolve(order, "note").IsMissing())
	assert.True(t, Resolve(order, "unknown").IsMissing())

	order.Weight = decimal.NullDecimal{}
	assert.True(t, Resolve(order, "weight").IsMissing())
}

func TestEvaluateRuleOperators(t *testing.T) {
	e := NewEvaluator(zap.NewNop(), 0)
	order := newOrder(
		map[string]any{"ship_to_country": "CA", "carrier": "FedEx Ground", "zone": "5", "flag": "n/a"},
		map[string]any{"ABC-001": 5, "EMPTY-1": 0},
	)

	cases := []struct {
		name string
		rule ruledomain.Rule
		want bool
	}{
		{"eq string", ruledomain.Rule{Field: "status", Operator: "eq", Value: "shipped"}, true},
		{"eq is case sensitive", ruledomain.Rule{Field: "status", Operator: "eq", Value: "Shipped"}, false},
		{"eq numeric vs string", ruledomain.Rule{Field: "zone", Operator: "eq", Value: 5.0}, true},
		{"eq decimal forms", ruledomain.Rule{Field: "weight", Operator: "eq", Value: "12.50"}, true},
		{"eq missing", ruledomain.Rule{Field: "absent", Operator: "eq", Value: "x"}, false},
		{"ne missing", ruledomain.Rule{Field: "absent", Operator: "ne", Value: "x"}, true},
		{"gt", ruledomain.Rule{Field: "weight", Operator: "gt", Value: 10}, true},
		{"gte boundary", ruledomain.Rule{Field: "weight", Operator: "gte", Value: "12.5"}, true},
		{"lt", ruledomain.Rule{Field: "weight", Operator: "lt", Value: 12.5}, false},
		{"lte", ruledomain.Rule{Field: "weight", Operator: "lte", Value: 12.5}, true},
		{"gt unparsable field", ruledomain.Rule{Field: "flag", Operator: "gt", Value: 1}, false},
		{"gt unparsable literal", ruledomain.Rule{Field: "weight", Operator: "gt", Value: "heavy"}, false},
		{"contains case insensitive", ruledomain.Rule{Field: "carrier", Operator: "contains", Value: "fedex"}, true},
		{"ncontains", ruledomain.Rule{Field: "carrier", Operator: "ncontains", Value: "ups"}, true},
		{"contains list", ruledomain.Rule{Field: "carrier", Operator: "contains", Value: []any{"dhl", "ground"}}, true},
		{"startswith", ruledomain.Rule{Field: "carrier", Operator: "startswith", Value: "FEDEX"}, true},
		{"endswith", ruledomain.Rule{Field: "carrier", Operator: "endswith", Value: "express"}, false},
		{"in list", ruledomain.Rule{Field: "ship_to_country", Operator: "in", Value: []any{"US", "CA"}}, true},
		{"in csv", ruledomain.Rule{Field: "ship_to_country", Operator: "in", Value: "US, CA"}, true},
		{"not_in", ruledomain.Rule{Field: "ship_to_country", Operator: "not_in", Value: []string{"US", "MX"}}, true},
		{"in numeric", ruledomain.Rule{Field: "zone", Operator: "in", Value: []any{4, 5}}, true},
		{"sku contains normalized", ruledomain.Rule{Field: "sku_quantity", Operator: "contains", Value: "abc 001"}, true},
		{"sku contains zero quantity", ruledomain.Rule{Field: "sku_quantity", Operator: "contains", Value: "EMPTY-1"}, false},
		{"sku ncontains", ruledomain.Rule{Field: "skus", Operator: "not_contains", Value: "ZZZ"}, true},
		{"sku in", ruledomain.Rule{Field: "sku", Operator: "in", Value: "ZZZ,ABC-001"}, true},
		{"sku not_in", ruledomain.Rule{Field: "sku", Operator: "not_in", Value: []any{"ABC001"}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.EvaluateRule(order, tc.rule)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateRuleUnknownOperatorFails(t *testing.T) {
	e := NewEvaluator(zap.NewNop(), 0)
	_, err := e.EvaluateRule(newOrder(nil, nil), ruledomain.Rule{Field: "status", Operator: "like", Value: "s%"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ruledomain.ErrUnknownOperator)
	assert.True(t, errs.IsKind(err, errs.KindConfiguration))

	_, err = e.EvaluateRule(newOrder(nil, nil), ruledomain.Rule{Field: "sku_quantity", Operator: "gt", Value: 1})
	assert.ErrorIs(t, err, ruledomain.ErrUnsupportedOperatorOnSKU)
}

func TestNegatedAliasesAgree(t *testing.T) {
	e := NewEvaluator(zap.NewNop(), 0)
	orders := []orderdomain.Order{
		newOrder(map[string]any{"ship_to_country": "CA", "carrier": "UPS"}, map[string]any{"A-1": 1}),
		newOrder(map[string]any{"ship_to_country": "US", "carrier": "usps"}, nil),
		newOrder(map[string]any{"ship_to_country": 1}, map[string]any{"B-2": "2"}),
		newOrder(nil, nil),
	}
	fields := []string{"ship_to_country", "carrier", "status", "weight", "missing", "sku_quantity"}
	values := []any{"US", "ups", "A1", 1, "12.5", nil, []any{"CA", "B2"}}

	for _, order := range orders {
		for _, field := range fields {
			for _, value := range values {
				pairs := [][2]ruledomain.Operator{{"ne", "neq"}, {"ncontains", "not_contains"}}
				for _, pair := range pairs {
					if ruledomain.IsSKUField(field) && pair[0] == "ne" {
						continue
					}
					a, errA := e.EvaluateRule(order, ruledomain.Rule{Field: field, Operator: pair[0], Value: value})
					b, errB := e.EvaluateRule(order, ruledomain.Rule{Field: field, Operator: pair[1], Value: value})
					require.NoError(t, errA)
					require.NoError(t, errB)
					assert.Equal(t, a, b, "%s %s/%s %v", field, pair[0], pair[1], value)
				}
			}
		}
	}
}

func TestScenarioShipToCountryNotUS(t *testing.T) {
	e := NewEvaluator(zap.NewNop(), 0)
	rule := ruledomain.Rule{Field: "ship_to_country", Operator: "ne", Value: "US"}

	got, err := e.EvaluateRule(newOrder(map[string]any{"ship_to_country": "CA"}, nil), rule)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = e.EvaluateRule(newOrder(map[string]any{"ship_to_country": "US"}, nil), rule)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestScenarioNestedGroup(t *testing.T) {
	e := NewEvaluator(zap.NewNop(), 0)
	tree, err := ruledomain.Parse([]byte(`{"AND":[
		{"field":"status","op":"eq","value":"shipped"},
		{"OR":[{"field":"priority","op":"eq","value":"high"},{"field":"weight","op":"gt","value":50}]}
	]}`), 0)
	require.NoError(t, err)

	cases := []struct {
		status   string
		priority string
		weight   string
		want     bool
	}{
		{"shipped", "high", "60", true},
		{"shipped", "high", "10", true},
		{"shipped", "low", "60", true},
		{"shipped", "low", "10", false},
		{"pending", "high", "60", false},
		{"pending", "low", "10", false},
	}

	for _, tc := range cases {
		order := newOrder(map[string]any{"priority": tc.priority}, nil)
		order.Status = tc.status
		order.Weight = decimal.NewNullDecimal(decimal.RequireFromString(tc.weight))

		got, err := e.Evaluate(order, tree)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%+v", tc)
	}
}

func TestEvaluateGroupLogic(t *testing.T) {
	e := NewEvaluator(zap.NewNop(), 0)
	order := newOrder(nil, nil)
	yes := ruledomain.Rule{Field: "status", Operator: "eq", Value: "shipped"}
	no := ruledomain.Rule{Field: "status", Operator: "eq", Value: "void"}

	cases := []struct {
		name string
		node ruledomain.Node
		want bool
	}{
		{"no rule group", nil, true},
		{"empty and", ruledomain.Group{Logic: ruledomain.LogicAnd}, true},
		{"empty or", ruledomain.Group{Logic: ruledomain.LogicOr}, false},
		{"and", ruledomain.Group{Logic: ruledomain.LogicAnd, Children: []ruledomain.Node{yes, no}}, false},
		{"or", ruledomain.Group{Logic: ruledomain.LogicOr, Children: []ruledomain.Node{no, yes}}, true},
		{"not", ruledomain.Group{Logic: ruledomain.LogicNot, Children: []ruledomain.Node{no}}, true},
		{"bare rule", yes, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := e.Evaluate(order, tc.node)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := e.Evaluate(order, ruledomain.Group{Logic: ruledomain.LogicNot, Children: []ruledomain.Node{yes, no}})
	assert.ErrorIs(t, err, ruledomain.ErrNotArity)

	_, err = e.Evaluate(order, ruledomain.Group{Logic: "XOR", Children: []ruledomain.Node{yes}})
	assert.ErrorIs(t, err, ruledomain.ErrUnknownLogic)
}

func TestEvaluateDepthGuard(t *testing.T) {
	e := NewEvaluator(zap.NewNop(), 2)
	leaf := ruledomain.Rule{Field: "status", Operator: "eq", Value: "shipped"}

	ok, err := e.Evaluate(newOrder(nil, nil), ruledomain.Group{Logic: ruledomain.LogicAnd, Children: []ruledomain.Node{leaf}})
	require.NoError(t, err)
	assert.True(t, ok)

	deep := ruledomain.Group{Logic: ruledomain.LogicAnd, Children: []ruledomain.Node{
		ruledomain.Group{Logic: ruledomain.LogicAnd, Children: []ruledomain.Node{leaf}},
	}}
	_, err = e.Evaluate(newOrder(nil, nil), deep)
	assert.ErrorIs(t, err, ruledomain.ErrMaxDepth)
}
