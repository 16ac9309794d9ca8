package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperatorAliases(t *testing.T) {
	cases := map[string]Operator{
		"eq":           OperatorEq,
		"NE":           OperatorNe,
		"neq":          OperatorNe,
		" ncontains ":  OperatorNotContains,
		"not_contains": OperatorNotContains,
		"not_in":       OperatorNotIn,
		"startswith":   OperatorStartsWith,
	}
	for raw, want := range cases {
		got, err := ParseOperator(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseOperator("like")
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestOperatorNegation(t *testing.T) {
	assert.True(t, OperatorNe.Negated())
	assert.Equal(t, OperatorEq, OperatorNe.Positive())
	assert.Equal(t, OperatorContains, OperatorNotContains.Positive())
	assert.Equal(t, OperatorIn, OperatorNotIn.Positive())
	assert.False(t, OperatorGt.Negated())
	assert.Equal(t, OperatorGt, OperatorGt.Positive())
}

func TestParseEmpty(t *testing.T) {
	for _, raw := range []string{"", "  ", "null", "{}"} {
		node, err := Parse([]byte(raw), 0)
		require.NoError(t, err, raw)
		assert.Nil(t, node, raw)
	}
}

func TestParseForms(t *testing.T) {
	verbose := `{"logic_operator":"AND","children":[
		{"field":"status","operator":"eq","value":"shipped"},
		{"logic_operator":"OR","children":[
			{"field":"priority","operator":"eq","value":"high"},
			{"field":"weight","operator":"gt","value":50}
		]}
	]}`
	compact := `{"AND":[
		{"field":"status","op":"eq","value":"shipped"},
		{"OR":[
			{"field":"priority","op":"eq","value":"high"},
			{"field":"weight","op":"gt","value":50}
		]}
	]}`
	aliases := `{"logic":"and","rules":[
		{"field":"status","operator":"eq","value":"shipped"},
		{"logic":"or","conditions":[
			{"field":"priority","operator":"eq","value":"high"},
			{"field":"weight","operator":"gt","value":50}
		]}
	]}`

	var trees []Node
	for _, raw := range []string{verbose, compact, aliases} {
		node, err := Parse([]byte(raw), 0)
		require.NoError(t, err)
		trees = append(trees, node)
	}

	root, ok := trees[0].(Group)
	require.True(t, ok)
	assert.Equal(t, LogicAnd, root.Logic)
	require.Len(t, root.Children, 2)
	assert.Equal(t, Rule{Field: "status", Operator: OperatorEq, Value: "shipped"}, root.Children[0])

	assert.Equal(t, trees[0], trees[1])
	assert.Equal(t, trees[0], trees[2])
}

func TestParseBareRuleAndList(t *testing.T) {
	node, err := Parse([]byte(`{"field":"ship_to_country","operator":"neq","value":"US"}`), 0)
	require.NoError(t, err)
	assert.Equal(t, Rule{Field: "ship_to_country", Operator: OperatorNe, Value: "US"}, node)

	node, err = Parse([]byte(`[{"field":"status","operator":"eq","value":"shipped"}]`), 0)
	require.NoError(t, err)
	group, ok := node.(Group)
	require.True(t, ok)
	assert.Equal(t, LogicAnd, group.Logic)
	assert.Len(t, group.Children, 1)
}

func TestParseConfigurationErrors(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"unknown operator", `{"field":"status","operator":"like","value":"x"}`, ErrUnknownOperator},
		{"missing operator", `{"field":"status","value":"x"}`, ErrUnknownOperator},
		{"unknown logic", `{"logic_operator":"XOR","children":[]}`, ErrUnknownLogic},
		{"empty field", `{"field":" ","operator":"eq","value":"x"}`, ErrEmptyField},
		{"not with two children", `{"NOT":[{"field":"a","op":"eq","value":1},{"field":"b","op":"eq","value":2}]}`, ErrNotArity},
		{"not with no children", `{"logic_operator":"NOT","children":[]}`, ErrNotArity},
		{"gt on sku field", `{"field":"sku_quantity","operator":"gt","value":3}`, ErrUnsupportedOperatorOnSKU},
		{"sku contains without value", `{"field":"skus","operator":"contains"}`, ErrInvalidValue},
		{"in without value", `{"field":"carrier","operator":"in"}`, ErrInvalidValue},
		{"object value", `{"field":"carrier","operator":"eq","value":{"a":1}}`, ErrInvalidValue},
		{"scalar node", `"status"`, ErrMalformedRule},
		{"unknown key", `{"foo":[]}`, ErrMalformedRule},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw), 0)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, errs.IsKind(err, errs.KindConfiguration))
		})
	}
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"field":`), 0)
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindConfiguration))
}

func TestParseDepthLimit(t *testing.T) {
	leaf := `{"field":"status","operator":"eq","value":"shipped"}`
	nested := func(levels int) string {
		return strings.Repeat(`{"AND":[`, levels) + leaf + strings.Repeat(`]}`, levels)
	}

	_, err := Parse([]byte(nested(3)), 4)
	require.NoError(t, err)

	_, err = Parse([]byte(nested(4)), 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMaxDepth))
}

func TestValidateCodeBuiltTree(t *testing.T) {
	tree := Group{Logic: LogicOr, Children: []Node{
		Rule{Field: "carrier", Operator: "neq", Value: "UPS"},
		Group{Logic: LogicNot, Children: []Node{Rule{Field: "status", Operator: OperatorEq, Value: "void"}}},
	}}
	assert.NoError(t, Validate(tree, 0))

	bad := Group{Logic: LogicNot, Children: []Node{
		Rule{Field: "a", Operator: OperatorEq, Value: 1},
		Rule{Field: "b", Operator: OperatorEq, Value: 2},
	}}
	assert.ErrorIs(t, Validate(bad, 0), ErrNotArity)

	assert.ErrorIs(t, Validate(Rule{Field: "x", Operator: "matches"}, 0), ErrUnknownOperator)
}

func TestCanonicalField(t *testing.T) {
	assert.Equal(t, FieldSKUQuantity, CanonicalField(" SKUs "))
	assert.Equal(t, FieldSKUQuantity, CanonicalField("sku"))
	assert.Equal(t, "ship_to_country", CanonicalField("Ship_To_Country"))
	assert.True(t, IsSKUField("sku_quantities"))
	assert.False(t, IsSKUField("weight"))
}

func TestRuleTreeMarshalsCanonically(t *testing.T) {
	a, err := Parse([]byte(`{"AND":[{"field":"status","op":"eq","value":"shipped"}]}`), 0)
	require.NoError(t, err)
	b, err := Parse([]byte(`{"logic":"and","children":[{"field":"status","operator":"eq","value":"shipped"}]}`), 0)
	require.NoError(t, err)

	ja, err := jsonMarshal(a)
	require.NoError(t, err)
	jb, err := jsonMarshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"logic_operator":"AND","children":[{"field":"status","operator":"eq","value":"shipped"}]}`, string(ja))
	assert.Equal(t, ja, jb)
}

func jsonMarshal(n Node) ([]byte, error) {
	return json.Marshal(n)
}
